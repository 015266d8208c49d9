/* Copyright 2018-2019 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package pat

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Translator compiles patterns into ECMAScript 5.1 boolean
// expressions.
type Translator struct {
	// MaxDepth bounds the pattern nesting depth.  Zero means
	// DefaultMaxDepth.
	MaxDepth int
}

var DefaultTranslator = &Translator{}

// Translate compiles the pattern with the DefaultTranslator.
func Translate(p Pattern, target string) (string, error) {
	return DefaultTranslator.Translate(p, target)
}

// Translate compiles the pattern into a boolean-valued expression
// over the given target expression (say "msg" or "msg.body[0]").
//
// The compiled expression evaluates to true exactly when Match would
// report a match, and as a side effect assigns each captured name in
// the scope the expression runs in.  The fragment is a plain
// sub-expression: it can be spliced into a caller's && / || chain
// without any supporting statements.  Evaluation order follows the
// matcher: alternatives short-circuit left to right, and type,
// length, and key-presence guards run before any per-field code
// touches the candidate.
//
// The expression calls the helpers defined by Prelude, which must be
// in scope.
//
// Temporary names for staged instance checks come from a counter
// that's fresh per Translate call, so translating one tree twice
// gives two independent sets of temporaries.
func (tr *Translator) Translate(p Pattern, target string) (string, error) {
	g := &gensym{}
	return tr.translate(p, target, g, 0)
}

// gensym hands out small ints for collision-free temporary names.
// Threaded explicitly through the recursion; no global state.
type gensym struct {
	n int
}

func (g *gensym) next() int {
	g.n++
	return g.n
}

func (tr *Translator) maxDepth() int {
	if tr.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return tr.MaxDepth
}

func (tr *Translator) translate(p Pattern, target string, g *gensym, depth int) (string, error) {
	if tr.maxDepth() <= depth {
		return "", &DepthExceeded{Limit: tr.maxDepth()}
	}

	switch v := p.(type) {

	case *Constant:
		t := TagOf(v.Value)
		if t == nil {
			return "", &UnsupportedCandidate{Value: v.Value}
		}
		lit, err := literal(v.Value)
		if err != nil {
			return "", err
		}
		// The type guard reproduces the matcher's conformance
		// test, widening included (_is treats any number as a
		// "float").
		return fmt.Sprintf("(_is(%s, %q) && %s === %s)", target, t.TypeName(), target, lit), nil

	case *Alternatives:
		if len(v.Patterns) == 0 {
			return "false", nil
		}
		arms := make([]string, len(v.Patterns))
		for i, sub := range v.Patterns {
			s, err := tr.translate(sub, target, g, depth+1)
			if err != nil {
				return "", err
			}
			arms[i] = s
		}
		return "(" + strings.Join(arms, " || ") + ")", nil

	case *Variable:
		if v.Name == "_" {
			return "true", nil
		}
		// Always true; assigns in the enclosing scope.
		return fmt.Sprintf("((%s = %s), true)", v.Name, target), nil

	case *Annotated:
		inner, err := tr.translate(v.Inner, target, g, depth+1)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(_is(%s, %q) && %s)", target, v.Type.TypeName(), inner), nil

	case *Sequence:
		conds := []string{
			fmt.Sprintf("_isSeq(%s)", target),
			fmt.Sprintf("%s.length === %d", target, len(v.Elements)),
		}
		for i, sub := range v.Elements {
			s, err := tr.translate(sub, fmt.Sprintf("%s[%d]", target, i), g, depth+1)
			if err != nil {
				return "", err
			}
			conds = append(conds, s)
		}
		return "(" + strings.Join(conds, " && ") + ")", nil

	case *Mapping:
		conds := []string{fmt.Sprintf("_isMap(%s)", target)}
		for _, e := range v.Entries {
			key, err := literal(e.Key)
			if err != nil {
				return "", err
			}
			sub, err := tr.translate(e.Pattern, fmt.Sprintf("%s[%s]", target, key), g, depth+1)
			if err != nil {
				return "", err
			}
			conds = append(conds,
				fmt.Sprintf("(_hasKey(%s, %s) && %s)", target, key, sub))
		}
		return "(" + strings.Join(conds, " && ") + ")", nil

	case *Instance:
		fields := v.Type.Fields()
		if len(fields) < len(v.Pos) {
			return "", &MalformedPattern{
				Reason: fmt.Sprintf("%d positional sub-patterns but type %s declares %d fields",
					len(v.Pos), v.Type.TypeName(), len(fields)),
			}
		}
		var (
			tmp  = fmt.Sprintf("_t%d", g.next())
			item = fmt.Sprintf("_i%d", g.next())
		)
		// Stage the candidate in a temporary so per-field code
		// never re-evaluates the target expression, and guard
		// every field fetch before its sub-pattern runs.
		conds := []string{
			fmt.Sprintf("((%s = %s), true)", tmp, target),
			fmt.Sprintf("_is(%s, %q)", tmp, v.Type.TypeName()),
		}
		emitField := func(field string, sub Pattern) error {
			conds = append(conds,
				fmt.Sprintf("((%s = _getattr(%s, %q)) !== _nope)", item, tmp, field))
			s, err := tr.translate(sub, item, g, depth+1)
			if err != nil {
				return err
			}
			conds = append(conds, s)
			return nil
		}
		for i, sub := range v.Pos {
			if err := emitField(fields[i], sub); err != nil {
				return "", err
			}
		}
		for _, f := range v.Kw {
			if err := emitField(f.Name, f.Pattern); err != nil {
				return "", err
			}
		}
		return "(" + strings.Join(conds, " && ") + ")", nil

	case *Capture:
		inner, err := tr.translate(v.Inner, target, g, depth+1)
		if err != nil {
			return "", err
		}
		if v.Name == "_" {
			return inner, nil
		}
		// Inner runs first; the capture happens only on
		// success.
		return fmt.Sprintf("(%s ? ((%s = %s), true) : false)", inner, v.Name, target), nil
	}

	return "", &UnknownPatternType{Pattern: p}
}

// literal renders a canonical scalar as an ECMAScript literal.
func literal(x interface{}) (string, error) {
	switch x.(type) {
	case nil, bool, int64, float64, string:
		js, err := json.Marshal(x)
		if err != nil {
			return "", &UnsupportedCandidate{Value: x}
		}
		return string(js), nil
	}
	return "", &UnsupportedCandidate{Value: x}
}
