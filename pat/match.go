/* Copyright 2018 Comcast Cable Communications Management, LLC
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

// DefaultMaxDepth bounds pattern recursion for the default Matcher
// and Translator.
const DefaultMaxDepth = 1024

// Matcher evaluates patterns against candidate values.
type Matcher struct {
	// MaxDepth bounds the pattern nesting depth.  Zero means
	// DefaultMaxDepth.
	MaxDepth int
}

var DefaultMatcher = &Matcher{}

// Match matches the value against the pattern with the
// DefaultMatcher.
func Match(p Pattern, x interface{}) (Bindings, error) {
	return DefaultMatcher.Match(p, x)
}

// Match matches the value against the pattern.
//
// Nil Bindings with a nil error means "no match".  Non-nil Bindings
// (possibly empty) means "match".  Matching is pure: neither the
// pattern nor the value is modified, and matching twice gives the
// same answer.
func (m *Matcher) Match(p Pattern, x interface{}) (Bindings, error) {
	y, err := Canon(x)
	if err != nil {
		return nil, err
	}
	return m.match(p, y, 0)
}

func (m *Matcher) maxDepth() int {
	if m.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return m.MaxDepth
}

func (m *Matcher) match(p Pattern, x interface{}, depth int) (Bindings, error) {
	if m.maxDepth() <= depth {
		return nil, &DepthExceeded{Limit: m.maxDepth()}
	}

	switch v := p.(type) {

	case *Constant:
		if t := TagOf(v.Value); t != nil && !Is(x, t) {
			return nil, nil
		}
		if !equalValues(x, v.Value) {
			return nil, nil
		}
		return NewBindings(), nil

	case *Alternatives:
		for _, sub := range v.Patterns {
			bs, err := m.match(sub, x, depth+1)
			if err != nil {
				return nil, err
			}
			if bs != nil {
				// First success wins; later arms are
				// not consulted.
				return bs, nil
			}
		}
		return nil, nil

	case *Variable:
		bs := NewBindings()
		if v.Name != "_" {
			bs[v.Name] = x
		}
		return bs, nil

	case *Annotated:
		if !Is(x, v.Type) {
			return nil, nil
		}
		return m.match(v.Inner, x, depth+1)

	case *Sequence:
		xs, is := sequenceOf(x)
		if !is || len(xs) != len(v.Elements) {
			return nil, nil
		}
		bs := NewBindings()
		for i, sub := range v.Elements {
			sbs, err := m.match(sub, xs[i], depth+1)
			if err != nil {
				return nil, err
			}
			if sbs == nil {
				return nil, nil
			}
			for name, val := range sbs {
				bs[name] = val
			}
		}
		return bs, nil

	case *Mapping:
		xm, is := x.(map[string]interface{})
		if !is {
			return nil, nil
		}
		bs := NewBindings()
		for _, e := range v.Entries {
			key, is := e.Key.(string)
			if !is {
				// Non-string keys can't occur in a
				// canonical mapping.
				return nil, nil
			}
			val, have := xm[key]
			if !have {
				return nil, nil
			}
			sbs, err := m.match(e.Pattern, val, depth+1)
			if err != nil {
				return nil, err
			}
			if sbs == nil {
				return nil, nil
			}
			for name, v := range sbs {
				bs[name] = v
			}
		}
		return bs, nil

	case *Instance:
		if !Is(x, v.Type) {
			return nil, nil
		}
		r := x.(Record)
		fields := v.Type.Fields()
		if len(fields) < len(v.Pos) {
			return nil, nil
		}
		bs := NewBindings()
		for i, sub := range v.Pos {
			sbs, err := m.matchField(sub, r, fields[i], depth)
			if err != nil {
				return nil, err
			}
			if sbs == nil {
				return nil, nil
			}
			for name, val := range sbs {
				bs[name] = val
			}
		}
		for _, f := range v.Kw {
			sbs, err := m.matchField(f.Pattern, r, f.Name, depth)
			if err != nil {
				return nil, err
			}
			if sbs == nil {
				return nil, nil
			}
			for name, val := range sbs {
				bs[name] = val
			}
		}
		return bs, nil

	case *Capture:
		bs, err := m.match(v.Inner, x, depth+1)
		if err != nil || bs == nil {
			return nil, err
		}
		if v.Name != "_" {
			// Overwrites any same-named binding from Inner.
			// Strict binding analysis reports that case.
			bs[v.Name] = x
		}
		return bs, nil
	}

	return nil, &UnknownPatternType{Pattern: p}
}

// matchField fetches a record field and matches it.  An absent field
// is "no match"; a present field holding nil or false is matched
// normally.
func (m *Matcher) matchField(p Pattern, r Record, field string, depth int) (Bindings, error) {
	val, have := r.Field(field)
	if !have {
		return nil, nil
	}
	val, err := Canon(val)
	if err != nil {
		return nil, err
	}
	return m.match(p, val, depth+1)
}

// sequenceOf reports whether the candidate is a sequence and gives
// its elements.  Text is explicitly not a sequence: a string (or a
// byte string) of length 2 does not match a two-element Sequence.
func sequenceOf(x interface{}) ([]interface{}, bool) {
	switch v := x.(type) {
	case string, []byte:
		return nil, false
	case []interface{}:
		return v, true
	}
	return nil, false
}
