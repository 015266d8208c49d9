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

package tools

import (
	"sort"

	"github.com/patmalib/patma/pat"
)

// PatternAnalysis reports the static structure of a pattern: what it
// can bind, how big it is, and whether it can refuse anything at all.
type PatternAnalysis struct {
	// Names are the names the pattern can bind (lax analysis).
	Names []string

	// Problems are strict-mode violations: inconsistent
	// alternatives and duplicate bindings.
	Problems []string

	// NodeCount is the number of pattern nodes.
	NodeCount int

	// Depth is the nesting depth (a bare constant has depth 1).
	Depth int

	// Variants counts nodes per variant name.
	Variants map[string]int

	// Irrefutable means the pattern matches every candidate
	// value.
	Irrefutable bool

	// Types are the names of the type tags the pattern mentions,
	// sorted.
	Types []string
}

// Analyze examines a pattern.
func Analyze(p pat.Pattern) (*PatternAnalysis, error) {
	ns, err := pat.Binds(p, false)
	if err != nil {
		return nil, err
	}

	a := &PatternAnalysis{
		Names:    ns.Sorted(),
		Problems: make([]string, 0, 4),
		Variants: make(map[string]int, 8),
	}

	if _, err := pat.Binds(p, true); err != nil {
		switch err.(type) {
		case *pat.InconsistentBindings, *pat.DuplicateBindings:
			a.Problems = append(a.Problems, err.Error())
		default:
			return nil, err
		}
	}

	types := make(map[string]bool, 4)
	a.Depth = walk(p, a.Variants, types, &a.NodeCount)
	a.Types = keysToStringSlice(types)
	a.Irrefutable = irrefutable(p)

	return a, nil
}

func walk(p pat.Pattern, variants map[string]int, types map[string]bool, count *int) int {
	*count++

	deepest := 0
	kid := func(sub pat.Pattern) {
		if d := walk(sub, variants, types, count); deepest < d {
			deepest = d
		}
	}

	switch v := p.(type) {
	case *pat.Constant:
		variants["constant"]++
	case *pat.Variable:
		variants["variable"]++
	case *pat.Alternatives:
		variants["alternatives"]++
		for _, sub := range v.Patterns {
			kid(sub)
		}
	case *pat.Annotated:
		variants["annotated"]++
		types[v.Type.TypeName()] = true
		kid(v.Inner)
	case *pat.Sequence:
		variants["sequence"]++
		for _, sub := range v.Elements {
			kid(sub)
		}
	case *pat.Mapping:
		variants["mapping"]++
		for _, e := range v.Entries {
			kid(e.Pattern)
		}
	case *pat.Instance:
		variants["instance"]++
		types[v.Type.TypeName()] = true
		for _, sub := range v.Pos {
			kid(sub)
		}
		for _, f := range v.Kw {
			kid(f.Pattern)
		}
	case *pat.Capture:
		variants["capture"]++
		kid(v.Inner)
	}

	return deepest + 1
}

// irrefutable reports whether the pattern matches any candidate: a
// variable (wildcard included), a capture of an irrefutable pattern,
// or alternatives with at least one irrefutable arm.
func irrefutable(p pat.Pattern) bool {
	switch v := p.(type) {
	case *pat.Variable:
		return true
	case *pat.Capture:
		return irrefutable(v.Inner)
	case *pat.Alternatives:
		for _, sub := range v.Patterns {
			if irrefutable(sub) {
				return true
			}
		}
	}
	return false
}

// keysToStringSlice converts the keys from a map into a sorted slice
// of strings.
func keysToStringSlice(m map[string]bool) []string {
	list := make([]string, 0, len(m))
	for key := range m {
		list = append(list, key)
	}
	sort.Strings(list)
	return list
}
