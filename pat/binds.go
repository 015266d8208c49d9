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

import "sort"

// Names is a set of variable names.
type Names map[string]bool

// Sorted gives the names in sorted order (for diagnostics and stable
// output).
func (ns Names) Sorted() []string {
	acc := make([]string, 0, len(ns))
	for n := range ns {
		acc = append(acc, n)
	}
	sort.Strings(acc)
	return acc
}

func (ns Names) equal(other Names) bool {
	if len(ns) != len(other) {
		return false
	}
	for n := range ns {
		if !other[n] {
			return false
		}
	}
	return true
}

// symmetricDiff gives the sorted names in exactly one of the two
// sets.
func symmetricDiff(a, b Names) []string {
	diff := make(Names, 4)
	for n := range a {
		if !b[n] {
			diff[n] = true
		}
	}
	for n := range b {
		if !a[n] {
			diff[n] = true
		}
	}
	return diff.Sorted()
}

// intersection gives the sorted names in both sets.
func intersection(a, b Names) []string {
	shared := make(Names, 4)
	for n := range a {
		if b[n] {
			shared[n] = true
		}
	}
	return shared.Sorted()
}

// Binds computes the set of names the pattern binds.  The wildcard
// "_" is never in the result.
//
// In strict mode, Binds fails with InconsistentBindings when arms of
// an Alternatives bind different name sets, and with
// DuplicateBindings when one pattern binds a name twice.  Non-strict
// mode unions everything silently; exploratory tooling wants that.
//
// Union computation and conflict detection share this one code path;
// strict just decides whether a detected conflict is fatal.
func Binds(p Pattern, strict bool) (Names, error) {
	return binds(p, strict, 0)
}

func binds(p Pattern, strict bool, depth int) (Names, error) {
	if DefaultMaxDepth <= depth {
		return nil, &DepthExceeded{Limit: DefaultMaxDepth}
	}

	switch v := p.(type) {

	case *Constant:
		return Names{}, nil

	case *Variable:
		ns := Names{}
		if v.Name != "_" {
			ns[v.Name] = true
		}
		return ns, nil

	case *Annotated:
		return binds(v.Inner, strict, depth+1)

	case *Alternatives:
		if len(v.Patterns) == 0 {
			return Names{}, nil
		}
		result, err := binds(v.Patterns[0], strict, depth+1)
		if err != nil {
			return nil, err
		}
		for i, sub := range v.Patterns[1:] {
			b, err := binds(sub, strict, depth+1)
			if err != nil {
				return nil, err
			}
			if strict && !b.equal(result) {
				return nil, &InconsistentBindings{
					Arm:  i + 1,
					Diff: symmetricDiff(result, b),
				}
			}
			for n := range b {
				result[n] = true
			}
		}
		return result, nil

	case *Sequence:
		return bindsChildren(v.Elements, strict, "sequence", depth)

	case *Mapping:
		kids := make([]Pattern, len(v.Entries))
		for i, e := range v.Entries {
			kids[i] = e.Pattern
		}
		return bindsChildren(kids, strict, "mapping", depth)

	case *Instance:
		kids := make([]Pattern, 0, len(v.Pos)+len(v.Kw))
		kids = append(kids, v.Pos...)
		for _, f := range v.Kw {
			kids = append(kids, f.Pattern)
		}
		return bindsChildren(kids, strict, "instance", depth)

	case *Capture:
		result, err := binds(v.Inner, strict, depth+1)
		if err != nil {
			return nil, err
		}
		if v.Name != "_" {
			if strict && result[v.Name] {
				return nil, &DuplicateBindings{
					Where: "capture",
					Names: []string{v.Name},
				}
			}
			result[v.Name] = true
		}
		return result, nil
	}

	return nil, &UnknownPatternType{Pattern: p}
}

// bindsChildren unions the children's name sets, checking pairwise
// intersections as it goes.
func bindsChildren(kids []Pattern, strict bool, where string, depth int) (Names, error) {
	result := Names{}
	for _, kid := range kids {
		b, err := binds(kid, strict, depth+1)
		if err != nil {
			return nil, err
		}
		if strict {
			if dup := intersection(result, b); 0 < len(dup) {
				return nil, &DuplicateBindings{Where: where, Names: dup}
			}
		}
		for n := range b {
			result[n] = true
		}
	}
	return result, nil
}
