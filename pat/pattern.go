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

import "fmt"

// Pattern is one matchable shape.  Patterns compose into trees, which
// are immutable once constructed: Match, Binds, and Translate never
// modify a tree, so a tree can be shared across goroutines.
//
// The set of variants is closed.  Each operation dispatches with a
// single type switch, and an unexpected implementation results in an
// UnknownPatternType error.
type Pattern interface {
	isPattern()
}

// Constant matches a value that's equal to the given value.
//
// The candidate's type has to conform to the constant's type first
// (see Is), so Constant(42) does not match "42".
type Constant struct {
	Value interface{}
}

// Alternatives matches if any sub-pattern matches.  Sub-patterns are
// tried left to right, and the first success wins.
type Alternatives struct {
	Patterns []Pattern
}

// Variable always matches and binds its name to the whole candidate.
//
// The name "_" is the wildcard: it matches everything and binds
// nothing.
type Variable struct {
	Name string
}

// Annotated matches if the candidate conforms to Type and Inner
// matches.
type Annotated struct {
	Type  TypeTag
	Inner Pattern
}

// Sequence matches an ordered collection of exactly len(Elements)
// elements, element-wise.  Strings and byte strings are not
// sequences here even though some hosts iterate them.
type Sequence struct {
	Elements []Pattern
}

// MapEntry is one key/sub-pattern pair of a Mapping.
type MapEntry struct {
	Key     interface{}
	Pattern Pattern
}

// Mapping matches a key-value container.  Every listed key must be
// present, and its value must match the entry's sub-pattern.  Keys
// not listed are ignored.
type Mapping struct {
	Entries []MapEntry
}

// FieldPattern is one named field of an Instance.
type FieldPattern struct {
	Name    string
	Pattern Pattern
}

// Instance matches a structured record of the given type.  Pos
// sub-patterns map onto the type's declared field order; Kw
// sub-patterns map by field name.
//
// Use NewInstance, which checks the field arrangement.
type Instance struct {
	Type RecordTag
	Pos  []Pattern
	Kw   []FieldPattern
}

// Capture matches if Inner matches and additionally binds Name to the
// whole candidate.  With an irrefutable Inner (say Var("_")), a
// Capture is itself irrefutable.
type Capture struct {
	Name  string
	Inner Pattern
}

func (*Constant) isPattern()     {}
func (*Alternatives) isPattern() {}
func (*Variable) isPattern()     {}
func (*Annotated) isPattern()    {}
func (*Sequence) isPattern()     {}
func (*Mapping) isPattern()      {}
func (*Instance) isPattern()     {}
func (*Capture) isPattern()      {}

// Const makes a Constant, normalizing the value with Canon.
//
// A value that Canon rejects is kept as given; Match will then just
// never report a match for it against canonical candidates.
func Const(x interface{}) *Constant {
	if y, err := Canon(x); err == nil {
		x = y
	}
	return &Constant{Value: x}
}

// Or makes an Alternatives.
func Or(ps ...Pattern) *Alternatives {
	return &Alternatives{Patterns: ps}
}

// Var makes a Variable.  Var("_") is the wildcard.
func Var(name string) *Variable {
	return &Variable{Name: name}
}

// Ann makes an Annotated.
func Ann(t TypeTag, inner Pattern) *Annotated {
	return &Annotated{Type: t, Inner: inner}
}

// Seq makes a Sequence.
func Seq(ps ...Pattern) *Sequence {
	return &Sequence{Elements: ps}
}

// Entry makes a MapEntry with a Canon'd key.
func Entry(key interface{}, p Pattern) MapEntry {
	if k, err := Canon(key); err == nil {
		key = k
	}
	return MapEntry{Key: key, Pattern: p}
}

// MapOf makes a Mapping from the given entries.
func MapOf(entries ...MapEntry) *Mapping {
	return &Mapping{Entries: entries}
}

// Field makes a FieldPattern.
func Field(name string, p Pattern) FieldPattern {
	return FieldPattern{Name: name, Pattern: p}
}

// As makes a Capture.
func As(name string, inner Pattern) *Capture {
	return &Capture{Name: name, Inner: inner}
}

// NewInstance makes an Instance after verifying the field
// arrangement: no more positional sub-patterns than the type declares
// fields, and no positional field also given as a keyword field.
func NewInstance(t RecordTag, pos []Pattern, kw []FieldPattern) (*Instance, error) {
	fields := t.Fields()
	if len(fields) < len(pos) {
		return nil, &MalformedPattern{
			Reason: fmt.Sprintf("%d positional sub-patterns but type %s declares %d fields",
				len(pos), t.TypeName(), len(fields)),
		}
	}
	claimed := make(map[string]bool, len(pos))
	for _, field := range fields[:len(pos)] {
		claimed[field] = true
	}
	for _, f := range kw {
		if claimed[f.Name] {
			return nil, &MalformedPattern{
				Reason: fmt.Sprintf("positional sub-pattern conflicts with keyword field %q of %s",
					f.Name, t.TypeName()),
			}
		}
		// A keyword field the type doesn't declare is fine: the
		// record just won't have it, and the match will fail then.
		claimed[f.Name] = true
	}
	return &Instance{Type: t, Pos: pos, Kw: kw}, nil
}
