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

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// TypeTag names a runtime type and decides whether a canonical value
// belongs to it.
type TypeTag interface {
	TypeName() string
	Accepts(x interface{}) bool
}

// RecordTag is a TypeTag for structured records.  Fields gives the
// declared field order, which Instance patterns use to resolve
// positional sub-patterns.
type RecordTag interface {
	TypeTag
	Fields() []string
}

// Record is the access capability that Instance matching needs from a
// candidate.  Field reports presence explicitly, so an absent field
// is distinguishable from a field holding nil, false, or zero.
type Record interface {
	Type() RecordTag
	Field(name string) (interface{}, bool)
}

// basicTag is one of the built-in type tags.
type basicTag struct {
	name string
}

func (t *basicTag) TypeName() string { return t.name }

func (t *basicTag) Accepts(x interface{}) bool {
	switch t.name {
	case "null":
		return x == nil
	case "bool":
		_, is := x.(bool)
		return is
	case "int":
		_, is := x.(int64)
		return is
	case "float":
		_, is := x.(float64)
		return is
	case "str":
		_, is := x.(string)
		return is
	case "list":
		_, is := x.([]interface{})
		return is
	case "map":
		_, is := x.(map[string]interface{})
		return is
	}
	return false
}

// The built-in type tags.  Values are canonical (see Canon), so these
// are the only non-record types a candidate can have.
var (
	Null  TypeTag = &basicTag{"null"}
	Bool  TypeTag = &basicTag{"bool"}
	Int   TypeTag = &basicTag{"int"}
	Float TypeTag = &basicTag{"float"}
	Str   TypeTag = &basicTag{"str"}
	List  TypeTag = &basicTag{"list"}
	Map   TypeTag = &basicTag{"map"}
)

// Is reports whether x conforms to t, pretending that ints conform to
// Float.  That one widening edge is the whole numeric tower here, and
// this predicate is the only place where it lives.  Constant,
// Annotated, and Instance matching all go through Is.
//
// ToDo: Maybe also pretend floats conform to a complex tag.
func Is(x interface{}, t TypeTag) bool {
	if t == Float {
		if _, is := x.(int64); is {
			return true
		}
	}
	return t.Accepts(x)
}

// TagOf gives the TypeTag of a canonical value, or nil for a value
// outside the model.
func TagOf(x interface{}) TypeTag {
	switch x.(type) {
	case nil:
		return Null
	case bool:
		return Bool
	case int64:
		return Int
	case float64:
		return Float
	case string:
		return Str
	case []interface{}:
		return List
	case map[string]interface{}:
		return Map
	}
	if r, is := x.(Record); is {
		return r.Type()
	}
	return nil
}

// Canon normalizes a value into the canonical model: nil, bool,
// int64, float64, string, []interface{}, map[string]interface{}, or
// Record.  Slices and maps are rebuilt, so the argument is not
// modified.  A value that can't be normalized gives an
// UnsupportedCandidate error.
func Canon(x interface{}) (interface{}, error) {
	switch v := x.(type) {
	case nil:
		return nil, nil
	case bool, int64, float64, string:
		return v, nil
	case []byte:
		// A byte string stays a byte string.  No tag accepts
		// it, and Sequence refuses it.
		return v, nil
	case int:
		return int64(v), nil
	case int8:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case uint:
		return int64(v), nil
	case uint8:
		return int64(v), nil
	case uint16:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case uint64:
		return int64(v), nil
	case float32:
		return float64(v), nil
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n, nil
		}
		f, err := v.Float64()
		if err != nil {
			return nil, &UnsupportedCandidate{Value: x}
		}
		return f, nil
	case []interface{}:
		acc := make([]interface{}, len(v))
		for i, y := range v {
			z, err := Canon(y)
			if err != nil {
				return nil, err
			}
			acc[i] = z
		}
		return acc, nil
	case map[string]interface{}:
		acc := make(map[string]interface{}, len(v))
		for k, y := range v {
			z, err := Canon(y)
			if err != nil {
				return nil, err
			}
			acc[k] = z
		}
		return acc, nil
	case Record:
		// Record fields are normalized when fetched.
		return v, nil
	}
	return nil, &UnsupportedCandidate{Value: x}
}

// equalValues compares two canonical values, comparing int64 and
// float64 numerically so that 42 equals 42.0 (the type conformance
// test has already run by the time equality matters).
func equalValues(a, b interface{}) bool {
	if x, y, both := numbers(a, b); both {
		return x == y
	}
	return reflect.DeepEqual(a, b)
}

func numbers(a, b interface{}) (float64, float64, bool) {
	x, is := asFloat(a)
	if !is {
		return 0, 0, false
	}
	y, is := asFloat(b)
	if !is {
		return 0, 0, false
	}
	return x, y, true
}

func asFloat(x interface{}) (float64, bool) {
	switch v := x.(type) {
	case int64:
		return float64(v), true
	case float64:
		return v, true
	}
	return 0, false
}

// RecordType is a registry-backed RecordTag: a name and a declared
// field order.
type RecordType struct {
	name   string
	fields []string
}

// NewRecordType makes a RecordType.
func NewRecordType(name string, fields ...string) *RecordType {
	return &RecordType{name: name, fields: fields}
}

func (t *RecordType) TypeName() string { return t.name }

func (t *RecordType) Fields() []string { return t.fields }

// Accepts reports whether x is a record of exactly this type.  No
// subtyping among record types (for now?).
func (t *RecordType) Accepts(x interface{}) bool {
	r, is := x.(Record)
	return is && r.Type() == RecordTag(t)
}

// New makes a record of this type from positional field values.
// Fewer values than declared fields leaves the remaining fields
// absent (not nil), which matters to Instance matching.
func (t *RecordType) New(vals ...interface{}) (*SimpleRecord, error) {
	if len(t.fields) < len(vals) {
		return nil, fmt.Errorf("%d values for type %s with %d fields",
			len(vals), t.name, len(t.fields))
	}
	fields := make(map[string]interface{}, len(vals))
	for i, v := range vals {
		fields[t.fields[i]] = v
	}
	return &SimpleRecord{tag: t, fields: fields}, nil
}

// SimpleRecord is a map-backed Record.
type SimpleRecord struct {
	tag    RecordTag
	fields map[string]interface{}
}

// NewRecord makes a SimpleRecord with the given fields, which are not
// copied.
func NewRecord(t RecordTag, fields map[string]interface{}) *SimpleRecord {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	return &SimpleRecord{tag: t, fields: fields}
}

func (r *SimpleRecord) Type() RecordTag { return r.tag }

func (r *SimpleRecord) Field(name string) (interface{}, bool) {
	v, have := r.fields[name]
	return v, have
}

// Registry maps type names to tags.  The built-in tags are always
// present.
type Registry struct {
	tags map[string]TypeTag
}

// NewRegistry makes a Registry with the built-in tags registered.
func NewRegistry() *Registry {
	r := &Registry{tags: make(map[string]TypeTag, 16)}
	for _, t := range []TypeTag{Null, Bool, Int, Float, Str, List, Map} {
		r.tags[t.TypeName()] = t
	}
	return r
}

// Record defines and registers a RecordType.  Redefining a name
// replaces the old tag, and records made with the old tag won't
// conform to the new one.
func (r *Registry) Record(name string, fields ...string) *RecordType {
	t := NewRecordType(name, fields...)
	r.tags[name] = t
	return t
}

// Lookup finds a tag by name.
func (r *Registry) Lookup(name string) (TypeTag, bool) {
	t, have := r.tags[name]
	return t, have
}

// Builtin is the default Registry: just the built-in tags unless a
// caller registers more.  Not safe for concurrent registration.
var Builtin = NewRegistry()
