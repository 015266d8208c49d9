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

// Patterns and record-bearing values in serialized (JSON/YAML) form.
//
// The pattern form:
//
//   42, "tacos", true, null      Constant
//   "?x"                         Variable; "?" and "?_" are the wildcard
//   [p1, p2]                     Sequence
//   {"likes": p}                 Mapping (every key present, values matched)
//
// plus single-key objects whose key starts with '%':
//
//   {"%or": [p1, p2]}                          Alternatives
//   {"%is": {"type": "int", "of": p}}          Annotated ("of" defaults to "?")
//   {"%rec": {"type": "Point",
//             "pos": [p1, p2],
//             "kw": {"flag": p3}}}             Instance
//   {"%as": {"name": "a", "of": p}}            Capture
//   {"%var": "x"}                              Variable (escape)
//   {"%const": "?not-a-variable"}              Constant (escape)
//
// The value form is ordinary JSON, except that an object with a
// "$type" property is a record of that (registered) type, with the
// remaining properties as its fields.

import (
	"fmt"
	"sort"
	"strings"
)

// ParsePattern builds a pattern tree from decoded JSON/YAML.  Type
// names in "%is" and "%rec" forms resolve against the given Registry.
func ParsePattern(x interface{}, reg *Registry) (Pattern, error) {
	y, err := Canon(x)
	if err != nil {
		return nil, err
	}
	return parsePattern(y, reg)
}

func parsePattern(x interface{}, reg *Registry) (Pattern, error) {
	switch v := x.(type) {

	case nil, bool, int64, float64:
		return &Constant{Value: v}, nil

	case string:
		if strings.HasPrefix(v, "?") {
			name := v[1:]
			if name == "" || name == "_" {
				return Var("_"), nil
			}
			return Var(name), nil
		}
		return &Constant{Value: v}, nil

	case []interface{}:
		elements := make([]Pattern, len(v))
		for i, y := range v {
			p, err := parsePattern(y, reg)
			if err != nil {
				return nil, err
			}
			elements[i] = p
		}
		return &Sequence{Elements: elements}, nil

	case map[string]interface{}:
		if len(v) == 1 {
			for k, val := range v {
				if strings.HasPrefix(k, "%") {
					return parseTagged(k, val, reg)
				}
			}
		}
		keys := make([]string, 0, len(v))
		for k := range v {
			if strings.HasPrefix(k, "%") {
				return nil, &MalformedPattern{
					Reason: fmt.Sprintf("key %q: '%%' forms must be single-key objects", k),
				}
			}
			keys = append(keys, k)
		}
		// Sorted for deterministic matching and translation
		// order.
		sort.Strings(keys)
		entries := make([]MapEntry, len(keys))
		for i, k := range keys {
			p, err := parsePattern(v[k], reg)
			if err != nil {
				return nil, err
			}
			entries[i] = MapEntry{Key: k, Pattern: p}
		}
		return &Mapping{Entries: entries}, nil
	}

	return nil, &UnknownPatternType{Pattern: x}
}

func parseTagged(tag string, x interface{}, reg *Registry) (Pattern, error) {
	switch tag {

	case "%const":
		return &Constant{Value: x}, nil

	case "%var":
		name, is := x.(string)
		if !is {
			return nil, &MalformedPattern{Reason: `"%var" wants a string`}
		}
		return Var(name), nil

	case "%or":
		xs, is := x.([]interface{})
		if !is {
			return nil, &MalformedPattern{Reason: `"%or" wants an array`}
		}
		arms := make([]Pattern, len(xs))
		for i, y := range xs {
			p, err := parsePattern(y, reg)
			if err != nil {
				return nil, err
			}
			arms[i] = p
		}
		return &Alternatives{Patterns: arms}, nil

	case "%is":
		m, is := x.(map[string]interface{})
		if !is {
			return nil, &MalformedPattern{Reason: `"%is" wants an object`}
		}
		t, err := lookupType(m, reg)
		if err != nil {
			return nil, err
		}
		var inner Pattern = Var("_")
		if sub, have := m["of"]; have {
			if inner, err = parsePattern(sub, reg); err != nil {
				return nil, err
			}
		}
		return &Annotated{Type: t, Inner: inner}, nil

	case "%as":
		m, is := x.(map[string]interface{})
		if !is {
			return nil, &MalformedPattern{Reason: `"%as" wants an object`}
		}
		name, is := m["name"].(string)
		if !is {
			return nil, &MalformedPattern{Reason: `"%as" wants a "name" string`}
		}
		sub, have := m["of"]
		if !have {
			return nil, &MalformedPattern{Reason: `"%as" wants an "of" pattern`}
		}
		inner, err := parsePattern(sub, reg)
		if err != nil {
			return nil, err
		}
		return &Capture{Name: name, Inner: inner}, nil

	case "%rec":
		m, is := x.(map[string]interface{})
		if !is {
			return nil, &MalformedPattern{Reason: `"%rec" wants an object`}
		}
		t, err := lookupType(m, reg)
		if err != nil {
			return nil, err
		}
		rt, is := t.(RecordTag)
		if !is {
			return nil, &MalformedPattern{
				Reason: fmt.Sprintf("type %s is not a record type", t.TypeName()),
			}
		}
		var pos []Pattern
		if xs, have := m["pos"].([]interface{}); have {
			pos = make([]Pattern, len(xs))
			for i, y := range xs {
				if pos[i], err = parsePattern(y, reg); err != nil {
					return nil, err
				}
			}
		}
		var kw []FieldPattern
		if fm, have := m["kw"].(map[string]interface{}); have {
			names := make([]string, 0, len(fm))
			for name := range fm {
				names = append(names, name)
			}
			sort.Strings(names)
			kw = make([]FieldPattern, len(names))
			for i, name := range names {
				p, err := parsePattern(fm[name], reg)
				if err != nil {
					return nil, err
				}
				kw[i] = FieldPattern{Name: name, Pattern: p}
			}
		}
		return NewInstance(rt, pos, kw)
	}

	return nil, &MalformedPattern{Reason: fmt.Sprintf("unknown form %q", tag)}
}

func lookupType(m map[string]interface{}, reg *Registry) (TypeTag, error) {
	name, is := m["type"].(string)
	if !is {
		return nil, &MalformedPattern{Reason: `wanted a "type" string`}
	}
	t, have := reg.Lookup(name)
	if !have {
		return nil, &UnknownTypeName{Name: name}
	}
	return t, nil
}

// EncodePattern renders a pattern tree back into the serialized form.
// Encoding a parsed pattern and parsing the encoding gives an
// equivalent tree.
func EncodePattern(p Pattern) (interface{}, error) {
	switch v := p.(type) {

	case *Constant:
		if s, is := v.Value.(string); is && strings.HasPrefix(s, "?") {
			return map[string]interface{}{"%const": s}, nil
		}
		switch v.Value.(type) {
		case nil, bool, int64, float64, string:
			return v.Value, nil
		}
		return map[string]interface{}{"%const": v.Value}, nil

	case *Variable:
		if v.Name == "_" {
			return "?", nil
		}
		return "?" + v.Name, nil

	case *Alternatives:
		arms := make([]interface{}, len(v.Patterns))
		for i, sub := range v.Patterns {
			x, err := EncodePattern(sub)
			if err != nil {
				return nil, err
			}
			arms[i] = x
		}
		return map[string]interface{}{"%or": arms}, nil

	case *Annotated:
		inner, err := EncodePattern(v.Inner)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"%is": map[string]interface{}{
			"type": v.Type.TypeName(),
			"of":   inner,
		}}, nil

	case *Sequence:
		elements := make([]interface{}, len(v.Elements))
		for i, sub := range v.Elements {
			x, err := EncodePattern(sub)
			if err != nil {
				return nil, err
			}
			elements[i] = x
		}
		return elements, nil

	case *Mapping:
		m := make(map[string]interface{}, len(v.Entries))
		for _, e := range v.Entries {
			k, is := e.Key.(string)
			if !is || strings.HasPrefix(k, "%") {
				return nil, &UnsupportedCandidate{Value: e.Key}
			}
			x, err := EncodePattern(e.Pattern)
			if err != nil {
				return nil, err
			}
			m[k] = x
		}
		return m, nil

	case *Instance:
		m := map[string]interface{}{"type": v.Type.TypeName()}
		if 0 < len(v.Pos) {
			pos := make([]interface{}, len(v.Pos))
			for i, sub := range v.Pos {
				x, err := EncodePattern(sub)
				if err != nil {
					return nil, err
				}
				pos[i] = x
			}
			m["pos"] = pos
		}
		if 0 < len(v.Kw) {
			kw := make(map[string]interface{}, len(v.Kw))
			for _, f := range v.Kw {
				x, err := EncodePattern(f.Pattern)
				if err != nil {
					return nil, err
				}
				kw[f.Name] = x
			}
			m["kw"] = kw
		}
		return map[string]interface{}{"%rec": m}, nil

	case *Capture:
		inner, err := EncodePattern(v.Inner)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"%as": map[string]interface{}{
			"name": v.Name,
			"of":   inner,
		}}, nil
	}

	return nil, &UnknownPatternType{Pattern: p}
}

// ParseValue builds a canonical value from decoded JSON/YAML,
// converting objects with a "$type" property into records via the
// Registry.
func ParseValue(x interface{}, reg *Registry) (interface{}, error) {
	y, err := Canon(x)
	if err != nil {
		return nil, err
	}
	return parseValue(y, reg)
}

func parseValue(x interface{}, reg *Registry) (interface{}, error) {
	switch v := x.(type) {
	case []interface{}:
		acc := make([]interface{}, len(v))
		for i, y := range v {
			z, err := parseValue(y, reg)
			if err != nil {
				return nil, err
			}
			acc[i] = z
		}
		return acc, nil
	case map[string]interface{}:
		name, isRecord := v["$type"].(string)
		acc := make(map[string]interface{}, len(v))
		for k, y := range v {
			if k == "$type" && isRecord {
				continue
			}
			z, err := parseValue(y, reg)
			if err != nil {
				return nil, err
			}
			acc[k] = z
		}
		if !isRecord {
			return acc, nil
		}
		t, have := reg.Lookup(name)
		if !have {
			return nil, &UnknownTypeName{Name: name}
		}
		rt, is := t.(RecordTag)
		if !is {
			return nil, &UnknownTypeName{Name: name}
		}
		return NewRecord(rt, acc), nil
	}
	return x, nil
}

// EncodeValue renders a canonical value in the serialized form:
// records become objects with a "$type" property.  This is also how
// values cross into ECMAScript (see Prelude).
func EncodeValue(x interface{}) (interface{}, error) {
	y, err := Canon(x)
	if err != nil {
		return nil, err
	}
	switch v := y.(type) {
	case []interface{}:
		acc := make([]interface{}, len(v))
		for i, z := range v {
			if acc[i], err = EncodeValue(z); err != nil {
				return nil, err
			}
		}
		return acc, nil
	case map[string]interface{}:
		acc := make(map[string]interface{}, len(v))
		for k, z := range v {
			if acc[k], err = EncodeValue(z); err != nil {
				return nil, err
			}
		}
		return acc, nil
	case Record:
		t := v.Type()
		acc := map[string]interface{}{"$type": t.TypeName()}
		for _, field := range t.Fields() {
			fv, have := v.Field(field)
			if !have {
				continue
			}
			if acc[field], err = EncodeValue(fv); err != nil {
				return nil, err
			}
		}
		return acc, nil
	}
	return y, nil
}
