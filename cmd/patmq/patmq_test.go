package main

import (
	"reflect"
	"testing"

	"github.com/patmalib/patma/pat"

	. "github.com/patmalib/patma/util/testutil"
)

func TestReadRules(t *testing.T) {
	rules, reg, err := ReadRules("testdata/rules.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if len(rules.Rules) != 2 {
		t.Fatal(len(rules.Rules))
	}
	if _, have := reg.Lookup("Point"); !have {
		t.Fatal("Point not registered")
	}

	value, err := pat.ParseValue(Dwimjs(`{"$type": "Point", "x": 3, "y": 4}`), reg)
	if err != nil {
		t.Fatal(err)
	}
	bs, err := pat.Match(rules.Rules[1].pattern, value)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(pat.Bindings{"x": int64(3), "y": int64(4)}, bs) {
		t.Fatal(JS(bs))
	}
}
