package pat

import (
	"reflect"
	"testing"

	. "github.com/patmalib/patma/util/testutil"
)

// point is the record type most tests share.
var point = NewRecordType("Point", "x", "y")

func mustRecord(t *testing.T, rt *RecordType, vals ...interface{}) Record {
	r, err := rt.New(vals...)
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func mustInstance(t *testing.T, rt RecordTag, pos []Pattern, kw []FieldPattern) Pattern {
	p, err := NewInstance(rt, pos, kw)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestMatch(t *testing.T) {
	pointXY := func() Pattern {
		return &Instance{
			Type: point,
			Pos:  []Pattern{Ann(Int, Var("x")), Ann(Int, Var("y"))},
		}
	}

	tests := []struct {
		title   string
		pattern Pattern
		value   interface{}
		want    Bindings // nil means "no match"
	}{
		{
			title:   "constant equal",
			pattern: Const(42),
			value:   42,
			want:    Bindings{},
		},
		{
			title:   "constant unequal",
			pattern: Const(42),
			value:   0,
		},
		{
			title:   "constant wrong type",
			pattern: Const(42),
			value:   "42",
		},
		{
			title:   "int conforms to float constant",
			pattern: Const(42.0),
			value:   42,
			want:    Bindings{},
		},
		{
			title:   "float does not conform to int constant",
			pattern: Const(42),
			value:   42.0,
		},
		{
			title:   "nil constant",
			pattern: Const(nil),
			value:   nil,
			want:    Bindings{},
		},
		{
			title:   "nil constant vs false",
			pattern: Const(nil),
			value:   false,
		},
		{
			title:   "string constant",
			pattern: Const("tacos"),
			value:   "tacos",
			want:    Bindings{},
		},
		{
			title:   "composite constant",
			pattern: Const([]interface{}{1, 2}),
			value:   []interface{}{1, 2},
			want:    Bindings{},
		},
		{
			title:   "alternatives first success wins",
			pattern: Or(As("a", Const(1)), As("b", Const(1)), Const(2)),
			value:   1,
			want:    Bindings{"a": int64(1)},
		},
		{
			title:   "alternatives middle arm",
			pattern: Or(Const(1), Const(2), Const(3)),
			value:   2,
			want:    Bindings{},
		},
		{
			title:   "alternatives no arm matches",
			pattern: Or(Const(1), Const(2), Const(3)),
			value:   4,
		},
		{
			title:   "alternatives empty",
			pattern: Or(),
			value:   1,
		},
		{
			title:   "variable is total",
			pattern: Var("x"),
			value:   nil,
			want:    Bindings{"x": nil},
		},
		{
			title:   "variable binds whole value",
			pattern: Var("x"),
			value:   []interface{}{1, 2},
			want:    Bindings{"x": []interface{}{int64(1), int64(2)}},
		},
		{
			title:   "wildcard binds nothing",
			pattern: Var("_"),
			value:   map[string]interface{}{"likes": "tacos"},
			want:    Bindings{},
		},
		{
			title:   "annotated type conforms",
			pattern: Ann(Int, Var("n")),
			value:   42,
			want:    Bindings{"n": int64(42)},
		},
		{
			title:   "annotated type refuses",
			pattern: Ann(Int, Var("n")),
			value:   42.0,
		},
		{
			title:   "annotated float accepts int",
			pattern: Ann(Float, Var("n")),
			value:   42,
			want:    Bindings{"n": int64(42)},
		},
		{
			title:   "annotated inner can still refuse",
			pattern: Ann(Int, Const(1)),
			value:   2,
		},
		{
			title:   "sequence",
			pattern: Seq(Var("x"), Var("y")),
			value:   []interface{}{1, 2},
			want:    Bindings{"x": int64(1), "y": int64(2)},
		},
		{
			title:   "sequence refuses text",
			pattern: Seq(Var("x"), Var("y")),
			value:   "ab",
		},
		{
			title:   "sequence refuses byte strings",
			pattern: Seq(Var("x"), Var("y")),
			value:   []byte("ab"),
		},
		{
			title:   "sequence wrong length",
			pattern: Seq(Var("x"), Var("y")),
			value:   []interface{}{1, 2, 3},
		},
		{
			title:   "sequence element failure aborts",
			pattern: Seq(Const(1), Var("y")),
			value:   []interface{}{2, 3},
		},
		{
			title:   "empty sequence",
			pattern: Seq(),
			value:   []interface{}{},
			want:    Bindings{},
		},
		{
			title:   "mapping",
			pattern: MapOf(Entry("likes", Var("x"))),
			value:   map[string]interface{}{"likes": "tacos", "extra": true},
			want:    Bindings{"x": "tacos"},
		},
		{
			title:   "mapping missing key",
			pattern: MapOf(Entry("likes", Var("x"))),
			value:   map[string]interface{}{"wants": "chips"},
		},
		{
			title:   "mapping non-mapping candidate",
			pattern: MapOf(Entry("likes", Var("x"))),
			value:   []interface{}{"likes"},
		},
		{
			title:   "empty mapping matches any mapping",
			pattern: MapOf(),
			value:   map[string]interface{}{"likes": "tacos"},
			want:    Bindings{},
		},
		{
			title:   "empty mapping refuses non-mapping",
			pattern: MapOf(),
			value:   42,
		},
		{
			title:   "capture adds its own binding",
			pattern: As("pair", Seq(Var("p"), Var("q"))),
			value:   []interface{}{4, 2},
			want: Bindings{
				"pair": []interface{}{int64(4), int64(2)},
				"p":    int64(4),
				"q":    int64(2),
			},
		},
		{
			title:   "capture fails with inner",
			pattern: As("pair", Seq(Const(1), Var("q"))),
			value:   []interface{}{4, 2},
		},
		{
			title:   "capture overwrites inner same name",
			pattern: As("x", Seq(Var("x"))),
			value:   []interface{}{1},
			want:    Bindings{"x": []interface{}{int64(1)}},
		},
	}

	for _, test := range tests {
		t.Run(test.title, func(t *testing.T) {
			for round := 0; round < 2; round++ {
				bs, err := Match(test.pattern, test.value)
				if err != nil {
					t.Fatal(err)
				}
				if test.want == nil {
					if bs != nil {
						t.Fatalf("unwanted match %s", JS(bs))
					}
					continue
				}
				if bs == nil {
					t.Fatalf("wanted %s; got no match", JS(test.want))
				}
				if !reflect.DeepEqual(test.want, bs) {
					t.Fatalf("wanted %s; got %s", JS(test.want), JS(bs))
				}
			}
		})
	}

	t.Run("instance", func(t *testing.T) {
		p34 := mustRecord(t, point, 3, 4)

		bs, err := Match(pointXY(), p34)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(Bindings{"x": int64(3), "y": int64(4)}, bs) {
			t.Fatal(JS(bs))
		}
	})

	t.Run("instance absent field", func(t *testing.T) {
		justX := mustRecord(t, point, 3)
		if bs, err := Match(pointXY(), justX); err != nil {
			t.Fatal(err)
		} else if bs != nil {
			t.Fatal(JS(bs))
		}
	})

	t.Run("instance falsy field is present", func(t *testing.T) {
		origin := mustRecord(t, point, 0, 0)
		p := mustInstance(t, point, []Pattern{Const(0)}, []FieldPattern{Field("y", Var("y"))})
		bs, err := Match(p, origin)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(Bindings{"y": int64(0)}, bs) {
			t.Fatal(JS(bs))
		}
	})

	t.Run("instance nil field is present", func(t *testing.T) {
		r := mustRecord(t, point, nil, 4)
		p := mustInstance(t, point, []Pattern{Const(nil)}, nil)
		bs, err := Match(p, r)
		if err != nil {
			t.Fatal(err)
		}
		if bs == nil {
			t.Fatal("wanted a match")
		}
	})

	t.Run("instance wrong type", func(t *testing.T) {
		other := NewRecordType("Pixel", "x", "y")
		r := mustRecord(t, other, 3, 4)
		if bs, err := Match(pointXY(), r); err != nil {
			t.Fatal(err)
		} else if bs != nil {
			t.Fatal(JS(bs))
		}
	})

	t.Run("instance non-record candidate", func(t *testing.T) {
		if bs, err := Match(pointXY(), map[string]interface{}{"x": 3, "y": 4}); err != nil {
			t.Fatal(err)
		} else if bs != nil {
			t.Fatal(JS(bs))
		}
	})

	t.Run("instance too many positional sub-patterns", func(t *testing.T) {
		// Built by hand to bypass NewInstance's check.
		p := &Instance{
			Type: point,
			Pos:  []Pattern{Var("x"), Var("y"), Var("z")},
		}
		if bs, err := Match(p, mustRecord(t, point, 3, 4)); err != nil {
			t.Fatal(err)
		} else if bs != nil {
			t.Fatal(JS(bs))
		}
	})
}

func TestMatchDepth(t *testing.T) {
	p := Pattern(Var("x"))
	v := interface{}(int64(1))
	for i := 0; i < 10; i++ {
		p = Seq(p)
		v = []interface{}{v}
	}

	m := &Matcher{MaxDepth: 4}
	if _, err := m.Match(p, v); err == nil {
		t.Fatal("wanted DepthExceeded")
	} else if _, is := err.(*DepthExceeded); !is {
		t.Fatal(err)
	}

	// The default limit is far away.
	if bs, err := Match(p, v); err != nil {
		t.Fatal(err)
	} else if bs == nil {
		t.Fatal("wanted a match")
	}
}

func TestMatchUnsupportedCandidate(t *testing.T) {
	if _, err := Match(Var("x"), struct{}{}); err == nil {
		t.Fatal("wanted UnsupportedCandidate")
	} else if _, is := err.(*UnsupportedCandidate); !is {
		t.Fatal(err)
	}
}

func TestNewInstance(t *testing.T) {
	if _, err := NewInstance(point, []Pattern{Var("a"), Var("b"), Var("c")}, nil); err == nil {
		t.Fatal("wanted MalformedPattern")
	} else if _, is := err.(*MalformedPattern); !is {
		t.Fatal(err)
	}

	if _, err := NewInstance(point,
		[]Pattern{Var("a")},
		[]FieldPattern{Field("x", Var("b"))}); err == nil {
		t.Fatal("wanted MalformedPattern")
	} else if _, is := err.(*MalformedPattern); !is {
		t.Fatal(err)
	}

	// Keyword-only use of a positionally-unclaimed field is fine.
	if _, err := NewInstance(point,
		[]Pattern{Var("a")},
		[]FieldPattern{Field("y", Var("b"))}); err != nil {
		t.Fatal(err)
	}
}
