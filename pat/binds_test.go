package pat

import (
	"reflect"
	"testing"
)

func TestBinds(t *testing.T) {
	tests := []struct {
		title   string
		pattern Pattern
		want    []string
	}{
		{
			title:   "constant binds nothing",
			pattern: Const(42),
			want:    []string{},
		},
		{
			title:   "variable",
			pattern: Var("x"),
			want:    []string{"x"},
		},
		{
			title:   "wildcard excluded",
			pattern: Var("_"),
			want:    []string{},
		},
		{
			title:   "annotated delegates",
			pattern: Ann(Int, Var("x")),
			want:    []string{"x"},
		},
		{
			title:   "sequence unions",
			pattern: Seq(Var("x"), Var("y"), Var("_")),
			want:    []string{"x", "y"},
		},
		{
			title:   "alternatives agree",
			pattern: Or(Seq(Var("x"), Var("y")), Seq(Var("y"), Var("x"))),
			want:    []string{"x", "y"},
		},
		{
			title:   "capture adds its name",
			pattern: As("pair", Seq(Var("p"), Var("q"))),
			want:    []string{"p", "pair", "q"},
		},
		{
			title: "instance unions positional and keyword",
			pattern: &Instance{
				Type: point,
				Pos:  []Pattern{Var("a")},
				Kw:   []FieldPattern{Field("y", Var("b"))},
			},
			want: []string{"a", "b"},
		},
		{
			title:   "empty alternatives",
			pattern: Or(),
			want:    []string{},
		},
	}

	for _, test := range tests {
		t.Run(test.title, func(t *testing.T) {
			for _, strict := range []bool{true, false} {
				ns, err := Binds(test.pattern, strict)
				if err != nil {
					t.Fatal(err)
				}
				if got := ns.Sorted(); !reflect.DeepEqual(test.want, got) {
					t.Fatalf("strict=%v: wanted %v; got %v", strict, test.want, got)
				}
			}
		})
	}
}

func TestBindsViolations(t *testing.T) {
	tests := []struct {
		title   string
		pattern Pattern
		union   []string // non-strict result
		check   func(error) bool
	}{
		{
			title:   "inconsistent alternatives",
			pattern: Or(Var("x"), Var("y")),
			union:   []string{"x", "y"},
			check: func(err error) bool {
				e, is := err.(*InconsistentBindings)
				return is && e.Arm == 1 &&
					reflect.DeepEqual([]string{"x", "y"}, e.Diff)
			},
		},
		{
			title:   "extra name in later arm",
			pattern: Or(Seq(Var("x")), Seq(As("x", Var("y")))),
			union:   []string{"x", "y"},
			check: func(err error) bool {
				e, is := err.(*InconsistentBindings)
				return is && e.Arm == 1 &&
					reflect.DeepEqual([]string{"y"}, e.Diff)
			},
		},
		{
			title:   "duplicate in sequence",
			pattern: Seq(Var("x"), Var("x")),
			union:   []string{"x"},
			check: func(err error) bool {
				e, is := err.(*DuplicateBindings)
				return is && e.Where == "sequence" &&
					reflect.DeepEqual([]string{"x"}, e.Names)
			},
		},
		{
			title: "duplicate across mapping entries",
			pattern: MapOf(
				Entry("a", Var("x")),
				Entry("b", Seq(Var("x"), Var("y")))),
			union: []string{"x", "y"},
			check: func(err error) bool {
				e, is := err.(*DuplicateBindings)
				return is && e.Where == "mapping"
			},
		},
		{
			title: "duplicate across instance fields",
			pattern: &Instance{
				Type: point,
				Pos:  []Pattern{Var("v")},
				Kw:   []FieldPattern{Field("y", Var("v"))},
			},
			union: []string{"v"},
			check: func(err error) bool {
				e, is := err.(*DuplicateBindings)
				return is && e.Where == "instance"
			},
		},
		{
			title:   "capture duplicates inner name",
			pattern: As("x", Seq(Var("x"))),
			union:   []string{"x"},
			check: func(err error) bool {
				e, is := err.(*DuplicateBindings)
				return is && e.Where == "capture" &&
					reflect.DeepEqual([]string{"x"}, e.Names)
			},
		},
	}

	for _, test := range tests {
		t.Run(test.title, func(t *testing.T) {
			if _, err := Binds(test.pattern, true); err == nil {
				t.Fatal("wanted an error in strict mode")
			} else if !test.check(err) {
				t.Fatal(err)
			}

			ns, err := Binds(test.pattern, false)
			if err != nil {
				t.Fatal(err)
			}
			if got := ns.Sorted(); !reflect.DeepEqual(test.union, got) {
				t.Fatalf("wanted %v; got %v", test.union, got)
			}
		})
	}
}

func TestBindsNestedViolation(t *testing.T) {
	// A violation deep inside a sibling still surfaces.
	p := Seq(Var("a"), MapOf(Entry("k", Or(Var("x"), Var("y")))))
	if _, err := Binds(p, true); err == nil {
		t.Fatal("wanted an error")
	} else if _, is := err.(*InconsistentBindings); !is {
		t.Fatal(err)
	}
}
