package pat

import (
	"strings"
	"testing"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		title   string
		pattern Pattern
		target  string
		want    string
	}{
		{
			title:   "constant",
			pattern: Const(42),
			target:  "x",
			want:    `(_is(x, "int") && x === 42)`,
		},
		{
			title:   "float constant widens",
			pattern: Const(42.0),
			target:  "x",
			want:    `(_is(x, "float") && x === 42)`,
		},
		{
			title:   "string constant",
			pattern: Const("tacos"),
			target:  "msg.body",
			want:    `(_is(msg.body, "str") && msg.body === "tacos")`,
		},
		{
			title:   "nil constant",
			pattern: Const(nil),
			target:  "x",
			want:    `(_is(x, "null") && x === null)`,
		},
		{
			title:   "variable assigns in enclosing scope",
			pattern: Var("x"),
			target:  "p",
			want:    `((x = p), true)`,
		},
		{
			title:   "wildcard",
			pattern: Var("_"),
			target:  "p",
			want:    `true`,
		},
		{
			title:   "alternatives or-chain in order",
			pattern: Or(Const(1), Const(2)),
			target:  "p",
			want:    `((_is(p, "int") && p === 1) || (_is(p, "int") && p === 2))`,
		},
		{
			title:   "empty alternatives",
			pattern: Or(),
			target:  "p",
			want:    `false`,
		},
		{
			title:   "annotated",
			pattern: Ann(List, Var("x")),
			target:  "p",
			want:    `(_is(p, "list") && ((x = p), true))`,
		},
		{
			title:   "sequence guards before elements",
			pattern: Seq(Var("x"), Var("y")),
			target:  "p",
			want:    `(_isSeq(p) && p.length === 2 && ((x = p[0]), true) && ((y = p[1]), true))`,
		},
		{
			title:   "mapping guards key presence per entry",
			pattern: MapOf(Entry("likes", Var("x"))),
			target:  "p",
			want:    `(_isMap(p) && (_hasKey(p, "likes") && ((x = p["likes"]), true)))`,
		},
		{
			title: "instance stages candidate and guards each fetch",
			pattern: &Instance{
				Type: point,
				Pos:  []Pattern{Var("x"), Var("y")},
			},
			target: "p",
			want: `(((_t1 = p), true) && _is(_t1, "Point")` +
				` && ((_i2 = _getattr(_t1, "x")) !== _nope) && ((x = _i2), true)` +
				` && ((_i2 = _getattr(_t1, "y")) !== _nope) && ((y = _i2), true))`,
		},
		{
			title: "instance keyword fields",
			pattern: &Instance{
				Type: point,
				Kw:   []FieldPattern{Field("y", Const(0))},
			},
			target: "p",
			want: `(((_t1 = p), true) && _is(_t1, "Point")` +
				` && ((_i2 = _getattr(_t1, "y")) !== _nope) && (_is(_i2, "int") && _i2 === 0))`,
		},
		{
			title:   "capture runs inner first",
			pattern: As("a", Seq(Var("p"), Var("q"))),
			target:  "v",
			want: `((_isSeq(v) && v.length === 2 && ((p = v[0]), true) && ((q = v[1]), true))` +
				` ? ((a = v), true) : false)`,
		},
		{
			title:   "wildcard capture is just its inner",
			pattern: As("_", Const(1)),
			target:  "v",
			want:    `(_is(v, "int") && v === 1)`,
		},
	}

	for _, test := range tests {
		t.Run(test.title, func(t *testing.T) {
			got, err := Translate(test.pattern, test.target)
			if err != nil {
				t.Fatal(err)
			}
			if got != test.want {
				t.Fatalf("wanted\n%s\ngot\n%s", test.want, got)
			}
		})
	}
}

func TestTranslateFreshTemporaries(t *testing.T) {
	inner := &Instance{Type: point, Pos: []Pattern{Var("a"), Var("b")}}
	outer := &Instance{Type: point, Pos: []Pattern{inner}}

	first, err := Translate(outer, "p")
	if err != nil {
		t.Fatal(err)
	}

	// The nested instance gets its own temporaries.
	for _, tmp := range []string{"_t1", "_i2", "_t3", "_i4"} {
		if !strings.Contains(first, tmp) {
			t.Fatalf("wanted %s in %s", tmp, first)
		}
	}

	// The counter is per compilation call: translating the same
	// tree again starts over.
	second, err := Translate(outer, "p")
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Fatalf("%s != %s", first, second)
	}
}

func TestTranslateCompositeConstant(t *testing.T) {
	if _, err := Translate(Const([]interface{}{1, 2}), "p"); err == nil {
		t.Fatal("wanted UnsupportedCandidate")
	} else if _, is := err.(*UnsupportedCandidate); !is {
		t.Fatal(err)
	}
}

func TestTranslateDepth(t *testing.T) {
	p := Pattern(Var("x"))
	for i := 0; i < 10; i++ {
		p = Seq(p)
	}
	tr := &Translator{MaxDepth: 4}
	if _, err := tr.Translate(p, "p"); err == nil {
		t.Fatal("wanted DepthExceeded")
	} else if _, is := err.(*DepthExceeded); !is {
		t.Fatal(err)
	}
}

func TestTranslateMalformedInstance(t *testing.T) {
	p := &Instance{Type: point, Pos: []Pattern{Var("a"), Var("b"), Var("c")}}
	if _, err := Translate(p, "p"); err == nil {
		t.Fatal("wanted MalformedPattern")
	} else if _, is := err.(*MalformedPattern); !is {
		t.Fatal(err)
	}
}
