package tools

// dot -Tpng g.dot > g.png

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/patmalib/patma/pat"

	"gopkg.in/yaml.v2"
)

// Dot makes a Graphviz dot file for the given pattern tree.  A really
// ugly dot file.
//
// Constants and keys are rendered as YAML, which reads better than
// JSON in small labels.
func Dot(p pat.Pattern, w io.WriteCloser) error {

	fmt.Fprintf(w, "digraph G {\n")
	fmt.Fprintf(w, `  graph [ordering=out,rankdir=TB,nodesep=0.3,ranksep=0.6]
  node [shape="record" style="rounded,filled"]
  edge [fontsize = "12"]
`)

	num := 0
	var node func(p pat.Pattern) (string, error)
	node = func(p pat.Pattern) (string, error) {
		num++
		nid := fmt.Sprintf("n%d", num)

		label, fillcolor := "", "#99ddc8"
		kids := make([]pat.Pattern, 0, 4)
		edges := make([]string, 0, 4)
		kid := func(edge string, sub pat.Pattern) {
			edges = append(edges, edge)
			kids = append(kids, sub)
		}

		switch v := p.(type) {
		case *pat.Constant:
			label = yamlLabel(v.Value)
			fillcolor = "#52aa5e"
		case *pat.Variable:
			if v.Name == "_" {
				label = "_"
			} else {
				label = "?" + v.Name
			}
			fillcolor = "#2d93ad"
		case *pat.Alternatives:
			label = "or"
			for i, sub := range v.Patterns {
				kid(fmt.Sprintf("%d/%d", i+1, len(v.Patterns)), sub)
			}
		case *pat.Annotated:
			label = "is " + v.Type.TypeName()
			kid("", v.Inner)
		case *pat.Sequence:
			label = fmt.Sprintf("seq %d", len(v.Elements))
			for i, sub := range v.Elements {
				kid(fmt.Sprintf("%d", i), sub)
			}
		case *pat.Mapping:
			label = "map"
			for _, e := range v.Entries {
				kid(yamlLabel(e.Key), e.Pattern)
			}
		case *pat.Instance:
			label = "rec " + v.Type.TypeName()
			fields := v.Type.Fields()
			for i, sub := range v.Pos {
				kid(fields[i], sub)
			}
			for _, f := range v.Kw {
				kid(f.Name, f.Pattern)
			}
		case *pat.Capture:
			label = "as " + v.Name
			kid("", v.Inner)
		default:
			return "", fmt.Errorf("unknown pattern %T", p)
		}

		fmt.Fprintf(w, "  %s [shape=\"record\", style=\"rounded,filled\", fillcolor=\"%s\", label=\"%s\" ]\n",
			nid, fillcolor, escape(label))

		for i, sub := range kids {
			to, err := node(sub)
			if err != nil {
				return "", err
			}
			fmt.Fprintf(w, "  %s -> %s [ label = \"%s\" ]\n", nid, to, escape(edges[i]))
		}

		return nid, nil
	}

	if _, err := node(p); err != nil {
		return err
	}

	fmt.Fprintf(w, "}\n")
	return w.Close()
}

// PNG generates a PNG image based on output from Dot.
//
// This function will write two files: basename.dot and basename.png,
// where the basename is the given string.
func PNG(p pat.Pattern, basename string) (string, error) {
	dotname := basename + ".dot"
	pngname := basename + ".png"

	// ToDo: Use mktemp
	dotfile, err := os.Create(dotname)
	if err != nil {
		return pngname, err
	}
	if err := Dot(p, dotfile); err != nil {
		return pngname, err
	}
	cmd := "dot -Tpng -Gstart=1 " + dotname + " > " + pngname
	if err := exec.Command("bash", "-c", cmd).Run(); err != nil {
		return pngname, err
	}
	return pngname, nil
}

func yamlLabel(x interface{}) string {
	bs, err := yaml.Marshal(x)
	if err != nil {
		return err.Error()
	}
	return strings.TrimSpace(string(bs))
}

func escape(s string) string {
	return strings.Replace(s, `"`, `\"`, -1)
}
