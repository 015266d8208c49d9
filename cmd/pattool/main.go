// Package main is a grab bag of pattern utilities: graph rendering,
// analysis, and corpus processing.
//
//   pattool dot < pattern.yaml > g.dot
//   pattool mermaid < pattern.yaml > g.mermaid
//   pattool png BASENAME < pattern.yaml
//   pattool analyze < pattern.yaml
//   pattool yamltojson [-p] < pattern.yaml
//   pattool validate CORPUS.yaml
//   pattool corpus-md CORPUS.yaml > corpus.md
//   pattool corpus-html CORPUS.yaml > corpus.html
//
// Pattern input is YAML (or JSON).  A document with "types" and
// "pattern" keys declares record types; otherwise the whole document
// is the pattern.
package main

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"

	"github.com/patmalib/patma/pat"
	"github.com/patmalib/patma/tools"

	"github.com/jsccast/yaml"
)

func main() {

	if len(os.Args) < 2 {
		Usage()
		os.Exit(1)
	}

	switch os.Args[1] {

	case "dot":
		p := readPattern()
		if err := tools.Dot(p, os.Stdout); err != nil {
			panic(err)
		}

	case "mermaid":
		p := readPattern()
		if err := tools.Mermaid(p, os.Stdout, nil); err != nil {
			panic(err)
		}

	case "png":
		if len(os.Args) < 3 {
			Usage()
			os.Exit(1)
		}
		p := readPattern()
		pngname, err := tools.PNG(p, os.Args[2])
		if err != nil {
			panic(err)
		}
		fmt.Printf("%s\n", pngname)

	case "analyze":
		p := readPattern()
		a, err := tools.Analyze(p)
		if err != nil {
			panic(err)
		}
		js, err := json.MarshalIndent(&a, "", "  ")
		if err != nil {
			panic(err)
		}
		fmt.Printf("%s\n", js)

	case "yamltojson":
		pretty := 2 < len(os.Args) && os.Args[2] == "-p"

		bs, err := ioutil.ReadAll(os.Stdin)
		if err != nil {
			panic(err)
		}
		var x interface{}
		if err = yaml.Unmarshal(bs, &x); err != nil {
			panic(err)
		}
		if pretty {
			bs, err = json.MarshalIndent(&x, "", "  ")
		} else {
			bs, err = json.Marshal(&x)
		}
		if err != nil {
			panic(err)
		}
		fmt.Printf("%s\n", bs)

	case "validate":
		c := readCorpus()
		if err := c.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("%d examples validated\n", len(c.Examples))

	case "corpus-md":
		c := readCorpus()
		if err := c.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		if err := c.RenderCorpusMarkdown(os.Stdout); err != nil {
			panic(err)
		}

	case "corpus-html":
		if len(os.Args) < 3 {
			Usage()
			os.Exit(1)
		}
		if err := tools.ReadAndRenderCorpusPage(os.Args[2], nil, os.Stdout); err != nil {
			panic(err)
		}

	default:
		Usage()
		os.Exit(1)
	}
}

// readPattern reads a YAML (or JSON) pattern from stdin.
func readPattern() pat.Pattern {
	bs, err := ioutil.ReadAll(os.Stdin)
	if err != nil {
		panic(err)
	}
	var x interface{}
	if err = yaml.Unmarshal(bs, &x); err != nil {
		panic(err)
	}

	reg := pat.NewRegistry()
	if m, is := x.(map[string]interface{}); is {
		if _, have := m["pattern"]; have {
			if types, is := m["types"].(map[string]interface{}); is {
				for name, fs := range types {
					fields := make([]string, 0, 4)
					if xs, is := fs.([]interface{}); is {
						for _, f := range xs {
							if s, is := f.(string); is {
								fields = append(fields, s)
							}
						}
					}
					reg.Record(name, fields...)
				}
			}
			x = m["pattern"]
		}
	}

	p, err := pat.ParsePattern(x, reg)
	if err != nil {
		panic(err)
	}
	return p
}

func readCorpus() *tools.Corpus {
	if len(os.Args) < 3 {
		Usage()
		os.Exit(1)
	}
	c, err := tools.ReadCorpus(os.Args[2])
	if err != nil {
		panic(err)
	}
	return c
}

func Usage() {
	fmt.Fprintf(os.Stderr, `pattool SUBCOMMAND

  dot                    Read a pattern; write a Graphviz graph
  mermaid                Read a pattern; write a Mermaid graph
  png BASENAME           Read a pattern; write BASENAME.dot and BASENAME.png
  analyze                Read a pattern; write its analysis
  yamltojson [-p]        Convert a YAML pattern to JSON
  validate CORPUS        Check every example in a YAML corpus
  corpus-md CORPUS       Render a YAML corpus as Markdown
  corpus-html CORPUS     Render a YAML corpus as HTML

Patterns are read from stdin as YAML (or JSON).
`)
}
