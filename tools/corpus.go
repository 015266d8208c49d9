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

package tools

import (
	"fmt"
	"io"
	"io/ioutil"
	"reflect"

	"github.com/patmalib/patma/pat"
	. "github.com/patmalib/patma/util/testutil"

	"github.com/jsccast/yaml"
)

// Corpus is a set of worked pattern-matching examples, usually read
// from a YAML file.  A corpus doubles as documentation (see
// RenderCorpusMarkdown) and as a test suite (see Validate).
type Corpus struct {
	Name string `yaml:"name"`
	Doc  string `yaml:"doc,omitempty"`

	// Types declares record types (name to field order) that the
	// examples can use.
	Types map[string][]string `yaml:"types,omitempty"`

	Examples []*Example `yaml:"examples"`
}

// Example is one pattern, one candidate value, and the expected
// outcome.
type Example struct {
	Title string `yaml:"title"`
	Doc   string `yaml:"doc,omitempty"`

	// Pattern and Value are in the serialized form (see
	// pat.ParsePattern and pat.ParseValue).
	Pattern interface{} `yaml:"pattern"`
	Value   interface{} `yaml:"value"`

	// Bindings is the expected result.  NoMatch means the match
	// should fail (and then Bindings is ignored).
	Bindings map[string]interface{} `yaml:"bindings,omitempty"`
	NoMatch  bool                   `yaml:"nomatch,omitempty"`
}

// ReadCorpus reads a YAML corpus from a file.
//
// The YAML parser is the fork at https://github.com/jsccast/yaml,
// which returns map[string]interface{} instead of
// map[interface{}]interface{}.
func ReadCorpus(filename string) (*Corpus, error) {
	bs, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	var c Corpus
	if err = yaml.Unmarshal(bs, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Registry makes a Registry with the corpus's record types defined.
func (c *Corpus) Registry() *pat.Registry {
	reg := pat.NewRegistry()
	for name, fields := range c.Types {
		reg.Record(name, fields...)
	}
	return reg
}

// Validate checks every example against the matcher, reporting the
// first discrepancy.
func (c *Corpus) Validate() error {
	reg := c.Registry()

	for _, e := range c.Examples {
		p, err := pat.ParsePattern(e.Pattern, reg)
		if err != nil {
			return fmt.Errorf("example %q pattern: %s", e.Title, err)
		}
		v, err := pat.ParseValue(e.Value, reg)
		if err != nil {
			return fmt.Errorf("example %q value: %s", e.Title, err)
		}
		bs, err := pat.Match(p, v)
		if err != nil {
			return fmt.Errorf("example %q match: %s", e.Title, err)
		}

		if e.NoMatch {
			if bs != nil {
				return fmt.Errorf("example %q: unwanted match %s", e.Title, JS(bs))
			}
			continue
		}
		if bs == nil {
			return fmt.Errorf("example %q: wanted %s; got no match", e.Title, JS(e.Bindings))
		}

		want, err := pat.Canon(e.Bindings)
		if err != nil {
			return fmt.Errorf("example %q bindings: %s", e.Title, err)
		}
		if e.Bindings == nil {
			want = map[string]interface{}{}
		}
		if !reflect.DeepEqual(want, map[string]interface{}(bs)) {
			return fmt.Errorf("example %q: wanted %s; got %s", e.Title, JS(want), JS(bs))
		}
	}

	return nil
}

// RenderCorpusMarkdown writes the corpus as a Markdown document with
// the outcome of each example.
func (c *Corpus) RenderCorpusMarkdown(out io.Writer) error {
	f := func(format string, args ...interface{}) {
		fmt.Fprintf(out, format+"\n", args...)
	}

	f("# %s\n", c.Name)
	if c.Doc != "" {
		f("%s", c.Doc)
	}

	if 0 < len(c.Types) {
		f("## Types\n")
		for _, name := range typeNames(c.Types) {
			f("- `%s` with fields `%s`", name, JS(c.Types[name]))
		}
		f("")
	}

	for _, e := range c.Examples {
		f("## %s\n", e.Title)
		if e.Doc != "" {
			f("%s", e.Doc)
		}
		f("Pattern:\n\n```json\n%s\n```\n", JS(e.Pattern))
		f("Value:\n\n```json\n%s\n```\n", JS(e.Value))
		if e.NoMatch {
			f("No match.\n")
		} else {
			f("Bindings:\n\n```json\n%s\n```\n", JS(e.Bindings))
		}
	}

	return nil
}

func typeNames(types map[string][]string) []string {
	m := make(map[string]bool, len(types))
	for name := range types {
		m[name] = true
	}
	return keysToStringSlice(m)
}
