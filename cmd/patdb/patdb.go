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

// Package main is a command-line shell for a persistent store of
// named patterns.
//
// Patterns and record types live in a BoltDB file, so they survive
// across sessions.  "match" runs a candidate value against every
// stored pattern.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/patmalib/patma/pat"
	"github.com/patmalib/patma/storage/bolt"
	"github.com/patmalib/patma/tools"
	. "github.com/patmalib/patma/util/testutil"
)

type Opts struct {
	filename string
	echo     bool
	debug    bool
}

func main() {

	opts := &Opts{}
	flag.StringVar(&opts.filename, "f", "patterns.db", "database filename")
	flag.BoolVar(&opts.echo, "e", false, "echo input")
	flag.BoolVar(&opts.debug, "d", false, "storage debugging")
	flag.Parse()

	if err := opts.run(); err != nil {
		panic(err)
	}
}

func (opts *Opts) run() error {

	in := os.Stdin
	w := os.Stdout

	s, err := bolt.NewStorage(opts.filename)
	if err != nil {
		return err
	}
	s.Debug = opts.debug
	if err := s.Open(); err != nil {
		return err
	}
	defer s.Close()

	var (
		put = regexp.MustCompile("^put +([-a-zA-Z0-9_]+) +(.*)")

		get = regexp.MustCompile("^get +([-a-zA-Z0-9_]+)")

		rem = regexp.MustCompile("^(rem|del|remove|delete) +([-a-zA-Z0-9_]+)")

		list = regexp.MustCompile("^list")

		deftype = regexp.MustCompile("^type +([-a-zA-Z0-9_]+) +(.*)")

		match = regexp.MustCompile("^match +(.*)")

		analyze = regexp.MustCompile("^analyze +([-a-zA-Z0-9_]+)")

		load = regexp.MustCompile("^load +(.*)")

		help = regexp.MustCompile("^(help|h|\\?)")

		outputPrefix = "# "

		say = func(format string, args ...interface{}) {
			fmt.Fprintf(w, outputPrefix+format+"\n", args...)
		}

		protest = func(format string, args ...interface{}) {
			say("error: "+format, args...)
		}
	)

	r := bufio.NewReader(in)
	for {
		line, err := r.ReadString('\n')
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		line = strings.TrimSpace(line)

		if opts.echo {
			fmt.Println(line)
		}

		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "#") {
			continue
		}

		reg, err := s.Registry()
		if err != nil {
			return err
		}

		var ss []string

		if ss = help.FindStringSubmatch(line); 0 < len(ss) {
			for _, s := range strings.Split(doc(), "\n") {
				say("%s", s)
			}
			continue
		}

		if ss = put.FindStringSubmatch(line); 0 < len(ss) {
			name, js := ss[1], ss[2]
			x, err := dwim(js)
			if err != nil {
				protest("couldn't parse pattern %s: %s", js, err)
				continue
			}
			if err := s.PutPattern(name, x, reg); err != nil {
				protest("couldn't store '%s': %s", name, err)
				continue
			}
			say("stored '%s'", name)
			continue
		}

		if ss = get.FindStringSubmatch(line); 0 < len(ss) {
			name := ss[1]
			p, err := s.GetPattern(name, reg)
			if err != nil {
				protest("%s", err)
				continue
			}
			x, err := pat.EncodePattern(p)
			if err != nil {
				return err // Internal error
			}
			say("%s", JS(x))
			continue
		}

		if ss = rem.FindStringSubmatch(line); 0 < len(ss) {
			name := ss[2]
			if err := s.RemPattern(name); err != nil {
				protest("%s", err)
				continue
			}
			say("removed '%s'", name)
			continue
		}

		if ss = list.FindStringSubmatch(line); 0 < len(ss) {
			n := 0
			err := s.Patterns(func(name string, serialized interface{}) error {
				n++
				say("%s %s", name, JS(serialized))
				return nil
			})
			if err != nil {
				return err
			}
			say("%d patterns", n)
			continue
		}

		if ss = deftype.FindStringSubmatch(line); 0 < len(ss) {
			name := ss[1]
			fields := strings.Fields(ss[2])
			if err := s.PutType(name, fields); err != nil {
				protest("%s", err)
				continue
			}
			say("type '%s' with fields %s", name, JS(fields))
			continue
		}

		if ss = match.FindStringSubmatch(line); 0 < len(ss) {
			js := ss[1]
			x, err := dwim(js)
			if err != nil {
				protest("couldn't parse value %s: %s", js, err)
				continue
			}
			value, err := pat.ParseValue(x, reg)
			if err != nil {
				protest("%s", err)
				continue
			}
			matched := 0
			err = s.Patterns(func(name string, serialized interface{}) error {
				p, err := pat.ParsePattern(serialized, reg)
				if err != nil {
					return err
				}
				bs, err := pat.Match(p, value)
				if err != nil {
					protest("matching '%s': %s", name, err)
					return nil
				}
				if bs != nil {
					matched++
					say("%s %s", name, JS(bs))
				}
				return nil
			})
			if err != nil {
				return err
			}
			say("%d patterns matched", matched)
			continue
		}

		if ss = analyze.FindStringSubmatch(line); 0 < len(ss) {
			name := ss[1]
			p, err := s.GetPattern(name, reg)
			if err != nil {
				protest("%s", err)
				continue
			}
			a, err := tools.Analyze(p)
			if err != nil {
				protest("%s", err)
				continue
			}
			say("%s", JS(a))
			continue
		}

		if ss = load.FindStringSubmatch(line); 0 < len(ss) {
			filename := ss[1]
			c, err := tools.ReadCorpus(filename)
			if err != nil {
				protest("reading corpus '%s': %s", filename, err)
				continue
			}
			for name, fields := range c.Types {
				if err := s.PutType(name, fields); err != nil {
					protest("%s", err)
					continue
				}
			}
			reg, err := s.Registry()
			if err != nil {
				return err
			}
			n := 0
			for _, e := range c.Examples {
				if err := s.PutPattern(e.Title, e.Pattern, reg); err != nil {
					protest("couldn't store '%s': %s", e.Title, err)
					continue
				}
				n++
			}
			say("loaded %d patterns from '%s'", n, filename)
			continue
		}

		protest("unsupported command: %s", line)
	}
}

// dwim parses JSON without losing the int/float distinction.
func dwim(js string) (x interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	return Dwimjs(js), nil
}

func doc() string {
	return `
  put NAME PATTERN     Store the pattern (JSON) under that name
  get NAME             Print the stored pattern with that name
  rem NAME             Remove the stored pattern with that name
  list                 Print all stored patterns
  type NAME FIELD...   Define a record type
  match VALUE          Match the value (JSON) against all stored patterns
  analyze NAME         Print the analysis of the stored pattern
  load FILENAME        Store all patterns (and types) from a YAML corpus
  help                 Show this documentation
`
}
