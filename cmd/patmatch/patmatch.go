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

// Package main is a little command-line utility to invoke pattern matching.
//
//   patmatch -p '{"likes":"?liked"}' -in '{"likes":"tacos"}' -w '{"liked":"tacos"}'
//
// With -types, patterns can use record forms:
//
//   patmatch -types '{"Point":["x","y"]}' \
//     -p '{"%rec":{"type":"Point","pos":["?x","?y"]}}' \
//     -in '{"$type":"Point","x":3,"y":4}'
//
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"reflect"
	"runtime"
	"time"

	"github.com/patmalib/patma/interpreters/goja"
	"github.com/patmalib/patma/pat"
	. "github.com/patmalib/patma/util/testutil"

	"github.com/davecgh/go-spew/spew"
)

func main() {
	var (
		patternJS = flag.String("p", "", "pattern in JSON")
		valueJS   = flag.String("in", "", "candidate value in JSON")
		typesJS   = flag.String("types", "", "record types in JSON (name to field list)")
		wantJS    = flag.String("w", "", "wanted bindings in JSON")

		binds     = flag.Bool("binds", false, "print the names the pattern can bind")
		strict    = flag.Bool("strict", false, "strict binding analysis")
		translate = flag.Bool("translate", false, "print the compiled expression")
		target    = flag.String("target", "x", "target identifier for -translate and -eval")
		eval      = flag.Bool("eval", false, "match by compiling and evaluating instead")

		bench = flag.Int("bench", 0, "number of times to run (and report time)")

		verbose = flag.Bool("v", false, "verbosity")
	)

	flag.Parse()

	reg := pat.NewRegistry()
	if *typesJS != "" {
		var types map[string][]string
		if err := json.Unmarshal([]byte(*typesJS), &types); err != nil {
			panic(err)
		}
		for name, fields := range types {
			reg.Record(name, fields...)
		}
	}

	if *patternJS == "" {
		panic("need a pattern (-p)")
	}
	p, err := pat.ParsePattern(Dwimjs(*patternJS), reg)
	if err != nil {
		panic(err)
	}

	if *verbose {
		spew.Dump(p)
	}

	if *binds {
		ns, err := pat.Binds(p, *strict)
		if err != nil {
			panic(err)
		}
		fmt.Printf("%s\n", JS(ns.Sorted()))
	}

	if *translate {
		src, err := pat.Translate(p, *target)
		if err != nil {
			panic(err)
		}
		fmt.Printf("%s\n", src)
	}

	if *valueJS == "" {
		return
	}
	value, err := pat.ParseValue(Dwimjs(*valueJS), reg)
	if err != nil {
		panic(err)
	}

	match := func() (pat.Bindings, error) {
		return pat.Match(p, value)
	}
	if *eval {
		c, err := goja.NewEvaluator(reg).Compile(p, *target)
		if err != nil {
			panic(err)
		}
		ctx := context.Background()
		match = func() (pat.Bindings, error) {
			return c.Eval(ctx, value)
		}
	}

	if 0 < *bench {
		var stats runtime.MemStats
		runtime.ReadMemStats(&stats)
		allocs := stats.TotalAlloc
		then := time.Now()
		for i := 0; i < *bench; i++ {
			if _, err := match(); err != nil {
				panic(err)
			}
		}
		elapsed := time.Now().Sub(then)
		meanNanos := elapsed.Nanoseconds() / int64(*bench)

		runtime.ReadMemStats(&stats)
		allocated := (stats.TotalAlloc - allocs) / uint64(*bench)

		log.Printf("%d iterations, %d mean ns/Match, %d mean bytes allocated per Match", *bench, meanNanos, allocated)
	}

	bs, err := match()
	if err != nil {
		panic(err)
	}

	if *wantJS != "" {
		x, err := pat.Canon(Dwimjs(*wantJS))
		if err != nil {
			panic(err)
		}
		m, is := x.(map[string]interface{})
		if !is {
			panic("wanted bindings must be a map")
		}
		want := pat.Bindings(m)
		if bs == nil {
			fmt.Printf("false\n")
			return
		}
		eq, err := Subset(want, bs, *verbose)
		if err != nil {
			panic(err)
		}
		if eq {
			eq, err = Subset(bs, want, *verbose)
			if err != nil {
				panic(err)
			}
		}
		fmt.Printf("%v\n", eq)
		return
	}

	if bs == nil {
		fmt.Printf("null\n")
		return
	}
	fmt.Printf("%s\n", JS(bs))
}

// Subset tries to check that Bindings x is a subset of Bindings y.
//
// Uses reflect.DeepEqual to do the hard work.
func Subset(x, y pat.Bindings, verbose bool) (bool, error) {
	for p, bx := range x {
		by, have := y[p]
		if !have {
			return false, nil
		}
		bx, err := pat.Canon(bx)
		if err != nil {
			return false, err
		}
		if !reflect.DeepEqual(bx, by) {
			if verbose {
				fmt.Printf("disagreement at %s: %s != %s\n", p, JS(bx), JS(by))
			}
			return false, nil
		}
	}
	return true, nil
}
