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

// Package goja runs compiled patterns using Goja, which is a Go
// implementation of ECMAScript 5.1+.
//
// See https://github.com/dop251/goja.
//
// An Evaluator compiles a pattern once (pat.Translate plus
// pat.Prelude) and then evaluates the resulting program against any
// number of candidate values.  Values cross into ECMAScript via
// pat.EncodeValue and bindings come back out via pat.ParseValue, so
// records survive the round trip.
//
// The host language has one number type, so a compiled integer test
// accepts any integral number.  The matcher is stricter.  See
// TestEvalNumericDivergence.
package goja

import (
	"context"
	"errors"
	"fmt"

	"github.com/patmalib/patma/pat"

	"github.com/dop251/goja"
)

var (
	// InterruptedMessage is the string value of Interrupted.
	InterruptedMessage = "RuntimeError: timeout"

	// Interrupted is returned by Eval if the execution is
	// interrupted.
	Interrupted = errors.New(InterruptedMessage)
)

// Evaluator compiles patterns to Goja programs and runs them.
type Evaluator struct {
	// Registry resolves "$type" objects in exported bindings back
	// into records.  If nil, pat.Builtin is used.
	Registry *pat.Registry
}

func NewEvaluator(reg *pat.Registry) *Evaluator {
	return &Evaluator{Registry: reg}
}

// Compiled is a pattern compiled for repeated evaluation.
type Compiled struct {
	// Target is the identifier the candidate value is bound to.
	Target string

	// Names are the names the pattern can bind, from the lax
	// analysis.
	Names []string

	// Source is the translated expression (without the prelude).
	// Handy for debugging.
	Source string

	program *goja.Program
	reg     *pat.Registry
}

// Compile translates the pattern and compiles it together with the
// prelude.  The target must be a plain identifier since Eval binds
// the candidate value to it.
//
// The program is compiled in non-strict mode so that the capturing
// assignments in the translated expression create globals that Eval
// can read back.
func (e *Evaluator) Compile(p pat.Pattern, target string) (*Compiled, error) {
	src, err := pat.Translate(p, target)
	if err != nil {
		return nil, err
	}

	ns, err := pat.Binds(p, false)
	if err != nil {
		return nil, err
	}

	full := pat.Prelude + "\n(" + src + ");\n"
	program, err := goja.Compile("", full, false)
	if err != nil {
		return nil, fmt.Errorf("pattern compilation: %s", err)
	}

	reg := e.Registry
	if reg == nil {
		reg = pat.Builtin
	}

	return &Compiled{
		Target:  target,
		Names:   ns.Sorted(),
		Source:  src,
		program: program,
		reg:     reg,
	}, nil
}

// Eval runs the compiled pattern against the candidate value.
//
// As with pat.Match, a nil Bindings with a nil error means the value
// didn't match.  Each call gets a fresh runtime, so captures from one
// evaluation never leak into the next.
func (c *Compiled) Eval(ctx context.Context, value interface{}) (pat.Bindings, error) {
	encoded, err := pat.EncodeValue(value)
	if err != nil {
		return nil, err
	}

	vm := goja.New()
	vm.Set(c.Target, encoded)

	// We want to make sure that the following goroutine is
	// terminated as soon as possible.
	ictx, cancel := context.WithCancel(ctx)
	go func() {
		<-ictx.Done()
		vm.Interrupt(InterruptedMessage)
	}()

	v, err := vm.RunProgram(c.program)
	cancel()

	if err != nil {
		if _, is := err.(*goja.InterruptedError); is {
			return nil, Interrupted
		}
		return nil, err
	}

	if !v.ToBoolean() {
		return nil, nil
	}

	bs := pat.NewBindings()
	for _, name := range c.Names {
		gv := vm.Get(name)
		if gv == nil || goja.IsUndefined(gv) {
			// A name from an arm that didn't run.
			continue
		}
		x, err := pat.ParseValue(gv.Export(), c.reg)
		if err != nil {
			return nil, err
		}
		bs[name] = x
	}

	return bs, nil
}

// Eval compiles and runs the pattern in one step.  For repeated
// evaluation, use Compile once and Eval on the result.
func (e *Evaluator) Eval(ctx context.Context, p pat.Pattern, target string, value interface{}) (pat.Bindings, error) {
	c, err := e.Compile(p, target)
	if err != nil {
		return nil, err
	}
	return c.Eval(ctx, value)
}
