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

// Package pat implements structural pattern matching.
//
// A Pattern is a tree of eight node variants: constants,
// alternatives, variables, type-annotated patterns, fixed-length
// sequences, keyed mappings, structured-record instances, and
// captures.  A front-end (a compiler, a config file, a tool) builds
// the tree; this package supplies three independent views over it:
//
//	Match(p, x)       test a value, extract named values on success
//	Binds(p, strict)  the names p binds, with conflict checking
//	Translate(p, t)   compile p to a boolean test expression
//
// For example, matching the pattern a compiler would build for
// "[x, 42]" against the value [1, 42] gives the bindings {"x": 1}.
// Matching it against [1, 2] or against "ab" gives "no match", which
// is a nil result and never an error.
//
// Candidate values are JSON-shaped (nil, bool, int64, float64,
// string, []interface{}, map[string]interface{}) plus Records, which
// expose a type tag and per-field access.  Canon normalizes arbitrary
// Go numerics into this model.  One deliberate wrinkle in type
// conformance: an int conforms where a float is expected, and not
// the other way around.  See Is.
//
// Translate emits ECMAScript expressions for embedding in generated
// code; the fragments call the helpers in Prelude, capture via
// assignment expressions in the enclosing scope, and short-circuit in
// the same order Match evaluates.  Constants of composite types
// (lists, mappings, records) match but do not translate.
//
// Trees are never modified after construction, so the three
// operations are safe to call concurrently on a shared tree.
// Recursion is depth-limited (DefaultMaxDepth) with a DepthExceeded
// error rather than an overflowing stack.
package pat
