// Package patma provides structural pattern matching over JSON-like
// values: match a pattern against a value to get bindings, analyze
// what a pattern can bind, or compile a pattern to an ECMAScript
// expression.
//
// The core code is in package 'pat', and some command-line tools are in `cmd`.
package patma
