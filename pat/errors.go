package pat

// These errors are user errors, not internal errors.

import (
	"fmt"
	"strings"
)

// MalformedPattern occurs at construction time, when a pattern node
// can't be built at all (say, more positional Instance sub-patterns
// than the record type declares fields).
type MalformedPattern struct {
	Reason string
}

func (e *MalformedPattern) Error() string {
	return "malformed pattern: " + e.Reason
}

// InconsistentBindings occurs in strict binding analysis when an arm
// of an Alternatives binds a different set of names than the first
// arm does.
type InconsistentBindings struct {
	// Arm is the index of the offending arm.
	Arm int

	// Diff is the sorted symmetric difference of the two name
	// sets.
	Diff []string
}

func (e *InconsistentBindings) Error() string {
	return fmt.Sprintf("alternatives 0 and %d bind inconsistent sets of variables (difference: %s)",
		e.Arm, strings.Join(e.Diff, ", "))
}

// DuplicateBindings occurs in strict binding analysis when one
// pattern would bind the same name more than once.
type DuplicateBindings struct {
	// Where names the offending variant ("sequence", "mapping",
	// "instance", or "capture").
	Where string

	// Names are the repeated names, sorted.
	Names []string
}

func (e *DuplicateBindings) Error() string {
	return fmt.Sprintf("duplicate bindings in %s pattern: %s",
		e.Where, strings.Join(e.Names, ", "))
}

// DepthExceeded occurs when a pattern tree nests deeper than the
// configured limit.  Better than overflowing the stack.
type DepthExceeded struct {
	Limit int
}

func (e *DepthExceeded) Error() string {
	return fmt.Sprintf("pattern nested deeper than %d", e.Limit)
}

// UnsupportedCandidate occurs when a value can't be reflected on:
// Canon met something outside the value model, or Translate met a
// constant it can't render as a literal.  Distinct from a normal "no
// match", which is never an error.
type UnsupportedCandidate struct {
	Value interface{}
}

func (e *UnsupportedCandidate) Error() string {
	return fmt.Sprintf("unsupported value of type %T", e.Value)
}

// UnknownTypeName occurs when a pattern in serialized form names a
// type that the given Registry doesn't know.
type UnknownTypeName struct {
	Name string
}

func (e *UnknownTypeName) Error() string {
	return `unknown type "` + e.Name + `"`
}

// UnknownPatternType is an error that includes the thing that's
// causing the trouble.
type UnknownPatternType struct {
	Pattern interface{}
}

func (e *UnknownPatternType) Error() string {
	return "unknown pattern type"
}
