package hhr

import (
	"fmt"
)

// ErrorKind classifies why a query result could not be read.
type ErrorKind int

const (
	// A numeric field did not follow the number grammar.
	MalformedNumber ErrorKind = iota + 1

	// A line matched no pattern valid at its position in the report.
	UnrecognizedLine

	// The query and template sides of an alignment have different lengths,
	// or one side is missing.
	MisalignedBlock

	// Coordinates printed next to an alignment disagree with its residues
	// or with the ranges declared in the hit table.
	CoordinateMismatch

	// A header was read but no usable hits follow it.
	IncompleteReport

	// The hit table and the alignment blocks cannot be reconciled.
	StructuralInvariantViolation
)

func (k ErrorKind) String() string {
	switch k {
	case MalformedNumber:
		return "MalformedNumber"
	case UnrecognizedLine:
		return "UnrecognizedLine"
	case MisalignedBlock:
		return "MisalignedBlock"
	case CoordinateMismatch:
		return "CoordinateMismatch"
	case IncompleteReport:
		return "IncompleteReport"
	case StructuralInvariantViolation:
		return "StructuralInvariantViolation"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error is returned for every fatal condition found while reading a query
// result. Line is the 1-based line of the input where the problem was found,
// or 0 if it only became apparent once the whole query result was read.
//
// Use errors.Is with one of the Err* values to test for a kind:
//
//	if errors.Is(err, hhr.ErrIncompleteReport) { ... }
type Error struct {
	Kind ErrorKind
	Line int
	Msg  string
}

// Values usable as targets of errors.Is. Only the Kind is compared.
var (
	ErrMalformedNumber              = &Error{Kind: MalformedNumber}
	ErrUnrecognizedLine             = &Error{Kind: UnrecognizedLine}
	ErrMisalignedBlock              = &Error{Kind: MisalignedBlock}
	ErrCoordinateMismatch           = &Error{Kind: CoordinateMismatch}
	ErrIncompleteReport             = &Error{Kind: IncompleteReport}
	ErrStructuralInvariantViolation = &Error{Kind: StructuralInvariantViolation}
)

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s on line %d: %s", e.Kind, e.Line, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func errorf(kind ErrorKind, format string, v ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, v...)}
}

// atLine attaches a line number to err if it is an *Error without one.
func atLine(err error, line int) error {
	if e, ok := err.(*Error); ok && e.Line == 0 {
		e.Line = line
	}
	return err
}
