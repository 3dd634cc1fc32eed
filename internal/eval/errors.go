package eval

import "fmt"

// FatalError marks an unrecoverable runtime condition: value-stack
// exhaustion or integer division by zero (spec §7).
// Run recovers these at the top level and returns them as an error;
// nothing below Run ever needs to catch one.
type FatalError struct {
	Msg string
}

func (e *FatalError) Error() string { return e.Msg }

// InternalError marks a violation of an invariant the parser's type
// checker is supposed to guarantee — e.g. a Cast between types other
// than Integer→Float, or a comparison over String/Void operands that
// should have been rejected before the evaluator ever saw them (spec
// §7 "Type error in evaluation"). It is always a bug in the AST
// builder or parser, never a condition user input can trigger
// directly.
type InternalError struct {
	Msg string
}

func (e *InternalError) Error() string { return e.Msg }

func fatalf(format string, args ...any) {
	panic(&FatalError{Msg: fmt.Sprintf(format, args...)})
}

func internalf(format string, args ...any) {
	panic(&InternalError{Msg: fmt.Sprintf(format, args...)})
}
