package generation

import "fmt"

// GenerationError indicates the provider call itself failed for an
// operation that propagates errors to the caller.
type GenerationError struct {
	Op      string
	Message string
	Cause   error
}

func (e *GenerationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// ShapeError indicates the provider responded, but the response was not
// valid JSON or did not match the operation's declared output shape. It is
// treated identically to a generation failure for the operation.
type ShapeError struct {
	Op      string
	Message string
	Cause   error
}

func (e *ShapeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *ShapeError) Unwrap() error {
	return e.Cause
}
