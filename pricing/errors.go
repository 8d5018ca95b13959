package pricing

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError is a structural input violation found before integration.
type ValidationError struct {
	Field string
	Msg   string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

// ValidationErrors collects every violation of one product so a batch can
// report them all and move on.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, v := range e {
		msgs[i] = v.Error()
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Prefix qualifies every field with p, e.g. "names[2]".
func (e ValidationErrors) Prefix(p string) ValidationErrors {
	out := make(ValidationErrors, len(e))
	for i, v := range e {
		out[i] = ValidationError{Field: p + "." + v.Field, Msg: v.Msg}
	}
	return out
}

// OrNil returns nil for an empty list so callers can return it as an error.
func (e ValidationErrors) OrNil() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

var (
	ErrNaN           = errors.New("NaN in result")
	ErrNoBracket     = errors.New("failed to bracket a root")
	ErrMaxIterations = errors.New("maximum iterations exceeded")
)

// ComputationError is a numeric failure during integration or root finding.
type ComputationError struct {
	Op  string
	Err error
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ComputationError) Unwrap() error { return e.Err }
