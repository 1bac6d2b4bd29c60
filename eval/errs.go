package eval

import (
	"errors"
)

var (
	ErrUnbound   = errors.New("unbound variable")
	ErrMalformed = errors.New("malformed substitution")
	ErrBadCast   = errors.New("bad cast value")
)

// UnboundVariableError reports a placeholder name that could not be
// resolved. Err holds the underlying cause, if any.
type UnboundVariableError struct {
	Name string
	Err  error
}

func (e *UnboundVariableError) Error() string {
	return "[UNBOUND VARIABLE] " + e.Name
}

func (e *UnboundVariableError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrUnbound}
	}
	return []error{ErrUnbound, e.Err}
}
