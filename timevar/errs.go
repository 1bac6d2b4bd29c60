package timevar

import "errors"

var (
	ErrBadName = errors.New("bad time variable")
	ErrBadTime = errors.New("bad time value")
)
