package ir

import "errors"

var (
	ErrConvert = errors.New("conversion error")
)
