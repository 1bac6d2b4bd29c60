package schema

import "errors"

var (
	ErrValidation = errors.New("schema validation failed")
	ErrCompile    = errors.New("could not compile schema")
	ErrNotFound   = errors.New("schema not found")
)
