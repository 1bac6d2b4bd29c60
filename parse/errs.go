package parse

import (
	"errors"
	"fmt"
)

var (
	ErrParse    = errors.New("parse error")
	ErrKeyType  = fmt.Errorf("%w: mapping key must be a scalar", ErrParse)
	ErrNodeType = fmt.Errorf("%w: unsupported node value", ErrParse)
)
