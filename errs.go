package yp

import "errors"

var (
	ErrNotFound     = errors.New("include file not found")
	ErrMergeType    = errors.New("merge type mismatch")
	ErrIncludeCycle = errors.New("include cycle")
	ErrQuery        = errors.New("query failed")
)
