package errors

import "errors"

var (
	ErrNotFound  = errors.New("material not found")
	ErrInvalidID = errors.New("invalid material ID")
)
