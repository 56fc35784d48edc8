package errors

import "errors"

var (
	ErrNotFound  = errors.New("note not found")
	ErrInvalidID = errors.New("invalid note ID")
)
