package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	// ErrDuplicatePair is the unique (session_id, student_email) index
	// rejecting a second booking for the same pair.
	ErrDuplicatePair = errors.New("booking already exists for this session and student")
)
