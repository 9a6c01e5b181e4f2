package domain

import "errors"

var (
	ErrNotFound    = errors.New("enquiry not found")
	ErrUnavailable = errors.New("enquiry store unavailable")
)
