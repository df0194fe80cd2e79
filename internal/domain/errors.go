package domain

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidURL          = errors.New("invalid url")
	ErrInvalidCode         = errors.New("invalid code")
	ErrCodeConflict        = errors.New("code already exists")
	ErrForbidden           = errors.New("owner token mismatch")
	ErrGenerationExhausted = errors.New("code generation exhausted")
	ErrCodeSpaceExhausted  = errors.New("code space exhausted")
)
