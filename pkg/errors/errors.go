package errors

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrEmptyKey     = errors.New("empty key")
	ErrInvalidData  = errors.New("invalid data type")
	ErrUnauthorized = errors.New("unauthorized")
	ErrStopped      = errors.New("component stopped")
	ErrUnavailable  = errors.New("backend unavailable")
)
