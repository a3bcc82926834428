package apperrors

import "errors"

var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrNotFound       = errors.New("not found")
	ErrNoActiveWindow = errors.New("no active feast window")
	ErrUnknownBackend = errors.New("unknown store backend")
)
