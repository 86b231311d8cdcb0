package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicateUsername = errors.New("username already exists")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInvalidInput      = errors.New("invalid input")
	ErrEventConflict     = errors.New("event conflicts with another event")
	ErrLockedOut         = errors.New("too many failed login attempts")
)
