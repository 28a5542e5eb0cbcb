package access

import "errors"

var (
	ErrForbidden   = errors.New("insufficient permissions")
	ErrInvalidRole = errors.New("invalid role")
)
