package user

import "errors"

var (
	ErrUserNotFound          = errors.New("user not found")
	ErrUserEmailExists       = errors.New("email already registered")
	ErrInvalidPasswordLength = errors.New("password must be at least 8 characters")
	ErrCannotChangeOwnRole   = errors.New("cannot change your own role")
	ErrLastOwner             = errors.New("tenant must keep at least one owner")
)
