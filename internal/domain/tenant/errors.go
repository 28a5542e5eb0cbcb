package tenant

import "errors"

var (
	ErrTenantNotFound   = errors.New("tenant not found")
	ErrTenantSlugExists = errors.New("tenant slug already exists")
	ErrTenantInactive   = errors.New("tenant is inactive")
)
