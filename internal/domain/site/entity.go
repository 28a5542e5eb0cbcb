package site

import "time"

// Site is a client location where guards are posted.
type Site struct {
	ID         string
	TenantID   string
	Name       string
	Code       string
	Address    *string
	ClientName *string
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
