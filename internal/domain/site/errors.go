package site

import "errors"

var (
	ErrSiteNotFound   = errors.New("site not found")
	ErrSiteCodeExists = errors.New("site with this code already exists")
	ErrSiteInactive   = errors.New("site is inactive")
)
