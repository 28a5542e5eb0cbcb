package schedule

import "errors"

var (
	ErrNoActiveTemplates = errors.New("site has no active position templates")
	ErrInvalidMonth      = errors.New("month must be between 1 and 12")
)
