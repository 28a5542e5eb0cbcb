package position

import "errors"

var (
	ErrPositionNotFound = errors.New("position template not found")
	ErrInvalidWeekday   = errors.New("invalid weekday")
)
