package audit

import "errors"

var ErrInvalidPayload = errors.New("audit payload must be a JSON object")
