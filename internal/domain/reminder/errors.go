package reminder

import "errors"

var (
	ErrDuplicateReminder = errors.New("reminder already scheduled for this booking")
	ErrInvalidType       = errors.New("reminder type must be 24h or 1h")
)
