package booking

import "errors"

var (
	ErrBookingNotFound = errors.New("booking not found")
	ErrInvalidSchedule = errors.New("booking date or time is invalid")
)
