package booking

import (
	"fmt"
	"strings"
	"time"
)

// Context is the read-only booking view the notification subsystem works from:
// the booking joined with its service package and provider.
type Context struct {
	ID           int64   `gorm:"column:id" json:"id"`
	UserID       int64   `gorm:"column:user_id" json:"user_id"`
	ProviderID   int64   `gorm:"column:provider_id" json:"provider_id"`
	PetName      string  `gorm:"column:pet_name" json:"pet_name"`
	ServiceName  string  `gorm:"column:service_name" json:"service_name"`
	ProviderName string  `gorm:"column:provider_name" json:"provider_name"`
	BookingDate  string  `gorm:"column:booking_date" json:"booking_date"`
	BookingTime  string  `gorm:"column:booking_time" json:"booking_time"`
	TotalAmount  float64 `gorm:"column:total_amount" json:"total_amount"`
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999-07:00",
}

var timeLayouts = []string{
	"15:04:05",
	"15:04",
	"3:04 PM",
	"3:04PM",
	"15:04:05.999999",
}

// Date parses booking_date. Drivers hand DATE columns back either as "2006-01-02"
// or as a full timestamp; only the calendar date is kept.
func (c *Context) Date() (time.Time, error) {
	raw := strings.TrimSpace(c.BookingDate)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: date %q", ErrInvalidSchedule, c.BookingDate)
}

// ClockTime parses booking_time into hours and minutes.
func (c *Context) ClockTime() (hour, minute int, err error) {
	raw := strings.TrimSpace(c.BookingTime)
	if idx := strings.Index(raw, "T"); idx >= 0 {
		raw = raw[idx+1:]
	}
	if len(raw) > 8 && raw[2] == ':' && raw[5] == ':' {
		raw = raw[:8]
	}
	for _, layout := range timeLayouts {
		if t, perr := time.Parse(layout, raw); perr == nil {
			return t.Hour(), t.Minute(), nil
		}
	}
	return 0, 0, fmt.Errorf("%w: time %q", ErrInvalidSchedule, c.BookingTime)
}

// DateTime combines booking_date and booking_time in loc.
func (c *Context) DateTime(loc *time.Location) (time.Time, error) {
	d, err := c.Date()
	if err != nil {
		return time.Time{}, err
	}
	h, m, err := c.ClockTime()
	if err != nil {
		return time.Time{}, err
	}
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(d.Year(), d.Month(), d.Day(), h, m, 0, 0, loc), nil
}

// FormattedDate renders the date as "March 3, 2026", falling back to the raw value.
func (c *Context) FormattedDate() string {
	d, err := c.Date()
	if err != nil {
		return c.BookingDate
	}
	return d.Format("January 2, 2006")
}

// FormattedTime renders the time as "10:00 AM", falling back to the raw value.
func (c *Context) FormattedTime() string {
	h, m, err := c.ClockTime()
	if err != nil {
		return c.BookingTime
	}
	return time.Date(2000, 1, 1, h, m, 0, 0, time.UTC).Format("3:04 PM")
}
