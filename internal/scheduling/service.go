package scheduling

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Service exposes the scheduling operations used by the HTTP layer.
type Service interface {
	// Availability returns the slot grid for the date with per-slot
	// availability. Weekend and past dates yield an empty grid.
	Availability(ctx context.Context, date string) ([]Slot, error)

	// Book reserves a slot. At most one non-cancelled appointment may exist
	// per (date, time); a losing concurrent booking gets ErrSlotTaken.
	Book(ctx context.Context, req BookingRequest) (*Appointment, error)

	// ListMine returns the owner's appointments ordered by date then time.
	ListMine(ctx context.Context, owner string) ([]*Appointment, error)

	// Cancel marks the appointment cancelled and frees its slot. Unknown ids
	// and already-cancelled appointments both answer ErrNotFound; a caller
	// who is not the owner gets ErrForbidden.
	Cancel(ctx context.Context, owner, id string) error

	// Confirm transitions a pending appointment to confirmed.
	Confirm(ctx context.Context, id string) (*Appointment, error)
}

// The bookable grid: weekday mornings 09:00-12:30 and afternoons 14:00-17:30,
// 30-minute steps, last starts at 12:00 and 17:00.
var gridWindows = [][2]string{
	{"09:00", "12:00"},
	{"14:00", "17:00"},
}

const gridStep = 30 * time.Minute

// GridTimes returns the ordered slot start times for a working day.
func GridTimes() []string {
	var out []string
	for _, w := range gridWindows {
		start, _ := time.Parse(TimeLayout, w[0])
		end, _ := time.Parse(TimeLayout, w[1])
		for t := start; !t.After(end); t = t.Add(gridStep) {
			out = append(out, t.Format(TimeLayout))
		}
	}
	return out
}

// ParseDate validates an ISO calendar date.
func ParseDate(date string) (time.Time, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(date))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidInput)
	}
	return d, nil
}

// Bookable reports whether the date has a non-empty grid relative to today:
// weekdays that are today or later.
func Bookable(date, today time.Time) bool {
	if date.Weekday() == time.Saturday || date.Weekday() == time.Sunday {
		return false
	}
	return !date.Before(today.Truncate(24 * time.Hour))
}

func validTime(t string) bool {
	for _, gt := range GridTimes() {
		if gt == t {
			return true
		}
	}
	return false
}

// ValidateBooking normalizes the request in place and checks it against the
// grid rules. Store implementations call it before reserving.
func ValidateBooking(req *BookingRequest, today time.Time) error {
	req.Owner = strings.TrimSpace(req.Owner)
	req.Date = strings.TrimSpace(req.Date)
	req.Time = strings.TrimSpace(req.Time)
	req.AppointmentAddress = strings.TrimSpace(req.AppointmentAddress)
	req.ContactPerson = strings.TrimSpace(req.ContactPerson)
	req.ContactPhone = strings.TrimSpace(req.ContactPhone)
	req.IntercomName = strings.TrimSpace(req.IntercomName)

	if req.Owner == "" {
		return fmt.Errorf("%w: owner is required", ErrInvalidInput)
	}
	d, err := ParseDate(req.Date)
	if err != nil {
		return err
	}
	if !Bookable(d, today) {
		return fmt.Errorf("%w: date is not bookable", ErrInvalidInput)
	}
	if !validTime(req.Time) {
		return fmt.Errorf("%w: time is not on the slot grid", ErrInvalidInput)
	}
	for field, value := range map[string]string{
		"appointment_address": req.AppointmentAddress,
		"contact_person":      req.ContactPerson,
		"contact_phone":       req.ContactPhone,
	} {
		if value == "" {
			return fmt.Errorf("%w: %s is required", ErrInvalidInput, field)
		}
	}
	if req.DurationMinutes == 0 {
		req.DurationMinutes = DefaultDurationMinutes
	}
	if req.DurationMinutes < 0 || req.DurationMinutes > 240 {
		return fmt.Errorf("%w: duration out of range", ErrInvalidInput)
	}
	return nil
}

func slotKey(date, tm string) string {
	return date + "T" + tm
}
