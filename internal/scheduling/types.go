package scheduling

import (
	"errors"
	"time"
)

// Appointment statuses. Appointments are created pending, confirmed by staff,
// and cancelled by their owner.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

// DefaultDurationMinutes is applied when a booking request leaves the
// duration unset.
const DefaultDurationMinutes = 60

// DateLayout and TimeLayout are the wire formats for appointment dates and
// slot times.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

var (
	ErrNotFound     = errors.New("scheduling: appointment not found")
	ErrSlotTaken    = errors.New("scheduling: slot already taken")
	ErrForbidden    = errors.New("scheduling: not the appointment owner")
	ErrInvalidInput = errors.New("scheduling: invalid input")
)

// Appointment is a reserved on-site visit slot.
type Appointment struct {
	ID                 string    `json:"id"`
	Owner              string    `json:"owner"`
	Date               string    `json:"date"`
	Time               string    `json:"time"`
	DurationMinutes    int       `json:"duration_minutes"`
	Status             string    `json:"status"`
	AppointmentAddress string    `json:"appointment_address"`
	ContactPerson      string    `json:"contact_person"`
	ContactPhone       string    `json:"contact_phone"`
	IntercomName       string    `json:"intercom_name,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// Slot is one bookable grid position for a date.
type Slot struct {
	Time      string `json:"time"`
	Available bool   `json:"available"`
}

// BookingRequest carries the fields an agency submits to reserve a slot.
type BookingRequest struct {
	Owner              string
	Date               string
	Time               string
	DurationMinutes    int
	AppointmentAddress string
	ContactPerson      string
	ContactPhone       string
	IntercomName       string
}
