package booking

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

// State of the booking flow.
type State int

const (
	StateIdle State = iota
	StateDateSelected
	StateTimeSelected
	StateFormEditing
	StateSubmitting
	StateConfirmed
	StateConflictRetry
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDateSelected:
		return "date_selected"
	case StateTimeSelected:
		return "time_selected"
	case StateFormEditing:
		return "form_editing"
	case StateSubmitting:
		return "submitting"
	case StateConfirmed:
		return "confirmed"
	case StateConflictRetry:
		return "conflict_retry"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Coordinator drives one booking attempt from date pick to confirmation. It
// owns the flow state; the availability provider, session and appointment
// store are shared with the rest of the client.
type Coordinator struct {
	client       *Client
	session      *SessionStore
	availability *AvailabilityProvider
	appointments *AppointmentStore
	now          func() time.Time

	mu     sync.Mutex
	state  State
	date   string
	slot   string
	form   Form
	notice string
	booked *Appointment
}

// NewCoordinator wires the flow over its collaborators.
func NewCoordinator(client *Client, session *SessionStore, availability *AvailabilityProvider, appointments *AppointmentStore) *Coordinator {
	return &Coordinator{
		client:       client,
		session:      session,
		availability: availability,
		appointments: appointments,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// State returns the current flow state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Notice returns the user-facing message set by the last transition, such as
// the conflict explanation.
func (c *Coordinator) Notice() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.notice
}

// Selection returns the picked date and time so far.
func (c *Coordinator) Selection() (date, slot string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.date, c.slot
}

// Booked returns the confirmed appointment once the flow reaches
// StateConfirmed.
func (c *Coordinator) Booked() *Appointment {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.booked == nil {
		return nil
	}
	cp := *c.booked
	return &cp
}

// Reset returns the flow to idle, dropping any picks and form content.
func (c *Coordinator) Reset() {
	c.mu.Lock()
	c.state = StateIdle
	c.date = ""
	c.slot = ""
	c.form = Form{}
	c.notice = ""
	c.booked = nil
	c.mu.Unlock()
	c.availability.Clear()
}

// SelectDate picks a calendar day. Unselectable days are ignored without a
// state change. A new pick clears any previously chosen time and triggers an
// availability fetch for the new date.
func (c *Coordinator) SelectDate(ctx context.Context, day Day) error {
	if !day.SelectableOn(c.now()) {
		return nil
	}
	date := day.Date.Format("2006-01-02")

	c.mu.Lock()
	c.date = date
	c.slot = ""
	c.notice = ""
	c.state = StateDateSelected
	c.mu.Unlock()

	c.availability.Select(date)
	if err := c.availability.Fetch(ctx); err != nil {
		if errors.Is(err, ErrAuth) {
			c.failAuth()
		}
		return err
	}
	return nil
}

// SelectTime picks a slot from the current grid. Slots the grid lists as
// taken, and times not on the grid at all, are ignored.
func (c *Coordinator) SelectTime(slot string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateDateSelected && c.state != StateTimeSelected && c.state != StateConflictRetry {
		return
	}
	if !c.availability.SlotAvailable(slot) {
		return
	}
	c.slot = slot
	c.notice = ""
	c.state = StateTimeSelected
}

// EditForm moves into form editing with the given content. Valid from a
// chosen time, or from within editing itself as the user types.
func (c *Coordinator) EditForm(form Form) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateTimeSelected && c.state != StateFormEditing && c.state != StateFailed {
		return
	}
	c.form = form
	c.state = StateFormEditing
}

// CancelEdit abandons the picked time and any unsaved form content, returning
// to the date view. The current grid is kept; nothing is fetched.
func (c *Coordinator) CancelEdit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateTimeSelected && c.state != StateFormEditing {
		return
	}
	c.slot = ""
	c.form = Form{}
	c.notice = ""
	c.state = StateDateSelected
}

// Submit validates the form locally and sends the booking. The outcome
// decides the next state:
//
//   - success: the appointment is recorded (Booked), the list refreshed and
//     the same date's grid re-fetched; the flow settles back on
//     StateDateSelected with the form cleared so another slot can be booked;
//   - conflict: StateConflictRetry with the time cleared, a fresh grid and a
//     user notice. Not an error;
//   - auth loss: StateFailed with the session cleared;
//   - anything else: StateFailed with the form kept for retry.
func (c *Coordinator) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateFormEditing {
		c.mu.Unlock()
		return nil
	}
	if msg := validateForm(c.form); msg != "" {
		c.mu.Unlock()
		return &ValidationError{Message: msg}
	}
	date, slot, form := c.date, c.slot, c.form
	c.state = StateSubmitting
	c.mu.Unlock()

	appt, err := c.client.Book(ctx, date, slot, form)
	switch {
	case err == nil:
		c.mu.Lock()
		c.state = StateConfirmed
		c.booked = appt
		c.notice = ""
		c.mu.Unlock()
		// Best-effort refreshes; the booking already succeeded.
		_ = c.appointments.Refresh(ctx)
		_ = c.availability.Fetch(ctx)
		c.mu.Lock()
		c.slot = ""
		c.form = Form{}
		c.state = StateDateSelected
		c.mu.Unlock()
		return nil

	case errors.Is(err, ErrConflict):
		c.mu.Lock()
		c.slot = ""
		c.state = StateConflictRetry
		c.notice = "L'orario scelto è stato appena prenotato da un'altra agenzia. Scegli un altro orario."
		c.mu.Unlock()
		_ = c.availability.Fetch(ctx)
		return nil

	case errors.Is(err, ErrAuth):
		c.failAuth()
		return err

	default:
		c.mu.Lock()
		c.state = StateFailed
		c.notice = "Invio non riuscito. Riprova."
		c.mu.Unlock()
		return err
	}
}

// CancelAppointment cancels through the appointment store. Auth loss aborts
// the flow the same way a failed submit does.
func (c *Coordinator) CancelAppointment(ctx context.Context, id string) error {
	err := c.appointments.Cancel(ctx, id)
	if errors.Is(err, ErrAuth) {
		c.failAuth()
	}
	return err
}

// failAuth tears down the session and parks the flow; the user has to sign in
// again before anything else.
func (c *Coordinator) failAuth() {
	c.session.Logout()
	c.mu.Lock()
	c.state = StateFailed
	c.notice = "Sessione scaduta. Accedi di nuovo."
	c.mu.Unlock()
}

// RetryForm returns from a failed submit to editing, with the form intact.
func (c *Coordinator) RetryForm() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateFailed {
		return
	}
	c.state = StateFormEditing
}

func validateForm(f Form) string {
	missing := make([]string, 0, 3)
	if strings.TrimSpace(f.AppointmentAddress) == "" {
		missing = append(missing, "appointment_address")
	}
	if strings.TrimSpace(f.ContactPerson) == "" {
		missing = append(missing, "contact_person")
	}
	if strings.TrimSpace(f.ContactPhone) == "" {
		missing = append(missing, "contact_phone")
	}
	if len(missing) == 0 {
		return ""
	}
	return "required: " + strings.Join(missing, ", ")
}
