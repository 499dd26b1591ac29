package scheduling

import (
	"context"
	"sort"
	"sync"
	"time"

	"spaziopratiche.org/internal/ids"
)

// InMemory is the in-process scheduling engine. A single mutex makes the
// check-and-reserve in Book atomic.
type InMemory struct {
	mu           sync.Mutex
	appointments map[string]*Appointment
	reserved     map[string]string // slotKey -> appointment id, non-cancelled only
	now          func() time.Time
}

var _ Service = (*InMemory)(nil)

// NewInMemory creates an empty scheduling service.
func NewInMemory() *InMemory {
	return &InMemory{
		appointments: make(map[string]*Appointment),
		reserved:     make(map[string]string),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// SetClock overrides the time source. Only intended for test use.
func (s *InMemory) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *InMemory) Availability(ctx context.Context, date string) ([]Slot, error) {
	d, err := ParseDate(date)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !Bookable(d, s.now()) {
		return []Slot{}, nil
	}
	date = d.Format(DateLayout)
	slots := make([]Slot, 0)
	for _, t := range GridTimes() {
		_, taken := s.reserved[slotKey(date, t)]
		slots = append(slots, Slot{Time: t, Available: !taken})
	}
	return slots, nil
}

func (s *InMemory) Book(ctx context.Context, req BookingRequest) (*Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ValidateBooking(&req, s.now()); err != nil {
		return nil, err
	}
	key := slotKey(req.Date, req.Time)
	if _, taken := s.reserved[key]; taken {
		return nil, ErrSlotTaken
	}
	now := s.now()
	a := &Appointment{
		ID:                 ids.New(),
		Owner:              req.Owner,
		Date:               req.Date,
		Time:               req.Time,
		DurationMinutes:    req.DurationMinutes,
		Status:             StatusPending,
		AppointmentAddress: req.AppointmentAddress,
		ContactPerson:      req.ContactPerson,
		ContactPhone:       req.ContactPhone,
		IntercomName:       req.IntercomName,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	s.appointments[a.ID] = a
	s.reserved[key] = a.ID
	cp := *a
	return &cp, nil
}

func (s *InMemory) ListMine(ctx context.Context, owner string) ([]*Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Appointment, 0)
	for _, a := range s.appointments {
		if a.Owner != owner {
			continue
		}
		cp := *a
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Time < out[j].Time
	})
	return out, nil
}

func (s *InMemory) Cancel(ctx context.Context, owner, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.appointments[id]
	if !ok || a.Status == StatusCancelled {
		return ErrNotFound
	}
	if a.Owner != owner {
		return ErrForbidden
	}
	a.Status = StatusCancelled
	a.UpdatedAt = s.now()
	delete(s.reserved, slotKey(a.Date, a.Time))
	return nil
}

func (s *InMemory) Confirm(ctx context.Context, id string) (*Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.appointments[id]
	if !ok || a.Status == StatusCancelled {
		return nil, ErrNotFound
	}
	if a.Status == StatusPending {
		a.Status = StatusConfirmed
		a.UpdatedAt = s.now()
	}
	cp := *a
	return &cp, nil
}
