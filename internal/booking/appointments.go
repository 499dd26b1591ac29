package booking

import (
	"context"
	"sort"
	"sync"
)

// AppointmentStore caches the agency's own appointments.
type AppointmentStore struct {
	client *Client

	// afterCancel runs with the freed date after a successful cancellation,
	// so the availability view can be brought back in line.
	afterCancel func(date string)

	mu    sync.Mutex
	items []Appointment
}

// NewAppointmentStore creates an empty store. afterCancel may be nil.
func NewAppointmentStore(client *Client, afterCancel func(date string)) *AppointmentStore {
	return &AppointmentStore{client: client, afterCancel: afterCancel}
}

// Refresh reloads the list from the authority.
func (s *AppointmentStore) Refresh(ctx context.Context) error {
	items, err := s.client.MyAppointments(ctx)
	if err != nil {
		return err
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Date != items[j].Date {
			return items[i].Date < items[j].Date
		}
		return items[i].Time < items[j].Time
	})
	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
	return nil
}

// Mine returns the cached appointments ordered by date then time.
func (s *AppointmentStore) Mine() []Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Appointment, len(s.items))
	copy(out, s.items)
	return out
}

// Cancel cancels the appointment. The row stays visible with status
// cancelled, matching what the authority's listing will say; a re-sync runs
// right after so the cache never drifts. Ownership and existence errors
// surface unchanged for the UI to explain.
func (s *AppointmentStore) Cancel(ctx context.Context, id string) error {
	if err := s.client.CancelAppointment(ctx, id); err != nil {
		return err
	}

	var freedDate string
	s.mu.Lock()
	for i := range s.items {
		if s.items[i].ID == id {
			freedDate = s.items[i].Date
			s.items[i].Status = "cancelled"
		}
	}
	s.mu.Unlock()

	// Best-effort; the in-place status update above already holds the truth.
	_ = s.Refresh(ctx)

	if freedDate != "" && s.afterCancel != nil {
		s.afterCancel(freedDate)
	}
	return nil
}
