package booking

import (
	"context"
	"errors"
	"sync"
)

// AvailabilityProvider holds the slot grid for the currently selected date.
//
// Select and Fetch are decoupled so responses arriving out of order cannot
// clobber the view: a fetch result is applied only if the selection it was
// started for is still the current one when it resolves. The last request
// wins, never the last arrival.
type AvailabilityProvider struct {
	client *Client

	mu         sync.Mutex
	date       string
	generation uint64
	slots      []Slot
	outdated   bool
}

// NewAvailabilityProvider creates an empty provider over the client.
func NewAvailabilityProvider(client *Client) *AvailabilityProvider {
	return &AvailabilityProvider{client: client}
}

// Select marks date as the current request intent. The previous grid is
// dropped immediately so the UI never shows another date's slots.
func (p *AvailabilityProvider) Select(date string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.date == date {
		return
	}
	p.date = date
	p.generation++
	p.slots = nil
	p.outdated = false
}

// Fetch retrieves the grid for the selected date. A stale response, one for
// a selection that changed while the request was in flight, is discarded
// silently. On a network failure the previous slots are kept and flagged
// outdated.
func (p *AvailabilityProvider) Fetch(ctx context.Context) error {
	p.mu.Lock()
	date := p.date
	generation := p.generation
	p.mu.Unlock()
	if date == "" {
		return nil
	}

	slots, err := p.client.Availability(ctx, date)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.generation != generation {
		// The user moved on; this response no longer matters.
		return nil
	}
	if err != nil {
		var netErr *NetworkError
		if errors.As(err, &netErr) {
			p.outdated = true
			return err
		}
		return err
	}
	p.slots = slots
	p.outdated = false
	return nil
}

// Selected returns the current date, or "" when none is selected.
func (p *AvailabilityProvider) Selected() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.date
}

// Slots returns the current grid plus whether it is known stale.
func (p *AvailabilityProvider) Slots() ([]Slot, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Slot, len(p.slots))
	copy(out, p.slots)
	return out, p.outdated
}

// SlotAvailable reports whether the grid currently lists the time as free.
func (p *AvailabilityProvider) SlotAvailable(t string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, s := range p.slots {
		if s.Time == t {
			return s.Available
		}
	}
	return false
}

// Clear resets the provider to its unselected state.
func (p *AvailabilityProvider) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.date = ""
	p.generation++
	p.slots = nil
	p.outdated = false
}
