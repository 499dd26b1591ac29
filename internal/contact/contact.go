// Package contact stores leads submitted through the public contact form.
package contact

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"sort"
	"strings"
	"sync"
	"time"

	"spaziopratiche.org/internal/ids"
)

// StatusNew is the status every stored lead starts with. Follow-up states are
// managed outside this service.
const StatusNew = "new"

const (
	minNameLength    = 2
	maxNameLength    = 100
	minMessageLength = 10
	maxMessageLength = 2000
)

var (
	ErrInvalidInput = errors.New("contact: invalid input")
)

// Request is a lead from the public contact form.
type Request struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Service   string    `json:"service"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Submission carries the raw form fields.
type Submission struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Service string `json:"service"`
	Message string `json:"message"`
}

// Store persists contact requests.
type Store interface {
	Create(ctx context.Context, r *Request) error
	List(ctx context.Context) ([]*Request, error)
}

// Service validates and records contact form submissions.
type Service struct {
	store Store
	now   func() time.Time
}

// NewService creates a contact service backed by the given store.
func NewService(store Store) *Service {
	return &Service{store: store, now: func() time.Time { return time.Now().UTC() }}
}

// Submit validates the form and stores the lead.
func (s *Service) Submit(ctx context.Context, sub Submission) (*Request, error) {
	sub.Name = strings.TrimSpace(sub.Name)
	sub.Email = strings.TrimSpace(sub.Email)
	sub.Phone = strings.TrimSpace(sub.Phone)
	sub.Service = strings.TrimSpace(sub.Service)
	sub.Message = strings.TrimSpace(sub.Message)

	if l := len(sub.Name); l < minNameLength || l > maxNameLength {
		return nil, fmt.Errorf("%w: name must be between %d and %d characters", ErrInvalidInput, minNameLength, maxNameLength)
	}
	if _, err := mail.ParseAddress(sub.Email); err != nil {
		return nil, fmt.Errorf("%w: email is malformed", ErrInvalidInput)
	}
	if sub.Service == "" {
		return nil, fmt.Errorf("%w: service is required", ErrInvalidInput)
	}
	if l := len(sub.Message); l < minMessageLength || l > maxMessageLength {
		return nil, fmt.Errorf("%w: message must be between %d and %d characters", ErrInvalidInput, minMessageLength, maxMessageLength)
	}

	r := &Request{
		ID:        ids.New(),
		Name:      sub.Name,
		Email:     sub.Email,
		Phone:     sub.Phone,
		Service:   sub.Service,
		Message:   sub.Message,
		Status:    StatusNew,
		CreatedAt: s.now(),
	}
	if err := s.store.Create(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// List returns all stored leads, newest first.
func (s *Service) List(ctx context.Context) ([]*Request, error) {
	return s.store.List(ctx)
}

// MemoryStore keeps leads in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	byID map[string]*Request
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty lead store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[string]*Request)}
}

func (s *MemoryStore) Create(ctx context.Context, r *Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *r
	s.byID[cp.ID] = &cp
	return nil
}

func (s *MemoryStore) List(ctx context.Context) ([]*Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Request, 0, len(s.byID))
	for _, r := range s.byID {
		cp := *r
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}
