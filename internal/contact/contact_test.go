package contact

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func validSubmission() Submission {
	return Submission{
		Name:    "Marco Rossi",
		Email:   "marco.rossi@example.it",
		Phone:   "+39 347 9876543",
		Service: "pratiche-immobiliari",
		Message: "Vorrei informazioni sulla gestione delle pratiche catastali.",
	}
}

func TestSubmit(t *testing.T) {
	svc := NewService(NewMemoryStore())
	r, err := svc.Submit(context.Background(), validSubmission())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if r.ID == "" {
		t.Fatal("expected generated id")
	}
	if r.Status != StatusNew {
		t.Fatalf("status = %q, want %q", r.Status, StatusNew)
	}
}

func TestSubmitValidation(t *testing.T) {
	svc := NewService(NewMemoryStore())
	ctx := context.Background()

	cases := map[string]func(*Submission){
		"name too short":    func(s *Submission) { s.Name = "M" },
		"name too long":     func(s *Submission) { s.Name = strings.Repeat("a", maxNameLength+1) },
		"bad email":         func(s *Submission) { s.Email = "not-an-address" },
		"missing service":   func(s *Submission) { s.Service = "  " },
		"message too short": func(s *Submission) { s.Message = "ciao" },
		"message too long":  func(s *Submission) { s.Message = strings.Repeat("a", maxMessageLength+1) },
	}
	for name, mutate := range cases {
		sub := validSubmission()
		mutate(&sub)
		if _, err := svc.Submit(ctx, sub); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("%s: expected ErrInvalidInput, got %v", name, err)
		}
	}

	// Phone stays optional.
	sub := validSubmission()
	sub.Phone = ""
	if _, err := svc.Submit(ctx, sub); err != nil {
		t.Fatalf("submission without phone: %v", err)
	}
}

func TestListNewestFirst(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store)
	base := time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)
	i := 0
	svc.now = func() time.Time {
		i++
		return base.Add(time.Duration(i) * time.Minute)
	}

	ctx := context.Background()
	for _, name := range []string{"Prima Persona", "Seconda Persona", "Terza Persona"} {
		sub := validSubmission()
		sub.Name = name
		if _, err := svc.Submit(ctx, sub); err != nil {
			t.Fatalf("submit %s: %v", name, err)
		}
	}

	got, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d leads, want 3", len(got))
	}
	if got[0].Name != "Terza Persona" || got[2].Name != "Prima Persona" {
		t.Fatalf("unexpected order: %s, %s, %s", got[0].Name, got[1].Name, got[2].Name)
	}
}
