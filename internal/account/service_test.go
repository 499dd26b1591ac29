package account

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func validRegistration() Registration {
	return Registration{
		FirstName:     "Giulia",
		LastName:      "Ferri",
		Email:         "giulia@immobiliareferri.it",
		AgencyName:    "Immobiliare Ferri",
		AgencyAddress: "Via Roma 12, Torino",
		PartitaIVA:    "01234567890",
		SedeLegale:    "Via Roma 12, Torino",
		CodiceUnivoco: "M5UXCR1",
		Username:      "giulia.ferri",
		Password:      "correct-horse",
	}
}

func setTestSecret(t *testing.T) {
	t.Helper()
	ResetSecretForTests()
	t.Setenv(secretEnvVariable, "unit-test-secret")
	t.Cleanup(ResetSecretForTests)
}

func TestRegisterAndLogin(t *testing.T) {
	setTestSecret(t)
	svc := NewService(NewMemoryStore())
	ctx := context.Background()

	created, err := svc.Register(ctx, validRegistration())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected generated account id")
	}
	if !created.HasRole(RoleAgency) {
		t.Fatalf("expected agency role, got %v", created.Roles)
	}
	if created.HasRole(RoleStaff) {
		t.Fatal("new registrations must not receive the staff role")
	}
	if created.Status != StatusActive {
		t.Fatalf("expected active status, got %q", created.Status)
	}

	got, token, err := svc.Login(ctx, "giulia.ferri", "correct-horse")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if got.ID != created.ID {
		t.Fatalf("login returned account %q, want %q", got.ID, created.ID)
	}
	if token == "" {
		t.Fatal("expected a session token")
	}

	resolved, err := svc.Authenticate(ctx, token)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if resolved.ID != created.ID {
		t.Fatalf("authenticate resolved %q, want %q", resolved.ID, created.ID)
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	setTestSecret(t)
	svc := NewService(NewMemoryStore())
	ctx := context.Background()

	if _, err := svc.Register(ctx, validRegistration()); err != nil {
		t.Fatalf("first register: %v", err)
	}
	reg := validRegistration()
	reg.Username = "Giulia.Ferri " // same username after normalization
	if _, err := svc.Register(ctx, reg); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	setTestSecret(t)
	svc := NewService(NewMemoryStore())
	ctx := context.Background()

	cases := map[string]func(*Registration){
		"missing username":   func(r *Registration) { r.Username = "" },
		"missing partita":    func(r *Registration) { r.PartitaIVA = " " },
		"short password":     func(r *Registration) { r.Password = "short" },
		"malformed email":    func(r *Registration) { r.Email = "not-an-address" },
		"oversized field":    func(r *Registration) { r.AgencyName = strings.Repeat("a", maxFieldLength+1) },
		"missing first name": func(r *Registration) { r.FirstName = "" },
	}
	for name, mutate := range cases {
		reg := validRegistration()
		mutate(&reg)
		if _, err := svc.Register(ctx, reg); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("%s: expected ErrInvalidInput, got %v", name, err)
		}
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	setTestSecret(t)
	svc := NewService(NewMemoryStore())
	ctx := context.Background()

	if _, err := svc.Register(ctx, validRegistration()); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, _, err := svc.Login(ctx, "giulia.ferri", "wrong"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("wrong password: expected ErrUnauthorized, got %v", err)
	}
	if _, _, err := svc.Login(ctx, "nobody", "correct-horse"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("unknown user: expected ErrUnauthorized, got %v", err)
	}
}

func TestAuthenticateRejectsGarbage(t *testing.T) {
	setTestSecret(t)
	svc := NewService(NewMemoryStore())
	if _, err := svc.Authenticate(context.Background(), "not-a-token"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}
