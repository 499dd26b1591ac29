package account

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"spaziopratiche.org/internal/ids"
)

const (
	// StatusActive is the only status the service issues today. Suspension is
	// handled manually in the database.
	StatusActive = "active"

	// TokenTTL bounds how long an issued session token stays valid.
	TokenTTL = 24 * time.Hour

	minPasswordLength = 8
	maxFieldLength    = 200
)

// Service wires account registration and login on top of a Store.
type Service struct {
	store Store
	now   func() time.Time
}

// NewService creates an account service backed by the given store.
func NewService(store Store) *Service {
	return &Service{store: store, now: func() time.Time { return time.Now().UTC() }}
}

// Register validates the submitted profile and persists a new agency account.
// The new account carries RoleAgency only.
func (s *Service) Register(ctx context.Context, reg Registration) (*Account, error) {
	if err := validateRegistration(reg); err != nil {
		return nil, err
	}
	hash, err := HashPassword(reg.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	now := s.now()
	a := &Account{
		ID:            ids.New(),
		Username:      normalizeUsername(reg.Username),
		PasswordHash:  hash,
		FirstName:     strings.TrimSpace(reg.FirstName),
		LastName:      strings.TrimSpace(reg.LastName),
		Email:         strings.TrimSpace(reg.Email),
		AgencyName:    strings.TrimSpace(reg.AgencyName),
		AgencyAddress: strings.TrimSpace(reg.AgencyAddress),
		PartitaIVA:    strings.TrimSpace(reg.PartitaIVA),
		SedeLegale:    strings.TrimSpace(reg.SedeLegale),
		CodiceUnivoco: strings.TrimSpace(reg.CodiceUnivoco),
		Roles:         []string{RoleAgency},
		Status:        StatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.store.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Login verifies the credentials and returns the account plus a signed
// session token.
func (s *Service) Login(ctx context.Context, username, password string) (*Account, string, error) {
	username = normalizeUsername(username)
	if username == "" || password == "" {
		return nil, "", ErrUnauthorized
	}
	a, err := s.store.FindByUsername(ctx, username)
	if err != nil {
		// Same answer for an unknown username and a bad password.
		return nil, "", ErrUnauthorized
	}
	if err := VerifyPassword(a.PasswordHash, password); err != nil {
		return nil, "", ErrUnauthorized
	}
	if a.Status != StatusActive {
		return nil, "", ErrUnauthorized
	}
	token, err := GenerateToken(a.ID, a.Roles, TokenTTL)
	if err != nil {
		return nil, "", fmt.Errorf("generate token: %w", err)
	}
	return a, token, nil
}

// Get returns the account by id.
func (s *Service) Get(ctx context.Context, id string) (*Account, error) {
	return s.store.Find(ctx, id)
}

// Authenticate resolves a bearer token to the account it was issued for.
func (s *Service) Authenticate(ctx context.Context, token string) (*Account, error) {
	claims, err := ParseAndValidate(token)
	if err != nil {
		return nil, ErrUnauthorized
	}
	a, err := s.store.Find(ctx, claims.Subject)
	if err != nil {
		return nil, ErrUnauthorized
	}
	if a.Status != StatusActive {
		return nil, ErrUnauthorized
	}
	return a, nil
}

func validateRegistration(reg Registration) error {
	required := map[string]string{
		"username":       reg.Username,
		"password":       reg.Password,
		"first_name":     reg.FirstName,
		"last_name":      reg.LastName,
		"email":          reg.Email,
		"agency_name":    reg.AgencyName,
		"agency_address": reg.AgencyAddress,
		"partita_iva":    reg.PartitaIVA,
	}
	for field, value := range required {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%w: %s is required", ErrInvalidInput, field)
		}
	}
	if len(reg.Password) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}
	if _, err := mail.ParseAddress(strings.TrimSpace(reg.Email)); err != nil {
		return fmt.Errorf("%w: email is malformed", ErrInvalidInput)
	}
	for field, value := range map[string]string{
		"username":       reg.Username,
		"first_name":     reg.FirstName,
		"last_name":      reg.LastName,
		"agency_name":    reg.AgencyName,
		"agency_address": reg.AgencyAddress,
		"partita_iva":    reg.PartitaIVA,
		"sede_legale":    reg.SedeLegale,
		"codice_univoco": reg.CodiceUnivoco,
	} {
		if len(value) > maxFieldLength {
			return fmt.Errorf("%w: %s is too long", ErrInvalidInput, field)
		}
	}
	return nil
}
