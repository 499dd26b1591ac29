package pg

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"spaziopratiche.org/internal/account"
)

// Accounts is the Postgres-backed account store. Roles are kept as a
// comma-separated text column.
type Accounts struct {
	store *Store
}

var _ account.Store = (*Accounts)(nil)

// NewAccounts creates the account store over the store.
func NewAccounts(store *Store) *Accounts { return &Accounts{store: store} }

const accountColumns = `id, username, password_hash, first_name, last_name, email,
	agency_name, agency_address, partita_iva, sede_legale, codice_univoco,
	roles, status, created_at, updated_at`

func (s *Accounts) Create(ctx context.Context, a *account.Account) error {
	_, err := s.store.db.ExecContext(ctx, `
		insert into accounts(`+accountColumns+`)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
	`, a.ID, a.Username, a.PasswordHash, a.FirstName, a.LastName, a.Email,
		a.AgencyName, a.AgencyAddress, a.PartitaIVA, a.SedeLegale, a.CodiceUnivoco,
		joinRoles(a.Roles), a.Status, a.CreatedAt, a.UpdatedAt)
	if isUniqueViolation(err) {
		return account.ErrAlreadyExists
	}
	return err
}

func (s *Accounts) Find(ctx context.Context, id string) (*account.Account, error) {
	return s.findBy(ctx, `id = $1`, id)
}

func (s *Accounts) FindByUsername(ctx context.Context, username string) (*account.Account, error) {
	return s.findBy(ctx, `username = $1`, strings.ToLower(strings.TrimSpace(username)))
}

func (s *Accounts) findBy(ctx context.Context, where, arg string) (*account.Account, error) {
	var a account.Account
	var roles string
	err := s.store.db.QueryRowContext(ctx, `
		select `+accountColumns+` from accounts where `+where,
		arg).Scan(&a.ID, &a.Username, &a.PasswordHash, &a.FirstName, &a.LastName,
		&a.Email, &a.AgencyName, &a.AgencyAddress, &a.PartitaIVA, &a.SedeLegale,
		&a.CodiceUnivoco, &roles, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, account.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	a.Roles = splitRoles(roles)
	return &a, nil
}

func joinRoles(roles []string) string {
	return strings.Join(roles, ",")
}

func splitRoles(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
