package pg

import (
	"context"

	"spaziopratiche.org/internal/contact"
)

// Contacts is the Postgres-backed lead store.
type Contacts struct {
	store *Store
}

var _ contact.Store = (*Contacts)(nil)

// NewContacts creates the lead store over the store.
func NewContacts(store *Store) *Contacts { return &Contacts{store: store} }

func (s *Contacts) Create(ctx context.Context, r *contact.Request) error {
	_, err := s.store.db.ExecContext(ctx, `
		insert into contact_requests(id, name, email, phone, service, message, status, created_at)
		values ($1,$2,$3,$4,$5,$6,$7,$8)
	`, r.ID, r.Name, r.Email, r.Phone, r.Service, r.Message, r.Status, r.CreatedAt)
	return err
}

func (s *Contacts) List(ctx context.Context) ([]*contact.Request, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		select id, name, email, phone, service, message, status, created_at
		from contact_requests
		order by created_at desc, id desc
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*contact.Request, 0)
	for rows.Next() {
		var r contact.Request
		if err := rows.Scan(&r.ID, &r.Name, &r.Email, &r.Phone, &r.Service,
			&r.Message, &r.Status, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &r)
	}
	return out, rows.Err()
}
