package pg

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"spaziopratiche.org/internal/ids"
	"spaziopratiche.org/internal/scheduling"
)

// Scheduling is the Postgres-backed scheduling service. A partial unique
// index on (date, time) where status <> 'cancelled' backs the one-booking-
// per-slot invariant; the FOR UPDATE re-check inside the transaction turns
// concurrent losers into ErrSlotTaken instead of surfacing raw constraint
// errors.
type Scheduling struct {
	store *Store
	now   func() time.Time
}

var _ scheduling.Service = (*Scheduling)(nil)

// NewScheduling creates the scheduling service over the store.
func NewScheduling(store *Store) *Scheduling {
	return &Scheduling{store: store, now: func() time.Time { return time.Now().UTC() }}
}

func (s *Scheduling) Availability(ctx context.Context, date string) ([]scheduling.Slot, error) {
	d, err := scheduling.ParseDate(date)
	if err != nil {
		return nil, err
	}
	if !scheduling.Bookable(d, s.now()) {
		return []scheduling.Slot{}, nil
	}
	date = d.Format(scheduling.DateLayout)

	rows, err := s.store.db.QueryContext(ctx, `
		select time from appointments
		where date = $1 and status <> $2
	`, date, scheduling.StatusCancelled)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	taken := make(map[string]bool)
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		taken[t] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	slots := make([]scheduling.Slot, 0)
	for _, t := range scheduling.GridTimes() {
		slots = append(slots, scheduling.Slot{Time: t, Available: !taken[t]})
	}
	return slots, nil
}

func (s *Scheduling) Book(ctx context.Context, req scheduling.BookingRequest) (*scheduling.Appointment, error) {
	if err := scheduling.ValidateBooking(&req, s.now()); err != nil {
		return nil, err
	}

	tx, err := s.store.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var existing string
	err = tx.QueryRowContext(ctx, `
		select id from appointments
		where date = $1 and time = $2 and status <> $3
		for update
	`, req.Date, req.Time, scheduling.StatusCancelled).Scan(&existing)
	if err == nil {
		return nil, scheduling.ErrSlotTaken
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	now := s.now()
	a := &scheduling.Appointment{
		ID:                 ids.New(),
		Owner:              req.Owner,
		Date:               req.Date,
		Time:               req.Time,
		DurationMinutes:    req.DurationMinutes,
		Status:             scheduling.StatusPending,
		AppointmentAddress: req.AppointmentAddress,
		ContactPerson:      req.ContactPerson,
		ContactPhone:       req.ContactPhone,
		IntercomName:       req.IntercomName,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	_, err = tx.ExecContext(ctx, `
		insert into appointments(id, owner, date, time, duration_minutes, status,
			appointment_address, contact_person, contact_phone, intercom_name,
			created_at, updated_at)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`, a.ID, a.Owner, a.Date, a.Time, a.DurationMinutes, a.Status,
		a.AppointmentAddress, a.ContactPerson, a.ContactPhone, a.IntercomName,
		a.CreatedAt, a.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, scheduling.ErrSlotTaken
		}
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		if isUniqueViolation(err) {
			return nil, scheduling.ErrSlotTaken
		}
		return nil, err
	}
	return a, nil
}

func (s *Scheduling) ListMine(ctx context.Context, owner string) ([]*scheduling.Appointment, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		select id, owner, date, time, duration_minutes, status,
			appointment_address, contact_person, contact_phone, intercom_name,
			created_at, updated_at
		from appointments
		where owner = $1
		order by date asc, time asc
	`, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*scheduling.Appointment, 0)
	for rows.Next() {
		var a scheduling.Appointment
		if err := rows.Scan(&a.ID, &a.Owner, &a.Date, &a.Time, &a.DurationMinutes,
			&a.Status, &a.AppointmentAddress, &a.ContactPerson, &a.ContactPhone,
			&a.IntercomName, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}

func (s *Scheduling) Cancel(ctx context.Context, owner, id string) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var dbOwner, status string
	err = tx.QueryRowContext(ctx, `
		select owner, status from appointments where id = $1 for update
	`, id).Scan(&dbOwner, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return scheduling.ErrNotFound
	}
	if err != nil {
		return err
	}
	if status == scheduling.StatusCancelled {
		return scheduling.ErrNotFound
	}
	if dbOwner != owner {
		return scheduling.ErrForbidden
	}

	if _, err := tx.ExecContext(ctx, `
		update appointments set status = $2, updated_at = $3 where id = $1
	`, id, scheduling.StatusCancelled, s.now()); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Scheduling) Confirm(ctx context.Context, id string) (*scheduling.Appointment, error) {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var status string
	err = tx.QueryRowContext(ctx, `
		select status from appointments where id = $1 for update
	`, id).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, scheduling.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if status == scheduling.StatusCancelled {
		return nil, scheduling.ErrNotFound
	}
	if status == scheduling.StatusPending {
		if _, err := tx.ExecContext(ctx, `
			update appointments set status = $2, updated_at = $3 where id = $1
		`, id, scheduling.StatusConfirmed, s.now()); err != nil {
			return nil, err
		}
	}

	var a scheduling.Appointment
	err = tx.QueryRowContext(ctx, `
		select id, owner, date, time, duration_minutes, status,
			appointment_address, contact_person, contact_phone, intercom_name,
			created_at, updated_at
		from appointments where id = $1
	`, id).Scan(&a.ID, &a.Owner, &a.Date, &a.Time, &a.DurationMinutes, &a.Status,
		&a.AppointmentAddress, &a.ContactPerson, &a.ContactPhone, &a.IntercomName,
		&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &a, nil
}
