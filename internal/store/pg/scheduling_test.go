package pg

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"spaziopratiche.org/internal/account"
	"spaziopratiche.org/internal/scheduling"
)

func newSchedulingMock(t *testing.T) (*Scheduling, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	svc := NewScheduling(NewWithDB(db))
	svc.now = func() time.Time {
		return time.Date(2026, time.February, 25, 10, 0, 0, 0, time.UTC)
	}
	return svc, mock
}

func bookingReq() scheduling.BookingRequest {
	return scheduling.BookingRequest{
		Owner:              "acct-1",
		Date:               "2026-03-02",
		Time:               "10:00",
		AppointmentAddress: "Via Garibaldi 4, Milano",
		ContactPerson:      "Sig. Bianchi",
		ContactPhone:       "+39 333 1234567",
	}
}

func TestBookSlotAlreadyHeld(t *testing.T) {
	svc, mock := newSchedulingMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery("select id from appointments").
		WithArgs("2026-03-02", "10:00", scheduling.StatusCancelled).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("existing-id"))
	mock.ExpectRollback()

	if _, err := svc.Book(context.Background(), bookingReq()); !errors.Is(err, scheduling.ErrSlotTaken) {
		t.Fatalf("expected ErrSlotTaken, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBookUniqueViolationMapsToSlotTaken(t *testing.T) {
	svc, mock := newSchedulingMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery("select id from appointments").
		WithArgs("2026-03-02", "10:00", scheduling.StatusCancelled).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("insert into appointments").
		WillReturnError(&pgconn.PgError{Code: uniqueViolation})
	mock.ExpectRollback()

	if _, err := svc.Book(context.Background(), bookingReq()); !errors.Is(err, scheduling.ErrSlotTaken) {
		t.Fatalf("expected ErrSlotTaken, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBookInsertsWhenSlotFree(t *testing.T) {
	svc, mock := newSchedulingMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery("select id from appointments").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("insert into appointments").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	a, err := svc.Book(context.Background(), bookingReq())
	if err != nil {
		t.Fatalf("book: %v", err)
	}
	if a.Status != scheduling.StatusPending {
		t.Fatalf("status = %q, want pending", a.Status)
	}
	if a.DurationMinutes != scheduling.DefaultDurationMinutes {
		t.Fatalf("duration = %d, want default", a.DurationMinutes)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBookRejectsInvalidBeforeTouchingDB(t *testing.T) {
	svc, mock := newSchedulingMock(t)

	req := bookingReq()
	req.Date = "2026-03-07" // Saturday
	if _, err := svc.Book(context.Background(), req); !errors.Is(err, scheduling.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("db touched for invalid booking: %v", err)
	}
}

func TestCancelErrorMapping(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown id", func(t *testing.T) {
		svc, mock := newSchedulingMock(t)
		mock.ExpectBegin()
		mock.ExpectQuery("select owner, status from appointments").
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()
		if err := svc.Cancel(ctx, "acct-1", "missing"); !errors.Is(err, scheduling.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("already cancelled", func(t *testing.T) {
		svc, mock := newSchedulingMock(t)
		mock.ExpectBegin()
		mock.ExpectQuery("select owner, status from appointments").
			WithArgs("app-1").
			WillReturnRows(sqlmock.NewRows([]string{"owner", "status"}).
				AddRow("acct-1", scheduling.StatusCancelled))
		mock.ExpectRollback()
		if err := svc.Cancel(ctx, "acct-1", "app-1"); !errors.Is(err, scheduling.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("foreign owner", func(t *testing.T) {
		svc, mock := newSchedulingMock(t)
		mock.ExpectBegin()
		mock.ExpectQuery("select owner, status from appointments").
			WithArgs("app-1").
			WillReturnRows(sqlmock.NewRows([]string{"owner", "status"}).
				AddRow("acct-2", scheduling.StatusPending))
		mock.ExpectRollback()
		if err := svc.Cancel(ctx, "acct-1", "app-1"); !errors.Is(err, scheduling.ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("owner cancels", func(t *testing.T) {
		svc, mock := newSchedulingMock(t)
		mock.ExpectBegin()
		mock.ExpectQuery("select owner, status from appointments").
			WithArgs("app-1").
			WillReturnRows(sqlmock.NewRows([]string{"owner", "status"}).
				AddRow("acct-1", scheduling.StatusPending))
		mock.ExpectExec("update appointments set status").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()
		if err := svc.Cancel(ctx, "acct-1", "app-1"); err != nil {
			t.Fatalf("cancel: %v", err)
		}
	})
}

func TestAccountCreateDuplicateMapsToAlreadyExists(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("insert into accounts").
		WillReturnError(&pgconn.PgError{Code: uniqueViolation})

	accts := NewAccounts(NewWithDB(db))
	a := &account.Account{ID: "acct-1", Username: "giulia.ferri", Roles: []string{account.RoleAgency}}
	if err := accts.Create(context.Background(), a); !errors.Is(err, account.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestAccountFindNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("from accounts where").
		WillReturnError(sql.ErrNoRows)

	accts := NewAccounts(NewWithDB(db))
	if _, err := accts.Find(context.Background(), "missing"); !errors.Is(err, account.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSplitRoles(t *testing.T) {
	cases := map[string][]string{
		"":             nil,
		"agency":       {"agency"},
		"agency,staff": {"agency", "staff"},
		" agency, ":    {"agency"},
	}
	for in, want := range cases {
		got := splitRoles(in)
		if len(got) != len(want) {
			t.Fatalf("splitRoles(%q) = %v, want %v", in, got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("splitRoles(%q) = %v, want %v", in, got, want)
			}
		}
	}
}
