package booking

import (
	"net/http/httptest"
	"testing"
	"time"

	"spaziopratiche.org/internal/account"
	"spaziopratiche.org/internal/contact"
	"spaziopratiche.org/internal/httpapi"
	"spaziopratiche.org/internal/scheduling"
	"spaziopratiche.org/internal/stream"
)

// newAuthority spins up the real scheduling authority on in-memory stores so
// the client core is exercised against the actual wire contract.
func newAuthority(t *testing.T) *httptest.Server {
	t.Helper()

	t.Setenv("SPRATICHE_AUTH_SECRET", "booking-test-secret")
	account.ResetSecretForTests()
	t.Cleanup(account.ResetSecretForTests)

	api := httpapi.New(httpapi.ReadyProbe{}, "test",
		account.NewService(account.NewMemoryStore()),
		scheduling.NewInMemory(),
		contact.NewService(contact.NewMemoryStore()),
		stream.New(),
		httpapi.Options{RateLimitRPS: 1000, RateLimitBurst: 1000})

	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func testRegistration(username string) Registration {
	return Registration{
		FirstName:     "Giulia",
		LastName:      "Ferri",
		Email:         username + "@example.it",
		AgencyName:    "Immobiliare Ferri",
		AgencyAddress: "Via Roma 12, Torino",
		PartitaIVA:    "01234567890",
		SedeLegale:    "Via Roma 12, Torino",
		CodiceUnivoco: "M5UXCR1",
		Username:      username,
		Password:      "correct-horse",
	}
}

func testForm() Form {
	return Form{
		AppointmentAddress: "Via Garibaldi 4, Milano",
		ContactPerson:      "Sig. Bianchi",
		ContactPhone:       "+39 333 1234567",
	}
}

// nextBookableDay picks a weekday at least a week out.
func nextBookableDay() Day {
	d := time.Now().UTC().AddDate(0, 0, 7)
	for d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
		d = d.AddDate(0, 0, 1)
	}
	return Day{Date: time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)}
}
