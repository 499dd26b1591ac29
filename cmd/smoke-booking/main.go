// smoke-booking drives a full booking round trip against a running API:
// register, log in, fetch a grid, book a slot, verify the conflict, cancel.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"spaziopratiche.org/internal/booking"
)

func main() {
	base := os.Getenv("SPRATICHE_API_URL")
	if base == "" {
		base = "http://localhost:8080"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client := booking.NewClient(base, nil)
	username := fmt.Sprintf("smoke-%d", rand.Int())

	if _, err := client.Register(ctx, booking.Registration{
		FirstName:     "Smoke",
		LastName:      "Test",
		Email:         username + "@example.it",
		AgencyName:    "Agenzia Smoke",
		AgencyAddress: "Via di Prova 1, Roma",
		PartitaIVA:    "01234567890",
		SedeLegale:    "Via di Prova 1, Roma",
		CodiceUnivoco: "0000000",
		Username:      username,
		Password:      "smoke-password",
	}); err != nil {
		log.Fatalf("register: %v", err)
	}

	res, err := client.Login(ctx, username, "smoke-password")
	if err != nil {
		log.Fatalf("login: %v", err)
	}
	client.SetToken(res.AccessToken)

	// Walk forward until a weekday with a free slot shows up.
	day := time.Now().AddDate(0, 0, 1)
	var date, slot string
	for i := 0; i < 30 && slot == ""; i++ {
		d := booking.Day{Date: day}
		if d.SelectableOn(time.Now()) {
			candidate := day.Format("2006-01-02")
			slots, err := client.Availability(ctx, candidate)
			if err != nil {
				log.Fatalf("availability %s: %v", candidate, err)
			}
			for _, s := range slots {
				if s.Available {
					date, slot = candidate, s.Time
					break
				}
			}
		}
		day = day.AddDate(0, 0, 1)
	}
	if slot == "" {
		log.Fatal("no free slot within 30 days")
	}

	form := booking.Form{
		AppointmentAddress: "Via di Prova 1, Roma",
		ContactPerson:      "Sig. Smoke",
		ContactPhone:       "+39 333 0000000",
	}
	appt, err := client.Book(ctx, date, slot, form)
	if err != nil {
		log.Fatalf("book %s %s: %v", date, slot, err)
	}

	// The same slot must now refuse a second booking.
	if _, err := client.Book(ctx, date, slot, form); !errors.Is(err, booking.ErrConflict) {
		log.Fatalf("double booking of %s %s: want conflict, got %v", date, slot, err)
	}

	mine, err := client.MyAppointments(ctx)
	if err != nil {
		log.Fatalf("list appointments: %v", err)
	}
	if len(mine) != 1 || mine[0].ID != appt.ID {
		log.Fatalf("appointment list mismatch: %+v", mine)
	}

	if err := client.CancelAppointment(ctx, appt.ID); err != nil {
		log.Fatalf("cancel: %v", err)
	}
	slots, err := client.Availability(ctx, date)
	if err != nil {
		log.Fatalf("availability after cancel: %v", err)
	}
	freed := false
	for _, s := range slots {
		if s.Time == slot && s.Available {
			freed = true
		}
	}
	if !freed {
		log.Fatalf("slot %s %s not freed after cancel", date, slot)
	}

	fmt.Printf("✅ booking smoke test passed: %s %s as %s\n", date, slot, username)
}
