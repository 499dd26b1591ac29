package httpapi

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"spaziopratiche.org/internal/account"
	"spaziopratiche.org/internal/audit"
	"spaziopratiche.org/internal/obs"
	"spaziopratiche.org/internal/scheduling"
	"spaziopratiche.org/internal/stream"
)

type bookRequest struct {
	Date               string `json:"date"`
	Time               string `json:"time"`
	DurationMinutes    int    `json:"duration_minutes"`
	AppointmentAddress string `json:"appointment_address"`
	ContactPerson      string `json:"contact_person"`
	ContactPhone       string `json:"contact_phone"`
	IntercomName       string `json:"intercom_name"`
}

type availabilityResponse struct {
	Date  string            `json:"date"`
	Slots []scheduling.Slot `json:"slots"`
}

func (a *API) availability(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	slots, err := a.scheduler.Availability(r.Context(), date)
	if err != nil {
		handleSchedulingError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, availabilityResponse{Date: date, Slots: slots})
}

func (a *API) bookAppointment(w http.ResponseWriter, r *http.Request) {
	owner, ok := account.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	var req bookRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	appt, err := a.scheduler.Book(r.Context(), scheduling.BookingRequest{
		Owner:              owner,
		Date:               req.Date,
		Time:               req.Time,
		DurationMinutes:    req.DurationMinutes,
		AppointmentAddress: req.AppointmentAddress,
		ContactPerson:      req.ContactPerson,
		ContactPhone:       req.ContactPhone,
		IntercomName:       req.IntercomName,
	})
	if err != nil {
		if errors.Is(err, scheduling.ErrSlotTaken) {
			obs.BookingConflict()
		}
		handleSchedulingError(w, r, err)
		return
	}

	obs.BookingAccepted()
	a.publish(stream.Event{
		Type:          stream.EventBooked,
		AppointmentID: appt.ID,
		Date:          appt.Date,
		Time:          appt.Time,
		Status:        appt.Status,
	})
	_ = audit.LogEvent(r.Context(), "appointment.booked", map[string]any{
		"appointment_id": appt.ID,
		"date":           appt.Date,
		"time":           appt.Time,
	})

	w.Header().Set("Location", "/v1/appointments/"+appt.ID)
	writeJSON(w, http.StatusCreated, appt)
}

func (a *API) listMyAppointments(w http.ResponseWriter, r *http.Request) {
	owner, ok := account.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}
	items, err := a.scheduler.ListMine(r.Context(), owner)
	if err != nil {
		handleSchedulingError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (a *API) cancelAppointment(w http.ResponseWriter, r *http.Request) {
	owner, ok := account.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}
	id := chi.URLParam(r, "id")

	if err := a.scheduler.Cancel(r.Context(), owner, id); err != nil {
		handleSchedulingError(w, r, err)
		return
	}

	obs.BookingCancelled()
	a.publish(stream.Event{
		Type:          stream.EventCancelled,
		AppointmentID: id,
		Status:        scheduling.StatusCancelled,
	})
	_ = audit.LogEvent(r.Context(), "appointment.cancelled", map[string]any{
		"appointment_id": id,
	})

	w.WriteHeader(http.StatusNoContent)
}

func (a *API) confirmAppointment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	appt, err := a.scheduler.Confirm(r.Context(), id)
	if err != nil {
		handleSchedulingError(w, r, err)
		return
	}

	a.publish(stream.Event{
		Type:          stream.EventConfirmed,
		AppointmentID: appt.ID,
		Date:          appt.Date,
		Time:          appt.Time,
		Status:        appt.Status,
	})
	_ = audit.LogEvent(r.Context(), "appointment.confirmed", map[string]any{
		"appointment_id": appt.ID,
	})

	writeJSON(w, http.StatusOK, appt)
}

func (a *API) publish(evt stream.Event) {
	if a.events != nil {
		a.events.Publish(evt)
	}
}

func handleSchedulingError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, scheduling.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, scheduling.ErrSlotTaken):
		writeError(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, scheduling.ErrForbidden):
		writeError(w, r, http.StatusForbidden, err.Error())
	case errors.Is(err, scheduling.ErrNotFound):
		writeError(w, r, http.StatusNotFound, err.Error())
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}
