package httpapi

import (
	"errors"
	"net/http"

	"spaziopratiche.org/internal/audit"
	"spaziopratiche.org/internal/contact"
	"spaziopratiche.org/internal/stream"
)

func (a *API) submitContact(w http.ResponseWriter, r *http.Request) {
	var sub contact.Submission
	if err := decodeJSON(w, r, &sub); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	req, err := a.contacts.Submit(r.Context(), sub)
	if err != nil {
		if errors.Is(err, contact.ErrInvalidInput) {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, r, http.StatusInternalServerError, "could not record request")
		return
	}

	a.publish(stream.Event{Type: stream.EventContact, ContactID: req.ID})
	_ = audit.LogEvent(r.Context(), "contact.received", map[string]any{
		"contact_id": req.ID,
		"service":    req.Service,
	})

	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "Richiesta inviata con successo. Ti ricontatteremo presto.",
		"id":      req.ID,
	})
}

func (a *API) listContacts(w http.ResponseWriter, r *http.Request) {
	items, err := a.contacts.List(r.Context())
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "listing failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}
