package httpapi

import (
	"errors"
	"net/http"
	"time"

	"spaziopratiche.org/internal/account"
	"spaziopratiche.org/internal/audit"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string           `json:"access_token"`
	ExpiresAt   time.Time        `json:"expires_at"`
	User        *account.Account `json:"user"`
}

func (a *API) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	acct, token, err := a.accounts.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, account.ErrUnauthorized) {
			writeError(w, r, http.StatusUnauthorized, "invalid credentials")
			return
		}
		writeError(w, r, http.StatusInternalServerError, "login failed")
		return
	}

	_ = audit.LogEvent(r.Context(), "auth.login", map[string]any{
		"account_id": acct.ID,
		"username":   acct.Username,
	})

	writeJSON(w, http.StatusOK, loginResponse{
		AccessToken: token,
		ExpiresAt:   time.Now().UTC().Add(account.TokenTTL),
		User:        acct,
	})
}

func (a *API) register(w http.ResponseWriter, r *http.Request) {
	var reg account.Registration
	if err := decodeJSON(w, r, &reg); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	acct, err := a.accounts.Register(r.Context(), reg)
	if err != nil {
		switch {
		case errors.Is(err, account.ErrInvalidInput):
			writeError(w, r, http.StatusBadRequest, err.Error())
		case errors.Is(err, account.ErrAlreadyExists):
			writeError(w, r, http.StatusBadRequest, "username already taken")
		default:
			writeError(w, r, http.StatusInternalServerError, "registration failed")
		}
		return
	}

	_ = audit.LogEvent(r.Context(), "auth.register", map[string]any{
		"account_id": acct.ID,
		"username":   acct.Username,
	})

	writeJSON(w, http.StatusCreated, map[string]any{"id": acct.ID})
}

func (a *API) me(w http.ResponseWriter, r *http.Request) {
	accountID, ok := account.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}
	acct, err := a.accounts.Get(r.Context(), accountID)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			writeError(w, r, http.StatusUnauthorized, "account no longer exists")
			return
		}
		writeError(w, r, http.StatusInternalServerError, "lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, acct)
}
