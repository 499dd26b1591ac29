// Package audit records who did what on the scheduling authority. Entries go
// out on the shared structured logger, tagged so they can be split from the
// request log downstream.
package audit

import (
	"context"
	"errors"
	"strings"

	"spaziopratiche.org/internal/account"
	"spaziopratiche.org/internal/obs"
)

type ctxKey string

const requestIDKey ctxKey = "audit_request_id"

// WithRequestID attaches the request identifier to the context for audit logging.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, requestID)
}

func requestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

// LogEvent records one lifecycle action: a booking, a cancellation, a login.
// The acting account and the request id are taken from the context when
// present; detail fields ride along unchanged.
func LogEvent(ctx context.Context, event string, detail map[string]any) error {
	event = strings.TrimSpace(event)
	if event == "" {
		return errors.New("event name is required")
	}

	entry := map[string]any{
		"type":   "audit",
		"event":  event,
		"fields": detail,
	}
	if detail == nil {
		entry["fields"] = map[string]any{}
	}
	if rid := requestIDFromContext(ctx); rid != "" {
		entry["request_id"] = rid
	}
	if accountID, ok := account.UserIDFromContext(ctx); ok {
		entry["account_id"] = accountID
	}

	obs.Log("info", "audit", entry)
	return nil
}
