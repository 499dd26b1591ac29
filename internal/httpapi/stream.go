package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// streamEvents feeds the booking lifecycle to staff dashboards over
// Server-Sent Events. Each frame names the event type so a consumer can
// subscribe to cancellations alone.
func (a *API) streamEvents(w http.ResponseWriter, r *http.Request) {
	if a.events == nil {
		writeError(w, r, http.StatusServiceUnavailable, "streaming disabled")
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, r, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := a.events.Subscribe(r.Context())

	// Opening comment so proxies commit to the stream right away.
	fmt.Fprint(w, ": stream started\n\n")
	flusher.Flush()

	for event := range ch {
		payload, err := json.Marshal(event)
		if err != nil {
			continue
		}
		fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, payload)
		flusher.Flush()
	}
}
