package handlers

import (
	"fmt"
	"net/http"
	"time"
)

// keepAliveInterval spaces the SSE comment pings that stop idle proxies
// from reaping the connection.
const keepAliveInterval = 15 * time.Second

// Events serves the server-sent event stream. Each client gets its own
// buffered subscription; a slow client loses events rather than stalling
// the publishers.
func (a *App) Events(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		a.error(w, http.StatusInternalServerError, "internal", "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	sub := a.Hub.Subscribe()
	defer a.Hub.Unsubscribe(sub)

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			fmt.Fprint(w, ": keep-alive\n\n")
			flusher.Flush()
		case evt, open := <-sub.C:
			if !open {
				return
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", evt.Name, evt.Data)
			flusher.Flush()
		}
	}
}
