package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"ecosort/internal/types"
)

// ScanEvents streams controller events over SSE until the client
// disconnects.
func (h *Handler) ScanEvents(w http.ResponseWriter, r *http.Request) {
	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	// Subscribe to controller events
	events := h.controller.Subscribe()
	defer h.controller.Unsubscribe(events)

	// Send initial state
	h.sendEvent(w, flusher, "state", fmt.Sprintf(`{"state":%q}`, h.controller.State()))

	// Listen for events
	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			h.sendScanEvent(w, flusher, event)
		}
	}
}

func (h *Handler) sendScanEvent(w http.ResponseWriter, flusher http.Flusher, event *types.ScanEvent) {
	jsonData, _ := json.Marshal(event)
	h.sendEvent(w, flusher, event.Name, string(jsonData))
}

func (h *Handler) sendEvent(w http.ResponseWriter, flusher http.Flusher, event, data string) {
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	flusher.Flush()
}
