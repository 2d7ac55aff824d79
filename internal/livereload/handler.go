package livereload

import (
	"net/http"

	"livedev/internal/logging"
)

// Handler serves the event stream and the update trigger.
type Handler struct {
	registry *Registry
	logger   *logging.Logger
}

// NewHandler wires the HTTP endpoints to registry.
func NewHandler(registry *Registry, logger *logging.Logger) *Handler {
	return &Handler{
		registry: registry,
		logger:   logger,
	}
}

// Stream keeps the response open until the next broadcast or until the
// browser goes away.
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	client := NewClient()
	h.registry.Register(client)

	select {
	case frame := <-client.Frames():
		// The client is already out of the registry; a failed write only
		// means the tab closed in the meantime.
		if _, err := w.Write(frame); err == nil {
			flusher.Flush()
		}
	case <-r.Context().Done():
		h.registry.Remove(client)
	}
}

// Update broadcasts a reload and answers with an empty text/plain body.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	delivered := h.registry.Broadcast()
	h.logger.Info("Reload broadcast", map[string]interface{}{
		"clients": delivered,
	})

	w.Header().Set("Cache-Control", "no-cache, no-store")
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
}
