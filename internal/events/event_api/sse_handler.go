package event_api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"ms-scheduler/internal/apperrors"
	"ms-scheduler/internal/auth"
	"ms-scheduler/internal/logger"
	"ms-scheduler/internal/sse"
	"ms-scheduler/internal/utils"
)

// SSEHandler streams event changes to the profiles taking part in them.
type SSEHandler struct {
	Logger  *logger.Logger
	Emitter *sse.EventChangeEmitter
}

func NewSSEHandler(log *logger.Logger, emitter *sse.EventChangeEmitter) *SSEHandler {
	return &SSEHandler{Logger: log, Emitter: emitter}
}

// HandleProfileStream serves GET /api/events/stream?profileId=.
func (h *SSEHandler) HandleProfileStream(w http.ResponseWriter, r *http.Request) {
	profileID := r.URL.Query().Get("profileId")
	if profileID == "" {
		profileID = auth.ProfileID(r.Context())
	}
	if profileID == "" {
		utils.WriteError(w, apperrors.New(apperrors.BadRequest, "Profile ID is required"))
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.WriteError(w, fmt.Errorf("streaming unsupported"))
		return
	}

	h.setupSSEHeaders(w)

	ctx := r.Context()
	changes := h.Emitter.Subscribe(ctx, profileID)

	fmt.Fprintf(w, "event: connected\ndata: {\"status\":\"connected\",\"profileId\":%q}\n\n", profileID)
	flusher.Flush()

	h.Logger.Info("SSE", fmt.Sprintf("Client connected for profile: %s", profileID))

	for {
		select {
		case change, ok := <-changes:
			if !ok {
				return
			}
			data, err := json.Marshal(change)
			if err != nil {
				h.Logger.Error("SSE", fmt.Sprintf("Failed to serialize change: %v", err))
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", change.Type, data)
			flusher.Flush()

		case <-ctx.Done():
			h.Logger.Debug("SSE", fmt.Sprintf("Client disconnected for profile: %s", profileID))
			return
		}
	}
}

func (h *SSEHandler) setupSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream;charset=UTF-8")
	w.Header().Set("Cache-Control", "no-cache, no-store, max-age=0, must-revalidate")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Content-Type-Options", "nosniff")
}
