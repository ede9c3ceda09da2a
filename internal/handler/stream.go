package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/gforma/lead-assistant/internal/middleware"
	"github.com/gforma/lead-assistant/internal/model"
	"github.com/gforma/lead-assistant/internal/service"
	"github.com/gforma/lead-assistant/pkg/logger"
	"github.com/gforma/lead-assistant/pkg/metrics"
)

// StreamHandler handles SSE streaming endpoints.
type StreamHandler struct {
	sessions *service.SessionService
	logger   *logger.Logger
}

// NewStreamHandler creates a new stream handler.
func NewStreamHandler(sessions *service.SessionService, log *logger.Logger) *StreamHandler {
	return &StreamHandler{
		sessions: sessions,
		logger:   log,
	}
}

// DoneEvent closes a streamed turn.
type DoneEvent struct {
	Step model.Step `json:"step"`
}

// StreamWithMessage handles POST /api/v1/sessions/{id}/stream
// It accepts visitor text and streams a thinking event, then every message
// the turn produced, then done.
func (h *StreamHandler) StreamWithMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	if err := middleware.ValidateSessionID(id); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	current, err := h.sessions.Get(ctx, id)
	if err != nil {
		status, msg := statusFor(err)
		writeError(w, status, msg)
		return
	}

	var req model.SendMessageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := middleware.ValidateMessageContent(req.Content); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	metrics.IncrementSSEConnections()
	defer metrics.DecrementSSEConnections()

	_ = sendSSEEvent(w, flusher, "thinking", &model.ThinkingEvent{Step: current.Step})

	resp, err := h.sessions.Send(ctx, id, &req)
	if err != nil {
		status, msg := statusFor(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error("stream turn failed", zap.String("session_id", id), zap.Error(err))
		}
		_ = sendSSEEvent(w, flusher, "error", &model.ErrorEvent{
			Code:    errorCode(err),
			Message: msg,
		})
		return
	}

	for _, msg := range resp.Messages {
		select {
		case <-ctx.Done():
			h.logger.Debug("SSE client disconnected", zap.String("session_id", id))
			return
		default:
		}

		if err := sendSSEEvent(w, flusher, "message", msg); err != nil {
			h.logger.Warn("failed to write SSE event", zap.String("session_id", id), zap.Error(err))
			return
		}
	}

	_ = sendSSEEvent(w, flusher, "done", &DoneEvent{Step: resp.Step})
}

func sendSSEEvent(w http.ResponseWriter, flusher http.Flusher, event string, data interface{}) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, jsonData); err != nil {
		return err
	}
	flusher.Flush()

	return nil
}
