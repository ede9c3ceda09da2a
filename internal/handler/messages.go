package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/gforma/lead-assistant/internal/middleware"
	"github.com/gforma/lead-assistant/internal/model"
	"github.com/gforma/lead-assistant/internal/service"
	"github.com/gforma/lead-assistant/pkg/logger"
)

// MessageHandler handles visitor input: free text and actions.
type MessageHandler struct {
	sessions *service.SessionService
	logger   *logger.Logger
}

// NewMessageHandler creates a new message handler.
func NewMessageHandler(sessions *service.SessionService, log *logger.Logger) *MessageHandler {
	return &MessageHandler{
		sessions: sessions,
		logger:   log,
	}
}

// Send handles POST /api/v1/sessions/{id}/messages
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := middleware.ValidateSessionID(id); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
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

	resp, err := h.sessions.Send(r.Context(), id, &req)
	if err != nil {
		h.respondError(w, id, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Act handles POST /api/v1/sessions/{id}/actions
func (h *MessageHandler) Act(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := middleware.ValidateSessionID(id); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req model.ActionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := middleware.ValidateAction(req.Action); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.sessions.Act(r.Context(), id, &req)
	if err != nil {
		h.respondError(w, id, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *MessageHandler) respondError(w http.ResponseWriter, sessionID string, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("failed to process input", zap.String("session_id", sessionID), zap.Error(err))
	}
	writeError(w, status, msg)
}
