package handler

import (
	"net/http"
)

// ConnectionChecker reports broker connectivity.
type ConnectionChecker interface {
	IsConnected() bool
}

// InferenceStatus reports whether a language model backend is configured.
type InferenceStatus interface {
	Available() bool
}

// SessionCounter reports the number of live chat sessions.
type SessionCounter interface {
	Len() int
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string `json:"status"`
	Sessions  int    `json:"sessions"`
	Inference string `json:"inference"`
	Broker    string `json:"broker"`
}

// HealthHandler handles health check endpoints. Every dependency is optional.
type HealthHandler struct {
	broker    ConnectionChecker
	inference InferenceStatus
	sessions  SessionCounter
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(broker ConnectionChecker, inference InferenceStatus, sessions SessionCounter) *HealthHandler {
	return &HealthHandler{broker: broker, inference: inference, sessions: sessions}
}

// Health handles GET /health. It always answers 200: the chatbot degrades to
// fallback copy without a model and keeps leads in memory without a broker.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:    "healthy",
		Inference: "fallback",
		Broker:    "disabled",
	}
	if h.sessions != nil {
		resp.Sessions = h.sessions.Len()
	}
	if h.inference != nil && h.inference.Available() {
		resp.Inference = "available"
	}
	if h.broker != nil {
		resp.Broker = "disconnected"
		if h.broker.IsConnected() {
			resp.Broker = "connected"
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// Ready handles GET /ready. A configured broker must be connected.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.broker != nil && !h.broker.IsConnected() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"reason": "lead broker not connected",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
