package handler

import (
	"bytes"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/gforma/lead-assistant/internal/lead"
	"github.com/gforma/lead-assistant/internal/middleware"
	"github.com/gforma/lead-assistant/internal/service"
	"github.com/gforma/lead-assistant/pkg/logger"
)

// LoginRequest is the admin login body.
type LoginRequest struct {
	Password string `json:"password"`
}

// LoginResponse carries the issued admin token.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AdminHandler handles the password-gated lead review endpoints.
type AdminHandler struct {
	leads     *service.LeadService
	password  string
	jwtSecret string
	tokenTTL  time.Duration
	logger    *logger.Logger
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(leads *service.LeadService, password, jwtSecret string, tokenTTL time.Duration, log *logger.Logger) *AdminHandler {
	return &AdminHandler{
		leads:     leads,
		password:  password,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		logger:    log,
	}
}

// Login handles POST /api/v1/admin/login
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if !middleware.PasswordMatches(req.Password, h.password) {
		h.logger.Warn("admin login rejected", zap.String("remote_addr", r.RemoteAddr))
		writeError(w, http.StatusUnauthorized, "invalid password")
		return
	}

	token, expiresAt, err := middleware.IssueToken(h.jwtSecret, middleware.AdminSubject, []string{middleware.ScopeLeadsRead}, h.tokenTTL)
	if err != nil {
		h.logger.Error("failed to issue admin token", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	writeJSON(w, http.StatusOK, &LoginResponse{Token: token, ExpiresAt: expiresAt})
}

// ListLeads handles GET /api/v1/admin/leads
func (h *AdminHandler) ListLeads(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.leads.List(r.Context()))
}

// ExportLeads handles GET /api/v1/admin/leads/export
func (h *AdminHandler) ExportLeads(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.leads.Export(r.Context(), &buf); err != nil {
		h.logger.Error("failed to export leads", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to export leads")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+lead.ExportFilename(time.Now())+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
