package handler

import (
	"bufio"
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gforma/lead-assistant/internal/directory"
	"github.com/gforma/lead-assistant/internal/inference"
	"github.com/gforma/lead-assistant/internal/lead"
	"github.com/gforma/lead-assistant/internal/model"
	"github.com/gforma/lead-assistant/internal/service"
	"github.com/gforma/lead-assistant/pkg/logger"
)

const (
	testPassword = "secret-pass"
	testSecret   = "jwt-secret"
)

type stubGateway struct{}

func (stubGateway) DeduceSector(_ context.Context, company string) (string, bool) {
	if company == "Acme Corp" {
		return "Retail", true
	}
	return "", false
}

func (stubGateway) AnalyzeChallenge(_ context.Context, text string) inference.ChallengeAnalysis {
	dept := "Ventas"
	return inference.ChallengeAnalysis{Department: &dept, Challenge: &text}
}

func (stubGateway) GenerateSyllabus(_ context.Context, _, _, _, _ string) string {
	return "1. Uno\n2. Dos\n3. Tres\n4. Cuatro\n5. Cinco"
}

type brokerStub bool

func (b brokerStub) IsConnected() bool { return bool(b) }

type testServer struct {
	t      *testing.T
	router http.Handler
}

func newTestServer(t *testing.T, broker ConnectionChecker) *testServer {
	t.Helper()
	log := logger.NewNop()
	leads := service.NewLeadService(lead.NewStore(), nil, log)
	sessions := service.NewSessionService(stubGateway{}, directory.Default(), leads, log)

	return &testServer{t: t, router: NewRouter(RouterConfig{
		Sessions:          sessions,
		Leads:             leads,
		Broker:            broker,
		Logger:            log,
		AdminPassword:     testPassword,
		JWTSecret:         testSecret,
		JWTExpiration:     time.Minute,
		RateLimitRequests: 1000,
		RateLimitWindow:   time.Minute,
	})}
}

func (s *testServer) do(method, path, body, token string) *httptest.ResponseRecorder {
	s.t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) createSession() model.SessionResponse {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/api/v1/sessions", "", "")
	require.Equal(s.t, http.StatusCreated, rec.Code)

	var sess model.SessionResponse
	require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &sess))
	return sess
}

func (s *testServer) send(id, content string) *httptest.ResponseRecorder {
	body, _ := json.Marshal(model.SendMessageRequest{Content: content})
	return s.do(http.MethodPost, "/api/v1/sessions/"+id+"/messages", string(body), "")
}

func (s *testServer) act(id string, action model.Action) *httptest.ResponseRecorder {
	body, _ := json.Marshal(model.ActionRequest{Action: action})
	return s.do(http.MethodPost, "/api/v1/sessions/"+id+"/actions", string(body), "")
}

func (s *testServer) login() string {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/api/v1/admin/login", `{"password":"`+testPassword+`"}`, "")
	require.Equal(s.t, http.StatusOK, rec.Code)

	var resp LoginResponse
	require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(s.t, resp.Token)
	return resp.Token
}

func decodeTurn(t *testing.T, rec *httptest.ResponseRecorder) model.TurnResponse {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var turn model.TurnResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &turn))
	return turn
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)

	s.createSession()

	rec := s.do(http.MethodGet, "/health", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var health HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	require.Equal(t, HealthResponse{Status: "healthy", Sessions: 1, Inference: "fallback", Broker: "disabled"}, health)
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/ready", "", "").Code)

	down := newTestServer(t, brokerStub(false))
	rec = down.do(http.MethodGet, "/health", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"broker":"disconnected"`)
	require.Equal(t, http.StatusServiceUnavailable, down.do(http.MethodGet, "/ready", "", "").Code)
}

func TestCreateAndGetSession(t *testing.T) {
	s := newTestServer(t, nil)
	sess := s.createSession()

	require.Equal(t, model.StepInit, sess.Step)
	require.Len(t, sess.Messages, 1)
	require.Equal(t, model.KindOptionsPrompt, sess.Messages[0].Kind)

	rec := s.do(http.MethodGet, "/api/v1/sessions/"+sess.ID, "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodDelete, "/api/v1/sessions/"+sess.ID, "", "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(http.MethodGet, "/api/v1/sessions/"+sess.ID, "", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSessionID_Validation(t *testing.T) {
	s := newTestServer(t, nil)
	require.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/v1/sessions/not-a-uuid", "", "").Code)
}

func TestMessages_ErrorMapping(t *testing.T) {
	s := newTestServer(t, nil)
	sess := s.createSession()

	require.Equal(t, http.StatusBadRequest, s.send(sess.ID, "   ").Code)
	require.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/api/v1/sessions/"+sess.ID+"/messages", "{", "").Code)
	require.Equal(t, http.StatusBadRequest, s.act(sess.ID, "fly").Code)
	require.Equal(t, http.StatusConflict, s.act(sess.ID, model.ActionGenerateSyllabus).Code)
	require.Equal(t, http.StatusNotFound, s.send("0190a6b2-7c1e-7b3a-9f00-000000000001", "hola").Code)
}

func TestFullConversationAndAdminExport(t *testing.T) {
	s := newTestServer(t, nil)
	sess := s.createSession()

	turn := decodeTurn(t, s.send(sess.ID, "Acme Corp"))
	require.Equal(t, model.StepAwaitingSectorConfirmation, turn.Step)

	decodeTurn(t, s.send(sess.ID, "sí"))

	turn = decodeTurn(t, s.send(sess.ID, "Sales team needs to close more deals"))
	require.Equal(t, model.StepOfferingSyllabus, turn.Step)

	turn = decodeTurn(t, s.act(sess.ID, model.ActionGenerateSyllabus))
	require.Equal(t, model.StepAwaitingContactInfo, turn.Step)
	require.Equal(t, "1. Uno\n2. Dos\n3. Tres\n4. Cuatro\n5. Cinco", turn.Messages[0].SyllabusContent)

	turn = decodeTurn(t, s.send(sess.ID, "Juan Perez, juan@acme.com, 600123456"))
	require.Equal(t, model.StepCompleted, turn.Step)
	require.Equal(t, http.StatusConflict, s.send(sess.ID, "otra").Code)

	require.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/v1/admin/leads", "", "").Code)

	token := s.login()

	rec := s.do(http.MethodGet, "/api/v1/admin/leads", "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	var list model.ListLeadsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Equal(t, 1, list.Total)
	require.Equal(t, "Acme Corp", list.Leads[0].CompanyName)
	require.Equal(t, "Retail", list.Leads[0].Sector)
	require.Equal(t, "juan@acme.com", list.Leads[0].ContactEmail)
	require.Equal(t, "600123456", list.Leads[0].ContactPhone)

	rec = s.do(http.MethodGet, "/api/v1/admin/leads/export", "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Disposition"), "gforma_leads_")
	rows, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "Empresa", rows[0][2])
	require.Equal(t, "Acme Corp", rows[1][2])
}

func TestAdminLogin_WrongPassword(t *testing.T) {
	s := newTestServer(t, nil)
	rec := s.do(http.MethodPost, "/api/v1/admin/login", `{"password":"nope"}`, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRestartAction(t *testing.T) {
	s := newTestServer(t, nil)
	sess := s.createSession()
	decodeTurn(t, s.send(sess.ID, "Acme Corp"))

	turn := decodeTurn(t, s.act(sess.ID, model.ActionRestart))
	require.Equal(t, model.StepInit, turn.Step)
	require.Len(t, turn.Messages, 1)

	rec := s.do(http.MethodGet, "/api/v1/sessions/"+sess.ID, "", "")
	var got model.SessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got.Messages, 1)
}

type sseEvent struct {
	name string
	data string
}

func readSSE(t *testing.T, body string) []sseEvent {
	t.Helper()
	var events []sseEvent
	var cur sseEvent
	sc := bufio.NewScanner(strings.NewReader(body))
	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			cur.name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			cur.data = strings.TrimPrefix(line, "data: ")
		case line == "":
			if cur.name != "" {
				events = append(events, cur)
			}
			cur = sseEvent{}
		}
	}
	require.NoError(t, sc.Err())
	return events
}

func TestStream(t *testing.T) {
	s := newTestServer(t, nil)
	sess := s.createSession()

	rec := s.do(http.MethodPost, "/api/v1/sessions/"+sess.ID+"/stream", `{"content":"Acme Corp"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	events := readSSE(t, rec.Body.String())
	names := make([]string, len(events))
	for i, e := range events {
		names[i] = e.name
	}
	require.Equal(t, []string{"thinking", "message", "message", "done"}, names)

	var done DoneEvent
	require.NoError(t, json.Unmarshal([]byte(events[3].data), &done))
	require.Equal(t, model.StepAwaitingSectorConfirmation, done.Step)
}

func TestStream_ErrorEvent(t *testing.T) {
	s := newTestServer(t, nil)
	sess := s.createSession()
	decodeTurn(t, s.send(sess.ID, "Acme Corp"))
	decodeTurn(t, s.send(sess.ID, "sí"))
	decodeTurn(t, s.send(sess.ID, "Equipo comercial, negociación"))
	decodeTurn(t, s.act(sess.ID, model.ActionGenerateSyllabus))
	decodeTurn(t, s.send(sess.ID, "Ana, ana@x.com"))

	rec := s.do(http.MethodPost, "/api/v1/sessions/"+sess.ID+"/stream", `{"content":"hola"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)

	events := readSSE(t, rec.Body.String())
	require.Len(t, events, 2)
	require.Equal(t, "thinking", events[0].name)
	require.Equal(t, "error", events[1].name)

	var e model.ErrorEvent
	require.NoError(t, json.Unmarshal([]byte(events[1].data), &e))
	require.Equal(t, "completed", e.Code)
}

func TestStream_RejectsBeforeStreaming(t *testing.T) {
	s := newTestServer(t, nil)
	sess := s.createSession()

	rec := s.do(http.MethodPost, "/api/v1/sessions/"+sess.ID+"/stream", `{"content":"   "}`, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/api/v1/sessions/0190a6b2-7c1e-7b3a-9f00-000000000001/stream", `{"content":"hola"}`, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}
