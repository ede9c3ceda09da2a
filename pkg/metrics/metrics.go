// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// InferenceDuration tracks language-model call duration per gateway operation.
	InferenceDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "inference_duration_seconds",
			Help:    "Inference backend call duration",
			Buckets: []float64{.1, .25, .5, 1, 2, 5, 10, 20, 30, 60},
		},
		[]string{"operation", "outcome"},
	)

	// InferenceRequestsTotal counts gateway operations by outcome (ok, fallback, unavailable).
	InferenceRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inference_requests_total",
			Help: "Total inference gateway operations",
		},
		[]string{"operation", "outcome"},
	)

	// LLMTokensTotal tracks total LLM tokens processed.
	LLMTokensTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_tokens_total",
			Help: "Total LLM tokens processed",
		},
		[]string{"model", "direction"},
	)

	// SSEConnectionsActive tracks active SSE connections.
	SSEConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sse_connections_active",
			Help: "Number of active SSE connections",
		},
	)

	// SessionsActive tracks live chat sessions.
	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chat_sessions_active",
			Help: "Number of live chat sessions",
		},
	)

	// ConversationTransitionsTotal counts step changes of the conversation engine.
	ConversationTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "conversation_transitions_total",
			Help: "Conversation step transitions",
		},
		[]string{"from", "to"},
	)

	// LeadsCapturedTotal counts captured leads by the contact channel supplied
	// (email, phone or both).
	LeadsCapturedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leads_captured_total",
			Help: "Total leads captured",
		},
		[]string{"contact"},
	)

	// LeadsPublishFailuresTotal counts leads that could not be published to NATS.
	LeadsPublishFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "leads_publish_failures_total",
			Help: "Leads that failed to publish to the event stream",
		},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordInference records one gateway operation.
func RecordInference(operation, outcome string, duration float64) {
	InferenceDuration.WithLabelValues(operation, outcome).Observe(duration)
	InferenceRequestsTotal.WithLabelValues(operation, outcome).Inc()
}

// RecordTokens records token usage reported by the backend.
func RecordTokens(model string, tokensIn, tokensOut int) {
	LLMTokensTotal.WithLabelValues(model, "in").Add(float64(tokensIn))
	LLMTokensTotal.WithLabelValues(model, "out").Add(float64(tokensOut))
}

// RecordTransition records a conversation step change.
func RecordTransition(from, to string) {
	ConversationTransitionsTotal.WithLabelValues(from, to).Inc()
}

// IncrementSSEConnections increments the active SSE connection count.
func IncrementSSEConnections() {
	SSEConnectionsActive.Inc()
}

// DecrementSSEConnections decrements the active SSE connection count.
func DecrementSSEConnections() {
	SSEConnectionsActive.Dec()
}

// RecordLeadCaptured records a captured lead.
func RecordLeadCaptured(contact string) {
	LeadsCapturedTotal.WithLabelValues(contact).Inc()
}
