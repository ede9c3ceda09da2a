package service

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/gforma/lead-assistant/internal/conversation"
	"github.com/gforma/lead-assistant/internal/lead"
	"github.com/gforma/lead-assistant/internal/model"
	"github.com/gforma/lead-assistant/pkg/logger"
	"github.com/gforma/lead-assistant/pkg/metrics"
)

// LeadPublisher forwards captured leads to an event stream.
type LeadPublisher interface {
	PublishLead(ctx context.Context, lead *model.Lead) (uint64, error)
}

// LeadService keeps captured leads for the admin view and forwards them to
// the event stream when one is configured. It implements lead.Sink.
type LeadService struct {
	store     *lead.Store
	publisher LeadPublisher
	logger    *logger.Logger
}

// NewLeadService creates a new lead service. publisher may be nil.
func NewLeadService(store *lead.Store, publisher LeadPublisher, log *logger.Logger) *LeadService {
	return &LeadService{
		store:     store,
		publisher: publisher,
		logger:    log,
	}
}

// Capture stores the lead and publishes it. A publish failure is logged and
// counted; the lead stays in the store.
func (s *LeadService) Capture(ctx context.Context, l model.Lead) error {
	if err := s.store.Capture(ctx, l); err != nil {
		return fmt.Errorf("failed to store lead: %w", err)
	}
	metrics.RecordLeadCaptured(contactChannel(l))

	s.logger.Info("lead captured",
		zap.String("lead_id", l.ID),
		zap.String("company", l.CompanyName),
		zap.String("sector", l.Sector),
	)

	if s.publisher == nil {
		return nil
	}

	seq, err := s.publisher.PublishLead(ctx, &l)
	if err != nil {
		metrics.LeadsPublishFailuresTotal.Inc()
		s.logger.Warn("failed to publish lead", zap.String("lead_id", l.ID), zap.Error(err))
		return nil
	}

	s.logger.Debug("lead published", zap.String("lead_id", l.ID), zap.Uint64("sequence", seq))
	return nil
}

// List returns captured leads, most recent first.
func (s *LeadService) List(ctx context.Context) *model.ListLeadsResponse {
	leads := s.store.List()
	return &model.ListLeadsResponse{Leads: leads, Total: len(leads)}
}

// Export writes all captured leads as CSV.
func (s *LeadService) Export(ctx context.Context, w io.Writer) error {
	return lead.WriteCSV(w, s.store.List())
}

func contactChannel(l model.Lead) string {
	hasEmail := l.ContactEmail != "" && l.ContactEmail != conversation.NoEmail
	hasPhone := l.ContactPhone != "" && l.ContactPhone != conversation.NoPhone
	switch {
	case hasEmail && hasPhone:
		return "both"
	case hasEmail:
		return "email"
	case hasPhone:
		return "phone"
	default:
		return "none"
	}
}
