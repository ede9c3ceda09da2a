package conversation

import (
	"context"

	"go.uber.org/zap"

	"github.com/gforma/lead-assistant/internal/inference"
	"github.com/gforma/lead-assistant/internal/lead"
	"github.com/gforma/lead-assistant/internal/model"
)

func (e *Engine) handleCompanyName(ctx context.Context, t *turn, company string) {
	var (
		sector string
		found  bool
	)
	e.infer(ctx, func(ctx context.Context) {
		sector, found = e.gateway.DeduceSector(ctx, company)
	})

	if found {
		e.update(func(s *model.ConversationState) {
			s.CompanyName = company
			s.Sector = sector
			s.Step = model.StepAwaitingSectorConfirmation
		})
		t.emit(e.botMessage(sectorConfirmText(company, sector)))
		return
	}

	e.update(func(s *model.ConversationState) {
		s.CompanyName = company
		s.Sector = ""
		s.Step = model.StepAwaitingSectorManual
	})
	t.emit(e.botMessage(sectorUnknownText(company)))
}

func (e *Engine) handleSectorConfirmation(t *turn, reply string) {
	if isAffirmative(reply) {
		e.update(func(s *model.ConversationState) {
			s.Step = model.StepAwaitingDepartmentAndChallenge
		})
		t.emit(e.botMessage(sectorAcceptedText))
		return
	}

	e.update(func(s *model.ConversationState) {
		s.Step = model.StepAwaitingSectorManual
	})
	t.emit(e.botMessage(sectorRejectedText))
}

func (e *Engine) handleSectorManual(t *turn, sector string) {
	e.update(func(s *model.ConversationState) {
		s.Sector = sector
		s.Step = model.StepAwaitingDepartmentAndChallenge
	})
	t.emit(e.botMessage(sectorManualText(sector)))
}

func (e *Engine) handleDepartmentAndChallenge(ctx context.Context, t *turn, text string) {
	var analysis inference.ChallengeAnalysis
	e.infer(ctx, func(ctx context.Context) {
		analysis = e.gateway.AnalyzeChallenge(ctx, text)
	})

	if analysis.IsVague {
		t.emit(e.botMessage(vagueChallengeText))
		return
	}

	department := defaultDepartment
	if analysis.Department != nil && *analysis.Department != "" {
		department = *analysis.Department
	}
	challenge := text
	if analysis.Challenge != nil && *analysis.Challenge != "" {
		challenge = *analysis.Challenge
	}

	teacher, matched := e.directory.FindMatch(challenge)

	e.update(func(s *model.ConversationState) {
		s.Department = department
		s.Challenge = challenge
		s.Step = model.StepOfferingSyllabus
	})

	var msg model.ChatMessage
	if matched {
		msg = e.botMessage(teacherMatchText(department, teacher.ID))
		msg.MatchedTeacherID = teacher.ID
	} else {
		msg = e.botMessage(noTeacherText(challenge, department))
	}
	msg.Kind = model.KindSyllabusActionPrompt
	t.emit(msg)
}

func (e *Engine) handleGenerateSyllabus(ctx context.Context, t *turn) {
	state := e.State()

	var syllabus string
	e.infer(ctx, func(ctx context.Context) {
		syllabus = e.gateway.GenerateSyllabus(ctx, state.CompanyName, state.Sector, state.Department, state.Challenge)
	})

	e.update(func(s *model.ConversationState) {
		s.GeneratedSyllabus = syllabus
		s.Step = model.StepAwaitingContactInfo
	})

	msg := e.botMessage(syllabusHeaderText)
	msg.SyllabusContent = syllabus
	t.emit(msg)
	t.emit(e.botMessage(contactRequestText))
}

func (e *Engine) handleContactInfo(ctx context.Context, t *turn, text string) {
	if !hasContactChannel(text) {
		t.emit(e.botMessage(contactInvalidText))
		return
	}

	c := parseContact(text)
	l := lead.Finalize(e.State(), c.Name, c.Email, c.Phone)

	if e.sink != nil {
		if err := e.sink.Capture(context.WithoutCancel(ctx), l); err != nil {
			e.logger.Error("failed to capture lead",
				zap.String("lead_id", l.ID),
				zap.Error(err),
			)
		}
	}

	e.update(func(s *model.ConversationState) {
		s.Step = model.StepCompleted
	})
	e.publish(ctx, model.EventTypeCompleted, l.ID)

	msg := e.botMessage(completedText)
	msg.Kind = model.KindRestartPrompt
	t.emit(msg)
}
