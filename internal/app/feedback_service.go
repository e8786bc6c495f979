package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"feedback_reminder_service/internal/domain/feedback"
	"feedback_reminder_service/internal/domain/reminder"
	idb "feedback_reminder_service/internal/infra/database"

	"github.com/sirupsen/logrus"
)

// ValidationError is a rejected request. It is raised before any storage access.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

const (
	MsgFeedbackSubmitted        = "Feedback submitted successfully"
	MsgFeedbackAlreadySubmitted = "Feedback already submitted"
)

// SubmitFeedbackInput is the participant-supplied part of a submission.
type SubmitFeedbackInput struct {
	CourseID        int64
	SessionDate     string // optional, YYYY-MM-DD
	Comment         string
	Improvement     string
	SuggestedTopics string
}

// SubmitResult reports whether a new submission was stored.
type SubmitResult struct {
	AlreadySubmitted bool
	Submission       *feedback.Submission // nil when AlreadySubmitted
}

func (r SubmitResult) Message() string {
	if r.AlreadySubmitted {
		return MsgFeedbackAlreadySubmitted
	}
	return MsgFeedbackSubmitted
}

type FeedbackService struct {
	feedbackRepo feedback.Repository
	reminders    reminder.Ledger
	logger       *logrus.Entry
}

func NewFeedbackService(fr feedback.Repository, rl reminder.Ledger, logger *logrus.Entry) *FeedbackService {
	return &FeedbackService{
		feedbackRepo: fr,
		reminders:    rl,
		logger:       logger,
	}
}

// Submit stores at most one submission per (participant, course, session date).
// A repeated key yields a successful AlreadySubmitted result and writes nothing.
func (s *FeedbackService) Submit(ctx context.Context, participantID int64, in SubmitFeedbackInput) (SubmitResult, error) {
	if participantID <= 0 {
		return SubmitResult{}, &ValidationError{Message: "Missing participant identity"}
	}
	if in.CourseID <= 0 {
		return SubmitResult{}, &ValidationError{Message: "Missing courseId"}
	}

	// Only an empty string means "no session date"; anything else must parse as is.
	var sessionDate sql.NullTime
	if in.SessionDate != "" {
		d, err := time.Parse(reminder.DateLayout, in.SessionDate)
		if err != nil {
			return SubmitResult{}, &ValidationError{Message: "Invalid sessionDate format. Expected YYYY-MM-DD"}
		}
		sessionDate = sql.NullTime{Time: d, Valid: true}
	}

	sub := &feedback.Submission{
		ParticipantID:         participantID,
		CourseID:              in.CourseID,
		SessionDate:           sessionDate,
		Comment:               in.Comment,
		ImprovementSuggestion: in.Improvement,
		SuggestedTopics:       in.SuggestedTopics,
	}
	key := sub.Key()
	log := s.logger.WithFields(logrus.Fields{
		"participant_id": key.ParticipantID,
		"course_id":      key.CourseID,
		"session_date":   key.SessionDate,
	})

	exists, err := s.feedbackRepo.Exists(ctx, key)
	if err != nil {
		log.WithError(err).Error("Failed to check existing feedback")
		return SubmitResult{}, fmt.Errorf("failed to check existing feedback: %w", err)
	}
	if exists {
		log.Info("Feedback already submitted, nothing to do")
		return SubmitResult{AlreadySubmitted: true}, nil
	}

	if err := s.feedbackRepo.Create(ctx, sub); err != nil {
		if errors.Is(err, idb.ErrDuplicateKey) {
			log.Info("Feedback stored concurrently by a parallel request")
			return SubmitResult{AlreadySubmitted: true}, nil
		}
		log.WithError(err).Error("Failed to store feedback")
		return SubmitResult{}, fmt.Errorf("failed to store feedback: %w", err)
	}

	log.WithField("feedback_id", sub.ID).Info("Feedback stored")
	return SubmitResult{Submission: sub}, nil
}

// PendingReminders lists the participant's reminders that have not been sent yet.
func (s *FeedbackService) PendingReminders(ctx context.Context, participantID int64) ([]*reminder.Record, error) {
	records, err := s.reminders.ListUnsentByParticipant(ctx, participantID)
	if err != nil {
		s.logger.WithError(err).WithField("participant_id", participantID).Error("Failed to list pending reminders")
		return nil, fmt.Errorf("failed to list pending reminders: %w", err)
	}
	return records, nil
}
