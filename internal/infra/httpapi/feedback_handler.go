package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"feedback_reminder_service/internal/app"
	"feedback_reminder_service/internal/domain/reminder"

	"github.com/sirupsen/logrus"
)

// courseID accepts either a JSON number or a numeric string.
type courseID int64

func (c *courseID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*c = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*c = 0
			return nil
		}
		data = []byte(s)
	}
	v, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return err
	}
	*c = courseID(v)
	return nil
}

type submitFeedbackRequest struct {
	CourseID        courseID `json:"courseId"`
	SessionDate     string   `json:"sessionDate"`
	Comment         string   `json:"comment"`
	Improvement     string   `json:"improvement"`
	SuggestedTopics string   `json:"suggestedTopics"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type reminderDTO struct {
	ID            int64     `json:"id"`
	ParticipantID int64     `json:"participantId"`
	CourseID      int64     `json:"courseId"`
	SessionDate   *string   `json:"sessionDate"`
	Type          string    `json:"type"`
	IsSent        bool      `json:"isSent"`
	CreatedAt     time.Time `json:"createdAt"`
}

type remindersResponse struct {
	Reminders []reminderDTO `json:"reminders"`
}

func toReminderDTO(r *reminder.Record) reminderDTO {
	dto := reminderDTO{
		ID:            r.ID,
		ParticipantID: r.ParticipantID,
		CourseID:      r.CourseID,
		Type:          string(r.Type),
		IsSent:        r.IsSent,
		CreatedAt:     r.CreatedAt,
	}
	if r.SessionDate.Valid {
		d := r.SessionDate.Time.Format(reminder.DateLayout)
		dto.SessionDate = &d
	}
	return dto
}

type FeedbackHandler struct {
	service *app.FeedbackService
	logger  *logrus.Entry
}

func NewFeedbackHandler(svc *app.FeedbackService, logger *logrus.Entry) *FeedbackHandler {
	return &FeedbackHandler{service: svc, logger: logger}
}

// Submit handles POST /api/feedback/submit.
func (h *FeedbackHandler) Submit(w http.ResponseWriter, r *http.Request) {
	participantID, ok := ParticipantFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Missing or invalid Authorization header")
		return
	}

	var req submitFeedbackRequest
	// An empty body is treated like {} so it fails on the missing courseId.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	result, err := h.service.Submit(r.Context(), participantID, app.SubmitFeedbackInput{
		CourseID:        int64(req.CourseID),
		SessionDate:     req.SessionDate,
		Comment:         req.Comment,
		Improvement:     req.Improvement,
		SuggestedTopics: req.SuggestedTopics,
	})
	if err != nil {
		var verr *app.ValidationError
		if errors.As(err, &verr) {
			writeError(w, http.StatusBadRequest, verr.Message)
			return
		}
		h.logger.WithError(err).WithField("participant_id", participantID).Error("Feedback submission failed")
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: result.Message()})
}

// Reminders handles GET /api/feedback/reminder.
func (h *FeedbackHandler) Reminders(w http.ResponseWriter, r *http.Request) {
	participantID, ok := ParticipantFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Missing or invalid Authorization header")
		return
	}

	records, err := h.service.PendingReminders(r.Context(), participantID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}

	out := remindersResponse{Reminders: make([]reminderDTO, 0, len(records))}
	for _, rec := range records {
		out.Reminders = append(out.Reminders, toReminderDTO(rec))
	}
	writeJSON(w, http.StatusOK, out)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
