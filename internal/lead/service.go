package lead

import (
	"context"
	"net/mail"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/agribrazil/leadchat/internal/models"
	"github.com/agribrazil/leadchat/internal/storage"
)

// ValidationError reports a rejected submission. It is returned before
// any write happens.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// Submission is the lead-capture payload, submitted explicitly through
// the widget's contact form or assembled from a qualified chat. The
// session identifier correlates the submission to its conversation in
// logs; it is not stored on the lead record.
type Submission struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone,omitempty"`
	ProjectType string `json:"projectType,omitempty"`
	Budget      string `json:"budget,omitempty"`
	Timeline    string `json:"timeline,omitempty"`
	Message     string `json:"message,omitempty"`
	SessionID   string `json:"sessionId"`
}

// Result is the tagged outcome returned to the widget.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

type Service struct {
	store  storage.Storage
	logger *zap.Logger
}

func NewService(store storage.Storage, logger *zap.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger,
	}
}

// Submit validates and stores a new lead. The source is fixed to the
// chat channel and the status starts at "new". Failures resolve to a
// tagged result, never an error past this boundary.
func (s *Service) Submit(ctx context.Context, sub Submission) Result {
	if err := validate(sub); err != nil {
		return Result{Success: false, Error: err.Error()}
	}

	lead := &models.Lead{
		Name:        strings.TrimSpace(sub.Name),
		Email:       strings.TrimSpace(sub.Email),
		Phone:       sub.Phone,
		ProjectType: sub.ProjectType,
		Budget:      sub.Budget,
		Timeline:    sub.Timeline,
		Message:     sub.Message,
		Source:      models.LeadSourceChatbot,
		Status:      models.LeadNew,
	}

	if err := s.store.CreateLead(ctx, lead); err != nil {
		s.logger.Error("Failed to create lead",
			zap.Error(err),
			zap.String("session_id", sub.SessionID))
		return Result{Success: false, Error: "Failed to create lead"}
	}

	return Result{Success: true, Message: "Lead created successfully"}
}

func validate(sub Submission) *ValidationError {
	if strings.TrimSpace(sub.Name) == "" {
		return &ValidationError{Reason: "name is required"}
	}
	if _, err := mail.ParseAddress(strings.TrimSpace(sub.Email)); err != nil {
		return &ValidationError{Reason: "email is not a valid address"}
	}
	if sub.SessionID == "" {
		return &ValidationError{Reason: "session id is required"}
	}
	return nil
}

// List returns up to limit leads, newest first.
func (s *Service) List(ctx context.Context, limit int) ([]*models.Lead, error) {
	if limit <= 0 {
		limit = 50
	}
	leads, err := s.store.ListLeads(ctx, limit)
	if err != nil {
		return nil, errors.Wrap(err, "list leads")
	}
	return leads, nil
}

// UpdateStatus advances a lead through the operator workflow. Only
// values from the allowed status set are accepted.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status models.LeadStatus) error {
	if !status.Valid() {
		return &ValidationError{Reason: "unrecognized lead status"}
	}
	if err := s.store.UpdateLeadStatus(ctx, id, status); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return err
		}
		return errors.Wrap(err, "update lead status")
	}
	return nil
}
