package storage

import (
	"context"

	"github.com/pkg/errors"

	"github.com/agribrazil/leadchat/internal/models"
)

// ErrNotFound is returned when a lookup matches no record. Callers use
// it to tell "no data" apart from a store failure.
var ErrNotFound = errors.New("record not found")

type Storage interface {
	// CreateConversation inserts an active conversation for the session.
	// It does not return the generated identity; callers re-fetch by
	// session identifier.
	CreateConversation(ctx context.Context, sessionID string) error
	// GetConversationBySession returns the most recent conversation for
	// the session, or ErrNotFound.
	GetConversationBySession(ctx context.Context, sessionID string) (*models.Conversation, error)
	UpdateConversationStatus(ctx context.Context, id int64, status models.ConversationStatus) error

	// CreateMessage appends a message to its conversation, filling in
	// the generated identity and creation time. The role must be a
	// recognized value.
	CreateMessage(ctx context.Context, msg *models.Message) error
	// GetMessages returns the conversation's messages ordered by
	// creation time ascending.
	GetMessages(ctx context.Context, conversationID int64) ([]*models.Message, error)

	CreateLead(ctx context.Context, lead *models.Lead) error
	// ListLeads returns up to limit leads, newest first.
	ListLeads(ctx context.Context, limit int) ([]*models.Lead, error)
	UpdateLeadStatus(ctx context.Context, id int64, status models.LeadStatus) error

	Close() error
}
