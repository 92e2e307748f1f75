package models

import (
	"time"

	"github.com/pkg/errors"
)

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is a recognized message role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// ParseRole validates a raw role value read from an external source.
// Unrecognized values are rejected rather than passed through.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", errors.Errorf("unrecognized message role %q", s)
	}
	return r, nil
}

// ConversationStatus is the lifecycle state of a conversation.
type ConversationStatus string

const (
	ConversationActive    ConversationStatus = "active"
	ConversationClosed    ConversationStatus = "closed"
	ConversationConverted ConversationStatus = "converted"
)

func (s ConversationStatus) Valid() bool {
	switch s {
	case ConversationActive, ConversationClosed, ConversationConverted:
		return true
	}
	return false
}

// LeadStatus tracks a lead through the operator workflow.
type LeadStatus string

const (
	LeadNew       LeadStatus = "new"
	LeadContacted LeadStatus = "contacted"
	LeadQualified LeadStatus = "qualified"
	LeadConverted LeadStatus = "converted"
	LeadRejected  LeadStatus = "rejected"
)

func (s LeadStatus) Valid() bool {
	switch s {
	case LeadNew, LeadContacted, LeadQualified, LeadConverted, LeadRejected:
		return true
	}
	return false
}

// LeadSourceChatbot tags leads captured through the site chat widget.
const LeadSourceChatbot = "chatbot"

// Conversation groups the ordered messages for one widget session.
// The session identifier is minted by the client and stays stable for
// the browser session; at most one conversation exists per session.
type Conversation struct {
	ID        int64              `json:"id"`
	SessionID string             `json:"session_id"`
	LeadID    *int64             `json:"lead_id,omitempty"`
	UserID    *int64             `json:"user_id,omitempty"`
	Status    ConversationStatus `json:"status"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// Message is one immutable turn of a conversation. Ordering is by
// creation time.
type Message struct {
	ID             int64     `json:"id"`
	ConversationID int64     `json:"conversation_id"`
	Role           Role      `json:"role"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

// Lead is a prospective investor captured from the chat widget or the
// contact form. It is independent of any one conversation.
type Lead struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone,omitempty"`
	ProjectType string     `json:"project_type,omitempty"`
	Budget      string     `json:"budget,omitempty"`
	Timeline    string     `json:"timeline,omitempty"`
	Message     string     `json:"message,omitempty"`
	Source      string     `json:"source"`
	Status      LeadStatus `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
