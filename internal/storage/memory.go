package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/agribrazil/leadchat/internal/models"
)

// MemoryStorage is an in-memory Storage used for local development and
// tests. It mirrors the ordering and uniqueness guarantees of the
// Postgres implementation.
type MemoryStorage struct {
	mu            sync.RWMutex
	conversations map[string]*models.Conversation
	messages      map[int64][]*models.Message
	leads         []*models.Lead
	nextConvID    int64
	nextMsgID     int64
	nextLeadID    int64
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		conversations: make(map[string]*models.Conversation),
		messages:      make(map[int64][]*models.Message),
	}
}

func (s *MemoryStorage) CreateConversation(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// One conversation per session; a duplicate insert is a no-op, as
	// with the unique index in Postgres.
	if _, exists := s.conversations[sessionID]; exists {
		return nil
	}

	s.nextConvID++
	now := time.Now()
	s.conversations[sessionID] = &models.Conversation{
		ID:        s.nextConvID,
		SessionID: sessionID,
		Status:    models.ConversationActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return nil
}

func (s *MemoryStorage) GetConversationBySession(ctx context.Context, sessionID string) (*models.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, exists := s.conversations[sessionID]
	if !exists {
		return nil, ErrNotFound
	}
	copied := *conv
	return &copied, nil
}

func (s *MemoryStorage) UpdateConversationStatus(ctx context.Context, id int64, status models.ConversationStatus) error {
	if !status.Valid() {
		return errors.Errorf("unrecognized conversation status %q", status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, conv := range s.conversations {
		if conv.ID == id {
			conv.Status = status
			conv.UpdatedAt = time.Now()
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStorage) CreateMessage(ctx context.Context, msg *models.Message) error {
	if !msg.Role.Valid() {
		return errors.Errorf("unrecognized message role %q", msg.Role)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextMsgID++
	msg.ID = s.nextMsgID
	msg.CreatedAt = time.Now()

	copied := *msg
	s.messages[msg.ConversationID] = append(s.messages[msg.ConversationID], &copied)
	return nil
}

func (s *MemoryStorage) GetMessages(ctx context.Context, conversationID int64) ([]*models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.messages[conversationID]
	messages := make([]*models.Message, 0, len(stored))
	for _, msg := range stored {
		copied := *msg
		messages = append(messages, &copied)
	}

	sort.SliceStable(messages, func(i, j int) bool {
		if messages[i].CreatedAt.Equal(messages[j].CreatedAt) {
			return messages[i].ID < messages[j].ID
		}
		return messages[i].CreatedAt.Before(messages[j].CreatedAt)
	})

	return messages, nil
}

func (s *MemoryStorage) CreateLead(ctx context.Context, lead *models.Lead) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextLeadID++
	lead.ID = s.nextLeadID
	now := time.Now()
	lead.CreatedAt = now
	lead.UpdatedAt = now

	copied := *lead
	s.leads = append(s.leads, &copied)
	return nil
}

func (s *MemoryStorage) ListLeads(ctx context.Context, limit int) ([]*models.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Newest first.
	leads := make([]*models.Lead, 0, len(s.leads))
	for i := len(s.leads) - 1; i >= 0 && len(leads) < limit; i-- {
		copied := *s.leads[i]
		leads = append(leads, &copied)
	}
	return leads, nil
}

func (s *MemoryStorage) UpdateLeadStatus(ctx context.Context, id int64, status models.LeadStatus) error {
	if !status.Valid() {
		return errors.Errorf("unrecognized lead status %q", status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, lead := range s.leads {
		if lead.ID == id {
			lead.Status = status
			lead.UpdatedAt = time.Now()
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStorage) Close() error {
	// Nothing to close for in-memory storage
	return nil
}
