package chat

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/agribrazil/leadchat/internal/gateway"
	"github.com/agribrazil/leadchat/internal/models"
	"github.com/agribrazil/leadchat/internal/storage"
)

// systemPrompt is the fixed behavioral instruction sent as the first
// turn of every assembled prompt.
const systemPrompt = `You are a helpful AI assistant for Agri Brazil Success, an agricultural investment platform.
Your role is to:
1. Help potential investors understand our services and investment opportunities
2. Qualify leads by asking about their investment interests, budget, and timeline
3. Provide information about grain market trends, risk management, and sustainability initiatives
4. Be professional, friendly, and informative

When you have gathered enough information (name, email, investment type, budget, timeline),
summarize what you've learned and ask if they would like to proceed with a consultation.

Keep responses concise and focused on the conversation.`

const (
	// fallbackReply stands in when the model returns no usable content.
	fallbackReply = "I apologize, I could not process that. Please try again."
	// errorReply is the generic apology surfaced on any round-trip failure.
	errorReply = "I encountered an error. Please try again later."
)

// SendResult is the outcome of one send-message round trip. It is the
// wire shape returned to the widget; failures are tagged, never raised.
type SendResult struct {
	Success        bool   `json:"success"`
	Response       string `json:"response"`
	ConversationID int64  `json:"conversationId,omitempty"`
	Error          string `json:"error,omitempty"`
}

type Service struct {
	store   storage.Storage
	gateway gateway.Gateway
	logger  *zap.Logger
}

func NewService(store storage.Storage, gw gateway.Gateway, logger *zap.Logger) *Service {
	return &Service{
		store:   store,
		gateway: gw,
		logger:  logger,
	}
}

// ResolveConversation returns the conversation for the session,
// creating an active one if none exists yet. Repeated calls with the
// same session identifier converge to the same conversation.
func (s *Service) ResolveConversation(ctx context.Context, sessionID string) (*models.Conversation, error) {
	if sessionID == "" {
		return nil, errors.New("session id is required")
	}

	conv, err := s.store.GetConversationBySession(ctx, sessionID)
	if err == nil {
		return conv, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, persistenceErr(err)
	}

	if err := s.store.CreateConversation(ctx, sessionID); err != nil {
		return nil, persistenceErr(err)
	}

	// The insert does not return the generated identity; re-fetch it.
	conv, err = s.store.GetConversationBySession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrConsistency
		}
		return nil, persistenceErr(err)
	}
	return conv, nil
}

// SendMessage runs one chat round trip: resolve the conversation, load
// history, ask the model, persist both sides of the exchange. It never
// raises; any failure resolves to a tagged result carrying a generic
// apology.
func (s *Service) SendMessage(ctx context.Context, sessionID, message string) SendResult {
	result, err := s.sendMessage(ctx, sessionID, message)
	if err != nil {
		s.logger.Error("Chat round trip failed",
			zap.Error(err),
			zap.String("session_id", sessionID))
		return SendResult{
			Success:  false,
			Response: errorReply,
			Error:    err.Error(),
		}
	}
	return result
}

func (s *Service) sendMessage(ctx context.Context, sessionID, message string) (SendResult, error) {
	conv, err := s.ResolveConversation(ctx, sessionID)
	if err != nil {
		return SendResult{}, err
	}

	// Any history failure aborts the send; degrade-to-empty applies
	// only to the read-only history path.
	history, err := s.store.GetMessages(ctx, conv.ID)
	if err != nil {
		return SendResult{}, persistenceErr(err)
	}

	reply, err := s.gateway.Complete(ctx, assemblePrompt(history, message))
	if err != nil {
		return SendResult{}, errors.Wrap(err, "gateway")
	}
	if reply == "" {
		reply = fallbackReply
	}

	// Two sequential writes, not atomic. A crash between them leaves a
	// user message without its paired reply, which is acceptable for a
	// best-effort chat log.
	userMsg := &models.Message{
		ConversationID: conv.ID,
		Role:           models.RoleUser,
		Content:        message,
	}
	if err := s.store.CreateMessage(ctx, userMsg); err != nil {
		return SendResult{}, persistenceErr(err)
	}

	assistantMsg := &models.Message{
		ConversationID: conv.ID,
		Role:           models.RoleAssistant,
		Content:        reply,
	}
	if err := s.store.CreateMessage(ctx, assistantMsg); err != nil {
		return SendResult{}, persistenceErr(err)
	}

	return SendResult{
		Success:        true,
		Response:       reply,
		ConversationID: conv.ID,
	}, nil
}

// assemblePrompt builds the ordered prompt: the system instruction,
// the stored history in creation order, then the new user turn. The
// new turn is not persisted yet at this point.
func assemblePrompt(history []*models.Message, message string) []gateway.Message {
	prompt := make([]gateway.Message, 0, len(history)+2)
	prompt = append(prompt, gateway.Message{
		Role:    "system",
		Content: systemPrompt,
	})
	for _, msg := range history {
		prompt = append(prompt, gateway.Message{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}
	prompt = append(prompt, gateway.Message{
		Role:    string(models.RoleUser),
		Content: message,
	})
	return prompt
}

// GetHistory returns the session's messages in creation order. It is a
// best-effort read used to populate the widget on load: no conversation
// and an unreachable store both collapse to an empty transcript, with
// the latter logged.
func (s *Service) GetHistory(ctx context.Context, sessionID string) []*models.Message {
	conv, err := s.store.GetConversationBySession(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Error("Failed to resolve conversation for history",
				zap.Error(err),
				zap.String("session_id", sessionID))
		}
		return []*models.Message{}
	}

	messages, err := s.store.GetMessages(ctx, conv.ID)
	if err != nil {
		s.logger.Error("Failed to load chat history",
			zap.Error(err),
			zap.Int64("conversation_id", conv.ID))
		return []*models.Message{}
	}
	return messages
}

// CloseConversation marks a conversation closed or converted, used by
// the operator workflow when a chat yields a lead.
func (s *Service) CloseConversation(ctx context.Context, id int64, status models.ConversationStatus) error {
	if status != models.ConversationClosed && status != models.ConversationConverted {
		return errors.Errorf("invalid target status %q", status)
	}
	if err := s.store.UpdateConversationStatus(ctx, id, status); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return err
		}
		return persistenceErr(err)
	}
	return nil
}
