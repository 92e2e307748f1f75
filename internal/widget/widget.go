package widget

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/agribrazil/leadchat/internal/chat"
	"github.com/agribrazil/leadchat/internal/models"
)

// errorReply replaces the assistant turn when the round trip fails, so
// the transcript is never silently incomplete.
const errorReply = "Sorry, I encountered an error. Please try again."

// Backend is the server surface the widget drives. *chat.Service
// satisfies it directly; over the wire it maps to the chatbot API.
type Backend interface {
	SendMessage(ctx context.Context, sessionID, message string) chat.SendResult
	GetHistory(ctx context.Context, sessionID string) []*models.Message
}

// Entry is one rendered transcript line. Entries carry client-minted
// identifiers; hydrated entries reuse the server's record identity.
type Entry struct {
	ID        string
	Role      models.Role
	Content   string
	Timestamp time.Time
}

// Widget is the chat widget's state: open/closed, the in-flight guard,
// and the optimistic transcript. The session identifier is minted once
// and kept for the widget's lifetime, the way the browser widget keeps
// it for the browser session.
type Widget struct {
	mu         sync.Mutex
	backend    Backend
	sessionID  string
	open       bool
	sending    bool
	hydrated   bool
	transcript []Entry
}

func New(backend Backend) *Widget {
	return &Widget{
		backend:   backend,
		sessionID: uuid.New().String(),
	}
}

func (w *Widget) SessionID() string {
	return w.sessionID
}

func (w *Widget) IsOpen() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.open
}

// Sending reports whether a round trip is in flight; input is disabled
// while it is.
func (w *Widget) Sending() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.sending
}

// Transcript returns a copy of the visible message list.
func (w *Widget) Transcript() []Entry {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]Entry, len(w.transcript))
	copy(out, w.transcript)
	return out
}

// Open shows the widget. The first open hydrates the transcript from
// the server's stored history, replacing the in-memory list wholesale.
func (w *Widget) Open(ctx context.Context) {
	w.mu.Lock()
	if w.open {
		w.mu.Unlock()
		return
	}
	w.open = true
	hydrate := !w.hydrated
	w.hydrated = true
	w.mu.Unlock()

	if !hydrate {
		return
	}

	messages := w.backend.GetHistory(ctx, w.sessionID)
	if len(messages) == 0 {
		return
	}

	entries := make([]Entry, 0, len(messages))
	for _, msg := range messages {
		entries = append(entries, Entry{
			ID:        strconv.FormatInt(msg.ID, 10),
			Role:      msg.Role,
			Content:   msg.Content,
			Timestamp: msg.CreatedAt.Local(),
		})
	}

	w.mu.Lock()
	w.transcript = entries
	w.mu.Unlock()
}

func (w *Widget) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.open = false
}

// Send runs one message round trip. The user's turn is appended
// optimistically before the backend call; the assistant's reply, or
// the apology on failure, is appended when it resolves. Send reports
// false without side effects when the widget is closed, already
// sending, or the input is blank.
func (w *Widget) Send(ctx context.Context, text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}

	w.mu.Lock()
	if !w.open || w.sending {
		w.mu.Unlock()
		return false
	}
	w.sending = true
	w.transcript = append(w.transcript, Entry{
		ID:        uuid.New().String(),
		Role:      models.RoleUser,
		Content:   text,
		Timestamp: time.Now(),
	})
	w.mu.Unlock()

	result := w.backend.SendMessage(ctx, w.sessionID, text)

	reply := result.Response
	if !result.Success || reply == "" {
		reply = errorReply
	}

	w.mu.Lock()
	w.transcript = append(w.transcript, Entry{
		ID:        uuid.New().String(),
		Role:      models.RoleAssistant,
		Content:   reply,
		Timestamp: time.Now(),
	})
	w.sending = false
	w.mu.Unlock()

	return result.Success
}
