package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/agribrazil/leadchat/internal/chat"
	"github.com/agribrazil/leadchat/internal/gateway"
	"github.com/agribrazil/leadchat/internal/lead"
	"github.com/agribrazil/leadchat/internal/models"
	"github.com/agribrazil/leadchat/internal/storage"
)

type stubGateway struct {
	reply string
}

func (g *stubGateway) Complete(ctx context.Context, messages []gateway.Message) (string, error) {
	return g.reply, nil
}

func newTestRouterWithStore(reply string) (*gin.Engine, *storage.MemoryStorage) {
	store := storage.NewMemoryStorage()
	logger := zap.NewNop()
	router := NewRouter(Options{
		Chat:   chat.NewService(store, &stubGateway{reply: reply}, logger),
		Leads:  lead.NewService(store, logger),
		Logger: logger,
	})
	return router, store
}

func newTestRouter(reply string) *gin.Engine {
	router, _ := newTestRouterWithStore(reply)
	return router
}

func doJSON(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSendMessageEndpoint(t *testing.T) {
	router := newTestRouter("Welcome to Agri Brazil Success!")

	w := doJSON(router, http.MethodPost, "/api/chatbot/message",
		`{"sessionId":"s1","message":"Tell me about investing"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp chat.SendResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "Welcome to Agri Brazil Success!", resp.Response)
	assert.NotZero(t, resp.ConversationID)
}

func TestSendMessageEndpointRejectsBadPayload(t *testing.T) {
	router := newTestRouter("ok")

	w := doJSON(router, http.MethodPost, "/api/chatbot/message", `{"sessionId":"s1"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHistoryEndpoint(t *testing.T) {
	router := newTestRouter("reply text")

	// No conversation yet: empty list, not an error.
	w := doJSON(router, http.MethodGet, "/api/chatbot/history?sessionId=s1", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Messages []historyMessage `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Messages)

	doJSON(router, http.MethodPost, "/api/chatbot/message",
		`{"sessionId":"s1","message":"hello"}`)

	w = doJSON(router, http.MethodGet, "/api/chatbot/history?sessionId=s1", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Messages, 2)
	assert.Equal(t, "hello", resp.Messages[0].Content)
	assert.Equal(t, "reply text", resp.Messages[1].Content)
	assert.False(t, resp.Messages[0].CreatedAt.IsZero())
}

func TestHistoryEndpointRequiresSessionID(t *testing.T) {
	router := newTestRouter("ok")

	w := doJSON(router, http.MethodGet, "/api/chatbot/history", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmitLeadEndpoint(t *testing.T) {
	router := newTestRouter("ok")

	w := doJSON(router, http.MethodPost, "/api/chatbot/lead",
		`{"name":"Jane","email":"jane@x.com","sessionId":"s1"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp lead.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)

	w = doJSON(router, http.MethodGet, "/api/leads", "")
	require.Equal(t, http.StatusOK, w.Code)

	var list struct {
		Success bool `json:"success"`
		Leads   []struct {
			Name   string `json:"name"`
			Source string `json:"source"`
			Status string `json:"status"`
		} `json:"leads"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.True(t, list.Success)
	require.Len(t, list.Leads, 1)
	assert.Equal(t, "Jane", list.Leads[0].Name)
	assert.Equal(t, "chatbot", list.Leads[0].Source)
	assert.Equal(t, "new", list.Leads[0].Status)
}

func TestSubmitLeadEndpointRejectsInvalidEmail(t *testing.T) {
	router := newTestRouter("ok")

	w := doJSON(router, http.MethodPost, "/api/chatbot/lead",
		`{"name":"Jane","email":"not-an-email","sessionId":"s1"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Nothing persisted.
	w = doJSON(router, http.MethodGet, "/api/leads", "")
	var list struct {
		Leads []json.RawMessage `json:"leads"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Empty(t, list.Leads)
}

func TestUpdateLeadStatusEndpoint(t *testing.T) {
	router := newTestRouter("ok")

	doJSON(router, http.MethodPost, "/api/chatbot/lead",
		`{"name":"Jane","email":"jane@x.com","sessionId":"s1"}`)

	w := doJSON(router, http.MethodPatch, "/api/leads/1/status", `{"status":"contacted"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodPatch, "/api/leads/1/status", `{"status":"archived"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, http.MethodPatch, "/api/leads/42/status", `{"status":"contacted"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(router, http.MethodPatch, "/api/leads/abc/status", `{"status":"contacted"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateConversationStatusEndpoint(t *testing.T) {
	router, store := newTestRouterWithStore("ok")

	doJSON(router, http.MethodPost, "/api/chatbot/message",
		`{"sessionId":"s1","message":"hello"}`)

	conv, err := store.GetConversationBySession(context.Background(), "s1")
	require.NoError(t, err)

	w := doJSON(router, http.MethodPatch, "/api/conversations/1/status", `{"status":"converted"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	updated, err := store.GetConversationBySession(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, conv.ID, updated.ID)
	assert.Equal(t, models.ConversationConverted, updated.Status)

	// Only closed/converted are valid targets.
	w = doJSON(router, http.MethodPatch, "/api/conversations/1/status", `{"status":"active"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, http.MethodPatch, "/api/conversations/42/status", `{"status":"closed"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(router, http.MethodPatch, "/api/conversations/abc/status", `{"status":"closed"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
