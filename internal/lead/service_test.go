package lead

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/agribrazil/leadchat/internal/models"
	"github.com/agribrazil/leadchat/internal/storage"
)

func newTestService() (*Service, *storage.MemoryStorage) {
	store := storage.NewMemoryStorage()
	return NewService(store, zap.NewNop()), store
}

func TestSubmitValidLead(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	result := svc.Submit(ctx, Submission{
		Name:      "Jane",
		Email:     "jane@x.com",
		SessionID: "s1",
	})
	require.True(t, result.Success)
	assert.Equal(t, "Lead created successfully", result.Message)

	leads, err := svc.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Equal(t, "Jane", leads[0].Name)
	assert.Equal(t, "jane@x.com", leads[0].Email)
	assert.Equal(t, models.LeadNew, leads[0].Status)
	assert.Equal(t, models.LeadSourceChatbot, leads[0].Source)
}

func TestSubmitInvalidEmail(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	result := svc.Submit(ctx, Submission{
		Name:      "Jane",
		Email:     "not-an-email",
		SessionID: "s1",
	})
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Error)

	// A rejected payload produces no persisted row.
	leads, err := svc.List(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, leads)
}

func TestSubmitMissingFields(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	for name, sub := range map[string]Submission{
		"no name":    {Email: "jane@x.com", SessionID: "s1"},
		"no email":   {Name: "Jane", SessionID: "s1"},
		"no session": {Name: "Jane", Email: "jane@x.com"},
	} {
		result := svc.Submit(ctx, sub)
		assert.False(t, result.Success, name)
		assert.NotEmpty(t, result.Error, name)
	}
}

func TestSubmitOptionalFieldsPassThrough(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	result := svc.Submit(ctx, Submission{
		Name:        "Carlos",
		Email:       "carlos@fazenda.br",
		Phone:       "+55 11 99999-0000",
		ProjectType: "grain",
		Budget:      "R$500k",
		Timeline:    "6 months",
		Message:     "Interested in soy.",
		SessionID:   "s2",
	})
	require.True(t, result.Success)

	leads, err := svc.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Equal(t, "grain", leads[0].ProjectType)
	assert.Equal(t, "R$500k", leads[0].Budget)
	assert.Equal(t, "6 months", leads[0].Timeline)
}

func TestListNewestFirst(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	require.True(t, svc.Submit(ctx, Submission{Name: "First", Email: "a@x.com", SessionID: "s1"}).Success)
	require.True(t, svc.Submit(ctx, Submission{Name: "Second", Email: "b@x.com", SessionID: "s2"}).Success)

	leads, err := svc.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, leads, 2)
	assert.Equal(t, "Second", leads[0].Name)
	assert.Equal(t, "First", leads[1].Name)
}

func TestUpdateStatus(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	require.True(t, svc.Submit(ctx, Submission{Name: "Jane", Email: "jane@x.com", SessionID: "s1"}).Success)

	leads, err := svc.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, leads, 1)

	require.NoError(t, svc.UpdateStatus(ctx, leads[0].ID, models.LeadContacted))

	leads, err = svc.List(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, models.LeadContacted, leads[0].Status)
}

func TestUpdateStatusRejectsUnknownValue(t *testing.T) {
	svc, _ := newTestService()

	err := svc.UpdateStatus(context.Background(), 1, models.LeadStatus("archived"))
	require.Error(t, err)

	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestUpdateStatusMissingLead(t *testing.T) {
	svc, _ := newTestService()

	err := svc.UpdateStatus(context.Background(), 42, models.LeadQualified)
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}
