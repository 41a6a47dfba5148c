package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modelregistry/webhooks/pkg/webhook"
)

func TestStore_ListAndUpdate(t *testing.T) {
	s := New()
	s.Put(webhook.Webhook{ID: "a", Status: webhook.StatusActive})
	s.Put(webhook.Webhook{ID: "b", Status: webhook.StatusActive})

	webhooks, next, err := s.ListWebhooks(context.Background(), 0, "")
	require.NoError(t, err)
	assert.Empty(t, next)
	require.Len(t, webhooks, 2)
	assert.Equal(t, "a", webhooks[0].ID)
	assert.Equal(t, "b", webhooks[1].ID)

	updated, err := s.UpdateWebhook(context.Background(), "a", webhook.StatusDisabled)
	require.NoError(t, err)
	assert.Equal(t, webhook.StatusDisabled, updated.Status)

	webhooks, _, err = s.ListWebhooks(context.Background(), 0, "")
	require.NoError(t, err)
	assert.Equal(t, webhook.StatusDisabled, webhooks[0].Status)
}

func TestStore_UpdateWebhook_NotFound(t *testing.T) {
	s := New()
	_, err := s.UpdateWebhook(context.Background(), "missing", webhook.StatusDisabled)
	assert.Error(t, err)
}
