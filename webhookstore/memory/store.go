// Package memory provides an in-process, map-backed webhook.Store, useful
// for tests and for embedding this module without a separate persistence
// layer.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/modelregistry/webhooks/pkg/webhook"
)

// Store is a trivial thread-safe webhook.Store backed by a map. IDs are
// assigned by the caller; Store never generates one.
type Store struct {
	mu       sync.RWMutex
	webhooks map[string]webhook.Webhook
}

// New returns an empty Store.
func New() *Store {
	return &Store{webhooks: make(map[string]webhook.Webhook)}
}

// Put inserts or replaces a webhook. Not part of webhook.Store: seeding and
// mutation of webhook rows outside status changes is the registry's job,
// not this subsystem's, but a usable fake needs a way in.
func (s *Store) Put(w webhook.Webhook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.webhooks[w.ID] = w
}

// ListWebhooks returns every webhook in ID order, ignoring maxResults and
// pageToken — this store never has enough rows for pagination to matter.
func (s *Store) ListWebhooks(_ context.Context, _ int, _ string) ([]webhook.Webhook, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.webhooks))
	for id := range s.webhooks {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]webhook.Webhook, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.webhooks[id])
	}
	return out, "", nil
}

// UpdateWebhook applies a status change to the stored webhook.
func (s *Store) UpdateWebhook(_ context.Context, webhookID string, status webhook.Status) (webhook.Webhook, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.webhooks[webhookID]
	if !ok {
		return webhook.Webhook{}, fmt.Errorf("webhookstore/memory: webhook %q not found", webhookID)
	}
	w.Status = status
	s.webhooks[webhookID] = w
	return w, nil
}
