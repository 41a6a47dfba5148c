// Package redis provides a webhook.Store backed by Redis hashes, one per
// webhook, plus a sorted set of webhook IDs for stable pagination order.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	goredis "github.com/redis/go-redis/v9"

	"github.com/modelregistry/webhooks/pkg/webhook"
)

// ErrHealthcheckUnavailable is returned by Healthcheck on a Store built
// with New rather than Dial, which has no connection of its own to ping.
var ErrHealthcheckUnavailable = errors.New("webhookstore/redis: healthcheck unavailable: store was not built with Dial")

const (
	keyPrefix  = "webhook:"
	indexKey   = "webhook:index"
	fieldState = "state"
)

// client is the narrow slice of redis.Cmdable this store actually calls. A
// real *redis.Client or *redis.ClusterClient satisfies it, and so does a
// hand-rolled fake in tests, without either side depending on the entire
// Cmdable surface.
type client interface {
	HGet(ctx context.Context, key, field string) *goredis.StringCmd
	HSet(ctx context.Context, key string, values ...any) *goredis.IntCmd
	ZRange(ctx context.Context, key string, start, stop int64) *goredis.StringSliceCmd
	ZAdd(ctx context.Context, key string, members ...goredis.Z) *goredis.IntCmd
}

// Store implements webhook.Store on top of a redis client, so it can be
// exercised against either a real connection or a test double without a
// live server.
type Store struct {
	rdb client

	// conn is the full client, set only by Dial, so Healthcheck can delegate
	// to pkg/redis.Healthcheck (which needs the entire UniversalClient
	// surface, not just the four methods rdb exposes).
	conn goredis.UniversalClient
}

// New constructs a Store over an already-connected client. See Dial for
// building one from a Config the way the rest of this module's ambient
// stack does, including a usable Healthcheck.
func New(rdb client) (*Store, error) {
	if rdb == nil {
		return nil, errors.New("webhookstore/redis: client cannot be nil")
	}
	return &Store{rdb: rdb}, nil
}

// ListWebhooks pages through the ID index by offset: pageToken is the decimal
// offset of the first ID to return, and maxResults <= 0 returns every
// remaining webhook in one page. The returned token is the next offset, or ""
// when no IDs remain. The offset is not a stable cursor: IDs added or
// removed between calls shift later pages.
func (s *Store) ListWebhooks(ctx context.Context, maxResults int, pageToken string) ([]webhook.Webhook, string, error) {
	ids, err := s.rdb.ZRange(ctx, indexKey, 0, -1).Result()
	if err != nil {
		return nil, "", fmt.Errorf("webhookstore/redis: list index: %w", err)
	}

	offset := 0
	if pageToken != "" {
		offset, err = strconv.Atoi(pageToken)
		if err != nil || offset < 0 || offset > len(ids) {
			return nil, "", fmt.Errorf("webhookstore/redis: invalid page token %q", pageToken)
		}
	}

	end := len(ids)
	if maxResults > 0 && offset+maxResults < end {
		end = offset + maxResults
	}

	webhooks := make([]webhook.Webhook, 0, end-offset)
	for _, id := range ids[offset:end] {
		w, err := s.get(ctx, id)
		if err != nil {
			if errors.Is(err, goredis.Nil) {
				continue
			}
			return nil, "", err
		}
		webhooks = append(webhooks, w)
	}

	nextToken := ""
	if end < len(ids) {
		nextToken = strconv.Itoa(end)
	}
	return webhooks, nextToken, nil
}

// UpdateWebhook loads the webhook, rewrites its status field, and persists
// it back as a single HSET call.
func (s *Store) UpdateWebhook(ctx context.Context, webhookID string, status webhook.Status) (webhook.Webhook, error) {
	w, err := s.get(ctx, webhookID)
	if err != nil {
		return webhook.Webhook{}, err
	}

	w.Status = status
	if err := s.put(ctx, w); err != nil {
		return webhook.Webhook{}, err
	}
	return w, nil
}

// Put stores (creating or replacing) a webhook and indexes its ID. Not part
// of the webhook.Store interface: registration/CRUD of webhooks lives
// outside the delivery subsystem's scope, but a reference adapter needs
// some way to seed data for its own tests and for callers wiring this
// package in directly.
func (s *Store) Put(ctx context.Context, w webhook.Webhook) error {
	if err := s.put(ctx, w); err != nil {
		return err
	}
	return s.rdb.ZAdd(ctx, indexKey, goredis.Z{Score: float64(w.CreatedAt), Member: w.ID}).Err()
}

func (s *Store) get(ctx context.Context, id string) (webhook.Webhook, error) {
	raw, err := s.rdb.HGet(ctx, keyPrefix+id, fieldState).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return webhook.Webhook{}, fmt.Errorf("webhookstore/redis: webhook %q not found: %w", id, goredis.Nil)
		}
		return webhook.Webhook{}, fmt.Errorf("webhookstore/redis: get %q: %w", id, err)
	}

	var w webhook.Webhook
	if err := json.Unmarshal([]byte(raw), &w); err != nil {
		return webhook.Webhook{}, fmt.Errorf("webhookstore/redis: decode %q: %w", id, err)
	}
	return w, nil
}

func (s *Store) put(ctx context.Context, w webhook.Webhook) error {
	raw, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("webhookstore/redis: encode %q: %w", w.ID, err)
	}
	if err := s.rdb.HSet(ctx, keyPrefix+w.ID, fieldState, raw).Err(); err != nil {
		return fmt.Errorf("webhookstore/redis: put %q: %w", w.ID, err)
	}
	return nil
}
