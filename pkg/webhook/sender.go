package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/modelregistry/webhooks/pkg/logger"
)

const userAgent = "MLflow-Webhook/1.0"

// Sender performs the actual HTTP delivery of a signed webhook envelope. It
// holds no per-delivery state; every field is immutable configuration shared
// across all deliveries.
type Sender struct {
	client              *http.Client
	allowedSchemes      map[string]struct{}
	maxPayloadSize      int
	responseBodyCapture int
	log                 *slog.Logger
}

// NewSender constructs a Sender. allowedSchemes must be non-empty lower-case
// scheme names (e.g. "https"); maxPayloadSize and responseBodyCapture are
// byte counts.
func NewSender(timeout time.Duration, allowedSchemes []string, maxPayloadSize, responseBodyCapture int, log *slog.Logger) *Sender {
	if timeout <= 0 {
		timeout = DefaultConfig().DefaultTimeout
	}
	if log == nil {
		log = slog.Default()
	}
	set := make(map[string]struct{}, len(allowedSchemes))
	for _, s := range allowedSchemes {
		set[strings.ToLower(s)] = struct{}{}
	}
	return &Sender{
		client:              &http.Client{Timeout: timeout},
		allowedSchemes:      set,
		maxPayloadSize:      maxPayloadSize,
		responseBodyCapture: responseBodyCapture,
		log:                 log,
	}
}

// buildEnvelope constructs and serializes the exact JSON body that will be
// signed and sent for this delivery.
func buildEnvelope(eventType string, data any, deliveryID string, now time.Time) ([]byte, error) {
	env := Envelope{
		EventType:  eventType,
		Timestamp:  now.UnixMilli(),
		DeliveryID: deliveryID,
		Data:       data,
	}
	return json.Marshal(env)
}

// Send performs preflight scheme and size checks, signs payload, and issues
// the HTTP request. Both checks run before any socket I/O: a disallowed
// scheme or oversized payload never opens a connection.
func (s *Sender) Send(ctx context.Context, w Webhook, eventType string, payload []byte, deliveryID string) DispatchResult {
	result := DispatchResult{WebhookID: w.ID, DeliveryID: deliveryID}

	scheme := strings.ToLower(schemeOf(w.URL))
	if _, ok := s.allowedSchemes[scheme]; !ok {
		result.ErrorKind = KindDisallowedScheme
		result.ErrorMessage = fmt.Sprintf("url scheme %q is not allowed", scheme)
		s.log.Warn("webhook delivery rejected: disallowed scheme",
			logger.Component("webhook.sender"),
			slog.String("webhook_id", w.ID), slog.String("scheme", scheme))
		return result
	}

	if len(payload) > s.maxPayloadSize {
		result.ErrorKind = KindPayloadTooLarge
		result.ErrorMessage = fmt.Sprintf("payload size (%d bytes) exceeds maximum allowed size (%d bytes)", len(payload), s.maxPayloadSize)
		s.log.Warn("webhook delivery rejected: payload too large",
			logger.Component("webhook.sender"),
			slog.String("webhook_id", w.ID), slog.Int("payload_size", len(payload)))
		return result
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewReader(payload))
	if err != nil {
		result.ErrorKind = KindUnexpected
		result.ErrorMessage = err.Error()
		return result
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-MLflow-Event", eventType)
	req.Header.Set("X-MLflow-Delivery", deliveryID)
	if w.Secret != "" {
		signature := Sign(payload, []byte(w.Secret))
		req.Header.Set("X-MLflow-Signature", "sha256="+signature)
	}

	start := time.Now()
	resp, err := s.client.Do(req)
	elapsed := time.Since(start)
	result.ResponseTimeMS = elapsed.Milliseconds()

	if err != nil {
		var netErr interface{ Timeout() bool }
		switch {
		case errors.As(err, &netErr) && netErr.Timeout():
			result.ErrorKind = KindTimeout
			result.ErrorMessage = fmt.Sprintf("request timeout after %s", s.client.Timeout)
		case errors.Is(err, context.DeadlineExceeded):
			result.ErrorKind = KindTimeout
			result.ErrorMessage = fmt.Sprintf("request timeout after %s", s.client.Timeout)
		default:
			result.ErrorKind = KindNetwork
			result.ErrorMessage = err.Error()
		}
		s.log.Warn("webhook delivery failed",
			logger.Component("webhook.sender"),
			slog.String("webhook_id", w.ID), logger.Error(err))
		return result
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, int64(s.responseBodyCapture)))
	result.ResponseStatus = resp.StatusCode
	result.ResponseBody = string(body)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		result.Success = true
		return result
	}

	result.ErrorKind = KindHTTPError
	result.ErrorMessage = fmt.Sprintf("received HTTP %d", resp.StatusCode)
	return result
}

// ValidateWebhookURL checks a candidate webhook URL against the same scheme
// allow-list the sender enforces at delivery time, without performing any
// I/O; it does not check that the URL is reachable. Intended for use by webhook registration/update paths
// (outside this package's scope) that want to reject a bad URL before it is
// ever stored, rather than discover it on the first failed delivery.
func ValidateWebhookURL(rawURL string, allowedSchemes []string) error {
	scheme := strings.ToLower(schemeOf(rawURL))
	for _, s := range allowedSchemes {
		if strings.ToLower(s) == scheme {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrDisallowedScheme, scheme)
}

// ValidatePayloadSize reports ErrPayloadTooLarge if payload exceeds
// maxPayloadSize. Exposed alongside ValidateWebhookURL so callers building
// a test payload ahead of registering a webhook can check both preflight
// conditions the sender itself enforces.
func ValidatePayloadSize(payload []byte, maxPayloadSize int) error {
	if len(payload) > maxPayloadSize {
		return fmt.Errorf("%w: %d bytes exceeds %d byte limit", ErrPayloadTooLarge, len(payload), maxPayloadSize)
	}
	return nil
}

// schemeOf extracts the scheme portion of rawURL without requiring it to be
// otherwise well-formed, so a malformed URL still yields a (likely
// disallowed) scheme string rather than an early parse error.
func schemeOf(rawURL string) string {
	if u, err := url.Parse(rawURL); err == nil && u.Scheme != "" {
		return u.Scheme
	}
	if idx := strings.Index(rawURL, "://"); idx >= 0 {
		return rawURL[:idx]
	}
	return ""
}
