package webhook

import (
	"time"

	"github.com/google/uuid"
)

// Status represents the lifecycle state of a webhook configuration.
// Only ACTIVE webhooks are eligible for dispatch.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
	StatusDisabled Status = "DISABLED"
)

// Webhook is a read-only snapshot of a webhook configuration as owned by the
// registry store. The core never mutates a Webhook value directly; the only
// write path back to the store is UpdateWebhook during auto-disable.
type Webhook struct {
	ID          string
	Name        string
	URL         string
	Events      []string
	Description string
	Status      Status
	Secret      string
	CreatedAt   int64 // epoch milliseconds
	UpdatedAt   int64 // epoch milliseconds
}

// IsActive reports whether the webhook's status is ACTIVE.
func (w Webhook) IsActive() bool {
	return w.Status == StatusActive
}

// ShouldTrigger reports whether this webhook should fire for eventType,
// per the invariant should_trigger(event) <=> status = ACTIVE && event in events.
func (w Webhook) ShouldTrigger(eventType string) bool {
	if !w.IsActive() {
		return false
	}
	for _, e := range w.Events {
		if e == eventType {
			return true
		}
	}
	return false
}

// Redacted renders the webhook as a map suitable for logging or display,
// omitting the secret so it never ends up in a log line by accident.
func (w Webhook) Redacted() map[string]any {
	return map[string]any{
		"id":          w.ID,
		"name":        w.Name,
		"url":         w.URL,
		"events":      w.Events,
		"description": w.Description,
		"status":      string(w.Status),
		"created_at":  w.CreatedAt,
		"updated_at":  w.UpdatedAt,
	}
}

// Envelope is the exact JSON body signed and sent to a webhook's URL.
type Envelope struct {
	EventType  string `json:"event_type"`
	Timestamp  int64  `json:"timestamp"`
	DeliveryID string `json:"delivery_id"`
	Data       any    `json:"data"`
}

// DispatchTask is a unit of work in flight inside the dispatcher: one
// recipient, one original event, zero or more retries of the same delivery.
type DispatchTask struct {
	Webhook    Webhook
	EventType  string
	Payload    []byte // exact bytes to sign and send; built once at first enqueue
	RetryCount int
	DeliveryID string
	CreatedAt  time.Time
}

// newDeliveryID generates a fresh, unique delivery identifier.
func newDeliveryID() string {
	return uuid.New().String()
}

// Kind classifies why a delivery attempt failed.
type Kind string

const (
	KindDisallowedScheme Kind = "DISALLOWED_SCHEME"
	KindPayloadTooLarge  Kind = "PAYLOAD_TOO_LARGE"
	KindTimeout          Kind = "TIMEOUT"
	KindNetwork          Kind = "NETWORK"
	KindHTTPError        Kind = "HTTP_ERROR"
	KindUnexpected       Kind = "UNEXPECTED"
	KindQueueFull        Kind = "QUEUE_FULL"
	KindAutoDisableFail  Kind = "AUTO_DISABLE_FAILED"
)

// terminal reports whether a failure of this kind must never be retried.
func (k Kind) terminal() bool {
	return k == KindDisallowedScheme || k == KindPayloadTooLarge
}

// DispatchResult is the outcome of a single HTTP delivery attempt.
type DispatchResult struct {
	WebhookID      string
	DeliveryID     string
	Success        bool
	ResponseStatus int
	ResponseBody   string
	ResponseTimeMS int64
	ErrorKind      Kind
	ErrorMessage   string
}

// FailureCounts is a point-in-time copy of the consecutive-failure counters,
// keyed by webhook id. Safe to read without further synchronization once
// returned by Dispatcher.FailureCounts.
type FailureCounts map[string]int
