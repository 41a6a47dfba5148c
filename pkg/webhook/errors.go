package webhook

import "errors"

// Sentinel errors for webhook delivery subsystem operations, designed for
// wrapping with fmt.Errorf("%w: ...") and matching with errors.Is.
var (
	// ErrInvalidConfiguration is returned when a component is constructed with
	// an invalid option value (e.g. a negative worker count).
	ErrInvalidConfiguration = errors.New("invalid webhook configuration")

	// ErrInvalidPayload describes an empty payload. Sign and Sender.Send do
	// not return it; an empty payload is signed and sent like any other.
	ErrInvalidPayload = errors.New("invalid webhook payload")

	// ErrStoreNil is returned when a nil Store is passed where one is required.
	ErrStoreNil = errors.New("webhook store cannot be nil")

	// ErrDispatcherStopped is returned by operations attempted after Stop.
	ErrDispatcherStopped = errors.New("webhook dispatcher is stopped")

	// ErrQueueFull describes a task that cannot be enqueued because the
	// bounded dispatch queue is at capacity. Dispatch does not return it: it
	// drops such a task with a warning log and returns nil.
	ErrQueueFull = errors.New("webhook dispatch queue is full")

	// ErrDisallowedScheme is returned when a webhook URL's scheme is not in
	// the configured allow-list.
	ErrDisallowedScheme = errors.New("webhook url scheme is not allowed")

	// ErrPayloadTooLarge is returned when the serialized envelope exceeds the
	// configured maximum payload size.
	ErrPayloadTooLarge = errors.New("webhook payload exceeds maximum size")

	// ErrAutoDisableFailed is returned when the store update backing an
	// auto-disable decision fails; the webhook remains ACTIVE and keeps
	// accumulating consecutive failures until a later attempt succeeds.
	ErrAutoDisableFailed = errors.New("failed to auto-disable webhook")
)

// IsTerminal reports whether err represents a failure kind that must never be
// retried (disallowed scheme, oversized payload).
func IsTerminal(err error) bool {
	return errors.Is(err, ErrDisallowedScheme) || errors.Is(err, ErrPayloadTooLarge)
}
