// Package webhook delivers registry events to externally configured HTTP
// endpoints: a cache of active webhook configurations, an HMAC-signed HTTP
// sender, a fixed-schedule retry and auto-disable policy, and a bounded
// worker pool tying them together.
//
// A typical caller constructs a Dispatcher once per Store and keeps it
// running for the lifetime of the process:
//
//	d, err := webhook.NewDispatcher(store, webhook.DefaultConfig(), nil)
//	if err != nil { ... }
//	if err := d.Start(ctx); err != nil { ... }
//	defer d.Stop()
//
//	d.Dispatch(ctx, "MODEL_VERSION_CREATED", payload)
//
// Processes that share a Store across multiple subsystems should use
// GetDispatcher instead, which keeps one Dispatcher per Store so its cache,
// queue and failure counters aren't duplicated.
package webhook
