package webhook

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/modelregistry/webhooks/pkg/logger"
)

// Dispatcher fans events out to every active webhook subscribed to them,
// delivering each one concurrently through a bounded pool of workers draining
// a bounded queue. A full queue drops the newest task rather than blocking
// the caller.
type Dispatcher struct {
	store  Store
	cache  *Cache
	sender *Sender
	policy *failurePolicy

	queue         chan DispatchTask
	maxWorkers    int
	maxRetryCount int
	schedule      retrySchedule

	log *slog.Logger

	mu       sync.Mutex
	cancel   context.CancelFunc
	workCtx  context.Context
	wg       sync.WaitGroup
	stopping atomic.Bool
	retryWG  sync.WaitGroup
}

// NewDispatcher wires a Dispatcher's components together. cfg supplies every
// tunable; store is the only write/read path back to the registry.
func NewDispatcher(store Store, cfg Config, log *slog.Logger) (*Dispatcher, error) {
	if store == nil {
		return nil, ErrStoreNil
	}
	if cfg.MaxWorkers <= 0 || cfg.QueueSize <= 0 {
		return nil, fmt.Errorf("%w: max workers and queue size must be positive", ErrInvalidConfiguration)
	}
	if log == nil {
		log = slog.Default()
	}

	cache := NewCache(cfg.CacheRefreshInterval, log)
	sender := NewSender(cfg.DefaultTimeout, cfg.AllowedSchemes, cfg.MaxPayloadSize, cfg.ResponseBodyCapture, log)
	policy := newFailurePolicy(cfg.AutoDisableOnFailure, cfg.MaxConsecutiveFailures, log)

	d := &Dispatcher{
		store:         store,
		cache:         cache,
		sender:        sender,
		policy:        policy,
		queue:         make(chan DispatchTask, cfg.QueueSize),
		maxWorkers:    cfg.MaxWorkers,
		maxRetryCount: cfg.MaxRetryCount,
		schedule:      retrySchedule(cfg.retryDelays()),
		log:           log,
	}
	return d, nil
}

// Start connects the cache to the store, performs an initial synchronous
// load, and launches the cache refresher and worker pool. Calling Start
// twice is a no-op.
func (d *Dispatcher) Start(ctx context.Context) error {
	d.mu.Lock()
	if d.cancel != nil {
		d.mu.Unlock()
		return nil
	}

	if err := d.cache.SetStore(ctx, d.store); err != nil {
		d.mu.Unlock()
		return fmt.Errorf("initial webhook cache load: %w", err)
	}

	loopCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	// workCtx backs in-flight deliveries. It is deliberately not derived from
	// loopCtx: Stop cancels loopCtx to stop workers from picking up new tasks,
	// but a delivery already dequeued must run to completion (or its own
	// per-request timeout), never aborted mid-flight by shutdown.
	d.workCtx = ctx
	d.stopping.Store(false)
	d.mu.Unlock()

	d.cache.Start(loopCtx)

	for i := 0; i < d.maxWorkers; i++ {
		d.wg.Add(1)
		go d.worker(loopCtx)
	}

	d.log.Info("webhook dispatcher started",
		logger.Component("webhook.dispatcher"),
		slog.Int("workers", d.maxWorkers),
		slog.Int("queue_size", cap(d.queue)))
	return nil
}

// Stop signals every worker to finish its in-flight delivery, stops the
// cache refresher, and waits for both to exit. Retries still waiting out
// their delay are abandoned without being re-enqueued; Stop waits for their
// goroutines to exit as well.
func (d *Dispatcher) Stop() error {
	d.mu.Lock()
	if d.cancel == nil {
		d.mu.Unlock()
		return nil
	}
	d.stopping.Store(true)
	cancel := d.cancel
	d.cancel = nil
	d.mu.Unlock()

	cancel()
	d.wg.Wait()
	d.retryWG.Wait()

	if err := d.cache.Stop(); err != nil {
		return err
	}

	d.log.Info("webhook dispatcher stopped", logger.Component("webhook.dispatcher"))
	return nil
}

// Dispatch enqueues one delivery per active webhook subscribed to eventType.
// It never blocks: a webhook whose task cannot be enqueued because the queue
// is full is dropped with a warning log, per this package's overflow policy.
func (d *Dispatcher) Dispatch(ctx context.Context, eventType string, data any) error {
	if d.stopping.Load() {
		return ErrDispatcherStopped
	}

	webhooks := d.cache.GetActiveForEvent(eventType)
	now := time.Now()

	for _, w := range webhooks {
		deliveryID := newDeliveryID()
		payload, err := buildEnvelope(eventType, data, deliveryID, now)
		if err != nil {
			d.log.Error("failed to build webhook envelope",
				logger.Component("webhook.dispatcher"),
				slog.String("webhook_id", w.ID), logger.Error(err))
			continue
		}

		task := DispatchTask{
			Webhook:    w,
			EventType:  eventType,
			Payload:    payload,
			RetryCount: 0,
			DeliveryID: deliveryID,
			CreatedAt:  now,
		}

		select {
		case d.queue <- task:
		default:
			d.log.Warn("webhook dispatch queue full, dropping delivery",
				logger.Component("webhook.dispatcher"),
				slog.String("webhook_id", w.ID), slog.String("delivery_id", deliveryID))
		}
	}
	return nil
}

// QueueSize reports how many tasks are currently buffered in the queue.
func (d *Dispatcher) QueueSize() int {
	return len(d.queue)
}

// FailureCounts returns a snapshot of the consecutive-failure counters.
func (d *Dispatcher) FailureCounts() FailureCounts {
	return d.policy.snapshot()
}

// CacheInfo returns the cache's current diagnostics.
func (d *Dispatcher) CacheInfo() CacheInfo {
	return d.cache.Info()
}

// ForceCacheRefresh forces an immediate synchronous cache refresh.
func (d *Dispatcher) ForceCacheRefresh(ctx context.Context) error {
	return d.cache.Refresh(ctx)
}

// worker pulls tasks off the queue until loopCtx is cancelled by Stop.
// loopCtx only ever gates *picking up new work*; once a task is dequeued,
// processTask runs it against d.workCtx so Stop can never cancel a delivery
// already in flight.
func (d *Dispatcher) worker(loopCtx context.Context) {
	defer d.wg.Done()
	for {
		select {
		case <-loopCtx.Done():
			return
		case task, ok := <-d.queue:
			if !ok {
				return
			}
			d.processTask(loopCtx, task)
		}
	}
}

// processTask sends one delivery attempt and decides whether to retry,
// succeed, or escalate to the failure policy. The HTTP send and any
// resulting store update run against d.workCtx, not loopCtx: a shutdown in
// progress must let this delivery finish rather than abort it mid-flight.
func (d *Dispatcher) processTask(loopCtx context.Context, task DispatchTask) {
	result := d.sender.Send(d.workCtx, task.Webhook, task.EventType, task.Payload, task.DeliveryID)

	if result.Success {
		d.policy.recordSuccess(task.Webhook.ID)
		d.log.Debug("webhook delivered",
			logger.Component("webhook.dispatcher"),
			slog.String("webhook_id", task.Webhook.ID),
			slog.String("delivery_id", task.DeliveryID),
			slog.Int64("response_time_ms", result.ResponseTimeMS))
		return
	}

	retryable := !result.ErrorKind.terminal() && task.RetryCount < d.maxRetryCount
	if retryable {
		d.scheduleRetry(loopCtx, task, result)
		return
	}

	d.log.Warn("webhook delivery failed, no further retries",
		logger.Component("webhook.dispatcher"),
		logger.RetryCount(task.RetryCount),
		slog.String("webhook_id", task.Webhook.ID),
		slog.String("error_kind", string(result.ErrorKind)),
		slog.String("error", result.ErrorMessage))

	d.policy.recordTerminalFailure(d.workCtx, task.Webhook, d.disableWebhook)
}

// scheduleRetry waits the fixed schedule's delay for this attempt, then
// re-enqueues the task with an incremented retry count. The wait itself is
// abandoned if loopCtx is cancelled (no delivery is in flight yet, so there
// is nothing to let finish); the resulting re-enqueue and any terminal
// failure it causes run against d.workCtx.
func (d *Dispatcher) scheduleRetry(loopCtx context.Context, task DispatchTask, result DispatchResult) {
	delay := d.schedule.delay(task.RetryCount)
	next := task
	next.RetryCount++

	d.log.Debug("scheduling webhook retry",
		logger.Component("webhook.dispatcher"),
		slog.String("webhook_id", task.Webhook.ID),
		slog.String("delivery_id", task.DeliveryID),
		slog.Duration("delay", delay),
		logger.RetryCount(next.RetryCount))

	d.retryWG.Add(1)
	go func() {
		defer d.retryWG.Done()
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-loopCtx.Done():
			return
		case <-timer.C:
		}

		select {
		case d.queue <- next:
		default:
			d.log.Warn("webhook retry queue full, counting as consecutive failure",
				logger.Component("webhook.dispatcher"),
				slog.String("webhook_id", task.Webhook.ID))
			d.policy.recordTerminalFailure(d.workCtx, task.Webhook, d.disableWebhook)
		}
	}()
}

// disableWebhook updates the webhook's status in the store and nudges the
// cache to pick up the change, rather than waiting for its next scheduled
// refresh.
func (d *Dispatcher) disableWebhook(ctx context.Context, webhookID string) error {
	if _, err := d.store.UpdateWebhook(ctx, webhookID, StatusDisabled); err != nil {
		return fmt.Errorf("%w: %w", ErrAutoDisableFailed, err)
	}
	return d.cache.Refresh(ctx)
}
