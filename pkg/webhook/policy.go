package webhook

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/modelregistry/webhooks/pkg/logger"
	"github.com/modelregistry/webhooks/pkg/statemachine"
)

// disableEvent is the single event the auto-disable state machine reacts to:
// "the consecutive-failure threshold has been crossed".
const disableEvent = statemachine.StringEvent("consecutive_failures_exceeded")

// newDisableGuardMachine builds a two-state machine (ACTIVE -> DISABLED) whose
// single transition is guarded by "failures >= threshold". It is not a
// replacement for the store call that actually persists the status change —
// the store remains the system of record — it is only an internal,
// in-memory check of the threshold. The machine always starts in ACTIVE and
// does not consult the webhook's stored status, so it does not detect a
// webhook that is already INACTIVE or DISABLED.
func newDisableGuardMachine(threshold int) statemachine.StateMachine {
	active := statemachine.StringState(string(StatusActive))
	disabled := statemachine.StringState(string(StatusDisabled))

	guard := func(_ context.Context, _ statemachine.State, _ statemachine.Event, data any) bool {
		count, ok := data.(int)
		return ok && count >= threshold
	}

	machine, err := statemachine.NewBuilder(active).
		From(active).When(disableEvent).To(disabled).WithGuard(guard).Add()
	if err != nil {
		// AddTransition only fails for nil from/to/event, none of which are
		// nil here; a failure would be a programming error in this package.
		panic(fmt.Errorf("webhook: building auto-disable state machine: %w", err))
	}
	return machine.Build()
}

// failurePolicy owns the consecutive-failure counters and the auto-disable
// decision. Safe for concurrent use.
type failurePolicy struct {
	mu                     sync.Mutex
	counts                 map[string]int
	autoDisableOnFailure   bool
	maxConsecutiveFailures int
	log                    *slog.Logger
}

func newFailurePolicy(autoDisable bool, threshold int, log *slog.Logger) *failurePolicy {
	if log == nil {
		log = slog.Default()
	}
	return &failurePolicy{
		counts:                 make(map[string]int),
		autoDisableOnFailure:   autoDisable,
		maxConsecutiveFailures: threshold,
		log:                    log,
	}
}

// recordSuccess clears the failure counter for webhookID.
func (p *failurePolicy) recordSuccess(webhookID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.counts, webhookID)
}

// snapshot returns a copy of the current failure counts.
func (p *failurePolicy) snapshot() FailureCounts {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(FailureCounts, len(p.counts))
	for k, v := range p.counts {
		out[k] = v
	}
	return out
}

// recordTerminalFailure increments the consecutive-failure counter for
// webhook and, if auto-disable is enabled and the configured threshold is
// reached, invokes disable to
// perform the store update and cache refresh. disable is called with the
// lock released so it may safely call back into the store/cache.
func (p *failurePolicy) recordTerminalFailure(ctx context.Context, w Webhook, disable func(ctx context.Context, webhookID string) error) {
	p.mu.Lock()
	p.counts[w.ID]++
	count := p.counts[w.ID]
	p.mu.Unlock()

	p.log.Warn("webhook delivery failed consecutively",
		logger.Component("webhook.policy"),
		slog.String("webhook_id", w.ID),
		slog.Int("consecutive_failures", count))

	if !p.autoDisableOnFailure {
		return
	}

	machine := newDisableGuardMachine(p.maxConsecutiveFailures)
	canDisable := machine.CanFire(ctx, disableEvent, count)
	if !canDisable {
		return
	}

	if err := disable(ctx, w.ID); err != nil {
		p.log.Error("failed to auto-disable webhook",
			logger.Component("webhook.policy"),
			slog.String("webhook_id", w.ID),
			slog.String("error_kind", string(KindAutoDisableFail)),
			logger.Error(err))
		return
	}

	if err := machine.Fire(ctx, disableEvent, count); err != nil {
		// The machine is local to this call and CanFire already passed with
		// the same count, so Fire is not expected to fail; an error is only
		// logged, since the store update above has already succeeded.
		p.log.Debug("auto-disable state transition not recorded",
			logger.Component("webhook.policy"), logger.Error(err))
	}

	p.mu.Lock()
	p.counts[w.ID] = 0
	p.mu.Unlock()

	p.log.Warn("webhook auto-disabled after consecutive failures",
		logger.Component("webhook.policy"),
		slog.String("webhook_id", w.ID),
		slog.Int("threshold", p.maxConsecutiveFailures))
}

// retrySchedule returns the delay to wait before the next retry of a task
// whose current (0-indexed) retryCount is given, per the configured fixed
// schedule. Indexing matches DispatchTask.RetryCount: the first retry uses
// schedule[0]. A count beyond the schedule uses its last entry.
type retrySchedule []time.Duration

func (s retrySchedule) delay(retryCount int) time.Duration {
	if retryCount < 0 || retryCount >= len(s) {
		if len(s) == 0 {
			return time.Second
		}
		return s[len(s)-1]
	}
	return s[retryCount]
}
