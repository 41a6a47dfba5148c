package webhook

import "time"

// Config holds every tunable named in the webhook delivery subsystem's
// configuration surface. It can be populated by hand (see DefaultConfig) or
// loaded from the environment via pkg/config:
//
//	var cfg webhook.Config
//	if err := config.Load(&cfg); err != nil { ... }
type Config struct {
	AllowedSchemes         []string      `env:"WEBHOOK_ALLOWED_SCHEMES" envDefault:"https" envSeparator:","`
	MaxWorkers             int           `env:"WEBHOOK_MAX_WORKERS" envDefault:"5"`
	QueueSize              int           `env:"WEBHOOK_QUEUE_SIZE" envDefault:"1000"`
	AutoDisableOnFailure   bool          `env:"WEBHOOK_AUTO_DISABLE_ON_FAILURE" envDefault:"true"`
	CacheRefreshInterval   time.Duration `env:"WEBHOOK_CACHE_REFRESH_INTERVAL" envDefault:"60s"`
	MaxRetryCount          int           `env:"WEBHOOK_MAX_RETRY_COUNT" envDefault:"3"`
	RetryDelays            []string      `env:"WEBHOOK_RETRY_DELAYS" envDefault:"1s,2s,4s" envSeparator:","`
	MaxConsecutiveFailures int           `env:"WEBHOOK_MAX_CONSECUTIVE_FAILURES" envDefault:"5"`
	DefaultTimeout         time.Duration `env:"WEBHOOK_DEFAULT_TIMEOUT" envDefault:"10s"`
	MaxPayloadSize         int           `env:"WEBHOOK_MAX_PAYLOAD_SIZE" envDefault:"1048576"`
	ResponseBodyCapture    int           `env:"WEBHOOK_RESPONSE_BODY_CAPTURE" envDefault:"1000"`
}

// DefaultConfig returns the spec's literal defaults, for callers that don't
// load configuration from the environment (e.g. tests, or library embedding).
func DefaultConfig() Config {
	return Config{
		AllowedSchemes:         []string{"https"},
		MaxWorkers:             5,
		QueueSize:              1000,
		AutoDisableOnFailure:   true,
		CacheRefreshInterval:   60 * time.Second,
		MaxRetryCount:          3,
		RetryDelays:            []string{"1s", "2s", "4s"},
		MaxConsecutiveFailures: 5,
		DefaultTimeout:         10 * time.Second,
		MaxPayloadSize:         1024 * 1024,
		ResponseBodyCapture:    1000,
	}
}

// retryDelays parses the configured delay strings into durations. An entry
// that fails to parse becomes one second; an empty list yields the default
// 1s, 2s, 4s schedule.
func (c Config) retryDelays() []time.Duration {
	delays := make([]time.Duration, 0, len(c.RetryDelays))
	for _, s := range c.RetryDelays {
		d, err := time.ParseDuration(s)
		if err != nil {
			d = time.Second
		}
		delays = append(delays, d)
	}
	if len(delays) == 0 {
		return []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}
	}
	return delays
}
