package metrics

import "time"

// Recorder collects counters and latencies for reconciliation activity
type Recorder interface {
	IncCounter(name string, labels map[string]string)
	ObserveLatency(name string, duration time.Duration, labels map[string]string)
}

// Well-known counter names
const (
	CounterSweepRuns        = "sweep_runs"
	CounterMatchesFound     = "matches_found"
	CounterPaymentsExpired  = "payments_expired"
	CounterMatcherErrors    = "matcher_errors"
	CounterWebhookAttempts  = "webhook_attempts"
	CounterWebhookFailures  = "webhook_failures"
	CounterOracleFallbacks  = "oracle_fallbacks"
	OperationSweep          = "sweep"
	OperationFindMatch      = "find_match"
	OperationWebhookDeliver = "webhook_deliver"
)
