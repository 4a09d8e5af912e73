package metrics

import (
	"sync/atomic"
	"time"
)

type Counter struct {
	value uint64
}

func (c *Counter) Inc() {
	atomic.AddUint64(&c.value, 1)
}

func (c *Counter) Add(n uint64) {
	atomic.AddUint64(&c.value, n)
}

func (c *Counter) Load() uint64 {
	return atomic.LoadUint64(&c.value)
}

type Timer struct {
	start time.Time
}

func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// Payments counts payment bridge outcomes for the process lifetime.
type Payments struct {
	Initiated              Counter
	Confirmed              Counter
	DuplicateConfirmations Counter
	WebhooksReceived       Counter
	WebhookDuplicates      Counter
	ProviderErrors         Counter
}

func (p *Payments) Snapshot() map[string]uint64 {
	return map[string]uint64{
		"payments_initiated":               p.Initiated.Load(),
		"payments_confirmed":               p.Confirmed.Load(),
		"payments_duplicate_confirmations": p.DuplicateConfirmations.Load(),
		"payments_webhooks_received":       p.WebhooksReceived.Load(),
		"payments_webhook_duplicates":      p.WebhookDuplicates.Load(),
		"payments_provider_errors":         p.ProviderErrors.Load(),
	}
}
