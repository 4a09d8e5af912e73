package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCounter_Concurrent(t *testing.T) {
	var c Counter
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Inc()
		}()
	}
	wg.Wait()
	c.Add(10)

	assert.Equal(t, uint64(60), c.Load())
}

func TestTimer(t *testing.T) {
	tm := StartTimer()
	time.Sleep(2 * time.Millisecond)
	assert.GreaterOrEqual(t, tm.Duration(), 2*time.Millisecond)
}

func TestPayments_Snapshot(t *testing.T) {
	var p Payments
	p.Initiated.Inc()
	p.Confirmed.Inc()
	p.Confirmed.Inc()
	p.WebhookDuplicates.Inc()

	snap := p.Snapshot()
	assert.Equal(t, uint64(1), snap["payments_initiated"])
	assert.Equal(t, uint64(2), snap["payments_confirmed"])
	assert.Equal(t, uint64(1), snap["payments_webhook_duplicates"])
	assert.Zero(t, snap["payments_provider_errors"])
}
