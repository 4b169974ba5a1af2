package monitoring

import (
	"sync"
	"sync/atomic"
	"time"
)

// Metrics holds the service's operational counters.
type Metrics struct {
	RequestCount   int64
	ErrorCount     int64
	CacheHits      int64
	CacheMisses    int64
	ScoresComputed int64
	StartTime      time.Time

	externalCalls  map[string]int64
	externalErrors map[string]int64
	mu             sync.RWMutex
}

// NewMetrics creates a zeroed metrics instance.
func NewMetrics() *Metrics {
	return &Metrics{
		StartTime:      time.Now(),
		externalCalls:  make(map[string]int64),
		externalErrors: make(map[string]int64),
	}
}

func (m *Metrics) IncrementRequest()   { atomic.AddInt64(&m.RequestCount, 1) }
func (m *Metrics) IncrementError()     { atomic.AddInt64(&m.ErrorCount, 1) }
func (m *Metrics) IncrementCacheHit()  { atomic.AddInt64(&m.CacheHits, 1) }
func (m *Metrics) IncrementCacheMiss() { atomic.AddInt64(&m.CacheMisses, 1) }
func (m *Metrics) IncrementScored()    { atomic.AddInt64(&m.ScoresComputed, 1) }

// IncrementExternalCall records one outbound call to a named metric source.
func (m *Metrics) IncrementExternalCall(api string, failed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.externalCalls[api]++
	if failed {
		m.externalErrors[api]++
	}
}

// Snapshot returns the current counter values for the metrics endpoint.
func (m *Metrics) Snapshot() map[string]interface{} {
	m.mu.RLock()
	calls := make(map[string]int64, len(m.externalCalls))
	for k, v := range m.externalCalls {
		calls[k] = v
	}
	failures := make(map[string]int64, len(m.externalErrors))
	for k, v := range m.externalErrors {
		failures[k] = v
	}
	m.mu.RUnlock()

	return map[string]interface{}{
		"requests":        atomic.LoadInt64(&m.RequestCount),
		"errors":          atomic.LoadInt64(&m.ErrorCount),
		"cache_hits":      atomic.LoadInt64(&m.CacheHits),
		"cache_misses":    atomic.LoadInt64(&m.CacheMisses),
		"scores_computed": atomic.LoadInt64(&m.ScoresComputed),
		"external_calls":  calls,
		"external_errors": failures,
		"uptime_seconds":  int64(time.Since(m.StartTime).Seconds()),
	}
}
