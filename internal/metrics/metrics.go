// Package metrics tracks a few basic service counters without external
// dependencies.
package metrics

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"
)

type Collector struct {
	totalRequests    atomic.Int64
	failedRequests   atomic.Int64
	totalLatencyMic  atomic.Int64
	messagesSent     atomic.Int64
	messagesRejected atomic.Int64
	startedAt        time.Time
	provider         atomic.Value // string
}

func New() *Collector {
	c := &Collector{startedAt: time.Now()}
	c.provider.Store("")
	return c
}

// SetProvider records the gateway variant chosen at startup for the
// snapshot output.
func (c *Collector) SetProvider(name string) {
	c.provider.Store(name)
}

// MessageSent counts a successful delivery.
func (c *Collector) MessageSent() {
	c.messagesSent.Add(1)
}

// MessageRejected counts an input rejected by validation.
func (c *Collector) MessageRejected() {
	c.messagesRejected.Add(1)
}

// Middleware records request count, failures, and aggregate latency.
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		c.totalRequests.Add(1)
		if rec.status >= http.StatusInternalServerError {
			c.failedRequests.Add(1)
		}
		c.totalLatencyMic.Add(time.Since(start).Microseconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Handler exposes the counters in a simple JSON form.
func (c *Collector) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqs := c.totalRequests.Load()
		latency := c.totalLatencyMic.Load()
		var avgMicros int64
		if reqs > 0 {
			avgMicros = latency / reqs
		}

		payload := map[string]any{
			"requests_total":     reqs,
			"requests_failed":    c.failedRequests.Load(),
			"messages_sent":      c.messagesSent.Load(),
			"messages_rejected":  c.messagesRejected.Load(),
			"avg_latency_micros": avgMicros,
			"uptime_seconds":     int64(time.Since(c.startedAt).Seconds()),
			"provider":           c.provider.Load(),
			"timestamp":          time.Now().UTC(),
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(payload)
	})
}
