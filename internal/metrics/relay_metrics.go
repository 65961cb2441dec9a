package metrics

import (
	"sync/atomic"
	"time"

	"github.com/ramonehamilton/spellduel/internal/events"
)

// RelayMetrics tracks relay traffic and match outcomes.
type RelayMetrics struct {
	// ForwardLatency is the time from reading a frame to queueing it for the other peer.
	ForwardLatency *Histogram

	FramesRelayed     atomic.Uint64
	DuplicatesDropped atomic.Uint64
	RateLimited       atomic.Uint64
	Desyncs           atomic.Uint64
	MatchesCreated    atomic.Uint64
	MatchesFinished   atomic.Uint64
	OpenConnections   atomic.Int64

	startTime time.Time
}

// NewRelayMetrics creates a new metrics collector.
func NewRelayMetrics() *RelayMetrics {
	return &RelayMetrics{
		ForwardLatency: NewHistogram(10000),
		startTime:      time.Now(),
	}
}

// RelayStats is a JSON snapshot of RelayMetrics.
type RelayStats struct {
	ForwardLatency    LatencyStats `json:"forward_latency"`
	FramesRelayed     uint64       `json:"frames_relayed"`
	DuplicatesDropped uint64       `json:"duplicates_dropped"`
	RateLimited       uint64       `json:"rate_limited"`
	Desyncs           uint64       `json:"desyncs"`
	MatchesCreated    uint64       `json:"matches_created"`
	MatchesFinished   uint64       `json:"matches_finished"`
	OpenConnections   int64        `json:"open_connections"`
	Uptime            string       `json:"uptime"`
}

// LatencyStats summarizes a histogram, in milliseconds.
type LatencyStats struct {
	Mean  float64 `json:"mean"`
	P50   float64 `json:"p50"`
	P95   float64 `json:"p95"`
	P99   float64 `json:"p99"`
	Max   float64 `json:"max"`
	Count int     `json:"count"`
}

func latencyStats(h *Histogram) LatencyStats {
	return LatencyStats{
		Mean:  h.Mean(),
		P50:   h.Percentile(50),
		P95:   h.Percentile(95),
		P99:   h.Percentile(99),
		Max:   h.Max(),
		Count: h.Count(),
	}
}

// GetStats returns a snapshot of the current statistics.
func (m *RelayMetrics) GetStats() *RelayStats {
	return &RelayStats{
		ForwardLatency:    latencyStats(m.ForwardLatency),
		FramesRelayed:     m.FramesRelayed.Load(),
		DuplicatesDropped: m.DuplicatesDropped.Load(),
		RateLimited:       m.RateLimited.Load(),
		Desyncs:           m.Desyncs.Load(),
		MatchesCreated:    m.MatchesCreated.Load(),
		MatchesFinished:   m.MatchesFinished.Load(),
		OpenConnections:   m.OpenConnections.Load(),
		Uptime:            time.Since(m.startTime).Round(time.Second).String(),
	}
}

// Observer counts match lifecycle events from the dispatcher.
type Observer struct {
	m *RelayMetrics
}

// NewObserver returns an events.Observer feeding m.
func (m *RelayMetrics) NewObserver() *Observer {
	return &Observer{m: m}
}

// OnEvent increments the counter matching the event type.
func (o *Observer) OnEvent(event events.Event) error {
	switch event.Type {
	case events.MatchCreated:
		o.m.MatchesCreated.Add(1)
	case events.MatchFinished:
		o.m.MatchesFinished.Add(1)
	case events.MatchDesync:
		o.m.Desyncs.Add(1)
	}
	return nil
}

// GetName returns the observer's name.
func (o *Observer) GetName() string {
	return "MetricsObserver"
}

// ShouldHandle returns true for counted match events.
func (o *Observer) ShouldHandle(eventType string) bool {
	switch eventType {
	case events.MatchCreated, events.MatchFinished, events.MatchDesync:
		return true
	}
	return false
}

var _ events.Observer = (*Observer)(nil)
