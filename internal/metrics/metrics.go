// Package metrics collects in-memory counters for the status endpoint.
package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// AtomicStats thread-safe request statistics
type AtomicStats struct {
	TotalCommands      atomic.Int64
	SuccessfulCommands atomic.Int64
	FailedCommands     atomic.Int64
	TotalLLMRequests   atomic.Int64
	FailedLLMRequests  atomic.Int64
	TotalLatencyMillis atomic.Int64
}

// MetricsService collects command and LLM request statistics.
type MetricsService struct {
	stats       AtomicStats
	perCommand  map[string]*atomic.Int64
	perCommandL sync.RWMutex
	startedAt   time.Time
}

// Snapshot is a point-in-time view of the collected statistics.
type Snapshot struct {
	UptimeSeconds      int64            `json:"uptime_seconds"`
	TotalCommands      int64            `json:"total_commands"`
	SuccessfulCommands int64            `json:"successful_commands"`
	FailedCommands     int64            `json:"failed_commands"`
	CommandCounts      map[string]int64 `json:"command_counts"`
	TotalLLMRequests   int64            `json:"total_llm_requests"`
	FailedLLMRequests  int64            `json:"failed_llm_requests"`
	AvgLatencyMillis   int64            `json:"avg_latency_ms"`
}

// NewMetricsService creates a metrics service.
func NewMetricsService() *MetricsService {
	return &MetricsService{
		perCommand: make(map[string]*atomic.Int64),
		startedAt:  time.Now(),
	}
}

// RecordCommand records a handled command result.
func (ms *MetricsService) RecordCommand(name string, success bool, duration time.Duration) {
	ms.stats.TotalCommands.Add(1)
	ms.stats.TotalLatencyMillis.Add(duration.Milliseconds())
	if success {
		ms.stats.SuccessfulCommands.Add(1)
	} else {
		ms.stats.FailedCommands.Add(1)
	}

	ms.commandCounter(name).Add(1)
}

// RecordLLMRequest records an LLM API call result.
func (ms *MetricsService) RecordLLMRequest(success bool, duration time.Duration) {
	ms.stats.TotalLLMRequests.Add(1)
	if !success {
		ms.stats.FailedLLMRequests.Add(1)
	}
}

func (ms *MetricsService) commandCounter(name string) *atomic.Int64 {
	ms.perCommandL.RLock()
	counter, found := ms.perCommand[name]
	ms.perCommandL.RUnlock()
	if found {
		return counter
	}

	ms.perCommandL.Lock()
	defer ms.perCommandL.Unlock()
	if counter, found = ms.perCommand[name]; found {
		return counter
	}
	counter = &atomic.Int64{}
	ms.perCommand[name] = counter
	return counter
}

// GetSnapshot returns a copy of the current statistics.
func (ms *MetricsService) GetSnapshot() Snapshot {
	total := ms.stats.TotalCommands.Load()
	var avgLatency int64
	if total > 0 {
		avgLatency = ms.stats.TotalLatencyMillis.Load() / total
	}

	counts := make(map[string]int64)
	ms.perCommandL.RLock()
	for name, counter := range ms.perCommand {
		counts[name] = counter.Load()
	}
	ms.perCommandL.RUnlock()

	return Snapshot{
		UptimeSeconds:      int64(time.Since(ms.startedAt).Seconds()),
		TotalCommands:      total,
		SuccessfulCommands: ms.stats.SuccessfulCommands.Load(),
		FailedCommands:     ms.stats.FailedCommands.Load(),
		CommandCounts:      counts,
		TotalLLMRequests:   ms.stats.TotalLLMRequests.Load(),
		FailedLLMRequests:  ms.stats.FailedLLMRequests.Load(),
		AvgLatencyMillis:   avgLatency,
	}
}
