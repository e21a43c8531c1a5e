package metrics

import (
	"sync"
	"testing"
	"time"
)

func TestMetricsService_RecordCommand(t *testing.T) {
	ms := NewMetricsService()

	ms.RecordCommand("ask", true, 100*time.Millisecond)
	ms.RecordCommand("ask", false, 300*time.Millisecond)
	ms.RecordCommand("summarize", true, 200*time.Millisecond)

	snap := ms.GetSnapshot()
	if snap.TotalCommands != 3 {
		t.Errorf("Expected 3 total commands, got %d", snap.TotalCommands)
	}
	if snap.SuccessfulCommands != 2 {
		t.Errorf("Expected 2 successful commands, got %d", snap.SuccessfulCommands)
	}
	if snap.FailedCommands != 1 {
		t.Errorf("Expected 1 failed command, got %d", snap.FailedCommands)
	}
	if snap.CommandCounts["ask"] != 2 {
		t.Errorf("Expected 2 ask commands, got %d", snap.CommandCounts["ask"])
	}
	if snap.CommandCounts["summarize"] != 1 {
		t.Errorf("Expected 1 summarize command, got %d", snap.CommandCounts["summarize"])
	}
	if snap.AvgLatencyMillis != 200 {
		t.Errorf("Expected 200ms average latency, got %d", snap.AvgLatencyMillis)
	}
}

func TestMetricsService_RecordLLMRequest(t *testing.T) {
	ms := NewMetricsService()

	ms.RecordLLMRequest(true, 50*time.Millisecond)
	ms.RecordLLMRequest(false, 50*time.Millisecond)

	snap := ms.GetSnapshot()
	if snap.TotalLLMRequests != 2 {
		t.Errorf("Expected 2 LLM requests, got %d", snap.TotalLLMRequests)
	}
	if snap.FailedLLMRequests != 1 {
		t.Errorf("Expected 1 failed LLM request, got %d", snap.FailedLLMRequests)
	}
}

func TestMetricsService_EmptySnapshot(t *testing.T) {
	ms := NewMetricsService()

	snap := ms.GetSnapshot()
	if snap.TotalCommands != 0 || snap.AvgLatencyMillis != 0 {
		t.Errorf("Expected zeroed snapshot, got %+v", snap)
	}
}

func TestMetricsService_ConcurrentRecording(t *testing.T) {
	ms := NewMetricsService()

	const workers = 20
	const perWorker = 50
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				ms.RecordCommand("ask", true, time.Millisecond)
				ms.RecordLLMRequest(true, time.Millisecond)
			}
		}()
	}
	wg.Wait()

	snap := ms.GetSnapshot()
	if snap.TotalCommands != workers*perWorker {
		t.Errorf("Expected %d commands, got %d", workers*perWorker, snap.TotalCommands)
	}
	if snap.CommandCounts["ask"] != workers*perWorker {
		t.Errorf("Expected %d ask counts, got %d", workers*perWorker, snap.CommandCounts["ask"])
	}
}
