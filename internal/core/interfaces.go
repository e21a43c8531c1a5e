package core

import (
	"context"
	"time"
)

// Logger interface
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
	Fatal(format string, args ...any)
}

// Cache interface
type Cache interface {
	Get(key string) (any, bool)
	Set(key string, value any, duration time.Duration)
	Stop()
}

// StorageInterface persists the model cache
type StorageInterface interface {
	SaveModelCache(cache *ModelCache) error
	LoadModelCache() (*ModelCache, error)
	Close() error
}

// ChatClient issues chat completion requests against the LLM API
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, model string, messages []ChatMessage) (string, error)
	ListModels(ctx context.Context) ([]string, error)
}

// ModelSource resolves the available model list
type ModelSource interface {
	GetAvailableModels(ctx context.Context, forceRefresh bool) []string
	ModelChoices(models []string) []ModelChoice
}

// MetricsCollector interface
type MetricsCollector interface {
	RecordCommand(name string, success bool, duration time.Duration)
	RecordLLMRequest(success bool, duration time.Duration)
}

// NopLogger empty logger implementation
type NopLogger struct{}

func (*NopLogger) Debug(format string, args ...any) {}
func (*NopLogger) Info(format string, args ...any)  {}
func (*NopLogger) Warn(format string, args ...any)  {}
func (*NopLogger) Error(format string, args ...any) {}
func (*NopLogger) Fatal(format string, args ...any) {}

// NopMetrics empty metrics collector implementation
type NopMetrics struct{}

func (*NopMetrics) RecordCommand(name string, success bool, duration time.Duration) {}
func (*NopMetrics) RecordLLMRequest(success bool, duration time.Duration)           {}
