// Package registry resolves and caches the available LLM model list.
package registry

import (
	"context"
	"time"

	"discordllm/internal/cache"
	"discordllm/internal/core"
	"discordllm/internal/util"
)

const memoryCacheKey = "models:" + core.CacheKeyVersion

// Registry resolves the model list through a chain of sources:
// in-memory cache, persistent store, remote API, hardcoded fallback.
type Registry struct {
	client   core.ChatClient
	store    core.StorageInterface
	memory   core.Cache
	logger   core.Logger
	fallback []string
}

// Config configures a Registry. Cache and Fallback are optional; they
// default to a small LRU cache and the hardcoded model list.
type Config struct {
	Client   core.ChatClient
	Storage  core.StorageInterface
	Cache    core.Cache
	Logger   core.Logger
	Fallback []string
}

// NewRegistry creates a model registry.
func NewRegistry(cfg Config) *Registry {
	logger := cfg.Logger
	if logger == nil {
		logger = &core.NopLogger{}
	}
	memory := cfg.Cache
	if memory == nil {
		memory = cache.NewCacheWithCapacity(4)
	}
	fallback := cfg.Fallback
	if len(fallback) == 0 {
		fallback = core.FallbackModels
	}
	return &Registry{
		client:   cfg.Client,
		store:    cfg.Storage,
		memory:   memory,
		logger:   logger,
		fallback: fallback,
	}
}

// Stop releases the in-memory cache resources.
func (r *Registry) Stop() {
	r.memory.Stop()
}

// GetAvailableModels returns the model list, never empty. When forceRefresh
// is false the resolution order is memory, persistent store, remote API,
// fallback; when true it goes straight to the remote API and overwrites
// both caches with the result.
func (r *Registry) GetAvailableModels(ctx context.Context, forceRefresh bool) []string {
	if !forceRefresh {
		if cached, found := r.memory.Get(memoryCacheKey); found {
			if models, ok := cached.([]string); ok && len(models) > 0 {
				return models
			}
		}

		if models := r.loadFromStore(); len(models) > 0 {
			r.memory.Set(memoryCacheKey, models, core.ModelCacheTTL)
			return models
		}
	}

	models, err := r.client.ListModels(ctx)
	if err != nil || len(models) == 0 {
		if err != nil {
			r.logger.Warn("Failed to fetch models from API: %v, using fallback list", err)
		} else {
			r.logger.Warn("Model API returned an empty list, using fallback list")
		}
		return r.fallback
	}

	r.logger.Info("Fetched %d models from API", len(models))
	r.memory.Set(memoryCacheKey, models, core.ModelCacheTTL)
	r.saveToStore(models)
	return models
}

// ModelChoices maps models to command option choices, truncated to the
// platform's 25-entry limit without reordering.
func (r *Registry) ModelChoices(models []string) []core.ModelChoice {
	if len(models) > core.MaxModelChoices {
		r.logger.Warn("Model list has %d entries, truncating choices to %d", len(models), core.MaxModelChoices)
		models = models[:core.MaxModelChoices]
	}

	choices := make([]core.ModelChoice, 0, len(models))
	for _, model := range models {
		choices = append(choices, core.ModelChoice{Name: model, Value: model})
	}
	return choices
}

func (r *Registry) loadFromStore() []string {
	if r.store == nil {
		return nil
	}

	cached, err := r.store.LoadModelCache()
	if err != nil {
		r.logger.Warn("Failed to load model cache: %v", err)
		return nil
	}
	if cached == nil || len(cached.Models) == 0 {
		return nil
	}

	r.logger.Debug("Loaded %d models from persistent cache (updated %s)", len(cached.Models), cached.UpdatedAt)
	return cached.Models
}

// saveToStore persists best-effort; failures are logged and swallowed.
func (r *Registry) saveToStore(models []string) {
	if r.store == nil {
		return
	}

	entry := &core.ModelCache{
		Models:    models,
		UpdatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := r.store.SaveModelCache(entry); err != nil {
		r.logger.Warn("Failed to persist model cache: %v", err)
	} else {
		r.logger.Debug("Persisted model cache: %s", mustPreview(models))
	}
}

func mustPreview(models []string) string {
	preview, err := util.MarshalJSON(models)
	if err != nil {
		return "<unprintable>"
	}
	return util.TruncateString(string(preview), 120)
}
