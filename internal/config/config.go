package config

import (
	"fmt"
	"strconv"
	"time"

	"discordllm/internal/core"
	"discordllm/internal/util"
)

// BotConfig holds all bot configuration
type BotConfig struct {
	DiscordToken       string
	ApplicationID      string
	GuildID            string
	LLMAPIKey          string
	LLMAPIBase         string
	DefaultModel       string
	FreeModel          string
	FallbackModels     []string
	Cooldown           time.Duration
	ModelCachePath     string
	HeartbeatPath      string
	StatusPort         string
	SystemPrompt       string
	HTTPClientSettings HTTPClientSettings
	Storage            core.StorageInterface
	Logger             core.Logger
}

// HTTPClientSettings HTTP client configuration
type HTTPClientSettings struct {
	MaxIdleConns        int
	MaxIdleConnsPerHost int
	MaxConnsPerHost     int
	IdleConnTimeout     time.Duration
	TLSHandshakeTimeout time.Duration
	RequestTimeout      time.Duration
}

// DefaultHTTPClientSettings default HTTP client settings
func DefaultHTTPClientSettings() HTTPClientSettings {
	return HTTPClientSettings{
		MaxIdleConns:        core.HTTPMaxIdleConns,
		MaxIdleConnsPerHost: core.HTTPMaxIdleConnsPerHost,
		MaxConnsPerHost:     core.HTTPMaxConnsPerHost,
		IdleConnTimeout:     core.HTTPIdleConnTimeout,
		TLSHandshakeTimeout: core.HTTPTLSHandshakeTimeout,
		RequestTimeout:      core.HTTPRequestTimeout,
	}
}

// DefaultSystemPrompt is the fixed instruction sent with every ask request.
const DefaultSystemPrompt = "You are a helpful assistant. Answer concisely."

// LoadBotConfigFromEnv loads bot config from environment variables,
// failing fast when a required value is absent.
func LoadBotConfigFromEnv(logger core.Logger) (BotConfig, error) {
	var cfg BotConfig

	required := []struct {
		key  string
		dest *string
	}{
		{"DISCORD_TOKEN", &cfg.DiscordToken},
		{"DISCORD_CLIENT_ID", &cfg.ApplicationID},
		{"DISCORD_GUILD_ID", &cfg.GuildID},
		{"OPENAI_API_KEY", &cfg.LLMAPIKey},
	}
	for _, r := range required {
		value, err := util.RequireEnv(r.key)
		if err != nil {
			return cfg, err
		}
		*r.dest = value
	}

	cfg.LLMAPIBase = util.GetEnvWithDefault("OPENAI_API_BASE", core.DefaultAPIBase)
	cfg.DefaultModel = util.GetEnvWithDefault("DEFAULT_MODEL", core.DefaultModel)
	cfg.FreeModel = util.GetEnvWithDefault("FREE_MODEL", cfg.DefaultModel)
	cfg.FallbackModels = util.ParseEnvList(util.GetEnvWithDefault("FALLBACK_MODELS", ""))
	if len(cfg.FallbackModels) == 0 {
		cfg.FallbackModels = core.FallbackModels
	}
	cfg.ModelCachePath = util.GetEnvWithDefault("MODEL_CACHE_FILE", core.ModelCacheFilePath)
	cfg.HeartbeatPath = util.GetEnvWithDefault("HEARTBEAT_FILE", core.HeartbeatFilePath)
	cfg.StatusPort = util.GetEnvWithDefault("STATUS_PORT", "")
	cfg.SystemPrompt = util.GetEnvWithDefault("SYSTEM_PROMPT", DefaultSystemPrompt)
	cfg.HTTPClientSettings = DefaultHTTPClientSettings()

	cfg.Cooldown = core.DefaultCooldown
	if raw := util.GetEnvWithDefault("COOLDOWN_SECONDS", ""); raw != "" {
		seconds, err := strconv.Atoi(raw)
		if err != nil || seconds <= 0 {
			logger.Warn("Invalid COOLDOWN_SECONDS value '%s', using default %s", raw, core.DefaultCooldown)
		} else {
			cfg.Cooldown = time.Duration(seconds) * time.Second
		}
	}

	logger.Info("Configuration loaded (guild: %s, model: %s, api: %s)",
		cfg.GuildID, cfg.DefaultModel, cfg.LLMAPIBase)

	return cfg, nil
}

// Validate checks invariants beyond required-env presence.
func (c *BotConfig) Validate() error {
	if c.Cooldown <= 0 {
		return fmt.Errorf("cooldown must be positive, got %s", c.Cooldown)
	}
	if c.DefaultModel == "" {
		return fmt.Errorf("default model must not be empty")
	}
	return nil
}
