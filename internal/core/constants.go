package core

import "time"

// Rate limiting constants
const (
	DefaultCooldown       = 20 * time.Second
	CooldownCleanupPeriod = 5 * time.Minute
)

// HTTP client config constants
const (
	HTTPMaxIdleConns        = 100
	HTTPMaxIdleConnsPerHost = 20
	HTTPMaxConnsPerHost     = 50
	HTTPIdleConnTimeout     = 90 * time.Second
	HTTPTLSHandshakeTimeout = 10 * time.Second
	HTTPRequestTimeout      = 2 * time.Minute
)

// Model registry constants
const (
	ModelCacheFilePath = "models_cache.json"
	ModelCacheTTL      = 1 * time.Hour
	MaxModelChoices    = 25
)

// Liveness heartbeat constants
const (
	HeartbeatFilePath     = "heartbeat"
	HeartbeatInterval     = 30 * time.Second
	HeartbeatStaleAfter   = 2 * time.Minute
	FilePermissionDefault = 0o644
)

// Discord constants
const (
	MaxDiscordMessageLength = 2000
	HistoryPageSize         = 100
	SummarizeLimitMin       = 10
	SummarizeLimitMax       = 1000
	SummarizeLimitDefault   = 200
)

// LLM API constants
const (
	DefaultAPIBase      = "https://api.openai.com/v1"
	DefaultModel        = "gpt-3.5-turbo"
	MaxResponseBodySize = 10 * 1024 * 1024
	AuthBearerPrefix    = "Bearer "
	HeaderContentType   = "Content-Type"
	ContentTypeJSON     = "application/json"
)

// Outbound LLM limiter defaults (requests per second, burst)
const (
	LLMOutboundRate  = 2.0
	LLMOutboundBurst = 5
)

// Cache config constants
const (
	CacheDefaultCapacity = 1000
	CacheCleanupInterval = 5 * time.Minute
	CacheKeyVersion      = "v1"
)

// Logging constants
const (
	MaxDebugFilePathLength = 255
)

// FallbackModels is the last-resort model list used when every other
// source (memory, persistent cache, remote API) fails.
var FallbackModels = []string{
	"gpt-3.5-turbo",
	"gpt-4",
	"gpt-4-turbo",
	"gpt-4o",
	"gpt-4o-mini",
}
