// Package bot wires the Discord gateway session to the LLM backend:
// command registration, event routing, and the per-command handlers.
package bot

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"discordllm/internal/config"
	"discordllm/internal/core"
	"discordllm/internal/llm"
	"discordllm/internal/metrics"
	"discordllm/internal/ratelimit"
	"discordllm/internal/registry"

	"github.com/bwmarrin/discordgo"
)

// Bot is the application root: it owns the gateway session and all
// per-process mutable state (model restriction flag, rate limiter,
// model registry).
type Bot struct {
	cfg      config.BotConfig
	session  *discordgo.Session
	llm      core.ChatClient
	registry core.ModelSource
	limiter  *ratelimit.Limiter
	metrics  core.MetricsCollector
	logger   core.Logger

	// restricted limits non-admin users to the designated free model.
	restricted atomic.Bool
}

// New creates a Bot from configuration. The config must carry a Logger
// and a Storage backend.
func New(cfg config.BotConfig) (*Bot, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required in BotConfig")
	}
	if cfg.Storage == nil {
		return nil, fmt.Errorf("storage is required in BotConfig")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	httpClient := createPooledHTTPClient(cfg.HTTPClientSettings)

	llmClient := llm.NewClient(llm.ClientConfig{
		APIBase:    cfg.LLMAPIBase,
		APIKey:     cfg.LLMAPIKey,
		HTTPClient: httpClient,
		Logger:     cfg.Logger,
	})

	modelRegistry := registry.NewRegistry(registry.Config{
		Client:   llmClient,
		Storage:  cfg.Storage,
		Logger:   cfg.Logger,
		Fallback: cfg.FallbackModels,
	})

	discordSession, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}
	discordSession.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentMessageContent

	return &Bot{
		cfg:      cfg,
		session:  discordSession,
		llm:      llmClient,
		registry: modelRegistry,
		limiter:  ratelimit.NewLimiter(cfg.Cooldown),
		metrics:  metrics.NewMetricsService(),
		logger:   cfg.Logger,
	}, nil
}

// Metrics exposes the metrics service for the status server.
func (b *Bot) Metrics() *metrics.MetricsService {
	if ms, ok := b.metrics.(*metrics.MetricsService); ok {
		return ms
	}
	return nil
}

// Run opens the gateway session, registers commands, and blocks until the
// process receives SIGINT or SIGTERM.
func (b *Bot) Run() error {
	b.session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		b.logger.Info("Logged in as %s#%s", r.User.Username, r.User.Discriminator)
	})
	b.session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		b.routeInteraction(s, i)
	})
	b.session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		b.routeMessage(s, m)
	})

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open gateway connection: %w", err)
	}

	if err := b.RegisterCommands(context.Background()); err != nil {
		_ = b.session.Close()
		return fmt.Errorf("failed to register commands: %w", err)
	}

	b.logger.Info("Bot is running, press Ctrl+C to exit")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	b.logger.Info("Shutting down")
	return nil
}

// Close releases the gateway connection and background workers.
func (b *Bot) Close() error {
	b.limiter.Stop()
	if reg, ok := b.registry.(*registry.Registry); ok {
		reg.Stop()
	}
	if b.session != nil {
		return b.session.Close()
	}
	return nil
}

func createPooledHTTPClient(settings config.HTTPClientSettings) *http.Client {
	transport := &http.Transport{
		MaxIdleConns:        settings.MaxIdleConns,
		MaxIdleConnsPerHost: settings.MaxIdleConnsPerHost,
		MaxConnsPerHost:     settings.MaxConnsPerHost,
		IdleConnTimeout:     settings.IdleConnTimeout,
		TLSHandshakeTimeout: settings.TLSHandshakeTimeout,
	}
	return &http.Client{
		Transport: transport,
		Timeout:   settings.RequestTimeout,
	}
}
