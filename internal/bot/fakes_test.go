package bot

import (
	"context"
	"errors"
	"time"

	"discordllm/internal/config"
	"discordllm/internal/core"
	"discordllm/internal/ratelimit"

	"github.com/bwmarrin/discordgo"
)

type fakeLLM struct {
	answer string
	err    error
	calls  int
	models []string
}

func (f *fakeLLM) CreateChatCompletion(ctx context.Context, model string, messages []core.ChatMessage) (string, error) {
	f.calls++
	return f.answer, f.err
}

func (f *fakeLLM) ListModels(ctx context.Context) ([]string, error) {
	return f.models, nil
}

type fakeRegistry struct {
	models []string
}

func (f *fakeRegistry) GetAvailableModels(ctx context.Context, forceRefresh bool) []string {
	if len(f.models) == 0 {
		return core.FallbackModels
	}
	return f.models
}

func (f *fakeRegistry) ModelChoices(models []string) []core.ModelChoice {
	if len(models) > core.MaxModelChoices {
		models = models[:core.MaxModelChoices]
	}
	choices := make([]core.ModelChoice, 0, len(models))
	for _, m := range models {
		choices = append(choices, core.ModelChoice{Name: m, Value: m})
	}
	return choices
}

// fakeSession scripts the Discord API surface the handlers touch.
type fakeSession struct {
	ackCount    int
	ackErr      error
	ephemerals  []string
	edits       []string
	editErr     error
	followups   []string
	followupErr error

	sent      map[string][]string
	sendErr   map[string]error
	deleted   []string
	deleteErr error

	history []*discordgo.Message

	dmChannel *discordgo.Channel
	dmErr     error

	bulkGuilds []string
	bulkErrs   map[string]error
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		sent:      make(map[string][]string),
		sendErr:   make(map[string]error),
		dmChannel: &discordgo.Channel{ID: "dm-chan"},
		bulkErrs:  make(map[string]error),
	}
}

func (f *fakeSession) InteractionRespond(i *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error {
	if resp.Type == discordgo.InteractionResponseDeferredChannelMessageWithSource {
		f.ackCount++
		return f.ackErr
	}
	if resp.Data != nil {
		f.ephemerals = append(f.ephemerals, resp.Data.Content)
	}
	return nil
}

func (f *fakeSession) InteractionResponseEdit(i *discordgo.Interaction, edit *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	if f.editErr != nil {
		return nil, f.editErr
	}
	if edit.Content != nil {
		f.edits = append(f.edits, *edit.Content)
	}
	return &discordgo.Message{ID: "edited"}, nil
}

func (f *fakeSession) FollowupMessageCreate(i *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	if f.followupErr != nil {
		return nil, f.followupErr
	}
	f.followups = append(f.followups, data.Content)
	return &discordgo.Message{ID: "followup"}, nil
}

func (f *fakeSession) ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	if err := f.sendErr[channelID]; err != nil {
		return nil, err
	}
	f.sent[channelID] = append(f.sent[channelID], content)
	return &discordgo.Message{ID: "sent", ChannelID: channelID}, nil
}

func (f *fakeSession) ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error {
	f.deleted = append(f.deleted, messageID)
	return f.deleteErr
}

// ChannelMessages pages through f.history (newest first) like the real API.
func (f *fakeSession) ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string, options ...discordgo.RequestOption) ([]*discordgo.Message, error) {
	start := 0
	if beforeID != "" {
		for idx, msg := range f.history {
			if msg.ID == beforeID {
				start = idx + 1
				break
			}
		}
	}
	if start >= len(f.history) {
		return nil, nil
	}
	end := start + limit
	if end > len(f.history) {
		end = len(f.history)
	}
	return f.history[start:end], nil
}

func (f *fakeSession) UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error) {
	if f.dmErr != nil {
		return nil, f.dmErr
	}
	return f.dmChannel, nil
}

func (f *fakeSession) ApplicationCommandBulkOverwrite(appID string, guildID string, commands []*discordgo.ApplicationCommand, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error) {
	f.bulkGuilds = append(f.bulkGuilds, guildID)
	if err := f.bulkErrs[guildID]; err != nil {
		return nil, err
	}
	return commands, nil
}

func restError(code int) error {
	return &discordgo.RESTError{Message: &discordgo.APIErrorMessage{Code: code, Message: "scripted"}}
}

var errNetwork = errors.New("connection reset")

func newTestBot(llmClient core.ChatClient) *Bot {
	return &Bot{
		cfg: config.BotConfig{
			ApplicationID: "app-id",
			GuildID:       "guild-id",
			DefaultModel:  "gpt-3.5-turbo",
			FreeModel:     "free-model",
			SystemPrompt:  config.DefaultSystemPrompt,
			Cooldown:      20 * time.Second,
		},
		llm:      llmClient,
		registry: &fakeRegistry{},
		limiter:  ratelimit.NewLimiter(20 * time.Second),
		metrics:  &core.NopMetrics{},
		logger:   &core.NopLogger{},
	}
}

func newMember(userID string, admin bool) *discordgo.Member {
	member := &discordgo.Member{User: &discordgo.User{ID: userID, Username: "alice"}}
	if admin {
		member.Permissions = discordgo.PermissionAdministrator
	}
	return member
}

func newCommandInteraction(name string, member *discordgo.Member, opts []*discordgo.ApplicationCommandInteractionDataOption) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type:      discordgo.InteractionApplicationCommand,
		GuildID:   "guild-id",
		ChannelID: "chan-1",
		Member:    member,
		Data: discordgo.ApplicationCommandInteractionData{
			Name:    name,
			Options: opts,
		},
	}}
}

func askOptions(model, question string) []*discordgo.ApplicationCommandInteractionDataOption {
	return []*discordgo.ApplicationCommandInteractionDataOption{
		{Name: "model", Type: discordgo.ApplicationCommandOptionString, Value: model},
		{Name: "question", Type: discordgo.ApplicationCommandOptionString, Value: question},
	}
}
