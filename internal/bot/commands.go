package bot

import (
	"context"

	"discordllm/internal/core"

	"github.com/bwmarrin/discordgo"
)

// Command names.
const (
	cmdAsk               = "ask"
	cmdSummarize         = "summarize"
	cmdRefreshModels     = "refresh_models"
	cmdToggleRestriction = "toggle_model_restriction"
)

func commandDefinitions(choices []core.ModelChoice) []*discordgo.ApplicationCommand {
	modelChoices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(choices))
	for _, choice := range choices {
		modelChoices = append(modelChoices, &discordgo.ApplicationCommandOptionChoice{
			Name:  choice.Name,
			Value: choice.Value,
		})
	}

	adminOnly := int64(discordgo.PermissionAdministrator)
	limitMin := float64(core.SummarizeLimitMin)

	return []*discordgo.ApplicationCommand{
		{
			Name:        cmdAsk,
			Description: "Ask a question to an LLM model",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "model",
					Description: "The model to ask",
					Required:    true,
					Choices:     modelChoices,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "question",
					Description: "Your question",
					Required:    true,
				},
			},
		},
		{
			Name:        cmdSummarize,
			Description: "Summarize recent channel history",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "limit",
					Description: "How many messages to read (10-1000, default 200)",
					MinValue:    &limitMin,
					MaxValue:    float64(core.SummarizeLimitMax),
				},
				{
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Name:        "include_bots",
					Description: "Include bot messages in the summary",
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "model",
					Description: "The model to summarize with",
					Choices:     modelChoices,
				},
			},
		},
		{
			Name:                     cmdRefreshModels,
			Description:              "Refresh the cached model list",
			DefaultMemberPermissions: &adminOnly,
		},
		{
			Name:                     cmdToggleRestriction,
			Description:              "Toggle the free-model restriction for non-admins",
			DefaultMemberPermissions: &adminOnly,
		},
	}
}

// RegisterCommands publishes the command schema at guild scope, falling
// back to global registration when the bot lacks access to the configured
// guild. Global commands propagate slower but still work.
func (b *Bot) RegisterCommands(ctx context.Context) error {
	return b.registerCommands(ctx, b.session)
}

func (b *Bot) registerCommands(ctx context.Context, s session) error {
	models := b.registry.GetAvailableModels(ctx, false)
	commands := commandDefinitions(b.registry.ModelChoices(models))

	_, err := s.ApplicationCommandBulkOverwrite(b.cfg.ApplicationID, b.cfg.GuildID, commands)
	if err == nil {
		b.logger.Info("Registered %d commands in guild %s", len(commands), b.cfg.GuildID)
		return nil
	}

	if !isMissingAccess(err) {
		return err
	}

	b.logger.Warn("No access to guild %s, registering commands globally (propagation is slower)", b.cfg.GuildID)
	if _, err := s.ApplicationCommandBulkOverwrite(b.cfg.ApplicationID, "", commands); err != nil {
		return err
	}
	b.logger.Info("Registered %d commands globally", len(commands))
	return nil
}
