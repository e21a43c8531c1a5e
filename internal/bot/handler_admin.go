package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
)

func (b *Bot) handleRefreshModels(s session, i *discordgo.InteractionCreate) {
	reqID := uuid.NewString()[:8]
	start := time.Now()
	success := false
	defer func() { b.metrics.RecordCommand(cmdRefreshModels, success, time.Since(start)) }()

	if !isAdmin(i) {
		_ = respondEphemeral(s, i.Interaction, "Only administrators can refresh the model list.")
		return
	}

	if err := acknowledge(s, i.Interaction, true); err != nil {
		b.logger.Error("[%s] Failed to acknowledge interaction: %v", reqID, err)
		return
	}

	ctx := context.Background()
	models := b.registry.GetAvailableModels(ctx, true)
	b.logger.Info("[%s] Model list refreshed by %s: %d models", reqID, interactionUser(i).ID, len(models))

	// Re-publish the schema so the model choice lists pick up the new set.
	if err := b.registerCommands(ctx, s); err != nil {
		b.logger.Error("[%s] Command re-registration failed: %v", reqID, err)
		_ = editResponse(s, i.Interaction, fmt.Sprintf(
			"Refreshed %d models, but updating the command choices failed. The new list applies after a restart.", len(models)))
		return
	}

	_ = editResponse(s, i.Interaction, fmt.Sprintf("Model list refreshed: %d models available.", len(models)))
	success = true
}

func (b *Bot) handleToggleRestriction(s session, i *discordgo.InteractionCreate) {
	start := time.Now()
	success := false
	defer func() { b.metrics.RecordCommand(cmdToggleRestriction, success, time.Since(start)) }()

	if !isAdmin(i) {
		_ = respondEphemeral(s, i.Interaction, "Only administrators can toggle the model restriction.")
		return
	}

	restricted := b.toggleRestricted()
	b.logger.Info("Model restriction set to %v by %s", restricted, interactionUser(i).ID)

	state := "disabled: everyone can use any model"
	if restricted {
		state = fmt.Sprintf("enabled: non-admins are limited to %s", b.cfg.FreeModel)
	}
	_ = respondEphemeral(s, i.Interaction, "Model restriction "+state+".")
	success = true
}

// toggleRestricted flips the restriction flag and returns the new state.
// Gateway handlers run on separate goroutines, so the flip is a CAS to
// guarantee each toggle is a distinct transition.
func (b *Bot) toggleRestricted() bool {
	for {
		prev := b.restricted.Load()
		if b.restricted.CompareAndSwap(prev, !prev) {
			return !prev
		}
	}
}
