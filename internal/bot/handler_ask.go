package bot

import (
	"context"
	"time"

	"discordllm/internal/core"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
)

func (b *Bot) handleAsk(s session, i *discordgo.InteractionCreate) {
	reqID := uuid.NewString()[:8]
	start := time.Now()
	success := false
	defer func() { b.metrics.RecordCommand(cmdAsk, success, time.Since(start)) }()

	if i.GuildID == "" {
		_ = respondEphemeral(s, i.Interaction, "This command only works in a server channel.")
		return
	}

	// A stale global schema can deliver the command without its options.
	opts := optionMap(i.ApplicationCommandData())
	modelOpt, questionOpt := opts["model"], opts["question"]
	if modelOpt == nil || questionOpt == nil {
		_ = respondEphemeral(s, i.Interaction, "Both a model and a question are required.")
		return
	}
	model := modelOpt.StringValue()
	question := questionOpt.StringValue()

	user := interactionUser(i)
	if ok, wait := b.limiter.Allow(user.ID, time.Now()); !ok {
		_ = respondEphemeral(s, i.Interaction, formatWaitMessage(wait))
		return
	}

	if b.restricted.Load() && !isAdmin(i) && model != b.cfg.FreeModel {
		b.logger.Info("[%s] User %s denied model %s (restriction active)", reqID, user.ID, model)
		_ = respondEphemeral(s, i.Interaction,
			"Model access is currently restricted. Non-admins may only use "+b.cfg.FreeModel+".")
		return
	}

	if err := acknowledge(s, i.Interaction, false); err != nil {
		b.logger.Error("[%s] Failed to acknowledge interaction: %v", reqID, err)
		return
	}

	b.logger.Info("[%s] Ask from %s: model=%s", reqID, user.ID, model)

	answer, err := b.askLLM(context.Background(), model, question)
	if err != nil {
		b.logger.Error("[%s] LLM request failed: %v", reqID, err)
		_ = editResponse(s, i.Interaction, genericFailure)
		return
	}

	content := formatAnswer(user.Username, model, question, answer)
	outcome := b.deliverInteractionAnswer(reqID, s, i.Interaction, user.ID, content)
	if outcome == DeliveryFailed {
		b.logger.Error("[%s] All delivery strategies exhausted", reqID)
		return
	}

	success = true
}

// askLLM sends the fixed system instruction plus the user's question and
// records the call in the metrics.
func (b *Bot) askLLM(ctx context.Context, model, question string) (string, error) {
	start := time.Now()
	answer, err := b.llm.CreateChatCompletion(ctx, model, []core.ChatMessage{
		{Role: core.RoleSystem, Content: b.cfg.SystemPrompt},
		{Role: core.RoleUser, Content: question},
	})
	b.metrics.RecordLLMRequest(err == nil, time.Since(start))
	return answer, err
}
