package bot

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
)

const mentionCommand = "mention"

func (b *Bot) handleMention(s session, selfID string, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}
	if !mentionsUser(m.Message, selfID) {
		return
	}

	reqID := uuid.NewString()[:8]
	start := time.Now()
	success := false
	defer func() { b.metrics.RecordCommand(mentionCommand, success, time.Since(start)) }()

	question := stripMention(m.Content, selfID)
	if question == "" {
		_, _ = s.ChannelMessageSend(m.ChannelID, "Please include a question after the mention.")
		return
	}

	if ok, wait := b.limiter.Allow(m.Author.ID, time.Now()); !ok {
		_, _ = s.ChannelMessageSend(m.ChannelID, formatWaitMessage(wait))
		return
	}

	b.logger.Info("[%s] Mention from %s in %s", reqID, m.Author.ID, m.ChannelID)

	placeholder, err := s.ChannelMessageSend(m.ChannelID, "Thinking...")
	if err != nil {
		b.logger.Warn("[%s] Failed to post thinking placeholder: %v", reqID, err)
	}

	answer, err := b.askLLM(context.Background(), b.cfg.DefaultModel, question)

	if placeholder != nil {
		if delErr := s.ChannelMessageDelete(m.ChannelID, placeholder.ID); delErr != nil {
			b.logger.Warn("[%s] Failed to delete placeholder: %v", reqID, delErr)
		}
	}

	if err != nil {
		b.logger.Error("[%s] LLM request failed: %v", reqID, err)
		_, _ = s.ChannelMessageSend(m.ChannelID, genericFailure)
		return
	}

	content := formatMentionAnswer(answer)
	outcome := b.deliverChannelAnswer(reqID, s, m.ChannelID, m.Author.ID, content)
	if outcome == DeliveryFailed {
		b.logger.Error("[%s] All delivery strategies exhausted", reqID)
		return
	}

	success = true
}

func mentionsUser(m *discordgo.Message, userID string) bool {
	for _, mentioned := range m.Mentions {
		if mentioned.ID == userID {
			return true
		}
	}
	return false
}

// stripMention removes the bot's mention tokens and collapses what remains.
func stripMention(content, selfID string) string {
	replacer := strings.NewReplacer(
		"<@"+selfID+">", "",
		"<@!"+selfID+">", "",
	)
	return strings.TrimSpace(replacer.Replace(content))
}
