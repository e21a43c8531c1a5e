package bot

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"discordllm/internal/core"
	"discordllm/internal/util"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
)

// maxTranscriptChars bounds the transcript joined into the summarization
// prompt so very long channels do not blow up the request.
const maxTranscriptChars = 8000

const summarizeInstruction = "Summarize the following chat transcript. " +
	"Highlight the main topics and any decisions or questions left open. Be concise."

func (b *Bot) handleSummarize(s session, i *discordgo.InteractionCreate) {
	reqID := uuid.NewString()[:8]
	start := time.Now()
	success := false
	defer func() { b.metrics.RecordCommand(cmdSummarize, success, time.Since(start)) }()

	if i.GuildID == "" {
		_ = respondEphemeral(s, i.Interaction, "This command only works in a server channel.")
		return
	}

	if !isAdmin(i) {
		_ = respondEphemeral(s, i.Interaction, "Only administrators can summarize channel history.")
		return
	}

	user := interactionUser(i)
	if ok, wait := b.limiter.Allow(user.ID, time.Now()); !ok {
		_ = respondEphemeral(s, i.Interaction, formatWaitMessage(wait))
		return
	}

	opts := optionMap(i.ApplicationCommandData())
	limit := core.SummarizeLimitDefault
	if opt, found := opts["limit"]; found {
		limit = clampLimit(int(opt.IntValue()))
	}
	includeBots := false
	if opt, found := opts["include_bots"]; found {
		includeBots = opt.BoolValue()
	}
	model := b.cfg.DefaultModel
	if opt, found := opts["model"]; found {
		model = opt.StringValue()
	}

	if err := acknowledge(s, i.Interaction, false); err != nil {
		b.logger.Error("[%s] Failed to acknowledge interaction: %v", reqID, err)
		return
	}

	b.logger.Info("[%s] Summarize from %s: limit=%d include_bots=%v model=%s", reqID, user.ID, limit, includeBots, model)

	messages, err := fetchChannelHistory(s, i.ChannelID, limit)
	if err != nil {
		b.logger.Error("[%s] History fetch failed: %v", reqID, err)
		_ = editResponse(s, i.Interaction, genericFailure)
		return
	}

	transcript := buildTranscript(messages, includeBots)
	if len(transcript) == 0 {
		_ = editResponse(s, i.Interaction, "There is nothing to summarize in this channel.")
		success = true
		return
	}

	prompt := summarizePrompt(transcript)
	answer, err := b.askLLM(context.Background(), model, prompt)
	if err != nil {
		b.logger.Error("[%s] LLM request failed: %v", reqID, err)
		_ = editResponse(s, i.Interaction, genericFailure)
		return
	}

	content := formatSummary(len(transcript), model, answer)
	outcome := b.deliverInteractionAnswer(reqID, s, i.Interaction, user.ID, content)
	if outcome == DeliveryFailed {
		b.logger.Error("[%s] All delivery strategies exhausted", reqID)
		return
	}

	success = true
}

func clampLimit(limit int) int {
	if limit < core.SummarizeLimitMin {
		return core.SummarizeLimitMin
	}
	if limit > core.SummarizeLimitMax {
		return core.SummarizeLimitMax
	}
	return limit
}

// fetchChannelHistory pages backward from the most recent message in
// batches up to the platform's per-call maximum, stopping once limit
// messages are collected or the channel is exhausted.
func fetchChannelHistory(s session, channelID string, limit int) ([]*discordgo.Message, error) {
	var collected []*discordgo.Message
	beforeID := ""

	for len(collected) < limit {
		batchSize := core.HistoryPageSize
		if remaining := limit - len(collected); remaining < batchSize {
			batchSize = remaining
		}

		batch, err := s.ChannelMessages(channelID, batchSize, beforeID, "", "")
		if err != nil {
			return nil, err
		}
		if len(batch) == 0 {
			break
		}

		collected = append(collected, batch...)
		beforeID = batch[len(batch)-1].ID
	}

	return collected, nil
}

// buildTranscript filters and renders messages as "author: content" lines,
// sorted ascending by creation time (the fetch order is newest first).
func buildTranscript(messages []*discordgo.Message, includeBots bool) []string {
	filtered := make([]*discordgo.Message, 0, len(messages))
	for _, msg := range messages {
		if msg.Author == nil {
			continue
		}
		if msg.Author.Bot && !includeBots {
			continue
		}
		if strings.TrimSpace(msg.Content) == "" {
			continue
		}
		filtered = append(filtered, msg)
	}

	sort.SliceStable(filtered, func(a, z int) bool {
		return filtered[a].Timestamp.Before(filtered[z].Timestamp)
	})

	lines := make([]string, 0, len(filtered))
	for _, msg := range filtered {
		lines = append(lines, fmt.Sprintf("%s: %s", msg.Author.Username, util.CollapseWhitespace(msg.Content)))
	}
	return lines
}

func summarizePrompt(transcript []string) string {
	joined := strings.Join(transcript, "\n")
	joined = util.TruncateString(joined, maxTranscriptChars)
	return summarizeInstruction + "\n\n" + joined
}
