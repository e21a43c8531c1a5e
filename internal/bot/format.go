package bot

import (
	"fmt"
	"math"
	"time"

	"discordllm/internal/core"
	"discordllm/internal/util"
)

func formatAnswer(asker, model, question, answer string) string {
	header := fmt.Sprintf("**%s asked** (Model: %s)\n> %s\n\n", asker, model, util.CollapseWhitespace(question))
	return util.TruncateString(header+answer, core.MaxDiscordMessageLength)
}

func formatSummary(count int, model, answer string) string {
	header := fmt.Sprintf("**Summary of the last %d messages** (Model: %s)\n\n", count, model)
	return util.TruncateString(header+answer, core.MaxDiscordMessageLength)
}

func formatMentionAnswer(answer string) string {
	return util.TruncateString(answer, core.MaxDiscordMessageLength)
}

func formatWaitMessage(wait time.Duration) string {
	seconds := int(math.Ceil(wait.Seconds()))
	if seconds < 1 {
		seconds = 1
	}
	return fmt.Sprintf("You're going too fast. Please wait %d more seconds.", seconds)
}
