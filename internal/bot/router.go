package bot

import (
	"github.com/bwmarrin/discordgo"
)

func (b *Bot) routeInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	switch i.ApplicationCommandData().Name {
	case cmdAsk:
		b.handleAsk(s, i)
	case cmdSummarize:
		b.handleSummarize(s, i)
	case cmdRefreshModels:
		b.handleRefreshModels(s, i)
	case cmdToggleRestriction:
		b.handleToggleRestriction(s, i)
	}
}

func (b *Bot) routeMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	b.handleMention(s, s.State.User.ID, m)
}
