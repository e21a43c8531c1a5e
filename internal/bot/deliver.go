package bot

import (
	"github.com/bwmarrin/discordgo"
)

// DeliveryOutcome is the typed result of an answer delivery attempt.
type DeliveryOutcome int

const (
	DeliveredChannel DeliveryOutcome = iota
	DeliveredDM
	DeliveryFailed
)

func (o DeliveryOutcome) String() string {
	switch o {
	case DeliveredChannel:
		return "channel"
	case DeliveredDM:
		return "dm"
	default:
		return "failed"
	}
}

// deliveryStrategy is one way of getting content to the user. Strategies
// are tried in order until one succeeds or all are exhausted.
type deliveryStrategy struct {
	name    string
	outcome DeliveryOutcome
	send    func() error
}

func (b *Bot) runDelivery(reqID string, strategies []deliveryStrategy) DeliveryOutcome {
	for _, strategy := range strategies {
		if err := strategy.send(); err != nil {
			b.logger.Warn("[%s] Delivery via %s failed: %v", reqID, strategy.name, err)
			continue
		}
		b.logger.Debug("[%s] Delivered via %s", reqID, strategy.name)
		return strategy.outcome
	}
	return DeliveryFailed
}

func (b *Bot) dmStrategy(s session, userID, content string) deliveryStrategy {
	return deliveryStrategy{
		name:    "dm",
		outcome: DeliveredDM,
		send: func() error {
			dm, err := s.UserChannelCreate(userID)
			if err != nil {
				return err
			}
			_, err = s.ChannelMessageSend(dm.ID, content)
			return err
		},
	}
}

// deliverInteractionAnswer completes a deferred interaction: edit the
// acknowledgment, falling back to a DM only when the edit failed for lack
// of permissions, with a follow-up message as the last resort.
func (b *Bot) deliverInteractionAnswer(reqID string, s session, i *discordgo.Interaction, userID, content string) DeliveryOutcome {
	err := editResponse(s, i, content)
	if err == nil {
		b.logger.Debug("[%s] Delivered via interaction edit", reqID)
		return DeliveredChannel
	}
	b.logger.Warn("[%s] Interaction edit failed: %v", reqID, err)

	var strategies []deliveryStrategy
	if isMissingPermissions(err) {
		strategies = append(strategies, b.dmStrategy(s, userID, content))
	}
	strategies = append(strategies, deliveryStrategy{
		name:    "follow-up",
		outcome: DeliveredChannel,
		send: func() error {
			_, err := s.FollowupMessageCreate(i, false, &discordgo.WebhookParams{Content: content})
			return err
		},
	})
	return b.runDelivery(reqID, strategies)
}

// deliverChannelAnswer posts to the channel, falling back to a DM only
// when the channel send fails for lack of permissions.
func (b *Bot) deliverChannelAnswer(reqID string, s session, channelID, userID, content string) DeliveryOutcome {
	_, err := s.ChannelMessageSend(channelID, content)
	if err == nil {
		return DeliveredChannel
	}
	b.logger.Warn("[%s] Channel send failed: %v", reqID, err)

	if !isMissingPermissions(err) {
		return DeliveryFailed
	}

	return b.runDelivery(reqID, []deliveryStrategy{
		b.dmStrategy(s, userID, content),
	})
}

// genericFailure is shown to users when an LLM call fails; the real error
// stays in the logs.
const genericFailure = "Sorry, something went wrong while generating the answer. Please try again later."
