package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// Platform is the session-backed side of the slash bridge.
type Platform struct {
	Session *discordgo.Session
}

func (p Platform) Channel(ctx context.Context, channelID string) (*discordgo.Channel, error) {
	return channel(ctx, p.Session, channelID)
}

func (p Platform) CanRead(ctx context.Context, ch *discordgo.Channel) (bool, error) {
	return CanView(ctx, p.Session, ch.ID)
}

func (p Platform) Defer(ctx context.Context, i *discordgo.Interaction) error {
	return RespondDeferred(ctx, p.Session, i)
}

func (p Platform) Ephemeral(ctx context.Context, i *discordgo.Interaction, content string) error {
	return RespondEphemeral(ctx, p.Session, i, content)
}

func (p Platform) Followup(ctx context.Context, i *discordgo.Interaction, params *discordgo.WebhookParams) (*discordgo.Message, error) {
	return Followup(ctx, p.Session, i, params)
}

func (p Platform) DeleteFollowup(ctx context.Context, i *discordgo.Interaction, messageID string) error {
	return FollowupDelete(ctx, p.Session, i, messageID)
}
