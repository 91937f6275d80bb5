package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// RespondEphemeral sends an ephemeral message response to an interaction.
func RespondEphemeral(ctx context.Context, s *discordgo.Session, i *discordgo.Interaction, content string) error {
	return s.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	}, discordgo.WithContext(ctx))
}

// RespondDeferred acknowledges an interaction publicly without an immediate reply.
func RespondDeferred(ctx context.Context, s *discordgo.Session, i *discordgo.Interaction) error {
	return s.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	}, discordgo.WithContext(ctx))
}

// Followup sends a followup message and returns it.
func Followup(ctx context.Context, s *discordgo.Session, i *discordgo.Interaction, params *discordgo.WebhookParams) (*discordgo.Message, error) {
	return s.FollowupMessageCreate(i, true, params, discordgo.WithContext(ctx))
}

// FollowupDelete removes a followup message.
func FollowupDelete(ctx context.Context, s *discordgo.Session, i *discordgo.Interaction, messageID string) error {
	return s.FollowupMessageDelete(i, messageID, discordgo.WithContext(ctx))
}
