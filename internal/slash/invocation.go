package slash

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// Invocation is the synthetic source handed to the dispatcher for one
// interaction. Output goes to the interaction's follow-up channel.
type Invocation struct {
	interaction *discordgo.Interaction
	channel     *discordgo.Channel
	platform    Platform
	content     string
}

// NewInvocation wraps an already deferred interaction.
func NewInvocation(i *discordgo.Interaction, ch *discordgo.Channel, platform Platform, content string) *Invocation {
	return &Invocation{interaction: i, channel: ch, platform: platform, content: content}
}

// Interaction is the interaction this invocation answers.
func (v *Invocation) Interaction() *discordgo.Interaction { return v.interaction }

func (v *Invocation) Author() *discordgo.User {
	if m := v.interaction.Member; m != nil && m.User != nil {
		return m.User
	}
	return v.interaction.User
}

func (v *Invocation) Member() *discordgo.Member { return v.interaction.Member }
func (v *Invocation) ChannelID() string         { return v.interaction.ChannelID }
func (v *Invocation) GuildID() string           { return v.interaction.GuildID }
func (v *Invocation) Content() string           { return v.content }

func (v *Invocation) Channel(context.Context) (*discordgo.Channel, error) {
	return v.channel, nil
}

// Reference is always nil; follow-ups cannot reply to a message.
func (v *Invocation) Reference() *discordgo.MessageReference { return nil }

func (v *Invocation) Send(ctx context.Context, msg *discordgo.MessageSend) (*discordgo.Message, error) {
	return v.platform.Followup(ctx, v.interaction, &discordgo.WebhookParams{
		Content:         msg.Content,
		TTS:             msg.TTS,
		Files:           msg.Files,
		Components:      msg.Components,
		Embeds:          msg.Embeds,
		AllowedMentions: msg.AllowedMentions,
		Flags:           msg.Flags,
	})
}

func (v *Invocation) Delete(ctx context.Context, msg *discordgo.Message) error {
	return v.platform.DeleteFollowup(ctx, v.interaction, msg.ID)
}
