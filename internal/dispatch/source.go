// Package dispatch runs text commands. It is written once against Source so
// that organic chat messages and interaction-originated invocations go through
// the same prefix resolution, check pipeline and argument conversion.
package dispatch

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// Source is where an invocation came from.
type Source interface {
	Author() *discordgo.User
	Member() *discordgo.Member
	ChannelID() string
	GuildID() string
	Content() string

	// Channel resolves the channel the invocation happened in.
	Channel(ctx context.Context) (*discordgo.Channel, error)

	// Reference is the message replies should point at, or nil when the
	// source cannot be replied to directly.
	Reference() *discordgo.MessageReference

	Send(ctx context.Context, msg *discordgo.MessageSend) (*discordgo.Message, error)
	Delete(ctx context.Context, msg *discordgo.Message) error
}
