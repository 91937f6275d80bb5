package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// Message is an organic chat message as a dispatch source.
type Message struct {
	session *discordgo.Session
	msg     *discordgo.Message
}

func NewMessage(s *discordgo.Session, m *discordgo.Message) *Message {
	return &Message{session: s, msg: m}
}

func (m *Message) Author() *discordgo.User   { return m.msg.Author }
func (m *Message) Member() *discordgo.Member { return m.msg.Member }
func (m *Message) ChannelID() string         { return m.msg.ChannelID }
func (m *Message) GuildID() string           { return m.msg.GuildID }
func (m *Message) Content() string           { return m.msg.Content }

func (m *Message) Channel(ctx context.Context) (*discordgo.Channel, error) {
	return channel(ctx, m.session, m.msg.ChannelID)
}

func (m *Message) Reference() *discordgo.MessageReference { return m.msg.Reference() }

func (m *Message) Send(ctx context.Context, msg *discordgo.MessageSend) (*discordgo.Message, error) {
	return m.session.ChannelMessageSendComplex(m.msg.ChannelID, msg, discordgo.WithContext(ctx))
}

func (m *Message) Delete(ctx context.Context, msg *discordgo.Message) error {
	return m.session.ChannelMessageDelete(msg.ChannelID, msg.ID, discordgo.WithContext(ctx))
}
