package dispatch

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/slashbridge/pkg/cmd"
)

// Context is what commands receive in cmd.Invocation.Data.
type Context struct {
	Source  Source
	Prefix  string
	Chain   []cmd.Command
	Invoked []string
	Args    []string
}

// FromInvocation extracts the dispatch context from an invocation.
func FromInvocation(inv *cmd.Invocation) (*Context, bool) {
	if inv == nil {
		return nil, false
	}
	c, ok := inv.Data.(*Context)
	return c, ok && c != nil
}

// Valid reports whether the context resolved to a command.
func (c *Context) Valid() bool { return len(c.Chain) > 0 }

// Command returns the resolved leaf command, or nil.
func (c *Context) Command() cmd.Command {
	if len(c.Chain) == 0 {
		return nil
	}
	return c.Chain[len(c.Chain)-1]
}

// QualifiedName is the resolved command path, e.g. "tag set".
func (c *Context) QualifiedName() string {
	names := make([]string, len(c.Chain))
	for i, n := range c.Chain {
		names[i] = n.Name()
	}
	return strings.Join(names, " ")
}

type sendConfig struct {
	deleteAfter time.Duration
}

// SendOption adjusts a single Send or Reply.
type SendOption func(*sendConfig)

// DeleteAfter removes the sent message once d has elapsed.
func DeleteAfter(d time.Duration) SendOption {
	return func(c *sendConfig) { c.deleteAfter = d }
}

// Send posts content wherever the source routes output.
func (c *Context) Send(ctx context.Context, content string, opts ...SendOption) (*discordgo.Message, error) {
	return c.SendComplex(ctx, &discordgo.MessageSend{Content: content}, opts...)
}

// SendEmbed posts a single embed.
func (c *Context) SendEmbed(ctx context.Context, embed *discordgo.MessageEmbed, opts ...SendOption) (*discordgo.Message, error) {
	return c.SendComplex(ctx, &discordgo.MessageSend{Embeds: []*discordgo.MessageEmbed{embed}}, opts...)
}

// Reply is Send pointed at the invoking message when the source has one.
func (c *Context) Reply(ctx context.Context, content string, opts ...SendOption) (*discordgo.Message, error) {
	return c.SendComplex(ctx, &discordgo.MessageSend{
		Content:   content,
		Reference: c.Source.Reference(),
	}, opts...)
}

// SendComplex posts msg and returns the resulting message handle.
func (c *Context) SendComplex(ctx context.Context, msg *discordgo.MessageSend, opts ...SendOption) (*discordgo.Message, error) {
	var cfg sendConfig
	for _, o := range opts {
		o(&cfg)
	}

	sent, err := c.Source.Send(ctx, msg)
	if err != nil {
		return nil, err
	}
	if cfg.deleteAfter > 0 && sent != nil {
		src := c.Source
		time.AfterFunc(cfg.deleteAfter, func() {
			if err := src.Delete(context.Background(), sent); err != nil {
				log.Printf("[WARN] Failed to delete message %s: %v", sent.ID, err)
			}
		})
	}
	return sent, nil
}
