package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/slashbridge/internal/slash"
	"github.com/keshon/slashbridge/pkg/cmd"
)

func newHelp(reg *cmd.Registry) cmd.Command {
	return cmd.New("help", func(ctx context.Context, inv *cmd.Invocation) error {
		c, err := contextOf(inv)
		if err != nil {
			return err
		}
		query, _ := inv.Value(0).(string)

		var embed *discordgo.MessageEmbed
		if query == "" {
			embed = helpIndex(reg, c.Prefix)
		} else {
			embed = helpFor(reg, query)
		}
		_, err = c.SendEmbed(ctx, embed)
		return err
	},
		cmd.WithDescription("Get a list of available commands"),
		cmd.WithHelp(`Get a list of available commands, or details about one.

Args:
    command: command to describe, e.g. "tag set"`),
		cmd.WithParams(cmd.OptArg("command", cmd.Text, "")),
	)
}

func helpIndex(reg *cmd.Registry, prefix string) *discordgo.MessageEmbed {
	var b strings.Builder
	for _, c := range reg.GetAll() {
		if cmd.IsHidden(c) {
			continue
		}
		fmt.Fprintf(&b, "`%s` %s\n", c.Name(), slash.Describe(c))
	}
	return &discordgo.MessageEmbed{
		Title:       "📖 Available Commands",
		Description: b.String(),
		Footer:      &discordgo.MessageEmbedFooter{Text: "Also available as /slash commands. " + strings.TrimSpace(prefix) + "help <command> for details."},
		Color:       EmbedColor,
	}
}

func helpFor(reg *cmd.Registry, query string) *discordgo.MessageEmbed {
	path := strings.Fields(strings.ToLower(query))
	current := reg.Get(path[0])
	for _, name := range path[1:] {
		if current == nil {
			break
		}
		children, _ := cmd.SubcommandsOf(current)
		current = childNamed(children, name)
	}
	if current == nil || cmd.IsHidden(current) {
		return &discordgo.MessageEmbed{Description: fmt.Sprintf("No command called `%s`.", query), Color: EmbedColor}
	}

	var b strings.Builder
	text := cmd.HelpOf(current)
	if text == "" {
		text = slash.Describe(current)
	}
	b.WriteString(text)

	if params := cmd.Exposed(cmd.ParamsOf(current)); len(params) > 0 {
		b.WriteString("\n\n**Usage:** `" + strings.Join(path, " "))
		for _, p := range params {
			if p.HasDefault() {
				fmt.Fprintf(&b, " [%s]", p.Name)
			} else {
				fmt.Fprintf(&b, " <%s>", p.Name)
			}
		}
		b.WriteString("`")
	}
	if children, ok := cmd.SubcommandsOf(current); ok {
		b.WriteString("\n\n**Subcommands:**\n")
		for _, child := range children {
			if !cmd.IsHidden(child) {
				fmt.Fprintf(&b, "`%s` %s\n", child.Name(), slash.Describe(child))
			}
		}
	}
	return &discordgo.MessageEmbed{Title: strings.Join(path, " "), Description: b.String(), Color: EmbedColor}
}

func childNamed(children []cmd.Command, name string) cmd.Command {
	for _, c := range children {
		if c.Name() == name {
			return c
		}
	}
	return nil
}
