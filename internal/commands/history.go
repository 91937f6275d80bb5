package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/slashbridge/internal/dispatch"
	"github.com/keshon/slashbridge/pkg/cmd"
	"github.com/keshon/slashbridge/pkg/util"
)

const historyShown = 10

func newHistory(deps Deps) cmd.Command {
	return cmd.New("history", func(ctx context.Context, inv *cmd.Invocation) error {
		c, err := contextOf(inv)
		if err != nil {
			return err
		}
		records, err := deps.History.FetchCommandHistory(c.Source.GuildID())
		if err != nil {
			return fmt.Errorf("failed to fetch command history: %w", err)
		}

		if len(records) > historyShown {
			records = records[len(records)-historyShown:]
		}
		var b strings.Builder
		for i := len(records) - 1; i >= 0; i-- {
			r := records[i]
			line := fmt.Sprintf("`%s` **%s** ran `%s`", util.FormatDateTpl(r.Datetime, "YYYY-MM-DD hh:mm"), r.Username, r.Command)
			if r.Param != "" {
				line += " " + r.Param
			}
			if r.Source != "" {
				line += " _(" + r.Source + ")_"
			}
			b.WriteString(line + "\n")
		}
		desc := b.String()
		if desc == "" {
			desc = "Nothing yet."
		}
		_, err = c.SendEmbed(ctx, &discordgo.MessageEmbed{Title: "Recent commands", Description: desc, Color: EmbedColor})
		return err
	},
		cmd.WithDescription("Show recently used commands"),
		cmd.WithChecks(dispatch.GuildOnly()),
	)
}
