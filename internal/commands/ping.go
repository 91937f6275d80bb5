package commands

import (
	"context"
	"fmt"

	"github.com/keshon/slashbridge/pkg/cmd"
)

func newPing(deps Deps) cmd.Command {
	return cmd.New("ping", func(ctx context.Context, inv *cmd.Invocation) error {
		c, err := contextOf(inv)
		if err != nil {
			return err
		}
		msg := "🏓 Pong!"
		if deps.Latency != nil {
			msg = fmt.Sprintf("🏓 Pong! Response time: `%dms`", deps.Latency().Milliseconds())
		}
		_, err = c.Reply(ctx, msg)
		return err
	}, cmd.WithDescription("Pong!"))
}
