package commands

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/slashbridge/internal/dispatch"
	"github.com/keshon/slashbridge/pkg/cmd"
)

var roasts = []string{
	"%s, you're the reason shampoo bottles have instructions.",
	"%s, I'd agree with you but then we'd both be wrong.",
	"%s brings everyone so much joy. When they leave the room.",
	"%s, your secrets are safe with me. I never listen anyway.",
	"%s has a face for radio and a voice for silent films.",
}

func newRoast() cmd.Command {
	return cmd.New("roast", func(ctx context.Context, inv *cmd.Invocation) error {
		c, err := contextOf(inv)
		if err != nil {
			return err
		}
		target, _ := inv.Value(0).(string)
		if target == "" {
			if u, ok := inv.Value(1).(*discordgo.User); ok && u != nil {
				target = u.ID
			}
		}
		_, err = c.Send(ctx, fmt.Sprintf(roasts[rand.Intn(len(roasts))], "<@"+target+">"))
		return err
	},
		cmd.WithDescription("Roast someone. Age-restricted channels only"),
		cmd.WithHelp(`Roast someone. Age-restricted channels only.

Args:
    target: who to roast, yourself by default`),
		cmd.WithParams(cmd.OptArg("target", cmd.User, ""), cmd.Author("author")),
		cmd.WithChecks(dispatch.NSFWOnly()),
	)
}
