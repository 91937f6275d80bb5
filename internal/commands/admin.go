package commands

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/keshon/slashbridge/internal/dispatch"
	"github.com/keshon/slashbridge/pkg/cmd"
)

func newAdmin(deps Deps) cmd.Command {
	syncCmd := cmd.New("sync", func(ctx context.Context, inv *cmd.Invocation) error {
		c, err := contextOf(inv)
		if err != nil {
			return err
		}
		if err := deps.Syncer.SyncCommands(ctx); err != nil {
			return fmt.Errorf("failed to sync commands: %w", err)
		}
		log.Printf("[INFO] Slash commands synced on request of %s", c.Source.Author().ID)
		_, err = c.Reply(ctx, "✅ Slash commands synced to "+scopes(deps.Syncer))
		return err
	}, cmd.WithDescription("Publish slash commands now"))

	clearCmd := cmd.New("clear", func(ctx context.Context, inv *cmd.Invocation) error {
		c, err := contextOf(inv)
		if err != nil {
			return err
		}
		if err := deps.Syncer.ClearCommands(ctx); err != nil {
			return fmt.Errorf("failed to clear commands: %w", err)
		}
		log.Printf("[INFO] Slash commands cleared on request of %s", c.Source.Author().ID)
		_, err = c.Reply(ctx, "🧹 Slash commands removed")
		return err
	}, cmd.WithDescription("Remove every published slash command"))

	status := cmd.New("status", func(ctx context.Context, inv *cmd.Invocation) error {
		c, err := contextOf(inv)
		if err != nil {
			return err
		}
		_, err = c.Reply(ctx, "Slash commands are published to "+scopes(deps.Syncer))
		return err
	}, cmd.WithDescription("Show where slash commands are published"))

	return cmd.NewGroup("admin", []cmd.Command{syncCmd, clearCmd, status},
		cmd.WithDescription("Bot owner tools"),
		cmd.WithChecks(dispatch.OwnerOnly(deps.Owners)),
	)
}

func scopes(s Syncer) string {
	list := s.SyncedScopes()
	if len(list) == 0 {
		return "nowhere"
	}
	return "`" + strings.Join(list, "`, `") + "`"
}
