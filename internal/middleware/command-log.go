package middleware

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/keshon/slashbridge/internal/dispatch"
	"github.com/keshon/slashbridge/internal/slash"
	"github.com/keshon/slashbridge/internal/storage"
	"github.com/keshon/slashbridge/pkg/cmd"
)

// HistoryStore persists executed commands.
type HistoryStore interface {
	AppendCommandToHistory(guildID string, command storage.CommandHistoryRecord) error
}

// WithCommandLogger wraps a command to record its execution in store.
// Direct messages are not recorded.
func WithCommandLogger(store HistoryStore) cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			err := c.Run(ctx, inv)

			dc, ok := dispatch.FromInvocation(inv)
			if !ok || store == nil || dc.Source.GuildID() == "" {
				return err
			}

			rec := storage.CommandHistoryRecord{
				ChannelID: dc.Source.ChannelID(),
				GuildID:   dc.Source.GuildID(),
				Command:   dc.QualifiedName(),
				Param:     strings.Join(dc.Args, " "),
				Source:    sourceKind(dc.Source),
				Datetime:  time.Now(),
			}
			if u := dc.Source.Author(); u != nil {
				rec.UserID, rec.Username = u.ID, u.Username
			}
			if e := store.AppendCommandToHistory(rec.GuildID, rec); e != nil {
				log.Printf("[WARN] Failed to log command %s: %v", rec.Command, e)
			}
			return err
		})
	}
}

func sourceKind(src dispatch.Source) string {
	if _, ok := src.(*slash.Invocation); ok {
		return "slash"
	}
	return "message"
}
