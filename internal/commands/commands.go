// Package commands holds the bot's own commands. They are written once
// against dispatch.Context and work both as prefix commands and as slash
// commands.
package commands

import (
	"context"
	"errors"
	"time"

	"github.com/keshon/slashbridge/internal/dispatch"
	"github.com/keshon/slashbridge/internal/middleware"
	"github.com/keshon/slashbridge/internal/storage"
	"github.com/keshon/slashbridge/pkg/cmd"
)

const EmbedColor = 0xb01e66

var errNoContext = errors.New("command invoked outside the dispatcher")

// TagStore persists tags per guild.
type TagStore interface {
	SetTag(guildID string, tag storage.Tag) error
	GetTag(guildID, name string) (*storage.Tag, error)
	DeleteTag(guildID, name string) (bool, error)
	ListTags(guildID string) ([]string, error)
}

// HistoryReader lists recently executed commands per guild.
type HistoryReader interface {
	FetchCommandHistory(guildID string) ([]storage.CommandHistoryRecord, error)
}

// Syncer manages the published slash command set.
type Syncer interface {
	SyncCommands(ctx context.Context) error
	ClearCommands(ctx context.Context) error
	SyncedScopes() []string
}

// Deps are the services commands need. Nil services disable the commands
// that use them.
type Deps struct {
	Tags        TagStore
	History     HistoryReader
	Owners      dispatch.OwnerResolver
	Syncer      Syncer
	Permissions middleware.PermissionsFunc
	Latency     func() time.Duration
}

// Register adds every command to reg, each wrapped by mws.
func Register(reg *cmd.Registry, deps Deps, mws ...cmd.Middleware) {
	all := []cmd.Command{
		newPing(deps),
		newHelp(reg),
		newRoll(),
		newRoast(),
	}
	if deps.Tags != nil {
		all = append(all, newTags(deps))
	}
	if deps.History != nil {
		all = append(all, newHistory(deps))
	}
	if deps.Syncer != nil && deps.Owners != nil {
		all = append(all, newAdmin(deps))
	}
	reg.Register(cmd.ApplyAll(all, mws...)...)
}

func contextOf(inv *cmd.Invocation) (*dispatch.Context, error) {
	c, ok := dispatch.FromInvocation(inv)
	if !ok {
		return nil, errNoContext
	}
	return c, nil
}
