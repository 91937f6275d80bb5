package discord

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/slashbridge/internal/dispatch"
)

// OwnerResolver returns the configured owners, or the application's owner
// (or team members) looked up once and cached.
type OwnerResolver struct {
	configured []string
	fetch      func(ctx context.Context) (*discordgo.Application, error)

	mu     sync.Mutex
	cached []string
}

func NewOwnerResolver(s *discordgo.Session, configured []string) *OwnerResolver {
	return newOwnerResolver(func(ctx context.Context) (*discordgo.Application, error) {
		return s.Application("@me")
	}, configured)
}

func newOwnerResolver(fetch func(ctx context.Context) (*discordgo.Application, error), configured []string) *OwnerResolver {
	ids := slices.Clone(configured)
	slices.Sort(ids)
	return &OwnerResolver{configured: slices.Compact(ids), fetch: fetch}
}

func (r *OwnerResolver) OwnerIDs(ctx context.Context) ([]string, error) {
	if len(r.configured) > 0 {
		return slices.Clone(r.configured), nil
	}

	r.mu.Lock()
	cached := r.cached
	r.mu.Unlock()
	if cached != nil {
		return slices.Clone(cached), nil
	}

	app, err := r.fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch application: %w", err)
	}
	ids := applicationOwners(app)
	if len(ids) == 0 {
		return nil, dispatch.ErrNoOwners
	}

	r.mu.Lock()
	r.cached = ids
	r.mu.Unlock()
	return slices.Clone(ids), nil
}

// applicationOwners lists team members when the application belongs to a
// team, else its owner.
func applicationOwners(app *discordgo.Application) []string {
	if app == nil {
		return nil
	}
	var ids []string
	if app.Team != nil {
		for _, m := range app.Team.Members {
			if m != nil && m.User != nil {
				ids = append(ids, m.User.ID)
			}
		}
	} else if app.Owner != nil {
		ids = append(ids, app.Owner.ID)
	}
	slices.Sort(ids)
	return slices.Compact(ids)
}
