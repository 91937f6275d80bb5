package dispatch

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/slashbridge/pkg/cmd"
)

var (
	ErrNotOwner    = errors.New("not a bot owner")
	ErrNSFWChannel = errors.New("channel is not age-restricted")
	ErrGuildOnly   = errors.New("not available in direct messages")
	ErrNoOwners    = errors.New("no bot owners configured")
)

// OwnerResolver returns the identities allowed through owner-only checks.
type OwnerResolver interface {
	OwnerIDs(ctx context.Context) ([]string, error)
}

// StaticOwners is a fixed owner list.
type StaticOwners []string

func (o StaticOwners) OwnerIDs(context.Context) ([]string, error) {
	if len(o) == 0 {
		return nil, ErrNoOwners
	}
	out := slices.Clone([]string(o))
	slices.Sort(out)
	return slices.Compact(out), nil
}

// OwnerOnly passes only for bot owners. It carries cmd.CapOwner so schema
// publishers can restrict the command up front.
func OwnerOnly(owners OwnerResolver) cmd.Check {
	return cmd.Tag(cmd.NewCheck("is_owner", func(ctx context.Context, inv *cmd.Invocation) error {
		c, ok := FromInvocation(inv)
		if !ok || c.Source.Author() == nil {
			return ErrNotOwner
		}
		ids, err := owners.OwnerIDs(ctx)
		if err != nil {
			return fmt.Errorf("resolve owners: %w", err)
		}
		if !slices.Contains(ids, c.Source.Author().ID) {
			return ErrNotOwner
		}
		return nil
	}), cmd.CapOwner)
}

// NSFWOnly passes in age-restricted channels and in direct messages. It
// carries cmd.CapAdultContent.
func NSFWOnly() cmd.Check {
	return cmd.Tag(cmd.NewCheck("is_nsfw", func(ctx context.Context, inv *cmd.Invocation) error {
		c, ok := FromInvocation(inv)
		if !ok {
			return ErrNSFWChannel
		}
		ch, err := c.Source.Channel(ctx)
		if err != nil {
			return fmt.Errorf("resolve channel: %w", err)
		}
		switch {
		case ch.Type == discordgo.ChannelTypeDM, ch.Type == discordgo.ChannelTypeGroupDM:
			return nil
		case ch.NSFW:
			return nil
		}
		return ErrNSFWChannel
	}), cmd.CapAdultContent)
}

// GuildOnly rejects direct messages. It carries no capability.
func GuildOnly() cmd.Check {
	return cmd.NewCheck("guild_only", func(ctx context.Context, inv *cmd.Invocation) error {
		c, ok := FromInvocation(inv)
		if !ok || c.Source.GuildID() == "" {
			return ErrGuildOnly
		}
		return nil
	})
}
