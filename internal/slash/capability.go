package slash

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/slashbridge/internal/dispatch"
	"github.com/keshon/slashbridge/pkg/cmd"
)

// Capabilities is what a command's tagged checks translate to.
type Capabilities struct {
	NSFW      bool
	OwnerOnly bool
	Overrides []PermissionOverride
}

// Restricted reports whether any recognized tag was found.
func (c Capabilities) Restricted() bool { return c.NSFW || c.OwnerOnly }

// Scan reads the capability tags of c's checks. Effects are cumulative and
// unknown tags are ignored. Owner restriction resolves owners once and emits
// one allow override per owner.
func Scan(ctx context.Context, c cmd.Command, owners dispatch.OwnerResolver) (Capabilities, error) {
	var out Capabilities
	for _, check := range cmd.ChecksOf(c) {
		caps := check.Capabilities()
		if caps.Has(cmd.CapAdultContent) {
			out.NSFW = true
		}
		if caps.Has(cmd.CapOwner) {
			out.OwnerOnly = true
		}
	}
	if !out.OwnerOnly {
		return out, nil
	}

	if owners == nil {
		return out, errors.New("owner-only command but no owner resolver")
	}
	ids, err := owners.OwnerIDs(ctx)
	if err != nil {
		return out, fmt.Errorf("resolve owners: %w", err)
	}
	ids = slices.Clone(ids)
	slices.Sort(ids)
	for _, id := range slices.Compact(ids) {
		out.Overrides = append(out.Overrides, PermissionOverride{
			ID:         id,
			Type:       discordgo.ApplicationCommandPermissionTypeUser,
			Permission: true,
		})
	}
	return out, nil
}
