package slash

import "github.com/bwmarrin/discordgo"

// PermissionOverride allows or denies one subject.
type PermissionOverride struct {
	ID         string                                     `json:"id"`
	Type       discordgo.ApplicationCommandPermissionType `json:"type"`
	Permission bool                                       `json:"permission"`
}

// Option is one published parameter or subcommand.
type Option struct {
	Name        string                                 `json:"name"`
	Description string                                 `json:"description"`
	Type        discordgo.ApplicationCommandOptionType `json:"type"`
	Required    bool                                   `json:"required,omitempty"`
	Options     []*Option                              `json:"options,omitempty"`
}

// Descriptor is one published top-level command. Options hold either the
// leaf's parameters or one entry per visible child, never both.
type Descriptor struct {
	Name              string                           `json:"name"`
	Description       string                           `json:"description"`
	Options           []*Option                        `json:"options"`
	Type              discordgo.ApplicationCommandType `json:"type"`
	DefaultPermission bool                             `json:"default_permission"`
	Permissions       []PermissionOverride             `json:"permissions"`
	NSFW              *bool                            `json:"nsfw,omitempty"`

	group bool
}

// IsGroup reports whether the descriptor is group-shaped.
func (d *Descriptor) IsGroup() bool { return d.group }

// asOption embeds d as a child of a group.
func (d *Descriptor) asOption() *Option {
	t := discordgo.ApplicationCommandOptionSubCommand
	if d.group {
		t = discordgo.ApplicationCommandOptionSubCommandGroup
	}
	return &Option{
		Name:        d.Name,
		Description: d.Description,
		Type:        t,
		Options:     d.Options,
	}
}
