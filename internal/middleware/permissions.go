package middleware

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/slashbridge/internal/dispatch"
	"github.com/keshon/slashbridge/pkg/cmd"
)

var PermissionNames = map[int64]string{
	discordgo.PermissionAdministrator:          "Administrator",
	discordgo.PermissionManageChannels:         "Manage Channels",
	discordgo.PermissionManageGuild:            "Manage Server",
	discordgo.PermissionViewChannel:            "View Channel",
	discordgo.PermissionSendMessages:           "Send Messages",
	discordgo.PermissionManageMessages:         "Manage Messages",
	discordgo.PermissionEmbedLinks:             "Embed Links",
	discordgo.PermissionMentionEveryone:        "Mention Everyone",
	discordgo.PermissionManageThreads:          "Manage Threads",
	discordgo.PermissionManageNicknames:        "Manage Nicknames",
	discordgo.PermissionManageRoles:            "Manage Roles",
	discordgo.PermissionManageWebhooks:         "Manage Webhooks",
	discordgo.PermissionModerateMembers:        "Moderate Members",
	discordgo.PermissionKickMembers:            "Kick Members",
	discordgo.PermissionBanMembers:             "Ban Members",
	discordgo.PermissionViewAuditLogs:          "View Audit Logs",
	discordgo.PermissionUseApplicationCommands: "Use Application Commands",
}

// PermissionsFunc returns the effective permissions of a user in a channel.
type PermissionsFunc func(ctx context.Context, userID, channelID string) (int64, error)

// WithUserPermissionCheck lets a command run only for members holding at
// least one of required, or Administrator. Direct messages pass.
func WithUserPermissionCheck(perms PermissionsFunc, required ...int64) cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			dc, ok := dispatch.FromInvocation(inv)
			if !ok || len(required) == 0 || dc.Source.GuildID() == "" {
				return c.Run(ctx, inv)
			}
			u := dc.Source.Author()
			if u == nil {
				return c.Run(ctx, inv)
			}

			memberPerms, err := perms(ctx, u.ID, dc.Source.ChannelID())
			if err != nil {
				return fmt.Errorf("failed to get user permissions: %w", err)
			}
			if memberPerms&discordgo.PermissionAdministrator != 0 {
				return c.Run(ctx, inv)
			}
			for _, p := range required {
				if memberPerms&p != 0 {
					return c.Run(ctx, inv)
				}
			}

			var allowed []string
			for _, p := range required {
				name := PermissionNames[p]
				if name == "" {
					name = fmt.Sprintf("0x%x", p)
				}
				allowed = append(allowed, name)
			}
			msg := fmt.Sprintf(
				"You need at least one of the following permissions to run this command:\n`%s`",
				strings.Join(allowed, "`, `"),
			)
			_, err = dc.Reply(ctx, msg)
			return err
		})
	}
}
