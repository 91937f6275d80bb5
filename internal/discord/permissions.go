package discord

import (
	"context"
	"errors"

	"github.com/bwmarrin/discordgo"
)

var errNotReady = errors.New("session is not ready")

// UserPermissions returns the effective permissions of userID in channelID.
func UserPermissions(ctx context.Context, s *discordgo.Session, userID, channelID string) (int64, error) {
	return s.UserChannelPermissions(userID, channelID, discordgo.WithContext(ctx))
}

// CanView reports whether the bot may view channelID.
func CanView(ctx context.Context, s *discordgo.Session, channelID string) (bool, error) {
	if s.State == nil || s.State.User == nil {
		return false, errNotReady
	}
	perms, err := UserPermissions(ctx, s, s.State.User.ID, channelID)
	if err != nil {
		return false, err
	}
	return perms&discordgo.PermissionViewChannel != 0, nil
}

// channel resolves a channel from state first, then REST.
func channel(ctx context.Context, s *discordgo.Session, channelID string) (*discordgo.Channel, error) {
	if ch, err := s.State.Channel(channelID); err == nil {
		return ch, nil
	}
	return s.Channel(channelID, discordgo.WithContext(ctx))
}
