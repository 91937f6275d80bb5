// Package slash publishes text commands as Discord slash commands and routes
// slash interactions back into the text dispatcher.
package slash

import (
	"github.com/bwmarrin/discordgo"

	"github.com/keshon/slashbridge/pkg/cmd"
)

// OptionType maps a declared parameter type to its wire option type.
// Unknown types are advertised as strings; the dispatcher's converters
// validate the value at execution time anyway.
func OptionType(t cmd.ParamType) discordgo.ApplicationCommandOptionType {
	switch t {
	case cmd.Text:
		return discordgo.ApplicationCommandOptionString
	case cmd.Integer:
		return discordgo.ApplicationCommandOptionInteger
	case cmd.Boolean:
		return discordgo.ApplicationCommandOptionBoolean
	case cmd.User:
		return discordgo.ApplicationCommandOptionUser
	case cmd.Channel:
		return discordgo.ApplicationCommandOptionChannel
	case cmd.Role:
		return discordgo.ApplicationCommandOptionRole
	case cmd.Float:
		return discordgo.ApplicationCommandOptionNumber
	default:
		return discordgo.ApplicationCommandOptionString
	}
}
