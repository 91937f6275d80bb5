package slash

import (
	"context"
	"fmt"
	"log"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/slashbridge/internal/dispatch"
	"github.com/keshon/slashbridge/pkg/cmd"
)

// Sentinel prefixes synthetic invocation text. No organic message is
// expected to start with a zero-width space.
const Sentinel = "\u200b/"

const accessDenied = "⚠️ I cannot access the current channel you are on, please check permissions"

// Platform is the part of the chat API the bridge talks to.
type Platform interface {
	Channel(ctx context.Context, channelID string) (*discordgo.Channel, error)
	// CanRead reports whether the bot may view ch.
	CanRead(ctx context.Context, ch *discordgo.Channel) (bool, error)
	Defer(ctx context.Context, i *discordgo.Interaction) error
	Ephemeral(ctx context.Context, i *discordgo.Interaction, content string) error
	Followup(ctx context.Context, i *discordgo.Interaction, params *discordgo.WebhookParams) (*discordgo.Message, error)
	DeleteFollowup(ctx context.Context, i *discordgo.Interaction, messageID string) error
}

// Dispatcher is the text command entry point the bridge re-enters.
type Dispatcher interface {
	GetContext(ctx context.Context, src dispatch.Source) (*dispatch.Context, error)
	Invoke(ctx context.Context, c *dispatch.Context) error
}

// Bridge turns slash command interactions into text invocations.
type Bridge struct {
	registry   *cmd.Registry
	platform   Platform
	dispatcher Dispatcher
}

func NewBridge(registry *cmd.Registry, platform Platform, dispatcher Dispatcher) *Bridge {
	return &Bridge{registry: registry, platform: platform, dispatcher: dispatcher}
}

// Handle processes one interaction. Interactions that are not chat input
// commands, autocomplete requests and unknown names are ignored. Access
// problems get a single ephemeral notice. Everything else is deferred and
// dispatched as Sentinel + name + flattened options.
func (b *Bridge) Handle(ctx context.Context, i *discordgo.Interaction) error {
	if i == nil || i.Type != discordgo.InteractionApplicationCommand {
		return nil
	}
	data := i.ApplicationCommandData()
	if data.CommandType != discordgo.ChatApplicationCommand || hasFocused(data.Options) {
		return nil
	}

	command := b.registry.Get(data.Name)
	if command == nil {
		log.Printf("[DEBUG] Interaction for unknown command /%s ignored", data.Name)
		return nil
	}

	ch, err := b.platform.Channel(ctx, i.ChannelID)
	if err != nil {
		return b.deny(ctx, i, fmt.Sprintf("resolve channel %s: %v", i.ChannelID, err))
	}
	if !supportedChannel(ch.Type) {
		return b.deny(ctx, i, fmt.Sprintf("unsupported channel type %d", ch.Type))
	}
	if !isPrivate(ch.Type) {
		ok, err := b.platform.CanRead(ctx, ch)
		if err != nil {
			return b.deny(ctx, i, fmt.Sprintf("permissions in %s: %v", ch.ID, err))
		}
		if !ok {
			return b.deny(ctx, i, fmt.Sprintf("no read access to %s", ch.ID))
		}
	}

	args := FlattenFor(command, data.Options)
	if err := b.platform.Defer(ctx, i); err != nil {
		return fmt.Errorf("defer /%s: %w", data.Name, err)
	}

	inv := NewInvocation(i, ch, b.platform, Text(Sentinel, data.Name, args))
	c, err := b.dispatcher.GetContext(ctx, inv)
	if err == nil {
		err = b.dispatcher.Invoke(ctx, c)
	}
	if err != nil {
		b.report(ctx, inv, err)
		return fmt.Errorf("/%s: %w", data.Name, err)
	}
	return nil
}

func (b *Bridge) deny(ctx context.Context, i *discordgo.Interaction, reason string) error {
	log.Printf("[WARN] Refusing slash command in channel %s: %s", i.ChannelID, reason)
	if err := b.platform.Ephemeral(ctx, i, accessDenied); err != nil {
		return fmt.Errorf("send access notice: %w", err)
	}
	return nil
}

// report answers the deferred interaction so it does not hang.
func (b *Bridge) report(ctx context.Context, inv *Invocation, err error) {
	if _, sendErr := inv.Send(ctx, &discordgo.MessageSend{Content: dispatch.UserMessage(err)}); sendErr != nil {
		log.Printf("[WARN] Failed to report error to interaction %s: %v", inv.Interaction().ID, sendErr)
	}
}

// Flatten linearizes an option tree: subcommands and groups contribute their
// name followed by their children, other options their value.
//
// Values are positional. The platform omits optional options the user left
// unset, so skipping one optional option and filling a later one binds the
// later value to the earlier parameter. Commands with several optional
// parameters should take them as a single trailing text parameter.
// FlattenFor additionally restores declared parameter order.
func Flatten(opts []*discordgo.ApplicationCommandInteractionDataOption) []string {
	var args []string
	for _, o := range opts {
		switch {
		case isSubcommand(o.Type):
			args = append(args, o.Name)
			args = append(args, Flatten(o.Options)...)
		default:
			args = append(args, formatValue(o.Value))
		}
	}
	return args
}

// FlattenFor is Flatten with every leaf's options sorted into the declared
// parameter order of the matching command in c's tree. Options that match no
// parameter keep their relative order after the known ones.
func FlattenFor(c cmd.Command, opts []*discordgo.ApplicationCommandInteractionDataOption) []string {
	return Flatten(declaredOrder(c, opts))
}

func declaredOrder(c cmd.Command, opts []*discordgo.ApplicationCommandInteractionDataOption) []*discordgo.ApplicationCommandInteractionDataOption {
	out := slices.Clone(opts)
	if c == nil {
		return out
	}
	if children, isGroup := cmd.SubcommandsOf(c); isGroup {
		for i, o := range out {
			if !isSubcommand(o.Type) {
				continue
			}
			if child := childNamed(children, o.Name); child != nil {
				nested := *o
				nested.Options = declaredOrder(child, o.Options)
				out[i] = &nested
			}
		}
		return out
	}

	pos := map[string]int{}
	for i, p := range cmd.Exposed(cmd.ParamsOf(c)) {
		pos[p.Name] = i
	}
	rank := func(o *discordgo.ApplicationCommandInteractionDataOption) int {
		if i, ok := pos[o.Name]; ok {
			return i
		}
		return len(pos)
	}
	slices.SortStableFunc(out, func(a, b *discordgo.ApplicationCommandInteractionDataOption) int {
		return rank(a) - rank(b)
	})
	return out
}

func isSubcommand(t discordgo.ApplicationCommandOptionType) bool {
	return t == discordgo.ApplicationCommandOptionSubCommand || t == discordgo.ApplicationCommandOptionSubCommandGroup
}

func childNamed(children []cmd.Command, name string) cmd.Command {
	for _, c := range children {
		if c.Name() == name {
			return c
		}
	}
	return nil
}

// Text is the invocation line for name with args under prefix.
func Text(prefix, name string, args []string) string {
	return strings.TrimSpace(prefix + name + " " + strings.Join(args, " "))
}

func formatValue(v any) string {
	switch v := v.(type) {
	case string:
		return quoteArg(v)
	case bool:
		return strconv.FormatBool(v)
	case float64:
		if v == math.Trunc(v) && math.Abs(v) < 1<<53 {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case nil:
		return "''"
	default:
		return quoteArg(fmt.Sprint(v))
	}
}

// quoteArg single-quotes s when the tokenizer would otherwise split or
// unescape it.
func quoteArg(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsAny(s, " \t\r\n'\"\\") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func hasFocused(opts []*discordgo.ApplicationCommandInteractionDataOption) bool {
	for _, o := range opts {
		if o.Focused || hasFocused(o.Options) {
			return true
		}
	}
	return false
}

func supportedChannel(t discordgo.ChannelType) bool {
	switch t {
	case discordgo.ChannelTypeGuildText,
		discordgo.ChannelTypeGuildNews,
		discordgo.ChannelTypeGuildNewsThread,
		discordgo.ChannelTypeGuildPublicThread,
		discordgo.ChannelTypeGuildPrivateThread,
		discordgo.ChannelTypeDM,
		discordgo.ChannelTypeGroupDM:
		return true
	}
	return false
}

func isPrivate(t discordgo.ChannelType) bool {
	return t == discordgo.ChannelTypeDM || t == discordgo.ChannelTypeGroupDM
}
