package dispatch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshon/slashbridge/pkg/cmd"
)

type fakeSource struct {
	mu      sync.Mutex
	content string
	author  *discordgo.User
	guildID string
	channel *discordgo.Channel
	ref     *discordgo.MessageReference
	sent    []*discordgo.MessageSend
	deleted []string
}

func (f *fakeSource) Author() *discordgo.User                { return f.author }
func (f *fakeSource) Member() *discordgo.Member              { return nil }
func (f *fakeSource) ChannelID() string                      { return "c1" }
func (f *fakeSource) GuildID() string                        { return f.guildID }
func (f *fakeSource) Content() string                        { return f.content }
func (f *fakeSource) Reference() *discordgo.MessageReference { return f.ref }

func (f *fakeSource) Channel(context.Context) (*discordgo.Channel, error) {
	if f.channel == nil {
		return nil, errors.New("no channel")
	}
	return f.channel, nil
}

func (f *fakeSource) Send(_ context.Context, msg *discordgo.MessageSend) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	return &discordgo.Message{ID: "m1", Content: msg.Content}, nil
}

func (f *fakeSource) Delete(_ context.Context, msg *discordgo.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, msg.ID)
	return nil
}

func (f *fakeSource) deletedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

func newSource(content string) *fakeSource {
	return &fakeSource{
		content: content,
		author:  &discordgo.User{ID: "u1", Username: "alice"},
		guildID: "g1",
		channel: &discordgo.Channel{ID: "c1", Type: discordgo.ChannelTypeGuildText},
	}
}

func TestGetContextResolvesGroupPath(t *testing.T) {
	reg := cmd.NewRegistry()
	bar := cmd.New("bar", nil, cmd.WithParams(cmd.Arg("a", cmd.Integer), cmd.Arg("b", cmd.Integer)))
	reg.Register(cmd.NewGroup("foo", []cmd.Command{bar}))
	d := New(reg, StaticPrefix{"!"})

	c, err := d.GetContext(context.Background(), newSource("!foo bar 1 2"))
	require.NoError(t, err)
	require.True(t, c.Valid())
	assert.Equal(t, "!", c.Prefix)
	assert.Equal(t, "foo bar", c.QualifiedName())
	assert.Equal(t, []string{"1", "2"}, c.Args)
	assert.Same(t, bar, c.Command())
}

func TestGetContextWithoutPrefixIsInvalid(t *testing.T) {
	reg := cmd.NewRegistry()
	reg.Register(cmd.New("ping", nil))
	d := New(reg, StaticPrefix{"!"})

	for _, content := range []string{"ping", "?ping", "!", "!unknown"} {
		c, err := d.GetContext(context.Background(), newSource(content))
		require.NoError(t, err)
		assert.False(t, c.Valid(), content)
	}
}

func TestInvokeConvertsArguments(t *testing.T) {
	var got []any
	reg := cmd.NewRegistry()
	reg.Register(cmd.New("roll", func(ctx context.Context, inv *cmd.Invocation) error {
		got = inv.Values
		return nil
	}, cmd.WithParams(
		cmd.Author("who"),
		cmd.Arg("count", cmd.Integer),
		cmd.OptArg("loud", cmd.Boolean, false),
		cmd.OptArg("note", cmd.Text, ""),
	)))
	d := New(reg, StaticPrefix{"!"})
	src := newSource("!roll 3 yes good luck everyone")

	require.NoError(t, d.Process(context.Background(), src))
	require.Len(t, got, 4)
	assert.Equal(t, src.author, got[0])
	assert.Equal(t, int64(3), got[1])
	assert.Equal(t, true, got[2])
	assert.Equal(t, "good luck everyone", got[3])
}

func TestInvokeMissingAndBadArguments(t *testing.T) {
	reg := cmd.NewRegistry()
	reg.Register(cmd.New("roll", nil, cmd.WithParams(cmd.Arg("count", cmd.Integer))))
	d := New(reg, StaticPrefix{"!"})

	err := d.Process(context.Background(), newSource("!roll"))
	var ae *ArgumentError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, "count", ae.Param)
	assert.Contains(t, UserMessage(err), "Missing argument")

	err = d.Process(context.Background(), newSource("!roll many"))
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, "many", ae.Raw)
	assert.Contains(t, UserMessage(err), "Invalid value")
}

func TestInvokeRunsChecksAlongPath(t *testing.T) {
	var order []string
	check := func(name string, fail bool) cmd.Check {
		return cmd.NewCheck(name, func(context.Context, *cmd.Invocation) error {
			order = append(order, name)
			if fail {
				return errors.New("nope")
			}
			return nil
		})
	}
	ran := false
	leaf := cmd.New("leaf", func(context.Context, *cmd.Invocation) error {
		ran = true
		return nil
	}, cmd.WithChecks(check("leaf-check", true)))
	reg := cmd.NewRegistry()
	reg.Register(cmd.NewGroup("grp", []cmd.Command{leaf}, cmd.WithChecks(check("group-check", false))))
	d := New(reg, StaticPrefix{"!"})

	err := d.Process(context.Background(), newSource("!grp leaf"))
	var ce *CheckError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "leaf-check", ce.Check)
	assert.Equal(t, []string{"group-check", "leaf-check"}, order)
	assert.False(t, ran)
}

func TestInvokeGroupDirectly(t *testing.T) {
	reg := cmd.NewRegistry()
	reg.Register(cmd.NewGroup("grp", []cmd.Command{cmd.New("leaf", nil)}))
	d := New(reg, StaticPrefix{"!"})

	err := d.Process(context.Background(), newSource("!grp"))
	assert.True(t, errors.Is(err, cmd.ErrNotInvocable))
}

func TestMiddlewareOnGroupSeesChildInvocation(t *testing.T) {
	var seen string
	leaf := cmd.New("leaf", nil)
	logged := cmd.Apply(cmd.NewGroup("grp", []cmd.Command{leaf}), func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			dc, _ := FromInvocation(inv)
			seen = dc.QualifiedName()
			return c.Run(ctx, inv)
		})
	})
	reg := cmd.NewRegistry()
	reg.Register(logged)
	d := New(reg, StaticPrefix{"!"})

	require.NoError(t, d.Process(context.Background(), newSource("!grp leaf")))
	assert.Equal(t, "grp leaf", seen)
}

func TestTokenizeQuotes(t *testing.T) {
	assert.Equal(t, []string{"tag", "set", "hello world", "it's"}, Tokenize(`tag set 'hello world' 'it'\''s'`))
	assert.Equal(t, []string{"a", "b c"}, Tokenize(`a "b c"`))
}

func TestReplyAndDeleteAfter(t *testing.T) {
	src := newSource("!x")
	src.ref = &discordgo.MessageReference{MessageID: "orig"}
	c := &Context{Source: src}

	msg, err := c.Reply(context.Background(), "hi", DeleteAfter(10*time.Millisecond))
	require.NoError(t, err)
	assert.Equal(t, "m1", msg.ID)
	require.Len(t, src.sent, 1)
	assert.Equal(t, "orig", src.sent[0].Reference.MessageID)
	assert.Eventually(t, func() bool { return len(src.deletedIDs()) == 1 }, time.Second, 5*time.Millisecond)
}

func TestWhenMentioned(t *testing.T) {
	p := WhenMentioned(func() string { return "42" }, StaticPrefix{"!"})
	got, err := p.Prefixes(context.Background(), newSource(""))
	require.NoError(t, err)
	assert.Equal(t, []string{"<@42> ", "<@!42> ", "!"}, got)
}

func TestBuiltinChecks(t *testing.T) {
	ctx := context.Background()
	src := newSource("!x")
	inv := &cmd.Invocation{Data: &Context{Source: src}}

	assert.NoError(t, OwnerOnly(StaticOwners{"u1"}).Run(ctx, inv))
	assert.ErrorIs(t, OwnerOnly(StaticOwners{"u2"}).Run(ctx, inv), ErrNotOwner)
	assert.ErrorIs(t, OwnerOnly(StaticOwners{}).Run(ctx, inv), ErrNoOwners)
	assert.True(t, OwnerOnly(nil).Capabilities().Has(cmd.CapOwner))

	assert.ErrorIs(t, NSFWOnly().Run(ctx, inv), ErrNSFWChannel)
	src.channel.NSFW = true
	assert.NoError(t, NSFWOnly().Run(ctx, inv))
	assert.True(t, NSFWOnly().Capabilities().Has(cmd.CapAdultContent))

	assert.NoError(t, GuildOnly().Run(ctx, inv))
	src.guildID = ""
	assert.ErrorIs(t, GuildOnly().Run(ctx, inv), ErrGuildOnly)
	assert.Empty(t, GuildOnly().Capabilities())
}

func TestConvertSnowflake(t *testing.T) {
	for raw, want := range map[string]string{"<@123>": "123", "<@!123>": "123", "<#9>": "9", "<@&7>": "7", "555": "555"} {
		got, err := convertSnowflake(context.Background(), nil, raw)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := convertSnowflake(context.Background(), nil, "bob")
	assert.Error(t, err)
}
