package commands

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshon/slashbridge/internal/dispatch"
	"github.com/keshon/slashbridge/internal/slash"
	"github.com/keshon/slashbridge/internal/storage"
	"github.com/keshon/slashbridge/pkg/cmd"
)

type fakeSource struct {
	mu      sync.Mutex
	content string
	author  *discordgo.User
	guildID string
	channel *discordgo.Channel
	sent    []*discordgo.MessageSend
}

func (f *fakeSource) Author() *discordgo.User                { return f.author }
func (f *fakeSource) Member() *discordgo.Member              { return nil }
func (f *fakeSource) ChannelID() string                      { return f.channel.ID }
func (f *fakeSource) GuildID() string                        { return f.guildID }
func (f *fakeSource) Content() string                        { return f.content }
func (f *fakeSource) Reference() *discordgo.MessageReference { return nil }

func (f *fakeSource) Channel(context.Context) (*discordgo.Channel, error) { return f.channel, nil }

func (f *fakeSource) Send(_ context.Context, msg *discordgo.MessageSend) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	return &discordgo.Message{ID: "m1", Content: msg.Content}, nil
}

func (f *fakeSource) Delete(context.Context, *discordgo.Message) error { return nil }

func (f *fakeSource) last(t *testing.T) *discordgo.MessageSend {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.sent)
	return f.sent[len(f.sent)-1]
}

type fakeSyncer struct {
	synced, cleared int
	err             error
}

func (s *fakeSyncer) SyncCommands(context.Context) error  { s.synced++; return s.err }
func (s *fakeSyncer) ClearCommands(context.Context) error { s.cleared++; return s.err }
func (s *fakeSyncer) SyncedScopes() []string              { return []string{"global"} }

type harness struct {
	reg    *cmd.Registry
	d      *dispatch.Dispatcher
	store  *storage.Storage
	syncer *fakeSyncer
	perms  int64
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store, err := storage.New(context.Background(), filepath.Join(t.TempDir(), "datastore.json"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	h := &harness{reg: cmd.NewRegistry(), store: store, syncer: &fakeSyncer{}}
	Register(h.reg, Deps{
		Tags:    store,
		History: store,
		Owners:  dispatch.StaticOwners{"owner"},
		Syncer:  h.syncer,
		Permissions: func(context.Context, string, string) (int64, error) {
			return h.perms, nil
		},
	})
	h.d = dispatch.New(h.reg, dispatch.StaticPrefix{"!"})
	return h
}

func (h *harness) run(t *testing.T, userID, content string) (*fakeSource, error) {
	t.Helper()
	src := &fakeSource{
		content: content,
		author:  &discordgo.User{ID: userID, Username: userID},
		guildID: "g1",
		channel: &discordgo.Channel{ID: "c1", Type: discordgo.ChannelTypeGuildText},
	}
	return src, h.d.Process(context.Background(), src)
}

func TestEvaluate(t *testing.T) {
	maxRoll := func(n int) int { return n - 1 }

	res, err := evaluate("2 + 3 * 4", maxRoll)
	require.NoError(t, err)
	assert.Equal(t, 14, res.Total)
	assert.Equal(t, "2+3*4", res.Formula)

	res, err = evaluate("3d6-1", maxRoll)
	require.NoError(t, err)
	assert.Equal(t, 17, res.Total)
	assert.Contains(t, res.Pretty, "[6, 6, 6]")

	res, err = evaluate("d20", maxRoll)
	require.NoError(t, err)
	assert.Equal(t, 20, res.Total)
}

func TestEvaluateErrors(t *testing.T) {
	intn := func(int) int { return 0 }
	tests := map[string]error{
		"":      errEmptyFormula,
		"abc":   errEmptyFormula,
		"*3":    errDanglingOp,
		"10/0":  errDivByZero,
		"1d1":   nil,
		"101d6": nil,
	}
	for formula, want := range tests {
		t.Run(formula, func(t *testing.T) {
			_, err := evaluate(formula, intn)
			require.Error(t, err)
			if want != nil {
				assert.ErrorIs(t, err, want)
			}
		})
	}
}

func TestRollCommand(t *testing.T) {
	h := newHarness(t)
	src, err := h.run(t, "u1", "!roll 2d6 + 1")
	require.NoError(t, err)
	msg := src.last(t)
	require.Len(t, msg.Embeds, 1)
	assert.Equal(t, "🎲 Dice Roll", msg.Embeds[0].Title)
	assert.Contains(t, msg.Embeds[0].Description, "`2d6+1`")
}

func TestRollCommandReportsBadFormula(t *testing.T) {
	h := newHarness(t)
	src, err := h.run(t, "u1", "!roll 5/0")
	require.NoError(t, err)
	assert.Contains(t, src.last(t).Content, "divide by zero")
}

func TestTags(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t, "u1", "!tag set Rules be nice to each other")
	require.NoError(t, err)

	src, err := h.run(t, "u2", "!tag get rules")
	require.NoError(t, err)
	assert.Equal(t, "be nice to each other", src.last(t).Content)

	tag, err := h.store.GetTag("g1", "rules")
	require.NoError(t, err)
	assert.Equal(t, "u1", tag.AuthorID)

	src, err = h.run(t, "u2", "!tag list")
	require.NoError(t, err)
	assert.Equal(t, "`rules`", src.last(t).Embeds[0].Description)

	src, err = h.run(t, "u2", "!tag get missing")
	require.NoError(t, err)
	assert.Contains(t, src.last(t).Content, "No tag called")
}

func TestTagDeleteNeedsPermission(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.store.SetTag("g1", storage.Tag{Name: "rules", Content: "x"}))

	src, err := h.run(t, "u1", "!tag delete rules")
	require.NoError(t, err)
	assert.Contains(t, src.last(t).Content, "Manage Messages")
	_, err = h.store.GetTag("g1", "rules")
	require.NoError(t, err)

	h.perms = discordgo.PermissionManageMessages
	src, err = h.run(t, "u1", "!tag delete rules")
	require.NoError(t, err)
	assert.Contains(t, src.last(t).Content, "deleted")
	_, err = h.store.GetTag("g1", "rules")
	assert.ErrorIs(t, err, storage.ErrTagNotFound)
}

func TestTagsRejectDirectMessages(t *testing.T) {
	h := newHarness(t)
	src := &fakeSource{
		content: "!tag list",
		author:  &discordgo.User{ID: "u1"},
		channel: &discordgo.Channel{ID: "dm", Type: discordgo.ChannelTypeDM},
	}
	err := h.d.Process(context.Background(), src)
	assert.ErrorIs(t, err, dispatch.ErrGuildOnly)
}

func TestHistory(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.store.AppendCommandToHistory("g1", storage.CommandHistoryRecord{
		Username: "alice", Command: "roll", Param: "2d6", Source: "slash",
	}))

	src, err := h.run(t, "u1", "!history")
	require.NoError(t, err)
	desc := src.last(t).Embeds[0].Description
	assert.Contains(t, desc, "**alice** ran `roll` 2d6")
	assert.Contains(t, desc, "_(slash)_")
}

func TestRoastNeedsAgeRestrictedChannel(t *testing.T) {
	h := newHarness(t)
	_, err := h.run(t, "u1", "!roast")
	assert.ErrorIs(t, err, dispatch.ErrNSFWChannel)

	src := &fakeSource{
		content: "!roast <@42>",
		author:  &discordgo.User{ID: "u1"},
		guildID: "g1",
		channel: &discordgo.Channel{ID: "c2", Type: discordgo.ChannelTypeGuildText, NSFW: true},
	}
	require.NoError(t, h.d.Process(context.Background(), src))
	assert.Contains(t, src.last(t).Content, "<@42>")
}

func TestAdmin(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t, "u1", "!admin sync")
	assert.ErrorIs(t, err, dispatch.ErrNotOwner)
	assert.Zero(t, h.syncer.synced)

	src, err := h.run(t, "owner", "!admin sync")
	require.NoError(t, err)
	assert.Equal(t, 1, h.syncer.synced)
	assert.Contains(t, src.last(t).Content, "`global`")

	_, err = h.run(t, "owner", "!admin clear")
	require.NoError(t, err)
	assert.Equal(t, 1, h.syncer.cleared)

	h.syncer.err = errors.New("boom")
	_, err = h.run(t, "owner", "!admin sync")
	assert.ErrorContains(t, err, "boom")
}

func TestHelp(t *testing.T) {
	h := newHarness(t)

	src, err := h.run(t, "u1", "!help")
	require.NoError(t, err)
	desc := src.last(t).Embeds[0].Description
	assert.Contains(t, desc, "`roll`")
	assert.Contains(t, desc, "`tag`")

	src, err = h.run(t, "u1", "!help tag set")
	require.NoError(t, err)
	assert.Contains(t, src.last(t).Embeds[0].Description, "`tag set <name> <content>`")

	src, err = h.run(t, "u1", "!help tag")
	require.NoError(t, err)
	assert.Contains(t, src.last(t).Embeds[0].Description, "**Subcommands:**")

	src, err = h.run(t, "u1", "!help nope")
	require.NoError(t, err)
	assert.Contains(t, src.last(t).Embeds[0].Description, "No command called")
}

func TestCommandsCompile(t *testing.T) {
	h := newHarness(t)
	diags := &slash.Diagnostics{}
	descs := slash.NewCompiler(dispatch.StaticOwners{"owner"}).CompileAll(context.Background(), h.reg.GetAll(), diags)

	assert.Empty(t, diags.Errors())
	byName := map[string]*slash.Descriptor{}
	for _, d := range descs {
		byName[d.Name] = d
	}
	require.Len(t, byName, len(h.reg.GetAll()))

	assert.False(t, byName["admin"].DefaultPermission)
	require.NotNil(t, byName["roast"].NSFW)
	assert.True(t, *byName["roast"].NSFW)
	assert.True(t, byName["tag"].IsGroup())
	assert.Len(t, byName["tag"].Options, 4)
}
