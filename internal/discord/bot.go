package discord

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/slashbridge/internal/commands"
	"github.com/keshon/slashbridge/internal/config"
	"github.com/keshon/slashbridge/internal/dispatch"
	"github.com/keshon/slashbridge/internal/middleware"
	"github.com/keshon/slashbridge/internal/slash"
	"github.com/keshon/slashbridge/internal/storage"
	"github.com/keshon/slashbridge/pkg/cmd"
	"github.com/keshon/slashbridge/pkg/jobmgr"
	"github.com/keshon/slashbridge/pkg/retrylimit"
	"github.com/keshon/slashbridge/pkg/util"
)

const (
	syncJob        = "slash-sync"
	syncWorkers    = 2
	shutdownWindow = 10 * time.Second
)

// Bot is a Discord bot
type Bot struct {
	dg       *discordgo.Session
	cfg      *config.Config
	storage  *storage.Storage
	registry *cmd.Registry

	owners     *OwnerResolver
	dispatcher *dispatch.Dispatcher
	bridge     *slash.Bridge
	ledger     *slash.Ledger
	jobs       *jobmgr.Manager
	limiter    *retrylimit.AdaptiveLimiter

	ctx context.Context
}

// New wires a bot around registry. Commands may be registered after New
// and before Run; the session is not opened yet.
func New(cfg *config.Config, store *storage.Storage, registry *cmd.Registry) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	b := &Bot{
		dg:       dg,
		cfg:      cfg,
		storage:  store,
		registry: registry,
		owners:   NewOwnerResolver(dg, cfg.Owners()),
		jobs: jobmgr.NewManager(func(msg string) {
			log.Printf("[DEBUG] Job %s", msg)
		}),
		limiter: retrylimit.NewAdaptiveLimiter(2, 1, 5, 1, 0.5),
		ctx:     context.Background(),
	}

	prefix := slash.PrefixOverride{
		Fallback: dispatch.WhenMentioned(b.userID, dispatch.StaticPrefix{cfg.CommandPrefix}),
	}
	b.dispatcher = dispatch.New(registry, prefix)
	b.bridge = slash.NewBridge(registry, Platform{Session: dg}, b.dispatcher)

	var opts []slash.LedgerOption
	if store != nil {
		opts = append(opts, slash.WithRecorder(store))
	}
	b.ledger = slash.NewLedger(RESTTransport{Session: dg}, b.appID, slash.NewCompiler(b.owners), registry, opts...)
	return b, nil
}

// NewDefault builds a bot carrying the standard command set, with every
// command recorded in the guild's command history.
func NewDefault(cfg *config.Config, store *storage.Storage) (*Bot, error) {
	registry := cmd.NewRegistry()
	b, err := New(cfg, store, registry)
	if err != nil {
		return nil, err
	}
	commands.Register(registry, commands.Deps{
		Tags:        store,
		History:     store,
		Owners:      b.owners,
		Syncer:      b,
		Permissions: b.Permissions,
		Latency:     b.dg.HeartbeatLatency,
	}, middleware.WithRecover(), middleware.WithCommandLogger(store))
	return b, nil
}

// Registry returns the commands the bot serves.
func (b *Bot) Registry() *cmd.Registry { return b.registry }

// Ledger returns the slash command ledger.
func (b *Bot) Ledger() *slash.Ledger { return b.ledger }

// Owners resolves the bot owners for owner-only checks.
func (b *Bot) Owners() dispatch.OwnerResolver { return b.owners }

// Permissions returns a user's effective permissions in a channel.
func (b *Bot) Permissions(ctx context.Context, userID, channelID string) (int64, error) {
	return UserPermissions(ctx, b.dg, userID, channelID)
}

// Run opens the session and blocks until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	b.ctx = ctx
	b.dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentMessageContent

	b.dg.AddHandler(b.onReady)
	b.dg.AddHandler(b.onMessageCreate)
	b.dg.AddHandler(b.onInteractionCreate)

	if err := b.dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer b.dg.Close()

	<-ctx.Done()
	log.Println("[INFO] ❎ Shutdown signal received. Cleaning up...")
	b.shutdown()
	return nil
}

func (b *Bot) shutdown() {
	_ = b.jobs.Stop(syncJob)

	if !b.cfg.SlashClearOnExit {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownWindow)
	defer cancel()
	_ = b.jobs.Wait(ctx, syncJob)
	if err := b.ledger.Clear(ctx); err != nil {
		log.Printf("[ERR] Failed to clear slash commands: %v", err)
	}
}

// onReady is called when the bot is ready
func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	log.Printf("[INFO] ✅ Discord bot %v is running (shard %d).", r.User.Username, s.ShardID)

	// other shards share the application's command set
	if s.ShardID != 0 {
		return
	}
	if !b.cfg.SlashSync {
		log.Println("[INFO] Registering slash commands skipped")
		return
	}
	if err := b.jobs.StartAsync(b.ctx, syncJob, b.syncAll); err != nil {
		log.Printf("[WARN] Slash command sync not started: %v", err)
	}
}

// onMessageCreate is called when a message is created
func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}

	src := NewMessage(s, m.Message)
	if err := b.dispatcher.Process(b.ctx, src); err != nil {
		log.Printf("[ERR] Error running command %q: %v", m.Content, err)
		if _, sendErr := src.Send(b.ctx, &discordgo.MessageSend{Content: dispatch.UserMessage(err)}); sendErr != nil {
			log.Printf("[WARN] Failed to report error in channel %s: %v", m.ChannelID, sendErr)
		}
	}
}

// onInteractionCreate is called when an interaction is created
func (b *Bot) onInteractionCreate(_ *discordgo.Session, i *discordgo.InteractionCreate) {
	if err := b.bridge.Handle(b.ctx, i.Interaction); err != nil {
		log.Printf("[ERR] Error running slash command: %v", err)
	}
}

// SyncCommands publishes the command set to every configured scope.
func (b *Bot) SyncCommands(ctx context.Context) error {
	return b.jobs.StartSync(ctx, syncJob, b.syncAll)
}

// ClearCommands removes the command set from every scope it was published to.
func (b *Bot) ClearCommands(ctx context.Context) error {
	return b.jobs.StartSync(ctx, syncJob, b.ledger.Clear)
}

// SyncedScopes lists the scopes currently holding the command set.
func (b *Bot) SyncedScopes() []string {
	eps := b.ledger.Endpoints()
	out := make([]string, len(eps))
	for i, ep := range eps {
		out[i] = ep.String()
	}
	return out
}

func (b *Bot) syncAll(ctx context.Context) error {
	descs, diags := b.ledger.Build(ctx)
	diags.Log()

	endpoints := []slash.Endpoint{slash.Global}
	if len(b.cfg.SlashGuilds) > 0 {
		endpoints = endpoints[:0]
		for _, id := range b.cfg.SlashGuilds {
			endpoints = append(endpoints, slash.Guild(id))
		}
	}

	err := util.Parallel(ctx, endpoints, syncWorkers, func(ctx context.Context, ep slash.Endpoint) error {
		return b.withRetry(ctx, func() error { return b.ledger.Sync(ctx, ep, descs) })
	})

	if dev := b.cfg.SlashDevGuild; dev != "" {
		devDescs, devDiags := b.compileForDevGuild(ctx)
		devDiags.Log()
		devErr := b.withRetry(ctx, func() error { return b.ledger.Sync(ctx, slash.Guild(dev), devDescs) })
		err = errors.Join(err, devErr)
	}
	return err
}

// compileForDevGuild compiles every command, hidden ones included.
func (b *Bot) compileForDevGuild(ctx context.Context) ([]*slash.Descriptor, *slash.Diagnostics) {
	diags := &slash.Diagnostics{}
	descs := slash.NewCompiler(b.owners, slash.IncludeHidden()).CompileAll(ctx, b.registry.GetAll(), diags)
	return descs, diags
}

func (b *Bot) withRetry(ctx context.Context, fn func() error) error {
	return retrylimit.WithRetryConfig(ctx, func() error {
		err := fn()
		var apiErr *APIError
		if errors.As(err, &apiErr) && !apiErr.Retryable() {
			return &retrylimit.FatalError{Err: err}
		}
		return err
	}, b.limiter, retrylimit.DefaultRetryConfig())
}

func (b *Bot) userID() string {
	if b.dg.State == nil || b.dg.State.User == nil {
		return ""
	}
	return b.dg.State.User.ID
}

// appID returns the bot's application ID, fetching from Discord if not cached in State.
func (b *Bot) appID() (string, error) {
	if id := b.userID(); id != "" {
		return id, nil
	}
	u, err := b.dg.User("@me")
	if err != nil {
		return "", fmt.Errorf("failed to fetch bot user: %w", err)
	}
	return u.ID, nil
}
