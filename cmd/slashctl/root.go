package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/keshon/slashbridge/internal/config"
	"github.com/keshon/slashbridge/internal/discord"
	"github.com/keshon/slashbridge/internal/slash"
	"github.com/keshon/slashbridge/internal/storage"
	"github.com/keshon/slashbridge/pkg/util"
)

var errStructural = errors.New("command set has structural errors")

// app is what every subcommand works against. It is opened lazily so that
// --help works without credentials.
type app struct {
	logger *log.Logger
	store  *storage.Storage
	bot    *discord.Bot
}

func (a *app) open(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	store, err := storage.New(ctx, cfg.StoragePath)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	bot, err := discord.NewDefault(cfg, store)
	if err != nil {
		store.Close()
		return err
	}
	a.store, a.bot = store, bot
	return nil
}

func (a *app) close() {
	if a.store != nil {
		a.store.Close()
	}
}

func newRootCmd(logger *log.Logger) *cobra.Command {
	a := &app{logger: logger}

	root := &cobra.Command{
		Use:           "slashctl",
		Short:         "Inspect and publish slash commands",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open(cmd.Context())
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			a.close()
		},
	}
	root.AddCommand(newDumpCmd(a), newSyncCmd(a), newClearCmd(a), newHistoryCmd(a))
	return root
}

func endpointFlag(cmd *cobra.Command) *string {
	return cmd.Flags().String("guild", "", "guild ID to target instead of the global scope")
}

func endpointOf(guild string) slash.Endpoint {
	if guild == "" {
		return slash.Global
	}
	return slash.Guild(guild)
}

func newDumpCmd(a *app) *cobra.Command {
	var hidden bool
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print the compiled command set as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				descs []*slash.Descriptor
				diags *slash.Diagnostics
			)
			if hidden {
				diags = &slash.Diagnostics{}
				descs = slash.NewCompiler(a.bot.Owners(), slash.IncludeHidden()).
					CompileAll(cmd.Context(), a.bot.Registry().GetAll(), diags)
			} else {
				descs, diags = a.bot.Ledger().Build(cmd.Context())
			}
			if err := writeJSON(cmd.OutOrStdout(), descs); err != nil {
				return err
			}
			return reportDiagnostics(a.logger, diags)
		},
	}
	cmd.Flags().BoolVar(&hidden, "hidden", false, "include hidden commands")
	return cmd
}

func newSyncCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Publish the command set",
	}
	guild := endpointFlag(cmd)
	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		descs, diags := a.bot.Ledger().Build(ctx)
		if err := reportDiagnostics(a.logger, diags); err != nil {
			a.logger.Warn("publishing the commands that compiled", "dropped", len(diags.Errors()))
		}
		ep := endpointOf(*guild)
		if err := a.bot.Ledger().Sync(ctx, ep, descs); err != nil {
			return err
		}
		hash, _ := slash.PayloadHash(descs)
		a.logger.Info("synced", "scope", ep.String(), "commands", len(descs), "hash", shortHash(hash))
		return nil
	}
	return cmd
}

func newClearCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every published command from a scope",
	}
	guild := endpointFlag(cmd)
	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		ep := endpointOf(*guild)
		if err := a.bot.Ledger().Unsync(cmd.Context(), ep); err != nil {
			return err
		}
		a.logger.Info("cleared", "scope", ep.String())
		return nil
	}
	return cmd
}

func newHistoryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List recent publishes and whether each scope is up to date",
		RunE: func(cmd *cobra.Command, _ []string) error {
			records, err := a.store.SyncHistory()
			if err != nil {
				return err
			}
			descs, _ := a.bot.Ledger().Build(cmd.Context())
			current, err := slash.PayloadHash(descs)
			if err != nil {
				return err
			}
			return writeHistory(cmd.OutOrStdout(), records, current)
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeHistory prints one line per publish, newest first. Entries whose
// payload matches current are marked.
func writeHistory(w io.Writer, records []storage.SyncRecord, current string) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "no publishes recorded")
		return err
	}
	for i := len(records) - 1; i >= 0; i-- {
		r := records[i]
		mark := ""
		if r.Hash == current {
			mark = " (current)"
		}
		_, err := fmt.Fprintf(w, "%s  %-24s %3d commands  %s%s\n",
			util.FormatDateTpl(r.At, "YYYY-MM-DD hh:mm:ss"), r.Endpoint, r.Count, shortHash(r.Hash), mark)
		if err != nil {
			return err
		}
	}
	return nil
}

// reportDiagnostics logs diags and fails when any is an error.
func reportDiagnostics(logger *log.Logger, diags *slash.Diagnostics) error {
	if diags == nil {
		return nil
	}
	for _, d := range diags.Warnings() {
		logger.Warn(d.Message, "command", d.Command)
	}
	errs := diags.Errors()
	for _, d := range errs {
		logger.Error(d.Message, "command", d.Command)
	}
	if len(errs) > 0 {
		return errStructural
	}
	return nil
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
