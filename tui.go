// Copyright (c) 2025 Tom Nagengast
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"context"
	"errors"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/tomnagengast/tomterm/internal/commands"
	"github.com/tomnagengast/tomterm/internal/config"
	"github.com/tomnagengast/tomterm/internal/logx"
	"github.com/tomnagengast/tomterm/internal/prefs"
	"github.com/tomnagengast/tomterm/internal/repl"
	"github.com/tomnagengast/tomterm/internal/session"
	"github.com/tomnagengast/tomterm/internal/ui/styles"
	"github.com/tomnagengast/tomterm/internal/ui/terminal"
)

func newTUICmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the full-screen terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}
			return runTUI(cmd.Context(), cfg)
		},
	}
}

func newPlainCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "plain",
		Short: "Run the terminal as a plain line prompt",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}
			return runPlain(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}
}

// withFileLogger redirects logging to a file under the config dir, since
// the full-screen view owns the terminal. The returned func closes it.
func withFileLogger(ctx context.Context) (context.Context, func()) {
	dir, err := config.ConfigDir()
	if err != nil {
		return logx.Install(ctx, logx.New(io.Discard)), func() {}
	}
	f, err := logx.OpenFile(dir, "tomterm.log")
	if err != nil {
		return logx.Install(ctx, logx.New(io.Discard)), func() {}
	}
	return logx.Install(ctx, logx.New(f)), func() { _ = f.Close() }
}

func runTUI(ctx context.Context, cfg *config.Config) error {
	ctx, closeLog := withFileLogger(ctx)
	defer closeLog()

	store := openPrefs(ctx, cfg)
	if store != nil {
		defer store.Close()
	}

	opts := sessionOptions(cfg)
	sess := session.New(ctx, opts)
	logx.Ctx(ctx).Info("tui session started", "session", sess.ID())

	viewOpts := terminal.Options{
		Session:   sess,
		Completer: commands.NewCompleter(opts.Registry),
		Theme:     styles.NewTheme(nil, resolveTheme(ctx, cfg, store)),
		Markdown:  cfg.UI.Markdown,
		WordWrap:  cfg.UI.WordWrap,
	}
	if store != nil {
		viewOpts.Store = store
		if lines, err := store.History(ctx, 0); err == nil {
			viewOpts.History = lines
		}
	}
	view := terminal.New(ctx, viewOpts)
	sess.Open()

	program := tea.NewProgram(view,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	_, err := program.Run()
	view.Release()
	sess.Close()
	sess.Wait()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// runPlain runs the line prompt. liner reads the process terminal itself.
func runPlain(ctx context.Context, cfg *config.Config, out io.Writer) error {
	store := openPrefs(ctx, cfg)
	opts := sessionOptions(cfg)
	sess := session.New(ctx, opts)

	reader := repl.NewLiner(commands.NewCompleter(opts.Registry))
	defer reader.Close()

	runOpts := repl.Options{
		Session: sess,
		Reader:  reader,
		Output:  out,
	}
	if store != nil {
		defer store.Close()
		runOpts.Store = store
	}
	return repl.Run(ctx, runOpts)
}

var _ repl.HistoryStore = (*prefs.Store)(nil)
var _ terminal.Store = (*prefs.Store)(nil)
