// tomterm - a personal terminal with a simulated shell and a chat agent.
//
// Copyright (c) 2025 Tom Nagengast
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"pkt.systems/psi"
	"pkt.systems/pslog"

	"github.com/tomnagengast/tomterm/internal/config"
	"github.com/tomnagengast/tomterm/internal/logx"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	psi.Run(submain)
}

func submain(ctx context.Context) int {
	logger := logx.New(os.Stderr)
	ctx = logx.Install(ctx, logger)

	root := newRootCmd()
	root.SetArgs(os.Args[1:])
	if err := root.ExecuteContext(ctx); err != nil {
		pslog.Ctx(ctx).With("err", err).Error("tomterm command failed")
		return 1
	}
	return 0
}

// rootFlags are shared by every subcommand.
type rootFlags struct {
	configPath string
}

func (f *rootFlags) load() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if f.configPath != "" {
		cfg, err = config.LoadFromPath(f.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	config.SetGlobal(cfg)
	return cfg, nil
}

// path returns the config file in effect.
func (f *rootFlags) path() (string, error) {
	if f.configPath != "" {
		return f.configPath, nil
	}
	return config.ConfigPath()
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:           "tomterm",
		Short:         "Tom's terminal: a tiny shell and a chat agent",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}
			if term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd())) {
				return runTUI(cmd.Context(), cfg)
			}
			return runPlain(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}
	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "path to config file (default ~/.tomterm/config.toml)")

	root.AddCommand(newTUICmd(flags))
	root.AddCommand(newPlainCmd(flags))
	root.AddCommand(newServeCmd(flags))
	root.AddCommand(newSSHCmd(flags))
	root.AddCommand(newRSSCmd())
	root.AddCommand(newNotesCmd())
	root.AddCommand(newConfigCmd(flags))
	root.AddCommand(newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "tomterm %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
			return err
		},
	}
}
