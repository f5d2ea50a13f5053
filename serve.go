// Copyright (c) 2025 Tom Nagengast
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tomnagengast/tomterm/internal/config"
	"github.com/tomnagengast/tomterm/internal/logx"
	"github.com/tomnagengast/tomterm/internal/server"
	"github.com/tomnagengast/tomterm/internal/sshserver"
)

func newServeCmd(flags *rootFlags) *cobra.Command {
	var withSSH bool
	var noWatch bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the chat/shell backend (and optionally the SSH terminal)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}
			path, err := flags.path()
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg, path, withSSH, !noWatch)
		},
	}
	cmd.Flags().BoolVar(&withSSH, "ssh", false, "also serve the terminal over SSH")
	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "do not reload the config file on change")
	return cmd
}

func runServe(ctx context.Context, cfg *config.Config, cfgPath string, withSSH, watch bool) error {
	logger := logx.Ctx(ctx)
	responder := newResponder(cfg)

	srv := server.New(server.Options{
		Config:    cfg.Server,
		Persona:   cfg.Persona.Prompt(),
		Responder: responder,
	})

	checkCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	if err := responder.CheckRunning(checkCtx); err != nil {
		logger.Warn("upstream model not reachable; chat requests will fail until it is", "url", cfg.Ollama.URL, "err", err)
	}
	cancel()

	var sshSrv *sshserver.Server
	if withSSH {
		var err error
		if sshSrv, err = newSSHServer(cfg); err != nil {
			return err
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.ListenAndServe(ctx)
	})

	if sshSrv != nil {
		g.Go(func() error {
			return sshSrv.ListenAndServe(ctx)
		})
	}

	if watch {
		if err := os.MkdirAll(filepath.Dir(cfgPath), 0o700); err != nil {
			logger.Warn("config watch disabled", "err", err)
		} else {
			g.Go(func() error {
				err := config.Watch(ctx, cfgPath, func(next *config.Config) {
					srv.SetPersona(next.Persona.Prompt())
					srv.SetResponder(newResponder(next))
				})
				// A broken watcher only loses hot reload.
				if err != nil {
					logger.Warn("config watch stopped", "err", err)
				}
				return nil
			})
		}
	}

	return g.Wait()
}
