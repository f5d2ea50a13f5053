// Copyright (c) 2025 Tom Nagengast
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/tomnagengast/tomterm/internal/config"
	"github.com/tomnagengast/tomterm/internal/sshserver"
)

func newSSHCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "ssh",
		Short: "Serve the terminal over SSH",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}
			srv, err := newSSHServer(cfg)
			if err != nil {
				return err
			}
			return srv.ListenAndServe(cmd.Context())
		},
	}
}

func newSSHServer(cfg *config.Config) (*sshserver.Server, error) {
	hostKey := cfg.SSH.HostKeyPath
	if hostKey == "" {
		p, err := config.DataPath("ssh_host_ed25519_key")
		if err != nil {
			return nil, err
		}
		hostKey = p
	}
	return &sshserver.Server{
		Addr:        cfg.SSH.Addr,
		HostKeyPath: hostKey,
		IdleTimeout: time.Duration(cfg.SSH.IdleSecs) * time.Second,
		Session:     sessionOptions(cfg),
		Theme:       cfg.UI.Theme,
		Markdown:    cfg.UI.Markdown,
		WordWrap:    cfg.UI.WordWrap,
	}, nil
}
