// Copyright (c) 2025 Tom Nagengast
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tomnagengast/tomterm/internal/fileutil"
	"github.com/tomnagengast/tomterm/internal/notes"
	"github.com/tomnagengast/tomterm/internal/ui/styles"
)

func newRSSCmd() *cobra.Command {
	var output string
	site := notes.DefaultSite
	cmd := &cobra.Command{
		Use:   "rss",
		Short: "Generate the notes RSS feed",
		RunE: func(cmd *cobra.Command, args []string) error {
			all, err := notes.All()
			if err != nil {
				return err
			}
			feed, err := notes.RSS(site, all)
			if err != nil {
				return err
			}
			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(feed)
				return err
			}
			if err := fileutil.WriteAtomic(output, feed, 0o644, 0o755); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.ErrOrStderr(), "RSS feed written to %s (%d items)\n", output, len(all))
			return err
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the feed to a file (default stdout)")
	cmd.Flags().StringVar(&site.URL, "site-url", site.URL, "site base URL")
	cmd.Flags().StringVar(&site.Title, "site-title", site.Title, "feed title")
	return cmd
}

func newNotesCmd() *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "notes [slug]",
		Short: "List notes, or show one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			all, err := notes.All()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				return listNotes(out, all)
			}
			n, err := notes.Find(all, args[0])
			if err != nil {
				return err
			}
			return showNote(out, n, raw)
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "print markdown without rendering")
	return cmd
}

func listNotes(out io.Writer, all []notes.Note) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, n := range all {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", n.Date.Format(notes.DateLayout), n.Slug, n.Title)
	}
	return tw.Flush()
}

func showNote(out io.Writer, n notes.Note, raw bool) error {
	header := fmt.Sprintf("# %s\n\n_%s_\n\n", n.Title, n.Date.Format("January 2, 2006"))
	body := n.Content
	if raw || !term.IsTerminal(int(os.Stdout.Fd())) {
		_, err := io.WriteString(out, body)
		return err
	}

	style := styles.NewTheme(nil, styles.DetectTheme(termenv.DefaultOutput())).GlamourStyle()
	r, err := glamour.NewTermRenderer(glamour.WithStandardStyle(style), glamour.WithWordWrap(80))
	if err != nil {
		return err
	}
	rendered, err := r.Render(header + body)
	if err != nil {
		return err
	}
	_, err = io.WriteString(out, rendered)
	return err
}
