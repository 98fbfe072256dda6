// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"github.com/spf13/cobra"

	"github.com/autobrr/shareconnect/internal/classify"
	"github.com/autobrr/shareconnect/internal/magnet"
	"github.com/autobrr/shareconnect/internal/metadata"
)

func RunClassifyCommand(load appLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify <url>",
		Short: "Show the link type and the profiles that accept it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := args[0]
			t := classify.Classify(raw)

			cmd.Printf("Type: %s (%s)\n", t, t.Description())
			cmd.Printf("Provider: %s\n", classify.ServiceProvider(raw))
			cmd.Printf("Media: %s\n", classify.MediaType(raw))

			a, err := load()
			if err != nil {
				return err
			}

			compatible := classify.FilterCompatible(a.profiles.List(), raw)
			if len(compatible) == 0 {
				cmd.Println("No compatible profiles")
				return nil
			}

			selected, _ := classify.SelectProfile(compatible, raw)
			cmd.Println("Compatible profiles:")
			for _, p := range compatible {
				marker := " "
				if p.ID == selected.ID {
					marker = "*"
				}
				cmd.Printf("  %s %s (%s)\n", marker, p.Name, p.ServiceName())
			}
			return nil
		},
	}

	return cmd
}

func RunMagnetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "magnet <uri>",
		Short: "Parse a magnet link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeJSON(cmd.OutOrStdout(), magnet.Parse(args[0]))
		},
	}

	return cmd
}

func RunMetadataCommand() *cobra.Command {
	var inspectTorrents bool

	cmd := &cobra.Command{
		Use:   "metadata <url>",
		Short: "Fetch a link preview",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fetcher := metadata.NewFetcher(metadata.WithTorrentInspection(inspectTorrents))
			return writeJSON(cmd.OutOrStdout(), fetcher.Fetch(cmd.Context(), args[0]))
		},
	}

	cmd.Flags().BoolVar(&inspectTorrents, "inspect-torrents", false, "download .torrent files and read their metainfo")
	return cmd
}
