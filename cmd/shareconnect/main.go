// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/autobrr/shareconnect/internal/buildinfo"
)

func main() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func NewRootCommand() *cobra.Command {
	var configDir string

	rootCmd := &cobra.Command{
		Use:   "shareconnect",
		Short: "Send shared links to your download services",
		Long: `shareconnect classifies shared links and sends them to the download
service that can handle them: MeTube, YT-DLP, qBittorrent, Transmission,
uTorrent or jDownloader.`,
		SilenceUsage: true,
		Version:      buildinfo.Version,
	}

	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "config directory or path to config.toml (default: user config dir)")

	load := func() (*app, error) {
		return loadApp(configDir)
	}

	rootCmd.AddCommand(
		RunClassifyCommand(load),
		RunMagnetCommand(),
		RunMetadataCommand(),
		RunDispatchCommand(load),
		RunSessionCommand(load),
		RunProbeCommand(load),
		RunProfilesCommand(load),
		RunServeCommand(load),
		RunConfigCommand(load),
		RunVersionCommand(),
	)

	return rootCmd
}

func RunVersionCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !asJSON {
				cmd.Print(buildinfo.String())
				return nil
			}

			out, err := buildinfo.JSON()
			if err != nil {
				log.Error().Err(err).Msg("failed to encode build info")
				return err
			}
			cmd.Println(string(out))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}
