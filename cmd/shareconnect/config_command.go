// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"github.com/spf13/cobra"
)

func RunConfigCommand(load appLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and update config.toml",
	}

	cmd.AddCommand(runConfigPathCommand(load), runConfigSetLogCommand(load))
	return cmd
}

func runConfigPathCommand(load appLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config and profiles file paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := load()
			if err != nil {
				return err
			}
			cmd.Printf("Config: %s\n", a.cfg.ConfigPath())
			cmd.Printf("Profiles: %s\n", a.cfg.ProfilesPath())
			return nil
		},
	}
}

func runConfigSetLogCommand(load appLoader) *cobra.Command {
	var (
		level      string
		path       string
		maxSize    int
		maxBackups int
	)

	cmd := &cobra.Command{
		Use:   "set-log",
		Short: "Change the log settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := load()
			if err != nil {
				return err
			}

			current := a.cfg.Config
			flags := cmd.Flags()
			if !flags.Changed("level") {
				level = current.LogLevel
			}
			if !flags.Changed("path") {
				path = current.LogPath
			}
			if !flags.Changed("max-size") {
				maxSize = current.LogMaxSize
			}
			if !flags.Changed("max-backups") {
				maxBackups = current.LogMaxBackups
			}

			if err := a.cfg.UpdateLogSettings(level, path, maxSize, maxBackups); err != nil {
				return err
			}

			cmd.Printf("Log settings saved to %s\n", a.cfg.ConfigPath())
			return nil
		},
	}

	cmd.Flags().StringVar(&level, "level", "", "log level: ERROR, WARN, INFO, DEBUG, TRACE")
	cmd.Flags().StringVar(&path, "path", "", "log file path, empty logs to the console")
	cmd.Flags().IntVar(&maxSize, "max-size", 0, "maximum log file size in megabytes")
	cmd.Flags().IntVar(&maxBackups, "max-backups", 0, "rotated log files to keep")
	return cmd
}
