// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/autobrr/shareconnect/internal/classify"
	"github.com/autobrr/shareconnect/internal/models"
)

func RunProfilesCommand(load appLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "Manage download service profiles",
	}

	cmd.AddCommand(
		runProfilesListCommand(load),
		runProfilesAddCommand(load),
		runProfilesRemoveCommand(load),
		runProfilesSetDefaultCommand(load),
		runProfilesExportCommand(load),
	)
	return cmd
}

func runProfilesListCommand(load appLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := load()
			if err != nil {
				return err
			}

			profiles := a.profiles.List()
			if len(profiles) == 0 {
				cmd.Println("No profiles configured")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tSERVICE\tENDPOINT\tDEFAULT\tACCEPTS")
			for _, p := range profiles {
				def := ""
				if p.IsDefault {
					def = "yes"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", p.ID, p.Name, p.ServiceName(), p.Origin(), def, classify.SupportDescription(p.ServiceKind))
			}
			return w.Flush()
		},
	}
}

func runProfilesAddCommand(load appLoader) *cobra.Command {
	var (
		p             models.Profile
		serviceKind   string
		torrentClient string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := load()
			if err != nil {
				return err
			}

			p.ServiceKind = models.ServiceKind(serviceKind)
			p.TorrentClient = models.TorrentClient(torrentClient)

			added, err := a.profiles.Add(p)
			if err != nil {
				return errors.Wrap(err, "failed to add profile")
			}

			cmd.Printf("Profile '%s' added with ID %s\n", added.Name, added.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&p.Name, "name", "", "profile name")
	cmd.Flags().StringVar(&p.BaseURL, "url", "", "base URL, e.g. http://192.168.1.10")
	cmd.Flags().IntVar(&p.Port, "port", 0, "service port")
	cmd.Flags().StringVar(&serviceKind, "type", "", "service type: metube, ytdl, torrent, jdownloader")
	cmd.Flags().StringVar(&torrentClient, "torrent-client", "", "torrent client: qbittorrent, transmission, utorrent")
	cmd.Flags().StringVar(&p.Username, "username", "", "username")
	cmd.Flags().StringVar(&p.Password, "password", "", "password")
	cmd.Flags().BoolVar(&p.IsDefault, "default", false, "make this the default profile")

	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("url")
	_ = cmd.MarkFlagRequired("port")
	_ = cmd.MarkFlagRequired("type")

	return cmd
}

func runProfilesRemoveCommand(load appLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <profile>",
		Short: "Remove a profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load()
			if err != nil {
				return err
			}

			p, err := a.profiles.Lookup(args[0])
			if err != nil {
				return errors.Wrapf(err, "profile %q", args[0])
			}
			if err := a.profiles.Delete(p.ID); err != nil {
				return errors.Wrap(err, "failed to remove profile")
			}

			cmd.Printf("Profile '%s' removed\n", p.Name)
			return nil
		},
	}
}

func runProfilesSetDefaultCommand(load appLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "set-default <profile>",
		Short: "Make a profile the default",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load()
			if err != nil {
				return err
			}

			p, err := a.profiles.Lookup(args[0])
			if err != nil {
				return errors.Wrapf(err, "profile %q", args[0])
			}
			if err := a.profiles.SetDefault(p.ID); err != nil {
				return errors.Wrap(err, "failed to set default profile")
			}

			cmd.Printf("Profile '%s' is now the default\n", p.Name)
			return nil
		},
	}
}

func runProfilesExportCommand(load appLoader) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print all profiles",
		Long: `Print all profiles.

The yaml format is the profiles file itself and includes passwords. The json
format redacts them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := load()
			if err != nil {
				return err
			}

			switch format {
			case "yaml":
				out, err := a.profiles.EncodeYAML()
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(out)
				return err
			case "json":
				profiles := a.profiles.List()
				if profiles == nil {
					profiles = []models.Profile{}
				}
				return writeJSON(cmd.OutOrStdout(), profiles)
			default:
				return fmt.Errorf("unsupported format %q, use yaml or json", format)
			}
		},
	}

	cmd.Flags().StringVar(&format, "format", "yaml", "output format: yaml or json")
	return cmd
}
