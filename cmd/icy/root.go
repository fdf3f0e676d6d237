// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Icy Contributors

package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/icyfeed/icy/internal/config"
)

// NewRootCmd creates the root command for the icy CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "icy",
		Short: "icy - accounts and sessions for the icy feed",
		Long: `icy serves signup, login, profile and withdrawal endpoints for the
icy social feed, backed by PostgreSQL.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String("config", "", "config file path (default: $ICY_CONFIG)")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// NewVersionCmd prints build information.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.Printf("icy %s\ncommit: %s\nbuilt: %s\n", version, commit, date)
			return nil
		},
	}
}

// loadConfig resolves the config file from --config or ICY_CONFIG and
// layers flags on top.
func loadConfig(flags *pflag.FlagSet) (*config.Config, error) {
	path, _ := flags.GetString("config")
	if path == "" {
		path = config.PathFromEnv()
	}
	return config.Load(path, flags)
}
