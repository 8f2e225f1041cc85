// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/relabs-tech/artificial_horizon/internal/app"
	"github.com/relabs-tech/artificial_horizon/internal/config"
)

const defaultConfigPath = "horizon_config.txt"

func newRootCommand() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "horizon",
		Short:         "horizon draws an artificial horizon from an IMU or a telemetry link",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath,
		"KEY=VALUE or YAML config file; empty uses defaults and environment")

	loadConfig := func(cmd *cobra.Command, args []string) error {
		path := configPath
		if !cmd.Flags().Changed("config") {
			// The default file is optional.
			if _, err := os.Stat(path); err != nil {
				path = ""
			}
		}
		if err := config.InitGlobal(path); err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	}

	rootCmd.AddCommand(newRunCommand(loadConfig))
	rootCmd.AddCommand(newMonitorCommand(loadConfig))
	rootCmd.AddCommand(newVersionCommand())
	return rootCmd
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func newRunCommand(pre func(*cobra.Command, []string) error) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Runs the horizon in the configured role (source, sink or standalone)",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			// The flag goes through the same validation as the file.
			if role, _ := cmd.Flags().GetString("role"); role != "" {
				os.Setenv("ROLE", role)
			}
			return pre(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()
			return app.Run(ctx, config.Get())
		},
	}
	cmd.Flags().String("role", "", "Overrides ROLE from the config file")
	return cmd
}

func newMonitorCommand(pre func(*cobra.Command, []string) error) *cobra.Command {
	return &cobra.Command{
		Use:     "monitor",
		Short:   "Prints the frames arriving on the configured link",
		PreRunE: pre,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()
			return app.RunMonitor(ctx, config.Get())
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Prints the application version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("Version: %s\n", version)
			return nil
		},
	}
}
