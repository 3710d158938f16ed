// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config_cmd.go - The "config" command group.

package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/chatbubbles/internal/config"
)

func newConfigCommand(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create, inspect and edit the config file",
	}
	cmd.AddCommand(
		newConfigInitCommand(flags),
		newConfigPathCommand(flags),
		newConfigShowCommand(flags),
		newConfigGetCommand(flags),
		newConfigSetCommand(flags),
	)
	return cmd
}

// =============================================================================
// CONFIG INIT
// =============================================================================

func newConfigInitCommand(flags *globalFlags) *cobra.Command {
	var (
		force  bool
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := flags.configPath
			if path == "" {
				var err error
				if asJSON {
					path, err = config.ConfigPathJSON()
				} else {
					path, err = config.ConfigPathTOML()
				}
				if err != nil {
					return NewCommandError("config", "init", "cannot locate config directory", err)
				}
			}

			if _, err := os.Stat(path); err == nil && !force {
				return &UsageError{Message: fmt.Sprintf("%s already exists (use --force to overwrite)", path)}
			}
			if err := config.SaveAuto(config.Default(), path); err != nil {
				return NewCommandError("config", "init", "write failed", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render("Wrote ")+path)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "write config.json instead of config.toml")
	return cmd
}

// =============================================================================
// CONFIG PATH / SHOW
// =============================================================================

func newConfigPathCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			path := flags.path()
			fmt.Fprintln(out, path)
			if _, err := os.Stat(path); err != nil {
				fmt.Fprintln(out, DimStyle.Render("(file does not exist; defaults are in use)"))
			}
			return nil
		},
	}
}

func newConfigShowCommand(flags *globalFlags) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Long: `Print the configuration after the file, CHATBUBBLES_* environment
variables and command-line flags have been applied.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(cfg)
			}
			fmt.Fprint(out, cfg.String())
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

// =============================================================================
// CONFIG GET / SET
// =============================================================================

func newConfigGetCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "get <key>",
		Short:   "Print one effective setting",
		Example: "  chatbubbles config get responder.kind",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}
			v, err := cfg.Get(args[0])
			if err != nil {
				return &UsageError{Message: err.Error()}
			}
			if v == nil {
				v = "(unset)"
			}
			fmt.Fprintln(cmd.OutOrStdout(), v)
			return nil
		},
	}
}

func newConfigSetCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one setting in the config file",
		Long: `Change one setting in the config file, creating the file if needed.
Environment variables and flags are not written to the file.`,
		Example: `  chatbubbles config set ui.theme dark
  chatbubbles config set first_message ""`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]
			path := flags.path()
			if path == "" {
				return NewCommandError("config", "set", "cannot locate config directory", nil)
			}

			// Read the file alone so env and flag values are not persisted.
			cfg := config.Default()
			if _, err := os.Stat(path); err == nil {
				var lerr error
				if strings.HasSuffix(path, ".json") {
					lerr = config.LoadJSON(cfg, path)
				} else {
					lerr = config.LoadTOML(cfg, path)
				}
				if lerr != nil {
					return &ConfigError{Err: lerr}
				}
			}

			if err := cfg.Set(key, value); err != nil {
				return &UsageError{Message: err.Error()}
			}
			if err := cfg.Validate(); err != nil {
				return &ConfigError{Err: err}
			}
			if err := config.SaveAuto(cfg, path); err != nil {
				return NewCommandError("config", "set", "write failed", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s = %q\n", SuccessStyle.Render("Set"), key, value)
			return nil
		},
	}
}
