// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// root.go - Root command and global flags.

package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jeranaias/chatbubbles/internal/config"
	"github.com/jeranaias/chatbubbles/internal/responder"
)

// Version information, set by main from ldflags.
var (
	Version   = "dev"
	GitCommit = "none"
	BuildDate = "unknown"
)

// SetVersionInfo sets version information from ldflags.
func SetVersionInfo(v, c, d string) {
	Version, GitCommit, BuildDate = v, c, d
}

// =============================================================================
// GLOBAL FLAGS
// =============================================================================

// globalFlags override the loaded configuration. Empty values leave the
// config untouched.
type globalFlags struct {
	configPath string
	responder  string
	model      string
	ollamaURL  string
	theme      string
	token      string
	title      string
	logLevel   string
	noWelcome  bool
	noMouse    bool
}

func (f *globalFlags) register(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.StringVarP(&f.configPath, "config", "c", "", "config file (default ~/.chatbubbles/config.toml)")
	pf.StringVar(&f.responder, "responder", "", `reply producer: "echo" or "ollama"`)
	pf.StringVarP(&f.model, "model", "m", "", "Ollama model for the ollama responder")
	pf.StringVar(&f.ollamaURL, "ollama-url", "", "Ollama server URL")
	pf.StringVar(&f.theme, "theme", "", `color theme: "auto", "dark" or "light"`)
	pf.StringVar(&f.token, "token", "", "termination token that ends the session")
	pf.StringVar(&f.title, "title", "", "window title")
	pf.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.BoolVar(&f.noWelcome, "no-welcome", false, "do not show the welcome bubble")
	pf.BoolVar(&f.noMouse, "no-mouse", false, "disable mouse wheel scrolling")
}

// apply writes the set flags over cfg.
func (f *globalFlags) apply(cfg *config.Config) {
	if f.responder != "" {
		cfg.Responder.Kind = responder.NormalizeKind(f.responder)
	}
	if f.model != "" {
		cfg.Responder.Model = f.model
	}
	if f.ollamaURL != "" {
		cfg.Responder.OllamaURL = f.ollamaURL
	}
	if f.theme != "" {
		cfg.UI.Theme = f.theme
	}
	if f.token != "" {
		cfg.TerminationToken = f.token
	}
	if f.title != "" {
		cfg.Title = f.title
	}
	if f.logLevel != "" {
		cfg.Log.Level = f.logLevel
	}
	if f.noWelcome {
		empty := ""
		cfg.FirstMessage = &empty
	}
	if f.noMouse {
		cfg.UI.Mouse = false
	}
}

// path returns the config file to read and watch.
func (f *globalFlags) path() string {
	if f.configPath != "" {
		return f.configPath
	}
	if p := config.ActivePath(); p != "" {
		return p
	}
	p, err := config.ConfigPathTOML()
	if err != nil {
		return ""
	}
	return p
}

// load reads the configuration and applies flag overrides.
func (f *globalFlags) load() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if f.configPath != "" {
		cfg, err = config.LoadFromPath(f.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, &ConfigError{Err: err}
	}

	f.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, &ConfigError{Err: err}
	}
	return cfg, nil
}

// =============================================================================
// ROOT COMMAND
// =============================================================================

// NewRootCommand builds the command tree. The root command runs the
// full-screen chat.
func NewRootCommand() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "chatbubbles",
		Short: "Terminal chat with message bubbles",
		Long: `chatbubbles is a terminal chat client that draws the conversation as
message bubbles: your messages on the right, replies on the left.

Replies come from a built-in echo responder or a local Ollama model.
Type the termination token (default "quit") or press ctrl+c to leave.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), flags)
		},
	}
	root.Version = Version
	root.SetVersionTemplate(versionTemplate())
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &UsageError{Message: err.Error()}
	})
	flags.register(root)

	root.AddCommand(
		newPlainCommand(flags),
		newConfigCommand(flags),
		newModelsCommand(flags),
		newVersionCommand(),
	)
	return root
}

// Execute runs the command tree and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := NewRootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		DisplayError(stderr, err)
		return GetExitCode(err)
	}
	return ExitSuccess
}

func versionTemplate() string {
	if GitCommit != "none" && GitCommit != "" {
		return fmt.Sprintf("chatbubbles %s\n  commit: %s\n  built:  %s\n", Version, GitCommit, BuildDate)
	}
	return fmt.Sprintf("chatbubbles %s\n", Version)
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprint(cmd.OutOrStdout(), versionTemplate())
		},
	}
}
