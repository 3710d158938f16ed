// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// models.go - Lists the models the ollama responder can use.

package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeranaias/chatbubbles/internal/ollama"
)

const modelsTimeout = 10 * time.Second

func newModelsCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List models installed on the Ollama server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx, cancel := context.WithTimeout(ctx, modelsTimeout)
			defer cancel()

			client := ollama.NewClientWithConfig(&ollama.ClientConfig{
				BaseURL: cfg.Responder.OllamaURL,
				Timeout: modelsTimeout,
			})
			models, err := client.ListModels(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(models) == 0 {
				fmt.Fprintln(out, DimStyle.Render("No models installed. Pull one with: ollama pull "+ollama.DefaultModel))
				return nil
			}
			fmt.Fprintln(out, TitleStyle.Render("Models on "+client.Config().BaseURL))
			for _, m := range models {
				marker := "  "
				if m.Name == cfg.Responder.Model || m.Name == cfg.Responder.Model+":latest" {
					marker = SuccessStyle.Render("* ")
				}
				fmt.Fprintln(out, marker+RenderField(m.Name, m.FormatSize()))
			}
			return nil
		},
	}
}
