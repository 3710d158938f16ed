// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// plain.go - Line-mode chat for terminals without full-screen support.
//
// Input is read with liner. The canvas is drawn without color after every
// turn. A trailing backslash continues the message on the next line.

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/jeranaias/chatbubbles/internal/config"
	"github.com/jeranaias/chatbubbles/internal/input"
	"github.com/jeranaias/chatbubbles/internal/layout"
	"github.com/jeranaias/chatbubbles/internal/logger"
	"github.com/jeranaias/chatbubbles/internal/turn"
	"github.com/jeranaias/chatbubbles/internal/ui/styles"
)

const (
	plainPrompt         = "> "
	plainContinuePrompt = ". "
)

// lineReader is the part of *liner.State the session uses.
type lineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

func newPlainCommand(flags *globalFlags) *cobra.Command {
	var rows int

	cmd := &cobra.Command{
		Use:   "plain",
		Short: "Chat in line mode, printing the transcript after each turn",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}
			log, err := openLogger(cfg)
			if err != nil {
				return fmt.Errorf("failed to open log: %w", err)
			}
			defer log.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			line := liner.NewLiner()
			line.SetCtrlCAborts(true)
			defer line.Close()

			cols, height := GetTerminalSize()
			if rows <= 0 {
				rows = height - 2
			}
			return runPlain(ctx, cfg, log, line, cmd.OutOrStdout(), cols, rows)
		},
	}
	cmd.Flags().IntVar(&rows, "rows", 0, "canvas rows to print (default: terminal height)")
	return cmd
}

// plainDecor is the light decor. The transcript is printed without color, so
// only the avatars show.
func plainDecor() layout.Decor {
	return styles.NewTheme(styles.ModeLight).Decor()
}

// plainSession owns one line-mode conversation. All surface work runs on
// loop; the reader goroutine only blocks on it.
type plainSession struct {
	core *core
	loop *turn.Loop
	out  io.Writer
	idle chan struct{}
}

// runPlain reads lines from r until EOF, an aborted prompt, the termination
// token or ctx cancellation, then shuts the coordinator down.
func runPlain(ctx context.Context, cfg *config.Config, log *logger.Logger, r lineReader, out io.Writer, cols, rows int) error {
	if ctx == nil {
		ctx = context.Background()
	}
	loop := turn.NewLoop().Start()
	defer loop.Stop()

	c, err := newCore(cfg, log, loop, plainDecor(), cols, rows, nil)
	if err != nil {
		return err
	}

	s := &plainSession{
		core: c,
		loop: loop,
		out:  out,
		idle: make(chan struct{}, 1),
	}
	c.coord.OnStateChange(func(st turn.State) {
		if st == turn.Idle {
			select {
			case s.idle <- struct{}{}:
			default:
			}
		}
	})
	c.coord.OnError(func(err error) {
		fmt.Fprintln(out, ErrorStyle.Render("render failed: "+err.Error()))
	})

	log.Info("plain session started", "cols", cols, "rows", rows)
	loop.Do(func() {
		if err := c.coord.Start(cfg.InitialMessage()); err != nil {
			log.Error("start failed", "error", err)
		}
	})
	s.print()

	readErr := s.readLoop(ctx, r)

	if err := c.coord.Shutdown(cfg.JoinTimeout()); err != nil {
		log.Warn("shutdown", "error", err)
	}
	log.Info("plain session ended", "turns", c.coord.Turns(), "messages", c.store.Len())
	return readErr
}

func (s *plainSession) readLoop(ctx context.Context, r lineReader) error {
	var buf input.Buffer
	prompt := plainPrompt

	for {
		if ctx.Err() != nil {
			return nil
		}

		line, err := r.Prompt(prompt)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
				fmt.Fprintln(s.out)
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		}

		if buf.AddLine(line) {
			prompt = plainContinuePrompt
			continue
		}
		prompt = plainPrompt

		var res input.Result
		s.loop.Do(func() { res = s.core.gateway.SubmitFrom(&buf) })

		switch res.Outcome {
		case input.Terminated:
			return nil

		case input.Rejected:
			// Nothing can be pending here, so rejected text is dropped.
			buf.Reset()
			if !errors.Is(res.Reason, input.ErrEmptyInput) {
				fmt.Fprintln(s.out, WarningStyle.Render(res.Reason.Error()))
			}
			continue
		}

		if strings.TrimSpace(res.Text) != "" {
			r.AppendHistory(strings.ReplaceAll(res.Text, "\n", " "))
		}

		if !s.waitIdle(ctx) {
			return nil
		}
		s.print()
	}
}

// waitIdle blocks until the turn finishes. It returns false if ctx ends
// first.
func (s *plainSession) waitIdle(ctx context.Context) bool {
	select {
	case <-s.idle:
		return true
	case <-ctx.Done():
		return false
	}
}

// print writes the visible part of the canvas.
func (s *plainSession) print() {
	var view string
	s.loop.Do(func() { view = s.core.canvas.String() })
	fmt.Fprintln(s.out, strings.TrimRight(view, "\n "))
}
