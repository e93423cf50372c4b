//go:build !gui

package main

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/metcalfc/trustfall/internal/config"
	"github.com/metcalfc/trustfall/internal/tui"
)

func newPlayCommand(ctx *commandContext) *cobra.Command {
	var flags playFlags

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play the story in the terminal",
		Long: `Play the story in the terminal.

Controls:
  SPACE/ENTER/CLICK  Skip the typing, then continue
  ↑/↓ ←/→            Move between menu entries and factions
  ESC                Back to the main menu
  Q                  Quit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !config.IsTerminal(os.Stdout) || !config.IsTerminal(os.Stdin) {
				return errors.New("play needs an interactive terminal; try `trustfall serve` or `trustfall slides`")
			}
			cfg, err := ctx.config()
			if err != nil {
				return err
			}
			log, cleanup, err := ctx.logger(false)
			if err != nil {
				return err
			}
			defer cleanup()

			p, err := newPlayer(cfg, flags, log)
			if err != nil {
				return err
			}
			defer p.Close()

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM)
			defer stop()

			return tui.Run(runCtx, tui.Options{
				Store:          p.store,
				Story:          p.story,
				Images:         p.images,
				Music:          p.music,
				Effects:        p.effects,
				Subscriber:     p.subscriber,
				Typing:         cfg.Story.TypingInterval(),
				Transition:     transition(cfg),
				Priority:       cfg.Story.PriorityImages,
				RequireGesture: cfg.Audio.RequireGesture,
				Logger:         log,
			})
		},
	}
	flags.bind(cmd)
	return cmd
}
