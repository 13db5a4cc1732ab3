package main

import (
	"context"
	"io"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/zappabad/candleview/internal/app"
	"github.com/zappabad/candleview/internal/chart"
	"github.com/zappabad/candleview/internal/feed"
	"github.com/zappabad/candleview/internal/ohlc"
	"github.com/zappabad/candleview/tui"
)

// defaultTUILog keeps log lines off the alternate screen.
const defaultTUILog = "candleview.log"

func init() {
	RunCmd.Flags().String("title", "RANDOM WALK", "chart title")
	RunCmd.Flags().String("last", "", "newest date of the first page, YYYY-MM-DD (default today)")
	RootCmd.AddCommand(RunCmd)
}

var RunCmd = &cobra.Command{
	Use:          "run",
	Short:        "open the interactive chart",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cfg.Log.File == "" {
			cfg.Log.File = defaultTUILog
		}
		logger, closer, err := app.NewLogger(cfg.Log, io.Discard)
		if err != nil {
			return err
		}
		defer closer.Close()

		last := ohlc.Today()
		if s, _ := cmd.Flags().GetString("last"); s != "" {
			if last, err = ohlc.ParseDate(s); err != nil {
				return err
			}
		}

		// one terminal cell per pixel leaves room for one column per body
		cfg.Chart.Render.BodyWidth = 1

		walk := feed.NewRandomWalk(cfg.Feed)
		walk.SetLogger(logger.WithField("component", "feed"))

		c := chart.New(cfg.Chart, walk)
		c.SetLogger(logger.WithField("component", "chart"))

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM)
		defer stop()

		title, _ := cmd.Flags().GetString("title")
		model := tui.NewModel(ctx, c, tui.Options{
			Title:    title,
			Interact: cfg.Interact,
			Debounce: cfg.Chart.Paging.Debounce,
			Last:     last,
			Log:      logger.WithField("component", "tui"),
		})

		logger.Infof("starting chart ending %s", last)
		p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseAllMotion(), tea.WithContext(ctx))
		if _, err := p.Run(); err != nil && !errors.Is(err, context.Canceled) {
			return errors.Wrap(err, "run TUI")
		}
		return nil
	},
}
