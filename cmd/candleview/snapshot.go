package main

import (
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/zappabad/candleview/internal/app"
	"github.com/zappabad/candleview/internal/chart"
	"github.com/zappabad/candleview/internal/feed"
	"github.com/zappabad/candleview/internal/ohlc"
	"github.com/zappabad/candleview/internal/render"
)

func init() {
	SnapshotCmd.Flags().StringP("out", "o", "chart.png", "output PNG file")
	SnapshotCmd.Flags().String("from", "", "first date, YYYY-MM-DD (default 90 days before --to)")
	SnapshotCmd.Flags().String("to", "", "last date, YYYY-MM-DD (default today)")
	SnapshotCmd.Flags().Int("width", 1200, "image width in pixels")
	SnapshotCmd.Flags().Int("height", 600, "image height in pixels")
	SnapshotCmd.Flags().Int("margin", 80, "space for tick labels in pixels")
	RootCmd.AddCommand(SnapshotCmd)
}

var SnapshotCmd = &cobra.Command{
	Use:          "snapshot",
	Short:        "render a date range of the feed to a PNG file",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger, closer, err := app.NewLogger(cfg.Log, os.Stderr)
		if err != nil {
			return err
		}
		defer closer.Close()

		from, to, err := dateFlags(cmd, 90)
		if err != nil {
			return err
		}

		flags := cmd.Flags()
		out, _ := flags.GetString("out")
		width, _ := flags.GetInt("width")
		height, _ := flags.GetInt("height")
		margin, _ := flags.GetInt("margin")

		walk := feed.NewRandomWalk(cfg.Feed)
		walk.SetLogger(logger.WithField("component", "feed"))
		bars, err := walk.Generate(from, to)
		if err != nil {
			return err
		}

		c := chart.New(cfg.Chart, nil)
		c.SetLogger(logger.WithField("component", "chart"))
		if err := c.SetSeries(bars); err != nil {
			return err
		}

		surface, err := render.NewPNGSurface(width, height, margin, c.Renderer().Palette().Background)
		if err != nil {
			return err
		}
		c.Layout(surface.PlotSize())
		if !c.Draw(surface) {
			return errors.New("chart could not be drawn, see log")
		}

		f, err := os.Create(out)
		if err != nil {
			return errors.Wrapf(err, "create %s", out)
		}
		defer f.Close()
		if err := surface.Save(f); err != nil {
			return err
		}

		logger.WithFields(logrus.Fields{
			"bars": len(bars),
			"from": from,
			"to":   to,
		}).Infof("wrote %s", out)
		return nil
	},
}

// dateFlags reads --from and --to. A missing --to is today and a missing
// --from is span days before --to.
func dateFlags(cmd *cobra.Command, span int) (ohlc.Date, ohlc.Date, error) {
	to := ohlc.Today()
	if s, _ := cmd.Flags().GetString("to"); s != "" {
		d, err := ohlc.ParseDate(s)
		if err != nil {
			return 0, 0, errors.Wrap(err, "--to")
		}
		to = d
	}
	from := to.AddDays(-span)
	if s, _ := cmd.Flags().GetString("from"); s != "" {
		d, err := ohlc.ParseDate(s)
		if err != nil {
			return 0, 0, errors.Wrap(err, "--from")
		}
		from = d
	}
	if from.After(to) {
		return 0, 0, errors.Wrapf(ohlc.ErrInvalidRange, "--from %s is after --to %s", from, to)
	}
	return from, to, nil
}
