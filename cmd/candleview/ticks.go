package main

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/zappabad/candleview/internal/chart"
)

func init() {
	TicksCmd.Flags().String("from", "", "first date, YYYY-MM-DD (default 30 days before --to)")
	TicksCmd.Flags().String("to", "", "last date, YYYY-MM-DD (default today)")
	TicksCmd.Flags().Float64("low", 0, "lowest price")
	TicksCmd.Flags().Float64("high", 100, "highest price")
	TicksCmd.Flags().Float64("unit", 0, "manual price tick unit (default automatic)")
	TicksCmd.Flags().Float64("width", 800, "date axis length in pixels")
	TicksCmd.Flags().Float64("height", 400, "price axis length in pixels")
	RootCmd.AddCommand(TicksCmd)
}

var TicksCmd = &cobra.Command{
	Use:          "ticks",
	Short:        "print the axis ticks for a date and price range",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		from, to, err := dateFlags(cmd, 30)
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		low, _ := flags.GetFloat64("low")
		high, _ := flags.GetFloat64("high")
		unit, _ := flags.GetFloat64("unit")
		width, _ := flags.GetFloat64("width")
		height, _ := flags.GetFloat64("height")

		c := chart.New(cfg.Chart, nil)
		c.Layout(width, height)
		if err := c.SetDateRange(from, to); err != nil {
			return err
		}
		if err := c.SetValueRange(low, high); err != nil {
			return err
		}
		if unit > 0 {
			if err := c.SetScale(unit); err != nil {
				return err
			}
		}

		dates, values := c.DateAxis(), c.ValueAxis()

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.SetStyle(table.StyleRounded)
		t.SetTitle(fmt.Sprintf("%s → %s, %s → %s", from, to, values.TickLabel(low), values.TickLabel(high)))
		t.AppendHeader(table.Row{"Axis", "Value", "Label", "Pixel"})
		t.SetColumnConfigs([]table.ColumnConfig{
			{Name: "Pixel", Align: text.AlignRight},
		})

		for _, d := range dates.TickValues() {
			t.AppendRow(table.Row{"date", int64(d), dates.TickLabel(d), fmt.Sprintf("%.1f", dates.DisplayPosition(d))})
		}
		t.AppendSeparator()
		for _, v := range values.TickValues() {
			t.AppendRow(table.Row{"price", v, values.TickLabel(v), fmt.Sprintf("%.1f", values.DisplayPosition(v))})
		}
		t.AppendFooter(table.Row{"", "", "minor ticks", fmt.Sprintf("%d / %d", len(dates.MinorTickValues()), len(values.MinorTickValues()))})
		t.Render()
		return nil
	},
}
