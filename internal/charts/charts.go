// Package charts renders deck statistics as interactive HTML charts.
package charts

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/ramonehamilton/spellduel/internal/cards"
)

// ChartConfig holds configuration for charts.
type ChartConfig struct {
	Title      string   // Chart title
	Subtitle   string   // Chart subtitle
	Width      string   // Chart width (e.g., "900px")
	Height     string   // Chart height (e.g., "500px")
	Theme      string   // Chart theme
	ShowLegend bool     // Show legend
	Colors     []string // Series colors, creatures first
}

// DefaultChartConfig returns default chart configuration.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Title:      "Mana Curve",
		Width:      "900px",
		Height:     "500px",
		Theme:      "light",
		ShowLegend: true,
		Colors:     []string{"#5470C6", "#EE6666"},
	}
}

// RenderManaCurve writes a stacked bar chart of creatures and spells per
// mana cost as a standalone HTML page.
func RenderManaCurve(w io.Writer, curve []cards.CurvePoint, config ChartConfig) error {
	if len(curve) == 0 {
		return fmt.Errorf("no curve data provided")
	}
	if len(config.Colors) < 2 {
		config.Colors = DefaultChartConfig().Colors
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:  config.Width,
			Height: config.Height,
			Theme:  config.Theme,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    config.Title,
			Subtitle: config.Subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(config.ShowLegend),
		}),
		charts.WithColorsOpts(opts.Colors{config.Colors[0], config.Colors[1]}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Mana"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Cards"}),
	)

	labels := make([]string, len(curve))
	creatures := make([]opts.BarData, len(curve))
	spells := make([]opts.BarData, len(curve))
	for i, point := range curve {
		labels[i] = point.Label
		creatures[i] = opts.BarData{Value: point.Creatures}
		spells[i] = opts.BarData{Value: point.Spells}
	}

	bar.SetXAxis(labels).
		AddSeries("Creatures", creatures, charts.WithBarChartOpts(opts.BarChart{Stack: "cards"})).
		AddSeries("Spells", spells, charts.WithBarChartOpts(opts.BarChart{Stack: "cards"}))

	if err := bar.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}
