package styles

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/zappabad/candleview/internal/render"
)

// Color palette. Colours the chart also draws with come from the
// renderer's palette so candles and text agree.
var (
	// Primary colors
	PrimaryColor = lipgloss.Color("#7C3AED") // Purple
	AccentColor  = lipgloss.Color("#F59E0B") // Amber

	// Candle colors
	BuyColor  = fromRender(render.Green)
	SellColor = fromRender(render.Red)

	// Background colors
	BackgroundColor  = fromRender(render.Charcoal)
	BorderColor      = fromRender(render.Gray)
	FocusBorderColor = PrimaryColor

	// Text colors
	TextColor          = fromRender(render.White)
	TextSecondaryColor = lipgloss.Color("#9CA3AF")
	TextMutedColor     = fromRender(render.Muted)
)

func fromRender(c render.Color) lipgloss.Color { return lipgloss.Color(c.Hex()) }

// Panel styles
var (
	// Base panel style
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderColor).
			Padding(0, 1)

	// Focused panel style
	FocusedPanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(FocusBorderColor).
				Padding(0, 1)

	// Panel title style
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor).
			Padding(0, 1)
)

// Text styles
var (
	PriceStyle = lipgloss.NewStyle().
			Foreground(TextColor)

	PriceUpStyle = lipgloss.NewStyle().
			Foreground(BuyColor)

	PriceDownStyle = lipgloss.NewStyle().
			Foreground(SellColor)

	TimeStyle = lipgloss.NewStyle().
			Foreground(TextMutedColor)

	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(SellColor)

	LoadingStyle = lipgloss.NewStyle().
			Foreground(AccentColor)
)

// Input styles
var (
	LabelStyle = lipgloss.NewStyle().
			Foreground(TextSecondaryColor)

	PlaceholderStyle = lipgloss.NewStyle().
				Foreground(TextMutedColor)
)

// Status bar styles
var (
	StatusBarStyle = lipgloss.NewStyle().
			Background(BackgroundColor).
			Foreground(TextSecondaryColor).
			Padding(0, 1)

	StatusBarKeyStyle = lipgloss.NewStyle().
				Foreground(PrimaryColor).
				Bold(true)

	StatusBarDescStyle = lipgloss.NewStyle().
				Foreground(TextSecondaryColor)
)

// Helper function to render a title bar for a panel
func RenderTitle(title string, focused bool) string {
	style := TitleStyle
	if focused {
		style = style.Foreground(FocusBorderColor)
	}
	return style.Render(title)
}

// FormatChange renders the move from open to close as a signed percentage,
// coloured by direction.
func FormatChange(open, close float64) string {
	if open == 0 {
		return PriceStyle.Render("--")
	}
	pct := (close - open) / open * 100
	s := fmt.Sprintf("%+.2f%%", pct)
	switch {
	case pct > 0:
		return PriceUpStyle.Render(s)
	case pct < 0:
		return PriceDownStyle.Render(s)
	}
	return PriceStyle.Render(s)
}
