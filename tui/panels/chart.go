package panels

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zappabad/candleview/internal/axis"
	"github.com/zappabad/candleview/internal/chart"
	"github.com/zappabad/candleview/internal/interact"
	"github.com/zappabad/candleview/internal/ohlc"
	"github.com/zappabad/candleview/tui/styles"
)

// gutterWidth is the number of columns reserved for value labels.
const gutterWidth = 11

// ChartKeyMap holds the keyboard navigation bindings.
type ChartKeyMap struct {
	ZoomIn     key.Binding
	ZoomOut    key.Binding
	PanLeft    key.Binding
	PanRight   key.Binding
	ValuesUp   key.Binding
	ValuesDown key.Binding
	Reset      key.Binding
}

// DefaultChartKeyMap returns the default navigation keys.
func DefaultChartKeyMap() ChartKeyMap {
	return ChartKeyMap{
		ZoomIn:     key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+/-", "zoom")),
		ZoomOut:    key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "zoom out")),
		PanLeft:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/→", "pan")),
		PanRight:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→", "pan later")),
		ValuesUp:   key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/↓", "price")),
		ValuesDown: key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓", "price down")),
		Reset:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
	}
}

// ShortHelp returns the bindings shown in the status bar.
func (k ChartKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.ZoomIn, k.PanLeft, k.ValuesUp, k.Reset}
}

// FullHelp returns every binding, grouped by axis.
func (k ChartKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.ZoomIn, k.ZoomOut, k.PanLeft, k.PanRight},
		{k.ValuesUp, k.ValuesDown, k.Reset},
	}
}

// IdleMsg is delivered when a drag idle timer fires.
type IdleMsg struct {
	Seq uint64
}

// ChartPanel displays the candlestick chart and turns keyboard and mouse
// input into navigation.
type ChartPanel struct {
	chart    *chart.Chart
	gestures *interact.Controller
	canvas   *CellCanvas
	keys     ChartKeyMap

	title string
	hover *ohlc.Bar

	focused bool
	x, y    int
	width   int
	height  int
}

// NewChartPanel creates a new chart panel around c.
func NewChartPanel(title string, c *chart.Chart, icfg interact.Config) *ChartPanel {
	return &ChartPanel{
		chart:    c,
		gestures: interact.NewController(c, icfg),
		canvas:   NewCellCanvas(gutterWidth, c.Renderer().Palette().Grid),
		keys:     DefaultChartKeyMap(),
		title:    title,
	}
}

// Init initializes the panel.
func (p *ChartPanel) Init() tea.Cmd {
	return nil
}

// Keys returns the navigation bindings for help rendering.
func (p *ChartPanel) Keys() ChartKeyMap { return p.keys }

// Gestures returns the mouse gesture controller.
func (p *ChartPanel) Gestures() *interact.Controller { return p.gestures }

// Update handles messages for the panel.
func (p *ChartPanel) Update(msg tea.Msg) (*ChartPanel, tea.Cmd) {
	switch msg := msg.(type) {
	case IdleMsg:
		p.gestures.IdleTimeout(msg.Seq)
		return p, nil

	case tea.MouseMsg:
		return p, p.handleMouse(msg)

	case tea.KeyMsg:
		if !p.focused {
			return p, nil
		}
		switch {
		case key.Matches(msg, p.keys.ZoomIn):
			p.chart.ZoomIn()
		case key.Matches(msg, p.keys.ZoomOut):
			p.chart.ZoomOut()
		case key.Matches(msg, p.keys.PanLeft):
			_ = p.chart.PanLeft()
		case key.Matches(msg, p.keys.PanRight):
			_ = p.chart.PanRight()
		case key.Matches(msg, p.keys.ValuesUp):
			p.chart.PanValues(axis.Forward)
		case key.Matches(msg, p.keys.ValuesDown):
			p.chart.PanValues(axis.Backward)
		case key.Matches(msg, p.keys.Reset):
			p.chart.ResetView()
		}
	}
	return p, nil
}

// plotOrigin is the screen cell of plot pixel (0, 0): inside the border,
// the left padding and the title row.
func (p *ChartPanel) plotOrigin() (int, int) { return p.x + 2, p.y + 2 }

func (p *ChartPanel) inPlot(col, row int) bool {
	w, h := p.chart.Renderer().Size()
	return col >= 0 && row >= 0 && float64(col) < w && float64(row) < h
}

func (p *ChartPanel) handleMouse(msg tea.MouseMsg) tea.Cmd {
	ox, oy := p.plotOrigin()
	col, row := msg.X-ox, msg.Y-oy
	x, y := float64(col), float64(row)

	var e interact.Effect
	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		if !p.inPlot(col, row) {
			return nil
		}
		e = p.gestures.Scroll(1, x, y)
	case msg.Button == tea.MouseButtonWheelDown:
		if !p.inPlot(col, row) {
			return nil
		}
		e = p.gestures.Scroll(-1, x, y)
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		if !p.inPlot(col, row) {
			return nil
		}
		e = p.gestures.Press(x)
	case msg.Action == tea.MouseActionMotion && p.gestures.State() == interact.Dragging:
		e = p.gestures.Drag(x)
	case msg.Action == tea.MouseActionRelease:
		e = p.gestures.Release()
	case msg.Action == tea.MouseActionMotion:
		p.updateHover(col, row)
		return nil
	}

	if e.ArmIdle {
		seq := e.Seq
		return tea.Tick(p.gestures.IdleDelay(), func(_ time.Time) tea.Msg {
			return IdleMsg{Seq: seq}
		})
	}
	return nil
}

func (p *ChartPanel) updateHover(col, row int) {
	p.hover = nil
	if !p.inPlot(col, row) {
		return
	}
	if b, ok := p.chart.BarAt(float64(col)); ok {
		p.hover = &b
	}
}

// Hover returns the bar under the mouse pointer, if any.
func (p *ChartPanel) Hover() (ohlc.Bar, bool) {
	if p.hover == nil {
		return ohlc.Bar{}, false
	}
	return *p.hover, true
}

// View renders the panel.
func (p *ChartPanel) View() string {
	var content strings.Builder

	if p.chart.Store().Len() == 0 {
		content.WriteString(lipgloss.NewStyle().Foreground(styles.TextMutedColor).Render("No data loaded yet..."))
	} else if p.chart.Draw(p.canvas) {
		content.WriteString(p.canvas.String())
	} else {
		content.WriteString(lipgloss.NewStyle().Foreground(styles.SellColor).Render("frame skipped, see log"))
	}

	panelStyle := styles.PanelStyle
	if p.focused {
		panelStyle = styles.FocusedPanelStyle
	}

	r := p.chart.DateBounds()
	cursor := ""
	if p.gestures.Cursor() == interact.CursorClosedHand {
		cursor = " ✊"
	}
	title := styles.RenderTitle(fmt.Sprintf("📈 %s  %s → %s%s", p.title, r.Lower, r.Upper, cursor), p.focused)
	panel := lipgloss.JoinVertical(lipgloss.Left, title, content.String())

	return panelStyle.Width(p.width - 2).Height(p.height - 2).Render(panel)
}

// SetFocus sets the focus state of the panel.
func (p *ChartPanel) SetFocus(focused bool) {
	p.focused = focused
}

// SetOrigin sets the screen position of the panel's top-left corner.
func (p *ChartPanel) SetOrigin(x, y int) {
	p.x, p.y = x, y
}

// SetSize sets the panel dimensions and lays the chart out in the space
// left after the border, title, labels and padding.
func (p *ChartPanel) SetSize(width, height int) {
	if width == p.width && height == p.height {
		return
	}
	p.width = width
	p.height = height

	plotW := max(1, width-4-gutterWidth)
	plotH := max(1, height-4)
	p.chart.Layout(float64(plotW), float64(plotH))
}
