package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/zappabad/candleview/internal/chart"
	"github.com/zappabad/candleview/internal/interact"
	"github.com/zappabad/candleview/internal/ohlc"
	"github.com/zappabad/candleview/internal/paging"
	"github.com/zappabad/candleview/tui/panels"
	"github.com/zappabad/candleview/tui/styles"
)

// PanelFocus represents which panel is currently focused.
type PanelFocus int

const (
	FocusChart    PanelFocus = 0
	FocusControls PanelFocus = 1
)

const panelCount = 2

// controlsHeight covers the border, the title row and one row of inputs.
const controlsHeight = 4

// Options configures a Model.
type Options struct {
	Title    string
	Interact interact.Config
	// Debounce is how long navigation must pause before a page is fetched.
	Debounce time.Duration
	// Last is the newest date shown when the first page is requested.
	Last ohlc.Date
	Log  logrus.FieldLogger
}

// Model is the main TUI application model.
type Model struct {
	ctx   context.Context
	chart *chart.Chart
	opts  Options
	log   logrus.FieldLogger

	// Panels
	chartPanel    *panels.ChartPanel
	controlsPanel *panels.ControlsPanel
	spinner       spinner.Model
	help          help.Model

	// Focus management
	focusedPanel PanelFocus

	// Window dimensions
	width  int
	height int

	// Paging
	debounceSeq uint64
	loading     int

	// Status
	statusMsg string
	ready     bool
}

// NewModel creates a new TUI model around c. Page fetches run under ctx.
func NewModel(ctx context.Context, c *chart.Chart, opts Options) *Model {
	if opts.Log == nil {
		opts.Log = logrus.WithField("component", "tui")
	}
	if opts.Last == 0 {
		opts.Last = ohlc.Today()
	}

	controls := panels.NewControlsPanel()
	controls.SetValues(c.BarSpacing(), c.Scale())

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = styles.LoadingStyle

	h := help.New()
	h.Styles.ShortKey = styles.StatusBarKeyStyle
	h.Styles.ShortDesc = styles.StatusBarDescStyle
	h.Styles.ShortSeparator = styles.StatusBarDescStyle

	m := &Model{
		ctx:           ctx,
		chart:         c,
		opts:          opts,
		log:           opts.Log,
		chartPanel:    panels.NewChartPanel(opts.Title, c, opts.Interact),
		controlsPanel: controls,
		spinner:       sp,
		help:          h,
		focusedPanel:  FocusChart,
	}
	m.syncFocus()
	return m
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.chartPanel.Init(),
		m.controlsPanel.Init(),
		m.spinner.Tick,
		m.startPaging(),
	)
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	before := m.chart.DateBounds()

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "q":
			if m.focusedPanel != FocusControls {
				return m, tea.Quit
			}

		case "?":
			if m.focusedPanel != FocusControls {
				m.help.ShowAll = !m.help.ShowAll
				m.updatePanelSizes()
				return m, nil
			}

		// Cycle focus with tab
		case "tab":
			m.cycleFocus()
			return m, nil

		case "shift+tab":
			m.focusedPanel--
			if m.focusedPanel < 0 {
				m.focusedPanel = panelCount - 1
			}
			m.syncFocus()
			return m, nil
		}
		m.updateFocusedPanel(msg, &cmds)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updatePanelSizes()
		m.ready = true

	// The pointer drives the chart whatever has keyboard focus.
	case tea.MouseMsg, panels.IdleMsg:
		var cmd tea.Cmd
		m.chartPanel, cmd = m.chartPanel.Update(msg)
		cmds = append(cmds, cmd)

	case panels.ControlSubmitMsg:
		m.applyControl(msg)

	case panels.ControlErrorMsg:
		m.statusMsg = "❌ " + msg.Err.Error()

	case debounceMsg:
		if msg.seq == m.debounceSeq {
			if req, ok := m.chart.PendingPage(); ok {
				cmds = append(cmds, m.fetch(req))
			}
		}

	case PageLoadedMsg:
		m.applyPage(msg.Result)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	default:
		m.updateFocusedPanel(msg, &cmds)
	}

	if !m.chart.DateBounds().Equal(before) && m.chart.HasPendingPage() {
		cmds = append(cmds, m.debounce())
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) updateFocusedPanel(msg tea.Msg, cmds *[]tea.Cmd) {
	var cmd tea.Cmd

	switch m.focusedPanel {
	case FocusChart:
		m.chartPanel, cmd = m.chartPanel.Update(msg)
	case FocusControls:
		m.controlsPanel, cmd = m.controlsPanel.Update(msg)
	}

	if cmd != nil {
		*cmds = append(*cmds, cmd)
	}
}

func (m *Model) applyControl(msg panels.ControlSubmitMsg) {
	var err error
	switch msg.Field {
	case panels.FieldBarSpacing:
		err = m.chart.SetBarSpacing(msg.Value)
	case panels.FieldScale:
		err = m.chart.SetScale(msg.Value)
	}
	m.controlsPanel.SetError(err)
	if err != nil {
		m.statusMsg = "❌ " + err.Error()
		return
	}
	m.statusMsg = fmt.Sprintf("✓ %s set to %g", msg.Field, msg.Value)
}

func (m *Model) applyPage(res paging.Result) {
	m.loading = max(0, m.loading-1)
	applied, err := m.chart.ApplyPage(res)
	if err != nil {
		m.log.WithError(err).WithField("request", res.ID).Error("page load failed")
		m.statusMsg = "❌ Load failed: " + err.Error()
		return
	}
	if applied {
		m.statusMsg = fmt.Sprintf("✓ Loaded %d bars in %s", len(res.Bars), res.Elapsed.Round(time.Millisecond))
	}
}

// View renders the UI.
func (m *Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	// Layout:
	// ┌─────────────────────────────────────────────┐
	// │                  Chart                      │
	// ├─────────────────────────────────────────────┤
	// │                 Controls                    │
	// └─────────────────────────────────────────────┘
	sections := []string{m.chartPanel.View(), m.controlsPanel.View()}
	if m.help.ShowAll {
		sections = append(sections, m.renderFullHelp())
	}
	sections = append(sections, m.renderStatusBar())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderFullHelp lists every binding, the chart's grouped by axis.
func (m *Model) renderFullHelp() string {
	groups := append([][]key.Binding{{focusKey, helpKey, quitKey}}, m.chartPanel.Keys().FullHelp()...)
	return lipgloss.NewStyle().Padding(0, 1).Render(m.help.FullHelpView(groups))
}

func (m *Model) renderStatusBar() string {
	bindings := append([]key.Binding{focusKey}, m.chartPanel.Keys().ShortHelp()...)
	helpStr := m.help.ShortHelpView(append(bindings, helpKey, quitKey))

	info := fmt.Sprintf(" │ %d bars", m.chart.Store().Len())
	if b, ok := m.chartPanel.Hover(); ok {
		info = " │ " + m.renderBar(b)
	}
	if m.loading > 0 {
		info += " │ " + m.spinner.View() + styles.LoadingStyle.Render(" loading")
	}
	if m.statusMsg != "" {
		info += " │ " + m.statusMsg
	}

	return styles.StatusBarStyle.Width(m.width).Render(helpStr + info)
}

func (m *Model) renderBar(b ohlc.Bar) string {
	label := m.chart.ValueAxis().TickLabel
	return fmt.Sprintf("%s O %s H %s L %s C %s %s",
		styles.TimeStyle.Render(b.Date.String()),
		label(b.Open), label(b.High), label(b.Low), label(b.Close),
		styles.FormatChange(b.Open, b.Close))
}

func (m *Model) cycleFocus() {
	m.focusedPanel = (m.focusedPanel + 1) % panelCount
	m.syncFocus()
}

func (m *Model) syncFocus() {
	m.chartPanel.SetFocus(m.focusedPanel == FocusChart)
	m.controlsPanel.SetFocus(m.focusedPanel == FocusControls)
}

func (m *Model) updatePanelSizes() {
	reserved := controlsHeight + 1
	if m.help.ShowAll {
		reserved += lipgloss.Height(m.renderFullHelp())
	}
	chartHeight := max(controlsHeight, m.height-reserved)
	m.chartPanel.SetOrigin(0, 0)
	m.chartPanel.SetSize(m.width, chartHeight)
	m.controlsPanel.SetSize(m.width, controlsHeight)
}

// startPaging requests the first page, or does nothing for a chart
// without a loader.
func (m *Model) startPaging() tea.Cmd {
	req, err := m.chart.StartPaging(m.opts.Last)
	if err != nil {
		m.log.WithError(err).Debug("paging not started")
		return nil
	}
	return m.fetch(req)
}

func (m *Model) debounce() tea.Cmd {
	m.debounceSeq++
	seq := m.debounceSeq
	return tea.Tick(m.opts.Debounce, func(time.Time) tea.Msg {
		return debounceMsg{seq: seq}
	})
}

func (m *Model) fetch(req paging.Request) tea.Cmd {
	m.loading++
	pager := m.chart.Pager()
	ctx := m.ctx
	return func() tea.Msg {
		return PageLoadedMsg{Result: pager.Fetch(ctx, req)}
	}
}

var (
	focusKey = key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "focus"))
	helpKey  = key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more"))
	quitKey  = key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit"))
)

// PageLoadedMsg carries a finished page fetch back to the event loop.
type PageLoadedMsg struct {
	Result paging.Result
}

// debounceMsg fires when navigation has paused; only the newest one fetches.
type debounceMsg struct {
	seq uint64
}
