package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zappabad/candleview/internal/chart"
	"github.com/zappabad/candleview/internal/ohlc"
	"github.com/zappabad/candleview/internal/paging"
	"github.com/zappabad/candleview/tui/panels"
)

var jan1 = ohlc.NewDate(2024, time.January, 1)

func newTestModel(t *testing.T, calls *int) *Model {
	t.Helper()
	cfg := chart.DefaultConfig()
	cfg.Render.BodyWidth = 1
	cfg.Paging.PageSize = 10
	cfg.Paging.RequestsPerSecond = 0
	cfg.Paging.InitialBackoff = time.Millisecond

	loader := paging.LoaderFunc(func(_ context.Context, lower ohlc.Date, pageSize int) ([]ohlc.Bar, error) {
		*calls++
		w := paging.Window(lower, pageSize)
		var out []ohlc.Bar
		for d := w.Lower; d <= w.Upper; d++ {
			out = append(out, ohlc.Bar{Date: d, Open: 100, High: 102, Low: 99, Close: 101})
		}
		return out, nil
	})

	logger, _ := test.NewNullLogger()
	c := chart.New(cfg, loader)
	c.SetLogger(logger)

	m := NewModel(context.Background(), c, Options{Title: "TEST", Last: jan1, Log: logger})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return m
}

// run executes cmd and any batch it expands to, collecting the messages.
func run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	switch msg := cmd().(type) {
	case nil:
		return nil
	case tea.BatchMsg:
		var out []tea.Msg
		for _, c := range msg {
			out = append(out, run(c)...)
		}
		return out
	default:
		return []tea.Msg{msg}
	}
}

func feed(m *Model, msgs []tea.Msg) []tea.Msg {
	var out []tea.Msg
	for _, msg := range msgs {
		_, cmd := m.Update(msg)
		out = append(out, run(cmd)...)
	}
	return out
}

func TestInitialPageLoads(t *testing.T) {
	calls := 0
	m := newTestModel(t, &calls)

	msgs := run(m.startPaging())
	require.Len(t, msgs, 1)
	require.IsType(t, PageLoadedMsg{}, msgs[0])
	assert.Equal(t, 1, m.loading)

	feed(m, msgs)
	assert.Equal(t, 0, m.loading)
	assert.Equal(t, 11, m.chart.Store().Len())
	assert.Contains(t, m.statusMsg, "Loaded 11 bars")
	assert.Equal(t, 1, calls)
}

func TestNavigationFetchesAfterDebounce(t *testing.T) {
	calls := 0
	m := newTestModel(t, &calls)
	feed(m, run(m.startPaging()))

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	assert.True(t, m.chart.HasPendingPage())

	msgs := run(cmd)
	require.Len(t, msgs, 1)
	require.IsType(t, debounceMsg{}, msgs[0])

	loaded := feed(m, msgs)
	require.Len(t, loaded, 1)
	require.IsType(t, PageLoadedMsg{}, loaded[0])

	view := m.chart.DateBounds()
	feed(m, loaded)
	assert.Equal(t, 2, calls)
	assert.Equal(t, view, m.chart.DateBounds())
	assert.False(t, m.chart.HasPendingPage())
}

func TestSupersededDebounceDoesNotFetch(t *testing.T) {
	calls := 0
	m := newTestModel(t, &calls)
	feed(m, run(m.startPaging()))

	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	first := m.debounceSeq
	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	require.Greater(t, m.debounceSeq, first)

	_, cmd := m.Update(debounceMsg{seq: first})
	assert.Empty(t, run(cmd))
	assert.True(t, m.chart.HasPendingPage())
	assert.Equal(t, 1, calls)
}

func TestMouseDrivesChartWithoutFocus(t *testing.T) {
	calls := 0
	m := newTestModel(t, &calls)
	feed(m, run(m.startPaging()))
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, FocusControls, m.focusedPanel)

	before := m.chart.DateBounds()
	m.Update(tea.MouseMsg{X: 20, Y: 8, Button: tea.MouseButtonWheelUp, Action: tea.MouseActionPress})
	assert.Less(t, m.chart.DateBounds().Span(), before.Span())
}

func TestControlSubmitAppliesToChart(t *testing.T) {
	calls := 0
	m := newTestModel(t, &calls)

	m.Update(panels.ControlSubmitMsg{Field: panels.FieldScale, Value: 5})
	assert.Equal(t, 5.0, m.chart.Scale())
	assert.Contains(t, m.statusMsg, "scale set to 5")

	m.Update(panels.ControlSubmitMsg{Field: panels.FieldBarSpacing, Value: -1})
	assert.ErrorIs(t, m.controlsPanel.lastErr, chart.ErrInvalidControl)
	assert.Contains(t, m.statusMsg, "❌")
}

func TestQuitKeys(t *testing.T) {
	calls := 0
	m := newTestModel(t, &calls)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())

	// typing in the controls does not quit
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	assert.Equal(t, "q", m.controlsPanel.spacingInput.Value())
}

func TestViewRendersPanels(t *testing.T) {
	calls := 0
	m := newTestModel(t, &calls)
	feed(m, run(m.startPaging()))
	m.statusMsg = ""

	out := m.View()
	assert.Contains(t, out, "TEST")
	assert.Contains(t, out, "Controls")
	assert.Contains(t, out, "11 bars")
}

func TestHelpKeyTogglesFullHelp(t *testing.T) {
	calls := 0
	m := newTestModel(t, &calls)
	feed(m, run(m.startPaging()))
	m.statusMsg = ""

	short := lipgloss.Height(m.chartPanel.View())
	assert.NotContains(t, m.View(), "zoom out")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("?")})
	assert.Nil(t, cmd)
	assert.True(t, m.help.ShowAll)
	out := m.View()
	assert.Contains(t, out, "zoom out")
	assert.Contains(t, out, "price down")
	assert.Less(t, lipgloss.Height(m.chartPanel.View()), short)
	assert.LessOrEqual(t, lipgloss.Height(out), 30)

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("?")})
	assert.False(t, m.help.ShowAll)
	assert.Equal(t, short, lipgloss.Height(m.chartPanel.View()))

	// in the controls the key is just text
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("?")})
	assert.False(t, m.help.ShowAll)
}
