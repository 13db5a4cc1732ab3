package panels

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"

	"github.com/zappabad/candleview/tui/styles"
)

// ControlField represents the currently focused control.
type ControlField int

const (
	FieldBarSpacing ControlField = iota
	FieldScale
)

func (f ControlField) String() string {
	if f == FieldScale {
		return "scale"
	}
	return "bar spacing"
}

// ControlsPanel edits the bar spacing and value tick unit.
type ControlsPanel struct {
	spacingInput textinput.Model
	scaleInput   textinput.Model

	currentField ControlField
	lastErr      error

	focused bool
	width   int
	height  int
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel() *ControlsPanel {
	spacingInput := textinput.New()
	spacingInput.Placeholder = "0"
	spacingInput.Width = 8
	spacingInput.CharLimit = 8

	scaleInput := textinput.New()
	scaleInput.Placeholder = "1"
	scaleInput.Width = 8
	scaleInput.CharLimit = 8

	return &ControlsPanel{
		spacingInput: spacingInput,
		scaleInput:   scaleInput,
		currentField: FieldBarSpacing,
	}
}

// Init initializes the panel.
func (p *ControlsPanel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the panel.
func (p *ControlsPanel) Update(msg tea.Msg) (*ControlsPanel, tea.Cmd) {
	if !p.focused {
		return p, nil
	}

	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, key.NewBinding(key.WithKeys("down", "up"))):
			p.switchField()
			return p, nil

		case key.Matches(msg, key.NewBinding(key.WithKeys("enter"))):
			return p, p.submit()
		}
	}

	switch p.currentField {
	case FieldBarSpacing:
		p.spacingInput, cmd = p.spacingInput.Update(msg)
	case FieldScale:
		p.scaleInput, cmd = p.scaleInput.Update(msg)
	}

	return p, cmd
}

func (p *ControlsPanel) switchField() {
	if p.currentField == FieldBarSpacing {
		p.currentField = FieldScale
		p.spacingInput.Blur()
		p.scaleInput.Focus()
		return
	}
	p.currentField = FieldBarSpacing
	p.scaleInput.Blur()
	p.spacingInput.Focus()
}

func (p *ControlsPanel) input() textinput.Model {
	if p.currentField == FieldScale {
		return p.scaleInput
	}
	return p.spacingInput
}

func (p *ControlsPanel) submit() tea.Cmd {
	field := p.currentField
	raw := strings.TrimSpace(p.input().Value())
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		err = errors.Errorf("%s: %q is not a number", field, raw)
		p.lastErr = err
		return func() tea.Msg { return ControlErrorMsg{Field: field, Err: err} }
	}
	p.lastErr = nil
	return func() tea.Msg { return ControlSubmitMsg{Field: field, Value: v} }
}

// SetError shows err under the inputs; nil clears it.
func (p *ControlsPanel) SetError(err error) { p.lastErr = err }

// SetValues fills the inputs with the chart's current settings.
func (p *ControlsPanel) SetValues(spacing, scale float64) {
	p.spacingInput.SetValue(strconv.FormatFloat(spacing, 'f', -1, 64))
	p.scaleInput.SetValue(strconv.FormatFloat(scale, 'f', -1, 64))
}

// View renders the panel.
func (p *ControlsPanel) View() string {
	var content strings.Builder

	content.WriteString(p.renderField("Spacing", FieldBarSpacing, p.spacingInput.View()))
	content.WriteString("  ")
	content.WriteString(p.renderField("Scale", FieldScale, p.scaleInput.View()))

	if p.lastErr != nil {
		content.WriteString("  ")
		content.WriteString(styles.ErrorStyle.Render(p.lastErr.Error()))
	}

	panelStyle := styles.PanelStyle
	if p.focused {
		panelStyle = styles.FocusedPanelStyle
	}

	title := styles.RenderTitle("⚙ Controls", p.focused)
	panel := lipgloss.JoinVertical(lipgloss.Left, title, content.String())

	return panelStyle.Width(p.width - 2).Height(p.height - 2).Render(panel)
}

func (p *ControlsPanel) renderField(label string, field ControlField, inputView string) string {
	labelStyle := styles.LabelStyle
	inputStyle := styles.PlaceholderStyle
	if p.currentField == field && p.focused {
		labelStyle = labelStyle.Foreground(styles.PrimaryColor)
		inputStyle = styles.PriceStyle
	}
	return labelStyle.Render(fmt.Sprintf("%-8s", label)) + inputStyle.Render(inputView)
}

// SetFocus sets the focus state of the panel.
func (p *ControlsPanel) SetFocus(focused bool) {
	p.focused = focused
	if focused {
		switch p.currentField {
		case FieldBarSpacing:
			p.spacingInput.Focus()
		case FieldScale:
			p.scaleInput.Focus()
		}
	} else {
		p.spacingInput.Blur()
		p.scaleInput.Blur()
	}
}

// SetSize sets the panel dimensions.
func (p *ControlsPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// ControlSubmitMsg is sent when a control value is entered.
type ControlSubmitMsg struct {
	Field ControlField
	Value float64
}

// ControlErrorMsg is sent when a control value does not parse.
type ControlErrorMsg struct {
	Field ControlField
	Err   error
}
