package binder

import (
	"fmt"
	"slices"
	"strings"

	"github.com/asaidimu/go-folio/core/schema"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Widget is an editable input bound to one field. Values cross the boundary
// as plain strings regardless of the concrete input.
type Widget interface {
	Kind() schema.WidgetKind
	Value() string
	// SetValue replaces the current value. Change handlers run when the value
	// actually changes.
	SetValue(value string)
	// OnChange registers a handler called with the new value after every change.
	OnChange(fn func(value string))

	Focus() tea.Cmd
	Blur()
	Focused() bool
	Update(msg tea.Msg) tea.Cmd
	View() string
	SetWidth(width int)
}

// CreateWidget instantiates the input matching the field's kind and wires the
// field's change hook, if any.
func CreateWidget(field schema.FieldSchema) (Widget, error) {
	var w Widget
	switch field.Kind {
	case schema.WidgetLine:
		w = NewLine()
	case schema.WidgetMultiline:
		w = NewMultiline()
	case schema.WidgetChoice:
		w = NewChoice(field.Options)
	default:
		return nil, fmt.Errorf("field %q: unsupported widget kind %q", field.Name, field.Kind)
	}
	if field.OnChange != nil {
		w.OnChange(field.OnChange)
	}
	return w, nil
}

// changeNotifier runs registered handlers when a widget's value moves.
type changeNotifier struct {
	handlers []func(string)
}

func (c *changeNotifier) OnChange(fn func(string)) {
	if fn != nil {
		c.handlers = append(c.handlers, fn)
	}
}

func (c *changeNotifier) notify(before, after string) {
	if before == after {
		return
	}
	for _, fn := range c.handlers {
		fn(after)
	}
}

// Line is a single-line text input.
type Line struct {
	changeNotifier
	input textinput.Model
}

var _ Widget = (*Line)(nil)

// NewLine creates an empty single-line input.
func NewLine() *Line {
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 0
	return &Line{input: ti}
}

func (l *Line) Kind() schema.WidgetKind { return schema.WidgetLine }
func (l *Line) Value() string           { return l.input.Value() }
func (l *Line) Focus() tea.Cmd          { return l.input.Focus() }
func (l *Line) Blur()                   { l.input.Blur() }
func (l *Line) Focused() bool           { return l.input.Focused() }
func (l *Line) View() string            { return l.input.View() }
func (l *Line) SetWidth(width int)      { l.input.Width = width }

func (l *Line) SetValue(value string) {
	before := l.input.Value()
	l.input.SetValue(value)
	l.notify(before, l.input.Value())
}

func (l *Line) Update(msg tea.Msg) tea.Cmd {
	before := l.input.Value()
	var cmd tea.Cmd
	l.input, cmd = l.input.Update(msg)
	l.notify(before, l.input.Value())
	return cmd
}

// Multiline is a multi-line text area.
type Multiline struct {
	changeNotifier
	area textarea.Model
}

var _ Widget = (*Multiline)(nil)

// NewMultiline creates an empty text area without length limits.
func NewMultiline() *Multiline {
	ta := textarea.New()
	ta.CharLimit = 0
	ta.MaxHeight = 0
	ta.ShowLineNumbers = false
	ta.SetHeight(8)
	return &Multiline{area: ta}
}

func (m *Multiline) Kind() schema.WidgetKind { return schema.WidgetMultiline }
func (m *Multiline) Value() string           { return m.area.Value() }
func (m *Multiline) Focus() tea.Cmd          { return m.area.Focus() }
func (m *Multiline) Blur()                   { m.area.Blur() }
func (m *Multiline) Focused() bool           { return m.area.Focused() }
func (m *Multiline) View() string            { return m.area.View() }
func (m *Multiline) SetWidth(width int)      { m.area.SetWidth(width) }

// SetHeight sets the number of visible rows.
func (m *Multiline) SetHeight(height int) { m.area.SetHeight(height) }

func (m *Multiline) SetValue(value string) {
	before := m.area.Value()
	m.area.SetValue(value)
	m.notify(before, m.area.Value())
}

func (m *Multiline) Update(msg tea.Msg) tea.Cmd {
	before := m.area.Value()
	var cmd tea.Cmd
	m.area, cmd = m.area.Update(msg)
	m.notify(before, m.area.Value())
	return cmd
}

var (
	choiceFocusedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	choiceBlurredStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	choiceBlankLabel   = "(none)"
)

// Choice selects one value from a fixed option list. The list always starts
// with a blank option, so "" is selectable.
type Choice struct {
	changeNotifier
	options  []string
	selected int
	focused  bool
	width    int
}

var _ Widget = (*Choice)(nil)

// NewChoice creates a choice over options with the leading blank selected.
func NewChoice(options []string) *Choice {
	return &Choice{options: append([]string{""}, options...)}
}

// Options returns the selectable values, including the leading blank.
func (c *Choice) Options() []string { return slices.Clone(c.options) }

func (c *Choice) Kind() schema.WidgetKind { return schema.WidgetChoice }
func (c *Choice) Value() string           { return c.options[c.selected] }
func (c *Choice) Focus() tea.Cmd          { c.focused = true; return nil }
func (c *Choice) Blur()                   { c.focused = false }
func (c *Choice) Focused() bool           { return c.focused }
func (c *Choice) SetWidth(width int)      { c.width = width }

// SetValue selects value. A value outside the option list selects the
// leading blank option.
func (c *Choice) SetValue(value string) {
	c.selectIndex(max(slices.Index(c.options, value), 0))
}

func (c *Choice) selectIndex(idx int) {
	before := c.Value()
	c.selected = idx
	c.notify(before, c.Value())
}

// Update cycles the selection with left/right (or h/l) and space.
func (c *Choice) Update(msg tea.Msg) tea.Cmd {
	if !c.focused {
		return nil
	}
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	n := len(c.options)
	switch key.String() {
	case "left", "h":
		c.selectIndex((c.selected - 1 + n) % n)
	case "right", "l", " ":
		c.selectIndex((c.selected + 1) % n)
	}
	return nil
}

func (c *Choice) View() string {
	label := c.Value()
	if label == "" {
		label = choiceBlankLabel
	}
	text := "‹ " + label + " ›"
	if c.width > 0 && lipgloss.Width(text) < c.width {
		text += strings.Repeat(" ", c.width-lipgloss.Width(text))
	}
	if c.focused {
		return choiceFocusedStyle.Render(text)
	}
	return choiceBlurredStyle.Render(text)
}
