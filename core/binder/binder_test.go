package binder

import (
	"errors"
	"testing"

	"github.com/asaidimu/go-folio/core/schema"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func usacoFields() []schema.FieldSchema {
	return []schema.FieldSchema{
		{Name: "link", Kind: schema.WidgetLine, Sources: []string{"usaco"}},
		{Name: "division", Kind: schema.WidgetChoice, Options: []string{"Bronze", "Silver", "Gold", "Platinum"}, Sources: []string{"usaco"}},
		{Name: "title", Kind: schema.WidgetLine, Sources: []string{"usaco", schema.Anchor}},
		{Name: "language", Kind: schema.WidgetChoice, Options: []string{"python", "cpp"}},
		{Name: "submission", Kind: schema.WidgetMultiline},
	}
}

func TestCreateWidget(t *testing.T) {
	tests := []struct {
		kind schema.WidgetKind
		want any
	}{
		{schema.WidgetLine, &Line{}},
		{schema.WidgetMultiline, &Multiline{}},
		{schema.WidgetChoice, &Choice{}},
	}
	for _, tt := range tests {
		w, err := CreateWidget(schema.FieldSchema{Name: "f", Kind: tt.kind, Options: []string{"a"}})
		require.NoError(t, err)
		assert.IsType(t, tt.want, w)
		assert.Equal(t, tt.kind, w.Kind())
		assert.Equal(t, "", w.Value())
	}

	_, err := CreateWidget(schema.FieldSchema{Name: "f", Kind: "slider"})
	assert.Error(t, err)
}

func TestWidgets_SetValueRoundTrip(t *testing.T) {
	line := NewLine()
	line.SetValue("Hello")
	assert.Equal(t, "Hello", line.Value())

	area := NewMultiline()
	area.SetValue("line one\nline two")
	assert.Equal(t, "line one\nline two", area.Value())

	choice := NewChoice([]string{"python", "cpp"})
	assert.Equal(t, []string{"", "python", "cpp"}, choice.Options())
	choice.SetValue("cpp")
	assert.Equal(t, "cpp", choice.Value())
	choice.SetValue("rust")
	assert.Equal(t, "", choice.Value(), "unknown option falls back to the blank option")
	choice.SetValue("python")
	choice.SetValue("")
	assert.Equal(t, "", choice.Value(), "the leading blank option is selectable")
}

func TestWidgets_OnChange(t *testing.T) {
	var got []string
	w, err := CreateWidget(schema.FieldSchema{
		Name:     "language",
		Kind:     schema.WidgetChoice,
		Options:  []string{"python", "cpp"},
		OnChange: func(v string) { got = append(got, v) },
	})
	require.NoError(t, err)

	w.SetValue("python")
	w.SetValue("python") // unchanged, no event
	w.SetValue("java")   // unknown, falls back to blank
	w.SetValue("cpp")
	assert.Equal(t, []string{"python", "", "cpp"}, got)

	var lineChanges int
	line := NewLine()
	line.OnChange(func(string) { lineChanges++ })
	line.SetValue("a")
	line.SetValue("a")
	line.SetValue("b")
	assert.Equal(t, 2, lineChanges)
}

func TestLine_TypingUpdatesValue(t *testing.T) {
	var changed string
	line := NewLine()
	line.OnChange(func(v string) { changed = v })
	line.Focus()
	assert.True(t, line.Focused())

	line.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("hi")})
	assert.Equal(t, "hi", line.Value())
	assert.Equal(t, "hi", changed)

	line.Blur()
	assert.False(t, line.Focused())
}

func TestChoice_KeyboardCycling(t *testing.T) {
	c := NewChoice([]string{"a", "b"})

	c.Update(tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, "", c.Value(), "ignores keys while blurred")

	c.Focus()
	c.Update(tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, "a", c.Value())
	c.Update(tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, "b", c.Value())
	c.Update(tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, "", c.Value(), "wraps around to the blank option")
	c.Update(tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, "b", c.Value())

	assert.Contains(t, c.View(), "b")
	c.SetValue("")
	assert.Contains(t, c.View(), choiceBlankLabel)
}

func TestBinder(t *testing.T) {
	b, err := New(usacoFields())
	require.NoError(t, err)

	names := make([]string, 0)
	for _, f := range b.Fields() {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"link", "division", "title", "language", "submission"}, names)
	assert.Len(t, b.Widgets(), 5)

	require.NoError(t, b.SetValue("title", "Cow Race"))
	require.NoError(t, b.SetValue("division", "Gold"))
	v, err := b.Value("title")
	require.NoError(t, err)
	assert.Equal(t, "Cow Race", v)

	values := b.Values()
	assert.Equal(t, "Gold", values["division"])
	assert.Equal(t, "", values["link"])

	_, err = b.Value("nope")
	assert.True(t, errors.Is(err, ErrUnknownField))
	assert.ErrorIs(t, b.SetValue("nope", "x"), ErrUnknownField)

	b.Clear()
	for name, v := range b.Values() {
		assert.Empty(t, v, name)
	}

	w, ok := b.Widget("submission")
	require.True(t, ok)
	assert.Equal(t, schema.WidgetMultiline, w.Kind())
}

func TestBinder_RejectsDuplicates(t *testing.T) {
	_, err := New([]schema.FieldSchema{
		{Name: "a", Kind: schema.WidgetLine},
		{Name: "a", Kind: schema.WidgetLine},
	})
	assert.Error(t, err)
}
