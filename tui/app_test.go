package tui

import (
	"context"
	"strings"
	"testing"

	"github.com/asaidimu/go-folio/core/editor"
	"github.com/asaidimu/go-folio/core/schema"
	"github.com/asaidimu/go-folio/core/store"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPages() []schema.Page {
	return []schema.Page{
		{
			Title:               "Notes",
			IntendedCollections: []string{"notes"},
			Fields:              []schema.FieldSchema{{Name: "title", Kind: schema.WidgetLine}},
		},
		{
			Title:  "Drafts",
			Fields: []schema.FieldSchema{{Name: "title", Kind: schema.WidgetLine}},
		},
	}
}

func newTestApp(t *testing.T, opts Options) (*App, *store.Store) {
	t.Helper()
	s, err := store.New(store.NewMemoryInteractor())
	require.NoError(t, err)
	opts.Gateway = s
	if opts.Pages == nil {
		opts.Pages = testPages()
	}
	n := 0
	opts.IDGenerator = func() string {
		n++
		return "id-" + string(rune('0'+n))
	}
	a, err := NewApp(context.Background(), opts)
	require.NoError(t, err)
	return a, s
}

func send(a *App, msgs ...tea.Msg) {
	for _, m := range msgs {
		a.Update(m)
	}
}

func typeText(text string) tea.Msg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)}
}

func TestNewApp_Validation(t *testing.T) {
	_, err := NewApp(context.Background(), Options{Pages: testPages()})
	assert.Error(t, err)

	s, err := store.New(store.NewMemoryInteractor())
	require.NoError(t, err)
	_, err = NewApp(context.Background(), Options{Gateway: s})
	assert.Error(t, err)

	_, err = NewApp(context.Background(), Options{Gateway: s, Pages: testPages(), Page: "Missing"})
	assert.Error(t, err)
}

func TestApp_ReadinessOnFirstWindowSize(t *testing.T) {
	a, _ := newTestApp(t, Options{})
	assert.False(t, a.Ready())
	for _, pv := range a.pages {
		assert.False(t, pv.editor.IsReady())
	}

	send(a, tea.WindowSizeMsg{Width: 120, Height: 40})
	assert.True(t, a.Ready())
	for _, pv := range a.pages {
		assert.True(t, pv.editor.IsReady())
	}
}

func TestApp_CreateCollectionFromHome(t *testing.T) {
	ctx := context.Background()
	a, s := newTestApp(t, Options{})
	send(a, tea.WindowSizeMsg{Width: 120, Height: 40})

	assert.Contains(t, a.View(), NewCollectionItem)

	// the only collection item is "+ New"
	send(a, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, screenEditor, a.screen)
	require.Equal(t, focusCollection, a.page().focus)

	send(a,
		typeText("journal"),
		tea.KeyMsg{Type: tea.KeyTab},
		tea.KeyMsg{Type: tea.KeyTab},
		typeText("Hello"),
		tea.KeyMsg{Type: tea.KeyCtrlS},
	)

	st := a.page().editor.State()
	assert.Equal(t, editor.PhaseCollectionBound, st.Phase)
	assert.Equal(t, "journal", st.ActiveCollection)
	assert.Equal(t, "id-1", a.page().documentID.Value())
	assert.Equal(t, `Created new doc with ID "id-1"`, a.page().editor.Status())

	assert.Equal(t, []string{"journal"}, a.collections)
	assert.Equal(t, `Note: add "journal" to intended collections for page "Notes"`, a.note)
	assert.Contains(t, a.View(), "Note: add")

	doc, err := s.GetDocument(ctx, "journal", "id-1")
	require.NoError(t, err)
	assert.Equal(t, "Hello", doc["title"])
}

func TestApp_BlankFieldReported(t *testing.T) {
	a, s := newTestApp(t, Options{Collection: "journal"})
	send(a, tea.WindowSizeMsg{Width: 120, Height: 40})
	require.Equal(t, screenEditor, a.screen)

	send(a, tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.Equal(t, `Field "title" is empty`, a.page().editor.Status())

	names, err := s.Collections(context.Background())
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestApp_NavigateCarriesCollectionAndDocument(t *testing.T) {
	ctx := context.Background()
	s, err := store.New(store.NewMemoryInteractor())
	require.NoError(t, err)
	_, err = s.CreateDocument(ctx, "notes", "n1", store.Document{"title": "First"})
	require.NoError(t, err)
	_, err = s.CreateDocument(ctx, "notes", "n2", store.Document{"title": "Second"})
	require.NoError(t, err)

	a, err := NewApp(ctx, Options{Gateway: s, Pages: testPages()})
	require.NoError(t, err)
	send(a, tea.WindowSizeMsg{Width: 120, Height: 40})

	// open "notes" from the home menu and page through the picker
	send(a, tea.KeyMsg{Type: tea.KeyEnter})
	pv := a.page()
	assert.True(t, pv.bound())
	assert.Equal(t, []string{"n1", "n2"}, pv.editor.Documents())

	send(a, tea.KeyMsg{Type: tea.KeyPgDown})
	v, _ := pv.editor.Field("title")
	assert.Equal(t, "First", v)
	send(a, tea.KeyMsg{Type: tea.KeyPgDown})
	v, _ = pv.editor.Field("title")
	assert.Equal(t, "Second", v)

	// typing into a bound collection entry is ignored
	send(a, tea.KeyMsg{Type: tea.KeyShiftTab}, typeText("zzz"))
	assert.Equal(t, "notes", pv.collection.Value())

	send(a, tea.KeyMsg{Type: tea.KeyEsc})
	require.Equal(t, screenHome, a.screen)
	send(a, tea.KeyMsg{Type: tea.KeyTab}, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyEnter})

	require.Equal(t, 1, a.current)
	drafts := a.page()
	st := drafts.editor.State()
	assert.Equal(t, "notes", st.ActiveCollection)
	assert.Equal(t, "n2", st.ActiveDocumentID)
	v, _ = drafts.editor.Field("title")
	assert.Equal(t, "Second", v)
	assert.True(t, strings.Contains(a.View(), "Drafts"))
}

func TestApp_AdvisoryWarningShown(t *testing.T) {
	a, _ := newTestApp(t, Options{Collection: "misc"})
	send(a, tea.WindowSizeMsg{Width: 120, Height: 40})
	assert.Contains(t, a.View(), `"misc" is not an intended collection`)
}
