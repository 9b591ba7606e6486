// Package tui is folio's terminal front end: a home menu listing collections
// and pages, and one editor screen per page with a rendered preview pane.
package tui

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/asaidimu/go-folio/core/editor"
	"github.com/asaidimu/go-folio/core/render"
	"github.com/asaidimu/go-folio/core/schema"
	"github.com/asaidimu/go-folio/core/store"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// NewCollectionItem is the home menu entry that starts a new collection.
const NewCollectionItem = "+ New"

// Options configures an App.
type Options struct {
	Gateway store.Gateway
	Pages   []schema.Page
	Logger  *zap.Logger

	// IDGenerator generates document ids; nil keeps the editor default.
	IDGenerator func() string
	// Theme overrides page themes when set.
	Theme string
	// Browser, when set, also receives HTML previews (the browser preview hub).
	Browser render.Surface

	// Collection and Page select the initial collection and page.
	Collection string
	Page       string
}

type screen int

const (
	screenHome screen = iota
	screenEditor
)

// App is the root bubbletea model.
type App struct {
	ctx    context.Context
	opts   Options
	logger *zap.Logger
	styles Styles

	pages       []*pageView
	current     int
	screen      screen
	collections []string
	home        homeMenu
	note        string

	width, height int
	ready         bool
}

var _ tea.Model = (*App)(nil)

// NewApp builds the model. The collection list is read once here; it grows
// when saves create collections.
func NewApp(ctx context.Context, opts Options) (*App, error) {
	if opts.Gateway == nil {
		return nil, errors.New("tui: gateway is required")
	}
	if len(opts.Pages) == 0 {
		return nil, errors.New("tui: at least one page is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	collections, err := opts.Gateway.Collections(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}

	a := &App{
		ctx:         ctx,
		opts:        opts,
		logger:      logger,
		styles:      NewStyles(opts.Theme),
		collections: collections,
	}

	for i := range opts.Pages {
		pv, err := a.newPageView(&opts.Pages[i])
		if err != nil {
			return nil, err
		}
		a.pages = append(a.pages, pv)
		if opts.Page != "" && opts.Pages[i].Title == opts.Page {
			a.current = i
		}
	}
	if opts.Page != "" && a.pages[a.current].page.Title != opts.Page {
		return nil, fmt.Errorf("tui: unknown page %q", opts.Page)
	}

	for _, pv := range a.pages {
		coll := opts.Collection
		if coll == "" {
			coll = pv.page.DefaultCollection
		}
		if err := pv.editor.SetCollection(ctx, coll, ""); err != nil {
			logger.Warn("Initial collection could not be set", zap.String("page", pv.page.Title), zap.Error(err))
		}
		pv.sync()
	}
	if opts.Collection != "" {
		a.openEditor()
	}
	return a, nil
}

func (a *App) newPageView(page *schema.Page) (*pageView, error) {
	pv := &pageView{
		page:       page,
		collection: newEntry("collection name"),
		documentID: newEntry("document id"),
	}

	var opts []editor.Option
	opts = append(opts,
		editor.WithLogger(a.logger),
		editor.WithCollectionCreated(func(c editor.CollectionCreated) {
			a.collectionCreated(pv, c)
		}),
	)
	if a.opts.IDGenerator != nil {
		opts = append(opts, editor.WithIDGenerator(a.opts.IDGenerator))
	}

	terminal, err := render.ForPage(page, render.TargetTerminal, render.Options{Theme: a.opts.Theme, Width: previewWidth})
	if err != nil {
		return nil, fmt.Errorf("page %q: %w", page.Title, err)
	}
	if terminal != nil {
		opts = append(opts, editor.WithPreview(terminal, render.SurfaceFunc(func(payload string) error {
			pv.preview = payload
			return nil
		})))
	}
	if a.opts.Browser != nil {
		html, err := render.ForPage(page, render.TargetHTML, render.Options{Theme: a.opts.Theme})
		if err != nil {
			return nil, fmt.Errorf("page %q: %w", page.Title, err)
		}
		if html != nil {
			opts = append(opts, editor.WithPreview(html, a.opts.Browser))
		}
	}

	ed, err := editor.New(page, a.opts.Gateway, opts...)
	if err != nil {
		return nil, fmt.Errorf("page %q: %w", page.Title, err)
	}
	pv.editor = ed
	return pv, nil
}

func newEntry(placeholder string) textinput.Model {
	in := textinput.New()
	in.Prompt = ""
	in.Placeholder = placeholder
	in.CharLimit = 0
	return in
}

// collectionCreated adds a collection created by a save to the home menu.
func (a *App) collectionCreated(pv *pageView, c editor.CollectionCreated) {
	if !slices.Contains(a.collections, c.CollectionID) {
		a.collections = append(a.collections, c.CollectionID)
		slices.Sort(a.collections)
	}
	a.note = fmt.Sprintf("Note: add %q to intended collections for page %q", c.CollectionID, pv.page.Title)
	a.logger.Info("Collection added to menu", zap.String("collection", c.CollectionID))
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		for _, pv := range a.pages {
			pv.resize(a.width)
		}
		if !a.ready {
			a.ready = true
			a.markReady()
		}
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.screen == screenHome {
			return a.updateHome(msg)
		}
		return a.updateEditor(msg)
	}

	if a.screen == screenEditor {
		return a, a.page().updateFocused(msg)
	}
	return a, nil
}

// markReady opens every editor's readiness gate once the terminal reported
// its size, i.e. once the screen can display what a load produces.
func (a *App) markReady() {
	for _, pv := range a.pages {
		if err := pv.editor.Ready(a.ctx); err != nil {
			a.logger.Warn("Editor readiness load failed", zap.String("page", pv.page.Title), zap.Error(err))
		}
		pv.sync()
	}
}

// Ready reports whether the readiness gate fired.
func (a *App) Ready() bool { return a.ready }

func (a *App) page() *pageView { return a.pages[a.current] }

func (a *App) openEditor() {
	a.screen = screenEditor
	a.page().focusIndex(a.page().focus)
}

// navigate switches to page idx, carrying the current collection and
// document id over.
func (a *App) navigate(idx int) {
	from := a.page()
	st := from.editor.State()
	coll := st.ActiveCollection
	if coll == "" {
		coll = st.CollectionEntry
	}

	a.current = idx
	to := a.page()
	if err := to.editor.SetCollection(a.ctx, coll, st.ActiveDocumentID); err != nil {
		a.logger.Warn("Navigation could not set collection", zap.Error(err))
	}
	to.sync()
	a.note = ""
	a.openEditor()
}

// selectCollection binds the current page to name, or starts a new
// collection when name is NewCollectionItem.
func (a *App) selectCollection(name string) {
	pv := a.page()
	if name == NewCollectionItem {
		name = ""
	}
	if err := pv.editor.SetCollection(a.ctx, name, ""); err != nil {
		a.logger.Warn("Collection could not be set", zap.Error(err))
	}
	pv.sync()
	a.note = ""
	if name == "" {
		pv.focus = focusCollection
	} else {
		pv.focus = focusDocument
	}
	a.openEditor()
}

// View implements tea.Model.
func (a *App) View() string {
	var b strings.Builder
	b.WriteString(a.styles.Header.Render("folio"))
	b.WriteString("\n")
	b.WriteString(a.tabsView())
	b.WriteString("\n\n")

	if a.screen == screenHome {
		b.WriteString(a.homeView())
	} else {
		b.WriteString(a.editorView())
	}

	if a.note != "" {
		b.WriteString("\n")
		b.WriteString(a.styles.Note.Render(a.note))
	}
	return b.String()
}

func (a *App) tabsView() string {
	tabs := make([]string, len(a.pages))
	for i, pv := range a.pages {
		if i == a.current {
			tabs[i] = a.styles.ActiveTab.Render(pv.page.Title)
		} else {
			tabs[i] = a.styles.Tab.Render(pv.page.Title)
		}
	}
	return strings.Join(tabs, " ")
}
