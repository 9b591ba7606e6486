package tui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/asaidimu/go-folio/core/binder"
	"github.com/asaidimu/go-folio/core/editor"
	"github.com/asaidimu/go-folio/core/schema"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

const (
	focusCollection = iota
	focusDocument
	focusFirstField
)

const (
	formWidth    = 56
	previewWidth = 60
)

// pageView is the editor screen of one page.
type pageView struct {
	page   *schema.Page
	editor *editor.Editor

	collection textinput.Model
	documentID textinput.Model
	focus      int
	preview    string
}

// sync copies the editor's collection and document id into the entries.
func (pv *pageView) sync() {
	st := pv.editor.State()
	if pv.collection.Value() != st.CollectionEntry {
		pv.collection.SetValue(st.CollectionEntry)
	}
	if pv.documentID.Value() != st.ActiveDocumentID {
		pv.documentID.SetValue(st.ActiveDocumentID)
	}
}

func (pv *pageView) resize(width int) {
	w := min(formWidth, max(width/2-4, 20))
	pv.collection.Width = w
	pv.documentID.Width = w
	for _, wd := range pv.editor.Widgets() {
		wd.SetWidth(w)
	}
}

func (pv *pageView) bound() bool {
	return pv.editor.State().Phase == editor.PhaseCollectionBound
}

func (pv *pageView) inputs() int {
	return focusFirstField + len(pv.editor.Widgets())
}

func (pv *pageView) focusIndex(idx int) tea.Cmd {
	n := pv.inputs()
	pv.focus = ((idx % n) + n) % n

	pv.collection.Blur()
	pv.documentID.Blur()
	widgets := pv.editor.Widgets()
	for _, w := range widgets {
		w.Blur()
	}

	switch pv.focus {
	case focusCollection:
		return pv.collection.Focus()
	case focusDocument:
		return pv.documentID.Focus()
	default:
		return widgets[pv.focus-focusFirstField].Focus()
	}
}

func (pv *pageView) blurAll() {
	pv.collection.Blur()
	pv.documentID.Blur()
	for _, w := range pv.editor.Widgets() {
		w.Blur()
	}
}

// updateFocused forwards msg to the focused input and mirrors entry edits
// into the editor.
func (pv *pageView) updateFocused(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch pv.focus {
	case focusCollection:
		if pv.bound() {
			return nil
		}
		pv.collection, cmd = pv.collection.Update(msg)
		_ = pv.editor.SetCollectionName(pv.collection.Value())
	case focusDocument:
		pv.documentID, cmd = pv.documentID.Update(msg)
		pv.editor.SetDocumentID(pv.documentID.Value())
	default:
		cmd = pv.editor.Widgets()[pv.focus-focusFirstField].Update(msg)
	}
	return cmd
}

// cycleDocument moves through the document picker and loads the result.
func (a *App) cycleDocument(pv *pageView, step int) {
	docs := pv.editor.Documents()
	if len(docs) == 0 {
		return
	}
	idx := slices.Index(docs, strings.TrimSpace(pv.documentID.Value()))
	switch {
	case idx < 0 && step < 0:
		idx = len(docs) - 1
	case idx < 0:
		idx = 0
	default:
		idx = (idx + step + len(docs)) % len(docs)
	}
	if _, err := pv.editor.SelectDocument(a.ctx, docs[idx]); err != nil {
		a.logger.Warn("Document could not be loaded", zap.Error(err))
	}
	pv.sync()
}

func (a *App) updateEditor(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	pv := a.page()

	switch msg.String() {
	case "esc":
		pv.blurAll()
		a.screen = screenHome
		return a, nil
	case "tab":
		return a, pv.focusIndex(pv.focus + 1)
	case "shift+tab":
		return a, pv.focusIndex(pv.focus - 1)
	case "ctrl+s":
		if _, err := pv.editor.SaveDocument(a.ctx, false); err != nil {
			a.logger.Debug("Save failed", zap.Error(err))
		}
		pv.sync()
		return a, nil
	case "ctrl+n":
		pv.editor.Clear()
		pv.sync()
		return a, nil
	case "ctrl+l":
		a.load(pv)
		return a, nil
	case "pgdown":
		a.cycleDocument(pv, 1)
		return a, nil
	case "pgup":
		a.cycleDocument(pv, -1)
		return a, nil
	case "enter":
		switch pv.focus {
		case focusCollection:
			if err := pv.editor.SetCollection(a.ctx, pv.collection.Value(), ""); err != nil {
				a.logger.Debug("Collection could not be set", zap.Error(err))
			}
			pv.sync()
			a.note = ""
			return a, pv.focusIndex(focusDocument)
		case focusDocument:
			a.load(pv)
			return a, nil
		}
	}
	return a, pv.updateFocused(msg)
}

func (a *App) load(pv *pageView) {
	if _, err := pv.editor.LoadDocument(a.ctx, pv.documentID.Value(), false); err != nil {
		a.logger.Debug("Load failed", zap.Error(err))
	}
	pv.sync()
}

func (a *App) editorView() string {
	pv := a.page()
	s := a.styles

	var form strings.Builder
	label := func(text string, focused bool) {
		if focused {
			form.WriteString(s.Selected.UnsetPaddingLeft().Render(text))
		} else {
			form.WriteString(s.Label.Render(text))
		}
		form.WriteString("\n")
	}

	collLabel := "Collection"
	if pv.bound() {
		collLabel += " (bound)"
	}
	label(collLabel, pv.focus == focusCollection)
	form.WriteString(pv.collection.View() + "\n\n")

	docs := pv.editor.Documents()
	label(fmt.Sprintf("Document ID (%d in picker, pgup/pgdn)", len(docs)), pv.focus == focusDocument)
	form.WriteString(pv.documentID.View() + "\n\n")

	fields := pv.editor.Fields()
	for i, w := range pv.editor.Widgets() {
		label(fieldLabel(fields[i], w), pv.focus == focusFirstField+i)
		form.WriteString(w.View() + "\n\n")
	}

	left := form.String()
	body := left
	if pv.preview != "" {
		pane := s.Pane.Width(previewWidth).Render(pv.preview)
		body = lipgloss.JoinHorizontal(lipgloss.Top, lipgloss.NewStyle().Width(formWidth+4).Render(left), pane)
	}

	var footer strings.Builder
	if status := pv.editor.Status(); status != "" {
		if strings.HasPrefix(status, "Error:") {
			footer.WriteString(s.Error.Render(status))
		} else {
			footer.WriteString(s.Status.Render(status))
		}
		footer.WriteString("\n")
	}
	for _, w := range pv.editor.Warnings() {
		footer.WriteString(s.Warning.Render("! " + w))
		footer.WriteString("\n")
	}
	footer.WriteString(s.Help.Render("tab next • enter select/load • ctrl+s save • ctrl+l load • ctrl+n clear • esc home"))

	return body + "\n" + footer.String()
}

func fieldLabel(f schema.FieldSchema, w binder.Widget) string {
	text := f.DisplayLabel()
	if len(f.Sources) > 0 {
		names := make([]string, len(f.Sources))
		for i, src := range f.Sources {
			if src == schema.Anchor {
				src = "·"
			}
			names[i] = src
		}
		text += " [" + strings.Join(names, ", ") + "]"
	}
	if w.Kind() == schema.WidgetChoice {
		text += " ←/→"
	}
	return text
}
