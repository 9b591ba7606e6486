package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	columnCollections = iota
	columnPages
)

// homeMenu tracks the cursor of the two home menu columns.
type homeMenu struct {
	column int
	cursor [2]int
}

func (a *App) collectionItems() []string {
	return append(append([]string(nil), a.collections...), NewCollectionItem)
}

func (a *App) updateHome(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	h := &a.home
	size := len(a.collectionItems())
	if h.column == columnPages {
		size = len(a.pages)
	}

	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "tab", "left", "right", "h", "l":
		h.column = 1 - h.column
	case "up", "k":
		if h.cursor[h.column] > 0 {
			h.cursor[h.column]--
		}
	case "down", "j":
		if h.cursor[h.column] < size-1 {
			h.cursor[h.column]++
		}
	case "enter":
		if h.column == columnCollections {
			items := a.collectionItems()
			idx := min(h.cursor[columnCollections], len(items)-1)
			a.selectCollection(items[idx])
		} else {
			a.navigate(h.cursor[columnPages])
		}
		return a, a.page().focusIndex(a.page().focus)
	}
	return a, nil
}

func (a *App) homeView() string {
	render := func(title string, items []string, column int) string {
		var b strings.Builder
		b.WriteString(a.styles.Title.Render(title))
		b.WriteString("\n")
		for i, item := range items {
			if a.home.column == column && a.home.cursor[column] == i {
				b.WriteString(a.styles.Selected.Render("> " + item))
			} else {
				b.WriteString(a.styles.Item.Render("  " + item))
			}
			b.WriteString("\n")
		}
		return b.String()
	}

	titles := make([]string, len(a.pages))
	for i, pv := range a.pages {
		titles[i] = pv.page.Title
	}

	cols := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(32).Render(render("Collections", a.collectionItems(), columnCollections)),
		render("Collection Types", titles, columnPages),
	)
	return cols + a.styles.Help.Render("tab switch column • ↑/↓ move • enter open • q quit")
}
