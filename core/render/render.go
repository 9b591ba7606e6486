// Package render turns field values into preview payloads. Terminal
// renderers produce ANSI text for the TUI; HTML renderers produce fragments
// for the browser preview surface.
package render

import (
	"fmt"
	"strings"

	"github.com/asaidimu/go-folio/core/schema"
)

// Renderer builds a preview payload from the current field values.
type Renderer interface {
	Render(values map[string]string) (string, error)
}

// Surface is a display sink for rendered payloads. Nothing flows back.
type Surface interface {
	RenderContent(payload string) error
}

// SurfaceFunc adapts a function to the Surface interface.
type SurfaceFunc func(payload string) error

func (f SurfaceFunc) RenderContent(payload string) error { return f(payload) }

// Target selects the output format of renderers built by ForPage.
type Target string

const (
	TargetTerminal Target = "terminal"
	TargetHTML     Target = "html"
)

// DefaultCodeTheme is used when a page names no theme.
const DefaultCodeTheme = "github-dark"

// Options tunes renderers built by ForPage.
type Options struct {
	// Width is the terminal wrap width; zero keeps the renderer's default.
	Width int
	// Theme overrides the page theme when set.
	Theme string
}

// ForPage builds the renderer a page's preview declares. It returns nil
// when the page has no preview.
func ForPage(page *schema.Page, target Target, opts Options) (Renderer, error) {
	theme := page.Theme
	if opts.Theme != "" {
		theme = opts.Theme
	}

	p := page.Preview
	switch p.Kind {
	case "", schema.PreviewNone:
		return nil, nil
	case schema.PreviewMarkdown:
		if target == TargetHTML {
			return NewHTMLMarkdown(p.Field), nil
		}
		return NewTerminalMarkdown(p.Field, theme, opts.Width)
	case schema.PreviewCode:
		lang := LanguageSelector{Field: p.LanguageField, Fallback: p.Language}
		if target == TargetHTML {
			return NewHTMLCode(p.Field, lang, codeTheme(theme)), nil
		}
		return NewTerminalCode(p.Field, lang, codeTheme(theme)), nil
	default:
		return nil, fmt.Errorf("unsupported preview kind %q", p.Kind)
	}
}

// LanguageSelector picks the code language from a field value, falling back
// to a fixed language.
type LanguageSelector struct {
	Field    string
	Fallback string
}

func (l LanguageSelector) resolve(values map[string]string) string {
	if l.Field != "" {
		if v := strings.TrimSpace(values[l.Field]); v != "" {
			return v
		}
	}
	return l.Fallback
}

// codeTheme maps the page-level light/dark themes onto chroma styles.
func codeTheme(theme string) string {
	switch strings.ToLower(theme) {
	case "", "dark":
		return DefaultCodeTheme
	case "light":
		return "github"
	default:
		return theme
	}
}

// markdownStyle maps a page theme onto a glamour standard style.
func markdownStyle(theme string) string {
	t := strings.ToLower(theme)
	switch {
	case t == "notty" || t == "ascii":
		return t
	case strings.Contains(t, "light"):
		return "light"
	default:
		return "dark"
	}
}
