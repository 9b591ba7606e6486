package render

import (
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/glamour"
)

// TerminalMarkdown renders one field as markdown with glamour.
type TerminalMarkdown struct {
	field    string
	renderer *glamour.TermRenderer
}

// NewTerminalMarkdown creates a glamour-backed markdown renderer. A width of
// zero keeps glamour's default wrap width.
func NewTerminalMarkdown(field, theme string, width int) (*TerminalMarkdown, error) {
	opts := []glamour.TermRendererOption{glamour.WithStandardStyle(markdownStyle(theme))}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	return &TerminalMarkdown{field: field, renderer: r}, nil
}

func (m *TerminalMarkdown) Render(values map[string]string) (string, error) {
	out, err := m.renderer.Render(values[m.field])
	if err != nil {
		return "", fmt.Errorf("markdown render failed: %w", err)
	}
	return out, nil
}

// TerminalCode highlights one field as source code with chroma's
// terminal256 formatter.
type TerminalCode struct {
	field    string
	language LanguageSelector
	style    *chroma.Style
}

// NewTerminalCode creates a code renderer; unknown themes fall back to
// chroma's default style.
func NewTerminalCode(field string, language LanguageSelector, theme string) *TerminalCode {
	return &TerminalCode{field: field, language: language, style: styles.Get(theme)}
}

func (c *TerminalCode) Render(values map[string]string) (string, error) {
	return highlight(values[c.field], c.language.resolve(values), c.style, formatters.Get("terminal256"))
}

func highlight(source, language string, style *chroma.Style, formatter chroma.Formatter) (string, error) {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, source)
	if err != nil {
		return "", fmt.Errorf("tokenise %s: %w", language, err)
	}

	var sb strings.Builder
	if err := formatter.Format(&sb, style, iterator); err != nil {
		return "", fmt.Errorf("format %s: %w", language, err)
	}
	return sb.String(), nil
}
