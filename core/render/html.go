package render

import (
	"bytes"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// mathPattern matches $$block$$ and $inline$ TeX spans.
var mathPattern = regexp.MustCompile(`\$\$[\s\S]+?\$\$|\$[^$\n]+?\$`)

// HTMLMarkdown renders one field to an HTML fragment with goldmark. TeX
// spans are passed through verbatim for KaTeX to typeset in the browser.
type HTMLMarkdown struct {
	field string
	md    goldmark.Markdown
}

// NewHTMLMarkdown creates a GitHub-flavoured markdown renderer with hard
// line breaks. Raw HTML in the input is escaped.
func NewHTMLMarkdown(field string) *HTMLMarkdown {
	return &HTMLMarkdown{
		field: field,
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(gmhtml.WithHardWraps()),
		),
	}
}

func (m *HTMLMarkdown) Render(values map[string]string) (string, error) {
	src, spans, marker := protectMath(values[m.field])

	var buf bytes.Buffer
	if err := m.md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("markdown render failed: %w", err)
	}
	return restoreMath(buf.String(), spans, marker), nil
}

// protectMath swaps TeX spans for placeholders markdown leaves alone, so
// emphasis markers inside formulas survive. Placeholders are built from a
// private-use rune repeated until the run does not occur in src.
func protectMath(src string) (string, []string, string) {
	marker := mathMarker
	for strings.Contains(src, marker) {
		marker += mathMarker
	}
	var spans []string
	out := mathPattern.ReplaceAllStringFunc(src, func(span string) string {
		spans = append(spans, span)
		return mathToken(marker, len(spans)-1)
	})
	return out, spans, marker
}

func restoreMath(rendered string, spans []string, marker string) string {
	for i, span := range spans {
		rendered = strings.Replace(rendered, mathToken(marker, i), html.EscapeString(span), 1)
	}
	return rendered
}

const mathMarker = "\uE000"

func mathToken(marker string, i int) string {
	return fmt.Sprintf("%s%d%s", marker, i, marker)
}

// HTMLCode highlights one field to an HTML fragment with inline styles.
type HTMLCode struct {
	field     string
	language  LanguageSelector
	style     *chroma.Style
	formatter *chromahtml.Formatter
}

// NewHTMLCode creates an HTML code renderer using the named chroma style.
func NewHTMLCode(field string, language LanguageSelector, theme string) *HTMLCode {
	return &HTMLCode{
		field:     field,
		language:  language,
		style:     styles.Get(theme),
		formatter: chromahtml.New(chromahtml.WithClasses(false), chromahtml.TabWidth(4)),
	}
}

func (c *HTMLCode) Render(values map[string]string) (string, error) {
	return highlight(values[c.field], c.language.resolve(values), c.style, c.formatter)
}
