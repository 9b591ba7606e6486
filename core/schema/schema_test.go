package schema

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const usacoYAML = `
pages:
  - title: USACO Problems
    tag: usaco
    intended_collections: [problems]
    theme: github-dark
    preview:
      kind: code
      field: submission
      language_field: language
    fields:
      - name: link
        kind: lineedit
        label: Problem Link
        sources: [usaco]
      - name: division
        kind: dropdown
        options: [Bronze, Silver, Gold, Platinum]
        sources: [usaco]
      - name: title
        sources: [usaco, null]
      - name: language
        kind: choice
        options: [python, cpp]
      - name: submission
        kind: textedit
`

func TestLoadPages_YAML(t *testing.T) {
	pages, err := LoadPages(strings.NewReader(usacoYAML))
	require.NoError(t, err)
	require.Len(t, pages, 1)

	p := pages[0]
	assert.Equal(t, "USACO Problems", p.Title)
	assert.Equal(t, "usaco", p.Tag)
	assert.Equal(t, []string{"problems"}, p.IntendedCollections)
	assert.Equal(t, []string{"link", "division", "title", "language", "submission"}, p.FieldNames())

	assert.Equal(t, WidgetLine, p.Fields[0].Kind)
	assert.Equal(t, WidgetChoice, p.Fields[1].Kind)
	assert.Equal(t, WidgetLine, p.Fields[2].Kind, "kind defaults to line")
	assert.Equal(t, WidgetMultiline, p.Fields[4].Kind)

	assert.Equal(t, []string{"usaco", Anchor}, p.Fields[2].SourceCollections())
	assert.Equal(t, []string{Anchor}, p.Fields[3].SourceCollections())
	assert.Equal(t, "Problem Link", p.Fields[0].DisplayLabel())
	assert.Equal(t, "title", p.Fields[2].DisplayLabel())

	assert.Equal(t, PreviewCode, p.Preview.Kind)
	assert.Same(t, &pages[0], FindPage(pages, "USACO Problems"))
	assert.Nil(t, FindPage(pages, "Nope"))
}

func TestLoadPages_JSON(t *testing.T) {
	pages, err := LoadPages(strings.NewReader(`{"pages":[{"title":"Posts","fields":[{"name":"title","kind":"line","sources":[null]}]}]}`))
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, []string{Anchor}, pages[0].Fields[0].SourceCollections())
	assert.Equal(t, PreviewNone, pages[0].Preview.Kind)
}

func TestLoadPages_NullSources(t *testing.T) {
	tests := []struct {
		name    string
		sources string
		want    []string
	}{
		{"null last", "[usaco, null]", []string{"usaco", Anchor}},
		{"null first", "[null, usaco]", []string{Anchor, "usaco"}},
		{"tilde", "[~]", []string{Anchor}},
		{"block style", "\n          - usaco\n          -\n", []string{"usaco", Anchor}},
		{"omitted", "[]", []string{Anchor}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := "pages:\n  - title: P\n    fields:\n      - name: a\n        sources: " + tt.sources + "\n"
			pages, err := LoadPages(strings.NewReader(doc))
			require.NoError(t, err)
			assert.Equal(t, tt.want, pages[0].Fields[0].SourceCollections())
		})
	}

	_, err := LoadPages(strings.NewReader("pages:\n  - title: P\n    fields:\n      - name: a\n        sources: usaco\n"))
	assert.Error(t, err)
}

func TestLoadPages_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown key", "pages:\n  - title: X\n    colour: red\n    fields: [{name: a}]\n"},
		{"no fields", "pages:\n  - title: X\n"},
		{"duplicate title", "pages:\n  - {title: X, fields: [{name: a}]}\n  - {title: X, fields: [{name: b}]}\n"},
		{"malformed", "pages: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadPages(strings.NewReader(tt.doc))
			assert.Error(t, err)
		})
	}

	_, err := LoadPages(strings.NewReader("pages:\n  - title: X\n"))
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "X", verr.Page)
	assert.Contains(t, verr.Error(), "at least one field")
}

func TestLoadPagesFile_Missing(t *testing.T) {
	_, err := LoadPagesFile("/does/not/exist.yaml")
	assert.Error(t, err)
}

func TestValidator(t *testing.T) {
	tests := []struct {
		name      string
		page      Page
		wantValid bool
		wantCodes []string
	}{
		{
			name:      "valid",
			page:      Page{Title: "Posts", Fields: []FieldSchema{{Name: "title", Kind: WidgetLine}}},
			wantValid: true,
		},
		{
			name:      "missing title",
			page:      Page{Fields: []FieldSchema{{Name: "title", Kind: WidgetLine}}},
			wantCodes: []string{"REQUIRED_FIELD_MISSING"},
		},
		{
			name: "duplicate field",
			page: Page{Title: "P", Fields: []FieldSchema{
				{Name: "a", Kind: WidgetLine}, {Name: "a", Kind: WidgetLine},
			}},
			wantCodes: []string{"DUPLICATE_FIELD"},
		},
		{
			name:      "reserved name",
			page:      Page{Title: "P", Fields: []FieldSchema{{Name: "updated", Kind: WidgetLine}}},
			wantCodes: []string{"RESERVED_FIELD_NAME"},
		},
		{
			name:      "tag collision",
			page:      Page{Title: "P", Tag: "usaco", Fields: []FieldSchema{{Name: "tag", Kind: WidgetLine}}},
			wantCodes: []string{"RESERVED_FIELD_NAME"},
		},
		{
			name:      "bad kind",
			page:      Page{Title: "P", Fields: []FieldSchema{{Name: "a", Kind: "slider"}}},
			wantCodes: []string{"INVALID_WIDGET_KIND"},
		},
		{
			name:      "choice without options",
			page:      Page{Title: "P", Fields: []FieldSchema{{Name: "a", Kind: WidgetChoice}}},
			wantCodes: []string{"MISSING_OPTIONS"},
		},
		{
			name:      "duplicate and blank options",
			page:      Page{Title: "P", Fields: []FieldSchema{{Name: "a", Kind: WidgetChoice, Options: []string{"x", "x", " "}}}},
			wantCodes: []string{"DUPLICATE_OPTION", "BLANK_OPTION"},
		},
		{
			name:      "duplicate anchor source",
			page:      Page{Title: "P", Fields: []FieldSchema{{Name: "a", Kind: WidgetLine, Sources: []string{Anchor, "x", Anchor}}}},
			wantCodes: []string{"DUPLICATE_SOURCE"},
		},
		{
			name:      "options on a line field only warn",
			page:      Page{Title: "P", Fields: []FieldSchema{{Name: "a", Kind: WidgetLine, Options: []string{"x"}}}},
			wantValid: true,
			wantCodes: []string{"UNUSED_OPTIONS"},
		},
		{
			name: "unknown preview field",
			page: Page{Title: "P", Preview: Preview{Kind: PreviewMarkdown, Field: "body"},
				Fields: []FieldSchema{{Name: "a", Kind: WidgetLine}}},
			wantCodes: []string{"UNKNOWN_PREVIEW_FIELD"},
		},
		{
			name: "bad preview kind",
			page: Page{Title: "P", Preview: Preview{Kind: "pdf"},
				Fields: []FieldSchema{{Name: "a", Kind: WidgetLine}}},
			wantCodes: []string{"INVALID_PREVIEW_KIND"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			valid, issues := NewValidator(&tt.page).Validate()
			assert.Equal(t, tt.wantValid, valid)

			var codes []string
			for _, i := range issues {
				codes = append(codes, i.Code)
			}
			assert.ElementsMatch(t, tt.wantCodes, codes)
		})
	}
}

func TestPage_IsIntended(t *testing.T) {
	p := Page{IntendedCollections: []string{"problems"}}
	assert.True(t, p.IsIntended("problems"))
	assert.False(t, p.IsIntended("posts"))
	assert.True(t, (&Page{}).IsIntended("anything"))
}

func TestNormalize(t *testing.T) {
	p := Page{
		Title:  "  Posts ",
		Fields: []FieldSchema{{Name: " body ", Kind: "TextEdit", Sources: []string{" posts "}}},
	}
	p.Normalize()
	assert.Equal(t, "Posts", p.Title)
	assert.Equal(t, "body", p.Fields[0].Name)
	assert.Equal(t, WidgetMultiline, p.Fields[0].Kind)
	assert.Equal(t, SourceList{"posts"}, p.Fields[0].Sources)
	assert.Equal(t, PreviewNone, p.Preview.Kind)
}
