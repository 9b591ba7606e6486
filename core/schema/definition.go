package schema

import (
	"fmt"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// WidgetKind selects the input a field is edited with.
type WidgetKind string

const (
	WidgetLine      WidgetKind = "line"      // Single-line text input
	WidgetMultiline WidgetKind = "multiline" // Multi-line text area
	WidgetChoice    WidgetKind = "choice"    // One out of a set of pre-defined options
)

// kindAliases maps the widget names used by older page definitions onto the
// current kinds.
var kindAliases = map[string]WidgetKind{
	"lineedit": WidgetLine,
	"textedit": WidgetMultiline,
	"dropdown": WidgetChoice,
	"text":     WidgetLine,
	"textarea": WidgetMultiline,
	"select":   WidgetChoice,
}

// IsValid reports whether k is one of the supported kinds.
func (k WidgetKind) IsValid() bool {
	switch k {
	case WidgetLine, WidgetMultiline, WidgetChoice:
		return true
	}
	return false
}

// Anchor is the source collection name that stands for the document's own
// collection, whichever collection the editor is bound to.
const Anchor = ""

// FieldSchema declares one editable field of a page.
type FieldSchema struct {
	Name    string     `yaml:"name" json:"name"`
	Kind    WidgetKind `yaml:"kind" json:"kind"`
	Label   string     `yaml:"label,omitempty" json:"label,omitempty"`
	Options []string   `yaml:"options,omitempty" json:"options,omitempty"`

	// Sources is the ordered set of collections the field is persisted to. A
	// null (or empty) entry is Anchor. An omitted list means [Anchor].
	Sources SourceList `yaml:"sources,omitempty" json:"sources,omitempty"`

	// OnChange, when set, is called with the new value whenever the field's
	// widget changes.
	OnChange func(value string) `yaml:"-" json:"-"`
}

// SourceList is the source collections of a field.
type SourceList []string

// UnmarshalYAML keeps null entries as Anchor. yaml.v3 drops them when
// decoding straight into a []string.
func (l *SourceList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.SequenceNode {
		return fmt.Errorf("line %d: sources must be a list", node.Line)
	}
	out := make(SourceList, 0, len(node.Content))
	for _, item := range node.Content {
		if item.Kind == yaml.ScalarNode && item.Tag == "!!null" {
			out = append(out, Anchor)
			continue
		}
		var name string
		if err := item.Decode(&name); err != nil {
			return fmt.Errorf("line %d: invalid source: %w", item.Line, err)
		}
		out = append(out, name)
	}
	*l = out
	return nil
}

// DisplayLabel returns the label, falling back to the field name.
func (f FieldSchema) DisplayLabel() string {
	if strings.TrimSpace(f.Label) != "" {
		return f.Label
	}
	return f.Name
}

// SourceCollections returns the field's sources, defaulting to [Anchor].
func (f FieldSchema) SourceCollections() []string {
	if len(f.Sources) == 0 {
		return []string{Anchor}
	}
	return slices.Clone([]string(f.Sources))
}

// PreviewKind selects how a page renders its preview pane.
type PreviewKind string

const (
	PreviewNone     PreviewKind = "none"
	PreviewMarkdown PreviewKind = "markdown"
	PreviewCode     PreviewKind = "code"
)

// Preview declares which fields drive a page's rendered preview.
type Preview struct {
	Kind PreviewKind `yaml:"kind" json:"kind"`
	// Field holds the markdown text or source code to render.
	Field string `yaml:"field,omitempty" json:"field,omitempty"`
	// LanguageField names a field whose value selects the code language.
	LanguageField string `yaml:"language_field,omitempty" json:"language_field,omitempty"`
	// Language is the code language when no LanguageField is set.
	Language string `yaml:"language,omitempty" json:"language,omitempty"`
}

// Page is a declarative form: the fields a screen edits plus its tag,
// intended collections and preview configuration.
type Page struct {
	Title string `yaml:"title" json:"title"`

	// Tag, when set, is stored on every anchor document saved through the page
	// and restricts document listings to documents carrying it.
	Tag string `yaml:"tag,omitempty" json:"tag,omitempty"`

	// IntendedCollections lists the anchor collections the page is meant for.
	// Saving into any other collection is allowed but produces a warning.
	IntendedCollections []string `yaml:"intended_collections,omitempty" json:"intended_collections,omitempty"`

	// DefaultCollection is preselected when the page opens without one.
	DefaultCollection string `yaml:"collection,omitempty" json:"collection,omitempty"`

	// Theme names the preview theme (e.g. "dark", "light", "github-dark").
	Theme string `yaml:"theme,omitempty" json:"theme,omitempty"`

	Preview Preview       `yaml:"preview,omitempty" json:"preview,omitempty"`
	Fields  []FieldSchema `yaml:"fields" json:"fields"`
}

// FindField returns the field with the given name, or nil.
func (p *Page) FindField(name string) *FieldSchema {
	for i := range p.Fields {
		if p.Fields[i].Name == name {
			return &p.Fields[i]
		}
	}
	return nil
}

// FieldNames returns the field names in declaration order.
func (p *Page) FieldNames() []string {
	names := make([]string, len(p.Fields))
	for i, f := range p.Fields {
		names[i] = f.Name
	}
	return names
}

// IsIntended reports whether collection is acceptable as an anchor for the
// page. Pages that declare no intended collections accept any.
func (p *Page) IsIntended(collection string) bool {
	return len(p.IntendedCollections) == 0 || slices.Contains(p.IntendedCollections, collection)
}

// Normalize canonicalises a page in place. Widget kinds default to line and
// legacy names (lineedit, textedit, dropdown) map onto the current kinds.
func (p *Page) Normalize() {
	p.Title = strings.TrimSpace(p.Title)
	p.Tag = strings.TrimSpace(p.Tag)
	for i := range p.Fields {
		f := &p.Fields[i]
		f.Name = strings.TrimSpace(f.Name)
		kind := strings.ToLower(strings.TrimSpace(string(f.Kind)))
		if alias, ok := kindAliases[kind]; ok {
			f.Kind = alias
		} else if kind == "" {
			f.Kind = WidgetLine
		} else {
			f.Kind = WidgetKind(kind)
		}
		for j := range f.Sources {
			f.Sources[j] = strings.TrimSpace(f.Sources[j])
		}
	}
	if p.Preview.Kind == "" {
		p.Preview.Kind = PreviewNone
	}
}

// Issue represents a validation or operational issue.
type Issue struct {
	Code        string `json:"code"`
	Message     string `json:"message"`
	Path        string `json:"path,omitempty"`
	Severity    string `json:"severity,omitempty"` // e.g., "error", "warning"
	Description string `json:"description,omitempty"`
}

type ValidationResult struct {
	Valid  bool    `json:"valid"`
	Issues []Issue `json:"issues"`
}
