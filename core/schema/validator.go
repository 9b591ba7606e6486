// Package schema defines declarative editor pages (fields, widget kinds,
// source collections, previews), loads them from YAML or JSON, and validates
// them before an editor is built from one.
package schema

import (
	"fmt"
	"slices"
	"strings"
)

// Names the store manages on every document; fields may not use them.
var reservedFieldNames = []string{"id", "created", "updated"}

// Validator checks a page definition for structural problems. Issues with
// severity "warning" do not make a page invalid.
type Validator struct {
	page   *Page
	issues []Issue
}

// NewValidator creates a new Validator for a page.
func NewValidator(page *Page) *Validator {
	return &Validator{page: page, issues: make([]Issue, 0)}
}

// Validate returns whether the page is usable along with every issue found.
func (v *Validator) Validate() (bool, []Issue) {
	v.issues = make([]Issue, 0)

	if v.page == nil {
		v.addIssue("REQUIRED_FIELD_MISSING", "page is nil", "")
		return false, v.issues
	}

	if strings.TrimSpace(v.page.Title) == "" {
		v.addIssue("REQUIRED_FIELD_MISSING", "page title is required", "title")
	}
	if len(v.page.Fields) == 0 {
		v.addIssue("REQUIRED_FIELD_MISSING", "page must declare at least one field", "fields")
	}

	seen := make(map[string]bool, len(v.page.Fields))
	for i, f := range v.page.Fields {
		v.validateField(f, fmt.Sprintf("fields[%d]", i), seen)
	}
	v.validatePreview()

	valid := true
	for _, issue := range v.issues {
		if issue.Severity == "error" {
			valid = false
			break
		}
	}
	return valid, v.issues
}

func (v *Validator) validateField(f FieldSchema, path string, seen map[string]bool) {
	switch {
	case strings.TrimSpace(f.Name) == "":
		v.addIssue("REQUIRED_FIELD_MISSING", "field name is required", path+".name")
	case seen[f.Name]:
		v.addIssue("DUPLICATE_FIELD", fmt.Sprintf("field %q is declared more than once", f.Name), path+".name")
	case slices.Contains(reservedFieldNames, f.Name):
		v.addIssue("RESERVED_FIELD_NAME", fmt.Sprintf("field name %q is managed by the store", f.Name), path+".name")
	case v.page.Tag != "" && f.Name == "tag":
		v.addIssue("RESERVED_FIELD_NAME", `field name "tag" collides with the page tag`, path+".name")
	}
	seen[f.Name] = true

	if !f.Kind.IsValid() {
		v.addIssue("INVALID_WIDGET_KIND", fmt.Sprintf("unknown widget kind %q", f.Kind), path+".kind")
	}

	if f.Kind == WidgetChoice {
		if len(f.Options) == 0 {
			v.addIssue("MISSING_OPTIONS", fmt.Sprintf("choice field %q needs options", f.Name), path+".options")
		}
		opts := make(map[string]bool, len(f.Options))
		for j, o := range f.Options {
			optPath := fmt.Sprintf("%s.options[%d]", path, j)
			if strings.TrimSpace(o) == "" {
				v.addIssue("BLANK_OPTION", "options may not be blank; the blank choice is implicit", optPath)
			}
			if opts[o] {
				v.addIssue("DUPLICATE_OPTION", fmt.Sprintf("option %q is listed more than once", o), optPath)
			}
			opts[o] = true
		}
	} else if len(f.Options) > 0 {
		v.addWarning("UNUSED_OPTIONS", fmt.Sprintf("options are ignored for %s field %q", f.Kind, f.Name), path+".options")
	}

	sources := make(map[string]bool, len(f.Sources))
	for j, s := range f.Sources {
		if sources[s] {
			name := s
			if name == Anchor {
				name = "null"
			}
			v.addIssue("DUPLICATE_SOURCE", fmt.Sprintf("source %s is listed more than once", name), fmt.Sprintf("%s.sources[%d]", path, j))
		}
		sources[s] = true
	}
}

func (v *Validator) validatePreview() {
	p := v.page.Preview
	switch p.Kind {
	case "", PreviewNone:
		return
	case PreviewMarkdown, PreviewCode:
	default:
		v.addIssue("INVALID_PREVIEW_KIND", fmt.Sprintf("unknown preview kind %q", p.Kind), "preview.kind")
		return
	}

	if p.Field == "" {
		v.addIssue("REQUIRED_FIELD_MISSING", "preview field is required", "preview.field")
	} else if v.page.FindField(p.Field) == nil {
		v.addIssue("UNKNOWN_PREVIEW_FIELD", fmt.Sprintf("preview field %q is not declared", p.Field), "preview.field")
	}
	if p.LanguageField != "" && v.page.FindField(p.LanguageField) == nil {
		v.addIssue("UNKNOWN_PREVIEW_FIELD", fmt.Sprintf("language field %q is not declared", p.LanguageField), "preview.language_field")
	}
	if p.Kind == PreviewMarkdown && p.LanguageField != "" {
		v.addWarning("UNUSED_LANGUAGE_FIELD", "markdown previews ignore language_field", "preview.language_field")
	}
}

// addIssue adds a new validation issue to the validator's list of issues.
func (v *Validator) addIssue(code, message, path string) {
	v.issues = append(v.issues, Issue{
		Code:     code,
		Message:  message,
		Path:     path,
		Severity: "error",
	})
}

func (v *Validator) addWarning(code, message, path string) {
	v.issues = append(v.issues, Issue{
		Code:     code,
		Message:  message,
		Path:     path,
		Severity: "warning",
	})
}

// ValidationError reports the issues that made a page unusable.
type ValidationError struct {
	Page   string
	Issues []Issue
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		if issue.Severity != "error" {
			continue
		}
		if issue.Path != "" {
			msgs = append(msgs, issue.Path+": "+issue.Message)
		} else {
			msgs = append(msgs, issue.Message)
		}
	}
	return fmt.Sprintf("invalid page %q: %s", e.Page, strings.Join(msgs, "; "))
}
