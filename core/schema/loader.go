package schema

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// pageFile is the on-disk layout of a page definition file. JSON files are
// accepted as well since JSON is valid YAML.
type pageFile struct {
	Pages []Page `yaml:"pages"`
}

// LoadPages decodes, normalises and validates page definitions.
func LoadPages(r io.Reader) ([]Page, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read page definitions: %w", err)
	}

	var file pageFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to decode page definitions: %w", err)
	}

	titles := make(map[string]bool, len(file.Pages))
	for i := range file.Pages {
		p := &file.Pages[i]
		p.Normalize()

		if ok, issues := NewValidator(p).Validate(); !ok {
			return nil, &ValidationError{Page: p.Title, Issues: issues}
		}
		if titles[p.Title] {
			return nil, fmt.Errorf("page %q is defined more than once", p.Title)
		}
		titles[p.Title] = true
	}
	return file.Pages, nil
}

// LoadPagesFile reads page definitions from a YAML or JSON file.
func LoadPagesFile(path string) ([]Page, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open page definitions: %w", err)
	}
	defer f.Close()

	pages, err := LoadPages(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return pages, nil
}

// FindPage returns the page with the given title, or nil.
func FindPage(pages []Page, title string) *Page {
	for i := range pages {
		if pages[i].Title == title {
			return &pages[i]
		}
	}
	return nil
}
