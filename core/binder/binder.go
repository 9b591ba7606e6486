// Package binder maps declarative field schemas onto editable widgets, moves
// values between widgets and plain strings, and groups fields by the
// collection each one is persisted to.
package binder

import (
	"errors"
	"fmt"

	"github.com/asaidimu/go-folio/core/schema"
)

// ErrUnknownField is returned when a field name is not part of the binder.
var ErrUnknownField = errors.New("unknown field")

// Binder owns one widget per field, in declaration order.
type Binder struct {
	fields  []schema.FieldSchema
	widgets map[string]Widget
}

// New creates a widget for every field.
func New(fields []schema.FieldSchema) (*Binder, error) {
	b := &Binder{
		fields:  make([]schema.FieldSchema, 0, len(fields)),
		widgets: make(map[string]Widget, len(fields)),
	}
	for _, f := range fields {
		if _, dup := b.widgets[f.Name]; dup {
			return nil, fmt.Errorf("field %q is declared more than once", f.Name)
		}
		w, err := CreateWidget(f)
		if err != nil {
			return nil, err
		}
		b.fields = append(b.fields, f)
		b.widgets[f.Name] = w
	}
	return b, nil
}

// Fields returns the bound field schemas in declaration order.
func (b *Binder) Fields() []schema.FieldSchema {
	out := make([]schema.FieldSchema, len(b.fields))
	copy(out, b.fields)
	return out
}

// Widget returns the widget bound to name.
func (b *Binder) Widget(name string) (Widget, bool) {
	w, ok := b.widgets[name]
	return w, ok
}

// Widgets returns the widgets in field order.
func (b *Binder) Widgets() []Widget {
	out := make([]Widget, len(b.fields))
	for i, f := range b.fields {
		out[i] = b.widgets[f.Name]
	}
	return out
}

// Value returns the current value of a field.
func (b *Binder) Value(name string) (string, error) {
	w, ok := b.widgets[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return w.Value(), nil
}

// SetValue sets the value of a field.
func (b *Binder) SetValue(name, value string) error {
	w, ok := b.widgets[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	w.SetValue(value)
	return nil
}

// Values returns a snapshot of every field value.
func (b *Binder) Values() map[string]string {
	out := make(map[string]string, len(b.widgets))
	for name, w := range b.widgets {
		out[name] = w.Value()
	}
	return out
}

// Clear resets every widget to the empty value.
func (b *Binder) Clear() {
	for _, f := range b.fields {
		b.widgets[f.Name].SetValue("")
	}
}
