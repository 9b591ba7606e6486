package editor

import (
	"errors"
	"fmt"

	"github.com/asaidimu/go-folio/core/binder"
)

var (
	// ErrBlankCollection is returned by SaveDocument when no collection is
	// bound and the collection entry is blank.
	ErrBlankCollection = errors.New("collection name is blank")

	// ErrBlankDocumentID is returned by LoadDocument when no id is given.
	ErrBlankDocumentID = errors.New("document id is blank")

	// ErrCollectionReadOnly is returned when renaming the collection of a
	// bound editor.
	ErrCollectionReadOnly = errors.New("collection is bound and read-only")

	// ErrUnknownField is returned for field names the page does not declare.
	ErrUnknownField = binder.ErrUnknownField

	// ErrIDSpaceExhausted is returned when no unused document id was found
	// within the configured number of attempts.
	ErrIDSpaceExhausted = errors.New("document id space exhausted")
)

// BlankFieldError reports the first field found blank during a save.
type BlankFieldError struct {
	Field string
}

func (e *BlankFieldError) Error() string {
	return fmt.Sprintf("field %q is empty", e.Field)
}
