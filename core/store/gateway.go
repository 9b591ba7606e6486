// Package store is the gateway between the editor and the document database.
// It exposes collections of keyed documents, stamps write timestamps, assigns
// identifiers for documents created without one, and publishes persistence
// events for observers. The actual storage is delegated to a
// DatabaseInteractor (SQLite, PostgreSQL, or in-memory).
package store

import (
	"context"
	"errors"

	"github.com/asaidimu/go-folio/core/query"
)

// Reserved document keys managed by the store.
const (
	FieldID      = "id"
	FieldCreated = "created"
	FieldUpdated = "updated"
)

var (
	// ErrInvalidCollection is returned when a collection name is blank.
	ErrInvalidCollection = errors.New("invalid collection name")
	// ErrInvalidDocumentID is returned when a write needs a document id and none is given.
	ErrInvalidDocumentID = errors.New("invalid document id")
	// ErrDocumentExists is returned when creating a document whose id is taken.
	ErrDocumentExists = errors.New("document already exists")
)

// Document is a keyed mapping of field name to value. Documents returned by a
// Gateway carry their timestamps as time.Time values under "created" and
// "updated"; listings additionally carry "id".
type Document map[string]any

// Gateway is the request/response surface the editor talks to. Read operations
// report absence with nil results rather than errors.
type Gateway interface {
	// Collections returns the names of all collections holding documents, sorted.
	Collections(ctx context.Context) ([]string, error)

	// CollectionExists reports whether the collection holds at least one document.
	CollectionExists(ctx context.Context, name string) (bool, error)

	// ListDocuments returns the documents of a collection that satisfy filter
	// (nil matches all). It returns nil when the collection does not exist.
	ListDocuments(ctx context.Context, collection string, filter *query.QueryFilter) ([]Document, error)

	// GetDocument returns the document fields, or nil when it does not exist.
	GetDocument(ctx context.Context, collection, id string) (Document, error)

	// CreateDocument writes a new document and returns its id. An empty id asks
	// the store to assign one. Both "created" and "updated" are stamped.
	CreateDocument(ctx context.Context, collection, id string, fields Document) (string, error)

	// UpdateDocument merges fields into an existing document and stamps
	// "updated". It returns false, without writing, when the document does not exist.
	UpdateDocument(ctx context.Context, collection, id string, fields Document) (bool, error)
}
