package store

import (
	"context"
	"time"

	"github.com/asaidimu/go-folio/core/query"
)

// InteractorOptions provides configuration for SQL interactors.
type InteractorOptions struct {
	// IfNotExists adds IF NOT EXISTS to the CREATE TABLE/INDEX statements so an
	// existing database can be reopened.
	IfNotExists bool

	// TablePrefix is prepended to the documents table name.
	TablePrefix string
}

// DefaultInteractorOptions returns the options used when none are supplied.
func DefaultInteractorOptions() *InteractorOptions {
	return &InteractorOptions{IfNotExists: true}
}

// TableName returns the documents table name with the configured prefix.
func (o *InteractorOptions) TableName() string {
	if o == nil {
		return "documents"
	}
	return o.TablePrefix + "documents"
}

// Record is the physical form of one document as a backend stores it.
type Record struct {
	Collection string
	ID         string
	Data       map[string]any
	Created    time.Time
	Updated    time.Time
}

// DatabaseInteractor defines the backend operations the Store is built on. A
// collection exists implicitly while it holds at least one record.
type DatabaseInteractor interface {
	// Collections lists distinct collection names, sorted.
	Collections(ctx context.Context) ([]string, error)

	// CollectionExists reports whether any record belongs to name.
	CollectionExists(ctx context.Context, name string) (bool, error)

	// SelectDocuments returns the records of collection matching filter, ordered by id.
	SelectDocuments(ctx context.Context, collection string, filter *query.QueryFilter) ([]Record, error)

	// SelectDocument returns one record, or nil when absent.
	SelectDocument(ctx context.Context, collection, id string) (*Record, error)

	// InsertDocument stores a new record. It returns ErrDocumentExists when the
	// (collection, id) pair is taken.
	InsertDocument(ctx context.Context, record Record) error

	// MergeDocument merges fields into the stored data of an existing record and
	// sets its updated time. It reports false when the record does not exist.
	MergeDocument(ctx context.Context, collection, id string, fields map[string]any, updated time.Time) (bool, error)
}
