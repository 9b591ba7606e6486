package store

import (
	"context"
	"fmt"
	"maps"
	"strings"
	"sync"
	"time"

	"github.com/asaidimu/go-events"
	"github.com/asaidimu/go-folio/core/query"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Store implements Gateway on top of a DatabaseInteractor. It owns the clock
// used for "created"/"updated" stamps, assigns identifiers to documents created
// without one, and publishes a PersistenceEvent around every operation.
type Store struct {
	interactor DatabaseInteractor
	logger     *zap.Logger
	now        func() time.Time
	newID      func() string

	bus           *events.TypedEventBus[PersistenceEvent]
	subscriptions map[string]*SubscriptionInfo
	subMu         sync.RWMutex
}

var _ Gateway = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used by the store.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock replaces the wall clock used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator replaces the generator used for server-assigned document ids.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// New creates a Store over the given interactor and initializes its event bus.
func New(interactor DatabaseInteractor, opts ...Option) (*Store, error) {
	if interactor == nil {
		return nil, fmt.Errorf("store: interactor is required")
	}

	bus, err := events.NewTypedEventBus[PersistenceEvent](events.DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("could not initialize event bus: %w", err)
	}

	s := &Store{
		interactor:    interactor,
		logger:        zap.NewNop(),
		now:           func() time.Time { return time.Now().UTC() },
		newID:         func() string { return uuid.New().String() },
		bus:           bus,
		subscriptions: make(map[string]*SubscriptionInfo),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Collections returns the names of all non-empty collections.
func (s *Store) Collections(ctx context.Context) ([]string, error) {
	names, err := s.interactor.Collections(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	return names, nil
}

// CollectionExists reports whether a collection holds at least one document.
func (s *Store) CollectionExists(ctx context.Context, name string) (bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, nil
	}
	exists, err := s.interactor.CollectionExists(ctx, name)
	if err != nil {
		return false, fmt.Errorf("failed to check collection %q: %w", name, err)
	}
	return exists, nil
}

// ListDocuments returns the documents of collection matching filter, each
// carrying its id under "id". Absent collections yield nil.
func (s *Store) ListDocuments(ctx context.Context, collection string, filter *query.QueryFilter) ([]Document, error) {
	result, err := s.withEventEmission(
		"read",
		DocumentReadStart,
		DocumentReadSuccess,
		DocumentReadFailed,
		collection,
		"",
		nil,
		filter,
		func() (any, error) {
			exists, err := s.CollectionExists(ctx, collection)
			if err != nil || !exists {
				return []Document(nil), err
			}

			records, err := s.interactor.SelectDocuments(ctx, collection, filter)
			if err != nil {
				return nil, fmt.Errorf("failed to list documents in %q: %w", collection, err)
			}

			docs := make([]Document, 0, len(records))
			for _, r := range records {
				doc := recordToDocument(r)
				doc[FieldID] = r.ID
				docs = append(docs, doc)
			}
			return docs, nil
		},
	)
	if err != nil {
		return nil, err
	}
	return result.([]Document), nil
}

// GetDocument returns the fields of one document, or nil when it is absent.
func (s *Store) GetDocument(ctx context.Context, collection, id string) (Document, error) {
	result, err := s.withEventEmission(
		"read",
		DocumentReadStart,
		DocumentReadSuccess,
		DocumentReadFailed,
		collection,
		id,
		nil,
		nil,
		func() (any, error) {
			if strings.TrimSpace(collection) == "" || strings.TrimSpace(id) == "" {
				return Document(nil), nil
			}
			r, err := s.interactor.SelectDocument(ctx, collection, id)
			if err != nil {
				return nil, fmt.Errorf("failed to read %s/%s: %w", collection, id, err)
			}
			if r == nil {
				return Document(nil), nil
			}
			return recordToDocument(*r), nil
		},
	)
	if err != nil {
		return nil, err
	}
	return result.(Document), nil
}

// CreateDocument stores a new document and returns its id.
func (s *Store) CreateDocument(ctx context.Context, collection, id string, fields Document) (string, error) {
	collection = strings.TrimSpace(collection)
	result, err := s.withEventEmission(
		"create",
		DocumentCreateStart,
		DocumentCreateSuccess,
		DocumentCreateFailed,
		collection,
		id,
		fields,
		nil,
		func() (any, error) {
			if collection == "" {
				return nil, ErrInvalidCollection
			}
			if id == "" {
				id = s.newID()
			}

			existed, err := s.interactor.CollectionExists(ctx, collection)
			if err != nil {
				return nil, fmt.Errorf("failed to check collection %q: %w", collection, err)
			}

			now := s.now()
			record := Record{
				Collection: collection,
				ID:         id,
				Data:       s.sanitize(fields),
				Created:    now,
				Updated:    now,
			}
			if err := s.interactor.InsertDocument(ctx, record); err != nil {
				return nil, fmt.Errorf("failed to create %s/%s: %w", collection, id, err)
			}

			s.logger.Debug("Document created",
				zap.String("collection", collection),
				zap.String("id", id),
			)

			if !existed {
				s.logger.Info("Collection created", zap.String("collection", collection))
				s.emitEvent(createEvent(CollectionCreateSuccess, "create", collection, id, nil, nil, nil, nil, time.Time{}))
			}
			return id, nil
		},
	)
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

// UpdateDocument merges fields into an existing document. It reports false
// when the document does not exist so callers can fall back to CreateDocument.
func (s *Store) UpdateDocument(ctx context.Context, collection, id string, fields Document) (bool, error) {
	collection = strings.TrimSpace(collection)
	result, err := s.withEventEmission(
		"update",
		DocumentUpdateStart,
		DocumentUpdateSuccess,
		DocumentUpdateFailed,
		collection,
		id,
		fields,
		nil,
		func() (any, error) {
			if collection == "" {
				return nil, ErrInvalidCollection
			}
			if strings.TrimSpace(id) == "" {
				return nil, ErrInvalidDocumentID
			}

			ok, err := s.interactor.MergeDocument(ctx, collection, id, s.sanitize(fields), s.now())
			if err != nil {
				return nil, fmt.Errorf("failed to update %s/%s: %w", collection, id, err)
			}
			if !ok {
				s.logger.Debug("Document not found for update",
					zap.String("collection", collection),
					zap.String("id", id),
				)
			}
			return ok, nil
		},
	)
	if err != nil {
		return false, err
	}
	return result.(bool), nil
}

// sanitize copies fields without the keys the store manages itself.
func (s *Store) sanitize(fields Document) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		switch k {
		case FieldID, FieldCreated, FieldUpdated:
			s.logger.Debug("Dropping reserved field from write", zap.String("field", k))
			continue
		}
		out[k] = v
	}
	return out
}

func recordToDocument(r Record) Document {
	doc := make(Document, len(r.Data)+2)
	maps.Copy(doc, r.Data)
	if !r.Created.IsZero() {
		doc[FieldCreated] = r.Created
	}
	if !r.Updated.IsZero() {
		doc[FieldUpdated] = r.Updated
	}
	return doc
}
