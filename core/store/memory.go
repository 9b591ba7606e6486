package store

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/asaidimu/go-folio/core/query"
	"github.com/asaidimu/go-folio/utils"
)

// MemoryInteractor keeps documents in process memory. It backs tests, the
// example program, and the "memory" store driver.
type MemoryInteractor struct {
	mu          sync.RWMutex
	collections map[string]map[string]Record
}

var _ DatabaseInteractor = (*MemoryInteractor)(nil)

// NewMemoryInteractor creates an empty in-memory backend.
func NewMemoryInteractor() *MemoryInteractor {
	return &MemoryInteractor{collections: make(map[string]map[string]Record)}
}

func (m *MemoryInteractor) Collections(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Sorted(maps.Keys(m.collections)), nil
}

func (m *MemoryInteractor) CollectionExists(ctx context.Context, name string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.collections[name]) > 0, nil
}

func (m *MemoryInteractor) SelectDocuments(ctx context.Context, collection string, filter *query.QueryFilter) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	docs := m.collections[collection]
	out := make([]Record, 0, len(docs))
	for _, id := range slices.Sorted(maps.Keys(docs)) {
		r := docs[id]
		ok, err := query.Match(filter, r.Data)
		if err != nil {
			return nil, fmt.Errorf("filter evaluation failed: %w", err)
		}
		if ok {
			out = append(out, cloneRecord(r))
		}
	}
	return out, nil
}

func (m *MemoryInteractor) SelectDocument(ctx context.Context, collection, id string) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.collections[collection][id]
	if !ok {
		return nil, nil
	}
	c := cloneRecord(r)
	return &c, nil
}

func (m *MemoryInteractor) InsertDocument(ctx context.Context, record Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	docs, ok := m.collections[record.Collection]
	if !ok {
		docs = make(map[string]Record)
		m.collections[record.Collection] = docs
	}
	if _, taken := docs[record.ID]; taken {
		return ErrDocumentExists
	}
	docs[record.ID] = cloneRecord(record)
	return nil
}

func (m *MemoryInteractor) MergeDocument(ctx context.Context, collection, id string, fields map[string]any, updated time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.collections[collection][id]
	if !ok {
		return false, nil
	}
	if r.Data == nil {
		r.Data = make(map[string]any, len(fields))
	}
	// a nil value removes the key, as json_patch and jsonb_strip_nulls do
	for k, v := range utils.CloneMap(fields) {
		if v == nil {
			delete(r.Data, k)
			continue
		}
		r.Data[k] = v
	}
	r.Updated = updated
	m.collections[collection][id] = r
	return true, nil
}

func cloneRecord(r Record) Record {
	r.Data = utils.CloneMap(r.Data)
	return r
}
