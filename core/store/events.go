package store

import (
	"context"
	"time"

	"github.com/asaidimu/go-folio/core/query"
	"github.com/google/uuid"
)

// PersistenceEventType is the name under which a PersistenceEvent is published.
type PersistenceEventType string

const (
	DocumentCreateStart   PersistenceEventType = "document:create:start"
	DocumentCreateSuccess PersistenceEventType = "document:create:success"
	DocumentCreateFailed  PersistenceEventType = "document:create:failed"
	DocumentReadStart     PersistenceEventType = "document:read:start"
	DocumentReadSuccess   PersistenceEventType = "document:read:success"
	DocumentReadFailed    PersistenceEventType = "document:read:failed"
	DocumentUpdateStart   PersistenceEventType = "document:update:start"
	DocumentUpdateSuccess PersistenceEventType = "document:update:success"
	DocumentUpdateFailed  PersistenceEventType = "document:update:failed"

	// CollectionCreateSuccess is published when the first document of a
	// previously empty collection is written.
	CollectionCreateSuccess PersistenceEventType = "collection:create:success"
)

// PersistenceEvent represents events emitted during store operations.
type PersistenceEvent struct {
	Type       PersistenceEventType `json:"type"`                 // The type of event (e.g., 'document:create:start').
	Timestamp  int64                `json:"timestamp"`            // Unix milliseconds.
	Operation  string               `json:"operation"`            // create, read, update.
	Collection *string              `json:"collection,omitempty"` // Name of the collection affected.
	DocumentID *string              `json:"documentId,omitempty"`
	Input      any                  `json:"input,omitempty"`
	Output     any                  `json:"output,omitempty"`
	Error      *string              `json:"error,omitempty"`
	Query      any                  `json:"query,omitempty"`
	Duration   *int64               `json:"duration,omitempty"` // Milliseconds.
}

// EventCallbackFunction is invoked for every event a subscription matches.
type EventCallbackFunction func(ctx context.Context, event PersistenceEvent) error

// RegisterSubscriptionOptions configures a new event subscription.
type RegisterSubscriptionOptions struct {
	Event       PersistenceEventType
	Label       *string
	Description *string
	Callback    EventCallbackFunction
}

// SubscriptionInfo describes an active subscription.
type SubscriptionInfo struct {
	Id          *string              `json:"id,omitempty"`
	Event       PersistenceEventType `json:"event"`
	Label       *string              `json:"label,omitempty"`
	Description *string              `json:"description,omitempty"`
	Unsubscribe func()               `json:"-"`
}

func createEvent(
	eventType PersistenceEventType,
	operation string,
	collection string,
	documentID string,
	input any,
	output any,
	filter any,
	err *string,
	startTime time.Time,
) PersistenceEvent {
	var duration *int64
	if !startTime.IsZero() {
		d := time.Since(startTime).Milliseconds()
		duration = &d
	}

	var docID *string
	if documentID != "" {
		docID = query.StringPtr(documentID)
	}

	return PersistenceEvent{
		Type:       eventType,
		Timestamp:  time.Now().UnixMilli(),
		Operation:  operation,
		Collection: query.StringPtr(collection),
		DocumentID: docID,
		Input:      input,
		Output:     output,
		Error:      err,
		Query:      filter,
		Duration:   duration,
	}
}

// emitEvent is a helper method to emit events
func (s *Store) emitEvent(event PersistenceEvent) {
	if s.bus != nil {
		s.bus.Emit(string(event.Type), event)
	}
}

// withEventEmission wraps an operation with start, success, and failure events
func (s *Store) withEventEmission(
	operation string,
	startEventType PersistenceEventType,
	successEventType PersistenceEventType,
	failedEventType PersistenceEventType,
	collection string,
	documentID string,
	input any,
	queryParam any,
	fn func() (any, error),
) (any, error) {
	startTime := time.Now()

	s.emitEvent(createEvent(startEventType, operation, collection, documentID, input, nil, queryParam, nil, startTime))

	result, err := fn()
	if err != nil {
		s.emitEvent(createEvent(failedEventType, operation, collection, documentID, input, nil, queryParam, query.StringPtr(err.Error()), startTime))
		return nil, err
	}

	s.emitEvent(createEvent(successEventType, operation, collection, documentID, input, result, queryParam, nil, startTime))
	return result, nil
}

// RegisterSubscription registers a callback for a specific persistence event. It returns
// a unique ID that can be used to unregister the subscription later.
func (s *Store) RegisterSubscription(options RegisterSubscriptionOptions) string {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	unsubscribe := s.bus.Subscribe(string(options.Event), options.Callback)
	id := uuid.New().String()

	s.subscriptions[id] = &SubscriptionInfo{
		Id:          &id,
		Event:       options.Event,
		Label:       options.Label,
		Description: options.Description,
		Unsubscribe: unsubscribe,
	}
	return id
}

// UnregisterSubscription removes a subscription by its ID.
func (s *Store) UnregisterSubscription(id string) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	if info, ok := s.subscriptions[id]; ok {
		info.Unsubscribe()
		delete(s.subscriptions, id)
	}
}

// Subscriptions returns a list of all currently active subscriptions.
func (s *Store) Subscriptions() []SubscriptionInfo {
	s.subMu.RLock()
	defer s.subMu.RUnlock()

	subs := make([]SubscriptionInfo, 0, len(s.subscriptions))
	for _, sub := range s.subscriptions {
		subs = append(subs, *sub)
	}
	return subs
}
