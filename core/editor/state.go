package editor

// Phase is the binding state of an editor.
type Phase int

const (
	// PhaseUninitialized is the state before the first SetCollection.
	PhaseUninitialized Phase = iota
	// PhaseCollectionUnset means the collection entry names no existing
	// collection; a save will create it.
	PhaseCollectionUnset
	// PhaseCollectionBound means the editor is bound to an existing collection.
	PhaseCollectionBound
)

func (p Phase) String() string {
	switch p {
	case PhaseUninitialized:
		return "uninitialized"
	case PhaseCollectionUnset:
		return "collection-unset"
	case PhaseCollectionBound:
		return "collection-bound"
	default:
		return "unknown"
	}
}

// State is an immutable snapshot of an editor.
type State struct {
	Phase Phase
	// ActiveCollection is the bound collection, or "" when unbound.
	ActiveCollection string
	// CollectionEntry is the text of the collection entry.
	CollectionEntry string
	// ActiveDocumentID is the text of the document id entry.
	ActiveDocumentID string
	FieldValues      map[string]string
}

// CollectionCreated is delivered after a save created a new anchor collection.
type CollectionCreated struct {
	CollectionID string
	DocumentID   string
}

// Write describes one physical document written by a save.
type Write struct {
	Collection string
	// Created is true when the document did not exist and was created.
	Created bool
}

// SaveResult describes the outcome of SaveDocument.
type SaveResult struct {
	// Skipped is true when the save was dropped because the editor was not ready.
	Skipped bool

	Collection string
	DocumentID string
	// Created is true when the anchor document was created rather than updated.
	Created bool
	// CollectionCreated is true when the save created the anchor collection.
	CollectionCreated bool
	Writes            []Write
	// Warnings holds advisory messages; they never block a save.
	Warnings []string
}
