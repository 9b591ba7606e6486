// Package editor implements the collection editor: it binds a page's fields
// to widgets, resolves the active collection and document, and loads and
// saves composite documents whose fields are spread across several source
// collections sharing one document id.
//
// An Editor is driven from a single goroutine (the UI loop) and is not safe
// for concurrent use.
package editor

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/asaidimu/go-folio/core/binder"
	"github.com/asaidimu/go-folio/core/query"
	"github.com/asaidimu/go-folio/core/render"
	"github.com/asaidimu/go-folio/core/schema"
	"github.com/asaidimu/go-folio/core/store"
	"github.com/asaidimu/go-folio/utils"
	"go.uber.org/zap"
)

// TagField is the document key that carries a page's tag.
const TagField = "tag"

type previewTarget struct {
	renderer render.Renderer
	surface  render.Surface
}

// Editor orchestrates one page against a store gateway.
type Editor struct {
	page     *schema.Page
	gateway  store.Gateway
	binder   *binder.Binder
	grouping binder.Grouping

	logger              *zap.Logger
	newID               func() string
	maxIDAttempts       int
	onCollectionCreated func(CollectionCreated)
	previews            []previewTarget

	phase           Phase
	collection      string
	collectionEntry string
	documentID      string
	documents       []string
	status          string
	warnings        []string

	ready   bool
	loading bool
}

// New builds an editor for page. The page is copied; widgets are created for
// every field and the fields driving the preview get a re-render hook.
func New(page *schema.Page, gateway store.Gateway, opts ...Option) (*Editor, error) {
	if page == nil {
		return nil, fmt.Errorf("editor: page is required")
	}
	if gateway == nil {
		return nil, fmt.Errorf("editor: gateway is required")
	}

	p := *page
	p.Fields = slices.Clone(page.Fields)

	e := &Editor{
		page:          &p,
		gateway:       gateway,
		logger:        zap.NewNop(),
		newID:         UUIDGenerator(),
		maxIDAttempts: DefaultMaxIDAttempts,
	}
	for _, opt := range opts {
		opt(e)
	}

	for i := range p.Fields {
		f := &p.Fields[i]
		if f.Name == p.Preview.Field || (f.Name == p.Preview.LanguageField && f.Name != "") {
			f.OnChange = chainHooks(f.OnChange, func(string) { e.onPreviewInput() })
		}
	}

	b, err := binder.New(p.Fields)
	if err != nil {
		return nil, fmt.Errorf("editor: %w", err)
	}
	e.binder = b
	e.grouping = binder.GroupBySourceCollection(p.Fields)
	e.logger = e.logger.With(zap.String("page", p.Title))
	return e, nil
}

func chainHooks(first, second func(string)) func(string) {
	if first == nil {
		return second
	}
	return func(v string) {
		first(v)
		second(v)
	}
}

// Ready opens the readiness gate. The first call performs the load that was
// pending for the current document id and the initial preview render; later
// calls do nothing.
func (e *Editor) Ready(ctx context.Context) error {
	if e.ready {
		return nil
	}
	e.ready = true
	e.logger.Debug("Editor ready")

	if e.phase == PhaseCollectionBound && strings.TrimSpace(e.documentID) != "" {
		found, err := e.LoadDocument(ctx, e.documentID, false)
		if err != nil || found {
			return err
		}
	}
	return e.RenderPreview()
}

// IsReady reports whether the readiness gate has fired.
func (e *Editor) IsReady() bool { return e.ready }

// SetCollection clears every field and binds the editor to name when that
// collection exists; otherwise the collection entry stays editable so a save
// can create it. The document picker is refreshed and, when documentID is
// given, the document is loaded.
func (e *Editor) SetCollection(ctx context.Context, name, documentID string) error {
	name = strings.TrimSpace(name)

	e.withLoading(e.binder.Clear)
	e.collectionEntry = name
	e.documentID = ""
	e.documents = nil
	e.warnings = nil
	e.collection = ""
	e.phase = PhaseCollectionUnset
	e.status = ""

	if name != "" {
		exists, err := e.gateway.CollectionExists(ctx, name)
		if err != nil {
			return e.fail("check collection", err)
		}
		if exists {
			e.phase = PhaseCollectionBound
			e.collection = name
		}
		e.advise(name)
	}

	e.logger.Debug("Collection set",
		zap.String("collection", name),
		zap.Stringer("phase", e.phase),
	)

	if err := e.refreshDocuments(ctx); err != nil {
		return err
	}

	if e.phase == PhaseCollectionUnset && name != "" {
		e.status = "Creating new collection"
	}

	e.documentID = strings.TrimSpace(documentID)
	if e.documentID != "" {
		if _, err := e.LoadDocument(ctx, e.documentID, false); err != nil {
			return err
		}
	}
	if err := e.RenderPreview(); err != nil {
		return err
	}
	return nil
}

// LoadDocument populates the widgets from the document documentID in every
// source collection. Source documents that do not exist are skipped; a field
// whose sources exist but lack its key is cleared. It reports whether any
// source held the id. Before Ready it does nothing.
func (e *Editor) LoadDocument(ctx context.Context, documentID string, silent bool) (bool, error) {
	if !e.ready {
		e.logger.Debug("Load dropped before ready", zap.String("id", documentID))
		return false, nil
	}

	if e.phase != PhaseCollectionBound {
		e.status = "Creating new collection"
		return false, nil
	}

	id := strings.TrimSpace(documentID)
	if id == "" {
		e.status = "Please enter a Document ID"
		return false, ErrBlankDocumentID
	}
	e.documentID = id

	// Every source is fetched before any widget changes; a backend error
	// leaves the form as it was.
	groups := e.groups(e.collection)
	docs := make([]store.Document, len(groups))
	found := false
	for i, grp := range groups {
		doc, err := e.gateway.GetDocument(ctx, grp.Collection, id)
		if err != nil {
			return false, e.fail("load document", err)
		}
		if doc == nil {
			e.logger.Debug("Source document missing, skipping",
				zap.String("collection", grp.Collection),
				zap.String("id", id),
			)
			continue
		}
		docs[i] = doc
		found = true
	}

	if found {
		values := make(map[string]string)
		for i, grp := range groups {
			if docs[i] == nil {
				continue
			}
			for _, field := range grp.Fields {
				v, ok := docs[i][field]
				if !ok {
					if _, seen := values[field]; !seen {
						values[field] = ""
					}
					continue
				}
				if cur, seen := values[field]; !seen || cur == "" {
					values[field] = formatValue(v)
				}
			}
		}

		e.loading = true
		for _, field := range e.binder.Fields() {
			if v, ok := values[field.Name]; ok {
				e.binder.SetValue(field.Name, v)
			}
		}
		e.loading = false
	}

	if !found {
		e.status = fmt.Sprintf("%q does not exist in %q", id, e.collection)
		return false, nil
	}

	e.logger.Info("Document loaded", zap.String("collection", e.collection), zap.String("id", id))
	if !silent {
		e.status = fmt.Sprintf("Loaded document %q", id)
	}
	if err := e.RenderPreview(); err != nil {
		return true, err
	}
	return true, nil
}

// SaveDocument writes the current field values. The anchor collection is the
// bound collection, or the collection entry when unbound. Every field must be
// non-blank; otherwise nothing is written. A document id is generated when
// the id entry is blank. Each source collection's fields are merged into the
// existing document or, when absent, written as a new one; the page tag is
// stored on the anchor document only. Before Ready it does nothing.
func (e *Editor) SaveDocument(ctx context.Context, silent bool) (SaveResult, error) {
	if !e.ready {
		e.logger.Debug("Save dropped before ready")
		return SaveResult{Skipped: true}, nil
	}
	e.warnings = nil

	anchor := e.collection
	if e.phase != PhaseCollectionBound {
		anchor = strings.TrimSpace(e.collectionEntry)
	}
	if anchor == "" {
		e.status = "Please enter a collection title to create"
		return SaveResult{}, ErrBlankCollection
	}

	values := e.binder.Values()
	for _, f := range e.page.Fields {
		if utils.IsBlank(values[f.Name]) {
			e.status = fmt.Sprintf("Field %q is empty", f.Name)
			return SaveResult{}, &BlankFieldError{Field: f.Name}
		}
	}

	e.advise(anchor)
	result := SaveResult{Collection: anchor, Warnings: slices.Clone(e.warnings)}

	groups := e.groups(anchor)

	anchorExisted := e.phase == PhaseCollectionBound
	if !anchorExisted {
		exists, err := e.gateway.CollectionExists(ctx, anchor)
		if err != nil {
			return result, e.fail("check collection", err)
		}
		anchorExisted = exists
	}

	docID := strings.TrimSpace(e.documentID)
	if docID == "" {
		id, err := e.generateID(ctx, groups)
		if err != nil {
			return result, e.fail("generate document id", err)
		}
		docID = id
	}
	result.DocumentID = docID

	for _, grp := range groups {
		fields := make(store.Document, len(grp.Fields)+1)
		for _, name := range grp.Fields {
			fields[name] = values[name]
		}
		if grp.Collection == anchor && e.page.Tag != "" {
			fields[TagField] = e.page.Tag
		}

		updated, err := e.gateway.UpdateDocument(ctx, grp.Collection, docID, fields)
		if err != nil {
			return result, e.fail("update document", err)
		}
		created := false
		if !updated {
			if _, err := e.gateway.CreateDocument(ctx, grp.Collection, docID, fields); err != nil {
				return result, e.fail("create document", err)
			}
			created = true
		}

		e.logger.Debug("Document written",
			zap.String("collection", grp.Collection),
			zap.String("id", docID),
			zap.Bool("created", created),
		)
		result.Writes = append(result.Writes, Write{Collection: grp.Collection, Created: created})
		if grp.Collection == anchor {
			result.Created = created
		}
	}

	e.documentID = docID
	if result.Created {
		e.logger.Info("Document created", zap.String("collection", anchor), zap.String("id", docID))
		if !silent {
			e.status = fmt.Sprintf("Created new doc with ID %q", docID)
		}
	} else {
		e.logger.Info("Document updated", zap.String("collection", anchor), zap.String("id", docID))
		if !silent {
			e.status = fmt.Sprintf("Updated doc with ID %q", docID)
		}
	}

	if e.phase != PhaseCollectionBound {
		e.phase = PhaseCollectionBound
		e.collection = anchor
		e.collectionEntry = anchor
	}
	if !anchorExisted {
		result.CollectionCreated = true
		e.logger.Info("Collection created", zap.String("collection", anchor))
		if e.onCollectionCreated != nil {
			e.onCollectionCreated(CollectionCreated{CollectionID: anchor, DocumentID: docID})
		}
	}

	if err := e.refreshDocuments(ctx); err != nil {
		return result, err
	}
	return result, nil
}

// groups resolves the field grouping against anchor. The anchor document is
// always part of the result so it can carry the tag and make the composite
// document listable.
func (e *Editor) groups(anchor string) binder.Grouping {
	resolved := e.grouping.Resolve(anchor)
	if resolved.Fields(anchor) == nil {
		resolved = append(resolved, binder.Group{Collection: anchor})
	}
	return resolved
}

// generateID draws ids until one is unused in every collection of groups.
func (e *Editor) generateID(ctx context.Context, groups binder.Grouping) (string, error) {
	for attempt := 1; attempt <= e.maxIDAttempts; attempt++ {
		id := e.newID()
		if strings.TrimSpace(id) == "" {
			continue
		}
		taken, err := e.idTaken(ctx, groups, id)
		if err != nil {
			return "", err
		}
		if !taken {
			return id, nil
		}
		e.logger.Debug("Generated id collides, retrying", zap.String("id", id), zap.Int("attempt", attempt))
	}
	return "", fmt.Errorf("%w after %d attempts", ErrIDSpaceExhausted, e.maxIDAttempts)
}

func (e *Editor) idTaken(ctx context.Context, groups binder.Grouping, id string) (bool, error) {
	for _, grp := range groups {
		doc, err := e.gateway.GetDocument(ctx, grp.Collection, id)
		if err != nil {
			return false, err
		}
		if doc != nil {
			return true, nil
		}
	}
	return false, nil
}

// refreshDocuments reloads the document picker for the bound collection,
// restricted to the page tag when one is set.
func (e *Editor) refreshDocuments(ctx context.Context) error {
	if e.phase != PhaseCollectionBound {
		e.documents = nil
		return nil
	}

	var filter *query.QueryFilter
	if e.page.Tag != "" {
		filter = query.NewQueryBuilder().Where(TagField).Eq(e.page.Tag).Build()
	}

	docs, err := e.gateway.ListDocuments(ctx, e.collection, filter)
	if err != nil {
		return e.fail("list documents", err)
	}

	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		if id, ok := d[store.FieldID].(string); ok {
			ids = append(ids, id)
		}
	}
	e.documents = ids
	return nil
}

// advise records a warning when collection is not intended for the page.
func (e *Editor) advise(collection string) {
	if e.page.IsIntended(collection) {
		return
	}
	msg := fmt.Sprintf("collection %q is not an intended collection for page %q (intended: %s)",
		collection, e.page.Title, strings.Join(e.page.IntendedCollections, ", "))
	e.logger.Warn("Collection not intended for page",
		zap.String("collection", collection),
		zap.Strings("intended", e.page.IntendedCollections),
	)
	e.warnings = append(e.warnings, msg)
}

// fail records a backend error in the status line and returns it wrapped.
func (e *Editor) fail(op string, err error) error {
	e.logger.Error("Operation failed", zap.String("op", op), zap.Error(err))
	e.status = "Error: " + err.Error()
	return fmt.Errorf("%s: %w", op, err)
}

// RenderPreview renders the current values and sends them to every preview
// surface. It does nothing before Ready.
func (e *Editor) RenderPreview() error {
	if !e.ready || len(e.previews) == 0 {
		return nil
	}
	values := e.binder.Values()
	var errs []error
	for _, p := range e.previews {
		payload, err := p.renderer.Render(values)
		if err != nil {
			e.logger.Warn("Preview render failed", zap.Error(err))
			errs = append(errs, err)
			continue
		}
		if err := p.surface.RenderContent(payload); err != nil {
			e.logger.Warn("Preview surface rejected content", zap.Error(err))
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("render preview: %w", err)
	}
	return nil
}

// onPreviewInput re-renders after a preview field changed, except while a
// load is populating several fields at once.
func (e *Editor) onPreviewInput() {
	if e.loading {
		return
	}
	_ = e.RenderPreview()
}

func (e *Editor) withLoading(fn func()) {
	e.loading = true
	defer func() { e.loading = false }()
	fn()
}

// SetCollectionName edits the collection entry of an unbound editor.
func (e *Editor) SetCollectionName(name string) error {
	if e.phase == PhaseCollectionBound {
		return ErrCollectionReadOnly
	}
	e.collectionEntry = name
	return nil
}

// SetDocumentID edits the document id entry without loading.
func (e *Editor) SetDocumentID(id string) {
	e.documentID = id
}

// SelectDocument picks a document from the picker and loads it.
func (e *Editor) SelectDocument(ctx context.Context, id string) (bool, error) {
	e.documentID = id
	return e.LoadDocument(ctx, id, false)
}

// SetField sets the value of one field.
func (e *Editor) SetField(name, value string) error {
	return e.binder.SetValue(name, value)
}

// Field returns the value of one field.
func (e *Editor) Field(name string) (string, error) {
	return e.binder.Value(name)
}

// Clear empties every field and the document id entry. The collection
// binding is kept.
func (e *Editor) Clear() {
	e.withLoading(e.binder.Clear)
	e.documentID = ""
	e.status = ""
	_ = e.RenderPreview()
}

// Documents returns the ids listed in the document picker.
func (e *Editor) Documents() []string { return slices.Clone(e.documents) }

// Status returns the one-line report of the last operation.
func (e *Editor) Status() string { return e.status }

// Warnings returns the advisory warnings raised by the last SetCollection or
// SaveDocument.
func (e *Editor) Warnings() []string { return slices.Clone(e.warnings) }

// Page returns the page the editor was built from.
func (e *Editor) Page() *schema.Page { return e.page }

// Fields returns the page fields in declaration order.
func (e *Editor) Fields() []schema.FieldSchema { return e.binder.Fields() }

// Widgets returns the field widgets in declaration order.
func (e *Editor) Widgets() []binder.Widget { return e.binder.Widgets() }

// Grouping returns the unresolved field grouping.
func (e *Editor) Grouping() binder.Grouping { return slices.Clone(e.grouping) }

// State returns a snapshot of the editor.
func (e *Editor) State() State {
	return State{
		Phase:            e.phase,
		ActiveCollection: e.collection,
		CollectionEntry:  e.collectionEntry,
		ActiveDocumentID: e.documentID,
		FieldValues:      e.binder.Values(),
	}
}

// formatValue renders a stored value as widget text.
func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case time.Time:
		return t.Format(time.RFC3339)
	default:
		return fmt.Sprint(t)
	}
}
