package binder

import (
	"slices"

	"github.com/asaidimu/go-folio/core/schema"
)

// Group lists the fields persisted to one collection.
type Group struct {
	// Collection is a collection name, or schema.Anchor.
	Collection string
	Fields     []string
}

// Grouping is an ordered partition of fields by source collection. A field
// with several sources appears in every one of their groups.
type Grouping []Group

// GroupBySourceCollection groups fields by their declared sources. Groups are
// ordered by the first field that names them; fields keep declaration order.
func GroupBySourceCollection(fields []schema.FieldSchema) Grouping {
	var g Grouping
	for _, f := range fields {
		for _, src := range f.SourceCollections() {
			g = g.add(src, f.Name)
		}
	}
	return g
}

func (g Grouping) add(collection, field string) Grouping {
	for i := range g {
		if g[i].Collection == collection {
			if !slices.Contains(g[i].Fields, field) {
				g[i].Fields = append(g[i].Fields, field)
			}
			return g
		}
	}
	return append(g, Group{Collection: collection, Fields: []string{field}})
}

// Collections returns the group keys in order.
func (g Grouping) Collections() []string {
	out := make([]string, len(g))
	for i, grp := range g {
		out[i] = grp.Collection
	}
	return out
}

// Fields returns the fields of one collection, or nil.
func (g Grouping) Fields(collection string) []string {
	for _, grp := range g {
		if grp.Collection == collection {
			return slices.Clone(grp.Fields)
		}
	}
	return nil
}

// Resolve replaces schema.Anchor with anchor and merges groups that now name
// the same physical collection.
func (g Grouping) Resolve(anchor string) Grouping {
	var out Grouping
	for _, grp := range g {
		name := grp.Collection
		if name == schema.Anchor {
			name = anchor
		}
		for _, f := range grp.Fields {
			out = out.add(name, f)
		}
	}
	return out
}
