package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/asaidimu/go-folio/core/query"
	"github.com/asaidimu/go-folio/core/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCreateTableSQL(t *testing.T) {
	i := NewPostgresInteractor(nil, nil, nil)
	stmts := i.CreateTableSQL()
	require.Len(t, stmts, 2)
	assert.Contains(t, stmts[0], `CREATE TABLE IF NOT EXISTS "documents"`)
	assert.Contains(t, stmts[0], "JSONB")
	assert.Contains(t, stmts[1], `"documents_collection_idx"`)
}

// TestInteractor_Live runs against a real server when FOLIO_TEST_POSTGRES_DSN is set.
func TestInteractor_Live(t *testing.T) {
	dsn := os.Getenv("FOLIO_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("FOLIO_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()

	db, _, err := Open(ctx, dsn, zap.NewNop(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	// isolate each run in its own table
	prefix := "t" + uuid.New().String()[:8] + "_"
	i := NewPostgresInteractor(db, zap.NewNop(), &store.InteractorOptions{IfNotExists: true, TablePrefix: prefix})
	require.NoError(t, i.CreateSchema(ctx))
	t.Cleanup(func() { db.Exec(`DROP TABLE ` + i.tableName()) })

	now := time.Now().UTC().Truncate(time.Microsecond)
	require.NoError(t, i.InsertDocument(ctx, store.Record{
		Collection: "problems", ID: "a",
		Data:    map[string]any{"title": "Cow", "tag": "usaco"},
		Created: now, Updated: now,
	}))
	require.NoError(t, i.InsertDocument(ctx, store.Record{
		Collection: "problems", ID: "b",
		Data:    map[string]any{"title": "Split"},
		Created: now, Updated: now,
	}))

	err = i.InsertDocument(ctx, store.Record{Collection: "problems", ID: "a", Created: now, Updated: now})
	assert.ErrorIs(t, err, store.ErrDocumentExists)

	exists, err := i.CollectionExists(ctx, "problems")
	require.NoError(t, err)
	assert.True(t, exists)

	recs, err := i.SelectDocuments(ctx, "problems", query.NewQueryBuilder().Where("tag").Eq("usaco").Build())
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "a", recs[0].ID)

	ok, err := i.MergeDocument(ctx, "problems", "b", map[string]any{"tag": "cf"}, now.Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, ok)

	r, err := i.SelectDocument(ctx, "problems", "b")
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, map[string]any{"title": "Split", "tag": "cf"}, r.Data)

	missing, err := i.SelectDocument(ctx, "problems", "zzz")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
