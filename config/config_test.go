package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/asaidimu/go-folio/core/editor"
	"github.com/asaidimu/go-folio/core/schema"
	"github.com/asaidimu/go-folio/core/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	_ "modernc.org/sqlite"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "folio.yaml", `
store:
  driver: sqlite
  dsn: file.db
  table_prefix: folio_
theme: light
ids:
  format: ulid
logging:
  level: debug
`)
	t.Setenv("FOLIO_STORE_DSN", "env.db")
	t.Setenv("FOLIO_PREVIEW_ADDR", ":9000")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DriverSQLite, cfg.Store.Driver)
	assert.Equal(t, "env.db", cfg.Store.DSN)
	assert.Equal(t, "folio_", cfg.Store.TablePrefix)
	assert.Equal(t, ":9000", cfg.Preview.Addr)
	assert.Equal(t, "light", cfg.Theme)
	assert.Equal(t, "folio.log", cfg.Logging.File, "unset keys keep defaults")

	lvl, err := cfg.LogLevel()
	require.NoError(t, err)
	assert.Equal(t, zapcore.DebugLevel, lvl)
	assert.Len(t, cfg.IDGenerator()(), 26)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"malformed", "store: [\n"},
		{"driver", "store: {driver: mongo}\n"},
		{"dsn", "store: {driver: postgres, dsn: \"\"}\n"},
		{"id format", "ids: {format: snowflake}\n"},
		{"log level", "logging: {level: loud}\n"},
		{"theme", "theme: sepia\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "folio.yaml", tt.content)
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, ".env", "FOLIO_STORE_DRIVER=memory\n")
	t.Setenv("FOLIO_STORE_DRIVER", "")
	os.Unsetenv("FOLIO_STORE_DRIVER")

	require.NoError(t, LoadDotEnv(path, filepath.Join(dir, "missing.env")))
	assert.Equal(t, "memory", os.Getenv("FOLIO_STORE_DRIVER"))

	cfg, err := Load(filepath.Join(dir, "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, cfg.Store.Driver)
}

func TestBuiltinPages(t *testing.T) {
	pages, err := BuiltinPages()
	require.NoError(t, err)
	require.Len(t, pages, 3)

	posts := schema.FindPage(pages, "Posts")
	require.NotNil(t, posts)
	assert.Equal(t, "posts", posts.DefaultCollection)
	assert.Equal(t, schema.PreviewMarkdown, posts.Preview.Kind)

	usaco := schema.FindPage(pages, "USACO Problems")
	require.NotNil(t, usaco)
	assert.Equal(t, "usaco", usaco.Tag)
	assert.Equal(t, []string{"problems"}, usaco.IntendedCollections)
	title := usaco.FindField("title")
	require.NotNil(t, title)
	assert.Equal(t, []string{"usaco", schema.Anchor}, title.SourceCollections())
	assert.Equal(t, schema.WidgetChoice, usaco.FindField("division").Kind)

	cfg := DefaultConfig()
	cfg.Pages = writeFile(t, t.TempDir(), "pages.yaml", "pages:\n  - {title: Notes, fields: [{name: text, kind: multiline}]}\n")
	custom, err := cfg.LoadPages()
	require.NoError(t, err)
	require.Len(t, custom, 1)
	assert.Equal(t, "Notes", custom[0].Title)
}

func TestBuiltinPages_USACOSaveWritesBothCollections(t *testing.T) {
	ctx := context.Background()
	pages, err := BuiltinPages()
	require.NoError(t, err)
	usaco := schema.FindPage(pages, "USACO Problems")
	require.NotNil(t, usaco)

	s, err := store.New(store.NewMemoryInteractor())
	require.NoError(t, err)
	ed, err := editor.New(usaco, s, editor.WithIDGenerator(func() string { return "p1" }))
	require.NoError(t, err)
	require.NoError(t, ed.Ready(ctx))
	require.NoError(t, ed.SetCollection(ctx, "problems", ""))

	values := map[string]string{
		"link":       "https://usaco.org/p1",
		"division":   "Gold",
		"title":      "Cow Gymnastics",
		"language":   "cpp",
		"submission": "int main(){}",
	}
	for name, v := range values {
		require.NoError(t, ed.SetField(name, v))
	}
	_, err = ed.SaveDocument(ctx, true)
	require.NoError(t, err)

	anchor, err := s.GetDocument(ctx, "problems", "p1")
	require.NoError(t, err)
	assert.Equal(t, "Cow Gymnastics", anchor["title"])
	assert.Equal(t, "usaco", anchor["tag"])

	aux, err := s.GetDocument(ctx, "usaco", "p1")
	require.NoError(t, err)
	assert.Equal(t, "Cow Gymnastics", aux["title"])
	assert.Equal(t, "Gold", aux["division"])
	assert.NotContains(t, aux, "submission")
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()
	for _, driver := range []string{DriverMemory, DriverSQLite} {
		t.Run(driver, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Store.Driver = driver
			cfg.Store.DSN = ":memory:"

			s, closeFn, err := cfg.OpenStore(ctx, nil)
			require.NoError(t, err)
			defer closeFn()

			_, err = s.CreateDocument(ctx, "posts", "a", store.Document{"title": "Hello"})
			require.NoError(t, err)
			names, err := s.Collections(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"posts"}, names)
		})
	}

	cfg := DefaultConfig()
	cfg.Store.Driver = "mongo"
	_, _, err := cfg.OpenStore(ctx, nil)
	assert.Error(t, err)
}
