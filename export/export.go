// Package export dumps a collection to a JSON file.
package export

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/asaidimu/go-folio/core/store"
	"github.com/asaidimu/go-folio/utils"
	"go.uber.org/zap"
)

// ErrCollectionNotFound is returned when the collection holds no documents.
var ErrCollectionNotFound = errors.New("collection does not exist")

// Indent is the indentation of exported JSON.
const Indent = "    "

// Exporter writes collections as JSON arrays of {id, ...fields} objects with
// timestamps rendered as RFC 3339 strings.
type Exporter struct {
	gateway store.Gateway
	logger  *zap.Logger
}

// New creates an exporter reading through gateway.
func New(gateway store.Gateway, logger *zap.Logger) *Exporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exporter{gateway: gateway, logger: logger}
}

// Documents fetches every document of collection in export form.
func (x *Exporter) Documents(ctx context.Context, collection string) ([]map[string]any, error) {
	docs, err := x.gateway.ListDocuments(ctx, collection, nil)
	if err != nil {
		return nil, fmt.Errorf("list %q: %w", collection, err)
	}
	if docs == nil {
		return nil, fmt.Errorf("%w: %q", ErrCollectionNotFound, collection)
	}

	out := make([]map[string]any, 0, len(docs))
	for _, d := range docs {
		out = append(out, utils.NormalizeTimestamps(map[string]any(d)).(map[string]any))
	}
	return out, nil
}

// Write encodes collection to w.
func (x *Exporter) Write(ctx context.Context, collection string, w io.Writer) (int, error) {
	docs, err := x.Documents(ctx, collection)
	if err != nil {
		return 0, err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", Indent)
	if err := enc.Encode(docs); err != nil {
		return 0, fmt.Errorf("encode %q: %w", collection, err)
	}
	return len(docs), nil
}

// ToFile exports collection to path, replacing any existing file. Nothing is
// written when the collection does not exist or the path is unusable.
func (x *Exporter) ToFile(ctx context.Context, collection, path string) (int, error) {
	if err := checkPath(path); err != nil {
		return 0, err
	}

	docs, err := x.Documents(ctx, collection)
	if err != nil {
		return 0, err
	}

	data, err := json.MarshalIndent(docs, "", Indent)
	if err != nil {
		return 0, fmt.Errorf("encode %q: %w", collection, err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return 0, fmt.Errorf("write %s: %w", path, err)
	}

	x.logger.Info("Collection exported",
		zap.String("collection", collection),
		zap.String("path", path),
		zap.Int("documents", len(docs)),
	)
	return len(docs), nil
}

func checkPath(path string) error {
	if path == "" {
		return fmt.Errorf("export path is empty")
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return fmt.Errorf("export path %s is a directory", path)
	}
	dir := filepath.Dir(path)
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("export directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("export directory %s is not a directory", dir)
	}
	return nil
}
