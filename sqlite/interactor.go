// Package sqlite provides a concrete implementation of the store.DatabaseInteractor
// interface for SQLite databases. All collections share one documents table whose
// data column holds each document's fields as a JSON object; merges and filters
// run inside SQLite through its JSON1 functions.
//
// The package does not register a driver. Import github.com/mattn/go-sqlite3
// (driver name "sqlite3") or modernc.org/sqlite (driver name "sqlite") in the
// program that opens the database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/asaidimu/go-folio/core/query"
	"github.com/asaidimu/go-folio/core/store"
	"github.com/asaidimu/go-folio/utils"
	"go.uber.org/zap"
)

// SQLiteInteractor is a concrete implementation of the store.DatabaseInteractor
// interface for SQLite. It generates SQL statements and executes them against
// the database handle it was given; it does not own that handle.
type SQLiteInteractor struct {
	db       *sql.DB
	compiler *FilterCompiler
	logger   *zap.Logger
	options  *store.InteractorOptions
}

// Ensure SQLiteInteractor implements the store.DatabaseInteractor interface.
var _ store.DatabaseInteractor = (*SQLiteInteractor)(nil)

// NewSQLiteInteractor creates a new instance of the SQLiteInteractor. Call
// CreateSchema before first use on a fresh database.
func NewSQLiteInteractor(db *sql.DB, logger *zap.Logger, options *store.InteractorOptions) *SQLiteInteractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if options == nil {
		options = DefaultInteractorOptions()
	}
	return &SQLiteInteractor{
		db:       db,
		options:  options,
		compiler: NewFilterCompiler("data"),
		logger:   logger,
	}
}

// Collections lists the distinct collection names in the documents table.
func (i *SQLiteInteractor) Collections(ctx context.Context) ([]string, error) {
	sqlQuery := fmt.Sprintf("SELECT DISTINCT collection FROM %s ORDER BY collection", i.tableName())
	i.logger.Debug("Executing SQL SELECT", zap.String("sql", sqlQuery))

	rows, err := i.db.QueryContext(ctx, sqlQuery)
	if err != nil {
		i.logger.Error("Failed to list collections", zap.Error(err), zap.String("sql", sqlQuery))
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error after scanning rows: %w", err)
	}
	return names, nil
}

// CollectionExists reports whether any document belongs to the collection.
func (i *SQLiteInteractor) CollectionExists(ctx context.Context, name string) (bool, error) {
	sqlQuery := fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s WHERE collection = ?)", i.tableName())

	var exists int
	if err := i.db.QueryRowContext(ctx, sqlQuery, name).Scan(&exists); err != nil {
		i.logger.Error("Failed to check collection", zap.Error(err), zap.String("collection", name))
		return false, fmt.Errorf("failed to check collection existence: %w", err)
	}
	return exists == 1, nil
}

// SelectDocuments executes a SELECT query against the documents of one collection.
func (i *SQLiteInteractor) SelectDocuments(ctx context.Context, collection string, filter *query.QueryFilter) ([]store.Record, error) {
	where, filterParams, err := i.compiler.CompileFilter(filter, 1)
	if err != nil {
		return nil, fmt.Errorf("error building WHERE clause: %w", err)
	}

	sqlQuery := fmt.Sprintf(
		"SELECT collection, id, data, created, updated FROM %s WHERE collection = ? AND %s ORDER BY id",
		i.tableName(), where,
	)
	queryParams := append([]any{collection}, filterParams...)

	i.logger.Debug("Executing SQL SELECT", zap.String("sql", sqlQuery), zap.Any("params", queryParams))

	rows, err := i.db.QueryContext(ctx, sqlQuery, queryParams...)
	if err != nil {
		i.logger.Error("Failed to execute SELECT query", zap.Error(err), zap.String("sql", sqlQuery))
		return nil, fmt.Errorf("failed to execute SELECT query: %w", err)
	}
	defer rows.Close()
	return readRows(rows)
}

// SelectDocument fetches a single document, returning nil when it does not exist.
func (i *SQLiteInteractor) SelectDocument(ctx context.Context, collection, id string) (*store.Record, error) {
	sqlQuery := fmt.Sprintf(
		"SELECT collection, id, data, created, updated FROM %s WHERE collection = ? AND id = ?",
		i.tableName(),
	)
	i.logger.Debug("Executing SQL SELECT", zap.String("sql", sqlQuery), zap.String("collection", collection), zap.String("id", id))

	rows, err := i.db.QueryContext(ctx, sqlQuery, collection, id)
	if err != nil {
		i.logger.Error("Failed to execute SELECT query", zap.Error(err), zap.String("sql", sqlQuery))
		return nil, fmt.Errorf("failed to execute SELECT query: %w", err)
	}
	defer rows.Close()

	records, err := readRows(rows)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}

// InsertDocument executes an INSERT for a new document. A taken (collection, id)
// pair is reported as store.ErrDocumentExists.
func (i *SQLiteInteractor) InsertDocument(ctx context.Context, record store.Record) error {
	data, err := encodeData(record.Data)
	if err != nil {
		return err
	}

	sqlQuery := fmt.Sprintf(
		"INSERT INTO %s (collection, id, data, created, updated) VALUES (?, ?, ?, ?, ?) ON CONFLICT (collection, id) DO NOTHING",
		i.tableName(),
	)
	i.logger.Debug("Executing SQL INSERT", zap.String("sql", sqlQuery), zap.String("collection", record.Collection), zap.String("id", record.ID))

	result, err := i.db.ExecContext(ctx, sqlQuery,
		record.Collection, record.ID, data, formatTime(record.Created), formatTime(record.Updated))
	if err != nil {
		i.logger.Error("Failed to execute INSERT query", zap.Error(err), zap.String("sql", sqlQuery))
		return fmt.Errorf("failed to execute INSERT query: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return store.ErrDocumentExists
	}
	return nil
}

// MergeDocument applies fields to an existing document with json_patch and
// sets its updated time. Keys set to nil are removed from the document.
func (i *SQLiteInteractor) MergeDocument(ctx context.Context, collection, id string, fields map[string]any, updated time.Time) (bool, error) {
	patch, err := encodeData(fields)
	if err != nil {
		return false, err
	}

	sqlQuery := fmt.Sprintf(
		"UPDATE %s SET data = json_patch(data, ?), updated = ? WHERE collection = ? AND id = ?",
		i.tableName(),
	)
	i.logger.Debug("Executing SQL UPDATE", zap.String("sql", sqlQuery), zap.String("collection", collection), zap.String("id", id))

	result, err := i.db.ExecContext(ctx, sqlQuery, patch, formatTime(updated), collection, id)
	if err != nil {
		i.logger.Error("Failed to execute UPDATE query", zap.Error(err), zap.String("sql", sqlQuery))
		return false, fmt.Errorf("failed to execute UPDATE query: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected > 0, nil
}

// readRows reads all rows of (collection, id, data, created, updated) into records.
func readRows(rows *sql.Rows) ([]store.Record, error) {
	var results []store.Record
	for rows.Next() {
		var (
			r                      store.Record
			data, created, updated string
		)
		if err := rows.Scan(&r.Collection, &r.ID, &data, &created, &updated); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		if err := json.Unmarshal([]byte(data), &r.Data); err != nil {
			return nil, fmt.Errorf("failed to decode document %s/%s: %w", r.Collection, r.ID, err)
		}
		if r.Data == nil {
			r.Data = map[string]any{}
		}

		var err error
		if r.Created, err = utils.ParseTimestamp(created); err != nil {
			return nil, fmt.Errorf("document %s/%s: created: %w", r.Collection, r.ID, err)
		}
		if r.Updated, err = utils.ParseTimestamp(updated); err != nil {
			return nil, fmt.Errorf("document %s/%s: updated: %w", r.Collection, r.ID, err)
		}
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error after scanning rows: %w", err)
	}
	return results, nil
}

func encodeData(fields map[string]any) (string, error) {
	if fields == nil {
		return "{}", nil
	}
	b, err := json.Marshal(utils.NormalizeTimestamps(fields))
	if err != nil {
		return "", fmt.Errorf("failed to encode document data: %w", err)
	}
	return string(b), nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
