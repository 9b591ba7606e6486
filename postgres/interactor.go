// Package postgres provides a store.DatabaseInteractor backed by PostgreSQL
// through github.com/lib/pq. Documents live in a single table with a JSONB
// data column; merges use the jsonb concatenation operator.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/asaidimu/go-folio/core/query"
	"github.com/asaidimu/go-folio/core/store"
	"github.com/asaidimu/go-folio/utils"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// DriverName is the database/sql driver registered by lib/pq.
const DriverName = "postgres"

// PostgresInteractor implements store.DatabaseInteractor for PostgreSQL.
type PostgresInteractor struct {
	db       *sql.DB
	compiler *FilterCompiler
	logger   *zap.Logger
	options  *store.InteractorOptions
}

var _ store.DatabaseInteractor = (*PostgresInteractor)(nil)

// NewPostgresInteractor wraps an open database handle. Call CreateSchema
// before first use on a fresh database.
func NewPostgresInteractor(db *sql.DB, logger *zap.Logger, options *store.InteractorOptions) *PostgresInteractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if options == nil {
		options = store.DefaultInteractorOptions()
	}
	return &PostgresInteractor{
		db:       db,
		compiler: NewFilterCompiler("data"),
		logger:   logger,
		options:  options,
	}
}

// Open connects to PostgreSQL with dsn, verifies the connection and creates
// the documents table when missing.
func Open(ctx context.Context, dsn string, logger *zap.Logger, options *store.InteractorOptions) (*sql.DB, *PostgresInteractor, error) {
	db, err := sql.Open(DriverName, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}

	i := NewPostgresInteractor(db, logger, options)
	if err := i.CreateSchema(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}
	return db, i, nil
}

func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (i *PostgresInteractor) tableName() string {
	return quoteIdentifier(i.options.TableName())
}

// CreateTableSQL returns the DDL for the documents table and its index.
func (i *PostgresInteractor) CreateTableSQL() []string {
	ifNotExists := ""
	if i.options.IfNotExists {
		ifNotExists = "IF NOT EXISTS "
	}
	table := i.options.TableName()
	return []string{
		fmt.Sprintf(`CREATE TABLE %s%s (
	collection TEXT NOT NULL,
	id TEXT NOT NULL,
	data JSONB NOT NULL DEFAULT '{}'::jsonb,
	created TIMESTAMPTZ NOT NULL,
	updated TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (collection, id)
)`, ifNotExists, quoteIdentifier(table)),
		fmt.Sprintf("CREATE INDEX %s%s ON %s (collection)",
			ifNotExists, quoteIdentifier(table+"_collection_idx"), quoteIdentifier(table)),
	}
}

// CreateSchema executes the statements returned by CreateTableSQL.
func (i *PostgresInteractor) CreateSchema(ctx context.Context) error {
	for _, stmt := range i.CreateTableSQL() {
		i.logger.Debug("Executing SQL DDL", zap.String("sql", stmt))
		if _, err := i.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute SQL statement '%s': %w", stmt, err)
		}
	}
	return nil
}

func (i *PostgresInteractor) Collections(ctx context.Context) ([]string, error) {
	sqlQuery := fmt.Sprintf("SELECT DISTINCT collection FROM %s ORDER BY collection", i.tableName())
	i.logger.Debug("Executing SQL SELECT", zap.String("sql", sqlQuery))

	rows, err := i.db.QueryContext(ctx, sqlQuery)
	if err != nil {
		i.logger.Error("Failed to list collections", zap.Error(err))
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

func (i *PostgresInteractor) CollectionExists(ctx context.Context, name string) (bool, error) {
	sqlQuery := fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s WHERE collection = $1)", i.tableName())

	var exists bool
	if err := i.db.QueryRowContext(ctx, sqlQuery, name).Scan(&exists); err != nil {
		i.logger.Error("Failed to check collection", zap.Error(err), zap.String("collection", name))
		return false, fmt.Errorf("failed to check collection existence: %w", err)
	}
	return exists, nil
}

func (i *PostgresInteractor) SelectDocuments(ctx context.Context, collection string, filter *query.QueryFilter) ([]store.Record, error) {
	where, filterParams, err := i.compiler.CompileFilter(filter, 1)
	if err != nil {
		return nil, fmt.Errorf("error building WHERE clause: %w", err)
	}

	sqlQuery := fmt.Sprintf(
		"SELECT collection, id, data, created, updated FROM %s WHERE collection = $1 AND %s ORDER BY id",
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

func (i *PostgresInteractor) SelectDocument(ctx context.Context, collection, id string) (*store.Record, error) {
	sqlQuery := fmt.Sprintf(
		"SELECT collection, id, data, created, updated FROM %s WHERE collection = $1 AND id = $2",
		i.tableName(),
	)

	var (
		r    store.Record
		data []byte
	)
	err := i.db.QueryRowContext(ctx, sqlQuery, collection, id).Scan(&r.Collection, &r.ID, &data, &r.Created, &r.Updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		i.logger.Error("Failed to execute SELECT query", zap.Error(err), zap.String("sql", sqlQuery))
		return nil, fmt.Errorf("failed to execute SELECT query: %w", err)
	}
	if err := decodeInto(&r, data); err != nil {
		return nil, err
	}
	return &r, nil
}

func (i *PostgresInteractor) InsertDocument(ctx context.Context, record store.Record) error {
	data, err := encodeData(record.Data)
	if err != nil {
		return err
	}

	sqlQuery := fmt.Sprintf(
		"INSERT INTO %s (collection, id, data, created, updated) VALUES ($1, $2, $3::jsonb, $4, $5) ON CONFLICT (collection, id) DO NOTHING",
		i.tableName(),
	)
	i.logger.Debug("Executing SQL INSERT", zap.String("sql", sqlQuery), zap.String("collection", record.Collection), zap.String("id", record.ID))

	result, err := i.db.ExecContext(ctx, sqlQuery, record.Collection, record.ID, data, record.Created, record.Updated)
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

func (i *PostgresInteractor) MergeDocument(ctx context.Context, collection, id string, fields map[string]any, updated time.Time) (bool, error) {
	patch, err := encodeData(fields)
	if err != nil {
		return false, err
	}

	sqlQuery := fmt.Sprintf(
		"UPDATE %s SET data = data || $1::jsonb, updated = $2 WHERE collection = $3 AND id = $4",
		i.tableName(),
	)
	i.logger.Debug("Executing SQL UPDATE", zap.String("sql", sqlQuery), zap.String("collection", collection), zap.String("id", id))

	result, err := i.db.ExecContext(ctx, sqlQuery, patch, updated, collection, id)
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

func readRows(rows *sql.Rows) ([]store.Record, error) {
	var results []store.Record
	for rows.Next() {
		var (
			r    store.Record
			data []byte
		)
		if err := rows.Scan(&r.Collection, &r.ID, &data, &r.Created, &r.Updated); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		if err := decodeInto(&r, data); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error after scanning rows: %w", err)
	}
	return results, nil
}

func decodeInto(r *store.Record, data []byte) error {
	if err := json.Unmarshal(data, &r.Data); err != nil {
		return fmt.Errorf("failed to decode document %s/%s: %w", r.Collection, r.ID, err)
	}
	if r.Data == nil {
		r.Data = map[string]any{}
	}
	r.Created = r.Created.UTC()
	r.Updated = r.Updated.UTC()
	return nil
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
