package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/asaidimu/go-folio/core/store"
	"go.uber.org/zap"
)

// DefaultInteractorOptions returns the options used when none are passed to
// NewSQLiteInteractor.
func DefaultInteractorOptions() *store.InteractorOptions {
	return store.DefaultInteractorOptions()
}

// quoteIdentifier safely quotes an identifier, such as a table or index name.
func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// tableName returns the quoted documents table name with the configured prefix.
func (i *SQLiteInteractor) tableName() string {
	return quoteIdentifier(i.options.TableName())
}

// CreateTableSQL returns the DDL statements that create the documents table
// and its collection index.
func (i *SQLiteInteractor) CreateTableSQL() []string {
	ifNotExists := ""
	if i.options.IfNotExists {
		ifNotExists = "IF NOT EXISTS "
	}
	table := i.options.TableName()

	return []string{
		fmt.Sprintf(`CREATE TABLE %s%s (
	collection TEXT NOT NULL,
	id TEXT NOT NULL,
	data TEXT NOT NULL DEFAULT '{}' CHECK (json_valid(data)),
	created TEXT NOT NULL,
	updated TEXT NOT NULL,
	PRIMARY KEY (collection, id)
)`, ifNotExists, quoteIdentifier(table)),
		fmt.Sprintf("CREATE INDEX %s%s ON %s (collection)",
			ifNotExists, quoteIdentifier(table+"_collection_idx"), quoteIdentifier(table)),
	}
}

// CreateSchema executes the DDL returned by CreateTableSQL.
func (i *SQLiteInteractor) CreateSchema(ctx context.Context) error {
	for _, stmt := range i.CreateTableSQL() {
		i.logger.Debug("Executing SQL DDL", zap.String("sql", stmt))
		if _, err := i.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute SQL statement '%s': %w", stmt, err)
		}
	}
	return nil
}
