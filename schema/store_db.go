package schema

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/oarkflow/squealx"
	"github.com/oarkflow/squealx/drivers/mysql"
	"github.com/oarkflow/squealx/drivers/postgres"
	"github.com/oarkflow/squealx/drivers/sqlite"
)

// DefaultTable is the key/value table used by DatabaseStore.
const DefaultTable = "sqlkit_store"

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,63}$`)

// DatabaseStore keeps blobs in a key/value table of a SQL database.
type DatabaseStore struct {
	db      *squealx.DB
	dialect string
	table   string
}

// OpenDB opens a squealx connection for the given dialect.
func OpenDB(dialect, dsn string) (*squealx.DB, error) {
	switch dialect {
	case "postgres":
		return postgres.Open(dsn, "postgres")
	case "mysql":
		return mysql.Open(dsn, "mysql")
	case "sqlite":
		return sqlite.Open(dsn, "sqlite")
	default:
		return nil, fmt.Errorf("unsupported dialect: %s", dialect)
	}
}

// NewDatabaseStore opens dsn and makes sure the store table exists. The
// table name defaults to DefaultTable.
func NewDatabaseStore(dialect, dsn string, tables ...string) (*DatabaseStore, error) {
	db, err := OpenDB(dialect, dsn)
	if err != nil {
		return nil, err
	}
	table := DefaultTable
	if len(tables) > 0 && tables[0] != "" {
		table = tables[0]
	}
	store, err := NewDatabaseStoreFromDB(db, dialect, table)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// NewDatabaseStoreFromDB wraps an open connection.
func NewDatabaseStoreFromDB(db *squealx.DB, dialect, table string) (*DatabaseStore, error) {
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("invalid table name: %s", table)
	}
	payload := "TEXT"
	if dialect == "mysql" {
		payload = "LONGTEXT"
	}
	query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (name VARCHAR(191) PRIMARY KEY, payload %s NOT NULL, updated_at VARCHAR(40) NOT NULL)`, table, payload)
	if _, err := db.Exec(query); err != nil {
		return nil, fmt.Errorf("failed to create store table: %w", err)
	}
	return &DatabaseStore{db: db, dialect: dialect, table: table}, nil
}

func (d *DatabaseStore) Read(key string) ([]byte, error) {
	if err := validateStoreKey(key); err != nil {
		return nil, err
	}
	var payloads []string
	query := fmt.Sprintf(`SELECT payload FROM %s WHERE name = '%s'`, d.table, key)
	if err := d.db.Select(&payloads, query); err != nil {
		return nil, err
	}
	if len(payloads) == 0 {
		return nil, nil
	}
	return []byte(payloads[0]), nil
}

// Write replaces the blob under key. The delete and the insert run in one
// transaction so a failed insert leaves the previous blob in place.
func (d *DatabaseStore) Write(key string, data []byte) error {
	if err := validateStoreKey(key); err != nil {
		return err
	}
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if _, err := tx.Exec(fmt.Sprintf(`DELETE FROM %s WHERE name = '%s'`, d.table, key)); err != nil {
		tx.Rollback()
		return err
	}
	query := fmt.Sprintf(`INSERT INTO %s (name, payload, updated_at) VALUES (%s)`, d.table, d.placeholders(3))
	if _, err := tx.Exec(query, key, string(data), time.Now().UTC().Format(time.RFC3339)); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (d *DatabaseStore) placeholders(n int) string {
	marks := make([]string, n)
	for i := range marks {
		if d.dialect == "postgres" {
			marks[i] = fmt.Sprintf("$%d", i+1)
		} else {
			marks[i] = "?"
		}
	}
	return strings.Join(marks, ", ")
}

// Close closes the underlying connection.
func (d *DatabaseStore) Close() error {
	return d.db.Close()
}
