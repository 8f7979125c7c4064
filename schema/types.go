// Package schema caches table schemas and sample rows under schema.table keys
// and searches them with abbreviation-aware fuzzy matching.
package schema

import (
	"errors"
	"time"
)

// ErrNotFound is returned when no entry exists for a schema.table key.
var ErrNotFound = errors.New("schema: table not found")

// Column describes one column of a cached table.
type Column struct {
	Name       string `json:"name"`
	Type       string `json:"data_type"`
	Length     int    `json:"data_length,omitempty"`
	Nullable   bool   `json:"nullable"`
	Default    string `json:"data_default,omitempty"`
	PrimaryKey bool   `json:"is_primary_key,omitempty"`
}

// TableSchema is the column layout of one table.
type TableSchema struct {
	SchemaName string   `json:"schema_name"`
	TableName  string   `json:"table_name"`
	Columns    []Column `json:"columns"`
}

// Row is one sample data row keyed by column name.
type Row map[string]any

// Entry is the persisted value stored for a schema.table key.
type Entry struct {
	Schema    TableSchema `json:"schema"`
	Data      []Row       `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

// SchemaTables holds the entries of one schema keyed by table name.
type SchemaTables struct {
	Tables map[string]*Entry `json:"tables"`
}

// Snapshot is the whole index as it is persisted.
type Snapshot struct {
	Schemas     map[string]*SchemaTables `json:"schemas"`
	LastUpdated time.Time                `json:"lastUpdated"`
}

func newSnapshot() *Snapshot {
	return &Snapshot{Schemas: make(map[string]*SchemaTables)}
}

func (s *Snapshot) entry(schemaName, tableName string) (*Entry, bool) {
	st, ok := s.Schemas[schemaName]
	if !ok || st == nil {
		return nil, false
	}
	e, ok := st.Tables[tableName]
	return e, ok && e != nil
}

func (s *Snapshot) put(schemaName, tableName string, e *Entry) {
	st, ok := s.Schemas[schemaName]
	if !ok || st == nil {
		st = &SchemaTables{Tables: make(map[string]*Entry)}
		s.Schemas[schemaName] = st
	}
	if st.Tables == nil {
		st.Tables = make(map[string]*Entry)
	}
	st.Tables[tableName] = e
}

// Loaded is the result of Index.Load. Data is nil, and omitted from JSON,
// unless sample rows were requested.
type Loaded struct {
	Schema TableSchema `json:"schema"`
	Data   []Row       `json:"data,omitempty"`
}

// Summary describes one cached table without its rows.
type Summary struct {
	SchemaName string    `json:"schema_name"`
	TableName  string    `json:"table_name"`
	Columns    int       `json:"columns"`
	Rows       int       `json:"rows"`
	Timestamp  time.Time `json:"timestamp"`
}

// Result is one ranked search hit.
type Result struct {
	Summary
	Score int `json:"score"`
}

// Stats aggregates the contents of the index.
type Stats struct {
	Schemas     int       `json:"schemas"`
	Tables      int       `json:"tables"`
	Rows        int       `json:"rows"`
	Bytes       int       `json:"bytes"`
	LastUpdated time.Time `json:"last_updated"`
}
