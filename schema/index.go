package schema

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/oarkflow/json"

	"github.com/oarkflow/sqlkit/validation"
)

// DefaultRowLimit caps the sample rows kept per table.
const DefaultRowLimit = 100

// Index is the persisted schema cache. Every mutation reads the whole
// snapshot, changes it and writes it back while holding one lock, so a write
// never drops an entry added by an earlier call.
type Index struct {
	mu       sync.Mutex
	store    Store
	key      string
	rowLimit int
	abbrev   *Abbreviator
	now      func() time.Time
}

// Option configures an Index.
type Option func(*Index)

// WithStore sets the backing store. The default is a MemoryStore.
func WithStore(store Store) Option {
	return func(ix *Index) {
		ix.store = store
	}
}

// WithKey sets the store key the snapshot is kept under.
func WithKey(key string) Option {
	return func(ix *Index) {
		ix.key = key
	}
}

// WithRowLimit sets how many sample rows Save keeps per table.
func WithRowLimit(limit int) Option {
	return func(ix *Index) {
		ix.rowLimit = limit
	}
}

// WithAbbreviations adds well-known word abbreviations used by Search.
func WithAbbreviations(words map[string][]string) Option {
	return func(ix *Index) {
		ix.abbrev = NewAbbreviator(words)
	}
}

func withClock(now func() time.Time) Option {
	return func(ix *Index) {
		ix.now = now
	}
}

// NewIndex creates an Index.
func NewIndex(opts ...Option) *Index {
	ix := &Index{
		key:      DefaultKey,
		rowLimit: DefaultRowLimit,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(ix)
	}
	if ix.store == nil {
		ix.store = NewMemoryStore()
	}
	if ix.abbrev == nil {
		ix.abbrev = NewAbbreviator(nil)
	}
	if ix.rowLimit < 0 {
		ix.rowLimit = 0
	}
	return ix
}

// RowLimit returns the per-table sample row cap.
func (ix *Index) RowLimit() int {
	return ix.rowLimit
}

func validateNames(schemaName, tableName string) error {
	v := validation.NewValidator()
	v.ValidateIdentifier("schema_name", schemaName, validation.MaxSchemaNameBytes)
	v.ValidateIdentifier("table_name", tableName, validation.MaxTableNameBytes)
	return v.Error()
}

// keys folds identifiers to the upper case form entries are stored under.
func keys(schemaName, tableName string) (string, string) {
	return strings.ToUpper(schemaName), strings.ToUpper(tableName)
}

func (ix *Index) read() (*Snapshot, error) {
	data, err := ix.store.Read(ix.key)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema index: %w", err)
	}
	snap := newSnapshot()
	if len(data) == 0 {
		return snap, nil
	}
	if err := json.Unmarshal(data, snap); err != nil {
		return nil, fmt.Errorf("failed to decode schema index: %w", err)
	}
	if snap.Schemas == nil {
		snap.Schemas = make(map[string]*SchemaTables)
	}
	return snap, nil
}

func (ix *Index) write(snap *Snapshot) error {
	snap.LastUpdated = ix.now().UTC()
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode schema index: %w", err)
	}
	if err := ix.store.Write(ix.key, data); err != nil {
		return fmt.Errorf("failed to write schema index: %w", err)
	}
	return nil
}

// update runs fn against a fresh snapshot and persists the result. The lock
// spans the read and the write.
func (ix *Index) update(fn func(*Snapshot) error) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	snap, err := ix.read()
	if err != nil {
		return err
	}
	if err := fn(snap); err != nil {
		return err
	}
	return ix.write(snap)
}

func (ix *Index) view() (*Snapshot, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return ix.read()
}

func (ix *Index) capRows(rows []Row) []Row {
	if len(rows) > ix.rowLimit {
		rows = rows[:ix.rowLimit]
	}
	if len(rows) == 0 {
		return nil
	}
	return append([]Row(nil), rows...)
}

// Save stores ts and up to RowLimit sample rows under schemaName.tableName,
// replacing any previous entry.
func (ix *Index) Save(schemaName, tableName string, ts TableSchema, rows ...Row) error {
	if err := validateNames(schemaName, tableName); err != nil {
		return err
	}
	s, t := keys(schemaName, tableName)
	if ts.SchemaName == "" {
		ts.SchemaName = schemaName
	}
	if ts.TableName == "" {
		ts.TableName = tableName
	}
	entry := &Entry{Schema: ts, Data: ix.capRows(rows), Timestamp: ix.now().UTC()}
	return ix.update(func(snap *Snapshot) error {
		snap.put(s, t, entry)
		return nil
	})
}

// Load returns the cached schema of schemaName.tableName, with its sample
// rows only when includeData is set. It returns ErrNotFound for unknown keys.
func (ix *Index) Load(schemaName, tableName string, includeData bool) (*Loaded, error) {
	if err := validateNames(schemaName, tableName); err != nil {
		return nil, err
	}
	snap, err := ix.view()
	if err != nil {
		return nil, err
	}
	s, t := keys(schemaName, tableName)
	e, ok := snap.entry(s, t)
	if !ok {
		return nil, fmt.Errorf("%s.%s: %w", s, t, ErrNotFound)
	}
	loaded := &Loaded{Schema: e.Schema}
	if includeData {
		loaded.Data = e.Data
	}
	return loaded, nil
}

// Remove deletes one entry. Schemas left without tables are dropped.
func (ix *Index) Remove(schemaName, tableName string) error {
	if err := validateNames(schemaName, tableName); err != nil {
		return err
	}
	s, t := keys(schemaName, tableName)
	return ix.update(func(snap *Snapshot) error {
		if _, ok := snap.entry(s, t); !ok {
			return fmt.Errorf("%s.%s: %w", s, t, ErrNotFound)
		}
		st := snap.Schemas[s]
		delete(st.Tables, t)
		if len(st.Tables) == 0 {
			delete(snap.Schemas, s)
		}
		return nil
	})
}

// Search ranks every cached table against query. A query without a dot
// matches either name; "schema.table" requires both sides to match.
func (ix *Index) Search(query string) ([]Result, error) {
	snap, err := ix.view()
	if err != nil {
		return nil, err
	}
	return ix.rank(snap, query), nil
}

// List returns every cached table ordered by schema then table name.
func (ix *Index) List() ([]Summary, error) {
	snap, err := ix.view()
	if err != nil {
		return nil, err
	}
	var out []Summary
	for s, st := range snap.Schemas {
		if st == nil {
			continue
		}
		for t, e := range st.Tables {
			if e != nil {
				out = append(out, summarize(s, t, e))
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SchemaName != out[j].SchemaName {
			return out[i].SchemaName < out[j].SchemaName
		}
		return out[i].TableName < out[j].TableName
	})
	return out, nil
}

// Clear removes every entry.
func (ix *Index) Clear() error {
	return ix.update(func(snap *Snapshot) error {
		snap.Schemas = make(map[string]*SchemaTables)
		return nil
	})
}

// Export returns the snapshot as indented JSON.
func (ix *Index) Export() ([]byte, error) {
	snap, err := ix.view()
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(snap, "", "  ")
}

// Import replaces the index with an exported snapshot. Every key is
// validated and row sets are capped before anything is written.
func (ix *Index) Import(data []byte) error {
	in := newSnapshot()
	if err := json.Unmarshal(data, in); err != nil {
		return fmt.Errorf("failed to decode snapshot: %w", err)
	}
	out := newSnapshot()
	v := validation.NewValidator()
	for schemaName, st := range in.Schemas {
		if st == nil {
			continue
		}
		for tableName, e := range st.Tables {
			if e == nil {
				continue
			}
			if err := validateNames(schemaName, tableName); err != nil {
				for _, ve := range validationErrors(err) {
					v.AddError(ve.Field, ve.Value, ve.Message)
				}
				continue
			}
			s, t := keys(schemaName, tableName)
			out.put(s, t, &Entry{Schema: e.Schema, Data: ix.capRows(e.Data), Timestamp: e.Timestamp})
		}
	}
	if err := v.Error(); err != nil {
		return err
	}
	return ix.update(func(snap *Snapshot) error {
		snap.Schemas = out.Schemas
		return nil
	})
}

func validationErrors(err error) []*validation.ValidationError {
	var errs validation.Errors
	if errors.As(err, &errs) {
		return errs
	}
	var ve *validation.ValidationError
	if errors.As(err, &ve) {
		return []*validation.ValidationError{ve}
	}
	return nil
}

// Stats summarizes the index.
func (ix *Index) Stats() (Stats, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	data, err := ix.store.Read(ix.key)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to read schema index: %w", err)
	}
	snap, err := ix.read()
	if err != nil {
		return Stats{}, err
	}
	st := Stats{Schemas: len(snap.Schemas), Bytes: len(data), LastUpdated: snap.LastUpdated}
	for _, tables := range snap.Schemas {
		if tables == nil {
			continue
		}
		for _, e := range tables.Tables {
			if e == nil {
				continue
			}
			st.Tables++
			st.Rows += len(e.Data)
		}
	}
	return st, nil
}
