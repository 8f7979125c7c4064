package schema

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/oarkflow/bcl"
)

func init() {
	f := gofakeit.New(0)
	bcl.RegisterFunction("fake_uuid", func(args ...any) (any, error) {
		return f.UUID(), nil
	})
	bcl.RegisterFunction("fake_name", func(args ...any) (any, error) {
		return f.Name(), nil
	})
	bcl.RegisterFunction("fake_email", func(args ...any) (any, error) {
		return f.Email(), nil
	})
	bcl.RegisterFunction("fake_phone", func(args ...any) (any, error) {
		return f.Phone(), nil
	})
	bcl.RegisterFunction("fake_city", func(args ...any) (any, error) {
		return f.City(), nil
	})
	bcl.RegisterFunction("fake_company", func(args ...any) (any, error) {
		return f.Company(), nil
	})
	bcl.RegisterFunction("fake_jobtitle", func(args ...any) (any, error) {
		return f.JobTitle(), nil
	})
	bcl.RegisterFunction("fake_word", func(args ...any) (any, error) {
		return f.Word(), nil
	})
	bcl.RegisterFunction("fake_number", func(args ...any) (any, error) {
		return f.Number(0, 100000), nil
	})
	bcl.RegisterFunction("fake_date", func(args ...any) (any, error) {
		return f.DateRange(time.Now().AddDate(-10, 0, 0), time.Now()).Format(time.RFC3339), nil
	})
}

// DefinitionFile is a BCL file describing tables to cache:
//
//	Table "EMPLOYEES" {
//	    schema = "HR"
//	    rows = 20
//	    Column "ID" {
//	        data_type = "NUMBER"
//	        is_primary_key = true
//	    }
//	    Column "EMAIL" {
//	        data_type = "VARCHAR2"
//	        data_length = 120
//	        value = "fake_email"
//	    }
//	}
type DefinitionFile struct {
	Tables []TableDefinition `json:"Table"`
}

type TableDefinition struct {
	Name    string             `json:"name"`
	Schema  string             `json:"schema"`
	Rows    int                `json:"rows"`
	Columns []ColumnDefinition `json:"Column"`
}

type ColumnDefinition struct {
	Name       string `json:"name"`
	DataType   string `json:"data_type"`
	Length     int    `json:"data_length"`
	Nullable   bool   `json:"nullable"`
	Default    string `json:"data_default"`
	PrimaryKey bool   `json:"is_primary_key"`
	// Value fills sample rows: a registered fake_* function name or a literal.
	Value any `json:"value"`
}

// LoadDefinitions parses a BCL table definition file.
func LoadDefinitions(path string) ([]TableDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read definition file: %w", err)
	}
	var file DefinitionFile
	if _, err := bcl.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal definition file %s: %w", path, err)
	}
	if len(file.Tables) == 0 {
		return nil, fmt.Errorf("no table found in file %s", path)
	}
	return file.Tables, nil
}

// TableSchema converts the definition into the cached schema form.
func (d TableDefinition) TableSchema() TableSchema {
	ts := TableSchema{SchemaName: d.Schema, TableName: d.Name}
	for _, c := range d.Columns {
		ts.Columns = append(ts.Columns, Column{
			Name:       c.Name,
			Type:       c.DataType,
			Length:     c.Length,
			Nullable:   c.Nullable,
			Default:    c.Default,
			PrimaryKey: c.PrimaryKey,
		})
	}
	return ts
}

// SampleRows builds d.Rows rows. Columns with a value use it, resolving
// fake_* function names; the others get generated values from FakeRows.
func (d TableDefinition) SampleRows(seed int64) []Row {
	rows := FakeRows(d.TableSchema(), d.Rows, seed)
	for _, row := range rows {
		for _, c := range d.Columns {
			if c.Value != nil {
				row[c.Name] = resolveValue(c.Value)
			}
		}
	}
	return rows
}

func resolveValue(v any) any {
	s, ok := v.(string)
	if !ok || !strings.HasPrefix(s, "fake_") {
		return v
	}
	fn, ok := bcl.LookupFunction(s)
	if !ok {
		return v
	}
	rs, err := fn()
	if err != nil {
		return v
	}
	return rs
}
