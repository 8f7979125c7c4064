package sqlkit

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/oarkflow/cli/contracts"
	"github.com/oarkflow/json"

	"github.com/oarkflow/sqlkit/schema"
)

func tableArguments(ctx contracts.Context) (string, string, error) {
	schemaName, tableName := ctx.Argument(0), ctx.Argument(1)
	if schemaName == "" || tableName == "" {
		return "", "", fmt.Errorf("please provide a schema name and a table name")
	}
	return schemaName, tableName, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// SchemaSaveCommand caches a table schema with optional sample rows
type SchemaSaveCommand struct {
	Driver IManager
}

func (c *SchemaSaveCommand) Signature() string {
	return "schema:save"
}

func (c *SchemaSaveCommand) Description() string {
	return "Cache a table schema and sample rows (from --columns JSON or a --file BCL definition)"
}

func (c *SchemaSaveCommand) Extend() contracts.Extend {
	return contracts.Extend{
		Flags: []contracts.Flag{
			{
				Name:  "file",
				Usage: "BCL table definition file; every table in it is saved",
				Value: "",
			},
			{
				Name:  "columns",
				Usage: "JSON file holding the column list",
				Value: "",
			},
			{
				Name:  "data",
				Usage: "JSON file holding sample rows",
				Value: "",
			},
			{
				Name:  "fake",
				Usage: "Generate this many sample rows",
				Value: "",
			},
			{
				Name:  "seed",
				Usage: "Seed for generated rows",
				Value: "",
			},
		},
	}
}

func (c *SchemaSaveCommand) Handle(ctx contracts.Context) error {
	index, err := c.Driver.Index()
	if err != nil {
		return err
	}
	fake, err := intOption(ctx, "fake")
	if err != nil {
		return err
	}
	seed, err := intOption(ctx, "seed")
	if err != nil {
		return err
	}
	if seed == 0 {
		seed = int(time.Now().UnixNano())
	}

	if file := ctx.Option("file"); file != "" {
		defs, err := schema.LoadDefinitions(file)
		if err != nil {
			return err
		}
		for i, def := range defs {
			if fake > 0 {
				def.Rows = fake
			}
			if def.Schema == "" {
				def.Schema = ctx.Argument(0)
			}
			rows := def.SampleRows(int64(seed + i))
			if err := index.Save(def.Schema, def.Name, def.TableSchema(), rows...); err != nil {
				return fmt.Errorf("failed to save %s.%s: %w", def.Schema, def.Name, err)
			}
			logger.Info().Msgf("Saved %s.%s with %d column(s) and %d row(s)", def.Schema, def.Name, len(def.Columns), min(len(rows), index.RowLimit()))
		}
		return nil
	}

	schemaName, tableName, err := tableArguments(ctx)
	if err != nil {
		return err
	}
	columnsFile := ctx.Option("columns")
	if columnsFile == "" {
		return fmt.Errorf("please provide --columns or --file")
	}
	ts := schema.TableSchema{SchemaName: schemaName, TableName: tableName}
	if err := readJSON(columnsFile, &ts.Columns); err != nil {
		return err
	}
	var rows []schema.Row
	if dataFile := ctx.Option("data"); dataFile != "" {
		if err := readJSON(dataFile, &rows); err != nil {
			return err
		}
	}
	if fake > 0 {
		rows = append(rows, schema.FakeRows(ts, fake, int64(seed))...)
	}
	if err := index.Save(schemaName, tableName, ts, rows...); err != nil {
		return err
	}
	logger.Info().Msgf("Saved %s.%s with %d column(s) and %d row(s)", schemaName, tableName, len(ts.Columns), min(len(rows), index.RowLimit()))
	return nil
}

// SchemaLoadCommand prints one cached table
type SchemaLoadCommand struct {
	Driver IManager
}

func (c *SchemaLoadCommand) Signature() string {
	return "schema:load"
}

func (c *SchemaLoadCommand) Description() string {
	return "Show the cached schema of a table"
}

func (c *SchemaLoadCommand) Extend() contracts.Extend {
	return contracts.Extend{
		Flags: []contracts.Flag{
			{
				Name:    "data",
				Aliases: []string{"d"},
				Usage:   "Include the sample rows",
				Value:   "false",
			},
			{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format (table, json)",
				Value:   "table",
			},
		},
	}
}

func (c *SchemaLoadCommand) Handle(ctx contracts.Context) error {
	schemaName, tableName, err := tableArguments(ctx)
	if err != nil {
		return err
	}
	index, err := c.Driver.Index()
	if err != nil {
		return err
	}
	loaded, err := index.Load(schemaName, tableName, ctx.Option("data") == "true")
	if err != nil {
		return err
	}
	if ctx.Option("format") == "json" {
		return renderJSON(c.Driver.Output(), loaded)
	}
	renderColumns(c.Driver.Output(), loaded)
	return nil
}

// SchemaRemoveCommand drops one cached table
type SchemaRemoveCommand struct {
	Driver IManager
}

func (c *SchemaRemoveCommand) Signature() string {
	return "schema:remove"
}

func (c *SchemaRemoveCommand) Description() string {
	return "Remove a table from the schema cache"
}

func (c *SchemaRemoveCommand) Extend() contracts.Extend {
	return contracts.Extend{}
}

func (c *SchemaRemoveCommand) Handle(ctx contracts.Context) error {
	schemaName, tableName, err := tableArguments(ctx)
	if err != nil {
		return err
	}
	index, err := c.Driver.Index()
	if err != nil {
		return err
	}
	if err := index.Remove(schemaName, tableName); err != nil {
		return err
	}
	logger.Info().Msgf("Removed %s.%s", schemaName, tableName)
	return nil
}

// SchemaSearchCommand ranks cached tables against a query
type SchemaSearchCommand struct {
	Driver IManager
}

func (c *SchemaSearchCommand) Signature() string {
	return "schema:search"
}

func (c *SchemaSearchCommand) Description() string {
	return "Search cached tables by name, abbreviation or SQL LIKE pattern (schema.table narrows both sides)"
}

func (c *SchemaSearchCommand) Extend() contracts.Extend {
	return contracts.Extend{
		Flags: []contracts.Flag{
			{
				Name:    "limit",
				Aliases: []string{"l"},
				Usage:   "Maximum number of results (0 for all)",
				Value:   "0",
			},
			{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format (table, json)",
				Value:   "table",
			},
		},
	}
}

func (c *SchemaSearchCommand) Handle(ctx contracts.Context) error {
	limit, err := intOption(ctx, "limit")
	if err != nil {
		return err
	}
	index, err := c.Driver.Index()
	if err != nil {
		return err
	}
	results, err := index.Search(ctx.Argument(0))
	if err != nil {
		return err
	}
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	if ctx.Option("format") == "json" {
		return renderJSON(c.Driver.Output(), results)
	}
	renderResults(c.Driver.Output(), results)
	return nil
}

// SchemaListCommand lists every cached table
type SchemaListCommand struct {
	Driver IManager
}

func (c *SchemaListCommand) Signature() string {
	return "schema:list"
}

func (c *SchemaListCommand) Description() string {
	return "List cached tables"
}

func (c *SchemaListCommand) Extend() contracts.Extend {
	return contracts.Extend{
		Flags: []contracts.Flag{
			{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format (table, json)",
				Value:   "table",
			},
		},
	}
}

func (c *SchemaListCommand) Handle(ctx contracts.Context) error {
	index, err := c.Driver.Index()
	if err != nil {
		return err
	}
	list, err := index.List()
	if err != nil {
		return err
	}
	if ctx.Option("format") == "json" {
		return renderJSON(c.Driver.Output(), list)
	}
	renderSummaries(c.Driver.Output(), list)
	return nil
}

// SchemaExportCommand dumps the whole cache as JSON
type SchemaExportCommand struct {
	Driver IManager
}

func (c *SchemaExportCommand) Signature() string {
	return "schema:export"
}

func (c *SchemaExportCommand) Description() string {
	return "Export the schema cache as JSON"
}

func (c *SchemaExportCommand) Extend() contracts.Extend {
	return contracts.Extend{
		Flags: []contracts.Flag{
			{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "File to write (stdout when empty)",
				Value:   "",
			},
		},
	}
}

func (c *SchemaExportCommand) Handle(ctx contracts.Context) error {
	index, err := c.Driver.Index()
	if err != nil {
		return err
	}
	data, err := index.Export()
	if err != nil {
		return err
	}
	path := ctx.Option("output")
	if path == "" {
		_, err = fmt.Fprintln(c.Driver.Output(), string(data))
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	logger.Info().Msgf("Schema cache exported to %s", path)
	return nil
}

// SchemaImportCommand replaces the cache with an exported snapshot
type SchemaImportCommand struct {
	Driver IManager
}

func (c *SchemaImportCommand) Signature() string {
	return "schema:import"
}

func (c *SchemaImportCommand) Description() string {
	return "Replace the schema cache with an exported JSON snapshot"
}

func (c *SchemaImportCommand) Extend() contracts.Extend {
	return contracts.Extend{}
}

func (c *SchemaImportCommand) Handle(ctx contracts.Context) error {
	path := ctx.Argument(0)
	if path == "" {
		return fmt.Errorf("please provide the snapshot file to import")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	index, err := c.Driver.Index()
	if err != nil {
		return err
	}
	if err := index.Import(data); err != nil {
		return err
	}
	stats, err := index.Stats()
	if err != nil {
		return err
	}
	logger.Info().Msgf("Imported %d table(s) in %d schema(s) from %s", stats.Tables, stats.Schemas, path)
	return nil
}

// SchemaClearCommand empties the cache
type SchemaClearCommand struct {
	Driver IManager
}

func (c *SchemaClearCommand) Signature() string {
	return "schema:clear"
}

func (c *SchemaClearCommand) Description() string {
	return "Remove every table from the schema cache"
}

func (c *SchemaClearCommand) Extend() contracts.Extend {
	return contracts.Extend{
		Flags: []contracts.Flag{
			{
				Name:  "force",
				Usage: "Confirm clearing the cache",
				Value: "false",
			},
		},
	}
}

func (c *SchemaClearCommand) Handle(ctx contracts.Context) error {
	if ctx.Option("force") != "true" {
		return fmt.Errorf("refusing to clear the schema cache without --force")
	}
	index, err := c.Driver.Index()
	if err != nil {
		return err
	}
	if err := index.Clear(); err != nil {
		return err
	}
	logger.Info().Msg("Schema cache cleared")
	return nil
}

// SchemaStatsCommand reports cache size
type SchemaStatsCommand struct {
	Driver IManager
}

func (c *SchemaStatsCommand) Signature() string {
	return "schema:stats"
}

func (c *SchemaStatsCommand) Description() string {
	return "Show schema cache statistics"
}

func (c *SchemaStatsCommand) Extend() contracts.Extend {
	return contracts.Extend{
		Flags: []contracts.Flag{
			{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format (table, json)",
				Value:   "table",
			},
		},
	}
}

func (c *SchemaStatsCommand) Handle(ctx contracts.Context) error {
	index, err := c.Driver.Index()
	if err != nil {
		return err
	}
	stats, err := index.Stats()
	if err != nil {
		return err
	}
	if ctx.Option("format") == "json" {
		return renderJSON(c.Driver.Output(), stats)
	}
	renderStats(c.Driver.Output(), stats)
	return nil
}
