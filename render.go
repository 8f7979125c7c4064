package sqlkit

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/oarkflow/json"

	"github.com/oarkflow/sqlkit/merger"
	"github.com/oarkflow/sqlkit/schema"
	"github.com/oarkflow/sqlkit/splitter"
	"github.com/oarkflow/sqlkit/worker"
)

func newTable(w io.Writer, header ...any) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row(header))
	return t
}

func renderJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func byteSize(n int) string {
	if n < 0 {
		n = 0
	}
	return humanize.Bytes(uint64(n))
}

func renderChunks(w io.Writer, resp worker.Response) {
	if len(resp.Chunks) == 0 {
		fmt.Fprintf(w, "%d statement(s), no chunks\n", len(resp.Statements))
		return
	}
	t := newTable(w, "#", "File", "Statements", "DML", "Size", "Oversized")
	total := 0
	for i, c := range resp.Chunks {
		flag := ""
		if c.Oversized {
			flag = "yes"
		}
		t.AppendRow(table.Row{i + 1, c.FileName, c.Statements, c.DMLCount, byteSize(c.Bytes), flag})
		total += c.Bytes
	}
	t.AppendFooter(table.Row{"", "", len(resp.Statements), "", byteSize(total), ""})
	t.Render()
}

func renderStatements(w io.Writer, stmts []string) {
	t := newTable(w, "#", "Kind", "Size", "Statement")
	for i, s := range stmts {
		t.AppendRow(table.Row{i + 1, kindOf(s), byteSize(len(s)), abbreviate(s, 60)})
	}
	t.Render()
}

func renderMerge(w io.Writer, result merger.Result) {
	t := newTable(w, "Group", "Files", "DML", "SELECT")
	for _, g := range result.Groups {
		key := g.Key
		if !g.Standard {
			key += " (non-standard name)"
		}
		t.AppendRow(table.Row{key, len(g.Entries), g.DMLCount(), g.SelectCount()})
	}
	t.Render()
	if len(result.Duplicates) == 0 {
		return
	}
	fmt.Fprintln(w, "Duplicate DML across files:")
	d := newTable(w, "Statement", "Files")
	for _, dup := range result.Duplicates {
		d.AppendRow(table.Row{abbreviate(dup.Statement, 60), strings.Join(dup.Files, "\n")})
	}
	d.Render()
}

func renderSummaries(w io.Writer, list []schema.Summary) {
	if len(list) == 0 {
		fmt.Fprintln(w, "(0 tables)")
		return
	}
	t := newTable(w, "Schema", "Table", "Columns", "Rows", "Cached")
	for _, s := range list {
		t.AppendRow(table.Row{s.SchemaName, s.TableName, s.Columns, s.Rows, humanize.Time(s.Timestamp)})
	}
	t.Render()
}

func renderResults(w io.Writer, results []schema.Result) {
	if len(results) == 0 {
		fmt.Fprintln(w, "(no match)")
		return
	}
	t := newTable(w, "Score", "Schema", "Table", "Columns", "Rows")
	for _, r := range results {
		t.AppendRow(table.Row{r.Score, r.SchemaName, r.TableName, r.Columns, r.Rows})
	}
	t.Render()
}

func renderColumns(w io.Writer, loaded *schema.Loaded) {
	fmt.Fprintf(w, "%s.%s\n", loaded.Schema.SchemaName, loaded.Schema.TableName)
	t := newTable(w, "Column", "Type", "Length", "Nullable", "Default", "PK")
	for _, c := range loaded.Schema.Columns {
		length := ""
		if c.Length > 0 {
			length = fmt.Sprint(c.Length)
		}
		pk := ""
		if c.PrimaryKey {
			pk = "yes"
		}
		t.AppendRow(table.Row{c.Name, c.Type, length, c.Nullable, c.Default, pk})
	}
	t.Render()
	if loaded.Data != nil {
		fmt.Fprintf(w, "(%d sample rows)\n", len(loaded.Data))
	}
}

func renderStats(w io.Writer, st schema.Stats) {
	t := newTable(w, "Schemas", "Tables", "Rows", "Size", "Updated")
	updated := "never"
	if !st.LastUpdated.IsZero() {
		updated = st.LastUpdated.Local().Format(time.DateTime)
	}
	t.AppendRow(table.Row{st.Schemas, st.Tables, st.Rows, byteSize(st.Bytes), updated})
	t.Render()
}

func renderConfig(w io.Writer, config *Config) {
	t := newTable(w, "Setting", "Value")
	rows := []table.Row{
		{"split.mode", config.Split.Mode},
		{"split.max_bytes", fmt.Sprintf("%d (%s)", config.Split.MaxBytes, byteSize(config.Split.MaxBytes))},
		{"split.max_dml", config.Split.MaxDML},
		{"split.size_limit", config.Split.SizeLimit},
		{"split.header", config.Split.Header},
		{"split.output_dir", config.Split.OutputDir},
		{"split.workers", config.Split.Workers},
		{"merge.header", config.Merge.Header},
		{"merge.output_dir", config.Merge.OutputDir},
		{"merge.merged_file", config.Merge.MergedFile},
		{"merge.select_file", config.Merge.SelectFile},
		{"schema.store", config.Schema.Store},
		{"schema.directory", config.Schema.Directory},
		{"schema.key", config.Schema.Key},
		{"schema.row_limit", config.Schema.RowLimit},
		{"schema.database.driver", config.Schema.Database.Driver},
		{"schema.database.database", config.Schema.Database.Database},
		{"schema.database.table", config.Schema.Database.Table},
		{"logging.level", config.Logging.Level},
		{"logging.output", config.Logging.Output},
		{"logging.verbose", config.Logging.Verbose},
	}
	for _, r := range rows {
		t.AppendRow(r)
	}
	t.Render()
}

func kindOf(stmt string) string {
	return splitter.Classify(stmt).String()
}

// abbreviate collapses whitespace and cuts s to at most n runes.
func abbreviate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
