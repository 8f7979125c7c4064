package merger

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/oarkflow/sqlkit/splitter"
)

// ParsedFile is one uploaded file split into its DML statements and its
// reportable SELECT statements. Other statements are dropped.
type ParsedFile struct {
	FileName string   `json:"file_name"`
	DML      []string `json:"dml"`
	Selects  []string `json:"selects"`
}

// Source is a raw upload: a file name and its SQL text.
type Source struct {
	Name string
	SQL  string
}

// ParseFile splits sql and keeps DML statements and valid SELECTs, in order.
func ParseFile(name, sql string) ParsedFile {
	pf := ParsedFile{FileName: name}
	for _, stmt := range splitter.Split(sql) {
		switch splitter.Classify(stmt) {
		case splitter.ClassDML:
			pf.DML = append(pf.DML, stmt)
		case splitter.ClassSelect:
			if splitter.IsValidSelect(stmt) {
				pf.Selects = append(pf.Selects, stmt)
			}
		}
	}
	return pf
}

// ParseFiles parses sources concurrently. The result keeps the order of
// sources, which is the upload order the merge depends on.
func ParseFiles(ctx context.Context, sources []Source) ([]ParsedFile, error) {
	out := make([]ParsedFile, len(sources))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, src := range sources {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out[i] = ParseFile(src.Name, src.SQL)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// ReadSources loads files from disk in the given order. The base name of
// each path becomes the source name.
func ReadSources(paths []string) ([]Source, error) {
	sources := make([]Source, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", p, err)
		}
		sources = append(sources, Source{Name: filepath.Base(p), SQL: string(data)})
	}
	return sources, nil
}
