// Package merger combines many uploaded SQL files into one DML script and one
// verification SELECT script.
package merger

import "strings"

// DefaultHeader opens every merged DML script.
const DefaultHeader = "SET DEFINE OFF;"

// Result is the outcome of a merge.
type Result struct {
	MergedSQL  string      `json:"merged_sql"`
	SelectSQL  string      `json:"select_sql"`
	Duplicates []Duplicate `json:"duplicates"`
	Groups     []Group     `json:"groups"`
}

type options struct {
	header string
}

// Option customizes Merge.
type Option func(*options)

// WithHeader replaces the header line of the merged DML script.
func WithHeader(header string) Option {
	return func(o *options) {
		o.header = header
	}
}

// Merge groups files by adjacency, reports duplicate DML across files and
// assembles the DML and SELECT scripts. It never fails: files with
// non-standard names are grouped by their raw name.
func Merge(files []ParsedFile, opts ...Option) Result {
	o := options{header: DefaultHeader}
	for _, opt := range opts {
		opt(&o)
	}
	groups := BuildGroups(files)
	return Result{
		MergedSQL:  buildMergedSQL(groups, o.header),
		SelectSQL:  buildSelectSQL(groups),
		Duplicates: FindDuplicates(files),
		Groups:     groups,
	}
}

func buildMergedSQL(groups []Group, header string) string {
	lines := []string{header}
	for _, g := range groups {
		if g.DMLCount() == 0 {
			continue
		}
		lines = append(lines, "", "-- "+g.Key)
		for _, e := range g.Entries {
			if len(e.DML) == 0 {
				continue
			}
			if e.SubHeader != "" {
				lines = append(lines, "-- "+e.SubHeader)
			}
			lines = append(lines, e.DML...)
		}
	}
	return strings.Join(lines, "\n")
}

func buildSelectSQL(groups []Group) string {
	var lines []string
	for _, g := range groups {
		if g.SelectCount() == 0 {
			continue
		}
		if len(lines) > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, "-- "+g.Key)
		for _, e := range g.Entries {
			if len(e.Selects) == 0 {
				continue
			}
			if e.SubHeader != "" {
				lines = append(lines, "-- "+e.SubHeader)
			}
			lines = append(lines, e.Selects...)
		}
		if g.Standard {
			lines = append(lines, "SELECT * FROM "+g.Key+";")
		}
	}
	return strings.Join(lines, "\n")
}
