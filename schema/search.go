package schema

import (
	"regexp"
	"sort"
	"strings"
)

// Single-term scores, highest first.
const (
	scoreExactSchema  = 7
	scoreExactTable   = 6
	scoreAbbreviation = 5
	scoreSchemaPrefix = 4
	scoreTablePrefix  = 3
	scoreSchemaSubstr = 2
	scoreTableSubstr  = 1
)

// Per-field match levels used by two-term queries.
const (
	levelNone = iota
	levelContains
	levelPrefix
	levelExact
)

// LikeToRegexp converts a SQL LIKE pattern into an anchored, case-insensitive
// regular expression: % matches any run of characters and _ any single one.
func LikeToRegexp(pattern string) *regexp.Regexp {
	var b strings.Builder
	b.WriteString(`(?is)^`)
	for _, r := range pattern {
		switch r {
		case '%':
			b.WriteString(`.*`)
		case '_':
			b.WriteString(`.`)
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString(`$`)
	return regexp.MustCompile(b.String())
}

// term is one side of a search query compiled into its LIKE variants.
type term struct {
	raw      string
	lower    string
	exact    *regexp.Regexp
	prefix   *regexp.Regexp
	contains *regexp.Regexp
}

func newTerm(s string) *term {
	s = strings.TrimSpace(s)
	return &term{
		raw:      s,
		lower:    strings.ToLower(s),
		exact:    LikeToRegexp(s),
		prefix:   LikeToRegexp(s + "%"),
		contains: LikeToRegexp("%" + s + "%"),
	}
}

func (t *term) empty() bool {
	return t.raw == ""
}

// level grades how well the term matches name. An abbreviation hit ranks
// with a prefix match.
func (t *term) level(name string, abbrevs []string) int {
	if t.empty() {
		return levelContains
	}
	switch {
	case t.exact.MatchString(name):
		return levelExact
	case t.prefix.MatchString(name), contains(abbrevs, t.lower):
		return levelPrefix
	case t.contains.MatchString(name):
		return levelContains
	}
	return levelNone
}

// score ranks a single-term query against a schema.table pair.
func (t *term) score(schemaName, tableName string, schemaAbbrevs []string) int {
	switch {
	case t.exact.MatchString(schemaName):
		return scoreExactSchema
	case t.exact.MatchString(tableName):
		return scoreExactTable
	case contains(schemaAbbrevs, t.lower):
		return scoreAbbreviation
	case t.prefix.MatchString(schemaName):
		return scoreSchemaPrefix
	case t.prefix.MatchString(tableName):
		return scoreTablePrefix
	case t.contains.MatchString(schemaName):
		return scoreSchemaSubstr
	case t.contains.MatchString(tableName):
		return scoreTableSubstr
	}
	return 0
}

// rank scores every entry of snap against query and returns the hits,
// best first, ties broken by schema then table name.
func (ix *Index) rank(snap *Snapshot, query string) []Result {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	var schemaTerm, tableTerm *term
	single := true
	if i := strings.Index(query, "."); i >= 0 {
		single = false
		schemaTerm = newTerm(query[:i])
		tableTerm = newTerm(query[i+1:])
	} else {
		tableTerm = newTerm(query)
	}

	abbrevs := make(map[string][]string)
	abbreviations := func(name string) []string {
		if a, ok := abbrevs[name]; ok {
			return a
		}
		a := ix.abbrev.Abbreviations(name)
		abbrevs[name] = a
		return a
	}

	var results []Result
	for schemaName, st := range snap.Schemas {
		if st == nil {
			continue
		}
		for tableName, e := range st.Tables {
			if e == nil {
				continue
			}
			var score int
			if single {
				score = tableTerm.score(schemaName, tableName, abbreviations(schemaName))
			} else {
				sl := schemaTerm.level(schemaName, abbreviations(schemaName))
				tl := tableTerm.level(tableName, abbreviations(tableName))
				if sl > levelNone && tl > levelNone {
					score = sl*4 + tl
				}
			}
			if score == 0 {
				continue
			}
			results = append(results, Result{Summary: summarize(schemaName, tableName, e), Score: score})
		}
	}
	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.SchemaName != b.SchemaName {
			return a.SchemaName < b.SchemaName
		}
		return a.TableName < b.TableName
	})
	return results
}

func summarize(schemaName, tableName string, e *Entry) Summary {
	return Summary{
		SchemaName: schemaName,
		TableName:  tableName,
		Columns:    len(e.Schema.Columns),
		Rows:       len(e.Data),
		Timestamp:  e.Timestamp,
	}
}
