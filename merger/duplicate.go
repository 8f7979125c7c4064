package merger

import (
	"strings"

	"golang.org/x/text/cases"
)

// Duplicate is a DML statement found, after normalization, in two or more
// distinct files. It is a warning; the merged output keeps every copy.
type Duplicate struct {
	Statement string   `json:"statement"`
	Files     []string `json:"files"`
}

// Normalize case-folds stmt, collapses whitespace runs to one space and trims.
func Normalize(stmt string) string {
	folded := cases.Fold().String(stmt)
	return strings.Join(strings.Fields(folded), " ")
}

// FindDuplicates reports every normalized DML statement present in at least
// two distinct files, in first-seen order. Files are listed in the order they
// first contributed the statement. A file is identified by its position in
// files, so two uploads sharing a name still count as two files.
func FindDuplicates(files []ParsedFile) []Duplicate {
	type seen struct {
		statement string
		files     []string
		inFile    map[int]bool
	}
	index := make(map[string]*seen)
	var order []string
	for pos, f := range files {
		for _, stmt := range f.DML {
			key := Normalize(stmt)
			s, ok := index[key]
			if !ok {
				s = &seen{statement: stmt, inFile: make(map[int]bool)}
				index[key] = s
				order = append(order, key)
			}
			if !s.inFile[pos] {
				s.inFile[pos] = true
				s.files = append(s.files, f.FileName)
			}
		}
	}
	var dups []Duplicate
	for _, key := range order {
		if s := index[key]; len(s.files) >= 2 {
			dups = append(dups, Duplicate{Statement: s.statement, Files: s.files})
		}
	}
	return dups
}
