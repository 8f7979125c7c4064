package merger

// GroupEntry is one file's contribution to a Group. SubHeader is empty for
// files without a standard name.
type GroupEntry struct {
	FileName  string   `json:"file_name"`
	DML       []string `json:"dml"`
	Selects   []string `json:"selects"`
	SubHeader string   `json:"sub_header,omitempty"`
}

// Group is a run of consecutive files sharing the same key.
type Group struct {
	Key      string       `json:"key"`
	Standard bool         `json:"standard"`
	Entries  []GroupEntry `json:"entries"`
}

// DMLCount returns the number of DML statements across all entries.
func (g Group) DMLCount() int {
	n := 0
	for _, e := range g.Entries {
		n += len(e.DML)
	}
	return n
}

// SelectCount returns the number of SELECT statements across all entries.
func (g Group) SelectCount() int {
	n := 0
	for _, e := range g.Entries {
		n += len(e.Selects)
	}
	return n
}

// BuildGroups scans files in upload order and merges only strictly
// consecutive files with the same key. A table that shows up again after a
// different one starts a new group.
func BuildGroups(files []ParsedFile) []Group {
	var groups []Group
	for _, f := range files {
		key := f.FileName
		standard := false
		entry := GroupEntry{FileName: f.FileName, DML: f.DML, Selects: f.Selects}
		if d := ParseFileName(f.FileName); d != nil {
			key = d.Key()
			standard = true
			entry.SubHeader = d.SubHeader()
		}
		if n := len(groups); n > 0 && groups[n-1].Key == key && groups[n-1].Standard == standard {
			groups[n-1].Entries = append(groups[n-1].Entries, entry)
			continue
		}
		groups = append(groups, Group{Key: key, Standard: standard, Entries: []GroupEntry{entry}})
	}
	return groups
}
