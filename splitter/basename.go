package splitter

import (
	"fmt"
	"regexp"
	"strings"
)

var intoPattern = regexp.MustCompile(`(?i)\bINTO\s+("?[A-Za-z0-9_$#]+"?(?:\s*\.\s*"?[A-Za-z0-9_$#]+"?)*)`)

// BaseName derives a name for the chunk at index from the first
// "INTO <identifier>" it contains (INSERT INTO / MERGE INTO). Without a match
// it returns fallback, or CHUNK_<index+1> when fallback is empty.
func BaseName(chunk string, index int, fallback string) string {
	if m := intoPattern.FindStringSubmatch(chunk); m != nil {
		name := strings.ReplaceAll(m[1], `"`, "")
		name = strings.Join(strings.Fields(name), "")
		if name != "" {
			return name
		}
	}
	if fallback != "" {
		return fallback
	}
	return fmt.Sprintf("CHUNK_%d", index+1)
}

// Namer hands out output file names for chunks, keeping them unique when
// several chunks derive the same base name.
type Namer struct {
	seen map[string]int
}

// NewNamer returns an empty Namer.
func NewNamer() *Namer {
	return &Namer{seen: make(map[string]int)}
}

// ChunkFileName returns "<base>.sql" for a single chunk or "<base>_<n>.sql"
// for the n-th chunk of several. A base already handed out gets a running
// suffix instead.
func (n *Namer) ChunkFileName(base string, index, total int) string {
	name := base
	if total > 1 {
		name = fmt.Sprintf("%s_%d", base, index+1)
	}
	key := strings.ToUpper(name)
	n.seen[key]++
	if c := n.seen[key]; c > 1 {
		name = fmt.Sprintf("%s_%d", name, c)
	}
	return name + ".sql"
}
