package merger

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/oarkflow/bcl"
)

// Manifest describes a merge in a BCL file:
//
//	Merge "release-42" {
//	  output = "out"
//	  files = ["HR.EMP (CORE)[ONBOARD].sql", "HR.DEPT (CORE)[ONBOARD].sql"]
//	}
//
// Files are merged in the listed order. Relative paths resolve against the
// manifest's directory.
type Manifest struct {
	Merge MergeManifest `json:"Merge"`
}

type MergeManifest struct {
	Name   string   `json:"name"`
	Output string   `json:"output"`
	Header string   `json:"header"`
	Files  []string `json:"files"`
}

// LoadManifest reads and resolves a BCL merge manifest.
func LoadManifest(path string) (*MergeManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	var m Manifest
	if _, err := bcl.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal manifest %s: %w", path, err)
	}
	if len(m.Merge.Files) == 0 {
		return nil, errors.New("manifest lists no files")
	}
	dir := filepath.Dir(path)
	for i, f := range m.Merge.Files {
		if !filepath.IsAbs(f) {
			m.Merge.Files[i] = filepath.Join(dir, f)
		}
	}
	if m.Merge.Output != "" && !filepath.IsAbs(m.Merge.Output) {
		m.Merge.Output = filepath.Join(dir, m.Merge.Output)
	}
	return &m.Merge, nil
}
