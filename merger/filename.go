package merger

import (
	"path/filepath"
	"regexp"
	"strings"
)

// fileNamePattern matches "SCHEMA.TABLE (SQUAD)[FEATURE].ext".
var fileNamePattern = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9_$#]*)\.([A-Za-z][A-Za-z0-9_$#]*)\s*\(([^()]*)\)\s*\[([^\[\]]*)\]\s*\.([A-Za-z0-9]+)$`)

// FileNameDescriptor is the structured form of a standard upload name.
type FileNameDescriptor struct {
	SchemaName  string `json:"schema_name"`
	TableName   string `json:"table_name"`
	SquadName   string `json:"squad_name"`
	FeatureName string `json:"feature_name"`
	Extension   string `json:"extension"`
}

// ParseFileName decomposes name (directories are ignored). It returns nil
// when the name does not follow the standard pattern or the squad/feature
// parts are blank.
func ParseFileName(name string) *FileNameDescriptor {
	base := strings.TrimSpace(filepath.Base(name))
	m := fileNamePattern.FindStringSubmatch(base)
	if m == nil {
		return nil
	}
	squad := strings.TrimSpace(m[3])
	feature := strings.TrimSpace(m[4])
	if squad == "" || feature == "" {
		return nil
	}
	return &FileNameDescriptor{
		SchemaName:  m[1],
		TableName:   m[2],
		SquadName:   squad,
		FeatureName: feature,
		Extension:   m[5],
	}
}

// Key returns the upper-cased SCHEMA.TABLE used to group files.
func (d *FileNameDescriptor) Key() string {
	return strings.ToUpper(d.SchemaName + "." + d.TableName)
}

// SubHeader returns the "SQUAD - FEATURE" label of the file.
func (d *FileNameDescriptor) SubHeader() string {
	return d.SquadName + " - " + d.FeatureName
}
