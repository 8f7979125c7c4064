package schema

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/brianvoe/gofakeit/v6"
)

// FakeRows generates n sample rows shaped by ts, for seeding the cache when no
// real data is at hand. The same seed always yields the same rows.
func FakeRows(ts TableSchema, n int, seed int64) []Row {
	f := gofakeit.New(seed)
	rows := make([]Row, 0, n)
	for i := 0; i < n; i++ {
		row := make(Row, len(ts.Columns))
		for _, col := range ts.Columns {
			if col.Nullable && !col.PrimaryKey && f.Number(1, 10) == 1 {
				row[col.Name] = nil
				continue
			}
			if col.PrimaryKey && isNumeric(col.Type) {
				row[col.Name] = i + 1
				continue
			}
			row[col.Name] = fakeValue(f, col)
		}
		rows = append(rows, row)
	}
	return rows
}

func isNumeric(dataType string) bool {
	t := strings.ToUpper(dataType)
	for _, p := range []string{"NUMBER", "INT", "DECIMAL", "NUMERIC", "FLOAT", "DOUBLE", "REAL"} {
		if strings.Contains(t, p) {
			return true
		}
	}
	return false
}

func fakeValue(f *gofakeit.Faker, col Column) any {
	t := strings.ToUpper(col.Type)
	switch {
	case strings.Contains(t, "FLOAT"), strings.Contains(t, "DOUBLE"), strings.Contains(t, "DECIMAL"), strings.Contains(t, "REAL"):
		return f.Float64Range(0, 10000)
	case isNumeric(t):
		return f.Number(0, 100000)
	case strings.Contains(t, "DATE"), strings.Contains(t, "TIME"):
		return f.DateRange(time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)).Format(time.RFC3339)
	case strings.Contains(t, "BOOL"):
		return f.Bool()
	}
	lower := strings.ToLower(col.Name)
	var s string
	switch {
	case strings.Contains(lower, "email"):
		s = f.Email()
	case strings.Contains(lower, "name"):
		s = f.Name()
	case strings.Contains(lower, "city"):
		s = f.City()
	case strings.Contains(lower, "phone"):
		s = f.Phone()
	default:
		s = f.Word()
	}
	if col.Length > 0 {
		s = truncateBytes(s, col.Length)
	}
	return s
}

// truncateBytes cuts s to at most n bytes without splitting a rune.
func truncateBytes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
