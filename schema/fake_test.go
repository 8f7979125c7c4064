package schema

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeRows(t *testing.T) {
	ts := TableSchema{Columns: []Column{
		{Name: "ID", Type: "NUMBER", PrimaryKey: true},
		{Name: "CODE", Type: "VARCHAR2", Length: 3},
		{Name: "EMAIL", Type: "VARCHAR2"},
		{Name: "AMOUNT", Type: "FLOAT"},
		{Name: "CREATED_AT", Type: "TIMESTAMP"},
		{Name: "NOTE", Type: "VARCHAR2", Nullable: true},
	}}
	rows := FakeRows(ts, 30, 11)
	require.Len(t, rows, 30)
	assert.Equal(t, rows, FakeRows(ts, 30, 11))

	for i, row := range rows {
		assert.Equal(t, i+1, row["ID"])
		code, ok := row["CODE"].(string)
		require.True(t, ok)
		assert.LessOrEqual(t, len(code), 3)
		assert.Contains(t, row["EMAIL"], "@")
		assert.IsType(t, float64(0), row["AMOUNT"])
		assert.Contains(t, row, "NOTE")
	}
	assert.Empty(t, FakeRows(ts, 0, 1))
}

func TestTruncateBytesKeepsRunesWhole(t *testing.T) {
	assert.Equal(t, "abc", truncateBytes("abc", 5))
	assert.Equal(t, "ñ", truncateBytes("ñandú", 2))
	assert.Equal(t, "ña", truncateBytes("ñandú", 3))
	assert.Equal(t, "ñand", truncateBytes("ñandú", 6))
	assert.Equal(t, "", truncateBytes("日本", 2))
	for n := 0; n <= 8; n++ {
		got := truncateBytes("ñandú 日本", n)
		assert.True(t, utf8.ValidString(got), "cut at %d gave %q", n, got)
		assert.LessOrEqual(t, len(got), n)
	}
}
