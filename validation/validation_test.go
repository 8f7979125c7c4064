package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		ok    bool
	}{
		{"simple", "HR", true},
		{"with specials", "APP_CFG$1#", true},
		{"leading digit", "1table", false},
		{"leading underscore", "_hr", false},
		{"empty", "", false},
		{"dot", "a.b", false},
		{"exactly 30", strings.Repeat("s", 30), true},
		{"31 chars", strings.Repeat("s", 31), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := SchemaName(tt.input)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, IsValidationError(err))
		})
	}
}

func TestTableNameLength(t *testing.T) {
	assert.NoError(t, TableName("T"+strings.Repeat("a", 127)))
	err := TableName("T" + strings.Repeat("a", 128))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max 128 bytes")
}

func TestTableNameRejectsLeadingDigit(t *testing.T) {
	err := TableName("1table")
	require.Error(t, err)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "table_name", ve.Field)
	assert.Equal(t, "1table", ve.Value)
}

func TestValidatorAggregates(t *testing.T) {
	v := NewValidator()
	v.ValidatePositive("split.max_bytes", 0)
	v.ValidateOneOf("logging.level", "loud", "debug", "info")
	require.True(t, v.HasErrors())
	assert.Len(t, v.Errors(), 2)
	err := v.Error()
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "validation failed:"))
}

func TestValidatorNoErrors(t *testing.T) {
	v := NewValidator()
	v.ValidatePositive("n", 3)
	v.ValidateOneOf("mode", "size", "size", "count")
	assert.NoError(t, v.Error())
}

func TestValidatorErrorsUnwrap(t *testing.T) {
	v := NewValidator()
	v.ValidateIdentifier("schema_name", "1hr", MaxSchemaNameBytes)
	v.ValidateIdentifier("table_name", "", MaxTableNameBytes)
	err := v.Error()
	require.Error(t, err)
	var errs Errors
	require.ErrorAs(t, err, &errs)
	assert.Len(t, errs, 2)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "schema_name", ve.Field)
}
