package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAbbreviationsSingleWord(t *testing.T) {
	a := NewAbbreviator(nil)

	cfg := a.Abbreviations("CONFIG")
	for _, want := range []string{"c", "co", "con", "conf", "cn", "cnf", "cnfg", "cfg"} {
		assert.Contains(t, cfg, want)
	}
	assert.NotContains(t, cfg, "config")

	db := a.Abbreviations("database")
	for _, want := range []string{"db", "d", "dt", "dtb", "dtbs", "data"} {
		assert.Contains(t, db, want)
	}
}

func TestAbbreviationsMultiWord(t *testing.T) {
	a := NewAbbreviator(nil)
	got := a.Abbreviations("app_config")
	for _, want := range []string{"ac", "a", "app", "ap", "c", "cfg", "acfg", "acnf", "aconf"} {
		assert.Contains(t, got, want)
	}
	assert.IsIncreasing(t, got)
	assert.Empty(t, a.Abbreviations("__"))
}

func TestAbbreviatorExtraWords(t *testing.T) {
	a := NewAbbreviator(map[string][]string{"Ledger": {"LDG"}})
	assert.Contains(t, a.Abbreviations("ledger"), "ldg")
	assert.Contains(t, a.Abbreviations("config"), "cfg")
}

func TestLikeToRegexp(t *testing.T) {
	re := LikeToRegexp("emp%ees")
	assert.True(t, re.MatchString("EMPLOYEES"))
	assert.False(t, re.MatchString("EMPLOYEES_OLD"))

	one := LikeToRegexp("c_nfig")
	assert.True(t, one.MatchString("config"))
	assert.False(t, one.MatchString("cnfig"))

	literal := LikeToRegexp("a.b$(")
	assert.True(t, literal.MatchString("A.B$("))
	assert.False(t, literal.MatchString("axb$("))
}

func seedIndex(t *testing.T) *Index {
	t.Helper()
	ix := NewIndex()
	for _, key := range [][2]string{
		{"config", "app_config"},
		{"HR", "EMPLOYEES"},
		{"HR", "CONFIG_HISTORY"},
		{"CONFIGURATION", "USERS"},
	} {
		require.NoError(t, ix.Save(key[0], key[1], TableSchema{Columns: []Column{{Name: "ID", Type: "NUMBER"}}}))
	}
	return ix
}

func names(results []Result) []string {
	var out []string
	for _, r := range results {
		out = append(out, r.SchemaName+"."+r.TableName)
	}
	return out
}

func TestSearchAbbreviationHit(t *testing.T) {
	ix := seedIndex(t)
	results, err := ix.Search("cfg")
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "CONFIG.APP_CONFIG", names(results)[0])
	assert.Equal(t, scoreAbbreviation, results[0].Score)
	assert.NotContains(t, names(results), "HR.EMPLOYEES")
}

func TestSearchSingleTermRanking(t *testing.T) {
	ix := seedIndex(t)
	results, err := ix.Search("config")
	require.NoError(t, err)
	assert.Equal(t, []string{"CONFIG.APP_CONFIG", "CONFIGURATION.USERS", "HR.CONFIG_HISTORY"}, names(results))
	assert.Equal(t, []int{scoreExactSchema, scoreAbbreviation, scoreTablePrefix},
		[]int{results[0].Score, results[1].Score, results[2].Score})
}

func TestSearchLikeWildcards(t *testing.T) {
	ix := seedIndex(t)

	results, err := ix.Search("emp%ees")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, scoreExactTable, results[0].Score)

	results, err = ix.Search("histor")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "HR.CONFIG_HISTORY", names(results)[0])
	assert.Equal(t, scoreTableSubstr, results[0].Score)
}

func TestSearchTiesBreakOnSchemaThenTable(t *testing.T) {
	ix := NewIndex()
	for _, key := range [][2]string{{"ZETA", "ORDERS"}, {"ALPHA", "ORDERS"}, {"ALPHA", "AORDERS"}} {
		require.NoError(t, ix.Save(key[0], key[1], TableSchema{}))
	}
	results, err := ix.Search("order")
	require.NoError(t, err)
	assert.Equal(t, []string{"ALPHA.ORDERS", "ZETA.ORDERS", "ALPHA.AORDERS"}, names(results))
}

func TestSearchTwoTerms(t *testing.T) {
	ix := seedIndex(t)

	results, err := ix.Search("hr.emp")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "HR.EMPLOYEES", names(results)[0])
	assert.Equal(t, levelExact*4+levelPrefix, results[0].Score)

	results, err = ix.Search("cfg.app_config")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, levelPrefix*4+levelExact, results[0].Score)

	results, err = ix.Search("config.")
	require.NoError(t, err)
	assert.Equal(t, []string{"CONFIG.APP_CONFIG", "CONFIGURATION.USERS"}, names(results))

	results, err = ix.Search(".history")
	require.NoError(t, err)
	assert.Equal(t, []string{"HR.CONFIG_HISTORY"}, names(results))

	results, err = ix.Search("hr.users")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchEmptyQuery(t *testing.T) {
	ix := seedIndex(t)
	results, err := ix.Search("   ")
	require.NoError(t, err)
	assert.Empty(t, results)
}
