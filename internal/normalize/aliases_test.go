package normalize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultAliasTableLoads(t *testing.T) {
	table, err := DefaultAliasTable()
	require.NoError(t, err)
	require.Greater(t, table.Len(), 100)

	regions := table.Regions()
	assert.Contains(t, regions, "深圳市")
	assert.Contains(t, regions, "北京市")
	assert.Equal(t, "北京市", regions[0], "canonical order follows first appearance")
}

func TestNewAliasTableRejectsConflicts(t *testing.T) {
	_, err := NewAliasTable([]AliasEntry{
		{Alias: "江", Region: "江苏省"},
		{Alias: "江", Region: "江西省"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "maps to both")

	_, err = NewAliasTable([]AliasEntry{
		{Alias: "浙江省", Region: "江苏省"},
		{Alias: "浙江", Region: "浙江省"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shadows")

	_, err = NewAliasTable([]AliasEntry{{Alias: "  ", Region: "江苏省"}})
	require.Error(t, err)
}

func TestNewAliasTableCollapsesDuplicates(t *testing.T) {
	table, err := NewAliasTable([]AliasEntry{
		{Alias: "Beijing", Region: "北京市"},
		{Alias: "BEIJING", Region: "北京市"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, table.Len())
	assert.Equal(t, []AliasEntry{{Alias: "Beijing", Region: "北京市"}}, table.Entries())
}

func TestLoadAliasTable(t *testing.T) {
	doc := `
aliases:
  - {alias: 鹏城, region: 深圳市}
  - {alias: 羊城, region: 广东省}
`
	table, err := LoadAliasTable(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, []string{"深圳市", "广东省"}, table.Regions())

	_, err = LoadAliasTable(strings.NewReader("aliases: []\n"))
	require.Error(t, err)

	_, err = LoadAliasTable(strings.NewReader("regions: [a]\n"))
	require.Error(t, err, "unknown fields are rejected")
}

func TestLoadAliasFileMissing(t *testing.T) {
	_, err := LoadAliasFile("/nonexistent/aliases.yaml")
	require.Error(t, err)
}

func TestNormalizeKey(t *testing.T) {
	assert.Equal(t, "beijing", NormalizeKey("  Bei Jing "))
	assert.Equal(t, "beijing", NormalizeKey("ＢＥＩＪＩＮＧ"))
	assert.Equal(t, "2024-03", NormalizeKey("２０２４－０３"))
	assert.Equal(t, "广东", NormalizeKey("广 东"))
	assert.Equal(t, "", NormalizeKey(" \t\n"))
}
