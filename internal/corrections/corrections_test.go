package corrections

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SilasRoe/raccolta-dati/internal/model"
)

func TestLoad_MissingFileIsEmptyTable(t *testing.T) {
	table, err := Load(filepath.Join(t.TempDir(), "none.json"))
	require.NoError(t, err)
	assert.Empty(t, table)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrections.json")

	table := Table{}
	table.Learn("Wdget", "Widget")
	table.Learn("B0lt", "Bolt")
	require.NoError(t, Save(path, table))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, table, loaded)
}

func TestLearn_IgnoresUselessPairs(t *testing.T) {
	table := Table{}
	table.Learn("", "Widget")
	table.Learn("Widget", "")
	table.Learn("Widget", "Widget")
	assert.Empty(t, table)

	table.Learn("  Wdget ", " Widget ")
	assert.Equal(t, Table{"Wdget": "Widget"}, table)
}

func TestRemove(t *testing.T) {
	table := Table{"Wdget": "Widget"}
	assert.False(t, table.Remove("unknown"))
	assert.True(t, table.Remove("Wdget"))
	assert.Empty(t, table)
}

func TestApply(t *testing.T) {
	table := Table{"Wdget": "Widget"}
	recs := []model.IncomingRecord{
		{Product: "Wdget"},
		{Product: "Bolt"},
		{Product: "Wdget"},
	}

	applied := table.Apply(recs)
	assert.Equal(t, 2, applied)
	assert.Equal(t, "Widget", recs[0].Product)
	assert.Equal(t, "Bolt", recs[1].Product)
	assert.Equal(t, "Widget", recs[2].Product)
}

func TestKeys_Sorted(t *testing.T) {
	table := Table{"b": "B", "a": "A", "c": "C"}
	assert.Equal(t, []string{"a", "b", "c"}, table.Keys())
}
