package wbd

import (
	"path/filepath"
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixtureRow struct {
	huc12 string
	area  float64
	tohuc string
}

// writeFixtureShapefile writes a small WBDHU12-shaped shapefile.
func writeFixtureShapefile(t *testing.T, path string, rows []fixtureRow) {
	t.Helper()

	w, err := shp.Create(path, shp.POLYGON)
	require.NoError(t, err)

	w.SetFields([]shp.Field{
		shp.StringField("HUC12", 12),
		shp.FloatField("AreaSqKm", 19, 11),
		shp.StringField("ToHUC", 16),
	})

	for i, row := range rows {
		w.Write(squarePolygon())
		require.NoError(t, w.WriteAttribute(i, 0, row.huc12))
		require.NoError(t, w.WriteAttribute(i, 1, row.area))
		require.NoError(t, w.WriteAttribute(i, 2, row.tohuc))
	}

	w.Close()
}

func TestParseHUC12(t *testing.T) {
	path := filepath.Join(t.TempDir(), "WBDHU12.shp")
	writeFixtureShapefile(t, path, []fixtureRow{
		{huc12: "111100000001", area: 5.25, tohuc: "999900000001"},
		{huc12: "999900000001", area: 10.5, tohuc: "888800000002"},
	})

	records, err := ParseHUC12(path)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "111100000001", records[0].Unit.ID)
	assert.InDelta(t, 5.25, records[0].Unit.AreaSqKm, 0.001)
	assert.Equal(t, "999900000001", records[0].Unit.ToHUC)
	assert.NotNil(t, records[0].Geom)

	assert.Equal(t, "999900000001", records[1].Unit.ID)
	assert.InDelta(t, 10.5, records[1].Unit.AreaSqKm, 0.001)
}

func TestParseHUC12_SkipsBlankID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "WBDHU12.shp")
	writeFixtureShapefile(t, path, []fixtureRow{
		{huc12: "", area: 1, tohuc: "999900000001"},
		{huc12: "111100000001", area: 2, tohuc: ""},
	})

	records, err := ParseHUC12(path)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "111100000001", records[0].Unit.ID)
}

func TestParseHUC12_MissingField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "WBDHU12.shp")

	w, err := shp.Create(path, shp.POLYGON)
	require.NoError(t, err)
	w.SetFields([]shp.Field{shp.StringField("HUC12", 12)})
	w.Write(squarePolygon())
	require.NoError(t, w.WriteAttribute(0, 0, "111100000001"))
	w.Close()

	_, err = ParseHUC12(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "areasqkm")
	assert.Contains(t, err.Error(), path)
}

func TestParseHUC12_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.shp")
	_, err := ParseHUC12(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
}
