package wbd

import (
	"strconv"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/riverscapes/watershed-cli/internal/topology"
)

// Required attribute fields of the WBDHU12 layer.
const (
	fieldHUC12    = "huc12"
	fieldAreaSqKm = "areasqkm"
	fieldToHUC    = "tohuc"
)

// UnitRecord pairs a parsed drainage unit with its boundary geometry.
type UnitRecord struct {
	Unit topology.DrainageUnit
	Geom []byte // EWKB MultiPolygon; nil when the shape was unreadable
}

// ParseHUC12 reads a WBDHU12 shapefile into drainage unit records. A missing
// required attribute field is fatal; individual records with a blank HUC12 or
// an unparseable area are skipped and counted.
func ParseHUC12(shpPath string) ([]UnitRecord, error) {
	reader, err := shp.Open(shpPath)
	if err != nil {
		return nil, eris.Wrapf(err, "wbd: open shapefile %s", shpPath)
	}
	defer func() { _ = reader.Close() }()

	// Build field name -> index map.
	fields := reader.Fields()
	fieldIdx := make(map[string]int, len(fields))
	for i, f := range fields {
		name := strings.TrimRight(f.String(), "\x00")
		fieldIdx[strings.ToLower(name)] = i
	}

	for _, required := range []string{fieldHUC12, fieldAreaSqKm, fieldToHUC} {
		if _, ok := fieldIdx[required]; !ok {
			return nil, eris.Errorf("wbd: shapefile %s missing required field %q", shpPath, required)
		}
	}

	attr := func(idx int) string {
		return strings.TrimSpace(strings.TrimRight(reader.Attribute(idx), "\x00"))
	}

	var records []UnitRecord
	var skipped int

	for reader.Next() {
		_, shape := reader.Shape()

		huc12 := attr(fieldIdx[fieldHUC12])
		if huc12 == "" {
			skipped++
			continue
		}

		area, err := strconv.ParseFloat(attr(fieldIdx[fieldAreaSqKm]), 64)
		if err != nil || area < 0 {
			skipped++
			continue
		}

		geomWKB, encErr := EncodeBoundary(shape)
		if encErr != nil {
			zap.L().Debug("wbd: dropping unreadable boundary", zap.String("huc12", huc12), zap.Error(encErr))
			geomWKB = nil
		}

		records = append(records, UnitRecord{
			Unit: topology.DrainageUnit{
				ID:       huc12,
				AreaSqKm: area,
				ToHUC:    attr(fieldIdx[fieldToHUC]),
			},
			Geom: geomWKB,
		})
	}

	if skipped > 0 {
		zap.L().Debug("wbd: skipped shapefile records",
			zap.String("path", shpPath),
			zap.Int("skipped", skipped),
		)
	}

	return records, nil
}
