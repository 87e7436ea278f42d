// Package wbd downloads USGS Watershed Boundary Dataset shapefiles and
// loads HUC12 drainage units into the store for topology queries.
package wbd

import (
	"fmt"
	"sort"
)

// RegionNames maps 2-digit hydrologic region (HU2) codes to their names.
var RegionNames = map[string]string{
	"01": "New England",
	"02": "Mid-Atlantic",
	"03": "South Atlantic-Gulf",
	"04": "Great Lakes",
	"05": "Ohio",
	"06": "Tennessee",
	"07": "Upper Mississippi",
	"08": "Lower Mississippi",
	"09": "Souris-Red-Rainy",
	"10": "Missouri",
	"11": "Arkansas-White-Red",
	"12": "Texas-Gulf",
	"13": "Rio Grande",
	"14": "Upper Colorado",
	"15": "Lower Colorado",
	"16": "Great Basin",
	"17": "Pacific Northwest",
	"18": "California",
	"19": "Alaska",
	"20": "Hawaii",
	"21": "Caribbean",
	"22": "South Pacific",
}

// AllRegionCodes returns every HU2 region code in sorted order.
func AllRegionCodes() []string {
	codes := make([]string, 0, len(RegionNames))
	for code := range RegionNames {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// RegionName looks up the name for an HU2 region code.
func RegionName(code string) (string, bool) {
	name, ok := RegionNames[code]
	return name, ok
}

// DownloadURL returns the National Map staged-products URL for a region's
// WBD shapefile archive.
func DownloadURL(region string) string {
	return fmt.Sprintf(
		"https://prd-tnm.s3.amazonaws.com/StagedProducts/Hydrography/WBD/HU2/Shape/WBD_%s_HU2_Shape.zip",
		region,
	)
}
