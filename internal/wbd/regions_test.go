package wbd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	// Replace global logger with a no-op to avoid noisy output in tests.
	zap.ReplaceGlobals(zap.NewNop())
}

func TestRegionName(t *testing.T) {
	name, ok := RegionName("17")
	require.True(t, ok)
	assert.Equal(t, "Pacific Northwest", name)

	_, ok = RegionName("99")
	assert.False(t, ok)
}

func TestAllRegionCodes(t *testing.T) {
	codes := AllRegionCodes()
	assert.Len(t, codes, 22)
	// Should be sorted.
	for i := 1; i < len(codes); i++ {
		assert.True(t, codes[i-1] <= codes[i], "region codes should be sorted")
	}
	assert.Equal(t, "01", codes[0])
	assert.Equal(t, "22", codes[len(codes)-1])
}

func TestDownloadURL(t *testing.T) {
	url := DownloadURL("17")
	assert.Equal(t,
		"https://prd-tnm.s3.amazonaws.com/StagedProducts/Hydrography/WBD/HU2/Shape/WBD_17_HU2_Shape.zip",
		url)
}
