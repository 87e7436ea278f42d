package topology

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

func TestNewStore_Indexes(t *testing.T) {
	s, err := NewStore([]DrainageUnit{
		{ID: "111100000001", AreaSqKm: 5, ToHUC: "999900000001"},
		{ID: "222200000001", AreaSqKm: 3, ToHUC: "999900000001"},
		{ID: "999900000001", AreaSqKm: 10, ToHUC: "888800000002"},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, s.Len())

	u, ok := s.Unit("111100000001")
	require.True(t, ok)
	assert.InDelta(t, 5, u.AreaSqKm, 0.001)

	_, ok = s.Unit("000000000000")
	assert.False(t, ok)

	up := s.Upstream("999900000001")
	assert.ElementsMatch(t, []string{"111100000001", "222200000001"}, up)
}

func TestNewStore_DuplicateID(t *testing.T) {
	_, err := NewStore([]DrainageUnit{
		{ID: "111100000001", AreaSqKm: 5},
		{ID: "111100000001", AreaSqKm: 3},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "111100000001")
}

func TestNewStore_EmptyID(t *testing.T) {
	_, err := NewStore([]DrainageUnit{{AreaSqKm: 1}})
	assert.Error(t, err)
}

func TestNewStore_SinksNotIndexed(t *testing.T) {
	s, err := NewStore([]DrainageUnit{
		{ID: "111100000001", AreaSqKm: 1, ToHUC: ""},
		{ID: "222200000001", AreaSqKm: 2, ToHUC: "222200000001"},
	})
	require.NoError(t, err)

	// Neither the empty nor the self-referential ToHUC creates an upstream edge.
	assert.Empty(t, s.Upstream(""))
	assert.Empty(t, s.Upstream("222200000001"))
}

func TestNewStore_DanglingToHUC(t *testing.T) {
	// ToHUC referencing a unit outside the loaded topology is expected
	// edge-of-dataset truncation, not an error.
	s, err := NewStore([]DrainageUnit{
		{ID: "111100000001", AreaSqKm: 1, ToHUC: "777700000009"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, s.Len())
}

func TestDrainageUnit_IsSink(t *testing.T) {
	assert.True(t, DrainageUnit{ID: "a"}.IsSink())
	assert.True(t, DrainageUnit{ID: "a", ToHUC: "a"}.IsSink())
	assert.False(t, DrainageUnit{ID: "a", ToHUC: "b"}.IsSink())
}
