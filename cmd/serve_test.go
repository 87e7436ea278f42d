package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riverscapes/watershed-cli/internal/topology"
)

func serveTestTopo(t *testing.T) *topology.Store {
	t.Helper()
	topo, err := topology.NewStore([]topology.DrainageUnit{
		{ID: "111100000001", AreaSqKm: 5, ToHUC: "999900000001"},
		{ID: "999900000001", AreaSqKm: 10, ToHUC: ""},
	})
	require.NoError(t, err)
	return topo
}

func TestContribHandler_OK(t *testing.T) {
	handler := contribHandler(serveTestTopo(t))

	req := httptest.NewRequest(http.MethodGet, "/contributing-area?huc8=99990000", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		HUC8          string                           `json:"huc8"`
		Contributions map[string]topology.Contribution `json:"contributions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "99990000", body.HUC8)
	require.Len(t, body.Contributions, 1)
	assert.InDelta(t, 5, body.Contributions["999900000001"].AreaSqKm, 0.001)
}

func TestContribHandler_MissingParam(t *testing.T) {
	handler := contribHandler(serveTestTopo(t))

	req := httptest.NewRequest(http.MethodGet, "/contributing-area", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestContribHandler_InvalidPrefix(t *testing.T) {
	handler := contribHandler(serveTestTopo(t))

	req := httptest.NewRequest(http.MethodGet, "/contributing-area?huc8=999", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "8 characters")
}

func TestContribHandler_UnmatchedPrefix(t *testing.T) {
	handler := contribHandler(serveTestTopo(t))

	req := httptest.NewRequest(http.MethodGet, "/contributing-area?huc8=55550000", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Contributions map[string]topology.Contribution `json:"contributions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Empty(t, body.Contributions)
}
