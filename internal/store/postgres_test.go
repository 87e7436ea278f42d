package store

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riverscapes/watershed-cli/internal/topology"
)

func newMockStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPostgresFromPool(mock), mock
}

func TestPostgres_ReplaceUnits(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec("DELETE FROM huc12_units").
		WithArgs("17").
		WillReturnResult(pgxmock.NewResult("DELETE", 3))
	mock.ExpectCopyFrom(
		pgx.Identifier{"huc12_units"},
		[]string{"huc12", "area_sqkm", "tohuc", "region", "geom"},
	).WillReturnResult(2)

	n, err := s.ReplaceUnits(context.Background(), "17", []Unit{
		{HUC12: "170100000001", AreaSqKm: 5, ToHUC: "170100000002", Region: "17"},
		{HUC12: "170100000002", AreaSqKm: 3, Region: "17"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_LoadUnits(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("SELECT huc12, area_sqkm, tohuc FROM huc12_units").
		WillReturnRows(pgxmock.NewRows([]string{"huc12", "area_sqkm", "tohuc"}).
			AddRow("170100000001", 5.0, "170100000002").
			AddRow("170100000002", 3.0, ""))

	units, err := s.LoadUnits(context.Background())
	require.NoError(t, err)
	require.Len(t, units, 2)
	assert.Equal(t, topology.DrainageUnit{ID: "170100000001", AreaSqKm: 5, ToHUC: "170100000002"}, units[0])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_RecordLoad(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO load_status").
		WithArgs("17", 4200, int64(90000)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := s.RecordLoad(context.Background(), "17", 4200, 90*time.Second)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_RegionLoaded(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("SELECT COUNT").
		WithArgs("17").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))

	loaded, err := s.RegionLoaded(context.Background(), "17")
	require.NoError(t, err)
	assert.True(t, loaded)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_SaveContributions(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO contributions").
		WithArgs(pgxmock.AnyArg(), "run-1", "17010000", "170100000001", 8.0, []byte(`["160100000001"]`)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := s.SaveContributions(context.Background(), "run-1", "17010000", []topology.Contribution{
		{Destination: "170100000001", AreaSqKm: 8, Units: []string{"160100000001"}},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_LoadStatus(t *testing.T) {
	s, mock := newMockStore(t)

	loadedAt := time.Now().UTC()
	mock.ExpectQuery("SELECT region, row_count, loaded_at").
		WillReturnRows(pgxmock.NewRows([]string{"region", "row_count", "loaded_at", "duration_ms"}).
			AddRow("17", 4200, loadedAt, 90000))

	status, err := s.LoadStatus(context.Background())
	require.NoError(t, err)
	require.Len(t, status, 1)
	assert.Equal(t, "17", status[0].Region)
	assert.Equal(t, 4200, status[0].RowCount)
	require.NoError(t, mock.ExpectationsWereMet())
}
