package service

import (
	"context"
	"database/sql"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sigapbencana/rambu_api/internal/models"
	"github.com/sigapbencana/rambu_api/internal/utils"
)

type fakeRegions struct {
	provinces    []models.Province
	cities       map[int][]models.City
	districts    map[int][]models.District
	subdistricts map[int][]models.SubDistrict
}

func (f *fakeRegions) GetProvincesWithBoundary(ctx context.Context) ([]models.Province, error) {
	return f.provinces, nil
}

func (f *fakeRegions) GetCitiesByProvince(ctx context.Context, provID int) ([]models.City, error) {
	return f.cities[provID], nil
}

func (f *fakeRegions) GetDistrictsByCity(ctx context.Context, cityID int) ([]models.District, error) {
	return f.districts[cityID], nil
}

func (f *fakeRegions) GetSubDistrictsByDistrict(ctx context.Context, districtID int) ([]models.SubDistrict, error) {
	return f.subdistricts[districtID], nil
}

func boundary(s string) sql.NullString {
	return sql.NullString{String: s, Valid: true}
}

// Jakarta roughly spans lon 106..107.2, lat -6.4..-5.9 in this fixture.
func testRegions() *fakeRegions {
	return &fakeRegions{
		provinces: []models.Province{
			{ID: 11, Name: "DKI Jakarta", Boundary: boundary(
				`{"type":"Polygon","coordinates":[[[106,-6.4],[107.2,-6.4],[107.2,-5.9],[106,-5.9],[106,-6.4]]]}`)},
			{ID: 32, Name: "Jawa Barat", Boundary: boundary(
				`{"type":"Polygon","coordinates":[[[107.2,-7.5],[108.5,-7.5],[108.5,-6],[107.2,-6],[107.2,-7.5]]]}`)},
		},
		cities: map[int][]models.City{
			11: {
				{ID: 1101, ProvID: 11, Name: "Jakarta Selatan", Lat: -6.26, Lon: 106.81},
				{ID: 1102, ProvID: 11, Name: "Jakarta Utara", Lat: -6.12, Lon: 106.88},
			},
		},
		districts: map[int][]models.District{
			1101: {{ID: 110101, CityID: 1101, Name: "Kebayoran Baru", Lat: -6.24, Lon: 106.8}},
		},
		subdistricts: map[int][]models.SubDistrict{
			110101: {{ID: 11010101, DistrictID: 110101, Name: "Senayan", Lat: -6.23, Lon: 106.8}},
		},
	}
}

func warmedService(t *testing.T) *GeocodeService {
	t.Helper()
	svc := NewGeocodeService(testRegions(), nil)
	require.NoError(t, svc.RefreshBoundaries(context.Background()))
	require.Equal(t, 2, svc.BoundaryCount())
	return svc
}

func TestResolveInsideProvince(t *testing.T) {
	svc := warmedService(t)

	result, err := svc.Resolve(context.Background(), -6.25, 106.82)
	require.NoError(t, err)
	assert.Equal(t, "DKI Jakarta", result.Province)
	assert.Equal(t, "Jakarta Selatan", result.City)
	assert.Equal(t, "Kebayoran Baru", result.District)
	assert.Equal(t, "Senayan", result.Village)
}

func TestResolvePicksNearestCity(t *testing.T) {
	svc := warmedService(t)

	// Point in the north of the fixture polygon.
	result, err := svc.Resolve(context.Background(), -6.1, 106.9)
	require.NoError(t, err)
	assert.Equal(t, "Jakarta Utara", result.City)
}

func TestResolveOutsideAllProvinces(t *testing.T) {
	svc := warmedService(t)

	_, err := svc.Resolve(context.Background(), -2.5, 120.0)
	assert.ErrorIs(t, err, utils.ErrRegionNotFound)
}

func TestResolveBoundingBoxPrefilter(t *testing.T) {
	svc := warmedService(t)

	// Inside Jawa Barat's bbox and polygon, outside Jakarta's.
	result, err := svc.Resolve(context.Background(), -7.0, 107.6)
	require.NoError(t, err)
	assert.Equal(t, "Jawa Barat", result.Province)
	// No cities seeded for Jawa Barat: lower levels stay empty.
	assert.Empty(t, result.City)
	assert.Empty(t, result.Village)
}

func TestResolveRejectsInvalidCoordinates(t *testing.T) {
	svc := warmedService(t)

	for _, tc := range []struct{ lat, lon float64 }{
		{math.NaN(), 106.8},
		{-6.2, math.Inf(1)},
		{91, 106.8},
		{-6.2, 181},
	} {
		_, err := svc.Resolve(context.Background(), tc.lat, tc.lon)
		assert.ErrorIs(t, err, utils.ErrInvalidCoordinate, "lat=%v lon=%v", tc.lat, tc.lon)
	}
}

func TestRefreshSkipsUnparseableBoundary(t *testing.T) {
	regions := testRegions()
	regions.provinces = append(regions.provinces, models.Province{
		ID: 99, Name: "Broken", Boundary: boundary(`{"type":"Point","coordinates":[1,2]}`),
	})

	svc := NewGeocodeService(regions, nil)
	require.NoError(t, svc.RefreshBoundaries(context.Background()))
	assert.Equal(t, 2, svc.BoundaryCount())
}

func TestParseBoundaryShapes(t *testing.T) {
	polygon := `{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,1],[0,0]]]}`

	geoms, err := parseBoundary([]byte(polygon))
	require.NoError(t, err)
	assert.Len(t, geoms, 1)

	feature := `{"type":"Feature","properties":{},"geometry":` + polygon + `}`
	geoms, err = parseBoundary([]byte(feature))
	require.NoError(t, err)
	assert.Len(t, geoms, 1)

	fc := `{"type":"FeatureCollection","features":[` + feature + `,` + feature + `]}`
	geoms, err = parseBoundary([]byte(fc))
	require.NoError(t, err)
	assert.Len(t, geoms, 2)

	_, err = parseBoundary([]byte(`not json`))
	assert.Error(t, err)
}
