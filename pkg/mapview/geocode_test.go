package mapview

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGeocodeSource struct {
	lat, lon float64
	result   *GeocodeResult
}

func (s *stubGeocodeSource) Geocode(ctx context.Context, lat, lon float64) (*GeocodeResult, error) {
	s.lat, s.lon = lat, lon
	return s.result, nil
}

func TestGeocoderRejectsNonFinite(t *testing.T) {
	g := NewGeocoder(&stubGeocodeSource{})

	for _, tc := range []struct{ lat, lon float64 }{
		{math.NaN(), 106.8},
		{-6.2, math.Inf(1)},
		{math.Inf(-1), math.Inf(-1)},
	} {
		_, err := g.Resolve(context.Background(), tc.lat, tc.lon)
		assert.Error(t, err, "lat=%v lon=%v", tc.lat, tc.lon)
	}
}

func TestGeocoderResolveStrings(t *testing.T) {
	src := &stubGeocodeSource{result: &GeocodeResult{Province: "DKI Jakarta"}}
	g := NewGeocoder(src)

	result, err := g.ResolveStrings(context.Background(), " -6.2 ", "106.8")
	require.NoError(t, err)
	assert.Equal(t, "DKI Jakarta", result.Province)
	assert.Equal(t, -6.2, src.lat)
	assert.Equal(t, 106.8, src.lon)

	_, err = g.ResolveStrings(context.Background(), "south", "106.8")
	assert.Error(t, err)
	_, err = g.ResolveStrings(context.Background(), "-6.2", "")
	assert.Error(t, err)
}

func TestStyleForStatus(t *testing.T) {
	assert.Equal(t, Style{Fill: "#ac4bc1", Outline: "#ffffff", OutlineWidth: 1}, StyleForStatus("published"))
	assert.Equal(t, Style{Fill: "#f29d00", Outline: "#7a1c1c", OutlineWidth: 2.5}, StyleForStatus("rusak"))
	assert.Equal(t, Style{Fill: "#000000", Outline: "#7a1c1c", OutlineWidth: 3}, StyleForStatus("hilang"))
	assert.Equal(t, StyleForStatus("draft"), StyleForStatus(""))
	assert.Equal(t, StyleForStatus("draft"), StyleForStatus("retired"))
}
