package mapview

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// geocodeSource is the slice of the API client the geocoder needs.
type geocodeSource interface {
	Geocode(ctx context.Context, lat, lon float64) (*GeocodeResult, error)
}

// Geocoder resolves a clicked coordinate to administrative region names.
// One request per call, no retry.
type Geocoder struct {
	source geocodeSource
}

// NewGeocoder constructs a Geocoder over the given client.
func NewGeocoder(source geocodeSource) *Geocoder {
	return &Geocoder{source: source}
}

// Resolve maps a coordinate to region names. Coordinates must be finite.
func (g *Geocoder) Resolve(ctx context.Context, lat, lon float64) (*GeocodeResult, error) {
	if !finite(lat) || !finite(lon) {
		return nil, fmt.Errorf("coordinate is not finite: lat=%v lon=%v", lat, lon)
	}
	return g.source.Geocode(ctx, lat, lon)
}

// ResolveStrings parses string coordinates to float before resolving,
// mirroring how coordinates arrive from form inputs.
func (g *Geocoder) ResolveStrings(ctx context.Context, lat, lon string) (*GeocodeResult, error) {
	latF, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid latitude %q", lat)
	}
	lonF, err := strconv.ParseFloat(strings.TrimSpace(lon), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid longitude %q", lon)
	}
	return g.Resolve(ctx, latF, lonF)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
