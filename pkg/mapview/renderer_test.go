package mapview

import (
	"context"
	"errors"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fitCall struct {
	bound   orb.Bound
	padding float64
	maxZoom float64
}

// fakeSurface records every capability call for inspection.
type fakeSurface struct {
	sources  map[string]*geojson.FeatureCollection
	layers   []LayerSpec
	filters  map[string]FilterExpr
	fits     []fitCall
	handlers map[string]func(*geojson.Feature)
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{
		sources:  map[string]*geojson.FeatureCollection{},
		filters:  map[string]FilterExpr{},
		handlers: map[string]func(*geojson.Feature){},
	}
}

func (s *fakeSurface) AddSource(id string, fc *geojson.FeatureCollection) { s.sources[id] = fc }
func (s *fakeSurface) SetData(id string, fc *geojson.FeatureCollection)  { s.sources[id] = fc }
func (s *fakeSurface) AddLayer(spec LayerSpec)                           { s.layers = append(s.layers, spec) }
func (s *fakeSurface) SetFilter(layerID string, f FilterExpr)            { s.filters[layerID] = f }
func (s *fakeSurface) FitBounds(b orb.Bound, padding, maxZoom float64) {
	s.fits = append(s.fits, fitCall{bound: b, padding: padding, maxZoom: maxZoom})
}
func (s *fakeSurface) On(event, layerID string, fn func(*geojson.Feature)) {
	s.handlers[event+":"+layerID] = fn
}

type fakeFeed struct {
	signs       []Sign
	signsErr    error
	boundary    []byte
	boundaryErr error
	calls       int
}

func (f *fakeFeed) Signs(ctx context.Context, _ Filter) ([]Sign, error) {
	f.calls++
	return f.signs, f.signsErr
}

func (f *fakeFeed) ProvinceBoundary(ctx context.Context, provID int) ([]byte, error) {
	return f.boundary, f.boundaryErr
}

func testSigns() []Sign {
	return []Sign{
		{ID: 1, Name: "Jalur Evakuasi", Lon: 106.8, Lat: -6.2, CategoryID: 1, Status: "published"},
		{ID: 2, Name: "Titik Kumpul", Lon: 106.9, Lat: -6.3, CategoryID: 3, Status: "rusak"},
	}
}

func TestInitLayerPartition(t *testing.T) {
	surface := newFakeSurface()
	r := NewRenderer(surface, &fakeFeed{})
	r.Init()

	var circle, square *LayerSpec
	for i := range surface.layers {
		switch surface.layers[i].ID {
		case layerCircle:
			circle = &surface.layers[i]
		case layerSquare:
			square = &surface.layers[i]
		}
	}
	require.NotNil(t, circle)
	require.NotNil(t, square)

	// Complementary predicates on the same property: every feature renders
	// in exactly one of the two layers.
	assert.Equal(t, FilterExpr{"!=", "categoryId", squareCategoryID}, circle.Filter)
	assert.Equal(t, FilterExpr{"==", "categoryId", squareCategoryID}, square.Filter)
	assert.Equal(t, circle.Source, square.Source)
}

func TestStyleForStatusTotality(t *testing.T) {
	for _, status := range []string{"draft", "published", "rusak", "hilang", "unknown", ""} {
		style := StyleForStatus(status)
		assert.NotEmpty(t, style.Fill, "status %q", status)
		assert.NotEmpty(t, style.Outline, "status %q", status)
		assert.Greater(t, style.OutlineWidth, 0.0, "status %q", status)
	}

	assert.Equal(t, StyleForStatus(""), StyleForStatus("draft"))
	assert.Equal(t, "#ac4bc1", StyleForStatus("published").Fill)
	assert.Equal(t, "#000000", StyleForStatus("hilang").Fill)
	assert.Equal(t, 3.0, StyleForStatus("hilang").OutlineWidth)
}

func TestApplyFilterReplacesSource(t *testing.T) {
	surface := newFakeSurface()
	feed := &fakeFeed{signs: testSigns()}
	r := NewRenderer(surface, feed)
	r.Init()

	require.NoError(t, r.ApplyFilter(context.Background(), Filter{}))

	fc := surface.sources[sourceSigns]
	require.Len(t, fc.Features, 2)
	assert.Equal(t, 1, fc.Features[0].Properties["categoryId"])
	assert.Equal(t, StyleForStatus("published").Fill, fc.Features[0].Properties["fill"])

	// Camera fits the point bounds when at least one point matched.
	require.Len(t, surface.fits, 1)
	assert.Equal(t, fitPadding, surface.fits[0].padding)
	assert.Equal(t, maxZoomPointsOnly, surface.fits[0].maxZoom)
}

func TestApplyFilterIdempotent(t *testing.T) {
	surface := newFakeSurface()
	feed := &fakeFeed{signs: testSigns()}
	r := NewRenderer(surface, feed)
	r.Init()

	cat := 3
	require.NoError(t, r.ApplyFilter(context.Background(), Filter{CategoryID: &cat}))
	first, err := surface.sources[sourceSigns].MarshalJSON()
	require.NoError(t, err)

	require.NoError(t, r.ApplyFilter(context.Background(), Filter{CategoryID: &cat}))
	second, err := surface.sources[sourceSigns].MarshalJSON()
	require.NoError(t, err)

	assert.JSONEq(t, string(first), string(second))
}

func TestApplyFilterNoPointsNoFit(t *testing.T) {
	surface := newFakeSurface()
	r := NewRenderer(surface, &fakeFeed{})
	r.Init()

	require.NoError(t, r.ApplyFilter(context.Background(), Filter{}))
	assert.Empty(t, surface.fits)
	assert.Empty(t, surface.sources[sourceSigns].Features)
}

func TestApplyFilterProvinceOverlay(t *testing.T) {
	surface := newFakeSurface()
	feed := &fakeFeed{
		signs:    testSigns(),
		boundary: []byte(`{"type":"Polygon","coordinates":[[[106,-7],[108,-7],[108,-5],[106,-5],[106,-7]]]}`),
	}
	r := NewRenderer(surface, feed)
	r.Init()

	prov := 11
	require.NoError(t, r.ApplyFilter(context.Background(), Filter{ProvID: &prov}))

	require.Len(t, surface.sources[sourceBoundary].Features, 1)
	require.Len(t, surface.fits, 1)
	fit := surface.fits[0]
	assert.Equal(t, maxZoomProvince, fit.maxZoom)
	// Camera covers boundary plus points.
	assert.True(t, fit.bound.Contains(orb.Point{106.8, -6.2}))
	assert.True(t, fit.bound.Contains(orb.Point{106, -7}))
}

func TestApplyFilterBoundaryFailureStillRendersPoints(t *testing.T) {
	surface := newFakeSurface()
	feed := &fakeFeed{signs: testSigns(), boundaryErr: errors.New("boom")}
	r := NewRenderer(surface, feed)
	r.Init()

	prov := 11
	require.NoError(t, r.ApplyFilter(context.Background(), Filter{ProvID: &prov}))
	assert.Len(t, surface.sources[sourceSigns].Features, 2)
	assert.Empty(t, surface.sources[sourceBoundary].Features)
}

func TestFeatureClickReportsAttributes(t *testing.T) {
	surface := newFakeSurface()
	r := NewRenderer(surface, &fakeFeed{signs: testSigns()})
	r.Init()

	var clicked *geojson.Feature
	r.OnFeatureClick(func(f *geojson.Feature) { clicked = f })

	handler := surface.handlers["click:"+layerCircle]
	require.NotNil(t, handler)

	f := geojson.NewFeature(orb.Point{106.8, -6.2})
	f.Properties = geojson.Properties{"id": 1, "name": "Jalur Evakuasi"}
	handler(f)

	require.NotNil(t, clicked)
	assert.Equal(t, "Jalur Evakuasi", clicked.Properties["name"])
}

func TestRefreshReusesLastFilter(t *testing.T) {
	surface := newFakeSurface()
	feed := &fakeFeed{signs: testSigns()}
	r := NewRenderer(surface, feed)
	r.Init()

	cat := 3
	require.NoError(t, r.ApplyFilter(context.Background(), Filter{CategoryID: &cat}))
	require.NoError(t, r.Refresh(context.Background()))
	assert.Equal(t, 2, feed.calls)
}
