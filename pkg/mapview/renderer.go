package mapview

import (
	"context"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Source, layer and symbology identifiers on the map surface.
const (
	sourceSigns    = "rambu-points"
	sourceBoundary = "province-boundary"

	layerCircle       = "rambu-circle"
	layerSquare       = "rambu-square"
	layerBoundaryFill = "province-fill"
	layerBoundaryLine = "province-line"

	// Signs of this category render as a square glyph instead of a circle.
	squareCategoryID = 3

	fitPadding        = 80.0
	maxZoomProvince   = 8.0
	maxZoomPointsOnly = 9.0
)

// FilterExpr is a map-surface layer predicate in expression form,
// e.g. ["!=", "categoryId", 3].
type FilterExpr []interface{}

// LayerSpec describes one layer on the map surface.
type LayerSpec struct {
	ID     string
	Type   string
	Source string
	Filter FilterExpr
	Paint  map[string]interface{}
}

// MapSurface is the capability set the renderer needs from a mapping engine.
// Implementations adapt a real engine; tests supply a fake.
type MapSurface interface {
	AddSource(id string, fc *geojson.FeatureCollection)
	SetData(sourceID string, fc *geojson.FeatureCollection)
	AddLayer(spec LayerSpec)
	SetFilter(layerID string, filter FilterExpr)
	FitBounds(bound orb.Bound, padding float64, maxZoom float64)
	On(event string, layerID string, fn func(feature *geojson.Feature))
}

// signFeed is the slice of the API client the renderer needs.
type signFeed interface {
	Signs(ctx context.Context, f Filter) ([]Sign, error)
	ProvinceBoundary(ctx context.Context, provID int) ([]byte, error)
}

// Renderer keeps the map surface's feature source synchronized with a
// filtered sign query. All writers replace the full source content, so
// re-applying an identical filter reproduces an identical feature set.
type Renderer struct {
	surface MapSurface
	feed    signFeed
	onClick func(feature *geojson.Feature)

	lastFilter Filter
}

// NewRenderer constructs a Renderer over a map surface and sign feed.
func NewRenderer(surface MapSurface, feed signFeed) *Renderer {
	return &Renderer{surface: surface, feed: feed}
}

// Init registers the shared feature source and its two complementary layers:
// the circle layer excludes the square-glyph category, the square layer
// includes only it, so every feature renders in exactly one of the two.
func (r *Renderer) Init() {
	empty := geojson.NewFeatureCollection()
	r.surface.AddSource(sourceSigns, empty)
	r.surface.AddSource(sourceBoundary, empty)

	r.surface.AddLayer(LayerSpec{
		ID:     layerBoundaryFill,
		Type:   "fill",
		Source: sourceBoundary,
		Paint: map[string]interface{}{
			"fill-color":   "#2563eb",
			"fill-opacity": 0.15,
		},
	})
	r.surface.AddLayer(LayerSpec{
		ID:     layerBoundaryLine,
		Type:   "line",
		Source: sourceBoundary,
		Paint: map[string]interface{}{
			"line-color": "#2563eb",
			"line-width": 2.0,
		},
	})
	r.surface.AddLayer(LayerSpec{
		ID:     layerCircle,
		Type:   "circle",
		Source: sourceSigns,
		Filter: FilterExpr{"!=", "categoryId", squareCategoryID},
		Paint: map[string]interface{}{
			"circle-color":        FilterExpr{"get", "fill"},
			"circle-stroke-color": FilterExpr{"get", "outline"},
			"circle-stroke-width": FilterExpr{"get", "outlineWidth"},
		},
	})
	r.surface.AddLayer(LayerSpec{
		ID:     layerSquare,
		Type:   "symbol",
		Source: sourceSigns,
		Filter: FilterExpr{"==", "categoryId", squareCategoryID},
		Paint: map[string]interface{}{
			"icon-color": FilterExpr{"get", "fill"},
		},
	})

	for _, layer := range []string{layerCircle, layerSquare} {
		r.surface.On("click", layer, r.handleClick)
	}
}

// OnFeatureClick registers a callback receiving the clicked feature. Clicks
// report attributes only; they never mutate data state.
func (r *Renderer) OnFeatureClick(fn func(feature *geojson.Feature)) {
	r.onClick = fn
}

func (r *Renderer) handleClick(feature *geojson.Feature) {
	if r.onClick != nil {
		r.onClick(feature)
	}
}

// Refresh re-applies the last filter, used after a successful create.
func (r *Renderer) Refresh(ctx context.Context) error {
	return r.ApplyFilter(ctx, r.lastFilter)
}

// ApplyFilter queries signs for the filter and fully replaces the feature
// source. With a province filter active the province boundary is overlaid
// and the camera fits boundary plus points; otherwise the camera fits the
// points alone, and only when at least one matched.
func (r *Renderer) ApplyFilter(ctx context.Context, f Filter) error {
	signs, err := r.feed.Signs(ctx, f)
	if err != nil {
		return fmt.Errorf("sign query failed: %w", err)
	}

	fc := signFeatures(signs)
	r.surface.SetData(sourceSigns, fc)
	r.lastFilter = f

	pointsBound, hasPoints := featureBound(fc)

	if f.ProvID == nil {
		r.surface.SetData(sourceBoundary, geojson.NewFeatureCollection())
		if hasPoints {
			r.surface.FitBounds(pointsBound, fitPadding, maxZoomPointsOnly)
		}
		return nil
	}

	raw, err := r.feed.ProvinceBoundary(ctx, *f.ProvID)
	if err != nil {
		// Points still render without the overlay.
		r.surface.SetData(sourceBoundary, geojson.NewFeatureCollection())
		if hasPoints {
			r.surface.FitBounds(pointsBound, fitPadding, maxZoomPointsOnly)
		}
		return nil
	}

	boundaryFC, err := decodeBoundary(raw)
	if err != nil {
		return fmt.Errorf("malformed province boundary: %w", err)
	}
	r.surface.SetData(sourceBoundary, boundaryFC)

	bound, ok := featureBound(boundaryFC)
	if hasPoints {
		if ok {
			bound = bound.Union(pointsBound)
		} else {
			bound, ok = pointsBound, true
		}
	}
	if ok {
		r.surface.FitBounds(bound, fitPadding, maxZoomProvince)
	}
	return nil
}

// signFeatures projects signs into the shared feature source. Style values
// are precomputed into properties so layers can read them directly.
func signFeatures(signs []Sign) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, s := range signs {
		f := geojson.NewFeature(orb.Point{s.Lon, s.Lat})
		style := StyleForStatus(s.Status)
		f.Properties = geojson.Properties{
			"id":           s.ID,
			"name":         s.Name,
			"categoryId":   s.CategoryID,
			"status":       s.Status,
			"fill":         style.Fill,
			"outline":      style.Outline,
			"outlineWidth": style.OutlineWidth,
		}
		fc.Append(f)
	}
	return fc
}

// decodeBoundary accepts a FeatureCollection, Feature or bare geometry.
func decodeBoundary(raw []byte) (*geojson.FeatureCollection, error) {
	if fc, err := geojson.UnmarshalFeatureCollection(raw); err == nil {
		return fc, nil
	}
	if f, err := geojson.UnmarshalFeature(raw); err == nil {
		fc := geojson.NewFeatureCollection()
		fc.Append(f)
		return fc, nil
	}
	g, err := geojson.UnmarshalGeometry(raw)
	if err != nil {
		return nil, err
	}
	fc := geojson.NewFeatureCollection()
	fc.Append(geojson.NewFeature(g.Geometry()))
	return fc, nil
}

func featureBound(fc *geojson.FeatureCollection) (orb.Bound, bool) {
	if len(fc.Features) == 0 {
		return orb.Bound{}, false
	}
	bound := fc.Features[0].Geometry.Bound()
	for _, f := range fc.Features[1:] {
		bound = bound.Union(f.Geometry.Bound())
	}
	return bound, true
}
