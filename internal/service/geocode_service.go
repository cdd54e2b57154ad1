package service

import (
	"context"
	"math"
	"sync"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
	"github.com/rs/zerolog/log"

	"github.com/sigapbencana/rambu_api/internal/cache"
	"github.com/sigapbencana/rambu_api/internal/models"
	"github.com/sigapbencana/rambu_api/internal/utils"
)

// regionSource is the slice of the location repository the geocoder needs.
type regionSource interface {
	GetProvincesWithBoundary(ctx context.Context) ([]models.Province, error)
	GetCitiesByProvince(ctx context.Context, provID int) ([]models.City, error)
	GetDistrictsByCity(ctx context.Context, cityID int) ([]models.District, error)
	GetSubDistrictsByDistrict(ctx context.Context, districtID int) ([]models.SubDistrict, error)
}

type provinceBoundary struct {
	id    int
	name  string
	geoms []orb.Geometry
	bound orb.Bound
}

// GeocodeService resolves a coordinate to the administrative regions that
// contain it. Province boundaries are held in memory and refreshed by a
// background worker; the city/district/subdistrict levels are resolved by
// nearest centroid within the winning province.
type GeocodeService struct {
	regions regionSource
	cache   *cache.GeocodeCache

	mu         sync.RWMutex
	boundaries []provinceBoundary
}

// NewGeocodeService constructs a GeocodeService. The cache may be nil.
func NewGeocodeService(regions regionSource, geoCache *cache.GeocodeCache) *GeocodeService {
	return &GeocodeService{regions: regions, cache: geoCache}
}

// RefreshBoundaries reloads and re-parses all province boundaries. Provinces
// whose boundary fails to parse are skipped with a warning rather than
// poisoning the whole set.
func (s *GeocodeService) RefreshBoundaries(ctx context.Context) error {
	provinces, err := s.regions.GetProvincesWithBoundary(ctx)
	if err != nil {
		return err
	}

	boundaries := make([]provinceBoundary, 0, len(provinces))
	for _, p := range provinces {
		if !p.Boundary.Valid {
			continue
		}
		geoms, err := parseBoundary([]byte(p.Boundary.String))
		if err != nil {
			log.Warn().Err(err).Int("prov_id", p.ID).Str("name", p.Name).Msg("Skipping unparseable province boundary")
			continue
		}
		b := provinceBoundary{id: p.ID, name: p.Name, geoms: geoms}
		b.bound = geoms[0].Bound()
		for _, g := range geoms[1:] {
			b.bound = b.bound.Union(g.Bound())
		}
		boundaries = append(boundaries, b)
	}

	s.mu.Lock()
	s.boundaries = boundaries
	s.mu.Unlock()

	log.Info().Int("provinces", len(boundaries)).Msg("Province boundaries loaded")
	return nil
}

// BoundaryCount returns how many provinces currently have a usable boundary.
func (s *GeocodeService) BoundaryCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.boundaries)
}

// Resolve maps a latitude/longitude to province, city, district and village
// names. Results are cached by rounded coordinate.
func (s *GeocodeService) Resolve(ctx context.Context, lat, lon float64) (*models.GeocodeResult, error) {
	if !validCoordinate(lat, lon) {
		return nil, utils.ErrInvalidCoordinate
	}

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, lat, lon)
		if err != nil {
			log.Warn().Err(err).Msg("Geocode cache read failed")
		} else if cached != nil {
			return cached, nil
		}
	}

	point := orb.Point{lon, lat}
	provID, provName, ok := s.findProvince(point)
	if !ok {
		return nil, utils.ErrRegionNotFound
	}

	result := &models.GeocodeResult{Province: provName}
	if err := s.fillNearest(ctx, provID, point, result); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, lat, lon, result); err != nil {
			log.Warn().Err(err).Msg("Geocode cache write failed")
		}
	}
	return result, nil
}

// findProvince runs the point through the bounding-box prefilter, then the
// exact even-odd containment test. First hit wins.
func (s *GeocodeService) findProvince(point orb.Point) (int, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, b := range s.boundaries {
		if !b.bound.Contains(point) {
			continue
		}
		for _, g := range b.geoms {
			if geometryContains(g, point) {
				return b.id, b.name, true
			}
		}
	}
	return 0, "", false
}

func (s *GeocodeService) fillNearest(ctx context.Context, provID int, point orb.Point, result *models.GeocodeResult) error {
	cities, err := s.regions.GetCitiesByProvince(ctx, provID)
	if err != nil {
		return err
	}
	cityIdx := nearestIndex(point, len(cities), func(i int) (float64, float64) {
		return cities[i].Lat, cities[i].Lon
	})
	if cityIdx < 0 {
		return nil
	}
	result.City = cities[cityIdx].Name

	districts, err := s.regions.GetDistrictsByCity(ctx, cities[cityIdx].ID)
	if err != nil {
		return err
	}
	districtIdx := nearestIndex(point, len(districts), func(i int) (float64, float64) {
		return districts[i].Lat, districts[i].Lon
	})
	if districtIdx < 0 {
		return nil
	}
	result.District = districts[districtIdx].Name

	subs, err := s.regions.GetSubDistrictsByDistrict(ctx, districts[districtIdx].ID)
	if err != nil {
		return err
	}
	subIdx := nearestIndex(point, len(subs), func(i int) (float64, float64) {
		return subs[i].Lat, subs[i].Lon
	})
	if subIdx < 0 {
		return nil
	}
	result.Village = subs[subIdx].Name
	return nil
}

// parseBoundary accepts a GeoJSON FeatureCollection, Feature, or bare
// geometry and extracts the polygonal geometries.
func parseBoundary(data []byte) ([]orb.Geometry, error) {
	if fc, err := geojson.UnmarshalFeatureCollection(data); err == nil {
		var geoms []orb.Geometry
		for _, f := range fc.Features {
			if g := polygonal(f.Geometry); g != nil {
				geoms = append(geoms, g)
			}
		}
		if len(geoms) == 0 {
			return nil, errNoPolygon
		}
		return geoms, nil
	}
	if f, err := geojson.UnmarshalFeature(data); err == nil {
		if g := polygonal(f.Geometry); g != nil {
			return []orb.Geometry{g}, nil
		}
		return nil, errNoPolygon
	}
	g, err := geojson.UnmarshalGeometry(data)
	if err != nil {
		return nil, err
	}
	if pg := polygonal(g.Geometry()); pg != nil {
		return []orb.Geometry{pg}, nil
	}
	return nil, errNoPolygon
}

var errNoPolygon = utils.ErrRegionBoundaryInvalid

func polygonal(g orb.Geometry) orb.Geometry {
	switch g.(type) {
	case orb.Polygon, orb.MultiPolygon:
		return g
	}
	return nil
}

func geometryContains(g orb.Geometry, point orb.Point) bool {
	switch geom := g.(type) {
	case orb.Polygon:
		return planar.PolygonContains(geom, point)
	case orb.MultiPolygon:
		return planar.MultiPolygonContains(geom, point)
	}
	return false
}

// nearestIndex returns the index with the smallest equirectangular distance
// to the point, or -1 when the slice is empty.
func nearestIndex(point orb.Point, n int, latLon func(i int) (float64, float64)) int {
	best := -1
	bestDist := math.MaxFloat64
	cosLat := math.Cos(point[1] * math.Pi / 180)
	for i := 0; i < n; i++ {
		lat, lon := latLon(i)
		dx := (lon - point[0]) * cosLat
		dy := lat - point[1]
		d := dx*dx + dy*dy
		if d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

func validCoordinate(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsInf(lat, 0) || math.IsNaN(lon) || math.IsInf(lon, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
