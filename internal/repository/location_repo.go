package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/sigapbencana/rambu_api/internal/models"
)

// LocationRepository handles database operations for the administrative
// region hierarchy (province -> city -> district -> subdistrict).
type LocationRepository struct {
	db *sqlx.DB
}

// NewLocationRepository creates a new LocationRepository.
func NewLocationRepository(db *sqlx.DB) *LocationRepository {
	return &LocationRepository{db: db}
}

// GetProvinces returns all provinces ordered by name.
func (r *LocationRepository) GetProvinces(ctx context.Context) ([]models.Province, error) {
	query := `SELECT id, name FROM provinces ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var provinces []models.Province
	for rows.Next() {
		var p models.Province
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, err
		}
		provinces = append(provinces, p)
	}
	return provinces, rows.Err()
}

// GetProvincesWithBoundary returns all provinces that have a stored boundary.
func (r *LocationRepository) GetProvincesWithBoundary(ctx context.Context) ([]models.Province, error) {
	query := `SELECT id, name, boundary FROM provinces WHERE boundary IS NOT NULL ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var provinces []models.Province
	for rows.Next() {
		var p models.Province
		if err := rows.Scan(&p.ID, &p.Name, &p.Boundary); err != nil {
			return nil, err
		}
		provinces = append(provinces, p)
	}
	return provinces, rows.Err()
}

// GetProvinceBoundary returns the stored GeoJSON boundary for one province.
func (r *LocationRepository) GetProvinceBoundary(ctx context.Context, provID int) (string, error) {
	var boundary sql.NullString
	err := r.db.QueryRowContext(ctx, `SELECT boundary FROM provinces WHERE id = $1`, provID).Scan(&boundary)
	if err != nil {
		return "", err
	}
	if !boundary.Valid {
		return "", sql.ErrNoRows
	}
	return boundary.String, nil
}

// GetCitiesByProvince returns all cities for a given province id.
func (r *LocationRepository) GetCitiesByProvince(ctx context.Context, provID int) ([]models.City, error) {
	query := `SELECT id, prov_id, name, lat, lon FROM cities WHERE prov_id = $1 ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, provID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cities []models.City
	for rows.Next() {
		var c models.City
		if err := rows.Scan(&c.ID, &c.ProvID, &c.Name, &c.Lat, &c.Lon); err != nil {
			return nil, err
		}
		cities = append(cities, c)
	}
	return cities, rows.Err()
}

// GetDistrictsByCity returns all districts for a given city id.
func (r *LocationRepository) GetDistrictsByCity(ctx context.Context, cityID int) ([]models.District, error) {
	query := `SELECT id, city_id, name, lat, lon FROM districts WHERE city_id = $1 ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, cityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var districts []models.District
	for rows.Next() {
		var d models.District
		if err := rows.Scan(&d.ID, &d.CityID, &d.Name, &d.Lat, &d.Lon); err != nil {
			return nil, err
		}
		districts = append(districts, d)
	}
	return districts, rows.Err()
}

// GetSubDistrictsByDistrict returns all sub-districts for a given district id.
func (r *LocationRepository) GetSubDistrictsByDistrict(ctx context.Context, districtID int) ([]models.SubDistrict, error) {
	query := `SELECT id, district_id, name, lat, lon FROM subdistricts WHERE district_id = $1 ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, districtID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subDistricts []models.SubDistrict
	for rows.Next() {
		var s models.SubDistrict
		if err := rows.Scan(&s.ID, &s.DistrictID, &s.Name, &s.Lat, &s.Lon); err != nil {
			return nil, err
		}
		subDistricts = append(subDistricts, s)
	}
	return subDistricts, rows.Err()
}
