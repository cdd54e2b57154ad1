package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/sigapbencana/rambu_api/internal/models"
)

// RambuRepository handles database operations for rambu points and their
// photo attachments.
type RambuRepository struct {
	db *sqlx.DB
}

// NewRambuRepository creates a new RambuRepository.
func NewRambuRepository(db *sqlx.DB) *RambuRepository {
	return &RambuRepository{db: db}
}

const rambuColumns = `id, name, description, lon, lat, category_id, model_id, costsource_id,
	disaster_type_id, satker_id, prov_id, city_id, district_id, subdistrict_id,
	status, year, is_simulation, is_trashed, created_at, updated_at`

// buildFilter translates a RambuFilter into a WHERE clause. Omitted fields
// impose no constraint, so the same filter always yields the same clause.
func buildFilter(f *models.RambuFilter, startArg int) (string, []interface{}) {
	clauses := []string{"is_trashed = FALSE"}
	var args []interface{}
	n := startArg

	add := func(column string, v interface{}) {
		clauses = append(clauses, fmt.Sprintf("%s = $%d", column, n))
		args = append(args, v)
		n++
	}

	if f != nil {
		if f.ProvID != nil {
			add("prov_id", *f.ProvID)
		}
		if f.CityID != nil {
			add("city_id", *f.CityID)
		}
		if f.DistrictID != nil {
			add("district_id", *f.DistrictID)
		}
		if f.SubdistrictID != nil {
			add("subdistrict_id", *f.SubdistrictID)
		}
		if f.CategoryID != nil {
			add("category_id", *f.CategoryID)
		}
		if f.ModelID != nil {
			add("model_id", *f.ModelID)
		}
		if f.CostSourceID != nil {
			add("costsource_id", *f.CostSourceID)
		}
		if f.DisasterTypeID != nil {
			add("disaster_type_id", *f.DisasterTypeID)
		}
		if f.SatkerID != nil {
			add("satker_id", *f.SatkerID)
		}
		if f.Status != nil {
			add("status", *f.Status)
		}
	}

	return "WHERE " + strings.Join(clauses, " AND "), args
}

// List returns all rambu matching the filter, ordered by id.
func (r *RambuRepository) List(ctx context.Context, f *models.RambuFilter) ([]models.Rambu, error) {
	where, args := buildFilter(f, 1)
	query := fmt.Sprintf(`SELECT %s FROM rambu %s ORDER BY id`, rambuColumns, where)

	var result []models.Rambu
	if err := r.db.SelectContext(ctx, &result, query, args...); err != nil {
		return nil, err
	}
	return result, nil
}

// ListPage returns one page of rambu plus the total count for the filter.
func (r *RambuRepository) ListPage(ctx context.Context, f *models.RambuFilter, page, pageSize int) ([]models.Rambu, int, error) {
	where, args := buildFilter(f, 1)

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM rambu %s`, where)
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	query := fmt.Sprintf(`SELECT %s FROM rambu %s ORDER BY id DESC LIMIT $%d OFFSET $%d`,
		rambuColumns, where, len(args)+1, len(args)+2)
	args = append(args, pageSize, offset)

	var result []models.Rambu
	if err := r.db.SelectContext(ctx, &result, query, args...); err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

// GetByID returns one rambu with its photos.
func (r *RambuRepository) GetByID(ctx context.Context, id int) (*models.Rambu, error) {
	query := fmt.Sprintf(`SELECT %s FROM rambu WHERE id = $1`, rambuColumns)

	var rambu models.Rambu
	if err := r.db.GetContext(ctx, &rambu, query, id); err != nil {
		return nil, err
	}

	photos, err := r.GetPhotos(ctx, id)
	if err != nil {
		return nil, err
	}
	rambu.Photos = photos
	return &rambu, nil
}

// Create inserts a new rambu and returns its assigned id.
func (r *RambuRepository) Create(ctx context.Context, rambu *models.Rambu) error {
	query := `
		INSERT INTO rambu (name, description, lon, lat, category_id, model_id, costsource_id,
			disaster_type_id, satker_id, prov_id, city_id, district_id, subdistrict_id,
			status, year, is_simulation)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id, created_at, updated_at`
	return r.db.QueryRowContext(ctx, query,
		rambu.Name, rambu.Description, rambu.Lon, rambu.Lat,
		rambu.CategoryID, rambu.ModelID, rambu.CostSourceID, rambu.DisasterTypeID,
		rambu.SatkerID, rambu.ProvID, rambu.CityID, rambu.DistrictID, rambu.SubdistrictID,
		rambu.Status, rambu.Year, rambu.IsSimulation,
	).Scan(&rambu.ID, &rambu.CreatedAt, &rambu.UpdatedAt)
}

// Update overwrites the mutable fields of an existing rambu.
func (r *RambuRepository) Update(ctx context.Context, rambu *models.Rambu) error {
	query := `
		UPDATE rambu SET name = $1, description = $2, lon = $3, lat = $4,
			category_id = $5, model_id = $6, costsource_id = $7, disaster_type_id = $8,
			satker_id = $9, prov_id = $10, city_id = $11, district_id = $12,
			subdistrict_id = $13, status = $14, year = $15, updated_at = NOW()
		WHERE id = $16`
	res, err := r.db.ExecContext(ctx, query,
		rambu.Name, rambu.Description, rambu.Lon, rambu.Lat,
		rambu.CategoryID, rambu.ModelID, rambu.CostSourceID, rambu.DisasterTypeID,
		rambu.SatkerID, rambu.ProvID, rambu.CityID, rambu.DistrictID, rambu.SubdistrictID,
		rambu.Status, rambu.Year, rambu.ID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// UpdateStatus sets only the status of a rambu.
func (r *RambuRepository) UpdateStatus(ctx context.Context, id int, status string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE rambu SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// Trash soft-deletes a rambu so it disappears from listings but stays recoverable.
func (r *RambuRepository) Trash(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE rambu SET is_trashed = TRUE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// Delete permanently removes a rambu and its photo rows.
func (r *RambuRepository) Delete(ctx context.Context, id int) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM rambu_photos WHERE rambu_id = $1`, id); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM rambu WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// AddPhoto records a stored attachment for a rambu.
func (r *RambuRepository) AddPhoto(ctx context.Context, photo *models.RambuPhoto) error {
	query := `INSERT INTO rambu_photos (rambu_id, kind, path) VALUES ($1, $2, $3) RETURNING id`
	return r.db.QueryRowContext(ctx, query, photo.RambuID, photo.Kind, photo.Path).Scan(&photo.ID)
}

// GetPhotos returns the attachments of a rambu, GPS photo first.
func (r *RambuRepository) GetPhotos(ctx context.Context, rambuID int) ([]models.RambuPhoto, error) {
	query := `SELECT id, rambu_id, kind, path FROM rambu_photos WHERE rambu_id = $1 ORDER BY kind DESC, id`

	rows, err := r.db.QueryContext(ctx, query, rambuID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var photos []models.RambuPhoto
	for rows.Next() {
		var p models.RambuPhoto
		if err := rows.Scan(&p.ID, &p.RambuID, &p.Kind, &p.Path); err != nil {
			return nil, err
		}
		photos = append(photos, p)
	}
	return photos, rows.Err()
}

// StatusCounts returns the number of non-trashed rambu per status.
func (r *RambuRepository) StatusCounts(ctx context.Context) (map[string]int, error) {
	return r.countsBy(ctx, `SELECT status, COUNT(*) FROM rambu WHERE is_trashed = FALSE GROUP BY status`)
}

// CategoryCounts returns the number of non-trashed rambu per category name.
func (r *RambuRepository) CategoryCounts(ctx context.Context) (map[string]int, error) {
	return r.countsBy(ctx, `
		SELECT COALESCE(c.name, 'Tanpa Kategori'), COUNT(*)
		FROM rambu r LEFT JOIN categories c ON c.id = r.category_id
		WHERE r.is_trashed = FALSE GROUP BY c.name`)
}

// ProvinceCounts returns the number of non-trashed rambu per province name.
func (r *RambuRepository) ProvinceCounts(ctx context.Context) (map[string]int, error) {
	return r.countsBy(ctx, `
		SELECT COALESCE(p.name, 'Tanpa Provinsi'), COUNT(*)
		FROM rambu r LEFT JOIN provinces p ON p.id = r.prov_id
		WHERE r.is_trashed = FALSE GROUP BY p.name`)
}

func (r *RambuRepository) countsBy(ctx context.Context, query string) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return nil, err
		}
		counts[key] = n
	}
	return counts, rows.Err()
}

func requireRow(res interface{ RowsAffected() (int64, error) }) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errNoRowsAffected
	}
	return nil
}

var errNoRowsAffected = fmt.Errorf("no rows affected")

// IsNotFound reports whether an update/delete touched no rows.
func IsNotFound(err error) bool {
	return err == errNoRowsAffected
}
