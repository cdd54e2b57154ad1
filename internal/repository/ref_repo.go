package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/sigapbencana/rambu_api/internal/models"
)

// RefRepository handles the flat reference tables used for select boxes.
type RefRepository struct {
	db *sqlx.DB
}

// NewRefRepository creates a new RefRepository.
func NewRefRepository(db *sqlx.DB) *RefRepository {
	return &RefRepository{db: db}
}

var refTables = map[string]bool{
	models.RefCategories:    true,
	models.RefModels:        true,
	models.RefCostSources:   true,
	models.RefDisasterTypes: true,
	models.RefSatuanKerja:   true,
}

// List returns all records of one reference kind ordered by name.
func (r *RefRepository) List(ctx context.Context, kind string) ([]models.RefItem, error) {
	if !refTables[kind] {
		return nil, fmt.Errorf("unknown reference kind %q", kind)
	}

	query := fmt.Sprintf(`SELECT id, name FROM %s ORDER BY name`, kind)
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.RefItem
	for rows.Next() {
		var item models.RefItem
		if err := rows.Scan(&item.ID, &item.Name); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
