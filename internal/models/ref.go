package models

// RefItem is a flat reference record for select boxes: categories, models,
// cost sources, disaster types and work units (satuan kerja).
type RefItem struct {
	ID   int    `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// Reference kinds map to their tables. Kept as constants so handlers cannot
// interpolate arbitrary table names.
const (
	RefCategories    = "categories"
	RefModels        = "rambu_models"
	RefCostSources   = "cost_sources"
	RefDisasterTypes = "disaster_types"
	RefSatuanKerja   = "satuan_kerja"
)
