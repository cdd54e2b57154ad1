package models

import "time"

// Rambu status values. Unknown values are tolerated on read and rejected on write.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusRusak     = "rusak"
	StatusHilang    = "hilang"
)

// ValidStatus reports whether s is one of the known status values.
func ValidStatus(s string) bool {
	switch s {
	case StatusDraft, StatusPublished, StatusRusak, StatusHilang:
		return true
	}
	return false
}

// Rambu represents a physical disaster-warning sign placed at a coordinate.
type Rambu struct {
	ID             int     `json:"id" db:"id"`
	Name           string  `json:"name" db:"name"`
	Description    string  `json:"description" db:"description"`
	Lon            float64 `json:"lon" db:"lon"`
	Lat            float64 `json:"lat" db:"lat"`
	CategoryID     *int    `json:"categoryId" db:"category_id"`
	ModelID        *int    `json:"modelId" db:"model_id"`
	CostSourceID   *int    `json:"costsourceId" db:"costsource_id"`
	DisasterTypeID *int    `json:"disasterTypeId" db:"disaster_type_id"`
	SatkerID       *int    `json:"satkerId" db:"satker_id"`
	ProvID         *int    `json:"provId" db:"prov_id"`
	CityID         *int    `json:"cityId" db:"city_id"`
	DistrictID     *int    `json:"districtId" db:"district_id"`
	SubdistrictID  *int    `json:"subdistrictId" db:"subdistrict_id"`
	Status         string  `json:"status" db:"status"`
	Year           *int    `json:"year" db:"year"`
	IsSimulation   bool    `json:"isSimulation" db:"is_simulation"`
	IsTrashed      bool    `json:"-" db:"is_trashed"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	Photos []RambuPhoto `json:"photos,omitempty" db:"-"`
}

// RambuPhoto is an attachment stored on disk and referenced by relative path.
type RambuPhoto struct {
	ID      int    `json:"id" db:"id"`
	RambuID int    `json:"rambuId" db:"rambu_id"`
	Kind    string `json:"kind" db:"kind"` // "gps" or "additional"
	Path    string `json:"path" db:"path"`
}

// RambuFilter composes an optional-constraint query over the collection.
// Nil fields impose no constraint.
type RambuFilter struct {
	ProvID         *int
	CityID         *int
	DistrictID     *int
	SubdistrictID  *int
	CategoryID     *int
	ModelID        *int
	CostSourceID   *int
	DisasterTypeID *int
	SatkerID       *int
	Status         *string
}
