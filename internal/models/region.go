package models

import "database/sql"

// Province represents a province in Indonesia. Boundary holds the raw GeoJSON
// geometry used for the map overlay and reverse geocoding.
type Province struct {
	ID       int            `json:"id" db:"id"`
	Name     string         `json:"name" db:"name"`
	Boundary sql.NullString `json:"-" db:"boundary"`
}

// City represents a city/regency (kota/kabupaten).
type City struct {
	ID     int     `json:"id" db:"id"`
	ProvID int     `json:"provId" db:"prov_id"`
	Name   string  `json:"name" db:"name"`
	Lat    float64 `json:"lat" db:"lat"`
	Lon    float64 `json:"lon" db:"lon"`
}

// District represents a district (kecamatan).
type District struct {
	ID     int     `json:"id" db:"id"`
	CityID int     `json:"cityId" db:"city_id"`
	Name   string  `json:"name" db:"name"`
	Lat    float64 `json:"lat" db:"lat"`
	Lon    float64 `json:"lon" db:"lon"`
}

// SubDistrict represents a sub-district (kelurahan/desa).
type SubDistrict struct {
	ID         int     `json:"id" db:"id"`
	DistrictID int     `json:"districtId" db:"district_id"`
	Name       string  `json:"name" db:"name"`
	Lat        float64 `json:"lat" db:"lat"`
	Lon        float64 `json:"lon" db:"lon"`
}

// GeocodeResult holds the administrative region names resolved for a
// coordinate. Field names mirror the /ref/geografis response contract.
type GeocodeResult struct {
	Province string `json:"province"`
	City     string `json:"city"`
	District string `json:"district"`
	Village  string `json:"village"`
}
