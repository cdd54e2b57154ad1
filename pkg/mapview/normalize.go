package mapview

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Option is the canonical region option every level works with. All field
// name tolerance is resolved before an Option exists.
type Option struct {
	ID    int
	Label string
}

// GeocodeResult holds the region names resolved for a coordinate.
type GeocodeResult struct {
	Province string `json:"province"`
	City     string `json:"city"`
	District string `json:"district"`
	Village  string `json:"village"`
}

// Sign is a rendered rambu point. Lon/Lat tolerate the lng spelling.
type Sign struct {
	ID         int     `json:"id"`
	Name       string  `json:"name"`
	Lon        float64 `json:"lon"`
	Lat        float64 `json:"lat"`
	CategoryID int     `json:"categoryId"`
	Status     string  `json:"status"`
}

// UnmarshalJSON accepts lon or lng for the longitude field.
func (s *Sign) UnmarshalJSON(data []byte) error {
	type alias Sign
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*s = Sign(a)
	if s.Lon == 0 {
		var lng struct {
			Lng float64 `json:"lng"`
		}
		if err := json.Unmarshal(data, &lng); err == nil && lng.Lng != 0 {
			s.Lon = lng.Lng
		}
	}
	return nil
}

// Filter composes an optional-constraint sign query. Nil fields impose no
// constraint, so equal filters always produce equal queries.
type Filter struct {
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

func (f Filter) query() url.Values {
	q := url.Values{}
	setInt := func(name string, v *int) {
		if v != nil {
			q.Set(name, strconv.Itoa(*v))
		}
	}
	setInt("provId", f.ProvID)
	setInt("cityId", f.CityID)
	setInt("districtId", f.DistrictID)
	setInt("subdistrictId", f.SubdistrictID)
	setInt("categoryId", f.CategoryID)
	setInt("modelId", f.ModelID)
	setInt("costsourceId", f.CostSourceID)
	setInt("disasterTypeId", f.DisasterTypeID)
	setInt("satkerId", f.SatkerID)
	if f.Status != nil {
		q.Set("status", *f.Status)
	}
	return q
}

// unwrapData tolerates both a bare payload and the {data: ...} envelope.
func unwrapData(body []byte) []byte {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Data) > 0 {
		return envelope.Data
	}
	return body
}

// Candidate key orders for id and label fields. The first present key wins.
var (
	idKeys    = []string{"id", "code", "value"}
	labelKeys = []string{"name", "nama", "label"}
)

// normalizeOptions converts a raw record list into canonical options.
// extraIDKeys are tried after the standard id candidates (provinces may use
// provinceId or kode). Records with no usable id or label are skipped.
func normalizeOptions(body []byte, extraIDKeys ...string) ([]Option, error) {
	var records []map[string]interface{}
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("malformed option list: %w", err)
	}

	keys := append(append([]string{}, idKeys...), extraIDKeys...)
	options := make([]Option, 0, len(records))
	for _, rec := range records {
		id, ok := firstInt(rec, keys)
		if !ok {
			continue
		}
		label, ok := firstString(rec, labelKeys)
		if !ok {
			continue
		}
		options = append(options, Option{ID: id, Label: label})
	}
	return options, nil
}

func firstInt(rec map[string]interface{}, keys []string) (int, bool) {
	for _, k := range keys {
		v, present := rec[k]
		if !present {
			continue
		}
		switch n := v.(type) {
		case float64:
			return int(n), true
		case string:
			if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
				return i, true
			}
		}
	}
	return 0, false
}

func firstString(rec map[string]interface{}, keys []string) (string, bool) {
	for _, k := range keys {
		if v, present := rec[k]; present {
			if s, ok := v.(string); ok && s != "" {
				return s, true
			}
		}
	}
	return "", false
}
