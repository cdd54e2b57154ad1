package mapview

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeOptionsFieldTolerance(t *testing.T) {
	body := []byte(`[
		{"id": 1, "name": "Jawa Barat"},
		{"code": "2", "nama": "Jawa Tengah"},
		{"value": 3, "label": "Jawa Timur"}
	]`)

	options, err := normalizeOptions(body)
	require.NoError(t, err)
	require.Len(t, options, 3)
	assert.Equal(t, Option{ID: 1, Label: "Jawa Barat"}, options[0])
	assert.Equal(t, Option{ID: 2, Label: "Jawa Tengah"}, options[1])
	assert.Equal(t, Option{ID: 3, Label: "Jawa Timur"}, options[2])
}

func TestNormalizeOptionsExtraIDKeys(t *testing.T) {
	body := []byte(`[
		{"provinceId": 11, "name": "Aceh"},
		{"kode": 12, "name": "Sumatera Utara"}
	]`)

	options, err := normalizeOptions(body, "provinceId", "kode")
	require.NoError(t, err)
	require.Len(t, options, 2)
	assert.Equal(t, 11, options[0].ID)
	assert.Equal(t, 12, options[1].ID)
}

func TestNormalizeOptionsSkipsUnusableRecords(t *testing.T) {
	body := []byte(`[
		{"name": "no id"},
		{"id": 7},
		{"id": 8, "name": "Bali"}
	]`)

	options, err := normalizeOptions(body)
	require.NoError(t, err)
	require.Len(t, options, 1)
	assert.Equal(t, Option{ID: 8, Label: "Bali"}, options[0])
}

func TestNormalizeOptionsMalformed(t *testing.T) {
	_, err := normalizeOptions([]byte(`{"not": "a list"}`))
	assert.Error(t, err)
}

func TestUnwrapData(t *testing.T) {
	bare := []byte(`[{"id":1,"name":"A"}]`)
	assert.Equal(t, bare, unwrapData(bare))

	wrapped := []byte(`{"success":true,"data":[{"id":1,"name":"A"}]}`)
	assert.JSONEq(t, string(bare), string(unwrapData(wrapped)))
}

func TestSignTolerantLongitude(t *testing.T) {
	var a Sign
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"lon":106.8,"lat":-6.2,"categoryId":3,"status":"published"}`), &a))
	assert.Equal(t, 106.8, a.Lon)

	var b Sign
	require.NoError(t, json.Unmarshal([]byte(`{"id":2,"lng":107.6,"lat":-6.9}`), &b))
	assert.Equal(t, 107.6, b.Lon)
}

func TestFilterQueryDeterministic(t *testing.T) {
	cat := 3
	prov := 11
	f := Filter{CategoryID: &cat, ProvID: &prov}

	q1 := f.query().Encode()
	q2 := f.query().Encode()
	assert.Equal(t, q1, q2)
	assert.Contains(t, q1, "categoryId=3")
	assert.Contains(t, q1, "provId=11")

	empty := Filter{}
	assert.Empty(t, empty.query().Encode())
}
