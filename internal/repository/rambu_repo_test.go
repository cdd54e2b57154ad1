package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sigapbencana/rambu_api/internal/models"
)

func TestBuildFilterEmpty(t *testing.T) {
	where, args := buildFilter(nil, 1)
	assert.Equal(t, "WHERE is_trashed = FALSE", where)
	assert.Empty(t, args)

	where, args = buildFilter(&models.RambuFilter{}, 1)
	assert.Equal(t, "WHERE is_trashed = FALSE", where)
	assert.Empty(t, args)
}

func TestBuildFilterCombines(t *testing.T) {
	prov := 11
	cat := 3
	status := "published"
	f := &models.RambuFilter{ProvID: &prov, CategoryID: &cat, Status: &status}

	where, args := buildFilter(f, 1)
	assert.Equal(t, "WHERE is_trashed = FALSE AND prov_id = $1 AND category_id = $2 AND status = $3", where)
	assert.Equal(t, []interface{}{11, 3, "published"}, args)
}

func TestBuildFilterDeterministic(t *testing.T) {
	city := 1101
	f := &models.RambuFilter{CityID: &city}

	w1, a1 := buildFilter(f, 1)
	w2, a2 := buildFilter(f, 1)
	assert.Equal(t, w1, w2)
	assert.Equal(t, a1, a2)
}

func TestBuildFilterStartArg(t *testing.T) {
	prov := 11
	where, args := buildFilter(&models.RambuFilter{ProvID: &prov}, 3)
	assert.Equal(t, "WHERE is_trashed = FALSE AND prov_id = $3", where)
	assert.Len(t, args, 1)
}
