package mapview

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchLabelCaseInsensitive(t *testing.T) {
	options := []Option{{ID: 12, Label: "Jawa Barat"}}

	id, ok := MatchLabel(options, "jawa barat")
	require.True(t, ok)
	assert.Equal(t, 12, id)

	_, ok = MatchLabel(options, "Jawa Tengah")
	assert.False(t, ok)
}

func TestMatchLabelFirstMatchWins(t *testing.T) {
	options := []Option{
		{ID: 1, Label: "Sukamaju"},
		{ID: 2, Label: "Sukamaju"},
	}

	id, ok := MatchLabel(options, "SUKAMAJU")
	require.True(t, ok)
	assert.Equal(t, 1, id)
}

func matcherFixture(t *testing.T, policy MatchPolicy) (*Matcher, *OptionProvider) {
	t.Helper()
	p := NewOptionProvider(newFakeSource())
	p.Start(context.Background())
	waitLevel(t, p, LevelProvince)
	return NewMatcher(p, policy), p
}

func TestMatcherFullChain(t *testing.T) {
	m, p := matcherFixture(t, ContinueOnMismatch)
	result := &GeocodeResult{
		Province: "DKI Jakarta",
		City:     "Jakarta Selatan",
		District: "Kebayoran Baru",
		Village:  "Senayan",
	}

	state, err := m.Apply(context.Background(), result)
	require.NoError(t, err)

	require.NotNil(t, state.ProvID)
	require.NotNil(t, state.CityID)
	require.NotNil(t, state.DistrictID)
	require.NotNil(t, state.SubdistrictID)
	assert.Equal(t, 11, *state.ProvID)
	assert.Equal(t, 1101, *state.CityID)
	assert.Equal(t, 110101, *state.DistrictID)
	assert.Equal(t, 11010101, *state.SubdistrictID)
	assert.Equal(t, MatchDiagnostics{}, state.Mismatch)

	sel := p.Selection()
	require.NotNil(t, sel.SubdistrictID)
	assert.Equal(t, 11010101, *sel.SubdistrictID)
}

func TestMatcherHaltsOnMismatch(t *testing.T) {
	m, _ := matcherFixture(t, HaltOnMismatch)
	result := &GeocodeResult{
		Province: "DKI Jakarta",
		City:     "Jakarta Selatan",
		District: "Nonexistent District",
		Village:  "Senayan",
	}

	state, err := m.Apply(context.Background(), result)
	require.NoError(t, err)

	assert.NotNil(t, state.CityID)
	assert.Nil(t, state.DistrictID)
	assert.Contains(t, state.Mismatch.Dist, "Nonexistent District")
	// The chain halted, so the subdistrict was never attempted.
	assert.Nil(t, state.SubdistrictID)
	assert.Empty(t, state.Mismatch.Subdist)
}

func TestMatcherContinuesOnMismatch(t *testing.T) {
	m, _ := matcherFixture(t, ContinueOnMismatch)
	result := &GeocodeResult{
		Province: "Unknown Region",
		City:     "Jakarta Selatan",
	}

	state, err := m.Apply(context.Background(), result)
	require.NoError(t, err)

	assert.Nil(t, state.ProvID)
	assert.Contains(t, state.Mismatch.Prov, "Unknown Region")
	// City is attempted independently; with no province selected its list is
	// empty, so the value is recorded as unmatched rather than skipped.
	assert.Nil(t, state.CityID)
	assert.Contains(t, state.Mismatch.City, "Jakarta Selatan")
}

func TestMatcherIdempotent(t *testing.T) {
	m, _ := matcherFixture(t, ContinueOnMismatch)
	result := &GeocodeResult{
		Province: "DKI Jakarta",
		City:     "Jakarta Selatan",
		District: "Kebayoran Baru",
		Village:  "Senayan",
	}

	first, err := m.Apply(context.Background(), result)
	require.NoError(t, err)
	second, err := m.Apply(context.Background(), result)
	require.NoError(t, err)

	assert.Equal(t, *first.ProvID, *second.ProvID)
	assert.Equal(t, *first.CityID, *second.CityID)
	assert.Equal(t, *first.DistrictID, *second.DistrictID)
	assert.Equal(t, *first.SubdistrictID, *second.SubdistrictID)
	assert.Equal(t, first.Mismatch, second.Mismatch)
}

func TestMatcherEmptyValueNoDiagnostic(t *testing.T) {
	m, _ := matcherFixture(t, ContinueOnMismatch)
	result := &GeocodeResult{Province: "DKI Jakarta"}

	state, err := m.Apply(context.Background(), result)
	require.NoError(t, err)

	assert.NotNil(t, state.ProvID)
	assert.Empty(t, state.Mismatch.City)
	assert.Nil(t, state.CityID)
}
