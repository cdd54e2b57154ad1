package mapview

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource serves canned option trees and lets tests block individual
// fetches to exercise supersession.
type fakeSource struct {
	mu           sync.Mutex
	provinces    []Option
	cities       map[int][]Option
	districts    map[int][]Option
	subdistricts map[int][]Option

	cityCalls    []int
	blockCityFor map[int]chan struct{}
	citiesErr    error
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		provinces: []Option{{ID: 11, Label: "DKI Jakarta"}, {ID: 32, Label: "Jawa Barat"}},
		cities: map[int][]Option{
			11: {{ID: 1101, Label: "Jakarta Selatan"}},
			32: {{ID: 3201, Label: "Bandung"}},
		},
		districts: map[int][]Option{
			1101: {{ID: 110101, Label: "Kebayoran Baru"}},
		},
		subdistricts: map[int][]Option{
			110101: {{ID: 11010101, Label: "Senayan"}},
		},
		blockCityFor: map[int]chan struct{}{},
	}
}

func (f *fakeSource) Provinces(ctx context.Context) ([]Option, error) {
	return f.provinces, nil
}

func (f *fakeSource) Cities(ctx context.Context, provID int) ([]Option, error) {
	f.mu.Lock()
	f.cityCalls = append(f.cityCalls, provID)
	block := f.blockCityFor[provID]
	err := f.citiesErr
	f.mu.Unlock()

	if block != nil {
		<-block
	}
	if err != nil {
		return nil, err
	}
	return f.cities[provID], nil
}

func (f *fakeSource) cityCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.cityCalls)
}

func (f *fakeSource) Districts(ctx context.Context, cityID int) ([]Option, error) {
	return f.districts[cityID], nil
}

func (f *fakeSource) SubDistricts(ctx context.Context, districtID int) ([]Option, error) {
	return f.subdistricts[districtID], nil
}

func waitLevel(t *testing.T, p *OptionProvider, l Level) {
	t.Helper()
	select {
	case <-p.WaitLevel(l):
	case <-time.After(2 * time.Second):
		t.Fatalf("level %d never settled", l)
	}
}

func intPtr(v int) *int { return &v }

func TestProvinceLoadsUnconditionally(t *testing.T) {
	p := NewOptionProvider(newFakeSource())
	p.Start(context.Background())
	waitLevel(t, p, LevelProvince)

	options := p.Options(LevelProvince)
	require.Len(t, options, 2)
	assert.Equal(t, "DKI Jakarta", options[0].Label)
	assert.Empty(t, p.Err(LevelProvince))
}

func TestCascadingReset(t *testing.T) {
	ctx := context.Background()
	p := NewOptionProvider(newFakeSource())
	p.Start(ctx)
	waitLevel(t, p, LevelProvince)

	p.SetSelection(ctx, LevelProvince, intPtr(11))
	waitLevel(t, p, LevelCity)
	p.SetSelection(ctx, LevelCity, intPtr(1101))
	waitLevel(t, p, LevelDistrict)
	p.SetSelection(ctx, LevelDistrict, intPtr(110101))
	waitLevel(t, p, LevelSubdistrict)
	p.SetSelection(ctx, LevelSubdistrict, intPtr(11010101))

	sel := p.Selection()
	require.NotNil(t, sel.SubdistrictID)

	// Changing the province must clear every descendant selection and list.
	p.SetSelection(ctx, LevelProvince, intPtr(32))

	sel = p.Selection()
	assert.Nil(t, sel.CityID)
	assert.Nil(t, sel.DistrictID)
	assert.Nil(t, sel.SubdistrictID)
	assert.Empty(t, p.Options(LevelDistrict))
	assert.Empty(t, p.Options(LevelSubdistrict))

	waitLevel(t, p, LevelCity)
	options := p.Options(LevelCity)
	require.Len(t, options, 1)
	assert.Equal(t, "Bandung", options[0].Label)
}

func TestNilParentClearsWithoutFetch(t *testing.T) {
	ctx := context.Background()
	src := newFakeSource()
	p := NewOptionProvider(src)
	p.Start(ctx)
	waitLevel(t, p, LevelProvince)

	p.SetSelection(ctx, LevelProvince, intPtr(11))
	waitLevel(t, p, LevelCity)
	require.NotEmpty(t, p.Options(LevelCity))

	calls := src.cityCallCount()
	p.SetSelection(ctx, LevelProvince, nil)

	assert.Empty(t, p.Options(LevelCity))
	assert.Equal(t, calls, src.cityCallCount(), "nil parent must not trigger a fetch")
	assert.False(t, p.Loading(LevelCity))
}

func TestSupersededFetchNeverCommits(t *testing.T) {
	ctx := context.Background()
	src := newFakeSource()
	block := make(chan struct{})
	src.blockCityFor[11] = block

	p := NewOptionProvider(src)
	p.Start(ctx)
	waitLevel(t, p, LevelProvince)

	// Request A: cities of province 11, held in flight.
	p.SetSelection(ctx, LevelProvince, intPtr(11))
	// Request B supersedes it before A completes.
	p.SetSelection(ctx, LevelProvince, intPtr(32))
	waitLevel(t, p, LevelCity)

	options := p.Options(LevelCity)
	require.Len(t, options, 1)
	assert.Equal(t, "Bandung", options[0].Label)

	// A resolves late; its result must be discarded.
	close(block)
	time.Sleep(50 * time.Millisecond)

	options = p.Options(LevelCity)
	require.Len(t, options, 1)
	assert.Equal(t, "Bandung", options[0].Label)
	assert.Empty(t, p.Err(LevelCity))
}

func TestLevelErrorIsScoped(t *testing.T) {
	ctx := context.Background()
	src := newFakeSource()
	src.citiesErr = errors.New("boom")

	p := NewOptionProvider(src)
	p.Start(ctx)
	waitLevel(t, p, LevelProvince)

	p.SetSelection(ctx, LevelProvince, intPtr(11))
	waitLevel(t, p, LevelCity)

	assert.Empty(t, p.Options(LevelCity))
	assert.Equal(t, "boom", p.Err(LevelCity))
	// Sibling level unaffected.
	assert.NotEmpty(t, p.Options(LevelProvince))
	assert.Empty(t, p.Err(LevelProvince))
}

func TestCancellationIsNotAnError(t *testing.T) {
	ctx := context.Background()
	src := newFakeSource()
	block := make(chan struct{})
	src.blockCityFor[11] = block

	p := NewOptionProvider(src)
	p.Start(ctx)
	waitLevel(t, p, LevelProvince)

	p.SetSelection(ctx, LevelProvince, intPtr(11))
	p.Stop()
	close(block)
	time.Sleep(50 * time.Millisecond)

	assert.Empty(t, p.Err(LevelCity))
	assert.False(t, p.Loading(LevelCity))
}
