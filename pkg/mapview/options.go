package mapview

import (
	"context"
	"errors"
	"sync"
)

// Level indexes the four region levels.
type Level int

const (
	LevelProvince Level = iota
	LevelCity
	LevelDistrict
	LevelSubdistrict

	numLevels = 4
)

// Selection is the current region selection. Nil means unselected.
type Selection struct {
	ProvID        *int
	CityID        *int
	DistrictID    *int
	SubdistrictID *int
}

func (s *Selection) get(l Level) *int {
	switch l {
	case LevelProvince:
		return s.ProvID
	case LevelCity:
		return s.CityID
	case LevelDistrict:
		return s.DistrictID
	default:
		return s.SubdistrictID
	}
}

func (s *Selection) set(l Level, id *int) {
	switch l {
	case LevelProvince:
		s.ProvID = id
	case LevelCity:
		s.CityID = id
	case LevelDistrict:
		s.DistrictID = id
	default:
		s.SubdistrictID = id
	}
}

// OptionSource loads the option list of each level.
type OptionSource interface {
	Provinces(ctx context.Context) ([]Option, error)
	Cities(ctx context.Context, provID int) ([]Option, error)
	Districts(ctx context.Context, cityID int) ([]Option, error)
	SubDistricts(ctx context.Context, districtID int) ([]Option, error)
}

// OptionProvider exposes four independently loading region option lists.
// Selection changes go through SetSelection only, which clears descendant
// state atomically before any new fetch starts. Each level keeps its own
// cancel function and generation counter so a superseded fetch can never
// commit its result.
type OptionProvider struct {
	source OptionSource

	mu      sync.Mutex
	sel     Selection
	options [numLevels][]Option
	errs    [numLevels]string
	loading [numLevels]bool
	cancels [numLevels]context.CancelFunc
	gens    [numLevels]int
	waiters [numLevels][]chan struct{}

	onChange func()
}

// NewOptionProvider constructs an OptionProvider over the given source.
func NewOptionProvider(source OptionSource) *OptionProvider {
	return &OptionProvider{source: source}
}

// OnChange registers a callback invoked after any option list or error
// changes. The callback runs outside the provider lock.
func (p *OptionProvider) OnChange(fn func()) {
	p.mu.Lock()
	p.onChange = fn
	p.mu.Unlock()
}

// Start loads the province list. Provinces have no parent and load
// unconditionally.
func (p *OptionProvider) Start(ctx context.Context) {
	p.fetch(ctx, LevelProvince, 0)
}

// SetSelection selects an id at one level. Passing nil deselects. All
// descendant selections, option lists and errors are cleared before the
// child fetch (if any) is issued.
func (p *OptionProvider) SetSelection(ctx context.Context, level Level, id *int) {
	p.mu.Lock()
	p.sel.set(level, id)
	for l := level + 1; l < numLevels; l++ {
		p.clearLevelLocked(l)
	}
	p.mu.Unlock()

	p.notify()

	// A nil parent means the child shows an empty list with no fetch.
	if id == nil || level == LevelSubdistrict {
		return
	}
	p.fetch(ctx, level+1, *id)
}

// Options returns a copy of one level's option list.
func (p *OptionProvider) Options(level Level) []Option {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Option, len(p.options[level]))
	copy(out, p.options[level])
	return out
}

// Err returns the recorded error message for one level, empty if none.
func (p *OptionProvider) Err(level Level) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.errs[level]
}

// Loading reports whether a fetch is in flight for one level.
func (p *OptionProvider) Loading(level Level) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loading[level]
}

// Selection returns the current selection.
func (p *OptionProvider) Selection() Selection {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sel
}

// WaitLevel returns a channel closed when the level's in-flight fetch
// settles. If the level is idle the channel is already closed.
func (p *OptionProvider) WaitLevel(level Level) <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	ch := make(chan struct{})
	if !p.loading[level] {
		close(ch)
		return ch
	}
	p.waiters[level] = append(p.waiters[level], ch)
	return ch
}

// Stop cancels all in-flight fetches.
func (p *OptionProvider) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for l := Level(0); l < numLevels; l++ {
		p.clearInFlightLocked(l)
	}
}

// fetch starts a load for one level, superseding any in-flight load of the
// same level. The generation check before commit guarantees a cancelled
// fetch can never overwrite its successor's result.
func (p *OptionProvider) fetch(ctx context.Context, level Level, parentID int) {
	p.mu.Lock()
	if p.cancels[level] != nil {
		p.cancels[level]()
	}
	fetchCtx, cancel := context.WithCancel(ctx)
	p.cancels[level] = cancel
	p.gens[level]++
	gen := p.gens[level]
	p.loading[level] = true
	p.mu.Unlock()

	go func() {
		options, err := p.load(fetchCtx, level, parentID)

		p.mu.Lock()
		if gen != p.gens[level] {
			// Superseded; the newer fetch owns this level now.
			p.mu.Unlock()
			return
		}
		p.loading[level] = false
		p.cancels[level] = nil
		switch {
		case err == nil:
			p.options[level] = options
			p.errs[level] = ""
		case errors.Is(err, context.Canceled):
			// Intentional cancellation is not a failure.
		default:
			p.options[level] = nil
			p.errs[level] = err.Error()
		}
		p.settleLocked(level)
		p.mu.Unlock()

		p.notify()
	}()
}

func (p *OptionProvider) load(ctx context.Context, level Level, parentID int) ([]Option, error) {
	switch level {
	case LevelProvince:
		return p.source.Provinces(ctx)
	case LevelCity:
		return p.source.Cities(ctx, parentID)
	case LevelDistrict:
		return p.source.Districts(ctx, parentID)
	default:
		return p.source.SubDistricts(ctx, parentID)
	}
}

// clearLevelLocked wipes a level's selection, options, error and any
// in-flight fetch. Callers hold p.mu.
func (p *OptionProvider) clearLevelLocked(level Level) {
	p.sel.set(level, nil)
	p.options[level] = nil
	p.errs[level] = ""
	p.clearInFlightLocked(level)
}

func (p *OptionProvider) clearInFlightLocked(level Level) {
	if p.cancels[level] != nil {
		p.cancels[level]()
		p.cancels[level] = nil
	}
	p.gens[level]++
	p.loading[level] = false
	p.settleLocked(level)
}

func (p *OptionProvider) settleLocked(level Level) {
	for _, ch := range p.waiters[level] {
		close(ch)
	}
	p.waiters[level] = nil
}

func (p *OptionProvider) notify() {
	p.mu.Lock()
	fn := p.onChange
	p.mu.Unlock()
	if fn != nil {
		fn()
	}
}
