package mapview

import (
	"context"
	"fmt"
	"strings"
)

// MatchPolicy controls what happens when a level fails to match.
type MatchPolicy int

const (
	// HaltOnMismatch stops descending at the first unmatched level. Used by
	// the list-creation flow, where descendants are meaningless without a
	// matched ancestor.
	HaltOnMismatch MatchPolicy = iota
	// ContinueOnMismatch records an independent diagnostic per level and
	// keeps going. Used by the simulation flow, where the user can override
	// each level manually.
	ContinueOnMismatch
)

// MatchDiagnostics holds one human-readable mismatch string per level,
// empty when the level matched or was not attempted.
type MatchDiagnostics struct {
	Prov    string
	City    string
	Dist    string
	Subdist string
}

// MatchState is the outcome of reconciling a geocode result against the
// option lists. Nil ids mean unmatched.
type MatchState struct {
	ProvID        *int
	CityID        *int
	DistrictID    *int
	SubdistrictID *int
	Mismatch      MatchDiagnostics
}

func (s *MatchState) setID(level Level, id int) {
	v := id
	switch level {
	case LevelProvince:
		s.ProvID = &v
	case LevelCity:
		s.CityID = &v
	case LevelDistrict:
		s.DistrictID = &v
	default:
		s.SubdistrictID = &v
	}
}

func (s *MatchState) setMismatch(level Level, msg string) {
	switch level {
	case LevelProvince:
		s.Mismatch.Prov = msg
	case LevelCity:
		s.Mismatch.City = msg
	case LevelDistrict:
		s.Mismatch.Dist = msg
	default:
		s.Mismatch.Subdist = msg
	}
}

// ClearMismatch drops the diagnostic for one level, used when the user
// overrides that level manually.
func (s *MatchState) ClearMismatch(level Level) {
	s.setMismatch(level, "")
}

var levelNames = [numLevels]string{"province", "city", "district", "subdistrict"}

// MatchLabel finds the first option whose label equals the value
// case-insensitively. Exact equality only, first match wins.
func MatchLabel(options []Option, value string) (int, bool) {
	for _, opt := range options {
		if strings.EqualFold(opt.Label, value) {
			return opt.ID, true
		}
	}
	return 0, false
}

// Matcher reconciles a geocode result against the option provider's current
// lists, driving the provider so every matched id triggers the child fetch.
type Matcher struct {
	provider *OptionProvider
	policy   MatchPolicy
}

// NewMatcher constructs a Matcher with the given mismatch policy.
func NewMatcher(provider *OptionProvider, policy MatchPolicy) *Matcher {
	return &Matcher{provider: provider, policy: policy}
}

// Apply matches the result level by level. Matching is a pure function of
// the result and the option lists, so re-running with identical inputs
// yields identical ids and diagnostics.
func (m *Matcher) Apply(ctx context.Context, result *GeocodeResult) (MatchState, error) {
	var state MatchState
	values := [numLevels]string{result.Province, result.City, result.District, result.Village}

	for level := LevelProvince; level < numLevels; level++ {
		value := strings.TrimSpace(values[level])
		if value == "" {
			if m.policy == HaltOnMismatch {
				break
			}
			continue
		}

		id, ok := MatchLabel(m.provider.Options(level), value)
		if !ok {
			state.setMismatch(level, fmt.Sprintf("%s %q not found in the authoritative list", levelNames[level], value))
			if m.policy == HaltOnMismatch {
				break
			}
			continue
		}

		state.setID(level, id)
		m.provider.SetSelection(ctx, level, &id)

		// The child list must finish loading before it can be matched.
		if level < LevelSubdistrict {
			select {
			case <-m.provider.WaitLevel(level + 1):
			case <-ctx.Done():
				return state, ctx.Err()
			}
		}
	}

	return state, nil
}
