package mapview

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
)

// SimState is the simulation workflow state.
type SimState int

const (
	StateIdle SimState = iota
	StateGeocoding
	StateReady
	StateEditing
	StateError
)

func (s SimState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateGeocoding:
		return "geocoding"
	case StateReady:
		return "ready"
	case StateEditing:
		return "editing"
	default:
		return "error"
	}
}

// Workflow guard errors.
var (
	ErrZoomTooLow    = errors.New("zoom in further to place a simulation point")
	ErrNotReady      = errors.New("no resolved candidate to edit")
	ErrNotEditing    = errors.New("no form open")
	ErrPhotoRequired = errors.New("at least one photo is required")
	ErrTooManyPhotos = errors.New("photo limit reached")
)

const maxCandidatePhotos = 4

// Candidate is the single in-progress simulation point. It exists only in
// memory until submission.
type Candidate struct {
	Lat, Lon float64
	Result   *GeocodeResult
	Match    MatchState
	Fields   map[string]string
	Photos   []Photo
}

type candidateResolver interface {
	Resolve(ctx context.Context, lat, lon float64) (*GeocodeResult, error)
}

type candidateSubmitter interface {
	CreateSign(ctx context.Context, simulation bool, fields map[string]string, photos []Photo) error
}

type layerRefresher interface {
	Refresh(ctx context.Context) error
}

// Simulation drives the click -> geocode -> edit -> submit workflow over a
// single pending-candidate slot. A new click discards the previous candidate
// and aborts its geocode; Escape (Cancel) returns to Idle from any state.
type Simulation struct {
	geocoder candidateResolver
	client   candidateSubmitter
	renderer layerRefresher
	matcher  *Matcher
	minZoom  float64

	mu           sync.Mutex
	state        SimState
	candidate    *Candidate
	cancel       context.CancelFunc
	gen          int
	errMsg       string
	onTransition func(from, to SimState)
}

// NewSimulation constructs a Simulation. minZoom gates opening the form.
func NewSimulation(geocoder candidateResolver, client candidateSubmitter, renderer layerRefresher, matcher *Matcher, minZoom float64) *Simulation {
	return &Simulation{
		geocoder: geocoder,
		client:   client,
		renderer: renderer,
		matcher:  matcher,
		minZoom:  minZoom,
		state:    StateIdle,
	}
}

// OnTransition registers a callback invoked on every state change, outside
// the workflow lock.
func (s *Simulation) OnTransition(fn func(from, to SimState)) {
	s.mu.Lock()
	s.onTransition = fn
	s.mu.Unlock()
}

// State returns the current workflow state.
func (s *Simulation) State() SimState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ErrMessage returns the failure message when the workflow is in Error.
func (s *Simulation) ErrMessage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

// Candidate returns the pending candidate, nil when Idle.
func (s *Simulation) Candidate() *Candidate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.candidate
}

// Click places a candidate at the coordinate and starts its reverse geocode.
// Any previous candidate is discarded first and its geocode aborted.
func (s *Simulation) Click(ctx context.Context, lat, lon float64) error {
	if !finite(lat) || !finite(lon) {
		return fmt.Errorf("coordinate is not finite: lat=%v lon=%v", lat, lon)
	}

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	geoCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.gen++
	gen := s.gen
	s.candidate = &Candidate{Lat: lat, Lon: lon, Fields: map[string]string{}}
	s.errMsg = ""
	notify := s.transitionLocked(StateGeocoding)
	s.mu.Unlock()
	notify()

	go func() {
		result, err := s.geocoder.Resolve(geoCtx, lat, lon)

		s.mu.Lock()
		if gen != s.gen {
			// A newer click owns the slot.
			s.mu.Unlock()
			return
		}
		s.cancel = nil
		var notify func()
		switch {
		case errors.Is(err, context.Canceled):
			s.mu.Unlock()
			return
		case err != nil:
			s.errMsg = err.Error()
			notify = s.transitionLocked(StateError)
		default:
			s.candidate.Result = result
			notify = s.transitionLocked(StateReady)
		}
		s.mu.Unlock()
		notify()
	}()

	return nil
}

// CanOpenForm reports whether the submission form may open at this zoom.
// Below the threshold only an informational hint is shown.
func (s *Simulation) CanOpenForm(zoom float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateReady && zoom >= s.minZoom
}

// OpenForm moves Ready -> Editing and auto-fills the region selection by
// matching the geocode result against the option lists.
func (s *Simulation) OpenForm(ctx context.Context, zoom float64) error {
	s.mu.Lock()
	if s.state != StateReady {
		s.mu.Unlock()
		return ErrNotReady
	}
	if zoom < s.minZoom {
		s.mu.Unlock()
		return ErrZoomTooLow
	}
	result := s.candidate.Result
	notify := s.transitionLocked(StateEditing)
	s.mu.Unlock()
	notify()

	match, err := s.matcher.Apply(ctx, result)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.state == StateEditing && s.candidate != nil {
		s.candidate.Match = match
	}
	s.mu.Unlock()
	return nil
}

// OverrideRegion manually selects an id at one level, clearing that level's
// mismatch diagnostic. Manual choices are not re-validated against GPS.
func (s *Simulation) OverrideRegion(ctx context.Context, level Level, id *int) error {
	s.mu.Lock()
	if s.state != StateEditing || s.candidate == nil {
		s.mu.Unlock()
		return ErrNotEditing
	}
	if id != nil {
		s.candidate.Match.setID(level, *id)
	}
	s.candidate.Match.ClearMismatch(level)
	s.mu.Unlock()

	s.matcher.provider.SetSelection(ctx, level, id)
	return nil
}

// SetField records a form field for submission.
func (s *Simulation) SetField(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateEditing || s.candidate == nil {
		return ErrNotEditing
	}
	s.candidate.Fields[key] = value
	return nil
}

// AttachPhoto adds an attachment. The first photo is the GPS-tagged one.
func (s *Simulation) AttachPhoto(filename string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateEditing || s.candidate == nil {
		return ErrNotEditing
	}
	n := len(s.candidate.Photos)
	if n >= maxCandidatePhotos {
		return ErrTooManyPhotos
	}
	field := "photo_gps"
	if n > 0 {
		field = "photo_additional_" + strconv.Itoa(n)
	}
	s.candidate.Photos = append(s.candidate.Photos, Photo{Field: field, Filename: filename, Data: data})
	return nil
}

// Submit sends the candidate as a multipart create. On success the workflow
// returns to Idle and the rendered layer is refreshed; on failure it stays
// in Editing so the user can correct and retry.
func (s *Simulation) Submit(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateEditing || s.candidate == nil {
		s.mu.Unlock()
		return ErrNotEditing
	}
	cand := s.candidate
	if len(cand.Photos) == 0 {
		s.mu.Unlock()
		return ErrPhotoRequired
	}
	if !finite(cand.Lat) || !finite(cand.Lon) {
		s.mu.Unlock()
		return fmt.Errorf("coordinate is not finite: lat=%v lon=%v", cand.Lat, cand.Lon)
	}

	fields := map[string]string{
		"lat": strconv.FormatFloat(cand.Lat, 'f', -1, 64),
		"lon": strconv.FormatFloat(cand.Lon, 'f', -1, 64),
	}
	for k, v := range cand.Fields {
		fields[k] = v
	}
	setRegion := func(name string, id *int) {
		if id != nil {
			fields[name] = strconv.Itoa(*id)
		}
	}
	setRegion("provId", cand.Match.ProvID)
	setRegion("cityId", cand.Match.CityID)
	setRegion("districtId", cand.Match.DistrictID)
	setRegion("subdistrictId", cand.Match.SubdistrictID)
	photos := cand.Photos
	s.mu.Unlock()

	if err := s.client.CreateSign(ctx, true, fields, photos); err != nil {
		return err
	}

	s.mu.Lock()
	s.candidate = nil
	notify := s.transitionLocked(StateIdle)
	s.mu.Unlock()
	notify()

	return s.renderer.Refresh(ctx)
}

// Cancel discards the candidate from any state, aborting an in-flight
// geocode, and returns to Idle. Bound to the Escape key by callers.
func (s *Simulation) Cancel() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.gen++
	s.candidate = nil
	s.errMsg = ""
	notify := s.transitionLocked(StateIdle)
	s.mu.Unlock()
	notify()
}

// transitionLocked records the state change and returns the callback to run
// after the lock is released. Callers hold s.mu.
func (s *Simulation) transitionLocked(to SimState) func() {
	from := s.state
	s.state = to
	fn := s.onTransition
	if fn == nil || from == to {
		return func() {}
	}
	return func() { fn(from, to) }
}
