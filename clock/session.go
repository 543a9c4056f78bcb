// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package clock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/danielhkuo/crewclock/attendance"
	"github.com/danielhkuo/crewclock/capture"
	"github.com/danielhkuo/crewclock/geo"
	"github.com/danielhkuo/crewclock/locfeed"
	"github.com/danielhkuo/crewclock/models"
)

// ClientInfo is stored with submitted events to help audit them
type ClientInfo struct {
	IPHash    string
	UserAgent string
}

// Session drives one crew member's clock action from selection to a stored
// event. Triggers are its methods; State reports where it is.
type Session struct {
	store attendance.Store
	gate  *capture.Gate
	cfg   Config
	now   func() time.Time

	mu         sync.Mutex
	location   *models.Location
	crew       *models.CrewMember
	shift      string
	fix        *locfeed.Fix
	fixErr     error
	nextAction models.ActionType
	client     ClientInfo
	state      State
	submitting bool
	lastErr    error
	watcher    *locfeed.Watcher
}

func NewSession(store attendance.Store, gate *capture.Gate, cfg Config) *Session {
	return &Session{
		store: store,
		gate:  gate,
		cfg:   cfg.withDefaults(),
		now:   time.Now,
		state: StateNoSelection,
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err is the error of the last failed submission, cleared by the next trigger
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *Session) SetClientInfo(info ClientInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.client = info
}

// SelectLocation picks the store and resets everything chosen after it
func (s *Session) SelectLocation(loc models.Location) error {
	s.mu.Lock()
	if s.submitting {
		s.mu.Unlock()
		return ErrSubmitInFlight
	}

	s.location = &loc
	s.crew = nil
	s.shift = ""
	s.nextAction = ""
	s.gate.Clear()
	w := s.detachWatchLocked()
	s.settleLocked()
	s.mu.Unlock()

	stopWatch(w)
	return nil
}

// SelectCrewMember picks who is clocking. The crew member must belong to
// the selected store. Their next action is looked up before the selection
// is committed, so a failed lookup leaves the session unchanged.
func (s *Session) SelectCrewMember(ctx context.Context, crew models.CrewMember) error {
	s.mu.Lock()
	if s.submitting {
		s.mu.Unlock()
		return ErrSubmitInFlight
	}
	if s.location == nil {
		s.mu.Unlock()
		return ErrNoSelection
	}
	if crew.LocationID != s.location.ID {
		s.mu.Unlock()
		return ErrCrewNotAssigned
	}
	locationID := s.location.ID
	s.mu.Unlock()

	last, err := s.store.LastByCrewMember(ctx, crew.ID)
	if err != nil {
		return fmt.Errorf("failed to look up last event: %w", err)
	}

	s.mu.Lock()
	if s.submitting {
		s.mu.Unlock()
		return ErrSubmitInFlight
	}
	if s.location == nil || s.location.ID != locationID {
		s.mu.Unlock()
		return ErrNoSelection
	}

	s.crew = &crew
	s.shift = ""
	s.nextAction = attendance.NextAction(last)
	s.gate.Clear()
	w := s.detachWatchLocked()
	s.settleLocked()
	s.mu.Unlock()

	stopWatch(w)
	return nil
}

func (s *Session) SelectShift(shift string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shift = strings.TrimSpace(shift)
	s.settleLocked()
}

// FixObtained records a device position
func (s *Session) FixObtained(fix locfeed.Fix) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fix = &fix
	s.fixErr = nil
	s.settleLocked()
}

// FixFailed drops the last position; submission stays blocked until a new
// fix arrives
func (s *Session) FixFailed(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fix = nil
	s.fixErr = err
	s.settleLocked()
}

// Locate requests one fix from src, bounded by the configured timeout
func (s *Session) Locate(ctx context.Context, src locfeed.Source) error {
	fix, err := locfeed.Request(ctx, src, s.cfg.LocationTimeout)
	if err != nil {
		s.FixFailed(err)
		return err
	}
	s.FixObtained(fix)
	return nil
}

// Watch keeps the position current until the selection changes or the
// session is closed
func (s *Session) Watch(ctx context.Context, src locfeed.Source) {
	w := locfeed.Watch(ctx, src, s.cfg.WatchInterval, s.cfg.LocationTimeout, func(fix locfeed.Fix, err error) {
		if err != nil {
			s.FixFailed(err)
			return
		}
		s.FixObtained(fix)
	})

	s.mu.Lock()
	old := s.watcher
	s.watcher = w
	s.mu.Unlock()

	stopWatch(old)
}

// OpenCamera starts the camera for the selected crew member
func (s *Session) OpenCamera(ctx context.Context) error {
	s.mu.Lock()
	selected := s.crew != nil
	s.mu.Unlock()
	if !selected {
		return ErrNoSelection
	}
	return s.gate.Open(ctx)
}

func (s *Session) CapturePhoto(ctx context.Context) (capture.Photo, error) {
	return s.gate.Capture(ctx)
}

func (s *Session) RetakePhoto(ctx context.Context) error {
	return s.gate.Retake(ctx)
}

// Evaluate checks every gate against a fresh lookup of the crew member's
// last event. The error is only for a failed lookup; unmet gates are
// reported as blockers.
func (s *Session) Evaluate(ctx context.Context) (Eligibility, error) {
	s.mu.Lock()
	crew := s.crew
	s.mu.Unlock()

	if crew != nil {
		last, err := s.store.LastByCrewMember(ctx, crew.ID)
		if err != nil {
			return Eligibility{}, fmt.Errorf("failed to look up last event: %w", err)
		}
		s.mu.Lock()
		if s.crew != nil && s.crew.ID == crew.ID {
			s.nextAction = attendance.NextAction(last)
		}
		s.mu.Unlock()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.submitting {
		s.settleLocked()
	}
	return s.eligibilityLocked(), nil
}

// Submit records the next action for the selected crew member. On success
// the photo, shift, crew member and store are cleared. On failure every
// selection and the photo are kept so the user can resubmit.
func (s *Session) Submit(ctx context.Context) (models.AttendanceEvent, error) {
	s.mu.Lock()
	if s.submitting {
		s.mu.Unlock()
		return models.AttendanceEvent{}, ErrSubmitInFlight
	}
	s.settleLocked()
	if blockers := s.blockersLocked(); len(blockers) > 0 {
		s.mu.Unlock()
		return models.AttendanceEvent{}, &IneligibleError{Blockers: blockers}
	}

	loc, crew, shift, client := *s.location, *s.crew, s.shift, s.client
	photo, _ := s.gate.Photo()
	s.submitting = true
	s.state = StateSubmitting
	s.mu.Unlock()

	ev, err := s.write(ctx, loc, crew, shift, photo, client)

	s.mu.Lock()
	s.submitting = false
	if err != nil {
		s.state = StateError
		s.lastErr = err
		s.mu.Unlock()
		slog.Error("clock submission failed", "error", err, "crew_member_id", crew.ID, "location_id", loc.ID)
		return models.AttendanceEvent{}, err
	}

	s.location = nil
	s.crew = nil
	s.shift = ""
	s.nextAction = ""
	s.gate.Clear()
	w := s.detachWatchLocked()
	s.state = StateIdle
	s.lastErr = nil
	s.mu.Unlock()

	stopWatch(w)

	slog.Info("attendance recorded",
		"event_id", ev.ID,
		"crew_member_id", ev.CrewMemberID,
		"location_id", ev.LocationID,
		"type", string(ev.Type),
		"shift", ev.Shift,
	)
	return ev, nil
}

// write re-reads the last event so the toggle reflects the store at
// decision time, then appends. Names are the snapshots selected by the user.
func (s *Session) write(ctx context.Context, loc models.Location, crew models.CrewMember, shift string, photo capture.Photo, client ClientInfo) (models.AttendanceEvent, error) {
	last, err := s.store.LastByCrewMember(ctx, crew.ID)
	if err != nil {
		// Nothing was written; the user has to resubmit like any failed write
		return models.AttendanceEvent{}, fmt.Errorf("%w: %w", attendance.ErrWriteFailed, err)
	}

	ev := models.AttendanceEvent{
		CrewMemberID:   crew.ID,
		CrewMemberName: crew.Name,
		LocationID:     loc.ID,
		LocationName:   loc.Name,
		Timestamp:      s.now(),
		Type:           attendance.NextAction(last),
		PhotoEvidence:  &photo.DataURL,
		Shift:          shift,
	}
	if client.IPHash != "" {
		ev.IPHash = &client.IPHash
	}
	if client.UserAgent != "" {
		ev.UserAgent = &client.UserAgent
	}

	id, err := s.store.Append(ctx, ev)
	if err != nil {
		return models.AttendanceEvent{}, err
	}
	ev.ID = id
	return ev, nil
}

// Close releases the camera and any location watch
func (s *Session) Close() error {
	s.mu.Lock()
	w := s.detachWatchLocked()
	err := s.gate.Close()
	s.mu.Unlock()

	stopWatch(w)
	return err
}

func (s *Session) detachWatchLocked() *locfeed.Watcher {
	w := s.watcher
	s.watcher = nil
	return w
}

// stopWatch must run without s.mu held; the watch callback takes it
func stopWatch(w *locfeed.Watcher) {
	if w != nil {
		w.Stop()
	}
}

// settleLocked derives the state from the current inputs
func (s *Session) settleLocked() {
	s.lastErr = nil
	switch {
	case s.submitting:
		s.state = StateSubmitting
	case s.location == nil || s.crew == nil:
		s.state = StateNoSelection
	case s.fix == nil:
		s.state = StateAwaitingLocation
	case geo.Distance(s.location.Point(), s.fix.Point) > s.cfg.RadiusKm:
		s.state = StateOutOfRange
	case s.nextAction == models.ActionOut:
		s.state = StateReadyOut
	default:
		s.state = StateReadyIn
	}
}

func (s *Session) eligibilityLocked() Eligibility {
	e := Eligibility{
		State:    s.state,
		Action:   s.nextAction,
		RadiusKm: s.cfg.RadiusKm,
		Blockers: s.blockersLocked(),
	}
	if s.location != nil && s.fix != nil {
		d := geo.Distance(s.location.Point(), s.fix.Point)
		e.DistanceKm = &d
	}
	e.Allowed = len(e.Blockers) == 0
	return e
}

// blockersLocked lists every unmet gate, each on its own
func (s *Session) blockersLocked() []Blocker {
	var blockers []Blocker

	if s.location == nil || s.crew == nil {
		blockers = append(blockers, Blocker{
			Code:    "no_selection",
			Err:     ErrNoSelection,
			Message: "Select your store and name to begin.",
		})
	}

	switch {
	case s.fix == nil:
		blockers = append(blockers, locationBlocker(s.fixErr))
	case s.location != nil:
		if d := geo.Distance(s.location.Point(), s.fix.Point); d > s.cfg.RadiusKm {
			blockers = append(blockers, Blocker{
				Code:    "out_of_range",
				Err:     ErrOutOfRange,
				Message: outOfRangeMessage(d, s.cfg.RadiusKm),
			})
		}
	}

	if _, ok := s.gate.Photo(); !ok {
		blockers = append(blockers, cameraBlocker(s.gate.State()))
	}

	if s.shift == "" {
		blockers = append(blockers, Blocker{
			Code:    "shift_missing",
			Err:     ErrShiftMissing,
			Message: "Select your shift.",
		})
	}

	return blockers
}

func locationBlocker(err error) Blocker {
	b := Blocker{Code: "location_unavailable", Err: ErrLocationUnavailable}
	switch {
	case err == nil:
		b.Code = "awaiting_location"
		b.Message = "Getting your location..."
	case errors.Is(err, locfeed.ErrPermissionDenied):
		b.Message = "Location access denied."
	case errors.Is(err, locfeed.ErrTimeout):
		b.Message = "Location request timed out."
	default:
		b.Message = "Unable to get your location."
	}
	return b
}

func cameraBlocker(state capture.State) Blocker {
	switch state {
	case capture.StateDenied:
		return Blocker{Code: "camera_denied", Err: ErrCameraUnavailable, Message: "Camera access denied."}
	case capture.StateUnsupported:
		return Blocker{Code: "camera_unsupported", Err: ErrCameraUnavailable, Message: "Camera is not supported on this device."}
	case capture.StateInitializing:
		return Blocker{Code: "camera_starting", Err: ErrPhotoMissing, Message: "Camera is starting."}
	}
	return Blocker{Code: "photo_missing", Err: ErrPhotoMissing, Message: "Take a photo to continue."}
}
