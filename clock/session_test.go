// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package clock

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/danielhkuo/crewclock/attendance"
	"github.com/danielhkuo/crewclock/capture"
	"github.com/danielhkuo/crewclock/geo"
	"github.com/danielhkuo/crewclock/locfeed"
	"github.com/danielhkuo/crewclock/models"
	"github.com/danielhkuo/crewclock/testutil"
)

var (
	storeA = models.Location{ID: "loc-1", Name: "Grand Indonesia", Latitude: 0, Longitude: 0}
	storeB = models.Location{ID: "loc-2", Name: "Pacific Place", Latitude: 1, Longitude: 1}
	crewA  = models.CrewMember{ID: "crew-1", Name: "Ayu", LocationID: "loc-1"}

	near = locfeed.Fix{Point: geo.Point{Lat: 0, Lon: 0.0001}}
	far  = locfeed.Fix{Point: geo.Point{Lat: 0, Lon: 0.02}}
)

// prepare builds a session with every gate met except the one named
func prepare(t *testing.T, st attendance.Store, unmet string) (*Session, *capture.Gate) {
	t.Helper()
	ctx := context.Background()

	gate := capture.NewGate(capture.StillProvider{DataURL: testutil.TestPhoto(t)}, capture.Config{Mirror: true})
	s := NewSession(st, gate, Config{RadiusKm: 1})
	t.Cleanup(func() { s.Close() })

	if unmet != "selection" {
		if err := s.SelectLocation(storeA); err != nil {
			t.Fatal(err)
		}
		if err := s.SelectCrewMember(ctx, crewA); err != nil {
			t.Fatal(err)
		}
	}

	if unmet != "photo" {
		if err := gate.Open(ctx); err != nil {
			t.Fatal(err)
		}
		if _, err := gate.Capture(ctx); err != nil {
			t.Fatal(err)
		}
	}

	switch unmet {
	case "location":
	case "distance":
		s.FixObtained(far)
	default:
		s.FixObtained(near)
	}

	if unmet != "shift" {
		s.SelectShift("Shift 1")
	}

	return s, gate
}

func TestEligibility_EachGateAlone(t *testing.T) {
	tests := []struct {
		unmet   string
		wantErr error
	}{
		{"selection", ErrNoSelection},
		{"location", ErrLocationUnavailable},
		{"distance", ErrOutOfRange},
		{"photo", ErrPhotoMissing},
		{"shift", ErrShiftMissing},
	}

	t.Run("all met", func(t *testing.T) {
		s, _ := prepare(t, attendance.NewMemStore(), "")
		e, err := s.Evaluate(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if !e.Allowed || len(e.Blockers) != 0 {
			t.Fatalf("expected eligible, got blockers %+v", e.Blockers)
		}
	})

	for _, tt := range tests {
		t.Run(tt.unmet, func(t *testing.T) {
			s, _ := prepare(t, attendance.NewMemStore(), tt.unmet)

			e, err := s.Evaluate(context.Background())
			if err != nil {
				t.Fatal(err)
			}
			if e.Allowed {
				t.Fatal("one unmet gate must block eligibility")
			}
			if len(e.Blockers) != 1 {
				t.Fatalf("expected exactly one blocker, got %+v", e.Blockers)
			}
			if !errors.Is(e.Blockers[0].Err, tt.wantErr) {
				t.Errorf("blocker error = %v, want %v", e.Blockers[0].Err, tt.wantErr)
			}
			if e.Blockers[0].Message == "" || e.Message() != e.Blockers[0].Message {
				t.Errorf("blocker needs its own message, got %q", e.Message())
			}

			_, err = s.Submit(context.Background())
			var inel *IneligibleError
			if !errors.As(err, &inel) || !errors.Is(err, tt.wantErr) {
				t.Errorf("Submit() error = %v, want IneligibleError matching %v", err, tt.wantErr)
			}
		})
	}
}

func TestEligibility_ReportsEveryBlocker(t *testing.T) {
	gate := capture.NewGate(capture.StillProvider{}, capture.Config{})
	s := NewSession(attendance.NewMemStore(), gate, Config{})
	defer s.Close()

	e, err := s.Evaluate(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if s.State() != StateNoSelection {
		t.Errorf("expected no_selection, got %s", s.State())
	}

	codes := make([]string, len(e.Blockers))
	for i, b := range e.Blockers {
		codes[i] = b.Code
	}
	want := "no_selection,awaiting_location,photo_missing,shift_missing"
	if got := strings.Join(codes, ","); got != want {
		t.Errorf("blockers = %s, want %s", got, want)
	}

	_, err = s.Submit(context.Background())
	for _, target := range []error{ErrNoSelection, ErrLocationUnavailable, ErrPhotoMissing, ErrShiftMissing} {
		if !errors.Is(err, target) {
			t.Errorf("Submit() error should match %v", target)
		}
	}
	if errors.Is(err, ErrOutOfRange) {
		t.Error("Submit() error should not match gates that are met")
	}
}

func TestScenarioA_WithinRange(t *testing.T) {
	s, _ := prepare(t, attendance.NewMemStore(), "")

	e, err := s.Evaluate(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if e.DistanceKm == nil || math.Abs(*e.DistanceKm-0.0111) > 0.0005 {
		t.Errorf("expected distance ~0.0111 km, got %v", e.DistanceKm)
	}
	if e.State != StateReadyIn || e.Action != models.ActionIn {
		t.Errorf("expected ready_in, got %s / %s", e.State, e.Action)
	}
	if !strings.Contains(e.Message(), "Ready to clock in.") {
		t.Errorf("unexpected message %q", e.Message())
	}
}

func TestScenarioB_OutOfRange(t *testing.T) {
	s, _ := prepare(t, attendance.NewMemStore(), "distance")

	e, err := s.Evaluate(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if e.State != StateOutOfRange {
		t.Errorf("expected out_of_range, got %s", e.State)
	}
	if e.DistanceKm == nil || geo.FormatKm(*e.DistanceKm) != "2.22" {
		t.Errorf("expected displayed distance 2.22, got %v", e.DistanceKm)
	}
	want := "You are 2.22 km away. Please be within 1.00 km of the store."
	if e.Message() != want {
		t.Errorf("message = %q, want %q", e.Message(), want)
	}
}

func TestScenarioC_ToggleFromHistory(t *testing.T) {
	t1 := time.Date(2025, 1, 6, 8, 0, 0, 0, time.UTC)
	ev := func(typ models.ActionType, at time.Time) models.AttendanceEvent {
		return models.AttendanceEvent{CrewMemberID: crewA.ID, LocationID: storeA.ID, Type: typ, Timestamp: at}
	}
	st := attendance.NewMemStore(
		ev(models.ActionIn, t1),
		ev(models.ActionOut, t1.Add(8*time.Hour)),
		ev(models.ActionIn, t1.Add(24*time.Hour)),
	)

	s, _ := prepare(t, st, "")
	e, err := s.Evaluate(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if e.Action != models.ActionOut || e.State != StateReadyOut {
		t.Fatalf("expected ready_out, got %s / %s", e.State, e.Action)
	}

	got, err := s.Submit(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got.Type != models.ActionOut {
		t.Errorf("submitted %s, want out", got.Type)
	}
}

func TestSubmit_Success(t *testing.T) {
	ctx := context.Background()
	st := attendance.NewMemStore()
	s, gate := prepare(t, st, "")
	s.SetClientInfo(ClientInfo{IPHash: "abc123", UserAgent: "test-agent"})

	ev, err := s.Submit(ctx)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if ev.ID == "" || ev.Type != models.ActionIn {
		t.Errorf("unexpected event %+v", ev)
	}
	if ev.CrewMemberName != "Ayu" || ev.LocationName != "Grand Indonesia" {
		t.Errorf("name snapshots missing: %+v", ev)
	}
	if ev.Shift != "Shift 1" {
		t.Errorf("shift = %q", ev.Shift)
	}
	if ev.PhotoEvidence == nil || !strings.HasPrefix(*ev.PhotoEvidence, "data:image/jpeg;base64,") {
		t.Error("photo evidence missing")
	}
	if ev.IPHash == nil || *ev.IPHash != "abc123" || ev.UserAgent == nil {
		t.Error("client info missing")
	}
	if SuccessMessage(ev.Type) != "Successfully Clocked In!" {
		t.Errorf("unexpected success message %q", SuccessMessage(ev.Type))
	}

	if s.State() != StateIdle {
		t.Errorf("expected idle after success, got %s", s.State())
	}
	if _, ok := gate.Photo(); ok {
		t.Error("photo should be cleared after success")
	}

	e, err := s.Evaluate(ctx)
	if err != nil {
		t.Fatal(err)
	}
	var codes []string
	for _, b := range e.Blockers {
		codes = append(codes, b.Code)
	}
	if got := strings.Join(codes, ","); got != "no_selection,photo_missing,shift_missing" {
		t.Errorf("expected selections cleared, got blockers %s", got)
	}

	// The same crew member now clocks out
	s2, _ := prepare(t, st, "")
	ev2, err := s2.Submit(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if ev2.Type != models.ActionOut {
		t.Errorf("second submission = %s, want out", ev2.Type)
	}
	if st.Len() != 2 {
		t.Errorf("expected 2 stored events, got %d", st.Len())
	}
}

func TestSubmit_WriteErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		want    error
		notWant error
	}{
		{"denied", fmt.Errorf("%w: row level security", attendance.ErrWriteDenied), attendance.ErrWriteDenied, attendance.ErrWriteFailed},
		{"failed", fmt.Errorf("%w: connection reset", attendance.ErrWriteFailed), attendance.ErrWriteFailed, attendance.ErrWriteDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			st := attendance.NewMemStore()
			s, gate := prepare(t, st, "")

			st.FailWrites(tt.err)
			_, err := s.Submit(ctx)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Submit() error = %v, want %v", err, tt.want)
			}
			if errors.Is(err, tt.notWant) {
				t.Errorf("Submit() error must not match %v", tt.notWant)
			}
			if s.State() != StateError || s.Err() == nil {
				t.Errorf("expected error state, got %s / %v", s.State(), s.Err())
			}

			// Nothing is lost; resubmitting works once the store recovers
			if _, ok := gate.Photo(); !ok {
				t.Error("photo should survive a failed write")
			}
			st.FailWrites(nil)
			ev, err := s.Submit(ctx)
			if err != nil {
				t.Fatalf("resubmit failed: %v", err)
			}
			if ev.Type != models.ActionIn {
				t.Errorf("resubmitted %s, want in", ev.Type)
			}
		})
	}
}

func TestSubmit_ReadFailureCountsAsWriteFailure(t *testing.T) {
	st := attendance.NewMemStore()
	s, _ := prepare(t, st, "")

	st.FailReads(errors.New("offline"))
	_, err := s.Submit(context.Background())
	if !errors.Is(err, attendance.ErrWriteFailed) {
		t.Errorf("expected ErrWriteFailed, got %v", err)
	}
	if st.Len() != 0 {
		t.Error("nothing should be written without a fresh lookup")
	}

	if _, err := s.Evaluate(context.Background()); err == nil {
		t.Error("Evaluate should surface the failed lookup")
	}
}

type slowStore struct {
	*attendance.MemStore
	entered chan struct{}
	release chan struct{}
}

func (s *slowStore) Append(ctx context.Context, ev models.AttendanceEvent) (string, error) {
	s.entered <- struct{}{}
	<-s.release
	return s.MemStore.Append(ctx, ev)
}

func TestSubmit_InFlight(t *testing.T) {
	st := &slowStore{
		MemStore: attendance.NewMemStore(),
		entered:  make(chan struct{}, 1),
		release:  make(chan struct{}),
	}
	s, _ := prepare(t, st, "")

	done := make(chan error, 1)
	go func() {
		_, err := s.Submit(context.Background())
		done <- err
	}()

	<-st.entered
	if s.State() != StateSubmitting {
		t.Errorf("expected submitting, got %s", s.State())
	}
	if _, err := s.Submit(context.Background()); !errors.Is(err, ErrSubmitInFlight) {
		t.Errorf("second Submit() error = %v, want ErrSubmitInFlight", err)
	}
	if err := s.SelectLocation(storeB); !errors.Is(err, ErrSubmitInFlight) {
		t.Errorf("SelectLocation() during submit = %v, want ErrSubmitInFlight", err)
	}

	close(st.release)
	if err := <-done; err != nil {
		t.Fatalf("first Submit failed: %v", err)
	}
	if st.Len() != 1 {
		t.Errorf("expected exactly one event, got %d", st.Len())
	}
}

func TestSelectCrewMember(t *testing.T) {
	ctx := context.Background()
	s := NewSession(attendance.NewMemStore(), capture.NewGate(capture.StillProvider{}, capture.Config{}), Config{})
	defer s.Close()

	if err := s.SelectCrewMember(ctx, crewA); !errors.Is(err, ErrNoSelection) {
		t.Errorf("expected ErrNoSelection without a store, got %v", err)
	}

	if err := s.SelectLocation(storeB); err != nil {
		t.Fatal(err)
	}
	if err := s.SelectCrewMember(ctx, crewA); !errors.Is(err, ErrCrewNotAssigned) {
		t.Errorf("expected ErrCrewNotAssigned, got %v", err)
	}

	if err := s.OpenCamera(ctx); !errors.Is(err, ErrNoSelection) {
		t.Errorf("camera needs a crew member first, got %v", err)
	}
}

func TestSelectLocation_ResetsDownstream(t *testing.T) {
	s, gate := prepare(t, attendance.NewMemStore(), "")

	if err := s.SelectLocation(storeB); err != nil {
		t.Fatal(err)
	}
	if s.State() != StateNoSelection {
		t.Errorf("expected no_selection, got %s", s.State())
	}
	if _, ok := gate.Photo(); ok {
		t.Error("photo should be cleared on store change")
	}

	e, _ := s.Evaluate(context.Background())
	var codes []string
	for _, b := range e.Blockers {
		codes = append(codes, b.Code)
	}
	// The fix is kept and judged against the new store
	if got := strings.Join(codes, ","); got != "no_selection,out_of_range,photo_missing,shift_missing" {
		t.Errorf("unexpected blockers %s", got)
	}
}

func TestSelectCrewMember_ClearsShiftAndPhoto(t *testing.T) {
	s, gate := prepare(t, attendance.NewMemStore(), "")

	if err := s.SelectCrewMember(context.Background(), crewA); err != nil {
		t.Fatal(err)
	}
	if _, ok := gate.Photo(); ok {
		t.Error("photo should be cleared on crew change")
	}
	e, _ := s.Evaluate(context.Background())
	if e.Allowed || len(e.Blockers) != 2 {
		t.Errorf("expected photo and shift blockers, got %+v", e.Blockers)
	}
}

func TestFixFailed(t *testing.T) {
	tests := []struct {
		err     error
		message string
	}{
		{locfeed.ErrPermissionDenied, "Location access denied."},
		{locfeed.ErrTimeout, "Location request timed out."},
		{locfeed.ErrUnavailable, "Unable to get your location."},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			s, _ := prepare(t, attendance.NewMemStore(), "")
			s.FixFailed(tt.err)

			if s.State() != StateAwaitingLocation {
				t.Errorf("expected awaiting_location, got %s", s.State())
			}
			e, _ := s.Evaluate(context.Background())
			if len(e.Blockers) != 1 || !errors.Is(e.Blockers[0].Err, ErrLocationUnavailable) {
				t.Fatalf("expected a single location blocker, got %+v", e.Blockers)
			}
			if e.Blockers[0].Message != tt.message {
				t.Errorf("message = %q, want %q", e.Blockers[0].Message, tt.message)
			}

			// A new fix lifts the block
			s.FixObtained(near)
			if e, _ := s.Evaluate(context.Background()); !e.Allowed {
				t.Errorf("expected eligible after a new fix, got %+v", e.Blockers)
			}
		})
	}
}

func TestLocate_Timeout(t *testing.T) {
	gate := capture.NewGate(capture.StillProvider{}, capture.Config{})
	s := NewSession(attendance.NewMemStore(), gate, Config{LocationTimeout: 20 * time.Millisecond})
	defer s.Close()

	hang := locfeed.SourceFunc(func(ctx context.Context) (locfeed.Fix, error) {
		<-ctx.Done()
		return locfeed.Fix{}, ctx.Err()
	})

	if err := s.Locate(context.Background(), hang); !errors.Is(err, locfeed.ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	e, _ := s.Evaluate(context.Background())
	found := false
	for _, b := range e.Blockers {
		if b.Message == "Location request timed out." {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a timeout blocker, got %+v", e.Blockers)
	}

	if err := s.Locate(context.Background(), locfeed.StaticSource{Fix: near}); err != nil {
		t.Fatal(err)
	}
}

func TestCameraBlockers(t *testing.T) {
	tests := []struct {
		name    string
		openErr error
		code    string
	}{
		{"denied", capture.ErrPermissionDenied, "camera_denied"},
		{"unsupported", capture.ErrUnsupported, "camera_unsupported"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			gate := capture.NewGate(capture.StillProvider{Err: tt.openErr}, capture.Config{})
			s := NewSession(attendance.NewMemStore(), gate, Config{})
			defer s.Close()

			s.SelectLocation(storeA)
			if err := s.SelectCrewMember(ctx, crewA); err != nil {
				t.Fatal(err)
			}
			s.FixObtained(near)
			s.SelectShift("Shift 2")

			if err := s.OpenCamera(ctx); !errors.Is(err, tt.openErr) {
				t.Fatalf("OpenCamera() error = %v, want %v", err, tt.openErr)
			}

			e, _ := s.Evaluate(ctx)
			if len(e.Blockers) != 1 || e.Blockers[0].Code != tt.code {
				t.Fatalf("expected %s blocker, got %+v", tt.code, e.Blockers)
			}
			if !errors.Is(e.Blockers[0].Err, ErrCameraUnavailable) {
				t.Errorf("expected ErrCameraUnavailable, got %v", e.Blockers[0].Err)
			}
		})
	}
}

type countingProvider struct {
	photo  string
	closed atomic.Int32
}

func (p *countingProvider) Open(ctx context.Context) (capture.Stream, error) {
	return &countingStream{p: p}, nil
}

type countingStream struct{ p *countingProvider }

func (s *countingStream) Frame(ctx context.Context) (image.Image, error) {
	return capture.DecodeDataURL(s.p.photo)
}

func (s *countingStream) Close() error {
	s.p.closed.Add(1)
	return nil
}

func TestClose_ReleasesCameraAndWatch(t *testing.T) {
	ctx := context.Background()
	provider := &countingProvider{photo: testutil.TestPhoto(t)}
	gate := capture.NewGate(provider, capture.Config{})
	s := NewSession(attendance.NewMemStore(), gate, Config{WatchInterval: 5 * time.Millisecond})

	s.SelectLocation(storeA)
	if err := s.SelectCrewMember(ctx, crewA); err != nil {
		t.Fatal(err)
	}
	if err := s.OpenCamera(ctx); err != nil {
		t.Fatal(err)
	}

	var polls atomic.Int32
	s.Watch(ctx, locfeed.SourceFunc(func(ctx context.Context) (locfeed.Fix, error) {
		polls.Add(1)
		return near, nil
	}))

	deadline := time.Now().Add(2 * time.Second)
	for s.State() != StateReadyIn {
		if time.Now().After(deadline) {
			t.Fatalf("watch never delivered a fix, state %s", s.State())
		}
		time.Sleep(time.Millisecond)
	}

	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if provider.closed.Load() != 1 {
		t.Errorf("camera should be released on close, closes = %d", provider.closed.Load())
	}
	if gate.State() != capture.StateIdle {
		t.Errorf("gate should be idle after close, got %s", gate.State())
	}

	after := polls.Load()
	time.Sleep(30 * time.Millisecond)
	if polls.Load() != after {
		t.Error("location watch kept polling after close")
	}
}

func TestIneligibleError(t *testing.T) {
	err := &IneligibleError{Blockers: []Blocker{
		{Code: "shift_missing", Err: ErrShiftMissing, Message: "Select your shift."},
		{Code: "photo_missing", Err: ErrPhotoMissing, Message: "Take a photo to continue."},
	}}

	if !errors.Is(err, ErrShiftMissing) || !errors.Is(err, ErrPhotoMissing) {
		t.Error("IneligibleError should match every blocker")
	}
	if errors.Is(err, ErrOutOfRange) {
		t.Error("IneligibleError should not match other gates")
	}
	if !strings.Contains(err.Error(), "Select your shift.") || !strings.Contains(err.Error(), "Take a photo") {
		t.Errorf("Error() should list all blockers: %s", err.Error())
	}
}

func TestStateString(t *testing.T) {
	if StateReadyOut.String() != "ready_out" {
		t.Errorf("unexpected %s", StateReadyOut)
	}
	if State(99).String() != "State(99)" {
		t.Errorf("unexpected %s", State(99))
	}
}
