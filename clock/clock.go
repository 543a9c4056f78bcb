// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package clock

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/danielhkuo/crewclock/geo"
	"github.com/danielhkuo/crewclock/models"
)

// DefaultRadiusKm is the geofence radius around a store
const DefaultRadiusKm = 1.0

var (
	ErrNoSelection         = errors.New("no store or crew member selected")
	ErrCrewNotAssigned     = errors.New("crew member is not assigned to this store")
	ErrLocationUnavailable = errors.New("location unavailable")
	ErrOutOfRange          = errors.New("out of range")
	ErrCameraUnavailable   = errors.New("camera unavailable")
	ErrPhotoMissing        = errors.New("photo missing")
	ErrShiftMissing        = errors.New("shift missing")
	ErrSubmitInFlight      = errors.New("submission already in progress")
)

type Config struct {
	RadiusKm        float64
	LocationTimeout time.Duration // bound on one-shot fixes
	WatchInterval   time.Duration // between fixes of a continuous watch
}

func (c Config) withDefaults() Config {
	if c.RadiusKm <= 0 {
		c.RadiusKm = DefaultRadiusKm
	}
	if c.LocationTimeout <= 0 {
		c.LocationTimeout = 10 * time.Second
	}
	return c
}

type State int

const (
	StateNoSelection State = iota
	StateAwaitingLocation
	StateOutOfRange
	StateReadyIn
	StateReadyOut
	StateSubmitting
	StateIdle  // last submission succeeded
	StateError // last submission failed
)

var stateNames = [...]string{
	StateNoSelection:      "no_selection",
	StateAwaitingLocation: "awaiting_location",
	StateOutOfRange:       "out_of_range",
	StateReadyIn:          "ready_in",
	StateReadyOut:         "ready_out",
	StateSubmitting:       "submitting",
	StateIdle:             "idle",
	StateError:            "error",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Blocker is one unmet precondition. Err is one of the package errors.
type Blocker struct {
	Code    string
	Err     error
	Message string
}

// Eligibility is the outcome of evaluating every gate at once
type Eligibility struct {
	State      State
	Allowed    bool
	Action     models.ActionType // next action from the latest stored event
	DistanceKm *float64          // nil until both a store and a fix are known
	RadiusKm   float64
	Blockers   []Blocker
}

// Message is the single line shown to the crew member
func (e Eligibility) Message() string {
	if e.Allowed {
		msg := fmt.Sprintf("Ready to clock %s.", strings.ToLower(e.Action.Label()))
		if e.DistanceKm != nil {
			msg = fmt.Sprintf("You are in range (%s km). %s", geo.FormatKm(*e.DistanceKm), msg)
		}
		return msg
	}
	if len(e.Blockers) > 0 {
		return e.Blockers[0].Message
	}
	return ""
}

// IneligibleError lists every gate that blocked a submission. errors.Is
// matches each blocker's error.
type IneligibleError struct {
	Blockers []Blocker
}

func (e *IneligibleError) Error() string {
	msgs := make([]string, len(e.Blockers))
	for i, b := range e.Blockers {
		msgs[i] = b.Message
	}
	return "not eligible: " + strings.Join(msgs, " ")
}

func (e *IneligibleError) Unwrap() []error {
	errs := make([]error, len(e.Blockers))
	for i, b := range e.Blockers {
		errs[i] = b.Err
	}
	return errs
}

// SuccessMessage confirms a recorded action
func SuccessMessage(action models.ActionType) string {
	return fmt.Sprintf("Successfully Clocked %s!", action.Label())
}

func outOfRangeMessage(distanceKm, radiusKm float64) string {
	return fmt.Sprintf("You are %s km away. Please be within %s km of the store.",
		geo.FormatKm(distanceKm), geo.FormatKm(radiusKm))
}
