// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/crewclock/attendance"
	"github.com/danielhkuo/crewclock/auth"
	"github.com/danielhkuo/crewclock/capture"
	"github.com/danielhkuo/crewclock/cliparse"
	"github.com/danielhkuo/crewclock/clock"
	"github.com/danielhkuo/crewclock/directory"
	"github.com/danielhkuo/crewclock/geo"
	"github.com/danielhkuo/crewclock/locfeed"
	"github.com/danielhkuo/crewclock/middleware"
	"github.com/danielhkuo/crewclock/models"
)

type ClockHandler struct {
	store attendance.Store
	dir   *directory.Directory
	cfg   cliparse.Config
}

func NewClockHandler(store attendance.Store, dir *directory.Directory, cfg cliparse.Config) *ClockHandler {
	return &ClockHandler{store: store, dir: dir, cfg: cfg}
}

// Status handles POST /clock/status
// Evaluates every gate for the request without writing anything
func (h *ClockHandler) Status(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	defer sess.Close()

	el, err := sess.Evaluate(r.Context())
	if err != nil {
		slog.Error("failed to evaluate eligibility", "error", err)
		middleware.ErrorResponse(w, http.StatusServiceUnavailable, "Attendance log unavailable")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, statusResponse(el))
}

// Submit handles POST /clock
// Runs the clock flow end to end and records the next action
func (h *ClockHandler) Submit(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	defer sess.Close()

	ev, err := sess.Submit(r.Context())
	var ineligible *clock.IneligibleError
	switch {
	case errors.As(err, &ineligible):
		el, evalErr := sess.Evaluate(r.Context())
		if evalErr != nil {
			// The blockers are already known; only the next action is lost
			slog.Warn("failed to re-evaluate rejected submission", "error", evalErr)
			el = clock.Eligibility{State: sess.State(), RadiusKm: h.cfg.GeofenceRadiusKm}
		}
		el.Allowed = false
		el.Blockers = ineligible.Blockers
		middleware.JSONResponse(w, http.StatusUnprocessableEntity, statusResponse(el))
		return
	case errors.Is(err, attendance.ErrWriteDenied):
		middleware.ErrorResponse(w, http.StatusForbidden, "Not allowed to record attendance")
		return
	case errors.Is(err, attendance.ErrWriteFailed):
		middleware.ErrorResponse(w, http.StatusServiceUnavailable, "Failed to record attendance, please try again")
		return
	case err != nil:
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to record attendance")
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.ClockResponse{
		EventID:   ev.ID,
		Type:      ev.Type,
		Timestamp: ev.Timestamp,
		Message:   clock.SuccessMessage(ev.Type),
	})
}

// session replays a clock request onto a fresh session. It writes the
// error response itself and reports whether the caller should continue.
func (h *ClockHandler) session(w http.ResponseWriter, r *http.Request) (*clock.Session, bool) {
	var req models.ClockRequest
	if !middleware.ParseAndValidate(w, r, &req) {
		return nil, false
	}
	ctx := r.Context()

	loc, err := h.dir.GetLocation(ctx, req.LocationID)
	if !h.lookupOK(w, err, "Location not found") {
		return nil, false
	}
	crew, err := h.dir.GetCrewMember(ctx, req.CrewMemberID)
	if !h.lookupOK(w, err, "Crew member not found") {
		return nil, false
	}

	gate := capture.NewGate(capture.StillProvider{
		DataURL: req.Photo,
		Err:     cameraError(req.CameraError),
	}, capture.Config{
		Quality:  h.cfg.PhotoQuality,
		MaxWidth: h.cfg.PhotoMaxWidth,
		Mirror:   h.cfg.PhotoMirror,
	})
	sess := clock.NewSession(h.store, gate, clock.Config{
		RadiusKm:        h.cfg.GeofenceRadiusKm,
		LocationTimeout: h.cfg.LocationTimeout,
	})
	sess.SetClientInfo(clock.ClientInfo{
		IPHash:    auth.HashIP(middleware.GetClientIP(r), h.cfg.AdminKeySalt),
		UserAgent: r.UserAgent(),
	})

	fail := func(status int, msg string) (*clock.Session, bool) {
		sess.Close()
		middleware.ErrorResponse(w, status, msg)
		return nil, false
	}

	if err := sess.SelectLocation(loc); err != nil {
		return fail(http.StatusConflict, err.Error())
	}
	if err := sess.SelectCrewMember(ctx, crew); err != nil {
		if errors.Is(err, clock.ErrCrewNotAssigned) {
			return fail(http.StatusUnprocessableEntity, "Crew member is not assigned to this store")
		}
		slog.Error("failed to look up last event", "error", err, "crew_member_id", crew.ID)
		return fail(http.StatusServiceUnavailable, "Attendance log unavailable")
	}

	switch {
	case req.Latitude != nil && req.Longitude != nil:
		// Coordinate problems become a location blocker
		_ = sess.Locate(ctx, locfeed.StaticSource{
			Fix: locfeed.Fix{Point: geo.Point{Lat: *req.Latitude, Lon: *req.Longitude}},
		})
	case req.LocationError != "":
		sess.FixFailed(locfeed.ParseError(req.LocationError))
	}

	sess.SelectShift(req.Shift)

	if req.Photo != "" || req.CameraError != "" {
		// A refused camera shows up as a blocker
		if err := sess.OpenCamera(ctx); err == nil && req.Photo != "" {
			if _, err := sess.CapturePhoto(ctx); err != nil {
				if errors.Is(err, capture.ErrInvalidPhoto) {
					return fail(http.StatusBadRequest, "Invalid photo")
				}
				slog.Error("failed to capture photo", "error", err)
				return fail(http.StatusInternalServerError, "Failed to process photo")
			}
		}
	}

	return sess, true
}

func (h *ClockHandler) lookupOK(w http.ResponseWriter, err error, notFound string) bool {
	switch {
	case err == nil:
		return true
	case errors.Is(err, directory.ErrNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, notFound)
	default:
		slog.Error("directory lookup failed", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
	}
	return false
}

func cameraError(code string) error {
	switch code {
	case "permission_denied":
		return capture.ErrPermissionDenied
	case "unsupported":
		return capture.ErrUnsupported
	}
	return nil
}

func statusResponse(el clock.Eligibility) models.ClockStatusResponse {
	resp := models.ClockStatusResponse{
		State:      el.State.String(),
		NextAction: el.Action,
		DistanceKm: el.DistanceKm,
		Eligible:   el.Allowed,
		Blockers:   make([]models.Blocker, len(el.Blockers)),
		Message:    el.Message(),
	}
	if el.DistanceKm != nil {
		resp.Distance = geo.FormatKm(*el.DistanceKm)
	}
	for i, b := range el.Blockers {
		resp.Blockers[i] = models.Blocker{Code: b.Code, Message: b.Message}
	}
	return resp
}
