// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/danielhkuo/crewclock/attendance"
	"github.com/danielhkuo/crewclock/auth"
	"github.com/danielhkuo/crewclock/cliparse"
	"github.com/danielhkuo/crewclock/directory"
	"github.com/danielhkuo/crewclock/middleware"
	"github.com/danielhkuo/crewclock/models"
	"github.com/danielhkuo/crewclock/summary"
)

const (
	// Summaries without a range cover the last week
	defaultSummaryDays = 7
	// Overview activity feed looks this far back
	overviewDays = 7
	// The next event after a manual entry is searched within this window
	alternationWindow = 30 * 24 * time.Hour
)

type AdminHandler struct {
	store attendance.Store
	dir   *directory.Directory
	cfg   cliparse.Config
	tz    *time.Location
	now   func() time.Time
}

func NewAdminHandler(store attendance.Store, dir *directory.Directory, cfg cliparse.Config) *AdminHandler {
	tz, err := cfg.TimeLocation()
	if err != nil {
		// ParseFlags already rejected bad zones
		tz = time.Local
	}
	return &AdminHandler{store: store, dir: dir, cfg: cfg, tz: tz, now: time.Now}
}

// authorize checks X-Admin-Key against locationID ("" needs the
// all-locations key) and writes 401 on failure
func (h *AdminHandler) authorize(w http.ResponseWriter, r *http.Request, locationID string) bool {
	adminKey := r.Header.Get("X-Admin-Key")
	if err := auth.Authorize(adminKey, locationID, h.cfg.AdminKeySalt); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin key")
		return false
	}
	return true
}

// GetSummary handles GET /admin/summary?from=&to=&location=
func (h *AdminHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summaries, ok := h.summaries(w, r)
	if !ok {
		return
	}
	middleware.JSONResponse(w, http.StatusOK, summaries)
}

// ExportSummary handles GET /admin/summary.xlsx?from=&to=&location=
func (h *AdminHandler) ExportSummary(w http.ResponseWriter, r *http.Request) {
	summaries, ok := h.summaries(w, r)
	if !ok {
		return
	}

	filename := fmt.Sprintf("attendance-%s.xlsx", h.now().In(h.tz).Format("20060102"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	if err := summary.WriteWorkbook(w, summaries, h.tz); err != nil {
		// Headers are gone by now; all we can do is log
		slog.Error("failed to write workbook", "error", err)
	}
}

func (h *AdminHandler) summaries(w http.ResponseWriter, r *http.Request) ([]models.CrewSummary, bool) {
	q := r.URL.Query()
	locationID := q.Get("location")
	if !h.authorize(w, r, locationID) {
		return nil, false
	}

	start, end, err := h.parseRange(q.Get("from"), q.Get("to"))
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return nil, false
	}

	events, err := h.store.ByTimeRange(r.Context(), locationID, start, end)
	if err != nil {
		slog.Error("failed to query events", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return nil, false
	}
	return summary.Summarize(events), true
}

// parseRange reads from/to as dates (YYYY-MM-DD, whole days in the
// configured zone) or RFC 3339 instants
func (h *AdminHandler) parseRange(from, to string) (time.Time, time.Time, error) {
	todayStart, todayEnd := summary.DayBounds(h.now(), h.tz)
	start := todayStart.AddDate(0, 0, -(defaultSummaryDays - 1))
	end := todayEnd

	if from != "" {
		t, err := h.parseBound(from, false)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid from: %w", err)
		}
		start = t
	}
	if to != "" {
		t, err := h.parseBound(to, true)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid to: %w", err)
		}
		end = t
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, errors.New("to is before from")
	}
	return start, end, nil
}

func (h *AdminHandler) parseBound(s string, endOfDay bool) (time.Time, error) {
	if d, err := time.ParseInLocation(time.DateOnly, s, h.tz); err == nil {
		start, end := summary.DayBounds(d, h.tz)
		if endOfDay {
			return end, nil
		}
		return start, nil
	}
	return time.Parse(time.RFC3339, s)
}

// GetOverview handles GET /admin/overview?location=
func (h *AdminHandler) GetOverview(w http.ResponseWriter, r *http.Request) {
	locationID := r.URL.Query().Get("location")
	if !h.authorize(w, r, locationID) {
		return
	}

	now := h.now()
	todayStart, todayEnd := summary.DayBounds(now, h.tz)

	events, err := h.store.ByTimeRange(r.Context(), locationID, todayStart.AddDate(0, 0, -(overviewDays-1)), todayEnd)
	if err != nil {
		slog.Error("failed to query events", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	total, err := h.dir.CountCrew(r.Context(), locationID)
	if err != nil {
		slog.Error("failed to count crew", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, summary.Overview(events, now, h.tz, total))
}

// StreamEvents handles GET /admin/events/stream?location=
// Sends today's events as Server-Sent Events, once on connect and again
// whenever they change, until the client goes away. At midnight the stream
// moves on to the new day and sends its snapshot.
func (h *AdminHandler) StreamEvents(w http.ResponseWriter, r *http.Request) {
	locationID := r.URL.Query().Get("location")
	if !h.authorize(w, r, locationID) {
		return
	}

	rc := http.NewResponseController(w)
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	for {
		now := h.now()
		start, end := summary.DayBounds(now, h.tz)
		filter := attendance.Filter{LocationID: locationID, Start: start, End: end}

		// end is the last millisecond of the day
		ctx, cancel := context.WithTimeout(r.Context(), end.Sub(now)+time.Millisecond)
		ok := h.streamDay(ctx, w, rc, filter)
		cancel()
		if !ok || r.Context().Err() != nil {
			return
		}
		slog.Debug("event stream rolled over", "location_id", locationID, "day", end.Add(time.Millisecond).Format(time.DateOnly))
	}
}

// streamDay writes snapshots for one day until ctx ends. It reports false
// when the stream cannot continue.
func (h *AdminHandler) streamDay(ctx context.Context, w http.ResponseWriter, rc *http.ResponseController, filter attendance.Filter) bool {
	for events, err := range h.store.Subscribe(ctx, filter) {
		if err != nil {
			slog.Error("event stream read failed", "error", err)
			fmt.Fprintf(w, "event: error\ndata: %s\n\n", "Database error")
			rc.Flush()
			return false
		}

		data, err := json.Marshal(events)
		if err != nil {
			slog.Error("failed to encode snapshot", "error", err)
			return false
		}
		if _, err := fmt.Fprintf(w, "event: snapshot\ndata: %s\n\n", data); err != nil {
			return false
		}
		if err := rc.Flush(); err != nil {
			slog.Warn("event stream flush failed", "error", err)
			return false
		}
	}
	return true
}

// CreateEvent handles POST /admin/events
// Manual entries are written even when they break in/out alternation; the
// response flags it instead
func (h *AdminHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req models.ManualEventRequest
	if !middleware.ParseAndValidate(w, r, &req) {
		return
	}
	ctx := r.Context()

	crew, err := h.dir.GetCrewMember(ctx, req.CrewMemberID)
	if errors.Is(err, directory.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Crew member not found")
		return
	}
	if err != nil {
		slog.Error("failed to query crew member", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if !h.authorize(w, r, crew.LocationID) {
		return
	}

	loc, err := h.dir.GetLocation(ctx, crew.LocationID)
	if err != nil {
		slog.Error("failed to query location", "error", err, "location_id", crew.LocationID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	ev := models.AttendanceEvent{
		CrewMemberID:   crew.ID,
		CrewMemberName: crew.Name,
		LocationID:     loc.ID,
		LocationName:   loc.Name,
		Timestamp:      h.now(),
		Type:           req.Type,
		Shift:          strings.TrimSpace(req.Shift),
		Notes:          req.Notes,
	}
	if req.Timestamp != nil {
		ev.Timestamp = *req.Timestamp
	}

	history, err := h.store.ByTimeRange(ctx, "", ev.Timestamp, ev.Timestamp.Add(alternationWindow))
	if err != nil {
		slog.Error("failed to query history", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	// The previous event may be arbitrarily old
	prev, err := h.store.LastBefore(ctx, crew.ID, ev.Timestamp)
	if err != nil {
		slog.Error("failed to query previous event", "error", err, "crew_member_id", crew.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if prev != nil {
		history = append(history, *prev)
	}
	warning := attendance.BreaksAlternation(history, ev)

	id, err := h.store.Append(ctx, ev)
	if err != nil {
		writeStoreError(w, err, "Failed to record event")
		return
	}
	ev.ID = id

	if warning {
		slog.Warn("manual entry breaks in/out alternation",
			"event_id", id,
			"crew_member_id", crew.ID,
			"type", string(ev.Type),
			"timestamp", ev.Timestamp,
		)
	} else {
		slog.Info("manual entry recorded", "event_id", id, "crew_member_id", crew.ID)
	}

	middleware.JSONResponse(w, http.StatusCreated, models.ManualEventResponse{
		Event:              ev,
		AlternationWarning: warning,
	})
}

// UpdateNotes handles PATCH /admin/events/{id}/notes
// Events carry no separate owner check, so this needs the all-locations key
func (h *AdminHandler) UpdateNotes(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, "") {
		return
	}

	eventID := r.PathValue("id")
	var req models.UpdateNotesRequest
	if !middleware.ParseAndValidate(w, r, &req) {
		return
	}

	if err := h.store.UpdateNotes(r.Context(), eventID, req.Notes); err != nil {
		writeStoreError(w, err, "Failed to update notes")
		return
	}

	slog.Info("event notes updated", "event_id", eventID)
	w.WriteHeader(http.StatusNoContent)
}

func writeStoreError(w http.ResponseWriter, err error, msg string) {
	switch {
	case errors.Is(err, attendance.ErrNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "Event not found")
	case errors.Is(err, attendance.ErrInvalid):
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, attendance.ErrWriteDenied):
		middleware.ErrorResponse(w, http.StatusForbidden, msg)
	default:
		slog.Error(strings.ToLower(msg), "error", err)
		middleware.ErrorResponse(w, http.StatusServiceUnavailable, msg)
	}
}
