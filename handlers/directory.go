// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/danielhkuo/crewclock/directory"
	"github.com/danielhkuo/crewclock/middleware"
	"github.com/danielhkuo/crewclock/models"
	"github.com/danielhkuo/crewclock/summary"
)

const (
	defaultBroadcastLimit = 20
	maxBroadcastLimit     = 100
)

type DirectoryHandler struct {
	dir *directory.Directory
}

func NewDirectoryHandler(dir *directory.Directory) *DirectoryHandler {
	return &DirectoryHandler{dir: dir}
}

// ListLocations handles GET /locations
func (h *DirectoryHandler) ListLocations(w http.ResponseWriter, r *http.Request) {
	locations, err := h.dir.ListLocations(r.Context())
	if err != nil {
		slog.Error("failed to list locations", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, locations)
}

// ListCrew handles GET /locations/{id}/crew
func (h *DirectoryHandler) ListCrew(w http.ResponseWriter, r *http.Request) {
	locationID := r.PathValue("id")

	if _, err := h.dir.GetLocation(r.Context(), locationID); err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			middleware.ErrorResponse(w, http.StatusNotFound, "Location not found")
			return
		}
		slog.Error("failed to query location", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	crew, err := h.dir.ListCrewByLocation(r.Context(), locationID)
	if err != nil {
		slog.Error("failed to list crew", "error", err, "location_id", locationID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, crew)
}

// ListBroadcasts handles GET /broadcasts?limit=
func (h *DirectoryHandler) ListBroadcasts(w http.ResponseWriter, r *http.Request) {
	limit := defaultBroadcastLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			middleware.ErrorResponse(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxBroadcastLimit)
	}

	messages, err := h.dir.ListBroadcasts(r.Context(), limit)
	if err != nil {
		slog.Error("failed to list broadcasts", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	now := time.Now()
	items := make([]models.BroadcastItem, len(messages))
	for i, m := range messages {
		items[i] = models.BroadcastItem{BroadcastMessage: m, Ago: summary.Ago(m.Timestamp, now)}
	}
	middleware.JSONResponse(w, http.StatusOK, items)
}

// ListShifts handles GET /shifts
func (h *DirectoryHandler) ListShifts(w http.ResponseWriter, r *http.Request) {
	middleware.JSONResponse(w, http.StatusOK, models.DefaultShifts)
}
