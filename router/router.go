// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/crewclock/attendance"
	"github.com/danielhkuo/crewclock/cliparse"
	"github.com/danielhkuo/crewclock/directory"
	"github.com/danielhkuo/crewclock/handlers"
	"github.com/danielhkuo/crewclock/middleware"
)

func NewRouter(db *sql.DB, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	store := attendance.NewSQLStore(db, cfg.PollInterval)
	dir := directory.New(db)

	// Initialize handlers
	clockHandler := handlers.NewClockHandler(store, dir, cfg)
	directoryHandler := handlers.NewDirectoryHandler(dir)
	adminHandler := handlers.NewAdminHandler(store, dir, cfg)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Directory (public, read only)
	mux.HandleFunc("GET /locations", middleware.WithLogging(directoryHandler.ListLocations))
	mux.HandleFunc("GET /locations/{id}/crew", middleware.WithLogging(directoryHandler.ListCrew))
	mux.HandleFunc("GET /broadcasts", middleware.WithLogging(directoryHandler.ListBroadcasts))
	mux.HandleFunc("GET /shifts", middleware.WithLogging(directoryHandler.ListShifts))

	// Clocking in and out
	mux.HandleFunc("POST /clock/status", middleware.WithLogging(clockHandler.Status))
	mux.HandleFunc("POST /clock", middleware.WithLogging(clockHandler.Submit))

	// Admin (requires X-Admin-Key)
	mux.HandleFunc("GET /admin/summary", middleware.WithLogging(adminHandler.GetSummary))
	mux.HandleFunc("GET /admin/summary.xlsx", middleware.WithLogging(adminHandler.ExportSummary))
	mux.HandleFunc("GET /admin/overview", middleware.WithLogging(adminHandler.GetOverview))
	mux.HandleFunc("GET /admin/events/stream", middleware.WithLogging(adminHandler.StreamEvents))
	mux.HandleFunc("POST /admin/events", middleware.WithLogging(adminHandler.CreateEvent))
	mux.HandleFunc("PATCH /admin/events/{id}/notes", middleware.WithLogging(adminHandler.UpdateNotes))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("crewclock API v1"))
	})

	return mux
}
