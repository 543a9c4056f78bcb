// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the crewclock API.

	mux := router.NewRouter(db, cfg)

# Endpoints

Health:

	GET /health

Directory (public):

	GET /locations           - Stores
	GET /locations/{id}/crew - Crew assigned to a store
	GET /broadcasts          - Notices, newest first
	GET /shifts              - Shift labels

Clock (public):

	POST /clock/status - Evaluate without writing
	POST /clock        - Record the next action

Admin (requires X-Admin-Key):

	GET   /admin/summary
	GET   /admin/summary.xlsx
	GET   /admin/overview
	GET   /admin/events/stream
	POST  /admin/events
	PATCH /admin/events/{id}/notes

The router builds one SQL attendance store and one directory over db and
shares them between handlers.
*/
package router
