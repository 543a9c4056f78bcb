// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the crewclock API.

# Handler Types

  - ClockHandler: eligibility checks and clock submissions
  - DirectoryHandler: stores, crew, broadcasts and shift labels
  - AdminHandler: summaries, overview, live stream and manual entries

Handlers take the attendance store, the directory and the config:

	clockHandler := handlers.NewClockHandler(store, dir, cfg)

# Clock Flow

Each request carries everything the device gathered: the selected store and
crew member, a position or the reason there is none, the shift and a photo
or the reason there is none. The handler replays it onto a fresh
clock.Session, so the server applies the same gates the device shows:

	POST /clock/status → Status (no write; every blocker listed)
	POST /clock        → Submit (201, or 422 with every blocker)

Store failures map to 403 (write denied) and 503 (write failed, retry).

# Admin

Admin routes require the X-Admin-Key header: the HMAC of a location id
(that location only) or of "*" (every location).

	GET   /admin/summary?from=&to=&location=
	GET   /admin/summary.xlsx?from=&to=&location=
	GET   /admin/overview?location=
	GET   /admin/events/stream?location=   (text/event-stream)
	POST  /admin/events                    (manual entry)
	PATCH /admin/events/{id}/notes

from and to accept YYYY-MM-DD (whole days in the configured zone) or RFC
3339 instants; without them summaries cover the last seven days.

Manual entries are not toggled. One that puts two events of the same type
next to each other is still stored and reported with alternation_warning.
*/
package handlers
