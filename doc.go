// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the crewclock API server.

crewclock records when retail crew clock in and out of their stores. A
clock action is only accepted when the crew member is within the geofence
of their store, has taken a photo and picked a shift. Whether it is an "in"
or an "out" follows from their last recorded event.

# Starting the Server

	DATABASE_URL=file:crewclock.db ADMIN_KEY_SALT=... go run .

Or against PostgreSQL with flags:

	go run . -t postgres -d "postgres://..." --admin-salt ...

A .env file in the working directory is loaded first; variables already
set in the environment win.

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite file or PostgreSQL connection string
  - ADMIN_KEY_SALT (--admin-salt): Secret for admin key HMAC

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - GEOFENCE_RADIUS_KM (--radius-km): default 1.0
  - PHOTO_QUALITY, PHOTO_MAX_WIDTH, PHOTO_MIRROR: encoding of photo evidence
  - LOCATION_TIMEOUT (--location-timeout): default 10s
  - TZ_NAME (--timezone): zone that defines "today" for summaries
  - SUBSCRIBE_POLL_INTERVAL (--poll-interval): live stream refresh
  - LOG_LEVEL (--log-level): debug, info, warn or error

# Architecture

  - clock: the eligibility state machine behind every clock action
  - capture, locfeed: the camera and position inputs it gates on
  - attendance: the append-only event log (SQL and in-memory stores)
  - summary: per-crew summaries, daily overview and xlsx export
  - directory: read access to stores, crew and broadcasts
  - handlers, router, middleware: the HTTP surface
  - auth, db, cliparse, geo, models: supporting packages

See package documentation for each component.
*/
package main
