// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package directory provides read-only lookups of locations, crew members
and broadcast messages.

The tables behind it are maintained by whatever administers the roster.
The clock engine and the HTTP handlers only ever read them, so Directory
has no write methods and no caching: every call is one query against the
shared *sql.DB, with the same $N placeholders on SQLite and PostgreSQL.

	dir := directory.New(db)

	loc, err := dir.GetLocation(ctx, locationID)
	if errors.Is(err, directory.ErrNotFound) {
		// unknown store
	}

# Single lookups

GetLocation and GetCrewMember return the row by id. A missing row wraps
ErrNotFound and names the id in the message; any other failure is a
query error and does not match ErrNotFound. Handlers rely on that split
to answer 404 or 500.

# Lists

Lists are never nil, so an empty result encodes as [] in JSON.

  - ListLocations returns every store ordered by name, then id.
  - ListCrewByLocation returns the crew assigned to one store, ordered by
    name, then id. An unknown location yields an empty list, not an error.
  - ListBroadcasts returns up to limit messages, newest first. Ties on
    created_at fall back to id so pages are stable. Timestamps are UTC.

CountCrew counts the crew assigned to a store, or the whole roster when
the location id is empty. The daily overview uses it as its denominator.

# Snapshots

Attendance events copy the crew member and store names at write time.
Renaming a crew member here changes what GetCrewMember returns from then
on but never rewrites the log.
*/
package directory
