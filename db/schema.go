// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
// The DDL sticks to the subset shared by PostgreSQL and SQLite.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const schema = `
-- Locations (reference data, edited by the admin surface)
CREATE TABLE IF NOT EXISTS location (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    latitude DOUBLE PRECISION NOT NULL CHECK (latitude >= -90 AND latitude <= 90),
    longitude DOUBLE PRECISION NOT NULL CHECK (longitude >= -180 AND longitude <= 180)
);

-- Crew members (reference data)
CREATE TABLE IF NOT EXISTS crew_member (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    location_id TEXT NOT NULL REFERENCES location(id)
);

CREATE INDEX IF NOT EXISTS idx_crew_member_location_id ON crew_member(location_id);

-- Attendance events (append-only; notes is the only mutable column)
-- No foreign keys: names are snapshots and must survive reference edits.
CREATE TABLE IF NOT EXISTS attendance_event (
    id TEXT PRIMARY KEY,
    crew_member_id TEXT NOT NULL,
    crew_member_name TEXT NOT NULL,
    location_id TEXT NOT NULL,
    location_name TEXT NOT NULL,
    occurred_at TIMESTAMP NOT NULL,
    type TEXT NOT NULL CHECK (type IN ('in', 'out')),
    photo_evidence TEXT,
    shift TEXT NOT NULL DEFAULT '',
    notes TEXT,
    ip_hash TEXT,
    user_agent TEXT
);

CREATE INDEX IF NOT EXISTS idx_attendance_event_crew ON attendance_event(crew_member_id, occurred_at);
CREATE INDEX IF NOT EXISTS idx_attendance_event_location ON attendance_event(location_id, occurred_at);
CREATE INDEX IF NOT EXISTS idx_attendance_event_occurred_at ON attendance_event(occurred_at);

-- Broadcast messages (read-only feed for the clock screen)
CREATE TABLE IF NOT EXISTS broadcast_message (
    id TEXT PRIMARY KEY,
    message TEXT NOT NULL,
    attachment_url TEXT,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_broadcast_message_created_at ON broadcast_message(created_at);
`
