// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database schema creation.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.
The same DDL runs on PostgreSQL (lib/pq) and SQLite (modernc.org/sqlite).

# Tables

  - location: Stores with their WGS84 coordinates
  - crew_member: Crew with their assigned location
  - attendance_event: Append-only clock in/out log
  - broadcast_message: Announcements shown on the clock screen

# Relationships

	location 1──* crew_member

attendance_event deliberately has no foreign keys. Each row carries
snapshots of the crew member and location names taken at write time, so
history keeps reading the same after a rename or reassignment.

# Indexes

  - crew_member.location_id
  - attendance_event.(crew_member_id, occurred_at): last event lookup
  - attendance_event.(location_id, occurred_at): per-store range queries
  - attendance_event.occurred_at: all-store range queries
  - broadcast_message.created_at
*/
package db
