// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON, checked with their validate tags:

  - ClockRequest: location_id, crew_member_id, position or location_error,
    shift, photo (data URL) or camera_error
  - ManualEventRequest: crew_member_id, type, timestamp, shift, notes
  - UpdateNotesRequest: notes

# Response Types

  - ClockStatusResponse: state, next_action, distance, eligible, blockers
  - ClockResponse: event_id, type, timestamp, message
  - ManualEventResponse: event, alternation_warning
  - ErrorResponse: error, message

# Domain Types

  - Location: a store and its coordinates
  - CrewMember: a person assigned to one store
  - AttendanceEvent: one entry of the attendance log, with name snapshots
  - BroadcastMessage: a notice shown to all crew
  - CrewSummary, DailyOverview: aggregated views for admins

# Constants

Action types:

	ActionIn  = "in"
	ActionOut = "out"

Shift labels are free text; DefaultShifts is what the picker offers.
*/
package models
