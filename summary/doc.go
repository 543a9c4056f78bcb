// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package summary turns attendance events into per-crew summaries, the
daily overview and an .xlsx export.

Everything here is a pure function over events already read from the
store. Callers choose the range and the time zone; nothing in this
package queries the log or reads the clock.

# Crew summaries

Summarize groups events by crew member id:

	events, err := store.ByTimeRange(ctx, locationID, from, to)
	summaries := summary.Summarize(events)

Each CrewSummary follows these rules:

  - Names come from the first event for that crew member in the input
    order. Crew member and store names are snapshots taken at write time,
    so a rename or reassignment inside the range shows whichever snapshot
    the input listed first. Pass events newest first to get the latest.
  - ClockInCount counts "in" events only.
  - Logs are sorted newest first. Equal timestamps keep input order.
  - RepeatedPairs counts adjacent logs of the same type, as manual
    entries can break the in/out alternation.

Summaries are ordered by crew member name, then id.

# Days

DayBounds returns the calendar day containing now in the given zone, from
00:00:00.000 to 23:59:59.999. Both bounds are inclusive, matching
attendance.Filter. The zone decides what "today" means; a server in UTC
and a store in Asia/Jakarta disagree for seven hours a day.

# Overview

Overview reports who is present today:

  - A crew member is present with at least one "in" event inside today's
    bounds. Clocking out later does not remove them.
  - PresentCrewIDs lists them sorted by id.
  - PresentByLocation gives one headcount per store with at least one
    present crew member, ordered by store name, then id. Each carries the
    sorted ids of the crew present there.
  - Recent holds the RecentLimit (5) newest events of any day, each with
    a humanized age from Ago, e.g. "10 minutes ago".

# Export

WriteWorkbook writes summaries as an .xlsx file with excelize. The
Summary sheet has one row per crew member; the Logs sheet has one row per
event in summary order. Times are rendered in the zone passed in.
*/
package summary
