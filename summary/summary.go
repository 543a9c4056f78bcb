// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package summary

import (
	"sort"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/crewclock/attendance"
	"github.com/danielhkuo/crewclock/models"
)

// RecentLimit is how many events the activity feed shows
const RecentLimit = 5

// Summarize groups events per crew member. Names come from the first event
// seen for each crew member, so a mid-range rename or reassignment shows
// whichever snapshot came first in the input.
func Summarize(events []models.AttendanceEvent) []models.CrewSummary {
	index := make(map[string]int)
	summaries := []models.CrewSummary{}

	for _, ev := range events {
		i, ok := index[ev.CrewMemberID]
		if !ok {
			i = len(summaries)
			index[ev.CrewMemberID] = i
			summaries = append(summaries, models.CrewSummary{
				CrewMemberID:   ev.CrewMemberID,
				CrewMemberName: ev.CrewMemberName,
				LocationName:   ev.LocationName,
				Logs:           []models.AttendanceEvent{},
			})
		}
		s := &summaries[i]
		if ev.Type == models.ActionIn {
			s.ClockInCount++
		}
		s.Logs = append(s.Logs, ev)
	}

	for i := range summaries {
		s := &summaries[i]
		sortNewestFirst(s.Logs)
		s.RepeatedPairs = attendance.CountRepeats(s.Logs)
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		if summaries[i].CrewMemberName != summaries[j].CrewMemberName {
			return summaries[i].CrewMemberName < summaries[j].CrewMemberName
		}
		return summaries[i].CrewMemberID < summaries[j].CrewMemberID
	})

	return summaries
}

// DayBounds returns the calendar day containing now in loc, from
// 00:00:00.000 to 23:59:59.999
func DayBounds(now time.Time, loc *time.Location) (start, end time.Time) {
	now = now.In(loc)
	start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	end = start.AddDate(0, 0, 1).Add(-time.Millisecond)
	return start, end
}

// Overview computes who is present today and the latest activity.
// A crew member is present with at least one "in" event inside today's
// bounds. Recent draws from every event given, whatever the day.
func Overview(events []models.AttendanceEvent, now time.Time, loc *time.Location, totalCrew int) models.DailyOverview {
	start, end := DayBounds(now, loc)

	present := make(map[string]bool)
	byLocation := make(map[string]map[string]bool)
	locationNames := make(map[string]string)

	for _, ev := range events {
		if ev.Type != models.ActionIn || ev.Timestamp.Before(start) || ev.Timestamp.After(end) {
			continue
		}
		present[ev.CrewMemberID] = true

		if byLocation[ev.LocationID] == nil {
			byLocation[ev.LocationID] = make(map[string]bool)
			locationNames[ev.LocationID] = ev.LocationName
		}
		byLocation[ev.LocationID][ev.CrewMemberID] = true
	}

	overview := models.DailyOverview{
		Day:               start.Format(time.DateOnly),
		TotalCrew:         totalCrew,
		PresentCount:      len(present),
		PresentCrewIDs:    make([]string, 0, len(present)),
		PresentByLocation: make([]models.LocationHeadcount, 0, len(byLocation)),
		Recent:            Recent(events, now, RecentLimit),
	}

	for id := range present {
		overview.PresentCrewIDs = append(overview.PresentCrewIDs, id)
	}
	sort.Strings(overview.PresentCrewIDs)

	for id, crew := range byLocation {
		crewIDs := make([]string, 0, len(crew))
		for crewID := range crew {
			crewIDs = append(crewIDs, crewID)
		}
		sort.Strings(crewIDs)

		overview.PresentByLocation = append(overview.PresentByLocation, models.LocationHeadcount{
			LocationID:   id,
			LocationName: locationNames[id],
			Present:      len(crew),
			CrewIDs:      crewIDs,
		})
	}
	sort.Slice(overview.PresentByLocation, func(i, j int) bool {
		a, b := overview.PresentByLocation[i], overview.PresentByLocation[j]
		if a.LocationName != b.LocationName {
			return a.LocationName < b.LocationName
		}
		return a.LocationID < b.LocationID
	})

	return overview
}

// Recent returns up to limit events, newest first, with their age relative
// to now
func Recent(events []models.AttendanceEvent, now time.Time, limit int) []models.ActivityItem {
	sorted := make([]models.AttendanceEvent, len(events))
	copy(sorted, events)
	sortNewestFirst(sorted)

	if len(sorted) > limit {
		sorted = sorted[:limit]
	}

	items := make([]models.ActivityItem, len(sorted))
	for i, ev := range sorted {
		items[i] = models.ActivityItem{Event: ev, Ago: Ago(ev.Timestamp, now)}
	}
	return items
}

// Ago renders t relative to now, e.g. "5 minutes ago"
func Ago(t, now time.Time) string {
	return humanize.RelTime(t, now, "ago", "from now")
}

func sortNewestFirst(events []models.AttendanceEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.After(events[j].Timestamp)
	})
}
