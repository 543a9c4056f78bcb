// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package attendance

import (
	"sort"

	"github.com/danielhkuo/crewclock/models"
)

// NextAction applies the toggle rule: "in" when there is no prior event or
// the last one was "out", otherwise "out".
func NextAction(last *models.AttendanceEvent) models.ActionType {
	if last == nil || last.Type == models.ActionOut {
		return models.ActionIn
	}
	return models.ActionOut
}

// BreaksAlternation reports whether inserting candidate into one crew
// member's history puts two events of the same type next to each other.
// history may be in any order and must include the candidate's nearest
// earlier event when one exists. An "out" with no earlier event would open
// the history with a clock-out, so it is flagged too.
func BreaksAlternation(history []models.AttendanceEvent, candidate models.AttendanceEvent) bool {
	var prev, next *models.AttendanceEvent
	for i := range history {
		ev := &history[i]
		if ev.CrewMemberID != candidate.CrewMemberID || ev.ID == candidate.ID {
			continue
		}
		if !ev.Timestamp.After(candidate.Timestamp) {
			if prev == nil || !ev.Timestamp.Before(prev.Timestamp) {
				prev = ev
			}
		} else if next == nil || ev.Timestamp.Before(next.Timestamp) {
			next = ev
		}
	}

	if prev == nil && candidate.Type == models.ActionOut {
		return true
	}
	if prev != nil && prev.Type == candidate.Type {
		return true
	}
	return next != nil && next.Type == candidate.Type
}

// CountRepeats returns how many adjacent pairs in a single crew member's
// events share the same type once ordered by timestamp
func CountRepeats(events []models.AttendanceEvent) int {
	sorted := make([]models.AttendanceEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	repeats := 0
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Type == sorted[i-1].Type {
			repeats++
		}
	}
	return repeats
}
