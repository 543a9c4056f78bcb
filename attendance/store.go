// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package attendance

import (
	"context"
	"errors"
	"hash/fnv"
	"iter"
	"time"

	"github.com/danielhkuo/crewclock/models"
)

var (
	// ErrWriteDenied means the backing store refused the write for authorization reasons
	ErrWriteDenied = errors.New("write denied")
	// ErrWriteFailed covers every other persistence failure
	ErrWriteFailed = errors.New("write failed")
	ErrNotFound    = errors.New("event not found")
	ErrInvalid     = errors.New("invalid event")
)

// Filter selects events for range queries and subscriptions.
// An empty LocationID matches every location. Both bounds are inclusive.
type Filter struct {
	LocationID string
	Start      time.Time
	End        time.Time
}

// Store is the attendance log the clock engine writes to and the
// summaries read from.
type Store interface {
	// Append assigns an id, persists the event and returns the id.
	// Failures wrap ErrWriteDenied or ErrWriteFailed.
	Append(ctx context.Context, ev models.AttendanceEvent) (string, error)

	// LastByCrewMember returns the most recent event for the crew member,
	// or nil when there is none.
	LastByCrewMember(ctx context.Context, crewMemberID string) (*models.AttendanceEvent, error)

	// LastBefore returns the crew member's most recent event at or before
	// t, or nil when there is none.
	LastBefore(ctx context.Context, crewMemberID string, t time.Time) (*models.AttendanceEvent, error)

	// ByTimeRange returns matching events ordered by timestamp, newest first.
	ByTimeRange(ctx context.Context, locationID string, start, end time.Time) ([]models.AttendanceEvent, error)

	// Subscribe yields a snapshot of the matching events right away and a
	// fresh one whenever the set changes. The sequence ends when ctx is
	// done, the consumer stops ranging, or a read fails (the error is
	// yielded first). Ranging again restarts it.
	Subscribe(ctx context.Context, f Filter) iter.Seq2[[]models.AttendanceEvent, error]

	// UpdateNotes replaces the notes of an existing event. Failures wrap
	// ErrNotFound, ErrWriteDenied or ErrWriteFailed.
	UpdateNotes(ctx context.Context, eventID, text string) error
}

func validateEvent(ev models.AttendanceEvent) error {
	switch {
	case ev.CrewMemberID == "":
		return errors.Join(ErrInvalid, errors.New("crew_member_id is required"))
	case ev.LocationID == "":
		return errors.Join(ErrInvalid, errors.New("location_id is required"))
	case !ev.Type.Valid():
		return errors.Join(ErrInvalid, errors.New("type must be in or out"))
	}
	return nil
}

// snapshotKey fingerprints a result set so pollers only emit on change.
// Notes are included because they are the one mutable field.
func snapshotKey(events []models.AttendanceEvent) uint64 {
	h := fnv.New64a()
	for _, ev := range events {
		h.Write([]byte(ev.ID))
		h.Write([]byte{0})
		if ev.Notes != nil {
			h.Write([]byte(*ev.Notes))
		}
		h.Write([]byte{0})
	}
	return h.Sum64()
}

func matches(ev models.AttendanceEvent, locationID string, start, end time.Time) bool {
	if locationID != "" && ev.LocationID != locationID {
		return false
	}
	return !ev.Timestamp.Before(start) && !ev.Timestamp.After(end)
}
