// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package attendance

import (
	"context"
	"fmt"
	"iter"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/crewclock/models"
)

// MemStore is an in-process Store. It backs tests and single-node demos;
// subscriptions are push based instead of polled.
type MemStore struct {
	mu      sync.Mutex
	events  []models.AttendanceEvent
	changed chan struct{} // closed on every mutation, then replaced

	writeErr error
	readErr  error
}

func NewMemStore(seed ...models.AttendanceEvent) *MemStore {
	m := &MemStore{changed: make(chan struct{})}
	for _, ev := range seed {
		if ev.ID == "" {
			ev.ID = uuid.NewString()
		}
		m.events = append(m.events, ev)
	}
	return m
}

// FailWrites makes Append and UpdateNotes return err until called with nil.
// err should wrap ErrWriteDenied or ErrWriteFailed.
func (m *MemStore) FailWrites(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeErr = err
}

// FailReads makes every read return err until called with nil
func (m *MemStore) FailReads(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readErr = err
}

// Len returns the number of stored events
func (m *MemStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}

func (m *MemStore) Append(ctx context.Context, ev models.AttendanceEvent) (string, error) {
	if err := validateEvent(ev); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.writeErr != nil {
		return "", m.writeErr
	}

	ev.ID = uuid.NewString()
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	m.events = append(m.events, ev)
	m.notifyLocked()

	return ev.ID, nil
}

func (m *MemStore) LastByCrewMember(ctx context.Context, crewMemberID string) (*models.AttendanceEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.readErr != nil {
		return nil, m.readErr
	}

	var last *models.AttendanceEvent
	for i := range m.events {
		ev := m.events[i]
		if ev.CrewMemberID != crewMemberID {
			continue
		}
		// Later appends win timestamp ties
		if last == nil || !ev.Timestamp.Before(last.Timestamp) {
			cp := ev
			last = &cp
		}
	}
	return last, nil
}

func (m *MemStore) LastBefore(ctx context.Context, crewMemberID string, t time.Time) (*models.AttendanceEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.readErr != nil {
		return nil, m.readErr
	}

	var last *models.AttendanceEvent
	for i := range m.events {
		ev := m.events[i]
		if ev.CrewMemberID != crewMemberID || ev.Timestamp.After(t) {
			continue
		}
		if last == nil || !ev.Timestamp.Before(last.Timestamp) {
			cp := ev
			last = &cp
		}
	}
	return last, nil
}

func (m *MemStore) ByTimeRange(ctx context.Context, locationID string, start, end time.Time) ([]models.AttendanceEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.readErr != nil {
		return nil, m.readErr
	}
	return m.rangeLocked(locationID, start, end), nil
}

func (m *MemStore) rangeLocked(locationID string, start, end time.Time) []models.AttendanceEvent {
	out := []models.AttendanceEvent{}
	for _, ev := range m.events {
		if matches(ev, locationID, start, end) {
			out = append(out, ev)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out
}

func (m *MemStore) Subscribe(ctx context.Context, f Filter) iter.Seq2[[]models.AttendanceEvent, error] {
	return func(yield func([]models.AttendanceEvent, error) bool) {
		first := true
		var last uint64
		for {
			m.mu.Lock()
			if m.readErr != nil {
				err := m.readErr
				m.mu.Unlock()
				yield(nil, err)
				return
			}
			events := m.rangeLocked(f.LocationID, f.Start, f.End)
			changed := m.changed
			m.mu.Unlock()

			if key := snapshotKey(events); first || key != last {
				first = false
				last = key
				if !yield(events, nil) {
					return
				}
			}

			select {
			case <-ctx.Done():
				return
			case <-changed:
			}
		}
	}
}

func (m *MemStore) UpdateNotes(ctx context.Context, eventID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.writeErr != nil {
		return m.writeErr
	}

	for i := range m.events {
		if m.events[i].ID != eventID {
			continue
		}
		if text == "" {
			m.events[i].Notes = nil
		} else {
			notes := text
			m.events[i].Notes = &notes
		}
		m.notifyLocked()
		return nil
	}
	return ErrNotFound
}

func (m *MemStore) notifyLocked() {
	close(m.changed)
	m.changed = make(chan struct{})
}
