// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package attendance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/danielhkuo/crewclock/models"
)

// DefaultPollInterval is how often SQL subscriptions re-read the log
const DefaultPollInterval = 2 * time.Second

// SQLStore implements Store on PostgreSQL or SQLite.
// Timestamps are written in UTC so range comparisons hold on both.
type SQLStore struct {
	db           *sql.DB
	pollInterval time.Duration
}

func NewSQLStore(db *sql.DB, pollInterval time.Duration) *SQLStore {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	return &SQLStore{db: db, pollInterval: pollInterval}
}

const eventColumns = `id, crew_member_id, crew_member_name, location_id, location_name,
	occurred_at, type, photo_evidence, shift, notes, ip_hash, user_agent`

func (s *SQLStore) Append(ctx context.Context, ev models.AttendanceEvent) (string, error) {
	if err := validateEvent(ev); err != nil {
		return "", err
	}

	ev.ID = uuid.NewString()
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO attendance_event (`+eventColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, ev.ID, ev.CrewMemberID, ev.CrewMemberName, ev.LocationID, ev.LocationName,
		ev.Timestamp.UTC(), string(ev.Type), ev.PhotoEvidence, ev.Shift, ev.Notes, ev.IPHash, ev.UserAgent)
	if err != nil {
		err = classifyWriteError(err)
		slog.Error("failed to append attendance event", "error", err, "crew_member_id", ev.CrewMemberID)
		return "", err
	}

	return ev.ID, nil
}

func (s *SQLStore) LastByCrewMember(ctx context.Context, crewMemberID string) (*models.AttendanceEvent, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+eventColumns+`
		FROM attendance_event
		WHERE crew_member_id = $1
		ORDER BY occurred_at DESC
		LIMIT 1
	`, crewMemberID)

	ev, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query last event: %w", err)
	}
	return &ev, nil
}

func (s *SQLStore) LastBefore(ctx context.Context, crewMemberID string, t time.Time) (*models.AttendanceEvent, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+eventColumns+`
		FROM attendance_event
		WHERE crew_member_id = $1 AND occurred_at <= $2
		ORDER BY occurred_at DESC
		LIMIT 1
	`, crewMemberID, t.UTC())

	ev, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query previous event: %w", err)
	}
	return &ev, nil
}

func (s *SQLStore) ByTimeRange(ctx context.Context, locationID string, start, end time.Time) ([]models.AttendanceEvent, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM attendance_event
		WHERE occurred_at >= $1 AND occurred_at <= $2`
	args := []any{start.UTC(), end.UTC()}
	if locationID != "" {
		query += ` AND location_id = $3`
		args = append(args, locationID)
	}
	query += ` ORDER BY occurred_at DESC, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	events := []models.AttendanceEvent{}
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}

	return events, nil
}

// Subscribe polls ByTimeRange. Consumers see changes within one poll
// interval, which is the eventual consistency the log promises.
func (s *SQLStore) Subscribe(ctx context.Context, f Filter) iter.Seq2[[]models.AttendanceEvent, error] {
	return func(yield func([]models.AttendanceEvent, error) bool) {
		ticker := time.NewTicker(s.pollInterval)
		defer ticker.Stop()

		first := true
		var last uint64
		for {
			events, err := s.ByTimeRange(ctx, f.LocationID, f.Start, f.End)
			if err != nil {
				if ctx.Err() == nil {
					yield(nil, err)
				}
				return
			}

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
			case <-ticker.C:
			}
		}
	}
}

func (s *SQLStore) UpdateNotes(ctx context.Context, eventID, text string) error {
	var notes *string
	if text != "" {
		notes = &text
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE attendance_event SET notes = $1 WHERE id = $2
	`, notes, eventID)
	if err != nil {
		err = classifyWriteError(err)
		slog.Error("failed to update notes", "error", err, "event_id", eventID)
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (models.AttendanceEvent, error) {
	var ev models.AttendanceEvent
	var typ string
	err := row.Scan(
		&ev.ID, &ev.CrewMemberID, &ev.CrewMemberName, &ev.LocationID, &ev.LocationName,
		&ev.Timestamp, &typ, &ev.PhotoEvidence, &ev.Shift, &ev.Notes, &ev.IPHash, &ev.UserAgent,
	)
	if err != nil {
		return models.AttendanceEvent{}, err
	}
	ev.Type = models.ActionType(typ)
	ev.Timestamp = ev.Timestamp.UTC()
	return ev, nil
}

// classifyWriteError separates authorization failures from everything else
// so access-control problems are diagnosable on their own.
func classifyWriteError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Name() == "insufficient_privilege" {
		return fmt.Errorf("%w: %w", ErrWriteDenied, err)
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() & 0xff {
		case sqlite3.SQLITE_READONLY, sqlite3.SQLITE_PERM, sqlite3.SQLITE_AUTH:
			return fmt.Errorf("%w: %w", ErrWriteDenied, err)
		}
	}

	return fmt.Errorf("%w: %w", ErrWriteFailed, err)
}
