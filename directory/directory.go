// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package directory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/danielhkuo/crewclock/models"
)

var ErrNotFound = errors.New("not found")

// Directory reads locations, crew members and broadcasts. Editing them
// happens elsewhere; the clock only ever reads.
type Directory struct {
	db *sql.DB
}

func New(db *sql.DB) *Directory {
	return &Directory{db: db}
}

func (d *Directory) GetLocation(ctx context.Context, id string) (models.Location, error) {
	var loc models.Location
	err := d.db.QueryRowContext(ctx, `
		SELECT id, name, latitude, longitude FROM location WHERE id = $1
	`, id).Scan(&loc.ID, &loc.Name, &loc.Latitude, &loc.Longitude)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Location{}, fmt.Errorf("location %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return models.Location{}, fmt.Errorf("failed to query location: %w", err)
	}
	return loc, nil
}

func (d *Directory) ListLocations(ctx context.Context) ([]models.Location, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, name, latitude, longitude FROM location ORDER BY name, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query locations: %w", err)
	}
	defer rows.Close()

	locations := []models.Location{}
	for rows.Next() {
		var loc models.Location
		if err := rows.Scan(&loc.ID, &loc.Name, &loc.Latitude, &loc.Longitude); err != nil {
			return nil, fmt.Errorf("failed to scan location: %w", err)
		}
		locations = append(locations, loc)
	}
	return locations, rows.Err()
}

func (d *Directory) GetCrewMember(ctx context.Context, id string) (models.CrewMember, error) {
	var crew models.CrewMember
	err := d.db.QueryRowContext(ctx, `
		SELECT id, name, location_id FROM crew_member WHERE id = $1
	`, id).Scan(&crew.ID, &crew.Name, &crew.LocationID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.CrewMember{}, fmt.Errorf("crew member %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return models.CrewMember{}, fmt.Errorf("failed to query crew member: %w", err)
	}
	return crew, nil
}

// ListCrewByLocation returns the crew assigned to a location, by name
func (d *Directory) ListCrewByLocation(ctx context.Context, locationID string) ([]models.CrewMember, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, name, location_id FROM crew_member WHERE location_id = $1 ORDER BY name, id
	`, locationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query crew: %w", err)
	}
	defer rows.Close()

	crew := []models.CrewMember{}
	for rows.Next() {
		var c models.CrewMember
		if err := rows.Scan(&c.ID, &c.Name, &c.LocationID); err != nil {
			return nil, fmt.Errorf("failed to scan crew member: %w", err)
		}
		crew = append(crew, c)
	}
	return crew, rows.Err()
}

// CountCrew counts crew assigned to locationID, or everyone when it is empty
func (d *Directory) CountCrew(ctx context.Context, locationID string) (int, error) {
	query := `SELECT COUNT(*) FROM crew_member`
	var args []any
	if locationID != "" {
		query += ` WHERE location_id = $1`
		args = append(args, locationID)
	}

	var n int
	if err := d.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count crew: %w", err)
	}
	return n, nil
}

// ListBroadcasts returns up to limit messages, newest first
func (d *Directory) ListBroadcasts(ctx context.Context, limit int) ([]models.BroadcastMessage, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, message, attachment_url, created_at
		FROM broadcast_message
		ORDER BY created_at DESC, id
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query broadcasts: %w", err)
	}
	defer rows.Close()

	messages := []models.BroadcastMessage{}
	for rows.Next() {
		var m models.BroadcastMessage
		if err := rows.Scan(&m.ID, &m.Message, &m.AttachmentURL, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan broadcast: %w", err)
		}
		m.Timestamp = m.Timestamp.UTC()
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
