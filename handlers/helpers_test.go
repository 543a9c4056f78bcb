// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"testing"

	"github.com/danielhkuo/crewclock/attendance"
	"github.com/danielhkuo/crewclock/cliparse"
	"github.com/danielhkuo/crewclock/directory"
	"github.com/danielhkuo/crewclock/models"
	"github.com/danielhkuo/crewclock/testutil"
)

// testEnv is one store at (0, 0) with a single crew member
type testEnv struct {
	db     *sql.DB
	cfg    cliparse.Config
	store  attendance.Store
	dir    *directory.Directory
	locID  string
	crewID string
}

func setupEnv(t *testing.T) testEnv {
	t.Helper()

	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	locID := testutil.CreateTestLocation(t, db, "Store 1", 0, 0)
	crewID := testutil.CreateTestCrew(t, db, locID, "Ayu")

	return testEnv{
		db:     db,
		cfg:    cfg,
		store:  attendance.NewSQLStore(db, cfg.PollInterval),
		dir:    directory.New(db),
		locID:  locID,
		crewID: crewID,
	}
}

func (e testEnv) clockHandler() *ClockHandler {
	return NewClockHandler(e.store, e.dir, e.cfg)
}

func (e testEnv) adminHandler() *AdminHandler {
	return NewAdminHandler(e.store, e.dir, e.cfg)
}

func blockerCodes(blockers []models.Blocker) []string {
	codes := make([]string, len(blockers))
	for i, b := range blockers {
		codes[i] = b.Code
	}
	return codes
}

func countEvents(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM attendance_event`).Scan(&n); err != nil {
		t.Fatalf("Failed to count events: %v", err)
	}
	return n
}
