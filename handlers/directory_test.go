// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/crewclock/models"
	"github.com/danielhkuo/crewclock/testutil"
)

func TestListLocationsAndCrew(t *testing.T) {
	env := setupEnv(t)
	handler := NewDirectoryHandler(env.dir)

	testutil.CreateTestCrew(t, env.db, env.locID, "Bima")
	other := testutil.CreateTestLocation(t, env.db, "Aardvark Mall", 1, 1)
	testutil.CreateTestCrew(t, env.db, other, "Citra")

	t.Run("locations sorted by name", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ListLocations(w, httptest.NewRequest("GET", "/locations", nil))

		testutil.AssertStatus(t, w, http.StatusOK)

		var locations []models.Location
		testutil.AssertJSON(t, w, &locations)
		if len(locations) != 2 || locations[0].Name != "Aardvark Mall" {
			t.Errorf("Unexpected locations %+v", locations)
		}
	})

	t.Run("crew of one location", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/locations/"+env.locID+"/crew", nil)
		req.SetPathValue("id", env.locID)
		w := httptest.NewRecorder()

		handler.ListCrew(w, req)

		testutil.AssertStatus(t, w, http.StatusOK)

		var crew []models.CrewMember
		testutil.AssertJSON(t, w, &crew)
		if len(crew) != 2 || crew[0].Name != "Ayu" || crew[1].Name != "Bima" {
			t.Errorf("Unexpected crew %+v", crew)
		}
	})

	t.Run("unknown location", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/locations/missing/crew", nil)
		req.SetPathValue("id", "missing")
		w := httptest.NewRecorder()

		handler.ListCrew(w, req)

		testutil.AssertStatus(t, w, http.StatusNotFound)
	})
}

func TestListBroadcasts(t *testing.T) {
	env := setupEnv(t)
	handler := NewDirectoryHandler(env.dir)

	now := time.Now()
	testutil.CreateTestBroadcast(t, env.db, "Stock take on Friday", now.Add(-2*time.Hour))
	testutil.CreateTestBroadcast(t, env.db, "New uniforms", now.Add(-10*time.Minute))

	w := httptest.NewRecorder()
	handler.ListBroadcasts(w, httptest.NewRequest("GET", "/broadcasts", nil))

	testutil.AssertStatus(t, w, http.StatusOK)

	var items []models.BroadcastItem
	testutil.AssertJSON(t, w, &items)

	if len(items) != 2 {
		t.Fatalf("Expected 2 broadcasts, got %d", len(items))
	}
	if items[0].Message != "New uniforms" || items[0].Ago != "10 minutes ago" {
		t.Errorf("Unexpected newest broadcast %+v", items[0])
	}
	if items[1].Ago != "2 hours ago" {
		t.Errorf("Unexpected age %q", items[1].Ago)
	}

	t.Run("limit", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ListBroadcasts(w, httptest.NewRequest("GET", "/broadcasts?limit=1", nil))

		var items []models.BroadcastItem
		testutil.AssertJSON(t, w, &items)
		if len(items) != 1 {
			t.Errorf("Expected 1 broadcast, got %d", len(items))
		}
	})

	t.Run("invalid limit", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ListBroadcasts(w, httptest.NewRequest("GET", "/broadcasts?limit=zero", nil))
		testutil.AssertStatus(t, w, http.StatusBadRequest)
	})
}

func TestListShifts(t *testing.T) {
	handler := NewDirectoryHandler(nil)

	w := httptest.NewRecorder()
	handler.ListShifts(w, httptest.NewRequest("GET", "/shifts", nil))

	var shifts []string
	testutil.AssertJSON(t, w, &shifts)
	if len(shifts) != 2 || shifts[0] != "Shift 1" || shifts[1] != "Shift 2" {
		t.Errorf("Unexpected shifts %v", shifts)
	}
}
