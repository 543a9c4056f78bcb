// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/crewclock/auth"
	"github.com/danielhkuo/crewclock/testutil"
)

func TestHealthEndpoint(t *testing.T) {
	db := testutil.SetupTestDB(t)
	mux := NewRouter(db, testutil.GetTestConfig())

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if w.Body.String() != "OK" {
		t.Errorf("Expected body 'OK', got '%s'", w.Body.String())
	}
}

func TestRootEndpoint(t *testing.T) {
	db := testutil.SetupTestDB(t)
	mux := NewRouter(db, testutil.GetTestConfig())

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	expected := "crewclock API v1"
	if w.Body.String() != expected {
		t.Errorf("Expected body '%s', got '%s'", expected, w.Body.String())
	}
}

func TestUnknownPath(t *testing.T) {
	db := testutil.SetupTestDB(t)
	mux := NewRouter(db, testutil.GetTestConfig())

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("GET", "/polls", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown path, got %d", w.Code)
	}
}

func TestRouteExistence(t *testing.T) {
	db := testutil.SetupTestDB(t)
	mux := NewRouter(db, testutil.GetTestConfig())

	// 400, 401, 404 are all valid responses depending on handler logic
	testCases := []struct {
		method string
		path   string
	}{
		{"GET", "/health"},
		{"GET", "/"},

		{"GET", "/locations"},
		{"GET", "/locations/test-id/crew"},
		{"GET", "/broadcasts"},
		{"GET", "/shifts"},

		{"POST", "/clock/status"},
		{"POST", "/clock"},

		{"GET", "/admin/summary"},
		{"GET", "/admin/summary.xlsx"},
		{"GET", "/admin/overview"},
		{"POST", "/admin/events"},
		{"PATCH", "/admin/events/test-id/notes"},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			if w.Code == http.StatusMethodNotAllowed {
				t.Errorf("Route %s %s returned 405, expected route handler to exist", tc.method, tc.path)
			}
		})
	}
}

func TestSpecificMethodRouting(t *testing.T) {
	db := testutil.SetupTestDB(t)
	mux := NewRouter(db, testutil.GetTestConfig())

	testCases := []struct {
		name   string
		method string
		path   string
	}{
		{"POST to health endpoint", "POST", "/health"},
		{"GET to clock endpoint", "GET", "/clock"},
		{"DELETE an event", "DELETE", "/admin/events/test-id/notes"},
		{"PUT a location", "PUT", "/locations"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			if w.Code != http.StatusMethodNotAllowed {
				t.Errorf("Expected 405 for %s %s, got %d", tc.method, tc.path, w.Code)
			}
		})
	}
}

func TestPathParameterExtraction(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	mux := NewRouter(db, cfg)

	locID := testutil.CreateTestLocation(t, db, "Kemang", -6.26, 106.81)
	testutil.CreateTestCrew(t, db, locID, "Ayu")

	t.Run("location ID extraction", func(t *testing.T) {
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, httptest.NewRequest("GET", "/locations/"+locID+"/crew", nil))

		testutil.AssertStatus(t, w, http.StatusOK)
	})

	t.Run("event ID extraction", func(t *testing.T) {
		req := testutil.MakeRequest("PATCH", "/admin/events/missing/notes", map[string]string{"notes": "x"}, map[string]string{
			"X-Admin-Key": auth.GenerateAdminKey(auth.AllLocations, cfg.AdminKeySalt),
		})
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)

		// Reached the store with the id, which does not exist
		testutil.AssertStatus(t, w, http.StatusNotFound)
	})
}
