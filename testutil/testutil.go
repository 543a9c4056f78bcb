// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/crewclock/cliparse"
	"github.com/danielhkuo/crewclock/db"
	"github.com/danielhkuo/crewclock/models"
)

// SetupTestDB creates a fresh SQLite database file with the full schema.
// The file lives under t.TempDir and is removed with it.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, _ := SetupTestDBFile(t)
	return conn
}

// SetupTestDBFile is SetupTestDB but also returns the file path, for tests
// that need a second connection to the same database.
func SetupTestDBFile(t *testing.T) (*sql.DB, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "crewclock.db")
	conn, err := db.Open(db.TypeSQLite, "file:"+path)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn, path
}

// OpenReadOnly opens an existing test database with writes disabled, so
// every INSERT or UPDATE fails with SQLITE_READONLY.
func OpenReadOnly(t *testing.T, path string) *sql.DB {
	t.Helper()

	conn, err := db.Open(db.TypeSQLite, "file:"+path+"?_pragma=query_only(1)")
	if err != nil {
		t.Fatalf("Failed to open read-only database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:             3318,
		DatabaseType:     db.TypeSQLite,
		AdminKeySalt:     "test-admin-salt",
		GeofenceRadiusKm: cliparse.DefaultGeofenceRadiusKm,
		PhotoQuality:     cliparse.DefaultPhotoQuality,
		PhotoMaxWidth:    cliparse.DefaultPhotoMaxWidth,
		PhotoMirror:      cliparse.DefaultPhotoMirror,
		LocationTimeout:  time.Second,
		Timezone:         "UTC",
		PollInterval:     20 * time.Millisecond,
		LogLevel:         "debug",
	}
}

// CreateTestLocation inserts a location and returns its ID
func CreateTestLocation(t *testing.T, db *sql.DB, name string, lat, lon float64) string {
	t.Helper()

	id := uuid.NewString()
	_, err := db.Exec(`
		INSERT INTO location (id, name, latitude, longitude)
		VALUES ($1, $2, $3, $4)
	`, id, name, lat, lon)
	if err != nil {
		t.Fatalf("Failed to create test location: %v", err)
	}

	return id
}

// CreateTestCrew inserts a crew member assigned to locationID and returns its ID
func CreateTestCrew(t *testing.T, db *sql.DB, locationID, name string) string {
	t.Helper()

	id := uuid.NewString()
	_, err := db.Exec(`
		INSERT INTO crew_member (id, name, location_id)
		VALUES ($1, $2, $3)
	`, id, name, locationID)
	if err != nil {
		t.Fatalf("Failed to create test crew member: %v", err)
	}

	return id
}

// InsertTestEvent writes an event row directly, bypassing the store.
// A zero timestamp becomes now and an empty ID gets a fresh one.
func InsertTestEvent(t *testing.T, db *sql.DB, ev models.AttendanceEvent) string {
	t.Helper()

	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}

	_, err := db.Exec(`
		INSERT INTO attendance_event (id, crew_member_id, crew_member_name, location_id, location_name,
			occurred_at, type, photo_evidence, shift, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, ev.ID, ev.CrewMemberID, ev.CrewMemberName, ev.LocationID, ev.LocationName,
		ev.Timestamp.UTC(), string(ev.Type), ev.PhotoEvidence, ev.Shift, ev.Notes)
	if err != nil {
		t.Fatalf("Failed to insert test event: %v", err)
	}

	return ev.ID
}

// CreateTestBroadcast inserts a broadcast message and returns its ID
func CreateTestBroadcast(t *testing.T, db *sql.DB, message string, at time.Time) string {
	t.Helper()

	id := uuid.NewString()
	_, err := db.Exec(`
		INSERT INTO broadcast_message (id, message, created_at)
		VALUES ($1, $2, $3)
	`, id, message, at.UTC())
	if err != nil {
		t.Fatalf("Failed to create test broadcast: %v", err)
	}

	return id
}

// TestImage returns a small opaque image whose left half is red and right
// half is blue, which makes mirroring observable.
func TestImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBA{R: 255, A: 255}
			if x >= w/2 {
				c = color.NRGBA{B: 255, A: 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// TestPhoto returns TestImage encoded as a PNG data URL, the form clients upload
func TestPhoto(t *testing.T) string {
	t.Helper()

	var buf bytes.Buffer
	if err := png.Encode(&buf, TestImage(64, 48)); err != nil {
		t.Fatalf("Failed to encode test photo: %v", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

// Float returns a pointer to v, for optional coordinates in requests
func Float(v float64) *float64 {
	return &v
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
