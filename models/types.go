package models

import (
	"time"

	"github.com/danielhkuo/crewclock/geo"
)

// ActionType is the kind of an attendance event
type ActionType string

// Attendance action constants
const (
	ActionIn  ActionType = "in"
	ActionOut ActionType = "out"
)

// Valid reports whether a is one of the known action types
func (a ActionType) Valid() bool {
	return a == ActionIn || a == ActionOut
}

// Label returns "In" or "Out" for display
func (a ActionType) Label() string {
	if a == ActionOut {
		return "Out"
	}
	return "In"
}

// Default shift labels offered to crew
var DefaultShifts = []string{"Shift 1", "Shift 2"}

// Request types

type ClockRequest struct {
	LocationID    string   `json:"location_id" validate:"required"`
	CrewMemberID  string   `json:"crew_member_id" validate:"required"`
	Latitude      *float64 `json:"latitude,omitempty" validate:"required_with=Longitude,omitempty,latitude"`
	Longitude     *float64 `json:"longitude,omitempty" validate:"required_with=Latitude,omitempty,longitude"`
	LocationError string   `json:"location_error,omitempty" validate:"omitempty,oneof=permission_denied timeout unavailable"`
	Shift         string   `json:"shift,omitempty" validate:"max=64"`
	Photo         string   `json:"photo,omitempty"` // data URL of the captured frame
	CameraError   string   `json:"camera_error,omitempty" validate:"omitempty,oneof=permission_denied unsupported"`
}

type ManualEventRequest struct {
	CrewMemberID string     `json:"crew_member_id" validate:"required"`
	Type         ActionType `json:"type" validate:"required,oneof=in out"`
	Timestamp    *time.Time `json:"timestamp,omitempty"`
	Shift        string     `json:"shift" validate:"max=64"`
	Notes        *string    `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

type UpdateNotesRequest struct {
	Notes string `json:"notes" validate:"max=2000"`
}

// Response types

type Blocker struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ClockStatusResponse struct {
	State      string     `json:"state"`
	NextAction ActionType `json:"next_action,omitempty"`
	DistanceKm *float64   `json:"distance_km,omitempty"`
	Distance   string     `json:"distance,omitempty"` // two decimals, e.g. "2.22"
	Eligible   bool       `json:"eligible"`
	Blockers   []Blocker  `json:"blockers"`
	Message    string     `json:"message"`
}

type ClockResponse struct {
	EventID   string     `json:"event_id"`
	Type      ActionType `json:"type"`
	Timestamp time.Time  `json:"timestamp"`
	Message   string     `json:"message"`
}

type ManualEventResponse struct {
	Event              AttendanceEvent `json:"event"`
	AlternationWarning bool            `json:"alternation_warning"`
}

// Domain types

type Location struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Point returns the location's coordinates
func (l Location) Point() geo.Point {
	return geo.Point{Lat: l.Latitude, Lon: l.Longitude}
}

type CrewMember struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	LocationID string `json:"location_id"`
}

// AttendanceEvent is one entry of the append-only attendance log.
// Names are snapshots taken at write time; only Notes may change afterwards.
type AttendanceEvent struct {
	ID             string     `json:"id"`
	CrewMemberID   string     `json:"crew_member_id"`
	CrewMemberName string     `json:"crew_member_name"`
	LocationID     string     `json:"location_id"`
	LocationName   string     `json:"location_name"`
	Timestamp      time.Time  `json:"timestamp"`
	Type           ActionType `json:"type"`
	PhotoEvidence  *string    `json:"photo_evidence,omitempty"` // absent for manual entries
	Shift          string     `json:"shift"`
	Notes          *string    `json:"notes,omitempty"`
	IPHash         *string    `json:"-"` // Never expose in JSON
	UserAgent      *string    `json:"-"` // Never expose in JSON
}

type BroadcastMessage struct {
	ID            string    `json:"id"`
	Message       string    `json:"message"`
	AttachmentURL *string   `json:"attachment_url,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

type BroadcastItem struct {
	BroadcastMessage
	Ago string `json:"ago"`
}

// Summary types

type CrewSummary struct {
	CrewMemberID   string            `json:"crew_member_id"`
	CrewMemberName string            `json:"crew_member_name"`
	LocationName   string            `json:"location_name"`
	ClockInCount   int               `json:"clock_in_count"`
	RepeatedPairs  int               `json:"repeated_pairs"` // adjacent events of the same type
	Logs           []AttendanceEvent `json:"logs"`
}

type LocationHeadcount struct {
	LocationID   string   `json:"location_id"`
	LocationName string   `json:"location_name"`
	Present      int      `json:"present"`
	CrewIDs      []string `json:"crew_ids"` // sorted
}

type ActivityItem struct {
	Event AttendanceEvent `json:"event"`
	Ago   string          `json:"ago"`
}

type DailyOverview struct {
	Day               string              `json:"day"` // YYYY-MM-DD in the configured zone
	TotalCrew         int                 `json:"total_crew"`
	PresentCount      int                 `json:"present_count"`
	PresentCrewIDs    []string            `json:"present_crew_ids"`
	PresentByLocation []LocationHeadcount `json:"present_by_location"`
	Recent            []ActivityItem      `json:"recent"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
