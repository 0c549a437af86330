package models

import (
	"time"

	"github.com/google/uuid"
)

// Outreach participation roles.
const (
	OutreachOrganizer = "organizer"
	OutreachAssistant = "assistant"
	OutreachAttendee  = "attendee"
)

// ValidOutreachRole reports whether role is a known participation role.
func ValidOutreachRole(role string) bool {
	switch role {
	case OutreachOrganizer, OutreachAssistant, OutreachAttendee:
		return true
	}
	return false
}

// OutreachEvent is a community event the team took part in.
type OutreachEvent struct {
	Record
	Name        string     `json:"name"`
	EventDate   time.Time  `json:"event_date"`
	HoursLength float64    `json:"hours_length"`
	CreatedBy   *uuid.UUID `json:"created_by"`
}

// OutreachParticipation records one user's part in an event and the points
// it earned.
type OutreachParticipation struct {
	Record
	EventID uuid.UUID `json:"event_id"`
	UserID  uuid.UUID `json:"user_id"`
	Role    string    `json:"role"` // organizer, assistant, attendee
	Points  int       `json:"points"`
}

// LeaderboardEntry is a user's point total across all events.
type LeaderboardEntry struct {
	UserID uuid.UUID `json:"user_id"`
	Name   string    `json:"name"`
	Points int       `json:"points"`
	Events int       `json:"events"`
}
