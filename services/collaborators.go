package services

import (
	"context"

	"lunchmate_server/models"
)

// UserDirectory is the external user-profile collaborator. Profiles are
// read-only here; the directory owns them.
type UserDirectory interface {
	GetEligibleUsers(ctx context.Context, date string) ([]models.UserProfile, error)
}

// ScheduleEvent is the payload handed to the schedule collaborator when a
// confirmed group becomes a calendar entry.
type ScheduleEvent struct {
	EventID   string   `json:"eventId"`
	Date      string   `json:"date"`
	Title     string   `json:"title"`
	MemberIDs []string `json:"memberIds"`
}

// ScheduleSink is the narrow interface to the schedule collaborator. It
// replaces direct cross-screen pushes into schedule state.
type ScheduleSink interface {
	HasConflict(ctx context.Context, userID, date string) (bool, error)
	Upsert(ctx context.Context, event ScheduleEvent) error
	Remove(ctx context.Context, eventID string) error
}
