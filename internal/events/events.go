package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	ProfileUpdated Type = "profile.updated"
	ProfileDeleted Type = "profile.deleted"
	PictureUpdated Type = "picture.updated"
	PictureRemoved Type = "picture.removed"
	ProjectCreated Type = "project.created"
	ProjectUpdated Type = "project.updated"
	ProjectDeleted Type = "project.deleted"
)

// Event tells subscribers that a user's public profile data changed.
type Event struct {
	Type      Type       `json:"type"`
	UserID    uuid.UUID  `json:"user_id"`
	ProjectID *uuid.UUID `json:"project_id,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
	Origin    string     `json:"origin,omitempty"`
}

type Publisher interface {
	Publish(ctx context.Context, e Event)
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) {}

func ProfileEvent(t Type, userID uuid.UUID) Event {
	return Event{Type: t, UserID: userID}
}

func ProjectEvent(t Type, userID, projectID uuid.UUID) Event {
	return Event{Type: t, UserID: userID, ProjectID: &projectID}
}
