package editor

import (
	"context"
	"time"

	"coursekit/internal/model"
)

// Draft is the persisted form of an editing session: the working tree and the
// baseline snapshot it is compared against.
type Draft struct {
	CourseID  string        `json:"course_id"`
	Course    *model.Course `json:"course"`
	Baseline  Snapshot      `json:"baseline"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// DraftStore persists drafts between shell invocations, one per course.
type DraftStore interface {
	// Load returns the draft for a course, or nil if there is none.
	Load(ctx context.Context, courseID string) (*Draft, error)

	// Save stores the draft, replacing any previous one for the course.
	Save(ctx context.Context, d *Draft) error

	// Delete removes the draft for a course. Deleting a missing draft is not an error.
	Delete(ctx context.Context, courseID string) error

	// List returns the course ids that have drafts.
	List(ctx context.Context) ([]string, error)
}
