package editor

import (
	"errors"
	"fmt"
)

var (
	// ErrSaveInProgress is returned when a save is requested while another
	// save of the same session is still running.
	ErrSaveInProgress = errors.New("save already in progress")

	// ErrPersisted is returned by local-only removals for entities that exist
	// on the server. Those go through the session's delete path.
	ErrPersisted = errors.New("entity is persisted on the server")

	// ErrPlaceholderFromServer is returned when a backend answers a create
	// call with an id carrying the placeholder prefix.
	ErrPlaceholderFromServer = errors.New("server returned a placeholder identifier")

	// ErrNotFound is returned by backends for unknown course, module or lesson ids.
	ErrNotFound = errors.New("not found")
)

// SaveError reports the first failing network step of a save or delete.
// The tree keeps whatever reconciliation happened before the failure.
type SaveError struct {
	Step     string // "create", "update", "delete", "reorder", "refresh"
	Kind     string // "course", "module" or "lesson"
	EntityID string // local id at the time of the call
	Err      error
}

func (e *SaveError) Error() string {
	if e.EntityID == "" {
		return fmt.Sprintf("%s %s failed: %v", e.Step, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s %s %s failed: %v", e.Step, e.Kind, e.EntityID, e.Err)
}

func (e *SaveError) Unwrap() error {
	return e.Err
}
