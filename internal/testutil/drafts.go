package testutil

import (
	"coursekit/internal/drafts"
)

// NewTestDraftStore creates a new in-memory draft store for testing.
func NewTestDraftStore() *drafts.Store {
	return drafts.NewMemoryStore()
}
