package drafts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"coursekit/internal/editor"
)

const draftSuffix = ".json"

var errBlobNotFound = errors.New("blob not found")

// blobStore abstracts where draft documents live. Keys are flat names
// without path separators. Concurrency is managed by the caller (Store.mu).
type blobStore interface {
	// Put stores data under key, replacing any previous value.
	Put(ctx context.Context, key string, data []byte) error

	// Get returns the data stored under key, or errBlobNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes key. Removing a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Keys returns every stored key.
	Keys(ctx context.Context) ([]string, error)
}

// Store implements editor.DraftStore on top of a blobStore, one JSON
// document per course. This implementation is safe for concurrent use.
type Store struct {
	blobs blobStore
	mu    sync.Mutex
}

func newStore(blobs blobStore) *Store {
	return &Store{blobs: blobs}
}

// Load returns the draft for a course, or nil if there is none.
func (s *Store) Load(ctx context.Context, courseID string) (*editor.Draft, error) {
	key, err := draftKey(courseID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.blobs.Get(ctx, key)
	if errors.Is(err, errBlobNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading draft for course %s: %w", courseID, err)
	}

	var d editor.Draft
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("decoding draft for course %s: %w", courseID, err)
	}
	return &d, nil
}

// Save stores the draft, replacing any previous one for the course.
func (s *Store) Save(ctx context.Context, d *editor.Draft) error {
	key, err := draftKey(d.CourseID)
	if err != nil {
		return err
	}
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encoding draft for course %s: %w", d.CourseID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.blobs.Put(ctx, key, data); err != nil {
		return fmt.Errorf("saving draft for course %s: %w", d.CourseID, err)
	}
	return nil
}

// Delete removes the draft for a course.
func (s *Store) Delete(ctx context.Context, courseID string) error {
	key, err := draftKey(courseID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.blobs.Delete(ctx, key); err != nil {
		return fmt.Errorf("deleting draft for course %s: %w", courseID, err)
	}
	return nil
}

// List returns the course ids that have drafts, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys, err := s.blobs.Keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing drafts: %w", err)
	}

	var ids []string
	for _, k := range keys {
		if id, ok := strings.CutSuffix(k, draftSuffix); ok && id != "" {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids, nil
}

func draftKey(courseID string) (string, error) {
	if courseID == "" || strings.ContainsAny(courseID, `/\`) || courseID == "." || courseID == ".." {
		return "", fmt.Errorf("invalid course id %q for draft", courseID)
	}
	return courseID + draftSuffix, nil
}

// Compile-time check that Store implements editor.DraftStore interface
var _ editor.DraftStore = (*Store)(nil)
