package editor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"coursekit/internal/model"
)

// Snapshot is the serialized state of a course at the last successful load or
// save. It is never modified; Commit produces a new one.
type Snapshot []byte

// Commit serializes the course as the new baseline.
func Commit(c *model.Course) (Snapshot, error) {
	data, err := json.Marshal(normalize(c))
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}
	return Snapshot(data), nil
}

// IsDirty reports whether the course differs from the snapshot in any field,
// including module and lesson positions. An empty snapshot is always dirty.
func IsDirty(current *model.Course, snap Snapshot) bool {
	if len(snap) == 0 {
		return true
	}
	data, err := json.Marshal(normalize(current))
	if err != nil {
		return true
	}
	return !bytes.Equal(data, snap)
}

// MetadataDirty reports whether the course metadata (everything but the
// module tree) differs from the snapshot.
func MetadataDirty(current *model.Course, snap Snapshot) bool {
	var base model.Course
	if len(snap) == 0 || json.Unmarshal(snap, &base) != nil {
		return true
	}
	cur := normalize(current)
	cur.Modules = nil
	base.Modules = nil

	a, errA := json.Marshal(cur)
	b, errB := json.Marshal(&base)
	if errA != nil || errB != nil {
		return true
	}
	return !bytes.Equal(a, b)
}

// normalize returns a copy with the representations the data model does not
// distinguish collapsed: tag order, nil vs empty tags, empty vs nil content
// references and nil vs empty child lists. Nil and empty descriptions stay
// distinct.
func normalize(c *model.Course) *model.Course {
	n := c.Clone()
	if n == nil {
		return &model.Course{}
	}
	if n.TagIDs == nil {
		n.TagIDs = []string{}
	}
	sort.Strings(n.TagIDs)
	for _, m := range n.Modules {
		if m.Lessons == nil {
			m.Lessons = []*model.Lesson{}
		}
		for _, l := range m.Lessons {
			if l.ContentRef != nil && *l.ContentRef == "" {
				l.ContentRef = nil
			}
		}
	}
	return n
}
