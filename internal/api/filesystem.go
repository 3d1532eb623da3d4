package api

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"coursekit/internal/editor"
	"coursekit/internal/model"
)

// FileSystemAPI is a filesystem-based implementation of editor.CourseAPI for
// editing without a server. Every course tree is one JSON file:
//
//	<root>/
//	  <courseID>.json
//
// Each call reloads the directory, so several processes can share a root as
// long as they do not call concurrently.
type FileSystemAPI struct {
	root string
	ids  editor.IDGenerator
	mu   sync.Mutex
}

// NewFileSystemAPI creates a FileSystemAPI rooted at the given path.
func NewFileSystemAPI(root string, ids editor.IDGenerator) (*FileSystemAPI, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create course directory: %w", err)
	}
	return &FileSystemAPI{root: root, ids: ids}, nil
}

func (f *FileSystemAPI) ListCourses(ctx context.Context) (out []*model.Course, err error) {
	err = f.run(func(m *MemoryAPI) error {
		out, err = m.ListCourses(ctx)
		return err
	})
	return out, err
}

func (f *FileSystemAPI) CreateCourse(ctx context.Context, fields model.CourseFields) (out *model.Course, err error) {
	err = f.run(func(m *MemoryAPI) error {
		out, err = m.CreateCourse(ctx, fields)
		return err
	})
	return out, err
}

func (f *FileSystemAPI) GetCourse(ctx context.Context, id string) (out *model.Course, err error) {
	err = f.run(func(m *MemoryAPI) error {
		out, err = m.GetCourse(ctx, id)
		return err
	})
	return out, err
}

func (f *FileSystemAPI) UpdateCourse(ctx context.Context, id string, fields model.CourseFields) error {
	return f.run(func(m *MemoryAPI) error { return m.UpdateCourse(ctx, id, fields) })
}

func (f *FileSystemAPI) CreateModule(ctx context.Context, courseID string, fields model.ModuleFields) (out *model.Module, err error) {
	err = f.run(func(m *MemoryAPI) error {
		out, err = m.CreateModule(ctx, courseID, fields)
		return err
	})
	return out, err
}

func (f *FileSystemAPI) UpdateModule(ctx context.Context, id string, fields model.ModuleFields) error {
	return f.run(func(m *MemoryAPI) error { return m.UpdateModule(ctx, id, fields) })
}

func (f *FileSystemAPI) DeleteModule(ctx context.Context, id string) error {
	return f.run(func(m *MemoryAPI) error { return m.DeleteModule(ctx, id) })
}

func (f *FileSystemAPI) ReorderModules(ctx context.Context, courseID string, order []model.Position) error {
	return f.run(func(m *MemoryAPI) error { return m.ReorderModules(ctx, courseID, order) })
}

func (f *FileSystemAPI) CreateLesson(ctx context.Context, moduleID string, fields model.LessonFields) (out *model.Lesson, err error) {
	err = f.run(func(m *MemoryAPI) error {
		out, err = m.CreateLesson(ctx, moduleID, fields)
		return err
	})
	return out, err
}

func (f *FileSystemAPI) UpdateLesson(ctx context.Context, id string, fields model.LessonFields) error {
	return f.run(func(m *MemoryAPI) error { return m.UpdateLesson(ctx, id, fields) })
}

func (f *FileSystemAPI) DeleteLesson(ctx context.Context, id string) error {
	return f.run(func(m *MemoryAPI) error { return m.DeleteLesson(ctx, id) })
}

func (f *FileSystemAPI) ReorderLessons(ctx context.Context, moduleID string, order []model.Position) error {
	return f.run(func(m *MemoryAPI) error { return m.ReorderLessons(ctx, moduleID, order) })
}

// run loads every course into a MemoryAPI, applies fn and writes back the
// courses fn changed.
func (f *FileSystemAPI) run(fn func(m *MemoryAPI) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	mem, err := f.load()
	if err != nil {
		return err
	}
	if err := fn(mem); err != nil {
		return err
	}
	for _, c := range mem.takeTouched() {
		if err := f.writeCourse(c); err != nil {
			return err
		}
	}
	return nil
}

func (f *FileSystemAPI) load() (*MemoryAPI, error) {
	entries, err := os.ReadDir(f.root)
	if err != nil {
		return nil, fmt.Errorf("reading course directory: %w", err)
	}

	mem := NewMemoryAPI(f.ids)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(f.root, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading course file: %w", err)
		}
		var c model.Course
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("decoding course file %s: %w", e.Name(), err)
		}
		mem.Seed(&c)
	}
	return mem, nil
}

// writeCourse writes a course file using atomic write (temp file + rename).
func (f *FileSystemAPI) writeCourse(c *model.Course) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding course %s: %w", c.ID, err)
	}

	tmpFile, err := os.CreateTemp(f.root, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write data: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, filepath.Join(f.root, c.ID+".json")); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}

// Compile-time check that FileSystemAPI implements editor.CourseAPI interface
var _ editor.CourseAPI = (*FileSystemAPI)(nil)
