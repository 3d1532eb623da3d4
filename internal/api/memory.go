package api

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"coursekit/internal/editor"
	"coursekit/internal/model"
)

// MemoryAPI is an in-memory implementation of editor.CourseAPI.
// It keeps the full course trees in memory, making it useful for testing and
// for offline editing. This implementation is safe for concurrent use.
type MemoryAPI struct {
	ids     editor.IDGenerator
	courses map[string]*model.Course // course id -> full tree
	touched map[string]bool          // course ids changed since the last flush
	mu      sync.RWMutex
}

// NewMemoryAPI creates an empty MemoryAPI. A nil generator uses random UUIDs.
func NewMemoryAPI(ids editor.IDGenerator) *MemoryAPI {
	if ids == nil {
		ids = editor.UUIDGenerator{}
	}
	return &MemoryAPI{
		ids:     ids,
		courses: make(map[string]*model.Course),
		touched: make(map[string]bool),
	}
}

// Seed installs a course tree as-is, replacing any course with the same id.
func (m *MemoryAPI) Seed(c *model.Course) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.courses[c.ID] = c.Clone()
}

func (m *MemoryAPI) ListCourses(ctx context.Context) ([]*model.Course, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*model.Course, 0, len(m.courses))
	for _, c := range m.courses {
		meta := c.Clone()
		meta.Modules = nil
		out = append(out, meta)
	}
	slices.SortFunc(out, func(a, b *model.Course) int {
		if n := strings.Compare(a.Title, b.Title); n != 0 {
			return n
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (m *MemoryAPI) CreateCourse(ctx context.Context, f model.CourseFields) (*model.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := &model.Course{ID: m.ids.New(), Modules: []*model.Module{}}
	applyCourseFields(c, f)
	if c.Status == "" {
		c.Status = model.StatusDraft
	}
	m.courses[c.ID] = c
	m.touched[c.ID] = true
	return c.Clone(), nil
}

func (m *MemoryAPI) GetCourse(ctx context.Context, id string) (*model.Course, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.courses[id]
	if !ok {
		return nil, notFound("course", id)
	}
	return c.Clone(), nil
}

func (m *MemoryAPI) UpdateCourse(ctx context.Context, id string, f model.CourseFields) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.courses[id]
	if !ok {
		return notFound("course", id)
	}
	applyCourseFields(c, f)
	m.touched[id] = true
	return nil
}

func (m *MemoryAPI) CreateModule(ctx context.Context, courseID string, f model.ModuleFields) (*model.Module, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.courses[courseID]
	if !ok {
		return nil, notFound("course", courseID)
	}
	mod := &model.Module{ID: m.ids.New(), CourseID: courseID, Lessons: []*model.Lesson{}}
	applyModuleFields(mod, f)
	mod.Position = len(c.Modules)
	c.Modules = append(c.Modules, mod)
	m.touched[courseID] = true
	return mod.Clone(), nil
}

func (m *MemoryAPI) UpdateModule(ctx context.Context, id string, f model.ModuleFields) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, _, mod := m.findModule(id)
	if mod == nil {
		return notFound("module", id)
	}
	pos := mod.Position
	applyModuleFields(mod, f)
	mod.Position = pos
	m.touched[c.ID] = true
	return nil
}

func (m *MemoryAPI) DeleteModule(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, i, mod := m.findModule(id)
	if mod == nil {
		return notFound("module", id)
	}
	c.Modules = slices.Delete(c.Modules, i, i+1)
	for j, rest := range c.Modules {
		rest.Position = j
	}
	m.touched[c.ID] = true
	return nil
}

func (m *MemoryAPI) ReorderModules(ctx context.Context, courseID string, order []model.Position) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.courses[courseID]
	if !ok {
		return notFound("course", courseID)
	}
	if err := applyOrder(c.Modules, order, func(mod *model.Module) string { return mod.ID },
		func(mod *model.Module, p int) { mod.Position = p }); err != nil {
		return fmt.Errorf("reordering modules of course %s: %w", courseID, err)
	}
	slices.SortStableFunc(c.Modules, func(a, b *model.Module) int { return a.Position - b.Position })
	m.touched[courseID] = true
	return nil
}

func (m *MemoryAPI) CreateLesson(ctx context.Context, moduleID string, f model.LessonFields) (*model.Lesson, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, _, mod := m.findModule(moduleID)
	if mod == nil {
		return nil, notFound("module", moduleID)
	}
	l := &model.Lesson{ID: m.ids.New(), ModuleID: moduleID}
	applyLessonFields(l, f)
	l.Position = len(mod.Lessons)
	mod.Lessons = append(mod.Lessons, l)
	m.touched[c.ID] = true
	return l.Clone(), nil
}

func (m *MemoryAPI) UpdateLesson(ctx context.Context, id string, f model.LessonFields) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, _, _, l := m.findLesson(id)
	if l == nil {
		return notFound("lesson", id)
	}
	pos := l.Position
	applyLessonFields(l, f)
	l.Position = pos
	m.touched[c.ID] = true
	return nil
}

func (m *MemoryAPI) DeleteLesson(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, mod, i, l := m.findLesson(id)
	if l == nil {
		return notFound("lesson", id)
	}
	mod.Lessons = slices.Delete(mod.Lessons, i, i+1)
	for j, rest := range mod.Lessons {
		rest.Position = j
	}
	m.touched[c.ID] = true
	return nil
}

func (m *MemoryAPI) ReorderLessons(ctx context.Context, moduleID string, order []model.Position) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, _, mod := m.findModule(moduleID)
	if mod == nil {
		return notFound("module", moduleID)
	}
	if err := applyOrder(mod.Lessons, order, func(l *model.Lesson) string { return l.ID },
		func(l *model.Lesson, p int) { l.Position = p }); err != nil {
		return fmt.Errorf("reordering lessons of module %s: %w", moduleID, err)
	}
	slices.SortStableFunc(mod.Lessons, func(a, b *model.Lesson) int { return a.Position - b.Position })
	m.touched[c.ID] = true
	return nil
}

// takeTouched returns the courses changed since the previous call and clears the set.
func (m *MemoryAPI) takeTouched() []*model.Course {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*model.Course
	for id := range m.touched {
		if c, ok := m.courses[id]; ok {
			out = append(out, c.Clone())
		}
	}
	clear(m.touched)
	return out
}

func (m *MemoryAPI) findModule(id string) (*model.Course, int, *model.Module) {
	for _, c := range m.courses {
		for i, mod := range c.Modules {
			if mod.ID == id {
				return c, i, mod
			}
		}
	}
	return nil, -1, nil
}

func (m *MemoryAPI) findLesson(id string) (*model.Course, *model.Module, int, *model.Lesson) {
	for _, c := range m.courses {
		for _, mod := range c.Modules {
			for i, l := range mod.Lessons {
				if l.ID == id {
					return c, mod, i, l
				}
			}
		}
	}
	return nil, nil, -1, nil
}

// applyOrder sets positions from a reorder payload. Every id in the payload
// must belong to items.
func applyOrder[T any](items []T, order []model.Position, id func(T) string, set func(T, int)) error {
	byID := make(map[string]T, len(items))
	for _, item := range items {
		byID[id(item)] = item
	}
	for _, p := range order {
		item, ok := byID[p.ID]
		if !ok {
			return notFound("entry", p.ID)
		}
		set(item, p.Position)
	}
	return nil
}

func applyCourseFields(c *model.Course, f model.CourseFields) {
	c.Title = f.Title
	c.Description = copyString(f.Description)
	if f.Status != "" {
		c.Status = f.Status
	}
	c.Difficulty = f.Difficulty
	c.CategoryID = copyString(f.CategoryID)
	c.TagIDs = append([]string(nil), f.TagIDs...)
}

func applyModuleFields(m *model.Module, f model.ModuleFields) {
	m.Title = f.Title
	m.Description = copyString(f.Description)
	m.Required = f.Required
	m.Position = f.Position
}

func applyLessonFields(l *model.Lesson, f model.LessonFields) {
	l.Title = f.Title
	l.Description = copyString(f.Description)
	l.Kind = f.Kind
	l.ContentRef = copyString(f.ContentRef)
	l.DurationMinutes = f.DurationMinutes
	l.Required = f.Required
	l.Preview = f.Preview
	l.Position = f.Position
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, editor.ErrNotFound)
}

// Compile-time check that MemoryAPI implements editor.CourseAPI interface
var _ editor.CourseAPI = (*MemoryAPI)(nil)
