package editor

import (
	"slices"
	"strings"

	"coursekit/internal/model"
)

// Defaults holds the initial values for entities added in the editor.
// Titles are never blank so a freshly added entity always passes validation.
type Defaults struct {
	ModuleTitle string
	LessonTitle string
	LessonKind  model.ContentKind
}

// DefaultDefaults returns the built-in initial values.
func DefaultDefaults() Defaults {
	return Defaults{
		ModuleTitle: "Untitled module",
		LessonTitle: "Untitled lesson",
		LessonKind:  model.KindText,
	}
}

// CourseUpdate is a partial update of course metadata. Nil fields are left
// unchanged; Clear* flags reset nullable fields to "not set".
type CourseUpdate struct {
	Title            *string
	Description      *string
	ClearDescription bool
	Status           *model.CourseStatus
	Difficulty       *model.Difficulty
	CategoryID       *string
	ClearCategory    bool
	TagIDs           *[]string
}

// ModuleUpdate is a partial update of a module. It never touches position or lessons.
type ModuleUpdate struct {
	Title            *string
	Description      *string
	ClearDescription bool
	Required         *bool
}

// LessonUpdate is a partial update of a lesson. It never touches position or parent.
type LessonUpdate struct {
	Title            *string
	Description      *string
	ClearDescription bool
	Kind             *model.ContentKind
	ContentRef       *string
	ClearContentRef  bool
	DurationMinutes  *int
	Required         *bool
	Preview          *bool
}

// Tree is the in-memory ordered tree of modules and lessons for one course.
// It is the single source of truth for the editor and is owned by one
// goroutine. Operations on ids that are not in the tree are no-ops.
type Tree struct {
	course   *model.Course
	ids      *Allocator
	defaults Defaults
}

// NewTree builds a tree from a course. The course is copied and its modules and
// lessons are ordered by position and restamped densely.
func NewTree(course *model.Course, ids *Allocator, defaults Defaults) *Tree {
	if ids == nil {
		ids = NewAllocator(nil)
	}
	t := &Tree{ids: ids, defaults: defaults}
	t.install(course)
	return t
}

// Replace installs course as the new tree content, discarding local state.
func (t *Tree) Replace(course *model.Course) {
	t.install(course)
}

func (t *Tree) install(course *model.Course) {
	c := course.Clone()
	if c == nil {
		c = &model.Course{}
	}
	slices.SortStableFunc(c.Modules, func(a, b *model.Module) int { return a.Position - b.Position })
	restampModules(c.Modules)
	for _, m := range c.Modules {
		slices.SortStableFunc(m.Lessons, func(a, b *model.Lesson) int { return a.Position - b.Position })
		restampLessons(m.Lessons)
		for _, l := range m.Lessons {
			l.ModuleID = m.ID
		}
		m.CourseID = c.ID
	}
	t.course = c
}

// Course returns a deep copy of the current tree.
func (t *Tree) Course() *model.Course {
	return t.course.Clone()
}

// CourseID returns the id of the edited course.
func (t *Tree) CourseID() string {
	return t.course.ID
}

// Module returns a copy of the module with the given id, or nil.
func (t *Tree) Module(id string) *model.Module {
	_, m := t.findModule(id)
	return m.Clone()
}

// Lesson returns a copy of the lesson with the given id, or nil.
func (t *Tree) Lesson(id string) *model.Lesson {
	_, _, l := t.findLesson(id)
	return l.Clone()
}

// UpdateCourse merges metadata fields into the course.
func (t *Tree) UpdateCourse(u CourseUpdate) error {
	next := t.course.Clone()
	if u.Title != nil {
		next.Title = strings.TrimSpace(*u.Title)
	}
	if u.ClearDescription {
		next.Description = nil
	} else if u.Description != nil {
		next.Description = strPtr(*u.Description)
	}
	if u.Status != nil {
		next.Status = *u.Status
	}
	if u.Difficulty != nil {
		next.Difficulty = *u.Difficulty
	}
	if u.ClearCategory {
		next.CategoryID = nil
	} else if u.CategoryID != nil {
		next.CategoryID = strPtr(*u.CategoryID)
	}
	if u.TagIDs != nil {
		next.TagIDs = append([]string{}, (*u.TagIDs)...)
	}

	if err := ValidateCourse(next.ID, next.Fields()); err != nil {
		return err
	}
	t.course.Title = next.Title
	t.course.Description = next.Description
	t.course.Status = next.Status
	t.course.Difficulty = next.Difficulty
	t.course.CategoryID = next.CategoryID
	t.course.TagIDs = next.TagIDs
	return nil
}

// AddModule appends a new placeholder module and returns its id.
func (t *Tree) AddModule() string {
	m := &model.Module{
		ID:       t.newID(),
		CourseID: t.course.ID,
		Title:    t.defaults.ModuleTitle,
		Position: len(t.course.Modules),
		Lessons:  []*model.Lesson{},
	}
	t.course.Modules = append(t.course.Modules, m)
	return m.ID
}

// UpdateModule merges fields into a module. It reports false when the module
// is not in the tree. A validation error leaves the module unchanged.
func (t *Tree) UpdateModule(id string, u ModuleUpdate) (bool, error) {
	_, m := t.findModule(id)
	if m == nil {
		return false, nil
	}

	next := m.Clone()
	if u.Title != nil {
		next.Title = strings.TrimSpace(*u.Title)
	}
	if u.ClearDescription {
		next.Description = nil
	} else if u.Description != nil {
		next.Description = strPtr(*u.Description)
	}
	if u.Required != nil {
		next.Required = *u.Required
	}
	if err := ValidateModule(id, next.Fields()); err != nil {
		return true, err
	}

	m.Title = next.Title
	m.Description = next.Description
	m.Required = next.Required
	return true, nil
}

// RemoveModule removes a placeholder module. Persisted modules are left in
// place and ErrPersisted is returned.
func (t *Tree) RemoveModule(id string) (bool, error) {
	if _, m := t.findModule(id); m == nil {
		return false, nil
	}
	if !IsPlaceholder(id) {
		return false, ErrPersisted
	}
	return t.dropModule(id), nil
}

// AddLesson appends a new placeholder lesson to a module. It reports false
// when the module is not in the tree.
func (t *Tree) AddLesson(moduleID string) (string, bool) {
	_, m := t.findModule(moduleID)
	if m == nil {
		return "", false
	}
	l := &model.Lesson{
		ID:       t.newID(),
		ModuleID: m.ID,
		Title:    t.defaults.LessonTitle,
		Kind:     t.defaults.LessonKind,
		Position: len(m.Lessons),
	}
	m.Lessons = append(m.Lessons, l)
	return l.ID, true
}

// UpdateLesson merges fields into a lesson. It reports false when the lesson
// is not in the tree. A validation error leaves the lesson unchanged.
func (t *Tree) UpdateLesson(id string, u LessonUpdate) (bool, error) {
	_, _, l := t.findLesson(id)
	if l == nil {
		return false, nil
	}

	next := l.Clone()
	if u.Title != nil {
		next.Title = strings.TrimSpace(*u.Title)
	}
	if u.ClearDescription {
		next.Description = nil
	} else if u.Description != nil {
		next.Description = strPtr(*u.Description)
	}
	if u.Kind != nil {
		next.Kind = *u.Kind
	}
	if u.ClearContentRef {
		next.ContentRef = nil
	} else if u.ContentRef != nil {
		next.ContentRef = strPtr(*u.ContentRef)
	}
	if u.DurationMinutes != nil {
		next.DurationMinutes = *u.DurationMinutes
	}
	if u.Required != nil {
		next.Required = *u.Required
	}
	if u.Preview != nil {
		next.Preview = *u.Preview
	}
	if err := ValidateLesson(id, next.Fields()); err != nil {
		return true, err
	}

	*l = *next
	return true, nil
}

// RemoveLesson removes a placeholder lesson. Persisted lessons are left in
// place and ErrPersisted is returned.
func (t *Tree) RemoveLesson(id string) (bool, error) {
	if _, _, l := t.findLesson(id); l == nil {
		return false, nil
	}
	if !IsPlaceholder(id) {
		return false, ErrPersisted
	}
	return t.dropLesson(id), nil
}

// MoveModule moves a module before another module.
func (t *Tree) MoveModule(fromID, toID string) bool {
	out, ok := Move(t.course.Modules, moduleID, fromID, toID)
	if !ok {
		return false
	}
	restampModules(out)
	t.course.Modules = out
	return true
}

// MoveModuleToEnd moves a module after the last module.
func (t *Tree) MoveModuleToEnd(id string) bool {
	out, ok := MoveToEnd(t.course.Modules, moduleID, id)
	if !ok {
		return false
	}
	restampModules(out)
	t.course.Modules = out
	return true
}

// MoveLesson moves a lesson before another lesson of the same module.
func (t *Tree) MoveLesson(modID, fromID, toID string) bool {
	_, m := t.findModule(modID)
	if m == nil {
		return false
	}
	out, ok := Move(m.Lessons, lessonID, fromID, toID)
	if !ok {
		return false
	}
	restampLessons(out)
	m.Lessons = out
	return true
}

// MoveLessonToEnd moves a lesson after the last lesson of its module.
func (t *Tree) MoveLessonToEnd(modID, id string) bool {
	_, m := t.findModule(modID)
	if m == nil {
		return false
	}
	out, ok := MoveToEnd(m.Lessons, lessonID, id)
	if !ok {
		return false
	}
	restampLessons(out)
	m.Lessons = out
	return true
}

// newID mints a placeholder id not already used in the tree. A resumed draft
// can hold ids minted by an earlier process.
func (t *Tree) newID() string {
	for {
		id := t.ids.NewPlaceholderID()
		if _, m := t.findModule(id); m != nil {
			continue
		}
		if _, _, l := t.findLesson(id); l != nil {
			continue
		}
		return id
	}
}

// dropModule removes a module regardless of its id kind.
func (t *Tree) dropModule(id string) bool {
	i, m := t.findModule(id)
	if m == nil {
		return false
	}
	t.course.Modules = slices.Delete(t.course.Modules, i, i+1)
	restampModules(t.course.Modules)
	return true
}

// dropLesson removes a lesson regardless of its id kind.
func (t *Tree) dropLesson(id string) bool {
	m, i, l := t.findLesson(id)
	if l == nil {
		return false
	}
	m.Lessons = slices.Delete(m.Lessons, i, i+1)
	restampLessons(m.Lessons)
	return true
}

// reconcileModule replaces a placeholder module id with its real id, both on
// the module and as the parent reference of its lessons.
func (t *Tree) reconcileModule(oldID, realID string) {
	_, m := t.findModule(oldID)
	if m == nil {
		return
	}
	m.ID = realID
	for _, l := range m.Lessons {
		l.ModuleID = realID
	}
}

// reconcileLesson replaces a placeholder lesson id with its real id.
func (t *Tree) reconcileLesson(oldID, realID string) {
	if _, _, l := t.findLesson(oldID); l != nil {
		l.ID = realID
	}
}

func (t *Tree) findModule(id string) (int, *model.Module) {
	for i, m := range t.course.Modules {
		if m.ID == id {
			return i, m
		}
	}
	return -1, nil
}

func (t *Tree) findLesson(id string) (*model.Module, int, *model.Lesson) {
	for _, m := range t.course.Modules {
		for i, l := range m.Lessons {
			if l.ID == id {
				return m, i, l
			}
		}
	}
	return nil, -1, nil
}

func moduleID(m *model.Module) string { return m.ID }
func lessonID(l *model.Lesson) string { return l.ID }

func restampModules(ms []*model.Module) {
	Restamp(ms, func(m *model.Module, i int) { m.Position = i })
}

func restampLessons(ls []*model.Lesson) {
	Restamp(ls, func(l *model.Lesson, i int) { l.Position = i })
}

func strPtr(s string) *string { return &s }
