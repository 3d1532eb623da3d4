package api

import (
	"context"
	"errors"
	"testing"

	"coursekit/internal/editor"
	"coursekit/internal/model"
	"coursekit/internal/testutil"
)

func newSeededMemoryAPI(t *testing.T) (*MemoryAPI, *model.Course) {
	t.Helper()
	m := NewMemoryAPI(testutil.NewStubIDGenerator())
	ctx := context.Background()

	c, err := m.CreateCourse(ctx, model.CourseFields{Title: "Go Basics"})
	if err != nil {
		t.Fatalf("CreateCourse() error = %v", err)
	}
	for _, title := range []string{"Intro", "Types", "Concurrency"} {
		if _, err := m.CreateModule(ctx, c.ID, model.ModuleFields{Title: title}); err != nil {
			t.Fatalf("CreateModule(%s) error = %v", title, err)
		}
	}
	return m, c
}

func moduleIDs(c *model.Course) []string {
	var ids []string
	for _, m := range c.Modules {
		ids = append(ids, m.ID)
	}
	return ids
}

func TestMemoryAPI_CreateCourseDefaultsToDraft(t *testing.T) {
	m := NewMemoryAPI(testutil.NewStubIDGenerator())

	c, err := m.CreateCourse(context.Background(), model.CourseFields{Title: "Go"})
	if err != nil {
		t.Fatalf("CreateCourse() error = %v", err)
	}
	if c.ID != "id-1" {
		t.Errorf("ID = %q, want id-1", c.ID)
	}
	if c.Status != model.StatusDraft {
		t.Errorf("Status = %q, want %q", c.Status, model.StatusDraft)
	}
}

func TestMemoryAPI_CreateModuleAppends(t *testing.T) {
	m, c := newSeededMemoryAPI(t)

	got, err := m.GetCourse(context.Background(), c.ID)
	if err != nil {
		t.Fatalf("GetCourse() error = %v", err)
	}
	if len(got.Modules) != 3 {
		t.Fatalf("len(Modules) = %d, want 3", len(got.Modules))
	}
	for i, mod := range got.Modules {
		if mod.Position != i {
			t.Errorf("Modules[%d].Position = %d, want %d", i, mod.Position, i)
		}
		if mod.CourseID != c.ID {
			t.Errorf("Modules[%d].CourseID = %q, want %q", i, mod.CourseID, c.ID)
		}
	}
}

func TestMemoryAPI_UpdateModuleKeepsPosition(t *testing.T) {
	m, c := newSeededMemoryAPI(t)
	ctx := context.Background()
	course, _ := m.GetCourse(ctx, c.ID)
	target := course.Modules[1]

	if err := m.UpdateModule(ctx, target.ID, model.ModuleFields{Title: "Types and Values", Position: 7}); err != nil {
		t.Fatalf("UpdateModule() error = %v", err)
	}

	course, _ = m.GetCourse(ctx, c.ID)
	if course.Modules[1].Title != "Types and Values" || course.Modules[1].Position != 1 {
		t.Errorf("Modules[1] = %+v, want renamed at position 1", course.Modules[1])
	}
}

func TestMemoryAPI_DeleteModuleRestamps(t *testing.T) {
	m, c := newSeededMemoryAPI(t)
	ctx := context.Background()
	course, _ := m.GetCourse(ctx, c.ID)

	if err := m.DeleteModule(ctx, course.Modules[0].ID); err != nil {
		t.Fatalf("DeleteModule() error = %v", err)
	}

	course, _ = m.GetCourse(ctx, c.ID)
	if len(course.Modules) != 2 {
		t.Fatalf("len(Modules) = %d, want 2", len(course.Modules))
	}
	for i, mod := range course.Modules {
		if mod.Position != i {
			t.Errorf("Modules[%d].Position = %d, want %d", i, mod.Position, i)
		}
	}
}

func TestMemoryAPI_ReorderModules(t *testing.T) {
	m, c := newSeededMemoryAPI(t)
	ctx := context.Background()
	course, _ := m.GetCourse(ctx, c.ID)
	ids := moduleIDs(course)

	order := []model.Position{{ID: ids[2], Position: 0}, {ID: ids[0], Position: 1}, {ID: ids[1], Position: 2}}
	if err := m.ReorderModules(ctx, c.ID, order); err != nil {
		t.Fatalf("ReorderModules() error = %v", err)
	}

	course, _ = m.GetCourse(ctx, c.ID)
	got := moduleIDs(course)
	want := []string{ids[2], ids[0], ids[1]}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("module order = %v, want %v", got, want)
		}
	}
}

func TestMemoryAPI_ReorderUnknownID(t *testing.T) {
	m, c := newSeededMemoryAPI(t)

	err := m.ReorderModules(context.Background(), c.ID, []model.Position{{ID: "ghost", Position: 0}})
	if !errors.Is(err, editor.ErrNotFound) {
		t.Errorf("ReorderModules() error = %v, want ErrNotFound", err)
	}
}

func TestMemoryAPI_Lessons(t *testing.T) {
	m, c := newSeededMemoryAPI(t)
	ctx := context.Background()
	course, _ := m.GetCourse(ctx, c.ID)
	modID := course.Modules[0].ID

	ref := "video:abc"
	l1, err := m.CreateLesson(ctx, modID, model.LessonFields{Title: "Hello", Kind: model.KindVideo, ContentRef: &ref})
	if err != nil {
		t.Fatalf("CreateLesson() error = %v", err)
	}
	l2, err := m.CreateLesson(ctx, modID, model.LessonFields{Title: "World", Kind: model.KindText})
	if err != nil {
		t.Fatalf("CreateLesson() error = %v", err)
	}
	if l1.ModuleID != modID || l2.Position != 1 {
		t.Errorf("created lessons = %+v, %+v", l1, l2)
	}

	// The stored lesson must not alias the caller's pointer.
	ref = "video:changed"

	if err := m.ReorderLessons(ctx, modID, []model.Position{{ID: l2.ID, Position: 0}, {ID: l1.ID, Position: 1}}); err != nil {
		t.Fatalf("ReorderLessons() error = %v", err)
	}
	if err := m.DeleteLesson(ctx, l2.ID); err != nil {
		t.Fatalf("DeleteLesson() error = %v", err)
	}

	course, _ = m.GetCourse(ctx, c.ID)
	lessons := course.Modules[0].Lessons
	if len(lessons) != 1 || lessons[0].ID != l1.ID || lessons[0].Position != 0 {
		t.Fatalf("lessons = %+v, want only %s at 0", lessons, l1.ID)
	}
	if lessons[0].ContentRef == nil || *lessons[0].ContentRef != "video:abc" {
		t.Errorf("ContentRef = %v, want video:abc", lessons[0].ContentRef)
	}
}

func TestMemoryAPI_NotFound(t *testing.T) {
	m := NewMemoryAPI(nil)
	ctx := context.Background()

	tests := []struct {
		name string
		call func() error
	}{
		{"GetCourse", func() error { _, err := m.GetCourse(ctx, "x"); return err }},
		{"UpdateCourse", func() error { return m.UpdateCourse(ctx, "x", model.CourseFields{Title: "t"}) }},
		{"CreateModule", func() error { _, err := m.CreateModule(ctx, "x", model.ModuleFields{Title: "t"}); return err }},
		{"UpdateModule", func() error { return m.UpdateModule(ctx, "x", model.ModuleFields{Title: "t"}) }},
		{"DeleteModule", func() error { return m.DeleteModule(ctx, "x") }},
		{"ReorderModules", func() error { return m.ReorderModules(ctx, "x", nil) }},
		{"CreateLesson", func() error { _, err := m.CreateLesson(ctx, "x", model.LessonFields{Title: "t"}); return err }},
		{"UpdateLesson", func() error { return m.UpdateLesson(ctx, "x", model.LessonFields{Title: "t"}) }},
		{"DeleteLesson", func() error { return m.DeleteLesson(ctx, "x") }},
		{"ReorderLessons", func() error { return m.ReorderLessons(ctx, "x", nil) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); !errors.Is(err, editor.ErrNotFound) {
				t.Errorf("%s error = %v, want ErrNotFound", tt.name, err)
			}
		})
	}
}

func TestMemoryAPI_ListCoursesOmitsModules(t *testing.T) {
	m, _ := newSeededMemoryAPI(t)
	if _, err := m.CreateCourse(context.Background(), model.CourseFields{Title: "Algorithms"}); err != nil {
		t.Fatalf("CreateCourse() error = %v", err)
	}

	list, err := m.ListCourses(context.Background())
	if err != nil {
		t.Fatalf("ListCourses() error = %v", err)
	}
	if len(list) != 2 || list[0].Title != "Algorithms" || list[1].Title != "Go Basics" {
		t.Fatalf("ListCourses() = %+v, want sorted by title", list)
	}
	for _, c := range list {
		if len(c.Modules) != 0 {
			t.Errorf("course %s listed with %d modules", c.ID, len(c.Modules))
		}
	}
}
