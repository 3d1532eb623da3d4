package editor_test

import (
	"errors"
	"testing"

	"coursekit/internal/editor"
	"coursekit/internal/model"
	"coursekit/internal/testutil"
)

func strPtr(s string) *string { return &s }

// newTestCourse returns course c-1 with module m-1 (lessons l-1, l-2) and
// module m-2 (no lessons).
func newTestCourse() *model.Course {
	return &model.Course{
		ID:         "c-1",
		Title:      "Go Basics",
		Status:     model.StatusDraft,
		Difficulty: model.DifficultyBeginner,
		TagIDs:     []string{"t-2", "t-1"},
		Modules: []*model.Module{
			{ID: "m-1", CourseID: "c-1", Title: "Intro", Position: 0, Lessons: []*model.Lesson{
				{ID: "l-1", ModuleID: "m-1", Title: "Hello", Kind: model.KindVideo, Position: 0},
				{ID: "l-2", ModuleID: "m-1", Title: "Setup", Kind: model.KindText, Position: 1},
			}},
			{ID: "m-2", CourseID: "c-1", Title: "Types", Position: 1, Lessons: []*model.Lesson{}},
		},
	}
}

func newTestTree() *editor.Tree {
	return editor.NewTree(newTestCourse(), editor.NewAllocator(testutil.FixedClock()), editor.DefaultDefaults())
}

func assertDensePositions(t *testing.T, c *model.Course) {
	t.Helper()
	for i, m := range c.Modules {
		if m.Position != i {
			t.Errorf("module %s position = %d, want %d", m.ID, m.Position, i)
		}
		for j, l := range m.Lessons {
			if l.Position != j {
				t.Errorf("lesson %s position = %d, want %d", l.ID, l.Position, j)
			}
			if l.ModuleID != m.ID {
				t.Errorf("lesson %s module = %s, want %s", l.ID, l.ModuleID, m.ID)
			}
		}
	}
}

func TestNewTree_SortsAndRestamps(t *testing.T) {
	c := newTestCourse()
	c.Modules[0].Position, c.Modules[1].Position = 7, 3
	c.Modules[0].Lessons[0].Position, c.Modules[0].Lessons[1].Position = 5, 2

	tree := editor.NewTree(c, nil, editor.DefaultDefaults())
	got := tree.Course()

	if got.Modules[0].ID != "m-2" || got.Modules[1].ID != "m-1" {
		t.Errorf("module order = %s,%s, want m-2,m-1", got.Modules[0].ID, got.Modules[1].ID)
	}
	if got.Modules[1].Lessons[0].ID != "l-2" {
		t.Errorf("first lesson = %s, want l-2", got.Modules[1].Lessons[0].ID)
	}
	assertDensePositions(t, got)
}

func TestTree_CourseReturnsCopy(t *testing.T) {
	tree := newTestTree()
	c := tree.Course()
	c.Title = "changed"
	c.Modules[0].Title = "changed"

	if tree.Course().Title != "Go Basics" || tree.Module("m-1").Title != "Intro" {
		t.Error("mutating Course() result changed the tree")
	}
}

func TestTree_AddModuleAndLesson(t *testing.T) {
	tree := newTestTree()

	modID := tree.AddModule()
	if !editor.IsPlaceholder(modID) {
		t.Fatalf("AddModule() = %q, want placeholder", modID)
	}
	m := tree.Module(modID)
	if m.Title != "Untitled module" || m.Position != 2 || m.CourseID != "c-1" {
		t.Errorf("new module = %+v", m)
	}

	lessonID, ok := tree.AddLesson(modID)
	if !ok {
		t.Fatal("AddLesson() on new module reported false")
	}
	l := tree.Lesson(lessonID)
	if l.ModuleID != modID || l.Kind != model.KindText || l.Position != 0 {
		t.Errorf("new lesson = %+v", l)
	}

	if _, ok := tree.AddLesson("missing"); ok {
		t.Error("AddLesson() on missing module reported true")
	}
	assertDensePositions(t, tree.Course())
}

func TestTree_PlaceholderIDsSkipExisting(t *testing.T) {
	clock := testutil.FixedClock()
	first := editor.NewTree(newTestCourse(), editor.NewAllocator(clock), editor.DefaultDefaults())
	taken := first.AddModule()

	// A second tree over the same content with a fresh allocator on the same
	// clock would mint the same first id.
	resumed := editor.NewTree(first.Course(), editor.NewAllocator(clock), editor.DefaultDefaults())
	if id := resumed.AddModule(); id == taken {
		t.Errorf("AddModule() reused placeholder %q", id)
	}
}

func TestTree_UpdateModule(t *testing.T) {
	tree := newTestTree()

	ok, err := tree.UpdateModule("m-1", editor.ModuleUpdate{Title: strPtr("  Getting started "), Description: strPtr("")})
	if !ok || err != nil {
		t.Fatalf("UpdateModule() = %v, %v", ok, err)
	}
	m := tree.Module("m-1")
	if m.Title != "Getting started" {
		t.Errorf("Title = %q, want trimmed", m.Title)
	}
	if m.Description == nil || *m.Description != "" {
		t.Errorf("Description = %v, want explicit empty", m.Description)
	}

	ok, err = tree.UpdateModule("m-1", editor.ModuleUpdate{ClearDescription: true})
	if !ok || err != nil {
		t.Fatalf("UpdateModule() = %v, %v", ok, err)
	}
	if tree.Module("m-1").Description != nil {
		t.Error("ClearDescription left a description")
	}

	if ok, err := tree.UpdateModule("missing", editor.ModuleUpdate{Title: strPtr("x")}); ok || err != nil {
		t.Errorf("UpdateModule(missing) = %v, %v, want false, nil", ok, err)
	}
}

func TestTree_UpdateRejectsInvalidWithoutMutation(t *testing.T) {
	tree := newTestTree()
	before := tree.Course()

	_, err := tree.UpdateModule("m-1", editor.ModuleUpdate{Title: strPtr("   "), Required: new(bool)})
	var verr *editor.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("UpdateModule() error = %v, want ValidationError", err)
	}

	bad := model.ContentKind("podcast")
	if _, err := tree.UpdateLesson("l-1", editor.LessonUpdate{Kind: &bad, Title: strPtr("Renamed")}); err == nil {
		t.Fatal("UpdateLesson() with unknown kind should fail")
	}
	if err := tree.UpdateCourse(editor.CourseUpdate{Title: strPtr("")}); err == nil {
		t.Fatal("UpdateCourse() with blank title should fail")
	}

	snap, err := editor.Commit(before)
	if err != nil {
		t.Fatal(err)
	}
	if editor.IsDirty(tree.Course(), snap) {
		t.Error("rejected updates changed the tree")
	}
}

func TestTree_UpdateLessonContentRef(t *testing.T) {
	tree := newTestTree()

	ok, err := tree.UpdateLesson("l-1", editor.LessonUpdate{ContentRef: strPtr("content-library:vid-1")})
	if !ok || err != nil {
		t.Fatalf("UpdateLesson() = %v, %v", ok, err)
	}
	if ref := tree.Lesson("l-1").ContentRef; ref == nil || *ref != "content-library:vid-1" {
		t.Errorf("ContentRef = %v", ref)
	}

	if _, err := tree.UpdateLesson("l-1", editor.LessonUpdate{ClearContentRef: true}); err != nil {
		t.Fatal(err)
	}
	if tree.Lesson("l-1").ContentRef != nil {
		t.Error("ClearContentRef left a reference")
	}
}

func TestTree_UpdateCourse(t *testing.T) {
	tree := newTestTree()
	published := model.StatusPublished
	tags := []string{"t-9"}

	err := tree.UpdateCourse(editor.CourseUpdate{
		Title:      strPtr("Go Fundamentals"),
		Status:     &published,
		CategoryID: strPtr("cat-1"),
		TagIDs:     &tags,
	})
	if err != nil {
		t.Fatalf("UpdateCourse() error = %v", err)
	}
	tags[0] = "mutated"

	c := tree.Course()
	if c.Title != "Go Fundamentals" || c.Status != model.StatusPublished || *c.CategoryID != "cat-1" {
		t.Errorf("course = %+v", c)
	}
	if len(c.TagIDs) != 1 || c.TagIDs[0] != "t-9" {
		t.Errorf("TagIDs = %v, want [t-9]", c.TagIDs)
	}

	if err := tree.UpdateCourse(editor.CourseUpdate{ClearCategory: true}); err != nil {
		t.Fatal(err)
	}
	if tree.Course().CategoryID != nil {
		t.Error("ClearCategory left a category")
	}
}

func TestTree_RemovePlaceholdersOnly(t *testing.T) {
	tree := newTestTree()

	if ok, err := tree.RemoveModule("m-1"); ok || !errors.Is(err, editor.ErrPersisted) {
		t.Errorf("RemoveModule(real) = %v, %v, want false, ErrPersisted", ok, err)
	}
	if ok, err := tree.RemoveLesson("l-1"); ok || !errors.Is(err, editor.ErrPersisted) {
		t.Errorf("RemoveLesson(real) = %v, %v, want false, ErrPersisted", ok, err)
	}

	first := tree.AddModule()
	second := tree.AddModule()
	l, _ := tree.AddLesson(second)
	if ok, err := tree.RemoveModule(first); !ok || err != nil {
		t.Fatalf("RemoveModule(placeholder) = %v, %v", ok, err)
	}
	if ok, err := tree.RemoveLesson(l); !ok || err != nil {
		t.Fatalf("RemoveLesson(placeholder) = %v, %v", ok, err)
	}
	if ok, err := tree.RemoveModule(first); ok || err != nil {
		t.Errorf("second RemoveModule() = %v, %v, want false, nil", ok, err)
	}

	c := tree.Course()
	if len(c.Modules) != 3 || c.Modules[2].ID != second {
		t.Errorf("modules after removal = %d, want m-1, m-2, %s", len(c.Modules), second)
	}
	assertDensePositions(t, c)
}

func TestTree_Moves(t *testing.T) {
	tree := newTestTree()
	extra := tree.AddModule()

	if !tree.MoveModule(extra, "m-1") {
		t.Fatal("MoveModule() reported no change")
	}
	if tree.MoveModule("m-1", "m-2") {
		t.Error("MoveModule() onto successor reported a change")
	}
	if !tree.MoveLesson("m-1", "l-2", "l-1") {
		t.Fatal("MoveLesson() reported no change")
	}
	if tree.MoveLesson("m-2", "l-2", "l-1") {
		t.Error("MoveLesson() across modules reported a change")
	}
	if !tree.MoveModuleToEnd(extra) {
		t.Fatal("MoveModuleToEnd() reported no change")
	}
	if !tree.MoveLessonToEnd("m-1", "l-2") {
		t.Fatal("MoveLessonToEnd() reported no change")
	}

	c := tree.Course()
	if c.Modules[0].ID != "m-1" || c.Modules[2].ID != extra {
		t.Errorf("module order = %s,%s,%s", c.Modules[0].ID, c.Modules[1].ID, c.Modules[2].ID)
	}
	if c.Modules[0].Lessons[0].ID != "l-1" {
		t.Errorf("lesson order starts with %s, want l-1", c.Modules[0].Lessons[0].ID)
	}
	assertDensePositions(t, c)
}

func TestTree_PositionDensityUnderMixedOperations(t *testing.T) {
	tree := newTestTree()

	var added []string
	for range 4 {
		id := tree.AddModule()
		added = append(added, id)
		tree.AddLesson(id)
		tree.AddLesson(id)
	}
	tree.MoveModule(added[3], "m-1")
	tree.RemoveModule(added[1])
	tree.MoveModuleToEnd("m-1")
	lesson, _ := tree.AddLesson("m-2")
	tree.MoveLesson("m-2", lesson, lesson)
	tree.MoveLessonToEnd("m-1", "l-1")
	first := tree.Module(added[0])
	tree.RemoveLesson(first.Lessons[0].ID)

	assertDensePositions(t, tree.Course())
}
