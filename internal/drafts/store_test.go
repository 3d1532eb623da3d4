package drafts

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"coursekit/internal/editor"
	"coursekit/internal/model"
)

func newTestDraft(t *testing.T, courseID string) *editor.Draft {
	t.Helper()
	course := &model.Course{
		ID:     courseID,
		Title:  "Go Basics",
		Status: model.StatusDraft,
		Modules: []*model.Module{
			{ID: "tmp-1", CourseID: courseID, Title: "Intro", Lessons: []*model.Lesson{
				{ID: "tmp-2", ModuleID: "tmp-1", Title: "Hello", Kind: model.KindText},
			}},
		},
	}
	snap, err := editor.Commit(&model.Course{ID: courseID, Title: "Go Basics", Status: model.StatusDraft})
	if err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	return &editor.Draft{
		CourseID:  courseID,
		Course:    course,
		Baseline:  snap,
		UpdatedAt: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
	}
}

func storesUnderTest(t *testing.T) map[string]*Store {
	t.Helper()
	fsStore, err := NewFileSystemStore(filepath.Join(t.TempDir(), "drafts"))
	if err != nil {
		t.Fatalf("NewFileSystemStore() error = %v", err)
	}
	return map[string]*Store{
		"memory":     NewMemoryStore(),
		"filesystem": fsStore,
		"s3":         newStore(newS3Blobs(newFakeS3(), "bucket", "drafts")),
	}
}

func TestStore_SaveLoad(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			d := newTestDraft(t, "c-1")

			if err := store.Save(ctx, d); err != nil {
				t.Fatalf("Save() error = %v", err)
			}

			got, err := store.Load(ctx, "c-1")
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if got == nil {
				t.Fatal("Load() returned nil draft")
			}
			if got.CourseID != "c-1" || got.Course.Title != "Go Basics" {
				t.Errorf("Load() = %+v, want course c-1", got)
			}
			if len(got.Course.Modules) != 1 || got.Course.Modules[0].Lessons[0].ID != "tmp-2" {
				t.Errorf("Load() lost the module tree: %+v", got.Course.Modules)
			}
			if !got.UpdatedAt.Equal(d.UpdatedAt) {
				t.Errorf("UpdatedAt = %v, want %v", got.UpdatedAt, d.UpdatedAt)
			}
			// The restored baseline still detects the unsaved module.
			if !editor.IsDirty(got.Course, got.Baseline) {
				t.Error("restored draft is not dirty against its baseline")
			}
		})
	}
}

func TestStore_LoadMissing(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			got, err := store.Load(context.Background(), "nope")
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if got != nil {
				t.Errorf("Load() = %+v, want nil", got)
			}
		})
	}
}

func TestStore_SaveReplaces(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			d := newTestDraft(t, "c-1")
			if err := store.Save(ctx, d); err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			d.Course.Title = "Go Advanced"
			if err := store.Save(ctx, d); err != nil {
				t.Fatalf("second Save() error = %v", err)
			}

			got, err := store.Load(ctx, "c-1")
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if got.Course.Title != "Go Advanced" {
				t.Errorf("Title = %q, want %q", got.Course.Title, "Go Advanced")
			}
		})
	}
}

func TestStore_DeleteAndList(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for _, id := range []string{"c-2", "c-1"} {
				if err := store.Save(ctx, newTestDraft(t, id)); err != nil {
					t.Fatalf("Save(%s) error = %v", id, err)
				}
			}

			ids, err := store.List(ctx)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if len(ids) != 2 || ids[0] != "c-1" || ids[1] != "c-2" {
				t.Errorf("List() = %v, want [c-1 c-2]", ids)
			}

			if err := store.Delete(ctx, "c-1"); err != nil {
				t.Fatalf("Delete() error = %v", err)
			}
			if err := store.Delete(ctx, "c-1"); err != nil {
				t.Errorf("second Delete() error = %v, want nil", err)
			}

			ids, err = store.List(ctx)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if len(ids) != 1 || ids[0] != "c-2" {
				t.Errorf("List() after delete = %v, want [c-2]", ids)
			}
		})
	}
}

func TestStore_RejectsInvalidCourseID(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	for _, id := range []string{"", "..", "a/b", `a\b`} {
		if _, err := store.Load(ctx, id); err == nil {
			t.Errorf("Load(%q) should return error", id)
		}
		if err := store.Save(ctx, &editor.Draft{CourseID: id}); err == nil {
			t.Errorf("Save(%q) should return error", id)
		}
	}
}

func TestFileSystemStore_IgnoresTempFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileSystemStore(dir)
	if err != nil {
		t.Fatalf("NewFileSystemStore() error = %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".tmp-123"), []byte("{}"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}

	ids, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("List() = %v, want empty", ids)
	}
}

func TestFileSystemStore_CorruptDraft(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileSystemStore(dir)
	if err != nil {
		t.Fatalf("NewFileSystemStore() error = %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "c-1.json"), []byte("not json"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := store.Load(context.Background(), "c-1"); err == nil {
		t.Error("Load() of corrupt draft should return error")
	}
}
