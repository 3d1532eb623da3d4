package testutil

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"coursekit/internal/editor"
	"coursekit/internal/model"
)

// ErrInjected is the error returned by calls failed with RecordingAPI.FailOn.
var ErrInjected = errors.New("injected failure")

// Call is one request seen by a RecordingAPI.
type Call struct {
	Method string // CourseAPI method name, e.g. "CreateModule"
	ID     string // target or parent id
	Order  []model.Position
}

// RecordingAPI wraps a CourseAPI, records every call and can fail chosen
// calls. Safe for concurrent use.
type RecordingAPI struct {
	inner editor.CourseAPI

	mu     sync.Mutex
	calls  []Call
	counts map[string]int
	fail   map[string]int // method -> 1-based call number to fail
	before func(method string)
}

// NewRecordingAPI wraps inner.
func NewRecordingAPI(inner editor.CourseAPI) *RecordingAPI {
	return &RecordingAPI{
		inner:  inner,
		counts: make(map[string]int),
		fail:   make(map[string]int),
	}
}

// FailOn makes the nth call (1-based, counted from now on) of method fail
// with ErrInjected without reaching the wrapped API.
func (r *RecordingAPI) FailOn(method string, n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fail[method] = r.counts[method] + n
}

// OnCall registers a hook run before each call is forwarded.
func (r *RecordingAPI) OnCall(fn func(method string)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.before = fn
}

// Calls returns a copy of the recorded calls in order.
func (r *RecordingAPI) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Count returns how many times method was called.
func (r *RecordingAPI) Count(method string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[method]
}

// Reset forgets recorded calls and pending failures.
func (r *RecordingAPI) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
	clear(r.counts)
	clear(r.fail)
}

func (r *RecordingAPI) record(method, id string, order []model.Position) error {
	r.mu.Lock()
	r.counts[method]++
	r.calls = append(r.calls, Call{Method: method, ID: id, Order: append([]model.Position(nil), order...)})
	failing := r.fail[method] == r.counts[method]
	hook := r.before
	r.mu.Unlock()

	if hook != nil {
		hook(method)
	}
	if failing {
		return fmt.Errorf("%s %s: %w", method, id, ErrInjected)
	}
	return nil
}

func (r *RecordingAPI) ListCourses(ctx context.Context) ([]*model.Course, error) {
	if err := r.record("ListCourses", "", nil); err != nil {
		return nil, err
	}
	return r.inner.ListCourses(ctx)
}

func (r *RecordingAPI) CreateCourse(ctx context.Context, f model.CourseFields) (*model.Course, error) {
	if err := r.record("CreateCourse", "", nil); err != nil {
		return nil, err
	}
	return r.inner.CreateCourse(ctx, f)
}

func (r *RecordingAPI) GetCourse(ctx context.Context, id string) (*model.Course, error) {
	if err := r.record("GetCourse", id, nil); err != nil {
		return nil, err
	}
	return r.inner.GetCourse(ctx, id)
}

func (r *RecordingAPI) UpdateCourse(ctx context.Context, id string, f model.CourseFields) error {
	if err := r.record("UpdateCourse", id, nil); err != nil {
		return err
	}
	return r.inner.UpdateCourse(ctx, id, f)
}

func (r *RecordingAPI) CreateModule(ctx context.Context, courseID string, f model.ModuleFields) (*model.Module, error) {
	if err := r.record("CreateModule", courseID, nil); err != nil {
		return nil, err
	}
	return r.inner.CreateModule(ctx, courseID, f)
}

func (r *RecordingAPI) UpdateModule(ctx context.Context, id string, f model.ModuleFields) error {
	if err := r.record("UpdateModule", id, nil); err != nil {
		return err
	}
	return r.inner.UpdateModule(ctx, id, f)
}

func (r *RecordingAPI) DeleteModule(ctx context.Context, id string) error {
	if err := r.record("DeleteModule", id, nil); err != nil {
		return err
	}
	return r.inner.DeleteModule(ctx, id)
}

func (r *RecordingAPI) ReorderModules(ctx context.Context, courseID string, order []model.Position) error {
	if err := r.record("ReorderModules", courseID, order); err != nil {
		return err
	}
	return r.inner.ReorderModules(ctx, courseID, order)
}

func (r *RecordingAPI) CreateLesson(ctx context.Context, moduleID string, f model.LessonFields) (*model.Lesson, error) {
	if err := r.record("CreateLesson", moduleID, nil); err != nil {
		return nil, err
	}
	return r.inner.CreateLesson(ctx, moduleID, f)
}

func (r *RecordingAPI) UpdateLesson(ctx context.Context, id string, f model.LessonFields) error {
	if err := r.record("UpdateLesson", id, nil); err != nil {
		return err
	}
	return r.inner.UpdateLesson(ctx, id, f)
}

func (r *RecordingAPI) DeleteLesson(ctx context.Context, id string) error {
	if err := r.record("DeleteLesson", id, nil); err != nil {
		return err
	}
	return r.inner.DeleteLesson(ctx, id)
}

func (r *RecordingAPI) ReorderLessons(ctx context.Context, moduleID string, order []model.Position) error {
	if err := r.record("ReorderLessons", moduleID, order); err != nil {
		return err
	}
	return r.inner.ReorderLessons(ctx, moduleID, order)
}

// Compile-time check that RecordingAPI implements editor.CourseAPI interface
var _ editor.CourseAPI = (*RecordingAPI)(nil)
