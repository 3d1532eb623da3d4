package editor

import (
	"context"

	"coursekit/internal/model"
)

// CourseAPI is the remote contract the editor reconciles against.
// Create calls return entities carrying real identifiers usable immediately
// by dependent calls. Update, delete and reorder calls only confirm success.
// Unknown ids are reported with an error wrapping ErrNotFound.
type CourseAPI interface {
	// ListCourses returns course metadata without module trees.
	ListCourses(ctx context.Context) ([]*model.Course, error)

	// CreateCourse creates a course and returns it with its real id.
	CreateCourse(ctx context.Context, f model.CourseFields) (*model.Course, error)

	// GetCourse returns the course with its full module and lesson tree.
	GetCourse(ctx context.Context, id string) (*model.Course, error)

	// UpdateCourse replaces the course metadata.
	UpdateCourse(ctx context.Context, id string, f model.CourseFields) error

	// CreateModule appends a module to a course.
	CreateModule(ctx context.Context, courseID string, f model.ModuleFields) (*model.Module, error)

	// UpdateModule replaces the module fields.
	UpdateModule(ctx context.Context, id string, f model.ModuleFields) error

	// DeleteModule deletes a module and its lessons.
	DeleteModule(ctx context.Context, id string) error

	// ReorderModules sets module positions within a course.
	ReorderModules(ctx context.Context, courseID string, order []model.Position) error

	// CreateLesson appends a lesson to a module.
	CreateLesson(ctx context.Context, moduleID string, f model.LessonFields) (*model.Lesson, error)

	// UpdateLesson replaces the lesson fields.
	UpdateLesson(ctx context.Context, id string, f model.LessonFields) error

	// DeleteLesson deletes a lesson.
	DeleteLesson(ctx context.Context, id string) error

	// ReorderLessons sets lesson positions within a module.
	ReorderLessons(ctx context.Context, moduleID string, order []model.Position) error
}
