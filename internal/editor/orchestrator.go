package editor

import (
	"context"
	"errors"

	"coursekit/internal/model"
)

// Step operations recorded in a SaveReport.
const (
	OpCreate  = "create"
	OpUpdate  = "update"
	OpDelete  = "delete"
	OpReorder = "reorder"
	OpRefresh = "refresh"
)

// Entity kinds recorded in a SaveReport.
const (
	KindCourse = "course"
	KindModule = "module"
	KindLesson = "lesson"
)

// Step is one network call issued by the orchestrator.
type Step struct {
	Op      string
	Kind    string
	LocalID string // id in the tree when the call was issued
	RealID  string // id returned by a create call; equals LocalID otherwise
}

// SaveReport describes the calls issued by one save, successful or not.
type SaveReport struct {
	CourseID string
	Steps    []Step
	Creates  int
	Updates  int
	Deletes  int
	Reorders int
}

// Reconciled returns the placeholder to real id mapping established by the save.
func (r *SaveReport) Reconciled() map[string]string {
	out := map[string]string{}
	for _, s := range r.Steps {
		if s.Op == OpCreate && s.LocalID != s.RealID {
			out[s.LocalID] = s.RealID
		}
	}
	return out
}

func (r *SaveReport) record(op, kind, localID, realID string) {
	r.Steps = append(r.Steps, Step{Op: op, Kind: kind, LocalID: localID, RealID: realID})
	switch op {
	case OpCreate:
		r.Creates++
	case OpUpdate:
		r.Updates++
	case OpDelete:
		r.Deletes++
	case OpReorder:
		r.Reorders++
	}
}

// Orchestrator brings the server in line with a local tree through a strictly
// sequential chain of calls. It never rolls back: a failed save leaves the
// tree partially reconciled and a retry resumes through the update path for
// entities that already received real ids.
type Orchestrator struct {
	api    CourseAPI
	logger Logger
}

// NewOrchestrator creates an Orchestrator. A nil logger discards output.
func NewOrchestrator(api CourseAPI, logger Logger) *Orchestrator {
	if logger == nil {
		logger = NewNopLogger()
	}
	return &Orchestrator{api: api, logger: logger}
}

// Save persists the tree. Course metadata is pushed only if it differs from
// baseline. On success the tree is replaced wholesale by a fresh fetch and the
// new baseline is returned. The report is returned even on failure.
func (o *Orchestrator) Save(ctx context.Context, tree *Tree, baseline Snapshot) (Snapshot, *SaveReport, error) {
	courseID := tree.CourseID()
	report := &SaveReport{CourseID: courseID}

	if err := validateTree(tree.course); err != nil {
		return nil, report, err
	}

	if MetadataDirty(tree.course, baseline) {
		if err := o.api.UpdateCourse(ctx, courseID, tree.course.Fields()); err != nil {
			return nil, report, o.fail(OpUpdate, KindCourse, courseID, err)
		}
		report.record(OpUpdate, KindCourse, courseID, courseID)
	}

	// Modules whose lessons get an explicit reorder: those that held a
	// persisted lesson before this save started.
	var lessonOrder []*model.Module

	for _, m := range tree.course.Modules {
		hadReal := false
		for _, l := range m.Lessons {
			if !IsPlaceholder(l.ID) {
				hadReal = true
				break
			}
		}

		if err := o.materializeModule(ctx, tree, courseID, m, report); err != nil {
			return nil, report, err
		}
		for _, l := range m.Lessons {
			if err := o.materializeLesson(ctx, tree, m.ID, l, report); err != nil {
				return nil, report, err
			}
		}

		if hadReal {
			lessonOrder = append(lessonOrder, m)
		}
	}

	if len(tree.course.Modules) > 0 {
		order := positions(tree.course.Modules, moduleID, func(m *model.Module) int { return m.Position })
		if err := o.api.ReorderModules(ctx, courseID, order); err != nil {
			return nil, report, o.fail(OpReorder, KindModule, courseID, err)
		}
		report.record(OpReorder, KindModule, courseID, courseID)
	}
	for _, m := range lessonOrder {
		order := positions(m.Lessons, lessonID, func(l *model.Lesson) int { return l.Position })
		if err := o.api.ReorderLessons(ctx, m.ID, order); err != nil {
			return nil, report, o.fail(OpReorder, KindLesson, m.ID, err)
		}
		report.record(OpReorder, KindLesson, m.ID, m.ID)
	}

	fresh, err := o.api.GetCourse(ctx, courseID)
	if err != nil {
		return nil, report, o.fail(OpRefresh, KindCourse, courseID, err)
	}
	tree.Replace(fresh)

	snap, err := Commit(tree.course)
	if err != nil {
		return nil, report, err
	}

	o.logger.Info("course saved", "course", courseID, "creates", report.Creates, "updates", report.Updates, "reorders", report.Reorders)
	return snap, report, nil
}

func (o *Orchestrator) materializeModule(ctx context.Context, tree *Tree, courseID string, m *model.Module, report *SaveReport) error {
	if !IsPlaceholder(m.ID) {
		if err := o.api.UpdateModule(ctx, m.ID, m.Fields()); err != nil {
			return o.fail(OpUpdate, KindModule, m.ID, err)
		}
		report.record(OpUpdate, KindModule, m.ID, m.ID)
		return nil
	}

	localID := m.ID
	created, err := o.api.CreateModule(ctx, courseID, m.Fields())
	if err != nil {
		return o.fail(OpCreate, KindModule, localID, err)
	}
	if created == nil {
		return o.fail(OpCreate, KindModule, localID, errNoID)
	}
	if err := checkCreatedID(created.ID); err != nil {
		return o.fail(OpCreate, KindModule, localID, err)
	}
	tree.reconcileModule(localID, created.ID)
	report.record(OpCreate, KindModule, localID, created.ID)
	o.logger.Debug("module created", "placeholder", localID, "id", created.ID)
	return nil
}

func (o *Orchestrator) materializeLesson(ctx context.Context, tree *Tree, modID string, l *model.Lesson, report *SaveReport) error {
	if !IsPlaceholder(l.ID) {
		if err := o.api.UpdateLesson(ctx, l.ID, l.Fields()); err != nil {
			return o.fail(OpUpdate, KindLesson, l.ID, err)
		}
		report.record(OpUpdate, KindLesson, l.ID, l.ID)
		return nil
	}

	localID := l.ID
	created, err := o.api.CreateLesson(ctx, modID, l.Fields())
	if err != nil {
		return o.fail(OpCreate, KindLesson, localID, err)
	}
	if created == nil {
		return o.fail(OpCreate, KindLesson, localID, errNoID)
	}
	if err := checkCreatedID(created.ID); err != nil {
		return o.fail(OpCreate, KindLesson, localID, err)
	}
	tree.reconcileLesson(localID, created.ID)
	report.record(OpCreate, KindLesson, localID, created.ID)
	o.logger.Debug("lesson created", "placeholder", localID, "id", created.ID)
	return nil
}

// DeleteModule removes a module. Placeholders are dropped locally; persisted
// modules are deleted on the server first and dropped only on success.
func (o *Orchestrator) DeleteModule(ctx context.Context, tree *Tree, id string) (bool, error) {
	if _, m := tree.findModule(id); m == nil {
		return false, nil
	}
	if !IsPlaceholder(id) {
		if err := o.api.DeleteModule(ctx, id); err != nil {
			return false, o.fail(OpDelete, KindModule, id, err)
		}
		o.logger.Info("module deleted", "id", id)
	}
	return tree.dropModule(id), nil
}

// DeleteLesson removes a lesson, following the same rules as DeleteModule.
func (o *Orchestrator) DeleteLesson(ctx context.Context, tree *Tree, id string) (bool, error) {
	if _, _, l := tree.findLesson(id); l == nil {
		return false, nil
	}
	if !IsPlaceholder(id) {
		if err := o.api.DeleteLesson(ctx, id); err != nil {
			return false, o.fail(OpDelete, KindLesson, id, err)
		}
		o.logger.Info("lesson deleted", "id", id)
	}
	return tree.dropLesson(id), nil
}

func (o *Orchestrator) fail(op, kind, id string, err error) error {
	o.logger.Error("save step failed", "op", op, "kind", kind, "id", id, "error", err)
	return &SaveError{Step: op, Kind: kind, EntityID: id, Err: err}
}

var errNoID = errors.New("create response carried no id")

func checkCreatedID(id string) error {
	if id == "" {
		return errNoID
	}
	if IsPlaceholder(id) {
		return ErrPlaceholderFromServer
	}
	return nil
}

func validateTree(c *model.Course) error {
	if err := ValidateCourse(c.ID, c.Fields()); err != nil {
		return err
	}
	for _, m := range c.Modules {
		if err := ValidateModule(m.ID, m.Fields()); err != nil {
			return err
		}
		for _, l := range m.Lessons {
			if err := ValidateLesson(l.ID, l.Fields()); err != nil {
				return err
			}
		}
	}
	return nil
}

func positions[T any](items []T, id func(T) string, pos func(T) int) []model.Position {
	out := make([]model.Position, len(items))
	for i, item := range items {
		out[i] = model.Position{ID: id(item), Position: pos(item)}
	}
	return out
}
