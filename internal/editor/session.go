package editor

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"coursekit/internal/model"
)

// Options configures a Session. Zero values fall back to real clocks, no-op
// logging and journaling, and DefaultDefaults.
type Options struct {
	Clock    Clock
	Logger   Logger
	Journal  Journal
	Defaults *Defaults
}

func (o Options) withDefaults() Options {
	if o.Clock == nil {
		o.Clock = RealClock{}
	}
	if o.Logger == nil {
		o.Logger = NewNopLogger()
	}
	if o.Journal == nil {
		o.Journal = NopJournal{}
	}
	if o.Defaults == nil {
		d := DefaultDefaults()
		o.Defaults = &d
	}
	return o
}

// Session is one editor session over one course. All methods except Save and
// Saving must be called from the goroutine that owns the session. Save
// rejects re-entrant calls; while a save is in flight, moves and server-side
// deletes are refused. Field edits are still accepted but are discarded when
// the save replaces the tree with the server's copy.
type Session struct {
	api      CourseAPI
	tree     *Tree
	baseline Snapshot
	orch     *Orchestrator
	clock    Clock
	logger   Logger
	journal  Journal
	saving   atomic.Bool
}

// CreateCourse validates fields and creates a course on the server.
func CreateCourse(ctx context.Context, api CourseAPI, f model.CourseFields) (*model.Course, error) {
	f.Title = strings.TrimSpace(f.Title)
	if f.Status == "" {
		f.Status = model.StatusDraft
	}
	if err := ValidateCourse("", f); err != nil {
		return nil, err
	}
	c, err := api.CreateCourse(ctx, f)
	if err != nil {
		return nil, &SaveError{Step: OpCreate, Kind: KindCourse, Err: err}
	}
	if c == nil {
		return nil, &SaveError{Step: OpCreate, Kind: KindCourse, Err: errNoID}
	}
	if err := checkCreatedID(c.ID); err != nil {
		return nil, &SaveError{Step: OpCreate, Kind: KindCourse, Err: err}
	}
	return c, nil
}

// Open fetches a course and starts a clean session on it.
func Open(ctx context.Context, api CourseAPI, courseID string, opts Options) (*Session, error) {
	c, err := api.GetCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("fetching course %s: %w", courseID, err)
	}
	s := newSession(api, c, opts)
	if err := s.commit(); err != nil {
		return nil, err
	}
	s.logger.Info("course opened", "course", courseID)
	return s, nil
}

// Resume restores a session from a persisted draft.
func Resume(d *Draft, api CourseAPI, opts Options) (*Session, error) {
	if d == nil || d.Course == nil {
		return nil, fmt.Errorf("draft has no course")
	}
	s := newSession(api, d.Course, opts)
	s.baseline = append(Snapshot(nil), d.Baseline...)
	return s, nil
}

func newSession(api CourseAPI, c *model.Course, opts Options) *Session {
	opts = opts.withDefaults()
	return &Session{
		api:     api,
		tree:    NewTree(c, NewAllocator(opts.Clock), *opts.Defaults),
		orch:    NewOrchestrator(api, opts.Logger),
		clock:   opts.Clock,
		logger:  opts.Logger,
		journal: opts.Journal,
	}
}

func (s *Session) commit() error {
	snap, err := Commit(s.tree.course)
	if err != nil {
		return err
	}
	s.baseline = snap
	return nil
}

// CourseID returns the id of the edited course.
func (s *Session) CourseID() string { return s.tree.CourseID() }

// Course returns a copy of the current tree.
func (s *Session) Course() *model.Course { return s.tree.Course() }

// Tree exposes the underlying tree store.
func (s *Session) Tree() *Tree { return s.tree }

// Dirty reports whether the tree differs from the last load or save.
func (s *Session) Dirty() bool { return IsDirty(s.tree.course, s.baseline) }

// Saving reports whether a save is in flight.
func (s *Session) Saving() bool { return s.saving.Load() }

// Draft returns the persistable state of the session.
func (s *Session) Draft() *Draft {
	return &Draft{
		CourseID:  s.tree.CourseID(),
		Course:    s.tree.Course(),
		Baseline:  append(Snapshot(nil), s.baseline...),
		UpdatedAt: s.clock.Now().UTC(),
	}
}

// UpdateCourse edits course metadata.
func (s *Session) UpdateCourse(u CourseUpdate) error { return s.tree.UpdateCourse(u) }

// AddModule appends a placeholder module.
func (s *Session) AddModule() string { return s.tree.AddModule() }

// UpdateModule edits a module. See Tree.UpdateModule.
func (s *Session) UpdateModule(id string, u ModuleUpdate) (bool, error) {
	return s.tree.UpdateModule(id, u)
}

// RemoveModule removes a module, deleting it on the server first when it is
// persisted.
func (s *Session) RemoveModule(ctx context.Context, id string) (bool, error) {
	if !IsPlaceholder(id) && s.Saving() {
		return false, ErrSaveInProgress
	}
	return s.orch.DeleteModule(ctx, s.tree, id)
}

// AddLesson appends a placeholder lesson to a module.
func (s *Session) AddLesson(moduleID string) (string, bool) { return s.tree.AddLesson(moduleID) }

// UpdateLesson edits a lesson. See Tree.UpdateLesson.
func (s *Session) UpdateLesson(id string, u LessonUpdate) (bool, error) {
	return s.tree.UpdateLesson(id, u)
}

// RemoveLesson removes a lesson, deleting it on the server first when it is
// persisted.
func (s *Session) RemoveLesson(ctx context.Context, id string) (bool, error) {
	if !IsPlaceholder(id) && s.Saving() {
		return false, ErrSaveInProgress
	}
	return s.orch.DeleteLesson(ctx, s.tree, id)
}

// MoveModule moves a module before another one.
func (s *Session) MoveModule(fromID, toID string) bool {
	if s.Saving() {
		return false
	}
	return s.tree.MoveModule(fromID, toID)
}

// MoveModuleToEnd moves a module to the end of the course.
func (s *Session) MoveModuleToEnd(id string) bool {
	if s.Saving() {
		return false
	}
	return s.tree.MoveModuleToEnd(id)
}

// MoveLesson moves a lesson before another lesson of the same module.
func (s *Session) MoveLesson(moduleID, fromID, toID string) bool {
	if s.Saving() {
		return false
	}
	return s.tree.MoveLesson(moduleID, fromID, toID)
}

// MoveLessonToEnd moves a lesson to the end of its module.
func (s *Session) MoveLessonToEnd(moduleID, id string) bool {
	if s.Saving() {
		return false
	}
	return s.tree.MoveLessonToEnd(moduleID, id)
}

// AttachContent tags a lesson with a content reference.
func (s *Session) AttachContent(lessonID string, ref ContentRef) (bool, error) {
	if err := ref.Validate(); err != nil {
		return false, &ValidationError{Entity: KindLesson, ID: lessonID, Fields: map[string]string{"content_ref": err.Error()}}
	}
	v := ref.String()
	return s.tree.UpdateLesson(lessonID, LessonUpdate{ContentRef: &v})
}

// DetachContent clears a lesson's content reference.
func (s *Session) DetachContent(lessonID string) bool {
	ok, _ := s.tree.UpdateLesson(lessonID, LessonUpdate{ClearContentRef: true})
	return ok
}

// Save persists the tree through the orchestrator. On success the tree and
// baseline are replaced by the server's copy; on failure the session stays
// dirty and keeps any partial reconciliation.
func (s *Session) Save(ctx context.Context) (*SaveReport, error) {
	if !s.saving.CompareAndSwap(false, true) {
		return nil, ErrSaveInProgress
	}
	defer s.saving.Store(false)

	courseID := s.tree.CourseID()
	journalID, err := s.journal.StartSave(courseID, s.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("recording save start: %w", err)
	}

	snap, report, saveErr := s.orch.Save(ctx, s.tree, s.baseline)
	if saveErr == nil {
		s.baseline = snap
	}

	if err := s.journal.FinishSave(journalID, s.clock.Now(), report, saveErr); err != nil {
		s.logger.Warn("recording save outcome failed", "course", courseID, "error", err)
	}
	if saveErr != nil {
		return report, saveErr
	}
	return report, nil
}

// Discard drops local edits by re-fetching the course.
func (s *Session) Discard(ctx context.Context) error {
	if s.Saving() {
		return ErrSaveInProgress
	}
	c, err := s.api.GetCourse(ctx, s.tree.CourseID())
	if err != nil {
		return fmt.Errorf("fetching course %s: %w", s.tree.CourseID(), err)
	}
	s.tree.Replace(c)
	return s.commit()
}
