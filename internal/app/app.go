package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"coursekit/internal/api"
	"coursekit/internal/config"
	"coursekit/internal/database"
	"coursekit/internal/drafts"
	"coursekit/internal/editor"
	"coursekit/internal/encryption"
	"coursekit/internal/model"
)

// activeCourseKey is the workspace key holding the id of the course being edited.
const activeCourseKey = "active_course"

// ErrNoActiveCourse is returned by course operations before a course was opened.
var ErrNoActiveCourse = errors.New("no active course (run `coursekit course open ID`)")

// Options configures NewCourseApp. Zero values use a real clock, no console
// log output and a passphrase read from COURSEKIT_PASSPHRASE or the terminal.
type Options struct {
	Passphrase func() (string, error)
	Console    io.Writer
	Clock      editor.Clock
}

// CourseApp is the application layer between the CLI and the editor.
// It constructs all dependencies from config, keeps the editing session in
// the draft store between invocations, and closes everything on Close.
type CourseApp struct {
	cfg      *config.Config
	api      editor.CourseAPI
	drafts   editor.DraftStore
	db       *database.SQLiteDatabase
	clock    editor.Clock
	logger   editor.Logger
	defaults editor.Defaults
	op       *Operation
	logFile  *os.File
}

// NewCourseApp creates a fully wired CourseApp from the given config.
// operation identifies the CLI command being run (e.g. "Save", "AddModule").
// The caller must call Close when done.
func NewCourseApp(ctx context.Context, cfg *config.Config, operation string, opts Options) (*CourseApp, error) {
	if opts.Clock == nil {
		opts.Clock = editor.RealClock{}
	}
	if opts.Passphrase == nil {
		opts.Passphrase = func() (string, error) { return ReadPassphrase("Passphrase: ") }
	}

	op := NewOperation(operation, "", opts.Clock.Now())
	sl, logFile, err := newLogger(cfg.LogDir, op.ID(), opts.Console)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger := &slogAdapter{l: sl}

	a := &CourseApp{
		cfg:      cfg,
		clock:    opts.Clock,
		logger:   logger,
		defaults: editorDefaults(cfg.Editor),
		op:       op,
		logFile:  logFile,
	}

	db, err := database.NewDatabaseFromConfig(cfg.Database)
	if err != nil {
		a.closeLog()
		return nil, fmt.Errorf("creating database: %w", err)
	}
	a.db = db

	if err := db.CheckMigrations(); err != nil {
		a.closeResources()
		return nil, fmt.Errorf("database schema out of date: %w", err)
	}

	token, err := a.loadToken(opts.Passphrase)
	if err != nil {
		a.closeResources()
		return nil, err
	}

	courses, err := api.NewCourseAPIFromConfig(cfg.API, token, logger)
	if err != nil {
		a.closeResources()
		return nil, fmt.Errorf("creating course api: %w", err)
	}
	a.api = courses

	store, err := drafts.NewDraftStoreFromConfig(ctx, cfg.Drafts)
	if err != nil {
		a.closeResources()
		return nil, fmt.Errorf("creating draft store: %w", err)
	}
	a.drafts = store

	logger.Debug("operation started", "operation", operation, "api", cfg.API.Type, "drafts", cfg.Drafts.Type)
	return a, nil
}

// loadToken unlocks the stored bearer token. Only the rest backend needs one;
// a missing token is logged and the calls go out unauthenticated.
func (a *CourseApp) loadToken(passphrase func() (string, error)) (string, error) {
	if a.cfg.API.Type != "rest" || a.cfg.API.TokenPath == "" {
		return "", nil
	}
	if _, err := os.Stat(a.cfg.API.TokenPath); errors.Is(err, os.ErrNotExist) {
		a.logger.Warn("no API token stored, requests are unauthenticated", "path", a.cfg.API.TokenPath)
		return "", nil
	}

	enc, err := encryption.NewEncryptorFromConfig(a.cfg.Encryption)
	if err != nil {
		return "", fmt.Errorf("creating encryptor: %w", err)
	}
	pass, err := passphrase()
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	token, err := LoadToken(enc, a.cfg.API.TokenPath, pass)
	if err != nil {
		return "", fmt.Errorf("loading API token: %w", err)
	}
	return token, nil
}

func editorDefaults(cfg config.EditorConfig) editor.Defaults {
	d := editor.DefaultDefaults()
	if cfg.ModuleTitle != "" {
		d.ModuleTitle = cfg.ModuleTitle
	}
	if cfg.LessonTitle != "" {
		d.LessonTitle = cfg.LessonTitle
	}
	if cfg.LessonKind != "" {
		d.LessonKind = model.ContentKind(cfg.LessonKind)
	}
	return d
}

func (a *CourseApp) sessionOptions() editor.Options {
	return editor.Options{
		Clock:    a.clock,
		Logger:   a.logger,
		Journal:  a.db,
		Defaults: &a.defaults,
	}
}

// CourseSummary is one entry of ListCourses.
type CourseSummary struct {
	ID       string
	Title    string
	Status   model.CourseStatus
	HasDraft bool
	Active   bool
}

// ListCourses returns the courses known to the backend, flagging the ones
// with unsaved drafts and the active one.
func (a *CourseApp) ListCourses(ctx context.Context) ([]CourseSummary, error) {
	courses, err := a.api.ListCourses(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing courses: %w", err)
	}
	ids, err := a.drafts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing drafts: %w", err)
	}
	withDraft := make(map[string]bool, len(ids))
	for _, id := range ids {
		withDraft[id] = true
	}
	active, _, err := a.ActiveCourse()
	if err != nil {
		return nil, err
	}

	out := make([]CourseSummary, 0, len(courses))
	for _, c := range courses {
		out = append(out, CourseSummary{
			ID:       c.ID,
			Title:    c.Title,
			Status:   c.Status,
			HasDraft: withDraft[c.ID],
			Active:   c.ID == active,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// CreateCourse creates a course on the server and makes it the active course.
func (a *CourseApp) CreateCourse(ctx context.Context, title string) (_ *model.Course, err error) {
	defer func() { a.op.Fail(err) }()

	c, err := editor.CreateCourse(ctx, a.api, model.CourseFields{Title: title})
	if err != nil {
		return nil, err
	}
	if err := a.setActive(c.ID); err != nil {
		return nil, err
	}
	a.logger.Info("course created", "course", c.ID)
	return c, nil
}

// OpenCourse makes courseID the active course. An existing draft is kept and
// resumed; otherwise the course is fetched to check that it exists.
// It reports whether a draft was found.
func (a *CourseApp) OpenCourse(ctx context.Context, courseID string) (_ *model.Course, resumed bool, err error) {
	defer func() { a.op.Fail(err) }()

	s, resumed, err := a.load(ctx, courseID)
	if err != nil {
		return nil, false, err
	}
	if err := a.setActive(courseID); err != nil {
		return nil, false, err
	}
	return s.Course(), resumed, nil
}

// ActiveCourse returns the id of the active course and whether one is set.
func (a *CourseApp) ActiveCourse() (string, bool, error) {
	id, ok, err := a.db.GetWorkspaceValue(activeCourseKey)
	if err != nil {
		return "", false, fmt.Errorf("reading active course: %w", err)
	}
	return id, ok, nil
}

func (a *CourseApp) setActive(courseID string) error {
	if err := a.db.SetWorkspaceValue(activeCourseKey, courseID, a.clock.Now()); err != nil {
		return fmt.Errorf("setting active course: %w", err)
	}
	return nil
}

// load resumes the draft of courseID, or opens a clean session on it.
func (a *CourseApp) load(ctx context.Context, courseID string) (*editor.Session, bool, error) {
	d, err := a.drafts.Load(ctx, courseID)
	if err != nil {
		return nil, false, fmt.Errorf("loading draft: %w", err)
	}
	if d != nil {
		s, err := editor.Resume(d, a.api, a.sessionOptions())
		if err != nil {
			return nil, false, fmt.Errorf("resuming draft of %s: %w", courseID, err)
		}
		return s, true, nil
	}
	s, err := editor.Open(ctx, a.api, courseID, a.sessionOptions())
	if err != nil {
		return nil, false, err
	}
	return s, false, nil
}

// session loads the editing session of the active course.
func (a *CourseApp) session(ctx context.Context) (*editor.Session, error) {
	id, ok, err := a.ActiveCourse()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoActiveCourse
	}
	s, _, err := a.load(ctx, id)
	if errors.Is(err, editor.ErrNotFound) {
		// The course is gone from the server and there is no draft of it.
		if clearErr := a.db.DeleteWorkspaceValue(activeCourseKey); clearErr != nil {
			return nil, errors.Join(err, fmt.Errorf("clearing active course: %w", clearErr))
		}
		a.logger.Warn("active course no longer exists", "course", id)
	}
	return s, err
}

// persist stores the session as a draft while it has unsaved changes and
// drops the draft once it is clean.
func (a *CourseApp) persist(ctx context.Context, s *editor.Session) error {
	if s.Dirty() {
		if err := a.drafts.Save(ctx, s.Draft()); err != nil {
			return fmt.Errorf("saving draft: %w", err)
		}
		return nil
	}
	if err := a.drafts.Delete(ctx, s.CourseID()); err != nil {
		return fmt.Errorf("deleting draft: %w", err)
	}
	return nil
}

// Course returns the working tree of the active course.
func (a *CourseApp) Course(ctx context.Context) (*model.Course, error) {
	s, err := a.session(ctx)
	if err != nil {
		return nil, err
	}
	return s.Course(), nil
}

// CourseStatus describes the editing state of the active course.
type CourseStatus struct {
	CourseID     string
	Title        string
	Dirty        bool
	Placeholders int
}

// Status reports whether the active course has unsaved changes.
func (a *CourseApp) Status(ctx context.Context) (*CourseStatus, error) {
	s, err := a.session(ctx)
	if err != nil {
		return nil, err
	}
	c := s.Course()
	st := &CourseStatus{CourseID: c.ID, Title: c.Title, Dirty: s.Dirty()}
	for _, m := range c.Modules {
		if editor.IsPlaceholder(m.ID) {
			st.Placeholders++
		}
		for _, l := range m.Lessons {
			if editor.IsPlaceholder(l.ID) {
				st.Placeholders++
			}
		}
	}
	return st, nil
}

// Edit runs fn against the session of the active course and keeps the
// result as a draft. The draft is written even when fn fails, since server
// deletes made by fn have already happened.
func (a *CourseApp) Edit(ctx context.Context, fn func(*editor.Session) error) (err error) {
	defer func() { a.op.Fail(err) }()

	s, err := a.session(ctx)
	if err != nil {
		return err
	}
	fnErr := fn(s)
	if err := a.persist(ctx, s); err != nil {
		if fnErr != nil {
			return errors.Join(fnErr, err)
		}
		return err
	}
	return fnErr
}

// AddModule appends a module to the active course and applies u to it.
// A module whose fields are rejected is not kept.
func (a *CourseApp) AddModule(ctx context.Context, u editor.ModuleUpdate) (id string, err error) {
	err = a.Edit(ctx, func(s *editor.Session) error {
		id = s.AddModule()
		if u == (editor.ModuleUpdate{}) {
			return nil
		}
		if _, err := s.UpdateModule(id, u); err != nil {
			s.RemoveModule(ctx, id)
			return err
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// AddLesson appends a lesson to a module of the active course and applies u
// to it. A lesson whose fields are rejected is not kept.
func (a *CourseApp) AddLesson(ctx context.Context, moduleID string, u editor.LessonUpdate) (id string, err error) {
	err = a.Edit(ctx, func(s *editor.Session) error {
		var ok bool
		id, ok = s.AddLesson(moduleID)
		if !ok {
			return fmt.Errorf("module %s: %w", moduleID, editor.ErrNotFound)
		}
		if u == (editor.LessonUpdate{}) {
			return nil
		}
		if _, err := s.UpdateLesson(id, u); err != nil {
			s.RemoveLesson(ctx, id)
			return err
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// Save reconciles the active course with the server. A clean session is not
// sent and returns a nil report. After a failed save the partially
// reconciled tree is kept as the draft so the next save resumes from it.
func (a *CourseApp) Save(ctx context.Context) (_ *editor.SaveReport, err error) {
	defer func() { a.op.Fail(err) }()

	s, err := a.session(ctx)
	if err != nil {
		return nil, err
	}
	if !s.Dirty() {
		return nil, nil
	}

	report, saveErr := s.Save(ctx)
	if err := a.persist(ctx, s); err != nil {
		if saveErr != nil {
			return report, errors.Join(saveErr, err)
		}
		return report, err
	}
	if saveErr != nil {
		return report, saveErr
	}
	a.logger.Info("course saved", "course", s.CourseID(),
		"creates", report.Creates, "updates", report.Updates, "deletes", report.Deletes, "reorders", report.Reorders)
	return report, nil
}

// Discard drops the draft of the active course and reloads it from the server.
func (a *CourseApp) Discard(ctx context.Context) (err error) {
	defer func() { a.op.Fail(err) }()

	s, err := a.session(ctx)
	if err != nil {
		return err
	}
	if err := s.Discard(ctx); err != nil {
		return err
	}
	return a.persist(ctx, s)
}

// History returns the most recent save runs of every course, newest first.
func (a *CourseApp) History(limit int) ([]*database.SaveOperation, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}
	return a.db.ListSaveOperations("", limit)
}

// Steps returns the network steps recorded for a save run.
func (a *CourseApp) Steps(operationID int64) ([]editor.Step, error) {
	return a.db.ListSaveSteps(operationID)
}

// Close logs the operation outcome and closes the database and log file.
func (a *CourseApp) Close() error {
	if a.op.Failed() {
		a.logger.Warn("operation failed", "operation", a.op.Name)
	} else {
		a.logger.Debug("operation finished", "operation", a.op.Name)
	}
	return a.closeResources()
}

func (a *CourseApp) closeResources() error {
	var firstErr error
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			firstErr = fmt.Errorf("closing database: %w", err)
		}
	}
	a.closeLog()
	return firstErr
}

func (a *CourseApp) closeLog() {
	if a.logFile != nil {
		a.logFile.Close()
	}
}
