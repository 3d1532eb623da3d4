package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"coursekit/internal/database/migrations"
	"coursekit/internal/editor"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Save operation statuses.
const (
	StatusRunning = "running"
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// SaveOperation is one recorded save run.
type SaveOperation struct {
	ID         int64
	CourseID   string
	StartedAt  time.Time
	FinishedAt sql.NullTime
	Status     string
	Error      string
	Creates    int
	Updates    int
	Deletes    int
	Reorders   int
}

// SQLiteDatabase stores the save journal and workspace state in SQLite.
// It implements editor.Journal.
type SQLiteDatabase struct {
	db   *sql.DB
	path string
}

// NewSQLiteDatabase creates a new SQLite database connection.
// path can be a file path or ":memory:" for in-memory database.
func NewSQLiteDatabase(path string) (*SQLiteDatabase, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}
	return &SQLiteDatabase{db: db, path: path}, nil
}

// NewSQLiteDatabaseFromDB wraps an existing database connection.
// The caller is responsible for ensuring the connection is properly configured.
func NewSQLiteDatabaseFromDB(db *sql.DB) *SQLiteDatabase {
	return &SQLiteDatabase{db: db}
}

// OpenConnection opens and configures a SQLite database connection.
// path can be a file path or ":memory:" for in-memory database.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection keeps PRAGMAs in effect and gives every caller the
	// same database when path is ":memory:".
	db.SetMaxOpenConns(1)

	// SQLite default is OFF for backward compatibility.
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// Save journal

// staleSaveAfter is how long a save may stay running before another save of
// the same course may start. A process killed mid-save never finishes its row.
const staleSaveAfter = 15 * time.Minute

// StartSave inserts a running save operation and returns its id.
// It returns editor.ErrSaveInProgress while another save of the same course
// is running, in this process or another. Running rows older than
// staleSaveAfter are marked failed instead.
func (s *SQLiteDatabase) StartSave(courseID string, startedAt time.Time) (id int64, err error) {
	ctx := context.Background()

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return 0, fmt.Errorf("acquiring connection: %w", err)
	}
	defer conn.Close()

	// IMMEDIATE takes the write lock before the check, so two processes
	// cannot both find no running save.
	if _, err := conn.ExecContext(ctx, "BEGIN IMMEDIATE"); err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if err != nil {
			conn.ExecContext(ctx, "ROLLBACK")
		}
	}()

	stale, err := runningSaves(ctx, conn, courseID, startedAt)
	if err != nil {
		return 0, err
	}
	for _, staleID := range stale {
		_, err := conn.ExecContext(ctx,
			"UPDATE save_operations SET finished_at = ?, status = ?, error = ? WHERE id = ?",
			startedAt.UTC(), StatusFailed, "abandoned", staleID,
		)
		if err != nil {
			return 0, fmt.Errorf("closing abandoned save operation %d: %w", staleID, err)
		}
	}

	res, err := conn.ExecContext(ctx,
		"INSERT INTO save_operations (course_id, started_at, status) VALUES (?, ?, ?)",
		courseID, startedAt.UTC(), StatusRunning,
	)
	if err != nil {
		return 0, fmt.Errorf("creating save operation: %w", err)
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading save operation id: %w", err)
	}

	if _, err = conn.ExecContext(ctx, "COMMIT"); err != nil {
		return 0, fmt.Errorf("committing save operation: %w", err)
	}
	return id, nil
}

// runningSaves returns the ids of running saves of courseID that are stale
// at now, or editor.ErrSaveInProgress if any of them is not.
func runningSaves(ctx context.Context, conn *sql.Conn, courseID string, now time.Time) ([]int64, error) {
	rows, err := conn.QueryContext(ctx,
		"SELECT id, started_at FROM save_operations WHERE course_id = ? AND status = ?",
		courseID, StatusRunning,
	)
	if err != nil {
		return nil, fmt.Errorf("checking running saves: %w", err)
	}
	defer rows.Close()

	var stale []int64
	for rows.Next() {
		var (
			id        int64
			startedAt time.Time
		)
		if err := rows.Scan(&id, &startedAt); err != nil {
			return nil, fmt.Errorf("scanning running save: %w", err)
		}
		if now.Sub(startedAt) < staleSaveAfter {
			return nil, editor.ErrSaveInProgress
		}
		stale = append(stale, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("checking running saves: %w", err)
	}
	return stale, nil
}

// FinishSave records the outcome and the steps of a save operation in one transaction.
func (s *SQLiteDatabase) FinishSave(id int64, finishedAt time.Time, report *editor.SaveReport, saveErr error) error {
	ctx := context.Background()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	status, errText := StatusSuccess, ""
	if saveErr != nil {
		status, errText = StatusFailed, saveErr.Error()
	}
	if report == nil {
		report = &editor.SaveReport{}
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE save_operations
		SET finished_at = ?, status = ?, error = ?, creates = ?, updates = ?, deletes = ?, reorders = ?
		WHERE id = ?`,
		finishedAt.UTC(), status, errText, report.Creates, report.Updates, report.Deletes, report.Reorders, id,
	)
	if err != nil {
		return fmt.Errorf("finishing save operation: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("finishing save operation %d: no such operation", id)
	}

	for i, step := range report.Steps {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO save_steps (operation_id, seq, op, kind, local_id, real_id) VALUES (?, ?, ?, ?, ?, ?)",
			id, i, step.Op, step.Kind, step.LocalID, step.RealID,
		)
		if err != nil {
			return fmt.Errorf("recording save step %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing save operation: %w", err)
	}
	return nil
}

// ListSaveOperations returns the most recent save operations, newest first.
// An empty courseID lists operations of every course.
func (s *SQLiteDatabase) ListSaveOperations(courseID string, limit int) ([]*SaveOperation, error) {
	rows, err := s.db.Query(`
		SELECT id, course_id, started_at, finished_at, status, error, creates, updates, deletes, reorders
		FROM save_operations
		WHERE ? = '' OR course_id = ?
		ORDER BY id DESC
		LIMIT ?`,
		courseID, courseID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing save operations: %w", err)
	}
	defer rows.Close()

	var ops []*SaveOperation
	for rows.Next() {
		var op SaveOperation
		if err := rows.Scan(&op.ID, &op.CourseID, &op.StartedAt, &op.FinishedAt, &op.Status, &op.Error,
			&op.Creates, &op.Updates, &op.Deletes, &op.Reorders); err != nil {
			return nil, fmt.Errorf("scanning save operation: %w", err)
		}
		ops = append(ops, &op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing save operations: %w", err)
	}
	return ops, nil
}

// ListSaveSteps returns the steps of a save operation in issue order.
func (s *SQLiteDatabase) ListSaveSteps(operationID int64) ([]editor.Step, error) {
	rows, err := s.db.Query(
		"SELECT op, kind, local_id, real_id FROM save_steps WHERE operation_id = ? ORDER BY seq",
		operationID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing save steps: %w", err)
	}
	defer rows.Close()

	var steps []editor.Step
	for rows.Next() {
		var st editor.Step
		if err := rows.Scan(&st.Op, &st.Kind, &st.LocalID, &st.RealID); err != nil {
			return nil, fmt.Errorf("scanning save step: %w", err)
		}
		steps = append(steps, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing save steps: %w", err)
	}
	return steps, nil
}

// Workspace

// GetWorkspaceValue returns the value stored under key, or "" and false.
func (s *SQLiteDatabase) GetWorkspaceValue(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM workspace WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading workspace value %s: %w", key, err)
	}
	return value, true, nil
}

// SetWorkspaceValue stores value under key, replacing any previous value.
func (s *SQLiteDatabase) SetWorkspaceValue(key, value string, at time.Time) error {
	_, err := s.db.Exec(`
		INSERT INTO workspace (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, at.UTC(),
	)
	if err != nil {
		return fmt.Errorf("writing workspace value %s: %w", key, err)
	}
	return nil
}

// DeleteWorkspaceValue removes key. Removing a missing key is not an error.
func (s *SQLiteDatabase) DeleteWorkspaceValue(key string) error {
	if _, err := s.db.Exec("DELETE FROM workspace WHERE key = ?", key); err != nil {
		return fmt.Errorf("deleting workspace value %s: %w", key, err)
	}
	return nil
}

// Path returns the database file path (or ":memory:" for in-memory databases).
func (s *SQLiteDatabase) Path() string {
	return s.path
}

// Migrate brings the schema to the latest version.
func (s *SQLiteDatabase) Migrate() error {
	return migrations.MigrateUp(s.db)
}

// CheckMigrations verifies the database schema is up-to-date.
func (s *SQLiteDatabase) CheckMigrations() error {
	return migrations.CheckDBMigrationStatus(s.db)
}

// Close closes the database connection.
func (s *SQLiteDatabase) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Compile-time check that SQLiteDatabase implements editor.Journal interface
var _ editor.Journal = (*SQLiteDatabase)(nil)
