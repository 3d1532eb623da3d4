package editor

import "time"

// Journal records save runs. Implementations must tolerate FinishSave being
// called with a nil error and a partially filled report.
type Journal interface {
	// StartSave records the beginning of a save and returns its id. It returns
	// ErrSaveInProgress if another save of the course has not finished.
	StartSave(courseID string, startedAt time.Time) (int64, error)

	// FinishSave records the outcome of a save, including every step issued.
	FinishSave(id int64, finishedAt time.Time, report *SaveReport, saveErr error) error
}

// NopJournal discards save records.
type NopJournal struct{}

func (NopJournal) StartSave(string, time.Time) (int64, error) { return 0, nil }

func (NopJournal) FinishSave(int64, time.Time, *SaveReport, error) error { return nil }
