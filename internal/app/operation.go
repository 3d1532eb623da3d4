package app

import (
	"strings"
	"time"
)

// Operation statuses.
const (
	OperationSuccess = "success"
	OperationError   = "error"
)

// Operation tracks one CLI command for logging. Its ID tags every log line
// written while the command runs.
type Operation struct {
	Name       string
	Parameters string
	Status     string // "success" or "error"
	StartedAt  time.Time
}

// NewOperation creates an operation that starts out successful.
func NewOperation(name, parameters string, startedAt time.Time) *Operation {
	return &Operation{
		Name:       name,
		Parameters: parameters,
		Status:     OperationSuccess,
		StartedAt:  startedAt.UTC(),
	}
}

// ID returns the log identifier of the operation: its start time and name.
func (op *Operation) ID() string {
	return op.StartedAt.Format("20060102T150405Z") + "-" + strings.ToLower(op.Name)
}

// Fail marks the operation as failed. A nil error leaves it unchanged.
func (op *Operation) Fail(err error) {
	if err != nil {
		op.Status = OperationError
	}
}

// Failed reports whether Fail was called with an error.
func (op *Operation) Failed() bool {
	return op.Status == OperationError
}
