package core

import (
	"context"
	"errors"
	"time"

	"github.com/JonMunkholm/tabproj/internal/table"
)

// ErrPublishDisabled is returned by Publish when no database is configured.
var ErrPublishDisabled = errors.New("publish disabled: no database configured")

// Publisher writes a finished table to an external store.
// Satisfied by *store.Store.
type Publisher interface {
	Publish(ctx context.Context, name string, t *table.Table) (int64, error)
}

// RunResult describes a finished pipeline run.
type RunResult struct {
	ID        string
	Pipeline  string
	FileName  string
	Columns   []string
	InputRows int // rows ingested before the pipeline ran
	Rows      int
	Head      *table.Table
	Duration  time.Duration
	CreatedAt time.Time
	ExpiresAt time.Time
}

// storedResult is a run result plus the full output table.
type storedResult struct {
	info  RunResult
	table *table.Table
	timer *time.Timer
}
