package core

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"runtime/debug"
	"slices"
	"sync"
	"time"

	"github.com/JonMunkholm/tabproj/internal/config"
	"github.com/JonMunkholm/tabproj/internal/logging"
	"github.com/JonMunkholm/tabproj/internal/table"
	"github.com/google/uuid"
)

var (
	// ErrUnknownPipeline is returned when a run names an unregistered key.
	ErrUnknownPipeline = errors.New("unknown pipeline")

	// ErrResultNotFound is returned for ids that never existed or expired.
	ErrResultNotFound = errors.New("result not found")

	// ErrNoSourceURL is returned by RunURL when neither the caller nor the
	// definition supplies a URL.
	ErrNoSourceURL = errors.New("no file provided: pipeline has no source url")
)

// Service runs pipelines and keeps their results for preview, export and
// publishing.
type Service struct {
	ingest  config.IngestConfig
	run     config.RunConfig
	limiter *RunLimiter
	fetcher *Fetcher
	pub     Publisher

	mu      sync.RWMutex
	results map[string]*storedResult
}

// NewService creates a Service from cfg. pub may be nil, in which case
// Publish returns ErrPublishDisabled.
func NewService(cfg *config.Config, pub Publisher) *Service {
	return &Service{
		ingest:  cfg.Ingest,
		run:     cfg.Run,
		limiter: NewRunLimiter(cfg.Run.MaxConcurrent, cfg.Run.MaxWaitTime),
		fetcher: NewFetcher(cfg.Ingest.FetchTimeout, cfg.Ingest.MaxFileSize, cfg.Ingest.FetchAllowPrivate),
		pub:     pub,
		results: make(map[string]*storedResult),
	}
}

// Definitions returns every registered pipeline.
func (s *Service) Definitions() []Definition {
	return All()
}

// Run executes the registered pipeline key against r.
func (s *Service) Run(ctx context.Context, key, fileName string, r io.Reader) (*RunResult, error) {
	def, ok := Get(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPipeline, key)
	}
	return s.RunDefinition(ctx, def, fileName, r)
}

// RunURL downloads rawURL and executes the registered pipeline key against
// it. An empty rawURL falls back to the definition's SourceURL.
func (s *Service) RunURL(ctx context.Context, key, rawURL string) (*RunResult, error) {
	def, ok := Get(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPipeline, key)
	}
	return s.RunDefinitionURL(ctx, def, rawURL)
}

// RunDefinition executes def, which need not be registered, against r.
func (s *Service) RunDefinition(ctx context.Context, def Definition, fileName string, r io.Reader) (*RunResult, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	return s.execute(ctx, def, fileName, r)
}

// RunDefinitionURL downloads rawURL (or def.SourceURL) and executes def.
// The run slot is held for the download too.
func (s *Service) RunDefinitionURL(ctx context.Context, def Definition, rawURL string) (*RunResult, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	if rawURL == "" {
		rawURL = def.SourceURL
	}
	if rawURL == "" {
		return nil, ErrNoSourceURL
	}
	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	ctx, cancel := s.withRunTimeout(ctx)
	defer cancel()

	body, err := s.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	return s.execute(ctx, def, path.Base(rawURL), body)
}

func (s *Service) withRunTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.run.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.run.Timeout)
}

// execute reads, ingests and transforms one source and stores the result.
// The caller holds a limiter slot.
func (s *Service) execute(ctx context.Context, def Definition, fileName string, r io.Reader) (res *RunResult, err error) {
	id := uuid.New().String()
	fields := append([]any{"run_id", id, "pipeline", def.Key, "file", fileName}, OriginFromContext(ctx).logArgs()...)
	log := logging.WithFields(ctx, fields...)
	start := time.Now()

	defer func() {
		if rec := recover(); rec != nil {
			log.Error("panic in run", "panic", rec, "stack", string(debug.Stack()))
			res, err = nil, fmt.Errorf("run panicked: %v", rec)
		}
	}()

	ctx, cancel := s.withRunTimeout(ctx)
	defer cancel()

	encoding := def.Encoding
	if encoding == "" {
		encoding = s.ingest.Encoding
	}

	text, err := ReadSource(r, SourceOptions{MaxSize: s.ingest.MaxFileSize, Encoding: encoding})
	if err != nil {
		log.Warn("read source failed", "error", err)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	hasHeader := s.ingest.HasHeader && !def.NoHeader
	in, err := table.Ingest(text, def.SeparatorRune(s.ingest.SeparatorRune()), hasHeader)
	if err != nil {
		log.Warn("ingest failed", "error", err)
		return nil, fmt.Errorf("ingest: %w", err)
	}

	out, err := def.Apply(in)
	if err != nil {
		log.Warn("pipeline failed", "error", err)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	headRows := cmp.Or(def.Head, s.run.HeadRows)
	now := time.Now()
	info := RunResult{
		ID:        id,
		Pipeline:  def.Key,
		FileName:  fileName,
		Columns:   out.Columns(),
		InputRows: in.Len(),
		Rows:      out.Len(),
		Head:      out.Head(headRows),
		Duration:  time.Since(start),
		CreatedAt: now,
	}
	if s.run.ResultTTL > 0 {
		info.ExpiresAt = now.Add(s.run.ResultTTL)
	}

	s.store(info, out)

	log.Info("run complete",
		"input_rows", info.InputRows,
		"rows", info.Rows,
		"columns", len(info.Columns),
		"duration", info.Duration)

	return &info, nil
}

func (s *Service) store(info RunResult, t *table.Table) {
	sr := &storedResult{info: info, table: t}
	if s.run.ResultTTL > 0 {
		sr.timer = time.AfterFunc(s.run.ResultTTL, func() { s.Discard(info.ID) })
	}

	s.mu.Lock()
	s.results[info.ID] = sr
	s.mu.Unlock()
}

func (s *Service) lookup(id string) (*storedResult, error) {
	s.mu.RLock()
	sr, ok := s.results[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrResultNotFound, id)
	}
	return sr, nil
}

// Result returns the summary of a stored run.
func (s *Service) Result(id string) (*RunResult, error) {
	sr, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	info := sr.info
	return &info, nil
}

// Table returns the full output table of a stored run.
func (s *Service) Table(id string) (*table.Table, error) {
	sr, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	return sr.table, nil
}

// Head returns the first n rows of a stored run. n <= 0 uses the configured
// preview size.
func (s *Service) Head(id string, n int) (*table.Table, error) {
	sr, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		n = s.run.HeadRows
	}
	return sr.table.Head(n), nil
}

// Results returns summaries of all stored runs, newest first.
func (s *Service) Results() []RunResult {
	s.mu.RLock()
	out := make([]RunResult, 0, len(s.results))
	for _, sr := range s.results {
		out = append(out, sr.info)
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b RunResult) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out
}

// Discard removes a stored run. Unknown ids are ignored.
func (s *Service) Discard(id string) {
	s.mu.Lock()
	sr, ok := s.results[id]
	delete(s.results, id)
	s.mu.Unlock()

	if ok && sr.timer != nil {
		sr.timer.Stop()
	}
}

// ExportCSV writes the full result of a stored run to w as CSV.
func (s *Service) ExportCSV(id string, w io.Writer) error {
	sr, err := s.lookup(id)
	if err != nil {
		return err
	}
	return WriteCSV(w, sr.table)
}

// ExportFile atomically writes the full result of a stored run to dst.
func (s *Service) ExportFile(id, dst string) error {
	sr, err := s.lookup(id)
	if err != nil {
		return err
	}
	return WriteCSVFile(dst, sr.table)
}

// PublishEnabled reports whether a publish target is configured.
func (s *Service) PublishEnabled() bool {
	return s.pub != nil
}

// Publish writes the full result of a stored run to the publish target as
// tableName. An empty tableName uses the pipeline key.
func (s *Service) Publish(ctx context.Context, id, tableName string) (int64, error) {
	if s.pub == nil {
		return 0, ErrPublishDisabled
	}
	sr, err := s.lookup(id)
	if err != nil {
		return 0, err
	}
	if tableName == "" {
		tableName = sr.info.Pipeline
	}

	n, err := s.pub.Publish(ctx, tableName, sr.table)
	if err != nil {
		return 0, fmt.Errorf("publish %s: %w", tableName, err)
	}

	logging.WithFields(ctx, "run_id", id, "table", tableName).Info("result published", "rows", n)
	return n, nil
}

// LimiterStatus returns the run limiter state.
func (s *Service) LimiterStatus() LimiterStatus {
	return s.limiter.Status()
}

// WaitForRuns blocks until in-flight runs finish or ctx is done.
func (s *Service) WaitForRuns(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// Close drops every stored result and stops their expiry timers.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sr := range s.results {
		if sr.timer != nil {
			sr.timer.Stop()
		}
		delete(s.results, id)
	}
}
