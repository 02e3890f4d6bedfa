package web

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/tabproj/internal/core"
	"github.com/JonMunkholm/tabproj/internal/logging"
	"github.com/JonMunkholm/tabproj/internal/table"
	"github.com/JonMunkholm/tabproj/internal/web/templates"
)

// multipartMemory is how much of a multipart upload is held in memory
// before the rest spills to a temporary file.
const multipartMemory = 32 << 20

// errNoFile is returned for multipart requests without a "file" field.
var errNoFile = errors.New("no file provided")

// tableJSON is the wire form of a table: column names plus positional rows.
type tableJSON struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

func toTableJSON(t *table.Table) tableJSON {
	return tableJSON{Columns: t.Columns(), Rows: t.Records()}
}

// resultJSON is the wire form of a core.RunResult.
type resultJSON struct {
	ID         string     `json:"id"`
	Pipeline   string     `json:"pipeline"`
	FileName   string     `json:"file_name"`
	Columns    []string   `json:"columns"`
	InputRows  int        `json:"input_rows"`
	Rows       int        `json:"rows"`
	Head       tableJSON  `json:"head"`
	DurationMS int64      `json:"duration_ms"`
	CreatedAt  time.Time  `json:"created_at"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
}

func toResultJSON(res *core.RunResult) resultJSON {
	out := resultJSON{
		ID:         res.ID,
		Pipeline:   res.Pipeline,
		FileName:   res.FileName,
		Columns:    res.Columns,
		InputRows:  res.InputRows,
		Rows:       res.Rows,
		Head:       toTableJSON(res.Head),
		DurationMS: res.Duration.Milliseconds(),
		CreatedAt:  res.CreatedAt,
	}
	if !res.ExpiresAt.IsZero() {
		out.ExpiresAt = &res.ExpiresAt
	}
	return out
}

// parseIntParam parses a non-negative integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 0 {
		return defaultVal
	}
	return i
}

// handleDashboard renders the pipeline list and stored results.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = templates.Dashboard(templates.DashboardParams{
		Pipelines:      s.service.Definitions(),
		Results:        s.service.Results(),
		PublishEnabled: s.service.PublishEnabled(),
	}).Render(r.Context(), w)
}

// handleResultPage renders the head of one stored result.
func (s *Server) handleResultPage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	res, err := s.service.Result(id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	head, err := s.service.Head(id, parseIntParam(r, "n", 0))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = templates.ResultPage(res, head, s.service.PublishEnabled()).Render(r.Context(), w)
}

// handleStatus reports limiter and store state for monitoring.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"limiter":         s.service.LimiterStatus(),
		"results":         len(s.service.Results()),
		"pipelines":       len(s.service.Definitions()),
		"publish_enabled": s.service.PublishEnabled(),
	})
}

// handleListPipelines returns every registered definition.
func (s *Server) handleListPipelines(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.Definitions())
}

// handleRun executes a pipeline. The source is, in order of preference:
// the ?url= query parameter (an empty value uses the pipeline's source
// url), a multipart "file" field, or the raw request body.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	r = withOrigin(r)

	var (
		res *core.RunResult
		err error
	)
	if q := r.URL.Query(); q.Has("url") {
		res, err = s.service.RunURL(r.Context(), key, q.Get("url"))
	} else {
		var (
			body io.ReadCloser
			name string
		)
		body, name, err = s.requestSource(w, r)
		if err == nil {
			defer body.Close()
			res, err = s.service.Run(r.Context(), key, name, body)
		}
	}
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if !wantsJSON(r) {
		http.Redirect(w, r, "/results/"+res.ID, http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusCreated, toResultJSON(res))
}

// requestSource returns the uploaded file of a multipart request, or the
// raw body otherwise, bounded by the configured maximum size.
func (s *Server) requestSource(w http.ResponseWriter, r *http.Request) (io.ReadCloser, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Ingest.MaxFileSize)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return r.Body, "request body", nil
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return nil, "", fmt.Errorf("%w: limit is %d bytes", core.ErrFileTooLarge, maxBytes.Limit)
		}
		return nil, "", fmt.Errorf("%w: %v", errNoFile, err)
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", errNoFile, err)
	}
	return file, header.Filename, nil
}

// handleListResults returns summaries of the stored results, newest first.
func (s *Server) handleListResults(w http.ResponseWriter, r *http.Request) {
	results := s.service.Results()
	out := make([]resultJSON, len(results))
	for i := range results {
		out[i] = toResultJSON(&results[i])
	}
	writeJSON(w, http.StatusOK, out)
}

// handleResultHead returns the first ?n= rows of a stored result.
func (s *Server) handleResultHead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	head, err := s.service.Head(id, parseIntParam(r, "n", 0))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTableJSON(head))
}

// handleDiscardResult drops a stored result before it expires.
func (s *Server) handleDiscardResult(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.service.Result(id); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.service.Discard(id)
	w.WriteHeader(http.StatusNoContent)
}

// handleExport streams the full result as a CSV download.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	res, err := s.service.Result(id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	filename := fmt.Sprintf("%s-%s.csv", res.Pipeline, res.ID[:min(8, len(res.ID))])
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))

	if err := s.service.ExportCSV(id, w); err != nil {
		// Headers are already sent; the client sees a truncated file.
		logging.FromContext(r.Context()).Error("export failed", "id", id, "error", err)
	}
}

// handlePublish writes a stored result to the database as ?table= (the
// pipeline key when omitted).
func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	name := r.URL.Query().Get("table")
	if name == "" {
		name = r.PostFormValue("table")
	}

	n, err := s.service.Publish(r.Context(), id, name)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if !wantsJSON(r) {
		http.Redirect(w, r, "/results/"+id, http.StatusSeeOther)
		return
	}
	if name == "" {
		res, _ := s.service.Result(id)
		if res != nil {
			name = res.Pipeline
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"table": name, "rows": n})
}
