package web

// errors.go provides unified error response handling for the web layer.
//
// The error flow:
//  1. Handler encounters an error
//  2. Calls respondError(w, r, err)
//  3. The status comes from statusFromError, the user message from core.MapError
//  4. Technical error + context is logged with request ID for correlation
//  5. User message is rendered as JSON for API clients or as a page for browsers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/JonMunkholm/tabproj/internal/core"
	"github.com/JonMunkholm/tabproj/internal/logging"
	"github.com/JonMunkholm/tabproj/internal/store"
	"github.com/JonMunkholm/tabproj/internal/table"
	"github.com/JonMunkholm/tabproj/internal/web/templates"
)

// ErrorResponse represents the JSON structure for API error responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// statusFromError picks the HTTP status for err.
func statusFromError(err error) int {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.Is(err, core.ErrUnknownPipeline), errors.Is(err, core.ErrResultNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrFileTooLarge), errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, table.ErrMalformedRow),
		errors.Is(err, table.ErrUnknownColumn),
		errors.Is(err, table.ErrDuplicateColumn),
		errors.Is(err, table.ErrInvalidSeparator),
		errors.Is(err, core.ErrEmptySource):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errNoFile), errors.Is(err, core.ErrNoSourceURL), errors.Is(err, store.ErrInvalidTableName):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrAddressNotAllowed):
		return http.StatusForbidden
	case errors.Is(err, core.ErrFetchFailed):
		return http.StatusBadGateway
	case errors.Is(err, core.ErrTooManyRuns), errors.Is(err, core.ErrPublishDisabled):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	if strings.Contains(err.Error(), "encoding error") || strings.Contains(err.Error(), "gzip:") {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// respondError logs err and writes a user-friendly response.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFromError(err)
	msg := core.MapError(err)

	log := logging.FromContext(r.Context())
	args := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", msg.Code,
	}
	if status >= http.StatusInternalServerError {
		log.Error("request error", args...)
	} else {
		log.Warn("request error", args...)
	}

	if status == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", "5")
	}

	if wantsJSON(r) {
		writeJSON(w, status, ErrorResponse{
			Error:   msg.Message,
			Message: msg.Message,
			Action:  msg.Action,
			Code:    msg.Code,
		})
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = templates.ErrorPage(msg.Message, msg.Action, msg.Code).Render(r.Context(), w)
}

// wantsJSON reports whether the client prefers a JSON response. API routes
// answer JSON unless the client asks for HTML, as browser form posts do.
func wantsJSON(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	switch {
	case strings.Contains(accept, "application/json"):
		return true
	case strings.Contains(accept, "text/html"):
		return false
	}
	return strings.HasPrefix(r.URL.Path, "/api/")
}
