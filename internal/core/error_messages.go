package core

// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support reference.
// When users encounter errors, they can quote the error code to support staff
// for faster diagnosis.
//
// # Table Errors (TAB001-TAB099)
//
// Matched by type (errors.As), so the message can name the offending column:
//
//	TAB001 - Malformed row: A row has a different number of fields than the header
//	         Action: Check the line for a missing or extra separator
//
//	TAB002 - Unknown column: A pipeline step names a column the source lacks
//	         Action: Verify the column headers match the pipeline definition
//
//	TAB003 - Duplicate column: Two columns would end up with the same name
//	         Action: Choose distinct column names
//
//	TAB004 - Invalid separator: The separator cannot split a line
//	         Action: Use a single printable character such as , ; or tab
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large: Source exceeds the configured size limit
//	          Patterns: "file too large", "request body too large"
//
//	FILE003 - Encoding error: Source encoding is not supported or is corrupt
//	          Patterns: "encoding error", "gzip:"
//
//	FILE004 - No file: No file was sent with the request
//	          Patterns: "no file provided"
//
//	FILE005 - Empty file: The source has no data
//	          Patterns: "empty file"
//
// # Run Errors (RUN001-RUN099)
//
//	RUN001 - System busy: Too many runs in progress
//	         Patterns: "too many concurrent runs"
//
//	RUN002 - Result expired: Stored result not found
//	         Patterns: "result not found"
//
//	RUN003 - Unknown pipeline: Pipeline key is not registered
//	         Patterns: "unknown pipeline"
//
//	RUN004 - Publish disabled: No database is configured
//	         Patterns: "publish disabled"
//
//	RUN005 - Request cancelled: Patterns: "context canceled"
//	RUN006 - Request timeout:   Patterns: "context deadline exceeded"
//
// # Source Errors (SRC001-SRC099)
//
//	SRC002 - Address not allowed: Source URL points at an internal address
//	         Patterns: "address not allowed"
//
//	SRC001 - Fetch failed: Remote source could not be downloaded
//	         Patterns: "fetch failed"
//
// # Database Errors (DB001-DB099)
//
//	DB004 - Connection refused: Patterns: "connection refused"
//	DB005 - Connection reset:   Patterns: "connection reset"
//	DB006 - Timeout:            Patterns: "timeout"
//	DB008 - Invalid table name: Patterns: "invalid table name"
//
// # Rate Limiting (RATE001)
//
//	RATE001 - Rate limited: Patterns: "rate limit"
//
// # Default Error (ERR000)
//
// Fallback when no type or pattern matches. Support staff should check
// application logs for the original technical error.
//
// # Pattern Matching
//
// Typed table errors are checked first. Remaining errors are matched
// case-insensitively using strings.Contains; the first matching pattern wins,
// so more specific patterns come before general ones.

import (
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/tabproj/internal/table"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
var errorPatterns = []errorPattern{
	// File errors
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds maximum size limit",
			Action:  "Split the file into smaller chunks or raise INGEST_MAX_FILE_SIZE",
			Code:    "FILE001",
		},
	},
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "File exceeds maximum size limit",
			Action:  "Split the file into smaller chunks or raise INGEST_MAX_FILE_SIZE",
			Code:    "FILE001",
		},
	},
	{
		pattern: "encoding error",
		msg: UserMessage{
			Message: "File contains unsupported or invalid characters",
			Action:  "Save the file as UTF-8 or set the pipeline encoding",
			Code:    "FILE003",
		},
	},
	{
		pattern: "gzip:",
		msg: UserMessage{
			Message: "Compressed file could not be read",
			Action:  "Check that the file is a complete gzip archive",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a file to run",
			Code:    "FILE004",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The source is empty",
			Action:  "Please provide a file with a header and data rows",
			Code:    "FILE005",
		},
	},

	// Run errors
	{
		pattern: "too many concurrent runs",
		msg: UserMessage{
			Message: "System is busy processing other runs",
			Action:  "Please wait a moment and try again",
			Code:    "RUN001",
		},
	},
	{
		pattern: "result not found",
		msg: UserMessage{
			Message: "Result not found",
			Action:  "The result may have expired. Please run the pipeline again",
			Code:    "RUN002",
		},
	},
	{
		pattern: "unknown pipeline",
		msg: UserMessage{
			Message: "Unknown pipeline",
			Action:  "Check the pipeline key against the list of pipelines",
			Code:    "RUN003",
		},
	},
	{
		pattern: "publish disabled",
		msg: UserMessage{
			Message: "Publishing is not available",
			Action:  "Configure DATABASE_URL to enable publishing",
			Code:    "RUN004",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "RUN005",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller file or check your connection",
			Code:    "RUN006",
		},
	},

	// Source errors
	{
		pattern: "address not allowed",
		msg: UserMessage{
			Message: "Source URL points to an internal address",
			Action:  "Use a publicly reachable URL or upload the file instead",
			Code:    "SRC002",
		},
	},
	{
		pattern: "fetch failed",
		msg: UserMessage{
			Message: "Remote source could not be downloaded",
			Action:  "Check the URL and try again",
			Code:    "SRC001",
		},
	},

	// Database errors
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB005",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Try a smaller file or try again later",
			Code:    "DB006",
		},
	},
	{
		pattern: "invalid table name",
		msg: UserMessage{
			Message: "Table name is not allowed",
			Action:  "Use letters, digits and underscores only",
			Code:    "DB008",
		},
	},

	// Rate limiting
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// mapTableError maps the typed errors of the table package.
func mapTableError(err error) (UserMessage, bool) {
	var malformed *table.MalformedRowError
	var unknown *table.UnknownColumnError
	var duplicate *table.DuplicateColumnError

	switch {
	case errors.As(err, &malformed):
		return UserMessage{
			Message: fmt.Sprintf("Line %d has %d fields, expected %d", malformed.Line, malformed.Got, malformed.Want),
			Action:  "Check the line for a missing or extra separator",
			Code:    "TAB001",
		}, true
	case errors.As(err, &unknown):
		return UserMessage{
			Message: fmt.Sprintf("Column %q does not exist", unknown.Column),
			Action:  "Verify the column headers match the pipeline definition",
			Code:    "TAB002",
		}, true
	case errors.As(err, &duplicate):
		return UserMessage{
			Message: fmt.Sprintf("Column %q appears more than once", duplicate.Column),
			Action:  "Choose distinct column names",
			Code:    "TAB003",
		}, true
	case errors.Is(err, table.ErrInvalidSeparator):
		return UserMessage{
			Message: "The separator cannot be used to split lines",
			Action:  "Use a single printable character such as , ; or tab",
			Code:    "TAB004",
		}, true
	}
	return UserMessage{}, false
}

// MapError converts a technical error to a user-friendly message.
// Typed table errors are checked first, then the known patterns
// (case-insensitive). If nothing matches, a generic fallback message with
// code ERR000 is returned.
//
// Example:
//
//	msg := MapError(&table.UnknownColumnError{Column: "year"})
//	// msg.Code == "TAB002"
//	// msg.Message == `Column "year" does not exist`
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	if msg, ok := mapTableError(err); ok {
		return msg
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than
// the generic ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError wraps a technical error with a user-friendly message.
// The original error is preserved for logging while providing a clean message for users.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError creates a UserError by mapping a technical error to a user-friendly message.
// Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
