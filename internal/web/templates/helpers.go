// Package templates renders the HTML pages of the web UI. The *_templ.go
// files are generated from the .templ sources with `templ generate`.
package templates

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/JonMunkholm/tabproj/internal/core"
	"github.com/a-h/templ"
)

// DashboardParams holds the data shown on the dashboard.
type DashboardParams struct {
	Pipelines      []core.Definition
	Results        []core.RunResult
	PublishEnabled bool
}

// describeSteps summarizes a definition, e.g. "select a, b; sort by a desc".
func describeSteps(d core.Definition) string {
	var steps []string
	if len(d.Select) > 0 {
		steps = append(steps, "select "+strings.Join(d.Select, ", "))
	}
	if len(d.Rename) > 0 {
		steps = append(steps, fmt.Sprintf("rename %d columns", len(d.Rename)))
	}
	if d.SortBy != "" {
		steps = append(steps, "sort by "+d.SortBy+" desc")
	}
	if len(steps) == 0 {
		return "none"
	}
	return strings.Join(steps, "; ")
}

func runURL(key string) templ.SafeURL {
	return templ.URL("/api/run/" + url.PathEscape(key))
}

func fetchURL(d core.Definition) templ.SafeURL {
	return templ.URL("/api/run/" + url.PathEscape(d.Key) + "?url=" + url.QueryEscape(d.SourceURL))
}

func resultPageURL(id string) templ.SafeURL {
	return templ.URL("/results/" + url.PathEscape(id))
}

// resultAPIURL addresses an action on a stored result, e.g. "export".
func resultAPIURL(id, action string) templ.SafeURL {
	return templ.URL("/api/results/" + url.PathEscape(id) + "/" + action)
}

func expiresLabel(r core.RunResult) string {
	if r.ExpiresAt.IsZero() {
		return "never"
	}
	return r.ExpiresAt.Format("15:04:05")
}

// runSummary is the line under a result heading.
func runSummary(res *core.RunResult) string {
	return fmt.Sprintf("%s · %d of %d input rows · %s",
		res.FileName, res.Rows, res.InputRows, res.Duration.Round(time.Microsecond))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
