package templates

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/tabproj/internal/core"
	"github.com/JonMunkholm/tabproj/internal/table"
)

func TestTable_EscapesAndMarksNulls(t *testing.T) {
	tbl, err := table.New([]string{"name", "<b>"}, [][]string{{"<script>", ""}})
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := Table(tbl).Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	out := buf.String()

	if strings.Contains(out, "<script>") || strings.Contains(out, "<th><b></th>") {
		t.Errorf("output not escaped: %s", out)
	}
	if !strings.Contains(out, "&lt;script&gt;") {
		t.Errorf("escaped value missing: %s", out)
	}
	if !strings.Contains(out, `<td class="null">null</td>`) {
		t.Errorf("null cell missing: %s", out)
	}
}

func TestDashboard(t *testing.T) {
	p := DashboardParams{
		Pipelines: []core.Definition{{
			Key:       "uk_macro",
			Label:     "UK",
			Select:    []string{"a", "b"},
			SortBy:    "a",
			SourceURL: "https://example.com/x.csv",
		}},
		Results: []core.RunResult{{ID: "0123456789abcdef", Pipeline: "uk_macro", FileName: "x.csv", Rows: 3, ExpiresAt: time.Now()}},
	}

	var buf bytes.Buffer
	if err := Dashboard(p).Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"<!doctype html>",
		"<code>uk_macro</code>",
		"select a, b; sort by a desc",
		`action="/api/run/uk_macro"`,
		`action="/api/run/uk_macro?url=https%3A%2F%2Fexample.com%2Fx.csv"`,
		`<td>3</td>`,
		`href="/results/0123456789abcdef"`,
		">01234567<",
		"Publishing is disabled",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("dashboard missing %q", want)
		}
	}
}

func TestResultPage(t *testing.T) {
	head, _ := table.New([]string{"year"}, [][]string{{"2016"}})
	res := &core.RunResult{ID: "abc", Pipeline: "uk_macro", FileName: "f.csv", Rows: 1, InputRows: 1}

	var buf bytes.Buffer
	if err := ResultPage(res, head, true).Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{"/api/results/abc/export", "/api/results/abc/publish", "<td>2016</td>"} {
		if !strings.Contains(out, want) {
			t.Errorf("result page missing %q", want)
		}
	}
}

func TestErrorAlert(t *testing.T) {
	var buf bytes.Buffer
	if err := ErrorAlert("Bad <thing>", "Retry", "TAB002").Render(context.Background(), &buf); err != nil {
		t.Fatal(err)
	}
	if out := buf.String(); !strings.Contains(out, "Bad &lt;thing&gt;") || !strings.Contains(out, "Code: TAB002") {
		t.Errorf("ErrorAlert() = %s", out)
	}
}

func TestErrorPage(t *testing.T) {
	var buf bytes.Buffer
	if err := ErrorPage("Gone", "Run it again", "RUN002").Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{"<title>Error</title>", `<main><div class="alert" role="alert">`, "Code: RUN002", "</main></body></html>"} {
		if !strings.Contains(out, want) {
			t.Errorf("error page missing %q", want)
		}
	}
}

func TestDashboard_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := Dashboard(DashboardParams{PublishEnabled: true}).Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{"No pipelines registered.", "No results yet."} {
		if !strings.Contains(out, want) {
			t.Errorf("dashboard missing %q", want)
		}
	}
	if strings.Contains(out, "Publishing is disabled") {
		t.Error("dashboard shows the publish hint while publishing is enabled")
	}
}

func TestDescribeSteps(t *testing.T) {
	tests := []struct {
		def  core.Definition
		want string
	}{
		{core.Definition{}, "none"},
		{core.Definition{SortBy: "year"}, "sort by year desc"},
		{core.Definition{Select: []string{"a"}, Rename: map[string]string{"a": "b"}}, "select a; rename 1 columns"},
	}
	for _, tt := range tests {
		if got := describeSteps(tt.def); got != tt.want {
			t.Errorf("describeSteps(%+v) = %q, want %q", tt.def, got, tt.want)
		}
	}
}
