package core

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/JonMunkholm/tabproj/internal/table"
	"gopkg.in/yaml.v3"
)

// Definition describes one pipeline: how to ingest a source and which
// select, rename and sort steps to apply to it.
type Definition struct {
	Key   string `yaml:"key" json:"key"`
	Label string `yaml:"label" json:"label"`

	// Ingest settings. Empty values fall back to the service defaults.
	Separator string `yaml:"separator" json:"separator,omitempty"`
	NoHeader  bool   `yaml:"no_header" json:"no_header,omitempty"`
	Encoding  string `yaml:"encoding" json:"encoding,omitempty"`
	SourceURL string `yaml:"source_url" json:"source_url,omitempty"`

	// Steps, applied in this order. Empty Select keeps every column and
	// empty SortBy keeps the source order.
	Select []string          `yaml:"select" json:"select,omitempty"`
	Rename map[string]string `yaml:"rename" json:"rename,omitempty"`
	SortBy string            `yaml:"sort_by" json:"sort_by,omitempty"`

	// Head is the preview size; 0 uses the service default.
	Head int `yaml:"head" json:"head,omitempty"`
}

// Validate checks the definition for settings that can never work.
// Column names are checked later, against the ingested table.
func (d Definition) Validate() error {
	var errs []string
	if strings.TrimSpace(d.Key) == "" {
		errs = append(errs, "key is required")
	}
	if d.Separator != "" && utf8.RuneCountInString(d.Separator) != 1 {
		errs = append(errs, fmt.Sprintf("separator %q must be a single character", d.Separator))
	}
	if d.Head < 0 {
		errs = append(errs, "head must be non-negative")
	}
	for from, to := range d.Rename {
		if strings.TrimSpace(from) == "" || strings.TrimSpace(to) == "" {
			errs = append(errs, "rename entries must have non-empty names")
			break
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid pipeline %q: %s", d.Key, strings.Join(errs, "; "))
	}
	return nil
}

// SeparatorRune returns the definition's separator, or def when unset.
func (d Definition) SeparatorRune(def rune) rune {
	if d.Separator == "" {
		return def
	}
	r, _ := utf8.DecodeRuneInString(d.Separator)
	return r
}

// Apply runs the select, rename and sort steps against t.
func (d Definition) Apply(t *table.Table) (*table.Table, error) {
	out := t
	var err error

	if len(d.Select) > 0 {
		if out, err = table.Project(out, d.Select); err != nil {
			return nil, fmt.Errorf("select: %w", err)
		}
	}
	if len(d.Rename) > 0 {
		if out, err = table.Rename(out, table.RenameMap(d.Rename)); err != nil {
			return nil, fmt.Errorf("rename: %w", err)
		}
	}
	if d.SortBy != "" {
		if to, ok := d.Rename[d.SortBy]; ok && !out.HasColumn(d.SortBy) {
			return nil, fmt.Errorf("sort: %w (renamed to %q)", &table.UnknownColumnError{Column: d.SortBy}, to)
		}
		if out, err = table.SortDescendingBy(out, d.SortBy); err != nil {
			return nil, fmt.Errorf("sort: %w", err)
		}
	}
	return out, nil
}

// definitionsFile is the YAML layout accepted by LoadDefinitions.
type definitionsFile struct {
	Pipelines []Definition `yaml:"pipelines"`
}

// LoadDefinitions reads and validates pipeline definitions from a YAML file.
func LoadDefinitions(path string) ([]Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read definitions: %w", err)
	}
	return ParseDefinitions(data)
}

// ParseDefinitions decodes and validates YAML pipeline definitions.
func ParseDefinitions(data []byte) ([]Definition, error) {
	var f definitionsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse definitions: %w", err)
	}

	seen := make(map[string]bool, len(f.Pipelines))
	for _, d := range f.Pipelines {
		if err := d.Validate(); err != nil {
			return nil, err
		}
		if seen[d.Key] {
			return nil, fmt.Errorf("pipeline %q defined twice", d.Key)
		}
		seen[d.Key] = true
	}
	return f.Pipelines, nil
}

// RegisterFile loads definitions from path and registers each one.
// Returns the number registered. A key that is already registered is an
// error and nothing from the file is registered.
func RegisterFile(path string) (int, error) {
	defs, err := LoadDefinitions(path)
	if err != nil {
		return 0, err
	}
	for _, d := range defs {
		if _, exists := Get(d.Key); exists {
			return 0, fmt.Errorf("pipeline already registered: %s", d.Key)
		}
	}
	for _, d := range defs {
		Register(d)
	}
	return len(defs), nil
}
