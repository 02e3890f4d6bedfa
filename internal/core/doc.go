// Package core runs table pipelines: it turns a raw delimited source into
// a projected, renamed and sorted [table.Table] and keeps the result around
// for preview, export and publishing.
//
// This package holds all run logic independent of any UI or transport
// layer. It is used by the web server and the CLI without modification.
//
// # Architecture
//
// The package is organized around a few key concepts:
//
//   - Definitions: named pipelines (select, rename, sort-by) registered via
//     the registry, either at init time or from a YAML file.
//   - Sources: readers that decompress, decode and sanitize raw input before
//     it reaches [table.Ingest].
//   - Service: the entry point for runs, stored results, export and publish.
//
// # Definitions
//
// Definitions are registered at init time using [Register]:
//
//	core.Register(core.Definition{
//	    Key:    "uk_macro",
//	    Label:  "UK macroeconomic series",
//	    Select: []string{"Description", "Unemployment rate"},
//	    Rename: map[string]string{"Description": "year"},
//	    SortBy: "year",
//	})
//
// or loaded from YAML with [RegisterFile]:
//
//	pipelines:
//	  - key: uk_macro
//	    select: [Description, Unemployment rate]
//	    rename: {Description: year}
//	    sort_by: year
//
// # Runs
//
// A run reads the whole source (bounded by the configured maximum size),
// ingests it with the definition's separator and header setting, applies
// the definition and stores the result under a new id. Results expire after
// the configured TTL. Parallel runs are bounded by a [RunLimiter].
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - TAB001-TAB003: Table errors (malformed rows, unknown or duplicate columns)
//   - FILE001-FILE005: Source errors (size, encoding, empty input)
//   - RUN001-RUN004: Run errors (busy, expired result, unknown pipeline)
//   - SRC001: Remote fetch errors
//   - DB004-DB006: Publish database errors
package core
