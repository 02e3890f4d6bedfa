// Package pipelines registers the built-in pipeline definitions with the
// core registry. Import this package to ensure they are registered.
package pipelines

// This file exists to provide a single import point.
// Each pipeline file uses init() to register its definitions.
