// Package errors provides structured, coded errors for the
// synchronization layer and its CLI.
//
// Every registered code carries a category, a message, a detail
// paragraph, and a documentation URL. Errors render three ways:
//
//   - Format: multi-line terminal output with hints
//   - FormatCompact: single line for logs
//   - FormatJSON: machine-readable for the HTTP surface
//
// # Error Categories
//
// Errors are organized into categories:
//   - config: dashboard configuration errors (missing files, bad JSON)
//   - snapshot: persistence errors (corrupt envelopes, dead backends)
//   - bus: event bus faults (handler panics)
//   - sync: synchronization errors (unknown kinds, bad payloads)
//   - validation: rejected state mutations
//   - cli: command-line usage errors
//
// # Usage
//
//	return errors.New("E102").
//	    WithDetail("Failed to parse fragsync.json: " + err.Error()).
//	    WithSuggestion("Check that fragsync.json is valid JSON")
//
// Or ad hoc with a category:
//
//	return errors.Newf(errors.CategoryConfig, "no config path set")
package errors
