// Package logging provides the *slog.Logger used to trace a document build
// as it moves through the six phases described in SPEC_FULL.md §4.6 (parse,
// pre-scan, graph-build, page-build, font-build, serialize).
package logging

import (
	"log/slog"
	"sync/atomic"
)

// Phases lists the document-build pipeline stages in execution order. Phase
// validates its argument against this list so a typo'd phase name (e.g. a
// copy-pasted "grah-build") fails loudly in tests instead of silently tagging
// log lines with the wrong stage.
var Phases = []string{"parse", "pre-scan", "graph-build", "page-build", "font-build", "serialize"}

func isKnownPhase(name string) bool {
	for _, p := range Phases {
		if p == name {
			return true
		}
	}
	return false
}

// logger holds the package-level logger instance for debug output.
// Defaults to nil, which causes Logger() to return a discard logger.
var logger atomic.Pointer[slog.Logger]

// newDiscardLogger creates a logger that discards all output.
func newDiscardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// SetLogger configures the package-level logger for debug output.
// Pass nil to disable logging (will use slog.DiscardHandler).
// Pass a configured *slog.Logger to capture debug output.
//
// SetLogger is safe for concurrent use.
//
// Example enabling debug output to stderr:
//
//	logging.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))
//
// Example capturing logs in tests:
//
//	handler := logging.NewBufferedLogHandler(nil)
//	logging.SetLogger(slog.New(handler))
//	// ... build a document ...
//	fmt.Println(handler.String()) // inspect captured logs
func SetLogger(sl *slog.Logger) {
	if sl == nil {
		logger.Store(newDiscardLogger())
	} else {
		logger.Store(sl)
	}
}

// Logger returns the package-level logger.
// If no logger has been set via SetLogger, returns a discard logger
// that discards all output.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	l := logger.Load()
	if l == nil {
		l = newDiscardLogger()
		logger.Store(l)
	}
	return l
}

// Phase returns the package-level logger with a "phase" attribute attached,
// so every record a build stage emits is taggable without each call site
// repeating the attribute by hand. name must be one of Phases; an unknown
// name panics rather than silently mislabeling log output.
//
// Example:
//
//	log := logging.Phase("font-build")
//	log.Debug("subset complete", "font", name, "cids", n)
func Phase(name string) *slog.Logger {
	if !isKnownPhase(name) {
		panic("logging: unknown phase " + name)
	}
	return Logger().With("phase", name)
}
