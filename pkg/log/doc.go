/*
Package log provides structured logging for the kvs store using zerolog.

The log package wraps the zerolog library to provide JSON-structured logging
with store-specific and path-specific child loggers, configurable log levels,
and helper functions for common logging patterns. All logs include timestamps
and support filtering by severity level.

# Architecture

	┌──────────────────── LOGGING SYSTEM ──────────────────────┐
	│                                                            │
	│  ┌────────────────────────────────────────────┐          │
	│  │            Global Logger                    │          │
	│  │  - Zerolog instance                         │          │
	│  │  - Initialized via log.Init()               │          │
	│  │  - Thread-safe for concurrent use           │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │           Configuration                     │          │
	│  │  - Level: debug/info/warn/error             │          │
	│  │  - Format: JSON or console (human)          │          │
	│  │  - Output: stdout, file, or custom writer   │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │         Context Loggers                     │          │
	│  │  - WithComponent("registry")                │          │
	│  │  - WithStore("user-prefs")                  │          │
	│  │  - WithPath("/home/u/.local/share/kvs/...")│          │
	│  └────────────────────────────────────────────┘           │
	└────────────────────────────────────────────────────────┘

# Log Levels

Debug: each applied commit, cleanup cycles that removed expired entries.
Info: cleanup job started and stopped.
Warn: store file read, decrypt, or decode failure falling back to the
default (non-fatal).
Error: a failed cleanup cycle, a metrics server shutdown failure.
Fatal: available through the Fatal helper; no package in this module calls it.

# Usage

	import "github.com/cuemby/kvs/pkg/log"

	log.Init(log.Config{
		Level:      log.InfoLevel,
		JSONOutput: true,
		Output:     os.Stdout,
	})

	storeLog := log.WithStore("user-prefs")
	storeLog.Info().Msg("cell opened")

	storeLog.Warn().
		Err(err).
		Str("key", "theme").
		Msg("decode failed, falling back to default")

# Design Patterns

Global Logger Pattern: a single package-level Logger instance, initialized
once at application start and accessible from all packages without passing
a reference through every call.

Context Logger Pattern: WithStore and WithPath return child loggers that
carry their field on every subsequent line, avoiding repetitive
Str("store", ...) calls at every call site.

# Security

Never log passphrases or derived encryption keys. Cell values are not
logged at Info level; only keys and error context are.

# See Also

  - Zerolog documentation: https://github.com/rs/zerolog
*/
package log
