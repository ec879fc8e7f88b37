/*
Package log provides structured logging for rotator-helper using zerolog.

The log package wraps the zerolog library to provide JSON-structured
logging with component-specific loggers, configurable log levels, and
helper functions for common logging patterns. All logs include
timestamps and support filtering by severity level.

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
	│  │         Component Loggers                   │          │
	│  │  - WithComponent("orchestrator")            │          │
	│  │  - WithSecret("grafana-admin")               │          │
	│  │  - WithOrg("org-abc123")                     │          │
	│  └────────────────────────────────────────────┘           │
	└────────────────────────────────────────────────────────┘

# Usage

Initializing the logger:

	import "github.com/cuemby/rotator-helper/pkg/log"

	log.Init(log.Config{
		Level:      log.InfoLevel,
		JSONOutput: true,
		Output:     os.Stdout,
	})

Component and context loggers:

	rotateLog := log.WithComponent("orchestrator")
	rotateLog.Info().Msg("starting rotation run")

	secretLog := log.WithSecret("grafana-admin").With().
		Str("org_id", orgID).Logger()
	secretLog.Info().Msg("secret rotated")
	secretLog.Error().Err(err).Msg("rotation failed")

# Design Patterns

Global Logger Pattern:
  - Single package-level Logger instance initialized once at startup
  - Accessible from all packages without passing a reference through

Context Logger Pattern:
  - Child loggers carry a secret name, org ID, or component as a field
  - Avoids repeating the same Str() calls at every call site

# Security

Never log plaintext secret values, master passwords, or derived keys.
Rotation code logs secret *names*, not values; rotated plaintext only
ever reaches hook environment variables and vault ciphertext.

# See Also

  - Zerolog documentation: https://github.com/rs/zerolog
*/
package log
