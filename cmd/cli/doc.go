// Package cli constructs the tfsmigrate command-line interface, wiring the
// Cobra command hierarchy, configuration loader, and structured logging
// primitives. Each run writes its structured log to a timestamped file under
// the migration log directory in addition to standard output.
package cli
