// Package cli constructs the ghglance command-line interface, wiring the
// Cobra root command, configuration loader, structured logging, and the
// repository summary pipeline.
package cli
