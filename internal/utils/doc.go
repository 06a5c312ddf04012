// Package utils exposes reusable helpers consumed by the CLI.
//
// It currently houses ConfigurationLoader and LoggerFactory abstractions that
// integrate Viper, environment variables, and zap logging.
package utils
