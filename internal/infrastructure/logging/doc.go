// Package logging provides structured logging using uber/zap.
//
// This package offers production-ready logging with two modes:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// Log Levels:
//   - Debug: Verbose debugging information
//   - Info: General informational messages
//   - Warn: Warning messages
//   - Error: Error messages
//   - Fatal: Fatal errors (exits process)
//
// Features:
//   - Named child loggers per component
//   - Runtime level changes shared by every child (Level, SetLevel)
//   - Static fields on every entry
//
// Example Usage:
//
//	logger := logging.FromLevel(cfg.Logging.Level, cfg.Logging.Development)
//	logger.Component("dispatch").Info("Binding call", zap.String("binding", "add"))
//	logger.Error("Failed to connect", zap.Error(err))
package logging
