// Package logging provides structured logging using uber/zap.
//
// Two modes:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// Components take a *zap.Logger obtained from Logger.Component so every
// line carries the emitting component's name:
//
//	logger := logging.NewFromLevel("info", false)
//	sandboxLog := logger.Component("sandbox")
//	sandboxLog.Warn("clipboard write failed", zap.Error(err))
package logging
