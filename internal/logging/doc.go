// Package logging provides the process-wide zap logger for wayopenfan.
//
// Logging is silent unless enabled via the WAYOPENFAN_LOG_LEVEL
// environment variable or an explicit Initialize call, so that embedding
// the library in a tray or terminal UI produces no unexpected output.
package logging
