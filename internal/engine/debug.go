package engine

import "sync/atomic"

// debugLoggingEnabled guards per-round debug logs. Set once at startup.
var debugLoggingEnabled atomic.Bool

// EnableDebugLogging enables or disables per-round debug logging.
// Must be called during initialization (e.g. from main.go after parsing config).
func EnableDebugLogging(enabled bool) {
	debugLoggingEnabled.Store(enabled)
}

// IsDebugEnabled returns true if per-round debug logging is enabled.
func IsDebugEnabled() bool {
	return debugLoggingEnabled.Load()
}
