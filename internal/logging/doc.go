// Package logging configures the process-wide zerolog logger.
//
// Defaults depend on the profile (runtime or test) and can be overridden
// with WCONNECT_LOG_LEVEL, WCONNECT_LOG_TIMESTAMP, WCONNECT_LOG_NOCOLOR and
// WCONNECT_LOG_JSON.
package logging
