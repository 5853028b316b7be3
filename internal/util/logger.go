// Package util provides helpers for logging and virtual serial management.
package util

import "log"

// SetupLogger configures the standard logger used across the process.
func SetupLogger() {
	log.SetFlags(log.LstdFlags)
}
