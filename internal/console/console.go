// Package console carries the informational output of the pipeline.
// These lines are observational only, not a machine-readable contract.
package console

import (
	"fmt"
	"os"
)

var DebugEnabled bool

// OKf reports a completed artifact.
func OKf(format string, args ...interface{}) {
	fmt.Printf("[OK] "+format+"\n", args...)
}

// Infof reports progress and summary counts.
func Infof(format string, args ...interface{}) {
	fmt.Printf("[INFO] "+format+"\n", args...)
}

// Errorf reports a recoverable failure to stderr.
func Errorf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "[ERROR] "+format+"\n", args...)
}

// Debugf prints only when DebugEnabled is set.
func Debugf(format string, args ...interface{}) {
	if DebugEnabled {
		fmt.Printf("[DEBUG] "+format+"\n", args...)
	}
}
