package config

import (
	"fmt"
	"io"
	"os"
)

// Process exit codes.
const (
	ExitFailure = 1
	// ExitConfig matches EX_CONFIG from sysexits.h.
	ExitConfig = 78
)

var (
	osExit           = os.Exit
	stderr io.Writer = os.Stderr
)

// Exitf writes a formatted error message to stderr and exits with ExitFailure.
func Exitf(format string, args ...any) {
	exit(ExitFailure, format, args...)
}

// ConfigExitf reports a configuration that cannot start the process and
// exits with ExitConfig.
func ConfigExitf(format string, args ...any) {
	exit(ExitConfig, format, args...)
}

func exit(code int, format string, args ...any) {
	fmt.Fprintf(stderr, "lottery: "+format+"\n", args...)
	osExit(code)
}
