package tests

import (
	"flag"
	"testing"

	"go.uber.org/zap"
)

var debug = flag.Bool("debug", false, "Replace the no-op test logger with a zap development logger")

// CheckDebugLogs enables zap development logging for a test run started with -debug
func CheckDebugLogs(t *testing.T) {
	if debug != nil && *debug {
		logger, err := zap.NewDevelopment(zap.AddStacktrace(zap.ErrorLevel))
		if err != nil {
			t.Fatal(err)
		}
		defer logger.Sync()
		zap.ReplaceGlobals(logger)
	}
}
