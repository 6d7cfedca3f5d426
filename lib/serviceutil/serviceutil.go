package serviceutil

import (
	"log/slog"
	"os"
)

// Fatal reports an unrecoverable startup failure and exits non-zero.
// Only use this during process initialization; long-running loops
// contain their errors instead.
func Fatal(message string, err error) {
	if err != nil {
		slog.Error(message, "err", err.Error())
	} else {
		slog.Error(message)
	}
	os.Exit(1)
}
