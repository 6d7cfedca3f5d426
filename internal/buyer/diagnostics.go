package buyer

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"timesniper/lib/browser"
)

// ArtifactSink persists postmortem snapshots named by candidate and
// failure stage. These are debugging aids only; nothing at runtime
// reads them back.
type ArtifactSink struct {
	directory string
}

func NewArtifactSink(dir string) ArtifactSink {
	if dir == "" {
		dir = "."
	}
	err := os.MkdirAll(dir, 0o755)
	if err != nil {
		slog.Warn("failed to create artifacts directory", "dir", dir, "err", err)
	}
	return ArtifactSink{directory: dir}
}

// Capture writes a rendered snapshot and the full page markup for the
// candidate at the given stage. Failures are logged, never propagated:
// diagnostics must not change the outcome of the flow being diagnosed.
func (s ArtifactSink) Capture(sess *browser.Session, candidate string, stage Stage) {
	base := filepath.Join(s.directory, fmt.Sprintf("%s_%s", candidate, stage))

	if png, err := sess.Screenshot(); err == nil {
		if err := os.WriteFile(base+".png", png, 0o644); err != nil {
			slog.Warn("failed to write snapshot artifact", "path", base+".png", "err", err)
		}
	} else {
		slog.Warn("failed to capture snapshot", "candidate", candidate, "stage", stage, "err", err)
	}

	if html, err := sess.HTML(); err == nil {
		if err := os.WriteFile(base+".html", []byte(html), 0o644); err != nil {
			slog.Warn("failed to write markup artifact", "path", base+".html", "err", err)
		}
	} else {
		slog.Warn("failed to capture markup", "candidate", candidate, "stage", stage, "err", err)
	}
}
