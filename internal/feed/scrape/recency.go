package scrape

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// RecentWindow bounds how old a post may be and still be surfaced.
// The scrape source re-lists the same posts every poll and has no
// persistent cursor, so staleness is filtered by time instead of by an
// incrementing offset.
const RecentWindow = time.Minute

// recentAbsolute classifies a machine-readable timestamp.
func recentAbsolute(now, stamp time.Time) bool {
	age := now.Sub(stamp)
	return age >= 0 && age <= RecentWindow
}

// relative-time labels across the two locales the feed renders
var (
	justNowLabels = []string{"now", "just now", "刚刚", "现在"}
	secondsLabel  = regexp.MustCompile(`^(\d+)\s*(s|sec|secs|second|seconds|秒|秒前)$`)
	minutesLabel  = regexp.MustCompile(`^(\d+)\s*(m|min|mins|minute|minutes|分|分钟|分钟前)$`)
)

// recentRelative classifies a human-readable relative-time label.
// Any number of seconds is recent; exactly one minute still counts as
// recent since the label has already rounded up.
func recentRelative(label string) bool {
	label = strings.ToLower(strings.TrimSpace(label))
	label = strings.TrimSuffix(label, " ago")

	for _, l := range justNowLabels {
		if label == l {
			return true
		}
	}
	if secondsLabel.MatchString(label) {
		return true
	}
	if m := minutesLabel.FindStringSubmatch(label); m != nil {
		n, err := strconv.Atoi(m[1])
		return err == nil && n <= 1
	}
	return false
}

// parseStamp reads a timestamp attribute. Attributes normally carry a
// zone; when one doesn't, the configured offset disambiguates it.
func parseStamp(attr string, tzOffsetHours int) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, attr); err == nil {
		return t.UTC(), nil
	}
	loc := time.FixedZone("feed", tzOffsetHours*3600)
	t, err := time.ParseInLocation("2006-01-02 15:04:05", attr, loc)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
