package changeset

import (
	"fmt"
	"strings"
	"time"
)

const (
	// MessagePrefix starts every auto commit message.
	MessagePrefix = "Auto Commit"

	// TimestampLayout renders the UTC commit time truncated to seconds.
	TimestampLayout = "2006-01-02 15:04:05"

	// displayedPaths is how many paths a summary names before "+N more".
	displayedPaths = 2
)

// FormatSummary renders a category summary such as
// "3 (src-a.js, src-b.js +1 more)". Path separators in the displayed
// names become dashes. An empty list yields "".
func FormatSummary(paths []string) string {
	if len(paths) == 0 {
		return ""
	}

	shown := paths
	if len(shown) > displayedPaths {
		shown = shown[:displayedPaths]
	}

	names := make([]string, len(shown))
	for i, p := range shown {
		names[i] = displayName(p)
	}

	more := ""
	if len(paths) > displayedPaths {
		more = fmt.Sprintf(" +%d more", len(paths)-displayedPaths)
	}

	return fmt.Sprintf("%d (%s%s)", len(paths), strings.Join(names, ", "), more)
}

// displayName rewrites both slash styles so Windows paths read the same.
func displayName(path string) string {
	return strings.NewReplacer("/", "-", `\`, "-").Replace(path)
}

// Message builds the single-line commit message for the snapshot:
//
//	Auto Commit [2024-01-01 12:00:00] — Added: 1 (a.txt); Deleted: 1 (b.txt)
//
// Only non-empty categories appear.
func (s Snapshot) Message(at time.Time) string {
	var parts []string
	if len(s.Added) > 0 {
		parts = append(parts, "Added: "+FormatSummary(s.Added))
	}
	if len(s.Changed) > 0 {
		parts = append(parts, "Modified: "+FormatSummary(s.Changed))
	}
	if len(s.Deleted) > 0 {
		parts = append(parts, "Deleted: "+FormatSummary(s.Deleted))
	}

	timestamp := at.UTC().Truncate(time.Second).Format(TimestampLayout)
	return fmt.Sprintf("%s [%s] — %s", MessagePrefix, timestamp, strings.Join(parts, "; "))
}
