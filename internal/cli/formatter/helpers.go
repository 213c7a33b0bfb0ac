package formatter

import (
	"strings"
	"time"

	"github.com/alexanderramin/reqplan/internal/domain"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// RenderBox wraps content in a rounded-border box with an optional title.
func RenderBox(title string, content string) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		Padding(1, 2)

	if title != "" {
		return box.Render(StyleHeader.Render(strings.ToUpper(title)) + "\n\n" + content)
	}
	return box.Render(content)
}

// FileSize renders a byte count such as "2.0 kB".
func FileSize(n int64) string {
	if n <= 0 {
		return Dim("--")
	}
	return humanize.Bytes(uint64(n))
}

// RelativeTime renders an RFC 3339 timestamp relative to now, e.g.
// "3 hours ago". Unparseable values are returned as-is.
func RelativeTime(ts string, now time.Time) string {
	if ts == "" {
		return Dim("--")
	}
	t, err := parseTimestamp(ts)
	if err != nil {
		return ts
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

// Timestamp renders an RFC 3339 timestamp in local time, minute precision.
func Timestamp(ts *string) string {
	raw := domain.CoalesceStrPtr("", ts)
	if raw == "" {
		return Dim("--")
	}
	t, err := parseTimestamp(raw)
	if err != nil {
		return raw
	}
	return t.Local().Format("2006-01-02 15:04")
}

func parseTimestamp(ts string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
		return t, nil
	}
	// The backend sometimes omits the zone.
	return time.Parse("2006-01-02T15:04:05.999999", ts)
}

// Truncate shortens s to at most n visible cells with an ellipsis.
func Truncate(s string, n int) string {
	if n <= 1 || lipgloss.Width(s) <= n {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r))+1 > n {
		r = r[:len(r)-1]
	}
	return string(r) + "…"
}
