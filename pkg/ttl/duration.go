package ttl

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DurationText is a time.Duration that serializes to and from the ISO-8601
// duration text the on-disk TTL schema prescribes (e.g. "PT1H30M5S").
type DurationText time.Duration

var isoDurationPattern = regexp.MustCompile(`^PT(?:(\d+(?:\.\d+)?)H)?(?:(\d+(?:\.\d+)?)M)?(?:(\d+(?:\.\d+)?)S)?$`)

// String renders d as an ISO-8601 duration, e.g. time.Minute -> "PT1M".
func (d DurationText) String() string {
	total := time.Duration(d)
	if total == 0 {
		return "PT0S"
	}
	if total < 0 {
		total = -total
	}

	hours := total / time.Hour
	total -= hours * time.Hour
	minutes := total / time.Minute
	total -= minutes * time.Minute
	seconds := total.Seconds()

	var b strings.Builder
	b.WriteString("PT")
	if hours > 0 {
		fmt.Fprintf(&b, "%dH", hours)
	}
	if minutes > 0 {
		fmt.Fprintf(&b, "%dM", minutes)
	}
	if seconds > 0 || (hours == 0 && minutes == 0) {
		if seconds == float64(int64(seconds)) {
			fmt.Fprintf(&b, "%dS", int64(seconds))
		} else {
			fmt.Fprintf(&b, "%gS", seconds)
		}
	}
	return b.String()
}

// ParseDurationText parses an ISO-8601 duration string of the "PT#H#M#S"
// form back into a DurationText.
func ParseDurationText(s string) (DurationText, error) {
	m := isoDurationPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("ttl: invalid ISO-8601 duration %q", s)
	}

	var total time.Duration
	if m[1] != "" {
		h, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0, err
		}
		total += time.Duration(h * float64(time.Hour))
	}
	if m[2] != "" {
		mins, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			return 0, err
		}
		total += time.Duration(mins * float64(time.Minute))
	}
	if m[3] != "" {
		secs, err := strconv.ParseFloat(m[3], 64)
		if err != nil {
			return 0, err
		}
		total += time.Duration(secs * float64(time.Second))
	}
	return DurationText(total), nil
}

// NewDurationText converts a time.Duration to its serializable form.
func NewDurationText(d time.Duration) DurationText { return DurationText(d) }

// Duration returns d as a time.Duration.
func (d DurationText) Duration() time.Duration { return time.Duration(d) }
