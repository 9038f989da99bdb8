package ffmpeg

import (
	"regexp"
	"strconv"
	"strings"
)

// -progress emits blocks of key=value lines, each block closed by a
// progress=continue or progress=end line.
var reProgressMarker = regexp.MustCompile(`^([a-z][a-z0-9_]*)=(\S*)$`)

// Progress is one completed -progress block.
type Progress struct {
	Frame      int
	OutSeconds float64
	Speed      string
	Percent    float64 // 0-100, -1 when the total duration is unknown
	Done       bool
}

// ParseMarker splits a -progress line into key and value.
func ParseMarker(line string) (key, value string, ok bool) {
	m := reProgressMarker.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// ProgressTracker accumulates -progress blocks against an expected output
// duration.
type ProgressTracker struct {
	total float64
	cur   Progress
}

// NewProgressTracker creates a tracker for an output of totalSeconds. A
// non-positive total disables percentage computation.
func NewProgressTracker(totalSeconds float64) *ProgressTracker {
	return &ProgressTracker{total: totalSeconds}
}

// Feed consumes one diagnostic line. marker reports whether the line was a
// progress marker at all; block is non-nil when the line closed a block.
func (t *ProgressTracker) Feed(line string) (marker bool, block *Progress) {
	key, value, ok := ParseMarker(line)
	if !ok {
		return false, nil
	}

	switch key {
	case "frame":
		if n, err := strconv.Atoi(value); err == nil {
			t.cur.Frame = n
		}
	case "out_time_us", "out_time_ms":
		// out_time_ms is also reported in microseconds
		if n, err := strconv.ParseInt(value, 10, 64); err == nil && n >= 0 {
			t.cur.OutSeconds = float64(n) / 1e6
		}
	case "speed":
		t.cur.Speed = value
	case "progress":
		done := value == "end"
		p := t.cur
		p.Done = done
		p.Percent = t.percent(p.OutSeconds, done)
		t.cur = Progress{}
		return true, &p
	}
	return true, nil
}

func (t *ProgressTracker) percent(out float64, done bool) float64 {
	if done {
		return 100
	}
	if t.total <= 0 {
		return -1
	}
	pct := out / t.total * 100
	if pct > 99 {
		pct = 99
	}
	if pct < 0 {
		pct = 0
	}
	return pct
}
