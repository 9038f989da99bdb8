package subtitle

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/ZacxDev/scene-assembler/internal/config"
)

const (
	baseLineLength = 60.0
	baseFontSize   = 32.0

	minLineLength = 15
	maxLineLength = 80

	// overflowAllowance is how much longer lines may grow before the
	// remaining words are merged into the last line.
	overflowAllowance = 1.2
)

// MaxLineLength is the number of characters per line that fits the frame
// at the given font size. 1920x1080 at 32pt gives 60.
func MaxLineLength(res config.Resolution, fontSize int) int {
	ratio := float64(fontSize) / baseFontSize
	if ratio <= 0 {
		return maxLineLength
	}

	var l float64
	if fontSize >= 48 {
		l = baseLineLength / (ratio * 1.1)
	} else {
		l = baseLineLength / math.Sqrt(ratio)
	}
	if res.IsPortrait() {
		l *= 0.7
	}
	return config.Clamp(int(l), minLineLength, maxLineLength)
}

// MaxLines is the number of lines a cue may occupy.
func MaxLines(res config.Resolution, fontSize int) int {
	portrait := res.IsPortrait()
	switch {
	case fontSize < 32:
		return 2
	case fontSize < 48:
		if portrait {
			return 3
		}
		return 2
	case fontSize < 64:
		if portrait {
			return 4
		}
		return 3
	default:
		if portrait {
			return 5
		}
		return 4
	}
}

// Wrap breaks text into at most maxLines lines of about maxLen characters.
// Words are never split or dropped; the last line absorbs any overflow.
// Wrap(Wrap(s)) == Wrap(s).
func Wrap(text string, maxLen, maxLines int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	if maxLines < 1 {
		maxLines = 1
	}

	lines := greedy(words, maxLen)
	if len(lines) > maxLines {
		lines = greedy(words, int(float64(maxLen)*overflowAllowance))
	}
	if len(lines) > maxLines {
		tail := strings.Join(lines[maxLines-1:], " ")
		lines = append(lines[:maxLines-1], tail)
	}
	return strings.Join(lines, "\n")
}

func greedy(words []string, maxLen int) []string {
	var lines []string
	var cur strings.Builder
	curLen := 0

	for _, w := range words {
		wl := utf8.RuneCountInString(w)
		if curLen > 0 && curLen+1+wl > maxLen {
			lines = append(lines, cur.String())
			cur.Reset()
			curLen = 0
		}
		if curLen > 0 {
			cur.WriteByte(' ')
			curLen++
		}
		cur.WriteString(w)
		curLen += wl
	}
	if curLen > 0 {
		lines = append(lines, cur.String())
	}
	return lines
}
