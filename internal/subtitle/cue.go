// Package subtitle derives burned-in subtitle cues from per-scene narration
// and the measured segment durations.
package subtitle

import (
	"math"
	"strings"

	"github.com/ZacxDev/scene-assembler/internal/timeline"
)

// EarlyRead is how long before its narration a cue may appear.
const EarlyRead = 0.3

// Cue is one subtitle shown over [Start, End) on the output timeline.
type Cue struct {
	SceneIndex uint32
	Start      float64
	End        float64
	Text       string
}

// Duration returns End - Start.
func (c Cue) Duration() float64 {
	return c.End - c.Start
}

// Generate produces one cue per scene with non-empty narration. The audio
// window of scene i is [A_i, A_i+d_i), A_i being the sum of the preceding
// durations. Cues never begin before the previous cue ends.
//
// Timing stops at the first segment without a measured duration; later
// scenes get no cue.
func Generate(narration []string, tl *timeline.Timeline) []Cue {
	durs := tl.Durations()
	starts := tl.AudioStarts()

	fontSize := 0
	delay := 0.0
	if sub := tl.Settings.Subtitle; sub != nil {
		fontSize = sub.FontSize
		if sub.DelaySeconds > 0 {
			delay = sub.DelaySeconds
		}
	}
	res := tl.Settings.Resolution
	maxLen := MaxLineLength(res, fontSize)
	maxLines := MaxLines(res, fontSize)

	var cues []Cue
	prevEnd := 0.0
	for i, d := range durs {
		if i >= len(narration) {
			break
		}
		text := Wrap(Sanitize(strings.TrimSpace(narration[i])), maxLen, maxLines)
		if text == "" {
			continue
		}

		a := starts[i]
		start := math.Max(math.Max(a-EarlyRead, prevEnd), 0)
		end := a + d

		c := Cue{
			SceneIndex: tl.Segments[i].Index,
			Start:      start + delay,
			End:        end + delay,
			Text:       text,
		}
		cues = append(cues, c)
		prevEnd = end
	}
	return cues
}
