package subtitle

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/ZacxDev/scene-assembler/internal/config"
	"github.com/ZacxDev/scene-assembler/internal/timeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	landscape = config.Resolution{Width: 1920, Height: 1080}
	portrait  = config.Resolution{Width: 1024, Height: 1792}
)

func TestMaxLineLength(t *testing.T) {
	assert.Equal(t, 60, MaxLineLength(landscape, 32))
	assert.Equal(t, 27, MaxLineLength(landscape, 64))
	assert.Equal(t, 19, MaxLineLength(portrait, 64))
	assert.Less(t, MaxLineLength(portrait, 64), MaxLineLength(landscape, 64))

	for fs := config.MinFontSize; fs <= config.MaxFontSize; fs++ {
		for _, res := range []config.Resolution{landscape, portrait} {
			l := MaxLineLength(res, fs)
			assert.GreaterOrEqual(t, l, 15)
			assert.LessOrEqual(t, l, 80)
		}
	}
}

func TestMaxLines(t *testing.T) {
	assert.Equal(t, 2, MaxLines(landscape, 24))
	assert.Equal(t, 2, MaxLines(landscape, 32))
	assert.Equal(t, 3, MaxLines(portrait, 32))
	assert.Equal(t, 3, MaxLines(landscape, 48))
	assert.Equal(t, 5, MaxLines(portrait, 72))

	for fs := config.MinFontSize; fs <= config.MaxFontSize; fs++ {
		assert.GreaterOrEqual(t, MaxLines(portrait, fs), MaxLines(landscape, fs))
		n := MaxLines(portrait, fs)
		assert.True(t, n >= 2 && n <= 5)
	}
}

func TestWrap(t *testing.T) {
	text := "The quick brown fox jumps over the lazy dog while the narrator keeps talking about nothing in particular for quite a while"

	wrapped := Wrap(text, 30, 3)
	lines := strings.Split(wrapped, "\n")
	assert.LessOrEqual(t, len(lines), 3)
	assert.Equal(t, strings.Fields(text), strings.Fields(wrapped))

	assert.Equal(t, wrapped, Wrap(wrapped, 30, 3))
}

func TestWrapOverflowMerges(t *testing.T) {
	text := strings.Repeat("word ", 40)
	wrapped := Wrap(text, 15, 2)
	lines := strings.Split(wrapped, "\n")
	require.Len(t, lines, 2)
	assert.Len(t, strings.Fields(wrapped), 40)
	assert.Equal(t, wrapped, Wrap(wrapped, 15, 2))
}

func TestWrapLongWord(t *testing.T) {
	word := strings.Repeat("x", 40)
	assert.Equal(t, "a\n"+word+"\nb", Wrap("a "+word+" b", 10, 3))
	assert.Equal(t, "", Wrap("  \n ", 10, 3))
}

func TestSanitize(t *testing.T) {
	in := "It's \"quoted\" `tick` — dash – dash…\tend\r"
	out := Sanitize(in)

	assert.Equal(t, "It’s ”quoted” ‘tick‘ - dash - dash... end ", out)
	assert.NotContains(t, out, "'")
	assert.GreaterOrEqual(t, utf8.RuneCountInString(out), utf8.RuneCountInString(in))

	plain := "100% sure: a, b; [c] \\ d"
	assert.Equal(t, plain, Sanitize(plain))
}

func newTimeline(t *testing.T, settings config.AssemblySettings, durations ...float64) *timeline.Timeline {
	t.Helper()
	paths := make([]string, len(durations))
	for i := range paths {
		paths[i] = "scene.mp4"
	}
	tl, err := timeline.New(paths, settings)
	require.NoError(t, err)
	for i, d := range durations {
		if d > 0 {
			require.NoError(t, tl.SetDuration(i, d))
		}
	}
	return tl
}

func TestGenerateTiming(t *testing.T) {
	tl := newTimeline(t, config.DefaultSettings(), 5, 4, 6)
	cues := Generate([]string{"First scene.", "Second scene.", "Third scene."}, tl)

	require.Len(t, cues, 3)
	assert.Equal(t, 0.0, cues[0].Start)
	assert.Equal(t, 5.0, cues[0].End)
	assert.Equal(t, 5.0, cues[1].Start)
	assert.Equal(t, 9.0, cues[1].End)
	assert.Equal(t, 15.0, cues[2].End)

	for i, c := range cues {
		assert.Less(t, c.Start, c.End)
		assert.Equal(t, uint32(i), c.SceneIndex)
		if i > 0 {
			assert.GreaterOrEqual(t, c.Start, cues[i-1].End)
		}
	}
}

func TestGenerateEarlyReadAfterSilentScene(t *testing.T) {
	tl := newTimeline(t, config.DefaultSettings(), 5, 4, 6)
	cues := Generate([]string{"First.", "", "Third."}, tl)

	require.Len(t, cues, 2)
	assert.Equal(t, uint32(2), cues[1].SceneIndex)
	assert.InDelta(t, 9-EarlyRead, cues[1].Start, 1e-9)
	assert.Equal(t, 15.0, cues[1].End)
}

func TestGenerateDelay(t *testing.T) {
	settings := config.DefaultSettings()
	sub := *settings.Subtitle
	sub.DelaySeconds = 0.5
	settings.Subtitle = &sub

	cues := Generate([]string{"One.", "Two."}, newTimeline(t, settings, 2, 3))
	require.Len(t, cues, 2)
	assert.Equal(t, 0.5, cues[0].Start)
	assert.Equal(t, 2.5, cues[0].End)
	assert.Equal(t, 5.5, cues[1].End)
}

func TestGenerateStopsAtUnmeasured(t *testing.T) {
	tl := newTimeline(t, config.DefaultSettings(), 5, 0, 6)
	cues := Generate([]string{"One.", "Two.", "Three."}, tl)
	require.Len(t, cues, 1)
	assert.Equal(t, uint32(0), cues[0].SceneIndex)
}

func TestGenerateKeepsEveryWord(t *testing.T) {
	settings := config.DefaultSettings()
	settings.Resolution = portrait
	sub := *settings.Subtitle
	sub.FontSize = 64
	settings.Subtitle = &sub

	narration := "This narration is deliberately long so that it cannot possibly fit within the handful of lines allowed at this size on a portrait frame, and yet no word should ever go missing."
	cues := Generate([]string{narration}, newTimeline(t, settings, 8))
	require.Len(t, cues, 1)
	assert.Equal(t, strings.Fields(Sanitize(narration)), strings.Fields(cues[0].Text))
	assert.LessOrEqual(t, len(strings.Split(cues[0].Text, "\n")), MaxLines(portrait, 64))
}

func TestStyleDrawText(t *testing.T) {
	sub := config.DefaultSubtitleSettings()
	st := NewStyle(sub, landscape)
	kw := st.DrawText(Cue{Start: 1.2, End: 4, Text: "Hello"})

	assert.Equal(t, "Hello", kw["text"])
	assert.Equal(t, "none", kw["expansion"])
	assert.Equal(t, "32", kw["fontsize"])
	assert.Equal(t, "white", kw["fontcolor"])
	assert.Equal(t, "black", kw["bordercolor"])
	assert.Equal(t, "(w-text_w)/2", kw["x"])
	assert.Equal(t, "h-text_h-54", kw["y"])
	assert.Equal(t, "gte(t,1.200)*lt(t,4.000)", kw["enable"])
	assert.Equal(t, "min(1,max(0,(t-1.200)/0.250))", kw["alpha"])
	assert.NotContains(t, kw, "fontfile")

	sub.Position = config.PositionTop
	sub.FadeIn = false
	sub.FontFile = "/fonts/Inter.ttf"
	kw = NewStyle(sub, landscape).DrawText(Cue{Start: 0, End: 1, Text: "x"})
	assert.Equal(t, "54", kw["y"])
	assert.NotContains(t, kw, "alpha")
	assert.Equal(t, "/fonts/Inter.ttf", kw["fontfile"])

	sub.Position = config.PositionCenter
	assert.Equal(t, "(h-text_h)/2", NewStyle(sub, landscape).Y)

	sub.FontFile = `C:\Fonts\it's.ttf`
	kw = NewStyle(sub, landscape).DrawText(Cue{Start: 0, End: 1, Text: "Step 1: heat"})
	assert.Equal(t, `Step 1\: heat`, kw["text"])
	assert.Equal(t, `C\:\\Fonts\\it\'s.ttf`, kw["fontfile"])
}

func TestEscapeOption(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"plain text", "plain text"},
		{"10:30", `10\:30`},
		{`C:\oven`, `C\:\\oven`},
		{"it's", `it\'s`},
		{"a, b; [c] 50%", "a, b; [c] 50%"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, EscapeOption(tc.in), tc.in)
	}
}

func TestCuesDoNotShareBoundaryFrame(t *testing.T) {
	settings := config.DefaultSettings()
	cues := Generate([]string{"One.", "Two."}, newTimeline(t, settings, 5, 4))
	require.Len(t, cues, 2)
	st := NewStyle(*settings.Subtitle, landscape)

	// the boundary at 5.000 belongs to the second cue only
	assert.Equal(t, "gte(t,0.000)*lt(t,5.000)", st.DrawText(cues[0])["enable"])
	assert.Equal(t, "gte(t,5.000)*lt(t,9.000)", st.DrawText(cues[1])["enable"])
}

func TestWriteSRT(t *testing.T) {
	var buf bytes.Buffer
	err := WriteSRT(&buf, []Cue{
		{Start: 0, End: 5, Text: "First line\nsecond line"},
		{Start: 3661.5, End: 3662.25, Text: "Later"},
	})
	require.NoError(t, err)

	want := "1\n00:00:00,000 --> 00:00:05,000\nFirst line\nsecond line\n" +
		"\n2\n01:01:01,500 --> 01:01:02,250\nLater\n"
	assert.Equal(t, want, buf.String())
}
