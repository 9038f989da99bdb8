package subtitle

import (
	"fmt"
	"strconv"

	"github.com/ZacxDev/scene-assembler/internal/config"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// FadeInSeconds is the alpha ramp applied at the start of each cue.
const FadeInSeconds = 0.25

// Style is the drawtext configuration shared by every cue of a run.
type Style struct {
	FontSize    int
	FontColor   string
	BorderColor string
	BorderWidth int
	LineSpacing int
	FontFile    string
	X           string
	Y           string
	FadeIn      bool
}

// NewStyle resolves the drawtext style for settings on a frame of size res.
func NewStyle(s config.SubtitleSettings, res config.Resolution) Style {
	margin := res.Height / 20
	if margin < 10 {
		margin = 10
	}

	var y string
	switch s.Position {
	case config.PositionTop:
		y = strconv.Itoa(margin)
	case config.PositionCenter:
		y = "(h-text_h)/2"
	default:
		y = fmt.Sprintf("h-text_h-%d", margin)
	}

	return Style{
		FontSize:    s.FontSize,
		FontColor:   s.FontColor,
		BorderColor: s.OutlineColor,
		BorderWidth: s.OutlineWidth,
		LineSpacing: s.FontSize / 4,
		FontFile:    s.FontFile,
		X:           "(w-text_w)/2",
		Y:           y,
		FadeIn:      s.FadeIn,
	}
}

// DrawText returns the drawtext options rendering c. Free-form values are
// option-escaped here; ffmpeg-go adds the filtergraph level on top.
func (st Style) DrawText(c Cue) ffmpeg.KwArgs {
	kwargs := ffmpeg.KwArgs{
		"text":         EscapeOption(c.Text),
		"expansion":    "none",
		"fontsize":     strconv.Itoa(st.FontSize),
		"fontcolor":    st.FontColor,
		"bordercolor":  st.BorderColor,
		"borderw":      strconv.Itoa(st.BorderWidth),
		"line_spacing": strconv.Itoa(st.LineSpacing),
		"x":            st.X,
		"y":            st.Y,
		"enable":       fmt.Sprintf("gte(t,%s)*lt(t,%s)", seconds(c.Start), seconds(c.End)),
	}
	if st.FontFile != "" {
		kwargs["fontfile"] = EscapeOption(st.FontFile)
	}
	if st.FadeIn {
		kwargs["alpha"] = fmt.Sprintf("min(1,max(0,(t-%s)/%s))", seconds(c.Start), seconds(FadeInSeconds))
	}
	return kwargs
}

func seconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}
