package config

import (
	"fmt"

	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"
)

// TransitionKind selects the visual effect used where two segments meet.
type TransitionKind string

const (
	TransitionNone  TransitionKind = "none"
	TransitionFade  TransitionKind = "fade"
	TransitionSlide TransitionKind = "slide"
	TransitionZoom  TransitionKind = "zoom"
)

// Orientation of the output frame.
type Orientation string

const (
	OrientationLandscape Orientation = "landscape"
	OrientationPortrait  Orientation = "portrait"
	OrientationSquare    Orientation = "square"
)

// SubtitlePosition is the vertical anchor for burned-in subtitles.
type SubtitlePosition string

const (
	PositionTop    SubtitlePosition = "top"
	PositionBottom SubtitlePosition = "bottom"
	PositionCenter SubtitlePosition = "center"
)

const (
	MinFontSize = 12
	MaxFontSize = 72

	DefaultTransitionDuration = 1.0
	DefaultFrameRate          = 30
	DefaultFontSize           = 32
	DefaultFontColor          = "white"
	DefaultOutlineColor       = "black"
	DefaultOutlineWidth       = 2
)

// Resolution is the output frame size in pixels.
type Resolution struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// IsPortrait reports whether the frame is taller than it is wide.
func (r Resolution) IsPortrait() bool {
	return r.Width < r.Height
}

// Orientation derives the orientation implied by the frame size.
func (r Resolution) Orientation() Orientation {
	switch {
	case r.Width == r.Height:
		return OrientationSquare
	case r.IsPortrait():
		return OrientationPortrait
	default:
		return OrientationLandscape
	}
}

func (r Resolution) String() string {
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

// SubtitleSettings controls burned-in subtitle rendering.
type SubtitleSettings struct {
	Enabled      bool             `yaml:"enabled"`
	Position     SubtitlePosition `yaml:"position"`
	DelaySeconds float64          `yaml:"delay_seconds"`
	FadeIn       bool             `yaml:"fade_in"`
	FontSize     int              `yaml:"font_size"`
	FontColor    string           `yaml:"font_color"`
	OutlineColor string           `yaml:"outline_color"`
	OutlineWidth int              `yaml:"outline_width"`
	FontFile     string           `yaml:"font_file,omitempty"`
}

// Encoding selects the output encoder. Empty fields are filled from the
// output profile and then from the codec preset table.
type Encoding struct {
	Format       string `yaml:"format"` // "mp4" or "webm"
	VideoCodec   string `yaml:"video_codec"`
	AudioCodec   string `yaml:"audio_codec"`
	CRF          int    `yaml:"crf"`
	Preset       string `yaml:"preset"`
	AudioBitrate string `yaml:"audio_bitrate"`
}

// AssemblySettings are the global settings of one assembly run. They are
// immutable once the run starts.
type AssemblySettings struct {
	Transition         TransitionKind    `yaml:"transition"`
	TransitionDuration float64           `yaml:"transition_duration"`
	Resolution         Resolution        `yaml:"resolution"`
	FrameRate          uint32            `yaml:"frame_rate"`
	Orientation        Orientation       `yaml:"orientation"`
	Subtitle           *SubtitleSettings `yaml:"subtitle,omitempty"`
	Encoding           Encoding          `yaml:"encoding"`
}

// SubtitlesEnabled reports whether cues should be generated and burned in.
func (s AssemblySettings) SubtitlesEnabled() bool {
	return s.Subtitle != nil && s.Subtitle.Enabled
}

// DefaultSubtitleSettings returns bottom-anchored white text with a black outline.
func DefaultSubtitleSettings() SubtitleSettings {
	return SubtitleSettings{
		Enabled:      true,
		Position:     PositionBottom,
		FadeIn:       true,
		FontSize:     DefaultFontSize,
		FontColor:    DefaultFontColor,
		OutlineColor: DefaultOutlineColor,
		OutlineWidth: DefaultOutlineWidth,
	}
}

// DefaultSettings returns a 1080p landscape fade assembly with subtitles.
func DefaultSettings() AssemblySettings {
	sub := DefaultSubtitleSettings()
	return AssemblySettings{
		Transition:         TransitionFade,
		TransitionDuration: DefaultTransitionDuration,
		Resolution:         Resolution{Width: 1920, Height: 1080},
		FrameRate:          DefaultFrameRate,
		Orientation:        OrientationLandscape,
		Subtitle:           &sub,
		Encoding:           Encoding{Format: "mp4"},
	}
}

// Validate checks the settings before a run starts.
func (s AssemblySettings) Validate() error {
	switch s.Transition {
	case TransitionNone, TransitionFade, TransitionSlide, TransitionZoom:
	default:
		return fmt.Errorf("unsupported transition: %q (supported: none, fade, slide, zoom)", s.Transition)
	}
	if s.Transition != TransitionNone && s.TransitionDuration <= 0 {
		return fmt.Errorf("transition duration must be > 0, got %.3f", s.TransitionDuration)
	}
	if s.Resolution.Width <= 0 || s.Resolution.Height <= 0 {
		return fmt.Errorf("invalid resolution %s", s.Resolution)
	}
	if s.Resolution.Width%2 != 0 || s.Resolution.Height%2 != 0 {
		return fmt.Errorf("resolution %s must have even dimensions", s.Resolution)
	}
	if s.FrameRate == 0 {
		return errors.New("frame rate must be > 0")
	}
	switch s.Orientation {
	case "", OrientationLandscape, OrientationPortrait, OrientationSquare:
	default:
		return fmt.Errorf("unsupported orientation: %q", s.Orientation)
	}
	switch s.Encoding.Format {
	case "", "mp4", "webm":
	default:
		return fmt.Errorf("unsupported output format: %s (supported: webm, mp4)", s.Encoding.Format)
	}
	if s.Subtitle != nil {
		if err := s.Subtitle.Validate(); err != nil {
			return errors.Wrap(err, "subtitle settings")
		}
	}
	return nil
}

// Validate checks font size range, position and delay.
func (s SubtitleSettings) Validate() error {
	if s.FontSize < MinFontSize || s.FontSize > MaxFontSize {
		return fmt.Errorf("font size %d out of range [%d,%d]", s.FontSize, MinFontSize, MaxFontSize)
	}
	switch s.Position {
	case PositionTop, PositionBottom, PositionCenter:
	default:
		return fmt.Errorf("unsupported subtitle position: %q", s.Position)
	}
	if s.DelaySeconds < 0 {
		return fmt.Errorf("subtitle delay must be >= 0, got %.3f", s.DelaySeconds)
	}
	if s.OutlineWidth < 0 {
		return fmt.Errorf("outline width must be >= 0, got %d", s.OutlineWidth)
	}
	return nil
}

// Clamp bounds v to [lo, hi].
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
