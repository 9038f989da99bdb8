package platform

import (
	"fmt"

	"github.com/ZacxDev/scene-assembler/internal/config"
	"github.com/ZacxDev/scene-assembler/pkg/types"
	"golang.org/x/exp/slices"
)

// Platform describes an output profile: the frame and encoder a finished
// video is assembled for.
type Platform interface {
	// GetName returns the profile name
	GetName() types.ProcessingPlatform

	// GetResolution returns the output frame size
	GetResolution() (width, height int)

	// GetFrameRate returns the output frame rate
	GetFrameRate() uint32

	// GetMaxDuration returns the maximum allowed video duration in seconds, 0 for unlimited
	GetMaxDuration() int

	// GetVideoCodec returns the preferred video codec
	GetVideoCodec() string

	// GetAudioCodec returns the preferred audio codec
	GetAudioCodec() string

	// GetAudioBitrate returns the recommended audio bitrate
	GetAudioBitrate() string

	// GetOutputFormat returns the preferred output format (e.g., "mp4", "webm")
	GetOutputFormat() string
}

var platforms = make(map[types.ProcessingPlatform]Platform)

// Register adds a platform to the registry
func Register(p Platform) {
	platforms[p.GetName()] = p
}

// Get returns a platform by name
func Get(name string) (Platform, error) {
	p, ok := platforms[types.ProcessingPlatform(name)]
	if !ok {
		return nil, fmt.Errorf("unsupported platform: %s", name)
	}
	return p, nil
}

// GetSupportedPlatforms returns the registered platform names, sorted
func GetSupportedPlatforms() []string {
	names := make([]string, 0, len(platforms))
	for name := range platforms {
		names = append(names, string(name))
	}
	slices.Sort(names)
	return names
}

// Apply overwrites the frame and encoder fields of s with the profile's
// values. Encoder fields already set on s are kept.
func Apply(p Platform, s *config.AssemblySettings) {
	w, h := p.GetResolution()
	s.Resolution = config.Resolution{Width: w, Height: h}
	s.Orientation = s.Resolution.Orientation()
	s.FrameRate = p.GetFrameRate()

	if s.Encoding.Format == "" {
		s.Encoding.Format = p.GetOutputFormat()
	}
	if s.Encoding.VideoCodec == "" {
		s.Encoding.VideoCodec = p.GetVideoCodec()
	}
	if s.Encoding.AudioCodec == "" {
		s.Encoding.AudioCodec = p.GetAudioCodec()
	}
	if s.Encoding.AudioBitrate == "" {
		s.Encoding.AudioBitrate = p.GetAudioBitrate()
	}
}
