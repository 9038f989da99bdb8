package processor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZacxDev/scene-assembler/internal/config"
	"github.com/ZacxDev/scene-assembler/internal/ffmpeg"
	"github.com/ZacxDev/scene-assembler/internal/platform"
	"github.com/ZacxDev/scene-assembler/internal/subtitle"
	"github.com/rs/zerolog"
)

// Request is one assembly job.
type Request struct {
	// Segments are the rendered scene clips in timeline order.
	Segments []string
	// Narration holds the spoken text of each scene, same order.
	Narration []string
	Settings  config.AssemblySettings
	// Profile optionally names an output profile applied over Settings.
	Profile    string
	OutputPath string
	// SubtitleFile, when set, receives the cues as SubRip.
	SubtitleFile string
}

// Result describes a finished assembly.
type Result struct {
	OutputPath string
	Size       int64
	// Degraded is set when the output was joined without transitions
	// although transitions were requested.
	Degraded bool
	Warnings []string
	// Duration is the expected output length, -1 if some segment could
	// not be measured.
	Duration float64
	Cues     []subtitle.Cue
}

// Assembler orchestrates probing, planning, cue generation, execution
// and the concatenation fallback.
type Assembler struct {
	cfg    *config.Config
	engine ffmpeg.Engine
	logger zerolog.Logger
}

// NewAssembler creates an assembler using engine for every subprocess.
func NewAssembler(cfg *config.Config, engine ffmpeg.Engine, logger zerolog.Logger) *Assembler {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Assembler{
		cfg:    cfg,
		engine: engine,
		logger: logger.With().Str("component", "assembler").Logger(),
	}
}

// GetSupportedPlatforms returns a list of supported output profiles
func GetSupportedPlatforms() []string {
	return platform.GetSupportedPlatforms()
}

// resolveSettings applies the request's profile, if any, and validates.
func resolveSettings(req Request) (config.AssemblySettings, platform.Platform, error) {
	settings := req.Settings
	var plat platform.Platform
	if req.Profile != "" {
		p, err := platform.Get(req.Profile)
		if err != nil {
			return settings, nil, err
		}
		platform.Apply(p, &settings)
		plat = p
	}
	if settings.Encoding.Format == "" {
		settings.Encoding.Format = "mp4"
	}
	if err := settings.Validate(); err != nil {
		return settings, nil, fmt.Errorf("invalid settings: %v", err)
	}
	return settings, plat, nil
}

func ensureOutputPath(path, format string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("output path is required")
	}
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("error creating output directory: %v", err)
		}
	}

	// Ensure correct file extension
	ext := ffmpeg.GetCodecSettings(format).FileExtension
	if !strings.HasSuffix(strings.ToLower(path), ext) {
		path = ffmpeg.EnsureExtension(path, ext)
	}
	return path, nil
}
