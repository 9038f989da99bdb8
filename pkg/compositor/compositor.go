// Package compositor is the in-process API for assembling narrated scene
// segments into one video with transitions and burned-in subtitles.
package compositor

import (
	"context"
	"time"

	"github.com/ZacxDev/scene-assembler/internal/config"
	"github.com/ZacxDev/scene-assembler/internal/ffmpeg"
	"github.com/ZacxDev/scene-assembler/internal/logging"
	"github.com/ZacxDev/scene-assembler/internal/processor"
	"github.com/ZacxDev/scene-assembler/pkg/types"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

type (
	Settings         = config.AssemblySettings
	SubtitleSettings = config.SubtitleSettings
	Resolution       = config.Resolution
	Encoding         = config.Encoding
	TransitionKind   = config.TransitionKind
	Config           = config.Config

	Result        = processor.Result
	DryRun        = processor.DryRun
	VideoMetadata = ffmpeg.VideoMetadata
	Engine        = ffmpeg.Engine
)

const (
	TransitionNone  = config.TransitionNone
	TransitionFade  = config.TransitionFade
	TransitionSlide = config.TransitionSlide
	TransitionZoom  = config.TransitionZoom
)

// AssembleOptions defines one assembly job
type AssembleOptions struct {
	Segments     []string
	Narration    []string
	OutputPath   string
	Settings     *Settings // nil for DefaultSettings
	Profile      string
	SubtitleFile string

	// Config overrides tool paths, timeouts and probe concurrency.
	Config *Config
	// Engine replaces the ffmpeg/ffprobe subprocess engine.
	Engine   Engine
	Logger   *zerolog.Logger
	Progress types.ProgressFunc
}

// DefaultSettings returns 1080p landscape fade transitions with subtitles.
func DefaultSettings() Settings {
	return config.DefaultSettings()
}

// GetSupportedPlatforms returns the output profile names
func GetSupportedPlatforms() []string {
	return processor.GetSupportedPlatforms()
}

// NewEngine returns the subprocess engine using the given tool paths.
// Empty paths resolve ffmpeg and ffprobe from PATH.
func NewEngine(ffmpegPath, ffprobePath string) Engine {
	return ffmpeg.NewProcessor(logging.WithComponent("ffmpeg"), ffmpegPath, ffprobePath)
}

func newAssembler(opts *AssembleOptions) (*processor.Assembler, processor.Request, error) {
	if opts == nil {
		return nil, processor.Request{}, errors.New("options are required")
	}

	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, processor.Request{}, err
	}

	logger := logging.WithComponent("compositor")
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	engine := opts.Engine
	if engine == nil {
		engine = ffmpeg.NewProcessor(logger, cfg.FFmpegPath, cfg.FFprobePath)
	}

	settings := cfg.Settings
	if opts.Settings != nil {
		settings = *opts.Settings
	}
	profile := opts.Profile
	if profile == "" {
		profile = cfg.Profile
	}

	req := processor.Request{
		Segments:     opts.Segments,
		Narration:    opts.Narration,
		Settings:     settings,
		Profile:      profile,
		OutputPath:   opts.OutputPath,
		SubtitleFile: opts.SubtitleFile,
	}
	return processor.NewAssembler(cfg, engine, logger), req, nil
}

// Assemble joins opts.Segments into opts.OutputPath.
func Assemble(ctx context.Context, opts *AssembleOptions) (*Result, error) {
	a, req, err := newAssembler(opts)
	if err != nil {
		return nil, err
	}
	return a.Assemble(ctx, req, opts.Progress)
}

// Plan probes the segments and returns the transition plan, cues and
// engine arguments without encoding anything.
func Plan(ctx context.Context, opts *AssembleOptions) (*DryRun, error) {
	a, req, err := newAssembler(opts)
	if err != nil {
		return nil, err
	}
	return a.Plan(ctx, req)
}

// GetVideoMetadata retrieves metadata about a video file
func GetVideoMetadata(inputPath string) (*VideoMetadata, error) {
	return ffmpeg.GetVideoMetadata(inputPath, 30*time.Second)
}
