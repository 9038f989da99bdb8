package ffmpeg

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"os/exec"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// ErrToolUnavailable marks failures to start ffmpeg or ffprobe at all.
var ErrToolUnavailable = errors.New("media tool unavailable")

// Engine is the handle to the external media-processing engine.
type Engine interface {
	// Probe runs a metadata-only query and returns the tool's raw output:
	// the container duration in seconds.
	Probe(ctx context.Context, path string) (string, error)

	// Run executes one ffmpeg invocation. Every diagnostic line is passed
	// to onLine as it arrives.
	Run(ctx context.Context, args []string, onLine func(string)) error
}

// Processor is the exec-backed Engine
type Processor struct {
	logger      zerolog.Logger
	ffmpegPath  string
	ffprobePath string
}

// NewProcessor creates a new FFmpeg processor
func NewProcessor(logger zerolog.Logger, ffmpegPath, ffprobePath string) *Processor {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &Processor{
		logger:      logger.With().Str("component", "ffmpeg").Logger(),
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
	}
}

// baseArgs precede every invocation. Only errors reach stderr besides the
// -progress key=value blocks.
var baseArgs = []string{
	"-hide_banner",
	"-nostdin",
	"-nostats",
	"-loglevel", "error",
	"-progress", "pipe:2",
	"-y",
}

// Probe returns ffprobe's format duration output for path
func (p *Processor) Probe(ctx context.Context, path string) (string, error) {
	cmd := exec.CommandContext(ctx, p.ffprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return string(out), errors.Wrapf(err, "ffprobe %s: %s", path, strings.TrimSpace(stderr.String()))
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", errors.Wrapf(ErrToolUnavailable, "start ffprobe: %v", err)
	}
	return string(out), nil
}

// Run executes ffmpeg with the given arguments and streams stderr lines
func (p *Processor) Run(ctx context.Context, args []string, onLine func(string)) error {
	if len(args) == 0 {
		return errors.New("no arguments provided")
	}

	full := make([]string, 0, len(baseArgs)+len(args))
	full = append(full, baseArgs...)
	full = append(full, args...)

	p.logger.Debug().
		Str("cmd", p.ffmpegPath).
		Strs("args", full).
		Msg("executing ffmpeg")

	cmd := exec.CommandContext(ctx, p.ffmpegPath, full...)
	cmd.Stdout = io.Discard

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return errors.Wrap(err, "failed to create stderr pipe")
	}

	if err := cmd.Start(); err != nil {
		return errors.Wrapf(ErrToolUnavailable, "start ffmpeg: %v", err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		scanner := bufio.NewScanner(stderr)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			if onLine != nil {
				onLine(scanner.Text())
			}
		}
		if err := scanner.Err(); err != nil {
			p.logger.Warn().Err(err).Msg("stopped reading ffmpeg output")
		}
		// keep the pipe drained so ffmpeg never blocks on a full stderr
		_, _ = io.Copy(io.Discard, stderr)
	}()

	wg.Wait()

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return errors.Wrap(err, "ffmpeg execution failed")
	}

	p.logger.Debug().Msg("ffmpeg execution completed")
	return nil
}
