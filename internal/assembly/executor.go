// Package assembly turns a transition plan and subtitle cues into one
// engine invocation and classifies its outcome.
package assembly

import (
	"context"
	"os"
	"strings"
	"sync"

	"github.com/ZacxDev/scene-assembler/internal/ffmpeg"
	"github.com/ZacxDev/scene-assembler/internal/subtitle"
	"github.com/ZacxDev/scene-assembler/internal/timeline"
	"github.com/ZacxDev/scene-assembler/internal/transition"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// State of an Executor.
type State int

const (
	Idle State = iota
	Building
	Invoking
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Building:
		return "building"
	case Invoking:
		return "invoking"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Output describes a successfully written file.
type Output struct {
	Path string
	Size int64
	// Lines are diagnostic lines the engine printed despite succeeding.
	Lines []string
}

// Executor runs one assembly at a time. It never retries; falling back is
// the caller's decision.
type Executor struct {
	engine ffmpeg.Engine
	logger zerolog.Logger

	// OnProgress receives each completed progress block.
	OnProgress func(ffmpeg.Progress)

	mu    sync.Mutex
	state State
}

// NewExecutor creates an executor bound to engine.
func NewExecutor(engine ffmpeg.Engine, logger zerolog.Logger) *Executor {
	return &Executor{
		engine: engine,
		logger: logger.With().Str("component", "assembly").Logger(),
	}
}

// State returns the current state.
func (e *Executor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Executor) setState(s State) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
}

// Assemble renders plan with cues burned in to out.
func (e *Executor) Assemble(ctx context.Context, plan *transition.Plan, cues []subtitle.Cue, tl *timeline.Timeline, out string) (*Output, error) {
	e.setState(Building)
	args, err := BuildTransitionArgs(plan, cues, tl, out)
	if err != nil {
		e.setState(Failed)
		return nil, errors.Wrap(err, "build transition graph")
	}

	e.logger.Info().
		Int("segments", tl.Len()).
		Int("transitions", len(plan.Ops)).
		Int("cues", len(cues)).
		Float64("duration", plan.Total).
		Msg("assembling with transitions")

	return e.invoke(ctx, args, plan.Total, out)
}

// invoke runs args and classifies the outcome. Any failure removes the
// partial output.
func (e *Executor) invoke(ctx context.Context, args []string, total float64, out string) (*Output, error) {
	e.setState(Invoking)
	e.logger.Debug().Strs("args", args).Msg("invoking engine")

	tracker := ffmpeg.NewProgressTracker(total)
	var lines []string
	err := e.engine.Run(ctx, args, func(line string) {
		marker, block := tracker.Feed(line)
		if marker {
			if block != nil && e.OnProgress != nil {
				e.OnProgress(*block)
			}
			return
		}
		if strings.TrimSpace(line) == "" {
			return
		}
		lines = append(lines, line)
		e.logger.Debug().Str("line", line).Msg("engine error output")
	})

	if err != nil {
		e.setState(Failed)
		e.removePartial(out)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &Error{Kind: ToolFailed, Output: out, Lines: lines, Err: err}
	}

	info, err := os.Stat(out)
	if err != nil {
		e.setState(Failed)
		if os.IsNotExist(err) {
			return nil, &Error{Kind: MissingOutput, Output: out, Lines: lines}
		}
		return nil, &Error{Kind: MissingOutput, Output: out, Lines: lines, Err: err}
	}
	if info.Size() == 0 {
		e.setState(Failed)
		e.removePartial(out)
		return nil, &Error{Kind: EmptyOutput, Output: out, Lines: lines}
	}

	e.setState(Succeeded)
	e.logger.Info().Str("output", out).Int64("bytes", info.Size()).Msg("assembly complete")
	return &Output{Path: out, Size: info.Size(), Lines: lines}, nil
}

func (e *Executor) removePartial(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		e.logger.Warn().Err(err).Str("path", path).Msg("could not remove partial output")
	}
}
