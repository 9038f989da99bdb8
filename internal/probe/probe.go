// Package probe measures segment durations through the media engine's
// metadata-only query.
package probe

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ZacxDev/scene-assembler/internal/ffmpeg"
	"github.com/ZacxDev/scene-assembler/internal/timeline"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Kind classifies a probe failure.
type Kind int

const (
	// ToolUnavailable means the engine could not be started.
	ToolUnavailable Kind = iota + 1
	// UnparsableOutput means the engine ran but did not report a usable
	// duration, including when it exited nonzero on a corrupt or missing
	// file.
	UnparsableOutput
)

func (k Kind) String() string {
	switch k {
	case ToolUnavailable:
		return "tool unavailable"
	case UnparsableOutput:
		return "unparsable output"
	default:
		return "unknown"
	}
}

// Error is returned for every failed probe.
type Error struct {
	Kind    Kind
	Segment uint32
	Path    string
	Output  string
	Err     error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("probe segment %d (%s): %s", e.Segment, e.Path, e.Kind)
	if e.Output != "" {
		msg += fmt.Sprintf(": output %q", e.Output)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Duration asks the engine for the container duration of seg, in seconds.
// The result is finite and strictly positive. Failures are never retried.
func Duration(ctx context.Context, engine ffmpeg.Engine, seg timeline.Segment) (float64, error) {
	out, err := engine.Probe(ctx, seg.Source)
	if err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		kind := UnparsableOutput
		if errors.Is(err, ffmpeg.ErrToolUnavailable) {
			kind = ToolUnavailable
		}
		return 0, &Error{Kind: kind, Segment: seg.Index, Path: seg.Source, Output: strings.TrimSpace(out), Err: err}
	}

	d, err := parseDuration(out)
	if err != nil {
		return 0, &Error{Kind: UnparsableOutput, Segment: seg.Index, Path: seg.Source, Output: strings.TrimSpace(out), Err: err}
	}
	return d, nil
}

func parseDuration(out string) (float64, error) {
	line := strings.TrimSpace(out)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = strings.TrimSpace(line[:i])
	}
	if line == "" {
		return 0, fmt.Errorf("empty output")
	}
	d, err := strconv.ParseFloat(line, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(d) || math.IsInf(d, 0) || d <= 0 {
		return 0, fmt.Errorf("non-positive duration %v", d)
	}
	return d, nil
}

// ProbeAll probes every segment of tl concurrently, at most concurrency at
// a time, and records each measured duration in its own timeline slot. The
// returned slice has one entry per segment, nil where probing succeeded.
func ProbeAll(ctx context.Context, engine ffmpeg.Engine, tl *timeline.Timeline, concurrency int) []error {
	errs := make([]error, tl.Len())

	g, gctx := errgroup.WithContext(ctx)
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}

	for i := range tl.Segments {
		i := i
		seg := tl.Segments[i]
		g.Go(func() error {
			d, err := Duration(gctx, engine, seg)
			if err != nil {
				errs[i] = err
				return nil
			}
			if err := tl.SetDuration(i, d); err != nil {
				errs[i] = err
			}
			return nil
		})
	}
	_ = g.Wait()

	return errs
}

// FirstError returns the first non-nil error in index order.
func FirstError(errs []error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
