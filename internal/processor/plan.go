package processor

import (
	"context"
	"path/filepath"

	"github.com/ZacxDev/scene-assembler/internal/assembly"
	"github.com/ZacxDev/scene-assembler/internal/config"
	"github.com/ZacxDev/scene-assembler/internal/probe"
	"github.com/ZacxDev/scene-assembler/internal/subtitle"
	"github.com/ZacxDev/scene-assembler/internal/timeline"
	"github.com/ZacxDev/scene-assembler/internal/transition"
	"github.com/pkg/errors"
)

// DryRun is everything Assemble would do, without invoking the encoder.
type DryRun struct {
	Timeline *timeline.Timeline
	Plan     *transition.Plan
	Cues     []subtitle.Cue
	// Args is the engine invocation the first attempt would use.
	Args     []string
	Warnings []string
}

// Plan probes the segments and computes the transition plan, the cues and
// the engine arguments for req.
func (a *Assembler) Plan(ctx context.Context, req Request) (*DryRun, error) {
	settings, _, err := resolveSettings(req)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	tl, err := timeline.New(req.Segments, settings)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	dr := &DryRun{Timeline: tl}

	probeCtx := ctx
	if a.cfg.ProbeTimeout > 0 {
		var cancel context.CancelFunc
		probeCtx, cancel = context.WithTimeout(ctx, a.cfg.ProbeTimeout)
		defer cancel()
	}
	for _, perr := range probe.ProbeAll(probeCtx, a.engine, tl, a.cfg.ProbeConcurrency) {
		if perr != nil {
			dr.Warnings = append(dr.Warnings, perr.Error())
		}
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	dr.Plan = transition.Build(tl)
	dr.Warnings = append(dr.Warnings, dr.Plan.Warnings...)
	if settings.SubtitlesEnabled() {
		dr.Cues = subtitle.Generate(req.Narration, tl)
	}

	out := req.OutputPath
	if out == "" {
		out = "output." + settings.Encoding.Format
	}
	if dr.Plan.UseConcat {
		manifest := filepath.Join(a.cfg.TempDir, config.ConcatManifestName)
		dr.Args = assembly.BuildConcatArgs(manifest, dr.Cues, settings, out)
		return dr, nil
	}

	dr.Args, err = assembly.BuildTransitionArgs(dr.Plan, dr.Cues, tl, out)
	if err != nil {
		return nil, err
	}
	return dr, nil
}
