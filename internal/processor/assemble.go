package processor

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ZacxDev/scene-assembler/internal/assembly"
	"github.com/ZacxDev/scene-assembler/internal/config"
	"github.com/ZacxDev/scene-assembler/internal/probe"
	"github.com/ZacxDev/scene-assembler/internal/subtitle"
	"github.com/ZacxDev/scene-assembler/internal/timeline"
	"github.com/ZacxDev/scene-assembler/internal/transition"
	"github.com/ZacxDev/scene-assembler/pkg/types"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Assemble runs one job end to end. Transitions are attempted when every
// segment was measured; otherwise, and once after any executor failure,
// the segments are concatenated instead. A failed concatenation is final.
func (a *Assembler) Assemble(ctx context.Context, req Request, progress types.ProgressFunc) (*Result, error) {
	rep := newReporter(progress)

	settings, plat, err := resolveSettings(req)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	out, err := ensureOutputPath(req.OutputPath, settings.Encoding.Format)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	tl, err := timeline.New(req.Segments, settings)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	runID := uuid.New().String()
	scratch, err := os.MkdirTemp(a.cfg.TempDir, config.TempDirPrefix+runID+"_")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %v", err)
	}
	defer os.RemoveAll(scratch)

	logger := a.logger.With().Str("run", runID).Logger()
	logger.Info().
		Int("segments", tl.Len()).
		Str("transition", string(settings.Transition)).
		Str("resolution", settings.Resolution.String()).
		Str("output", out).
		Msg("starting assembly")
	rep.send(pctStart, types.StageStart, fmt.Sprintf("assembling %d segments", tl.Len()))

	res := &Result{OutputPath: out}
	warn := func(stage types.Stage, msg string) {
		res.Warnings = append(res.Warnings, msg)
		logger.Warn().Msg(msg)
		rep.warn(stage, msg)
	}

	// Probe
	rep.send(pctProbing, types.StageProbing, fmt.Sprintf("probing %d segments", tl.Len()))
	probeCtx := ctx
	if a.cfg.ProbeTimeout > 0 {
		var cancel context.CancelFunc
		probeCtx, cancel = context.WithTimeout(ctx, a.cfg.ProbeTimeout)
		defer cancel()
	}
	errs := probe.ProbeAll(probeCtx, a.engine, tl, a.cfg.ProbeConcurrency)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	for _, perr := range errs {
		if perr != nil {
			rep.degraded = true
			warn(types.StageProbing, perr.Error())
		}
	}

	// Plan and cues
	rep.send(pctBuilding, types.StageBuilding, "planning transitions")
	plan := transition.Build(tl)
	for _, w := range plan.Warnings {
		warn(types.StageBuilding, w)
	}
	if plan.Reason != nil {
		rep.degraded = true
		warn(types.StageBuilding, fmt.Sprintf("joining without transitions: %v", plan.Reason))
	}

	if settings.SubtitlesEnabled() {
		res.Cues = subtitle.Generate(req.Narration, tl)
		if n := tl.MeasuredPrefix(); n < tl.Len() {
			warn(types.StageBuilding, fmt.Sprintf("subtitles stop at segment %d: duration unknown", n))
		}
		if len(req.Narration) != tl.Len() {
			warn(types.StageBuilding, fmt.Sprintf("%d narration entries for %d segments", len(req.Narration), tl.Len()))
		}
	}

	res.Duration = tl.Total()
	if plat != nil && plat.GetMaxDuration() > 0 && res.Duration > float64(plat.GetMaxDuration()) {
		warn(types.StageBuilding, fmt.Sprintf("duration %.1fs exceeds %s maximum of %ds",
			res.Duration, plat.GetName(), plat.GetMaxDuration()))
	}

	// Execute
	exec := assembly.NewExecutor(a.engine, logger)
	concat := assembly.NewConcatenator(exec, scratch)

	var output *assembly.Output
	if plan.UseConcat {
		stage := types.StageInvoking
		if rep.degraded {
			stage = types.StageFallback
		}
		exec.OnProgress = rep.engine(stage)
		rep.send(pctInvoke, stage, "concatenating segments")

		output, err = a.concat(ctx, concat, res.Cues, tl, out)
		if err != nil {
			return nil, err
		}
	} else {
		exec.OnProgress = rep.engine(types.StageInvoking)
		rep.send(pctInvoke, types.StageInvoking, fmt.Sprintf("rendering %d transitions", len(plan.Ops)))

		runCtx, cancel := a.runContext(ctx)
		output, err = exec.Assemble(runCtx, plan, res.Cues, tl, out)
		cancel()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Error().Err(err).Msg("transition assembly failed")

			rep.degraded = true
			warn(types.StageFallback, fmt.Sprintf("transition assembly failed, falling back to concatenation: %v", firstLine(err)))
			exec.OnProgress = rep.engine(types.StageFallback)

			output, err = a.concat(ctx, concat, res.Cues, tl, out)
			if err != nil {
				return nil, err
			}
		}
	}

	res.Size = output.Size
	res.Degraded = rep.degraded

	if req.SubtitleFile != "" && len(res.Cues) > 0 {
		if err := subtitle.WriteSRTFile(req.SubtitleFile, res.Cues); err != nil {
			warn(types.StageDone, fmt.Sprintf("could not write subtitle file: %v", err))
		}
	}

	logger.Info().
		Str("output", out).
		Int64("bytes", res.Size).
		Bool("degraded", res.Degraded).
		Int("warnings", len(res.Warnings)).
		Msg("assembly finished")
	rep.send(pctDone, types.StageDone, "done")

	return res, nil
}

// runContext bounds one engine invocation by AssemblyTimeout. The fallback
// gets its own budget.
func (a *Assembler) runContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.cfg.AssemblyTimeout > 0 {
		return context.WithTimeout(ctx, a.cfg.AssemblyTimeout)
	}
	return context.WithCancel(ctx)
}

func (a *Assembler) concat(ctx context.Context, c *assembly.Concatenator, cues []subtitle.Cue, tl *timeline.Timeline, out string) (*assembly.Output, error) {
	runCtx, cancel := a.runContext(ctx)
	defer cancel()
	return c.Concat(runCtx, cues, tl, out)
}

func firstLine(err error) string {
	line, _, _ := strings.Cut(err.Error(), "\n")
	return line
}
