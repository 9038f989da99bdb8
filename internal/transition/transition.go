// Package transition plans how consecutive segments are joined.
//
// A plan is a chain of N-1 compositing operations over N segments. Op i
// joins the running composite with segment i. The transition of op i
// starts only once segment i-1's narration has fully played; the left
// clip is extended with its frozen last frame for the length of the
// transition so no frame of narrated video is consumed by the effect and
// the composite runs exactly as long as the concatenated audio.
package transition

import (
	"fmt"
	"math"

	"github.com/ZacxDev/scene-assembler/internal/config"
	"github.com/ZacxDev/scene-assembler/internal/timeline"
	"github.com/pkg/errors"
)

// MinDuration is the shortest transition a clamp will produce.
const MinDuration = 0.1

// ErrInsufficientData is reported when a segment duration is unknown. It
// steers the run to concatenation and is not fatal.
var ErrInsufficientData = errors.New("insufficient duration data for transitions")

// effects maps each kind onto the compositing primitive's effect name.
var effects = map[config.TransitionKind]string{
	config.TransitionFade:  "fade",
	config.TransitionSlide: "slideleft",
	config.TransitionZoom:  "zoomin",
}

// Effect returns the xfade effect name for kind.
func Effect(kind config.TransitionKind) (string, bool) {
	e, ok := effects[kind]
	return e, ok
}

// Op is one compositing step.
type Op struct {
	Left  string // running composite label, "v0" for the first op
	Right string // incoming segment label
	Kind  config.TransitionKind
	// Effect is the primitive's effect name.
	Effect string
	// Offset is where the transition begins inside the left segment: its
	// full duration.
	Offset float64
	// Start is the same instant on the composite timeline.
	Start        float64
	Duration     float64
	LeftDuration float64 // left segment including its frozen tail
	Output       string
}

// Plan is the result of Build. When UseConcat is set Ops is empty and
// Reason explains why (nil when no transition was requested).
type Plan struct {
	Ops       []Op
	Output    string
	Durations []float64
	// Pads holds the frozen tail length appended to each segment.
	Pads     []float64
	Total    float64
	Warnings []string

	UseConcat bool
	Reason    error
}

// Label is the graph label of segment i's normalized video.
func Label(i int) string {
	return fmt.Sprintf("v%d", i)
}

// Build plans the transition chain for tl.
func Build(tl *timeline.Timeline) *Plan {
	s := tl.Settings

	if !tl.AllMeasured() {
		return &Plan{
			UseConcat: true,
			Reason:    errors.Wrapf(ErrInsufficientData, "segment %d has no measured duration", tl.MeasuredPrefix()),
		}
	}

	durs := tl.Durations()
	plan := &Plan{
		Durations: durs,
		Pads:      make([]float64, len(durs)),
		Total:     tl.Total(),
	}

	effect, ok := Effect(s.Transition)
	if s.Transition == config.TransitionNone || !ok || len(durs) < 2 {
		plan.UseConcat = true
		return plan
	}

	requested := s.TransitionDuration
	left := Label(0)
	start := 0.0
	for i := 1; i < len(durs); i++ {
		prev, next := durs[i-1], durs[i]
		d, warning := clampDuration(requested, prev, next)
		if warning != "" {
			plan.Warnings = append(plan.Warnings, fmt.Sprintf("transition %d->%d: %s", i-1, i, warning))
		}

		start += prev
		plan.Pads[i-1] = d

		op := Op{
			Left:         left,
			Right:        Label(i),
			Kind:         s.Transition,
			Effect:       effect,
			Offset:       prev,
			Start:        start,
			Duration:     d,
			LeftDuration: prev + d,
			Output:       fmt.Sprintf("x%d", i),
		}
		plan.Ops = append(plan.Ops, op)
		left = op.Output
	}
	plan.Output = left

	if err := plan.Validate(); err != nil {
		// never hand an inconsistent chain to the executor
		return &Plan{Durations: durs, Pads: make([]float64, len(durs)), Total: plan.Total, UseConcat: true, Reason: err, Warnings: plan.Warnings}
	}
	return plan
}

// clampDuration shortens a transition that would not fit between two
// segments of the given durations.
func clampDuration(requested, prev, next float64) (float64, string) {
	shorter := math.Min(prev, next)
	if requested < prev && requested <= shorter*0.5 {
		return requested, ""
	}
	clamped := math.Max(MinDuration, shorter*0.5)
	return clamped, fmt.Sprintf("duration %.3fs clamped to %.3fs (segments %.3fs and %.3fs)", requested, clamped, prev, next)
}

// Validate checks the per-op bounds.
func (p *Plan) Validate() error {
	for i, op := range p.Ops {
		if op.Offset < 0 {
			return fmt.Errorf("op %d: negative offset %.3f", i, op.Offset)
		}
		if op.Duration <= 0 {
			return fmt.Errorf("op %d: non-positive duration %.3f", i, op.Duration)
		}
		if op.Offset+op.Duration > op.LeftDuration+1e-9 {
			return fmt.Errorf("op %d: offset %.3f + duration %.3f exceeds left clip %.3f", i, op.Offset, op.Duration, op.LeftDuration)
		}
	}
	return nil
}

// Offsets returns the local offsets of every op in order.
func (p *Plan) Offsets() []float64 {
	out := make([]float64, len(p.Ops))
	for i, op := range p.Ops {
		out[i] = op.Offset
	}
	return out
}
