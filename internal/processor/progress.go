package processor

import (
	"github.com/ZacxDev/scene-assembler/internal/ffmpeg"
	"github.com/ZacxDev/scene-assembler/pkg/types"
)

// Milestones on the caller's progress stream. The engine's own progress is
// mapped into [pctInvoke, pctEncoded].
const (
	pctStart    = 0
	pctProbing  = 5
	pctBuilding = 15
	pctInvoke   = 20
	pctEncoded  = 95
	pctDone     = 100
)

type reporter struct {
	fn       types.ProgressFunc
	last     float64
	degraded bool
}

func newReporter(fn types.ProgressFunc) *reporter {
	return &reporter{fn: fn}
}

// send never moves the percentage backwards.
func (r *reporter) send(pct float64, stage types.Stage, msg string) {
	if pct < r.last {
		pct = r.last
	}
	r.last = pct
	if r.fn == nil {
		return
	}
	r.fn(types.Progress{
		Percent:  pct,
		Stage:    stage,
		Message:  msg,
		Degraded: r.degraded,
	})
}

func (r *reporter) warn(stage types.Stage, msg string) {
	r.send(r.last, stage, "warning: "+msg)
}

// engine returns a callback translating engine progress blocks.
func (r *reporter) engine(stage types.Stage) func(ffmpeg.Progress) {
	return func(p ffmpeg.Progress) {
		if p.Percent < 0 {
			return
		}
		pct := pctInvoke + p.Percent*(pctEncoded-pctInvoke)/100
		r.send(pct, stage, "encoding")
	}
}
