// Package timeline holds the ordered segments of one assembly run together
// with their measured durations.
package timeline

import (
	"fmt"
	"math"

	"github.com/ZacxDev/scene-assembler/internal/config"
	"github.com/pkg/errors"
)

// Segment is one rendered scene clip. Duration is only meaningful once
// Measured is true.
type Segment struct {
	Index    uint32
	Source   string
	Duration float64
	Measured bool
}

// Timeline is the ordered sequence of segments plus the run's settings.
// Each slot is written by at most one prober; after probing it is read-only.
type Timeline struct {
	Segments []Segment
	Settings config.AssemblySettings
}

// New creates a timeline with every duration unknown.
func New(paths []string, settings config.AssemblySettings) (*Timeline, error) {
	if len(paths) == 0 {
		return nil, errors.New("timeline needs at least one segment")
	}
	segs := make([]Segment, len(paths))
	for i, p := range paths {
		if p == "" {
			return nil, fmt.Errorf("segment %d has an empty path", i)
		}
		segs[i] = Segment{Index: uint32(i), Source: p}
	}
	return &Timeline{Segments: segs, Settings: settings}, nil
}

// Len returns the number of segments.
func (t *Timeline) Len() int {
	return len(t.Segments)
}

// SetDuration records a measured duration for segment i.
func (t *Timeline) SetDuration(i int, d float64) error {
	if i < 0 || i >= len(t.Segments) {
		return fmt.Errorf("segment index %d out of range", i)
	}
	if math.IsNaN(d) || math.IsInf(d, 0) || d <= 0 {
		return fmt.Errorf("invalid duration %v for segment %d", d, i)
	}
	t.Segments[i].Duration = d
	t.Segments[i].Measured = true
	return nil
}

// Sources returns the segment paths in order.
func (t *Timeline) Sources() []string {
	out := make([]string, len(t.Segments))
	for i, s := range t.Segments {
		out[i] = s.Source
	}
	return out
}

// AllMeasured reports whether every segment has a known duration.
func (t *Timeline) AllMeasured() bool {
	return t.MeasuredPrefix() == len(t.Segments)
}

// MeasuredPrefix is the number of leading segments with known durations.
func (t *Timeline) MeasuredPrefix() int {
	for i, s := range t.Segments {
		if !s.Measured {
			return i
		}
	}
	return len(t.Segments)
}

// Durations returns the measured durations of the leading measured segments.
func (t *Timeline) Durations() []float64 {
	n := t.MeasuredPrefix()
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = t.Segments[i].Duration
	}
	return out
}

// AudioStarts returns A_i, the cumulative start of each measured segment's
// narration on the output timeline.
func (t *Timeline) AudioStarts() []float64 {
	durs := t.Durations()
	starts := make([]float64, len(durs))
	acc := 0.0
	for i, d := range durs {
		starts[i] = acc
		acc += d
	}
	return starts
}

// Total is the sum of measured durations, or -1 if any segment is unknown.
func (t *Timeline) Total() float64 {
	if !t.AllMeasured() {
		return -1
	}
	total := 0.0
	for _, s := range t.Segments {
		total += s.Duration
	}
	return total
}
