package compositor

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ZacxDev/scene-assembler/pkg/types"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEngine struct {
	runs int
}

func (s *stubEngine) Probe(ctx context.Context, path string) (string, error) {
	return "3.5\n", nil
}

func (s *stubEngine) Run(ctx context.Context, args []string, onLine func(string)) error {
	s.runs++
	onLine("progress=end")
	return os.WriteFile(args[len(args)-1], []byte("video"), 0644)
}

func TestAssemble(t *testing.T) {
	dir := t.TempDir()
	logger := zerolog.Nop()
	engine := &stubEngine{}

	settings := DefaultSettings()
	settings.Transition = TransitionZoom

	var stages []types.Stage
	res, err := Assemble(context.Background(), &AssembleOptions{
		Segments:   []string{filepath.Join(dir, "a.mp4"), filepath.Join(dir, "b.mp4")},
		Narration:  []string{"Hello there.", "General Kenobi."},
		OutputPath: filepath.Join(dir, "final.mp4"),
		Settings:   &settings,
		Engine:     engine,
		Logger:     &logger,
		Progress:   func(p types.Progress) { stages = append(stages, p.Stage) },
	})
	require.NoError(t, err)

	assert.Equal(t, 7.0, res.Duration)
	assert.False(t, res.Degraded)
	assert.Len(t, res.Cues, 2)
	assert.Equal(t, 1, engine.runs)
	require.NotEmpty(t, stages)
	assert.Equal(t, types.StageDone, stages[len(stages)-1])
}

func TestPlan(t *testing.T) {
	dir := t.TempDir()
	dr, err := Plan(context.Background(), &AssembleOptions{
		Segments: []string{filepath.Join(dir, "a.mp4"), filepath.Join(dir, "b.mp4"), filepath.Join(dir, "c.mp4")},
		Engine:   &stubEngine{},
	})
	require.NoError(t, err)
	assert.Equal(t, []float64{3.5, 3.5}, dr.Plan.Offsets())
	assert.NotEmpty(t, dr.Args)
}

func TestAssembleRequiresOptions(t *testing.T) {
	_, err := Assemble(context.Background(), nil)
	assert.Error(t, err)
}

func TestAssembleRejectsBadConfig(t *testing.T) {
	cfg := Config{}
	_, err := Assemble(context.Background(), &AssembleOptions{Config: &cfg, Engine: &stubEngine{}})
	require.Error(t, err)
	assert.False(t, errors.Is(err, context.Canceled))
}

func TestGetSupportedPlatforms(t *testing.T) {
	assert.Contains(t, GetSupportedPlatforms(), "tiktok")
}
