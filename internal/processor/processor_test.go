package processor

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ZacxDev/scene-assembler/internal/assembly"
	"github.com/ZacxDev/scene-assembler/internal/config"
	"github.com/ZacxDev/scene-assembler/pkg/types"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEngine answers probes from a table and fails Run calls listed in
// runErrs by call index. Calls listed in hang block until cancelled.
type fakeEngine struct {
	durations map[string]string
	runErrs   map[int]error
	hang      map[int]bool

	mu        sync.Mutex
	calls     [][]string
	manifests []string
}

func (f *fakeEngine) Probe(ctx context.Context, path string) (string, error) {
	d, ok := f.durations[filepath.Base(path)]
	if !ok {
		return "", errors.New("exit status 1: moov atom not found")
	}
	return d, nil
}

func (f *fakeEngine) Run(ctx context.Context, args []string, onLine func(string)) error {
	f.mu.Lock()
	idx := len(f.calls)
	f.calls = append(f.calls, args)
	for i := 0; i+1 < len(args); i++ {
		if args[i] == "-i" && strings.HasSuffix(args[i+1], config.ConcatManifestName) {
			data, err := os.ReadFile(args[i+1])
			if err == nil {
				f.manifests = append(f.manifests, string(data))
			}
		}
	}
	f.mu.Unlock()

	if f.hang[idx] {
		<-ctx.Done()
		return ctx.Err()
	}

	onLine("out_time_us=1000000")
	onLine("progress=continue")

	if err := f.runErrs[idx]; err != nil {
		onLine("Error initializing filter 'xfade'")
		return err
	}
	onLine("progress=end")
	return os.WriteFile(args[len(args)-1], []byte("video"), 0644)
}

func (f *fakeEngine) usedConcat(call int) bool {
	return strings.Contains(strings.Join(f.calls[call], " "), "-f concat")
}

type harness struct {
	dir       string
	scratch   string
	assembler *Assembler
	engine    *fakeEngine
	updates   []types.Progress
}

func newHarness(t *testing.T, eng *fakeEngine) *harness {
	t.Helper()
	cfg := config.Default()
	cfg.TempDir = t.TempDir()
	return &harness{
		dir:       t.TempDir(),
		scratch:   cfg.TempDir,
		assembler: NewAssembler(cfg, eng, zerolog.Nop()),
		engine:    eng,
	}
}

func (h *harness) request(names ...string) Request {
	segs := make([]string, len(names))
	narration := make([]string, len(names))
	for i, n := range names {
		segs[i] = filepath.Join(h.dir, n)
		narration[i] = "Narration for " + n
	}
	return Request{
		Segments:   segs,
		Narration:  narration,
		Settings:   config.DefaultSettings(),
		OutputPath: filepath.Join(h.dir, "out", "final.mp4"),
	}
}

func (h *harness) run(t *testing.T, req Request) (*Result, error) {
	t.Helper()
	return h.assembler.Assemble(context.Background(), req, func(p types.Progress) {
		h.updates = append(h.updates, p)
	})
}

func threeScenes() *fakeEngine {
	return &fakeEngine{durations: map[string]string{"a.mp4": "5.0", "b.mp4": "4.0", "c.mp4": "6.0"}}
}

func TestAssembleWithTransitions(t *testing.T) {
	h := newHarness(t, threeScenes())
	res, err := h.run(t, h.request("a.mp4", "b.mp4", "c.mp4"))
	require.NoError(t, err)

	assert.False(t, res.Degraded)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, 15.0, res.Duration)
	assert.Len(t, res.Cues, 3)
	assert.FileExists(t, res.OutputPath)

	require.Len(t, h.engine.calls, 1)
	assert.False(t, h.engine.usedConcat(0))
	assert.Contains(t, strings.Join(h.engine.calls[0], " "), "xfade")

	require.NotEmpty(t, h.updates)
	last := h.updates[len(h.updates)-1]
	assert.Equal(t, types.StageDone, last.Stage)
	assert.Equal(t, 100.0, last.Percent)
	for i := 1; i < len(h.updates); i++ {
		assert.GreaterOrEqual(t, h.updates[i].Percent, h.updates[i-1].Percent)
	}
}

func TestAssembleProbeFailureFallsBackToConcat(t *testing.T) {
	eng := threeScenes()
	delete(eng.durations, "b.mp4")
	h := newHarness(t, eng)

	res, err := h.run(t, h.request("a.mp4", "b.mp4", "c.mp4"))
	require.NoError(t, err)
	assert.True(t, res.Degraded)
	assert.Equal(t, -1.0, res.Duration)

	require.Len(t, eng.calls, 1)
	assert.True(t, eng.usedConcat(0))
	require.Len(t, eng.manifests, 1)
	want := "file '" + filepath.Join(h.dir, "a.mp4") + "'\n" +
		"file '" + filepath.Join(h.dir, "b.mp4") + "'\n" +
		"file '" + filepath.Join(h.dir, "c.mp4") + "'\n"
	assert.Equal(t, want, eng.manifests[0])

	// cues only cover the segments before the unknown one
	require.Len(t, res.Cues, 1)
	assert.Equal(t, uint32(0), res.Cues[0].SceneIndex)

	var sawDegraded bool
	for _, u := range h.updates {
		sawDegraded = sawDegraded || u.Degraded
	}
	assert.True(t, sawDegraded)
}

func TestAssembleExecutorFailureFallsBackOnce(t *testing.T) {
	eng := threeScenes()
	eng.runErrs = map[int]error{0: errors.New("exit status 1")}
	h := newHarness(t, eng)

	res, err := h.run(t, h.request("a.mp4", "b.mp4", "c.mp4"))
	require.NoError(t, err)
	assert.True(t, res.Degraded)
	assert.FileExists(t, res.OutputPath)

	require.Len(t, eng.calls, 2)
	assert.False(t, eng.usedConcat(0))
	assert.True(t, eng.usedConcat(1))

	var fallbackWarned bool
	for _, w := range res.Warnings {
		fallbackWarned = fallbackWarned || strings.Contains(w, "falling back")
	}
	assert.True(t, fallbackWarned)
}

func TestAssembleFallbackFailureIsFatal(t *testing.T) {
	eng := threeScenes()
	eng.runErrs = map[int]error{0: errors.New("exit status 1"), 1: errors.New("exit status 1")}
	h := newHarness(t, eng)

	_, err := h.run(t, h.request("a.mp4", "b.mp4", "c.mp4"))
	require.Error(t, err)

	var aerr *assembly.Error
	require.True(t, errors.As(err, &aerr))
	assert.Equal(t, assembly.ToolFailed, aerr.Kind)
	assert.Len(t, eng.calls, 2)
}

func TestAssembleTimeoutFallbackGetsFreshDeadline(t *testing.T) {
	eng := threeScenes()
	eng.hang = map[int]bool{0: true}
	h := newHarness(t, eng)
	h.assembler.cfg.AssemblyTimeout = 50 * time.Millisecond

	res, err := h.run(t, h.request("a.mp4", "b.mp4", "c.mp4"))
	require.NoError(t, err)
	assert.True(t, res.Degraded)
	assert.FileExists(t, res.OutputPath)

	require.Len(t, eng.calls, 2)
	assert.True(t, eng.usedConcat(1))
}

func TestAssembleNoTransitionIsNotDegraded(t *testing.T) {
	eng := threeScenes()
	h := newHarness(t, eng)
	req := h.request("a.mp4", "b.mp4", "c.mp4")
	req.Settings.Transition = config.TransitionNone

	res, err := h.run(t, req)
	require.NoError(t, err)
	assert.False(t, res.Degraded)
	require.Len(t, eng.calls, 1)
	assert.True(t, eng.usedConcat(0))
}

func TestAssembleRemovesScratch(t *testing.T) {
	h := newHarness(t, threeScenes())
	_, err := h.run(t, h.request("a.mp4", "b.mp4", "c.mp4"))
	require.NoError(t, err)

	entries, err := os.ReadDir(h.scratch)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestAssembleWritesSubtitleFile(t *testing.T) {
	h := newHarness(t, threeScenes())
	req := h.request("a.mp4", "b.mp4")
	req.SubtitleFile = filepath.Join(h.dir, "final.srt")

	_, err := h.run(t, req)
	require.NoError(t, err)

	data, err := os.ReadFile(req.SubtitleFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "00:00:00,000 --> 00:00:05,000")
	assert.Contains(t, string(data), "Narration for b.mp4")
}

func TestAssembleProfileWarnsOnMaxDuration(t *testing.T) {
	eng := &fakeEngine{durations: map[string]string{"a.mp4": "40", "b.mp4": "30"}}
	h := newHarness(t, eng)
	req := h.request("a.mp4", "b.mp4")
	req.Profile = string(types.ProcessingPlatformInstagramSquare)

	res, err := h.run(t, req)
	require.NoError(t, err)
	require.NotEmpty(t, res.Warnings)
	assert.Contains(t, res.Warnings[len(res.Warnings)-1], "exceeds")

	assert.Contains(t, strings.Join(eng.calls[0], " "), "w=1080")
}

func TestAssembleRejectsBadInput(t *testing.T) {
	h := newHarness(t, threeScenes())

	req := h.request("a.mp4")
	req.Profile = "myspace"
	_, err := h.run(t, req)
	assert.Error(t, err)

	req = h.request("a.mp4")
	req.Settings.Subtitle.FontSize = 100
	_, err = h.run(t, req)
	assert.Error(t, err)

	req = h.request()
	_, err = h.run(t, req)
	assert.Error(t, err)
	assert.Empty(t, h.engine.calls)
}

func TestPlanDryRun(t *testing.T) {
	h := newHarness(t, threeScenes())
	dr, err := h.assembler.Plan(context.Background(), h.request("a.mp4", "b.mp4", "c.mp4"))
	require.NoError(t, err)

	assert.Equal(t, []float64{5, 4}, dr.Plan.Offsets())
	assert.Len(t, dr.Cues, 3)
	assert.Contains(t, strings.Join(dr.Args, " "), "offset=9.000")
	assert.Empty(t, h.engine.calls)
}
