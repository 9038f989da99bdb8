package assembly

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZacxDev/scene-assembler/internal/config"
	"github.com/ZacxDev/scene-assembler/internal/subtitle"
	"github.com/ZacxDev/scene-assembler/internal/timeline"
	"github.com/pkg/errors"
)

// Concatenator joins segments in order without transitions. It is the
// degraded path used when durations are unknown or the transition graph
// failed, and the regular path when no transition was requested.
type Concatenator struct {
	exec       *Executor
	scratchDir string
}

// NewConcatenator creates a concatenator that writes its manifest into
// scratchDir, which must be exclusive to the run.
func NewConcatenator(exec *Executor, scratchDir string) *Concatenator {
	return &Concatenator{exec: exec, scratchDir: scratchDir}
}

// Concat joins tl's segments into out with cues burned in.
func (c *Concatenator) Concat(ctx context.Context, cues []subtitle.Cue, tl *timeline.Timeline, out string) (*Output, error) {
	c.exec.setState(Building)

	manifest := filepath.Join(c.scratchDir, config.ConcatManifestName)
	if err := WriteManifest(manifest, tl.Sources()); err != nil {
		c.exec.setState(Failed)
		return nil, err
	}

	c.exec.logger.Info().
		Int("segments", tl.Len()).
		Int("cues", len(cues)).
		Str("manifest", manifest).
		Msg("assembling by concatenation")

	args := BuildConcatArgs(manifest, cues, tl.Settings, out)
	return c.exec.invoke(ctx, args, tl.Total(), out)
}

// WriteManifest writes a concat demuxer list of paths in order. Paths are
// made absolute so the list does not depend on its own location.
func WriteManifest(path string, sources []string) error {
	if len(sources) == 0 {
		return errors.New("no segments to concatenate")
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create concat manifest")
	}

	w := bufio.NewWriter(f)
	for _, src := range sources {
		abs, err := filepath.Abs(src)
		if err != nil {
			f.Close()
			return errors.Wrapf(err, "resolve %s", src)
		}
		fmt.Fprintf(w, "file '%s'\n", quoteManifestPath(abs))
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return errors.Wrap(err, "write concat manifest")
	}
	return errors.Wrap(f.Close(), "close concat manifest")
}

// quoteManifestPath escapes single quotes for the concat demuxer's quoting.
func quoteManifestPath(p string) string {
	return strings.ReplaceAll(p, "'", `'\''`)
}
