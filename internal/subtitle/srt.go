package subtitle

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/pkg/errors"
)

// WriteSRT writes cues as a SubRip document.
func WriteSRT(w io.Writer, cues []Cue) error {
	bw := bufio.NewWriter(w)
	for i, c := range cues {
		if i > 0 {
			bw.WriteByte('\n')
		}
		fmt.Fprintf(bw, "%d\n%s --> %s\n%s\n", i+1, formatSRTTime(c.Start), formatSRTTime(c.End), c.Text)
	}
	return errors.WithStack(bw.Flush())
}

// WriteSRTFile writes cues to path.
func WriteSRTFile(path string, cues []Cue) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create subtitle file")
	}
	if err := WriteSRT(f, cues); err != nil {
		f.Close()
		return err
	}
	return errors.Wrap(f.Close(), "close subtitle file")
}

func formatSRTTime(sec float64) string {
	if sec < 0 {
		sec = 0
	}
	ms := int64(math.Round(sec * 1000))
	h := ms / 3600000
	ms %= 3600000
	m := ms / 60000
	ms %= 60000
	s := ms / 1000
	ms %= 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}
