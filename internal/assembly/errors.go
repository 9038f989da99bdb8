package assembly

import (
	"fmt"
	"strings"
)

// Kind classifies a failed assembly.
type Kind int

const (
	// ToolFailed means the engine exited unsuccessfully.
	ToolFailed Kind = iota + 1
	// EmptyOutput means the engine succeeded but wrote zero bytes.
	EmptyOutput
	// MissingOutput means the engine succeeded but wrote nothing.
	MissingOutput
)

func (k Kind) String() string {
	switch k {
	case ToolFailed:
		return "tool failed"
	case EmptyOutput:
		return "empty output"
	case MissingOutput:
		return "missing output"
	default:
		return "unknown"
	}
}

// maxReportedLines bounds how many diagnostic lines Error() prints.
const maxReportedLines = 5

// Error describes a failed invocation. Lines holds every non-progress
// diagnostic line the engine produced.
type Error struct {
	Kind   Kind
	Output string
	Lines  []string
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "assemble %s: %s", e.Output, e.Kind)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	if len(e.Lines) > 0 {
		lines := e.Lines
		if len(lines) > maxReportedLines {
			lines = lines[len(lines)-maxReportedLines:]
		}
		b.WriteString("\n")
		b.WriteString(strings.Join(lines, "\n"))
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}
