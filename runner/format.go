package runner

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gookit/color"

	"github.com/timewinder-dev/linebasic/interp"
	"github.com/timewinder-dev/linebasic/vm"
)

func FormatTermination() string {
	return color.Gray.Sprint("Program terminated.")
}

// FormatError renders a fatal program error with the offending source
// line when the error carries one.
func FormatError(err error, prog *vm.Program) string {
	var b strings.Builder
	var le *interp.LineError
	if !errors.As(err, &le) {
		b.WriteString(color.Red.Sprintf("Error: %s\n", err))
		return b.String()
	}
	b.WriteString(color.Red.Sprint("Error at line "))
	b.WriteString(color.Bold.Sprintf("%d", le.Line))
	b.WriteString(color.Red.Sprintf(": %s\n", le.Err))
	if prog != nil {
		if idx, ok := prog.Resolve(le.Line); ok {
			b.WriteString("  ")
			b.WriteString(color.Yellow.Sprint(prog.Lines[idx].String()))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func FormatStatistics(res *Result) string {
	var b strings.Builder
	b.WriteString(color.Cyan.Sprint("=== Run statistics ==="))
	b.WriteString("\n")
	b.WriteString(color.Bold.Sprint("Run ID: "))
	b.WriteString(fmt.Sprintf("%s\n", res.RunID))
	b.WriteString(color.Bold.Sprint("Statements executed: "))
	b.WriteString(fmt.Sprintf("%d\n", res.Steps))
	b.WriteString(color.Bold.Sprint("Elapsed: "))
	b.WriteString(fmt.Sprintf("%s\n", res.Elapsed))
	if res.CPU.Valid {
		b.WriteString(color.Bold.Sprint("CPU user/system: "))
		b.WriteString(fmt.Sprintf("%s / %s\n", res.CPU.User, res.CPU.System))
	}
	b.WriteString(color.Bold.Sprint("RND seed: "))
	b.WriteString(fmt.Sprintf("%d\n", res.Seed))
	if res.LoopStats != nil {
		b.WriteString(color.Bold.Sprint("States remembered: "))
		if res.LoopStats.MaxSize == 0 {
			b.WriteString(fmt.Sprintf("%d\n", res.LoopStats.Size))
		} else {
			b.WriteString(fmt.Sprintf("%d of %d (%d evicted)\n", res.LoopStats.Size, res.LoopStats.MaxSize, res.LoopStats.Evictions))
		}
	}
	if res.Repeated != nil {
		b.WriteString(color.Bold.Sprint("Repeated state at: "))
		if l, err := res.Program.GetLine(res.Repeated.PC); err == nil {
			b.WriteString(fmt.Sprintf("line %d\n", l.Number))
		} else {
			b.WriteString("end of program\n")
		}
	}
	return b.String()
}
