package runner

import (
	"fmt"
	"io"
)

// Reporter receives the outcome of a run.
type Reporter interface {
	Finished(res *Result)
}

// SilentReporter discards run outcomes
type SilentReporter struct{}

func (r *SilentReporter) Finished(res *Result) {}

// ColorReporter writes the termination notice or the error report,
// followed by statistics when Stats is set, to a writer (typically
// stderr).
type ColorReporter struct {
	Writer io.Writer
	Stats  bool
}

func (r *ColorReporter) Finished(res *Result) {
	if res.Err == nil {
		fmt.Fprintln(r.Writer, FormatTermination())
	} else {
		fmt.Fprint(r.Writer, FormatError(res.Err, res.Program))
	}
	if r.Stats {
		fmt.Fprint(r.Writer, FormatStatistics(res))
	}
}
