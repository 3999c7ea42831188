package device

import (
	"fmt"
	"io"
	"strings"

	"github.com/timewinder-dev/linebasic/vm"
)

const DefaultZoneWidth = 14

// Printer renders PRINT and WRITE output onto a text stream.
type Printer struct {
	Out       io.Writer
	ZoneWidth int
}

func NewPrinter(out io.Writer, zoneWidth int) *Printer {
	if zoneWidth <= 0 {
		zoneWidth = DefaultZoneWidth
	}
	return &Printer{
		Out:       out,
		ZoneWidth: zoneWidth,
	}
}

// Print writes values in zone or immediate mode. In zone mode each
// value is left-justified in a ZoneWidth column, except a final value
// that is followed by the newline.
func (p *Printer) Print(vals []vm.Value, mode vm.PrintMode, newline bool) error {
	var sb strings.Builder
	for i, v := range vals {
		s := v.String()
		last := i == len(vals)-1
		if mode == vm.Zone && !(last && newline) {
			fmt.Fprintf(&sb, "%-*s", p.ZoneWidth, s)
		} else {
			sb.WriteString(s)
		}
	}
	if newline {
		sb.WriteByte('\n')
	}
	_, err := io.WriteString(p.Out, sb.String())
	return err
}

// Write prints one WRITE record on the console.
func (p *Printer) Write(vals []vm.Value) error {
	_, err := io.WriteString(p.Out, FormatRecord(vals)+"\n")
	return err
}

// FormatRecord joins values with commas, quoting strings the way DATA
// literals are written.
func FormatRecord(vals []vm.Value) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		if s, ok := v.(vm.StrValue); ok {
			parts[i] = `"` + string(s) + `"`
			continue
		}
		parts[i] = v.String()
	}
	return strings.Join(parts, ",")
}
