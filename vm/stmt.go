package vm

import (
	"strings"
)

// Statement is the closed set of BASIC statements.
type Statement interface {
	isStatement()
	String() string
}

type Comment struct {
	Text string
}

type Base struct {
	Number int
}

// DimRef declares an array with inclusive upper bounds.
type DimRef struct {
	Name   string
	Bounds []int
}

type Dim struct {
	Refs []DimRef
}

type Let struct {
	Target *Ref
	Value  Expr
}

type PrintMode int

const (
	Zone PrintMode = iota
	Immediate
)

type Print struct {
	Args    []Expr
	Mode    PrintMode
	Newline bool
}

type Data struct {
	Values []Value
}

type Input struct {
	Targets []*Ref
}

type FileSpec struct {
	Handle int
	Name   string
}

type File struct {
	Specs []FileSpec
}

type Restore struct {
	Handle Expr
}

type For struct {
	Var   *Ref
	Start Expr
	End   Expr
}

type Next struct {
	Var *Ref
}

type If struct {
	Cond   Expr
	Target int
}

type Goto struct {
	Target int
}

type Gosub struct {
	Target int
}

type Return struct{}

type Stop struct{}

type End struct{}

// Read takes values from the DATA pool, or from a file when Handle is
// set.
type Read struct {
	Handle  Expr
	Targets []*Ref
}

type Write struct {
	Handle  Expr
	Targets []*Ref
}

func (*Comment) isStatement() {}
func (*Base) isStatement()    {}
func (*Dim) isStatement()     {}
func (*Let) isStatement()     {}
func (*Print) isStatement()   {}
func (*Data) isStatement()    {}
func (*Input) isStatement()   {}
func (*File) isStatement()    {}
func (*Restore) isStatement() {}
func (*For) isStatement()     {}
func (*Next) isStatement()    {}
func (*If) isStatement()      {}
func (*Goto) isStatement()    {}
func (*Gosub) isStatement()   {}
func (*Return) isStatement()  {}
func (*Stop) isStatement()    {}
func (*End) isStatement()     {}
func (*Read) isStatement()    {}
func (*Write) isStatement()   {}

func (s *Comment) String() string {
	if s.Text == "" {
		return "REM"
	}
	return "REM " + s.Text
}

func (s *Base) String() string {
	return "BASE " + formatInt(s.Number)
}

func (s *Dim) String() string {
	parts := make([]string, len(s.Refs))
	for i, r := range s.Refs {
		bounds := make([]string, len(r.Bounds))
		for j, b := range r.Bounds {
			bounds[j] = formatInt(b)
		}
		parts[i] = r.Name + "(" + strings.Join(bounds, ",") + ")"
	}
	return "DIM " + strings.Join(parts, ",")
}

func (s *Let) String() string {
	return "LET " + s.Target.String() + " = " + s.Value.String()
}

func (s *Print) String() string {
	if len(s.Args) == 0 {
		return "PRINT"
	}
	sep := ","
	if s.Mode == Immediate {
		sep = ";"
	}
	parts := make([]string, len(s.Args))
	for i, a := range s.Args {
		parts[i] = a.String()
	}
	out := "PRINT " + strings.Join(parts, sep+" ")
	if !s.Newline {
		out += sep
	}
	return out
}

func (s *Data) String() string {
	parts := make([]string, len(s.Values))
	for i, v := range s.Values {
		if str, ok := v.(StrValue); ok {
			parts[i] = `"` + string(str) + `"`
		} else {
			parts[i] = v.String()
		}
	}
	return "DATA " + strings.Join(parts, ",")
}

func (s *Input) String() string {
	return "INPUT " + refList(s.Targets)
}

func (s *File) String() string {
	parts := make([]string, len(s.Specs))
	for i, f := range s.Specs {
		parts[i] = "#" + formatInt(f.Handle) + `="` + f.Name + `"`
	}
	return "FILE " + strings.Join(parts, ",")
}

func (s *Restore) String() string {
	return "RESTORE #" + s.Handle.String()
}

func (s *For) String() string {
	return "FOR " + s.Var.String() + " = " + s.Start.String() + " TO " + s.End.String()
}

func (s *Next) String() string {
	return "NEXT " + s.Var.String()
}

func (s *If) String() string {
	return "IF " + s.Cond.String() + " THEN " + formatInt(s.Target)
}

func (s *Goto) String() string {
	return "GOTO " + formatInt(s.Target)
}

func (s *Gosub) String() string {
	return "GOSUB " + formatInt(s.Target)
}

func (*Return) String() string {
	return "RETURN"
}

func (*Stop) String() string {
	return "STOP"
}

func (*End) String() string {
	return "END"
}

func (s *Read) String() string {
	return "READ " + handlePrefix(s.Handle) + refList(s.Targets)
}

func (s *Write) String() string {
	return "WRITE " + handlePrefix(s.Handle) + refList(s.Targets)
}

func refList(refs []*Ref) string {
	parts := make([]string, len(refs))
	for i, r := range refs {
		parts[i] = r.String()
	}
	return strings.Join(parts, ",")
}

func handlePrefix(h Expr) string {
	if h == nil {
		return ""
	}
	return "#" + h.String() + ","
}
