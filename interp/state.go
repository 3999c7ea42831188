package interp

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shamaton/msgpack/v2"

	"github.com/timewinder-dev/linebasic/vm"
)

// State is everything the engine mutates while running a program.
type State struct {
	PC      int
	Symbols *Symbols
	Loops   LoopStack
	Subs    SubStack
	Data    DataCursor
	// Draws counts entropy consumed by RND and INPUT.
	Draws int
}

func NewState() *State {
	return &State{
		Symbols: NewSymbols(),
	}
}

// Snapshot is the serialized form of State. Maps are flattened into
// name-sorted slices so equal states encode to equal bytes.
type Snapshot struct {
	PC      int
	Scalars []ScalarRecord
	Arrays  []ArrayRecord
	Loops   []LoopFrame
	Subs    []SubFrame
	Data    DataCursor
	Draws   int
}

type ScalarRecord struct {
	Name  string
	Value ValueRecord
}

type ArrayRecord struct {
	Name   string
	Bounds []int
	Values []ValueRecord
}

type ValueRecord struct {
	IsStr bool
	Num   float64
	Str   string
}

func recordOf(v vm.Value) ValueRecord {
	switch x := v.(type) {
	case vm.StrValue:
		return ValueRecord{IsStr: true, Str: string(x)}
	case vm.NumValue:
		return ValueRecord{Num: float64(x)}
	case vm.BoolValue:
		return ValueRecord{Num: boolNum(bool(x))}
	}
	return ValueRecord{}
}

func (r ValueRecord) Value() vm.Value {
	if r.IsStr {
		return vm.StrValue(r.Str)
	}
	return vm.NumValue(r.Num)
}

func (s *State) Snapshot() *Snapshot {
	out := &Snapshot{
		PC:    s.PC,
		Data:  s.Data,
		Draws: s.Draws,
		Subs:  append([]SubFrame(nil), s.Subs...),
	}
	for _, f := range s.Loops {
		out.Loops = append(out.Loops, *f)
	}
	for _, k := range s.Symbols.ScalarNames() {
		out.Scalars = append(out.Scalars, ScalarRecord{Name: k, Value: recordOf(s.Symbols.Scalars[k])})
	}
	for _, k := range s.Symbols.ArrayNames() {
		a := s.Symbols.Arrays[k]
		rec := ArrayRecord{Name: k, Bounds: a.Bounds()}
		for _, v := range a.Values {
			rec.Values = append(rec.Values, recordOf(v))
		}
		out.Arrays = append(out.Arrays, rec)
	}
	return out
}

// Restore rebuilds a State from a snapshot.
func (snap *Snapshot) Restore() (*State, error) {
	s := NewState()
	s.PC = snap.PC
	s.Data = snap.Data
	s.Draws = snap.Draws
	s.Subs = append(SubStack(nil), snap.Subs...)
	for i := range snap.Loops {
		f := snap.Loops[i]
		s.Loops.Push(&f)
	}
	for _, r := range snap.Scalars {
		s.Symbols.Set(r.Name, r.Value.Value())
	}
	for _, r := range snap.Arrays {
		a, err := NewArray(r.Name, r.Bounds)
		if err != nil {
			return nil, err
		}
		if len(r.Values) != len(a.Values) {
			return nil, fmt.Errorf("Array %s has %d values, want %d", r.Name, len(r.Values), len(a.Values))
		}
		for i, v := range r.Values {
			a.Values[i] = v.Value()
		}
		s.Symbols.Arrays[r.Name] = a
	}
	return s, nil
}

func (snap *Snapshot) Serialize(w io.Writer) error {
	return msgpack.MarshalWrite(w, snap)
}

func (snap *Snapshot) Deserialize(r io.Reader) error {
	return msgpack.UnmarshalRead(r, snap)
}

func (s *State) Serialize(w io.Writer) error {
	return s.Snapshot().Serialize(w)
}

func (s *State) Deserialize(r io.Reader) error {
	snap := &Snapshot{}
	if err := snap.Deserialize(r); err != nil {
		return err
	}
	restored, err := snap.Restore()
	if err != nil {
		return err
	}
	*s = *restored
	return nil
}

// FormatValue formats a value for state listings; strings are quoted.
func FormatValue(v vm.Value) string {
	if s, ok := v.(vm.StrValue); ok {
		return strconv.Quote(string(s))
	}
	return v.String()
}

func lineLabel(prog *vm.Program, idx int) string {
	if prog != nil {
		if l, err := prog.GetLine(idx); err == nil {
			return fmt.Sprintf("line %d", l.Number)
		}
		return "end of program"
	}
	return fmt.Sprintf("index %d", idx)
}

// PrettyPrint returns a readable listing of the state. prog may be nil,
// in which case physical indexes are shown instead of line numbers.
func (s *State) PrettyPrint(prog *vm.Program) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Position: %s\n", lineLabel(prog, s.PC))

	sb.WriteString("Variables:\n")
	names := s.Symbols.ScalarNames()
	if len(names) == 0 {
		sb.WriteString("  (none)\n")
	}
	for _, k := range names {
		fmt.Fprintf(&sb, "  %s = %s\n", k, FormatValue(s.Symbols.Scalars[k]))
	}

	arrays := s.Symbols.ArrayNames()
	if len(arrays) > 0 {
		sb.WriteString("Arrays:\n")
	}
	for _, k := range arrays {
		a := s.Symbols.Arrays[k]
		bounds := make([]string, len(a.Bounds()))
		for i, b := range a.Bounds() {
			bounds[i] = strconv.Itoa(b)
		}
		vals := make([]string, 0, len(a.Values))
		for i, v := range a.Values {
			if i >= 8 {
				vals = append(vals, fmt.Sprintf("... (%d more)", len(a.Values)-i))
				break
			}
			vals = append(vals, FormatValue(v))
		}
		fmt.Fprintf(&sb, "  %s(%s) = [%s]\n", k, strings.Join(bounds, ","), strings.Join(vals, ", "))
	}

	if len(s.Loops) > 0 {
		sb.WriteString("Loops:\n")
	}
	for i := len(s.Loops) - 1; i >= 0; i-- {
		f := s.Loops[i]
		fmt.Fprintf(&sb, "  FOR %s = %s TO %s at %s, NEXT at %s\n",
			f.Var, vm.NumValue(f.Start), vm.NumValue(f.End),
			lineLabel(prog, f.ForIndex), lineLabel(prog, f.NextIndex))
	}

	if len(s.Subs) > 0 {
		sb.WriteString("Subroutines:\n")
	}
	for i := len(s.Subs) - 1; i >= 0; i-- {
		fmt.Fprintf(&sb, "  GOSUB at line %d\n", s.Subs[i].Line)
	}

	fmt.Fprintf(&sb, "Data cursor: %s, item %d\n", lineLabel(prog, s.Data.Line), s.Data.Item)
	return sb.String()
}
