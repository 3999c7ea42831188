package interp

import (
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/timewinder-dev/linebasic/device"
	"github.com/timewinder-dev/linebasic/vm"
)

// Machine executes one program. It owns the state and the I/O devices
// for the duration of a run.
type Machine struct {
	Program  *vm.Program
	State    *State
	Printer  *device.Printer
	Input    device.LineReader
	Notices  io.Writer
	Files    *device.FileTable
	Rand     *rand.Rand
	Detector *LoopDetector
	Steps    int
}

type Options struct {
	Out       io.Writer
	Notices   io.Writer
	Input     device.LineReader
	ZoneWidth int
	FilesDir  string
	Seed      uint64
	Detector  *LoopDetector
}

func NewMachine(prog *vm.Program, opts Options) *Machine {
	out := opts.Out
	if out == nil {
		out = io.Discard
	}
	notices := opts.Notices
	if notices == nil {
		notices = io.Discard
	}
	return &Machine{
		Program:  prog,
		State:    NewState(),
		Printer:  device.NewPrinter(out, opts.ZoneWidth),
		Input:    opts.Input,
		Notices:  notices,
		Files:    device.NewFileTable(opts.FilesDir),
		Rand:     rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15)),
		Detector: opts.Detector,
	}
}

// Step executes the line at the current physical index. It returns
// EndStep once the program has stopped, and ErrorStep with a
// *LineError on a fatal fault.
func (m *Machine) Step() (StepResult, error) {
	pc := m.State.PC
	line, err := m.Program.GetLine(pc)
	if err != nil {
		if errors.Is(err, vm.ErrEndOfCode) {
			log.Trace().Int("pc", pc).Msg("Step: end of program")
			return EndStep, nil
		}
		return ErrorStep, err
	}

	log.Trace().
		Int("pc", pc).
		Int("line", line.Number).
		Str("stmt", line.Stmt.String()).
		Msg("Step: executing statement")

	m.Steps++
	changed, err := m.exec(line.Stmt)
	if err != nil {
		if errors.Is(err, ErrStop) {
			log.Trace().Int("line", line.Number).Msg("Step: stop")
			return EndStep, nil
		}
		log.Trace().Int("line", line.Number).Err(err).Msg("Step: error")
		return ErrorStep, atLine(line.Number, err)
	}
	if !changed {
		m.State.PC++
	}

	if m.Detector != nil {
		if err := m.Detector.Observe(m.State); err != nil {
			return ErrorStep, atLine(line.Number, err)
		}
	}
	return ContinueStep, nil
}

// exec dispatches one statement. The bool result reports whether the
// handler already moved the program counter.
func (m *Machine) exec(stmt vm.Statement) (bool, error) {
	switch s := stmt.(type) {
	case *vm.Comment, *vm.Data:
		return false, nil
	case *vm.Base:
		if s.Number != 0 {
			return false, fmt.Errorf("%w: BASE %d", ErrNotImplemented, s.Number)
		}
		return false, nil
	case *vm.Dim:
		return m.execDim(s)
	case *vm.Let:
		v, err := m.Eval(s.Value)
		if err != nil {
			return false, err
		}
		return false, m.store(s.Target, v)
	case *vm.Print:
		return m.execPrint(s)
	case *vm.Input:
		return m.execInput(s)
	case *vm.File:
		return m.execFile(s)
	case *vm.Restore:
		h, err := m.handle(s.Handle)
		if err != nil {
			return false, err
		}
		return false, m.Files.Rewind(h)
	case *vm.For:
		return m.execFor(s)
	case *vm.Next:
		return m.execNext(s)
	case *vm.If:
		v, err := m.Eval(s.Cond)
		if err != nil {
			return false, err
		}
		if !v.AsBool() {
			return false, nil
		}
		return true, m.jump(s.Target)
	case *vm.Goto:
		return true, m.jump(s.Target)
	case *vm.Gosub:
		return m.execGosub(s)
	case *vm.Return:
		f, ok := m.State.Subs.Pop()
		if !ok {
			return false, ErrReturnWithoutGosub
		}
		log.Trace().Int("gosub_line", f.Line).Int("depth", len(m.State.Subs)).Msg("  RETURN")
		m.State.PC = f.Index + 1
		return true, nil
	case *vm.Stop, *vm.End:
		return false, ErrStop
	case *vm.Read:
		return m.execRead(s)
	case *vm.Write:
		return m.execWrite(s)
	}
	return false, fmt.Errorf("%w: statement %T", ErrNotImplemented, stmt)
}

func (m *Machine) jump(target int) error {
	idx, ok := m.Program.Resolve(target)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUndefinedLine, target)
	}
	m.State.PC = idx
	return nil
}

func (m *Machine) execDim(s *vm.Dim) (bool, error) {
	for _, r := range s.Refs {
		if err := m.State.Symbols.Dim(r.Name, r.Bounds); err != nil {
			return false, err
		}
		log.Trace().Str("array", r.Name).Ints("bounds", r.Bounds).Msg("  DIM")
	}
	return false, nil
}

func (m *Machine) execPrint(s *vm.Print) (bool, error) {
	vals := make([]vm.Value, len(s.Args))
	for i, a := range s.Args {
		v, err := m.Eval(a)
		if err != nil {
			return false, err
		}
		vals[i] = v
	}
	return false, m.Printer.Print(vals, s.Mode, s.Newline)
}

func (m *Machine) execFor(s *vm.For) (bool, error) {
	st := m.State
	if top := st.Loops.Top(); top == nil || top.ForIndex != st.PC {
		// Re-entering a FOR that still has a frame deeper in the stack
		// discards it and every frame above it.
		if pos := st.Loops.Find(st.PC); pos >= 0 {
			st.Loops = st.Loops[:pos]
		}
		start, err := m.evalNumber(s.Start)
		if err != nil {
			return false, err
		}
		end, err := m.evalNumber(s.End)
		if err != nil {
			return false, err
		}
		next, err := m.findNext(st.PC, s.Var.Name)
		if err != nil {
			return false, err
		}
		st.Loops.Push(&LoopFrame{
			Var:       s.Var.Name,
			Start:     start,
			End:       end,
			ForIndex:  st.PC,
			NextIndex: next,
		})
		st.Symbols.Set(s.Var.Name, vm.NumValue(start))
		log.Trace().Str("var", s.Var.Name).Float64("start", start).Float64("end", end).Int("next", next).Msg("  FOR: push frame")
	}

	frame := st.Loops.Top()
	cur, err := st.Symbols.Get(frame.Var)
	if err != nil {
		return false, err
	}
	n, err := toNumber(cur)
	if err != nil {
		return false, err
	}
	if n > frame.End {
		st.Loops.Pop()
		st.PC = frame.NextIndex + 1
		log.Trace().Str("var", frame.Var).Int("depth", len(st.Loops)).Msg("  FOR: loop done")
		return true, nil
	}
	return false, nil
}

// findNext scans forward from the FOR at index for its NEXT, skipping
// nested FOR/NEXT pairs.
func (m *Machine) findNext(index int, name string) (int, error) {
	depth := 0
	for i := index + 1; i < m.Program.Len(); i++ {
		l := m.Program.Lines[i]
		switch s := l.Stmt.(type) {
		case *vm.For:
			depth++
		case *vm.Next:
			if depth > 0 {
				depth--
				continue
			}
			if s.Var.Name != name {
				return 0, &LineError{
					Line: l.Number,
					Err:  fmt.Errorf("%w: NEXT %s, expected NEXT %s", ErrNextMismatch, s.Var.Name, name),
				}
			}
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: FOR %s", ErrUnmatchedFor, name)
}

func (m *Machine) execNext(s *vm.Next) (bool, error) {
	frame := m.State.Loops.Top()
	if frame == nil {
		return false, fmt.Errorf("%w: NEXT %s", ErrNextWithoutFor, s.Var.Name)
	}
	if frame.Var != s.Var.Name {
		return false, fmt.Errorf("%w: NEXT %s, expected NEXT %s", ErrNextMismatch, s.Var.Name, frame.Var)
	}
	cur, err := m.State.Symbols.Get(frame.Var)
	if err != nil {
		return false, err
	}
	n, err := toNumber(cur)
	if err != nil {
		return false, err
	}
	m.State.Symbols.Set(frame.Var, vm.NumValue(n+1))
	m.State.PC = frame.ForIndex
	return true, nil
}

func (m *Machine) execGosub(s *vm.Gosub) (bool, error) {
	pc := m.State.PC
	line := m.Program.Lines[pc].Number
	if err := m.jump(s.Target); err != nil {
		return false, err
	}
	m.State.Subs.Push(SubFrame{Index: pc, Line: line})
	log.Trace().Int("target", s.Target).Int("depth", len(m.State.Subs)).Msg("  GOSUB")
	return true, nil
}

// nextData advances the data cursor to the next unread DATA item.
func (m *Machine) nextData() (vm.Value, error) {
	c := &m.State.Data
	for c.Line < m.Program.Len() {
		if d, ok := m.Program.Lines[c.Line].Stmt.(*vm.Data); ok && c.Item < len(d.Values) {
			v := d.Values[c.Item]
			c.Item++
			log.Trace().Int("data_line", c.Line).Int("item", c.Item).Msg("  READ: data")
			return v, nil
		}
		c.Line++
		c.Item = 0
	}
	return nil, ErrOutOfData
}

func (m *Machine) execRead(s *vm.Read) (bool, error) {
	if s.Handle != nil {
		return false, fmt.Errorf("%w: READ from a file handle", ErrNotImplemented)
	}
	for _, t := range s.Targets {
		v, err := m.nextData()
		if err != nil {
			return false, err
		}
		if t.IsString() {
			v = vm.StrValue(v.String())
		} else if str, ok := v.(vm.StrValue); ok {
			v = parseNumber(string(str))
		}
		if err := m.store(t, v); err != nil {
			return false, err
		}
	}
	return false, nil
}

// parseNumber converts text to a number, yielding 0 when it does not
// parse.
func parseNumber(text string) vm.NumValue {
	n, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return 0
	}
	return vm.NumValue(n)
}

func (m *Machine) execWrite(s *vm.Write) (bool, error) {
	vals := make([]vm.Value, len(s.Targets))
	for i, t := range s.Targets {
		v, err := m.load(t)
		if err != nil {
			return false, err
		}
		vals[i] = v
	}
	if s.Handle == nil {
		return false, m.Printer.Write(vals)
	}
	h, err := m.handle(s.Handle)
	if err != nil {
		return false, err
	}
	return false, m.Files.WriteLine(h, device.FormatRecord(vals))
}

func (m *Machine) execFile(s *vm.File) (bool, error) {
	for _, spec := range s.Specs {
		if err := m.Files.Open(spec.Handle, spec.Name); err != nil {
			return false, err
		}
	}
	return false, nil
}

func (m *Machine) handle(e vm.Expr) (int, error) {
	n, err := m.evalNumber(e)
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// InputPrompt is written before each INPUT line.
const InputPrompt = "? "

func (m *Machine) execInput(s *vm.Input) (bool, error) {
	if m.Input == nil {
		return false, ErrStop
	}
	for {
		line, err := m.Input.ReadLine(InputPrompt)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return false, ErrStop
			}
			return false, err
		}
		fields := strings.Split(line, ",")
		if len(fields) < len(s.Targets) {
			fmt.Fprintln(m.Notices, "Too few values")
			continue
		}
		if len(fields) > len(s.Targets) {
			fmt.Fprintln(m.Notices, "Too many values")
			continue
		}
		for i, t := range s.Targets {
			field := strings.TrimSpace(fields[i])
			var v vm.Value = vm.StrValue(field)
			if !t.IsString() {
				v = parseNumber(field)
			}
			if err := m.store(t, v); err != nil {
				return false, err
			}
		}
		m.State.Draws++
		return false, nil
	}
}
