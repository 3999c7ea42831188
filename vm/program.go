package vm

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/google/btree"
)

// Program is the loaded, immutable form of a BASIC source. Lines keeps
// physical order for fall-through; the btree maps line numbers to
// physical indexes for GOTO, GOSUB and IF targets.
type Program struct {
	Lines []Line
	index *btree.BTree
}

type Line struct {
	Number int
	Stmt   Statement
}

func (l Line) String() string {
	return fmt.Sprintf("%d %s", l.Number, l.Stmt)
}

type lineEntry struct {
	number int
	index  int
}

func (e lineEntry) Less(than btree.Item) bool {
	return e.number < than.(lineEntry).number
}

var ErrEndOfCode = errors.New("End of program")

// NewProgram builds the line-number index. Line numbers must be
// unique and strictly increasing.
func NewProgram(lines []Line) (*Program, error) {
	p := &Program{
		Lines: lines,
		index: btree.New(4),
	}
	prev := math.MinInt
	for i, l := range lines {
		if l.Stmt == nil {
			return nil, fmt.Errorf("Line %d has no statement", l.Number)
		}
		if l.Number <= prev {
			return nil, fmt.Errorf("Line %d is out of order (follows %d)", l.Number, prev)
		}
		prev = l.Number
		p.index.ReplaceOrInsert(lineEntry{number: l.Number, index: i})
	}
	return p, nil
}

func (p *Program) Len() int {
	return len(p.Lines)
}

// GetLine returns the line at a physical index.
func (p *Program) GetLine(idx int) (Line, error) {
	if idx < 0 || idx >= len(p.Lines) {
		return Line{}, ErrEndOfCode
	}
	return p.Lines[idx], nil
}

// Resolve maps a line number to its physical index.
func (p *Program) Resolve(number int) (int, bool) {
	item := p.index.Get(lineEntry{number: number})
	if item == nil {
		return 0, false
	}
	return item.(lineEntry).index, true
}

// List writes the lines numbered from..to inclusive. A zero to means
// through the end of the program.
func (p *Program) List(w io.Writer, from, to int) error {
	var err error
	visit := func(item btree.Item) bool {
		l := p.Lines[item.(lineEntry).index]
		_, err = fmt.Fprintln(w, l)
		return err == nil
	}
	if to <= 0 {
		p.index.AscendGreaterOrEqual(lineEntry{number: from}, visit)
	} else {
		p.index.AscendRange(lineEntry{number: from}, lineEntry{number: to + 1}, visit)
	}
	return err
}

func (p *Program) DebugPrint(w io.Writer) {
	for i, l := range p.Lines {
		fmt.Fprintf(w, "  %03d: %s\n", i, l)
	}
}
