package vm

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleLines() []Line {
	return []Line{
		{Number: 10, Stmt: &Let{Target: &Ref{Name: "A"}, Value: &NumberLit{Value: 1}}},
		{Number: 20, Stmt: &Print{Args: []Expr{&Ref{Name: "A"}}, Newline: true}},
		{Number: 100, Stmt: &Gosub{Target: 10}},
		{Number: 250, Stmt: &End{}},
	}
}

func TestResolve(t *testing.T) {
	p, err := NewProgram(sampleLines())
	require.NoError(t, err)

	idx, ok := p.Resolve(100)
	require.True(t, ok)
	require.Equal(t, 2, idx)

	_, ok = p.Resolve(30)
	require.False(t, ok)
}

func TestGetLinePastEnd(t *testing.T) {
	p, err := NewProgram(sampleLines())
	require.NoError(t, err)

	l, err := p.GetLine(3)
	require.NoError(t, err)
	require.Equal(t, 250, l.Number)

	_, err = p.GetLine(4)
	require.ErrorIs(t, err, ErrEndOfCode)
}

func TestNewProgramRejectsDisorder(t *testing.T) {
	lines := sampleLines()
	lines[2].Number = 20
	_, err := NewProgram(lines)
	require.Error(t, err)

	lines = sampleLines()
	lines[1].Number = 5
	_, err = NewProgram(lines)
	require.Error(t, err)
}

func TestList(t *testing.T) {
	p, err := NewProgram(sampleLines())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, p.List(&buf, 20, 100))
	require.Equal(t, "20 PRINT A\n100 GOSUB 10\n", buf.String())

	buf.Reset()
	require.NoError(t, p.List(&buf, 0, 0))
	require.Equal(t, "10 LET A = 1\n20 PRINT A\n100 GOSUB 10\n250 END\n", buf.String())
}

func TestStatementString(t *testing.T) {
	tests := []struct {
		stmt Statement
		want string
	}{
		{&Comment{}, "REM"},
		{&Comment{Text: "HELLO"}, "REM HELLO"},
		{&Dim{Refs: []DimRef{{Name: "A", Bounds: []int{5}}, {Name: "B$", Bounds: []int{2, 3}}}}, "DIM A(5),B$(2,3)"},
		{&Print{Args: []Expr{&StringLit{Value: "X"}, &Ref{Name: "Y"}}, Mode: Immediate}, `PRINT "X"; Y;`},
		{&Data{Values: []Value{NumValue(5), StrValue("HI"), NumValue(2.5)}}, `DATA 5,"HI",2.5`},
		{&Read{Handle: &NumberLit{Value: 1}, Targets: []*Ref{{Name: "X"}}}, "READ #1,X"},
		{&If{Cond: &Binary{Op: STREQ, Left: &Ref{Name: "A$"}, Right: &StringLit{Value: "Y"}}, Target: 40}, `IF A$ = "Y" THEN 40`},
		{&Let{Target: &Ref{Name: "X"}, Value: &Paren{X: &Negate{X: &Call{Fn: INT, Arg: &Ref{Name: "Y"}}}}}, "LET X = (-INT(Y))"},
		{&File{Specs: []FileSpec{{Handle: 1, Name: "DATA.TXT"}}}, `FILE #1="DATA.TXT"`},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, tt.stmt.String())
	}
}

func TestNumValueString(t *testing.T) {
	require.Equal(t, "11", NumValue(11).String())
	require.Equal(t, "-3", NumValue(-3).String())
	require.Equal(t, "0.25", NumValue(0.25).String())
	require.Equal(t, "1e+20", NumValue(1e20).String())
}
