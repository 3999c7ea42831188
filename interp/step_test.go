package interp

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/timewinder-dev/linebasic/cas"
	"github.com/timewinder-dev/linebasic/device"
	"github.com/timewinder-dev/linebasic/parse"
	"github.com/timewinder-dev/linebasic/vm"
)

type result struct {
	out     string
	notices string
	err     error
	m       *Machine
}

func run(t *testing.T, src string, input string) result {
	t.Helper()
	prog, err := parse.Literal(src)
	require.NoError(t, err)
	var out, notices bytes.Buffer
	m := NewMachine(prog, Options{
		Out:      &out,
		Notices:  &notices,
		Input:    device.NewPlainReader(strings.NewReader(input), nil),
		FilesDir: t.TempDir(),
		Seed:     1,
	})
	err = m.Run()
	return result{out: out.String(), notices: notices.String(), err: err, m: m}
}

func TestScenarios(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"let print", "10 LET A=1\n20 PRINT A", "1\n"},
		{"for next", "10 FOR I=1 TO 3\n20 PRINT I\n30 NEXT I\n40 END", "1\n2\n3\n"},
		{"data read", "10 DATA 5,6\n20 READ X,Y\n30 PRINT X+Y", "11\n"},
		{"gosub", "10 GOSUB 100\n20 PRINT \"BACK\"\n30 END\n100 PRINT \"SUB\"\n110 RETURN", "SUB\nBACK\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := run(t, tt.src, "")
			require.NoError(t, r.err)
			require.Equal(t, tt.want, r.out)
		})
	}
}

func TestNextMismatchReportsNextLine(t *testing.T) {
	r := run(t, "10 FOR I=1 TO 3\n20 PRINT I\n30 NEXT J\n40 END", "")
	require.ErrorIs(t, r.err, ErrNextMismatch)
	var le *LineError
	require.True(t, errors.As(r.err, &le))
	require.Equal(t, 30, le.Line)
	require.Empty(t, r.out)
}

func TestLoopCounts(t *testing.T) {
	tests := []struct {
		start, end string
		runs       int
	}{
		{"1", "3", 3},
		{"5", "5", 1},
		{"4", "1", 0},
		{"-2", "2", 5},
	}
	for _, tt := range tests {
		t.Run(tt.start+"_"+tt.end, func(t *testing.T) {
			src := "10 C=0\n20 FOR I=" + tt.start + " TO " + tt.end + "\n30 C=C+1\n40 NEXT I\n50 PRINT C"
			r := run(t, src, "")
			require.NoError(t, r.err)
			require.Equal(t, vm.NumValue(float64(tt.runs)).String()+"\n", r.out)
			require.Empty(t, r.m.State.Loops)
		})
	}
}

func TestNestedLoops(t *testing.T) {
	src := `10 FOR I=1 TO 2
20 FOR J=1 TO 3
30 PRINT I*10+J;
40 PRINT " ";
50 NEXT J
60 NEXT I
70 PRINT`
	r := run(t, src, "")
	require.NoError(t, r.err)
	require.Equal(t, "11 12 13 21 22 23 \n", r.out)
}

func TestLoopFrameResetOnReentry(t *testing.T) {
	// The first pass jumps back to the outer FOR from inside the inner
	// loop; both stale frames must be discarded.
	src := `10 K=0
20 FOR I=1 TO 2
30 K=K+1
40 FOR J=1 TO 5
50 IF K=1 THEN 20
60 NEXT J
70 NEXT I
80 PRINT K; I; J`
	r := run(t, src, "")
	require.NoError(t, r.err)
	require.Equal(t, "336\n", r.out)
	require.Empty(t, r.m.State.Loops)
}

func TestNextMismatchAfterJumpOut(t *testing.T) {
	// The inner loop is left by GOTO, so NEXT I meets the J frame.
	src := `10 FOR I=1 TO 3
20 FOR J=1 TO 10
30 IF J=2 THEN 50
40 NEXT J
50 NEXT I
60 PRINT I`
	r := run(t, src, "")
	require.ErrorIs(t, r.err, ErrNextMismatch)
	var le *LineError
	require.True(t, errors.As(r.err, &le))
	require.Equal(t, 50, le.Line)
}

func TestNestedGosub(t *testing.T) {
	src := `10 GOSUB 100
20 PRINT "MAIN"
30 END
100 PRINT "A"
110 GOSUB 200
120 PRINT "A2"
130 RETURN
200 PRINT "B"
210 RETURN`
	r := run(t, src, "")
	require.NoError(t, r.err)
	require.Equal(t, "A\nB\nA2\nMAIN\n", r.out)
	require.Empty(t, r.m.State.Subs)
}

func TestDataCursorIsMonotonic(t *testing.T) {
	src := `10 DATA 1,2
20 READ A
30 DATA "X"
40 READ B, C$
50 PRINT A; B; C$
60 READ D`
	r := run(t, src, "")
	require.ErrorIs(t, r.err, ErrOutOfData)
	require.Equal(t, "12X\n", r.out)
	var le *LineError
	require.True(t, errors.As(r.err, &le))
	require.Equal(t, 60, le.Line)
}

func TestReadCoercion(t *testing.T) {
	r := run(t, "10 DATA 5\n20 READ A$\n30 PRINT A$", "")
	require.NoError(t, r.err)
	require.Equal(t, "5\n", r.out)

	r = run(t, "10 DATA \"5\", \"X\"\n20 READ A, B\n30 PRINT A; B", "")
	require.NoError(t, r.err)
	require.Equal(t, "50\n", r.out)
}

func TestStoreKeepsValueType(t *testing.T) {
	r := run(t, "10 LET A$=1+2\n20 PRINT A$", "")
	require.NoError(t, r.err)
	require.Equal(t, "3\n", r.out)

	r = run(t, "10 A=\"X\"\n20 B$=2>1\n30 PRINT A; B$", "")
	require.NoError(t, r.err)
	require.Equal(t, "X-1\n", r.out)
}

func TestArrays(t *testing.T) {
	src := `10 DIM A(5), M$(1,2)
20 FOR I=0 TO 5
30 A(I)=I*I
40 NEXT I
50 M$(1,2)="Z"
60 PRINT A(0); A(5); M$(1,2); M$(0,0); "."`
	r := run(t, src, "")
	require.NoError(t, r.err)
	require.Equal(t, "025Z.\n", r.out)

	r = run(t, "10 DIM A(5)\n20 A(6)=1", "")
	require.ErrorIs(t, r.err, ErrSubscript)

	r = run(t, "10 DIM A(5)\n20 PRINT A(-1)", "")
	require.ErrorIs(t, r.err, ErrSubscript)

	r = run(t, "10 B(1)=1", "")
	require.ErrorIs(t, r.err, ErrUndeclaredArray)

	for _, dim := range []string{"A(9223372036854775807)", "A(4611686018427387904,1)", "A(100000,100000)"} {
		r = run(t, "10 DIM "+dim+"\n20 PRINT 1", "")
		require.ErrorIs(t, r.err, ErrOutOfMemory, dim)
		var le *LineError
		require.True(t, errors.As(r.err, &le))
		require.Equal(t, 10, le.Line)
		require.Empty(t, r.out)
	}
}

func TestRedimReplaces(t *testing.T) {
	r := run(t, "10 DIM A(2)\n20 A(1)=7\n30 DIM A(3)\n40 PRINT A(1)", "")
	require.NoError(t, r.err)
	require.Equal(t, "0\n", r.out)
}

func TestExpressions(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{"1+2*3", "7"},
		{"(1+2)*3", "9"},
		{"7/2", "3.5"},
		{"-INT(-2.7)", "2"},
		{"INT(2.7)", "2"},
		{"ABS(-4)", "4"},
		{"CLK(0)", "0"},
		{"2>1", "-1"},
		{"2<1", "0"},
		{"1<2 AND 3<2", "0"},
		{"1<2 OR 3<2", "-1"},
		{`"ABC"="abc"`, "-1"},
		{`"ABC"<>"abc"`, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			r := run(t, "10 PRINT "+tt.expr, "")
			require.NoError(t, r.err)
			require.Equal(t, tt.want+"\n", r.out)
		})
	}
}

func TestRndRange(t *testing.T) {
	r := run(t, "10 FOR I=1 TO 50\n20 X=RND(CLK(0))\n30 IF X<=0 THEN 100\n40 IF X>=1 THEN 100\n50 NEXT I\n60 END\n100 PRINT \"BAD\"", "")
	require.NoError(t, r.err)
	require.Empty(t, r.out)
	require.Equal(t, 50, r.m.State.Draws)
}

func TestRuntimeErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		err  error
		line int
	}{
		{"undefined goto", "10 GOTO 99", ErrUndefinedLine, 10},
		{"undefined gosub", "10 GOSUB 99", ErrUndefinedLine, 10},
		{"undefined if", "10 IF 1=1 THEN 99", ErrUndefinedLine, 10},
		{"return", "10 PRINT 1\n20 RETURN", ErrReturnWithoutGosub, 20},
		{"unmatched for", "10 FOR I=1 TO 2\n20 PRINT I", ErrUnmatchedFor, 10},
		{"next without for", "10 NEXT I", ErrNextWithoutFor, 10},
		{"undefined variable", "10 PRINT Q", ErrUndefinedVariable, 10},
		{"division", "10 A=0\n20 PRINT 1/A", ErrDivisionByZero, 20},
		{"base", "10 BASE 1", ErrNotImplemented, 10},
		{"read handle", "10 FILE #1=\"X.TXT\"\n20 READ #1, A", ErrNotImplemented, 20},
		{"reopen", "10 FILE #1=\"X.TXT\"\n20 FILE #1=\"Y.TXT\"", device.ErrAlreadyOpen, 20},
		{"restore closed", "10 RESTORE #2", device.ErrNotOpen, 10},
		{"write closed", "10 A=1\n20 WRITE #2, A", device.ErrNotOpen, 20},
		{"string arithmetic", "10 A$=\"X\"\n20 PRINT A$+1", ErrTypeMismatch, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := run(t, tt.src, "")
			require.ErrorIs(t, r.err, tt.err)
			var le *LineError
			require.True(t, errors.As(r.err, &le))
			require.Equal(t, tt.line, le.Line)
		})
	}
}

func TestStopAndEnd(t *testing.T) {
	r := run(t, "10 PRINT 1\n20 STOP\n30 PRINT 2", "")
	require.NoError(t, r.err)
	require.Equal(t, "1\n", r.out)

	r = run(t, "10 PRINT 1\n20 END\n30 PRINT 2", "")
	require.NoError(t, r.err)
	require.Equal(t, "1\n", r.out)

	r = run(t, "10 PRINT 1\n20 PRINT 2", "")
	require.NoError(t, r.err)
	require.Equal(t, "1\n2\n", r.out)
}

func TestInput(t *testing.T) {
	src := "10 INPUT A, B$\n20 PRINT B$; A*2"
	r := run(t, src, "3\n1,2,3\n21, hello\n")
	require.NoError(t, r.err)
	require.Equal(t, "hello42\n", r.out)
	require.Equal(t, "Too few values\nToo many values\n", r.notices)

	r = run(t, "10 INPUT A\n20 PRINT A", "abc\n")
	require.NoError(t, r.err)
	require.Equal(t, "0\n", r.out)

	r = run(t, "10 INPUT A\n20 PRINT \"NEVER\"", "")
	require.NoError(t, r.err)
	require.Empty(t, r.out)
}

func TestWrite(t *testing.T) {
	src := `10 A=3
20 B$="HI"
30 WRITE A, B$
40 FILE #1="OUT.TXT"
50 WRITE #1, B$, A
60 RESTORE #1`
	r := run(t, src, "")
	require.NoError(t, r.err)
	require.Equal(t, "3,\"HI\"\n", r.out)
}

func TestPrintZones(t *testing.T) {
	r := run(t, "10 PRINT 1, \"A\",\n20 PRINT 2", "")
	require.NoError(t, r.err)
	require.Equal(t, "1             A             2\n", r.out)
}

func TestLoopDetector(t *testing.T) {
	prog, err := parse.Literal("10 A=1\n20 GOTO 10")
	require.NoError(t, err)
	m := NewMachine(prog, Options{Detector: NewLoopDetector(cas.NewLRUCache(16))})
	err = m.Run()
	require.ErrorIs(t, err, ErrInfiniteLoop)
	require.Equal(t, 2, m.Detector.Seen())
	snap, err := m.Detector.Repeated()
	require.NoError(t, err)
	require.Equal(t, 1, snap.PC)
	require.Equal(t, []ScalarRecord{{Name: "A", Value: ValueRecord{Num: 1}}}, snap.Scalars)

	m = NewMachine(prog, Options{Detector: NewLoopDetector(cas.NewMemoryCAS())})
	require.ErrorIs(t, m.Run(), ErrInfiniteLoop)

	// RND draws make every state distinct.
	prog, err = parse.Literal("10 A=RND(0)\n20 IF A<2 THEN 40\n30 GOTO 10\n40 END")
	require.NoError(t, err)
	m = NewMachine(prog, Options{Detector: NewLoopDetector(cas.NewLRUCache(16))})
	require.NoError(t, m.Run())
	snap, err = m.Detector.Repeated()
	require.NoError(t, err)
	require.Nil(t, snap)
}

func TestStepResults(t *testing.T) {
	prog, err := parse.Literal("10 A=1\n20 END")
	require.NoError(t, err)
	m := NewMachine(prog, Options{})

	res, err := m.Step()
	require.NoError(t, err)
	require.Equal(t, ContinueStep, res)
	require.Equal(t, 20, m.CurrentLine())

	res, err = m.Step()
	require.NoError(t, err)
	require.Equal(t, EndStep, res)
	require.Equal(t, 2, m.Steps)
}
