package runner

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gookit/color"
	"github.com/stretchr/testify/require"

	"github.com/timewinder-dev/linebasic/cas"
	"github.com/timewinder-dev/linebasic/interp"
	"github.com/timewinder-dev/linebasic/vm"
)

func init() {
	color.Disable()
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestLoadTOMLConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "guess.toml", `
[run]
seed = 42
input = "guess.in"
detect_loops = true
`)
	c, err := LoadConfigFromFile(path)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "guess.bas"), c.Program.File)
	require.Equal(t, filepath.Join(dir, "guess.in"), c.Run.Input)
	require.NotNil(t, c.Run.Seed)
	require.Equal(t, int64(42), *c.Run.Seed)
	require.True(t, c.Run.DetectLoops)
	require.Equal(t, 14, c.Run.ZoneWidth)
	require.Equal(t, DefaultLoopMemory, c.Run.LoopMemory)
}

func TestLoadYAMLConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "run.yaml", `
program:
  file: progs/main.bas
run:
  zone_width: 8
  files_dir: data
  stats: true
`)
	c, err := LoadConfigFromFile(path)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "progs", "main.bas"), c.Program.File)
	require.Equal(t, filepath.Join(dir, "data"), c.Run.FilesDir)
	require.Equal(t, 8, c.Run.ZoneWidth)
	require.True(t, c.Run.Stats)

	bad := writeFile(t, dir, "bad.yml", "run:\n  colour: red\n")
	_, err = LoadConfigFromFile(bad)
	require.Error(t, err)
}

func TestLoadProgramPath(t *testing.T) {
	c, err := Load("hello.bas")
	require.NoError(t, err)
	require.Equal(t, "hello.bas", c.Program.File)
	require.Equal(t, 14, c.Run.ZoneWidth)

	_, err = LoadConfigFromFile(writeFile(t, t.TempDir(), "x.json", "{}"))
	require.Error(t, err)
}

func TestExecutorRun(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "sum.bas", "10 INPUT A, B\n20 PRINT A+B\n30 END\n")
	writeFile(t, dir, "sum.in", "2, 3\n")
	cfgPath := writeFile(t, dir, "sum.toml", "[run]\nseed = 7\ninput = \"sum.in\"\nsnapshot = \"sum.snap\"\n")

	c, err := LoadConfigFromFile(cfgPath)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "sum.snap"), c.Run.Snapshot)

	var out, notices bytes.Buffer
	e, err := c.BuildExecutor(IO{Stdout: &out, Stderr: &notices})
	require.NoError(t, err)
	e.Reporter = &ColorReporter{Writer: &notices, Stats: true}

	res, err := e.Run()
	require.NoError(t, err)
	require.NoError(t, res.Err)
	require.Equal(t, 3, res.Steps)
	require.Equal(t, int64(7), res.Seed)
	require.Equal(t, "? 5\n", out.String())
	require.True(t, strings.HasPrefix(notices.String(), "Program terminated.\n"))
	require.Contains(t, notices.String(), "Statements executed: 3")

	snap, err := LoadSnapshot(c.Run.Snapshot)
	require.NoError(t, err)
	st, err := snap.Restore()
	require.NoError(t, err)
	require.Equal(t, vm.NumValue(3), st.Symbols.Scalars["B"])
	require.Equal(t, 1, st.Draws)
}

func TestExecutorReportsError(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "bad.bas", "10 FOR I=1 TO 2\n20 PRINT I\n30 NEXT J\n")
	c, err := Load(path)
	require.NoError(t, err)
	c.Run.DetectLoops = true

	var out, notices bytes.Buffer
	e, err := c.BuildExecutor(IO{Stdout: &out, Stderr: &notices})
	require.NoError(t, err)
	e.Reporter = &ColorReporter{Writer: &notices}

	res, err := e.Run()
	require.NoError(t, err)
	require.ErrorIs(t, res.Err, interp.ErrNextMismatch)
	require.NotNil(t, res.LoopStats)
	require.Equal(t, "Error at line 30: NEXT variable does not match FOR: NEXT J, expected NEXT I\n  30 NEXT J\n", notices.String())
}

func TestExecutorDetectsLoop(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "spin.bas", "10 X=1\n20 GOTO 10\n")
	c, err := Load(path)
	require.NoError(t, err)
	c.Run.DetectLoops = true
	c.Run.LoopMemory = 8

	e, err := c.BuildExecutor(IO{})
	require.NoError(t, err)
	res, err := e.Run()
	require.NoError(t, err)
	require.ErrorIs(t, res.Err, interp.ErrInfiniteLoop)
	require.NotNil(t, res.Repeated)
	require.Equal(t, 1, res.Repeated.PC)
	require.Equal(t, 8, res.LoopStats.MaxSize)
}

func TestExecutorUnboundedLoopMemory(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "spin.bas", "10 X=1\n20 GOTO 10\n")
	c, err := Load(path)
	require.NoError(t, err)
	c.Run.DetectLoops = true
	c.Run.LoopMemory = 0

	e, err := c.BuildExecutor(IO{})
	require.NoError(t, err)
	res, err := e.Run()
	require.NoError(t, err)
	require.ErrorIs(t, res.Err, interp.ErrInfiniteLoop)
	require.Equal(t, cas.CacheStats{Size: 2}, *res.LoopStats)
	require.NotNil(t, res.Repeated)

	stats := FormatStatistics(res)
	require.Contains(t, stats, "States remembered: 2\n")
	require.Contains(t, stats, "Repeated state at: line 20\n")
}

func TestSeedZeroIsDeterministic(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "dice.bas", "10 PRINT RND(1)\n")
	c, err := Load(path)
	require.NoError(t, err)
	zero := int64(0)
	c.Run.Seed = &zero

	var outputs []string
	for i := 0; i < 2; i++ {
		var out bytes.Buffer
		e, err := c.BuildExecutor(IO{Stdout: &out})
		require.NoError(t, err)
		require.Equal(t, int64(0), e.Seed)
		res, err := e.Run()
		require.NoError(t, err)
		require.NoError(t, res.Err)
		outputs = append(outputs, out.String())
	}
	require.Equal(t, outputs[0], outputs[1])
}

func TestExecutorCloseReleasesFiles(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "log.bas", "10 FILE #1=\"log.txt\"\n20 STOP\n")
	c, err := Load(path)
	require.NoError(t, err)
	c.Run.FilesDir = dir

	e, err := c.BuildExecutor(IO{})
	require.NoError(t, err)
	res, err := e.Machine.Step()
	require.NoError(t, err)
	require.Equal(t, interp.ContinueStep, res)
	require.True(t, e.Machine.Files.IsOpen(1))

	e.Close()
	require.False(t, e.Machine.Files.IsOpen(1))
	e.Close()
}

func TestBuildExecutorParseError(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "broken.bas", "10 PRINT \"oops\n")
	c, err := Load(path)
	require.NoError(t, err)
	_, err = c.BuildExecutor(IO{})
	require.Error(t, err)
}

func TestCPUTimesSub(t *testing.T) {
	a := CPUTimes{User: 30, System: 20, Valid: true}
	b := CPUTimes{User: 10, System: 5, Valid: true}
	require.Equal(t, CPUTimes{User: 20, System: 15, Valid: true}, a.Sub(b))
	require.False(t, a.Sub(CPUTimes{}).Valid)
}
