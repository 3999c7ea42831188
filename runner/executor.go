package runner

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/timewinder-dev/linebasic/cas"
	"github.com/timewinder-dev/linebasic/device"
	"github.com/timewinder-dev/linebasic/interp"
	"github.com/timewinder-dev/linebasic/parse"
	"github.com/timewinder-dev/linebasic/vm"
)

// IO is the process-facing side of a run.
type IO struct {
	Stdin  *os.File
	Stdout io.Writer
	Stderr io.Writer
}

// An Executor is the context and entrypoint for running one program
type Executor struct {
	Config   *Config
	Program  *vm.Program
	Machine  *interp.Machine
	RunID    uuid.UUID
	Seed     int64
	Reporter Reporter

	input     device.LineReader
	inputFile *os.File
	loops     cas.MeteredCAS
	detector  *interp.LoopDetector
}

type Result struct {
	RunID   uuid.UUID
	Program *vm.Program
	Seed    int64
	// Err is the program's fatal error, nil on a clean stop.
	Err       error
	Steps     int
	Elapsed   time.Duration
	CPU       CPUTimes
	LoopStats *cas.CacheStats
	// Repeated is the state that recurred when the loop detector fired.
	Repeated *interp.Snapshot
}

func (c *Config) BuildExecutor(stdio IO) (*Executor, error) {
	p, err := parse.File(c.Program.File)
	if err != nil {
		return nil, err
	}
	return c.BuildExecutorForProgram(p, stdio)
}

func (c *Config) BuildExecutorForProgram(p *vm.Program, stdio IO) (*Executor, error) {
	e := &Executor{
		Config:   c,
		Program:  p,
		RunID:    uuid.New(),
		Seed:     time.Now().UnixNano(),
		Reporter: &SilentReporter{},
	}
	if c.Run.Seed != nil {
		e.Seed = *c.Run.Seed
	}

	switch {
	case c.Run.Input != "":
		f, err := os.Open(c.Run.Input)
		if err != nil {
			return nil, err
		}
		e.inputFile = f
		e.input = device.NewPlainReader(f, stdio.Stdout)
	case stdio.Stdin != nil:
		e.input = device.NewLineReader(stdio.Stdin, stdio.Stdout)
	}

	opts := interp.Options{
		Out:       stdio.Stdout,
		Notices:   stdio.Stderr,
		Input:     e.input,
		ZoneWidth: c.Run.ZoneWidth,
		FilesDir:  c.Run.FilesDir,
		Seed:      uint64(e.Seed),
	}
	if c.Run.DetectLoops {
		if c.Run.LoopMemory > 0 {
			e.loops = cas.NewLRUCache(c.Run.LoopMemory)
		} else {
			e.loops = cas.NewMemoryCAS()
		}
		e.detector = interp.NewLoopDetector(e.loops)
		opts.Detector = e.detector
	}
	e.Machine = interp.NewMachine(p, opts)
	return e, nil
}

// Run executes the program to completion. A fault in the BASIC program
// is reported in Result.Err; the returned error covers failures of the
// run itself, such as writing the snapshot.
func (e *Executor) Run() (*Result, error) {
	defer e.Close()
	logger := log.With().Str("run_id", e.RunID.String()).Logger()
	logger.Debug().Str("program", e.Config.Program.File).Int64("seed", e.Seed).Msg("Run starting")

	cpuStart := ReadCPUTimes()
	start := time.Now()
	err := e.Machine.Run()
	res := &Result{
		RunID:   e.RunID,
		Program: e.Program,
		Seed:    e.Seed,
		Err:     err,
		Steps:   e.Machine.Steps,
		Elapsed: time.Since(start),
		CPU:     ReadCPUTimes().Sub(cpuStart),
	}
	if e.loops != nil {
		stats := e.loops.Stats()
		res.LoopStats = &stats
	}
	if e.detector != nil && errors.Is(err, interp.ErrInfiniteLoop) {
		snap, rerr := e.detector.Repeated()
		if rerr != nil {
			logger.Warn().Err(rerr).Msg("Couldn't recover repeated state")
		}
		res.Repeated = snap
	}
	logger.Debug().Int("steps", res.Steps).Dur("elapsed", res.Elapsed).Err(err).Msg("Run finished")

	if e.Config.Run.Snapshot != "" {
		if err := e.writeSnapshot(e.Config.Run.Snapshot); err != nil {
			return res, fmt.Errorf("writing snapshot: %w", err)
		}
	}
	e.Reporter.Finished(res)
	return res, nil
}

func (e *Executor) writeSnapshot(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := e.Machine.State.Serialize(f); err != nil {
		f.Close()
		return err
	}
	log.Debug().Str("path", path).Msg("Wrote snapshot")
	return f.Close()
}

// Close releases the input reader, restoring the terminal when stdin
// is one, and closes any files the program left open. It is safe to
// call more than once.
func (e *Executor) Close() {
	if e.input != nil {
		e.input.Close()
		e.input = nil
	}
	if e.inputFile != nil {
		e.inputFile.Close()
		e.inputFile = nil
	}
	if err := e.Machine.Files.CloseAll(); err != nil {
		log.Warn().Err(err).Msg("Closing files")
	}
}

// LoadSnapshot reads a state written by a run with a snapshot path.
func LoadSnapshot(path string) (*interp.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	snap := &interp.Snapshot{}
	if err := snap.Deserialize(f); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return snap, nil
}
