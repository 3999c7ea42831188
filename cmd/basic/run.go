package main

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/timewinder-dev/linebasic/runner"
)

var (
	seedFlag        int64
	statsFlag       bool
	snapshotFlag    string
	detectLoopsFlag bool
	loopMemoryFlag  int
	zoneWidthFlag   int
	inputFlag       string
	filesDirFlag    string
)

var runCmd = &cobra.Command{
	Use:   "run PROGRAM|CONFIG",
	Short: "Run a program",
	Args:  cobra.ExactArgs(1),
	Run:   runCommand,
}

func init() {
	runCmd.Flags().Int64Var(&seedFlag, "seed", 0, "Seed for RND (unset picks one from the clock)")
	runCmd.Flags().BoolVar(&statsFlag, "stats", false, "Print run statistics when the program ends")
	runCmd.Flags().StringVar(&snapshotFlag, "snapshot", "", "Write the final engine state to this file")
	runCmd.Flags().BoolVar(&detectLoopsFlag, "detect-loops", false, "Stop when the program revisits an identical state")
	runCmd.Flags().IntVar(&loopMemoryFlag, "loop-memory", runner.DefaultLoopMemory, "Number of recent states remembered by --detect-loops (0 remembers all)")
	runCmd.Flags().IntVar(&zoneWidthFlag, "zone-width", 0, "Width of PRINT zones")
	runCmd.Flags().StringVar(&inputFlag, "input", "", "Read INPUT lines from this file instead of stdin")
	runCmd.Flags().StringVar(&filesDirFlag, "files-dir", "", "Directory FILE statements open names in")
}

// loadConfig reads the argument and applies any flags the user set.
func loadConfig(cmd *cobra.Command, path string) *runner.Config {
	c, err := runner.Load(path)
	if err != nil {
		log.Fatal().Err(err).Msg("Couldn't load config")
	}
	flags := cmd.Flags()
	if flags.Changed("seed") {
		c.Run.Seed = &seedFlag
	}
	if flags.Changed("stats") {
		c.Run.Stats = statsFlag
	}
	if flags.Changed("snapshot") {
		c.Run.Snapshot = snapshotFlag
	}
	if flags.Changed("detect-loops") {
		c.Run.DetectLoops = detectLoopsFlag
	}
	if flags.Changed("loop-memory") {
		c.Run.LoopMemory = loopMemoryFlag
	}
	if flags.Changed("zone-width") {
		c.Run.ZoneWidth = zoneWidthFlag
	}
	if flags.Changed("input") {
		c.Run.Input = inputFlag
	}
	if flags.Changed("files-dir") {
		c.Run.FilesDir = filesDirFlag
	}
	return c
}

func runCommand(cmd *cobra.Command, args []string) {
	c := loadConfig(cmd, args[0])
	exec, err := c.BuildExecutor(runner.IO{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Couldn't build executor for program")
	}
	exec.Reporter = &runner.ColorReporter{Writer: os.Stderr, Stats: c.Run.Stats}

	result, err := exec.Run()
	if err != nil {
		log.Fatal().Err(err).Msg("Error during run")
	}
	if result.Err != nil {
		os.Exit(1)
	}
}
