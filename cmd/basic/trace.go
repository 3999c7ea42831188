package main

import (
	"fmt"
	"os"

	"github.com/gookit/color"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/timewinder-dev/linebasic/interp"
	"github.com/timewinder-dev/linebasic/runner"
	"github.com/timewinder-dev/linebasic/vm"
)

var traceCmd = &cobra.Command{
	Use:   "trace PROGRAM|CONFIG",
	Short: "Run a program one statement at a time, printing the state after each",
	Args:  cobra.ExactArgs(1),
	Run:   traceCommand,
}

func init() {
	traceCmd.Flags().Int64Var(&seedFlag, "seed", 0, "Seed for RND (unset picks one from the clock)")
	traceCmd.Flags().StringVar(&inputFlag, "input", "", "Read INPUT lines from this file instead of stdin")
}

func traceCommand(cmd *cobra.Command, args []string) {
	c := loadConfig(cmd, args[0])
	exec, err := c.BuildExecutor(runner.IO{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Couldn't build executor for program")
	}
	ok := trace(exec.Machine, exec.Program)
	exec.Close()
	if !ok {
		os.Exit(1)
	}
}

// trace steps m until it stops, reporting whether it stopped cleanly.
func trace(m *interp.Machine, prog *vm.Program) bool {
	for {
		fmt.Fprintln(os.Stderr, color.Gray.Sprint("*******"))
		if l, err := prog.GetLine(m.State.PC); err == nil {
			fmt.Fprintf(os.Stderr, "Next: %s\n", color.Yellow.Sprint(l))
		} else {
			fmt.Fprintln(os.Stderr, "Next: end of program")
		}
		res, err := m.Step()
		if err != nil {
			fmt.Fprint(os.Stderr, runner.FormatError(err, prog))
			return false
		}
		fmt.Fprint(os.Stderr, m.State.PrettyPrint(prog))
		if res == interp.EndStep {
			fmt.Fprintln(os.Stderr, runner.FormatTermination())
			return true
		}
	}
}
