package main

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/timewinder-dev/linebasic/parse"
	"github.com/timewinder-dev/linebasic/runner"
)

var (
	listFrom  int
	listTo    int
	listDebug bool
)

var listCmd = &cobra.Command{
	Use:   "list PROGRAM|CONFIG",
	Short: "Print a program in canonical form",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		c, err := runner.Load(args[0])
		if err != nil {
			log.Fatal().Err(err).Msg("Couldn't load config")
		}
		prog, err := parse.File(c.Program.File)
		if err != nil {
			log.Fatal().Err(err).Msg("Couldn't parse program")
		}
		if listDebug {
			prog.DebugPrint(os.Stdout)
			return
		}
		if err := prog.List(os.Stdout, listFrom, listTo); err != nil {
			log.Fatal().Err(err).Msg("Couldn't list program")
		}
	},
}

func init() {
	listCmd.Flags().IntVar(&listFrom, "from", 0, "First line number to list")
	listCmd.Flags().IntVar(&listTo, "to", 0, "Last line number to list (0 lists to the end)")
	listCmd.Flags().BoolVar(&listDebug, "debug", false, "Show physical indexes alongside lines")
}
