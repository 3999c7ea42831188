package main

import (
	"fmt"

	"github.com/goforj/godump"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/timewinder-dev/linebasic/parse"
	"github.com/timewinder-dev/linebasic/runner"
	"github.com/timewinder-dev/linebasic/vm"
)

var (
	inspectProgram string
	inspectRaw     bool
)

var inspectCmd = &cobra.Command{
	Use:   "inspect SNAPSHOT",
	Short: "Show an engine state written by run --snapshot",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		snap, err := runner.LoadSnapshot(args[0])
		if err != nil {
			log.Fatal().Err(err).Msg("Couldn't load snapshot")
		}
		if inspectRaw {
			godump.Dump(snap)
			return
		}
		var prog *vm.Program
		if inspectProgram != "" {
			prog, err = parse.File(inspectProgram)
			if err != nil {
				log.Fatal().Err(err).Msg("Couldn't parse program")
			}
		}
		st, err := snap.Restore()
		if err != nil {
			log.Fatal().Err(err).Msg("Couldn't restore snapshot")
		}
		fmt.Print(st.PrettyPrint(prog))
	},
}

func init() {
	inspectCmd.Flags().StringVar(&inspectProgram, "program", "", "Program the snapshot came from, to show line numbers")
	inspectCmd.Flags().BoolVar(&inspectRaw, "raw", false, "Dump the snapshot structure as stored")
}
