package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

const version = "0.3.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of basic",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("basic version %s\n", version)
	},
}
