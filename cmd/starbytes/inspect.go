package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/starbytes-lang/starbytes/interp"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect SNAPSHOT",
	Short: "Print a snapshot written by run --snapshot",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		f, err := os.Open(args[0])
		if err != nil {
			log.Fatal().Err(err).Msg("Couldn't open snapshot")
		}
		defer f.Close()
		var snap interp.Snapshot
		if err := snap.Deserialize(f); err != nil {
			log.Fatal().Err(err).Msg("Couldn't decode snapshot")
		}
		fmt.Print(snap.PrettyPrint())
	},
}
