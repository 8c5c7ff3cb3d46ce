package main

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/starbytes-lang/starbytes/vm"
)

var disasmCmd = &cobra.Command{
	Use:   "disasm PROGRAM",
	Short: "Print a readable listing of a bytecode file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		prog, err := vm.LoadFile(args[0])
		if err != nil {
			log.Fatal().Err(err).Msg("Couldn't load program")
		}
		if err := prog.DebugPrint(os.Stdout); err != nil {
			log.Fatal().Err(err).Msg("Couldn't disassemble program")
		}
	},
}
