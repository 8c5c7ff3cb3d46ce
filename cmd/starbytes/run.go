package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gookit/color"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/starbytes-lang/starbytes/config"
	"github.com/starbytes-lang/starbytes/interp"
	"github.com/starbytes-lang/starbytes/vm"
)

var (
	configPath   string
	snapshotPath string
	debugFlag    bool
	noColorFlag  bool
)

var runCmd = &cobra.Command{
	Use:   "run PROGRAM",
	Short: "Execute a bytecode file",
	Args:  cobra.ExactArgs(1),
	Run:   runCommand,
}

func init() {
	runCmd.Flags().StringVar(&configPath, "config", "", "Config file (default: starbytes.toml next to the program)")
	runCmd.Flags().StringVar(&snapshotPath, "snapshot", "", "Write a msgpack snapshot of the interpreter after the run")
	runCmd.Flags().BoolVar(&debugFlag, "debug", false, "Print the disassembly before and the interpreter state after the run")
	runCmd.Flags().BoolVar(&noColorFlag, "no-color", false, "Disable colored print output")
}

func runCommand(cmd *cobra.Command, args []string) {
	filename := args[0]
	if configPath == "" {
		configPath = filepath.Join(filepath.Dir(filename), config.DefaultFile)
	}
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Couldn't load config")
	}
	if !cmd.Flags().Changed("log-level") && cfg.Runtime.LogLevel != "" {
		setLogLevel(cfg.Runtime.LogLevel)
	}

	prog, err := vm.LoadFile(filename)
	if err != nil {
		log.Fatal().Err(err).Msg("Couldn't load program")
	}
	if debugFlag {
		if err := prog.DebugPrint(os.Stderr); err != nil {
			log.Warn().Err(err).Msg("Disassembly stopped early")
		}
	}

	opts := cfg.Options(os.Stdout)
	if noColorFlag {
		opts.Color = false
	}
	in := interp.New(opts)
	if err := in.LoadModules(cfg.Modules.Paths...); err != nil {
		log.Fatal().Err(err).Msg("Couldn't load native module")
	}

	log.Info().Str("program", filename).Str("interp", in.ID).Msg("Running program")
	runErr := in.Exec(prog)

	snap := in.Snapshot()
	if snapshotPath != "" {
		if err := writeSnapshot(snap, snapshotPath); err != nil {
			log.Error().Err(err).Msg("Couldn't write snapshot")
		}
	}
	if debugFlag {
		fmt.Fprint(os.Stderr, snap.PrettyPrint())
	}
	in.Close()

	if runErr != nil {
		log.Fatal().Err(runErr).Msg("Program stopped")
	}
	if live := in.Heap().Live(); live != 0 {
		log.Warn().Int("handles", live).Msg("Handles still alive after the run")
	}
	fmt.Fprintln(os.Stderr, color.Green.Sprint("✓ Program finished"))
}

func writeSnapshot(snap *interp.Snapshot, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := snap.Serialize(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
