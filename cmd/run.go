package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"chirp8/emu/cpu"
	"chirp8/emu/disasm"
	"chirp8/emu/screen"

	"github.com/retroenv/retrogolib/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var clockFlag int

var runCmd = &cobra.Command{
	Use:   "run <rom>",
	Short: "load a ROM and start the emulator",
	Args:  cobra.ExactArgs(1),
	RunE:  runROM,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().IntVarP(&clockFlag, "clock", "c", 500, "instruction clock frequency in Hz")
	cobra.CheckErr(viper.BindPFlag("clock", runCmd.Flags().Lookup("clock")))
}

func runROM(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	romPath := args[0]
	rom, err := os.ReadFile(romPath)
	if err != nil {
		return fmt.Errorf("reading ROM: %w", err)
	}

	machine, err := cpu.NewWithROM(rom)
	if err != nil {
		return fmt.Errorf("loading ROM: %w", err)
	}

	hz := viper.GetInt("clock")
	if hz > 0 {
		machine.SetClockFrequency(hz)
	}

	listing := disasm.Disassemble(rom)

	logger.Info("running ROM",
		log.String("path", romPath),
		log.Int("size", len(rom)),
		log.Int("clock_hz", hz))

	return screen.Run(machine, listing, filepath.Base(romPath))
}
