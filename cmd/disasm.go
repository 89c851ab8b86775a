package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"chirp8/emu/disasm"

	"github.com/retroenv/retrogolib/log"
	"github.com/spf13/cobra"
)

var disasmCmd = &cobra.Command{
	Use:   "disasm <rom> <output>",
	Short: "disassemble a ROM into a text listing",
	Long: "disasm decodes the ROM from its load address, following " +
		"unconditional jumps, and writes one 'address: mnemonic' line per " +
		"reached instruction. Unrecognized words are kept as data markers.",
	Args: cobra.ExactArgs(2),
	RunE: disassembleROM,
}

func init() {
	rootCmd.AddCommand(disasmCmd)
}

func disassembleROM(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	romPath, outPath := args[0], args[1]
	rom, err := os.ReadFile(romPath)
	if err != nil {
		return fmt.Errorf("reading ROM: %w", err)
	}

	listing := disasm.Disassemble(rom)

	addresses := make([]uint16, 0, len(listing))
	for addr := range listing {
		addresses = append(addresses, addr)
	}
	sort.Slice(addresses, func(i, j int) bool { return addresses[i] < addresses[j] })

	var sb strings.Builder
	for _, addr := range addresses {
		fmt.Fprintf(&sb, "%03X: %s\n", addr, listing[addr])
	}
	if err := os.WriteFile(outPath, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("writing listing: %w", err)
	}

	logger.Info("wrote disassembly",
		log.String("path", outPath),
		log.Int("instructions", len(listing)))
	return nil
}
