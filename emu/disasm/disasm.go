// Package disasm builds a static disassembly listing of a ROM image.
//
// The scan is a best-effort approximation: it walks the image linearly from
// the load address and additionally follows unconditional jump targets, so
// data bytes skipped over by a jump do not get misread as instructions. It
// cannot distinguish code from data in self-modifying or jump-table-driven
// programs and exists purely to feed a debugger view.
package disasm

import (
	"fmt"

	"chirp8/emu/opcode"
)

// loadAddress is where the ROM image is mapped in machine memory.
const loadAddress = 0x200

// Listing maps absolute memory addresses to rendered mnemonics.
type Listing map[uint16]string

// Disassemble decodes the ROM image, following unconditional jumps. Words
// that decode to no known instruction are kept as raw-data markers. A
// visited-target guard makes revisited jumps fall back to sequential
// advance, guaranteeing termination on looping programs.
func Disassemble(rom []byte) Listing {
	listing := Listing{}
	visited := map[uint16]bool{}

	pc := uint16(loadAddress)
	for {
		if pc < loadAddress || int(pc-loadAddress)+1 >= len(rom) {
			break
		}
		offset := pc - loadAddress
		word := uint16(rom[offset])<<8 | uint16(rom[offset+1])

		op, err := opcode.Decode(word)
		if err != nil {
			listing[pc] = fmt.Sprintf("DATA[0x%04X]", word)
			pc += 2
			continue
		}
		listing[pc] = op.String()

		// Jumps may target unaligned addresses, so the scan continues at
		// the destination instead of the next sequential word.
		if op.Kind == opcode.Jump && !visited[op.NNN] {
			visited[op.NNN] = true
			pc = op.NNN
			continue
		}
		pc += 2
	}
	return listing
}
