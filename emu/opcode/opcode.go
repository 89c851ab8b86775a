// Package opcode decodes 16-bit CHIP-8 instruction words into a structured
// form shared by the execution engine and the static disassembler, so that
// both always agree on operand extraction.
package opcode

import "fmt"

// Kind classifies a decoded instruction.
type Kind uint8

const (
	ClearScreen Kind = iota // 00E0
	Return                  // 00EE
	CallMachine             // 0NNN, legacy machine code call
	Jump                    // 1NNN
	Call                    // 2NNN
	SkipEqConst             // 3XNN
	SkipNeConst             // 4XNN
	SkipEqReg               // 5XY0
	LoadConst               // 6XNN
	AddConst                // 7XNN, no carry flag
	Move                    // 8XY0
	Or                      // 8XY1
	And                     // 8XY2
	Xor                     // 8XY3
	Add                     // 8XY4, VF = carry
	Sub                     // 8XY5, VF = not borrow
	ShiftRight              // 8XY6, VF = bit shifted out
	SubReverse              // 8XY7, VF = not borrow
	ShiftLeft               // 8XYE, VF = bit shifted out
	SkipNeReg               // 9XY0
	LoadIndex               // ANNN
	JumpIndexed             // BNNN, PC = V0 + NNN
	Random                  // CXNN
	Draw                    // DXYN, VF = collision
	SkipKeyPressed          // EX9E
	SkipKeyNotPressed       // EXA1
	LoadDelay               // FX07
	WaitKey                 // FX0A
	SetDelay                // FX15
	SetSound                // FX18
	AddIndex                // FX1E
	FontSprite              // FX29
	StoreBCD                // FX33
	DumpRegisters           // FX55
	LoadRegisters           // FX65
)

// Op is a decoded instruction. Operand fields are always extracted from
// their fixed bit positions; only the ones meaningful for Kind are used.
type Op struct {
	Kind Kind
	X    uint8  // bits 8-11, first register operand
	Y    uint8  // bits 4-7, second register operand
	N    uint8  // bits 0-3, sprite height
	NN   uint8  // bits 0-7, constant
	NNN  uint16 // bits 0-11, address
}

// DecodeError reports an instruction word that matches no known encoding.
type DecodeError struct {
	Opcode uint16
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("unhandled opcode 0x%04X", e.Opcode)
}

// Decode classifies a 16-bit instruction word. Unknown encodings return a
// *DecodeError carrying the raw word.
func Decode(word uint16) (Op, error) {
	op := Op{
		X:   uint8(word >> 8 & 0xF),
		Y:   uint8(word >> 4 & 0xF),
		N:   uint8(word & 0xF),
		NN:  uint8(word & 0xFF),
		NNN: word & 0xFFF,
	}

	switch word & 0xF000 {
	case 0x0000:
		switch word {
		case 0x00E0:
			op.Kind = ClearScreen
		case 0x00EE:
			op.Kind = Return
		default:
			op.Kind = CallMachine
		}
	case 0x1000:
		op.Kind = Jump
	case 0x2000:
		op.Kind = Call
	case 0x3000:
		op.Kind = SkipEqConst
	case 0x4000:
		op.Kind = SkipNeConst
	case 0x5000:
		op.Kind = SkipEqReg
	case 0x6000:
		op.Kind = LoadConst
	case 0x7000:
		op.Kind = AddConst
	case 0x8000:
		switch word & 0x000F {
		case 0x0:
			op.Kind = Move
		case 0x1:
			op.Kind = Or
		case 0x2:
			op.Kind = And
		case 0x3:
			op.Kind = Xor
		case 0x4:
			op.Kind = Add
		case 0x5:
			op.Kind = Sub
		case 0x6:
			op.Kind = ShiftRight
		case 0x7:
			op.Kind = SubReverse
		case 0xE:
			op.Kind = ShiftLeft
		default:
			return Op{}, &DecodeError{Opcode: word}
		}
	case 0x9000:
		op.Kind = SkipNeReg
	case 0xA000:
		op.Kind = LoadIndex
	case 0xB000:
		op.Kind = JumpIndexed
	case 0xC000:
		op.Kind = Random
	case 0xD000:
		op.Kind = Draw
	case 0xE000:
		switch word & 0x00FF {
		case 0x9E:
			op.Kind = SkipKeyPressed
		case 0xA1:
			op.Kind = SkipKeyNotPressed
		default:
			return Op{}, &DecodeError{Opcode: word}
		}
	case 0xF000:
		switch word & 0x00FF {
		case 0x07:
			op.Kind = LoadDelay
		case 0x0A:
			op.Kind = WaitKey
		case 0x15:
			op.Kind = SetDelay
		case 0x18:
			op.Kind = SetSound
		case 0x1E:
			op.Kind = AddIndex
		case 0x29:
			op.Kind = FontSprite
		case 0x33:
			op.Kind = StoreBCD
		case 0x55:
			op.Kind = DumpRegisters
		case 0x65:
			op.Kind = LoadRegisters
		default:
			return Op{}, &DecodeError{Opcode: word}
		}
	}
	return op, nil
}

// String renders the mnemonic used by the disassembly listing and the
// debug overlay.
func (op Op) String() string {
	switch op.Kind {
	case ClearScreen:
		return "clear screen"
	case Return:
		return "return"
	case CallMachine:
		return fmt.Sprintf("call (machine): 0x%03X", op.NNN)
	case Jump:
		return fmt.Sprintf("jump: 0x%03X", op.NNN)
	case Call:
		return fmt.Sprintf("call: 0x%03X", op.NNN)
	case SkipEqConst:
		return fmt.Sprintf("skip if V%X == 0x%02X", op.X, op.NN)
	case SkipNeConst:
		return fmt.Sprintf("skip if V%X != 0x%02X", op.X, op.NN)
	case SkipEqReg:
		return fmt.Sprintf("skip if V%X == V%X", op.X, op.Y)
	case LoadConst:
		return fmt.Sprintf("V%X = 0x%02X", op.X, op.NN)
	case AddConst:
		return fmt.Sprintf("V%X += 0x%02X", op.X, op.NN)
	case Move:
		return fmt.Sprintf("V%X = V%X", op.X, op.Y)
	case Or:
		return fmt.Sprintf("V%X = V%X | V%X", op.X, op.X, op.Y)
	case And:
		return fmt.Sprintf("V%X = V%X & V%X", op.X, op.X, op.Y)
	case Xor:
		return fmt.Sprintf("V%X = V%X ^ V%X", op.X, op.X, op.Y)
	case Add:
		return fmt.Sprintf("V%X = V%X + V%X", op.X, op.X, op.Y)
	case Sub:
		return fmt.Sprintf("V%X = V%X - V%X", op.X, op.X, op.Y)
	case ShiftRight:
		return fmt.Sprintf("V%X >>= 1", op.X)
	case SubReverse:
		return fmt.Sprintf("V%X = V%X - V%X", op.X, op.Y, op.X)
	case ShiftLeft:
		return fmt.Sprintf("V%X <<= 1", op.X)
	case SkipNeReg:
		return fmt.Sprintf("skip if V%X != V%X", op.X, op.Y)
	case LoadIndex:
		return fmt.Sprintf("I = 0x%03X", op.NNN)
	case JumpIndexed:
		return fmt.Sprintf("jump to V0 + 0x%03X", op.NNN)
	case Random:
		return fmt.Sprintf("V%X = rand() & 0x%02X", op.X, op.NN)
	case Draw:
		return fmt.Sprintf("render(V%d, V%d, %d)", op.X, op.Y, op.N)
	case SkipKeyPressed:
		return fmt.Sprintf("skip if V%X pressed", op.X)
	case SkipKeyNotPressed:
		return fmt.Sprintf("skip if V%X not pressed", op.X)
	case LoadDelay:
		return fmt.Sprintf("V%X = get_delay()", op.X)
	case WaitKey:
		return fmt.Sprintf("V%X = get_key()", op.X)
	case SetDelay:
		return fmt.Sprintf("delay_timer(V%X)", op.X)
	case SetSound:
		return fmt.Sprintf("sound_timer(V%X)", op.X)
	case AddIndex:
		return fmt.Sprintf("I += V%X", op.X)
	case FontSprite:
		return fmt.Sprintf("I = sprite_addr(V%X)", op.X)
	case StoreBCD:
		return fmt.Sprintf("BCD(V%X)", op.X)
	case DumpRegisters:
		return fmt.Sprintf("dump(V%X)", op.X)
	case LoadRegisters:
		return fmt.Sprintf("load(V%X)", op.X)
	}
	return fmt.Sprintf("unknown(kind=%d)", op.Kind)
}
