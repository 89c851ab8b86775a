package cpu

import "chirp8/emu/opcode"

// execute applies one decoded instruction. Decode has already validated the
// word, so every Kind reaching here is handled.
//
// ALU instructions write VF after the destination register, so a
// self-referential operand (e.g. VF op VF) observes its pre-instruction
// value. The call stack is deliberately unchecked: pushing past 16 entries
// or returning with an empty stack panics via bounds checking, matching the
// reference machine's unchecked array indexing.
func (m *Machine) execute(op opcode.Op) {
	switch op.Kind {
	case opcode.ClearScreen:
		m.display.Clear()

	case opcode.Return:
		m.sp--
		m.pc = m.stack[m.sp]

	case opcode.CallMachine, opcode.Call:
		m.stack[m.sp] = m.pc
		m.sp++
		m.pc = op.NNN

	case opcode.Jump:
		m.pc = op.NNN

	case opcode.SkipEqConst:
		if m.v[op.X] == op.NN {
			m.pc += 2
		}

	case opcode.SkipNeConst:
		if m.v[op.X] != op.NN {
			m.pc += 2
		}

	case opcode.SkipEqReg:
		if m.v[op.X] == m.v[op.Y] {
			m.pc += 2
		}

	case opcode.SkipNeReg:
		if m.v[op.X] != m.v[op.Y] {
			m.pc += 2
		}

	case opcode.LoadConst:
		m.v[op.X] = op.NN

	case opcode.AddConst:
		// Wrapping add, carry flag untouched.
		m.v[op.X] += op.NN

	case opcode.Move:
		m.v[op.X] = m.v[op.Y]

	case opcode.Or:
		m.v[op.X] |= m.v[op.Y]

	case opcode.And:
		m.v[op.X] &= m.v[op.Y]

	case opcode.Xor:
		m.v[op.X] ^= m.v[op.Y]

	case opcode.Add:
		sum := uint16(m.v[op.X]) + uint16(m.v[op.Y])
		m.v[op.X] = uint8(sum)
		if sum > 0xFF {
			m.v[0xF] = 1
		} else {
			m.v[0xF] = 0
		}

	case opcode.Sub:
		borrow := m.v[op.X] < m.v[op.Y]
		m.v[op.X] -= m.v[op.Y]
		if borrow {
			m.v[0xF] = 0
		} else {
			m.v[0xF] = 1
		}

	case opcode.SubReverse:
		borrow := m.v[op.Y] < m.v[op.X]
		m.v[op.X] = m.v[op.Y] - m.v[op.X]
		if borrow {
			m.v[0xF] = 0
		} else {
			m.v[0xF] = 1
		}

	case opcode.ShiftRight:
		bit := m.v[op.X] & 0x01
		m.v[op.X] >>= 1
		m.v[0xF] = bit

	case opcode.ShiftLeft:
		bit := m.v[op.X] >> 7
		m.v[op.X] <<= 1
		m.v[0xF] = bit

	case opcode.LoadIndex:
		m.i = op.NNN

	case opcode.JumpIndexed:
		m.pc = uint16(m.v[0]) + op.NNN

	case opcode.Random:
		m.v[op.X] = uint8(m.random.Intn(256)) & op.NN

	case opcode.Draw:
		m.draw(op.X, op.Y, op.N)

	case opcode.SkipKeyPressed:
		if m.pressedKeys[m.v[op.X]] {
			m.pc += 2
		}

	case opcode.SkipKeyNotPressed:
		if !m.pressedKeys[m.v[op.X]] {
			m.pc += 2
		}

	case opcode.LoadDelay:
		m.v[op.X] = m.delayTimer

	case opcode.WaitKey:
		// The register write happens later, in HandleKeyEvent.
		m.state = awaitingKey
		m.waitRegister = op.X

	case opcode.SetDelay:
		m.delayTimer = m.v[op.X]

	case opcode.SetSound:
		m.soundTimer = m.v[op.X]

	case opcode.AddIndex:
		m.i += uint16(m.v[op.X])

	case opcode.FontSprite:
		// Each font glyph occupies 5 bytes starting at 0x000.
		m.i = uint16(m.v[op.X]) * 5

	case opcode.StoreBCD:
		m.memory[m.i] = m.v[op.X] / 100
		m.memory[m.i+1] = m.v[op.X] / 10 % 10
		m.memory[m.i+2] = m.v[op.X] % 10

	case opcode.DumpRegisters:
		for r := uint16(0); r <= uint16(op.X); r++ {
			m.memory[m.i+r] = m.v[r]
		}

	case opcode.LoadRegisters:
		for r := uint16(0); r <= uint16(op.X); r++ {
			m.v[r] = m.memory[m.i+r]
		}
	}
}

// draw XOR-composites an N-row sprite read from memory at I onto the
// display at (Vx, Vy), MSB first per row, wrapping toroidally. VF reports
// whether any pixel was turned off by the draw.
func (m *Machine) draw(vx, vy, height uint8) {
	x := m.v[vx]
	y := m.v[vy]

	collision := false
	for dy := uint8(0); dy < height; dy++ {
		row := m.memory[m.i+uint16(dy)]
		for dx := uint8(0); dx < 8; dx++ {
			if row&(1<<(7-dx)) == 0 {
				continue
			}
			m.display.Flip(x+dx, y+dy)
			if !m.display.Pixel(x+dx, y+dy) {
				collision = true
			}
		}
	}
	if collision {
		m.v[0xF] = 1
	} else {
		m.v[0xF] = 0
	}
}
