package cpu

import (
	"math/rand"
	"testing"

	"chirp8/emu/opcode"

	"github.com/retroenv/retrogolib/assert"
)

// exec decodes and executes a single instruction word without going
// through fetch, so PC only moves when the instruction itself moves it.
func exec(t *testing.T, m *Machine, word uint16) {
	t.Helper()
	op, err := opcode.Decode(word)
	assert.NoError(t, err)
	m.execute(op)
}

func TestMachineCodeCallPushesReturnAddress(t *testing.T) {
	m := New([MemorySize]uint8{})
	m.pc = 0x987

	exec(t, m, 0x0234)

	assert.Equal(t, uint16(0x234), m.pc)
	assert.Equal(t, uint16(0x987), m.stack[0])
	assert.Equal(t, uint8(1), m.sp)
}

func TestReturnPopsStack(t *testing.T) {
	m := New([MemorySize]uint8{})
	m.pc = 0x987
	m.stack[0] = 0x123
	m.sp = 1

	exec(t, m, 0x00EE)

	assert.Equal(t, uint16(0x123), m.pc)
	assert.Equal(t, uint8(0), m.sp)
}

func TestJump(t *testing.T) {
	m := New([MemorySize]uint8{})

	exec(t, m, 0x1567)

	assert.Equal(t, uint16(0x567), m.pc)
}

func TestCall(t *testing.T) {
	m := New([MemorySize]uint8{})
	m.pc = 0x153

	exec(t, m, 0x2A05)

	assert.Equal(t, uint16(0xA05), m.pc)
	assert.Equal(t, uint16(0x153), m.stack[0])
	assert.Equal(t, uint8(1), m.sp)
}

func TestSkipConditions(t *testing.T) {
	tests := []struct {
		name string
		word uint16
		prep func(m *Machine)
		skip bool
	}{
		{"eq const hit", 0x35FF, func(m *Machine) { m.v[5] = 0xFF }, true},
		{"eq const miss", 0x35FF, func(m *Machine) { m.v[5] = 0xEA }, false},
		{"ne const hit", 0x45FF, func(m *Machine) { m.v[5] = 0xEA }, true},
		{"ne const miss", 0x45FF, func(m *Machine) { m.v[5] = 0xFF }, false},
		{"eq reg hit", 0x52A0, func(m *Machine) { m.v[2] = 0x99; m.v[0xA] = 0x99 }, true},
		{"eq reg miss", 0x52A0, func(m *Machine) { m.v[2] = 0x75; m.v[0xA] = 0x99 }, false},
		{"ne reg hit", 0x92A0, func(m *Machine) { m.v[2] = 0x75; m.v[0xA] = 0x99 }, true},
		{"ne reg miss", 0x92A0, func(m *Machine) { m.v[2] = 0x99; m.v[0xA] = 0x99 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New([MemorySize]uint8{})
			m.pc = 5
			tt.prep(m)

			exec(t, m, tt.word)

			want := uint16(5)
			if tt.skip {
				want = 7
			}
			assert.Equal(t, want, m.pc)
		})
	}
}

func TestLoadConst(t *testing.T) {
	m := New([MemorySize]uint8{})

	exec(t, m, 0x63A2)

	assert.Equal(t, uint8(0xA2), m.v[3])
}

func TestAddConst(t *testing.T) {
	m := New([MemorySize]uint8{})
	m.v[0xB] = 0xF0

	exec(t, m, 0x7B05)

	assert.Equal(t, uint8(0xF5), m.v[0xB])
}

func TestAddConstWrapsWithoutCarry(t *testing.T) {
	m := New([MemorySize]uint8{})
	m.v[0xB] = 0xFF
	m.v[0xF] = 3

	exec(t, m, 0x7B35)

	assert.Equal(t, uint8(0x34), m.v[0xB])
	// The carry flag is untouched by the constant add.
	assert.Equal(t, uint8(3), m.v[0xF])
}

func TestBitwiseOps(t *testing.T) {
	tests := []struct {
		name string
		word uint16
		want uint8
	}{
		{"move", 0x82A0, 0b0110_0100},
		{"or", 0x82A1, 0b0110_1111},
		{"and", 0x82A2, 0b0100_0100},
		{"xor", 0x82A3, 0b0010_1011},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New([MemorySize]uint8{})
			m.v[0x2] = 0b0100_1111
			m.v[0xA] = 0b0110_0100

			exec(t, m, tt.word)

			assert.Equal(t, tt.want, m.v[0x2])
			assert.Equal(t, uint8(0b0110_0100), m.v[0xA])
		})
	}
}

func TestAddRegisters(t *testing.T) {
	tests := []struct {
		name     string
		a, b     uint8
		want     uint8
		wantFlag uint8
	}{
		{"no carry", 53, 22, 75, 0},
		{"carry", 0xFF, 22, 21, 1},
		{"boundary no carry", 0xFF, 0, 0xFF, 0},
		{"boundary carry", 0xFF, 1, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New([MemorySize]uint8{})
			m.v[0xF] = 3
			m.v[0x6] = tt.a
			m.v[0x0] = tt.b

			exec(t, m, 0x8604)

			assert.Equal(t, tt.want, m.v[0x6])
			assert.Equal(t, tt.wantFlag, m.v[0xF])
		})
	}
}

func TestSubRegisters(t *testing.T) {
	tests := []struct {
		name     string
		a, b     uint8
		want     uint8
		wantFlag uint8
	}{
		{"no borrow", 110, 60, 50, 1},
		{"borrow", 60, 110, 206, 0},
		{"equal", 42, 42, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New([MemorySize]uint8{})
			m.v[0xF] = 3
			m.v[0x6] = tt.a
			m.v[0x0] = tt.b

			exec(t, m, 0x8605)

			assert.Equal(t, tt.want, m.v[0x6])
			assert.Equal(t, tt.wantFlag, m.v[0xF])
		})
	}
}

func TestSubReverse(t *testing.T) {
	tests := []struct {
		name     string
		a, b     uint8
		want     uint8
		wantFlag uint8
	}{
		{"no borrow", 60, 110, 50, 1},
		{"borrow", 110, 60, 206, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New([MemorySize]uint8{})
			m.v[0xF] = 3
			m.v[0x6] = tt.a
			m.v[0x0] = tt.b

			exec(t, m, 0x8607)

			assert.Equal(t, tt.want, m.v[0x6])
			assert.Equal(t, tt.wantFlag, m.v[0xF])
		})
	}
}

func TestShiftRight(t *testing.T) {
	tests := []struct {
		name     string
		value    uint8
		want     uint8
		wantFlag uint8
	}{
		{"even", 0b0101_1110, 0b0010_1111, 0},
		{"odd", 0b0101_1101, 0b0010_1110, 1},
		{"zero", 0x00, 0x00, 0},
		{"all ones", 0xFF, 0x7F, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New([MemorySize]uint8{})
			m.v[0xF] = 3
			m.v[0x2] = tt.value

			exec(t, m, 0x8206)

			assert.Equal(t, tt.want, m.v[0x2])
			assert.Equal(t, tt.wantFlag, m.v[0xF])
		})
	}
}

func TestShiftLeft(t *testing.T) {
	tests := []struct {
		name     string
		value    uint8
		want     uint8
		wantFlag uint8
	}{
		{"high bit clear", 0b0101_1101, 0b1011_1010, 0},
		{"high bit set", 0b1001_1101, 0b0011_1010, 1},
		{"zero", 0x00, 0x00, 0},
		{"all ones", 0xFF, 0xFE, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New([MemorySize]uint8{})
			m.v[0xF] = 3
			m.v[0x2] = tt.value

			exec(t, m, 0x820E)

			assert.Equal(t, tt.want, m.v[0x2])
			assert.Equal(t, tt.wantFlag, m.v[0xF])
		})
	}
}

func TestLoadIndex(t *testing.T) {
	m := New([MemorySize]uint8{})

	exec(t, m, 0xAF38)

	assert.Equal(t, uint16(0xF38), m.i)
}

func TestJumpIndexed(t *testing.T) {
	m := New([MemorySize]uint8{})
	m.v[0] = 0x33

	exec(t, m, 0xB345)

	assert.Equal(t, uint16(0x378), m.pc)
}

func TestRandomIsDeterministicForSeed(t *testing.T) {
	m := New([MemorySize]uint8{})
	m.random = rand.New(rand.NewSource(99))

	exec(t, m, 0xC3F2)

	want := uint8(rand.New(rand.NewSource(99)).Intn(256)) & 0xF2
	assert.Equal(t, want, m.v[0x3])
	// The mask clears the masked-out bits unconditionally.
	assert.Equal(t, uint8(0), m.v[0x3]&^uint8(0xF2))
}

func TestDrawOneRow(t *testing.T) {
	m := New([MemorySize]uint8{})
	m.i = 100
	m.memory[m.i] = 0b1010_0001
	m.v[0xF] = 7
	m.v[0x5] = 5
	m.v[0x8] = 8

	exec(t, m, 0xD851)

	expected := []bool{true, false, true, false, false, false, false, true}
	for i := uint8(0); i < 8; i++ {
		assert.Equal(t, expected[i], m.display.Pixel(8+i, 5))
	}
	assert.Equal(t, uint8(0), m.v[0xF])
}

func TestDrawCollision(t *testing.T) {
	m := New([MemorySize]uint8{})
	m.i = 100
	m.memory[m.i] = 0b1010_0001
	m.v[0xF] = 7
	m.v[0x5] = 5
	m.v[0x8] = 8
	m.display.Flip(10, 5)

	exec(t, m, 0xD851)

	expected := []bool{true, false, false, false, false, false, false, true}
	for i := uint8(0); i < 8; i++ {
		assert.Equal(t, expected[i], m.display.Pixel(8+i, 5))
	}
	assert.Equal(t, uint8(1), m.v[0xF])
}

func TestDrawTwoRows(t *testing.T) {
	m := New([MemorySize]uint8{})
	m.i = 100
	m.memory[m.i] = 0b1010_0001
	m.memory[m.i+1] = 0b0011_1100
	m.v[0x5] = 5
	m.v[0x8] = 8

	exec(t, m, 0xD852)

	firstRow := []bool{true, false, true, false, false, false, false, true}
	secondRow := []bool{false, false, true, true, true, true, false, false}
	for i := uint8(0); i < 8; i++ {
		assert.Equal(t, firstRow[i], m.display.Pixel(8+i, 5))
		assert.Equal(t, secondRow[i], m.display.Pixel(8+i, 6))
	}
	assert.Equal(t, uint8(0), m.v[0xF])
}

func TestDrawTwiceRestoresAndReportsCollision(t *testing.T) {
	m := New([MemorySize]uint8{})
	m.i = 100
	m.memory[m.i] = 0b1110_0111
	m.v[0x5] = 5
	m.v[0x8] = 8

	exec(t, m, 0xD851)
	assert.Equal(t, uint8(0), m.v[0xF])

	// XOR idempotence: the second identical draw erases the first.
	exec(t, m, 0xD851)
	assert.Equal(t, uint8(1), m.v[0xF])
	for i := uint8(0); i < 8; i++ {
		assert.False(t, m.display.Pixel(8+i, 5))
	}
}

func TestDrawWrapsAroundEdges(t *testing.T) {
	m := New([MemorySize]uint8{})
	m.i = 100
	m.memory[m.i] = 0b1000_0001
	m.v[0x0] = 60 // 4 pixels from the right edge
	m.v[0x1] = 31 // bottom row

	exec(t, m, 0xD011)

	assert.True(t, m.display.Pixel(60, 31))
	// Bit 7 of the row lands 7 pixels right of x=60, wrapping to x=3.
	assert.True(t, m.display.Pixel(3, 31))
}

func TestSkipKeyPressed(t *testing.T) {
	m := New([MemorySize]uint8{})
	m.pc = 20
	m.pressedKeys[0xB] = true
	m.v[0x7] = 0xB

	exec(t, m, 0xE79E)

	assert.Equal(t, uint16(22), m.pc)
}

func TestSkipKeyNotPressed(t *testing.T) {
	m := New([MemorySize]uint8{})
	m.pc = 20
	m.pressedKeys[0xB] = true
	m.v[0x7] = 0xB

	exec(t, m, 0xE7A1)

	assert.Equal(t, uint16(20), m.pc)
}

func TestLoadDelayTimer(t *testing.T) {
	m := New([MemorySize]uint8{})
	m.v[0x5] = 37
	m.delayTimer = 99

	exec(t, m, 0xF507)

	assert.Equal(t, uint8(99), m.v[0x5])
}

func TestWaitKeyLatches(t *testing.T) {
	m := New([MemorySize]uint8{})

	exec(t, m, 0xF80A)

	assert.Equal(t, awaitingKey, m.state)
	assert.Equal(t, uint8(0x8), m.waitRegister)
	// No register write until a key arrives.
	assert.Equal(t, uint8(0), m.v[0x8])
}

func TestSetTimers(t *testing.T) {
	m := New([MemorySize]uint8{})
	m.v[0x5] = 37
	m.v[0x4] = 100

	exec(t, m, 0xF515)
	exec(t, m, 0xF418)

	assert.Equal(t, uint8(37), m.delayTimer)
	assert.Equal(t, uint8(100), m.soundTimer)
}

func TestAddIndex(t *testing.T) {
	m := New([MemorySize]uint8{})
	m.i = 5
	m.v[0x2] = 3

	exec(t, m, 0xF21E)

	assert.Equal(t, uint16(8), m.i)
}

func TestFontSpriteAddress(t *testing.T) {
	for _, digit := range []uint8{0x0, 0x7, 0xF} {
		m := New([MemorySize]uint8{})
		m.v[0xB] = digit
		m.i = 0xF05

		exec(t, m, 0xFB29)

		assert.Equal(t, uint16(digit)*5, m.i)
	}
}

func TestStoreBCD(t *testing.T) {
	m := New([MemorySize]uint8{})
	m.v[0xB] = 109
	m.i = 0xF05

	exec(t, m, 0xFB33)

	assert.Equal(t, uint8(1), m.memory[0xF05])
	assert.Equal(t, uint8(0), m.memory[0xF06])
	assert.Equal(t, uint8(9), m.memory[0xF07])
}

func TestDumpRegisters(t *testing.T) {
	m := New([MemorySize]uint8{})
	m.v[0x0] = 0x00
	m.v[0x1] = 0x12
	m.v[0x2] = 0x34
	m.v[0x3] = 0x56
	m.i = 0xF05

	// Dump V0..=V2: V3 must not be written.
	exec(t, m, 0xF255)

	assert.Equal(t, uint8(0x00), m.memory[0xF05])
	assert.Equal(t, uint8(0x12), m.memory[0xF06])
	assert.Equal(t, uint8(0x34), m.memory[0xF07])
	assert.Equal(t, uint8(0x00), m.memory[0xF08])
}

func TestLoadRegisters(t *testing.T) {
	m := New([MemorySize]uint8{})
	for r := 0; r < 4; r++ {
		m.v[r] = 0x77
	}
	m.i = 0xF05
	m.memory[0xF05] = 0x0A
	m.memory[0xF06] = 0x0B
	m.memory[0xF07] = 0x0C
	m.memory[0xF08] = 0x0D

	// Load V0..=V2: V3 must keep its value.
	exec(t, m, 0xF265)

	assert.Equal(t, uint8(0x0A), m.v[0x0])
	assert.Equal(t, uint8(0x0B), m.v[0x1])
	assert.Equal(t, uint8(0x0C), m.v[0x2])
	assert.Equal(t, uint8(0x77), m.v[0x3])
}
