// Package cpu implements the CHIP-8 virtual machine: memory, registers,
// call stack, timers, key state and the wall-clock driven fetch-decode-execute
// loop. The host drives it with elapsed-time and key events and reads back
// the frame buffer and register state; the machine never initiates I/O.
package cpu

import (
	"fmt"
	"math/rand"

	"chirp8/emu/display"
	"chirp8/emu/opcode"
)

const (
	// MemorySize is the full addressable memory, 0x000-0xFFF.
	MemorySize = 0x1000
	// ProgramStart is the address ROMs are loaded at and PC starts from.
	ProgramStart = 0x200

	numRegisters = 16
	stackSize    = 16
	numKeys      = 16
	maxROMSize   = MemorySize - ProgramStart

	timerInterval        = 1.0 / 60.0
	defaultClockInterval = 1.0 / 500.0
	defaultRandomSeed    = 222
)

// FontSet is the built-in 5-byte hex digit sprites, resident at 0x000.
var FontSet = [80]uint8{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}

// runState is the machine's execution state. The only state machine in the
// core: running, or stalled on a Fx0A key read until a press arrives.
type runState uint8

const (
	running runState = iota
	awaitingKey
)

// Machine is a powered-on CHIP-8. All state is mutated only through
// Update, Step and HandleKeyEvent; everything else is read-only access.
type Machine struct {
	memory [MemorySize]uint8
	v      [numRegisters]uint8
	i      uint16
	pc     uint16
	stack  [stackSize]uint16
	sp     uint8

	display     display.Buffer
	delayTimer  uint8
	soundTimer  uint8
	pressedKeys [numKeys]bool

	state        runState
	waitRegister uint8 // target of the pending Fx0A while awaitingKey

	cycleCooldown float64
	timerCooldown float64
	clockInterval float64

	random *rand.Rand
}

// New powers on a machine from a prepared 4KB memory image. The image is
// expected to carry the font table at 0x000 and the program at 0x200.
// The random source is seeded with a fixed default so runs are
// reproducible; tests may swap it out.
func New(memory [MemorySize]uint8) *Machine {
	return &Machine{
		memory:        memory,
		pc:            ProgramStart,
		cycleCooldown: defaultClockInterval,
		timerCooldown: timerInterval,
		clockInterval: defaultClockInterval,
		random:        rand.New(rand.NewSource(defaultRandomSeed)),
	}
}

// NewWithROM powers on a machine from raw ROM bytes, seeding the font
// table at 0x000 and the ROM at 0x200.
func NewWithROM(rom []byte) (*Machine, error) {
	if len(rom) > maxROMSize {
		return nil, fmt.Errorf("ROM size %d exceeds maximum of %d bytes", len(rom), maxROMSize)
	}
	var memory [MemorySize]uint8
	copy(memory[:], FontSet[:])
	copy(memory[ProgramStart:], rom)
	return New(memory), nil
}

// Update reconciles dt seconds of wall-clock time against the instruction
// clock and the fixed 60 Hz timer cadence. It executes as many instruction
// steps as the elapsed time owes (catching up after a stall), and returns
// how many were executed. While the machine awaits a key press, time is
// consumed but no steps run.
func (m *Machine) Update(dt float64) (int, error) {
	cycles := 0
	m.cycleCooldown -= dt
	for m.cycleCooldown <= 0 {
		m.cycleCooldown += m.clockInterval
		if m.state != running {
			continue
		}
		if err := m.Step(); err != nil {
			return cycles, err
		}
		cycles++
	}

	m.timerCooldown -= dt
	for m.timerCooldown <= 0 {
		m.timerCooldown += timerInterval
		if m.delayTimer > 0 {
			m.delayTimer--
		}
		if m.soundTimer > 0 {
			m.soundTimer--
		}
	}
	return cycles, nil
}

// Step runs one fetch-decode-execute cycle. While the machine awaits a key
// press it is a no-op. A word matching no known instruction is returned as
// a decode failure; PC has already advanced past it.
func (m *Machine) Step() error {
	if m.state == awaitingKey {
		return nil
	}
	word := uint16(m.memory[m.pc])<<8 | uint16(m.memory[m.pc+1])
	m.pc += 2
	op, err := opcode.Decode(word)
	if err != nil {
		return err
	}
	m.execute(op)
	return nil
}

// HandleKeyEvent records a key state change. A press additionally resolves
// a pending Fx0A: the key lands in the latched register and execution
// resumes on the next Update. The effect is immediate, not deferred.
func (m *Machine) HandleKeyEvent(key uint8, pressed bool) {
	m.pressedKeys[key] = pressed
	if m.state == awaitingKey && pressed {
		m.v[m.waitRegister] = key
		m.state = running
	}
}

// SetClockFrequency sets the instruction clock in Hz. Takes effect on the
// next Update; the already accumulated countdown is not corrected.
func (m *Machine) SetClockFrequency(hz int) {
	m.clockInterval = 1.0 / float64(hz)
}

// MultiplyClockFrequency scales the instruction clock, e.g. 1.25 to speed
// up and 0.8 to slow down.
func (m *Machine) MultiplyClockFrequency(factor float64) {
	m.clockInterval /= factor
}

// ClockFrequency returns the current instruction clock in Hz.
func (m *Machine) ClockFrequency() float64 {
	return 1.0 / m.clockInterval
}

// Registers returns a copy of the 16 general-purpose registers.
func (m *Machine) Registers() [numRegisters]uint8 {
	return m.v
}

// AddressRegister returns I.
func (m *Machine) AddressRegister() uint16 {
	return m.i
}

// ProgramCounter returns PC.
func (m *Machine) ProgramCounter() uint16 {
	return m.pc
}

// DelayTimer returns the delay timer value.
func (m *Machine) DelayTimer() uint8 {
	return m.delayTimer
}

// SoundTimer returns the sound timer value. No audio device is driven;
// the value is tracked for programs that poll it.
func (m *Machine) SoundTimer() uint8 {
	return m.soundTimer
}

// Stack returns a copy of the call stack entries currently in use.
func (m *Machine) Stack() []uint16 {
	entries := make([]uint16, m.sp)
	copy(entries, m.stack[:m.sp])
	return entries
}

// Pixel reports whether the display pixel at (x, y) is set. Coordinates
// wrap modulo the display size.
func (m *Machine) Pixel(x, y uint8) bool {
	return m.display.Pixel(x, y)
}
