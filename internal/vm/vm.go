package vm

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
)

const (
	MemorySize    = 4096
	StackSize     = 16
	RegisterCount = 16
	ScreenWidth   = 64
	ScreenHeight  = 32
	KeyCount      = 16

	ProgramStart    = uint16(0x200)
	InstructionSize = 2

	// AddressMask keeps every memory access derived from the program
	// counter or the index register inside the 12-bit address space.
	AddressMask = uint16(0x0FFF)
)

// noKeyPressed marks an empty Fx0A key latch.
const noKeyPressed = -1

// VM is a single CHIP-8 machine. It owns all machine state and performs no
// I/O: the caller drives it by invoking Step once per emulated cycle,
// TickTimers at a fixed 60 Hz cadence, and SetKey on every key transition.
// The instance is not safe for concurrent use.
type VM struct {
	memory    []uint8 // Memory (4k)
	registers []uint8 // V registers (V0-VF)

	stack []uint16 // Stack
	sp    uint16   // Stack pointer

	pc    uint16 // Program counter
	index uint16 // Index register

	delayTimer uint8 // Delay timer
	soundTimer uint8 // Sound timer

	gfx      []bool // Graphics buffer
	keypad   []bool // Keypad
	drawFlag bool   // Indicates a draw has occurred

	quirks Quirks
	rng    *rand.Rand

	// Key latched by Fx0A while it waits for the release, or noKeyPressed.
	pressedKey int
}

// Option configures a VM at construction time.
type Option func(*VM)

// WithQuirks selects the quirk set. Without it the VM uses DefaultQuirks.
func WithQuirks(q Quirks) Option {
	return func(vm *VM) {
		vm.quirks = q
	}
}

// WithRandom sets the random source used by the CXNN opcode.
func WithRandom(rng *rand.Rand) Option {
	return func(vm *VM) {
		vm.rng = rng
	}
}

// New returns a machine ready to accept a program: memory zeroed, font
// loaded, registers zeroed, PC at the program start address.
func New(opts ...Option) *VM {
	vm := &VM{
		memory:     make([]uint8, MemorySize),
		registers:  make([]uint8, RegisterCount),
		stack:      make([]uint16, StackSize),
		gfx:        make([]bool, ScreenWidth*ScreenHeight),
		keypad:     make([]bool, KeyCount),
		quirks:     DefaultQuirks(),
		pressedKey: noKeyPressed,
	}

	for _, opt := range opts {
		opt(vm)
	}

	if vm.rng == nil {
		vm.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	vm.initialize()
	return vm
}

// Key identifies one of the 16 keypad keys.
type Key uint8

const (
	Key0 = Key(iota)
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	Key9
	KeyA
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF
)

// Load copies a program into memory at the program start address. No opcode
// validation happens here; malformed opcodes fail at Step time.
func (vm *VM) Load(program []byte) error {
	if len(program) > MemorySize-int(ProgramStart) {
		return fmt.Errorf("program is %d bytes, only %d fit above 0x%04x",
			len(program), MemorySize-int(ProgramStart), ProgramStart)
	}

	slog.Info("load program", "at", fmt.Sprintf("0x%04x", ProgramStart), "n", len(program))
	copy(vm.memory[ProgramStart:], program)
	return nil
}

// Reset restores the just-constructed state without discarding the instance:
// everything is zeroed and the font reloaded, while quirks and the random
// source survive. Used when the caller swaps in a new ROM mid-session.
func (vm *VM) Reset() {
	vm.initialize()
}

func (vm *VM) initialize() {
	vm.pc = ProgramStart
	vm.index = 0
	vm.sp = 0

	// Clear the display
	for i := range vm.gfx {
		vm.gfx[i] = false
	}
	vm.drawFlag = true

	// Clear the stack, keypad, and V registers
	slog.Debug("clear stack", "n", len(vm.stack))
	for i := range vm.stack {
		vm.stack[i] = 0
	}

	slog.Debug("clear keypad", "n", len(vm.keypad))
	for i := range vm.keypad {
		vm.keypad[i] = false
	}
	vm.pressedKey = noKeyPressed

	slog.Debug("clear registers", "n", len(vm.registers))
	for i := range vm.registers {
		vm.registers[i] = 0
	}

	// Clear memory
	slog.Debug("clear memory", "n", len(vm.memory))
	for i := range vm.memory {
		vm.memory[i] = 0
	}

	// Load font set into memory
	slog.Debug("load font", "at", fmt.Sprintf("0x%04x", 0), "n", len(chip8Font))
	copy(vm.memory[0:], chip8Font)

	// Reset timers
	vm.delayTimer = 0
	vm.soundTimer = 0
}

// Step performs exactly one fetch-decode-execute cycle. The program counter
// advances past the fetched opcode before dispatch, so an undefined
// instruction is reported with the PC already pointing at the next word; no
// further state changes happen after the error.
//
// Step returns *UndefinedInstructionError when no dispatch pattern matches,
// ErrStackOverflow and ErrStackUnderflow on call stack abuse, and
// ErrInfiniteLoop when a jump targets itself; the last leaves the machine in
// a valid state and is advisory.
func (vm *VM) Step() error {
	pc := vm.pc
	opcode := vm.fetchOpcode()
	return vm.executeOpcode(pc, opcode)
}

func (vm *VM) fetchOpcode() uint16 {
	hi := vm.memory[vm.pc&AddressMask]
	lo := vm.memory[(vm.pc+1)&AddressMask]
	vm.pc += InstructionSize

	opcode := uint16(hi)<<8 | uint16(lo) // Op code is two bytes
	return opcode
}

// TickTimers decrements both countdown timers, clamped at zero. It is driven
// by the caller at a fixed real-time rate (conventionally 60 Hz), decoupled
// from the instruction cycle rate.
func (vm *VM) TickTimers() {
	if vm.delayTimer > 0 {
		vm.delayTimer--
	}

	if vm.soundTimer > 0 {
		vm.soundTimer--
	}
}

// SetKey records a keypad transition.
func (vm *VM) SetKey(key Key, pressed bool) {
	vm.keypad[int(key)] = pressed
}

// Framebuffer exposes the 64x32 display grid, row-major (index = y*64+x).
// The caller must treat it as read-only; only the clear and draw opcodes
// mutate it.
func (vm *VM) Framebuffer() []bool {
	return vm.gfx
}

// DrawFlag reports whether the display changed since the last ClearDrawFlag.
func (vm *VM) DrawFlag() bool {
	return vm.drawFlag
}

// ClearDrawFlag acknowledges a rendered frame.
func (vm *VM) ClearDrawFlag() {
	vm.drawFlag = false
}

// DelayTimer returns the current delay timer value.
func (vm *VM) DelayTimer() uint8 {
	return vm.delayTimer
}

// SoundTimer returns the current sound timer value. Turning it into audio is
// the caller's job.
func (vm *VM) SoundTimer() uint8 {
	return vm.soundTimer
}

// PC returns the current program counter.
func (vm *VM) PC() uint16 {
	return vm.pc
}
