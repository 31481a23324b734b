package vm

// Quirks selects between documented behaviors of historical CHIP-8
// interpreters. The flags are fixed at construction time and read-only
// during execution.
type Quirks struct {
	// VFReset makes the logical opcodes (8xy1, 8xy2 and 8xy3) reset the
	// flags register to zero.
	VFReset bool

	// Memory makes the save and load opcodes (Fx55 and Fx65) increment the
	// index register past the last register touched.
	Memory bool

	// Clipping clips sprites at the screen edges instead of wrapping them
	// around to the opposite side.
	Clipping bool

	// Shifting makes the shift opcodes (8xy6 and 8xyE) operate on vX in
	// place instead of copying vY into vX first.
	Shifting bool

	// Jumping makes the jump-with-offset opcode (Bnnn) use vX, where X is
	// the high nibble of nnn, instead of always v0.
	Jumping bool

	// Release makes the get-key opcode (Fx0A) wait for a key press and the
	// matching key release before completing.
	Release bool
}

// DefaultQuirks matches the behavior of the most common modern interpreters.
func DefaultQuirks() Quirks {
	return Quirks{
		VFReset:  true,
		Memory:   true,
		Clipping: true,
		Shifting: false,
		Jumping:  false,
		Release:  true,
	}
}
