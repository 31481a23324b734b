package vm

import (
	"errors"
	"math/rand/v2"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("VM", func() {
	var m *VM

	BeforeEach(func() {
		m = New()
	})

	Describe("New", func() {
		It("starts the program counter at the program region", func() {
			Expect(m.PC()).To(Equal(ProgramStart))
		})

		It("loads the font set into low memory", func() {
			Expect(m.memory[:len(chip8Font)]).To(Equal(chip8Font))
		})

		It("starts with a blank display and a pending draw", func() {
			for i := range m.gfx {
				Expect(m.gfx[i]).To(BeFalse())
			}
			Expect(m.DrawFlag()).To(BeTrue())
		})

		It("starts with zeroed timers", func() {
			Expect(m.DelayTimer()).To(BeZero())
			Expect(m.SoundTimer()).To(BeZero())
		})
	})

	Describe("Load", func() {
		It("copies the program at the program start address", func() {
			Expect(m.Load([]byte{0xDE, 0xAD, 0xBE, 0xEF})).To(Succeed())

			Expect(m.memory[ProgramStart]).To(Equal(uint8(0xDE)))
			Expect(m.memory[ProgramStart+1]).To(Equal(uint8(0xAD)))
			Expect(m.memory[ProgramStart+2]).To(Equal(uint8(0xBE)))
			Expect(m.memory[ProgramStart+3]).To(Equal(uint8(0xEF)))
		})

		It("rejects a program that does not fit above the load address", func() {
			program := make([]byte, MemorySize-int(ProgramStart)+1)
			Expect(m.Load(program)).NotTo(Succeed())
		})

		It("accepts the largest program that fits", func() {
			program := make([]byte, MemorySize-int(ProgramStart))
			Expect(m.Load(program)).To(Succeed())
		})
	})

	Describe("Step", func() {
		It("fetches opcodes big-endian and advances the PC by two", func() {
			Expect(m.Load([]byte{0x6A, 0x42})).To(Succeed()) // mov va, 0x42
			Expect(m.Step()).To(Succeed())

			Expect(m.registers[0xA]).To(Equal(uint8(0x42)))
			Expect(m.PC()).To(Equal(ProgramStart + 2))
		})

		It("runs the load-load-add scenario", func() {
			// LD V0,10; LD V1,5; ADD V0,V1
			Expect(m.Load([]byte{0x60, 0x0A, 0x61, 0x05, 0x80, 0x14})).To(Succeed())

			for i := 0; i < 3; i++ {
				Expect(m.Step()).To(Succeed())
			}

			Expect(m.registers[0]).To(Equal(uint8(15)))
			Expect(m.registers[0xF]).To(BeZero())
			Expect(m.PC()).To(Equal(ProgramStart + 6))
		})

		It("does not decrement timers", func() {
			m.registers[0] = 7
			Expect(step(m, 0xF015)).To(Succeed()) // sdelay v0

			Expect(step(m, 0x6000)).To(Succeed())
			Expect(step(m, 0x6000)).To(Succeed())
			Expect(m.DelayTimer()).To(Equal(uint8(7)))
		})

		It("reports an undefined instruction with the offending opcode", func() {
			for _, opcode := range []uint16{0x0123, 0x5AB1, 0x8AB8, 0x9AB5, 0xE0FF, 0xF0FF} {
				fresh := New()

				err := step(fresh, opcode)
				Expect(err).To(HaveOccurred())

				var undefErr *UndefinedInstructionError
				Expect(errors.As(err, &undefErr)).To(BeTrue(), "opcode 0x%04X", opcode)
				Expect(undefErr.Opcode).To(Equal(opcode))
			}
		})

		It("leaves registers untouched after an undefined instruction", func() {
			m.registers[3] = 0x77

			Expect(step(m, 0xF0FF)).NotTo(Succeed())
			Expect(m.registers[3]).To(Equal(uint8(0x77)))
		})
	})

	Describe("TickTimers", func() {
		BeforeEach(func() {
			m.registers[0] = 2
			Expect(step(m, 0xF015)).To(Succeed()) // sdelay v0
			m.registers[1] = 1
			Expect(step(m, 0xF118)).To(Succeed()) // ssound v1
		})

		It("decrements both timers independently", func() {
			m.TickTimers()

			Expect(m.DelayTimer()).To(Equal(uint8(1)))
			Expect(m.SoundTimer()).To(BeZero())
		})

		It("clamps at zero", func() {
			for i := 0; i < 5; i++ {
				m.TickTimers()
			}

			Expect(m.DelayTimer()).To(BeZero())
			Expect(m.SoundTimer()).To(BeZero())
		})
	})

	Describe("Reset", func() {
		It("restores the just-constructed state", func() {
			Expect(m.Load([]byte{0x60, 0x0A, 0xA3, 0x00, 0x22, 0x08})).To(Succeed())
			for i := 0; i < 3; i++ {
				Expect(m.Step()).To(Succeed())
			}
			m.SetKey(Key5, true)
			m.delayTimer = 9

			m.Reset()

			Expect(m.PC()).To(Equal(ProgramStart))
			Expect(m.index).To(BeZero())
			Expect(m.sp).To(BeZero())
			Expect(m.DelayTimer()).To(BeZero())
			for i := range m.registers {
				Expect(m.registers[i]).To(BeZero())
			}
			for i := range m.keypad {
				Expect(m.keypad[i]).To(BeFalse())
			}
			Expect(m.memory[ProgramStart]).To(BeZero(), "program region is wiped")
			Expect(m.memory[:len(chip8Font)]).To(Equal(chip8Font), "font is reloaded")
		})

		It("preserves the configured quirks", func() {
			quirks := Quirks{Shifting: true, Jumping: true}
			configured := New(WithQuirks(quirks))

			configured.Reset()

			Expect(configured.quirks).To(Equal(quirks))
		})
	})

	Describe("WithRandom", func() {
		It("makes the random opcode deterministic", func() {
			first := New(WithRandom(rand.New(rand.NewPCG(7, 11))))
			second := New(WithRandom(rand.New(rand.NewPCG(7, 11))))

			Expect(step(first, 0xC0FF)).To(Succeed())
			Expect(step(second, 0xC0FF)).To(Succeed())

			Expect(first.registers[0]).To(Equal(second.registers[0]))
		})
	})
})
