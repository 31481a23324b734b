package vm

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("DXYN", func() {
	var m *VM

	BeforeEach(func() {
		m = New()
	})

	It("draws the font glyph for digit 2 at the origin", func() {
		m.registers[1] = 0x02
		Expect(step(m, 0xF129)).To(Succeed()) // font v1
		Expect(step(m, 0xD005)).To(Succeed()) // sprite v0, v0, 5 at (0,0)

		glyph := chip8Font[2*FontGlyphHeight : 3*FontGlyphHeight]
		for y, row := range glyph {
			for x := 0; x < 8; x++ {
				want := row&(0x80>>x) != 0
				Expect(pixel(m, x, y)).To(Equal(want), "pixel (%d,%d)", x, y)
			}
		}

		Expect(m.registers[0xF]).To(BeZero(), "no collision on a blank display")
		Expect(m.DrawFlag()).To(BeTrue())
	})

	It("erases on the second identical draw and reports the collision", func() {
		m.registers[1] = 0x07
		Expect(step(m, 0xF129)).To(Succeed())

		Expect(step(m, 0xD005)).To(Succeed())
		Expect(m.registers[0xF]).To(BeZero())

		Expect(step(m, 0xD005)).To(Succeed())
		Expect(m.registers[0xF]).To(Equal(uint8(1)))

		for i := range m.gfx {
			Expect(m.gfx[i]).To(BeFalse())
		}
	})

	It("keeps the collision flag set once any pixel was erased", func() {
		m.memory[0x300] = 0x80
		m.memory[0x301] = 0x80

		Expect(step(m, 0xA300)).To(Succeed())
		Expect(step(m, 0xD001)).To(Succeed()) // sets (0,0)

		Expect(step(m, 0xA300)).To(Succeed())
		Expect(step(m, 0xD002)).To(Succeed()) // erases (0,0), freshly sets (0,1)

		Expect(m.registers[0xF]).To(Equal(uint8(1)), "a later fresh pixel must not clear the flag")
		Expect(pixel(m, 0, 0)).To(BeFalse())
		Expect(pixel(m, 0, 1)).To(BeTrue())
	})

	It("wraps the start coordinates unconditionally", func() {
		m.memory[0x300] = 0x80
		m.registers[0] = 64 + 4
		m.registers[1] = 32 + 3

		Expect(step(m, 0xA300)).To(Succeed())
		Expect(step(m, 0xD011)).To(Succeed())

		Expect(pixel(m, 4, 3)).To(BeTrue())
	})

	Context("with the clipping quirk", func() {
		It("drops columns past the right edge", func() {
			m.memory[0x300] = 0xFF
			m.registers[0] = 60
			m.registers[1] = 0

			Expect(step(m, 0xA300)).To(Succeed())
			Expect(step(m, 0xD011)).To(Succeed())

			for x := 60; x < 64; x++ {
				Expect(pixel(m, x, 0)).To(BeTrue(), "x=%d", x)
			}
			for x := 0; x < 4; x++ {
				Expect(pixel(m, x, 0)).To(BeFalse(), "x=%d must not wrap", x)
			}
		})

		It("drops rows past the bottom edge", func() {
			m.memory[0x300] = 0xFF
			m.memory[0x301] = 0xFF
			m.memory[0x302] = 0xFF
			m.registers[0] = 0
			m.registers[1] = 30

			Expect(step(m, 0xA300)).To(Succeed())
			Expect(step(m, 0xD013)).To(Succeed())

			Expect(pixel(m, 0, 30)).To(BeTrue())
			Expect(pixel(m, 0, 31)).To(BeTrue())
			Expect(pixel(m, 0, 0)).To(BeFalse(), "rows must not wrap")
		})
	})

	Context("without the clipping quirk", func() {
		var wrapping *VM

		BeforeEach(func() {
			wrapping = New(WithQuirks(Quirks{}))
		})

		It("wraps columns around the right edge", func() {
			wrapping.memory[0x300] = 0xFF
			wrapping.registers[0] = 60
			wrapping.registers[1] = 0

			Expect(step(wrapping, 0xA300)).To(Succeed())
			Expect(step(wrapping, 0xD011)).To(Succeed())

			for x := 60; x < 64; x++ {
				Expect(pixel(wrapping, x, 0)).To(BeTrue(), "x=%d", x)
			}
			for x := 0; x < 4; x++ {
				Expect(pixel(wrapping, x, 0)).To(BeTrue(), "x=%d wraps", x)
			}
		})

		It("wraps rows around the bottom edge", func() {
			wrapping.memory[0x300] = 0xFF
			wrapping.memory[0x301] = 0xFF
			wrapping.memory[0x302] = 0xFF
			wrapping.registers[0] = 0
			wrapping.registers[1] = 30

			Expect(step(wrapping, 0xA300)).To(Succeed())
			Expect(step(wrapping, 0xD013)).To(Succeed())

			Expect(pixel(wrapping, 0, 30)).To(BeTrue())
			Expect(pixel(wrapping, 0, 31)).To(BeTrue())
			Expect(pixel(wrapping, 0, 0)).To(BeTrue(), "third row wraps to the top")
		})
	})
})
