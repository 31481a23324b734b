package vm

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("FX0A", func() {
	It("re-executes until a key arrives", func() {
		m := New()
		write(m, ProgramStart, 0xF00A)

		for i := 0; i < 3; i++ {
			Expect(m.Step()).To(Succeed())
			Expect(m.PC()).To(Equal(ProgramStart), "the PC rewinds to retry")
		}
	})

	It("scans the keypad in ascending order", func() {
		m := New(WithQuirks(Quirks{Release: false}))
		write(m, ProgramStart, 0xF00A)

		m.SetKey(Key9, true)
		m.SetKey(Key3, true)

		Expect(m.Step()).To(Succeed())
		Expect(m.registers[0]).To(Equal(uint8(3)))
	})

	Context("without the release quirk", func() {
		It("completes on the cycle the key is seen down", func() {
			m := New(WithQuirks(Quirks{Release: false}))
			write(m, ProgramStart, 0xF50A)

			Expect(m.Step()).To(Succeed())
			Expect(m.PC()).To(Equal(ProgramStart))

			m.SetKey(KeyB, true)
			Expect(m.Step()).To(Succeed())

			Expect(m.registers[5]).To(Equal(uint8(0xB)))
			Expect(m.PC()).To(Equal(ProgramStart + 2))
		})
	})

	Context("with the release quirk", func() {
		var m *VM

		BeforeEach(func() {
			m = New(WithQuirks(Quirks{Release: true}))
			write(m, ProgramStart, 0xF50A)
		})

		It("waits for the latched key to be released", func() {
			m.SetKey(Key7, true)

			// Held key: the opcode latches but does not complete.
			for i := 0; i < 3; i++ {
				Expect(m.Step()).To(Succeed())
				Expect(m.PC()).To(Equal(ProgramStart))
			}
			Expect(m.registers[5]).To(Equal(uint8(7)), "the key is stored at latch time")

			m.SetKey(Key7, false)
			Expect(m.Step()).To(Succeed())
			Expect(m.PC()).To(Equal(ProgramStart + 2))
		})

		It("clears the latch on completion", func() {
			m.SetKey(Key7, true)
			Expect(m.Step()).To(Succeed())
			m.SetKey(Key7, false)
			Expect(m.Step()).To(Succeed())

			// A second key-wait must require a fresh press.
			write(m, m.PC(), 0xF60A)
			Expect(m.Step()).To(Succeed())
			Expect(m.PC()).To(Equal(ProgramStart+2), "waits again instead of completing")
		})

		It("ignores other keys while one is latched", func() {
			m.SetKey(Key7, true)
			Expect(m.Step()).To(Succeed())

			m.SetKey(Key2, true)
			Expect(m.Step()).To(Succeed())
			Expect(m.PC()).To(Equal(ProgramStart), "still waiting for key 7 to release")
			Expect(m.registers[5]).To(Equal(uint8(7)))
		})
	})
})
