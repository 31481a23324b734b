// Package emulator drives a CHIP-8 machine against a host front-end: it
// paces instruction cycles and timer ticks on the wall clock, forwards key
// transitions, and pushes dirty frames to the display. The machine itself
// performs no I/O and has no notion of time.
package emulator

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/okanin/chip8vm/internal/hal"
	"github.com/okanin/chip8vm/internal/vm"
)

// TimerRate is the fixed timer tick (and frame) cadence in Hz.
const TimerRate = 60

// DefaultCycleRate is the default instruction rate in Hz.
const DefaultCycleRate = 500

// HAL is the host toolkit surface the runner needs: input events in,
// framebuffer and sound cue out.
type HAL interface {
	ReadInput(keyDown func(vm.Key), keyUp func(vm.Key)) error
	Draw(gfx []bool) error
	Beep() error
}

// Runner owns one machine and one HAL for the duration of a session.
type Runner struct {
	machine *vm.VM
	hal     HAL
	program []byte

	cycleRate int
	paused    bool
	halted    bool
}

// Option configures a Runner.
type Option func(*Runner)

// WithCycleRate sets the instruction rate in Hz.
func WithCycleRate(rate int) Option {
	return func(r *Runner) {
		r.cycleRate = rate
	}
}

func New(machine *vm.VM, h HAL, program []byte, opts ...Option) *Runner {
	r := &Runner{
		machine:   machine,
		hal:       h,
		program:   program,
		cycleRate: DefaultCycleRate,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Run loads the program and services the machine until the front-end
// requests quit or emulation fails. Backspace reboots the machine with the
// same program; Space toggles pause. A program that jumps to itself halts
// emulation but keeps the window alive until quit or reboot.
func (r *Runner) Run() error {
	if err := r.machine.Load(r.program); err != nil {
		return err
	}

	cyclesPerTick := r.cycleRate / TimerRate
	if cyclesPerTick < 1 {
		cyclesPerTick = 1
	}

	ticker := time.NewTicker(time.Second / TimerRate)
	defer ticker.Stop()

	for range ticker.C {
		err := r.hal.ReadInput(r.keyDown, r.keyUp)
		switch {
		case errors.Is(err, hal.ErrQuit):
			return nil

		case errors.Is(err, hal.ErrReboot):
			if err := r.reboot(); err != nil {
				return err
			}
			continue

		case errors.Is(err, hal.ErrPause):
			r.paused = !r.paused
			slog.Info("pause toggled", "paused", r.paused)

		case err != nil:
			return fmt.Errorf("failed to read input: %w", err)
		}

		if r.paused {
			continue
		}

		if !r.halted {
			if err := r.runCycles(cyclesPerTick); err != nil {
				return err
			}
		}

		r.machine.TickTimers()

		if r.machine.SoundTimer() > 0 {
			if err := r.hal.Beep(); err != nil {
				return err
			}
		}

		if r.machine.DrawFlag() {
			if err := r.hal.Draw(r.machine.Framebuffer()); err != nil {
				return err
			}
			r.machine.ClearDrawFlag()
		}
	}

	return nil
}

func (r *Runner) runCycles(n int) error {
	for i := 0; i < n; i++ {
		err := r.machine.Step()
		if err == nil {
			continue
		}

		if errors.Is(err, vm.ErrInfiniteLoop) {
			slog.Info("program looped", "pc", fmt.Sprintf("0x%04x", r.machine.PC()))
			r.halted = true
			return nil
		}

		return fmt.Errorf("emulation failed: %w", err)
	}

	return nil
}

func (r *Runner) reboot() error {
	slog.Info("reboot")

	r.machine.Reset()
	r.paused = false
	r.halted = false

	return r.machine.Load(r.program)
}

func (r *Runner) keyDown(key vm.Key) {
	r.machine.SetKey(key, true)
}

func (r *Runner) keyUp(key vm.Key) {
	r.machine.SetKey(key, false)
}
