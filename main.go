package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/okanin/chip8vm/internal/emulator"
	"github.com/okanin/chip8vm/internal/hal"
	"github.com/okanin/chip8vm/internal/vm"
)

func main() {
	cmd := &cobra.Command{
		Use:           fmt.Sprintf("%s PATH_TO_ROM_FILE", filepath.Base(os.Args[0])),
		Short:         "Run emulator",
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
	}

	verbose := cmd.Flags().BoolP("verbose", "v", false, "enable verbose logging")
	scale := cmd.Flags().Int("scale", hal.DefaultScale, "window scale factor")
	cycleRate := cmd.Flags().Int("cycle-rate", emulator.DefaultCycleRate, "instructions per second")

	defaults := vm.DefaultQuirks()
	quirks := vm.Quirks{}
	cmd.Flags().BoolVar(&quirks.VFReset, "quirk-vf-reset", defaults.VFReset, "logical opcodes reset VF")
	cmd.Flags().BoolVar(&quirks.Memory, "quirk-memory", defaults.Memory, "save/load opcodes increment the index register")
	cmd.Flags().BoolVar(&quirks.Clipping, "quirk-clipping", defaults.Clipping, "sprites clip at screen edges instead of wrapping")
	cmd.Flags().BoolVar(&quirks.Shifting, "quirk-shifting", defaults.Shifting, "shift opcodes operate on VX in place")
	cmd.Flags().BoolVar(&quirks.Jumping, "quirk-jumping", defaults.Jumping, "offset jump uses VX instead of V0")
	cmd.Flags().BoolVar(&quirks.Release, "quirk-release", defaults.Release, "get-key opcode waits for key release")

	cmd.RunE = func(_ *cobra.Command, args []string) error {
		loggerOpts := &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}
		if *verbose {
			loggerOpts.Level = slog.LevelDebug
		}

		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, loggerOpts)))

		path := args[0]
		program, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("unable to load file %q: %w", path, err)
		}

		h, err := hal.New(*scale)
		if err != nil {
			return fmt.Errorf("unable to initialize hal: %w", err)
		}
		defer h.Shutdown()

		machine := vm.New(vm.WithQuirks(quirks))

		runner := emulator.New(machine, h, program, emulator.WithCycleRate(*cycleRate))
		return runner.Run()
	}

	cmd.SetArgs(os.Args[1:])
	if err := cmd.Execute(); err != nil {
		slog.Error("fatal error", "err", err)
		os.Exit(1)
	}
}
