package pipeline

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/retroenv/retrochip8/internal/host"
	"github.com/retroenv/retrochip8/internal/machine"
	"github.com/retroenv/retrochip8/internal/memory"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

var testROM = []byte{
	0xA2, 0x0A, // ld I, $20A
	0x60, 0x00, // ld V0, $00
	0xD0, 0x05, // drw V0, V0, $5
	0x12, 0x06, // jp $206
	0x00, 0x00,
	0xF0, 0x90, 0x90, 0x90, 0xF0, // sprite
}

func TestNew(t *testing.T) {
	logger := log.NewTestLogger(t)
	p := New(logger)

	assert.NotNil(t, p)
	assert.NotNil(t, p.logger)
	assert.NotNil(t, p.loader)
}

func TestDisassemble(t *testing.T) {
	p := New(log.NewTestLogger(t))
	buf := &bytes.Buffer{}

	prg, err := p.Disassemble(context.Background(), testROM, options.Disassembler{}, buf)
	assert.NoError(t, err)
	assert.Equal(t, len(testROM), len(prg.Offsets))

	out := buf.String()
	assert.Contains(t, out, "Start:\n  ld I, _data_20a\n")
	assert.Contains(t, out, "  drw V0, V0, $5\n")
	assert.Contains(t, out, "_label_206:\n  jp _label_206\n")
	assert.Contains(t, out, "_data_20a:\n  .byte $f0, $90, $90, $90, $f0\n")
}

//nolint:funlen
func TestExecute(t *testing.T) {
	t.Run("disassemble to file", func(t *testing.T) {
		dir := t.TempDir()
		output := filepath.Join(dir, "out.asm")
		opts := options.Program{
			Parameters: options.Parameters{Input: createTempFile(t, testROM), Output: output},
			Flags:      options.Flags{Disasm: true},
		}

		err := New(log.NewTestLogger(t)).Execute(context.Background(), opts, options.NewDisassembler())
		assert.NoError(t, err)

		data, err := os.ReadFile(output)
		assert.NoError(t, err)
		assert.Contains(t, string(data), "drw V0, V0, $5")
	})

	t.Run("run frames and capture", func(t *testing.T) {
		capture := filepath.Join(t.TempDir(), "capture.png")
		opts := options.Program{
			Parameters: options.Parameters{Input: createTempFile(t, testROM), Capture: capture},
			Flags:      options.Flags{Frames: 3},
			MachineFlags: options.MachineFlags{
				InstructionsPerTick: machine.DefaultInstructionsPerTick,
				Seed:                1,
			},
		}

		err := New(log.NewTestLogger(t)).Execute(context.Background(), opts, options.NewDisassembler())
		assert.NoError(t, err)

		_, err = os.Stat(capture)
		assert.NoError(t, err)
	})

	t.Run("fault stops headless run", func(t *testing.T) {
		opts := options.Program{
			Parameters:   options.Parameters{Input: createTempFile(t, []byte{0xFF, 0xFF})},
			Flags:        options.Flags{Frames: 3},
			MachineFlags: options.MachineFlags{InstructionsPerTick: 1},
		}

		err := New(log.NewTestLogger(t)).Execute(context.Background(), opts, options.NewDisassembler())
		assert.True(t, errors.Is(err, machine.ErrInvalidOpcode))
	})

	t.Run("missing input file", func(t *testing.T) {
		opts := options.Program{
			Parameters: options.Parameters{Input: filepath.Join(t.TempDir(), "missing.ch8")},
		}

		err := New(log.NewTestLogger(t)).Execute(context.Background(), opts, options.NewDisassembler())
		assert.ErrorContains(t, err, "loading ROM")
	})

	t.Run("invalid color", func(t *testing.T) {
		opts := options.Program{
			Parameters:   options.Parameters{Input: createTempFile(t, testROM)},
			Flags:        options.Flags{Frames: 1},
			MachineFlags: options.MachineFlags{InstructionsPerTick: 1, OnColor: "bright"},
		}

		err := New(log.NewTestLogger(t)).Execute(context.Background(), opts, options.NewDisassembler())
		assert.ErrorContains(t, err, "creating machine configuration")
	})
}

func TestRun(t *testing.T) {
	p := New(log.NewTestLogger(t))
	m, err := machine.New(log.NewTestLogger(t), machine.DefaultConfig())
	assert.NoError(t, err)
	assert.NoError(t, m.LoadROM(testROM))

	ticks := make(chan time.Time, 2)
	ticks <- time.Time{}
	ticks <- time.Time{}

	assert.NoError(t, p.Run(context.Background(), m, host.Headless{}, host.Config{Frames: 2}, ticks))
	assert.True(t, m.PixelOn(0, 0))
	assert.False(t, m.PixelOn(1, 1))
	assert.Equal(t, uint16(memory.ProgramStart+6), m.Registers().PC)
}

func createTempFile(t *testing.T, data []byte) string {
	t.Helper()
	tmpDir := t.TempDir()
	tmpFile := filepath.Join(tmpDir, "test.ch8")
	if err := os.WriteFile(tmpFile, data, 0600); err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	return tmpFile
}
