package loader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/retroenv/retrochip8/internal/memory"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrogolib/assert"
)

func TestLoad(t *testing.T) {
	t.Run("load ROM file", func(t *testing.T) {
		data := []byte{0x00, 0xE0, 0x12, 0x00}
		tmpFile := createTempFile(t, data)

		loaded, err := New().Load(options.Program{Parameters: options.Parameters{Input: tmpFile}})
		assert.NoError(t, err)
		assert.Equal(t, data, loaded)
	})

	t.Run("load largest ROM file", func(t *testing.T) {
		tmpFile := createTempFile(t, make([]byte, memory.MaxProgramSize))

		loaded, err := New().Load(options.Program{Parameters: options.Parameters{Input: tmpFile}})
		assert.NoError(t, err)
		assert.Equal(t, memory.MaxProgramSize, len(loaded))
	})

	t.Run("oversized ROM file", func(t *testing.T) {
		tmpFile := createTempFile(t, make([]byte, memory.MaxProgramSize+1))

		_, err := New().Load(options.Program{Parameters: options.Parameters{Input: tmpFile}})
		assert.True(t, errors.Is(err, memory.ErrProgramTooLarge))
	})

	t.Run("empty ROM file", func(t *testing.T) {
		tmpFile := createTempFile(t, nil)

		_, err := New().Load(options.Program{Parameters: options.Parameters{Input: tmpFile}})
		assert.True(t, errors.Is(err, memory.ErrEmptyProgram))
	})

	t.Run("missing file", func(t *testing.T) {
		input := filepath.Join(t.TempDir(), "missing.ch8")

		_, err := New().Load(options.Program{Parameters: options.Parameters{Input: input}})
		assert.True(t, errors.Is(err, os.ErrNotExist))
		assert.ErrorContains(t, err, "opening file")
	})
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
