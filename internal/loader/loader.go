// Package loader handles ROM file loading operations.
package loader

import (
	"fmt"
	"io"
	"os"

	"github.com/retroenv/retrochip8/internal/memory"
	"github.com/retroenv/retrochip8/internal/options"
)

// Loader handles loading ROM files from disk.
type Loader struct{}

// New creates a new ROM loader.
func New() *Loader {
	return &Loader{}
}

// Load reads the raw program image of the input file. CHIP-8 ROMs have no header,
// the file length determines the program size.
func (l *Loader) Load(opts options.Program) ([]byte, error) {
	file, err := os.Open(opts.Input)
	if err != nil {
		return nil, fmt.Errorf("opening file %s: %w", opts.Input, err)
	}
	defer func() { _ = file.Close() }()

	// read one byte more than fits into memory to detect oversized images
	data, err := io.ReadAll(io.LimitReader(file, memory.MaxProgramSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", opts.Input, err)
	}

	switch {
	case len(data) == 0:
		return nil, fmt.Errorf("loading %s: %w", opts.Input, memory.ErrEmptyProgram)
	case len(data) > memory.MaxProgramSize:
		return nil, fmt.Errorf("loading %s: %w: more than %d bytes", opts.Input, memory.ErrProgramTooLarge, memory.MaxProgramSize)
	}
	return data, nil
}
