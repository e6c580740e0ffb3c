// Package options contains the program options.
package options

// Parameters contains file path options.
type Parameters struct {
	Input   string `flag:"i" usage:"input ROM file"`
	Output  string `flag:"o" usage:"output .asm file of the disassembly (default: stdout)"`
	Capture string `flag:"capture" usage:"PNG file to write display captures to" default:"capture.png"`
}

// Flags contains behavior options.
type Flags struct {
	Disasm bool `flag:"disasm" usage:"print a disassembly of the ROM instead of running it"`
	Frames int  `flag:"frames" usage:"stop after the given number of frames, 0 runs until interrupted"`
	Debug  bool `flag:"debug" usage:"enable debug logging"`
	Quiet  bool `flag:"q" usage:"quiet mode"`
}

// MachineFlags contains virtual machine options.
type MachineFlags struct {
	InstructionsPerTick int    `flag:"ipt" usage:"instructions executed per 60Hz timer tick" default:"11"`
	OnColor             string `flag:"on" usage:"color of set pixels as 0xAABBGGRR" default:"0xFFA0FFA0"`
	OffColor            string `flag:"off" usage:"color of cleared pixels as 0xAABBGGRR" default:"0xFF000000"`
	Paused              bool   `flag:"paused" usage:"start with execution paused"`
	Seed                uint64 `flag:"seed" usage:"seed of the random number generator, 0 seeds from the current time"`
	Breakpoints         string `flag:"break" usage:"comma separated hex addresses to pause execution at"`
}

// Program options of the emulator.
type Program struct {
	Parameters
	Flags
	MachineFlags
}

// Disassembler defines options to control the disassembly output.
type Disassembler struct {
	HexComments    bool
	OffsetComments bool
}

// NewDisassembler returns a new options instance with default options.
func NewDisassembler() Disassembler {
	return Disassembler{
		HexComments:    true,
		OffsetComments: true,
	}
}
