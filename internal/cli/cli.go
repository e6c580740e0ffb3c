// Package cli handles command line interface logic
package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/retroenv/retrochip8/internal/machine"
	"github.com/retroenv/retrochip8/internal/options"
)

// ParseFlags parses command line flags and returns program and disassembler options
func ParseFlags() (options.Program, options.Disassembler, error) {
	flags := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	var opts options.Program
	readOptionFlags(flags, &opts)

	disasmOptions := options.NewDisassembler()
	noHexComments, noOffsets := readDisasmOptionFlags(flags)

	err := flags.Parse(os.Args[1:])
	args := flags.Args()
	if err != nil || (len(args) == 0 && opts.Input == "") {
		return opts, disasmOptions, &UsageError{flags: flags}
	}

	if err := validateArgs(args); err != nil {
		return opts, disasmOptions, err
	}

	if opts.Input == "" {
		opts.Input = args[0]
	}

	if err := validateOptions(opts); err != nil {
		return opts, disasmOptions, err
	}

	// apply inverse logic for hex comments and offsets
	disasmOptions.HexComments = !*noHexComments
	disasmOptions.OffsetComments = !*noOffsets

	return opts, disasmOptions, nil
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

func (e *UsageError) ShowUsage() {
	fmt.Printf("usage: retrochip8 [options] <ROM file>\n\n")
	if e.flags != nil {
		e.flags.PrintDefaults()
	}
	fmt.Println()
}

// validateArgs checks if arguments are in correct order
func validateArgs(args []string) error {
	for i, arg := range args {
		if i > 0 && arg[0] == '-' {
			return &UsageError{
				msg: fmt.Sprintf("Potential argument %s found after ROM file, please pass the ROM file as last argument", arg),
			}
		}
	}
	return nil
}

// validateOptions checks option values that the flag parser can not validate.
func validateOptions(opts options.Program) error {
	if opts.InstructionsPerTick < 1 {
		return fmt.Errorf("invalid instructions per tick %d: %w", opts.InstructionsPerTick, machine.ErrInvalidInstructionsPerTick)
	}
	if opts.Frames < 0 {
		return fmt.Errorf("invalid frame count %d: must not be negative", opts.Frames)
	}
	return nil
}

func readOptionFlags(flags *flag.FlagSet, opts *options.Program) {
	flags.StringVar(&opts.Input, "i", "", "name of the input ROM file")
	flags.StringVar(&opts.Output, "o", "", "name of the output .asm file of the disassembly, printed on console if no name given")
	flags.StringVar(&opts.Capture, "capture", "capture.png", "name of the PNG file that display captures are written to")
	flags.BoolVar(&opts.Disasm, "disasm", false, "print a disassembly of the ROM instead of running it")
	flags.IntVar(&opts.Frames, "frames", 0, "stop after the given number of frames and capture the display, 0 runs until interrupted")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")

	flags.IntVar(&opts.InstructionsPerTick, "ipt", machine.DefaultInstructionsPerTick, "instructions executed per 60Hz timer tick")
	flags.StringVar(&opts.OnColor, "on", "0xFFA0FFA0", "color of set pixels in 0xAABBGGRR format")
	flags.StringVar(&opts.OffColor, "off", "0xFF000000", "color of cleared pixels in 0xAABBGGRR format")
	flags.BoolVar(&opts.Paused, "paused", false, "start with execution paused, press n to step and p to resume")
	flags.Uint64Var(&opts.Seed, "seed", 0, "seed of the random number generator, 0 seeds from the current time")
	flags.StringVar(&opts.Breakpoints, "break", "", "comma separated hex addresses to pause execution at, e.g. 0x200,0x23A")
}

func readDisasmOptionFlags(flags *flag.FlagSet) (noHexComments, noOffsets *bool) {
	noHexComments = flags.Bool("nohexcomments", false, "do not output opcode bytes as hex values in comments")
	noOffsets = flags.Bool("nooffsets", false, "do not output offsets in comments")
	return noHexComments, noOffsets
}
