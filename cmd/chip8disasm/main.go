// Package main implements a CHIP-8 ROM disassembler
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/retroenv/retrochip8/internal/config"
	"github.com/retroenv/retrochip8/internal/loader"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrochip8/internal/pipeline"
	"github.com/retroenv/retrogolib/buildinfo"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

type optionFlags struct {
	input  string
	output string
	batch  string

	debug bool
	quiet bool

	noHexComments bool
	noOffsets     bool
}

func main() {
	opts, disasmOptions := readArguments()

	if !opts.quiet {
		printBanner()
	}

	files, err := filesToProcess(opts)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	for _, file := range files {
		opts.input = file
		if opts.batch != "" {
			opts.output = outputFilename(file)
		}

		if err := disasmFile(opts, disasmOptions); err != nil {
			fmt.Println(fmt.Errorf("disassembling '%s' failed: %w", file, err))
			os.Exit(1)
		}
	}
}

func readArguments() (optionFlags, options.Disassembler) {
	flags := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	opts := optionFlags{}

	flags.StringVar(&opts.batch, "batch", "", "process a batch of given path and file mask and automatically name the output files, e.g. *.ch8")
	flags.BoolVar(&opts.debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVar(&opts.noHexComments, "nohexcomments", false, "do not output opcode bytes as hex values in comments")
	flags.BoolVar(&opts.noOffsets, "nooffsets", false, "do not output offsets in comments")
	flags.StringVar(&opts.output, "o", "", "name of the output .asm file, printed on console if no name given")
	flags.BoolVar(&opts.quiet, "q", false, "perform operations quietly")

	err := flags.Parse(os.Args[1:])
	args := flags.Args()

	if err != nil || (len(args) == 0 && opts.batch == "") {
		printBanner()
		fmt.Printf("usage: chip8disasm [options] <file to disassemble>\n\n")
		flags.PrintDefaults()
		os.Exit(1)
	}
	if len(args) > 0 {
		opts.input = args[0]
	}

	disasmOptions := options.NewDisassembler()
	disasmOptions.HexComments = !opts.noHexComments
	disasmOptions.OffsetComments = !opts.noOffsets
	return opts, disasmOptions
}

func printBanner() {
	fmt.Println("[---------------------------------------]")
	fmt.Println("[ chip8disasm - CHIP-8 ROM disassembler ]")
	fmt.Printf("[---------------------------------------]\n\n")
	fmt.Printf("version: %s\n\n", buildinfo.Version(version, commit, date))
}

// filesToProcess returns the input file or all files matching the batch pattern.
func filesToProcess(opts optionFlags) ([]string, error) {
	if opts.batch == "" {
		return []string{opts.input}, nil
	}

	matches, err := filepath.Glob(opts.batch)
	if err != nil {
		return nil, fmt.Errorf("globbing batch pattern: %w", err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no files matching '%s' found", opts.batch)
	}
	return matches, nil
}

// outputFilename replaces the extension of the input file with .asm.
func outputFilename(inputFile string) string {
	ext := filepath.Ext(inputFile)
	return inputFile[:len(inputFile)-len(ext)] + ".asm"
}

func disasmFile(opts optionFlags, disasmOptions options.Disassembler) error {
	data, err := loader.New().Load(options.Program{
		Parameters: options.Parameters{Input: opts.input},
	})
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}

	var outputFile io.WriteCloser
	if opts.output == "" {
		outputFile = os.Stdout
	} else {
		outputFile, err = os.Create(opts.output)
		if err != nil {
			return fmt.Errorf("creating file '%s': %w", opts.output, err)
		}
	}

	logger := config.CreateLogger(opts.debug, opts.quiet)
	if _, err = pipeline.New(logger).Disassemble(context.Background(), data, disasmOptions, outputFile); err != nil {
		_ = outputFile.Close()
		return fmt.Errorf("processing file: %w", err)
	}
	if err = outputFile.Close(); err != nil {
		return fmt.Errorf("closing file: %w", err)
	}
	return nil
}
