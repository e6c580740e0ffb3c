// Package app provides the main application helpers for the emulator.
package app

import (
	"hash/crc32"

	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"
)

// PrintBanner prints application version information.
func PrintBanner(logger *log.Logger, opts options.Program, version, commit, date string) {
	if opts.Quiet {
		return
	}

	logger.Info("retrochip8 - CHIP-8 emulator",
		log.String("version", buildinfo.Version(version, commit, date)))
}

// PrintInfo prints the information about the input file.
func PrintInfo(logger *log.Logger, opts options.Program, data []byte) {
	if opts.Quiet {
		return
	}

	mode := "run"
	if opts.Disasm {
		mode = "disassemble"
	}

	logger.Info("Processing CHIP-8 ROM",
		log.String("file", opts.Input),
		log.Int("size", len(data)),
		log.Hex("crc32", crc32.ChecksumIEEE(data)),
		log.String("mode", mode),
	)
}
