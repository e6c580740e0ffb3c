package app

import (
	"testing"

	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrogolib/log"
)

func TestPrint(t *testing.T) {
	logger := log.NewTestLogger(t)
	opts := options.Program{
		Parameters: options.Parameters{Input: "pong.ch8"},
		Flags:      options.Flags{Disasm: true},
	}

	PrintBanner(logger, opts, "1.0.0", "abcdef0123", "2026-10-19")
	PrintInfo(logger, opts, []byte{0x00, 0xE0})

	opts.Quiet = true
	PrintBanner(logger, opts, "dev", "", "")
	PrintInfo(logger, opts, nil)
}
