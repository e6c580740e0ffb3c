// Package config handles application configuration and setup
package config

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/retroenv/retrochip8/internal/machine"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrogolib/log"
)

// CreateLogger creates a logger with appropriate settings
func CreateLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}

// Machine converts the program options into a virtual machine configuration.
func Machine(opts options.Program) (machine.Config, error) {
	cfg := machine.DefaultConfig()
	cfg.InstructionsPerTick = opts.InstructionsPerTick
	cfg.Paused = opts.Paused

	var err error
	if opts.OnColor != "" {
		if cfg.OnColor, err = ParseColor(opts.OnColor); err != nil {
			return cfg, fmt.Errorf("parsing on color: %w", err)
		}
	}
	if opts.OffColor != "" {
		if cfg.OffColor, err = ParseColor(opts.OffColor); err != nil {
			return cfg, fmt.Errorf("parsing off color: %w", err)
		}
	}

	if opts.Seed != 0 {
		cfg.Random = rand.New(rand.NewPCG(opts.Seed, opts.Seed))
	}

	if cfg.Breakpoints, err = ParseAddresses(opts.Breakpoints); err != nil {
		return cfg, fmt.Errorf("parsing breakpoints: %w", err)
	}
	return cfg, nil
}

// ParseAddresses parses a comma separated list of hex addresses with optional
// 0x or $ prefix. An empty string returns no addresses.
func ParseAddresses(s string) ([]uint16, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}

	parts := strings.Split(s, ",")
	addresses := make([]uint16, 0, len(parts))
	for _, part := range parts {
		value := strings.TrimSpace(strings.ToLower(part))
		value = strings.TrimPrefix(strings.TrimPrefix(value, "0x"), "$")

		address, err := strconv.ParseUint(value, 16, 16)
		if err != nil {
			return nil, fmt.Errorf("invalid address '%s': %w", part, err)
		}
		addresses = append(addresses, uint16(address))
	}
	return addresses, nil
}

// ParseColor parses a 32-bit hex color value with optional 0x or # prefix.
func ParseColor(s string) (uint32, error) {
	value := strings.TrimPrefix(strings.TrimPrefix(strings.ToLower(s), "0x"), "#")
	color, err := strconv.ParseUint(value, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid color '%s': %w", s, err)
	}
	return uint32(color), nil
}
