// Package pipeline orchestrates loading a ROM and running or disassembling it.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/retroenv/retrochip8/internal/app"
	"github.com/retroenv/retrochip8/internal/config"
	"github.com/retroenv/retrochip8/internal/disasm"
	"github.com/retroenv/retrochip8/internal/host"
	"github.com/retroenv/retrochip8/internal/loader"
	"github.com/retroenv/retrochip8/internal/machine"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrochip8/internal/program"
	"github.com/retroenv/retrochip8/internal/terminal"
	"github.com/retroenv/retrochip8/internal/writer"
	"github.com/retroenv/retrogolib/log"
)

// Pipeline orchestrates the complete workflow for one ROM file.
type Pipeline struct {
	logger *log.Logger
	loader *loader.Loader
}

// New creates a new pipeline.
func New(logger *log.Logger) *Pipeline {
	return &Pipeline{
		logger: logger,
		loader: loader.New(),
	}
}

// Execute loads the input ROM and either disassembles or runs it.
func (p *Pipeline) Execute(ctx context.Context, opts options.Program, disasmOpts options.Disassembler) error {
	data, err := p.loader.Load(opts)
	if err != nil {
		return fmt.Errorf("loading ROM: %w", err)
	}

	app.PrintInfo(p.logger, opts, data)

	if opts.Disasm {
		return p.disassembleToOutput(ctx, data, opts, disasmOpts)
	}
	return p.run(ctx, data, opts)
}

// Disassemble converts the program image to an assembly listing written to the writer.
func (p *Pipeline) Disassemble(ctx context.Context, data []byte, disasmOpts options.Disassembler,
	w io.Writer) (*program.Program, error) {

	dis, err := disasm.New(p.logger, data, disasmOpts)
	if err != nil {
		return nil, fmt.Errorf("creating disassembler: %w", err)
	}

	prg, err := dis.Process(ctx)
	if err != nil {
		return nil, fmt.Errorf("processing disassembly: %w", err)
	}

	if err := writer.New(prg, w, disasmOpts).Write(); err != nil {
		return nil, fmt.Errorf("writing disassembly: %w", err)
	}
	return prg, nil
}

// Run ticks the machine using the frontend until the context is cancelled
// or the host loop ends.
func (p *Pipeline) Run(ctx context.Context, m *machine.Machine, frontend host.Frontend,
	hostCfg host.Config, ticks <-chan time.Time) error {

	h := host.New(p.logger, m, frontend, hostCfg)
	if err := h.Run(ctx, ticks); err != nil {
		return err
	}

	p.logger.Debug("Host loop finished",
		log.Int("frames", h.Frames()),
		log.Int("cycles", int(m.Cycles())))
	return nil
}

func (p *Pipeline) disassembleToOutput(ctx context.Context, data []byte, opts options.Program,
	disasmOpts options.Disassembler) error {

	w, err := createWriter(opts)
	if err != nil {
		return fmt.Errorf("creating writer: %w", err)
	}
	defer func() {
		if closer, ok := w.(io.Closer); ok && w != os.Stdout {
			_ = closer.Close()
		}
	}()

	_, err = p.Disassemble(ctx, data, disasmOpts, w)
	return err
}

func (p *Pipeline) run(ctx context.Context, data []byte, opts options.Program) error {
	cfg, err := config.Machine(opts)
	if err != nil {
		return fmt.Errorf("creating machine configuration: %w", err)
	}

	m, err := machine.New(p.logger, cfg)
	if err != nil {
		return fmt.Errorf("creating machine: %w", err)
	}
	if err := m.LoadROM(data); err != nil {
		return fmt.Errorf("loading ROM into machine: %w", err)
	}

	hostCfg := host.Config{
		Frames:      opts.Frames,
		CaptureFile: opts.Capture,
	}

	var frontend host.Frontend
	if opts.Frames > 0 {
		frontend = host.Headless{}
		hostCfg.StopOnFault = true
	} else {
		term := terminal.New(p.logger, os.Stdin, os.Stdout)
		if err := term.Start(); err != nil {
			return fmt.Errorf("starting terminal: %w", err)
		}
		defer func() {
			if err := term.Close(); err != nil {
				p.logger.Error("Restoring terminal failed", log.Err(err))
			}
		}()
		frontend = term
	}

	ticker := time.NewTicker(host.FrameTime)
	defer ticker.Stop()

	return p.Run(ctx, m, frontend, hostCfg, ticker.C)
}

func createWriter(opts options.Program) (io.Writer, error) {
	if opts.Output == "" {
		return os.Stdout, nil
	}

	file, err := os.Create(opts.Output)
	if err != nil {
		return nil, fmt.Errorf("creating output file %s: %w", opts.Output, err)
	}
	return file, nil
}
