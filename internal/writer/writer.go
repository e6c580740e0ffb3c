// Package writer implements the assembly listing output of a disassembled program.
package writer

import (
	"fmt"
	"io"
	"strings"

	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrochip8/internal/program"
)

const dataBytesPerLine = 8

type lineWriterFunc func(line string, byteCount int) error

// Writer implements the assembly file writing.
type Writer struct {
	app     *program.Program
	options options.Disassembler
	writer  io.Writer
}

// New creates a new writer.
func New(app *program.Program, writer io.Writer, options options.Disassembler) *Writer {
	return &Writer{
		app:     app,
		options: options,
		writer:  writer,
	}
}

// Write writes the header and all program offsets.
func (w Writer) Write() error {
	if err := w.WriteCommentHeader(); err != nil {
		return err
	}
	return w.ProcessOffsets()
}

// WriteCommentHeader writes the CRC32 checksum and code base address as comments to the output.
func (w Writer) WriteCommentHeader() error {
	if _, err := fmt.Fprintf(w.writer, "; CRC32 checksum: %08x\n", w.app.Checksum); err != nil {
		return fmt.Errorf("writing checksum: %w", err)
	}
	if _, err := fmt.Fprintf(w.writer, "; Code base address: $%04x\n\n", w.app.CodeBaseAddress); err != nil {
		return fmt.Errorf("writing code base address: %w", err)
	}
	return nil
}

// ProcessOffsets writes all code offsets, labels and their comments.
func (w Writer) ProcessOffsets() error {
	var previousLineWasCode bool
	offsets := w.app.Offsets

	for i := 0; i < len(offsets); i++ {
		offset := offsets[i]

		if err := w.writeLabel(i, offset); err != nil {
			return err
		}

		// print an empty line in case of data after code and vice versa
		isCode := offset.IsType(program.CodeOffset)
		if i > 0 && offset.Label == "" && isCode != previousLineWasCode {
			if _, err := fmt.Fprintln(w.writer); err != nil {
				return fmt.Errorf("writing line: %w", err)
			}
		}
		previousLineWasCode = isCode

		adjustment, err := w.writeOffset(i, offset)
		if err != nil {
			return err
		}
		i += adjustment
	}
	return nil
}

// BundleDataWrites bundles writes of data bytes to print dataBytesPerLine bytes per line.
func (w Writer) BundleDataWrites(data []byte, lineWriter lineWriterFunc) error {
	remaining := len(data)
	for i := 0; remaining > 0; {
		toWrite := min(remaining, dataBytesPerLine)

		buf := &strings.Builder{}
		buf.WriteString(".byte ")
		for j := range toWrite {
			if j > 0 {
				buf.WriteString(", ")
			}
			fmt.Fprintf(buf, "$%02x", data[i+j])
		}

		if err := lineWriter(buf.String(), toWrite); err != nil {
			return fmt.Errorf("writing data line: %w", err)
		}

		i += toWrite
		remaining -= toWrite
	}

	return nil
}

func (w Writer) writeOffset(index int, offset program.Offset) (int, error) {
	if offset.IsType(program.CodeOffset) && len(offset.Data) == 0 {
		return 0, nil
	}

	if offset.IsType(program.DataOffset) {
		count, err := w.bundleDataWrites(index)
		if err != nil {
			return 0, err
		}
		return count - 1, nil
	}

	if err := w.writeCodeLine(offset); err != nil {
		return 0, fmt.Errorf("writing code line: %w", err)
	}
	return 0, nil
}

func (w Writer) writeLabel(index int, offset program.Offset) error {
	if offset.Label == "" {
		return nil
	}

	if index > 0 {
		if _, err := fmt.Fprintln(w.writer); err != nil {
			return fmt.Errorf("writing line: %w", err)
		}
	}

	if offset.LabelComment == "" {
		if _, err := fmt.Fprintf(w.writer, "%s:\n", offset.Label); err != nil {
			return fmt.Errorf("writing label: %w", err)
		}
	} else {
		if _, err := fmt.Fprintf(w.writer, "%-32s ; %s\n", offset.Label+":", offset.LabelComment); err != nil {
			return fmt.Errorf("writing label: %w", err)
		}
	}
	return nil
}

func (w Writer) writeCodeLine(offset program.Offset) error {
	comment := w.comment(offset)
	if comment == "" {
		if _, err := fmt.Fprintf(w.writer, "  %s\n", offset.Code); err != nil {
			return fmt.Errorf("writing line: %w", err)
		}
	} else {
		if _, err := fmt.Fprintf(w.writer, "  %-30s ; %s\n", offset.Code, comment); err != nil {
			return fmt.Errorf("writing line: %w", err)
		}
	}
	return nil
}

// comment returns the line comment consisting of the enabled address and hex comments
// and the comment of the offset itself.
func (w Writer) comment(offset program.Offset) string {
	var parts []string
	if w.options.OffsetComments {
		parts = append(parts, fmt.Sprintf("$%04X", offset.Address))
	}
	if w.options.HexComments && offset.IsType(program.CodeOffset) {
		parts = append(parts, offset.HexCodeComment())
	}
	if offset.Comment != "" {
		parts = append(parts, offset.Comment)
	}
	return strings.Join(parts, "  ")
}

// bundleDataWrites writes the data bytes starting at the index as bundled lines
// and returns the number of bytes written.
func (w Writer) bundleDataWrites(startIndex int) (int, error) {
	data := w.dataBytes(startIndex)

	currentIndex := startIndex
	lineWriter := func(line string, byteCount int) error {
		var err error

		offset := w.app.Offsets[currentIndex]
		comment := w.comment(offset)
		if comment == "" {
			_, err = fmt.Fprintf(w.writer, "  %s\n", line)
		} else {
			_, err = fmt.Fprintf(w.writer, "  %-30s ; %s\n", line, comment)
		}
		if err != nil {
			return fmt.Errorf("writing data line: %w", err)
		}

		currentIndex += byteCount
		return nil
	}

	if err := w.BundleDataWrites(data, lineWriter); err != nil {
		return 0, fmt.Errorf("writing data: %w", err)
	}

	return len(data), nil
}

func (w Writer) dataBytes(startIndex int) []byte {
	var data []byte

	for i := startIndex; i < len(w.app.Offsets); i++ {
		offset := w.app.Offsets[i]

		if !offset.IsType(program.DataOffset) {
			break
		}
		// stop at first label after start index
		if i > startIndex && offset.Label != "" {
			break
		}

		data = append(data, offset.Data...)
	}

	return data
}
