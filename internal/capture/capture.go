// Package capture converts display framebuffers to PNG images.
package capture

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
)

// DefaultScale is the size in image pixels of one display pixel.
const DefaultScale = 8

// ErrInvalidFramebuffer is returned if the framebuffer does not match the dimensions.
var ErrInvalidFramebuffer = errors.New("framebuffer size does not match dimensions")

// Image converts a row major framebuffer of 0xAABBGGRR colors to an image,
// scaling every pixel to a scale x scale block.
func Image(pixels []uint32, width, height, scale int) (*image.NRGBA, error) {
	if width <= 0 || height <= 0 || len(pixels) != width*height {
		return nil, fmt.Errorf("%w: %d pixels for %dx%d", ErrInvalidFramebuffer, len(pixels), width, height)
	}
	if scale < 1 {
		scale = 1
	}

	img := image.NewNRGBA(image.Rect(0, 0, width*scale, height*scale))
	for y := range height {
		for x := range width {
			c := toColor(pixels[y*width+x])
			for dy := range scale {
				for dx := range scale {
					img.SetNRGBA(x*scale+dx, y*scale+dy, c)
				}
			}
		}
	}
	return img, nil
}

// Write encodes the framebuffer as PNG to the writer.
func Write(w io.Writer, pixels []uint32, width, height, scale int) error {
	img, err := Image(pixels, width, height, scale)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encoding png: %w", err)
	}
	return nil
}

// Save writes the framebuffer as PNG file.
func Save(fileName string, pixels []uint32, width, height, scale int) error {
	f, err := os.Create(fileName)
	if err != nil {
		return fmt.Errorf("creating capture file %s: %w", fileName, err)
	}

	if err := Write(f, pixels, width, height, scale); err != nil {
		_ = f.Close()
		return err
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("closing capture file %s: %w", fileName, err)
	}
	return nil
}

// toColor converts a 0xAABBGGRR value.
func toColor(c uint32) color.NRGBA {
	return color.NRGBA{
		R: byte(c),
		G: byte(c >> 8),
		B: byte(c >> 16),
		A: byte(c >> 24),
	}
}
