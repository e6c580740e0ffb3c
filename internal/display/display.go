// Package display implements the monochrome 64x32 CHIP-8 framebuffer.
package display

import (
	"errors"
	"fmt"
)

const (
	// Width of the display in pixels.
	Width = 64
	// Height of the display in pixels.
	Height = 32

	// SpriteWidth is the number of pixels in a sprite row.
	SpriteWidth = 8

	// DefaultOnColor is the default color of set pixels in ABGR8888 format.
	DefaultOnColor uint32 = 0xFFA0FFA0
	// DefaultOffColor is the default color of cleared pixels in ABGR8888 format.
	DefaultOffColor uint32 = 0xFF000000
)

// ErrInvalidPalette is returned when both palette colors are identical.
var ErrInvalidPalette = errors.New("on and off colors must differ")

// Display is the framebuffer. Every pixel holds either the on or the off color.
type Display struct {
	pixels [Width * Height]uint32

	onColor  uint32
	offColor uint32
}

// New returns a cleared display using the default palette.
func New() *Display {
	d := &Display{
		onColor:  DefaultOnColor,
		offColor: DefaultOffColor,
	}
	d.Clear()
	return d
}

// Clear sets all pixels to the off color.
func (d *Display) Clear() {
	for i := range d.pixels {
		d.pixels[i] = d.offColor
	}
}

// Palette returns the on and off colors.
func (d *Display) Palette() (on, off uint32) {
	return d.onColor, d.offColor
}

// SetPalette changes the on and off colors and remaps all existing pixels
// to the new colors.
func (d *Display) SetPalette(on, off uint32) error {
	if on == off {
		return fmt.Errorf("%w: $%08X", ErrInvalidPalette, on)
	}

	for i, pixel := range d.pixels {
		if pixel == d.onColor {
			d.pixels[i] = on
		} else {
			d.pixels[i] = off
		}
	}

	d.onColor = on
	d.offColor = off
	return nil
}

// PixelOn returns whether the pixel at the given position is set.
// Positions outside of the display are reported as not set.
func (d *Display) PixelOn(x, y int) bool {
	if x < 0 || x >= Width || y < 0 || y >= Height {
		return false
	}
	return d.pixels[y*Width+x] == d.onColor
}

// Pixels returns a copy of the framebuffer in row major order.
func (d *Display) Pixels() []uint32 {
	pixels := make([]uint32, len(d.pixels))
	copy(pixels, d.pixels[:])
	return pixels
}

// VisibleRows returns how many rows of a sprite with the given height
// starting at row y are visible. The origin wraps, the sprite itself is clipped.
func VisibleRows(y byte, height int) int {
	return min(height, Height-int(y)%Height)
}

// DrawSprite XOR-composites the sprite rows at the given origin. The origin wraps
// around the display edges, sprite pixels beyond the right or bottom edge are clipped.
// It returns whether any set pixel was cleared.
func (d *Display) DrawSprite(x, y byte, sprite []byte) bool {
	originX := int(x) % Width
	originY := int(y) % Height
	collision := false

	for row, data := range sprite {
		py := originY + row
		if py >= Height {
			break
		}

		for col := range SpriteWidth {
			px := originX + col
			if px >= Width {
				break
			}
			if data&(0x80>>col) == 0 {
				continue
			}

			index := py*Width + px
			if d.pixels[index] == d.onColor {
				d.pixels[index] = d.offColor
				collision = true
			} else {
				d.pixels[index] = d.onColor
			}
		}
	}

	return collision
}
