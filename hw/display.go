package hw

import (
	"image/color"
	"strings"

	"chip8/hw/hwio"
)

// Display dimensions, in pixels.
const (
	Width  = 64
	Height = 32
)

// Display is the 64x32 monochrome framebuffer. Each row is stored in a
// uint64, the leftmost pixel being the most significant bit.
type Display struct {
	rows   [Height]uint64
	redraw bool
}

func rowBit(x int) uint64 {
	return 1 << (Width - 1 - x)
}

// Pixel reports whether the pixel at (x, y) is lit. Coordinates outside of
// the screen are never lit.
func (d *Display) Pixel(x, y int) bool {
	if x < 0 || x >= Width || y < 0 || y >= Height {
		return false
	}
	return d.rows[y]&rowBit(x) != 0
}

// Clear turns off all pixels.
func (d *Display) Clear() {
	clear(d.rows[:])
	d.redraw = true
}

// Draw XORs sprite onto the screen with its top-left corner at (x, y), one
// byte per row. Rows and columns falling outside of the screen are clipped.
// It reports whether a lit pixel was turned off.
func (d *Display) Draw(x, y int, sprite []byte) (collision bool) {
	for row, line := range sprite {
		py := y + row
		if py >= Height {
			break
		}
		for col := range 8 {
			px := x + col
			if px >= Width {
				break
			}
			if !hwio.GetBit8(line, uint(7-col)) {
				continue
			}
			bit := rowBit(px)
			if d.rows[py]&bit != 0 {
				collision = true
			}
			d.rows[py] ^= bit
		}
	}
	d.redraw = true
	return collision
}

// NeedsRedraw reports whether the screen changed since the last call to
// ConsumeRedraw.
func (d *Display) NeedsRedraw() bool { return d.redraw }

// ConsumeRedraw clears the redraw signal and returns its previous value.
func (d *Display) ConsumeRedraw() bool {
	r := d.redraw
	d.redraw = false
	return r
}

// Frame writes the screen into dst as RGBA pixels, lit pixels in fg, others in
// bg. dst must hold at least Width*Height*4 bytes.
func (d *Display) Frame(dst []byte, fg, bg color.RGBA) {
	_ = dst[Width*Height*4-1]
	off := 0
	for y := range Height {
		row := d.rows[y]
		for x := range Width {
			c := bg
			if row&rowBit(x) != 0 {
				c = fg
			}
			dst[off+0] = c.R
			dst[off+1] = c.G
			dst[off+2] = c.B
			dst[off+3] = c.A
			off += 4
		}
	}
}

// String renders the screen as text, '#' for lit pixels and '.' otherwise.
func (d *Display) String() string {
	var sb strings.Builder
	sb.Grow((Width + 1) * Height)
	for y := range Height {
		for x := range Width {
			if d.rows[y]&rowBit(x) != 0 {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
