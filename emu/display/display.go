// Package display implements the 64x32 monochrome frame buffer with
// toroidal addressing.
package display

import "strings"

// Display dimensions in pixels.
const (
	Width  = 64
	Height = 32
)

// Buffer is the frame buffer. Coordinates wrap modulo the display size on
// both read and write, so sprites drawn over an edge reappear on the
// opposite side.
type Buffer struct {
	pixels [Width * Height]bool
}

// Pixel reports whether the pixel at (x, y) is set.
func (b *Buffer) Pixel(x, y uint8) bool {
	return b.pixels[index(x, y)]
}

// Flip inverts the pixel at (x, y). Sprite drawing XOR-composites through
// this single mutation path.
func (b *Buffer) Flip(x, y uint8) {
	i := index(x, y)
	b.pixels[i] = !b.pixels[i]
}

// Clear unsets every pixel.
func (b *Buffer) Clear() {
	b.pixels = [Width * Height]bool{}
}

func index(x, y uint8) int {
	x %= Width
	y %= Height
	return int(y)*Width + int(x)
}

// String renders the buffer as ASCII art, one row per line.
func (b *Buffer) String() string {
	var sb strings.Builder
	for y := uint8(0); y < Height; y++ {
		sb.WriteString("\n")
		for x := uint8(0); x < Width; x++ {
			if b.Pixel(x, y) {
				sb.WriteString("O")
			} else {
				sb.WriteString(" ")
			}
		}
	}
	return sb.String()
}
