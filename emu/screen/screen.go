// Package screen is the graphical front end: it opens the window, forwards
// key events to the machine, drives the emulation clock from frame deltas
// and rasterises the frame buffer. A debug overlay shows machine state and
// a scrolling disassembly listing.
package screen

import (
	"fmt"
	"image/color"
	"sort"
	"time"

	"chirp8/emu/cpu"
	"chirp8/emu/disasm"
	"chirp8/emu/display"

	"github.com/faiface/pixel"
	"github.com/faiface/pixel/pixelgl"
	"github.com/faiface/pixel/text"
	"golang.org/x/image/font/basicfont"
)

const (
	scale         = 8
	displayWidth  = display.Width * scale
	displayHeight = display.Height * scale
	debugHeight   = 255
	listingWidth  = 200
	listingLines  = 32
	lineHeight    = 15
	margin        = 10
)

var (
	colorBG        = pixel.RGB(0.2, 0.2, 0.3)
	colorText      = pixel.RGB(1, 1, 1)
	colorHighlight = pixel.RGB(0.4, 1.0, 0.5)
	colorPixelOn   = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	colorPixelOff  = color.RGBA{A: 255}
)

type view struct {
	win     *pixelgl.Window
	machine *cpu.Machine
	listing disasm.Listing

	addresses []uint16 // listing keys, sorted
	pic       *pixel.PictureData
	txt       *text.Text
	title     string

	debug  bool
	paused bool

	cycles        uint64
	fastForwarded uint64
}

// Run opens the window and drives the machine until the window closes or
// the machine hits a decode failure. Must be called from the main thread
// via pixelgl.Run.
func Run(m *cpu.Machine, listing disasm.Listing, title string) error {
	cfg := pixelgl.WindowConfig{
		Title:  title,
		Bounds: pixel.R(0, 0, displayWidth+listingWidth, displayHeight+debugHeight),
		VSync:  true,
	}
	win, err := pixelgl.NewWindow(cfg)
	if err != nil {
		return fmt.Errorf("creating window: %w", err)
	}

	addresses := make([]uint16, 0, len(listing))
	for addr := range listing {
		addresses = append(addresses, addr)
	}
	sort.Slice(addresses, func(i, j int) bool { return addresses[i] < addresses[j] })

	v := &view{
		win:       win,
		machine:   m,
		listing:   listing,
		addresses: addresses,
		pic:       pixel.MakePictureData(pixel.R(0, 0, display.Width, display.Height)),
		txt:       text.New(pixel.ZV, text.NewAtlas(basicfont.Face7x13, text.ASCII)),
		title:     title,
		debug:     true,
	}

	frames := 0
	second := time.Tick(time.Second)
	last := time.Now()
	for !win.Closed() {
		dt := time.Since(last).Seconds()
		last = time.Now()

		v.handleInput()
		if !v.paused {
			cycles, err := m.Update(dt)
			if err != nil {
				return err
			}
			v.cycles += uint64(cycles)
			if cycles > 1 {
				v.fastForwarded += uint64(cycles - 1)
			}
		}

		v.draw()
		win.Update()

		frames++
		select {
		case <-second:
			win.SetTitle(fmt.Sprintf("%s | FPS: %d", v.title, frames))
			frames = 0
		default:
		}
	}
	return nil
}

func (v *view) handleInput() {
	for key, button := range keyMap {
		if v.win.JustPressed(button) {
			v.machine.HandleKeyEvent(key, true)
		}
		if v.win.JustReleased(button) {
			v.machine.HandleKeyEvent(key, false)
		}
	}

	switch {
	case v.win.JustPressed(pixelgl.KeyEscape):
		v.win.SetClosed(true)
	case v.win.JustPressed(pixelgl.KeyEnter):
		v.paused = !v.paused
	case v.win.JustPressed(pixelgl.KeyL):
		v.debug = !v.debug
	case v.win.JustPressed(pixelgl.KeyP):
		v.machine.MultiplyClockFrequency(1.25)
	case v.win.JustPressed(pixelgl.KeyO):
		v.machine.MultiplyClockFrequency(0.8)
	}
}

func (v *view) draw() {
	v.win.Clear(colorBG)
	v.drawDisplay()
	if v.debug {
		v.drawDebugArea()
		v.drawListing()
	}
}

func (v *view) drawDisplay() {
	for y := uint8(0); y < display.Height; y++ {
		// PictureData rows run bottom-up, machine rows top-down.
		row := (display.Height - 1 - int(y)) * v.pic.Stride
		for x := uint8(0); x < display.Width; x++ {
			if v.machine.Pixel(x, y) {
				v.pic.Pix[row+int(x)] = colorPixelOn
			} else {
				v.pic.Pix[row+int(x)] = colorPixelOff
			}
		}
	}

	sprite := pixel.NewSprite(v.pic, v.pic.Rect)
	center := pixel.V(displayWidth/2, v.win.Bounds().H()-displayHeight/2)
	sprite.Draw(v.win, pixel.IM.Scaled(pixel.ZV, scale).Moved(center))
}

// writeText draws s at (x, y) measured from the top-left corner.
func (v *view) writeText(x, y float64, col color.Color, s string) {
	v.txt.Clear()
	v.txt.Color = col
	v.txt.Dot = pixel.V(x, v.win.Bounds().H()-y)
	fmt.Fprint(v.txt, s)
	v.txt.Draw(v.win, pixel.IM)
}

func (v *view) drawDebugArea() {
	regs := v.machine.Registers()
	for i, value := range regs {
		y := float64(displayHeight + margin + i*lineHeight)
		v.writeText(margin, y, colorText, fmt.Sprintf("V%X: %02X", i, value))
	}

	x := 80.0
	y := float64(displayHeight + margin)
	v.writeText(x, y, colorText, fmt.Sprintf("I: %04X", v.machine.AddressRegister()))

	y += lineHeight
	pc := v.machine.ProgramCounter()
	v.writeText(x, y, colorText, fmt.Sprintf("PC: %03X", pc))

	y += lineHeight
	v.writeText(x, y, colorText, fmt.Sprintf("Delay timer: %02X", v.machine.DelayTimer()))

	y += lineHeight
	v.writeText(x, y, colorText, fmt.Sprintf("Sound timer: %02X", v.machine.SoundTimer()))

	y += 2 * lineHeight
	v.writeText(x, y, colorText, "Stack:")
	for i, entry := range v.machine.Stack() {
		v.writeText(x+50+float64(i)*28, y, colorText, fmt.Sprintf("%03X", entry))
	}

	y += 2 * lineHeight
	v.writeText(x, y, colorText, "Next instruction:")
	next, ok := v.listing[pc]
	if !ok {
		next = "?"
	}
	v.writeText(x+120, y, colorHighlight, next)

	y += 2 * lineHeight
	v.writeText(x, y, colorText, fmt.Sprintf("Clock frequency: %.0f Hz", v.machine.ClockFrequency()))

	y += 2 * lineHeight
	status := "RUNNING"
	if v.paused {
		status = "PAUSED"
	}
	v.writeText(x, y, colorText, "Status: "+status)

	y += 2 * lineHeight
	v.writeText(x, y, colorText, fmt.Sprintf("Cycles: %d", v.cycles))
	y += lineHeight
	v.writeText(x, y, colorText, fmt.Sprintf("Fast-forwarded cycles: %d", v.fastForwarded))
}

// drawListing renders a window of the disassembly centred on PC, with the
// current instruction highlighted.
func (v *view) drawListing() {
	if len(v.addresses) == 0 {
		return
	}
	pc := v.machine.ProgramCounter()
	pos := sort.Search(len(v.addresses), func(i int) bool { return v.addresses[i] >= pc })

	start := pos - listingLines/2
	if start > len(v.addresses)-listingLines {
		start = len(v.addresses) - listingLines
	}
	if start < 0 {
		start = 0
	}

	x := float64(displayWidth + margin)
	for i := 0; i < listingLines && start+i < len(v.addresses); i++ {
		addr := v.addresses[start+i]
		line := fmt.Sprintf("%03X: %s", addr, v.listing[addr])
		col := colorText
		if addr == pc {
			col = colorHighlight
		}
		v.writeText(x, float64(margin+i*lineHeight), col, line)
	}
}
