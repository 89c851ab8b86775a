package screen

import "github.com/faiface/pixel/pixelgl"

// keyMap translates host keyboard buttons to the 16-key CHIP-8 pad.
var keyMap = map[uint8]pixelgl.Button{
	0x0: pixelgl.Key0,
	0x1: pixelgl.Key1,
	0x2: pixelgl.Key2,
	0x3: pixelgl.Key3,
	0x4: pixelgl.Key4,
	0x5: pixelgl.Key5,
	0x6: pixelgl.Key6,
	0x7: pixelgl.Key7,
	0x8: pixelgl.Key8,
	0x9: pixelgl.Key9,
	0xA: pixelgl.KeyA,
	0xB: pixelgl.KeyB,
	0xC: pixelgl.KeyC,
	0xD: pixelgl.KeyD,
	0xE: pixelgl.KeyE,
	0xF: pixelgl.KeyF,
}
