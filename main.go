package main

import (
	"chirp8/cmd"

	"github.com/faiface/pixel/pixelgl"
)

func main() {
	// pixelgl needs ownership of the main thread before any window work.
	pixelgl.Run(cmd.Execute)
}
