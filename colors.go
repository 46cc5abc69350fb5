package main

import (
	"image/color"
	"sync"

	"github.com/google/uuid"
)

// playerPalette cycles through a fixed set of marker colors chosen to stay
// readable over both grass and netherrack tiles.
var playerPalette = []color.RGBA{
	{86, 180, 233, 255},  // sky blue
	{230, 159, 0, 255},   // orange
	{0, 158, 115, 255},   // green
	{240, 228, 66, 255},  // yellow
	{204, 121, 167, 255}, // pink
	{213, 94, 0, 255},    // vermilion
	{100, 143, 255, 255}, // indigo
	{255, 176, 0, 255},   // amber
}

var (
	playerColorMu sync.Mutex
	playerColors  = make(map[uuid.UUID]color.RGBA)
)

// colorForPlayer assigns each player a stable palette color on first sight.
// The cache is renderer-owned state, deliberately outside the session map.
func colorForPlayer(id uuid.UUID) color.RGBA {
	playerColorMu.Lock()
	defer playerColorMu.Unlock()
	if c, ok := playerColors[id]; ok {
		return c
	}
	c := playerPalette[len(playerColors)%len(playerPalette)]
	playerColors[id] = c
	return c
}
