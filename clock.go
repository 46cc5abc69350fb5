package main

import (
	"fmt"
	"sync/atomic"
)

// World time arrives as total ticks from the live channel; 24000 ticks make
// one in-game day and tick 0 is 06:00.
const ticksPerDay = 24000

var worldTimeTicks atomic.Int64

func setWorldTime(ticks int64) {
	if ticks > 0 {
		worldTimeTicks.Store(ticks)
	}
}

// worldClockString formats the current world time as "Day N 14:30", with a
// night marker during the dark half of the cycle.
func worldClockString() string {
	ticks := worldTimeTicks.Load()
	if ticks <= 0 {
		return ""
	}
	day := ticks/ticksPerDay + 1
	tod := ticks % ticksPerDay
	hours := (tod/1000 + 6) % 24
	minutes := (tod % 1000) * 60 / 1000
	s := fmt.Sprintf("Day %d %02d:%02d", day, hours, minutes)
	if tod >= 13000 && tod < 23000 {
		s += " (night)"
	}
	return s
}
