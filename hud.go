package main

import (
	"fmt"
	"image/color"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hajimehoshi/ebiten/v2"
	text "github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/hako/durafmt"
)

const (
	rosterWidth  = 180
	rosterRowH   = 20
	rosterTop    = 56
	hudTextColor = 255
)

var hudColor = color.RGBA{hudTextColor, hudTextColor, hudTextColor, 230}
var hudDimColor = color.RGBA{170, 170, 170, 200}
var panelColor = color.RGBA{0, 0, 0, 110}

// rosterRow is one clickable line of the active-player roster, rebuilt each
// frame by drawRoster and hit-tested by the input path.
type rosterRow struct {
	y0, y1 int
	id     string
}

var rosterRows []rosterRow

func connStateString() string {
	switch live.State() {
	case stateConnected:
		return "connected"
	case stateConnecting:
		return "connecting"
	default:
		return "disconnected"
	}
}

// fmtDistance renders a planar distance in meters, switching to kilometers
// past 10k.
func fmtDistance(m float64) string {
	if m >= 10000 {
		return humanize.CommafWithDigits(m/1000, 1) + " km"
	}
	return humanize.CommafWithDigits(m, 0) + " m"
}

func sessionDuration(s *playerSession) time.Duration {
	start := time.UnixMilli(s.StartedAt)
	if s.Active {
		return time.Since(start)
	}
	return time.UnixMilli(s.EndedAt).Sub(start)
}

func drawHUD(screen *ebiten.Image) {
	mx, my := ebiten.CursorPosition()
	wx, wz := view.screenToWorld(float64(mx), float64(my), screenW, screenH)

	lines := []string{
		fmt.Sprintf("%s | %s | zoom %.2fx", connStateString(), currentDim(), view.scale),
		fmt.Sprintf("cursor %.0f, %.0f", wx, wz),
	}
	if clock := worldClockString(); clock != "" {
		lines = append(lines, clock)
	}

	id := hoveredID
	if id == "" {
		id = selectedID
	}
	if id != "" {
		if s := getSession(id); s != nil {
			sessionsMu.RLock()
			stats := s.Stats
			name := s.Name
			active := s.Active
			d := sessionDuration(s)
			sessionsMu.RUnlock()
			state := "online"
			if !active {
				state = "offline"
			}
			dur := durafmt.Parse(d.Truncate(time.Second)).LimitFirstN(2)
			lines = append(lines, fmt.Sprintf("%s (%s): %s travelled, %d samples, %s",
				name, state, fmtDistance(stats.DistanceXZ), stats.Samples, dur))
		}
	}

	pad := 6.0
	lineH := gs.HUDFontSize + 5
	boxH := float32(pad*2 + lineH*float64(len(lines)))
	vector.DrawFilledRect(screen, 0, 0, float32(screenW), boxH, panelColor, false)
	for i, line := range lines {
		drawShadowedText(screen, line, pad, pad+lineH*float64(i), gs.HUDFontSize, hudColor)
	}
}

func drawRoster(screen *ebiten.Image) {
	list := activeSessionsIn(currentDim())
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })

	rosterRows = rosterRows[:0]
	x := float32(screenW - rosterWidth)
	h := float32(rosterTop + rosterRowH*(len(list)+1))
	vector.DrawFilledRect(screen, x, rosterTop, rosterWidth, h, panelColor, false)

	title := fmt.Sprintf("Players (%d)", len(list))
	if gs.ShowOfflinePaths {
		active, total := sessionCount()
		title = fmt.Sprintf("Players (%d, %d past)", active, total-active)
	}
	drawShadowedText(screen, title, float64(x)+8, rosterTop+3, gs.HUDFontSize, hudDimColor)

	y := rosterTop + rosterRowH
	for _, s := range list {
		col := colorForPlayer(s.PlayerID)
		if s.ID == selectedID || s.ID == hoveredID {
			vector.DrawFilledRect(screen, x, float32(y), rosterWidth, rosterRowH, color.RGBA{255, 255, 255, 26}, false)
		}
		vector.DrawFilledCircle(screen, x+12, float32(y+rosterRowH/2), 4, col, true)
		drawShadowedText(screen, s.Name, float64(x)+24, float64(y)+3, gs.HUDFontSize, hudColor)
		rosterRows = append(rosterRows, rosterRow{y0: y, y1: y + rosterRowH, id: s.ID})
		y += rosterRowH
	}
}

// rosterHit reports which roster row, if any, covers the given screen point.
func rosterHit(mx, my int) (string, bool) {
	if mx < screenW-rosterWidth {
		return "", false
	}
	for _, r := range rosterRows {
		if my >= r.y0 && my < r.y1 {
			return r.id, true
		}
	}
	return "", false
}

func drawConsole(screen *ebiten.Image) {
	format := gs.TimestampFormat
	msgs := consoleLog.Tail(consoleVisible, format, gs.ConsoleTimestamps)
	if len(msgs) == 0 {
		return
	}
	lineH := gs.ConsoleFontSize + 4
	y := float64(screenH) - lineH*float64(len(msgs)) - 6
	for i, msg := range msgs {
		drawConsoleLine(screen, msg, 8, y+lineH*float64(i))
	}
}

func drawConsoleLine(screen *ebiten.Image, msg string, x, y float64) {
	face := fontFace(gs.ConsoleFontSize)
	w, h := text.Measure(msg, face, 0)
	vector.DrawFilledRect(screen, float32(x-4), float32(y-2), float32(w+8), float32(h+4), panelColor, false)
	drawShadowedText(screen, msg, x, y, gs.ConsoleFontSize, hudColor)
}
