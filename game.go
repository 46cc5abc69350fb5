package main

import (
	"log"
	"math"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

const (
	// hoverRadiusPx is the pick radius around active-player markers, constant
	// in screen space so it tightens in world units as the view zooms in.
	hoverRadiusPx = 12.0
	// panBoundsPad keeps the view center within the explored bounds plus this
	// many world units of slack.
	panBoundsPad = 256.0
	// fitMaxScale caps fit-all zoom so a tiny explored area is not blown up
	// to a wall of pixels.
	fitMaxScale = 4.0

	wheelZoomStep   = 1.15
	doubleClickTime = 350 * time.Millisecond
)

var (
	screenW = initialWindowW
	screenH = initialWindowH

	dimMu     sync.Mutex
	activeDim = "overworld"

	selectedID string
	hoveredID  string

	dragging         bool
	dragLastX        int
	dragLastY        int
	lastClickTime    time.Time
	lastClickX       int
	lastClickY       int
	suppressNextDrag bool
)

func currentDim() string {
	dimMu.Lock()
	d := activeDim
	dimMu.Unlock()
	return d
}

// setDimension switches the viewed dimension: tile cache and bounds reset,
// bounds reseed from any stored path points, and the choice is persisted.
func setDimension(dim string) {
	if !validDimension(dim) {
		return
	}
	dimMu.Lock()
	same := activeDim == dim
	activeDim = dim
	dimMu.Unlock()
	if same {
		return
	}
	invalidateTiles(false)
	seedBoundsFromSessions(dim)
	go prefetchBoundsTiles(dim)
	gs.LastDimension = dim
	settingsDirty = true
	consoleMessage("Dimension: " + dim)
}

type Game struct{}

func (g *Game) Update() error {
	if gameCtx.Err() != nil {
		return ebiten.Termination
	}

	mx, my := ebiten.CursorPosition()

	updateHover(mx, my)
	handleWheel(mx, my)
	handleMouse(mx, my)
	handleKeys()

	if gs.FollowSelected && selectedID != "" {
		if p, active, ok := sessionMarker(selectedID); ok && active && p.Dim == currentDim() {
			view.centerOn(p.X, p.Z)
		}
	}

	saveSettingsIfDirty()
	return nil
}

func handleWheel(mx, my int) {
	_, wy := ebiten.Wheel()
	if wy == 0 {
		return
	}
	factor := math.Pow(wheelZoomStep, wy)
	view.zoomAt(factor, float64(mx), float64(my), screenW, screenH)
	clampPan()
}

func handleMouse(mx, my int) {
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		if id, ok := rosterHit(mx, my); ok {
			selectSession(id)
			suppressNextDrag = true
		} else {
			now := time.Now()
			dx, dy := mx-lastClickX, my-lastClickY
			if now.Sub(lastClickTime) < doubleClickTime && dx*dx+dy*dy < 25 {
				// Double-click recenters on the clicked point, scale untouched.
				wx, wz := view.screenToWorld(float64(mx), float64(my), screenW, screenH)
				view.centerOn(wx, wz)
				clampPan()
				lastClickTime = time.Time{}
			} else {
				lastClickTime = now
				lastClickX, lastClickY = mx, my
				if hoveredID != "" {
					selectSession(hoveredID)
				}
			}
			dragging = true
			dragLastX, dragLastY = mx, my
		}
	}

	if dragging && ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) && !suppressNextDrag {
		dx := mx - dragLastX
		dy := my - dragLastY
		if dx != 0 || dy != 0 {
			view.offsetX += float64(dx)
			view.offsetY += float64(dy)
			clampPan()
			gs.FollowSelected = false
		}
		dragLastX, dragLastY = mx, my
	}

	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		dragging = false
		suppressNextDrag = false
	}
}

func handleKeys() {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyDigit1):
		setDimension("overworld")
	case inpututil.IsKeyJustPressed(ebiten.KeyDigit2):
		setDimension("nether")
	case inpututil.IsKeyJustPressed(ebiten.KeyDigit3):
		setDimension("end")
	case inpututil.IsKeyJustPressed(ebiten.KeyTab):
		cycleDimension()
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyG) {
		gs.ShowGrid = !gs.ShowGrid
		settingsDirty = true
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		gs.ShowLabels = !gs.ShowLabels
		settingsDirty = true
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyO) {
		gs.ShowOfflinePaths = !gs.ShowOfflinePaths
		settingsDirty = true
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyL) {
		gs.FollowSelected = !gs.FollowSelected
		settingsDirty = true
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF) {
		fitAll()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		selectedID = ""
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEqual) || inpututil.IsKeyJustPressed(ebiten.KeyNumpadAdd) {
		zoomStep(wheelZoomStep)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyMinus) || inpututil.IsKeyJustPressed(ebiten.KeyNumpadSubtract) {
		zoomStep(1 / wheelZoomStep)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		refreshTiles(ebiten.IsKeyPressed(ebiten.KeyShift))
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyT) {
		if ebiten.IsKeyPressed(ebiten.KeyShift) {
			teleportToCursor()
		} else {
			teleportToSelected()
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		copyTeleportCommand()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyK) {
		live.Reconnect(gameCtx)
		consoleMessage("Reconnecting...")
	}
}

func cycleDimension() {
	cur := currentDim()
	for i, d := range dimensions {
		if d == cur {
			setDimension(dimensions[(i+1)%len(dimensions)])
			return
		}
	}
}

func selectSession(id string) {
	if selectedID == id {
		selectedID = ""
		return
	}
	selectedID = id
	if p, _, ok := sessionMarker(id); ok && p.Dim == currentDim() {
		centerOnWorld(p.X, p.Z, 1.0)
	}
}

// updateHover picks the nearest active marker within hoverRadiusPx of the
// cursor, for highlight and click-to-select.
func updateHover(mx, my int) {
	hoveredID = ""
	best := hoverRadiusPx * hoverRadiusPx
	for _, s := range activeSessionsIn(currentDim()) {
		p, _, ok := sessionMarker(s.ID)
		if !ok {
			continue
		}
		sx, sy := view.worldToScreen(p.X, p.Z, screenW, screenH)
		dx := sx - float64(mx)
		dy := sy - float64(my)
		if d := dx*dx + dy*dy; d <= best {
			best = d
			hoveredID = s.ID
		}
	}
}

// clampPan keeps the implied world-space view center inside the explored
// bounds expanded by panBoundsPad. No-op until bounds initialize.
func clampPan() {
	b := snapshotBounds()
	if !b.initialized {
		return
	}
	cx, cz := view.screenToWorld(float64(screenW)/2, float64(screenH)/2, screenW, screenH)
	nx := clampF(cx, b.minX-panBoundsPad, b.maxX+panBoundsPad)
	nz := clampF(cz, b.minZ-panBoundsPad, b.maxZ+panBoundsPad)
	if nx != cx || nz != cz {
		view.centerOn(nx, nz)
	}
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// centerOnWorld recenters the view on a world point, raising the scale to at
// least minZoom when requested.
func centerOnWorld(x, z, minZoom float64) {
	if minZoom > 0 && view.scale < minZoom {
		view.scale = minZoom
		view.clampScale()
	}
	view.centerOn(x, z)
	clampPan()
}

// fitAll rescales and recenters so the whole explored bounds is visible,
// capped at fitMaxScale.
func fitAll() {
	b := snapshotBounds()
	if !b.initialized {
		return
	}
	w, h := b.width(), b.height()
	scale := fitMaxScale
	if w > 0 {
		scale = math.Min(scale, float64(screenW)*0.9/w)
	}
	if h > 0 {
		scale = math.Min(scale, float64(screenH)*0.9/h)
	}
	view.scale = scale
	view.clampScale()
	cx, cz := b.center()
	view.centerOn(cx, cz)
}

// zoomStep zooms centered on the selected player when one is on screen,
// otherwise on the viewport center.
func zoomStep(factor float64) {
	sx, sy := float64(screenW)/2, float64(screenH)/2
	if selectedID != "" {
		if p, _, ok := sessionMarker(selectedID); ok && p.Dim == currentDim() {
			sx, sy = view.worldToScreen(p.X, p.Z, screenW, screenH)
		}
	}
	view.zoomAt(factor, sx, sy, screenW, screenH)
	clampPan()
}

// refreshTiles asks the external renderer to regenerate tiles and busts the
// local cache so the new images are actually fetched.
func refreshTiles(all bool) {
	dim := currentDim()
	if all {
		dim = ""
	}
	if err := sendRefreshTiles(dim); err != nil {
		logWarn("tile refresh not sent: %v", err)
	}
	invalidateTiles(true)
	seedBoundsFromSessions(currentDim())
	consoleMessage("Refreshing tiles.")
}

func (g *Game) Draw(screen *ebiten.Image) {
	drawMap(screen)
	drawHUD(screen)
	drawRoster(screen)
	drawConsole(screen)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	screenW, screenH = outsideWidth, outsideHeight
	if outsideWidth > 320 && outsideHeight > 240 {
		if gs.WindowWidth != outsideWidth || gs.WindowHeight != outsideHeight {
			gs.WindowWidth = outsideWidth
			gs.WindowHeight = outsideHeight
			settingsDirty = true
		}
	}
	return outsideWidth, outsideHeight
}

func runGame() {
	ebiten.SetWindowTitle("Trailmap")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(60)
	if gs.Fullscreen {
		ebiten.SetFullscreen(true)
	}

	if err := ebiten.RunGame(&Game{}); err != nil && err != ebiten.Termination {
		log.Printf("ebiten: %v", err)
	}
}
