package main

import (
	"image"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	text "github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// maxTilesPerFrame is the admission cap on how many chunks a single frame may
// request and draw. Beyond it the visible rectangle is shrunk around its
// center, trading edge coverage for a bounded fetch/draw cost at extreme
// zoom-out.
const maxTilesPerFrame = 1000

// chevronSpacingPx is the minimum on-screen distance between direction ticks
// along a drawn path, so chevron density stays uniform regardless of how
// densely the route was sampled.
const chevronSpacingPx = 28.0

// whitePixel backs DrawTriangles fills; the sub-image dodges texture-atlas
// bleed at the edges.
var (
	whiteImage = ebiten.NewImage(3, 3)
	whitePixel = whiteImage.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
)

func init() {
	whiteImage.Fill(color.White)
}

var backgroundColor = color.RGBA{18, 18, 24, 255}
var gridColor = color.RGBA{255, 255, 255, 18}
var originColor = color.RGBA{255, 96, 96, 160}

// chunkRect is an inclusive rectangle of chunk indices.
type chunkRect struct {
	minCX, minCZ int
	maxCX, maxCZ int
}

func (r chunkRect) tileCount() int {
	return (r.maxCX - r.minCX + 1) * (r.maxCZ - r.minCZ + 1)
}

// visibleChunkRect converts the world rectangle under the viewport, expanded
// by one chunk of margin, to chunk indices.
func visibleChunkRect(v *viewTransform, w, h int) chunkRect {
	x1, z1 := v.screenToWorld(0, 0, w, h)
	x2, z2 := v.screenToWorld(float64(w), float64(h), w, h)
	return chunkRect{
		minCX: int(math.Floor(x1/chunkSize)) - 1,
		minCZ: int(math.Floor(z1/chunkSize)) - 1,
		maxCX: int(math.Floor(x2/chunkSize)) + 1,
		maxCZ: int(math.Floor(z2/chunkSize)) + 1,
	}
}

// intersectBounds trims the rectangle to the explored bounds plus one chunk
// of margin, so zoomed-out views never fetch tiles outside ever-seen
// territory. Unchanged while bounds are uninitialized.
func intersectBounds(r chunkRect, b worldBounds) (chunkRect, bool) {
	if !b.initialized {
		return r, true
	}
	br := chunkRect{
		minCX: int(math.Floor(b.minX/chunkSize)) - 1,
		minCZ: int(math.Floor(b.minZ/chunkSize)) - 1,
		maxCX: int(math.Floor(b.maxX/chunkSize)) + 1,
		maxCZ: int(math.Floor(b.maxZ/chunkSize)) + 1,
	}
	out := chunkRect{
		minCX: max(r.minCX, br.minCX),
		minCZ: max(r.minCZ, br.minCZ),
		maxCX: min(r.maxCX, br.maxCX),
		maxCZ: min(r.maxCZ, br.maxCZ),
	}
	if out.minCX > out.maxCX || out.minCZ > out.maxCZ {
		return chunkRect{}, false
	}
	return out, true
}

// capTiles shrinks the rectangle around its center, roughly preserving
// aspect ratio, until it holds at most maxTiles chunks.
func capTiles(r chunkRect, maxTiles int) chunkRect {
	count := r.tileCount()
	if count <= maxTiles {
		return r
	}
	w := r.maxCX - r.minCX + 1
	h := r.maxCZ - r.minCZ + 1
	f := math.Sqrt(float64(maxTiles) / float64(count))
	nw := max(1, int(float64(w)*f))
	nh := max(1, int(float64(h)*f))
	if nw*nh > maxTiles {
		nh = maxTiles / nw
	}
	// A strip rectangle can truncate an axis to zero here; a capped view
	// must still cover something, so floor both axes and shrink the other.
	if nh < 1 {
		nh = 1
		nw = min(nw, maxTiles)
	}
	if nw < 1 {
		nw = 1
		nh = min(nh, maxTiles)
	}
	ccx := (r.minCX + r.maxCX) / 2
	ccz := (r.minCZ + r.maxCZ) / 2
	return chunkRect{
		minCX: ccx - nw/2,
		minCZ: ccz - nh/2,
		maxCX: ccx - nw/2 + nw - 1,
		maxCZ: ccz - nh/2 + nh - 1,
	}
}

func drawMap(screen *ebiten.Image) {
	screen.Fill(backgroundColor)

	dim := currentDim()
	drawTiles(screen, dim)
	if gs.ShowGrid {
		drawGrid(screen)
	}
	drawOrigin(screen)
	drawSessions(screen, dim)
}

func drawTiles(screen *ebiten.Image, dim string) {
	rect := visibleChunkRect(&view, screenW, screenH)
	rect, ok := intersectBounds(rect, snapshotBounds())
	if !ok {
		return
	}
	rect = capTiles(rect, maxTilesPerFrame)

	for cz := rect.minCZ; cz <= rect.maxCZ; cz++ {
		for cx := rect.minCX; cx <= rect.maxCX; cx++ {
			state, img := requestTile(tileKey{dim: dim, cx: cx, cz: cz})
			if state != tileLoaded || img == nil {
				// Loading, empty and error chunks show the background.
				continue
			}
			b := img.Bounds()
			sx, sy := view.worldToScreen(float64(cx)*chunkSize, float64(cz)*chunkSize, screenW, screenH)
			op := &ebiten.DrawImageOptions{Filter: ebiten.FilterNearest, DisableMipmaps: true}
			op.GeoM.Scale(view.scale*chunkSize/float64(b.Dx()), view.scale*chunkSize/float64(b.Dy()))
			op.GeoM.Translate(sx, sy)
			screen.DrawImage(img, op)
		}
	}
}

// gridSpacing picks the coordinate-grid step for the current zoom: coarse
// when zoomed out, down to one chunk edge when zoomed in.
func gridSpacing(scale float64) float64 {
	switch {
	case scale >= 8:
		return 16
	case scale >= 2:
		return 64
	case scale >= 0.5:
		return 256
	case scale >= 0.125:
		return 1024
	default:
		return 4096
	}
}

func drawGrid(screen *ebiten.Image) {
	spacing := gridSpacing(view.scale)
	x1, z1 := view.screenToWorld(0, 0, screenW, screenH)
	x2, z2 := view.screenToWorld(float64(screenW), float64(screenH), screenW, screenH)
	if b := snapshotBounds(); b.initialized {
		x1 = math.Max(x1, b.minX-panBoundsPad)
		x2 = math.Min(x2, b.maxX+panBoundsPad)
		z1 = math.Max(z1, b.minZ-panBoundsPad)
		z2 = math.Min(z2, b.maxZ+panBoundsPad)
	}
	if x1 > x2 || z1 > z2 {
		return
	}

	for x := math.Ceil(x1/spacing) * spacing; x <= x2; x += spacing {
		sx, syA := view.worldToScreen(x, z1, screenW, screenH)
		_, syB := view.worldToScreen(x, z2, screenW, screenH)
		vector.StrokeLine(screen, float32(sx), float32(syA), float32(sx), float32(syB), 1, gridColor, false)
	}
	for z := math.Ceil(z1/spacing) * spacing; z <= z2; z += spacing {
		sxA, sy := view.worldToScreen(x1, z, screenW, screenH)
		sxB, _ := view.worldToScreen(x2, z, screenW, screenH)
		vector.StrokeLine(screen, float32(sxA), float32(sy), float32(sxB), float32(sy), 1, gridColor, false)
	}
}

func drawOrigin(screen *ebiten.Image) {
	sx, sy := view.worldToScreen(0, 0, screenW, screenH)
	if sx < -20 || sy < -20 || sx > float64(screenW)+20 || sy > float64(screenH)+20 {
		return
	}
	vector.StrokeLine(screen, float32(sx-6), float32(sy), float32(sx+6), float32(sy), 1, originColor, false)
	vector.StrokeLine(screen, float32(sx), float32(sy-6), float32(sx), float32(sy+6), 1, originColor, false)
}

type screenPt struct{ x, y float64 }

// chevron is one direction tick along a path: a position and the heading of
// the segment it sits on.
type chevron struct {
	x, y  float64
	angle float64
}

// chevronPositions walks the polyline accumulating pixel distance and emits a
// chevron every spacing pixels. A straight path of screen length L yields
// floor(L/spacing) chevrons no matter how many points compose it.
func chevronPositions(pts []screenPt, spacing float64) []chevron {
	if len(pts) < 2 || spacing <= 0 {
		return nil
	}
	var out []chevron
	next := spacing
	total := 0.0
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		dx, dy := b.x-a.x, b.y-a.y
		segLen := math.Hypot(dx, dy)
		if segLen == 0 {
			continue
		}
		angle := math.Atan2(dy, dx)
		for next <= total+segLen {
			t := (next - total) / segLen
			out = append(out, chevron{x: a.x + dx*t, y: a.y + dy*t, angle: angle})
			next += spacing
		}
		total += segLen
	}
	return out
}

type sessionSnap struct {
	s      *playerSession
	active bool
	latest worldPoint
	hasPt  bool
}

func drawSessions(screen *ebiten.Image, dim string) {
	sessionsMu.RLock()
	list := make([]sessionSnap, 0, len(sessions))
	for _, s := range sessions {
		p, ok := s.latestPoint()
		list = append(list, sessionSnap{s: s, active: s.Active, latest: p, hasPt: ok})
	}
	sessionsMu.RUnlock()

	for _, e := range list {
		if !e.active && !gs.ShowOfflinePaths && e.s.ID != selectedID {
			continue
		}
		if e.s.ID == selectedID {
			drawSessionPath(screen, e.s, dim)
		}
		if e.active && e.hasPt && e.latest.Dim == dim {
			drawMarker(screen, e.s, e.latest)
		}
	}
}

func drawSessionPath(screen *ebiten.Image, s *playerSession, dim string) {
	sessionsMu.RLock()
	pts := make([]screenPt, 0, len(s.Path))
	for _, p := range s.Path {
		if p.Dim != dim {
			continue
		}
		sx, sy := view.worldToScreen(p.X, p.Z, screenW, screenH)
		pts = append(pts, screenPt{sx, sy})
	}
	active := s.Active
	col := colorForPlayer(s.PlayerID)
	sessionsMu.RUnlock()

	if len(pts) < 2 {
		return
	}

	width := float32(gs.PathWidth)
	for i := 1; i < len(pts); i++ {
		vector.StrokeLine(screen,
			float32(pts[i-1].x), float32(pts[i-1].y),
			float32(pts[i].x), float32(pts[i].y),
			width, col, true)
	}

	for _, c := range chevronPositions(pts, chevronSpacingPx) {
		drawChevron(screen, c, col)
	}

	// Start marker; arrowhead only once the session has ended.
	vector.StrokeCircle(screen, float32(pts[0].x), float32(pts[0].y), 4, 1.5, col, true)
	if !active {
		last := pts[len(pts)-1]
		prev := pts[len(pts)-2]
		angle := math.Atan2(last.y-prev.y, last.x-prev.x)
		drawArrowhead(screen, last, angle, col)
	}
}

func drawChevron(screen *ebiten.Image, c chevron, col color.RGBA) {
	const arm = 5.0
	const open = 2.6 // wing angle off the reverse heading
	for _, side := range []float64{open, -open} {
		a := c.angle + side
		vector.StrokeLine(screen,
			float32(c.x), float32(c.y),
			float32(c.x+math.Cos(a)*arm), float32(c.y+math.Sin(a)*arm),
			1.5, col, true)
	}
}

func drawArrowhead(screen *ebiten.Image, p screenPt, angle float64, col color.RGBA) {
	const size = 9.0
	var path vector.Path
	path.MoveTo(float32(p.x+math.Cos(angle)*size), float32(p.y+math.Sin(angle)*size))
	path.LineTo(float32(p.x+math.Cos(angle+2.5)*size), float32(p.y+math.Sin(angle+2.5)*size))
	path.LineTo(float32(p.x+math.Cos(angle-2.5)*size), float32(p.y+math.Sin(angle-2.5)*size))
	path.Close()
	vs, is := path.AppendVerticesAndIndicesForFilling(nil, nil)
	for i := range vs {
		vs[i].ColorR = float32(col.R) / 255
		vs[i].ColorG = float32(col.G) / 255
		vs[i].ColorB = float32(col.B) / 255
		vs[i].ColorA = float32(col.A) / 255
	}
	screen.DrawTriangles(vs, is, whitePixel, &ebiten.DrawTrianglesOptions{AntiAlias: true})
}

func drawMarker(screen *ebiten.Image, s *playerSession, p worldPoint) {
	sx, sy := view.worldToScreen(p.X, p.Z, screenW, screenH)
	if sx < -40 || sy < -40 || sx > float64(screenW)+40 || sy > float64(screenH)+40 {
		return
	}
	col := colorForPlayer(s.PlayerID)

	haloR := float32(9)
	dotR := float32(4)
	if s.ID == selectedID {
		haloR, dotR = 14, 6
	} else if s.ID == hoveredID {
		haloR = 12
	}
	halo := col
	halo.A = 70
	vector.DrawFilledCircle(screen, float32(sx), float32(sy), haloR, halo, true)
	vector.DrawFilledCircle(screen, float32(sx), float32(sy), dotR, col, true)

	if gs.ShowLabels {
		drawShadowedText(screen, s.Name, sx+float64(dotR)+4, sy-7, gs.LabelFontSize, col)
	}
}

// drawShadowedText draws a one-pixel black drop shadow under the text so
// labels stay legible over bright tiles.
func drawShadowedText(screen *ebiten.Image, str string, x, y, size float64, col color.RGBA) {
	face := fontFace(size)
	op := &text.DrawOptions{}
	op.GeoM.Translate(x+1, y+1)
	op.ColorScale.ScaleWithColor(color.RGBA{0, 0, 0, 220})
	text.Draw(screen, str, face, op)

	op = &text.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(col)
	text.Draw(screen, str, face, op)
}
