package main

import (
	"fmt"
	"image"
	"image/png"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"golang.org/x/time/rate"
)

// chunkSize is the world-unit edge length of one tile image. It is part of
// the wire contract with the external tile renderer, not a tunable.
const chunkSize = 16

type tileKey struct {
	dim    string
	cx, cz int
}

type tileState uint8

const (
	tileMissing tileState = iota
	tileLoading
	tileLoaded
	tileEmpty // degenerate 1x1 placeholder: no data yet, do not retry
	tileError // fetch or decode failed, retried only via explicit refresh
)

type tileEntry struct {
	state tileState
	img   *ebiten.Image
}

var (
	tileMu    sync.Mutex
	tileCache = make(map[tileKey]*tileEntry)
	// tileGen is the cache-busting version appended to every tile URL. Bumped
	// on refresh so previously cached images are bypassed end to end.
	tileGen int

	tileHTTP = &http.Client{Timeout: 10 * time.Second}
	// tileLimiter backstops the per-frame admission cap; even a burst of new
	// chunks entering the viewport cannot turn into a fetch storm.
	tileLimiter = rate.NewLimiter(rate.Limit(200), 400)
)

func tileURL(key tileKey, gen int) string {
	q := url.Values{}
	q.Set("token", authToken)
	q.Set("v", fmt.Sprint(gen))
	return fmt.Sprintf("%s/tiles/%s/%d/%d.png?%s", serverHTTPBase(), key.dim, key.cx, key.cz, q.Encode())
}

// requestTile returns a snapshot of the chunk's cache entry, creating a
// loading entry and kicking off an asynchronous fetch when the chunk has not
// been seen. The snapshot is taken under tileMu so the render path never
// observes a half-committed fetch result. Never blocks the caller.
func requestTile(key tileKey) (tileState, *ebiten.Image) {
	tileMu.Lock()
	if e, ok := tileCache[key]; ok {
		state, img := e.state, e.img
		tileMu.Unlock()
		return state, img
	}
	tileCache[key] = &tileEntry{state: tileLoading}
	gen := tileGen
	tileMu.Unlock()

	go fetchTile(key, gen)
	return tileLoading, nil
}

// classifyTile decides the terminal state for a decoded tile image. The
// external renderer answers a byte-identical 1x1 transparent PNG while a
// chunk has no data yet; that is "empty", not an error, and must not expand
// the world bounds.
func classifyTile(img image.Image) tileState {
	b := img.Bounds()
	if b.Dx() <= 1 && b.Dy() <= 1 {
		return tileEmpty
	}
	return tileLoaded
}

func fetchTile(key tileKey, gen int) {
	if err := tileLimiter.Wait(gameCtx); err != nil {
		finishTile(key, gen, tileError, nil)
		return
	}
	resp, err := tileHTTP.Get(tileURL(key, gen))
	if err != nil {
		logDebug("tile %s %d,%d: %v", key.dim, key.cx, key.cz, err)
		finishTile(key, gen, tileError, nil)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		logDebug("tile %s %d,%d: %s", key.dim, key.cx, key.cz, resp.Status)
		finishTile(key, gen, tileError, nil)
		return
	}
	img, err := png.Decode(resp.Body)
	if err != nil {
		logDebug("tile %s %d,%d decode: %v", key.dim, key.cx, key.cz, err)
		finishTile(key, gen, tileError, nil)
		return
	}

	state := classifyTile(img)
	var eimg *ebiten.Image
	if state == tileLoaded {
		eimg = ebiten.NewImageFromImage(img)
	}
	finishTile(key, gen, state, eimg)
}

// finishTile commits a fetch result unless a refresh invalidated the cache
// while the fetch was in flight. Loaded tiles union their chunk rectangle
// into the world bounds.
func finishTile(key tileKey, gen int, state tileState, img *ebiten.Image) {
	tileMu.Lock()
	if gen != tileGen {
		tileMu.Unlock()
		return
	}
	e, ok := tileCache[key]
	if !ok {
		tileMu.Unlock()
		return
	}
	e.state = state
	e.img = img
	tileMu.Unlock()

	if state == tileLoaded && key.dim == currentDim() {
		x := float64(key.cx) * chunkSize
		z := float64(key.cz) * chunkSize
		unionBounds(x, z, x+chunkSize, z+chunkSize)
	}
}

// invalidateTiles drops every cached entry and uninitializes the world
// bounds. Used on refresh and on dimension switch; bump advances the
// cache-busting counter as well.
func invalidateTiles(bump bool) {
	tileMu.Lock()
	tileCache = make(map[tileKey]*tileEntry)
	if bump {
		tileGen++
	}
	tileMu.Unlock()
	resetBounds()
}

func cachedTileCount() int {
	tileMu.Lock()
	n := len(tileCache)
	tileMu.Unlock()
	return n
}
