package main

import "sync"

// worldBounds is the running bounding box of every coordinate observed in the
// current dimension, from loaded tiles or historical path points. It only
// grows; resetBounds is the sole way to shrink it (refresh or dimension
// switch). Used to clamp panning and compute fit-all, never for render
// correctness.
type worldBounds struct {
	minX, maxX  float64
	minZ, maxZ  float64
	initialized bool
}

var (
	boundsMu sync.Mutex
	bounds   worldBounds
)

func (b *worldBounds) union(x1, z1, x2, z2 float64) {
	if !b.initialized {
		b.minX, b.maxX = x1, x2
		b.minZ, b.maxZ = z1, z2
		b.initialized = true
		return
	}
	if x1 < b.minX {
		b.minX = x1
	}
	if x2 > b.maxX {
		b.maxX = x2
	}
	if z1 < b.minZ {
		b.minZ = z1
	}
	if z2 > b.maxZ {
		b.maxZ = z2
	}
}

func (b *worldBounds) unionPoint(x, z float64) {
	b.union(x, z, x, z)
}

func (b *worldBounds) width() float64  { return b.maxX - b.minX }
func (b *worldBounds) height() float64 { return b.maxZ - b.minZ }

func (b *worldBounds) center() (float64, float64) {
	return (b.minX + b.maxX) / 2, (b.minZ + b.maxZ) / 2
}

func unionBounds(x1, z1, x2, z2 float64) {
	boundsMu.Lock()
	bounds.union(x1, z1, x2, z2)
	boundsMu.Unlock()
}

func unionBoundsPoint(x, z float64) {
	boundsMu.Lock()
	bounds.unionPoint(x, z)
	boundsMu.Unlock()
}

func resetBounds() {
	boundsMu.Lock()
	bounds = worldBounds{}
	boundsMu.Unlock()
}

// snapshotBounds returns a copy safe to read off the render path.
func snapshotBounds() worldBounds {
	boundsMu.Lock()
	b := bounds
	boundsMu.Unlock()
	return b
}

// seedBoundsFromSessions unions every stored path point for the given
// dimension into the bounds. Called after a dimension switch and after the
// historical merge so fit-all works before any tile has finished loading.
func seedBoundsFromSessions(dim string) {
	sessionsMu.RLock()
	defer sessionsMu.RUnlock()
	for _, s := range sessions {
		for _, p := range s.Path {
			if p.Dim == dim {
				unionBoundsPoint(p.X, p.Z)
			}
		}
	}
}
