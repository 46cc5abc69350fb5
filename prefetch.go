package main

import (
	"math"
	"runtime"

	"github.com/remeh/sizedwaitgroup"
)

// prefetchCap bounds how many chunks a warm-up pass may touch; a sprawling
// explored area is warmed from its center outward by the render path instead.
const prefetchCap = 4096

// prefetchBoundsTiles warms the tile cache for the explored area of dim after
// history has seeded the bounds, so fit-all lands on drawn map instead of a
// wall of spinners. Fetch parallelism is bounded; the shared limiter still
// applies per request.
func prefetchBoundsTiles(dim string) {
	b := snapshotBounds()
	if !b.initialized || dim != currentDim() {
		return
	}
	minCX := int(math.Floor(b.minX / chunkSize))
	maxCX := int(math.Floor(b.maxX / chunkSize))
	minCZ := int(math.Floor(b.minZ / chunkSize))
	maxCZ := int(math.Floor(b.maxZ / chunkSize))
	if (maxCX-minCX+1)*(maxCZ-minCZ+1) > prefetchCap {
		return
	}

	wg := sizedwaitgroup.New(runtime.NumCPU())
	for cz := minCZ; cz <= maxCZ; cz++ {
		for cx := minCX; cx <= maxCX; cx++ {
			key := tileKey{dim: dim, cx: cx, cz: cz}
			tileMu.Lock()
			_, seen := tileCache[key]
			if !seen {
				tileCache[key] = &tileEntry{state: tileLoading}
			}
			gen := tileGen
			tileMu.Unlock()
			if seen {
				continue
			}
			wg.Add()
			go func(key tileKey, gen int) {
				defer wg.Done()
				fetchTile(key, gen)
			}(key, gen)
		}
	}
	wg.Wait()
	logDebug("prefetched %s bounds tiles", dim)
}
