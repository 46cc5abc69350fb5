package main

import (
	"bytes"
	"image"
	"image/png"
	"strings"
	"testing"
)

func TestClassifyTileEmptyPlaceholder(t *testing.T) {
	// The external renderer answers a 1x1 transparent PNG while a chunk has
	// no data yet; that must classify as empty, not error, and the round trip
	// through a real PNG decode must preserve that.
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 1, 1))); err != nil {
		t.Fatalf("encode placeholder: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode placeholder: %v", err)
	}
	if got := classifyTile(img); got != tileEmpty {
		t.Fatalf("placeholder classified as %v", got)
	}
}

func TestClassifyTileRealImage(t *testing.T) {
	if got := classifyTile(image.NewNRGBA(image.Rect(0, 0, 16, 16))); got != tileLoaded {
		t.Fatalf("16x16 classified as %v", got)
	}
}

func TestEmptyTileDoesNotExpandBounds(t *testing.T) {
	resetBounds()
	tileMu.Lock()
	tileCache = map[tileKey]*tileEntry{{dim: "overworld", cx: 2, cz: 3}: {state: tileLoading}}
	gen := tileGen
	tileMu.Unlock()
	defer invalidateTiles(false)

	finishTile(tileKey{dim: "overworld", cx: 2, cz: 3}, gen, tileEmpty, nil)
	if b := snapshotBounds(); b.initialized {
		t.Fatalf("empty tile expanded bounds to %+v", b)
	}
}

func TestStaleFetchResultDiscarded(t *testing.T) {
	resetBounds()
	key := tileKey{dim: "overworld", cx: 0, cz: 0}
	tileMu.Lock()
	tileCache = map[tileKey]*tileEntry{key: {state: tileLoading}}
	staleGen := tileGen
	tileMu.Unlock()

	invalidateTiles(true) // refresh while the fetch is in flight

	finishTile(key, staleGen, tileError, nil)
	tileMu.Lock()
	_, present := tileCache[key]
	tileMu.Unlock()
	if present {
		t.Fatal("stale fetch result re-entered the cache")
	}
}

func TestRequestTileSnapshotDuringCommit(t *testing.T) {
	// The render path polls requestTile while fetch goroutines commit results
	// through finishTile; the returned snapshot must be consistent and the
	// accesses clean under the race detector.
	resetBounds()
	key := tileKey{dim: "nether", cx: 5, cz: 5}
	tileMu.Lock()
	tileCache = map[tileKey]*tileEntry{key: {state: tileLoading}}
	gen := tileGen
	tileMu.Unlock()
	defer invalidateTiles(false)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			finishTile(key, gen, tileEmpty, nil)
		}
	}()
	for i := 0; i < 1000; i++ {
		if state, img := requestTile(key); state == tileLoaded || img != nil {
			t.Errorf("snapshot %v with image %v never committed", state, img)
			break
		}
	}
	<-done

	if state, _ := requestTile(key); state != tileEmpty {
		t.Fatalf("final state %v", state)
	}
}

func TestTileURLCarriesTokenAndVersion(t *testing.T) {
	oldHost, oldToken := host, authToken
	host, authToken = "map.example.com", "secret-token"
	defer func() { host, authToken = oldHost, oldToken }()

	u := tileURL(tileKey{dim: "nether", cx: -3, cz: 7}, 12)
	for _, want := range []string{"/tiles/nether/-3/7.png", "token=secret-token", "v=12"} {
		if !strings.Contains(u, want) {
			t.Fatalf("url %q missing %q", u, want)
		}
	}
}

func TestInvalidateTilesResetsEverything(t *testing.T) {
	tileMu.Lock()
	tileCache[tileKey{dim: "overworld", cx: 1, cz: 1}] = &tileEntry{state: tileError}
	before := tileGen
	tileMu.Unlock()
	unionBounds(0, 0, 16, 16)

	invalidateTiles(true)

	if n := cachedTileCount(); n != 0 {
		t.Fatalf("%d entries survived invalidate", n)
	}
	if b := snapshotBounds(); b.initialized {
		t.Fatal("bounds survived invalidate")
	}
	tileMu.Lock()
	after := tileGen
	tileMu.Unlock()
	if after != before+1 {
		t.Fatalf("cache generation %d -> %d", before, after)
	}
}
