package main

import (
	"math"
	"testing"
)

func straightPath(length float64, points int) []screenPt {
	pts := make([]screenPt, points)
	for i := range pts {
		pts[i] = screenPt{x: length * float64(i) / float64(points-1), y: 0}
	}
	return pts
}

func TestChevronCountIndependentOfSampling(t *testing.T) {
	const length = 300.0
	const spacing = 28.0
	want := int(math.Floor(length / spacing))

	sparse := chevronPositions(straightPath(length, 2), spacing)
	dense := chevronPositions(straightPath(length, 200), spacing)
	if len(sparse) != want {
		t.Fatalf("sparse: %d chevrons, want %d", len(sparse), want)
	}
	if len(dense) != want {
		t.Fatalf("dense: %d chevrons, want %d", len(dense), want)
	}
}

func TestChevronPositionsAndHeading(t *testing.T) {
	got := chevronPositions([]screenPt{{0, 0}, {100, 0}}, 30)
	if len(got) != 3 {
		t.Fatalf("%d chevrons", len(got))
	}
	for i, c := range got {
		wantX := 30.0 * float64(i+1)
		if math.Abs(c.x-wantX) > 1e-9 || math.Abs(c.y) > 1e-9 || c.angle != 0 {
			t.Fatalf("chevron %d at %v,%v angle %v", i, c.x, c.y, c.angle)
		}
	}
}

func TestChevronDegenerateInputs(t *testing.T) {
	if got := chevronPositions(nil, 10); got != nil {
		t.Fatalf("nil path: %v", got)
	}
	if got := chevronPositions([]screenPt{{0, 0}}, 10); got != nil {
		t.Fatalf("single point: %v", got)
	}
	// Repeated identical points contribute no length and no chevrons.
	if got := chevronPositions([]screenPt{{5, 5}, {5, 5}, {5, 5}}, 10); len(got) != 0 {
		t.Fatalf("zero-length path: %v", got)
	}
}

func TestCapTilesUnderLimitUntouched(t *testing.T) {
	r := chunkRect{minCX: -5, minCZ: -5, maxCX: 5, maxCZ: 5}
	if got := capTiles(r, maxTilesPerFrame); got != r {
		t.Fatalf("rect changed: %+v", got)
	}
}

func TestCapTilesShrinksAroundCenter(t *testing.T) {
	r := chunkRect{minCX: -100, minCZ: -100, maxCX: 99, maxCZ: 99} // 40000 tiles
	got := capTiles(r, 1000)
	if n := got.tileCount(); n > 1000 {
		t.Fatalf("capped rect still holds %d tiles", n)
	}
	ccx := (got.minCX + got.maxCX) / 2
	ccz := (got.minCZ + got.maxCZ) / 2
	if ccx < -2 || ccx > 2 || ccz < -2 || ccz > 2 {
		t.Fatalf("shrink drifted off center: %d,%d", ccx, ccz)
	}
}

func TestCapTilesExtremeAspect(t *testing.T) {
	// Both strip orientations: the shrink factor truncates the thin axis to
	// zero, and the capped rectangle must still cover at least one tile.
	cases := []chunkRect{
		{minCX: 0, minCZ: 0, maxCX: 0, maxCZ: 99999},
		{minCX: 0, minCZ: 0, maxCX: 99999, maxCZ: 0},
		{minCX: 0, minCZ: 0, maxCX: 99999, maxCZ: 2},
	}
	for _, r := range cases {
		got := capTiles(r, 1000)
		if n := got.tileCount(); n > 1000 || n < 1 {
			t.Fatalf("capped strip %+v holds %d tiles (%+v)", r, n, got)
		}
	}
}

func TestIntersectBoundsUninitializedPassesThrough(t *testing.T) {
	r := chunkRect{minCX: -3, minCZ: -3, maxCX: 3, maxCZ: 3}
	got, ok := intersectBounds(r, worldBounds{})
	if !ok || got != r {
		t.Fatalf("got %+v ok=%v", got, ok)
	}
}

func TestIntersectBoundsTrims(t *testing.T) {
	r := chunkRect{minCX: -1000, minCZ: -1000, maxCX: 1000, maxCZ: 1000}
	b := worldBounds{minX: 0, maxX: 160, minZ: 0, maxZ: 160, initialized: true}
	got, ok := intersectBounds(r, b)
	if !ok {
		t.Fatal("no overlap reported")
	}
	// 0..160 world units is chunks 0..10, plus one chunk of margin.
	want := chunkRect{minCX: -1, minCZ: -1, maxCX: 11, maxCZ: 11}
	if got != want {
		t.Fatalf("got %+v want %+v", got, want)
	}
}

func TestIntersectBoundsDisjoint(t *testing.T) {
	r := chunkRect{minCX: 100, minCZ: 100, maxCX: 110, maxCZ: 110}
	b := worldBounds{minX: 0, maxX: 16, minZ: 0, maxZ: 16, initialized: true}
	if _, ok := intersectBounds(r, b); ok {
		t.Fatal("disjoint rects reported overlap")
	}
}

func TestGridSpacingSteps(t *testing.T) {
	cases := []struct {
		scale float64
		want  float64
	}{
		{10, 16}, {8, 16}, {4, 64}, {1, 256}, {0.2, 1024}, {0.02, 4096},
	}
	for _, c := range cases {
		if got := gridSpacing(c.scale); got != c.want {
			t.Fatalf("scale %v: spacing %v want %v", c.scale, got, c.want)
		}
	}
}
