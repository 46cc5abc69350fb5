package main

import "testing"

func contains(outer, inner worldBounds) bool {
	if !inner.initialized {
		return true
	}
	if !outer.initialized {
		return false
	}
	return outer.minX <= inner.minX && outer.maxX >= inner.maxX &&
		outer.minZ <= inner.minZ && outer.maxZ >= inner.maxZ
}

func TestBoundsFirstUnionInitializes(t *testing.T) {
	var b worldBounds
	b.union(-16, 32, 0, 48)
	if !b.initialized {
		t.Fatal("bounds not initialized after first union")
	}
	if b.minX != -16 || b.maxX != 0 || b.minZ != 32 || b.maxZ != 48 {
		t.Fatalf("unexpected box %+v", b)
	}
}

func TestBoundsMonotonicGrowth(t *testing.T) {
	var b worldBounds
	steps := [][4]float64{
		{0, 0, 16, 16},
		{-64, -64, -48, -48},
		{8, 8, 9, 9}, // interior, must not shrink anything
		{1000, -2000, 1016, -1984},
	}
	var prev worldBounds
	for i, s := range steps {
		b.union(s[0], s[1], s[2], s[3])
		if !contains(b, prev) {
			t.Fatalf("step %d shrank bounds: %+v after %+v", i, b, prev)
		}
		prev = b
	}
	if b.minX != -64 || b.maxX != 1016 || b.minZ != -2000 || b.maxZ != 16 {
		t.Fatalf("final box %+v", b)
	}
}

func TestBoundsPointUnion(t *testing.T) {
	var b worldBounds
	b.unionPoint(5, -5)
	if b.width() != 0 || b.height() != 0 {
		t.Fatalf("degenerate point box has size %v x %v", b.width(), b.height())
	}
	b.unionPoint(15, 5)
	cx, cz := b.center()
	if cx != 10 || cz != 0 {
		t.Fatalf("center %v,%v", cx, cz)
	}
}

func TestSeedBoundsFromSessions(t *testing.T) {
	resetBounds()
	sessionsMu.Lock()
	sessions = map[string]*playerSession{
		"a": {ID: "a", Path: []worldPoint{
			{X: 10, Z: 20, Dim: "overworld"},
			{X: -30, Z: 5, Dim: "overworld"},
			{X: 9999, Z: 9999, Dim: "nether"}, // other dimension, ignored
		}},
	}
	sessionsMu.Unlock()
	defer func() {
		sessionsMu.Lock()
		sessions = make(map[string]*playerSession)
		sessionsMu.Unlock()
		resetBounds()
	}()

	seedBoundsFromSessions("overworld")
	b := snapshotBounds()
	if !b.initialized {
		t.Fatal("bounds not seeded")
	}
	if b.minX != -30 || b.maxX != 10 || b.minZ != 5 || b.maxZ != 20 {
		t.Fatalf("seeded box %+v", b)
	}
}
