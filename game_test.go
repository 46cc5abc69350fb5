package main

import (
	"math"
	"testing"
)

func viewTestSetup(t *testing.T) {
	t.Helper()
	oldView, oldW, oldH := view, screenW, screenH
	screenW, screenH = 1280, 800
	view = viewTransform{scale: 1}
	resetBounds()
	t.Cleanup(func() {
		view, screenW, screenH = oldView, oldW, oldH
		resetBounds()
	})
}

func TestFitAllCapsZoomForTinyBounds(t *testing.T) {
	viewTestSetup(t)
	unionBounds(0, 0, 10, 10)
	fitAll()
	if view.scale != fitMaxScale {
		t.Fatalf("scale %v, want max-zoom cap %v", view.scale, fitMaxScale)
	}
	cx, cz := view.screenToWorld(float64(screenW)/2, float64(screenH)/2, screenW, screenH)
	if math.Abs(cx-5) > 1e-6 || math.Abs(cz-5) > 1e-6 {
		t.Fatalf("fit center %v,%v", cx, cz)
	}
}

func TestFitAllShowsWholeBounds(t *testing.T) {
	viewTestSetup(t)
	unionBounds(-5000, -1000, 5000, 1000)
	fitAll()
	x1, z1 := view.screenToWorld(0, 0, screenW, screenH)
	x2, z2 := view.screenToWorld(float64(screenW), float64(screenH), screenW, screenH)
	if x1 > -5000 || x2 < 5000 || z1 > -1000 || z2 < 1000 {
		t.Fatalf("bounds not fully visible: %v,%v .. %v,%v", x1, z1, x2, z2)
	}
}

func TestFitAllNoopWithoutBounds(t *testing.T) {
	viewTestSetup(t)
	before := view
	fitAll()
	if view != before {
		t.Fatalf("fitAll moved an unbounded view: %+v", view)
	}
}

func TestClampPanKeepsCenterNearBounds(t *testing.T) {
	viewTestSetup(t)
	unionBounds(0, 0, 100, 100)
	view.centerOn(1e6, -1e6)
	clampPan()
	cx, cz := view.screenToWorld(float64(screenW)/2, float64(screenH)/2, screenW, screenH)
	if cx > 100+panBoundsPad+1e-6 || cz < -panBoundsPad-1e-6 {
		t.Fatalf("center escaped bounds: %v,%v", cx, cz)
	}
}

func TestClampPanNoopWithoutBounds(t *testing.T) {
	viewTestSetup(t)
	view.centerOn(1e9, 1e9)
	before := view
	clampPan()
	if view != before {
		t.Fatalf("clamped with no bounds: %+v", view)
	}
}

func TestCenterOnWorldRaisesScale(t *testing.T) {
	viewTestSetup(t)
	view.scale = 0.05
	centerOnWorld(50, 60, 1.0)
	if view.scale != 1.0 {
		t.Fatalf("scale %v, want forced minimum 1.0", view.scale)
	}
	cx, cz := view.screenToWorld(float64(screenW)/2, float64(screenH)/2, screenW, screenH)
	if math.Abs(cx-50) > 1e-6 || math.Abs(cz-60) > 1e-6 {
		t.Fatalf("center %v,%v", cx, cz)
	}
}

func TestValidDimension(t *testing.T) {
	for _, d := range dimensions {
		if !validDimension(d) {
			t.Fatalf("%q rejected", d)
		}
	}
	if validDimension("overwor1d") || validDimension("") {
		t.Fatal("bogus dimension accepted")
	}
}
