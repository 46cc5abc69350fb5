package main

import "testing"

func TestWorldClockString(t *testing.T) {
	defer worldTimeTicks.Store(0)

	worldTimeTicks.Store(0)
	if got := worldClockString(); got != "" {
		t.Fatalf("clock before first tick: %q", got)
	}

	cases := []struct {
		ticks int64
		want  string
	}{
		{1000, "Day 1 07:00"},
		{6000, "Day 1 12:00"},
		{13000, "Day 1 19:00 (night)"},
		{24000 + 500, "Day 2 06:30"},
	}
	for _, c := range cases {
		setWorldTime(c.ticks)
		if got := worldClockString(); got != c.want {
			t.Fatalf("ticks %d: %q want %q", c.ticks, got, c.want)
		}
	}
}

func TestSetWorldTimeIgnoresNonPositive(t *testing.T) {
	worldTimeTicks.Store(42)
	defer worldTimeTicks.Store(0)
	setWorldTime(0)
	setWorldTime(-5)
	if worldTimeTicks.Load() != 42 {
		t.Fatalf("ticks %d", worldTimeTicks.Load())
	}
}

func TestFmtDistance(t *testing.T) {
	cases := []struct {
		m    float64
		want string
	}{
		{0, "0 m"},
		{999, "999 m"},
		{1500, "1,500 m"},
		{12500, "12.5 km"},
	}
	for _, c := range cases {
		if got := fmtDistance(c.m); got != c.want {
			t.Fatalf("%v m: %q want %q", c.m, got, c.want)
		}
	}
}
