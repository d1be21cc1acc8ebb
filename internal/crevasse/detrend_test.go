package crevasse

import (
	"math"
	"testing"

	"github.com/icetools/crevdem/internal/raster"
)

func TestDetrendFlatSurface(t *testing.T) {
	dem := raster.NewFilled(20, 20, 2.0, 150)

	trend, err := Detrend(dem, 12, 1)
	if err != nil {
		t.Fatalf("Detrend failed: %v", err)
	}
	for y := 0; y < trend.Height; y++ {
		for x := 0; x < trend.Width; x++ {
			if diff := math.Abs(trend.At(x, y) - 150); diff > 1e-9 {
				t.Fatalf("trend (%d,%d): got %g, want 150", x, y, trend.At(x, y))
			}
		}
	}
}

func TestDetrendNoDataErodesByWindowRadius(t *testing.T) {
	dem := raster.NewFilled(21, 21, 1.0, 100)
	dem.Set(10, 10, math.NaN())

	// std 4 px, cutoff 1 -> kernel size 5, radius 2.
	trend, err := Detrend(dem, 4, 1)
	if err != nil {
		t.Fatalf("Detrend failed: %v", err)
	}

	const radius = 2
	for y := 0; y < trend.Height; y++ {
		for x := 0; x < trend.Width; x++ {
			dx, dy := x-10, y-10
			inWindow := dx >= -radius && dx <= radius && dy >= -radius && dy <= radius
			if inWindow && !trend.IsNoData(x, y) {
				t.Errorf("cell (%d,%d) inside window of no-data cell is valid", x, y)
			}
			if !inWindow && trend.IsNoData(x, y) {
				t.Errorf("cell (%d,%d) outside window of no-data cell is no-data", x, y)
			}
		}
	}
}

func TestDetrendDegenerateKernel(t *testing.T) {
	dem := raster.NewFilled(10, 10, 2.0, 100)
	if _, err := Detrend(dem, 0.5, 1); err == nil {
		t.Error("expected error for sub-pixel standard deviation")
	}
	if _, err := Detrend(dem, 12, 0); err == nil {
		t.Error("expected error for non-positive cutoff")
	}
}

func TestDetrendIsPureOverInput(t *testing.T) {
	dem := raster.NewFilled(12, 12, 1.0, 100)
	dem.Set(5, 5, 90)
	before := dem.Clone()

	a, err := Detrend(dem, 4, 1)
	if err != nil {
		t.Fatalf("Detrend failed: %v", err)
	}
	b, err := Detrend(dem, 4, 1)
	if err != nil {
		t.Fatalf("Detrend failed: %v", err)
	}

	for y := 0; y < dem.Height; y++ {
		for x := 0; x < dem.Width; x++ {
			if dem.At(x, y) != before.At(x, y) {
				t.Fatalf("Detrend mutated its input at (%d,%d)", x, y)
			}
			if a.At(x, y) != b.At(x, y) {
				t.Fatalf("repeated Detrend not bit-identical at (%d,%d)", x, y)
			}
		}
	}
}

func TestReflectIndex(t *testing.T) {
	tests := []struct {
		i, n, want int
	}{
		{0, 5, 0},
		{4, 5, 4},
		{-1, 5, 1},
		{-2, 5, 2},
		{5, 5, 3},
		{6, 5, 2},
		{-1, 1, 0},
		{3, 1, 0},
	}
	for _, tt := range tests {
		if got := reflectIndex(tt.i, tt.n); got != tt.want {
			t.Errorf("reflectIndex(%d, %d): got %d, want %d", tt.i, tt.n, got, tt.want)
		}
	}
}
