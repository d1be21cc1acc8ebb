package crevasse

import (
	"math"
	"testing"

	"github.com/icetools/crevdem/internal/raster"
)

func TestDepth(t *testing.T) {
	dem := raster.NewFilled(3, 3, 1.0, 100)
	dem.Set(1, 1, 95) // 5 m crevasse

	filled := raster.NewFilled(3, 3, 1.0, 100)
	mask := raster.NewMask(3, 3)
	mask.Set(1, 1, 1)

	depth, err := Depth(dem, filled, mask)
	if err != nil {
		t.Fatalf("Depth failed: %v", err)
	}
	if got := depth.At(1, 1); got != 5 {
		t.Errorf("depth under mask: got %g, want 5", got)
	}
	if got := depth.At(0, 0); got != 0 {
		t.Errorf("depth outside mask: got %g, want 0", got)
	}
}

func TestDepthClampsOvershootToZero(t *testing.T) {
	dem := raster.NewFilled(3, 3, 1.0, 100)
	filled := raster.NewFilled(3, 3, 1.0, 98) // interpolation undershot the surface
	mask := raster.NewMask(3, 3)
	mask.Set(1, 1, 1)

	depth, err := Depth(dem, filled, mask)
	if err != nil {
		t.Fatalf("Depth failed: %v", err)
	}
	if got := depth.At(1, 1); got != 0 {
		t.Errorf("overshoot depth: got %g, want 0", got)
	}
}

func TestDepthZeroOutsideMaskDespiteDifference(t *testing.T) {
	dem := raster.NewFilled(3, 3, 1.0, 100)
	filled := raster.NewFilled(3, 3, 1.0, 104) // smoothing bleed outside the mask
	mask := raster.NewMask(3, 3)

	depth, err := Depth(dem, filled, mask)
	if err != nil {
		t.Fatalf("Depth failed: %v", err)
	}
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			if got := depth.At(x, y); got != 0 {
				t.Errorf("unmasked depth (%d,%d): got %g, want 0", x, y, got)
			}
		}
	}
}

func TestDepthPropagatesNoData(t *testing.T) {
	dem := raster.NewFilled(3, 3, 1.0, 100)
	dem.Set(0, 0, math.NaN())

	filled := raster.NewFilled(3, 3, 1.0, 100)
	filled.Set(2, 2, math.NaN()) // unfillable hole

	mask := raster.NewMask(3, 3)
	mask.Set(2, 2, 1)

	depth, err := Depth(dem, filled, mask)
	if err != nil {
		t.Fatalf("Depth failed: %v", err)
	}
	if !depth.IsNoData(0, 0) {
		t.Error("no-data in dem not propagated")
	}
	if !depth.IsNoData(2, 2) {
		t.Error("unfillable masked hole reported a depth instead of no-data")
	}
}

func TestDepthShapeMismatch(t *testing.T) {
	dem := raster.NewFilled(3, 3, 1.0, 100)
	filledBad := raster.NewFilled(3, 4, 1.0, 100)
	mask := raster.NewMask(3, 3)

	if _, err := Depth(dem, filledBad, mask); err == nil {
		t.Error("expected shape mismatch error for filled raster")
	}
	filled := raster.NewFilled(3, 3, 1.0, 100)
	if _, err := Depth(dem, filled, raster.NewMask(2, 3)); err == nil {
		t.Error("expected shape mismatch error for mask")
	}
}

func TestDepthNonNegativeEverywhere(t *testing.T) {
	dem := raster.NewFilled(6, 6, 1.0, 100)
	filled := raster.NewFilled(6, 6, 1.0, 100)
	mask := raster.NewMask(6, 6)
	for y := 0; y < 6; y++ {
		for x := 0; x < 6; x++ {
			dem.Set(x, y, 100+float64((x*7+y*3)%5)-2)
			filled.Set(x, y, 100+float64((x*3+y*5)%4)-2)
			if (x+y)%3 == 0 {
				mask.Set(x, y, 1)
			}
		}
	}

	depth, err := Depth(dem, filled, mask)
	if err != nil {
		t.Fatalf("Depth failed: %v", err)
	}
	for y := 0; y < 6; y++ {
		for x := 0; x < 6; x++ {
			d := depth.At(x, y)
			if d < 0 {
				t.Errorf("negative depth %g at (%d,%d)", d, x, y)
			}
			if mask.At(x, y) == 0 && d != 0 {
				t.Errorf("nonzero depth %g outside mask at (%d,%d)", d, x, y)
			}
		}
	}
}
