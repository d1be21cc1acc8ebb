package crevasse

import (
	"math"
	"testing"

	"github.com/icetools/crevdem/internal/raster"
)

func TestBlackTopHatFlatRelief(t *testing.T) {
	relief := raster.NewFilled(15, 15, 1.0, 0)

	resp, err := BlackTopHat(relief, 6)
	if err != nil {
		t.Fatalf("BlackTopHat failed: %v", err)
	}
	for y := 0; y < resp.Height; y++ {
		for x := 0; x < resp.Width; x++ {
			if math.Abs(resp.At(x, y)) > 1e-12 {
				t.Fatalf("response (%d,%d) on flat relief: got %g, want 0", x, y, resp.At(x, y))
			}
		}
	}
}

func TestBlackTopHatNarrowDepression(t *testing.T) {
	relief := raster.NewFilled(15, 15, 1.0, 0)
	relief.Set(7, 7, -2) // one-cell depression, well below structuring diameter

	resp, err := BlackTopHat(relief, 6)
	if err != nil {
		t.Fatalf("BlackTopHat failed: %v", err)
	}
	if got := resp.At(7, 7); math.Abs(got-2) > 1e-12 {
		t.Errorf("response at depression: got %g, want 2", got)
	}
	if got := resp.At(1, 1); math.Abs(got) > 1e-12 {
		t.Errorf("response on flat ground: got %g, want 0", got)
	}
}

func TestBlackTopHatWideDepressionSuppressed(t *testing.T) {
	// A depression wider than the structuring element closes over itself, so
	// the interior response stays small.
	relief := raster.NewFilled(31, 31, 1.0, 0)
	for y := 8; y <= 22; y++ {
		for x := 8; x <= 22; x++ {
			relief.Set(x, y, -3)
		}
	}

	resp, err := BlackTopHat(relief, 6) // radius 3 px against a 15 px pit
	if err != nil {
		t.Fatalf("BlackTopHat failed: %v", err)
	}
	if got := resp.At(15, 15); math.Abs(got) > 1e-12 {
		t.Errorf("response at center of wide pit: got %g, want 0", got)
	}
}

func TestBlackTopHatNoDataInvalidatesWindow(t *testing.T) {
	relief := raster.NewFilled(15, 15, 1.0, 0)
	relief.Set(7, 7, math.NaN())

	resp, err := BlackTopHat(relief, 4)
	if err != nil {
		t.Fatalf("BlackTopHat failed: %v", err)
	}
	if !resp.IsNoData(7, 7) {
		t.Error("no-data cell itself not invalidated")
	}
	if !resp.IsNoData(7, 8) {
		t.Error("neighbor inside structuring window not invalidated")
	}
	if resp.IsNoData(0, 0) {
		t.Error("cell far outside influence of no-data invalidated")
	}
}

func TestBlackTopHatDegenerateKernel(t *testing.T) {
	relief := raster.NewFilled(10, 10, 2.0, 0)
	if _, err := BlackTopHat(relief, 3); err == nil {
		t.Error("expected error for sub-pixel structuring radius")
	}
}

func TestDiskOffsets(t *testing.T) {
	offs := diskOffsets(1)
	if len(offs) != 5 {
		t.Errorf("radius-1 disk: got %d offsets, want 5", len(offs))
	}
	offs = diskOffsets(2)
	if len(offs) != 13 {
		t.Errorf("radius-2 disk: got %d offsets, want 13", len(offs))
	}
	for _, o := range offs {
		if o[0]*o[0]+o[1]*o[1] > 4 {
			t.Errorf("offset %v outside disk", o)
		}
	}
}
