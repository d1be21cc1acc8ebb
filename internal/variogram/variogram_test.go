package variogram

import (
	"math"
	"testing"

	"github.com/icetools/crevdem/internal/raster"
)

// checkerboard alternates ±1 every blockPx pixels, giving a surface whose
// variability saturates at the block scale.
func checkerboard(size, blockPx int, cellSize float64) *raster.Raster {
	r := raster.New(size, size, cellSize)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			v := 1.0
			if ((x/blockPx)+(y/blockPx))%2 == 1 {
				v = -1.0
			}
			r.Set(x, y, v)
		}
	}
	return r
}

func TestSemivariogramFlatSurface(t *testing.T) {
	relief := raster.NewFilled(20, 20, 2.0, 0)
	pts, err := Semivariogram(relief, 5)
	if err != nil {
		t.Fatalf("Semivariogram failed: %v", err)
	}
	if len(pts) != 5 {
		t.Fatalf("got %d lags, want 5", len(pts))
	}
	for _, p := range pts {
		if p.Semivariance != 0 {
			t.Errorf("lag %g m: semivariance %g on flat surface, want 0", p.LagMetres, p.Semivariance)
		}
		if p.Pairs == 0 {
			t.Errorf("lag %g m: no pairs", p.LagMetres)
		}
	}
}

func TestSemivariogramIncreasesToBlockScale(t *testing.T) {
	relief := checkerboard(40, 8, 2.0)
	pts, err := Semivariogram(relief, 10)
	if err != nil {
		t.Fatalf("Semivariogram failed: %v", err)
	}

	// Within a block, semivariance grows with lag; at the block scale it is
	// near its maximum.
	if pts[0].Semivariance >= pts[6].Semivariance {
		t.Errorf("semivariance not increasing: γ(1)=%g γ(7)=%g", pts[0].Semivariance, pts[6].Semivariance)
	}
	if pts[7].Semivariance <= 0 {
		t.Errorf("semivariance at block scale: got %g, want > 0", pts[7].Semivariance)
	}
}

func TestSemivariogramLagInMetres(t *testing.T) {
	relief := raster.NewFilled(10, 10, 2.0, 0)
	pts, err := Semivariogram(relief, 3)
	if err != nil {
		t.Fatalf("Semivariogram failed: %v", err)
	}
	for i, p := range pts {
		want := float64(i+1) * 2.0
		if p.LagMetres != want {
			t.Errorf("lag %d: got %g m, want %g m", i, p.LagMetres, want)
		}
	}
}

func TestSemivariogramSkipsNoDataPairs(t *testing.T) {
	relief := raster.NewFilled(4, 1, 1.0, 0)
	relief.Set(1, 0, 5)
	relief.Set(2, 0, math.NaN())

	pts, err := Semivariogram(relief, 1)
	if err != nil {
		t.Fatalf("Semivariogram failed: %v", err)
	}
	// Valid lag-1 pairs: (0,1) only, since (1,2) and (2,3) touch no-data.
	if pts[0].Pairs != 1 {
		t.Errorf("pairs: got %d, want 1", pts[0].Pairs)
	}
	if got, want := pts[0].Semivariance, 12.5; got != want {
		t.Errorf("semivariance: got %g, want %g", got, want)
	}
}

func TestSemivariogramErrors(t *testing.T) {
	relief := raster.NewFilled(5, 5, 1.0, 0)
	if _, err := Semivariogram(relief, 0); err == nil {
		t.Error("expected error for zero max lag")
	}
	if _, err := Semivariogram(relief, 10); err == nil {
		t.Error("expected error for lag beyond raster extent")
	}
}

func TestSuggestRange(t *testing.T) {
	relief := checkerboard(48, 6, 2.0)
	pts, err := Semivariogram(relief, 12)
	if err != nil {
		t.Fatalf("Semivariogram failed: %v", err)
	}

	rangeM, ok := SuggestRange(relief, pts)
	if !ok {
		t.Fatal("no range suggested")
	}
	// The checkerboard decorrelates within its 6 px (12 m) block scale; the
	// 95%-sill crossing lands at half a block.
	if rangeM < 6 || rangeM > 16 {
		t.Errorf("suggested range %g m, want within [6, 16] m", rangeM)
	}
}

func TestSuggestRangeFlatSurface(t *testing.T) {
	relief := raster.NewFilled(20, 20, 2.0, 0)
	pts, err := Semivariogram(relief, 5)
	if err != nil {
		t.Fatalf("Semivariogram failed: %v", err)
	}
	if _, ok := SuggestRange(relief, pts); ok {
		t.Error("range suggested for zero-variance surface")
	}
}

func TestMaxSemivariance(t *testing.T) {
	pts := []Point{
		{LagMetres: 2, Semivariance: 0.5},
		{LagMetres: 4, Semivariance: math.NaN()},
		{LagMetres: 6, Semivariance: 1.25},
	}
	max, ok := MaxSemivariance(pts)
	if !ok || max != 1.25 {
		t.Errorf("got (%g, %v), want (1.25, true)", max, ok)
	}

	if _, ok := MaxSemivariance([]Point{{Semivariance: math.NaN()}}); ok {
		t.Error("expected ok=false for all-NaN series")
	}
}
