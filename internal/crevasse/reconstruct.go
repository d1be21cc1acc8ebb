package crevasse

import (
	"fmt"
	"math"

	"github.com/icetools/crevdem/internal/raster"
)

// fillDirs are the eight compass directions searched for fill donors, with
// the ground distance of one step in each.
var fillDirs = [8]struct {
	dx, dy int
	step   float64
}{
	{1, 0, 1}, {-1, 0, 1}, {0, 1, 1}, {0, -1, 1},
	{1, 1, math.Sqrt2}, {1, -1, math.Sqrt2}, {-1, 1, math.Sqrt2}, {-1, -1, math.Sqrt2},
}

// Reconstruct builds a crevasse-free reference surface: masked cells are
// punched out of a copy of dem and refilled by inverse-distance-weighted
// interpolation from the nearest valid cell in each of eight directions, up
// to searchDistPx pixels away. Holes with no donor in range stay no-data.
//
// The fill is followed by iterations passes of a 3x3 averaging filter over
// the entire raster, which suppresses interpolation seams at hole boundaries
// at the cost of slightly perturbing unmasked cells too. Downstream depth
// thresholds were calibrated against exactly this behavior, so the smoothing
// deliberately covers unmasked cells as well.
func Reconstruct(dem *raster.Raster, mask *raster.Mask, searchDistPx, iterations int) (*raster.Raster, error) {
	if !mask.SameShape(dem) {
		return nil, fmt.Errorf("reconstruct: mask %dx%d against dem %dx%d: %w", mask.Width, mask.Height, dem.Width, dem.Height, raster.ErrShape)
	}
	if searchDistPx < 1 {
		return nil, fmt.Errorf("reconstruct: search distance must be at least one pixel, got %d", searchDistPx)
	}
	if iterations < 0 {
		return nil, fmt.Errorf("reconstruct: smoothing iterations must be non-negative, got %d", iterations)
	}

	// Punch holes where the mask says crevasse.
	punched := dem.Clone()
	for y := 0; y < dem.Height; y++ {
		for x := 0; x < dem.Width; x++ {
			if mask.At(x, y) != 0 {
				punched.Set(x, y, math.NaN())
			}
		}
	}

	// Fill each hole from the punched surface only, never from other filled
	// values, so the result is independent of traversal order.
	filled := punched.Clone()
	for y := 0; y < dem.Height; y++ {
		for x := 0; x < dem.Width; x++ {
			if mask.At(x, y) == 0 {
				continue
			}
			if v, ok := idwFill(punched, x, y, searchDistPx); ok {
				filled.Set(x, y, v)
			}
		}
	}

	for i := 0; i < iterations; i++ {
		filled = smooth3x3(filled)
	}
	return filled, nil
}

// idwFill scans the eight compass directions from (x, y) and blends the
// first valid value found in each, weighted by inverse distance. ok is false
// when no donor lies within searchDistPx.
func idwFill(src *raster.Raster, x, y, searchDistPx int) (float64, bool) {
	sumW, sumWV := 0.0, 0.0
	for _, d := range fillDirs {
		for step := 1; step <= searchDistPx; step++ {
			nx, ny := x+d.dx*step, y+d.dy*step
			if nx < 0 || nx >= src.Width || ny < 0 || ny >= src.Height {
				break
			}
			v := src.At(nx, ny)
			if math.IsNaN(v) {
				continue
			}
			w := 1 / (float64(step) * d.step)
			sumW += w
			sumWV += w * v
			break
		}
	}
	if sumW == 0 {
		return 0, false
	}
	return sumWV / sumW, true
}

// smooth3x3 applies one pass of a 3x3 mean filter. No-data cells stay
// no-data and are excluded from their neighbors' averages, so remaining
// holes neither fill in nor spread.
func smooth3x3(src *raster.Raster) *raster.Raster {
	out := raster.New(src.Width, src.Height, src.CellSize)
	for y := 0; y < src.Height; y++ {
		for x := 0; x < src.Width; x++ {
			if src.IsNoData(x, y) {
				continue
			}
			sum, n := 0.0, 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := x+dx, y+dy
					if nx < 0 || nx >= src.Width || ny < 0 || ny >= src.Height {
						continue
					}
					v := src.At(nx, ny)
					if math.IsNaN(v) {
						continue
					}
					sum += v
					n++
				}
			}
			out.Set(x, y, sum/float64(n))
		}
	}
	return out
}
