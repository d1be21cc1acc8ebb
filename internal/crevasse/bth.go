package crevasse

import (
	"fmt"
	"math"

	"github.com/icetools/crevdem/internal/raster"
)

// BlackTopHat applies a black top hat filter to the detrended relief: a
// grayscale morphological closing (dilation then erosion) with a disk-shaped
// structuring element of the given diameter in metres, minus the input. The
// response is large where a depression is narrower than the structuring
// element and the surrounding surface is locally flat.
//
// Windows touching no-data yield no-data, mirroring Detrend. Near raster
// edges the shrinking window support can push the response slightly
// negative; callers must not assume strict non-negativity.
func BlackTopHat(relief *raster.Raster, diameterMetres float64) (*raster.Raster, error) {
	radius := int(diameterMetres / relief.CellSize / 2)
	if radius < 1 {
		return nil, fmt.Errorf("bth: structuring element diameter %g m is below two pixels at %g m cells", diameterMetres, relief.CellSize)
	}
	disk := diskOffsets(radius)

	dilated := morph(relief, disk, math.Max, math.Inf(-1))
	closed := morph(dilated, disk, math.Min, math.Inf(1))
	return raster.Subtract(closed, relief)
}

// diskOffsets returns the neighborhood offsets of a disk structuring element,
// the set of (dx, dy) with dx²+dy² ≤ radius².
func diskOffsets(radius int) [][2]int {
	var offs [][2]int
	r2 := radius * radius
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy <= r2 {
				offs = append(offs, [2]int{dx, dy})
			}
		}
	}
	return offs
}

// morph computes a grayscale rank filter (max for dilation, min for erosion)
// over the structuring element. Offsets falling outside the raster are
// ignored, shrinking the support at the edges. A no-data cell anywhere in the
// window invalidates the output cell.
func morph(src *raster.Raster, offs [][2]int, pick func(a, b float64) float64, identity float64) *raster.Raster {
	out := raster.New(src.Width, src.Height, src.CellSize)
	for y := 0; y < src.Height; y++ {
		for x := 0; x < src.Width; x++ {
			best := identity
			ok := true
			for _, o := range offs {
				nx, ny := x+o[0], y+o[1]
				if nx < 0 || nx >= src.Width || ny < 0 || ny >= src.Height {
					continue
				}
				v := src.At(nx, ny)
				if math.IsNaN(v) {
					ok = false
					break
				}
				best = pick(best, v)
			}
			if !ok {
				best = math.NaN()
			}
			out.Set(x, y, best)
		}
	}
	return out
}
