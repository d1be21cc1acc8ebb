package crevasse

import (
	"fmt"
	"math"

	"github.com/icetools/crevdem/internal/raster"
)

// Depth computes per-pixel crevasse depth as the reconstructed surface minus
// the original DEM, clamped at zero: interpolation overshoot below the true
// surface is not negative depth. Cells outside the mask report zero depth
// regardless of any local difference. No-data in either input propagates, so
// holes the reconstruction could not fill stay no-data rather than zero.
func Depth(dem, filled *raster.Raster, mask *raster.Mask) (*raster.Raster, error) {
	if !dem.SameShape(filled) {
		return nil, fmt.Errorf("depth: filled %dx%d against dem %dx%d: %w", filled.Width, filled.Height, dem.Width, dem.Height, raster.ErrShape)
	}
	if !mask.SameShape(dem) {
		return nil, fmt.Errorf("depth: mask %dx%d against dem %dx%d: %w", mask.Width, mask.Height, dem.Width, dem.Height, raster.ErrShape)
	}

	out := raster.New(dem.Width, dem.Height, dem.CellSize)
	for y := 0; y < dem.Height; y++ {
		for x := 0; x < dem.Width; x++ {
			o, f := dem.At(x, y), filled.At(x, y)
			if math.IsNaN(o) || math.IsNaN(f) {
				continue // stays no-data
			}
			if mask.At(x, y) == 0 {
				out.Set(x, y, 0)
				continue
			}
			d := f - o
			if d < 0 {
				d = 0
			}
			out.Set(x, y, d)
		}
	}
	return out, nil
}
