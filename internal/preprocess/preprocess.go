package preprocess

import (
	"fmt"
	"math"

	"github.com/icetools/crevdem/internal/raster"
)

// stripSentinel is the raw no-data sentinel used by ArcticDEM/REMA strip
// products before any masking.
const stripSentinel = -9999.0

// FilterSentinel returns dem with all cells at or below the -9999 strip
// sentinel marked as no-data.
func FilterSentinel(dem *raster.Raster) *raster.Raster {
	out := dem.Clone()
	v := out.Values()
	for i, x := range v {
		if x <= stripSentinel {
			v[i] = math.NaN()
		}
	}
	return out
}

// ApplyBitmask masks dem with a strip quality bitmask, keeping only cells
// the bitmask marks as good (value 0). Cloud, water and edge artifacts carry
// non-zero bits and become no-data.
func ApplyBitmask(dem, bitmask *raster.Raster) (*raster.Raster, error) {
	if !dem.SameShape(bitmask) {
		return nil, fmt.Errorf("bitmask %dx%d against dem %dx%d: %w", bitmask.Width, bitmask.Height, dem.Width, dem.Height, raster.ErrShape)
	}
	out := dem.Clone()
	for y := 0; y < dem.Height; y++ {
		for x := 0; x < dem.Width; x++ {
			if bitmask.At(x, y) != 0 {
				out.Set(x, y, math.NaN())
			}
		}
	}
	return out, nil
}

// GeoidCorrect converts ellipsoidal DEM heights to heights above the geoid.
// The geoid raster must be aligned with the DEM; reprojection is the
// caller's concern.
func GeoidCorrect(dem, geoid *raster.Raster) (*raster.Raster, error) {
	out, err := raster.Subtract(dem, geoid)
	if err != nil {
		return nil, fmt.Errorf("geoid correct: %w", err)
	}
	return out, nil
}

// MaskBedrock removes bedrock cells from dem using an ice/ocean
// classification raster where ice and ocean are 1 and land is 0.
func MaskBedrock(dem, iceMask *raster.Raster) (*raster.Raster, error) {
	if !dem.SameShape(iceMask) {
		return nil, fmt.Errorf("ice mask %dx%d against dem %dx%d: %w", iceMask.Width, iceMask.Height, dem.Width, dem.Height, raster.ErrShape)
	}
	out := dem.Clone()
	for y := 0; y < dem.Height; y++ {
		for x := 0; x < dem.Width; x++ {
			if iceMask.At(x, y) != 1 {
				out.Set(x, y, math.NaN())
			}
		}
	}
	return out, nil
}
