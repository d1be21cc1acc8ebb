package crevasse

import (
	"fmt"
	"math"

	"github.com/icetools/crevdem/internal/raster"
)

// Threshold converts a BTH response raster into a binary crevasse mask:
// 1 where the response is at least thresholdMetres, 0 elsewhere. No-data
// cells are never classified as crevasse. An all-zero mask is a valid
// outcome, not an error.
func Threshold(response *raster.Raster, thresholdMetres float64) (*raster.Mask, error) {
	if thresholdMetres <= 0 {
		return nil, fmt.Errorf("threshold: depth threshold must be positive, got %g", thresholdMetres)
	}
	mask := raster.NewMask(response.Width, response.Height)
	for y := 0; y < response.Height; y++ {
		for x := 0; x < response.Width; x++ {
			v := response.At(x, y)
			if !math.IsNaN(v) && v >= thresholdMetres {
				mask.Set(x, y, 1)
			}
		}
	}
	return mask, nil
}
