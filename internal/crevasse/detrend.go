package crevasse

import (
	"fmt"
	"math"

	"github.com/icetools/crevdem/internal/raster"
)

// Detrend estimates the large-scale topographic trend of dem by applying a
// 2D Gaussian low-pass filter with the given standard deviation (in metres,
// converted to pixels with the raster cell size) truncated at cutoff standard
// deviations. The caller obtains local relief as dem − trend.
//
// Any output cell whose filter window touches a no-data cell is itself
// no-data, so valid coverage shrinks by the window radius around no-data
// margins. A standard deviation below one pixel is a configuration error.
func Detrend(dem *raster.Raster, stdMetres, cutoff float64) (*raster.Raster, error) {
	stdPx := int(math.Round(stdMetres / dem.CellSize))
	if stdPx < 1 {
		return nil, fmt.Errorf("detrend: standard deviation %g m is below one pixel at %g m cells", stdMetres, dem.CellSize)
	}
	if cutoff <= 0 {
		return nil, fmt.Errorf("detrend: cutoff must be positive, got %g", cutoff)
	}
	ksize := oddKernelSize(float64(stdPx) * cutoff)
	kernel := gaussKernel(ksize, float64(stdPx))

	// Separable convolution: rows into a scratch grid, then columns. NaN
	// propagates through the weighted sums, which invalidates exactly the
	// cells whose square support window overlaps no-data.
	scratch := convolveRows(dem, kernel)
	return convolveCols(scratch, kernel), nil
}

// gaussKernel returns a normalized 1D Gaussian kernel of odd length ksize.
func gaussKernel(ksize int, sigma float64) []float64 {
	k := make([]float64, ksize)
	r := ksize / 2
	sum := 0.0
	for i := range k {
		d := float64(i - r)
		k[i] = math.Exp(-d * d / (2 * sigma * sigma))
		sum += k[i]
	}
	for i := range k {
		k[i] /= sum
	}
	return k
}

// reflectIndex maps an out-of-range index into [0, n) by mirroring about the
// edges without repeating the border sample (OpenCV's BORDER_REFLECT_101).
func reflectIndex(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		}
		if i >= n {
			i = 2*n - 2 - i
		}
	}
	return i
}

func convolveRows(src *raster.Raster, kernel []float64) *raster.Raster {
	out := raster.New(src.Width, src.Height, src.CellSize)
	r := len(kernel) / 2
	for y := 0; y < src.Height; y++ {
		for x := 0; x < src.Width; x++ {
			acc := 0.0
			for i, w := range kernel {
				acc += w * src.At(reflectIndex(x+i-r, src.Width), y)
			}
			out.Set(x, y, acc)
		}
	}
	return out
}

func convolveCols(src *raster.Raster, kernel []float64) *raster.Raster {
	out := raster.New(src.Width, src.Height, src.CellSize)
	r := len(kernel) / 2
	for y := 0; y < src.Height; y++ {
		for x := 0; x < src.Width; x++ {
			acc := 0.0
			for i, w := range kernel {
				acc += w * src.At(x, reflectIndex(y+i-r, src.Height))
			}
			out.Set(x, y, acc)
		}
	}
	return out
}
