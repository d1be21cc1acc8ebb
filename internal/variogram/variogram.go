// Package variogram estimates the spatial range of surface variability on a
// detrended DEM, the quantity that sizes the crevasse pipeline's detrending
// and structuring kernels. The published 60 m default was derived from
// exactly this analysis over ArcticDEM strips of marine-terminating
// Greenlandic glaciers; rerun it when moving to a new region or sensor.
package variogram

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/icetools/crevdem/internal/raster"
)

// Point is one lag of an empirical semivariogram.
type Point struct {
	// LagMetres is the separation distance of the cell pairs.
	LagMetres float64

	// Semivariance is γ(h) = ½·mean((z(s) − z(s+h))²) over all valid pairs.
	Semivariance float64

	// Pairs is the number of valid cell pairs behind the estimate.
	Pairs int
}

// Semivariogram computes the empirical semivariogram of relief along the
// grid axes for every lag from one pixel to maxLagPx. Pairs touching
// no-data are skipped. Relief should already be detrended; a raw DEM's
// regional slope would dominate the estimate.
func Semivariogram(relief *raster.Raster, maxLagPx int) ([]Point, error) {
	if maxLagPx < 1 {
		return nil, fmt.Errorf("variogram: max lag must be at least one pixel, got %d", maxLagPx)
	}
	if maxLagPx >= relief.Width && maxLagPx >= relief.Height {
		return nil, fmt.Errorf("variogram: max lag %d px exceeds raster extent %dx%d", maxLagPx, relief.Width, relief.Height)
	}

	pts := make([]Point, 0, maxLagPx)
	for lag := 1; lag <= maxLagPx; lag++ {
		sum, n := 0.0, 0

		// Horizontal pairs.
		for y := 0; y < relief.Height; y++ {
			for x := 0; x+lag < relief.Width; x++ {
				a, b := relief.At(x, y), relief.At(x+lag, y)
				if math.IsNaN(a) || math.IsNaN(b) {
					continue
				}
				d := a - b
				sum += d * d
				n++
			}
		}
		// Vertical pairs.
		for y := 0; y+lag < relief.Height; y++ {
			for x := 0; x < relief.Width; x++ {
				a, b := relief.At(x, y), relief.At(x, y+lag)
				if math.IsNaN(a) || math.IsNaN(b) {
					continue
				}
				d := a - b
				sum += d * d
				n++
			}
		}

		p := Point{LagMetres: float64(lag) * relief.CellSize, Pairs: n}
		if n > 0 {
			p.Semivariance = sum / (2 * float64(n))
		} else {
			p.Semivariance = math.NaN()
		}
		pts = append(pts, p)
	}
	return pts, nil
}

// sillFraction is the share of the sill at which the variogram is considered
// to have levelled off.
const sillFraction = 0.95

// SuggestRange picks a kernel range from a semivariogram: the first lag
// whose semivariance reaches 95% of the sill, taking the sill as the
// variance of the relief itself. ok is false when the variogram never
// levels off within the sampled lags, meaning maxLagPx was too short.
func SuggestRange(relief *raster.Raster, pts []Point) (rangeMetres float64, ok bool) {
	var valid []float64
	for _, v := range relief.Values() {
		if !math.IsNaN(v) {
			valid = append(valid, v)
		}
	}
	if len(valid) < 2 {
		return 0, false
	}
	sill := stat.Variance(valid, nil)
	if sill == 0 {
		return 0, false
	}

	for _, p := range pts {
		if !math.IsNaN(p.Semivariance) && p.Semivariance >= sillFraction*sill {
			return p.LagMetres, true
		}
	}
	return 0, false
}

// Semivariances extracts the γ(h) series from a variogram, for plotting or
// model fitting. NaN marks lags with no valid pairs.
func Semivariances(pts []Point) []float64 {
	out := make([]float64, len(pts))
	for i, p := range pts {
		out[i] = p.Semivariance
	}
	return out
}

// MaxSemivariance returns the largest finite semivariance in the series,
// useful for scaling plots. ok is false when every lag is empty.
func MaxSemivariance(pts []Point) (max float64, ok bool) {
	vals := Semivariances(pts)
	finite := vals[:0]
	for _, v := range vals {
		if !math.IsNaN(v) {
			finite = append(finite, v)
		}
	}
	if len(finite) == 0 {
		return 0, false
	}
	return floats.Max(finite), true
}
