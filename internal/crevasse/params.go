package crevasse

import (
	"fmt"
	"math"
	"runtime"
)

// Params holds the tunable parameters of the crevasse-finding pipeline.
// Ground distances are in metres; DefaultParams returns values tuned for 2 m
// ArcticDEM/REMA strips of marine-terminating Greenlandic margins.
type Params struct {
	// Range is the characteristic scale of crevasse variability in metres.
	// It sets the structuring-element diameter of the BTH filter and, scaled
	// by GaussMult, the standard deviation of the detrending filter.
	Range float64 `yaml:"range"`

	// GaussMult scales Range to the detrending Gaussian standard deviation.
	// It must keep the detrending window well clear of the feature scale.
	GaussMult float64 `yaml:"gauss_mult"`

	// GaussCutoff truncates the Gaussian kernel at this many standard
	// deviations.
	GaussCutoff float64 `yaml:"gauss_cutoff"`

	// DepthThreshold is the BTH response, in metres, at or above which a cell
	// is classified as crevasse.
	DepthThreshold float64 `yaml:"depth_threshold"`

	// SmoothingIterations is the number of 3x3 averaging passes applied to
	// the reconstructed surface.
	SmoothingIterations int `yaml:"smoothing_iterations"`

	// TilePixels is the core tile edge length used when processing rasters
	// larger than one tile. Zero disables tiling.
	TilePixels int `yaml:"tile_pixels"`

	// Workers bounds the number of tiles processed concurrently. Zero means
	// one worker per CPU.
	Workers int `yaml:"workers"`

	// RetainIntermediates keeps the detrended, BTH-response and filled
	// rasters on the Result for inspection.
	RetainIntermediates bool `yaml:"retain_intermediates"`
}

// DefaultParams returns the published defaults: a 60 m range from variogram
// analysis, a 3x range detrending standard deviation, and a 1 m depth
// threshold.
func DefaultParams() Params {
	return Params{
		Range:               60,
		GaussMult:           3,
		GaussCutoff:         1,
		DepthThreshold:      1,
		SmoothingIterations: 2,
		TilePixels:          2048,
	}
}

// pixelParams are the per-run pixel quantities derived from Params and the
// raster cell size.
type pixelParams struct {
	gaussStd   int // detrending Gaussian standard deviation
	gaussKSize int // detrending kernel edge length, odd
	bthRadius  int // structuring-element radius
	searchDist int // reconstruction fill search distance
	overlap    int // total influence radius of the stage chain
	workers    int
}

// derive converts the ground-distance parameters to pixel counts and rejects
// degenerate configurations before any raster work starts.
func (p Params) derive(cellSize float64) (pixelParams, error) {
	if cellSize <= 0 {
		return pixelParams{}, fmt.Errorf("cell size must be positive, got %g", cellSize)
	}
	if p.Range <= 0 {
		return pixelParams{}, fmt.Errorf("range must be positive, got %g", p.Range)
	}
	if p.GaussMult <= 0 || p.GaussCutoff <= 0 {
		return pixelParams{}, fmt.Errorf("gauss_mult and gauss_cutoff must be positive, got %g and %g", p.GaussMult, p.GaussCutoff)
	}
	if p.DepthThreshold <= 0 {
		return pixelParams{}, fmt.Errorf("depth_threshold must be positive, got %g", p.DepthThreshold)
	}
	if p.SmoothingIterations < 0 {
		return pixelParams{}, fmt.Errorf("smoothing_iterations must be non-negative, got %d", p.SmoothingIterations)
	}
	if p.TilePixels < 0 {
		return pixelParams{}, fmt.Errorf("tile_pixels must be non-negative, got %d", p.TilePixels)
	}

	px := pixelParams{}
	px.gaussStd = int(math.Round(p.Range * p.GaussMult / cellSize))
	if px.gaussStd < 1 {
		return pixelParams{}, fmt.Errorf("detrending kernel is smaller than one pixel (std %g m at %g m cells)", p.Range*p.GaussMult, cellSize)
	}
	px.gaussKSize = oddKernelSize(float64(px.gaussStd) * p.GaussCutoff)

	px.bthRadius = int(p.Range / cellSize / 2)
	if px.bthRadius < 1 {
		return pixelParams{}, fmt.Errorf("structuring element is smaller than one pixel (diameter %g m at %g m cells)", p.Range, cellSize)
	}

	px.searchDist = int(math.Round(p.Range/cellSize)) * 2

	// The distance over which one output cell can be influenced by input
	// cells: detrend half-window, closing spread, fill donors, smoothing.
	px.overlap = px.gaussKSize/2 + 2*px.bthRadius + px.searchDist + p.SmoothingIterations

	if p.TilePixels > 0 && p.TilePixels <= px.overlap {
		return pixelParams{}, fmt.Errorf("tile_pixels %d does not exceed the required overlap of %d px", p.TilePixels, px.overlap)
	}

	px.workers = p.Workers
	if px.workers <= 0 {
		px.workers = runtime.NumCPU()
	}
	return px, nil
}

// oddKernelSize rounds n to the nearest odd integer, never below 1.
func oddKernelSize(n float64) int {
	k := int(math.Round(n))
	if k%2 == 0 {
		k++
	}
	if k < 1 {
		k = 1
	}
	return k
}
