package preprocess

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/icetools/crevdem/internal/raster"
)

// MelangeOptions tunes the sea-level estimate used to remove mélange and
// open ocean from a geoid-corrected DEM.
type MelangeOptions struct {
	// CandidateHeightThreshM is the maximum height above the geoid, in
	// metres, for a cell to count toward the sea-level estimate.
	CandidateHeightThreshM float64

	// CandidateAreaThreshKm2 is the minimum area of near-sea-level cells,
	// in km², required before a sea level is estimated at all.
	CandidateAreaThreshKm2 float64

	// NearSeaLevelThreshM removes cells below the estimated sea level plus
	// this margin, in metres.
	NearSeaLevelThreshM float64
}

// DefaultMelangeOptions returns the published thresholds (Shiggins et al.
// 2023): 15 m candidate ceiling, 1 km² minimum area, 10 m removal margin.
func DefaultMelangeOptions() MelangeOptions {
	return MelangeOptions{
		CandidateHeightThreshM: 15,
		CandidateAreaThreshKm2: 1,
		NearSeaLevelThreshM:    10,
	}
}

// Sea-level histogram: 0.25 m bins spanning ±15 m about the geoid.
const (
	seaLevelBinWidth = 0.25
	seaLevelBinSpan  = 15.125
)

// SeaLevel estimates local sea level as the modal 0.25 m elevation bin of
// all cells below the candidate ceiling. ok is false when the candidate
// region is smaller than the area threshold, which means the strip contains
// no resolvable ocean.
func SeaLevel(dem *raster.Raster, opts MelangeOptions) (level float64, ok bool) {
	var candidates []float64
	for _, v := range dem.Values() {
		if math.IsNaN(v) || v >= opts.CandidateHeightThreshM {
			continue
		}
		// Bin range is fixed; anything below it is sensor noise, not ocean.
		if v < -seaLevelBinSpan || v >= seaLevelBinSpan {
			continue
		}
		candidates = append(candidates, v)
	}

	cellArea := dem.CellSize * dem.CellSize // m² per cell
	minCells := int(opts.CandidateAreaThreshKm2 * 1e6 / cellArea)
	if len(candidates) < minCells {
		return 0, false
	}

	nBins := int(2 * seaLevelBinSpan / seaLevelBinWidth)
	dividers := make([]float64, nBins+1)
	floats.Span(dividers, -seaLevelBinSpan, seaLevelBinSpan)

	sort.Float64s(candidates)
	counts := stat.Histogram(nil, dividers, candidates, nil)

	mode := floats.MaxIdx(counts)
	return dividers[mode] + seaLevelBinWidth/2, true
}

// MelangeMask returns a keep-mask over dem: 1 where the cell is land or ice,
// 0 where it is mélange/ocean (below the estimated sea level plus the
// margin). When no sea level can be estimated, every valid cell is kept.
// estimated reports whether a sea level was found.
func MelangeMask(dem *raster.Raster, opts MelangeOptions) (mask *raster.Mask, level float64, estimated bool) {
	mask = raster.NewMask(dem.Width, dem.Height)

	level, ok := SeaLevel(dem, opts)
	cutoff := level + opts.NearSeaLevelThreshM
	for y := 0; y < dem.Height; y++ {
		for x := 0; x < dem.Width; x++ {
			v := dem.At(x, y)
			if math.IsNaN(v) {
				continue
			}
			if !ok || v > cutoff {
				mask.Set(x, y, 1)
			}
		}
	}
	return mask, level, ok
}

// MaskMelange removes mélange/ocean cells from a geoid-corrected DEM. When
// no sea level can be estimated the DEM is returned unchanged (as a copy)
// and estimated is false.
func MaskMelange(dem *raster.Raster, opts MelangeOptions) (out *raster.Raster, level float64, estimated bool) {
	mask, level, ok := MelangeMask(dem, opts)
	out = dem.Clone()
	if !ok {
		return out, 0, false
	}
	for y := 0; y < dem.Height; y++ {
		for x := 0; x < dem.Width; x++ {
			if mask.At(x, y) == 0 {
				out.Set(x, y, math.NaN())
			}
		}
	}
	return out, level, true
}
