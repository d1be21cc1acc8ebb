package crevasse

import (
	"fmt"
	"image"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/icetools/crevdem/internal/log"
	"github.com/icetools/crevdem/internal/raster"
)

// Result holds the outputs of one crevasse-finding run.
type Result struct {
	// Depth is the per-pixel crevasse depth in metres: non-negative under
	// the mask, zero outside it, no-data where coverage was lost.
	Depth *raster.Raster

	// Mask is the binary crevasse mask the depth was computed under.
	Mask *raster.Mask

	// Stage intermediates, populated only when Params.RetainIntermediates
	// is set: the detrended relief, the BTH response, and the reconstructed
	// (crevasse-filled) surface.
	Detrended *raster.Raster
	Response  *raster.Raster
	Filled    *raster.Raster
}

// Find runs the full pipeline over a DEM strip: detrend, black top hat,
// threshold, reconstruct, depth. Strips larger than Params.TilePixels on
// either side are processed as overlapping tiles so peak memory tracks the
// tile size rather than the strip; the stitched output is numerically
// identical to a whole-strip run because the overlap covers the total
// influence radius of the stage chain. A failing tile aborts the whole run,
// since silently skipping a region would misrepresent crevasse coverage.
func Find(dem *raster.Raster, p Params) (*Result, error) {
	if dem == nil || dem.Width == 0 || dem.Height == 0 {
		return nil, fmt.Errorf("find: empty input raster")
	}
	px, err := p.derive(dem.CellSize)
	if err != nil {
		return nil, fmt.Errorf("find: %w", err)
	}

	run := findWhole
	if p.TilePixels > 0 && (dem.Width > p.TilePixels || dem.Height > p.TilePixels) {
		run = findTiled
	}
	res, err := run(dem, p, px)
	if err != nil {
		return nil, err
	}
	// Outputs are georeferenced like the input strip.
	for _, r := range []*raster.Raster{res.Depth, res.Detrended, res.Response, res.Filled} {
		if r != nil {
			r.XLL, r.YLL = dem.XLL, dem.YLL
		}
	}
	return res, nil
}

// findWhole runs the five stages over one raster in sequence.
func findWhole(dem *raster.Raster, p Params, px pixelParams) (*Result, error) {
	started := time.Now()

	trend, err := Detrend(dem, p.Range*p.GaussMult, p.GaussCutoff)
	if err != nil {
		return nil, err
	}
	relief, err := raster.Subtract(dem, trend)
	if err != nil {
		return nil, err
	}
	log.Debugf("detrended %dx%d in %v", dem.Width, dem.Height, time.Since(started))

	t := time.Now()
	response, err := BlackTopHat(relief, p.Range)
	if err != nil {
		return nil, err
	}
	log.Debugf("bth filter in %v", time.Since(t))

	mask, err := Threshold(response, p.DepthThreshold)
	if err != nil {
		return nil, err
	}
	log.Debugf("mask covers %d of %d cells", mask.Count(), dem.Width*dem.Height)

	t = time.Now()
	filled, err := Reconstruct(dem, mask, px.searchDist, p.SmoothingIterations)
	if err != nil {
		return nil, err
	}
	log.Debugf("surface reconstructed in %v", time.Since(t))

	depth, err := Depth(dem, filled, mask)
	if err != nil {
		return nil, err
	}

	res := &Result{Depth: depth, Mask: mask}
	if p.RetainIntermediates {
		res.Detrended = relief
		res.Response = response
		res.Filled = filled
	}
	return res, nil
}

// tileSpec is one block of a tiling plan: the core region owned by the tile
// and the padded region actually processed.
type tileSpec struct {
	core image.Rectangle
	pad  image.Rectangle
}

// planTiles partitions bounds into size×size cores, each padded by overlap
// pixels and clamped to bounds.
func planTiles(bounds image.Rectangle, size, overlap int) []tileSpec {
	var tiles []tileSpec
	for y := bounds.Min.Y; y < bounds.Max.Y; y += size {
		for x := bounds.Min.X; x < bounds.Max.X; x += size {
			core := image.Rect(x, y, min(x+size, bounds.Max.X), min(y+size, bounds.Max.Y))
			pad := core.Inset(-overlap).Intersect(bounds)
			tiles = append(tiles, tileSpec{core: core, pad: pad})
		}
	}
	return tiles
}

// findTiled runs findWhole per padded tile on a bounded worker pool and
// stitches the core regions. Core regions are disjoint, so workers write to
// non-overlapping slices of the shared outputs.
func findTiled(dem *raster.Raster, p Params, px pixelParams) (*Result, error) {
	out := &Result{
		Depth: raster.New(dem.Width, dem.Height, dem.CellSize),
		Mask:  raster.NewMask(dem.Width, dem.Height),
	}
	if p.RetainIntermediates {
		out.Detrended = raster.New(dem.Width, dem.Height, dem.CellSize)
		out.Response = raster.New(dem.Width, dem.Height, dem.CellSize)
		out.Filled = raster.New(dem.Width, dem.Height, dem.CellSize)
	}

	tiles := planTiles(dem.Bounds(), p.TilePixels, px.overlap)
	log.Infof("processing %dx%d strip as %d tiles of %d px (overlap %d px, %d workers)",
		dem.Width, dem.Height, len(tiles), p.TilePixels, px.overlap, px.workers)

	var g errgroup.Group
	g.SetLimit(px.workers)
	for _, tl := range tiles {
		tl := tl
		g.Go(func() error {
			sub, err := dem.Crop(tl.pad)
			if err != nil {
				return fmt.Errorf("tile %v: %w", tl.core, err)
			}
			res, err := findWhole(sub, p, px)
			if err != nil {
				return fmt.Errorf("tile %v: %w", tl.core, err)
			}

			rel := tl.core.Sub(tl.pad.Min) // core region in tile coordinates
			if err := stitchRaster(out.Depth, res.Depth, rel, tl.core.Min); err != nil {
				return fmt.Errorf("tile %v: %w", tl.core, err)
			}
			mc, err := res.Mask.Crop(rel)
			if err != nil {
				return fmt.Errorf("tile %v: %w", tl.core, err)
			}
			if err := out.Mask.Paste(mc, tl.core.Min.X, tl.core.Min.Y); err != nil {
				return fmt.Errorf("tile %v: %w", tl.core, err)
			}

			if p.RetainIntermediates {
				for _, pair := range []struct{ dst, src *raster.Raster }{
					{out.Detrended, res.Detrended},
					{out.Response, res.Response},
					{out.Filled, res.Filled},
				} {
					if err := stitchRaster(pair.dst, pair.src, rel, tl.core.Min); err != nil {
						return fmt.Errorf("tile %v: %w", tl.core, err)
					}
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("find: %w", err)
	}
	return out, nil
}

// stitchRaster copies the rel region of src into dst at the given origin.
func stitchRaster(dst, src *raster.Raster, rel image.Rectangle, at image.Point) error {
	c, err := src.Crop(rel)
	if err != nil {
		return err
	}
	return dst.Paste(c, at.X, at.Y)
}
