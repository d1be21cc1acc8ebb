// Package render turns pipeline rasters into quick-look images for QC:
// grayscale hillshade-style previews of elevation grids, a perceptual
// colormap for crevasse depth, and mask overlays. Nothing here feeds back
// into the pipeline; it exists so a strip's outputs can be eyeballed without
// GIS tooling.
package render

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/disintegration/imaging"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/icetools/crevdem/internal/raster"
)

// noDataGray is the flat gray used for no-data cells in every preview.
var noDataGray = color.NRGBA{R: 120, G: 120, B: 120, A: 255}

// GrayImage renders a raster as min-max normalized grayscale. No-data cells
// come out flat gray. An all-no-data raster renders entirely gray.
func GrayImage(r *raster.Raster) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, r.Width, r.Height))
	min, max, ok := r.MinMax()
	span := max - min
	for y := 0; y < r.Height; y++ {
		for x := 0; x < r.Width; x++ {
			v := r.At(x, y)
			if math.IsNaN(v) || !ok {
				img.SetNRGBA(x, y, noDataGray)
				continue
			}
			t := 0.5
			if span > 0 {
				t = (v - min) / span
			}
			g := uint8(math.Round(t * 255))
			img.SetNRGBA(x, y, color.NRGBA{R: g, G: g, B: g, A: 255})
		}
	}
	return img
}

// DepthImage renders a crevasse depth raster: white where depth is zero,
// deepening through a Lab-blended blue ramp up to the raster maximum, gray
// where coverage was lost. Blending in Lab keeps the ramp perceptually even.
func DepthImage(depth *raster.Raster) *image.NRGBA {
	shallow, _ := colorful.Hex("#f7fbff")
	deep, _ := colorful.Hex("#08306b")

	img := image.NewNRGBA(image.Rect(0, 0, depth.Width, depth.Height))
	_, max, ok := depth.MinMax()
	for y := 0; y < depth.Height; y++ {
		for x := 0; x < depth.Width; x++ {
			v := depth.At(x, y)
			if math.IsNaN(v) || !ok {
				img.SetNRGBA(x, y, noDataGray)
				continue
			}
			t := 0.0
			if max > 0 {
				t = v / max
			}
			c := shallow.BlendLab(deep, t).Clamped()
			cr, cg, cb := c.RGB255()
			img.SetNRGBA(x, y, color.NRGBA{R: cr, G: cg, B: cb, A: 255})
		}
	}
	return img
}

// MaskOverlay renders the DEM in grayscale with masked (crevasse) cells
// painted red on top.
func MaskOverlay(dem *raster.Raster, mask *raster.Mask) (*image.NRGBA, error) {
	if !mask.SameShape(dem) {
		return nil, fmt.Errorf("overlay mask %dx%d against dem %dx%d: %w", mask.Width, mask.Height, dem.Width, dem.Height, raster.ErrShape)
	}
	img := GrayImage(dem)
	red := color.NRGBA{R: 220, G: 40, B: 40, A: 255}
	for y := 0; y < dem.Height; y++ {
		for x := 0; x < dem.Width; x++ {
			if mask.At(x, y) != 0 {
				img.SetNRGBA(x, y, red)
			}
		}
	}
	return img, nil
}

// SavePNG writes img to path as a PNG.
func SavePNG(path string, img image.Image) error {
	if err := imgio.Save(path, img, imgio.PNGEncoder()); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// Thumbnail downsamples img to fit within maxPx on its longer side,
// preserving aspect ratio. Images already small enough are returned
// unchanged.
func Thumbnail(img image.Image, maxPx int) image.Image {
	b := img.Bounds()
	if b.Dx() <= maxPx && b.Dy() <= maxPx {
		return img
	}
	return imaging.Fit(img, maxPx, maxPx, imaging.Lanczos)
}
