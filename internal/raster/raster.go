package raster

import (
	"errors"
	"fmt"
	"image"
	"math"
)

// ErrShape is returned when two grids that must be aligned have different
// dimensions. It is always wrapped with the names of the offending operands.
var ErrShape = errors.New("raster shape mismatch")

// Raster is a dense 2D elevation grid. Cells holding NaN are no-data.
type Raster struct {
	// Width and Height are the grid dimensions in pixels.
	Width  int
	Height int

	// CellSize is the ground distance covered by one (square) pixel, in metres.
	CellSize float64

	// XLL and YLL locate the grid's lower-left corner in the source
	// projection. They ride along so saved grids keep their placement; all
	// processing is pixel-based.
	XLL float64
	YLL float64

	values []float64
}

// New creates a raster of the given dimensions with every cell set to no-data.
func New(width, height int, cellSize float64) *Raster {
	r := &Raster{
		Width:    width,
		Height:   height,
		CellSize: cellSize,
		values:   make([]float64, width*height),
	}
	for i := range r.values {
		r.values[i] = math.NaN()
	}
	return r
}

// NewFilled creates a raster with every cell set to v.
func NewFilled(width, height int, cellSize, v float64) *Raster {
	r := New(width, height, cellSize)
	for i := range r.values {
		r.values[i] = v
	}
	return r
}

// At returns the value at (x, y). NaN means no-data.
func (r *Raster) At(x, y int) float64 { return r.values[y*r.Width+x] }

// Set stores v at (x, y).
func (r *Raster) Set(x, y int, v float64) { r.values[y*r.Width+x] = v }

// IsNoData reports whether the cell at (x, y) is no-data.
func (r *Raster) IsNoData(x, y int) bool { return math.IsNaN(r.values[y*r.Width+x]) }

// Values returns the backing slice in row-major order. The slice is live;
// callers that need an independent copy should Clone the raster instead.
func (r *Raster) Values() []float64 { return r.values }

// Bounds returns the pixel bounds of the raster as an image.Rectangle.
func (r *Raster) Bounds() image.Rectangle { return image.Rect(0, 0, r.Width, r.Height) }

// SameShape reports whether o has the same dimensions as r.
func (r *Raster) SameShape(o *Raster) bool {
	return o != nil && r.Width == o.Width && r.Height == o.Height
}

// Clone returns an independent copy of the raster.
func (r *Raster) Clone() *Raster {
	c := &Raster{
		Width:    r.Width,
		Height:   r.Height,
		CellSize: r.CellSize,
		XLL:      r.XLL,
		YLL:      r.YLL,
		values:   make([]float64, len(r.values)),
	}
	copy(c.values, r.values)
	return c
}

// Crop returns a copy of the cells inside rect, which must lie within the
// raster bounds.
func (r *Raster) Crop(rect image.Rectangle) (*Raster, error) {
	if !rect.In(r.Bounds()) {
		return nil, fmt.Errorf("crop %v outside raster bounds %v", rect, r.Bounds())
	}
	c := New(rect.Dx(), rect.Dy(), r.CellSize)
	// Row 0 is the northernmost row, so the lower-left corner moves east with
	// rect.Min.X and north with the rows cut off below rect.Max.Y.
	c.XLL = r.XLL + float64(rect.Min.X)*r.CellSize
	c.YLL = r.YLL + float64(r.Height-rect.Max.Y)*r.CellSize
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		src := r.values[y*r.Width+rect.Min.X : y*r.Width+rect.Max.X]
		dst := c.values[(y-rect.Min.Y)*c.Width : (y-rect.Min.Y)*c.Width+c.Width]
		copy(dst, src)
	}
	return c, nil
}

// Paste copies all cells of src into r with src's origin placed at (x, y).
// The pasted region must lie within the raster bounds.
func (r *Raster) Paste(src *Raster, x, y int) error {
	rect := image.Rect(x, y, x+src.Width, y+src.Height)
	if !rect.In(r.Bounds()) {
		return fmt.Errorf("paste %v outside raster bounds %v", rect, r.Bounds())
	}
	for sy := 0; sy < src.Height; sy++ {
		copy(r.values[(y+sy)*r.Width+x:(y+sy)*r.Width+x+src.Width],
			src.values[sy*src.Width:(sy+1)*src.Width])
	}
	return nil
}

// MinMax returns the smallest and largest valid values in the raster. ok is
// false when every cell is no-data.
func (r *Raster) MinMax() (min, max float64, ok bool) {
	min, max = math.Inf(1), math.Inf(-1)
	for _, v := range r.values {
		if math.IsNaN(v) {
			continue
		}
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
		ok = true
	}
	return min, max, ok
}

// CountNoData returns the number of no-data cells.
func (r *Raster) CountNoData() int {
	n := 0
	for _, v := range r.values {
		if math.IsNaN(v) {
			n++
		}
	}
	return n
}

// Mask is a binary grid aligned with a Raster. 1 marks a crevasse cell.
type Mask struct {
	Width  int
	Height int

	bits []uint8
}

// NewMask creates an all-zero mask of the given dimensions.
func NewMask(width, height int) *Mask {
	return &Mask{Width: width, Height: height, bits: make([]uint8, width*height)}
}

// At returns the mask value at (x, y), either 0 or 1.
func (m *Mask) At(x, y int) uint8 { return m.bits[y*m.Width+x] }

// Set stores v at (x, y). Any non-zero v is stored as 1.
func (m *Mask) Set(x, y int, v uint8) {
	if v != 0 {
		v = 1
	}
	m.bits[y*m.Width+x] = v
}

// Bounds returns the pixel bounds of the mask as an image.Rectangle.
func (m *Mask) Bounds() image.Rectangle { return image.Rect(0, 0, m.Width, m.Height) }

// SameShape reports whether the mask is aligned with raster r.
func (m *Mask) SameShape(r *Raster) bool {
	return r != nil && m.Width == r.Width && m.Height == r.Height
}

// Clone returns an independent copy of the mask.
func (m *Mask) Clone() *Mask {
	c := NewMask(m.Width, m.Height)
	copy(c.bits, m.bits)
	return c
}

// Crop returns a copy of the mask cells inside rect.
func (m *Mask) Crop(rect image.Rectangle) (*Mask, error) {
	if !rect.In(m.Bounds()) {
		return nil, fmt.Errorf("crop %v outside mask bounds %v", rect, m.Bounds())
	}
	c := NewMask(rect.Dx(), rect.Dy())
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		copy(c.bits[(y-rect.Min.Y)*c.Width:(y-rect.Min.Y)*c.Width+c.Width],
			m.bits[y*m.Width+rect.Min.X:y*m.Width+rect.Max.X])
	}
	return c, nil
}

// Paste copies all cells of src into m with src's origin placed at (x, y).
func (m *Mask) Paste(src *Mask, x, y int) error {
	rect := image.Rect(x, y, x+src.Width, y+src.Height)
	if !rect.In(m.Bounds()) {
		return fmt.Errorf("paste %v outside mask bounds %v", rect, m.Bounds())
	}
	for sy := 0; sy < src.Height; sy++ {
		copy(m.bits[(y+sy)*m.Width+x:(y+sy)*m.Width+x+src.Width],
			src.bits[sy*src.Width:(sy+1)*src.Width])
	}
	return nil
}

// Count returns the number of cells set to 1.
func (m *Mask) Count() int {
	n := 0
	for _, b := range m.bits {
		if b != 0 {
			n++
		}
	}
	return n
}

// ToRaster converts the mask to a 0/1 float raster with the given cell size,
// for serialization alongside elevation grids.
func (m *Mask) ToRaster(cellSize float64) *Raster {
	r := New(m.Width, m.Height, cellSize)
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			r.Set(x, y, float64(m.At(x, y)))
		}
	}
	return r
}
