package raster

import "fmt"

// Subtract returns a − b cell-wise. NaN in either operand yields NaN. The
// result inherits a's cell size and origin.
func Subtract(a, b *Raster) (*Raster, error) {
	if !a.SameShape(b) {
		return nil, fmt.Errorf("subtract %dx%d and %dx%d: %w", a.Width, a.Height, b.Width, b.Height, ErrShape)
	}
	out := New(a.Width, a.Height, a.CellSize)
	out.XLL, out.YLL = a.XLL, a.YLL
	av, bv, ov := a.Values(), b.Values(), out.Values()
	for i := range av {
		ov[i] = av[i] - bv[i]
	}
	return out, nil
}
