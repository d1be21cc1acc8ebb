// Package raster provides the in-memory elevation grid model shared by every
// stage of the crevasse pipeline, plus ESRI ASCII grid serialization.
//
// A Raster is a dense 2D grid of float64 elevation values with a uniform,
// square cell size in ground units (metres). Missing or invalid cells are
// marked with NaN, and every consumer of a Raster is expected to treat NaN as
// no-data. A Mask is a binary grid aligned with a Raster.
//
// # Coordinate System
//
// Pixel coordinates are 0-based: X increases rightward (east), Y increases
// downward (grid row order, north to south for a north-up strip). The
// geospatial origin of a grid is carried by the surrounding tooling, not by
// this package.
//
// # Mutability
//
// Pipeline stages never mutate their inputs; they clone and return new grids.
// Raster and Mask expose Clone and Crop to support that convention, but do
// not enforce immutability themselves.
package raster
