// Package crevasse implements the crevasse-extraction pipeline: detrending a
// DEM strip with a wide Gaussian low-pass, isolating narrow depressions with
// a black top hat (BTH) morphological filter, thresholding the response to a
// binary crevasse mask, reconstructing a crevasse-free surface by
// inverse-distance infilling, and differencing to obtain per-pixel crevasse
// depth (Kodde et al. 2007; Chudley et al. 2025).
//
// The five stage functions (Detrend, BlackTopHat, Threshold, Reconstruct,
// Depth) are pure: they never mutate their inputs and are deterministic over
// identical grids. Find sequences them, tiling large strips into overlapping
// blocks so peak memory stays proportional to one tile rather than the whole
// strip.
//
// # No-data
//
// NaN marks no-data throughout. Detrend and BlackTopHat invalidate any output
// cell whose filter window touches a no-data cell; this erodes valid output
// near no-data margins by the window radius, a deliberate coverage/precision
// trade-off. Reconstruct leaves holes that exceed the fill search radius as
// no-data, and Depth propagates them rather than reporting zero.
//
// # Parameters
//
// All ground-distance parameters are in metres and are converted to pixel
// counts with the raster's cell size. The default range of 60 m was chosen by
// variogram analysis of ArcticDEM strips over marine-terminating Greenlandic
// glaciers; see the variogram package for tuning it to other regions.
package crevasse
