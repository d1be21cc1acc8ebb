// Package preprocess prepares a raw DEM strip for the crevasse pipeline:
// sentinel and quality-bitmask filtering, geoid correction, bedrock masking,
// and mélange/ocean removal via a sea-level estimate.
//
// Every function here is plain raster algebra over grids the caller has
// already loaded and aligned; the pipeline itself only requires that no-data
// correctly marks all excluded regions before it starts. All functions
// return new rasters and leave their inputs untouched.
package preprocess
