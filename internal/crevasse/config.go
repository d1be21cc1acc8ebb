package crevasse

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

/* Example parameter file ...

range: 60
gauss_mult: 3
gauss_cutoff: 1
depth_threshold: 1.0
smoothing_iterations: 2
tile_pixels: 2048
workers: 8

*/

// LoadParams reads a YAML parameter file over the defaults, so a file only
// needs to name the parameters it changes. Pixel-level validation happens
// later, in Find, once the raster cell size is known.
func LoadParams(filename string) (Params, error) {
	p := DefaultParams()

	contents, err := os.ReadFile(filename)
	if err != nil {
		return p, fmt.Errorf("read %q: %w", filename, err)
	}
	if err := yaml.Unmarshal(contents, &p); err != nil {
		return p, fmt.Errorf("parse %q: %w", filename, err)
	}
	return p, nil
}
