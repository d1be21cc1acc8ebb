package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"runtime"

	"github.com/icetools/crevdem/internal/crevasse"
	"github.com/icetools/crevdem/internal/log"
	"github.com/icetools/crevdem/internal/preprocess"
	"github.com/icetools/crevdem/internal/raster"
	"github.com/icetools/crevdem/internal/render"
	"github.com/icetools/crevdem/internal/variogram"
)

const version = "1.0-" + runtime.GOOS + "/" + runtime.GOARCH

// options collects the parsed command line.
type options struct {
	demPath      string
	bitmaskPath  string
	geoidPath    string
	iceMaskPath  string
	paramsPath   string
	outPrefix    string
	workers      int
	maskMelange  bool
	suggestRange bool
	maxLagM      float64
	preview      bool
	thumbPx      int

	// setFlags records which flags were given explicitly, so unset flags do
	// not clobber values loaded from the parameter file.
	setFlags map[string]bool
}

func main() {
	var opts options
	flag.StringVar(&opts.demPath, "dem", "", "DEM strip to process, as ESRI ASCII grid (.asc or .asc.gz)")
	flag.StringVar(&opts.bitmaskPath, "bitmask", "", "Optional strip quality bitmask raster (0 = good)")
	flag.StringVar(&opts.geoidPath, "geoid", "", "Optional geoid raster for geoid correction")
	flag.StringVar(&opts.iceMaskPath, "icemask", "", "Optional ice/ocean classification raster (1 = ice/ocean, 0 = bedrock)")
	flag.BoolVar(&opts.maskMelange, "melange", false, "Estimate sea level and remove mélange/ocean cells (requires geoid-corrected heights)")
	flag.StringVar(&opts.paramsPath, "params", "", "Optional YAML parameter file; defaults are tuned for 2 m Greenland strips")
	flag.StringVar(&opts.outPrefix, "out", "crevdem", "Output path prefix")
	flag.IntVar(&opts.workers, "workers", 0, "Tile workers (0 = one per CPU)")
	intermediates := flag.Bool("intermediates", false, "Also write the detrended, BTH-response and filled rasters")
	flag.BoolVar(&opts.suggestRange, "suggest-range", false, "Print a semivariogram of the detrended strip with a suggested kernel range, then exit")
	flag.Float64Var(&opts.maxLagM, "max-lag", 240, "Largest semivariogram lag in metres for -suggest-range")
	flag.BoolVar(&opts.preview, "preview", false, "Write PNG quick-looks of the depth and mask outputs")
	flag.IntVar(&opts.thumbPx, "thumb", 0, "Also write preview thumbnails no larger than this many pixels")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("crevdem %s\n", version)
		os.Exit(0)
	}

	opts.setFlags = map[string]bool{}
	flag.Visit(func(f *flag.Flag) { opts.setFlags[f.Name] = true })

	if err := log.Init(*debug); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if opts.demPath == "" {
		fmt.Fprintln(os.Stderr, "crevdem: -dem is required")
		flag.Usage()
		os.Exit(2)
	}

	if err := run(opts, *intermediates); err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
}

func run(opts options, intermediates bool) error {
	params := crevasse.DefaultParams()
	if opts.paramsPath != "" {
		var err error
		params, err = crevasse.LoadParams(opts.paramsPath)
		if err != nil {
			return err
		}
	}
	params = applyFlags(params, opts.setFlags, opts.workers, intermediates)

	dem, err := raster.Load(opts.demPath)
	if err != nil {
		return err
	}
	log.Infof("loaded %dx%d strip at %g m cells from %s", dem.Width, dem.Height, dem.CellSize, opts.demPath)

	dem, err = prepare(dem, opts)
	if err != nil {
		return err
	}

	if opts.suggestRange {
		return printRange(dem, params, opts.maxLagM)
	}

	res, err := crevasse.Find(dem, params)
	if err != nil {
		return err
	}
	log.Infof("found %d crevasse cells (%.2f%% of strip)",
		res.Mask.Count(), 100*float64(res.Mask.Count())/float64(dem.Width*dem.Height))

	return write(res, dem, opts.outPrefix, opts.preview, opts.thumbPx)
}

// applyFlags layers explicitly-set command-line values over file-loaded
// parameters. Flags left at their defaults leave the file values alone.
func applyFlags(p crevasse.Params, set map[string]bool, workers int, intermediates bool) crevasse.Params {
	if set["workers"] {
		p.Workers = workers
	}
	if set["intermediates"] {
		p.RetainIntermediates = intermediates
	}
	return p
}

// estimateRange detrends the strip and reads a kernel range off the
// semivariogram of the relief: the lag where small-scale variability levels
// off. The returned points cover every sampled lag even when no range can be
// suggested.
func estimateRange(dem *raster.Raster, p crevasse.Params, maxLagM float64) (float64, []variogram.Point, error) {
	trend, err := crevasse.Detrend(dem, p.Range*p.GaussMult, p.GaussCutoff)
	if err != nil {
		return 0, nil, err
	}
	relief, err := raster.Subtract(dem, trend)
	if err != nil {
		return 0, nil, err
	}

	maxLagPx := int(math.Round(maxLagM / dem.CellSize))
	pts, err := variogram.Semivariogram(relief, maxLagPx)
	if err != nil {
		return 0, nil, err
	}
	rangeM, ok := variogram.SuggestRange(relief, pts)
	if !ok {
		return 0, pts, fmt.Errorf("semivariogram does not level off within %g m; raise -max-lag or check the strip", maxLagM)
	}
	return rangeM, pts, nil
}

// printRange prints the semivariogram and the suggested range parameter for
// the strip. The suggestion feeds the range key of the parameter file.
func printRange(dem *raster.Raster, p crevasse.Params, maxLagM float64) error {
	rangeM, pts, err := estimateRange(dem, p, maxLagM)
	for _, pt := range pts {
		fmt.Printf("%8.1f m  gamma %10.4f  %9d pairs\n", pt.LagMetres, pt.Semivariance, pt.Pairs)
	}
	if err != nil {
		return err
	}
	fmt.Printf("suggested range: %.1f m\n", rangeM)
	return nil
}

// prepare runs the optional masking steps in the order the pipeline needs
// them: quality bits and sentinel first, then geoid correction, then bedrock
// and mélange removal.
func prepare(dem *raster.Raster, opts options) (*raster.Raster, error) {
	dem = preprocess.FilterSentinel(dem)

	if opts.bitmaskPath != "" {
		bm, err := raster.Load(opts.bitmaskPath)
		if err != nil {
			return nil, err
		}
		if dem, err = preprocess.ApplyBitmask(dem, bm); err != nil {
			return nil, err
		}
		log.Debugf("bitmask applied, %d cells now no-data", dem.CountNoData())
	}
	if opts.geoidPath != "" {
		geoid, err := raster.Load(opts.geoidPath)
		if err != nil {
			return nil, err
		}
		if dem, err = preprocess.GeoidCorrect(dem, geoid); err != nil {
			return nil, err
		}
	}
	if opts.iceMaskPath != "" {
		ice, err := raster.Load(opts.iceMaskPath)
		if err != nil {
			return nil, err
		}
		var err2 error
		if dem, err2 = preprocess.MaskBedrock(dem, ice); err2 != nil {
			return nil, err2
		}
		log.Debugf("bedrock masked, %d cells now no-data", dem.CountNoData())
	}
	if opts.maskMelange {
		mopts := preprocess.DefaultMelangeOptions()
		masked, level, ok := preprocess.MaskMelange(dem, mopts)
		if ok {
			log.Infof("estimated sea level %.2f m, removed cells below %.2f m", level, level+mopts.NearSeaLevelThreshM)
		} else {
			log.Infof("no resolvable sea level in strip, skipping mélange mask")
		}
		dem = masked
	}
	return dem, nil
}

func write(res *crevasse.Result, dem *raster.Raster, prefix string, preview bool, thumbPx int) error {
	if err := raster.Save(prefix+"_depth.asc.gz", res.Depth); err != nil {
		return err
	}
	maskGrid := res.Mask.ToRaster(dem.CellSize)
	maskGrid.XLL, maskGrid.YLL = dem.XLL, dem.YLL
	if err := raster.Save(prefix+"_mask.asc.gz", maskGrid); err != nil {
		return err
	}
	if res.Detrended != nil {
		for name, r := range map[string]*raster.Raster{
			"_detrended.asc.gz": res.Detrended,
			"_bth.asc.gz":       res.Response,
			"_filled.asc.gz":    res.Filled,
		} {
			if err := raster.Save(prefix+name, r); err != nil {
				return err
			}
		}
	}
	log.Infof("wrote %s_depth.asc.gz and %s_mask.asc.gz", prefix, prefix)

	if !preview {
		return nil
	}
	depthImg := render.DepthImage(res.Depth)
	overlay, err := render.MaskOverlay(dem, res.Mask)
	if err != nil {
		return err
	}
	if err := render.SavePNG(prefix+"_depth.png", depthImg); err != nil {
		return err
	}
	if err := render.SavePNG(prefix+"_mask.png", overlay); err != nil {
		return err
	}
	if thumbPx > 0 {
		if err := render.SavePNG(prefix+"_depth_thumb.png", render.Thumbnail(depthImg, thumbPx)); err != nil {
			return err
		}
		if err := render.SavePNG(prefix+"_mask_thumb.png", render.Thumbnail(overlay, thumbPx)); err != nil {
			return err
		}
	}
	return nil
}
