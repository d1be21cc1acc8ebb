package raster

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// defaultNoData is the sentinel written for NaN cells in ASCII grid output.
// ArcticDEM and REMA products use the same value.
const defaultNoData = -9999.0

// ParseEsriASCII reads an ESRI ASCII grid (.asc) from rd. The header must
// declare ncols, nrows and cellsize; xllcorner/yllcorner (or the llcenter
// variants) set the raster origin. Cells equal to the declared NODATA_value
// become NaN.
func ParseEsriASCII(rd io.Reader) (*Raster, error) {
	sc := bufio.NewScanner(rd)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	sc.Split(bufio.ScanWords)

	next := func() (string, error) {
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return "", err
			}
			return "", io.ErrUnexpectedEOF
		}
		return sc.Text(), nil
	}

	var (
		ncols, nrows int
		cellSize     float64
		xll, yll     float64
		xIsCenter    bool
		yIsCenter    bool
		noData       = defaultNoData
		haveCols     bool
		haveRows     bool
		haveCell     bool
	)

	// Header: keyword/value pairs until the first token that parses as a number.
	var firstValue string
	for {
		tok, err := next()
		if err != nil {
			return nil, fmt.Errorf("read asc header: %w", err)
		}
		if _, err := strconv.ParseFloat(tok, 64); err == nil {
			firstValue = tok
			break
		}
		val, err := next()
		if err != nil {
			return nil, fmt.Errorf("read asc header value for %q: %w", tok, err)
		}
		switch strings.ToLower(tok) {
		case "ncols":
			ncols, err = strconv.Atoi(val)
			haveCols = true
		case "nrows":
			nrows, err = strconv.Atoi(val)
			haveRows = true
		case "cellsize":
			cellSize, err = strconv.ParseFloat(val, 64)
			haveCell = true
		case "nodata_value":
			noData, err = strconv.ParseFloat(val, 64)
		case "xllcorner":
			xll, err = strconv.ParseFloat(val, 64)
		case "yllcorner":
			yll, err = strconv.ParseFloat(val, 64)
		case "xllcenter":
			xll, err = strconv.ParseFloat(val, 64)
			xIsCenter = true
		case "yllcenter":
			yll, err = strconv.ParseFloat(val, 64)
			yIsCenter = true
		default:
			return nil, fmt.Errorf("unknown asc header keyword %q", tok)
		}
		if err != nil {
			return nil, fmt.Errorf("parse asc header %s=%q: %w", tok, val, err)
		}
	}

	if !haveCols || !haveRows || !haveCell {
		return nil, fmt.Errorf("asc header missing ncols/nrows/cellsize")
	}
	if ncols <= 0 || nrows <= 0 || cellSize <= 0 {
		return nil, fmt.Errorf("degenerate asc header: ncols=%d nrows=%d cellsize=%g", ncols, nrows, cellSize)
	}

	r := New(ncols, nrows, cellSize)
	r.XLL, r.YLL = xll, yll
	// The llcenter variants name the center of the corner cell.
	if xIsCenter {
		r.XLL -= cellSize / 2
	}
	if yIsCenter {
		r.YLL -= cellSize / 2
	}
	want := ncols * nrows
	for i := 0; i < want; i++ {
		tok := firstValue
		if i > 0 {
			var err error
			tok, err = next()
			if err != nil {
				return nil, fmt.Errorf("read asc cell %d of %d: %w", i, want, err)
			}
		}
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, fmt.Errorf("parse asc cell %d: %w", i, err)
		}
		if v == noData {
			v = math.NaN()
		}
		r.values[i] = v
	}
	return r, nil
}

// WriteEsriASCII writes r as an ESRI ASCII grid. NaN cells are written as the
// standard -9999 sentinel.
func WriteEsriASCII(w io.Writer, r *Raster) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "ncols %d\n", r.Width)
	fmt.Fprintf(bw, "nrows %d\n", r.Height)
	fmt.Fprintf(bw, "xllcorner %g\n", r.XLL)
	fmt.Fprintf(bw, "yllcorner %g\n", r.YLL)
	fmt.Fprintf(bw, "cellsize %g\n", r.CellSize)
	fmt.Fprintf(bw, "NODATA_value %g\n", defaultNoData)
	for y := 0; y < r.Height; y++ {
		for x := 0; x < r.Width; x++ {
			if x > 0 {
				if err := bw.WriteByte(' '); err != nil {
					return err
				}
			}
			v := r.At(x, y)
			if math.IsNaN(v) {
				v = defaultNoData
			}
			if _, err := bw.WriteString(strconv.FormatFloat(v, 'g', -1, 64)); err != nil {
				return err
			}
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Load reads an ESRI ASCII grid from path. Files ending in .gz are
// decompressed transparently.
func Load(path string) (*Raster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var rd io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open gzip %s: %w", path, err)
		}
		defer gz.Close()
		rd = gz
	}

	r, err := ParseEsriASCII(rd)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return r, nil
}

// Save writes r to path as an ESRI ASCII grid, gzip-compressed when the path
// ends in .gz.
func Save(path string, r *Raster) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if strings.HasSuffix(path, ".gz") {
		gz := gzip.NewWriter(f)
		if err := WriteEsriASCII(gz, r); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		if err := gz.Close(); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	} else if err := WriteEsriASCII(f, r); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
