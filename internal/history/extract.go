// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package history

import (
	"bufio"
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/matt-FFFFFF/trimbatch/internal/ctxlog"
	"github.com/spf13/afero"
)

var (
	// ErrNoMergedFile is returned when the category has no merged history
	// file to extract from.
	ErrNoMergedFile = errors.New("merged history file not found")
	// ErrWriteDat is returned when the coordinate array cannot be serialized.
	ErrWriteDat = errors.New("failed to write coordinate array")
	// ErrReadDat is returned when the coordinate array cannot be read back.
	ErrReadDat = errors.New("failed to read coordinate array")
)

// DatFileName is the serialized coordinate array written per category.
const DatFileName = "collision.dat"

// scaleDivisor converts the simulator's Ångström coordinates to nanometres.
const scaleDivisor = 10.0

// cascadeLineSuffix terminates an event-block start line. The 0xb3 byte is
// the simulator's column-drawing character; the files are code page 437,
// not UTF-8.
var cascadeLineSuffix = []byte("Start of New Cascade  \xb3\r\n")

// cascadeDelimiter separates the columns of a cascade-start line.
const cascadeDelimiter = 0xb3

// recoilLinePrefix begins a recoil event line.
var recoilLinePrefix = []byte{0xdb, ' ', '0'}

// Point is one extracted collision coordinate in nanometres.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// ExtractResult is the outcome of extracting one category's merged file.
type ExtractResult struct {
	// Points holds the coordinate triples in file order.
	Points []Point
	// TotalIons is the category's originally requested unit count, summed
	// from fragment metadata. It is independent of len(Points): a category
	// may produce fewer qualifying events than requested ions.
	TotalIons int
	// Malformed counts matched lines that could not be parsed. Such lines
	// are skipped with a warning rather than aborting the category.
	Malformed int
}

// Extract scans a category's merged history file and returns the collision
// coordinates scaled to nanometres.
func Extract(ctx context.Context, fs afero.Fs, cat Category) (ExtractResult, error) {
	res := ExtractResult{TotalIons: cat.TotalIons()}

	f, err := fs.Open(filepath.Join(cat.Dir, CollisionFileName))
	if err != nil {
		return res, errors.Join(ErrNoMergedFile, err)
	}
	defer f.Close() //nolint:errcheck

	br := bufio.NewReader(f)

	for {
		line, readErr := br.ReadBytes('\n')

		if len(line) > 0 {
			point, ok, err := parseLine(line)

			switch {
			case err != nil:
				res.Malformed++

				ctxlog.Warn(ctx, "skipping malformed history line",
					"category", cat.Name, "error", err)
			case ok:
				res.Points = append(res.Points, point)
			}
		}

		if readErr == io.EOF {
			break
		}

		if readErr != nil {
			return res, readErr
		}
	}

	ctxlog.Debug(ctx, "extracted collision records",
		"category", cat.Name, "points", len(res.Points), "malformed", res.Malformed)

	return res, nil
}

// parseLine extracts a coordinate triple from a qualifying line. The second
// return value reports whether the line matched either event pattern.
func parseLine(line []byte) (Point, bool, error) {
	switch {
	case bytes.HasSuffix(line, cascadeLineSuffix):
		// Columns are delimited by the drawing character; the first and
		// last pieces are outside the table borders.
		pieces := bytes.Split(line, []byte{cascadeDelimiter})
		if len(pieces) < 7 {
			return Point{}, true, errors.New("cascade line has too few columns")
		}

		return parseTriple(pieces[3], pieces[4], pieces[5])

	case bytes.HasPrefix(line, recoilLinePrefix):
		fields := strings.Fields(string(line))
		if len(fields) < 8 {
			return Point{}, true, errors.New("recoil line has too few fields")
		}

		return parseTriple([]byte(fields[4]), []byte(fields[5]), []byte(fields[6]))
	}

	return Point{}, false, nil
}

func parseTriple(xs, ys, zs []byte) (Point, bool, error) {
	x, err := strconv.ParseFloat(strings.TrimSpace(string(xs)), 64)
	if err != nil {
		return Point{}, true, err
	}

	y, err := strconv.ParseFloat(strings.TrimSpace(string(ys)), 64)
	if err != nil {
		return Point{}, true, err
	}

	z, err := strconv.ParseFloat(strings.TrimSpace(string(zs)), 64)
	if err != nil {
		return Point{}, true, err
	}

	return Point{X: x / scaleDivisor, Y: y / scaleDivisor, Z: z / scaleDivisor}, true, nil
}

// WriteDat serializes the coordinate array to cat.Dir/collision.dat.
func WriteDat(fs afero.Fs, cat Category, points []Point) error {
	f, err := fs.Create(filepath.Join(cat.Dir, DatFileName))
	if err != nil {
		return errors.Join(ErrWriteDat, err)
	}
	defer f.Close() //nolint:errcheck

	if err := gob.NewEncoder(f).Encode(points); err != nil {
		return errors.Join(ErrWriteDat, err)
	}

	return nil
}

// ReadDat reads back a coordinate array written by WriteDat.
func ReadDat(fs afero.Fs, cat Category) ([]Point, error) {
	f, err := fs.Open(filepath.Join(cat.Dir, DatFileName))
	if err != nil {
		return nil, errors.Join(ErrReadDat, err)
	}
	defer f.Close() //nolint:errcheck

	var points []Point
	if err := gob.NewDecoder(f).Decode(&points); err != nil {
		return nil, errors.Join(ErrReadDat, err)
	}

	return points, nil
}
