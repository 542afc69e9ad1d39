// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/TylerBrock/colorjson"
	"github.com/matt-FFFFFF/trimbatch/internal/color"
)

// ErrWriteSummary is returned when the summary cannot be rendered.
var ErrWriteSummary = errors.New("failed to write summary")

// Summary is the per-category aggregate of an extraction.
type Summary struct {
	Identifier string `json:"identifier"`
	Ions       int    `json:"ions"`
	Collisions int    `json:"collisions"`
	Malformed  int    `json:"malformed,omitempty"`
	Mean       Point  `json:"mean_nm"`
	Median     Point  `json:"median_nm"`
}

// NewSummary computes the aggregate statistics for one category.
func NewSummary(name string, res ExtractResult) Summary {
	return Summary{
		Identifier: name,
		Ions:       res.TotalIons,
		Collisions: len(res.Points),
		Malformed:  res.Malformed,
		Mean:       mean(res.Points),
		Median:     median(res.Points),
	}
}

// Summaries is the whole result tree's summary, in category order.
type Summaries []Summary

// WriteText renders the summaries for the console.
func (s Summaries) WriteText(w io.Writer) error {
	for _, sum := range s {
		_, err := fmt.Fprintf(w,
			"%s\tNum Ions: %7d\tCollisions: %7d\n"+
				"|\tMedian (x, y, z) [nm]: [%.3f\t%.3f\t%.3f]\n"+
				"|\tMean   (x, y, z) [nm]: [%.3f\t%.3f\t%.3f]\n",
			color.Colorize(fmt.Sprintf("Symbol: %-2s", sum.Identifier), color.Bold),
			sum.Ions, sum.Collisions,
			sum.Median.X, sum.Median.Y, sum.Median.Z,
			sum.Mean.X, sum.Mean.Y, sum.Mean.Z)
		if err != nil {
			return errors.Join(ErrWriteSummary, err)
		}
	}

	return nil
}

// WriteJSON renders the summaries as colorized JSON.
func (s Summaries) WriteJSON(w io.Writer) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return errors.Join(ErrWriteSummary, err)
	}

	var obj any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return errors.Join(ErrWriteSummary, err)
	}

	f := colorjson.NewFormatter()
	f.Indent = 2
	f.DisabledColor = !color.Enabled()

	out, err := f.Marshal(obj)
	if err != nil {
		return errors.Join(ErrWriteSummary, err)
	}

	if _, err := w.Write(append(out, '\n')); err != nil {
		return errors.Join(ErrWriteSummary, err)
	}

	return nil
}

func mean(points []Point) Point {
	if len(points) == 0 {
		return Point{}
	}

	var sum Point
	for _, p := range points {
		sum.X += p.X
		sum.Y += p.Y
		sum.Z += p.Z
	}

	n := float64(len(points))

	return Point{X: sum.X / n, Y: sum.Y / n, Z: sum.Z / n}
}

func median(points []Point) Point {
	if len(points) == 0 {
		return Point{}
	}

	return Point{
		X: medianOf(points, func(p Point) float64 { return p.X }),
		Y: medianOf(points, func(p Point) float64 { return p.Y }),
		Z: medianOf(points, func(p Point) float64 { return p.Z }),
	}
}

func medianOf(points []Point, axis func(Point) float64) float64 {
	vals := make([]float64, len(points))
	for i, p := range points {
		vals[i] = axis(p)
	}

	sort.Float64s(vals)

	mid := len(vals) / 2
	if len(vals)%2 == 1 {
		return vals[mid]
	}

	return (vals[mid-1] + vals[mid]) / 2
}
