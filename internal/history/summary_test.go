// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package history

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSummaryStatistics(t *testing.T) {
	res := ExtractResult{
		TotalIons: 100,
		Points: []Point{
			{X: 1, Y: 10, Z: 100},
			{X: 2, Y: 20, Z: 200},
			{X: 6, Y: 60, Z: 600},
		},
	}

	s := NewSummary("Ni", res)

	assert.Equal(t, "Ni", s.Identifier)
	assert.Equal(t, 100, s.Ions)
	assert.Equal(t, 3, s.Collisions)
	assert.InDelta(t, 3.0, s.Mean.X, 1e-9)
	assert.InDelta(t, 30.0, s.Mean.Y, 1e-9)
	assert.InDelta(t, 300.0, s.Mean.Z, 1e-9)
	assert.InDelta(t, 2.0, s.Median.X, 1e-9)
}

func TestMedianEvenCount(t *testing.T) {
	pts := []Point{{X: 1}, {X: 3}, {X: 2}, {X: 10}}
	assert.InDelta(t, 2.5, median(pts).X, 1e-9)
}

func TestSummaryEmptyPoints(t *testing.T) {
	s := NewSummary("Ni", ExtractResult{TotalIons: 10})
	assert.Zero(t, s.Mean)
	assert.Zero(t, s.Median)
	assert.Zero(t, s.Collisions)
}

func TestSummariesWriteText(t *testing.T) {
	buf := &bytes.Buffer{}
	s := Summaries{NewSummary("Ni", ExtractResult{TotalIons: 100, Points: []Point{{X: 1, Y: 2, Z: 3}}})}

	require.NoError(t, s.WriteText(buf))
	assert.Contains(t, buf.String(), "Ni")
	assert.Contains(t, buf.String(), "Num Ions:     100")
}

func TestSummariesWriteJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	s := Summaries{NewSummary("Ni", ExtractResult{TotalIons: 100})}

	require.NoError(t, s.WriteJSON(buf))
	assert.Contains(t, buf.String(), `"identifier"`)
	assert.Contains(t, buf.String(), `"Ni"`)
}

func TestProcessWholeTree(t *testing.T) {
	fs := afero.NewMemMapFs()

	for i, ions := range []int{100, 100, 50} {
		require.NoError(t, writeFragment(fs, "/results/Ni", i, ions, true))
	}

	require.NoError(t, writeFragment(fs, "/results/Fe", 0, 10, true))

	// A category whose runs all failed is skipped, not fatal.
	require.NoError(t, writeFragment(fs, "/results/Cu", 0, 10, false))

	summaries, err := Process(context.Background(), fs, "/results")
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	byName := map[string]Summary{}
	for _, s := range summaries {
		byName[s.Identifier] = s
	}

	assert.Equal(t, 250, byName["Ni"].Ions)
	assert.Equal(t, 250, byName["Ni"].Collisions)
	assert.Equal(t, 10, byName["Fe"].Ions)

	for _, name := range []string{"Ni", "Fe"} {
		ok, err := afero.Exists(fs, "/results/"+name+"/"+DatFileName)
		require.NoError(t, err)
		assert.True(t, ok)
	}
}
