// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package history

import (
	"context"
	"strconv"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ionNumbers extracts every embedded sequence number from a merged file.
func ionNumbers(t *testing.T, fs afero.Fs, path string) []int {
	t.Helper()

	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)

	matches := ionNumberPattern.FindAllSubmatch(data, -1)
	numbers := make([]int, 0, len(matches))

	for _, m := range matches {
		n, err := strconv.Atoi(string(m[1]))
		require.NoError(t, err)

		numbers = append(numbers, n)
	}

	return numbers
}

func scanOne(t *testing.T, fs afero.Fs) Category {
	t.Helper()

	cats, err := Scan(context.Background(), fs, "/results")
	require.NoError(t, err)
	require.Len(t, cats, 1)

	return cats[0]
}

func TestMergeSingleFileIsVerbatimCopy(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, writeFragment(fs, "/results/Ni", 0, 25, true))

	out, err := Merge(context.Background(), fs, scanOne(t, fs))
	require.NoError(t, err)
	assert.Equal(t, "/results/Ni/"+CollisionFileName, out)

	merged, err := afero.ReadFile(fs, out)
	require.NoError(t, err)
	assert.Equal(t, collisionFile(25), merged, "single input must be copied byte-for-byte")
}

func TestMergeTwoFilesRebasesSequenceNumbers(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, writeFragment(fs, "/results/Ni", 0, 100, true))
	require.NoError(t, writeFragment(fs, "/results/Ni", 1, 50, true))

	out, err := Merge(context.Background(), fs, scanOne(t, fs))
	require.NoError(t, err)

	numbers := ionNumbers(t, fs, out)
	require.Len(t, numbers, 150)

	for i, n := range numbers {
		assert.Equal(t, i+1, n, "sequence numbers must be strictly increasing across the boundary")
	}
}

func TestMergeThreeFragmentNumbering(t *testing.T) {
	fs := afero.NewMemMapFs()

	// total=250, step=100 -> fragments [100, 100, 50] in slots 0, 1, 2.
	for i, ions := range []int{100, 100, 50} {
		require.NoError(t, writeFragment(fs, "/results/Ni", i, ions, true))
	}

	out, err := Merge(context.Background(), fs, scanOne(t, fs))
	require.NoError(t, err)

	numbers := ionNumbers(t, fs, out)
	require.Len(t, numbers, 250)
	assert.Equal(t, 1, numbers[0])
	assert.Equal(t, 101, numbers[100])
	assert.Equal(t, 201, numbers[200])
	assert.Equal(t, 250, numbers[249])
}

func TestMergeHeaderAppearsOnce(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, writeFragment(fs, "/results/Ni", 0, 5, true))
	require.NoError(t, writeFragment(fs, "/results/Ni", 1, 5, true))

	out, err := Merge(context.Background(), fs, scanOne(t, fs))
	require.NoError(t, err)

	data, err := afero.ReadFile(fs, out)
	require.NoError(t, err)

	count := 0

	for i := 0; i+len(historyMarker) <= len(data); i++ {
		if string(data[i:i+len(historyMarker)]) == string(historyMarker) {
			count++
		}
	}

	assert.Equal(t, 1, count, "subsequent files' headers must be skipped")
}

func TestMergeSkipsFragmentsWithoutHistory(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, writeFragment(fs, "/results/Ni", 0, 100, true))
	require.NoError(t, writeFragment(fs, "/results/Ni", 1, 100, false)) // failed run, no slot output
	require.NoError(t, writeFragment(fs, "/results/Ni", 2, 50, true))

	out, err := Merge(context.Background(), fs, scanOne(t, fs))
	require.NoError(t, err)

	numbers := ionNumbers(t, fs, out)
	require.Len(t, numbers, 150)

	// Offsets come from contributing fragments only.
	assert.Equal(t, 101, numbers[100])
	assert.Equal(t, 150, numbers[149])
}

func TestMergeNoHistoryFiles(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, writeFragment(fs, "/results/Ni", 0, 100, false))

	_, err := Merge(context.Background(), fs, scanOne(t, fs))
	require.ErrorIs(t, err, ErrNoHistory)
}
