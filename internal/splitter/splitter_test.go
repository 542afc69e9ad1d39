// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package splitter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSizes(t *testing.T) {
	tests := []struct {
		name  string
		step  int
		total int
		want  []int
	}{
		{name: "exact multiple", step: 100, total: 300, want: []int{100, 100, 100}},
		{name: "remainder", step: 100, total: 250, want: []int{100, 100, 50}},
		{name: "total below step", step: 100, total: 42, want: []int{42}},
		{name: "total equals step", step: 100, total: 100, want: []int{100}},
		{name: "single unit", step: 1, total: 3, want: []int{1, 1, 1}},
		{name: "zero total", step: 100, total: 0, want: []int{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Sizes(tc.step, tc.total)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFragmentsInvalidArguments(t *testing.T) {
	_, err := Fragments(0, 100)
	require.ErrorIs(t, err, ErrInvalidStep)

	_, err = Fragments(-5, 100)
	require.ErrorIs(t, err, ErrInvalidStep)

	_, err = Fragments(10, -1)
	require.ErrorIs(t, err, ErrInvalidTotal)
}

// Every element is bounded by step, only the final element may be smaller,
// and the sequence sums to total.
func TestFragmentsProperties(t *testing.T) {
	for step := 1; step <= 17; step++ {
		for total := 0; total <= 100; total += 7 {
			sizes, err := Sizes(step, total)
			require.NoError(t, err)

			sum := 0

			for i, n := range sizes {
				assert.Positive(t, n)
				assert.LessOrEqual(t, n, step)

				if i < len(sizes)-1 {
					assert.Equal(t, step, n, "only the last element may be short")
				}

				sum += n
			}

			assert.Equal(t, total, sum, "step=%d total=%d", step, total)
			assert.Len(t, sizes, Count(step, total))
		}
	}
}

func TestFragmentsRestartable(t *testing.T) {
	seq, err := Fragments(100, 250)
	require.NoError(t, err)

	first := make([]int, 0, 3)
	for n := range seq {
		first = append(first, n)
	}

	second := make([]int, 0, 3)
	for n := range seq {
		second = append(second, n)
	}

	assert.Equal(t, first, second)
}

func TestFragmentsEarlyBreak(t *testing.T) {
	seq, err := Fragments(10, 100)
	require.NoError(t, err)

	var got []int

	for n := range seq {
		got = append(got, n)
		if len(got) == 2 {
			break
		}
	}

	assert.Equal(t, []int{10, 10}, got)
}
