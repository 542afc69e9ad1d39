// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package splitter divides a simulation request into bounded-size fragments.
package splitter

import (
	"errors"
	"fmt"
	"iter"
)

var (
	// ErrInvalidStep is returned when the step size is not positive.
	ErrInvalidStep = errors.New("step must be greater than zero")
	// ErrInvalidTotal is returned when the total is negative.
	ErrInvalidTotal = errors.New("total must not be negative")
)

// Fragments returns a lazy, restartable sequence of fragment sizes.
// Every element equals step except possibly the last, which carries the
// remainder. The elements sum to total. A total of zero yields an empty
// sequence.
func Fragments(step, total int) (iter.Seq[int], error) {
	if step <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidStep, step)
	}

	if total < 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidTotal, total)
	}

	return func(yield func(int) bool) {
		for remaining := total; remaining > 0; {
			n := min(step, remaining)
			if !yield(n) {
				return
			}

			remaining -= n
		}
	}, nil
}

// Sizes collects the fragment sequence into a slice, indexed by fragment
// sequence number.
func Sizes(step, total int) ([]int, error) {
	seq, err := Fragments(step, total)
	if err != nil {
		return nil, err
	}

	sizes := make([]int, 0, Count(step, total))
	for n := range seq {
		sizes = append(sizes, n)
	}

	return sizes, nil
}

// Count returns the number of fragments Fragments will yield for valid
// arguments.
func Count(step, total int) int {
	if step <= 0 || total <= 0 {
		return 0
	}

	return (total + step - 1) / step
}
