// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package dispatch

import (
	"fmt"
	"io"
)

// FragmentResult is the outcome of one fragment's run-and-collect pipeline.
type FragmentResult struct {
	Index int    // Sequence index within the category
	Ions  int    // Unit count dispatched to the fragment
	Slot  string // Result slot path, empty when the fragment failed
	Err   error  // RunFailure, MissingOutputs or allocation error
}

// Failed reports whether the fragment produced no result slot.
func (f FragmentResult) Failed() bool {
	return f.Err != nil
}

// CategoryResult aggregates the fragment results of one category.
type CategoryResult struct {
	Identifier string
	Requested  int // Total unit count requested for the category
	Fragments  []FragmentResult
}

// Succeeded returns the number of fragments that produced a slot.
func (c CategoryResult) Succeeded() int {
	n := 0

	for _, f := range c.Fragments {
		if !f.Failed() {
			n++
		}
	}

	return n
}

// Failed returns the number of fragments that did not produce a slot.
func (c CategoryResult) Failed() int {
	return len(c.Fragments) - c.Succeeded()
}

// Results is the per-category outcome of a whole plan.
type Results []CategoryResult

// HasFailures reports whether any fragment in any category failed.
func (r Results) HasFailures() bool {
	for _, c := range r {
		if c.Failed() > 0 {
			return true
		}
	}

	return false
}

// WriteText writes a human-readable completion report.
func (r Results) WriteText(w io.Writer) error {
	for _, c := range r {
		status := "ok"
		if c.Failed() > 0 {
			status = "partial"
		}

		_, err := fmt.Fprintf(w, "%-8s %s: %d/%d fragments succeeded (%d ions requested)\n",
			c.Identifier, status, c.Succeeded(), len(c.Fragments), c.Requested)
		if err != nil {
			return fmt.Errorf("failed to write results: %w", err)
		}
	}

	return nil
}
