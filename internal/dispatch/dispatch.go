// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package dispatch drives the fragment pipeline: split each category's ion
// count into fragments, run them across a bounded worker pool in isolated
// working directories, and collect each fragment's outputs into a uniquely
// numbered result slot.
//
// Categories run strictly one after another; only fragments of the same
// category overlap. A failed fragment is recorded and never retried, and
// does not abort its siblings.
package dispatch

import (
	"context"
	"path/filepath"
	"runtime"

	"github.com/matt-FFFFFF/trimbatch/internal/collect"
	"github.com/matt-FFFFFF/trimbatch/internal/ctxlog"
	"github.com/matt-FFFFFF/trimbatch/internal/plan"
	"github.com/matt-FFFFFF/trimbatch/internal/simrun"
	"github.com/matt-FFFFFF/trimbatch/internal/slotdir"
	"github.com/matt-FFFFFF/trimbatch/internal/splitter"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

// Runner invokes the external simulator in a prepared working directory and
// blocks until it exits.
type Runner interface {
	Run(ctx context.Context, dir string) error
}

// Orchestrator runs a whole plan. The zero value is not usable; construct
// with New and override fields before Run for testing.
type Orchestrator struct {
	FS        afero.Fs
	Runner    Runner
	Inputs    simrun.InputWriter
	NewLocker slotdir.LockerFactory
	Plan      plan.Plan
}

// New creates an Orchestrator with production defaults: the OS filesystem,
// the real simulator executor and a file-lock based slot allocator.
func New(p plan.Plan) *Orchestrator {
	fs := afero.NewOsFs()

	return &Orchestrator{
		FS:        fs,
		Runner:    simrun.Exec{FS: fs},
		Inputs:    simrun.TrimInput{Description: p.Name},
		NewLocker: slotdir.NewFlock,
		Plan:      p,
	}
}

// Run executes every category in plan order and returns one CategoryResult
// per category. It returns an error only for invalid plan parameters;
// fragment failures are recorded in the results.
func (o *Orchestrator) Run(ctx context.Context) (Results, error) {
	results := make(Results, 0, len(o.Plan.Categories))

	for _, cat := range o.Plan.Categories {
		res, err := o.runCategory(ctx, cat)
		if err != nil {
			return nil, err
		}

		results = append(results, res)
	}

	return results, nil
}

func (o *Orchestrator) runCategory(ctx context.Context, cat plan.Category) (CategoryResult, error) {
	total := o.Plan.CategoryIons(cat)

	sizes, err := splitter.Sizes(o.Plan.Step, total)
	if err != nil {
		return CategoryResult{}, err //nolint:wrapcheck
	}

	w := workers(o.Plan.EffectiveWorkers(), len(sizes))

	ctxlog.Info(ctx, "dispatching category",
		"category", cat.Identifier, "ions", total, "fragments", len(sizes), "workers", w)

	fragments := make([]FragmentResult, len(sizes))

	if w < 2 {
		for i, n := range sizes {
			// Once cancelled, record the remaining fragments without
			// seeding working directories for runs that cannot start.
			if err := ctx.Err(); err != nil {
				fragments[i] = FragmentResult{Index: i, Ions: n, Err: err}

				continue
			}

			fragments[i] = o.runFragment(ctx, cat, i, n)
		}
	} else {
		g := &errgroup.Group{}
		g.SetLimit(w)

		for i, n := range sizes {
			g.Go(func() error {
				fragments[i] = o.runFragment(ctx, cat, i, n)

				return nil
			})
		}

		// Fragment errors are recorded in place, never returned.
		_ = g.Wait()
	}

	res := CategoryResult{
		Identifier: cat.Identifier,
		Requested:  total,
		Fragments:  fragments,
	}

	ctxlog.Info(ctx, "category complete",
		"category", cat.Identifier, "succeeded", res.Succeeded(), "failed", res.Failed())

	return res, nil
}

// runFragment executes one fragment pipeline: working directory, input
// files, simulator run, slot allocation, output collection.
func (o *Orchestrator) runFragment(ctx context.Context, cat plan.Category, index, ions int) FragmentResult {
	res := FragmentResult{Index: index, Ions: ions}

	logger := ctxlog.Logger(ctx).With("category", cat.Identifier, "fragment", index, "ions", ions)
	logger.Debug("fragment starting")

	dir, err := simrun.Workdir(ctx, o.FS, o.Plan.ScratchDirectory, o.Plan.SrimDirectory)
	if err != nil {
		logger.Error("fragment failed", "error", err)
		res.Err = err

		return res
	}

	if err := o.Inputs.WriteInputs(o.FS, dir, cat, ions); err != nil {
		logger.Error("fragment failed", "error", err)
		res.Err = err

		return res
	}

	if err := o.Runner.Run(ctx, dir); err != nil {
		// The working directory stays in place for diagnosis.
		logger.Error("fragment failed", "error", err, "workdir", dir)
		res.Err = err

		return res
	}

	categoryDir := filepath.Join(o.Plan.OutputDirectory, cat.Identifier)

	slot, _, err := slotdir.Allocate(ctx, o.FS, categoryDir, o.NewLocker(categoryDir))
	if err != nil {
		logger.Error("fragment failed", "error", err)
		res.Err = err

		return res
	}

	opts := collect.Options{
		Strict:      o.Plan.StrictOutputs,
		ScratchRoot: o.Plan.ScratchDirectory,
		Keep:        o.Plan.KeepWorkdirs,
	}

	if _, err := collect.Outputs(ctx, o.FS, dir, slot, opts); err != nil {
		logger.Error("fragment failed", "error", err)
		res.Err = err

		return res
	}

	res.Slot = slot

	logger.Debug("fragment complete", "slot", slot)

	return res
}

// workers bounds the pool to the requested limit, the fragment count and
// the available parallelism, with a floor of one.
func workers(requested, fragments int) int {
	return max(min(requested, fragments, runtime.NumCPU()), 1)
}
