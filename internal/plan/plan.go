// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package plan loads and validates the YAML run plan.
// A Plan is constructed once, validated eagerly and passed by value; there
// is no lazy per-field validation.
package plan

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/goccy/go-yaml"
	"github.com/hashicorp/go-multierror"
)

var (
	// ErrInvalidYaml is returned when the plan file is not valid YAML.
	ErrInvalidYaml = errors.New("invalid YAML")
	// ErrNoCategories is returned when the plan contains no categories.
	ErrNoCategories = errors.New("no categories specified")
	// ErrDuplicateIdentifier is returned when two categories share an identifier.
	ErrDuplicateIdentifier = errors.New("duplicate category identifier")
	// ErrEmptyIdentifier is returned when a category has no identifier.
	ErrEmptyIdentifier = errors.New("category identifier must not be empty")
	// ErrInvalidIons is returned when an ion count is not positive.
	ErrInvalidIons = errors.New("ions must be greater than zero")
	// ErrInvalidStep is returned when the step size is not positive.
	ErrInvalidStep = errors.New("step must be greater than zero")
	// ErrInvalidWorkers is returned when the worker count is negative.
	ErrInvalidWorkers = errors.New("workers must not be negative")
	// ErrMissingSrimDirectory is returned when no simulator asset directory is given.
	ErrMissingSrimDirectory = errors.New("srim_directory must be set")
	// ErrMissingOutputDirectory is returned when no result directory is given.
	ErrMissingOutputDirectory = errors.New("output_directory must be set")
)

const defaultStep = 1000

// Category is one named group of simulation requests.
type Category struct {
	// Identifier names the ion species, e.g. "Ni". It is also the name of
	// the category's result subdirectory.
	Identifier string `yaml:"identifier"`
	// Energy is the ion energy in eV, passed through to the input writer.
	Energy float64 `yaml:"energy"`
	// Z is the atomic number of the ion, passed through to the input writer.
	Z int `yaml:"z"`
	// Mass is the ion mass in amu, passed through to the input writer.
	Mass float64 `yaml:"mass"`
	// Ions overrides the plan-level ion count when positive.
	Ions int `yaml:"ions"`
}

// Plan is the immutable description of a whole simulation campaign.
type Plan struct {
	Name             string     `yaml:"name"`
	SrimDirectory    string     `yaml:"srim_directory"`
	OutputDirectory  string     `yaml:"output_directory"`
	ScratchDirectory string     `yaml:"scratch_directory"`
	Ions             int        `yaml:"ions"`
	Step             int        `yaml:"step"`
	Workers          int        `yaml:"workers"`
	StrictOutputs    bool       `yaml:"strict_outputs"`
	KeepWorkdirs     bool       `yaml:"keep_workdirs"`
	Categories       []Category `yaml:"categories"`
}

// Load parses a plan from YAML, applies defaults and validates every field.
// Validation failures are aggregated into a single error.
func Load(data []byte) (Plan, error) {
	var p Plan
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Plan{}, fmt.Errorf("%w: %v", ErrInvalidYaml, err)
	}

	p.applyDefaults()

	if err := p.validate(); err != nil {
		return Plan{}, err
	}

	return p, nil
}

// CategoryIons returns the effective ion count for a category.
func (p Plan) CategoryIons(c Category) int {
	if c.Ions > 0 {
		return c.Ions
	}

	return p.Ions
}

// EffectiveWorkers returns the requested worker limit, defaulting to the
// available parallelism when unset.
func (p Plan) EffectiveWorkers() int {
	if p.Workers > 0 {
		return p.Workers
	}

	return runtime.NumCPU()
}

func (p *Plan) applyDefaults() {
	if p.ScratchDirectory == "" {
		p.ScratchDirectory = os.TempDir()
	}

	if p.Step == 0 {
		p.Step = defaultStep
	}
}

func (p Plan) validate() error {
	var err *multierror.Error

	if p.Step <= 0 {
		err = multierror.Append(err, fmt.Errorf("%w: got %d", ErrInvalidStep, p.Step))
	}

	if p.Workers < 0 {
		err = multierror.Append(err, fmt.Errorf("%w: got %d", ErrInvalidWorkers, p.Workers))
	}

	if p.SrimDirectory == "" {
		err = multierror.Append(err, ErrMissingSrimDirectory)
	}

	if p.OutputDirectory == "" {
		err = multierror.Append(err, ErrMissingOutputDirectory)
	}

	if len(p.Categories) == 0 {
		err = multierror.Append(err, ErrNoCategories)
	}

	seen := make(map[string]struct{}, len(p.Categories))

	for _, c := range p.Categories {
		if c.Identifier == "" {
			err = multierror.Append(err, ErrEmptyIdentifier)
			continue
		}

		if _, ok := seen[c.Identifier]; ok {
			err = multierror.Append(err, fmt.Errorf("%w: %q", ErrDuplicateIdentifier, c.Identifier))
		}

		seen[c.Identifier] = struct{}{}

		if p.CategoryIons(c) <= 0 {
			err = multierror.Append(err, fmt.Errorf("%w: category %q", ErrInvalidIons, c.Identifier))
		}
	}

	return err.ErrorOrNil()
}
