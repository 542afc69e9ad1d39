// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package run implements the "run" subcommand: execute a simulation plan.
package run

import (
	"context"
	"fmt"
	"os"

	"github.com/matt-FFFFFF/trimbatch/internal/dispatch"
	"github.com/matt-FFFFFF/trimbatch/internal/history"
	"github.com/matt-FFFFFF/trimbatch/internal/plan"
	"github.com/urfave/cli/v3"
)

const (
	fileArg      = "file"
	workersFlag  = "workers"
	mergeFlag    = "merge"
	jsonFlag     = "json"
	keepFlag     = "keep-workdirs"
	strictFlag   = "strict-outputs"
	exitCodeFail = 1
)

// RunCmd executes a simulation plan defined in a YAML file.
var RunCmd = &cli.Command{
	Name:        "run",
	Description: "Run the simulation plan defined in a YAML file.",
	Arguments: []cli.Argument{
		&cli.StringArg{
			Name:      fileArg,
			UsageText: "PLANFILE",
			Config: cli.StringConfig{
				TrimSpace: true,
			},
		},
	},
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:    workersFlag,
			Aliases: []string{"w"},
			Usage: "Set the maximum number of concurrent fragment runs. " +
				"Overrides the plan and defaults to the number of CPU cores available.",
			Value:    0,
			OnlyOnce: true,
		},
		&cli.BoolFlag{
			Name:        mergeFlag,
			Usage:       "Merge collision histories and print the summary after the runs complete",
			Value:       false,
			DefaultText: "false",
			OnlyOnce:    true,
		},
		&cli.BoolFlag{
			Name:        jsonFlag,
			Usage:       "Print the summary as JSON",
			Value:       false,
			DefaultText: "false",
			OnlyOnce:    true,
		},
		&cli.BoolFlag{
			Name:        keepFlag,
			Usage:       "Keep working directories after output collection",
			Value:       false,
			DefaultText: "false",
			OnlyOnce:    true,
		},
		&cli.BoolFlag{
			Name:        strictFlag,
			Usage:       "Fail a fragment when none of the known output artifacts are found",
			Value:       false,
			DefaultText: "false",
			OnlyOnce:    true,
		},
	},
	Action: actionFunc,
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	planFileName := cmd.StringArg(fileArg)
	if planFileName == "" {
		return cli.Exit("Please provide a plan file to run", exitCodeFail)
	}

	data, err := os.ReadFile(planFileName)
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to read file %s: %s", planFileName, err.Error()), exitCodeFail)
	}

	p, err := plan.Load(data)
	if err != nil {
		return cli.Exit(fmt.Sprintf("invalid plan %s: %s", planFileName, err.Error()), exitCodeFail)
	}

	if cmd.IsSet(workersFlag) {
		p.Workers = cmd.Int(workersFlag)
	}

	if cmd.Bool(keepFlag) {
		p.KeepWorkdirs = true
	}

	if cmd.Bool(strictFlag) {
		p.StrictOutputs = true
	}

	o := dispatch.New(p)

	results, err := o.Run(ctx)
	if err != nil {
		return cli.Exit("run failed: "+err.Error(), exitCodeFail)
	}

	if err := results.WriteText(cmd.Writer); err != nil {
		return cli.Exit("failed to write results: "+err.Error(), exitCodeFail)
	}

	if cmd.Bool(mergeFlag) {
		summaries, err := history.Process(ctx, o.FS, p.OutputDirectory)
		if err != nil {
			return cli.Exit("merge failed: "+err.Error(), exitCodeFail)
		}

		if err := writeSummaries(cmd, summaries); err != nil {
			return cli.Exit("failed to write summary: "+err.Error(), exitCodeFail)
		}
	}

	if results.HasFailures() {
		return cli.Exit("one or more fragments failed", exitCodeFail)
	}

	return nil
}

func writeSummaries(cmd *cli.Command, summaries history.Summaries) error {
	if cmd.Bool(jsonFlag) {
		return summaries.WriteJSON(cmd.Writer)
	}

	return summaries.WriteText(cmd.Writer)
}
