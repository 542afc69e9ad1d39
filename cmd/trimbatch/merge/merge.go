// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package merge implements the "merge" subcommand: combine collision
// histories from an existing result tree and print the summary.
package merge

import (
	"context"
	"fmt"

	"github.com/matt-FFFFFF/trimbatch/internal/history"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"
)

const (
	rootArg      = "root"
	jsonFlag     = "json"
	exitCodeFail = 1
)

// MergeCmd merges collision histories under a result tree.
var MergeCmd = &cli.Command{
	Name:        "merge",
	Description: "Merge per-fragment collision histories under a result tree and print the summary.",
	Arguments: []cli.Argument{
		&cli.StringArg{
			Name:      rootArg,
			UsageText: "ROOTDIR",
			Config: cli.StringConfig{
				TrimSpace: true,
			},
		},
	},
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:        jsonFlag,
			Usage:       "Print the summary as JSON",
			Value:       false,
			DefaultText: "false",
			OnlyOnce:    true,
		},
	},
	Action: actionFunc,
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	root := cmd.StringArg(rootArg)
	if root == "" {
		return cli.Exit("Please provide a result tree to merge", exitCodeFail)
	}

	fs := afero.NewOsFs()

	ok, err := afero.DirExists(fs, root)
	if err != nil || !ok {
		return cli.Exit(fmt.Sprintf("%s is not a directory", root), exitCodeFail)
	}

	summaries, err := history.Process(ctx, fs, root)
	if err != nil {
		return cli.Exit("merge failed: "+err.Error(), exitCodeFail)
	}

	if cmd.Bool(jsonFlag) {
		if err := summaries.WriteJSON(cmd.Writer); err != nil {
			return cli.Exit("failed to write summary: "+err.Error(), exitCodeFail)
		}

		return nil
	}

	if err := summaries.WriteText(cmd.Writer); err != nil {
		return cli.Exit("failed to write summary: "+err.Error(), exitCodeFail)
	}

	return nil
}
