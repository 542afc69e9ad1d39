// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main contains the trimbatch command-line interface (CLI).
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/matt-FFFFFF/trimbatch"
	"github.com/matt-FFFFFF/trimbatch/cmd/trimbatch/merge"
	"github.com/matt-FFFFFF/trimbatch/cmd/trimbatch/run"
	"github.com/matt-FFFFFF/trimbatch/internal/ctxlog"
	"github.com/matt-FFFFFF/trimbatch/internal/signalbroker"
	"github.com/urfave/cli/v3"
)

// rootCmd is the root command for the CLI.
var rootCmd = &cli.Command{
	Commands: []*cli.Command{
		run.RunCmd,
		merge.MergeCmd,
	},
	Writer:    os.Stdout,
	ErrWriter: os.Stderr,
	Name:      "trimbatch",
	Description: `Trimbatch coordinates many independent runs of the TRIM ion-implantation
simulator. It splits each ion species' requested ion count into bounded fragments,
runs them concurrently in isolated working directories, collects the outputs into
uniquely numbered result slots, and merges the per-fragment collision histories
into one continuous file per species with consistent ion numbering.`,
	Usage:     "trimbatch run myplan.yaml",
	Copyright: "Copyright (c) matt-FFFFFF 2025. All rights reserved.",
	Authors: []any{
		"Matt White (matt-FFFFFF)",
	},
	EnableShellCompletion: true,
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	ctx = ctxlog.New(ctx, ctxlog.DefaultLogger)
	defer cancel()

	sigCh := signalbroker.New(ctx)

	go signalbroker.Watch(ctx, sigCh, cancel)

	rootCmd.Version = fmt.Sprintf("%s (commit: %s)", trimbatch.Version, trimbatch.Commit)

	err := rootCmd.Run(ctx, os.Args)

	// Check if the context was cancelled (e.g., due to signals)
	if ctx.Err() != nil {
		ctxlog.Logger(ctx).Error("command terminated due to cancellation", "error", ctx.Err())
		os.Exit(1)
	}

	if err != nil {
		ctxlog.Logger(ctx).Error("command execution failed", "error", err)
		os.Exit(1)
	}

	ctxlog.Logger(ctx).Info("command completed successfully")
}
