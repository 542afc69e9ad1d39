// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package simrun

import (
	"context"
	"errors"
	"os/exec"
	"path/filepath"

	"github.com/matt-FFFFFF/trimbatch/internal/ctxlog"
	"github.com/spf13/afero"
)

var (
	// ErrNoExecutable is returned when the simulator executable is missing
	// from the working directory.
	ErrNoExecutable = errors.New("simulator executable not found")
	// ErrRunFailure is returned when the simulator exits nonzero or cannot
	// be started. The working directory is left in place for diagnosis.
	ErrRunFailure = errors.New("simulator run failed")
)

// ExecutableName is the simulator binary expected inside every working
// directory.
const ExecutableName = "TRIM.exe"

// shimName is the compatibility layer used on hosts that cannot execute the
// simulator natively.
const shimName = "wine"

// lookPath resolves binaries on the host PATH. Variable so tests can force
// either invocation mode.
var lookPath = exec.LookPath

// Exec invokes the simulator synchronously in a prepared working directory.
type Exec struct {
	// FS is used to check for the executable before invoking it. Processes
	// always start on the host OS regardless of this filesystem.
	FS afero.Fs
}

// Run starts the simulator with dir as its working directory and blocks
// until it exits. There is no return value beyond success or failure;
// output retrieval is the collector's job.
func (e Exec) Run(ctx context.Context, dir string) error {
	exe := filepath.Join(dir, ExecutableName)

	ok, err := afero.Exists(e.FS, exe)
	if err != nil || !ok {
		return errors.Join(ErrNoExecutable, err)
	}

	name, args := invocation(exe)

	ctxlog.Debug(ctx, "starting simulator", "path", name, "args", args, "cwd", dir)

	capture := &outputCapture{}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdout = capture
	cmd.Stderr = capture

	if err := cmd.Run(); err != nil {
		ctxlog.Error(ctx, "simulator failed",
			"dir", dir,
			"error", err,
			"lastLine", capture.LastLine(),
			"output", capture.String())

		return errors.Join(ErrRunFailure, err)
	}

	ctxlog.Debug(ctx, "simulator finished", "dir", dir)

	return nil
}

// invocation routes the executable through the compatibility shim when one
// is available on PATH; otherwise the host is assumed to run it natively.
func invocation(exe string) (string, []string) {
	if shim, err := lookPath(shimName); err == nil {
		return shim, []string{exe}
	}

	return exe, nil
}
