// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package collect copies a fragment's output artifacts from its working
// directory into an allocated result slot.
package collect

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/matt-FFFFFF/trimbatch/internal/ctxlog"
	"github.com/spf13/afero"
)

var (
	// ErrNotDirectory is returned when a source or destination path is not
	// a directory.
	ErrNotDirectory = errors.New("path is not a directory")
	// ErrMissingOutputs is returned in strict mode when none of the known
	// artifacts were found.
	ErrMissingOutputs = errors.New("no known output artifacts found")
	// ErrCopyArtifact is returned when an artifact cannot be copied or moved.
	ErrCopyArtifact = errors.New("failed to collect artifact")
)

// KnownArtifacts are the simulator output files collected per fragment,
// each representing one physical-quantity channel, plus the echoed input
// configuration (TRIM.IN).
var KnownArtifacts = []string{
	"TRIM.IN",
	"PHONON.txt",
	"E2RECOIL.txt",
	"IONIZ.txt",
	"LATERAL.txt",
	"NOVAC.txt",
	"RANGE.txt",
	"VACANCY.txt",
	"COLLISON.txt",
	"BACKSCAT.txt",
	"SPUTTER.txt",
	"RANGE_3D.txt",
	"TRANSMIT.txt",
	"TRIMOUT.txt",
	"TDATA.txt",
}

// outputSubdir is the simulator's nested output folder. Artifacts found
// only there are moved rather than copied to avoid duplication.
const outputSubdir = "SRIM Outputs"

const fileMode = 0o644

// Options controls collection behaviour.
type Options struct {
	// Strict makes collection fail when zero known artifacts are found.
	Strict bool
	// ScratchRoot is the only prefix under which the source working
	// directory may be deleted. An empty value disables deletion.
	ScratchRoot string
	// Keep leaves the working directory in place after collection.
	Keep bool
}

// Outputs copies every known artifact that exists in src (or moves it from
// src's nested output folder) into dst, then disposes of src. It returns
// the number of artifacts collected.
func Outputs(ctx context.Context, fs afero.Fs, src, dst string, opts Options) (int, error) {
	for _, dir := range []string{src, dst} {
		ok, err := afero.DirExists(fs, dir)
		if err != nil || !ok {
			return 0, errors.Join(ErrNotDirectory, err)
		}
	}

	found := 0

	for _, name := range KnownArtifacts {
		direct := filepath.Join(src, name)
		target := filepath.Join(dst, name)

		switch {
		case fileExists(fs, direct):
			if err := copyFile(fs, direct, target); err != nil {
				return found, errors.Join(ErrCopyArtifact, err)
			}

			found++

		case fileExists(fs, filepath.Join(src, outputSubdir, name)):
			if err := moveFile(fs, filepath.Join(src, outputSubdir, name), target); err != nil {
				return found, errors.Join(ErrCopyArtifact, err)
			}

			found++
		}
	}

	if opts.Strict && found == 0 {
		return 0, ErrMissingOutputs
	}

	cleanup(ctx, fs, src, opts)

	ctxlog.Debug(ctx, "outputs collected", "src", src, "dst", dst, "artifacts", found)

	return found, nil
}

// cleanup removes the working directory on a best-effort basis. It refuses
// to delete anything outside the scratch root.
func cleanup(ctx context.Context, fs afero.Fs, src string, opts Options) {
	if opts.Keep || opts.ScratchRoot == "" {
		return
	}

	root := filepath.Clean(opts.ScratchRoot) + string(filepath.Separator)
	if !strings.HasPrefix(filepath.Clean(src)+string(filepath.Separator), root) {
		ctxlog.Warn(ctx, "refusing to delete directory outside scratch root", "dir", src, "scratchRoot", opts.ScratchRoot)

		return
	}

	if err := fs.RemoveAll(src); err != nil {
		ctxlog.Warn(ctx, "could not delete working directory", "dir", src, "error", err)
	}
}

func copyFile(fs afero.Fs, src, dst string) error {
	data, err := afero.ReadFile(fs, src)
	if err != nil {
		return err //nolint:wrapcheck
	}

	return afero.WriteFile(fs, dst, data, fileMode) //nolint:wrapcheck
}

// moveFile renames src to dst, falling back to copy plus delete when the
// two paths are on different filesystems. The scratch directory commonly
// lives on tmpfs while the result tree lives on disk.
func moveFile(fs afero.Fs, src, dst string) error {
	if err := fs.Rename(src, dst); err == nil {
		return nil
	}

	if err := copyFile(fs, src, dst); err != nil {
		return err
	}

	return fs.Remove(src) //nolint:wrapcheck
}

func fileExists(fs afero.Fs, path string) bool {
	info, err := fs.Stat(path)

	return err == nil && !info.IsDir()
}
