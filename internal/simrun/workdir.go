// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package simrun prepares isolated working directories and invokes the TRIM
// simulator in them. The simulator is a non-parallel Windows executable, so
// every concurrent fragment gets a private copy of the program assets.
package simrun

import (
	"context"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/matt-FFFFFF/trimbatch/internal/ctxlog"
	"github.com/spf13/afero"
)

var (
	// ErrScratchDir is returned when the working directory cannot be created.
	ErrScratchDir = errors.New("failed to create working directory")
	// ErrAssetCopy is returned when the simulator assets cannot be copied.
	// Asset copy failures are fatal: there is nothing to run without them.
	ErrAssetCopy = errors.New("failed to copy simulator assets")
)

// assetExtensions are the file types required next to the executable.
var assetExtensions = []string{".exe", ".dat", ".ocx"}

// assetFolders are the simulator support folders copied recursively when
// present in the asset directory.
var assetFolders = []string{"SRIM Outputs", "SRIM Restore", "Data"}

const (
	sixFourFour   = 0o644
	sevenFiveFive = 0o755

	workdirPrefix       = "trim_"
	workdirSuffixLength = 8
)

// RandomName generates a random string with the given prefix and length.
// Variable so tests can make directory names deterministic.
var RandomName = func(prefix string, n int) string {
	const letterBytes = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	b := make([]byte, n)
	for i := range b {
		b[i] = letterBytes[rand.Intn(len(letterBytes))]
	}

	return prefix + string(b)
}

// Workdir creates a fresh, uniquely named working directory under
// scratchRoot and seeds it with the simulator assets from assetDir: every
// file matching assetExtensions, plus the assetFolders subtrees when they
// exist. The returned path is exclusively owned by the caller.
func Workdir(ctx context.Context, fs afero.Fs, scratchRoot, assetDir string) (string, error) {
	dir := filepath.Join(scratchRoot, RandomName(workdirPrefix, workdirSuffixLength))
	if err := fs.MkdirAll(dir, sevenFiveFive); err != nil {
		return "", errors.Join(ErrScratchDir, err)
	}

	entries, err := afero.ReadDir(fs, assetDir)
	if err != nil {
		return "", errors.Join(ErrAssetCopy, err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !hasAssetExtension(entry.Name()) {
			continue
		}

		src := filepath.Join(assetDir, entry.Name())
		dst := filepath.Join(dir, entry.Name())

		if err := copyFile(fs, src, dst); err != nil {
			return "", errors.Join(ErrAssetCopy, err)
		}
	}

	for _, folder := range assetFolders {
		src := filepath.Join(assetDir, folder)

		isDir, err := afero.DirExists(fs, src)
		if err != nil || !isDir {
			continue
		}

		if err := copyTree(ctx, fs, src, filepath.Join(dir, folder)); err != nil {
			return "", errors.Join(ErrAssetCopy, err)
		}
	}

	ctxlog.Debug(ctx, "working directory prepared", "dir", dir, "assets", assetDir)

	return dir, nil
}

func hasAssetExtension(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range assetExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}

	return false
}

func copyFile(fs afero.Fs, src, dst string) error {
	data, err := afero.ReadFile(fs, src)
	if err != nil {
		return err
	}

	return afero.WriteFile(fs, dst, data, sixFourFour)
}

func copyTree(ctx context.Context, fs afero.Fs, src, dst string) error {
	return afero.Walk(fs, src, func(path string, info os.FileInfo, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}

		target := filepath.Join(dst, rel)

		if info.IsDir() {
			return fs.MkdirAll(target, sevenFiveFive)
		}

		return copyFile(fs, path, target)
	})
}
