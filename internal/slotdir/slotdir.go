// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package slotdir allocates uniquely numbered result subdirectories under a
// category path. Allocation is the only synchronization point in the whole
// pipeline: concurrent fragment completions race to claim slot numbers, and
// the lock guarantees at most one winner per number.
package slotdir

import (
	"context"
	"errors"
	"path/filepath"
	"strconv"

	"github.com/spf13/afero"
)

var (
	// ErrCategoryDir is returned when the category directory cannot be created.
	ErrCategoryDir = errors.New("failed to create category directory")
	// ErrLock is returned when the category lock cannot be acquired.
	ErrLock = errors.New("failed to acquire category lock")
	// ErrCreateSlot is returned when the slot directory cannot be created.
	ErrCreateSlot = errors.New("failed to create slot directory")
)

const dirMode = 0o755

// Allocate finds or creates the next unused numbered subdirectory beneath
// categoryDir and returns its path and number. The scan starts at zero and
// takes the first number with no existing entry of that name, so gaps left
// by external deletions are reused. The lock is always released before
// returning.
func Allocate(ctx context.Context, fs afero.Fs, categoryDir string, locker Locker) (string, int, error) {
	if err := fs.MkdirAll(categoryDir, dirMode); err != nil {
		return "", 0, errors.Join(ErrCategoryDir, err)
	}

	if err := locker.Lock(ctx); err != nil {
		return "", 0, errors.Join(ErrLock, err)
	}
	defer locker.Unlock() //nolint:errcheck

	for i := 0; ; i++ {
		slot := filepath.Join(categoryDir, strconv.Itoa(i))

		exists, err := afero.Exists(fs, slot)
		if err != nil {
			return "", 0, errors.Join(ErrCreateSlot, err)
		}

		if exists {
			continue
		}

		if err := fs.Mkdir(slot, dirMode); err != nil {
			return "", 0, errors.Join(ErrCreateSlot, err)
		}

		return slot, i, nil
	}
}
