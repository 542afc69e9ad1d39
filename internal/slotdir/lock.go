// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package slotdir

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

// lockFileName is the advisory lock file created inside each category
// directory. Callers on the same category serialize on it; different
// categories never block each other.
const lockFileName = ".folder_lock"

const flockRetryDelay = 25 * time.Millisecond

// Locker is a named mutex scoped to one category path. Implementations
// must be safe for concurrent use.
type Locker interface {
	Lock(ctx context.Context) error
	Unlock() error
}

// LockerFactory returns a Locker scoped to the given category directory.
type LockerFactory func(dir string) Locker

// NewFlock returns a Locker backed by a filesystem advisory lock, giving
// mutual exclusion across processes as well as goroutines.
func NewFlock(dir string) Locker {
	return &flockLocker{fl: flock.New(filepath.Join(dir, lockFileName))}
}

type flockLocker struct {
	fl *flock.Flock
}

func (l *flockLocker) Lock(ctx context.Context) error {
	_, err := l.fl.TryLockContext(ctx, flockRetryDelay)

	return err //nolint:wrapcheck
}

func (l *flockLocker) Unlock() error {
	return l.fl.Unlock() //nolint:wrapcheck
}

// NewMutex returns a process-local Locker. It serves tests and in-memory
// filesystems, where advisory file locks have nothing to attach to.
// Lockers created by the same factory share one mutex per directory.
func NewMutex() LockerFactory {
	mu := &sync.Mutex{}
	locks := make(map[string]*sync.Mutex)

	return func(dir string) Locker {
		mu.Lock()
		defer mu.Unlock()

		if _, ok := locks[dir]; !ok {
			locks[dir] = &sync.Mutex{}
		}

		return &mutexLocker{mu: locks[dir]}
	}
}

type mutexLocker struct {
	mu *sync.Mutex
}

func (l *mutexLocker) Lock(_ context.Context) error {
	l.mu.Lock()

	return nil
}

func (l *mutexLocker) Unlock() error {
	l.mu.Unlock()

	return nil
}
