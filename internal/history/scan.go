// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package history reconciles per-fragment simulator output into one
// logically continuous collision history per category, then extracts
// coordinate records from it.
//
// The result tree layout is root/<category>/<slot>/<artifacts>; the merged
// history and the serialized coordinate array are written next to the slot
// directories as root/<category>/COLLISON.txt and root/<category>/collision.dat.
package history

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/matt-FFFFFF/trimbatch/internal/ctxlog"
	"github.com/spf13/afero"
)

var (
	// ErrScanRoot is returned when the result tree root cannot be read.
	ErrScanRoot = errors.New("failed to read result tree root")
	// ErrBadMetadata is returned when a fragment's metadata file is missing
	// or malformed. The scanner recovers with an ion count of zero, which
	// makes downstream renumbering inaccurate for later fragments; this is
	// a documented limitation.
	ErrBadMetadata = errors.New("could not read ion count from metadata file")
)

const (
	// CollisionFileName is the raw history file produced per fragment, and
	// also the name of the merged file written at the category level.
	CollisionFileName = "COLLISON.txt"
	// metadataFileName records the ion count requested for a fragment as
	// the third-to-last whitespace token of its third line.
	metadataFileName = "TRIM.IN"
)

// Fragment is one discovered result slot.
type Fragment struct {
	Index         int
	Dir           string
	CollisionFile string // empty when the slot has no raw history file
	Ions          int
}

// Category is one discovered result subtree.
type Category struct {
	Name      string
	Dir       string
	Fragments []Fragment // ascending by Index
}

// TotalIons returns the sum of the fragments' recovered ion counts.
func (c Category) TotalIons() int {
	total := 0
	for _, f := range c.Fragments {
		total += f.Ions
	}

	return total
}

// CollisionFiles returns the fragments' raw history files in sequence
// order, skipping fragments that produced none.
func (c Category) CollisionFiles() []string {
	files := make([]string, 0, len(c.Fragments))

	for _, f := range c.Fragments {
		if f.CollisionFile != "" {
			files = append(files, f.CollisionFile)
		}
	}

	return files
}

// Scan walks a result tree and discovers categories and their fragments.
// Non-directory entries and subdirectories whose names are not decimal
// integers are skipped silently.
func Scan(ctx context.Context, fs afero.Fs, root string) ([]Category, error) {
	entries, err := afero.ReadDir(fs, root)
	if err != nil {
		return nil, errors.Join(ErrScanRoot, err)
	}

	categories := make([]Category, 0, len(entries))

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		cat := Category{
			Name: entry.Name(),
			Dir:  filepath.Join(root, entry.Name()),
		}

		cat.Fragments, err = scanFragments(ctx, fs, cat.Dir)
		if err != nil {
			return nil, err
		}

		categories = append(categories, cat)
	}

	return categories, nil
}

func scanFragments(ctx context.Context, fs afero.Fs, categoryDir string) ([]Fragment, error) {
	entries, err := afero.ReadDir(fs, categoryDir)
	if err != nil {
		return nil, errors.Join(ErrScanRoot, err)
	}

	fragments := make([]Fragment, 0, len(entries))

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		index, err := strconv.Atoi(entry.Name())
		if err != nil {
			continue
		}

		frag := Fragment{
			Index: index,
			Dir:   filepath.Join(categoryDir, entry.Name()),
		}

		collision := filepath.Join(frag.Dir, CollisionFileName)
		if ok, _ := afero.Exists(fs, collision); ok {
			frag.CollisionFile = collision
		}

		frag.Ions, err = readIonCount(fs, filepath.Join(frag.Dir, metadataFileName))
		if err != nil {
			ctxlog.Warn(ctx, "assuming zero ions for fragment",
				"dir", frag.Dir, "error", err)
		}

		fragments = append(fragments, frag)
	}

	sort.Slice(fragments, func(i, j int) bool { return fragments[i].Index < fragments[j].Index })

	return fragments, nil
}

// readIonCount recovers the requested ion count from a metadata file:
// the third-to-last whitespace-separated token of line 3.
func readIonCount(fs afero.Fs, path string) (int, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return 0, errors.Join(ErrBadMetadata, err)
	}

	lines := strings.Split(string(data), "\n")
	if len(lines) < 3 {
		return 0, ErrBadMetadata
	}

	tokens := strings.Fields(lines[2])
	if len(tokens) < 3 {
		return 0, ErrBadMetadata
	}

	ions, err := strconv.Atoi(tokens[len(tokens)-3])
	if err != nil {
		return 0, errors.Join(ErrBadMetadata, err)
	}

	return ions, nil
}
