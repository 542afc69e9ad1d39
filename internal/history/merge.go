// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package history

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"

	"github.com/matt-FFFFFF/trimbatch/internal/ctxlog"
	"github.com/spf13/afero"
)

var (
	// ErrNoHistory is returned when a category has no raw history files to
	// merge.
	ErrNoHistory = errors.New("no raw history files found")
	// ErrMergeWrite is returned when the merged file cannot be written.
	ErrMergeWrite = errors.New("failed to write merged history file")
)

// historyMarker introduces the collision history section. Everything up to
// and including the marker line, plus postMarkerHeaderLines further lines,
// is header and is skipped for every file after the first.
var historyMarker = []byte("==========================  COLLISION HISTORY")

const postMarkerHeaderLines = 9

// ionNumberPattern matches the embedded per-record sequence token. The
// match region is pure ASCII even though the surrounding bytes mix text
// with code-page drawing characters.
var ionNumberPattern = regexp.MustCompile(`For Ion\s+(\d+)`)

// Merge concatenates a category's raw history files in fragment-sequence
// order into cat.Dir/COLLISON.txt. The first file is copied verbatim; every
// subsequent file has its header stripped and its sequence numbers rebased
// by the cumulative ion count of the files before it, so numbers increase
// monotonically across fragment boundaries. A single input is copied
// byte-for-byte. Returns the merged file path.
func Merge(ctx context.Context, fs afero.Fs, cat Category) (string, error) {
	out := filepath.Join(cat.Dir, CollisionFileName)

	contributors := make([]Fragment, 0, len(cat.Fragments))
	for _, f := range cat.Fragments {
		if f.CollisionFile != "" {
			contributors = append(contributors, f)
		}
	}

	if len(contributors) == 0 {
		return "", fmt.Errorf("%w: category %q", ErrNoHistory, cat.Name)
	}

	if err := copyVerbatim(fs, contributors[0].CollisionFile, out); err != nil {
		return "", errors.Join(ErrMergeWrite, err)
	}

	if len(contributors) == 1 {
		return out, nil
	}

	dst, err := fs.OpenFile(out, os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return "", errors.Join(ErrMergeWrite, err)
	}
	defer dst.Close() //nolint:errcheck

	w := bufio.NewWriter(dst)
	offset := contributors[0].Ions

	for _, frag := range contributors[1:] {
		src, err := fs.Open(frag.CollisionFile)
		if err != nil {
			return "", errors.Join(ErrMergeWrite, err)
		}

		err = appendRenumbered(w, src, offset)
		_ = src.Close()

		if err != nil {
			return "", errors.Join(ErrMergeWrite, err)
		}

		offset += frag.Ions
	}

	if err := w.Flush(); err != nil {
		return "", errors.Join(ErrMergeWrite, err)
	}

	ctxlog.Info(ctx, "merged history files",
		"category", cat.Name, "files", len(contributors), "out", out)

	return out, nil
}

type mergeState int

const (
	inHeader mergeState = iota
	skippingPostMarkerLines
	inBody
)

// appendRenumbered streams one raw history file to w, skipping its header
// and rebasing each sequence token to offset plus a per-file counter that
// increments on every matched line. Content is treated as opaque bytes
// except for the marker and the sequence token; the files mix text with
// non-ASCII drawing characters and must never be decoded.
func appendRenumbered(w io.Writer, r io.Reader, offset int) error {
	br := bufio.NewReader(r)
	state := inHeader
	skip := postMarkerHeaderLines
	local := 0

	for {
		line, readErr := br.ReadBytes('\n')

		if len(line) > 0 {
			switch state {
			case inHeader:
				if bytes.Contains(line, historyMarker) {
					state = skippingPostMarkerLines
				}

			case skippingPostMarkerLines:
				if skip--; skip == 0 {
					state = inBody
				}

			case inBody:
				if loc := ionNumberPattern.FindIndex(line); loc != nil {
					local++
					line = rewriteToken(line, loc, offset+local)
				}

				if _, err := w.Write(line); err != nil {
					return err
				}
			}
		}

		if readErr == io.EOF {
			return nil
		}

		if readErr != nil {
			return readErr
		}
	}
}

// rewriteToken splices a renumbered sequence token over the matched region.
func rewriteToken(line []byte, loc []int, n int) []byte {
	token := fmt.Appendf(nil, "For Ion %07d", n)

	out := make([]byte, 0, len(line)-(loc[1]-loc[0])+len(token))
	out = append(out, line[:loc[0]]...)
	out = append(out, token...)
	out = append(out, line[loc[1]:]...)

	return out
}

func copyVerbatim(fs afero.Fs, src, dst string) error {
	in, err := fs.Open(src)
	if err != nil {
		return err
	}
	defer in.Close() //nolint:errcheck

	out, err := fs.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close() //nolint:errcheck

	_, err = io.Copy(out, in)

	return err
}
