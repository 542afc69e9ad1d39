// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package history

import (
	"context"
	"errors"

	"github.com/matt-FFFFFF/trimbatch/internal/ctxlog"
	"github.com/spf13/afero"
)

// Process runs the whole reconciliation pass over a result tree: scan the
// categories, merge each category's raw history files, extract the
// collision coordinates, serialize them, and return the summaries.
// Categories without any raw history file are skipped with a warning.
func Process(ctx context.Context, fs afero.Fs, root string) (Summaries, error) {
	categories, err := Scan(ctx, fs, root)
	if err != nil {
		return nil, err
	}

	summaries := make(Summaries, 0, len(categories))

	for _, cat := range categories {
		if _, err := Merge(ctx, fs, cat); err != nil {
			if errors.Is(err, ErrNoHistory) {
				ctxlog.Warn(ctx, "skipping category with no history files", "category", cat.Name)

				continue
			}

			return nil, err
		}

		res, err := Extract(ctx, fs, cat)
		if err != nil {
			return nil, err
		}

		if err := WriteDat(fs, cat, res.Points); err != nil {
			return nil, err
		}

		summaries = append(summaries, NewSummary(cat.Name, res))
	}

	return summaries, nil
}
