// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package simrun

import (
	"context"
	"errors"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/matt-FFFFFF/trimbatch/internal/plan"
	"github.com/prashantv/gostub"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubRandomName(t *testing.T, name string) {
	t.Helper()

	stub := gostub.Stub(&RandomName, func(prefix string, _ int) string {
		return prefix + name
	})
	t.Cleanup(stub.Reset)
}

func newAssetDir(t *testing.T) afero.Fs {
	t.Helper()

	fs := afero.NewMemMapFs()
	files := map[string]string{
		"/srim/TRIM.exe":             "binary",
		"/srim/VERSION.dat":          "data",
		"/srim/SETUP.OCX":            "control",
		"/srim/README.md":            "skip me",
		"/srim/SRIM Outputs/old.txt": "stale output",
		"/srim/Data/SCOEF.95A":       "coefficients",
	}

	for name, content := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(content), 0o644))
	}

	return fs
}

func TestWorkdirCopiesAssets(t *testing.T) {
	stubRandomName(t, "abc")

	fs := newAssetDir(t)

	dir, err := Workdir(context.Background(), fs, "/tmp/scratch", "/srim")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/scratch", "trim_abc"), dir)

	for _, name := range []string{"TRIM.exe", "VERSION.dat", "SETUP.OCX"} {
		ok, err := afero.Exists(fs, filepath.Join(dir, name))
		require.NoError(t, err)
		assert.True(t, ok, "%s should be copied", name)
	}

	ok, err := afero.Exists(fs, filepath.Join(dir, "README.md"))
	require.NoError(t, err)
	assert.False(t, ok, "non-asset files are not copied")

	for _, name := range []string{"SRIM Outputs/old.txt", "Data/SCOEF.95A"} {
		ok, err := afero.Exists(fs, filepath.Join(dir, name))
		require.NoError(t, err)
		assert.True(t, ok, "%s should be copied", name)
	}
}

func TestWorkdirExtensionMatchIsCaseInsensitive(t *testing.T) {
	stubRandomName(t, "abc")

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/srim/TRIM.EXE", []byte("binary"), 0o644))

	dir, err := Workdir(context.Background(), fs, "/tmp/scratch", "/srim")
	require.NoError(t, err)

	ok, err := afero.Exists(fs, filepath.Join(dir, "TRIM.EXE"))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestWorkdirMissingAssetDir(t *testing.T) {
	stubRandomName(t, "abc")

	fs := afero.NewMemMapFs()

	_, err := Workdir(context.Background(), fs, "/tmp/scratch", "/nope")
	require.ErrorIs(t, err, ErrAssetCopy)
}

func TestTrimInputWritesMetadata(t *testing.T) {
	fs := afero.NewMemMapFs()
	cat := plan.Category{Identifier: "Ni", Z: 28, Mass: 58.693, Energy: 3.0e6}

	require.NoError(t, TrimInput{Description: "test run"}.WriteInputs(fs, "/work", cat, 250))

	data, err := afero.ReadFile(fs, "/work/TRIM.IN")
	require.NoError(t, err)

	lines := strings.Split(string(data), "\r\n")
	require.GreaterOrEqual(t, len(lines), 3)

	// The ion count contract: third-to-last token of line 3.
	tokens := strings.Fields(lines[2])
	require.GreaterOrEqual(t, len(tokens), 3)

	ions, err := strconv.Atoi(tokens[len(tokens)-3])
	require.NoError(t, err)
	assert.Equal(t, 250, ions)

	ok, err := afero.Exists(fs, "/work/TRIMAUTO")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestTrimInputStripsQuotes(t *testing.T) {
	fs := afero.NewMemMapFs()

	require.NoError(t, TrimInput{Description: `a "quoted" description`}.WriteInputs(fs, "/work", plan.Category{}, 1))

	data, err := afero.ReadFile(fs, "/work/TRIM.IN")
	require.NoError(t, err)
	assert.NotContains(t, string(data), `a "quoted"`)
}

func TestExecRunMissingExecutable(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/work", 0o755))

	err := Exec{FS: fs}.Run(context.Background(), "/work")
	require.ErrorIs(t, err, ErrNoExecutable)
}

func TestInvocationUsesShimWhenAvailable(t *testing.T) {
	defer gostub.Stub(&lookPath, func(name string) (string, error) {
		if name == shimName {
			return "/usr/bin/wine", nil
		}

		return "", errors.New("not found")
	}).Reset()

	name, args := invocation("/work/TRIM.exe")
	assert.Equal(t, "/usr/bin/wine", name)
	assert.Equal(t, []string{"/work/TRIM.exe"}, args)
}

func TestInvocationDirectWithoutShim(t *testing.T) {
	defer gostub.Stub(&lookPath, func(string) (string, error) {
		return "", errors.New("not found")
	}).Reset()

	name, args := invocation("/work/TRIM.exe")
	assert.Equal(t, "/work/TRIM.exe", name)
	assert.Nil(t, args)
}
