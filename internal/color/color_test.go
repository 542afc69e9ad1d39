// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package color

import (
	"testing"

	"github.com/prashantv/gostub"
	"github.com/stretchr/testify/assert"
)

func TestColorizeDisabled(t *testing.T) {
	defer gostub.Stub(&enabled, false).Reset()

	assert.Equal(t, "hello", Colorize("hello", FgCyan))
}

func TestColorizeSingleCode(t *testing.T) {
	defer gostub.Stub(&enabled, true).Reset()

	assert.Equal(t, "\033[36mhello\033[0m", Colorize("hello", FgCyan))
}

func TestColorizeMultipleCodes(t *testing.T) {
	defer gostub.Stub(&enabled, true).Reset()

	assert.Equal(t, "\033[1;31mhello\033[0m", Colorize("hello", Bold, FgRed))
}

func TestColorizeNoCodes(t *testing.T) {
	defer gostub.Stub(&enabled, true).Reset()

	assert.Equal(t, "hello", Colorize("hello"))
}
