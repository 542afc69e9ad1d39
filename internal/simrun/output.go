// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package simrun

import (
	"bytes"
	"strings"
	"sync"
)

// lastLineMax bounds the progress line length in log output.
const lastLineMax = 120

// outputCapture collects everything the simulator writes while tracking the
// most recent complete line. The simulator prints a progress line per ion,
// so the last line is the best single indicator of how far a run got before
// it failed. Safe for concurrent use: the process writes stdout and stderr
// from separate goroutines.
type outputCapture struct {
	mu       sync.RWMutex
	full     bytes.Buffer
	lastLine string
	partial  strings.Builder
}

// Write implements io.Writer. All data is retained; line tracking updates as
// complete lines arrive.
func (c *outputCapture) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.full.Write(p)
	c.track(string(p))

	return len(p), nil
}

// track updates lastLine from new data. Must be called with the lock held.
func (c *outputCapture) track(data string) {
	c.partial.WriteString(data)
	combined := c.partial.String()

	lines := strings.Split(combined, "\n")
	if len(lines) == 1 {
		return
	}

	// The final element is empty when data ended on a newline, otherwise it
	// is the start of the next line.
	c.lastLine = strings.TrimRight(lines[len(lines)-2], "\r")
	c.partial.Reset()
	c.partial.WriteString(lines[len(lines)-1])
}

// LastLine returns the most recent complete line, truncated for logging.
func (c *outputCapture) LastLine() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	line := c.lastLine
	if len(line) > lastLineMax {
		line = line[:lastLineMax-3] + "..."
	}

	return line
}

// String returns everything captured so far.
func (c *outputCapture) String() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.full.String()
}
