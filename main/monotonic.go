/*
	Copyright (c) 2026 gyrod authors
	Distributable under the terms of The "BSD New" License
	that can be found in the LICENSE file, herein included
	as part of this header.

	monotonic.go: Uptime clock that does not jump when the RTC is set after boot.
*/

package main

import (
	"strings"
	"time"

	humanize "github.com/dustin/go-humanize"
)

// monotonic measures time since start from the runtime's monotonic clock reading.
type monotonic struct {
	start time.Time
}

func newMonotonic() *monotonic {
	return &monotonic{start: time.Now()}
}

func (m *monotonic) Uptime() time.Duration {
	return time.Since(m.start)
}

// HumanizeUptime returns e.g. "3 minutes".
func (m *monotonic) HumanizeUptime() string {
	return strings.TrimSpace(humanize.RelTime(m.start, m.start.Add(m.Uptime()), "", ""))
}

// HumanizeAge returns how long ago t was, "never" for the zero time.
func (m *monotonic) HumanizeAge(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return humanize.RelTime(t, time.Now(), "ago", "from now")
}
