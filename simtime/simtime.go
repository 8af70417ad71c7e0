// Copyright 2026 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package simtime provides the simulated-clock value types shared by every
// component driven by the scheduler: a monotonic Time and a signed Duration,
// both measured in nanoseconds of simulated time.
package simtime

import "fmt"

// Duration is a span of simulated time, in nanoseconds.
type Duration int64

const (
	Nanosecond  Duration = 1
	Microsecond          = 1000 * Nanosecond
	Millisecond          = 1000 * Microsecond
	Second               = 1000 * Millisecond
)

// Time is a point in simulated time, in nanoseconds since the simulator was
// constructed.
type Time struct{ value int64 }

// Zero is the time at which a simulator starts running.
var Zero = Time{}

func (t Time) Add(d Duration) Time {
	return Time{value: t.value + int64(d)}
}

func (t Time) Sub(u Time) Duration {
	return Duration(t.value - u.value)
}

// Before reports whether t occurs strictly earlier than u.
func (t Time) Before(u Time) bool { return t.value < u.value }

// After reports whether t occurs strictly later than u.
func (t Time) After(u Time) bool { return t.value > u.value }

func (t Time) String() string {
	return fmt.Sprintf("t=%d.%09d", t.value/int64(Second), t.value%int64(Second))
}
