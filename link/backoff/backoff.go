// Copyright 2026 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package backoff implements binary exponential backoff for a CSMA
// transmitter, grounded in CsmaNetDevice's m_backoff fields
// (SetBackoffParams, IsMaxRetriesReached, IncrNumRetries, GetBackoffTime,
// ResetBackoffTime) in the original source.
package backoff

import (
	"math/rand"

	"github.com/ntu-dsi-dcn/ntu-dsi-dcn/simtime"
)

// Params configures a Controller.
type Params struct {
	SlotTime   simtime.Duration
	MinSlots   uint32
	MaxSlots   uint32
	Ceiling    uint32
	MaxRetries uint32
}

// Controller tracks retry count and produces backoff delays. It draws its
// random slot count from an injected *rand.Rand rather than the package-level
// global so that tests can reproduce a scenario exactly.
type Controller struct {
	params Params
	rng    *rand.Rand
	retries uint32
}

// New returns a Controller with the given parameters, drawing random slot
// counts from rng.
func New(params Params, rng *rand.Rand) *Controller {
	return &Controller{params: params, rng: rng}
}

// NextDelay chooses a uniform integer k in [0, 2^min(retries, ceiling)),
// clamps it to [MinSlots, MaxSlots], and returns k*SlotTime.
func (c *Controller) NextDelay() simtime.Duration {
	exp := c.retries
	if exp > c.params.Ceiling {
		exp = c.params.Ceiling
	}
	span := uint32(1) << exp
	k := uint32(c.rng.Int63n(int64(span)))
	if k < c.params.MinSlots {
		k = c.params.MinSlots
	}
	if k > c.params.MaxSlots {
		k = c.params.MaxSlots
	}
	return simtime.Duration(k) * c.params.SlotTime
}

// RecordAttempt increments the retry counter.
func (c *Controller) RecordAttempt() { c.retries++ }

// Reset zeroes the retry counter, e.g. after a successful transmission.
func (c *Controller) Reset() { c.retries = 0 }

// Exhausted reports whether the retry counter has reached MaxRetries.
func (c *Controller) Exhausted() bool { return c.retries >= c.params.MaxRetries }

// Retries returns the current retry count, for observability and tests.
func (c *Controller) Retries() uint32 { return c.retries }
