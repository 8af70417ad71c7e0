// Copyright 2026 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package arp

import (
	"github.com/ntu-dsi-dcn/ntu-dsi-dcn/link/frame"
	"github.com/ntu-dsi-dcn/ntu-dsi-dcn/simtime"
)

// State is an ARP cache entry's lifecycle state.
type State int

const (
	Incomplete State = iota
	Alive
	Dead
)

func (s State) String() string {
	switch s {
	case Incomplete:
		return "Incomplete"
	case Alive:
		return "Alive"
	case Dead:
		return "Dead"
	default:
		return "State(?)"
	}
}

// Pending is the single outbound frame parked at an Incomplete entry while
// it awaits resolution.
type Pending struct {
	Payload  []byte
	Protocol uint16
}

// Entry is a per-destination cache entry: exactly one of the three states,
// with at most one Pending frame (only meaningful while Incomplete).
type Entry struct {
	State    State
	MAC      frame.MAC
	Pending  *Pending
	LastSeen simtime.Time
}

// Config holds the lifetimes §4.E requires callers to make explicit: how
// long a request goes unanswered before the entry dies (RequestTimeout), and
// how long a resolved (AliveLifetime) or failed (DeadLifetime) entry is
// trusted before it must be re-resolved.
//
// The original source states neither value; these defaults (60s simulated
// caching, 3s simulated request timeout) are a deliberate, documented
// choice, not a silent one.
type Config struct {
	RequestTimeout simtime.Duration
	AliveLifetime  simtime.Duration
	DeadLifetime   simtime.Duration
}

// DefaultConfig returns the lifetimes this module applies unless the caller
// overrides them.
func DefaultConfig() Config {
	return Config{
		RequestTimeout: 3 * simtime.Second,
		AliveLifetime:  60 * simtime.Second,
		DeadLifetime:   60 * simtime.Second,
	}
}

func (c Config) lifetime(s State) simtime.Duration {
	switch s {
	case Incomplete:
		return c.RequestTimeout
	case Dead:
		return c.DeadLifetime
	default:
		return c.AliveLifetime
	}
}

// Cache is the per-device map from IPv4 destination to Entry, per §4.F.
type Cache struct {
	config  Config
	entries map[IPv4]*Entry
}

func newCache(config Config) *Cache {
	return &Cache{config: config, entries: make(map[IPv4]*Entry)}
}

// lookup returns the entry for destination, if any, and whether it has
// expired as of now.
func (c *Cache) lookup(destination IPv4, now simtime.Time) (*Entry, bool) {
	e, ok := c.entries[destination]
	if !ok {
		return nil, false
	}
	return e, now.Sub(e.LastSeen) > c.config.lifetime(e.State)
}

// flush drops every entry, returning the pending frames that were lost so
// the caller can report them to the drop trace.
func (c *Cache) flush() []*Pending {
	var dropped []*Pending
	for _, e := range c.entries {
		if e.Pending != nil {
			dropped = append(dropped, e.Pending)
		}
	}
	c.entries = make(map[IPv4]*Entry)
	return dropped
}
