// Copyright 2026 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package arp

import (
	"math/rand"
	"testing"

	"github.com/ntu-dsi-dcn/ntu-dsi-dcn/link/backoff"
	"github.com/ntu-dsi-dcn/ntu-dsi-dcn/link/channel"
	"github.com/ntu-dsi-dcn/ntu-dsi-dcn/link/csma"
	"github.com/ntu-dsi-dcn/ntu-dsi-dcn/link/frame"
	"github.com/ntu-dsi-dcn/ntu-dsi-dcn/simclock"
	"github.com/ntu-dsi-dcn/ntu-dsi-dcn/simqueue"
	"github.com/ntu-dsi-dcn/ntu-dsi-dcn/simtime"
)

type upcall struct {
	payload  []byte
	protocol uint16
	source   frame.MAC
}

func newResolverTestDevice(sched *simclock.Scheduler, addr frame.MAC, onFrame func(payload []byte, protocol uint16, source frame.MAC)) *csma.Device {
	d := csma.New(sched, addr, onFrame)
	d.SetQueue(simqueue.New(8))
	d.SetBackoff(backoff.New(backoff.Params{
		SlotTime: 1 * simtime.Microsecond, MinSlots: 1, MaxSlots: 8, Ceiling: 4, MaxRetries: 3,
	}, rand.New(rand.NewSource(7))))
	return d
}

// testPair holds two devices on a shared channel, each fed into its own
// Resolver so that Resolver.Receive sees what the other side actually put on
// the wire (request/reply round trips included).
type testPair struct {
	sched    *simclock.Scheduler
	ch       *channel.Channel
	devA, devB *csma.Device
	resA, resB *Resolver
	ipA, ipB   IPv4
	upA, upB   []upcall
}

func newTestPair(t *testing.T, config Config) *testPair {
	t.Helper()
	sched := simclock.New()
	ch := channel.New(sched, 10_000_000, 5*simtime.Microsecond, 9600*simtime.Nanosecond)
	tp := &testPair{sched: sched, ch: ch, ipA: IPv4{10, 0, 0, 1}, ipB: IPv4{10, 0, 0, 2}}
	tp.resA = NewResolver(sched, config)
	tp.resB = NewResolver(sched, config)

	tp.devA = newResolverTestDevice(sched, frame.MAC{0, 0, 0, 0, 0, 1}, func(payload []byte, protocol uint16, source frame.MAC) {
		if protocol == Ethertype {
			tp.resA.Receive(payload, tp.devA)
		} else {
			tp.upA = append(tp.upA, upcall{payload, protocol, source})
		}
	})
	tp.devB = newResolverTestDevice(sched, frame.MAC{0, 0, 0, 0, 0, 2}, func(payload []byte, protocol uint16, source frame.MAC) {
		if protocol == Ethertype {
			tp.resB.Receive(payload, tp.devB)
		} else {
			tp.upB = append(tp.upB, upcall{payload, protocol, source})
		}
	})
	tp.resA.Attach(tp.devA, tp.ipA)
	tp.resB.Attach(tp.devB, tp.ipB)
	tp.devA.Attach(ch)
	tp.devB.Attach(ch)
	return tp
}

// TestResolveThenReplyDeliversPending is scenario S4: Resolve returns
// pending on first call, and once B answers the ARP request, A's parked
// frame is transmitted and the entry goes Alive.
func TestResolveThenReplyDeliversPending(t *testing.T) {
	tp := newTestPair(t, DefaultConfig())
	mac, ok := tp.resA.Resolve([]byte("payload"), 0x0800, tp.ipB, tp.devA)
	if ok {
		t.Fatalf("Resolve on empty cache returned ready, want pending; mac=%v", mac)
	}
	if tp.resA.Stats.ArpRequestsSent.Value() != 1 {
		t.Fatalf("ArpRequestsSent = %d, want 1", tp.resA.Stats.ArpRequestsSent.Value())
	}

	tp.sched.RunUntilIdle()

	if len(tp.upB) != 1 || string(tp.upB[0].payload) != "payload" {
		t.Fatalf("B's upper layer saw %d frames, want 1 (A's pending frame)", len(tp.upB))
	}
	if len(tp.upA) != 0 {
		t.Fatalf("A's upper layer received its own pending frame, want 0")
	}

	entry, expired := tp.resA.caches[tp.devA].lookup(tp.ipB, tp.sched.Now())
	if entry == nil || expired || entry.State != Alive {
		t.Fatalf("A's cache entry for B = %+v (expired=%v), want Alive", entry, expired)
	}
	if tp.resB.Stats.ArpRepliesSent.Value() != 1 {
		t.Fatalf("ArpRepliesSent = %d, want 1", tp.resB.Stats.ArpRepliesSent.Value())
	}
	if tp.resA.Stats.ArpRepliesTaken.Value() != 1 {
		t.Fatalf("ArpRepliesTaken = %d, want 1", tp.resA.Stats.ArpRepliesTaken.Value())
	}
}

// TestResolveReplacesPending is scenario S5: a second Resolve before the
// reply arrives replaces the parked frame and is counted as a drop, but
// only one ARP request is ever sent for the still-Incomplete entry.
func TestResolveReplacesPending(t *testing.T) {
	sched := simclock.New()
	resolver := NewResolver(sched, DefaultConfig())
	dev := newResolverTestDevice(sched, frame.MAC{0, 0, 0, 0, 0, 1}, func([]byte, uint16, frame.MAC) {})
	resolver.Attach(dev, IPv4{10, 0, 0, 1})
	// Leave dev unattached to a channel: Resolve still parks state locally
	// even though Send itself will fail with ErrLinkDown.
	dest := IPv4{10, 0, 0, 9}

	resolver.Resolve([]byte("first"), 0x0800, dest, dev)
	resolver.Resolve([]byte("second"), 0x0800, dest, dev)

	if resolver.Stats.ArpRequestsSent.Value() != 1 {
		t.Fatalf("ArpRequestsSent = %d, want 1 (second Resolve must not re-request)", resolver.Stats.ArpRequestsSent.Value())
	}
	if resolver.Stats.DroppedArp.Value() != 1 {
		t.Fatalf("DroppedArp = %d, want 1 (replaced pending frame)", resolver.Stats.DroppedArp.Value())
	}
	entry := resolver.caches[dev].entries[dest]
	if entry.Pending == nil || string(entry.Pending.Payload) != "second" {
		t.Fatalf("entry.Pending = %+v, want the second payload to have replaced the first", entry.Pending)
	}
}

func TestStaleReplyIgnored(t *testing.T) {
	tp := newTestPair(t, DefaultConfig())
	// B replies to a request A never sent.
	msg := Message{Op: OpReply, SenderMAC: tp.devB.Address(), SenderIP: tp.ipB, TargetMAC: tp.devA.Address(), TargetIP: tp.ipA}
	tp.resA.Receive(Encode(msg), tp.devA)

	if tp.resA.Stats.ArpStaleIgnored.Value() != 1 {
		t.Fatalf("ArpStaleIgnored = %d, want 1", tp.resA.Stats.ArpStaleIgnored.Value())
	}
	if _, ok := tp.resA.caches[tp.devA].entries[tp.ipB]; ok {
		t.Fatal("a stale reply must not create a cache entry")
	}
}

func TestRequestForOwnAddressGetsReply(t *testing.T) {
	tp := newTestPair(t, DefaultConfig())
	msg := Message{Op: OpRequest, SenderMAC: tp.devB.Address(), SenderIP: tp.ipB, TargetIP: tp.ipA}
	tp.resA.Receive(Encode(msg), tp.devA)

	if tp.resA.Stats.ArpRepliesSent.Value() != 1 {
		t.Fatalf("ArpRepliesSent = %d, want 1", tp.resA.Stats.ArpRepliesSent.Value())
	}
}

func TestLinkChangeFlushesCache(t *testing.T) {
	sched := simclock.New()
	resolver := NewResolver(sched, DefaultConfig())
	dev := newResolverTestDevice(sched, frame.MAC{0, 0, 0, 0, 0, 1}, func([]byte, uint16, frame.MAC) {})
	resolver.Attach(dev, IPv4{10, 0, 0, 1})
	resolver.Resolve([]byte("parked"), 0x0800, IPv4{10, 0, 0, 9}, dev)

	ch := channel.New(sched, 10_000_000, 5*simtime.Microsecond, 9600*simtime.Nanosecond)
	dev.Attach(ch) // link-change notification should flush the cache built above

	if len(resolver.caches[dev].entries) != 0 {
		t.Fatalf("cache has %d entries after link change, want 0", len(resolver.caches[dev].entries))
	}
	if resolver.Stats.DroppedArp.Value() == 0 {
		t.Fatal("expected the flushed pending frame to be counted as a drop")
	}
}
