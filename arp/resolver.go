// Copyright 2026 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package arp

import (
	"github.com/ntu-dsi-dcn/ntu-dsi-dcn/link/csma"
	"github.com/ntu-dsi-dcn/ntu-dsi-dcn/link/frame"
	"github.com/ntu-dsi-dcn/ntu-dsi-dcn/simclock"
	"github.com/ntu-dsi-dcn/ntu-dsi-dcn/trace"
)

// Resolver sits between the IPv4 layer and a set of CSMA devices,
// translating IP destinations into hardware addresses via one ArpCache per
// attached device, per ArpL3Protocol::FindCache/Lookup/Receive in the
// original source.
type Resolver struct {
	sched  *simclock.Scheduler
	config Config

	caches       map[*csma.Device]*Cache
	interfaceIPs map[*csma.Device]IPv4

	Stats trace.Stats
}

// NewResolver returns a Resolver with no attached devices yet.
func NewResolver(sched *simclock.Scheduler, config Config) *Resolver {
	return &Resolver{
		sched:        sched,
		config:       config,
		caches:       make(map[*csma.Device]*Cache),
		interfaceIPs: make(map[*csma.Device]IPv4),
	}
}

// Attach registers device with the resolver under the given interface
// address and wires the device's link-change notifications to flush its
// cache, matching FindCache's device->SetLinkChangeCallback wiring. Device
// attachment to its channel must happen before or after this call; flush
// runs whenever the device reports a link change, including the one Attach
// itself may have just triggered, which is a harmless no-op on an empty
// cache.
func (r *Resolver) Attach(device *csma.Device, interfaceIP IPv4) {
	r.interfaceIPs[device] = interfaceIP
	r.caches[device] = newCache(r.config)
	device.OnLinkChange(func() {
		r.flush(device)
	})
}

func (r *Resolver) flush(device *csma.Device) {
	cache, ok := r.caches[device]
	if !ok {
		return
	}
	for _, p := range cache.flush() {
		trace.Drop("arp: link change flushed pending frame (proto %#x)", p.Protocol)
		r.Stats.DroppedArp.Increment()
	}
}

// Resolve implements §4.G's resolve operation: find or create the cache
// entry for destination on device, returning the resolved hardware address
// and true if one is already known, or parking payload/protocol as the
// entry's pending frame and returning false otherwise.
func (r *Resolver) Resolve(payload []byte, protocol uint16, destination IPv4, device *csma.Device) (frame.MAC, bool) {
	cache := r.caches[device]
	now := r.sched.Now()
	pending := &Pending{Payload: payload, Protocol: protocol}

	entry, expired := cache.lookup(destination, now)
	if entry == nil {
		cache.entries[destination] = &Entry{State: Incomplete, Pending: pending, LastSeen: now}
		r.sendRequest(device, destination)
		return frame.MAC{}, false
	}

	if expired {
		switch entry.State {
		case Dead, Alive:
			entry.State = Incomplete
			entry.Pending = pending
			entry.LastSeen = now
			r.sendRequest(device, destination)
			return frame.MAC{}, false
		case Incomplete:
			trace.Drop("arp: request for %v timed out", destination)
			r.Stats.DroppedArp.Increment()
			entry.State = Dead
			entry.Pending = nil
			entry.LastSeen = now
			return frame.MAC{}, false
		}
	}

	switch entry.State {
	case Alive:
		return entry.MAC, true
	case Dead:
		trace.Drop("arp: destination %v is dead", destination)
		r.Stats.DroppedArp.Increment()
		return frame.MAC{}, false
	default: // Incomplete
		if entry.Pending != nil {
			trace.Drop("arp: replacing pending frame for %v", destination)
			r.Stats.DroppedArp.Increment()
		}
		entry.Pending = pending
		return frame.MAC{}, false
	}
}

// Receive implements §4.G's receive upcall: decode an ARP message and reply
// to matching requests, complete matching replies by transmitting the
// parked pending frame, and silently drop everything else, including
// replies for entries that are not waiting (treated as possible cache
// poisoning per the original source's comment).
func (r *Resolver) Receive(payload []byte, device *csma.Device) {
	msg, err := Decode(payload)
	if err != nil {
		trace.Drop("arp: %v", err)
		return
	}
	myIP := r.interfaceIPs[device]
	cache := r.caches[device]

	switch {
	case msg.Op == OpRequest && msg.TargetIP == myIP:
		r.sendReply(device, msg.SenderIP, msg.SenderMAC)

	case msg.Op == OpReply && msg.TargetIP == myIP && msg.TargetMAC == device.Address():
		entry, ok := cache.entries[msg.SenderIP]
		if !ok || entry.State != Incomplete {
			trace.Drop("arp: reply from %v for non-waiting entry", msg.SenderIP)
			r.Stats.ArpStaleIgnored.Increment()
			return
		}
		pending := entry.Pending
		entry.State = Alive
		entry.MAC = msg.SenderMAC
		entry.Pending = nil
		entry.LastSeen = r.sched.Now()
		r.Stats.ArpRepliesTaken.Increment()
		if pending != nil {
			device.Send(pending.Payload, msg.SenderMAC, pending.Protocol)
		}

	default:
		trace.Drop("arp: message dropped (op=%d)", msg.Op)
	}
}

func (r *Resolver) sendRequest(device *csma.Device, target IPv4) {
	msg := Message{
		Op:        OpRequest,
		SenderMAC: device.Address(),
		SenderIP:  r.interfaceIPs[device],
		TargetIP:  target,
	}
	device.Send(Encode(msg), frame.Broadcast, Ethertype)
	r.Stats.ArpRequestsSent.Increment()
}

func (r *Resolver) sendReply(device *csma.Device, toIP IPv4, toMAC frame.MAC) {
	msg := Message{
		Op:        OpReply,
		SenderMAC: device.Address(),
		SenderIP:  r.interfaceIPs[device],
		TargetMAC: toMAC,
		TargetIP:  toIP,
	}
	device.Send(Encode(msg), toMAC, Ethertype)
	r.Stats.ArpRepliesSent.Increment()
}
