// Copyright 2026 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package channel models the shared bus a CSMA device contends for: a
// single transmitter at a time, a fixed data rate and propagation delay,
// and fan-out-to-all-but-the-sender delivery once propagation completes.
// The fan-out-except-sender delivery loop is grounded in
// link/bridge.Endpoint.DeliverNetworkPacketToBridge's "deliver to every
// attached link except the one the frame arrived from" pattern; the
// Idle/Transmitting/Propagating arbitration states themselves have no
// analogue in bridge.go and are ported from CsmaChannel in the original
// source.
package channel

import (
	"github.com/golang/glog"

	"github.com/ntu-dsi-dcn/ntu-dsi-dcn/simclock"
	"github.com/ntu-dsi-dcn/ntu-dsi-dcn/simtime"
	"github.com/ntu-dsi-dcn/ntu-dsi-dcn/trace"
)

// State is the channel's observable arbitration state.
type State int

const (
	Idle State = iota
	Transmitting
	Propagating
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Transmitting:
		return "Transmitting"
	case Propagating:
		return "Propagating"
	default:
		return "State(?)"
	}
}

// DeviceID is the dense integer a device is assigned at Attach.
type DeviceID int

// Receiver is the entry point a channel delivers wire bytes to. CSMA
// devices implement this; it is kept minimal so the channel never needs to
// know anything about framing.
type Receiver interface {
	Receive(wire []byte)
}

type member struct {
	receiver Receiver
	attached bool // false once Detach tombstones the slot
}

// Channel is a shared bus with a fixed DataRate (bits/sec) and
// PropagationDelay, enforcing a single-transmitter invariant across its
// attached devices.
type Channel struct {
	sched            *simclock.Scheduler
	DataRate         uint64 // bits per second
	PropagationDelay simtime.Duration
	InterFrameGap    simtime.Duration

	state     State
	members   []member
	txID      DeviceID
	txFrame   []byte
	hasTx     bool

	Stats trace.Stats
}

// New returns an Idle Channel driven by sched, with the given data rate,
// propagation delay, and inter-frame gap. Attached devices mirror the data
// rate and inter-frame gap as their own transmit parameters.
func New(sched *simclock.Scheduler, dataRate uint64, propagationDelay, interFrameGap simtime.Duration) *Channel {
	return &Channel{
		sched:            sched,
		DataRate:         dataRate,
		PropagationDelay: propagationDelay,
		InterFrameGap:    interFrameGap,
	}
}

// Attach records receiver as a member of the channel and returns its dense
// device id. Device ids are never reused within a Channel's lifetime, even
// after Detach, matching the weak-reference-by-id discipline in §9: the
// channel holds devices by id, not by strong reference.
func (c *Channel) Attach(receiver Receiver) DeviceID {
	id := DeviceID(len(c.members))
	c.members = append(c.members, member{receiver: receiver, attached: true})
	return id
}

// Detach tombstones a device's membership; the id is never reassigned, and
// the channel no longer delivers to it.
func (c *Channel) Detach(id DeviceID) {
	if int(id) < len(c.members) {
		c.members[id].attached = false
	}
}

// State returns the channel's current arbitration state.
func (c *Channel) State() State { return c.state }

// BeginTransmit succeeds, moving the channel to Transmitting, iff the
// channel is currently Idle. Concurrent senders never both succeed: the
// scheduler's single-threaded event loop means only one caller can observe
// Idle before the first transition runs.
func (c *Channel) BeginTransmit(wire []byte, from DeviceID) bool {
	if c.state != Idle {
		return false
	}
	c.state = Transmitting
	c.txID = from
	c.txFrame = wire
	c.hasTx = true
	c.Stats.Transmitted.Increment()
	return true
}

// EndTransmit must be called by the device that most recently succeeded at
// BeginTransmit. It moves the channel to Propagating and schedules delivery
// to every other attached device after PropagationDelay.
func (c *Channel) EndTransmit(from DeviceID) {
	if c.state != Transmitting || from != c.txID {
		panic("channel: EndTransmit by non-transmitter")
	}
	c.state = Propagating
	wire := c.txFrame
	sender := c.txID
	c.sched.Schedule(c.PropagationDelay, func() {
		c.deliver(wire, sender)
	})
}

// deliver pushes wire to every attached device except the sender, then
// returns the channel to Idle.
func (c *Channel) deliver(wire []byte, sender DeviceID) {
	for id := range c.members {
		m := &c.members[id]
		if !m.attached || DeviceID(id) == sender {
			continue
		}
		m.receiver.Receive(wire)
	}
	c.hasTx = false
	c.state = Idle
	glog.V(3).Infof("channel: delivered %d bytes from device %d, now Idle", len(wire), sender)
}

// TransmitTime returns how long it takes to put a frame of the given size
// on the wire at the channel's data rate.
func (c *Channel) TransmitTime(frameBytes int) simtime.Duration {
	bits := uint64(frameBytes) * 8
	// DataRate is bits/sec; simtime.Second is 1e9ns, so ns = bits * 1e9 / rate.
	return simtime.Duration(bits * uint64(simtime.Second) / c.DataRate)
}
