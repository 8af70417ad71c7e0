// Copyright 2026 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package csma implements the CSMA network device: queueing, carrier-sense
// transmission with binary exponential backoff, and receive-side address
// filtering. The transmit state machine and receive path are ported
// directly from CsmaNetDevice in the original source
// (original_source/src/devices/csma/csma-net-device.cc); framing is
// delegated to link/frame, backoff to link/backoff, and channel
// arbitration to link/channel.
package csma

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"

	"github.com/ntu-dsi-dcn/ntu-dsi-dcn/link/backoff"
	"github.com/ntu-dsi-dcn/ntu-dsi-dcn/link/channel"
	"github.com/ntu-dsi-dcn/ntu-dsi-dcn/link/frame"
	"github.com/ntu-dsi-dcn/ntu-dsi-dcn/simclock"
	"github.com/ntu-dsi-dcn/ntu-dsi-dcn/simpacket"
	"github.com/ntu-dsi-dcn/ntu-dsi-dcn/simqueue"
	"github.com/ntu-dsi-dcn/ntu-dsi-dcn/simtime"
	"github.com/ntu-dsi-dcn/ntu-dsi-dcn/trace"
)

// State is the device's transmit state machine state.
type State int

const (
	Ready State = iota
	Backoff
	Busy
	Gap
)

func (s State) String() string {
	switch s {
	case Ready:
		return "Ready"
	case Backoff:
		return "Backoff"
	case Busy:
		return "Busy"
	case Gap:
		return "Gap"
	default:
		return "State(?)"
	}
}

// Precondition failures from Send. These never panic: they are the soft,
// recoverable half of the error model described in §9, reported through a
// boolean return with no side effects.
var (
	ErrLinkDown     = errors.New("csma: link not attached")
	ErrSendDisabled = errors.New("csma: send disabled")
	ErrQueueFull    = errors.New("csma: queue full")
)

// ReceiveFunc is the upcall a device delivers decoded frames to: the
// payload, the demuxed protocol number (or frame length in EthernetV1
// mode), and the frame's source address.
type ReceiveFunc func(payload []byte, protocol uint16, source frame.MAC)

// Device is a single CSMA network interface.
type Device struct {
	sched *simclock.Scheduler

	address frame.MAC
	mode    frame.Mode

	queue   *simqueue.Queue
	backoff *backoff.Controller

	ch       *channel.Channel
	id       channel.DeviceID
	attached bool
	dataRate uint64
	ifg      simtime.Duration

	state   State
	current *simpacket.Packet

	sendEnabled    bool
	receiveEnabled bool

	onReceive    ReceiveFunc
	onLinkChange []func()

	Stats trace.Stats
}

// New returns an unattached Device with the given address and receive
// upcall, IpArp encapsulation, and send and receive enabled. Queue and
// backoff must still be installed via
// SetQueue/SetBackoff before Send will accept frames.
func New(sched *simclock.Scheduler, address frame.MAC, onReceive ReceiveFunc) *Device {
	return &Device{
		sched:          sched,
		address:        address,
		mode:           frame.IpArp,
		state:          Ready,
		sendEnabled:    true,
		receiveEnabled: true,
		onReceive:      onReceive,
	}
}

// Address returns the device's hardware address.
func (d *Device) Address() frame.MAC { return d.address }

// State returns the transmit FSM's current state.
func (d *Device) State() State { return d.state }

// SetQueue installs the outbound frame queue. Required before Send.
func (d *Device) SetQueue(q *simqueue.Queue) { d.queue = q }

// SetBackoff installs the backoff controller.
func (d *Device) SetBackoff(b *backoff.Controller) { d.backoff = b }

// SetEncapsulation selects the framing mode.
func (d *Device) SetEncapsulation(mode frame.Mode) { d.mode = mode }

// Encapsulation returns the device's framing mode.
func (d *Device) Encapsulation() frame.Mode { return d.mode }

// SetSendEnabled toggles whether Send accepts new frames.
func (d *Device) SetSendEnabled(enabled bool) { d.sendEnabled = enabled }

// SetReceiveEnabled toggles whether Receive accepts incoming frames.
func (d *Device) SetReceiveEnabled(enabled bool) { d.receiveEnabled = enabled }

// OnLinkChange registers a callback invoked whenever the device attaches to
// or is disposed from a channel. The ARP layer uses this to flush its
// per-device cache.
func (d *Device) OnLinkChange(f func()) {
	d.onLinkChange = append(d.onLinkChange, f)
}

// Attach binds the device to ch, mirroring its data rate and inter-frame
// gap, and marks the link up.
func (d *Device) Attach(ch *channel.Channel) {
	d.ch = ch
	d.id = ch.Attach(d)
	d.attached = true
	d.dataRate = ch.DataRate
	d.ifg = ch.InterFrameGap
	for _, f := range d.onLinkChange {
		f()
	}
}

// Dispose releases the device's channel reference, drains its queue, and
// reports every drained frame through the drop trace. Any scheduled event
// that later targets this device becomes a no-op because transmitStart and
// friends re-check d.attached on entry. The returned error aggregates one
// entry per dropped frame, via multierr, so a caller can inspect exactly
// what was lost rather than just how much.
func (d *Device) Dispose() error {
	var errs error
	if d.ch != nil {
		d.ch.Detach(d.id)
	}
	d.attached = false
	if d.current != nil {
		trace.Drop("csma: device %s disposed with frame %d in flight", d.address, d.current.UID())
		d.Stats.DroppedDisabled.Increment()
		errs = multierr.Append(errs, fmt.Errorf("csma: frame %d dropped on dispose", d.current.UID()))
		d.current = nil
	}
	if d.queue != nil {
		for _, p := range d.queue.Drain() {
			trace.Drop("csma: device %s disposed with queued frame %d", d.address, p.UID())
			d.Stats.DroppedDisabled.Increment()
			errs = multierr.Append(errs, fmt.Errorf("csma: frame %d dropped on dispose", p.UID()))
		}
	}
	for _, f := range d.onLinkChange {
		f()
	}
	return errs
}

// Send encodes payload as a frame addressed to dest under the device's
// current encapsulation mode and enqueues it. It returns false, with no
// side effects, if the device is not attached or send is disabled; it
// returns false if the queue is full. Otherwise it returns true, and if the
// FSM is Ready it dequeues immediately and begins transmission.
//
// Send's boolean return is the whole of what fails upward per §7: nothing
// about a rejected send is itself an error condition the caller must
// handle beyond retrying or giving up. trySend keeps the three precondition
// failures as distinct sentinel errors internally so tests and trace
// messages can tell them apart.
func (d *Device) Send(payload []byte, dest frame.MAC, protocol uint16) bool {
	return d.trySend(payload, dest, protocol) == nil
}

func (d *Device) trySend(payload []byte, dest frame.MAC, protocol uint16) error {
	if !d.attached {
		return ErrLinkDown
	}
	if !d.sendEnabled {
		return ErrSendDisabled
	}

	wire := frame.Encode(payload, dest, d.address, d.mode, protocol)
	p := simpacket.New(wire)
	if !d.queue.Enqueue(p) {
		return ErrQueueFull
	}

	if d.state == Ready {
		d.current = d.queue.Dequeue()
		d.transmitStart()
	}
	return nil
}

// transmitStart implements the Ready/Backoff --transmit_start--> branch of
// the transmit FSM in §4.D.
func (d *Device) transmitStart() {
	if !d.attached {
		return
	}
	if d.state != Ready && d.state != Backoff {
		panic(fmt.Sprintf("csma: transmitStart in state %s", d.state))
	}

	if d.ch.State() != channel.Idle || !d.ch.BeginTransmit(d.current.Bytes(), d.id) {
		d.state = Backoff
		if d.backoff.Exhausted() {
			d.dropCurrentAndAdvance()
			return
		}
		d.backoff.RecordAttempt()
		d.sched.Schedule(d.backoff.NextDelay(), d.transmitStart)
		return
	}

	txTime := d.transmitTime(d.current.Size())
	d.sched.Schedule(txTime, d.transmitComplete)
	d.backoff.Reset()
	d.state = Busy
}

// transmitTime is how long it takes to put a frame of the given size on the
// wire, at the data rate this device copied from its channel at Attach.
func (d *Device) transmitTime(frameBytes int) simtime.Duration {
	bits := uint64(frameBytes) * 8
	return simtime.Duration(bits * uint64(simtime.Second) / d.dataRate)
}

// dropCurrentAndAdvance implements the backoff-exhaustion drop policy in
// §4.D: report current to the drop trace, reset backoff, and try the next
// queued frame (if any) from Ready.
func (d *Device) dropCurrentAndAdvance() {
	trace.Drop("csma: device %s backoff exhausted, dropping frame %d", d.address, d.current.UID())
	d.Stats.DroppedBackoff.Increment()
	d.current = nil
	d.backoff.Reset()
	d.state = Ready
	if !d.queue.IsEmpty() {
		d.current = d.queue.Dequeue()
		d.transmitStart()
	}
}

// transmitComplete implements the Busy --transmit_complete--> branch.
func (d *Device) transmitComplete() {
	if !d.attached {
		return
	}
	if d.state != Busy || d.ch.State() != channel.Transmitting {
		panic(fmt.Sprintf("csma: transmitComplete in state %s, channel %s", d.state, d.ch.State()))
	}
	d.ch.EndTransmit(d.id)
	d.state = Gap
	d.sched.Schedule(d.ifg, d.transmitReady)
}

// transmitReady implements the Gap --transmit_ready--> branch.
func (d *Device) transmitReady() {
	if !d.attached {
		return
	}
	if d.state != Gap {
		panic(fmt.Sprintf("csma: transmitReady in state %s", d.state))
	}
	d.current = nil
	if d.queue.IsEmpty() {
		d.state = Ready
		return
	}
	d.current = d.queue.Dequeue()
	d.state = Ready
	d.transmitStart()
}

// Receive implements the channel.Receiver entry point and §4.D's receive
// path: disabled devices drop the frame to the drop trace, Raw frames bypass framing
// entirely, and framed modes decode, filter, and demux before forwarding
// up.
func (d *Device) Receive(wire []byte) {
	if !d.receiveEnabled {
		trace.Drop("csma: device %s receive disabled", d.address)
		d.Stats.DroppedDisabled.Increment()
		return
	}

	if d.mode == frame.Raw {
		trace.Rx("csma: device %s raw receive, %d bytes", d.address, len(wire))
		d.Stats.Rx.Increment()
		d.onReceive(wire, 0, frame.Broadcast)
		return
	}

	decoded, err := frame.Decode(wire, d.mode, d.address)
	if err != nil {
		switch {
		case errors.Is(err, frame.ErrBadFcs):
			trace.Drop("csma: device %s bad fcs", d.address)
			d.Stats.DroppedBadFcs.Increment()
		default:
			trace.Drop("csma: device %s filtered: %v", d.address, err)
			d.Stats.DroppedFilter.Increment()
		}
		return
	}

	trace.Rx("csma: device %s rx %d bytes proto=%#x from %s", d.address, len(decoded.Payload), decoded.Protocol, decoded.Source)
	d.Stats.Rx.Increment()
	d.onReceive(decoded.Payload, decoded.Protocol, decoded.Source)
}
