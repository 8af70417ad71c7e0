// Copyright 2026 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package simpacket implements the generic Packet abstraction the CSMA
// device queues outbound frames as: an ordered byte sequence with
// header/trailer push and pop and a process-wide unique id, grounded in
// gvisor.dev/gvisor/pkg/tcpip/buffer's prepend-based view over a byte slice.
package simpacket

import "sync/atomic"

// uidCounter is the process-wide UID allocator the original source keeps as
// a static counter. Threading a *Simulator context through every
// constructor to avoid this package-level variable would mean every leaf
// type (Frame, ArpEntry, Packet) carries a context pointer it never uses for
// anything else; a single atomic counter is the narrower footprint for an
// identity that only needs to be unique, never meaningful.
var uidCounter uint64

// UID is a packet's process-wide unique identity, stable across copies.
type UID uint64

// Packet is an ordered byte sequence that headers and trailers are pushed
// onto the front/back of and popped back off, mirroring
// tcpip/buffer.Prependable's prepend discipline without committing to a
// fixed-capacity backing array.
type Packet struct {
	uid  UID
	data []byte
}

// New returns a Packet wrapping a copy of payload.
func New(payload []byte) *Packet {
	b := make([]byte, len(payload))
	copy(b, payload)
	return &Packet{
		uid:  UID(atomic.AddUint64(&uidCounter, 1)),
		data: b,
	}
}

// UID returns the packet's unique identity, assigned once at construction
// and unaffected by subsequent header/trailer pushes and pops.
func (p *Packet) UID() UID { return p.uid }

// Size returns the current length of the packet's byte sequence.
func (p *Packet) Size() int { return len(p.data) }

// Bytes returns the packet's current byte sequence. Callers that mutate the
// returned slice corrupt the packet; copy it if independent mutation is
// needed.
func (p *Packet) Bytes() []byte { return p.data }

// AddHeader prepends h to the packet.
func (p *Packet) AddHeader(h []byte) {
	b := make([]byte, len(h)+len(p.data))
	copy(b, h)
	copy(b[len(h):], p.data)
	p.data = b
}

// RemoveHeader strips the first n bytes and returns them. It panics if n
// exceeds the packet's size: asking to remove more header than exists is a
// caller bug, not a runtime condition to recover from.
func (p *Packet) RemoveHeader(n int) []byte {
	if n > len(p.data) {
		panic("simpacket: RemoveHeader n exceeds packet size")
	}
	h := make([]byte, n)
	copy(h, p.data[:n])
	p.data = p.data[n:]
	return h
}

// AddTrailer appends t to the packet.
func (p *Packet) AddTrailer(t []byte) {
	p.data = append(p.data, t...)
}

// RemoveTrailer strips the last n bytes and returns them. It panics if n
// exceeds the packet's size.
func (p *Packet) RemoveTrailer(n int) []byte {
	if n > len(p.data) {
		panic("simpacket: RemoveTrailer n exceeds packet size")
	}
	split := len(p.data) - n
	t := make([]byte, n)
	copy(t, p.data[split:])
	p.data = p.data[:split]
	return t
}

// Clone returns a deep copy of p carrying a fresh UID. The copy shares no
// bytes with p, so either can be mutated independently.
func (p *Packet) Clone() *Packet {
	b := make([]byte, len(p.data))
	copy(b, p.data)
	return &Packet{
		uid:  UID(atomic.AddUint64(&uidCounter, 1)),
		data: b,
	}
}
