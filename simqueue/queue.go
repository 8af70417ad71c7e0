// Copyright 2026 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package simqueue implements the bounded FIFO the CSMA device parks
// outbound frames in, matching the enqueue/dequeue/is_empty contract ns-3's
// CsmaNetDevice drives its Queue collaborator through.
package simqueue

import "github.com/ntu-dsi-dcn/ntu-dsi-dcn/simpacket"

// Queue is a bounded FIFO of packets awaiting the transmit slot.
type Queue struct {
	limit int
	items []*simpacket.Packet
}

// New returns a Queue that rejects further Enqueue calls once it holds
// limit packets. limit <= 0 means unbounded.
func New(limit int) *Queue {
	return &Queue{limit: limit}
}

// Enqueue appends p to the queue, returning false without modifying the
// queue if it is at capacity.
func (q *Queue) Enqueue(p *simpacket.Packet) bool {
	if q.limit > 0 && len(q.items) >= q.limit {
		return false
	}
	q.items = append(q.items, p)
	return true
}

// Dequeue removes and returns the oldest queued packet, or nil if empty.
func (q *Queue) Dequeue() *simpacket.Packet {
	if len(q.items) == 0 {
		return nil
	}
	p := q.items[0]
	q.items = q.items[1:]
	return p
}

// IsEmpty reports whether the queue holds no packets.
func (q *Queue) IsEmpty() bool { return len(q.items) == 0 }

// Len reports the number of packets currently queued.
func (q *Queue) Len() int { return len(q.items) }

// Drain removes and returns every packet still queued, leaving the queue
// empty. Used by device disposal to hand remaining frames to the drop
// trace.
func (q *Queue) Drain() []*simpacket.Packet {
	items := q.items
	q.items = nil
	return items
}
