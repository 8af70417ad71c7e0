// Copyright 2026 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package simclock implements the discrete-event loop that every other
// package in this module treats as an injected collaborator: a monotonic
// now() and a schedule(delay, action) primitive. There is no real-time
// sleeping and no concurrency; RunUntilIdle drains the event heap in
// timestamp order, breaking ties by insertion sequence.
package simclock

import (
	"container/heap"

	"github.com/ntu-dsi-dcn/ntu-dsi-dcn/simtime"
)

// EventID identifies a scheduled action so it can be cancelled before it
// fires. Cancelling an event that already fired, or that was never
// scheduled, is a safe no-op.
type EventID uint64

type event struct {
	at       simtime.Time
	seq      uint64
	id       EventID
	action   func()
	index    int
	cancelled bool
}

type eventHeap []*event

func (h eventHeap) Len() int { return len(h) }
func (h eventHeap) Less(i, j int) bool {
	if h[i].at != h[j].at {
		return h[i].at.Before(h[j].at)
	}
	return h[i].seq < h[j].seq
}
func (h eventHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}
func (h *eventHeap) Push(x interface{}) {
	e := x.(*event)
	e.index = len(*h)
	*h = append(*h, e)
}
func (h *eventHeap) Pop() interface{} {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*h = old[:n-1]
	return e
}

// Scheduler is a single-threaded discrete-event loop. It is not safe for
// concurrent use; the whole point of this package is that nothing else in
// the simulation needs a mutex because only one goroutine ever drives a
// Scheduler.
type Scheduler struct {
	now      simtime.Time
	heap     eventHeap
	byID     map[EventID]*event
	nextID   EventID
	nextSeq  uint64
}

// New returns a Scheduler whose clock starts at simtime.Zero.
func New() *Scheduler {
	return &Scheduler{
		byID: make(map[EventID]*event),
	}
}

// Now returns the scheduler's current simulated time.
func (s *Scheduler) Now() simtime.Time { return s.now }

// Schedule arranges for action to run at Now()+delay, once the scheduler
// reaches that point while draining events. Negative delays are rejected by
// the caller's good sense, not by this method; a negative delay schedules an
// action in the past relative to now, which still runs at the next drain
// since the heap is ordered, not clamped.
func (s *Scheduler) Schedule(delay simtime.Duration, action func()) EventID {
	s.nextID++
	id := s.nextID
	s.nextSeq++
	e := &event{
		at:     s.now.Add(delay),
		seq:    s.nextSeq,
		id:     id,
		action: action,
	}
	heap.Push(&s.heap, e)
	s.byID[id] = e
	return id
}

// Cancel prevents a previously scheduled event from running, if it has not
// already fired.
func (s *Scheduler) Cancel(id EventID) {
	if e, ok := s.byID[id]; ok {
		e.cancelled = true
		delete(s.byID, id)
	}
}

// RunUntilIdle fires every scheduled event, in timestamp order, including
// events newly scheduled by actions that are themselves running, until the
// heap is empty.
func (s *Scheduler) RunUntilIdle() {
	for s.heap.Len() > 0 {
		e := heap.Pop(&s.heap).(*event)
		delete(s.byID, e.id)
		if e.cancelled {
			continue
		}
		s.now = e.at
		e.action()
	}
}

// RunFor advances the clock and fires every event scheduled at or before
// now+d, then stops, leaving later events pending. This is how tests observe
// intermediate simulated states (e.g. "channel is Transmitting at t=0").
func (s *Scheduler) RunFor(d simtime.Duration) {
	deadline := s.now.Add(d)
	for s.heap.Len() > 0 && !s.heap[0].at.After(deadline) {
		e := heap.Pop(&s.heap).(*event)
		delete(s.byID, e.id)
		if e.cancelled {
			continue
		}
		s.now = e.at
		e.action()
	}
	if s.now.Before(deadline) {
		s.now = deadline
	}
}

// Pending reports the number of events still on the heap.
func (s *Scheduler) Pending() int { return s.heap.Len() }
