// Copyright 2026 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package trace provides the observational hooks every other component in
// this module calls into: a rx/drop event log gated behind glog's verbosity
// flag, plus Stats, a small set of tcpip.StatCounter tallies that tests and
// callers can read back without parsing log lines.
package trace

import (
	"github.com/golang/glog"
	"gvisor.dev/gvisor/pkg/tcpip"
)

// Stats tallies the rx/drop events a device, channel, or resolver reports.
// Any field not relevant to a particular component is simply left at zero;
// callers embed a Stats and increment only the counters they emit.
type Stats struct {
	Rx               tcpip.StatCounter
	DroppedBadFcs    tcpip.StatCounter
	DroppedFilter    tcpip.StatCounter
	DroppedDisabled  tcpip.StatCounter
	DroppedBackoff   tcpip.StatCounter
	DroppedArp       tcpip.StatCounter
	Transmitted      tcpip.StatCounter
	ArpRequestsSent  tcpip.StatCounter
	ArpRepliesSent   tcpip.StatCounter
	ArpRepliesTaken  tcpip.StatCounter
	ArpStaleIgnored  tcpip.StatCounter
}

// Rx records that a frame was accepted and forwarded to the upper layer.
func Rx(format string, args ...interface{}) {
	if glog.V(2) {
		glog.Infof("[rx] "+format, args...)
	}
}

// Drop records that a frame or packet was discarded, and why.
func Drop(format string, args ...interface{}) {
	if glog.V(1) {
		glog.Infof("[drop] "+format, args...)
	}
}
