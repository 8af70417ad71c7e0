// Copyright 2026 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package host wires one CSMA device to one ARP resolver, the way an IPv4
// layer would: it demuxes inbound frames between the resolver (ARP
// ethertype) and an upper-layer callback, and resolves IP destinations to
// hardware addresses before handing outbound frames to the device. Neither
// the device nor the resolver package knows about this demux; it lives
// here because the IPv4 layer that would normally own it is explicitly out
// of scope.
package host

import (
	"github.com/ntu-dsi-dcn/ntu-dsi-dcn/arp"
	"github.com/ntu-dsi-dcn/ntu-dsi-dcn/link/csma"
	"github.com/ntu-dsi-dcn/ntu-dsi-dcn/link/frame"
	"github.com/ntu-dsi-dcn/ntu-dsi-dcn/simclock"
)

// UpperLayerFunc receives payloads whose protocol is not the ARP ethertype.
type UpperLayerFunc func(payload []byte, protocol uint16, source frame.MAC)

// Host bundles a CSMA device with the ARP resolver that guards its IPv4
// sends.
type Host struct {
	Device   *csma.Device
	Resolver *arp.Resolver
	IP       arp.IPv4

	onUpperLayer UpperLayerFunc
}

// New constructs a Host: a device named address, an ARP resolver configured
// per config, and a demux that routes ARP-ethertype frames to the resolver
// and everything else to onUpperLayer.
func New(sched *simclock.Scheduler, address frame.MAC, ip arp.IPv4, config arp.Config, onUpperLayer UpperLayerFunc) *Host {
	h := &Host{IP: ip, onUpperLayer: onUpperLayer}
	h.Resolver = arp.NewResolver(sched, config)
	h.Device = csma.New(sched, address, func(payload []byte, protocol uint16, source frame.MAC) {
		if protocol == arp.Ethertype {
			h.Resolver.Receive(payload, h.Device)
			return
		}
		if h.onUpperLayer != nil {
			h.onUpperLayer(payload, protocol, source)
		}
	})
	h.Resolver.Attach(h.Device, ip)
	return h
}

// Send resolves destination to a hardware address via ARP, transmitting
// immediately if already known or parking the frame at the resolver
// otherwise. It returns false only if the device itself rejects the frame
// (link down, send disabled, queue full) on an already-resolved send; a
// send that is merely pending ARP resolution returns true, matching
// resolve()'s own Pending outcome, which is not a failure.
func (h *Host) Send(payload []byte, destination arp.IPv4, protocol uint16) bool {
	mac, ready := h.Resolver.Resolve(payload, protocol, destination, h.Device)
	if !ready {
		return true
	}
	return h.Device.Send(payload, mac, protocol)
}
