// Copyright 2026 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Command csmasim drives a small two-node CSMA scenario end to end: it
// wires two hosts onto a shared channel, has one resolve the other's IPv4
// address over ARP, and sends a payload once resolution completes.
package main

import (
	"flag"
	"math/rand"

	"github.com/golang/glog"

	"github.com/ntu-dsi-dcn/ntu-dsi-dcn/arp"
	"github.com/ntu-dsi-dcn/ntu-dsi-dcn/host"
	"github.com/ntu-dsi-dcn/ntu-dsi-dcn/link/backoff"
	"github.com/ntu-dsi-dcn/ntu-dsi-dcn/link/channel"
	"github.com/ntu-dsi-dcn/ntu-dsi-dcn/link/frame"
	"github.com/ntu-dsi-dcn/ntu-dsi-dcn/simclock"
	"github.com/ntu-dsi-dcn/ntu-dsi-dcn/simqueue"
	"github.com/ntu-dsi-dcn/ntu-dsi-dcn/simtime"
)

type simConfig struct {
	DataRate     uint64
	PayloadBytes uint
}

func newSimConfig(f *flag.FlagSet) *simConfig {
	config := &simConfig{}
	f.Uint64Var(&config.DataRate, "data-rate", 10_000_000,
		"Channel data rate, in bits per second.")
	f.UintVar(&config.PayloadBytes, "payload-bytes", 64,
		"Size of the payload A sends to B, in bytes.")
	return config
}

func main() {
	f := flag.CommandLine
	config := newSimConfig(f)
	flag.Parse()

	sched := simclock.New()
	ch := channel.New(sched, config.DataRate, 5*simtime.Microsecond, 9600*simtime.Nanosecond)

	arpConfig := arp.DefaultConfig()
	ipA := arp.IPv4{10, 0, 0, 1}
	ipB := arp.IPv4{10, 0, 0, 2}

	hostA := host.New(sched, frame.MAC{0, 0, 0, 0, 0, 1}, ipA, arpConfig, func(payload []byte, protocol uint16, source frame.MAC) {
		glog.Infof("A received %d bytes proto=%#x from %s", len(payload), protocol, source)
	})
	hostB := host.New(sched, frame.MAC{0, 0, 0, 0, 0, 2}, ipB, arpConfig, func(payload []byte, protocol uint16, source frame.MAC) {
		glog.Infof("B received %d bytes proto=%#x from %s", len(payload), protocol, source)
	})

	for _, h := range []*host.Host{hostA, hostB} {
		h.Device.SetQueue(simqueue.New(16))
		h.Device.SetBackoff(backoff.New(backoff.Params{
			SlotTime:   512 * simtime.Nanosecond,
			MinSlots:   0,
			MaxSlots:   1023,
			Ceiling:    10,
			MaxRetries: 16,
		}, rand.New(rand.NewSource(1))))
		h.Device.SetEncapsulation(frame.IpArp)
		h.Device.Attach(ch)
	}

	payload := make([]byte, config.PayloadBytes)
	glog.Infof("A sending %d bytes to %s", len(payload), ipB)
	hostA.Send(payload, ipB, 0x0800)

	sched.RunUntilIdle()
	glog.Infof("simulation complete at %s", sched.Now())
}
