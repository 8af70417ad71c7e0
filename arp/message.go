// Copyright 2026 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package arp implements the ARP cache entry lifecycle, per-device cache,
// and resolver described in RFC 826, ported from ArpL3Protocol in the
// original source (original_source/src/internet-node/arp-l3-protocol.cc).
package arp

import (
	"encoding/binary"
	"errors"

	"github.com/ntu-dsi-dcn/ntu-dsi-dcn/link/frame"
)

// Ethertype is the protocol number ARP frames carry on the wire.
const Ethertype uint16 = 0x0806

// IPv4 is a 4-byte IPv4 address. The IPv4 layer itself is out of scope; this
// is the minimal value type the resolver needs to key its cache and fill
// ARP message fields.
type IPv4 [4]byte

func (a IPv4) String() string {
	return string([]byte{
		'0' + a[0]/100, '0' + (a[0]/10)%10, '0' + a[0]%10, '.',
		'0' + a[1]/100, '0' + (a[1]/10)%10, '0' + a[1]%10, '.',
		'0' + a[2]/100, '0' + (a[2]/10)%10, '0' + a[2]%10, '.',
		'0' + a[3]/100, '0' + (a[3]/10)%10, '0' + a[3]%10,
	})
}

// Op is an ARP message's opcode.
type Op uint16

const (
	OpRequest Op = 1
	OpReply   Op = 2
)

// Message is a decoded ARP packet: {op, sender_ip, sender_mac, target_ip,
// target_mac}, per RFC 826.
type Message struct {
	Op        Op
	SenderMAC frame.MAC
	SenderIP  IPv4
	TargetMAC frame.MAC
	TargetIP  IPv4
}

const wireSize = 2 + 2 + 1 + 1 + 2 + 6 + 4 + 6 + 4

const (
	hardwareTypeEthernet = 1
	protocolTypeIPv4     = 0x0800
)

// ErrShort is returned by Decode when the payload is too small to
// hold a full ARP message.
var ErrShort = errors.New("arp: short message")

// Encode serializes m into the Ethernet+IPv4 ARP wire format.
func Encode(m Message) []byte {
	b := make([]byte, wireSize)
	binary.BigEndian.PutUint16(b[0:2], hardwareTypeEthernet)
	binary.BigEndian.PutUint16(b[2:4], protocolTypeIPv4)
	b[4] = 6 // hardware address length
	b[5] = 4 // protocol address length
	binary.BigEndian.PutUint16(b[6:8], uint16(m.Op))
	copy(b[8:14], m.SenderMAC[:])
	copy(b[14:18], m.SenderIP[:])
	copy(b[18:24], m.TargetMAC[:])
	copy(b[24:28], m.TargetIP[:])
	return b
}

// Decode parses an ARP message out of payload.
func Decode(payload []byte) (Message, error) {
	if len(payload) < wireSize {
		return Message{}, ErrShort
	}
	var m Message
	m.Op = Op(binary.BigEndian.Uint16(payload[6:8]))
	copy(m.SenderMAC[:], payload[8:14])
	copy(m.SenderIP[:], payload[14:18])
	copy(m.TargetMAC[:], payload[18:24])
	copy(m.TargetIP[:], payload[24:28])
	return m, nil
}
