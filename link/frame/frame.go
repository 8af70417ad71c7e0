// Copyright 2026 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package frame implements the Ethernet wire format this module's devices
// speak: a 6-byte destination, 6-byte source, 2-byte big-endian length/type
// field, an optional LLC/SNAP header, a payload, and a 4-byte FCS trailer.
// Four encapsulation modes select what the length/type field carries and
// whether an LLC/SNAP header is present, mirroring
// CsmaNetDevice::AddHeader/ProcessHeader in the original source.
package frame

import (
	"encoding/binary"
	"errors"
	"hash/crc32"
)

// Mode selects a device's framing discipline.
type Mode int

const (
	// EthernetV1 carries the total frame length in length_or_type; no
	// protocol demux is possible from the header alone.
	EthernetV1 Mode = iota
	// IpArp carries the upper-layer protocol number in length_or_type.
	IpArp
	// Llc prepends an LLC/SNAP header carrying the protocol number;
	// length_or_type carries the resulting frame length.
	Llc
	// Raw passes the payload through with no framing at all.
	Raw
)

func (m Mode) String() string {
	switch m {
	case EthernetV1:
		return "EthernetV1"
	case IpArp:
		return "IpArp"
	case Llc:
		return "Llc"
	case Raw:
		return "Raw"
	default:
		return "Mode(?)"
	}
}

// MAC is a 48-bit hardware address.
type MAC [6]byte

func (m MAC) String() string {
	const hex = "0123456789abcdef"
	b := make([]byte, 0, 17)
	for i, octet := range m {
		if i > 0 {
			b = append(b, ':')
		}
		b = append(b, hex[octet>>4], hex[octet&0xf])
	}
	return string(b)
}

// Broadcast is the all-ones MAC address.
var Broadcast = MAC{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}

// MulticastBase is the generic IPv4 multicast MAC prefix from RFC 1112.
var MulticastBase = MAC{0x01, 0x00, 0x5e, 0x00, 0x00, 0x00}

// MulticastFor computes the hardware multicast address for an IPv4
// multicast group G = g0.g1.g2.g3, per RFC 1112: 01:00:5e:(g1&0x7f):g2:g3.
func MulticastFor(group [4]byte) MAC {
	return MAC{0x01, 0x00, 0x5e, group[1] & 0x7f, group[2], group[3]}
}

// IsMulticast reports whether dest, with its low 23 bits masked out,
// matches MulticastBase.
func IsMulticast(dest MAC) bool {
	masked := dest
	masked[3] &= 0x80
	masked[4] = 0
	masked[5] = 0
	return masked == MulticastBase
}

const (
	headerSize  = 6 + 6 + 2 // dest + src + length_or_type
	trailerSize = 4         // FCS
	llcSize     = 8         // DSAP + SSAP + control + 3-byte OUI + 2-byte type
)

var (
	// ErrBadFcs is returned by Decode when the trailer's checksum does
	// not match the one recomputed over the frame.
	ErrBadFcs = errors.New("frame: bad fcs")
	// ErrAddressFilter is returned by Decode when the destination MAC is
	// neither broadcast, multicast, nor the expected unicast address.
	ErrAddressFilter = errors.New("frame: destination address filtered")
	// ErrShortLlc is returned by Decode in Llc mode when the frame is
	// too short to contain an LLC/SNAP header.
	ErrShortLlc = errors.New("frame: short llc header")
)

// Decoded is the result of successfully decoding a frame.
type Decoded struct {
	Payload  []byte
	Protocol uint16 // protocol number, or total length for EthernetV1
	Source   MAC
	Dest     MAC
}

// Encode builds the wire bytes for payload addressed from src to dest under
// mode, carrying protocol (ignored in EthernetV1 and Raw modes, where it is
// derived from or absent from the header).
func Encode(payload []byte, dest, src MAC, mode Mode, protocol uint16) []byte {
	if mode == Raw {
		out := make([]byte, len(payload))
		copy(out, payload)
		return out
	}

	body := payload
	if mode == Llc {
		llc := make([]byte, llcSize+len(payload))
		llc[0] = 0xaa // DSAP
		llc[1] = 0xaa // SSAP
		llc[2] = 0x03 // unnumbered information control byte
		// OUI left zero: no vendor-specific protocol ID space in use.
		binary.BigEndian.PutUint16(llc[6:8], protocol)
		copy(llc[llcSize:], payload)
		body = llc
	}

	var lengthOrType uint16
	switch mode {
	case EthernetV1:
		lengthOrType = uint16(len(body) + headerSize + trailerSize)
	case IpArp:
		lengthOrType = protocol
	case Llc:
		lengthOrType = uint16(len(body) + headerSize + trailerSize)
	}

	frameLen := headerSize + len(body)
	out := make([]byte, frameLen, frameLen+trailerSize)
	copy(out[0:6], dest[:])
	copy(out[6:12], src[:])
	binary.BigEndian.PutUint16(out[12:14], lengthOrType)
	copy(out[14:], body)

	fcs := crc32.ChecksumIEEE(out)
	trailer := make([]byte, trailerSize)
	binary.BigEndian.PutUint32(trailer, fcs)
	return append(out, trailer...)
}

// Decode parses wire bytes encoded by Encode under mode, filtering the
// destination against own (the device's unicast address) per §4.A: accepted
// iff dest equals own, equals Broadcast, or is multicast.
//
// Raw frames bypass all of this: they are returned with Protocol=0 and
// Source=Broadcast, matching the receive path's documented behavior for
// unframed payloads.
func Decode(wire []byte, mode Mode, own MAC) (Decoded, error) {
	if mode == Raw {
		payload := make([]byte, len(wire))
		copy(payload, wire)
		return Decoded{Payload: payload, Protocol: 0, Source: Broadcast, Dest: Broadcast}, nil
	}

	if len(wire) < headerSize+trailerSize {
		return Decoded{}, ErrBadFcs
	}
	split := len(wire) - trailerSize
	body := wire[:split]
	trailer := wire[split:]

	want := binary.BigEndian.Uint32(trailer)
	got := crc32.ChecksumIEEE(body)
	if got != want {
		return Decoded{}, ErrBadFcs
	}

	var dest, src MAC
	copy(dest[:], body[0:6])
	copy(src[:], body[6:12])
	lengthOrType := binary.BigEndian.Uint16(body[12:14])
	payload := body[headerSize:]

	if dest != own && dest != Broadcast && !IsMulticast(dest) {
		return Decoded{}, ErrAddressFilter
	}

	var protocol uint16
	switch mode {
	case EthernetV1, IpArp:
		protocol = lengthOrType
	case Llc:
		if len(payload) < llcSize {
			return Decoded{}, ErrShortLlc
		}
		protocol = binary.BigEndian.Uint16(payload[6:8])
		payload = payload[llcSize:]
	}

	out := make([]byte, len(payload))
	copy(out, payload)
	return Decoded{Payload: out, Protocol: protocol, Source: src, Dest: dest}, nil
}
