// Copyright 2026 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package frame

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

var (
	macA = MAC{0, 0, 0, 0, 0, 1}
	macB = MAC{0, 0, 0, 0, 0, 2}
)

func TestRoundTrip(t *testing.T) {
	payload := []byte("hello, csma")
	for _, mode := range []Mode{EthernetV1, IpArp, Llc} {
		t.Run(mode.String(), func(t *testing.T) {
			const protocol = 0x0800
			wire := Encode(payload, macB, macA, mode, protocol)
			got, err := Decode(wire, mode, macB)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if diff := cmp.Diff(payload, got.Payload); diff != "" {
				t.Errorf("payload mismatch (-want +got):\n%s", diff)
			}
			if got.Source != macA || got.Dest != macB {
				t.Errorf("src/dest = %s/%s, want %s/%s", got.Source, got.Dest, macA, macB)
			}
			if mode == IpArp || mode == Llc {
				if got.Protocol != protocol {
					t.Errorf("protocol = %#x, want %#x", got.Protocol, protocol)
				}
			}
		})
	}
}

func TestRawPassesThroughUnframed(t *testing.T) {
	payload := []byte("raw bytes")
	wire := Encode(payload, macB, macA, Raw, 0)
	if diff := cmp.Diff(payload, wire); diff != "" {
		t.Errorf("raw encode changed bytes (-want +got):\n%s", diff)
	}
	got, err := Decode(wire, Raw, macB)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Protocol != 0 || got.Source != Broadcast {
		t.Errorf("raw decode = %+v, want protocol=0 source=broadcast", got)
	}
}

func TestBadFcsRejected(t *testing.T) {
	wire := Encode([]byte("x"), macB, macA, IpArp, 0x0806)
	wire[len(wire)-1] ^= 0xff
	if _, err := Decode(wire, IpArp, macB); !errors.Is(err, ErrBadFcs) {
		t.Fatalf("Decode with corrupted fcs: err = %v, want ErrBadFcs", err)
	}
}

func TestAddressFilter(t *testing.T) {
	other := MAC{9, 9, 9, 9, 9, 9}
	wire := Encode([]byte("x"), macB, macA, IpArp, 0x0806)
	if _, err := Decode(wire, IpArp, other); !errors.Is(err, ErrAddressFilter) {
		t.Fatalf("Decode addressed elsewhere: err = %v, want ErrAddressFilter", err)
	}
}

func TestBroadcastAndMulticastAccepted(t *testing.T) {
	for _, dest := range []MAC{Broadcast, MulticastFor([4]byte{224, 1, 2, 3})} {
		wire := Encode([]byte("x"), dest, macA, IpArp, 0x0806)
		if _, err := Decode(wire, IpArp, macB); err != nil {
			t.Errorf("Decode addressed to %s (not macB): err = %v, want nil", dest, err)
		}
	}
}

func TestMulticastMapping(t *testing.T) {
	for _, tc := range []struct {
		group [4]byte
		want  MAC
	}{
		{[4]byte{224, 0, 0, 1}, MAC{0x01, 0x00, 0x5e, 0x00, 0x00, 0x01}},
		{[4]byte{239, 255, 171, 205}, MAC{0x01, 0x00, 0x5e, 0x7f, 0xab, 0xcd}},
	} {
		if got := MulticastFor(tc.group); got != tc.want {
			t.Errorf("MulticastFor(%v) = %s, want %s", tc.group, got, tc.want)
		}
	}
}

func TestIsMulticast(t *testing.T) {
	if !IsMulticast(MAC{0x01, 0x00, 0x5e, 0x7f, 0xab, 0xcd}) {
		t.Error("expected multicast address to be recognized")
	}
	if IsMulticast(macA) {
		t.Error("unicast address misclassified as multicast")
	}
}
