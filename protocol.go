// SPDX-License-Identifier: GPL-3.0-or-later

package libsock

import (
	"fmt"
	"strconv"

	"github.com/bassosimone/runtimex"
)

// Protocol identifies a transport protocol by its IANA number.
//
// A Protocol is immutable. The zero value is the raw (no) protocol; use
// [UnknownProtocol] for the unknown sentinel.
type Protocol struct {
	id int
}

// ProtocolFromID wraps a raw protocol number without validating it.
func ProtocolFromID(id int) Protocol {
	return Protocol{id: id}
}

// ProtocolByName looks up a protocol by its well-known name (e.g., "tcp")
// in the protocol database of the [DefaultPlatform].
//
// Unknown names fail with [ErrUnsupportedProtocol].
func ProtocolByName(name string) (Protocol, error) {
	return protocolByName(DefaultPlatform(), name)
}

func protocolByName(p Platform, name string) (Protocol, error) {
	if name == "" {
		return UnknownProtocol(), fmt.Errorf("%w: empty protocol name", ErrInvalidArgument)
	}
	id, err := p.LookupProtocol(name)
	if err != nil {
		return UnknownProtocol(), fmt.Errorf("%w: %q", ErrUnsupportedProtocol, name)
	}
	return Protocol{id: id}, nil
}

// MustProtocolByName is like [ProtocolByName] but panics on failure.
func MustProtocolByName(name string) Protocol {
	return runtimex.PanicOnError1(ProtocolByName(name))
}

// UnknownProtocol returns the unknown protocol sentinel (id -1).
func UnknownProtocol() Protocol {
	return Protocol{id: -1}
}

// RawProtocol returns the raw (no) protocol (id 0).
func RawProtocol() Protocol {
	return Protocol{id: 0}
}

// ICMPProtocol returns the "icmp" entry of the protocol database.
func ICMPProtocol() Protocol {
	return MustProtocolByName("icmp")
}

// IGMPProtocol returns the "igmp" entry of the protocol database.
func IGMPProtocol() Protocol {
	return MustProtocolByName("igmp")
}

// TCPProtocol returns the "tcp" entry of the protocol database.
func TCPProtocol() Protocol {
	return MustProtocolByName("tcp")
}

// UDPProtocol returns the "udp" entry of the protocol database.
func UDPProtocol() Protocol {
	return MustProtocolByName("udp")
}

// ID returns the protocol number.
func (p Protocol) ID() int {
	return p.id
}

// Int returns the protocol number.
func (p Protocol) Int() int {
	return p.id
}

// IsUnknown reports whether p is the unknown sentinel.
func (p Protocol) IsUnknown() bool {
	return p.id == -1
}

// String implements [fmt.Stringer].
func (p Protocol) String() string {
	switch p.id {
	case -1:
		return "unknown"
	case 0:
		return "raw"
	case ipprotoTCP:
		return "tcp"
	case ipprotoUDP:
		return "udp"
	default:
		return "proto(" + strconv.Itoa(p.id) + ")"
	}
}

// wellKnownProtocols backs the protocol database when the system one is
// missing or incomplete.
var wellKnownProtocols = map[string]int{
	"icmp":      1,
	"igmp":      2,
	"tcp":       6,
	"udp":       17,
	"ipv6-icmp": 58,
}
