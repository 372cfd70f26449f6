// SPDX-License-Identifier: GPL-3.0-or-later

package libsock

import "strconv"

// AddressFamily is a socket address family (AF_*).
type AddressFamily int

const (
	FamilyUnknown   AddressFamily = -1
	FamilyUnspec    AddressFamily = afUnspec    // unspecified
	FamilyLocal     AddressFamily = afUnix      // local to host (pipes, portals)
	FamilyInet      AddressFamily = afInet      // IPv4
	FamilyInet6     AddressFamily = afInet6     // IPv6
	FamilyIrDA      AddressFamily = afIrDA      // IrDA
	FamilyATM       AddressFamily = afATM       // native ATM services
	FamilyBluetooth AddressFamily = afBluetooth // Bluetooth RFCOMM/L2CAP
)

// String implements [fmt.Stringer].
func (f AddressFamily) String() string {
	switch f {
	case FamilyUnknown:
		return "unknown"
	case FamilyUnspec:
		return "unspec"
	case FamilyLocal:
		return "local"
	case FamilyInet:
		return "inet"
	case FamilyInet6:
		return "inet6"
	case FamilyIrDA:
		return "irda"
	case FamilyATM:
		return "atm"
	case FamilyBluetooth:
		return "bluetooth"
	default:
		return "family(" + strconv.Itoa(int(f)) + ")"
	}
}

// SocketType is a socket type (SOCK_*).
type SocketType int

const (
	TypeUnknown   SocketType = -1
	TypeAny       SocketType = 0             // any type, only meaningful as a hint
	TypeStream    SocketType = sockStream    // reliable stream
	TypeDatagram  SocketType = sockDgram     // unreliable datagram
	TypeRDM       SocketType = sockRDM       // reliable datagram
	TypeSeqPacket SocketType = sockSeqPacket // pseudo-stream datagram
	TypeRaw       SocketType = sockRaw       // raw
)

// IsStream reports whether the type is connection oriented.
func (t SocketType) IsStream() bool {
	return t == TypeStream || t == TypeSeqPacket
}

// String implements [fmt.Stringer].
func (t SocketType) String() string {
	switch t {
	case TypeUnknown:
		return "unknown"
	case TypeAny:
		return "any"
	case TypeStream:
		return "stream"
	case TypeDatagram:
		return "datagram"
	case TypeRDM:
		return "rdm"
	case TypeSeqPacket:
		return "seqpacket"
	case TypeRaw:
		return "raw"
	default:
		return "type(" + strconv.Itoa(int(t)) + ")"
	}
}

// ShutdownDirection selects the half of a connection closed by
// [*Socket.Shutdown]. Values combine as bits.
type ShutdownDirection int

const (
	ShutdownRead  ShutdownDirection = 1 << iota // no more receptions
	ShutdownWrite                               // no more transmissions
	ShutdownBoth  = ShutdownRead | ShutdownWrite
)

// native returns the platform "how" argument of shutdown.
func (d ShutdownDirection) native() int {
	switch {
	case d&ShutdownBoth == ShutdownBoth:
		return shutBoth
	case d&ShutdownRead != 0:
		return shutRead
	case d&ShutdownWrite != 0:
		return shutWrite
	default:
		return shutRead
	}
}

// String implements [fmt.Stringer].
func (d ShutdownDirection) String() string {
	switch d.native() {
	case shutBoth:
		return "both"
	case shutWrite:
		return "write"
	default:
		return "read"
	}
}
