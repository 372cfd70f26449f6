// SPDX-License-Identifier: GPL-3.0-or-later

package libsock

import (
	"encoding/binary"
	"fmt"
	"net"
	"net/netip"
	"strconv"

	"github.com/bassosimone/libsock/endian"
	"github.com/bassosimone/runtimex"
)

// Native sizes of sockaddr_in and sockaddr_in6, identical on Linux and Windows.
const (
	sockaddrInetSize  = 16
	sockaddrInet6Size = 28
)

// Address is an IPv4 or IPv6 socket address.
//
// The family is fixed at construction and selects the native layout
// returned by [*Address.Native]. An Address is immutable and may be
// shared by multiple goroutines.
type Address struct {
	family   AddressFamily
	ip       netip.Addr
	port     uint16
	flowInfo uint32
	scopeID  uint32
}

// NewAddress returns the [*Address] for the given [netip.AddrPort].
//
// IPv4-mapped IPv6 addresses stay in the inet6 family. A non-numeric IPv6
// zone is resolved to its interface index. An invalid ap fails with
// [ErrInvalidArgument].
func NewAddress(ap netip.AddrPort) (*Address, error) {
	ip := ap.Addr()
	switch {
	case !ip.IsValid():
		return nil, fmt.Errorf("%w: invalid address", ErrInvalidArgument)
	case ip.Is4():
		return &Address{family: FamilyInet, ip: ip, port: ap.Port()}, nil
	default:
		scopeID, err := zoneToScopeID(ip.Zone())
		if err != nil {
			return nil, err
		}
		return &Address{family: FamilyInet6, ip: ip.WithZone(""), port: ap.Port(), scopeID: scopeID}, nil
	}
}

func zoneToScopeID(zone string) (uint32, error) {
	if zone == "" {
		return 0, nil
	}
	if id, err := strconv.ParseUint(zone, 10, 32); err == nil {
		return uint32(id), nil
	}
	ifi, err := net.InterfaceByName(zone)
	if err != nil {
		return 0, fmt.Errorf("%w: unknown zone %q", ErrInvalidArgument, zone)
	}
	return uint32(ifi.Index), nil
}

// ParseAddress parses an "ip:port" or "[ip%zone]:port" string.
func ParseAddress(s string) (*Address, error) {
	ap, err := netip.ParseAddrPort(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	return NewAddress(ap)
}

// MustParseAddress is like [ParseAddress] but panics on failure.
func MustParseAddress(s string) *Address {
	return runtimex.PanicOnError1(ParseAddress(s))
}

// AddressFromNative decodes a native sockaddr_in or sockaddr_in6.
//
// Families other than [FamilyInet] and [FamilyInet6] fail with
// [ErrAddressFamilyNotSupported]. Buffers shorter than the native
// structure fail with [ErrInvalidArgument].
func AddressFromNative(family AddressFamily, b []byte) (*Address, error) {
	switch family {
	case FamilyInet:
		if len(b) < sockaddrInetSize {
			return nil, fmt.Errorf("%w: short sockaddr_in", ErrInvalidArgument)
		}
		return &Address{
			family: family,
			ip:     netip.AddrFrom4([4]byte(b[4:8])),
			port:   endian.NetworkToHost(binary.NativeEndian.Uint16(b[2:4])),
		}, nil

	case FamilyInet6:
		if len(b) < sockaddrInet6Size {
			return nil, fmt.Errorf("%w: short sockaddr_in6", ErrInvalidArgument)
		}
		return &Address{
			family:   family,
			ip:       netip.AddrFrom16([16]byte(b[8:24])),
			port:     endian.NetworkToHost(binary.NativeEndian.Uint16(b[2:4])),
			flowInfo: binary.BigEndian.Uint32(b[4:8]),
			scopeID:  binary.NativeEndian.Uint32(b[24:28]),
		}, nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrAddressFamilyNotSupported, family)
	}
}

// Family returns [FamilyInet] or [FamilyInet6].
func (a *Address) Family() AddressFamily {
	return a.family
}

// Native returns a fresh copy of the native sockaddr_in or sockaddr_in6.
//
// The family field is in host order, the port is in network order.
func (a *Address) Native() []byte {
	b := make([]byte, a.NativeSize())
	binary.NativeEndian.PutUint16(b[0:2], uint16(a.family))
	binary.NativeEndian.PutUint16(b[2:4], endian.HostToNetwork(a.port))
	switch a.family {
	case FamilyInet:
		ip4 := a.ip.As4()
		copy(b[4:8], ip4[:])
	default:
		binary.BigEndian.PutUint32(b[4:8], a.flowInfo)
		ip6 := a.ip.As16()
		copy(b[8:24], ip6[:])
		binary.NativeEndian.PutUint32(b[24:28], a.scopeID)
	}
	return b
}

// NativeSize returns the size of the native structure.
func (a *Address) NativeSize() int {
	if a.family == FamilyInet {
		return sockaddrInetSize
	}
	return sockaddrInet6Size
}

// Addr returns the IP address, with a numeric zone for scoped IPv6.
func (a *Address) Addr() netip.Addr {
	if a.family == FamilyInet6 && a.scopeID != 0 {
		return a.ip.WithZone(strconv.FormatUint(uint64(a.scopeID), 10))
	}
	return a.ip
}

// Port returns the port in host byte order.
func (a *Address) Port() uint16 {
	return a.port
}

// FlowInfo returns the IPv6 flow information (zero for IPv4).
func (a *Address) FlowInfo() uint32 {
	return a.flowInfo
}

// ScopeID returns the IPv6 scope identifier (zero for IPv4).
func (a *Address) ScopeID() uint32 {
	return a.scopeID
}

// AddrPort returns the address as a [netip.AddrPort].
func (a *Address) AddrPort() netip.AddrPort {
	return netip.AddrPortFrom(a.Addr(), a.port)
}

// Equal reports whether a and other denote the same socket address.
func (a *Address) Equal(other *Address) bool {
	if a == nil || other == nil {
		return a == other
	}
	return *a == *other
}

// String returns the "ip:port" or "[ip%scope]:port" form. A nil
// address formats as "<nil>".
func (a *Address) String() string {
	if a == nil {
		return "<nil>"
	}
	return a.AddrPort().String()
}
