// SPDX-License-Identifier: GPL-3.0-or-later

package libsock

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"net/netip"
	"slices"
	"strconv"
	"strings"

	"github.com/miekg/dns"
)

// Resolver abstracts the [*net.Resolver] behavior.
//
// By making [Resolve] depend on an abstract implementation we allow for
// unit testing and for using alternative resolvers.
type Resolver interface {
	LookupCNAME(ctx context.Context, host string) (string, error)
	LookupNetIP(ctx context.Context, network, host string) ([]netip.Addr, error)
	LookupPort(ctx context.Context, network, service string) (int, error)
}

// AddressInfo is a resolution hint or a resolution result.
//
// As a hint, the zero value of each field means "any". As a result, every
// field but CanonicalName is set.
type AddressInfo struct {
	// Flags contains the [AddressInfoFlag] values.
	Flags Mask[AddressInfoFlag]

	// Family is the address family.
	Family AddressFamily

	// SocketType is the socket type.
	SocketType SocketType

	// Protocol is the protocol.
	Protocol Protocol

	// CanonicalName is the canonical name of the host, only set in the
	// first result when [AddressInfoCanonName] is among the hint flags.
	CanonicalName string

	// Address is the resolved address, nil in hints.
	Address *Address
}

// NewHints returns hints for [Resolve].
func NewHints(family AddressFamily, stype SocketType, protocol Protocol, flags ...AddressInfoFlag) AddressInfo {
	return AddressInfo{
		Flags:      MaskOf(flags...),
		Family:     family,
		SocketType: stype,
		Protocol:   protocol,
	}
}

// AddressInfoList is the ordered, non-empty list of entries produced by
// [Resolve], in the order returned by the resolver.
type AddressInfoList struct {
	entries []AddressInfo
}

// Len returns the number of entries.
func (l *AddressInfoList) Len() int {
	return len(l.entries)
}

// At returns the i-th entry. It panics if i is out of range.
func (l *AddressInfoList) At(i int) AddressInfo {
	return l.entries[i]
}

// First returns the first entry.
func (l *AddressInfoList) First() AddressInfo {
	return l.entries[0]
}

// All returns an iterator over the entries. The iterator may be used
// more than once.
func (l *AddressInfoList) All() iter.Seq2[int, AddressInfo] {
	return slices.All(l.entries)
}

var (
	errNoHostOrService      = errors.New("neither hostname nor service provided")
	errSocketTypeNotSupport = errors.New("socket type not supported")
	errServiceNotNumeric    = errors.New("service is not a port number")
	errHostNotNumeric       = errors.New("hostname is not an IP address")
	errNoAddress            = errors.New("no address matches the hints")
)

// Resolve resolves hostname and service into a list of candidates.
//
// An empty hostname means the loopback address, or the wildcard address
// when hints has [AddressInfoPassive]. An empty service means port zero.
// The hints filter the family, socket type and protocol of the results.
// With [AddressInfoNumericHost] and [AddressInfoNumericServ] the hostname
// and the service must be numeric and no lookup happens.
//
// Failures are [*ResolveError] values, which wrap [ErrResolution].
func Resolve(ctx context.Context, cfg *Config, hostname, service string, hints AddressInfo) (*AddressInfoList, error) {
	entries, err := resolve(ctx, cfg.Resolver, hostname, service, hints)
	if err != nil {
		return nil, &ResolveError{Hostname: hostname, Service: service, Err: err}
	}
	return &AddressInfoList{entries: entries}, nil
}

// ResolveFirst is like [Resolve] but only returns the first candidate.
func ResolveFirst(ctx context.Context, cfg *Config, hostname, service string, hints AddressInfo) (AddressInfo, error) {
	list, err := Resolve(ctx, cfg, hostname, service, hints)
	if err != nil {
		return AddressInfo{}, err
	}
	return list.First(), nil
}

// socketKind is a socket type with the protocol and port to use for it.
type socketKind struct {
	stype    SocketType
	protocol Protocol
	port     uint16
}

func resolve(ctx context.Context, reso Resolver, hostname, service string, hints AddressInfo) ([]AddressInfo, error) {
	if hostname == "" && service == "" {
		return nil, errNoHostOrService
	}

	switch hints.Family {
	case FamilyUnknown, FamilyUnspec, FamilyInet, FamilyInet6:
	default:
		return nil, fmt.Errorf("%w: %s", ErrAddressFamilyNotSupported, hints.Family)
	}

	kinds, err := resolveKinds(ctx, reso, service, hints)
	if err != nil {
		return nil, err
	}

	addrs, err := resolveHost(ctx, reso, hostname, hints)
	if err != nil {
		return nil, err
	}

	var entries []AddressInfo
	for _, ip := range addrs {
		for _, kind := range kinds {
			addr, err := NewAddress(netip.AddrPortFrom(ip, kind.port))
			if err != nil {
				return nil, err
			}
			entries = append(entries, AddressInfo{
				Flags:      hints.Flags,
				Family:     addr.Family(),
				SocketType: kind.stype,
				Protocol:   kind.protocol,
				Address:    addr,
			})
		}
	}
	if len(entries) <= 0 {
		return nil, errNoAddress
	}

	if hints.Flags.Has(AddressInfoCanonName) && hostname != "" {
		entries[0].CanonicalName = canonicalName(ctx, reso, hostname, addrs[0])
	}
	return entries, nil
}

// resolveKinds returns the socket types matching hints, each with its
// protocol and port.
func resolveKinds(ctx context.Context, reso Resolver, service string, hints AddressInfo) ([]socketKind, error) {
	var candidates []SocketType
	switch hints.SocketType {
	case TypeAny, TypeUnknown:
		candidates = []SocketType{TypeStream, TypeDatagram}
		if service == "" {
			candidates = append(candidates, TypeRaw)
		}
	case TypeStream, TypeDatagram, TypeRaw:
		candidates = []SocketType{hints.SocketType}
	default:
		return nil, fmt.Errorf("%w: %s", errSocketTypeNotSupport, hints.SocketType)
	}

	wanted := max(hints.Protocol.ID(), 0)
	var kinds []socketKind
	for _, stype := range candidates {
		var protocol int
		switch stype {
		case TypeStream:
			protocol = ipprotoTCP
		case TypeDatagram:
			protocol = ipprotoUDP
		default:
			if service != "" {
				return nil, fmt.Errorf("%w: %s sockets have no services", errSocketTypeNotSupport, stype)
			}
			protocol = wanted
		}
		if wanted != 0 && wanted != protocol {
			continue
		}
		port, err := resolveService(ctx, reso, service, stype, hints.Flags)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, socketKind{stype: stype, protocol: ProtocolFromID(protocol), port: port})
	}
	if len(kinds) <= 0 {
		return nil, fmt.Errorf("%w: %s with protocol %s", errSocketTypeNotSupport, hints.SocketType, hints.Protocol)
	}
	return kinds, nil
}

// resolveService returns the port of service for the given socket type.
func resolveService(ctx context.Context, reso Resolver, service string, stype SocketType, flags Mask[AddressInfoFlag]) (uint16, error) {
	if service == "" {
		return 0, nil
	}
	if port, err := strconv.ParseUint(service, 10, 16); err == nil {
		return uint16(port), nil
	}
	if flags.Has(AddressInfoNumericServ) {
		return 0, fmt.Errorf("%w: %q", errServiceNotNumeric, service)
	}
	network := "tcp"
	if stype == TypeDatagram {
		network = "udp"
	}
	port, err := reso.LookupPort(ctx, network, service)
	if err != nil {
		return 0, err
	}
	return uint16(port), nil
}

// resolveHost returns the IP addresses of hostname matching the family
// of hints, without duplicates.
func resolveHost(ctx context.Context, reso Resolver, hostname string, hints AddressInfo) ([]netip.Addr, error) {
	if hostname == "" {
		return defaultAddrs(hints), nil
	}

	if ip, err := netip.ParseAddr(hostname); err == nil {
		if !familyMatches(hints.Family, ip) {
			return nil, fmt.Errorf("%w: %s", errNoAddress, hostname)
		}
		return []netip.Addr{ip}, nil
	}

	if hints.Flags.Has(AddressInfoNumericHost) {
		return nil, fmt.Errorf("%w: %q", errHostNotNumeric, hostname)
	}
	if _, ok := dns.IsDomainName(hostname); !ok {
		return nil, fmt.Errorf("%w: invalid hostname %q", ErrInvalidArgument, hostname)
	}

	network := "ip"
	switch hints.Family {
	case FamilyInet:
		network = "ip4"
	case FamilyInet6:
		network = "ip6"
	}
	found, err := reso.LookupNetIP(ctx, network, hostname)
	if err != nil {
		return nil, err
	}

	var addrs []netip.Addr
	for _, ip := range found {
		if hints.Family != FamilyInet6 {
			ip = ip.Unmap()
		}
		if familyMatches(hints.Family, ip) && !slices.Contains(addrs, ip) {
			addrs = append(addrs, ip)
		}
	}
	if len(addrs) <= 0 {
		return nil, fmt.Errorf("%w: %s", errNoAddress, hostname)
	}
	return addrs, nil
}

// defaultAddrs returns the loopback or wildcard addresses used when the
// hostname is empty.
func defaultAddrs(hints AddressInfo) []netip.Addr {
	v4, v6 := netip.AddrFrom4([4]byte{127, 0, 0, 1}), netip.IPv6Loopback()
	if hints.Flags.Has(AddressInfoPassive) {
		v4, v6 = netip.IPv4Unspecified(), netip.IPv6Unspecified()
	}
	switch hints.Family {
	case FamilyInet:
		return []netip.Addr{v4}
	case FamilyInet6:
		return []netip.Addr{v6}
	default:
		return []netip.Addr{v6, v4}
	}
}

func familyMatches(family AddressFamily, ip netip.Addr) bool {
	switch family {
	case FamilyInet:
		return ip.Is4()
	case FamilyInet6:
		return ip.Is6()
	default:
		return true
	}
}

// canonicalName returns the canonical name of hostname, falling back to
// hostname itself when the lookup fails or hostname is an IP address.
func canonicalName(ctx context.Context, reso Resolver, hostname string, first netip.Addr) string {
	if ip, err := netip.ParseAddr(hostname); err == nil && ip == first {
		return hostname
	}
	cname, err := reso.LookupCNAME(ctx, hostname)
	if err != nil || cname == "" {
		return hostname
	}
	return strings.TrimSuffix(cname, ".")
}
