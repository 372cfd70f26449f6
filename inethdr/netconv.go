// SPDX-License-Identifier: GPL-3.0-or-later

package inethdr

import (
	"fmt"
	"net"

	"github.com/bassosimone/libsock"
	"golang.org/x/net/ipv4"
)

// ToNet converts h to an [*ipv4.Header], for use with [ipv4.RawConn].
func (h *Header) ToNet() *ipv4.Header {
	src, dst := h.SourceAddr().As4(), h.DestinationAddr().As4()
	return &ipv4.Header{
		Version:  int(h.Version()),
		Len:      int(h.HeaderLength()) * 4,
		TOS:      int(h.DSCP())<<2 | int(h.ECN()),
		TotalLen: int(h.TotalLength()),
		ID:       int(h.Identification()),
		Flags:    netFlags(h.Flags()),
		FragOff:  int(h.FragmentOffset()),
		TTL:      int(h.TTL()),
		Protocol: h.Protocol().ID(),
		Checksum: int(h.Checksum()),
		Src:      net.IP(src[:]),
		Dst:      net.IP(dst[:]),
	}
}

// FromNet converts an [*ipv4.Header] to a [*Header].
//
// Options are dropped and the header length is kept as is. Addresses
// that are not IPv4 fail with [ErrInvalidHeader].
func FromNet(nh *ipv4.Header) (*Header, error) {
	if nh == nil {
		return nil, fmt.Errorf("%w: nil header", ErrInvalidHeader)
	}
	h := New().
		SetVersion(uint8(nh.Version)).
		SetHeaderLength(uint8(nh.Len / 4)).
		SetDSCP(DSCP(nh.TOS >> 2)).
		SetECN(ECN(nh.TOS & 0x3)).
		SetTotalLength(uint16(nh.TotalLen)).
		SetIdentification(uint16(nh.ID)).
		SetFlags(flagsFromNet(nh.Flags)).
		SetFragmentOffset(uint16(nh.FragOff)).
		SetTTL(uint8(nh.TTL)).
		SetProtocol(libsock.ProtocolFromID(nh.Protocol)).
		SetChecksum(uint16(nh.Checksum))
	for _, entry := range []struct {
		ip  net.IP
		set func(uint32) *Header
	}{{nh.Src, h.SetSource}, {nh.Dst, h.SetDestination}} {
		if entry.ip == nil {
			continue
		}
		ip4 := entry.ip.To4()
		if ip4 == nil {
			return nil, fmt.Errorf("%w: %s is not an IPv4 address", ErrInvalidHeader, entry.ip)
		}
		entry.set(uint32(ip4[0])<<24 | uint32(ip4[1])<<16 | uint32(ip4[2])<<8 | uint32(ip4[3]))
	}
	return h, nil
}

// netFlags converts flags to [ipv4.HeaderFlags]. The reserved bit has
// no name in x/net and is kept as the third bit.
func netFlags(flags libsock.Mask[Flag]) ipv4.HeaderFlags {
	var out ipv4.HeaderFlags
	if flags.Has(FlagMoreFragments) {
		out |= ipv4.MoreFragments
	}
	if flags.Has(FlagDontFragment) {
		out |= ipv4.DontFragment
	}
	if flags.Has(FlagReserved) {
		out |= ipv4.HeaderFlags(FlagReserved)
	}
	return out
}

// flagsFromNet converts [ipv4.HeaderFlags] to a flags mask.
func flagsFromNet(flags ipv4.HeaderFlags) libsock.Mask[Flag] {
	var out libsock.Mask[Flag]
	if flags&ipv4.MoreFragments != 0 {
		out = out.Or(FlagMoreFragments)
	}
	if flags&ipv4.DontFragment != 0 {
		out = out.Or(FlagDontFragment)
	}
	if flags&ipv4.HeaderFlags(FlagReserved) != 0 {
		out = out.Or(FlagReserved)
	}
	return out
}
