// SPDX-License-Identifier: GPL-3.0-or-later

// Package inethdr encodes and decodes the fixed 20 byte IPv4 header
// (RFC 791).
//
// A [Header] stores five 32-bit words in network byte order. Each field
// is read by converting its word to host order and then masking and
// shifting, so the code never depends on the host byte order. The codec
// does not compute checksums and does not handle options.
package inethdr

import (
	"encoding/binary"
	"errors"
	"net/netip"

	"github.com/bassosimone/libsock"
	"github.com/bassosimone/libsock/endian"
)

// Size is the size of an IPv4 header without options.
const Size = 20

// defaultWord0 is version 4, header length 5 and total length 20.
const defaultWord0 = 0x45000014

// ErrInvalidHeader indicates a buffer that does not start with a valid
// IPv4 header.
var ErrInvalidHeader = errors.New("inethdr: invalid header")

// Header is an IPv4 header without options.
//
// The zero value is an all-zero header; use [New] for a usable default.
// Setters modify the header in place and return it for chaining.
type Header struct {
	words [5]endian.BigEndian[uint32]
}

// New returns a header with version 4, header length 5 and total
// length 20. Every other field is zero.
func New() *Header {
	h := &Header{}
	h.words[0] = endian.FromHost(uint32(defaultWord0))
	return h
}

// Parse decodes the first [Size] bytes of b.
//
// It fails with [ErrInvalidHeader] if b is shorter than [Size] or its
// header length field is less than 5.
func Parse(b []byte) (*Header, error) {
	if len(b) < Size {
		return nil, errors.Join(ErrInvalidHeader, errors.New("IPv4 header must be at least 20 bytes long"))
	}
	h := FromBytesUnchecked(b)
	if h.HeaderLength() < 5 {
		return nil, errors.Join(ErrInvalidHeader, errors.New("IPv4 header length must be at least 5"))
	}
	return h, nil
}

// FromBytesUnchecked decodes b without validation. Longer buffers are
// truncated to [Size] bytes and shorter ones are zero padded.
func FromBytesUnchecked(b []byte) *Header {
	var buf [Size]byte
	copy(buf[:], b)
	h := &Header{}
	for i := range h.words {
		h.words[i] = endian.FromRaw(binary.NativeEndian.Uint32(buf[i*4:]))
	}
	return h
}

// Bytes returns the wire representation of h.
func (h *Header) Bytes() []byte {
	return h.AppendTo(make([]byte, 0, Size))
}

// AppendTo appends the wire representation of h to b.
func (h *Header) AppendTo(b []byte) []byte {
	for _, word := range h.words {
		b = binary.NativeEndian.AppendUint32(b, word.Raw())
	}
	return b
}

// Size returns [Size].
func (h *Header) Size() int {
	return Size
}

// get returns the width bits of word starting at shift.
func (h *Header) get(word int, shift, width uint) uint32 {
	return (h.words[word].Host() >> shift) & (1<<width - 1)
}

// set replaces the width bits of word starting at shift with value.
func (h *Header) set(word int, shift, width uint, value uint32) *Header {
	mask := uint32(1<<width-1) << shift
	host := h.words[word].Host()&^mask | (value<<shift)&mask
	h.words[word] = endian.FromHost(host)
	return h
}

// Version returns the IP version.
func (h *Header) Version() uint8 {
	return uint8(h.get(0, 28, 4))
}

// SetVersion sets the IP version.
func (h *Header) SetVersion(v uint8) *Header {
	return h.set(0, 28, 4, uint32(v))
}

// HeaderLength returns the header length in 32-bit words.
func (h *Header) HeaderLength() uint8 {
	return uint8(h.get(0, 24, 4))
}

// SetHeaderLength sets the header length in 32-bit words.
func (h *Header) SetHeaderLength(v uint8) *Header {
	return h.set(0, 24, 4, uint32(v))
}

// DSCP returns the differentiated services code point.
func (h *Header) DSCP() DSCP {
	return DSCP(h.get(0, 18, 6))
}

// SetDSCP sets the differentiated services code point.
func (h *Header) SetDSCP(v DSCP) *Header {
	return h.set(0, 18, 6, uint32(v))
}

// ECN returns the explicit congestion notification codepoint.
func (h *Header) ECN() ECN {
	return ECN(h.get(0, 16, 2))
}

// SetECN sets the explicit congestion notification codepoint.
func (h *Header) SetECN(v ECN) *Header {
	return h.set(0, 16, 2, uint32(v))
}

// TotalLength returns the length of the whole packet in bytes.
func (h *Header) TotalLength() uint16 {
	return uint16(h.get(0, 0, 16))
}

// SetTotalLength sets the length of the whole packet in bytes.
func (h *Header) SetTotalLength(v uint16) *Header {
	return h.set(0, 0, 16, uint32(v))
}

// Identification returns the fragment identification.
func (h *Header) Identification() uint16 {
	return uint16(h.get(1, 16, 16))
}

// SetIdentification sets the fragment identification.
func (h *Header) SetIdentification(v uint16) *Header {
	return h.set(1, 16, 16, uint32(v))
}

// Flags returns the fragmentation flags.
func (h *Header) Flags() libsock.Mask[Flag] {
	return flagsFromBits(h.get(1, 13, 3))
}

// SetFlags sets the fragmentation flags.
func (h *Header) SetFlags(v libsock.Mask[Flag]) *Header {
	return h.set(1, 13, 3, uint32(v.Int()))
}

// FragmentOffset returns the fragment offset in units of 8 bytes.
func (h *Header) FragmentOffset() uint16 {
	return uint16(h.get(1, 0, 13))
}

// SetFragmentOffset sets the fragment offset in units of 8 bytes.
func (h *Header) SetFragmentOffset(v uint16) *Header {
	return h.set(1, 0, 13, uint32(v))
}

// TTL returns the time to live.
func (h *Header) TTL() uint8 {
	return uint8(h.get(2, 24, 8))
}

// SetTTL sets the time to live.
func (h *Header) SetTTL(v uint8) *Header {
	return h.set(2, 24, 8, uint32(v))
}

// Protocol returns the transport protocol.
func (h *Header) Protocol() libsock.Protocol {
	return libsock.ProtocolFromID(int(h.get(2, 16, 8)))
}

// SetProtocol sets the transport protocol. Only the low 8 bits of the
// protocol number are stored.
func (h *Header) SetProtocol(v libsock.Protocol) *Header {
	return h.set(2, 16, 8, uint32(v.ID()))
}

// Checksum returns the header checksum.
func (h *Header) Checksum() uint16 {
	return uint16(h.get(2, 0, 16))
}

// SetChecksum sets the header checksum, which is never computed by this
// package.
func (h *Header) SetChecksum(v uint16) *Header {
	return h.set(2, 0, 16, uint32(v))
}

// Source returns the source address in host byte order.
func (h *Header) Source() uint32 {
	return h.words[3].Host()
}

// SetSource sets the source address from a host byte order value.
func (h *Header) SetSource(v uint32) *Header {
	h.words[3] = endian.FromHost(v)
	return h
}

// Destination returns the destination address in host byte order.
func (h *Header) Destination() uint32 {
	return h.words[4].Host()
}

// SetDestination sets the destination address from a host byte order value.
func (h *Header) SetDestination(v uint32) *Header {
	h.words[4] = endian.FromHost(v)
	return h
}

// SourceAddr returns the source address.
func (h *Header) SourceAddr() netip.Addr {
	return addrFromHost(h.Source())
}

// SetSourceAddr sets the source address. It has no effect unless addr is
// an IPv4 (or IPv4-mapped) address.
func (h *Header) SetSourceAddr(addr netip.Addr) *Header {
	if v, ok := hostFromAddr(addr); ok {
		h.SetSource(v)
	}
	return h
}

// DestinationAddr returns the destination address.
func (h *Header) DestinationAddr() netip.Addr {
	return addrFromHost(h.Destination())
}

// SetDestinationAddr sets the destination address. It has no effect
// unless addr is an IPv4 (or IPv4-mapped) address.
func (h *Header) SetDestinationAddr(addr netip.Addr) *Header {
	if v, ok := hostFromAddr(addr); ok {
		h.SetDestination(v)
	}
	return h
}

func addrFromHost(v uint32) netip.Addr {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return netip.AddrFrom4(b)
}

func hostFromAddr(addr netip.Addr) (uint32, bool) {
	addr = addr.Unmap()
	if !addr.Is4() {
		return 0, false
	}
	b := addr.As4()
	return binary.BigEndian.Uint32(b[:]), true
}
