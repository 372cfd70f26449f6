// SPDX-License-Identifier: GPL-3.0-or-later

// Package endian converts integers between host and network (big-endian)
// byte order.
//
// The host byte order is detected at runtime rather than assumed from the
// build target, so the same code behaves correctly on little-endian and
// big-endian hosts.
package endian

import (
	"errors"
	"slices"
	"unsafe"
)

// Integer is the set of integer types of width 1, 2, 4 or 8 bytes.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// ErrUnsupportedSize indicates a value whose width is not 1, 2, 4 or 8 bytes.
var ErrUnsupportedSize = errors.New("endian: unsupported size")

// hostIsLittle caches the result of [detectLittleEndian].
var hostIsLittle = detectLittleEndian()

// detectLittleEndian inspects the first byte of 0x12345678 in memory.
func detectLittleEndian() bool {
	probe := uint32(0x12345678)
	return *(*byte)(unsafe.Pointer(&probe)) == 0x78
}

// IsLittleEndianHost reports whether the host stores the least significant
// byte of an integer first.
func IsLittleEndianHost() bool {
	return hostIsLittle
}

// Swap reverses the byte order of v.
//
// The swap is done with shifts and masks on the unsigned integer of the
// same width as T.
func Swap[T Integer](v T) T {
	switch unsafe.Sizeof(v) {
	case 1:
		return v
	case 2:
		u := uint16(v)
		return T(u<<8 | u>>8)
	case 4:
		u := uint32(v)
		return T(u<<24 | (u<<8)&0x00ff0000 | (u>>8)&0x0000ff00 | u>>24)
	case 8:
		u := uint64(v)
		return T(u<<56 |
			(u<<40)&0x00ff000000000000 |
			(u<<24)&0x0000ff0000000000 |
			(u<<8)&0x000000ff00000000 |
			(u>>8)&0x00000000ff000000 |
			(u>>24)&0x0000000000ff0000 |
			(u>>40)&0x000000000000ff00 |
			u>>56)
	default:
		// unreachable: every type in Integer has a supported width
		panic(ErrUnsupportedSize)
	}
}

// HostToNetwork converts v from host to network byte order.
func HostToNetwork[T Integer](v T) T {
	if hostIsLittle {
		return Swap(v)
	}
	return v
}

// NetworkToHost converts v from network to host byte order.
func NetworkToHost[T Integer](v T) T {
	// byte swapping is an involution
	return HostToNetwork(v)
}

// SwapBytes reverses in place a buffer holding a single integer.
//
// The buffer length must be 1, 2, 4 or 8, otherwise this function
// returns [ErrUnsupportedSize] and leaves the buffer untouched.
func SwapBytes(b []byte) error {
	switch len(b) {
	case 1, 2, 4, 8:
		slices.Reverse(b)
		return nil
	default:
		return ErrUnsupportedSize
	}
}

// BigEndian stores an integer in network byte order.
//
// The zero value stores zero. Every method returns a new value and
// never modifies the stored representation.
type BigEndian[T Integer] struct {
	raw T
}

// FromHost returns the big-endian representation of the host value v.
func FromHost[T Integer](v T) BigEndian[T] {
	return BigEndian[T]{raw: HostToNetwork(v)}
}

// FromRaw wraps a value that is already in network byte order, for
// example one read from a packet with [encoding/binary.NativeEndian].
func FromRaw[T Integer](raw T) BigEndian[T] {
	return BigEndian[T]{raw: raw}
}

// Raw returns the stored value, whose in-memory bytes are big-endian.
func (b BigEndian[T]) Raw() T {
	return b.raw
}

// AsBigEndian is an alias for [BigEndian.Raw].
func (b BigEndian[T]) AsBigEndian() T {
	return b.raw
}

// AsLittleEndian returns the value whose in-memory bytes are little-endian.
func (b BigEndian[T]) AsLittleEndian() T {
	return Swap(b.raw)
}

// AsHostEndian returns the value in host byte order.
func (b BigEndian[T]) AsHostEndian() T {
	return NetworkToHost(b.raw)
}

// Host is an alias for [BigEndian.AsHostEndian].
func (b BigEndian[T]) Host() T {
	return b.AsHostEndian()
}
