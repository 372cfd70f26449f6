// SPDX-License-Identifier: GPL-3.0-or-later

package libsock

// Flag is the set of integral types that can back a flag enumeration.
type Flag interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Mask is a combination of flags of the single enumeration F.
//
// The zero value is the empty mask. A Mask only ever holds bits that come
// from values of F, so masks of different enumerations cannot be mixed by
// accident. Use [Mask.Int] to obtain the raw storage value.
type Mask[F Flag] struct {
	value F
}

// MaskOf returns the mask containing all the given flags.
func MaskOf[F Flag](flags ...F) Mask[F] {
	var m Mask[F]
	for _, f := range flags {
		m.value |= f
	}
	return m
}

// Or returns the union of m and f.
func (m Mask[F]) Or(f F) Mask[F] {
	return Mask[F]{value: m.value | f}
}

// OrMask returns the union of m and other.
func (m Mask[F]) OrMask(other Mask[F]) Mask[F] {
	return Mask[F]{value: m.value | other.value}
}

// And returns the intersection of m and f.
func (m Mask[F]) And(f F) Mask[F] {
	return Mask[F]{value: m.value & f}
}

// AndMask returns the intersection of m and other.
func (m Mask[F]) AndMask(other Mask[F]) Mask[F] {
	return Mask[F]{value: m.value & other.value}
}

// Has reports whether every bit of f is set in m.
func (m Mask[F]) Has(f F) bool {
	return m.value&f == f
}

// Equal reports whether m and other have the same storage value.
func (m Mask[F]) Equal(other Mask[F]) bool {
	return m.value == other.value
}

// IsZero reports whether no flag is set.
func (m Mask[F]) IsZero() bool {
	return m.value == 0
}

// Int returns the raw storage value.
func (m Mask[F]) Int() int {
	return int(m.value)
}

// SendFlag is a flag accepted by [*Socket.Send] and [*Socket.SendTo].
type SendFlag int

const (
	SendNone      SendFlag = 0
	SendDontRoute SendFlag = msgDontRoute // bypass routing
	SendOOB       SendFlag = msgOOB       // send out-of-band data
)

// RecvFlag is a flag accepted by [*Socket.Recv] and [*Socket.RecvFrom].
type RecvFlag int

const (
	RecvNone    RecvFlag = 0
	RecvOOB     RecvFlag = msgOOB     // receive out-of-band data
	RecvPeek    RecvFlag = msgPeek    // leave data in the receive queue
	RecvTrunc   RecvFlag = msgTrunc   // return the real datagram length
	RecvWaitAll RecvFlag = msgWaitAll // wait for the full buffer
)

// AddressInfoFlag is a flag of [AddressInfo], used as a resolution hint.
type AddressInfoFlag int

const (
	AddressInfoNone        AddressInfoFlag = 0
	AddressInfoPassive     AddressInfoFlag = aiPassive     // wildcard address when hostname is empty
	AddressInfoCanonName   AddressInfoFlag = aiCanonName   // fill the canonical name
	AddressInfoNumericHost AddressInfoFlag = aiNumericHost // hostname must be an IP literal
	AddressInfoNumericServ AddressInfoFlag = aiNumericServ // service must be a port number
)
