// SPDX-License-Identifier: GPL-3.0-or-later

package inethdr

import (
	"strconv"

	"github.com/bassosimone/libsock"
)

// DSCP is a Differentiated Services Code Point (RFC 2474, RFC 4594).
type DSCP uint8

const (
	DSCPCS0  DSCP = 0b000_000 // standard
	DSCPCS1  DSCP = 0b001_000 // low-priority data
	DSCPCS2  DSCP = 0b010_000 // OAM
	DSCPCS3  DSCP = 0b011_000 // broadcast video
	DSCPCS4  DSCP = 0b100_000 // real-time interactive
	DSCPCS5  DSCP = 0b101_000 // signaling
	DSCPCS6  DSCP = 0b110_000 // network control
	DSCPEF   DSCP = 0b101_110 // telephony
	DSCPAF11 DSCP = 0b001_010 // high-throughput data, low drop probability
	DSCPAF12 DSCP = 0b001_100 // high-throughput data, medium drop probability
	DSCPAF13 DSCP = 0b001_110 // high-throughput data, high drop probability
	DSCPAF21 DSCP = 0b010_010 // low-latency data, low drop probability
	DSCPAF22 DSCP = 0b010_100 // low-latency data, medium drop probability
	DSCPAF23 DSCP = 0b010_110 // low-latency data, high drop probability
	DSCPAF31 DSCP = 0b011_010 // multimedia streaming, low drop probability
	DSCPAF32 DSCP = 0b011_100 // multimedia streaming, medium drop probability
	DSCPAF33 DSCP = 0b011_110 // multimedia streaming, high drop probability
	DSCPAF41 DSCP = 0b100_010 // multimedia conferencing, low drop probability
	DSCPAF42 DSCP = 0b100_100 // multimedia conferencing, medium drop probability
	DSCPAF43 DSCP = 0b100_110 // multimedia conferencing, high drop probability
)

var dscpNames = map[DSCP]string{
	DSCPCS0: "cs0", DSCPCS1: "cs1", DSCPCS2: "cs2", DSCPCS3: "cs3",
	DSCPCS4: "cs4", DSCPCS5: "cs5", DSCPCS6: "cs6", DSCPEF: "ef",
	DSCPAF11: "af11", DSCPAF12: "af12", DSCPAF13: "af13",
	DSCPAF21: "af21", DSCPAF22: "af22", DSCPAF23: "af23",
	DSCPAF31: "af31", DSCPAF32: "af32", DSCPAF33: "af33",
	DSCPAF41: "af41", DSCPAF42: "af42", DSCPAF43: "af43",
}

// String implements [fmt.Stringer].
func (d DSCP) String() string {
	if name, found := dscpNames[d]; found {
		return name
	}
	return "dscp(" + strconv.Itoa(int(d)) + ")"
}

// ECN is an Explicit Congestion Notification codepoint (RFC 3168).
type ECN uint8

const (
	ECNDisabled ECN = 0 // not ECN-capable transport
	ECNECT1     ECN = 1 // ECN-capable transport, ECT(1)
	ECNECT0     ECN = 2 // ECN-capable transport, ECT(0)
	ECNCE       ECN = 3 // congestion experienced
)

// String implements [fmt.Stringer].
func (e ECN) String() string {
	switch e {
	case ECNDisabled:
		return "disabled"
	case ECNECT1:
		return "ect1"
	case ECNECT0:
		return "ect0"
	case ECNCE:
		return "ce"
	default:
		return "ecn(" + strconv.Itoa(int(e)) + ")"
	}
}

// Flag is one of the three fragmentation flag bits.
type Flag int

const (
	FlagNone          Flag = 0
	FlagMoreFragments Flag = 1 << 0
	FlagDontFragment  Flag = 1 << 1
	FlagReserved      Flag = 1 << 2 // must be zero (RFC 791)
)

// flagBits lists the fragmentation flags in bit order.
var flagBits = [...]Flag{FlagMoreFragments, FlagDontFragment, FlagReserved}

// flagsFromBits returns the mask of the flags whose bit is set in bits.
// Bits above [FlagReserved] are ignored.
func flagsFromBits(bits uint32) libsock.Mask[Flag] {
	var m libsock.Mask[Flag]
	for _, f := range flagBits {
		if bits&uint32(f) != 0 {
			m = m.Or(f)
		}
	}
	return m
}
