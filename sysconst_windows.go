//go:build windows

// SPDX-License-Identifier: GPL-3.0-or-later

package libsock

// Values from ws2def.h, ws2ipdef.h and winsock2.h.

// Address families.
const (
	afUnspec    = 0
	afUnix      = 1
	afInet      = 2
	afInet6     = 23
	afIrDA      = 26
	afATM       = 22
	afBluetooth = 32 // AF_BTH
)

// Socket types.
const (
	sockStream    = 1
	sockDgram     = 2
	sockRaw       = 3
	sockRDM       = 4
	sockSeqPacket = 5
)

// Well-known protocol numbers.
const (
	ipprotoTCP = 6
	ipprotoUDP = 17
)

// Send and recv flags.
const (
	msgOOB       = 0x1
	msgPeek      = 0x2
	msgDontRoute = 0x4
	msgWaitAll   = 0x8
	msgTrunc     = 0x100
)

// getaddrinfo flags.
const (
	aiPassive     = 0x01
	aiCanonName   = 0x02
	aiNumericHost = 0x04
	aiNumericServ = 0x08
)

// Shutdown directions (SD_RECEIVE, SD_SEND, SD_BOTH).
const (
	shutRead  = 0
	shutWrite = 1
	shutBoth  = 2
)

// DefaultBacklog is the platform maximum listen backlog (SOMAXCONN).
const DefaultBacklog = 0x7fffffff

// Option levels.
const (
	solSocket = 0xffff
	levelIP   = 0
	levelIPv6 = 41
)

// Socket level options.
const (
	soReuseAddr = 0x0004
	soKeepAlive = 0x0008
	soBroadcast = 0x0020
	soSndBuf    = 0x1001
	soRcvBuf    = 0x1002
	soError     = 0x1007
	soType      = 0x1008
)

// IP level options.
const (
	ipHdrIncl              = 2
	ipTOS                  = 3
	ipTTL                  = 4
	ipMulticastIf          = 9
	ipMulticastTTL         = 10
	ipMulticastLoop        = 11
	ipAddMembership        = 12
	ipDropMembership       = 13
	ipDontFragment         = 14
	ipAddSourceMembership  = 15
	ipDropSourceMembership = 16
	ipBlockSource          = 17
	ipUnblockSource        = 18
	ipPktInfo              = 19
	ipUnicastIf            = 31
	ipMTUDiscover          = 71
	ipMTU                  = 73
)

// Path MTU discovery modes (PMTUD_STATE).
const (
	ipPMTUDiscDo   = 1
	ipPMTUDiscDont = 2
)

// emulateDontFragment reports whether [IPDontFragment] is implemented on
// top of [IPMTUDiscover]. Winsock has a native IP_DONTFRAGMENT option.
const emulateDontFragment = false
