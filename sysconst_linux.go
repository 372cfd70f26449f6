//go:build linux

// SPDX-License-Identifier: GPL-3.0-or-later

package libsock

import "golang.org/x/sys/unix"

// Address families.
const (
	afUnspec    = unix.AF_UNSPEC
	afUnix      = unix.AF_UNIX
	afInet      = unix.AF_INET
	afInet6     = unix.AF_INET6
	afIrDA      = unix.AF_IRDA
	afATM       = unix.AF_ATMSVC
	afBluetooth = unix.AF_BLUETOOTH
)

// Socket types.
const (
	sockStream    = unix.SOCK_STREAM
	sockDgram     = unix.SOCK_DGRAM
	sockRDM       = unix.SOCK_RDM
	sockSeqPacket = unix.SOCK_SEQPACKET
	sockRaw       = unix.SOCK_RAW
)

// Well-known protocol numbers.
const (
	ipprotoTCP = unix.IPPROTO_TCP
	ipprotoUDP = unix.IPPROTO_UDP
)

// Send and recv flags.
const (
	msgOOB       = unix.MSG_OOB
	msgPeek      = unix.MSG_PEEK
	msgTrunc     = unix.MSG_TRUNC
	msgWaitAll   = unix.MSG_WAITALL
	msgDontRoute = unix.MSG_DONTROUTE
)

// getaddrinfo flags (netdb.h).
const (
	aiPassive     = 0x0001
	aiCanonName   = 0x0002
	aiNumericHost = 0x0004
	aiNumericServ = 0x0400
)

// Shutdown directions.
const (
	shutRead  = unix.SHUT_RD
	shutWrite = unix.SHUT_WR
	shutBoth  = unix.SHUT_RDWR
)

// DefaultBacklog is the platform maximum listen backlog (SOMAXCONN).
const DefaultBacklog = unix.SOMAXCONN

// Option levels.
const (
	solSocket = unix.SOL_SOCKET
	levelIP   = unix.IPPROTO_IP
	levelIPv6 = unix.IPPROTO_IPV6
)

// Socket level options.
const (
	soReuseAddr = unix.SO_REUSEADDR
	soKeepAlive = unix.SO_KEEPALIVE
	soBroadcast = unix.SO_BROADCAST
	soRcvBuf    = unix.SO_RCVBUF
	soSndBuf    = unix.SO_SNDBUF
	soError     = unix.SO_ERROR
	soType      = unix.SO_TYPE
)

// IP level options.
const (
	ipAddMembership        = unix.IP_ADD_MEMBERSHIP
	ipDropMembership       = unix.IP_DROP_MEMBERSHIP
	ipAddSourceMembership  = unix.IP_ADD_SOURCE_MEMBERSHIP
	ipDropSourceMembership = unix.IP_DROP_SOURCE_MEMBERSHIP
	ipBlockSource          = unix.IP_BLOCK_SOURCE
	ipUnblockSource        = unix.IP_UNBLOCK_SOURCE
	ipHdrIncl              = unix.IP_HDRINCL
	ipMulticastIf          = unix.IP_MULTICAST_IF
	ipMulticastLoop        = unix.IP_MULTICAST_LOOP
	ipMulticastTTL         = unix.IP_MULTICAST_TTL
	ipTTL                  = unix.IP_TTL
	ipTOS                  = unix.IP_TOS
	ipUnicastIf            = unix.IP_UNICAST_IF
	ipPktInfo              = unix.IP_PKTINFO
	ipMTU                  = unix.IP_MTU
	ipMTUDiscover          = unix.IP_MTU_DISCOVER

	// Linux has no settable don't-fragment boolean: this value never
	// reaches the kernel and is translated to ipMTUDiscover instead.
	ipDontFragment = 0x7f000001
)

// Path MTU discovery modes backing the don't-fragment emulation.
const (
	ipPMTUDiscDo   = unix.IP_PMTUDISC_DO
	ipPMTUDiscDont = unix.IP_PMTUDISC_DONT
)

// emulateDontFragment reports whether [IPDontFragment] is implemented on
// top of [IPMTUDiscover].
const emulateDontFragment = true
