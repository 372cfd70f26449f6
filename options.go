// SPDX-License-Identifier: GPL-3.0-or-later

package libsock

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"strconv"
)

// optionCategory selects the option level of an [Option].
type optionCategory int

const (
	categorySocket optionCategory = iota
	categoryIP
)

// optionLevels is the pair of native levels of an option category.
type optionLevels struct {
	level     int // inet sockets and family-independent options
	ipv6Level int // used instead of level by inet6 sockets
}

// optionLevelTable maps each option category to its native levels.
var optionLevelTable = [...]optionLevels{
	categorySocket: {level: solSocket, ipv6Level: solSocket},
	categoryIP:     {level: levelIP, ipv6Level: levelIPv6},
}

// Option is a socket option: either a [SocketOption] or an [IPOption].
type Option interface {
	category() optionCategory
	native() int
	String() string
}

// SocketOption is a family-independent option (SOL_SOCKET level).
type SocketOption int

const (
	OptReuseAddr     SocketOption = soReuseAddr // allow reuse of local addresses
	OptKeepAlive     SocketOption = soKeepAlive // send keep-alive probes
	OptBroadcast     SocketOption = soBroadcast // permit sending broadcast datagrams
	OptReceiveBuffer SocketOption = soRcvBuf    // receive buffer size
	OptSendBuffer    SocketOption = soSndBuf    // send buffer size
	OptError         SocketOption = soError     // pending error (get only)
	OptType          SocketOption = soType      // socket type (get only)
)

var _ Option = OptReuseAddr

func (o SocketOption) category() optionCategory { return categorySocket }

func (o SocketOption) native() int { return int(o) }

var socketOptionNames = map[SocketOption]string{
	OptReuseAddr:     "reuse_addr",
	OptKeepAlive:     "keep_alive",
	OptBroadcast:     "broadcast",
	OptReceiveBuffer: "receive_buffer",
	OptSendBuffer:    "send_buffer",
	OptError:         "error",
	OptType:          "type",
}

// String implements [fmt.Stringer].
func (o SocketOption) String() string {
	if name, found := socketOptionNames[o]; found {
		return name
	}
	return "socket_option(" + strconv.Itoa(int(o)) + ")"
}

// IPOption is an IP level option.
//
// On inet6 sockets the option is issued at the IPv6 level with the
// same option number.
type IPOption int

const (
	IPJoinGroup          IPOption = ipAddMembership
	IPLeaveGroup         IPOption = ipDropMembership
	IPJoinSourceGroup    IPOption = ipAddSourceMembership
	IPLeaveSourceGroup   IPOption = ipDropSourceMembership
	IPBlockSource        IPOption = ipBlockSource
	IPUnblockSource      IPOption = ipUnblockSource
	IPHeaderIncluded     IPOption = ipHdrIncl
	IPMulticastInterface IPOption = ipMulticastIf
	IPMulticastLoop      IPOption = ipMulticastLoop
	IPMulticastTTL       IPOption = ipMulticastTTL
	IPTTL                IPOption = ipTTL
	IPTypeOfService      IPOption = ipTOS
	IPUnicastInterface   IPOption = ipUnicastIf
	IPPacketInfo         IPOption = ipPktInfo
	IPMTU                IPOption = ipMTU
	IPMTUDiscover        IPOption = ipMTUDiscover

	// IPDontFragment sets the don't fragment bit of outgoing packets.
	//
	// On Linux it is stored as [IPMTUDiscover]: enabling it selects
	// IP_PMTUDISC_DO and disabling it selects IP_PMTUDISC_DONT.
	IPDontFragment IPOption = ipDontFragment
)

var _ Option = IPTTL

func (o IPOption) category() optionCategory { return categoryIP }

func (o IPOption) native() int { return int(o) }

var ipOptionNames = map[IPOption]string{
	IPJoinGroup:          "join_group",
	IPLeaveGroup:         "leave_group",
	IPJoinSourceGroup:    "join_source_group",
	IPLeaveSourceGroup:   "leave_source_group",
	IPBlockSource:        "block_source",
	IPUnblockSource:      "unblock_source",
	IPHeaderIncluded:     "header_included",
	IPMulticastInterface: "multicast_interface",
	IPMulticastLoop:      "multicast_loop",
	IPMulticastTTL:       "multicast_ttl",
	IPTTL:                "ttl",
	IPTypeOfService:      "type_of_service",
	IPUnicastInterface:   "unicast_interface",
	IPPacketInfo:         "packet_info",
	IPMTU:                "mtu",
	IPMTUDiscover:        "mtu_discover",
	IPDontFragment:       "dont_fragment",
}

// String implements [fmt.Stringer].
func (o IPOption) String() string {
	if name, found := ipOptionNames[o]; found {
		return name
	}
	return "ip_option(" + strconv.Itoa(int(o)) + ")"
}

// optionLevel returns the native level of opt for this socket.
func (s *Socket) optionLevel(opt Option) int {
	levels := optionLevelTable[opt.category()]
	if s.Family() == FamilyInet6 {
		return levels.ipv6Level
	}
	return levels.level
}

// isEmulatedDontFragment reports whether opt must be translated to
// [IPMTUDiscover] on this platform.
func isEmulatedDontFragment(opt Option) bool {
	ipopt, ok := opt.(IPOption)
	return emulateDontFragment && ok && ipopt == IPDontFragment
}

// pmtuDiscoveryMode returns the [IPMTUDiscover] value storing the given
// don't fragment setting.
func pmtuDiscoveryMode(dontFragment bool) int {
	if dontFragment {
		return ipPMTUDiscDo
	}
	return ipPMTUDiscDont
}

// SetOptionInt sets an integer option.
func (s *Socket) SetOptionInt(opt Option, value int) error {
	if opt == nil {
		return fmt.Errorf("%w: nil option", ErrInvalidArgument)
	}
	level, name := s.optionLevel(opt), opt.native()
	if isEmulatedDontFragment(opt) {
		name, value = IPMTUDiscover.native(), pmtuDiscoveryMode(value != 0)
	}
	t0 := s.timeNow()
	s.logStart(s.logger.Info, "setOptionStart", t0, optionAttrs(opt, level, name, value)...)
	err := newError(s.platform, "setsockopt", s.platform.SetsockoptInt(s.load(), level, name, value))
	s.logDone(s.logger.Info, "setOptionDone", t0, err, optionAttrs(opt, level, name, value)...)
	return err
}

// GetOptionInt reads an integer option.
func (s *Socket) GetOptionInt(opt Option) (int, error) {
	if opt == nil {
		return 0, fmt.Errorf("%w: nil option", ErrInvalidArgument)
	}
	level, name := s.optionLevel(opt), opt.native()
	if isEmulatedDontFragment(opt) {
		name = IPMTUDiscover.native()
	}
	value, err := s.platform.GetsockoptInt(s.load(), level, name)
	if err != nil {
		return 0, newError(s.platform, "getsockopt", err)
	}
	if isEmulatedDontFragment(opt) {
		if value == ipPMTUDiscDont {
			return 0, nil
		}
		return 1, nil
	}
	return value, nil
}

// SetOptionBool sets a boolean option, stored as 0 or 1.
func (s *Socket) SetOptionBool(opt Option, value bool) error {
	var v int
	if value {
		v = 1
	}
	return s.SetOptionInt(opt, v)
}

// GetOptionBool reads a boolean option.
func (s *Socket) GetOptionBool(opt Option) (bool, error) {
	value, err := s.GetOptionInt(opt)
	return value != 0, err
}

// SetOptionBytes sets an option from its native representation (e.g.,
// a struct ip_mreq for [IPJoinGroup]).
//
// An empty value fails with [ErrInvalidArgument] before any native call.
// On Linux [IPDontFragment] requires a 4 byte host order integer.
func (s *Socket) SetOptionBytes(opt Option, value []byte) error {
	if opt == nil {
		return fmt.Errorf("%w: nil option", ErrInvalidArgument)
	}
	if len(value) == 0 {
		return fmt.Errorf("%w: empty option value", ErrInvalidArgument)
	}
	if isEmulatedDontFragment(opt) {
		if len(value) != 4 {
			return fmt.Errorf("%w: %s requires 4 bytes", ErrInvalidArgument, opt)
		}
		return s.SetOptionInt(opt, int(int32(binary.NativeEndian.Uint32(value))))
	}
	level, name := s.optionLevel(opt), opt.native()
	t0 := s.timeNow()
	s.logStart(s.logger.Info, "setOptionStart", t0, optionAttrs(opt, level, name, len(value))...)
	err := newError(s.platform, "setsockopt", s.platform.SetsockoptBytes(s.load(), level, name, value))
	s.logDone(s.logger.Info, "setOptionDone", t0, err, optionAttrs(opt, level, name, len(value))...)
	return err
}

// GetOptionBytes reads an option in its native representation into buf
// and returns the number of bytes written.
//
// An empty buf fails with [ErrInvalidArgument] before any native call.
// On Linux [IPDontFragment] reads back as a 4 byte host order integer.
func (s *Socket) GetOptionBytes(opt Option, buf []byte) (int, error) {
	if opt == nil {
		return 0, fmt.Errorf("%w: nil option", ErrInvalidArgument)
	}
	if len(buf) == 0 {
		return 0, fmt.Errorf("%w: empty option buffer", ErrInvalidArgument)
	}
	if isEmulatedDontFragment(opt) {
		if len(buf) < 4 {
			return 0, fmt.Errorf("%w: %s requires 4 bytes", ErrInvalidArgument, opt)
		}
		value, err := s.GetOptionInt(opt)
		if err != nil {
			return 0, err
		}
		binary.NativeEndian.PutUint32(buf, uint32(value))
		return 4, nil
	}
	count, err := s.platform.GetsockoptBytes(s.load(), s.optionLevel(opt), opt.native(), buf)
	if err != nil {
		return 0, newError(s.platform, "getsockopt", err)
	}
	return count, nil
}

// optionAttrs returns the log attributes describing an option call.
func optionAttrs(opt Option, level, name, value int) []any {
	return []any{
		slog.String("option", opt.String()),
		slog.Int("optionLevel", level),
		slog.Int("optionName", name),
		slog.Int("optionValue", value),
	}
}
