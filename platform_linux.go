//go:build linux

// SPDX-License-Identifier: GPL-3.0-or-later

package libsock

import (
	"fmt"
	"net/netip"
	"strings"
	"unsafe"

	"golang.org/x/sys/unix"
)

// linuxPlatform implements [Platform] using BSD sockets.
type linuxPlatform struct{}

var defaultPlatform Platform = linuxPlatform{}

// Socket implements [Platform].
func (linuxPlatform) Socket(family, stype, protocol int) (Descriptor, error) {
	fd, err := unix.Socket(family, stype|unix.SOCK_CLOEXEC, protocol)
	if err != nil {
		return InvalidDescriptor, err
	}
	return Descriptor(fd), nil
}

// Close implements [Platform].
func (linuxPlatform) Close(fd Descriptor) error {
	return unix.Close(int(fd))
}

// Bind implements [Platform].
func (linuxPlatform) Bind(fd Descriptor, addr *Address) error {
	sa, err := toSockaddr(addr)
	if err != nil {
		return err
	}
	return unix.Bind(int(fd), sa)
}

// Listen implements [Platform].
func (linuxPlatform) Listen(fd Descriptor, backlog int) error {
	return unix.Listen(int(fd), backlog)
}

// Connect implements [Platform].
func (linuxPlatform) Connect(fd Descriptor, addr *Address) error {
	sa, err := toSockaddr(addr)
	if err != nil {
		return err
	}
	return unix.Connect(int(fd), sa)
}

// Accept implements [Platform].
func (linuxPlatform) Accept(fd Descriptor) (Descriptor, *Address, error) {
	nfd, sa, err := unix.Accept4(int(fd), unix.SOCK_CLOEXEC)
	if err != nil {
		return InvalidDescriptor, nil, err
	}
	addr, _ := fromSockaddr(sa)
	return Descriptor(nfd), addr, nil
}

// Shutdown implements [Platform].
func (linuxPlatform) Shutdown(fd Descriptor, how int) error {
	return unix.Shutdown(int(fd), how)
}

// Send implements [Platform].
func (linuxPlatform) Send(fd Descriptor, b []byte, flags int) (int, error) {
	return unix.SendmsgN(int(fd), b, nil, nil, flags|unix.MSG_NOSIGNAL)
}

// SendTo implements [Platform].
func (linuxPlatform) SendTo(fd Descriptor, b []byte, flags int, addr *Address) (int, error) {
	sa, err := toSockaddr(addr)
	if err != nil {
		return 0, err
	}
	return unix.SendmsgN(int(fd), b, nil, sa, flags|unix.MSG_NOSIGNAL)
}

// Recv implements [Platform].
func (linuxPlatform) Recv(fd Descriptor, b []byte, flags int) (int, error) {
	n, _, err := unix.Recvfrom(int(fd), b, flags)
	return n, err
}

// RecvFrom implements [Platform].
func (linuxPlatform) RecvFrom(fd Descriptor, b []byte, flags int) (int, *Address, error) {
	n, sa, err := unix.Recvfrom(int(fd), b, flags)
	if err != nil {
		return n, nil, err
	}
	addr, _ := fromSockaddr(sa)
	return n, addr, nil
}

// GetsockoptInt implements [Platform].
func (linuxPlatform) GetsockoptInt(fd Descriptor, level, name int) (int, error) {
	return unix.GetsockoptInt(int(fd), level, name)
}

// GetsockoptBytes implements [Platform].
func (linuxPlatform) GetsockoptBytes(fd Descriptor, level, name int, buf []byte) (int, error) {
	if len(buf) == 0 {
		return 0, ErrInvalidArgument
	}
	size := uint32(len(buf))
	_, _, errno := unix.Syscall6(unix.SYS_GETSOCKOPT, uintptr(fd), uintptr(level), uintptr(name),
		uintptr(unsafe.Pointer(&buf[0])), uintptr(unsafe.Pointer(&size)), 0)
	if errno != 0 {
		return 0, errno
	}
	return int(size), nil
}

// SetsockoptInt implements [Platform].
func (linuxPlatform) SetsockoptInt(fd Descriptor, level, name, value int) error {
	return unix.SetsockoptInt(int(fd), level, name, value)
}

// SetsockoptBytes implements [Platform].
func (linuxPlatform) SetsockoptBytes(fd Descriptor, level, name int, value []byte) error {
	return unix.SetsockoptString(int(fd), level, name, string(value))
}

// LocalAddress implements [Platform].
func (linuxPlatform) LocalAddress(fd Descriptor) (*Address, error) {
	sa, err := unix.Getsockname(int(fd))
	if err != nil {
		return nil, err
	}
	return fromSockaddr(sa)
}

// PeerAddress implements [Platform].
func (linuxPlatform) PeerAddress(fd Descriptor) (*Address, error) {
	sa, err := unix.Getpeername(int(fd))
	if err != nil {
		return nil, err
	}
	return fromSockaddr(sa)
}

// LookupProtocol implements [Platform].
func (linuxPlatform) LookupProtocol(name string) (int, error) {
	id, found := lookupProtocolDatabase(name)
	if !found {
		return -1, fmt.Errorf("%w: %q", ErrUnsupportedProtocol, name)
	}
	return id, nil
}

// ErrorMessage implements [Platform].
func (linuxPlatform) ErrorMessage(code int) string {
	if code <= 0 {
		return errorMessageUnavailable
	}
	msg := unix.Errno(code).Error()
	if msg == "" || strings.HasPrefix(msg, "errno ") {
		return errorMessageUnavailable
	}
	return msg
}

// startup implements [Startup].
func startup() (func(), error) {
	return func() {}, nil
}

// toSockaddr converts an [*Address] to the x/sys/unix representation.
//
// The IPv6 flow information is not carried by [unix.SockaddrInet6].
func toSockaddr(addr *Address) (unix.Sockaddr, error) {
	if addr == nil {
		return nil, ErrInvalidArgument
	}
	switch addr.family {
	case FamilyInet:
		return &unix.SockaddrInet4{Port: int(addr.port), Addr: addr.ip.As4()}, nil
	case FamilyInet6:
		return &unix.SockaddrInet6{Port: int(addr.port), ZoneId: addr.scopeID, Addr: addr.ip.As16()}, nil
	default:
		return nil, ErrAddressFamilyNotSupported
	}
}

// fromSockaddr converts the x/sys/unix representation to an [*Address].
func fromSockaddr(sa unix.Sockaddr) (*Address, error) {
	switch sa := sa.(type) {
	case *unix.SockaddrInet4:
		return &Address{family: FamilyInet, ip: netip.AddrFrom4(sa.Addr), port: uint16(sa.Port)}, nil
	case *unix.SockaddrInet6:
		return &Address{family: FamilyInet6, ip: netip.AddrFrom16(sa.Addr), port: uint16(sa.Port), scopeID: sa.ZoneId}, nil
	default:
		return nil, ErrAddressFamilyNotSupported
	}
}
