//go:build windows

// SPDX-License-Identifier: GPL-3.0-or-later

package libsock

import (
	"fmt"
	"net/netip"
	"strings"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"
)

// winsockVersion is the Winsock version requested by WSAStartup (2.2).
const winsockVersion = 0x0202

var (
	modws2_32  = windows.NewLazySystemDLL("ws2_32.dll")
	procAccept = modws2_32.NewProc("accept")
)

// windowsPlatform implements [Platform] using Winsock.
//
// Every descriptor holds one WSAStartup reference, released when the
// descriptor is closed.
type windowsPlatform struct{}

var defaultPlatform Platform = windowsPlatform{}

// wsaStartup acquires one reference to the Winsock subsystem.
func wsaStartup() error {
	var data windows.WSAData
	return windows.WSAStartup(winsockVersion, &data)
}

// Socket implements [Platform].
func (windowsPlatform) Socket(family, stype, protocol int) (Descriptor, error) {
	if err := wsaStartup(); err != nil {
		return InvalidDescriptor, err
	}
	fd, err := windows.Socket(family, stype, protocol)
	if err != nil {
		windows.WSACleanup()
		return InvalidDescriptor, err
	}
	return Descriptor(fd), nil
}

// Close implements [Platform].
func (windowsPlatform) Close(fd Descriptor) error {
	err := windows.Closesocket(windows.Handle(fd))
	windows.WSACleanup()
	return err
}

// Bind implements [Platform].
func (windowsPlatform) Bind(fd Descriptor, addr *Address) error {
	sa, err := toSockaddr(addr)
	if err != nil {
		return err
	}
	return windows.Bind(windows.Handle(fd), sa)
}

// Listen implements [Platform].
func (windowsPlatform) Listen(fd Descriptor, backlog int) error {
	return windows.Listen(windows.Handle(fd), backlog)
}

// Connect implements [Platform].
func (windowsPlatform) Connect(fd Descriptor, addr *Address) error {
	sa, err := toSockaddr(addr)
	if err != nil {
		return err
	}
	return windows.Connect(windows.Handle(fd), sa)
}

// Accept implements [Platform].
func (windowsPlatform) Accept(fd Descriptor) (Descriptor, *Address, error) {
	if err := wsaStartup(); err != nil {
		return InvalidDescriptor, nil, err
	}
	var rsa windows.RawSockaddrAny
	size := int32(unsafe.Sizeof(rsa))
	r1, _, e1 := procAccept.Call(uintptr(fd), uintptr(unsafe.Pointer(&rsa)), uintptr(unsafe.Pointer(&size)))
	if windows.Handle(r1) == windows.InvalidHandle {
		windows.WSACleanup()
		return InvalidDescriptor, nil, e1
	}
	return Descriptor(r1), fromRawSockaddr(&rsa, size), nil
}

// Shutdown implements [Platform].
func (windowsPlatform) Shutdown(fd Descriptor, how int) error {
	return windows.Shutdown(windows.Handle(fd), how)
}

// Send implements [Platform].
func (windowsPlatform) Send(fd Descriptor, b []byte, flags int) (int, error) {
	buf := newWSABuf(b)
	var sent uint32
	err := windows.WSASend(windows.Handle(fd), &buf, 1, &sent, uint32(flags), nil, nil)
	return int(sent), err
}

// SendTo implements [Platform].
func (windowsPlatform) SendTo(fd Descriptor, b []byte, flags int, addr *Address) (int, error) {
	if addr == nil {
		return 0, ErrInvalidArgument
	}
	var rsa windows.RawSockaddrAny
	native := addr.Native()
	copy(unsafe.Slice((*byte)(unsafe.Pointer(&rsa)), unsafe.Sizeof(rsa)), native)
	buf := newWSABuf(b)
	var sent uint32
	err := windows.WSASendTo(windows.Handle(fd), &buf, 1, &sent, uint32(flags), &rsa, int32(len(native)), nil, nil)
	return int(sent), err
}

// Recv implements [Platform].
func (windowsPlatform) Recv(fd Descriptor, b []byte, flags int) (int, error) {
	buf := newWSABuf(b)
	var recvd uint32
	wflags := uint32(flags)
	err := windows.WSARecv(windows.Handle(fd), &buf, 1, &recvd, &wflags, nil, nil)
	return int(recvd), err
}

// RecvFrom implements [Platform].
func (windowsPlatform) RecvFrom(fd Descriptor, b []byte, flags int) (int, *Address, error) {
	var rsa windows.RawSockaddrAny
	size := int32(unsafe.Sizeof(rsa))
	buf := newWSABuf(b)
	var recvd uint32
	wflags := uint32(flags)
	err := windows.WSARecvFrom(windows.Handle(fd), &buf, 1, &recvd, &wflags, &rsa, &size, nil, nil)
	if err != nil {
		return int(recvd), nil, err
	}
	return int(recvd), fromRawSockaddr(&rsa, size), nil
}

// GetsockoptInt implements [Platform].
func (windowsPlatform) GetsockoptInt(fd Descriptor, level, name int) (int, error) {
	return windows.GetsockoptInt(windows.Handle(fd), level, name)
}

// GetsockoptBytes implements [Platform].
func (windowsPlatform) GetsockoptBytes(fd Descriptor, level, name int, buf []byte) (int, error) {
	if len(buf) == 0 {
		return 0, ErrInvalidArgument
	}
	size := int32(len(buf))
	if err := windows.Getsockopt(windows.Handle(fd), int32(level), int32(name), &buf[0], &size); err != nil {
		return 0, err
	}
	return int(size), nil
}

// SetsockoptInt implements [Platform].
func (windowsPlatform) SetsockoptInt(fd Descriptor, level, name, value int) error {
	return windows.SetsockoptInt(windows.Handle(fd), level, name, value)
}

// SetsockoptBytes implements [Platform].
func (windowsPlatform) SetsockoptBytes(fd Descriptor, level, name int, value []byte) error {
	if len(value) == 0 {
		return ErrInvalidArgument
	}
	return windows.Setsockopt(windows.Handle(fd), int32(level), int32(name), &value[0], int32(len(value)))
}

// LocalAddress implements [Platform].
func (windowsPlatform) LocalAddress(fd Descriptor) (*Address, error) {
	sa, err := windows.Getsockname(windows.Handle(fd))
	if err != nil {
		return nil, err
	}
	return fromSockaddr(sa)
}

// PeerAddress implements [Platform].
func (windowsPlatform) PeerAddress(fd Descriptor) (*Address, error) {
	sa, err := windows.Getpeername(windows.Handle(fd))
	if err != nil {
		return nil, err
	}
	return fromSockaddr(sa)
}

// LookupProtocol implements [Platform].
func (windowsPlatform) LookupProtocol(name string) (int, error) {
	if err := wsaStartup(); err != nil {
		return -1, err
	}
	defer windows.WSACleanup()
	p, err := windows.GetProtoByName(name)
	if err != nil {
		if id, found := wellKnownProtocols[strings.ToLower(name)]; found {
			return id, nil
		}
		return -1, fmt.Errorf("%w: %q", ErrUnsupportedProtocol, name)
	}
	return int(p.Proto), nil
}

// ErrorMessage implements [Platform].
func (windowsPlatform) ErrorMessage(code int) string {
	if code <= 0 {
		return errorMessageUnavailable
	}
	buf := make([]uint16, 512)
	const flags = windows.FORMAT_MESSAGE_FROM_SYSTEM | windows.FORMAT_MESSAGE_IGNORE_INSERTS
	n, err := windows.FormatMessage(flags, 0, uint32(code), 0, buf, nil)
	if err != nil || n == 0 {
		return errorMessageUnavailable
	}
	return strings.TrimRight(windows.UTF16ToString(buf[:n]), "\r\n. ")
}

// startup implements [Startup].
func startup() (func(), error) {
	if err := wsaStartup(); err != nil {
		return nil, err
	}
	var once sync.Once
	return func() { once.Do(func() { windows.WSACleanup() }) }, nil
}

func newWSABuf(b []byte) windows.WSABuf {
	buf := windows.WSABuf{Len: uint32(len(b))}
	if len(b) > 0 {
		buf.Buf = &b[0]
	}
	return buf
}

// toSockaddr converts an [*Address] to the x/sys/windows representation.
func toSockaddr(addr *Address) (windows.Sockaddr, error) {
	if addr == nil {
		return nil, ErrInvalidArgument
	}
	switch addr.family {
	case FamilyInet:
		return &windows.SockaddrInet4{Port: int(addr.port), Addr: addr.ip.As4()}, nil
	case FamilyInet6:
		return &windows.SockaddrInet6{Port: int(addr.port), ZoneId: addr.scopeID, Addr: addr.ip.As16()}, nil
	default:
		return nil, ErrAddressFamilyNotSupported
	}
}

// fromSockaddr converts the x/sys/windows representation to an [*Address].
func fromSockaddr(sa windows.Sockaddr) (*Address, error) {
	switch sa := sa.(type) {
	case *windows.SockaddrInet4:
		return &Address{family: FamilyInet, ip: netip.AddrFrom4(sa.Addr), port: uint16(sa.Port)}, nil
	case *windows.SockaddrInet6:
		return &Address{family: FamilyInet6, ip: netip.AddrFrom16(sa.Addr), port: uint16(sa.Port), scopeID: sa.ZoneId}, nil
	default:
		return nil, ErrAddressFamilyNotSupported
	}
}

// fromRawSockaddr decodes the size bytes of rsa filled by Winsock. It
// returns nil for families other than inet and inet6.
func fromRawSockaddr(rsa *windows.RawSockaddrAny, size int32) *Address {
	if size <= 0 || uintptr(size) > unsafe.Sizeof(*rsa) {
		return nil
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(rsa)), size)
	addr, err := AddressFromNative(AddressFamily(rsa.Addr.Family), b)
	if err != nil {
		return nil
	}
	return addr
}
