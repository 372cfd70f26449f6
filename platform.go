// SPDX-License-Identifier: GPL-3.0-or-later

package libsock

// Descriptor is a native socket descriptor: a file descriptor on Linux
// and a SOCKET handle on Windows.
type Descriptor uintptr

// InvalidDescriptor is the descriptor of a never opened or closed handle.
//
// It has the same bit pattern as -1 on Linux and INVALID_SOCKET on Windows.
const InvalidDescriptor = ^Descriptor(0)

// Platform issues the native socket calls.
//
// Implementations return errors wrapping a [syscall.Errno] for native
// failures, which [*Socket] converts into [*Error]. Integer arguments
// carry native values (e.g., AF_INET6 or SOL_SOCKET) that [*Socket]
// already translated from this package's portable vocabulary.
//
// Use [DefaultPlatform] for the operating system backend. Tests may
// provide a fake to observe the exact native calls.
type Platform interface {
	// Socket opens a new descriptor.
	Socket(family, stype, protocol int) (Descriptor, error)

	// Close releases a descriptor.
	Close(fd Descriptor) error

	// Bind binds a descriptor to a local address.
	Bind(fd Descriptor, addr *Address) error

	// Listen marks a descriptor as passive.
	Listen(fd Descriptor, backlog int) error

	// Connect connects a descriptor to a remote address.
	Connect(fd Descriptor, addr *Address) error

	// Accept waits for an incoming connection. The peer address is nil
	// when its family is neither inet nor inet6.
	Accept(fd Descriptor) (Descriptor, *Address, error)

	// Shutdown half-closes a connection.
	Shutdown(fd Descriptor, how int) error

	// Send transmits on a connected descriptor.
	Send(fd Descriptor, b []byte, flags int) (int, error)

	// SendTo transmits to the given address.
	SendTo(fd Descriptor, b []byte, flags int, addr *Address) (int, error)

	// Recv receives from a connected descriptor.
	Recv(fd Descriptor, b []byte, flags int) (int, error)

	// RecvFrom receives and returns the sender address, which is nil
	// when the platform does not report it.
	RecvFrom(fd Descriptor, b []byte, flags int) (int, *Address, error)

	// GetsockoptInt reads an integer option.
	GetsockoptInt(fd Descriptor, level, name int) (int, error)

	// GetsockoptBytes reads an option into buf and returns the number
	// of bytes the kernel wrote.
	GetsockoptBytes(fd Descriptor, level, name int, buf []byte) (int, error)

	// SetsockoptInt writes an integer option.
	SetsockoptInt(fd Descriptor, level, name, value int) error

	// SetsockoptBytes writes an option from a raw buffer.
	SetsockoptBytes(fd Descriptor, level, name int, value []byte) error

	// LocalAddress returns the address the descriptor is bound to.
	LocalAddress(fd Descriptor) (*Address, error)

	// PeerAddress returns the address of the connected peer.
	PeerAddress(fd Descriptor) (*Address, error)

	// LookupProtocol returns the number of the named protocol.
	LookupProtocol(name string) (int, error)

	// ErrorMessage describes a native error code. It never fails.
	ErrorMessage(code int) string
}

// DefaultPlatform returns the [Platform] of the operating system.
func DefaultPlatform() Platform {
	return defaultPlatform
}

// Startup acquires the network subsystem of the operating system.
//
// On Windows the subsystem is reference counted and every [*Socket]
// holds a reference until closed, so calling Startup is only needed to
// keep the subsystem alive between sockets. On Linux it does nothing.
// The returned release function is safe to call more than once.
func Startup() (release func(), err error) {
	return startup()
}
