// SPDX-License-Identifier: GPL-3.0-or-later

package libsock

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Socket owns exactly one native socket descriptor.
//
// Construct using [Open], [OpenAddressInfo] or [*Socket.Accept]. The zero
// value is a never opened socket that only supports [*Socket.Close] and
// [*Socket.Descriptor].
//
// Operations are thin wrappers around the native calls and block according
// to the blocking mode of the descriptor. Native failures are returned as
// [*Error] and leave the socket unchanged. [*Socket.Close] and
// [*Socket.Shutdown] may be called concurrently with blocked operations,
// to unblock them; other methods must not be called concurrently with
// [*Socket.Take] or [*Socket.Swap].
type Socket struct {
	// fd holds the descriptor plus one, so zero means never opened.
	fd atomic.Uintptr

	// meta describes the owned descriptor; nil means unknown.
	meta atomic.Pointer[socketMeta]

	id            string
	platform      Platform
	errClassifier ErrClassifier
	logger        SLogger
	timeNow       func() time.Time

	// mu serializes releasing the descriptor with watch shutdowns.
	mu sync.Mutex

	// watchCtx and unwatch describe a watch installed by [*CancelWatchFunc].
	watchCtx context.Context
	unwatch  func() bool
}

// socketMeta is the immutable description of a descriptor.
type socketMeta struct {
	family   AddressFamily
	stype    SocketType
	protocol Protocol
	info     *AddressInfo
}

// unknownSocketMeta describes a never opened, moved from or closed socket.
var unknownSocketMeta = &socketMeta{
	family:   FamilyUnknown,
	stype:    TypeUnknown,
	protocol: UnknownProtocol(),
}

// metadata returns the description of the owned descriptor.
func (s *Socket) metadata() *socketMeta {
	if m := s.meta.Load(); m != nil {
		return m
	}
	return unknownSocketMeta
}

// Open opens a new socket.
//
// The cfg argument contains the common configuration.
//
// The logger argument is the [SLogger] to use for structured logging.
func Open(cfg *Config, family AddressFamily, stype SocketType, protocol Protocol, logger SLogger) (*Socket, error) {
	s := &Socket{
		id:            newSocketID(),
		platform:      cfg.Platform,
		errClassifier: cfg.ErrClassifier,
		logger:        logger,
		timeNow:       cfg.TimeNow,
	}
	s.meta.Store(&socketMeta{family: family, stype: stype, protocol: protocol})

	t0 := s.timeNow()
	s.logStart(s.logger.Info, "openStart", t0)
	fd, err := s.platform.Socket(int(family), int(stype), protocol.ID())
	err = newError(s.platform, "socket", err)
	s.logDone(s.logger.Info, "openDone", t0, err)
	if err != nil {
		return nil, err
	}

	s.store(fd)
	return s, nil
}

// OpenAddressInfo opens a socket using the family, type and protocol of
// info. The socket retains info, so [*Socket.Bind] binds to its address.
func OpenAddressInfo(cfg *Config, info AddressInfo, logger SLogger) (*Socket, error) {
	s, err := Open(cfg, info.Family, info.SocketType, info.Protocol, logger)
	if err != nil {
		return nil, err
	}
	meta := *s.metadata()
	meta.info = &info
	s.meta.Store(&meta)
	return s, nil
}

func (s *Socket) load() Descriptor {
	return Descriptor(s.fd.Load() - 1)
}

func (s *Socket) store(fd Descriptor) {
	s.fd.Store(uintptr(fd) + 1)
}

func (s *Socket) swap(fd Descriptor) Descriptor {
	return Descriptor(s.fd.Swap(uintptr(fd)+1) - 1)
}

// derive returns a new [*Socket] owning fd with the same configuration
// as s and the given metadata.
func (s *Socket) derive(fd Descriptor, id string, meta *socketMeta) *Socket {
	child := &Socket{
		id:            id,
		platform:      s.platform,
		errClassifier: s.errClassifier,
		logger:        s.logger,
		timeNow:       s.timeNow,
	}
	child.meta.Store(meta)
	child.store(fd)
	return child
}

// release swaps the descriptor with fd and returns the previous one.
//
// It waits for an in-flight watch shutdown, so the previous descriptor is
// never shut down after release returns.
func (s *Socket) release(fd Descriptor) Descriptor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.swap(fd)
}

// ID returns the UUIDv7 identifying s in log events.
func (s *Socket) ID() string {
	return s.id
}

// Descriptor returns the native descriptor or [InvalidDescriptor].
func (s *Socket) Descriptor() Descriptor {
	return s.load()
}

// Family returns the address family.
func (s *Socket) Family() AddressFamily {
	return s.metadata().family
}

// Type returns the socket type.
func (s *Socket) Type() SocketType {
	return s.metadata().stype
}

// Protocol returns the protocol.
func (s *Socket) Protocol() Protocol {
	return s.metadata().protocol
}

// AddressInfo returns the entry retained by [OpenAddressInfo] or nil.
func (s *Socket) AddressInfo() *AddressInfo {
	return s.metadata().info
}

// IsStream reports whether the socket type is connection oriented.
func (s *Socket) IsStream() bool {
	return s.metadata().stype.IsStream()
}

// BindTo binds the socket to addr.
func (s *Socket) BindTo(addr *Address) error {
	if addr == nil {
		return fmt.Errorf("%w: nil address", ErrInvalidArgument)
	}
	t0 := s.timeNow()
	s.logStart(s.logger.Info, "bindStart", t0, slog.String("localAddr", addr.String()))
	err := newError(s.platform, "bind", s.platform.Bind(s.load(), addr))
	s.logDone(s.logger.Info, "bindDone", t0, err, slog.String("localAddr", addr.String()))
	return err
}

// Bind binds the socket to the address retained by [OpenAddressInfo].
//
// Without a retained address it fails with [ErrNoResolution] and does not
// issue any native call.
func (s *Socket) Bind() error {
	info := s.metadata().info
	if info == nil || info.Address == nil {
		return ErrNoResolution
	}
	return s.BindTo(info.Address)
}

// Listen marks the socket as passive. Use [DefaultBacklog] for the
// platform maximum.
func (s *Socket) Listen(backlog int) error {
	t0 := s.timeNow()
	s.logStart(s.logger.Info, "listenStart", t0, slog.Int("backlog", backlog))
	err := newError(s.platform, "listen", s.platform.Listen(s.load(), backlog))
	s.logDone(s.logger.Info, "listenDone", t0, err, slog.Int("backlog", backlog))
	return err
}

// Connect connects the socket to addr.
func (s *Socket) Connect(addr *Address) error {
	if addr == nil {
		return fmt.Errorf("%w: nil address", ErrInvalidArgument)
	}
	t0 := s.timeNow()
	s.logStart(s.logger.Info, "connectStart", t0, slog.String("remoteAddr", addr.String()))
	err := newError(s.platform, "connect", s.platform.Connect(s.load(), addr))
	s.logDone(s.logger.Info, "connectDone", t0, err, slog.String("remoteAddr", addr.String()))
	return err
}

// Accept waits for a connection on a listening socket.
//
// The returned socket inherits the family, type and protocol of s, which
// keeps listening. The peer address is nil for families other than inet
// and inet6.
func (s *Socket) Accept() (*Socket, *Address, error) {
	t0 := s.timeNow()
	s.logStart(s.logger.Info, "acceptStart", t0)
	fd, addr, err := s.platform.Accept(s.load())
	err = newError(s.platform, "accept", err)
	var child *Socket
	childID := ""
	if err == nil {
		childID = newSocketID()
		meta := *s.metadata()
		meta.info = nil
		child = s.derive(fd, childID, &meta)
	}
	s.logDone(s.logger.Info, "acceptDone", t0, err,
		slog.String("acceptedSocketID", childID),
		slog.String("remoteAddr", addr.String()),
	)
	if err != nil {
		return nil, nil, err
	}
	return child, addr, nil
}

// Send transmits b on a connected socket and returns the bytes sent.
func (s *Socket) Send(b []byte, flags ...SendFlag) (int, error) {
	mask := MaskOf(flags...)
	t0 := s.timeNow()
	s.logStart(s.logger.Debug, "sendStart", t0, slog.Int("ioBufferSize", len(b)))
	n, err := s.platform.Send(s.load(), b, mask.Int())
	err = newError(s.platform, "send", err)
	s.logDone(s.logger.Debug, "sendDone", t0, err, slog.Int("ioBytesCount", n))
	return n, err
}

// SendTo transmits b to addr and returns the bytes sent.
func (s *Socket) SendTo(b []byte, addr *Address, flags ...SendFlag) (int, error) {
	if addr == nil {
		return 0, fmt.Errorf("%w: nil address", ErrInvalidArgument)
	}
	mask := MaskOf(flags...)
	t0 := s.timeNow()
	s.logStart(s.logger.Debug, "sendStart", t0,
		slog.Int("ioBufferSize", len(b)),
		slog.String("remoteAddr", addr.String()),
	)
	n, err := s.platform.SendTo(s.load(), b, mask.Int(), addr)
	err = newError(s.platform, "sendto", err)
	s.logDone(s.logger.Debug, "sendDone", t0, err,
		slog.Int("ioBytesCount", n),
		slog.String("remoteAddr", addr.String()),
	)
	return n, err
}

// Recv receives into b and returns the bytes read.
//
// Zero bytes read on a stream socket means the peer shut down its side
// of the connection. An empty b fails with [ErrInvalidArgument].
func (s *Socket) Recv(b []byte, flags ...RecvFlag) (int, error) {
	if len(b) == 0 {
		return 0, fmt.Errorf("%w: empty buffer", ErrInvalidArgument)
	}
	mask := MaskOf(flags...)
	t0 := s.timeNow()
	s.logStart(s.logger.Debug, "recvStart", t0, slog.Int("ioBufferSize", len(b)))
	n, err := s.platform.Recv(s.load(), b, mask.Int())
	err = newError(s.platform, "recv", err)
	s.logDone(s.logger.Debug, "recvDone", t0, err, slog.Int("ioBytesCount", n))
	return n, err
}

// RecvFrom is like [*Socket.Recv] but also returns the sender address,
// which is nil when the platform does not report it.
func (s *Socket) RecvFrom(b []byte, flags ...RecvFlag) (int, *Address, error) {
	if len(b) == 0 {
		return 0, nil, fmt.Errorf("%w: empty buffer", ErrInvalidArgument)
	}
	mask := MaskOf(flags...)
	t0 := s.timeNow()
	s.logStart(s.logger.Debug, "recvStart", t0, slog.Int("ioBufferSize", len(b)))
	n, addr, err := s.platform.RecvFrom(s.load(), b, mask.Int())
	err = newError(s.platform, "recvfrom", err)
	s.logDone(s.logger.Debug, "recvDone", t0, err,
		slog.Int("ioBytesCount", n),
		slog.String("remoteAddr", addr.String()),
	)
	if err != nil {
		return n, nil, err
	}
	return n, addr, nil
}

// Shutdown half-closes the connection in the given direction.
func (s *Socket) Shutdown(how ShutdownDirection) error {
	t0 := s.timeNow()
	s.logStart(s.logger.Info, "shutdownStart", t0, slog.String("how", how.String()))
	err := newError(s.platform, "shutdown", s.platform.Shutdown(s.load(), how.native()))
	s.logDone(s.logger.Info, "shutdownDone", t0, err, slog.String("how", how.String()))
	return err
}

// LocalAddress returns the address the socket is bound to.
func (s *Socket) LocalAddress() (*Address, error) {
	addr, err := s.platform.LocalAddress(s.load())
	if err != nil {
		return nil, newError(s.platform, "getsockname", err)
	}
	return addr, nil
}

// PeerAddress returns the address of the connected peer.
func (s *Socket) PeerAddress() (*Address, error) {
	addr, err := s.platform.PeerAddress(s.load())
	if err != nil {
		return nil, newError(s.platform, "getpeername", err)
	}
	return addr, nil
}

// Take moves the descriptor to a new [*Socket] and returns it.
//
// Afterwards s is in the never opened state: closing it does not touch
// the descriptor now owned by the returned socket. A watch installed by
// [*CancelWatchFunc] moves along with the descriptor.
func (s *Socket) Take() *Socket {
	ctx := s.stopWatch()
	moved := s.derive(s.release(InvalidDescriptor), s.id, s.metadata())
	s.meta.Store(unknownSocketMeta)
	if ctx != nil {
		moved.watch(ctx)
	}
	return moved
}

// Swap exchanges the descriptors and metadata of s and other.
//
// Watches installed by [*CancelWatchFunc] follow their descriptors.
func (s *Socket) Swap(other *Socket) {
	if s == other {
		return
	}
	sctx, octx := s.stopWatch(), other.stopWatch()
	s.mu.Lock()
	other.mu.Lock()
	s.store(other.swap(s.load()))
	other.mu.Unlock()
	s.mu.Unlock()
	smeta, ometa := s.meta.Load(), other.meta.Load()
	s.meta.Store(ometa)
	other.meta.Store(smeta)
	s.id, other.id = other.id, s.id
	s.platform, other.platform = other.platform, s.platform
	s.errClassifier, other.errClassifier = other.errClassifier, s.errClassifier
	s.logger, other.logger = other.logger, s.logger
	s.timeNow, other.timeNow = other.timeNow, s.timeNow
	if sctx != nil {
		other.watch(sctx)
	}
	if octx != nil {
		s.watch(octx)
	}
}

// Close releases the descriptor and resets the family, type and protocol
// to unknown.
//
// Close is safe to call on a nil, never opened, moved from or already
// closed socket. It always returns nil: the outcome of the native call is
// only reported through the closeDone log event.
func (s *Socket) Close() error {
	if s == nil {
		return nil
	}
	s.stopWatch()
	fd := s.release(InvalidDescriptor)
	if fd == InvalidDescriptor {
		s.meta.Store(unknownSocketMeta)
		return nil
	}
	t0 := s.timeNow()
	s.logStart(s.logger.Info, "closeStart", t0)
	err := newError(s.platform, "close", s.platform.Close(fd))
	s.logDone(s.logger.Info, "closeDone", t0, err)
	s.meta.Store(unknownSocketMeta)
	return nil
}
