// SPDX-License-Identifier: GPL-3.0-or-later

// Package libsock is a thin, portable layer over the operating system
// socket primitives.
//
// It reconciles the BSD-sockets API (Linux) and the Winsock API (Windows)
// behind one vocabulary of types and keeps every operation a 1:1 facade
// over the corresponding native call.
//
// # Core Types
//
// Socket handles:
//   - [Socket]: owns exactly one native descriptor; created by [Open],
//     [OpenAddressInfo] or [*Socket.Accept]
//   - [Option]: [SocketOption] (socket level) and [IPOption] (IP level,
//     transparently moved to the IPv6 level for inet6 sockets)
//
// Addressing:
//   - [Address]: inet or inet6 address with its native sockaddr encoding
//   - [AddressInfo]: one (family, type, protocol, address) resolution entry,
//     also used as resolution hints
//   - [Resolve]: wraps the OS resolver and returns an [AddressInfoList]
//   - [Protocol]: transport protocol identifier, by name or by number
//
// Vocabulary:
//   - [AddressFamily], [SocketType], [ShutdownDirection]
//   - [Mask]: type-safe composition of [SendFlag], [RecvFlag] and
//     [AddressInfoFlag] values
//
// Failures:
//   - [*Error]: a native failure carrying the unmodified platform code
//   - [ErrInvalidArgument]: caller-contract violations detected before any
//     native call is issued
//
// The IPv4 header codec lives in the inethdr subpackage and the byte order
// codec in the endian subpackage.
//
// # Platforms
//
// All native calls go through the [Platform] interface. [DefaultPlatform]
// returns the backend for the running OS; tests and exotic callers may set
// [Config.Platform] to a different implementation.
//
// # Ownership
//
// A [*Socket] exclusively owns its descriptor. [*Socket.Take] moves the
// descriptor into a new handle and leaves the source in the never-opened
// state. [*Socket.Close] is idempotent, always returns nil, and is safe on
// nil, moved-from and never-opened handles. After Close the family, type
// and protocol read as unknown.
//
// # Blocking and Cancellation
//
// Every operation blocks the calling goroutine (and its OS thread) for as
// long as the native call blocks. The package starts no goroutines of its
// own. Use [CancelWatchFunc] to shut a socket down when a context is done,
// which makes blocked calls return.
//
// # Observability
//
// Sockets emit structured log events through [SLogger] (compatible with
// [log/slog]). By default logging is disabled. Lifecycle events
// (open, bind, listen, connect, accept, shutdown, setOption, close) are
// emitted at [slog.LevelInfo] as *Start/*Done pairs; send and recv events
// at [slog.LevelDebug]. Every event carries a socketID (UUIDv7) so that the
// events of one handle can be correlated.
//
// # Design Boundaries
//
// This package performs no retries, no backoff, no connection pooling and
// no DNS resolution of its own. Those concerns belong to callers.
package libsock
