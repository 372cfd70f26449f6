// SPDX-License-Identifier: GPL-3.0-or-later

package libsock

import "context"

// NewCancelWatchFunc returns a new [*CancelWatchFunc].
func NewCancelWatchFunc() *CancelWatchFunc {
	return &CancelWatchFunc{}
}

// CancelWatchFunc arranges for a [*Socket] to be shut down in both
// directions when the context is done (cancelled or deadline exceeded).
//
// The shutdown makes blocked [*Socket.Recv] and [*Socket.Accept] calls
// return, which provides responsive cleanup on external cancellation
// (e.g., SIGINT via signal.NotifyContext). On Windows a shutdown does not
// wake a blocked accept.
//
// Closing the socket unregisters the watcher, so no goroutine leaks even
// if the context is never cancelled. [*Socket.Take] and [*Socket.Swap]
// move the watcher along with the descriptor.
//
// Do not use this primitive when the socket may outlive the context.
type CancelWatchFunc struct{}

var _ Func[*Socket, *Socket] = &CancelWatchFunc{}

// Call registers a context watcher using [context.AfterFunc] and returns
// the same socket. A previous watch on sock is replaced.
func (op *CancelWatchFunc) Call(ctx context.Context, sock *Socket) (*Socket, error) {
	sock.stopWatch()
	sock.watch(ctx)
	return sock, nil
}

// watch shuts the current descriptor of s down when ctx is done.
//
// The shutdown is skipped when s no longer owns that descriptor, and it
// runs under s.mu so that it never races with its release.
func (s *Socket) watch(ctx context.Context) {
	fd := s.load()
	s.watchCtx = ctx
	s.unwatch = context.AfterFunc(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if fd != InvalidDescriptor && s.load() == fd {
			s.Shutdown(ShutdownBoth)
		}
	})
}

// stopWatch removes the watch of s, if any, and returns its context.
func (s *Socket) stopWatch() context.Context {
	ctx := s.watchCtx
	if s.unwatch != nil {
		s.unwatch()
	}
	s.watchCtx, s.unwatch = nil, nil
	return ctx
}
