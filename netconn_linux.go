//go:build linux

// SPDX-License-Identifier: GPL-3.0-or-later

package libsock

import (
	"log/slog"
	"net"
	"os"
)

// NetConn converts a connected socket into a [net.Conn] whose I/O is
// logged like the I/O of s.
//
// The socket is always consumed: on success the descriptor belongs to the
// returned [net.Conn], and on failure it is closed. Either way s ends up
// in the never opened state.
func (s *Socket) NetConn() (net.Conn, error) {
	t0 := s.timeNow()
	s.logStart(s.logger.Info, "netConnStart", t0)

	defer s.meta.Store(unknownSocketMeta)
	s.stopWatch()
	fd := s.release(InvalidDescriptor)
	if fd == InvalidDescriptor {
		s.logDone(s.logger.Info, "netConnDone", t0, net.ErrClosed)
		return nil, net.ErrClosed
	}

	// net.FileConn duplicates the descriptor, so we close the original
	file := os.NewFile(uintptr(fd), "libsock-"+s.id)
	conn, err := net.FileConn(file)
	file.Close()
	if err != nil {
		s.logDone(s.logger.Info, "netConnDone", t0, err)
		return nil, err
	}

	observed := newObservedConn(s, conn)
	s.logDone(s.logger.Info, "netConnDone", t0, nil,
		slog.String("localAddr", observed.laddr),
		slog.String("remoteAddr", observed.raddr),
	)
	return observed, nil
}
