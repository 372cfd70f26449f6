//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: https://github.com/ooni/probe-cli/blob/v3.20.1/internal/measurexlite/conn.go
// Adapted from: https://github.com/rbmk-project/rbmk/blob/v0.17.0/pkg/x/netcore/conn.go
//

package libsock

import (
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/bassosimone/safeconn"
)

// newObservedConn wraps the [net.Conn] built from s so that its I/O is
// logged with the same socketID as s.
func newObservedConn(s *Socket, conn net.Conn) *observedConn {
	return &observedConn{
		conn:          conn,
		errClassifier: s.errClassifier,
		laddr:         safeconn.LocalAddr(conn),
		logger:        s.logger,
		network:       safeconn.Network(conn),
		raddr:         safeconn.RemoteAddr(conn),
		socketID:      s.id,
		timeNow:       s.timeNow,
	}
}

// observedConn logs the I/O of a [net.Conn] obtained from a [*Socket].
type observedConn struct {
	closeonce     sync.Once
	conn          net.Conn
	errClassifier ErrClassifier
	laddr         string
	logger        SLogger
	network       string
	raddr         string
	socketID      string
	timeNow       func() time.Time
}

var _ net.Conn = &observedConn{}

func (c *observedConn) attrs(extra ...any) []any {
	return append([]any{
		slog.String("localAddr", c.laddr),
		slog.String("network", c.network),
		slog.String("remoteAddr", c.raddr),
		slog.String("socketID", c.socketID),
	}, extra...)
}

// Close implements [net.Conn].
//
// Subsequent calls return [net.ErrClosed].
func (c *observedConn) Close() (err error) {
	err = net.ErrClosed
	c.closeonce.Do(func() {
		t0 := c.timeNow()
		c.logger.Info("closeStart", c.attrs(slog.Time("t", t0))...)
		err = c.conn.Close()
		c.logger.Info("closeDone", c.attrs(
			slog.Any("err", err),
			slog.String("errClass", c.errClassifier.Classify(err)),
			slog.Time("t0", t0),
			slog.Time("t", c.timeNow()),
		)...)
	})
	return
}

// Read implements [net.Conn].
func (c *observedConn) Read(buf []byte) (int, error) {
	t0 := c.timeNow()
	c.logger.Debug("recvStart", c.attrs(slog.Int("ioBufferSize", len(buf)), slog.Time("t", t0))...)
	count, err := c.conn.Read(buf)
	c.logger.Debug("recvDone", c.attrs(
		slog.Int("ioBytesCount", count),
		slog.Any("err", err),
		slog.String("errClass", c.errClassifier.Classify(err)),
		slog.Time("t0", t0),
		slog.Time("t", c.timeNow()),
	)...)
	return count, err
}

// Write implements [net.Conn].
func (c *observedConn) Write(data []byte) (int, error) {
	t0 := c.timeNow()
	c.logger.Debug("sendStart", c.attrs(slog.Int("ioBufferSize", len(data)), slog.Time("t", t0))...)
	count, err := c.conn.Write(data)
	c.logger.Debug("sendDone", c.attrs(
		slog.Int("ioBytesCount", count),
		slog.Any("err", err),
		slog.String("errClass", c.errClassifier.Classify(err)),
		slog.Time("t0", t0),
		slog.Time("t", c.timeNow()),
	)...)
	return count, err
}

// LocalAddr implements [net.Conn].
func (c *observedConn) LocalAddr() net.Addr {
	return c.conn.LocalAddr()
}

// RemoteAddr implements [net.Conn].
func (c *observedConn) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

// SetDeadline implements [net.Conn].
func (c *observedConn) SetDeadline(t time.Time) error {
	return c.conn.SetDeadline(t)
}

// SetReadDeadline implements [net.Conn].
func (c *observedConn) SetReadDeadline(t time.Time) error {
	return c.conn.SetReadDeadline(t)
}

// SetWriteDeadline implements [net.Conn].
func (c *observedConn) SetWriteDeadline(t time.Time) error {
	return c.conn.SetWriteDeadline(t)
}
