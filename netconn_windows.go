//go:build windows

// SPDX-License-Identifier: GPL-3.0-or-later

package libsock

import (
	"errors"
	"fmt"
	"net"
)

// NetConn is not supported on Windows, where the standard library cannot
// adopt an existing SOCKET. It fails wrapping [errors.ErrUnsupported] and
// leaves s open.
func (s *Socket) NetConn() (net.Conn, error) {
	return nil, fmt.Errorf("netconn: %w on windows", errors.ErrUnsupported)
}
