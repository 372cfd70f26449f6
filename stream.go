// SPDX-License-Identifier: GPL-3.0-or-later

package libsock

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ErrStringTooLong is returned by [*Stream.ReadString] when no NUL
// terminator is found within the maximum length.
var ErrStringTooLong = errors.New("string exceeds maximum length")

// Stream reads and writes values over a connected stream [*Socket].
//
// Numbers are written in host byte order with [binary.NativeEndian] and
// strings are NUL terminated. A Stream does not own the socket.
type Stream struct {
	sock *Socket
}

var (
	_ io.Reader = &Stream{}
	_ io.Writer = &Stream{}
)

// NewStream returns a [*Stream] using sock, which must be a stream socket.
func NewStream(sock *Socket) (*Stream, error) {
	if sock == nil {
		return nil, fmt.Errorf("%w: nil socket", ErrInvalidArgument)
	}
	if !sock.IsStream() {
		return nil, fmt.Errorf("%w: %s socket is not a stream", ErrInvalidArgument, sock.Type())
	}
	return &Stream{sock: sock}, nil
}

// Write implements [io.Writer] by sending until all of b is written.
func (st *Stream) Write(b []byte) (int, error) {
	total := 0
	for total < len(b) {
		n, err := st.sock.Send(b[total:])
		total += n
		if err != nil {
			return total, err
		}
		if n == 0 {
			return total, io.ErrShortWrite
		}
	}
	return total, nil
}

// Read implements [io.Reader]. An orderly shutdown of the peer is
// reported as [io.EOF].
func (st *Stream) Read(b []byte) (int, error) {
	if len(b) == 0 {
		return 0, nil
	}
	n, err := st.sock.Recv(b)
	if err != nil {
		return n, err
	}
	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}

// WriteValue writes the binary representation of value, which must be a
// fixed-size value accepted by [binary.Write].
func (st *Stream) WriteValue(value any) error {
	return binary.Write(st, binary.NativeEndian, value)
}

// ReadValue reads the binary representation of a fixed-size value into
// the pointer value.
func (st *Stream) ReadValue(value any) error {
	return binary.Read(st, binary.NativeEndian, value)
}

// WriteString writes s followed by a NUL byte.
func (st *Stream) WriteString(s string) error {
	buf := make([]byte, 0, len(s)+1)
	buf = append(buf, s...)
	buf = append(buf, 0)
	_, err := st.Write(buf)
	return err
}

// ReadString reads a NUL terminated string of at most maxLen bytes.
//
// The data is peeked first so that bytes following the terminator stay
// in the socket receive queue.
func (st *Stream) ReadString(maxLen int) (string, error) {
	var out []byte
	chunk := make([]byte, 512)
	for {
		n, err := st.sock.Recv(chunk, RecvPeek)
		if err != nil {
			return "", err
		}
		if n == 0 {
			return "", io.ErrUnexpectedEOF
		}
		consume, length := n, len(out)+n
		idx := bytes.IndexByte(chunk[:n], 0)
		if idx >= 0 {
			consume, length = idx+1, len(out)+idx
		}
		if length > maxLen {
			return "", ErrStringTooLong
		}
		if _, err := io.ReadFull(st, chunk[:consume]); err != nil {
			return "", err
		}
		if idx >= 0 {
			out = append(out, chunk[:idx]...)
			return string(out), nil
		}
		out = append(out, chunk[:consume]...)
	}
}
