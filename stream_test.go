// SPDX-License-Identifier: GPL-3.0-or-later

package libsock

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newPipePlatform returns a [*funcPlatform] whose sends append to the
// returned buffer and whose receives drain it, honoring [RecvPeek].
func newPipePlatform() (*funcPlatform, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	p := &funcPlatform{
		SendFunc: func(fd Descriptor, b []byte, flags int) (int, error) {
			return buf.Write(b)
		},
		RecvFunc: func(fd Descriptor, b []byte, flags int) (int, error) {
			if flags&msgPeek != 0 {
				return copy(b, buf.Bytes()), nil
			}
			n, _ := buf.Read(b)
			return n, nil
		},
	}
	return p, buf
}

func newTestStream(t *testing.T, p Platform) *Stream {
	sock, err := Open(newFakeConfig(p), FamilyInet, TypeStream, TCPProtocol(), DefaultSLogger())
	require.NoError(t, err)
	t.Cleanup(func() { sock.Close() })
	st, err := NewStream(sock)
	require.NoError(t, err)
	return st
}

func TestNewStream(t *testing.T) {
	_, err := NewStream(nil)
	require.ErrorIs(t, err, ErrInvalidArgument)

	sock, err := Open(newFakeConfig(&funcPlatform{}), FamilyInet, TypeDatagram, UDPProtocol(), DefaultSLogger())
	require.NoError(t, err)
	defer sock.Close()
	_, err = NewStream(sock)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestStreamValues(t *testing.T) {
	p, buf := newPipePlatform()
	st := newTestStream(t, p)

	type record struct {
		A uint16
		B int32
		C [3]byte
	}
	input := record{A: 0x0102, B: -7, C: [3]byte{1, 2, 3}}
	require.NoError(t, st.WriteValue(input))
	require.NoError(t, st.WriteValue(uint64(0xdeadbeef)))
	assert.Equal(t, 2+4+3+8, buf.Len())

	var output record
	require.NoError(t, st.ReadValue(&output))
	assert.Equal(t, input, output)

	var value uint64
	require.NoError(t, st.ReadValue(&value))
	assert.Equal(t, uint64(0xdeadbeef), value)

	require.ErrorIs(t, st.ReadValue(&value), io.EOF)
}

func TestStreamStrings(t *testing.T) {
	p, buf := newPipePlatform()
	st := newTestStream(t, p)

	require.NoError(t, st.WriteString("hello"))
	require.NoError(t, st.WriteString(""))
	require.NoError(t, st.WriteValue(uint8(42)))
	assert.Equal(t, []byte("hello\x00\x00\x2a"), buf.Bytes())

	s, err := st.ReadString(5)
	require.NoError(t, err)
	assert.Equal(t, "hello", s)

	s, err = st.ReadString(0)
	require.NoError(t, err)
	assert.Equal(t, "", s)

	// the byte following the terminator is still available
	var value uint8
	require.NoError(t, st.ReadValue(&value))
	assert.Equal(t, uint8(42), value)
}

func TestStreamLongString(t *testing.T) {
	p, _ := newPipePlatform()
	st := newTestStream(t, p)

	long := strings.Repeat("x", 1500)
	require.NoError(t, st.WriteString(long))

	s, err := st.ReadString(1500)
	require.NoError(t, err)
	assert.Equal(t, long, s)
}

func TestStreamStringTooLong(t *testing.T) {
	p, buf := newPipePlatform()
	st := newTestStream(t, p)

	require.NoError(t, st.WriteString("abcdef"))
	_, err := st.ReadString(5)
	require.ErrorIs(t, err, ErrStringTooLong)

	// nothing was consumed
	assert.Equal(t, 7, buf.Len())
}

func TestStreamUnterminatedString(t *testing.T) {
	p, _ := newPipePlatform()
	st := newTestStream(t, p)

	_, err := st.Write([]byte("abc"))
	require.NoError(t, err)
	_, err = st.ReadString(16)
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestStreamWrite(t *testing.T) {
	t.Run("short sends are retried", func(t *testing.T) {
		var sent []byte
		p := &funcPlatform{
			SendFunc: func(fd Descriptor, b []byte, flags int) (int, error) {
				n := min(len(b), 2)
				sent = append(sent, b[:n]...)
				return n, nil
			},
		}
		st := newTestStream(t, p)
		n, err := st.Write([]byte("abcde"))
		require.NoError(t, err)
		assert.Equal(t, 5, n)
		assert.Equal(t, []byte("abcde"), sent)
	})

	t.Run("zero bytes sent", func(t *testing.T) {
		p := &funcPlatform{
			SendFunc: func(fd Descriptor, b []byte, flags int) (int, error) {
				return 0, nil
			},
		}
		st := newTestStream(t, p)
		_, err := st.Write([]byte("abc"))
		require.ErrorIs(t, err, io.ErrShortWrite)
	})

	t.Run("send failure", func(t *testing.T) {
		expected := errors.New("mocked error")
		p := &funcPlatform{
			SendFunc: func(fd Descriptor, b []byte, flags int) (int, error) {
				return 1, expected
			},
		}
		st := newTestStream(t, p)
		n, err := st.Write([]byte("abc"))
		require.ErrorIs(t, err, expected)
		assert.Equal(t, 1, n)
	})
}

func TestStreamRead(t *testing.T) {
	p, _ := newPipePlatform()
	st := newTestStream(t, p)

	n, err := st.Read(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	n, err = st.Read(make([]byte, 4))
	require.ErrorIs(t, err, io.EOF)
	assert.Equal(t, 0, n)
}
