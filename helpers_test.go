// SPDX-License-Identifier: GPL-3.0-or-later

package libsock

import (
	"context"
	"encoding/binary"
	"log/slog"
	"net"
	"sync"
	"syscall"

	"github.com/bassosimone/netstub"
	"github.com/bassosimone/slogstub"
)

// newCapturingLogger returns a logger that captures all log records into the
// returned slice. The caller can inspect the slice after exercising the code
// under test to verify which events were emitted.
func newCapturingLogger() (*slog.Logger, *[]slog.Record) {
	var (
		mu      sync.Mutex
		records []slog.Record
	)
	handler := &slogstub.FuncHandler{
		EnabledFunc: func(ctx context.Context, level slog.Level) bool {
			return true
		},
		HandleFunc: func(ctx context.Context, record slog.Record) error {
			mu.Lock()
			records = append(records, record)
			mu.Unlock()
			return nil
		},
	}
	return slog.New(handler), &records
}

// recordMessages returns the messages of the given records.
func recordMessages(records []slog.Record) []string {
	var out []string
	for _, r := range records {
		out = append(out, r.Message)
	}
	return out
}

// recordAttr returns the value of the named attribute of r.
func recordAttr(r slog.Record, key string) (slog.Value, bool) {
	var (
		value slog.Value
		found bool
	)
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == key {
			value, found = a.Value, true
			return false
		}
		return true
	})
	return value, found
}

// newMinimalConn returns a [*netstub.FuncConn] with only LocalAddrFunc and
// RemoteAddrFunc set, which is what [newObservedConn] needs.
func newMinimalConn() *netstub.FuncConn {
	return &netstub.FuncConn{
		LocalAddrFunc:  func() net.Addr { return &net.TCPAddr{} },
		RemoteAddrFunc: func() net.Addr { return &net.TCPAddr{} },
	}
}

// optionKey identifies a native option.
type optionKey struct {
	level int
	name  int
}

// funcPlatform is a [Platform] whose behavior is defined by function
// fields. Nil fields succeed without doing anything.
type funcPlatform struct {
	SocketFunc          func(family, stype, protocol int) (Descriptor, error)
	CloseFunc           func(fd Descriptor) error
	BindFunc            func(fd Descriptor, addr *Address) error
	ListenFunc          func(fd Descriptor, backlog int) error
	ConnectFunc         func(fd Descriptor, addr *Address) error
	AcceptFunc          func(fd Descriptor) (Descriptor, *Address, error)
	ShutdownFunc        func(fd Descriptor, how int) error
	SendFunc            func(fd Descriptor, b []byte, flags int) (int, error)
	SendToFunc          func(fd Descriptor, b []byte, flags int, addr *Address) (int, error)
	RecvFunc            func(fd Descriptor, b []byte, flags int) (int, error)
	RecvFromFunc        func(fd Descriptor, b []byte, flags int) (int, *Address, error)
	GetsockoptIntFunc   func(fd Descriptor, level, name int) (int, error)
	GetsockoptBytesFunc func(fd Descriptor, level, name int, buf []byte) (int, error)
	SetsockoptIntFunc   func(fd Descriptor, level, name, value int) error
	SetsockoptBytesFunc func(fd Descriptor, level, name int, value []byte) error
	LocalAddressFunc    func(fd Descriptor) (*Address, error)
	PeerAddressFunc     func(fd Descriptor) (*Address, error)
}

var _ Platform = &funcPlatform{}

func (p *funcPlatform) Socket(family, stype, protocol int) (Descriptor, error) {
	if p.SocketFunc != nil {
		return p.SocketFunc(family, stype, protocol)
	}
	return 3, nil
}

func (p *funcPlatform) Close(fd Descriptor) error {
	if p.CloseFunc != nil {
		return p.CloseFunc(fd)
	}
	return nil
}

func (p *funcPlatform) Bind(fd Descriptor, addr *Address) error {
	if p.BindFunc != nil {
		return p.BindFunc(fd, addr)
	}
	return nil
}

func (p *funcPlatform) Listen(fd Descriptor, backlog int) error {
	if p.ListenFunc != nil {
		return p.ListenFunc(fd, backlog)
	}
	return nil
}

func (p *funcPlatform) Connect(fd Descriptor, addr *Address) error {
	if p.ConnectFunc != nil {
		return p.ConnectFunc(fd, addr)
	}
	return nil
}

func (p *funcPlatform) Accept(fd Descriptor) (Descriptor, *Address, error) {
	if p.AcceptFunc != nil {
		return p.AcceptFunc(fd)
	}
	return fd + 1, nil, nil
}

func (p *funcPlatform) Shutdown(fd Descriptor, how int) error {
	if p.ShutdownFunc != nil {
		return p.ShutdownFunc(fd, how)
	}
	return nil
}

func (p *funcPlatform) Send(fd Descriptor, b []byte, flags int) (int, error) {
	if p.SendFunc != nil {
		return p.SendFunc(fd, b, flags)
	}
	return len(b), nil
}

func (p *funcPlatform) SendTo(fd Descriptor, b []byte, flags int, addr *Address) (int, error) {
	if p.SendToFunc != nil {
		return p.SendToFunc(fd, b, flags, addr)
	}
	return len(b), nil
}

func (p *funcPlatform) Recv(fd Descriptor, b []byte, flags int) (int, error) {
	if p.RecvFunc != nil {
		return p.RecvFunc(fd, b, flags)
	}
	return 0, nil
}

func (p *funcPlatform) RecvFrom(fd Descriptor, b []byte, flags int) (int, *Address, error) {
	if p.RecvFromFunc != nil {
		return p.RecvFromFunc(fd, b, flags)
	}
	return 0, nil, nil
}

func (p *funcPlatform) GetsockoptInt(fd Descriptor, level, name int) (int, error) {
	if p.GetsockoptIntFunc != nil {
		return p.GetsockoptIntFunc(fd, level, name)
	}
	return 0, nil
}

func (p *funcPlatform) GetsockoptBytes(fd Descriptor, level, name int, buf []byte) (int, error) {
	if p.GetsockoptBytesFunc != nil {
		return p.GetsockoptBytesFunc(fd, level, name, buf)
	}
	return 0, nil
}

func (p *funcPlatform) SetsockoptInt(fd Descriptor, level, name, value int) error {
	if p.SetsockoptIntFunc != nil {
		return p.SetsockoptIntFunc(fd, level, name, value)
	}
	return nil
}

func (p *funcPlatform) SetsockoptBytes(fd Descriptor, level, name int, value []byte) error {
	if p.SetsockoptBytesFunc != nil {
		return p.SetsockoptBytesFunc(fd, level, name, value)
	}
	return nil
}

func (p *funcPlatform) LocalAddress(fd Descriptor) (*Address, error) {
	if p.LocalAddressFunc != nil {
		return p.LocalAddressFunc(fd)
	}
	return nil, syscall.Errno(0x16) // EINVAL on Linux
}

func (p *funcPlatform) PeerAddress(fd Descriptor) (*Address, error) {
	if p.PeerAddressFunc != nil {
		return p.PeerAddressFunc(fd)
	}
	return nil, syscall.Errno(0x16)
}

func (p *funcPlatform) LookupProtocol(name string) (int, error) {
	if id, found := wellKnownProtocols[name]; found {
		return id, nil
	}
	return -1, ErrUnsupportedProtocol
}

func (p *funcPlatform) ErrorMessage(code int) string {
	return "fake error"
}

// newRecordingPlatform returns a [*funcPlatform] storing integer options
// in the returned map, keyed by the exact native level and name. Byte
// options read back the stored value in native byte order.
func newRecordingPlatform() (*funcPlatform, map[optionKey]int) {
	store := make(map[optionKey]int)
	p := &funcPlatform{
		GetsockoptBytesFunc: func(fd Descriptor, level, name int, buf []byte) (int, error) {
			value, found := store[optionKey{level, name}]
			if !found {
				return 0, syscall.Errno(0x5c)
			}
			if len(buf) < 4 {
				return 0, syscall.Errno(0x16)
			}
			binary.NativeEndian.PutUint32(buf, uint32(value))
			return 4, nil
		},
		SetsockoptIntFunc: func(fd Descriptor, level, name, value int) error {
			store[optionKey{level, name}] = value
			return nil
		},
		GetsockoptIntFunc: func(fd Descriptor, level, name int) (int, error) {
			value, found := store[optionKey{level, name}]
			if !found {
				return 0, syscall.Errno(0x5c) // ENOPROTOOPT on Linux
			}
			return value, nil
		},
	}
	return p, store
}

// newFakeConfig returns a [*Config] using p as the platform.
func newFakeConfig(p Platform) *Config {
	cfg := NewConfig()
	cfg.Platform = p
	return cfg
}
