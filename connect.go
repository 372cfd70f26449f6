//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: https://github.com/ooni/probe-cli/blob/v3.20.1/internal/netxlite/dialer.go
// Adapted from: https://github.com/rbmk-project/rbmk/blob/v0.17.0/pkg/x/netcore/dialer.go
//

package libsock

import (
	"context"
	"time"
)

// NewConnectFunc returns a new [*ConnectFunc].
//
// The cfg argument contains the common configuration.
//
// The logger argument is the [SLogger] to use for structured logging.
func NewConnectFunc(cfg *Config, logger SLogger) *ConnectFunc {
	return &ConnectFunc{
		ErrClassifier: cfg.ErrClassifier,
		Logger:        logger,
		Platform:      cfg.Platform,
		TimeNow:       cfg.TimeNow,
	}
}

// ConnectFunc opens a [*Socket] for an [AddressInfo] and connects it to
// the entry address.
//
// Returns either a connected [*Socket] or an error, never both. The connect
// call blocks according to the socket mode and is not interrupted by the
// context, which is only checked before opening the socket.
//
// All fields are safe to modify after construction but before first use.
// Fields must not be mutated concurrently with calls to [Call].
type ConnectFunc struct {
	// ErrClassifier classifies errors for structured logging.
	//
	// Set by [NewConnectFunc] from [Config.ErrClassifier].
	ErrClassifier ErrClassifier

	// Logger is the [SLogger] to use.
	//
	// Set by [NewConnectFunc] to the user-provided logger.
	Logger SLogger

	// Platform issues the native socket calls.
	//
	// Set by [NewConnectFunc] from [Config.Platform].
	Platform Platform

	// TimeNow returns the current time.
	//
	// Set by [NewConnectFunc] from [Config.TimeNow].
	TimeNow func() time.Time
}

var _ Func[AddressInfo, *Socket] = &ConnectFunc{}

// Call implements [Func].
func (op *ConnectFunc) Call(ctx context.Context, info AddressInfo) (*Socket, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cfg := &Config{ErrClassifier: op.ErrClassifier, Platform: op.Platform, TimeNow: op.TimeNow}
	sock, err := OpenAddressInfo(cfg, info, op.Logger)
	if err != nil {
		return nil, err
	}
	if err := sock.Connect(info.Address); err != nil {
		sock.Close()
		return nil, err
	}
	return sock, nil
}
