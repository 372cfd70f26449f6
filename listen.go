// SPDX-License-Identifier: GPL-3.0-or-later

package libsock

import (
	"context"
	"time"
)

// NewListenFunc returns a new [*ListenFunc] using [DefaultBacklog].
//
// The cfg argument contains the common configuration.
//
// The logger argument is the [SLogger] to use for structured logging.
func NewListenFunc(cfg *Config, logger SLogger) *ListenFunc {
	return &ListenFunc{
		Backlog:       DefaultBacklog,
		ErrClassifier: cfg.ErrClassifier,
		Logger:        logger,
		Platform:      cfg.Platform,
		ReuseAddr:     true,
		TimeNow:       cfg.TimeNow,
	}
}

// ListenFunc opens a [*Socket] for an [AddressInfo], binds it to the entry
// address and makes it listen. Datagram entries are only bound.
//
// All fields are safe to modify after construction but before first use.
// Fields must not be mutated concurrently with calls to [Call].
type ListenFunc struct {
	// Backlog is the listen backlog.
	//
	// Set by [NewListenFunc] to [DefaultBacklog].
	Backlog int

	// ErrClassifier classifies errors for structured logging.
	//
	// Set by [NewListenFunc] from [Config.ErrClassifier].
	ErrClassifier ErrClassifier

	// Logger is the [SLogger] to use.
	//
	// Set by [NewListenFunc] to the user-provided logger.
	Logger SLogger

	// Platform issues the native socket calls.
	//
	// Set by [NewListenFunc] from [Config.Platform].
	Platform Platform

	// ReuseAddr controls whether to set [OptReuseAddr] before binding.
	//
	// Set by [NewListenFunc] to true.
	ReuseAddr bool

	// TimeNow returns the current time.
	//
	// Set by [NewListenFunc] from [Config.TimeNow].
	TimeNow func() time.Time
}

var _ Func[AddressInfo, *Socket] = &ListenFunc{}

// Call implements [Func].
func (op *ListenFunc) Call(ctx context.Context, info AddressInfo) (*Socket, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cfg := &Config{ErrClassifier: op.ErrClassifier, Platform: op.Platform, TimeNow: op.TimeNow}
	sock, err := OpenAddressInfo(cfg, info, op.Logger)
	if err != nil {
		return nil, err
	}
	if err := op.setup(sock); err != nil {
		sock.Close()
		return nil, err
	}
	return sock, nil
}

func (op *ListenFunc) setup(sock *Socket) error {
	if op.ReuseAddr {
		if err := sock.SetOptionBool(OptReuseAddr, true); err != nil {
			return err
		}
	}
	if err := sock.Bind(); err != nil {
		return err
	}
	if !sock.IsStream() {
		return nil
	}
	return sock.Listen(op.Backlog)
}
