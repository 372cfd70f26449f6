// SPDX-License-Identifier: GPL-3.0-or-later

package libsock

import (
	"context"
	"log/slog"
	"time"
)

// NewResolveFunc returns a new [*ResolveFunc].
//
// The cfg argument contains the common configuration.
//
// The logger argument is the [SLogger] to use for structured logging.
func NewResolveFunc(cfg *Config, logger SLogger) *ResolveFunc {
	return &ResolveFunc{
		ErrClassifier: cfg.ErrClassifier,
		Logger:        logger,
		Resolver:      cfg.Resolver,
		TimeNow:       cfg.TimeNow,
	}
}

// ResolveFunc resolves an [Endpoint] into an [*AddressInfoList] using [Resolve].
//
// All fields are safe to modify after construction but before first use.
// Fields must not be mutated concurrently with calls to [Call].
type ResolveFunc struct {
	// ErrClassifier classifies errors for structured logging.
	//
	// Set by [NewResolveFunc] from [Config.ErrClassifier].
	ErrClassifier ErrClassifier

	// Logger is the [SLogger] to use.
	//
	// Set by [NewResolveFunc] to the user-provided logger.
	Logger SLogger

	// Resolver is the [Resolver] to use.
	//
	// Set by [NewResolveFunc] from [Config.Resolver].
	Resolver Resolver

	// TimeNow returns the current time.
	//
	// Set by [NewResolveFunc] from [Config.TimeNow].
	TimeNow func() time.Time
}

var _ Func[Endpoint, *AddressInfoList] = &ResolveFunc{}

// Call implements [Func].
func (op *ResolveFunc) Call(ctx context.Context, endpoint Endpoint) (*AddressInfoList, error) {
	t0 := op.TimeNow()
	deadline, _ := ctx.Deadline()
	op.Logger.Info(
		"resolveStart",
		slog.Time("deadline", deadline),
		slog.String("family", endpoint.Hints.Family.String()),
		slog.String("hostname", endpoint.Host),
		slog.String("service", endpoint.Service),
		slog.String("socketType", endpoint.Hints.SocketType.String()),
		slog.Time("t", t0),
	)

	cfg := &Config{Resolver: op.Resolver}
	list, err := Resolve(ctx, cfg, endpoint.Host, endpoint.Service, endpoint.Hints)

	var addrs []string
	if list != nil {
		for _, info := range list.All() {
			addrs = append(addrs, info.Address.String())
		}
	}
	op.Logger.Info(
		"resolveDone",
		slog.Any("addrs", addrs),
		slog.Time("deadline", deadline),
		slog.Any("err", err),
		slog.String("errClass", op.ErrClassifier.Classify(err)),
		slog.String("family", endpoint.Hints.Family.String()),
		slog.String("hostname", endpoint.Host),
		slog.String("service", endpoint.Service),
		slog.String("socketType", endpoint.Hints.SocketType.String()),
		slog.Time("t0", t0),
		slog.Time("t", op.TimeNow()),
	)
	return list, err
}

// NewFirstAddressInfoFunc returns a [Func] selecting the first entry of an
// [*AddressInfoList], which keeps the resolver ranking.
func NewFirstAddressInfoFunc() Func[*AddressInfoList, AddressInfo] {
	return FuncAdapter[*AddressInfoList, AddressInfo](
		func(ctx context.Context, list *AddressInfoList) (AddressInfo, error) {
			return list.First(), nil
		})
}
