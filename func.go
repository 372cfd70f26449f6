// SPDX-License-Identifier: GPL-3.0-or-later

package libsock

import "context"

// Func is a generic operation that accepts an input and returns a result.
//
// Func instances can be composed using [Compose2], [Compose3], etc. to build
// type-safe pipelines where the output of one operation flows to the input
// of the next (e.g., resolve an [Endpoint], pick an [AddressInfo], connect).
//
// Resource cleanup contract: when a Func receives or creates a [*Socket]
// and returns an error, it closes that socket before returning. This
// ensures that composed pipelines do not leak descriptors on partial
// failure. See [*ConnectFunc] for an example of this pattern.
type Func[A, B any] interface {
	Call(ctx context.Context, input A) (B, error)
}

// FuncAdapter wraps a function as a [Func] implementation.
//
// Use this to create ad-hoc [Func] instances from closures, for example to
// send a request over the [*Socket] returned by [*ConnectFunc].
type FuncAdapter[A, B any] func(ctx context.Context, input A) (B, error)

// Call implements [Func].
func (f FuncAdapter[A, B]) Call(ctx context.Context, input A) (B, error) {
	return f(ctx, input)
}
