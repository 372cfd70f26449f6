// SPDX-License-Identifier: GPL-3.0-or-later

package libsock

// Endpoint is the input of [*ResolveFunc].
type Endpoint struct {
	// Host is the hostname or IP address. Empty means loopback, or the
	// wildcard address with [AddressInfoPassive].
	Host string

	// Service is the service name or port number.
	Service string

	// Hints filters the resolution results.
	Hints AddressInfo
}

// NewEndpointFunc returns a [Func] that always returns the [Endpoint]
// built from its arguments.
//
// This is a convenience wrapper around [ConstFunc] for the common case of
// injecting the endpoint to resolve into a pipeline.
func NewEndpointFunc(host, service string, hints AddressInfo) Func[Unit, Endpoint] {
	return ConstFunc(Endpoint{Host: host, Service: service, Hints: hints})
}
