// SPDX-License-Identifier: GPL-3.0-or-later

package libsock

// Unit is the type with a single empty value.
//
// Use it as the input of a [Func] that needs no argument, such as the
// one returned by [NewEndpointFunc].
type Unit struct{}
