// SPDX-License-Identifier: GPL-3.0-or-later

package libsock

import (
	"github.com/bassosimone/runtimex"
	"github.com/google/uuid"
)

// newSocketID returns a UUIDv7 identifying a [*Socket] in log events.
//
// UUIDv7 values are time-ordered, so sorting by socketID also sorts
// handles by creation time.
//
// This function panics if the system random number generator fails,
// which should only happen under extraordinary circumstances.
func newSocketID() string {
	return runtimex.PanicOnError1(uuid.NewV7()).String()
}
