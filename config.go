// SPDX-License-Identifier: GPL-3.0-or-later

package libsock

import (
	"net"
	"time"
)

// Config holds common configuration for sockets and resolution.
//
// Pass this to constructor functions to pre-wire dependencies.
// All fields have sensible defaults set by [NewConfig].
type Config struct {
	// ErrClassifier classifies errors for structured logging.
	//
	// Set by [NewConfig] to [DefaultErrClassifier].
	ErrClassifier ErrClassifier

	// Platform issues the native socket calls.
	//
	// Set by [NewConfig] to [DefaultPlatform].
	Platform Platform

	// Resolver is used by [Resolve] and [*ResolveFunc].
	//
	// Set by [NewConfig] to [net.DefaultResolver].
	Resolver Resolver

	// TimeNow returns the current time.
	//
	// Set by [NewConfig] to [time.Now].
	TimeNow func() time.Time
}

// NewConfig creates a [*Config] with sensible defaults.
func NewConfig() *Config {
	return &Config{
		ErrClassifier: DefaultErrClassifier,
		Platform:      DefaultPlatform(),
		Resolver:      net.DefaultResolver,
		TimeNow:       time.Now,
	}
}
