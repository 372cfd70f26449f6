// SPDX-License-Identifier: GPL-3.0-or-later

package libsock

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	cfg := NewConfig()

	require.NotNil(t, cfg)

	// Platform should be the default platform
	assert.Equal(t, DefaultPlatform(), cfg.Platform)

	// Resolver should be set to *net.Resolver
	_, ok := cfg.Resolver.(*net.Resolver)
	assert.True(t, ok, "Resolver should be *net.Resolver")

	// ErrClassifier should be DefaultErrClassifier
	assert.Equal(t, "", cfg.ErrClassifier.Classify(nil))

	// TimeNow should be set and return a valid time
	now := cfg.TimeNow()
	assert.False(t, now.IsZero())
}
